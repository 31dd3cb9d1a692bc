package service

import (
	"sync"
	"time"

	"sambv/internal/app/port"
	"sambv/internal/domain/entity"
	"sambv/internal/domain/progression"
	"sambv/internal/pkg/metrics"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
)

// ProgressionService owns the XP state of one session. Every award goes through Award,
// which serialises updates and raises a toast. xp.updated events leave in award order.
type ProgressionService struct {
	clock  clock.Clock
	toasts *ToastNotifier
	events sessionEvents
	logger port.Logger

	// awardMu is held across an award and its events; lock order is awardMu before mu.
	awardMu sync.Mutex
	mu      sync.Mutex
	state   entity.ProgressionState
}

var _ port.XPAwarder = (*ProgressionService)(nil)

// NewProgressionService creates a controller seeded with entity.SeedProgression.
func NewProgressionService(sessionID string, clk clock.Clock, toasts *ToastNotifier, pub port.EventPublisher, l port.Logger) *ProgressionService {
	if clk == nil {
		clk = clock.New()
	}
	return &ProgressionService{
		clock:  clk,
		toasts: toasts,
		events: newSessionEvents(sessionID, pub, clk),
		logger: l,
		state:  entity.SeedProgression(),
	}
}

// Award implements port.XPAwarder.
func (s *ProgressionService) Award(xp uint64, action string) entity.ProgressionUpdate {
	s.awardMu.Lock()
	defer s.awardMu.Unlock()

	s.mu.Lock()
	next, outcome := progression.Apply(s.state, xp, action, s.clock.Now())
	s.state = next
	snapshot := next.Clone()
	s.mu.Unlock()

	metrics.XPAwarded.Add(float64(xp))
	if outcome.LevelsGained > 0 {
		metrics.LevelUps.Add(float64(outcome.LevelsGained))
		s.logger.Info("Level up", "level", snapshot.Level, "action", action)
	}

	update := entity.ProgressionUpdate{State: snapshot, LevelsGained: outcome.LevelsGained}
	if s.toasts != nil {
		update.Toast = s.toasts.Raise(xp, action)
	}
	s.events.publish(entity.EventXPUpdated, update)
	return update
}

// State returns a copy of the current progression.
func (s *ProgressionService) State() entity.ProgressionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// ToastNotifier shows at most one toast per session. A toast disappears after the
// configured delay or on explicit dismissal, whichever comes first.
type ToastNotifier struct {
	clock  clock.Clock
	ttl    time.Duration
	events sessionEvents

	// emitMu orders raise and dismiss events; lock order is emitMu before mu.
	emitMu  sync.Mutex
	mu      sync.Mutex
	current *entity.Toast
	timer   *clock.Timer
	closed  bool
}

// NewToastNotifier creates a notifier whose toasts auto-dismiss after ttl.
func NewToastNotifier(sessionID string, clk clock.Clock, ttl time.Duration, pub port.EventPublisher) *ToastNotifier {
	if clk == nil {
		clk = clock.New()
	}
	return &ToastNotifier{clock: clk, ttl: ttl, events: newSessionEvents(sessionID, pub, clk)}
}

// Raise replaces the visible toast with a new one.
func (n *ToastNotifier) Raise(xp uint64, message string) entity.Toast {
	toast := entity.Toast{
		ID:       uuid.NewString(),
		XP:       xp,
		Message:  message,
		RaisedAt: n.clock.Now().UnixMilli(),
	}

	n.emitMu.Lock()
	defer n.emitMu.Unlock()

	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		return toast
	}
	if n.timer != nil {
		n.timer.Stop()
	}
	n.current = &toast
	id := toast.ID
	n.timer = n.clock.AfterFunc(n.ttl, func() { n.dismiss(id, "timeout") })
	n.mu.Unlock()

	n.events.publish(entity.EventToastRaised, toast)
	return toast
}

// Dismiss hides the toast with the given id; an empty id hides whatever is visible.
// It reports whether a toast was hidden.
func (n *ToastNotifier) Dismiss(id string) bool {
	return n.dismiss(id, "user")
}

// Current returns the visible toast, if any.
func (n *ToastNotifier) Current() *entity.Toast {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.current == nil {
		return nil
	}
	t := *n.current
	return &t
}

// Close cancels the auto-dismiss timer. Later toasts are not shown.
func (n *ToastNotifier) Close() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.closed = true
	if n.timer != nil {
		n.timer.Stop()
		n.timer = nil
	}
	n.current = nil
}

func (n *ToastNotifier) dismiss(id, reason string) bool {
	n.emitMu.Lock()
	defer n.emitMu.Unlock()

	n.mu.Lock()
	if n.current == nil || (id != "" && n.current.ID != id) {
		n.mu.Unlock()
		return false
	}
	toast := *n.current
	n.current = nil
	if n.timer != nil {
		n.timer.Stop()
		n.timer = nil
	}
	n.mu.Unlock()

	n.events.publish(entity.EventToastDismissed, map[string]string{"id": toast.ID, "reason": reason})
	return true
}
