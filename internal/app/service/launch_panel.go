package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"sambv/internal/app/port"
	"sambv/internal/domain/entity"
	"sambv/internal/pkg/schedule"

	"github.com/google/uuid"
)

// LaunchPanel simulates deploying a token and sharing the launch.
type LaunchPanel struct {
	awarder port.XPAwarder
	host    port.HostFrame
	sched   *schedule.Scheduler
	events  sessionEvents
	delay   time.Duration
	logger  port.Logger

	mu       sync.Mutex
	status   entity.PanelStatus
	name     string
	ticker   string
	launched []entity.LaunchedToken
}

// NewLaunchPanel creates an idle launch panel.
func NewLaunchPanel(awarder port.XPAwarder, host port.HostFrame, sched *schedule.Scheduler, events sessionEvents, launchDelay time.Duration, l port.Logger) *LaunchPanel {
	return &LaunchPanel{
		awarder:  awarder,
		host:     host,
		sched:    sched,
		events:   events,
		delay:    launchDelay,
		logger:   l,
		status:   entity.PanelIdle,
		launched: []entity.LaunchedToken{},
	}
}

// SetForm stores the draft name and ticker. The ticker is upper-cased.
func (p *LaunchPanel) SetForm(name, ticker string) {
	p.mu.Lock()
	p.name = strings.TrimSpace(name)
	p.ticker = strings.ToUpper(strings.TrimSpace(ticker))
	p.mu.Unlock()
	p.notify()
}

// Launch deploys a token after the simulated delay. Both name and ticker are required.
// The form is cleared once the deployment completes.
func (p *LaunchPanel) Launch(name, ticker string) error {
	name = strings.TrimSpace(name)
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if name == "" || ticker == "" {
		return fmt.Errorf("%w: name and ticker", ErrMissingInput)
	}

	p.mu.Lock()
	if p.status == entity.PanelProcessing {
		p.mu.Unlock()
		return ErrPanelBusy
	}
	p.name, p.ticker = name, ticker
	prev := p.status
	p.status = entity.PanelProcessing
	p.mu.Unlock()

	scheduled := p.sched.After(p.delay, func() {
		token := entity.LaunchedToken{
			ID:         uuid.NewString(),
			Name:       name,
			Ticker:     ticker,
			DeployedAt: p.sched.Clock().Now().UnixMilli(),
		}
		p.mu.Lock()
		p.launched = append([]entity.LaunchedToken{token}, p.launched...)
		p.name, p.ticker = "", ""
		p.status = entity.PanelSuccess
		p.mu.Unlock()

		p.awarder.Award(uint64(entity.RewardTokenLaunch), "Deployed Token: $"+ticker)
		p.notify()
	})
	if !scheduled {
		p.mu.Lock()
		p.status = prev
		p.mu.Unlock()
		return ErrSessionClosed
	}
	p.notify()
	return nil
}

// Share composes a cast announcing a launched token. An empty id shares the latest launch.
func (p *LaunchPanel) Share(ctx context.Context, tokenID string) error {
	p.mu.Lock()
	idx := -1
	for i, t := range p.launched {
		if tokenID == "" || t.ID == tokenID {
			idx = i
			break
		}
	}
	if idx < 0 {
		p.mu.Unlock()
		return ErrNothingToShare
	}
	token := p.launched[idx]
	p.mu.Unlock()
	if token.Shared {
		return ErrAlreadyShared
	}

	text := fmt.Sprintf("I just deployed $%s (%s) on Base with SAMBV", token.Ticker, token.Name)
	if err := p.host.ComposeCast(ctx, text, nil); err != nil {
		p.logger.Warn("Compose cast failed", "ticker", token.Ticker, "error", err)
		return fmt.Errorf("share launch: %w", err)
	}

	p.mu.Lock()
	for i := range p.launched {
		if p.launched[i].ID == token.ID {
			if p.launched[i].Shared {
				p.mu.Unlock()
				return ErrAlreadyShared
			}
			p.launched[i].Shared = true
		}
	}
	p.mu.Unlock()

	p.awarder.Award(uint64(entity.RewardShareLaunch), "Shared launch: $"+token.Ticker)
	p.notify()
	return nil
}

// Reset returns the panel to idle.
func (p *LaunchPanel) Reset() {
	p.mu.Lock()
	if p.status != entity.PanelProcessing {
		p.status = entity.PanelIdle
	}
	p.mu.Unlock()
	p.notify()
}

// View renders the panel.
func (p *LaunchPanel) View() entity.LaunchView {
	p.mu.Lock()
	defer p.mu.Unlock()
	launched := make([]entity.LaunchedToken, len(p.launched))
	copy(launched, p.launched)
	return entity.LaunchView{Status: p.status, Name: p.name, Ticker: p.ticker, Launched: launched}
}

func (p *LaunchPanel) notify() {
	p.events.publish(entity.EventPanelUpdated, panelUpdate{Tab: entity.TabLaunch, View: p.View()})
}
