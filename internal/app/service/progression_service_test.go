package service

import (
	"sync"
	"testing"
	"time"

	"sambv/internal/domain/entity"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestProgression(clk clock.Clock, pub *recordingPublisher) (*ProgressionService, *ToastNotifier) {
	toasts := NewToastNotifier("s1", clk, 2500*time.Millisecond, pub)
	return NewProgressionService("s1", clk, toasts, pub, testLogger), toasts
}

func TestAwardAppliesAndRaisesToast(t *testing.T) {
	clk := clock.NewMock()
	pub := &recordingPublisher{}
	svc, toasts := newTestProgression(clk, pub)
	defer toasts.Close()

	up := svc.Award(500, "Deployed Token: $TEST")

	assert.Equal(t, 4, up.State.Level)
	assert.Equal(t, uint64(250), up.State.CurrentXP)
	assert.Equal(t, uint64(1500), up.State.NextLevelXP)
	assert.Equal(t, 1, up.LevelsGained)
	assert.Equal(t, uint64(500), up.Toast.XP)
	assert.Equal(t, "Deployed Token: $TEST", up.Toast.Message)

	require.NotNil(t, toasts.Current())
	assert.Equal(t, up.Toast.ID, toasts.Current().ID)
	assert.Equal(t, 1, pub.Count(entity.EventXPUpdated))
	assert.Equal(t, 1, pub.Count(entity.EventToastRaised))
}

func TestAwardSerialisesConcurrentUpdates(t *testing.T) {
	svc, toasts := newTestProgression(clock.NewMock(), &recordingPublisher{})
	defer toasts.Close()

	var wg sync.WaitGroup
	for i := 0; i < 40; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			svc.Award(50, "Swapped ETH → USDC")
		}()
	}
	wg.Wait()

	st := svc.State()
	assert.Len(t, st.History, 40)
	assert.Equal(t, uint64(2000), st.EarnedXP())
	assert.Less(t, st.CurrentXP, st.NextLevelXP)
}

func TestConcurrentAwardsPublishInOrder(t *testing.T) {
	pub := &recordingPublisher{}
	svc, toasts := newTestProgression(clock.NewMock(), pub)
	defer toasts.Close()

	var wg sync.WaitGroup
	for i := 0; i < 40; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			svc.Award(25, "Shared swap")
		}()
	}
	wg.Wait()

	pub.mu.Lock()
	defer pub.mu.Unlock()
	last := 0
	for _, e := range pub.events {
		if e.Type != entity.EventXPUpdated {
			continue
		}
		update, ok := e.Payload.(entity.ProgressionUpdate)
		require.True(t, ok)
		require.Equal(t, last+1, len(update.State.History))
		last = len(update.State.History)
	}
	assert.Equal(t, 40, last)
}

func TestToastAutoDismisses(t *testing.T) {
	clk := clock.NewMock()
	pub := &recordingPublisher{}
	svc, toasts := newTestProgression(clk, pub)
	defer toasts.Close()

	svc.Award(100, "Deposited into USDC Vault")
	clk.Add(2499 * time.Millisecond)
	assert.NotNil(t, toasts.Current())

	clk.Add(time.Millisecond)
	require.Eventually(t, func() bool { return toasts.Current() == nil }, time.Second, 5*time.Millisecond)
	assert.Equal(t, 1, pub.Count(entity.EventToastDismissed))
}

func TestToastExplicitDismissWins(t *testing.T) {
	clk := clock.NewMock()
	pub := &recordingPublisher{}
	svc, toasts := newTestProgression(clk, pub)
	defer toasts.Close()

	up := svc.Award(100, "Shared launch: $TEST")
	assert.False(t, toasts.Dismiss("other-id"))
	assert.True(t, toasts.Dismiss(up.Toast.ID))
	assert.Nil(t, toasts.Current())

	clk.Add(3 * time.Second)
	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, 1, pub.Count(entity.EventToastDismissed))
}

func TestNewToastReplacesPrevious(t *testing.T) {
	clk := clock.NewMock()
	svc, toasts := newTestProgression(clk, &recordingPublisher{})
	defer toasts.Close()

	svc.Award(50, "first")
	clk.Add(2 * time.Second)
	second := svc.Award(50, "second")

	clk.Add(time.Second)
	time.Sleep(10 * time.Millisecond)
	require.NotNil(t, toasts.Current())
	assert.Equal(t, second.Toast.ID, toasts.Current().ID)

	clk.Add(1500 * time.Millisecond)
	require.Eventually(t, func() bool { return toasts.Current() == nil }, time.Second, 5*time.Millisecond)
}
