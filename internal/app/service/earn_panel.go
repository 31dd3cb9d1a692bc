package service

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"sambv/internal/app/port"
	"sambv/internal/domain/entity"
	"sambv/internal/pkg/schedule"
	"sambv/internal/pkg/utils"
)

// EarnPanel lists yield vaults and simulates deposits into them.
type EarnPanel struct {
	awarder port.XPAwarder
	sched   *schedule.Scheduler
	events  sessionEvents
	delay   time.Duration

	mu      sync.Mutex
	status  entity.PanelStatus
	pending string
	vaults  []entity.Vault
}

// NewEarnPanel creates an earn panel over a private copy of vaults.
func NewEarnPanel(vaults []entity.Vault, awarder port.XPAwarder, sched *schedule.Scheduler, events sessionEvents, depositDelay time.Duration) *EarnPanel {
	own := make([]entity.Vault, len(vaults))
	copy(own, vaults)
	return &EarnPanel{
		awarder: awarder,
		sched:   sched,
		events:  events,
		delay:   depositDelay,
		status:  entity.PanelIdle,
		vaults:  own,
	}
}

// Deposit simulates supplying amount to the vault. Only presence is checked; the amount
// is coerced to a number, so malformed input deposits nothing but still completes.
func (p *EarnPanel) Deposit(vaultID, amount string) error {
	vaultID = strings.TrimSpace(vaultID)
	amount = strings.TrimSpace(amount)
	if vaultID == "" || amount == "" {
		return fmt.Errorf("%w: vault and amount", ErrMissingInput)
	}

	p.mu.Lock()
	if p.status == entity.PanelProcessing {
		p.mu.Unlock()
		return ErrPanelBusy
	}
	if p.indexLocked(vaultID) < 0 {
		p.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrUnknownVault, vaultID)
	}
	prev := p.status
	p.status = entity.PanelProcessing
	p.pending = vaultID
	p.mu.Unlock()

	value := utils.CoerceFloat(amount)
	scheduled := p.sched.After(p.delay, func() {
		p.mu.Lock()
		i := p.indexLocked(vaultID)
		name := vaultID
		if i >= 0 {
			p.vaults[i].UserPosition += value
			name = p.vaults[i].Name
		}
		p.status = entity.PanelSuccess
		p.pending = ""
		p.mu.Unlock()

		p.awarder.Award(uint64(entity.RewardVaultDeposit), "Deposited into "+name)
		p.notify()
	})
	if !scheduled {
		p.mu.Lock()
		p.status = prev
		p.pending = ""
		p.mu.Unlock()
		return ErrSessionClosed
	}
	p.notify()
	return nil
}

// Reset returns the panel to idle.
func (p *EarnPanel) Reset() {
	p.mu.Lock()
	if p.status != entity.PanelProcessing {
		p.status = entity.PanelIdle
	}
	p.mu.Unlock()
	p.notify()
}

// View renders the panel.
func (p *EarnPanel) View() entity.EarnView {
	p.mu.Lock()
	defer p.mu.Unlock()
	vaults := make([]entity.Vault, len(p.vaults))
	copy(vaults, p.vaults)
	return entity.EarnView{Status: p.status, Pending: p.pending, Vaults: vaults}
}

func (p *EarnPanel) indexLocked(id string) int {
	for i, v := range p.vaults {
		if v.ID == id {
			return i
		}
	}
	return -1
}

func (p *EarnPanel) notify() {
	p.events.publish(entity.EventPanelUpdated, panelUpdate{Tab: entity.TabEarn, View: p.View()})
}
