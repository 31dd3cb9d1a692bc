package service

import (
	"context"
	"sync"

	"sambv/internal/domain/entity"
)

// TabRouter tracks the active tab of a session and renders panel views.
type TabRouter struct {
	swap      *SwapPanel
	earn      *EarnPanel
	launch    *LaunchPanel
	portfolio *PortfolioPanel
	profile   *ProfilePanel

	mu     sync.Mutex
	active entity.Tab
}

// NewTabRouter creates a router that starts on the swap tab.
func NewTabRouter(swap *SwapPanel, earn *EarnPanel, launch *LaunchPanel, portfolio *PortfolioPanel, profile *ProfilePanel) *TabRouter {
	return &TabRouter{
		swap:      swap,
		earn:      earn,
		launch:    launch,
		portfolio: portfolio,
		profile:   profile,
		active:    entity.TabSwap,
	}
}

// Select makes name the active tab. Unknown names select the swap tab.
func (r *TabRouter) Select(name string) entity.Tab {
	tab, _ := entity.ParseTab(name)
	r.mu.Lock()
	r.active = tab
	r.mu.Unlock()
	return tab
}

// Active returns the active tab.
func (r *TabRouter) Active() entity.Tab {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.active
}

// Render returns the view of the named tab; an empty name renders the active tab.
func (r *TabRouter) Render(ctx context.Context, name string) (entity.Tab, any) {
	tab := r.Active()
	if name != "" {
		tab, _ = entity.ParseTab(name)
	}
	switch tab {
	case entity.TabEarn:
		return tab, r.earn.View()
	case entity.TabLaunch:
		return tab, r.launch.View()
	case entity.TabPortfolio:
		return tab, r.portfolio.View(ctx)
	case entity.TabProfile:
		return tab, r.profile.View()
	default:
		return entity.TabSwap, r.swap.View()
	}
}
