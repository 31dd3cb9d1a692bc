package client

import (
	"context"
	"fmt"
	"sync"
	"time"

	"sambv/internal/app/port"
	"sambv/internal/domain/entity"
)

// LazyEVMClient dials the chain on first use and keeps the connection afterwards.
// A failed dial is retried on the next call.
type LazyEVMClient struct {
	netDef            entity.NetworkDefinition
	connectionTimeout time.Duration
	rpcCallTimeout    time.Duration
	maxConcurrency    int
	logger            port.Logger

	mu     sync.Mutex
	client *EVMClient
}

var _ port.BlockchainClient = (*LazyEVMClient)(nil)

// NewLazyEVMClient creates a client for netDef without connecting.
func NewLazyEVMClient(netDef entity.NetworkDefinition, connectionTimeout, rpcCallTimeout time.Duration, maxConcurrency int, l port.Logger) *LazyEVMClient {
	return &LazyEVMClient{
		netDef:            netDef,
		connectionTimeout: connectionTimeout,
		rpcCallTimeout:    rpcCallTimeout,
		maxConcurrency:    maxConcurrency,
		logger:            l,
	}
}

// GetBalances implements port.BlockchainClient.
func (p *LazyEVMClient) GetBalances(ctx context.Context, requests []entity.BalanceRequestItem) ([]entity.BalanceResultItem, error) {
	c, err := p.get(ctx)
	if err != nil {
		return nil, err
	}
	return c.GetBalances(ctx, requests)
}

// Definition implements port.BlockchainClient.
func (p *LazyEVMClient) Definition() entity.NetworkDefinition {
	return p.netDef
}

// Close drops the connection if one was made.
func (p *LazyEVMClient) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.client != nil {
		p.client.Close()
		p.client = nil
	}
}

func (p *LazyEVMClient) get(ctx context.Context) (*EVMClient, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.client != nil {
		return p.client, nil
	}

	p.logger.Info("Creating new EVM client", "network", p.netDef.Name, "rpc", p.netDef.RPCURL)
	dialCtx, cancel := context.WithTimeout(ctx, p.connectionTimeout)
	defer cancel()
	c, err := NewEVMClient(dialCtx, p.netDef, p.rpcCallTimeout, p.maxConcurrency)
	if err != nil {
		p.logger.Error("Failed to create EVM client", "network", p.netDef.Name, "error", err)
		return nil, fmt.Errorf("failed to create EVM client for %s: %w", p.netDef.Name, err)
	}
	p.client = c
	return c, nil
}
