package port

import (
	"context"

	"sambv/internal/domain/entity"
)

// BlockchainClient reads balances from an EVM chain.
type BlockchainClient interface {
	// GetBalances resolves every request; per-item failures are reported in the result's Error.
	GetBalances(ctx context.Context, requests []entity.BalanceRequestItem) ([]entity.BalanceResultItem, error)

	// Definition returns the network definition associated with this client.
	Definition() entity.NetworkDefinition
}

// NetworkDefinitionProvider exposes the chain the mini-app runs on.
type NetworkDefinitionProvider interface {
	Current() entity.NetworkDefinition
	GetNetworkDefinitionByName(nameOrIdentifier string) (entity.NetworkDefinition, bool)
}
