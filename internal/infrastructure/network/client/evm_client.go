package client

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"sambv/internal/app/port"
	"sambv/internal/domain/entity"
	"sambv/internal/pkg/utils"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
	"golang.org/x/sync/errgroup"
)

// maxBatchSize caps the number of calls sent in one JSON-RPC batch.
const maxBatchSize = 50

// EVMClient implements the port.BlockchainClient interface for EVM-compatible chains.
type EVMClient struct {
	ethClient      *ethclient.Client
	netDef         entity.NetworkDefinition
	rpcCallTimeout time.Duration
	maxConcurrency int
}

// ERC20 ABI minimal part for balanceOf
const erc20ABI = `[{"constant":true,"inputs":[{"name":"_owner","type":"address"}],"name":"balanceOf","outputs":[{"name":"balance","type":"uint256"}],"payable":false,"stateMutability":"view","type":"function"}]`

var (
	parsedERC20ABI  abi.ABI
	parsedERC20Once sync.Once
	erc20MethodID   []byte
)

func initParsedERC20ABI() {
	parsedERC20Once.Do(func() {
		var err error
		parsedERC20ABI, err = abi.JSON(strings.NewReader(erc20ABI))
		if err != nil {
			panic(fmt.Sprintf("failed to parse ERC20 ABI: %v", err))
		}
		balanceOfMethod, ok := parsedERC20ABI.Methods["balanceOf"]
		if !ok {
			panic("balanceOf method not found in parsed ERC20 ABI")
		}
		erc20MethodID = balanceOfMethod.ID
	})
}

// NewEVMClient dials the RPC endpoint of netDef. Batches larger than maxBatchSize are
// split and sent with at most maxConcurrency requests in flight.
func NewEVMClient(ctx context.Context, netDef entity.NetworkDefinition, rpcCallTimeout time.Duration, maxConcurrency int) (*EVMClient, error) {
	initParsedERC20ABI()
	if netDef.RPCURL == "" {
		return nil, fmt.Errorf("network %s has no RPC URL", netDef.Name)
	}
	client, err := ethclient.DialContext(ctx, netDef.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RPC %s: %w", netDef.RPCURL, err)
	}
	if maxConcurrency < 1 {
		maxConcurrency = 1
	}
	return &EVMClient{ethClient: client, netDef: netDef, rpcCallTimeout: rpcCallTimeout, maxConcurrency: maxConcurrency}, nil
}

// GetBalances fetches multiple balances using JSON-RPC batch requests.
func (c *EVMClient) GetBalances(ctx context.Context, requests []entity.BalanceRequestItem) ([]entity.BalanceResultItem, error) {
	if len(requests) == 0 {
		return []entity.BalanceResultItem{}, nil
	}

	batchElems := make([]rpc.BatchElem, len(requests))
	results := make([]entity.BalanceResultItem, len(requests))

	for i, reqItem := range requests {
		results[i] = entity.BalanceResultItem{
			WalletAddress: reqItem.WalletAddress,
			TokenAddress:  reqItem.TokenAddress,
			TokenSymbol:   reqItem.TokenSymbol,
			Decimals:      reqItem.TokenDecimals,
			IsNative:      reqItem.Type == entity.NativeBalanceRequest,
		}

		switch reqItem.Type {
		case entity.NativeBalanceRequest:
			batchElems[i] = rpc.BatchElem{
				Method: "eth_getBalance",
				Args:   []interface{}{common.HexToAddress(reqItem.WalletAddress), "latest"},
				Result: new(*hexutil.Big),
			}
		case entity.TokenBalanceRequest:
			paddedWalletAddress := common.LeftPadBytes(common.HexToAddress(reqItem.WalletAddress).Bytes(), 32)
			callData := append(append([]byte{}, erc20MethodID...), paddedWalletAddress...)

			callArgs := map[string]interface{}{
				"to":   common.HexToAddress(reqItem.TokenAddress),
				"data": hexutil.Bytes(callData),
			}
			batchElems[i] = rpc.BatchElem{
				Method: "eth_call",
				Args:   []interface{}{callArgs, "latest"},
				Result: new(hexutil.Bytes),
			}
		default:
			results[i].Error = fmt.Errorf("unknown balance request type: %v for %s", reqItem.Type, reqItem.TokenSymbol)
		}
	}

	rpcCallCtx, cancel := context.WithTimeout(ctx, c.rpcCallTimeout)
	defer cancel()

	if err := c.batchCall(rpcCallCtx, batchElems, results); err != nil {
		return results, fmt.Errorf("RPC batch call failed: %w", err)
	}

	for i, elem := range batchElems {
		if results[i].Error != nil {
			continue
		}
		if elem.Error != nil {
			results[i].Error = fmt.Errorf("failed to fetch %s for %s (wallet %s): %w",
				requests[i].TokenSymbol, requests[i].TokenAddress, requests[i].WalletAddress, elem.Error)
			continue
		}

		switch requests[i].Type {
		case entity.NativeBalanceRequest:
			if result, ok := elem.Result.(**hexutil.Big); ok && result != nil && *result != nil {
				results[i].Balance = (*big.Int)(*result)
			} else {
				results[i].Error = fmt.Errorf("failed to decode native balance for %s: unexpected type or nil result", requests[i].TokenSymbol)
			}
		case entity.TokenBalanceRequest:
			results[i].Balance, results[i].Error = decodeBalanceOf(requests[i].TokenSymbol, elem.Result)
		}

		if results[i].Error == nil {
			if results[i].Balance == nil {
				results[i].Balance = big.NewInt(0)
			}
			results[i].FormattedBalance = utils.FormatUnits(results[i].Balance, results[i].Decimals)
		}
	}
	return results, nil
}

// batchCall sends elems in chunks. Chunks whose transport failed mark their items as failed;
// the call only fails as a whole when every chunk failed.
func (c *EVMClient) batchCall(ctx context.Context, elems []rpc.BatchElem, results []entity.BalanceResultItem) error {
	rawRPCClient := c.ethClient.Client()

	var (
		mu       sync.Mutex
		failed   int
		firstErr error
	)
	chunks := 0
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.maxConcurrency)
	for start := 0; start < len(elems); start += maxBatchSize {
		end := min(start+maxBatchSize, len(elems))
		chunks++
		g.Go(func() error {
			if err := rawRPCClient.BatchCallContext(gctx, elems[start:end]); err != nil {
				mu.Lock()
				failed++
				if firstErr == nil {
					firstErr = err
				}
				for i := start; i < end; i++ {
					if results[i].Error == nil {
						results[i].Error = err
					}
				}
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	if failed == chunks {
		return firstErr
	}
	return nil
}

func decodeBalanceOf(symbol string, raw interface{}) (*big.Int, error) {
	result, ok := raw.(*hexutil.Bytes)
	if !ok || result == nil {
		return nil, fmt.Errorf("failed to decode token balance for %s: unexpected type or nil result", symbol)
	}
	if len(*result) == 0 {
		return big.NewInt(0), nil
	}
	unpacked, err := parsedERC20ABI.Unpack("balanceOf", *result)
	if err != nil {
		return nil, fmt.Errorf("failed to unpack balanceOf result for %s: %w. Raw: %s", symbol, err, hexutil.Encode(*result))
	}
	if len(unpacked) == 0 {
		return nil, fmt.Errorf("balanceOf unpack returned no data for %s", symbol)
	}
	balance, ok := unpacked[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("failed to assert unpacked balanceOf result to *big.Int for %s. Got: %T", symbol, unpacked[0])
	}
	return balance, nil
}

// Definition returns the network definition for this client.
func (c *EVMClient) Definition() entity.NetworkDefinition {
	return c.netDef
}

// Close releases the RPC connection.
func (c *EVMClient) Close() {
	c.ethClient.Close()
}

var _ port.BlockchainClient = (*EVMClient)(nil)
