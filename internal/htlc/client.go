// Package htlc provides a Go client for the fixed AtomicSwap and Registry
// contracts (spec §6). It wraps the generated-style bindings in
// atomicswap_gen.go / registry_gen.go with the friendlier interface the
// UDA watcher, EVM watcher, and counterparty executor actually call.
package htlc

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"

	ethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
)

// Client wraps an ethclient connection plus bound AtomicSwap and Registry
// contracts for a single EVM chain.
type Client struct {
	eth      *ethclient.Client
	swap     *AtomicSwap
	registry *Registry
	chainID  *big.Int

	swapAddress     common.Address
	registryAddress common.Address
}

// Dial connects to rpcURL and binds both contracts at the given addresses.
func Dial(ctx context.Context, rpcURL string, swapAddress, registryAddress common.Address) (*Client, error) {
	eth, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, fmt.Errorf("htlc: failed to connect to RPC: %w", err)
	}

	swap, err := NewAtomicSwap(swapAddress, eth)
	if err != nil {
		return nil, fmt.Errorf("htlc: failed to bind AtomicSwap: %w", err)
	}
	registry, err := NewRegistry(registryAddress, eth)
	if err != nil {
		return nil, fmt.Errorf("htlc: failed to bind Registry: %w", err)
	}

	chainID, err := eth.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("htlc: failed to read chain ID: %w", err)
	}

	return &Client{
		eth:             eth,
		swap:            swap,
		registry:        registry,
		chainID:         chainID,
		swapAddress:     swapAddress,
		registryAddress: registryAddress,
	}, nil
}

func (c *Client) Close() { c.eth.Close() }

func (c *Client) ChainID() *big.Int { return c.chainID }

func (c *Client) EthClient() *ethclient.Client { return c.eth }

func (c *Client) SwapAddress() common.Address { return c.swapAddress }

func (c *Client) RegistryAddress() common.Address { return c.registryAddress }

// BlockNumber returns the latest block height, used by watchers to cap
// their poll range.
func (c *Client) BlockNumber(ctx context.Context) (uint64, error) {
	return c.eth.BlockNumber(ctx)
}

// Initiate submits the ERC-20 initiate call as the operator identity.
func (c *Client) Initiate(ctx context.Context, signer *ecdsa.PrivateKey, token, redeemer common.Address, timelock, amount *big.Int, secretHash [32]byte) (*types.Transaction, error) {
	auth, err := c.newTransactor(ctx, signer)
	if err != nil {
		return nil, err
	}
	return c.swap.Initiate(auth, token, redeemer, timelock, amount, secretHash)
}

// InitiateWithSignature relays a user-signed EIP-712 Initiate attestation
// (the Orderbook's /initiate endpoint), submitted by the operator signer
// but authorized by the user's signature.
func (c *Client) InitiateWithSignature(ctx context.Context, signer *ecdsa.PrivateKey, token, initiator, redeemer common.Address, timelock, amount *big.Int, secretHash [32]byte, signature []byte) (*types.Transaction, error) {
	auth, err := c.newTransactor(ctx, signer)
	if err != nil {
		return nil, err
	}
	return c.swap.InitiateWithSignature(auth, token, initiator, redeemer, timelock, amount, secretHash, signature)
}

// Redeem reveals the secret on this chain.
func (c *Client) Redeem(ctx context.Context, signer *ecdsa.PrivateKey, orderID, secret [32]byte) (*types.Transaction, error) {
	auth, err := c.newTransactor(ctx, signer)
	if err != nil {
		return nil, err
	}
	return c.swap.Redeem(auth, orderID, secret)
}

// Refund reclaims funds after the timelock has elapsed.
func (c *Client) Refund(ctx context.Context, signer *ecdsa.PrivateKey, orderID [32]byte) (*types.Transaction, error) {
	auth, err := c.newTransactor(ctx, signer)
	if err != nil {
		return nil, err
	}
	return c.swap.Refund(auth, orderID)
}

// GetERC20Address computes the deterministic deposit address for an
// EVM-source order, the same formula the Orderbook evaluates locally at
// order creation (spec §4.4 invariant 4).
func (c *Client) GetERC20Address(ctx context.Context, token, refundAddress, redeemer common.Address, timelock, amount *big.Int, secretHash [32]byte) (common.Address, error) {
	return c.registry.GetERC20Address(&bind.CallOpts{Context: ctx}, token, refundAddress, redeemer, timelock, amount, secretHash)
}

// ComputeOrderID computes the swap_id the contract will assign an EVM
// swap with the given parameters, the same pure function an initiate
// call derives on-chain - the Orderbook evaluates this locally so a
// swap's swap_id is known before the HTLC is ever initiated.
func (c *Client) ComputeOrderID(ctx context.Context, token, initiator, redeemer common.Address, timelock, amount *big.Int, secretHash [32]byte) ([32]byte, error) {
	return c.swap.ComputeOrderID(&bind.CallOpts{Context: ctx}, token, initiator, redeemer, timelock, amount, secretHash)
}

// CreateERC20SwapAddress deploys and activates the HTLC for a UDA whose
// balance has reached the required amount.
func (c *Client) CreateERC20SwapAddress(ctx context.Context, signer *ecdsa.PrivateKey, token, refundAddress, redeemer common.Address, timelock, amount *big.Int, secretHash [32]byte) (*types.Transaction, error) {
	auth, err := c.newTransactor(ctx, signer)
	if err != nil {
		return nil, err
	}
	return c.registry.CreateERC20SwapAddress(auth, token, refundAddress, redeemer, timelock, amount, secretHash)
}

// FilterInitiated, FilterRedeemed and FilterRefunded are the batch
// historical-log queries the EVM watcher drives over [fromBlock,
// toBlock] windows bounded by max_block_span (spec §4.2) - this client
// never subscribes over a websocket, it only ever polls ranges.
func (c *Client) FilterInitiated(ctx context.Context, fromBlock, toBlock uint64) ([]AtomicSwapInitiated, error) {
	opts := &bind.FilterOpts{Start: fromBlock, End: &toBlock, Context: ctx}
	return c.swap.FilterInitiated(opts, nil)
}

func (c *Client) FilterRedeemed(ctx context.Context, fromBlock, toBlock uint64) ([]AtomicSwapRedeemed, error) {
	opts := &bind.FilterOpts{Start: fromBlock, End: &toBlock, Context: ctx}
	return c.swap.FilterRedeemed(opts, nil)
}

func (c *Client) FilterRefunded(ctx context.Context, fromBlock, toBlock uint64) ([]AtomicSwapRefunded, error) {
	opts := &bind.FilterOpts{Start: fromBlock, End: &toBlock, Context: ctx}
	return c.swap.FilterRefunded(opts, nil)
}

func (c *Client) FilterUDACreated(ctx context.Context, fromBlock, toBlock uint64) ([]RegistryUDACreated, error) {
	opts := &bind.FilterOpts{Start: fromBlock, End: &toBlock, Context: ctx}
	return c.registry.FilterUDACreated(opts, nil)
}

func (c *Client) FilterNativeUDACreated(ctx context.Context, fromBlock, toBlock uint64) ([]RegistryNativeUDACreated, error) {
	opts := &bind.FilterOpts{Start: fromBlock, End: &toBlock, Context: ctx}
	return c.registry.FilterNativeUDACreated(opts, nil)
}

// ERC20BalanceOf reads an ERC-20 balance via the standard balanceOf
// selector, used by the UDA watcher to poll deposit addresses.
func (c *Client) ERC20BalanceOf(ctx context.Context, token, account common.Address) (*big.Int, error) {
	data := make([]byte, 36)
	copy(data[0:4], []byte{0x70, 0xa0, 0x82, 0x31}) // balanceOf(address)
	copy(data[16:36], account.Bytes())

	msg := ethereum.CallMsg{To: &token, Data: data}
	result, err := c.eth.CallContract(ctx, msg, nil)
	if err != nil {
		return nil, fmt.Errorf("htlc: balanceOf call failed: %w", err)
	}
	return new(big.Int).SetBytes(result), nil
}

func (c *Client) newTransactor(ctx context.Context, signer *ecdsa.PrivateKey) (*bind.TransactOpts, error) {
	auth, err := bind.NewKeyedTransactorWithChainID(signer, c.chainID)
	if err != nil {
		return nil, fmt.Errorf("htlc: failed to create transactor: %w", err)
	}
	auth.Context = ctx
	return auth, nil
}

// AddressFromPrivateKey derives the operator's address from its signing key.
func AddressFromPrivateKey(key *ecdsa.PrivateKey) common.Address {
	return crypto.PubkeyToAddress(key.PublicKey)
}

// ParsePrivateKey parses a hex-encoded operator signing key.
func ParsePrivateKey(hexKey string) (*ecdsa.PrivateKey, error) {
	return crypto.HexToECDSA(hexKey)
}
