package httpapi

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/ethereum/go-ethereum/common"

	"github.com/klingonswap/bridge/internal/bridgeerr"
	"github.com/klingonswap/bridge/internal/btchtlc"
	"github.com/klingonswap/bridge/internal/chainmodel"
	"github.com/klingonswap/bridge/internal/config"
	"github.com/klingonswap/bridge/internal/order"
	"github.com/klingonswap/bridge/pkg/helpers"
)

// TimelockConfig holds the relative (EVM) / absolute (Bitcoin) lock
// durations assigned to new orders. Destination is shorter than source
// so the operator always has room to redeem the source leg with the
// revealed secret before the user could refund an expired destination
// HTLC - the standard cross-chain atomic swap safety margin.
type TimelockConfig struct {
	Source      uint64
	Destination uint64
}

// DefaultTimelockConfig mirrors the values already exercised by the
// executor's dispatch tests (source 288 blocks, destination 144).
func DefaultTimelockConfig() TimelockConfig {
	return TimelockConfig{Source: 288, Destination: 144}
}

// Builder derives swap_id, deposit_address, and htlc_address for both
// legs of a new order and assembles the persisted Order, per spec
// §4.1's "derives swap_id and deposit_address for each side."
type Builder struct {
	operator  config.OperatorIdentity
	evm       map[chainmodel.ChainId]EVMChainClient
	bitcoin   map[chainmodel.ChainId]BitcoinNetwork
	timelocks TimelockConfig
	now       func() time.Time
}

func NewBuilder(operator config.OperatorIdentity, evm map[chainmodel.ChainId]EVMChainClient, bitcoin map[chainmodel.ChainId]BitcoinNetwork, timelocks TimelockConfig) *Builder {
	return &Builder{operator: operator, evm: evm, bitcoin: bitcoin, timelocks: timelocks, now: time.Now}
}

// Build validates a CreateOrder request and derives the full Order,
// including both swaps' swap_id/deposit_address/htlc_address. It does
// not persist anything - the caller does that via order.Store.Create.
func (b *Builder) Build(ctx context.Context, req order.CreateOrder) (*order.Order, error) {
	srcAsset, ok := chainmodel.GetAsset(req.From)
	if !ok {
		return nil, bridgeerr.UnsupportedAsset("unsupported asset %q", req.From)
	}
	dstAsset, ok := chainmodel.GetAsset(req.To)
	if !ok {
		return nil, bridgeerr.UnsupportedAsset("unsupported asset %q", req.To)
	}
	if !req.SourceAmount.IsPositive() {
		return nil, bridgeerr.InvalidRequest("source_amount must be positive")
	}
	if !req.DestinationAmount.IsPositive() {
		return nil, bridgeerr.InvalidRequest("destination_amount must be positive")
	}
	if req.InitiatorSourceAddress == "" || req.InitiatorDestinationAddress == "" {
		return nil, bridgeerr.InvalidRequest("initiator addresses are required")
	}

	srcChain := req.From.Chain()
	dstChain := req.To.Chain()
	srcParams := chainmodel.MustGet(srcChain)
	dstParams := chainmodel.MustGet(dstChain)

	if err := validateAddress(srcParams.Kind, req.InitiatorSourceAddress); err != nil {
		return nil, bridgeerr.InvalidRequest("initiator_source_address: %v", err)
	}
	if err := validateAddress(dstParams.Kind, req.InitiatorDestinationAddress); err != nil {
		return nil, bridgeerr.InvalidRequest("initiator_destination_address: %v", err)
	}

	req.CreatedAt = b.now()

	createID, err := req.CreateID()
	if err != nil {
		return nil, bridgeerr.Wrap(bridgeerr.KindInternal, "computing create_id", err)
	}

	srcSwap, err := b.buildSwap(ctx, srcParams, srcChain, req.InitiatorSourceAddress, b.operatorAddress(srcParams.Kind), srcAsset, req.SourceAmount, req.SecretHash, b.timelocks.Source)
	if err != nil {
		return nil, fmt.Errorf("httpapi: deriving source swap: %w", err)
	}
	dstSwap, err := b.buildSwap(ctx, dstParams, dstChain, b.operatorAddress(dstParams.Kind), req.InitiatorDestinationAddress, dstAsset, req.DestinationAmount, req.SecretHash, b.timelocks.Destination)
	if err != nil {
		return nil, fmt.Errorf("httpapi: deriving destination swap: %w", err)
	}

	return &order.Order{
		CreateID:        createID,
		CreateOrder:     req,
		SourceSwap:      *srcSwap,
		DestinationSwap: *dstSwap,
		CreatedAt:       req.CreatedAt,
	}, nil
}

func (b *Builder) operatorAddress(kind chainmodel.Kind) string {
	if kind == chainmodel.KindBitcoin {
		return b.operator.BitcoinPubKeyHex
	}
	return b.operator.EVMAddress
}

// buildSwap derives one leg's swap_id, deposit_address, and
// htlc_address. initiator funds the leg, redeemer collects it by
// revealing the secret.
func (b *Builder) buildSwap(ctx context.Context, params *chainmodel.ChainParams, chain chainmodel.ChainId, initiator, redeemer string, asset *chainmodel.AssetDescriptor, amount chainmodel.Amount, secretHash [32]byte, timelock uint64) (*order.Swap, error) {
	if params.Kind == chainmodel.KindBitcoin {
		return b.buildBitcoinSwap(chain, initiator, redeemer, asset, amount, secretHash, timelock)
	}
	return b.buildEVMSwap(ctx, chain, initiator, redeemer, asset, amount, secretHash, timelock)
}

func (b *Builder) buildEVMSwap(ctx context.Context, chain chainmodel.ChainId, initiator, redeemer string, asset *chainmodel.AssetDescriptor, amount chainmodel.Amount, secretHash [32]byte, timelock uint64) (*order.Swap, error) {
	client, ok := b.evm[chain]
	if !ok {
		return nil, fmt.Errorf("no EVM client configured for chain %q", chain)
	}

	token := common.Address{}
	if asset.TokenAddress != "" {
		token = common.HexToAddress(asset.TokenAddress)
	}
	initiatorAddr := common.HexToAddress(initiator)
	redeemerAddr := common.HexToAddress(redeemer)
	timelockBig := new(big.Int).SetUint64(timelock)

	swapID, err := client.ComputeOrderID(ctx, token, initiatorAddr, redeemerAddr, timelockBig, amount.Big(), secretHash)
	if err != nil {
		return nil, bridgeerr.RpcTransient(fmt.Errorf("computing order id: %w", err))
	}
	depositAddr, err := client.GetERC20Address(ctx, token, initiatorAddr, redeemerAddr, timelockBig, amount.Big(), secretHash)
	if err != nil {
		return nil, bridgeerr.RpcTransient(fmt.Errorf("computing deposit address: %w", err))
	}

	return &order.Swap{
		SwapID:         fmt.Sprintf("%x", swapID),
		Chain:          chain,
		HTLCAddress:    client.SwapAddress().Hex(),
		TokenAddress:   asset.TokenAddress,
		Initiator:      initiator,
		Redeemer:       redeemer,
		DepositAddress: depositAddr.Hex(),
		Amount:         amount,
		Timelock:       timelock,
		SecretHash:     secretHash,
	}, nil
}

func (b *Builder) buildBitcoinSwap(chain chainmodel.ChainId, initiator, redeemer string, asset *chainmodel.AssetDescriptor, amount chainmodel.Amount, secretHash [32]byte, timelock uint64) (*order.Swap, error) {
	network, ok := b.bitcoin[chain]
	if !ok {
		return nil, fmt.Errorf("no Bitcoin network params configured for chain %q", chain)
	}

	initiatorKey, err := parsePubKeyHex(initiator)
	if err != nil {
		return nil, fmt.Errorf("initiator pubkey: %w", err)
	}
	redeemerKey, err := parsePubKeyHex(redeemer)
	if err != nil {
		return nil, fmt.Errorf("redeemer pubkey: %w", err)
	}

	tree, err := btchtlc.BuildScriptTree(btchtlc.Params{
		SecretHash:      secretHash,
		Timelock:        uint32(timelock),
		RedeemerPubKey:  redeemerKey,
		InitiatorPubKey: initiatorKey,
	})
	if err != nil {
		return nil, fmt.Errorf("building script tree: %w", err)
	}

	depositAddr, err := tree.Address(network.Params)
	if err != nil {
		return nil, fmt.Errorf("encoding deposit address: %w", err)
	}
	outputKey := tree.OutputKey()

	return &order.Swap{
		SwapID:         fmt.Sprintf("%x", outputKey),
		Chain:          chain,
		HTLCAddress:    depositAddr.EncodeAddress(),
		Initiator:      initiator,
		Redeemer:       redeemer,
		DepositAddress: depositAddr.EncodeAddress(),
		Amount:         amount,
		Timelock:       timelock,
		SecretHash:     secretHash,
	}, nil
}

// validateAddress checks that an address string matches the format
// convention its chain kind expects: a hex EVM address, or a 32/33-byte
// secp256k1 pubkey hex for Bitcoin (spec §4.1 "addresses match
// chain-kind conventions").
func validateAddress(kind chainmodel.Kind, addr string) error {
	if kind == chainmodel.KindBitcoin {
		_, err := parsePubKeyHex(addr)
		return err
	}
	if !common.IsHexAddress(addr) {
		return fmt.Errorf("%q is not a valid EVM address", addr)
	}
	return nil
}

func parsePubKeyHex(s string) (*btcec.PublicKey, error) {
	raw, err := helpers.HexToBytes(s)
	if err != nil {
		return nil, err
	}
	if len(raw) == 32 {
		return schnorr.ParsePubKey(raw)
	}
	return btcec.ParsePubKey(raw)
}
