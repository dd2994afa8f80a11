package httpapi

import (
	"context"
	"crypto/ecdsa"
	"math/big"

	"github.com/btcsuite/btcd/chaincfg"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// EVMChainClient is the subset of *internal/htlc.Client the Orderbook
// drives: deriving swap_id/deposit_address at order-creation time and
// relaying user-signed attestations afterwards. Narrowed here, as in
// internal/evmwatch and internal/executor, so tests can fake it.
type EVMChainClient interface {
	SwapAddress() common.Address
	ComputeOrderID(ctx context.Context, token, initiator, redeemer common.Address, timelock, amount *big.Int, secretHash [32]byte) ([32]byte, error)
	GetERC20Address(ctx context.Context, token, refundAddress, redeemer common.Address, timelock, amount *big.Int, secretHash [32]byte) (common.Address, error)
	InitiateWithSignature(ctx context.Context, signer *ecdsa.PrivateKey, token, initiator, redeemer common.Address, timelock, amount *big.Int, secretHash [32]byte, signature []byte) (*types.Transaction, error)
	Redeem(ctx context.Context, signer *ecdsa.PrivateKey, orderID, secret [32]byte) (*types.Transaction, error)
}

// BitcoinNetwork carries the chain params needed to encode a P2TR
// deposit address for one Bitcoin ChainId.
type BitcoinNetwork struct {
	Params *chaincfg.Params
}
