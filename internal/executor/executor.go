// Package executor is the operator-side daemon that provides the
// counterparty leg of every order it fulfils and collects settlement
// (spec §4.5). It is a pure dispatcher over status transitions: it
// never writes a *_tx_hash itself, only submits the on-chain call whose
// resulting event a watcher will later observe and record.
package executor

import (
	"context"
	"crypto/ecdsa"
	"encoding/hex"
	"fmt"
	"math/big"

	"github.com/charmbracelet/log"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/klingonswap/bridge/internal/chainmodel"
	"github.com/klingonswap/bridge/internal/order"
)

// ChainClient is the subset of *internal/htlc.Client the executor
// drives, narrowed for fake-driven testing.
type ChainClient interface {
	BlockNumber(ctx context.Context) (uint64, error)
	InitiateWithSignature(ctx context.Context, signer *ecdsa.PrivateKey, token, initiator, redeemer common.Address, timelock, amount *big.Int, secretHash [32]byte, signature []byte) (*types.Transaction, error)
	Redeem(ctx context.Context, signer *ecdsa.PrivateKey, orderID, secret [32]byte) (*types.Transaction, error)
	Refund(ctx context.Context, signer *ecdsa.PrivateKey, orderID [32]byte) (*types.Transaction, error)
}

// Executor polls pending orders and performs the operator's half of
// every order it is a counterparty to: destination initiate, source
// redeem on secret reveal, and destination refund on timelock expiry.
//
// Only EVM chains are driven here. A Bitcoin-side destination or
// refund would require the operator to construct and broadcast a
// funding or spending Bitcoin transaction from its own wallet - a
// capability this daemon does not have (see DESIGN.md's Open Question
// decision); those legs are left for the counterparty's own tooling,
// matching spec §4.5's explicit "Bitcoin executor out of scope" carve-out.
type Executor struct {
	clients map[chainmodel.ChainId]ChainClient
	signer  *ecdsa.PrivateKey
	store   order.Store
	log     *log.Logger
}

func New(clients map[chainmodel.ChainId]ChainClient, signer *ecdsa.PrivateKey, store order.Store, logger *log.Logger) *Executor {
	return &Executor{clients: clients, signer: signer, store: store, log: logger}
}

// Poll is the scheduler.Body: scan pending orders, recompute status,
// and dispatch the one action (if any) that status calls for.
func (e *Executor) Poll(ctx context.Context) error {
	pending, err := e.store.ListPending(ctx)
	if err != nil {
		return fmt.Errorf("executor: listing pending orders: %w", err)
	}

	for _, o := range pending {
		e.dispatch(ctx, o)
	}
	return nil
}

func (e *Executor) dispatch(ctx context.Context, o *order.Order) {
	status := order.Project(o)

	switch status {
	case order.StatusDepositConfirmed:
		e.initiateDestination(ctx, o)
	case order.StatusCounterPartyRedeemed:
		e.redeemSource(ctx, o)
	}

	e.maybeRefundDestination(ctx, o)
}

// initiateDestination submits the destination-side initiate once the
// source deposit has confirmed. Idempotent by field-exists pre-check:
// if a restart finds initiate_tx_hash already set, it is skipped.
func (e *Executor) initiateDestination(ctx context.Context, o *order.Order) {
	dst := &o.DestinationSwap
	if dst.IsInitiated() {
		return
	}

	client, ok := e.clients[dst.Chain]
	if !ok {
		e.log.Debug("executor: no EVM client for destination chain, skipping", "create_id", o.CreateID, "chain", dst.Chain)
		return
	}

	secretHash := [32]byte(dst.SecretHash)
	tx, err := client.InitiateWithSignature(
		ctx, e.signer,
		common.HexToAddress(dst.TokenAddress),
		common.HexToAddress(dst.Initiator),
		common.HexToAddress(dst.Redeemer),
		new(big.Int).SetUint64(dst.Timelock),
		dst.Amount.Big(),
		secretHash,
		nil,
	)
	if err != nil {
		e.log.Error("executor: destination initiate failed", "create_id", o.CreateID, "err", err)
		return
	}
	e.log.Info("executor: submitted destination initiate", "create_id", o.CreateID, "tx", tx.Hash().Hex())
}

// redeemSource reveals the secret (observed on the destination leg) on
// the source chain. Per spec, a Bitcoin source is already projected as
// Completed once the destination redeems, so this only ever fires for
// an EVM source.
func (e *Executor) redeemSource(ctx context.Context, o *order.Order) {
	src := &o.SourceSwap
	dst := &o.DestinationSwap
	if src.IsRedeemed() || dst.Secret == nil {
		return
	}

	client, ok := e.clients[src.Chain]
	if !ok {
		e.log.Debug("executor: no EVM client for source chain, skipping", "create_id", o.CreateID, "chain", src.Chain)
		return
	}

	orderID, err := swapIDTo32(src.SwapID)
	if err != nil {
		e.log.Error("executor: malformed source swap_id", "create_id", o.CreateID, "err", err)
		return
	}

	tx, err := client.Redeem(ctx, e.signer, orderID, [32]byte(*dst.Secret))
	if err != nil {
		e.log.Error("executor: source redeem failed", "create_id", o.CreateID, "err", err)
		return
	}
	e.log.Info("executor: submitted source redeem", "create_id", o.CreateID, "tx", tx.Hash().Hex())
}

// maybeRefundDestination refunds the destination leg the operator
// funded if its relative timelock has elapsed without the expected
// user redeem, per the state diagram's Refundable transition.
func (e *Executor) maybeRefundDestination(ctx context.Context, o *order.Order) {
	dst := &o.DestinationSwap
	if !dst.IsInitiated() || dst.IsRedeemed() || dst.IsRefunded() || dst.InitiateBlockNumber == nil {
		return
	}

	client, ok := e.clients[dst.Chain]
	if !ok {
		return
	}

	head, err := client.BlockNumber(ctx)
	if err != nil {
		e.log.Warn("executor: reading chain head for refund check failed", "create_id", o.CreateID, "err", err)
		return
	}
	deadline := *dst.InitiateBlockNumber + dst.Timelock
	if head < deadline {
		return
	}

	orderID, err := swapIDTo32(dst.SwapID)
	if err != nil {
		e.log.Error("executor: malformed destination swap_id", "create_id", o.CreateID, "err", err)
		return
	}

	tx, err := client.Refund(ctx, e.signer, orderID)
	if err != nil {
		e.log.Error("executor: destination refund failed", "create_id", o.CreateID, "err", err)
		return
	}
	e.log.Info("executor: submitted destination refund", "create_id", o.CreateID, "head", head, "deadline", deadline, "tx", tx.Hash().Hex())
}

func swapIDTo32(swapID string) ([32]byte, error) {
	var out [32]byte
	b, err := hex.DecodeString(swapID)
	if err != nil {
		return out, err
	}
	if len(b) != 32 {
		return out, fmt.Errorf("executor: swap_id %q is not 32 bytes", swapID)
	}
	copy(out[:], b)
	return out, nil
}
