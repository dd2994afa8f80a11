// Package evmwatch consumes AtomicSwap and Registry event logs on an EVM
// chain and projects them onto Order rows (spec §4.2). It never
// subscribes over a websocket; it only ever polls bounded block ranges,
// the way the htlc client's Filter* methods are built to be called.
package evmwatch

import (
	"context"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/klingonswap/bridge/internal/chainmodel"
	"github.com/klingonswap/bridge/internal/htlc"
	"github.com/klingonswap/bridge/internal/order"
	"github.com/klingonswap/bridge/internal/secretkey"
)

// FatalHaltError wraps a batch failure that has exhausted its retry
// budget. Callers (cmd/evmwatcher) treat this as unrecoverable and stop
// the process rather than spinning forever against a broken RPC.
type FatalHaltError struct {
	FromBlock, ToBlock uint64
	Err                error
}

func (e *FatalHaltError) Error() string {
	return fmt.Sprintf("evmwatch: batch [%d,%d] failed permanently: %v", e.FromBlock, e.ToBlock, e.Err)
}

func (e *FatalHaltError) Unwrap() error { return e.Err }

// ChainClient is the subset of *htlc.Client the watcher calls, narrowed
// to an interface so it can be driven by a fake in tests without an RPC
// endpoint.
type ChainClient interface {
	BlockNumber(ctx context.Context) (uint64, error)
	FilterInitiated(ctx context.Context, fromBlock, toBlock uint64) ([]htlc.AtomicSwapInitiated, error)
	FilterRedeemed(ctx context.Context, fromBlock, toBlock uint64) ([]htlc.AtomicSwapRedeemed, error)
	FilterRefunded(ctx context.Context, fromBlock, toBlock uint64) ([]htlc.AtomicSwapRefunded, error)
	FilterUDACreated(ctx context.Context, fromBlock, toBlock uint64) ([]htlc.RegistryUDACreated, error)
	FilterNativeUDACreated(ctx context.Context, fromBlock, toBlock uint64) ([]htlc.RegistryNativeUDACreated, error)
}

// Watcher polls one EVM chain's AtomicSwap and Registry contracts for
// Initiated/Redeemed/Refunded/UDACreated events.
type Watcher struct {
	chain        chainmodel.ChainId
	client       ChainClient
	store        order.Store
	maxBlockSpan uint64
	retryDelay   time.Duration
	maxRetries   int
	log          *log.Logger

	lastProcessed uint64
	retryCount    int
}

// NewWatcher builds a watcher that starts scanning at startBlock - 1
// (i.e. its first batch begins at startBlock).
func NewWatcher(chain chainmodel.ChainId, client ChainClient, store order.Store, startBlock, maxBlockSpan uint64, retryDelay time.Duration, maxRetries int, logger *log.Logger) *Watcher {
	return &Watcher{
		chain:         chain,
		client:        client,
		store:         store,
		maxBlockSpan:  maxBlockSpan,
		retryDelay:    retryDelay,
		maxRetries:    maxRetries,
		log:           logger,
		lastProcessed: startBlock - 1,
	}
}

// Poll is the scheduler.Body: read the chain head, process every
// unprocessed batch up to max_block_span blocks at a time, advancing
// last_processed only after a whole batch succeeds.
func (w *Watcher) Poll(ctx context.Context) error {
	head, err := w.client.BlockNumber(ctx)
	if err != nil {
		return fmt.Errorf("evmwatch[%s]: reading chain head: %w", w.chain, err)
	}

	for w.lastProcessed < head {
		from := w.lastProcessed + 1
		to := from + w.maxBlockSpan - 1
		if to > head {
			to = head
		}

		if err := w.processBatch(ctx, from, to); err != nil {
			w.retryCount++
			w.log.Error("evmwatch: batch failed", "chain", w.chain, "from", from, "to", to, "attempt", w.retryCount, "err", err)
			if w.retryCount > w.maxRetries {
				return &FatalHaltError{FromBlock: from, ToBlock: to, Err: err}
			}
			if sleepErr := sleep(ctx, w.retryDelay); sleepErr != nil {
				return sleepErr
			}
			continue
		}

		w.retryCount = 0
		w.lastProcessed = to
	}
	return nil
}

func (w *Watcher) processBatch(ctx context.Context, from, to uint64) error {
	initiated, err := w.client.FilterInitiated(ctx, from, to)
	if err != nil {
		return fmt.Errorf("filtering Initiated: %w", err)
	}
	for _, ev := range initiated {
		w.projectInitiated(ctx, ev)
	}

	redeemed, err := w.client.FilterRedeemed(ctx, from, to)
	if err != nil {
		return fmt.Errorf("filtering Redeemed: %w", err)
	}
	for _, ev := range redeemed {
		w.projectRedeemed(ctx, ev)
	}

	refunded, err := w.client.FilterRefunded(ctx, from, to)
	if err != nil {
		return fmt.Errorf("filtering Refunded: %w", err)
	}
	for _, ev := range refunded {
		w.projectRefunded(ctx, ev)
	}

	udaCreated, err := w.client.FilterUDACreated(ctx, from, to)
	if err != nil {
		return fmt.Errorf("filtering UDACreated: %w", err)
	}
	for _, ev := range udaCreated {
		w.projectUDACreated(ctx, ev.UdaAddress.Hex(), ev.HtlcAddress.Hex())
	}

	nativeUdaCreated, err := w.client.FilterNativeUDACreated(ctx, from, to)
	if err != nil {
		return fmt.Errorf("filtering NativeUDACreated: %w", err)
	}
	for _, ev := range nativeUdaCreated {
		w.projectUDACreated(ctx, ev.UdaAddress.Hex(), ev.HtlcAddress.Hex())
	}

	return nil
}

func (w *Watcher) projectInitiated(ctx context.Context, ev htlc.AtomicSwapInitiated) {
	swapID := hex.EncodeToString(ev.OrderID[:])
	o, side, err := w.locate(ctx, swapID)
	if err != nil {
		return
	}
	block := ev.Raw.BlockNumber
	if err := w.store.ApplySwapUpdate(ctx, o.CreateID, side, order.SwapUpdate{
		SwapID:              swapID,
		InitiateTxHash:      ev.Raw.TxHash.Hex(),
		InitiateBlockNumber: &block,
	}); err != nil {
		w.log.Error("evmwatch: applying Initiated update", "swap_id", swapID, "err", err)
	}
}

func (w *Watcher) projectRedeemed(ctx context.Context, ev htlc.AtomicSwapRedeemed) {
	swapID := hex.EncodeToString(ev.OrderID[:])
	o, side, err := w.locate(ctx, swapID)
	if err != nil {
		return
	}
	block := ev.Raw.BlockNumber
	secret, err := secretkey.SecretFromBytes(ev.Secret[:])
	if err != nil {
		w.log.Error("evmwatch: malformed revealed secret", "swap_id", swapID, "err", err)
		return
	}
	if err := w.store.ApplySwapUpdate(ctx, o.CreateID, side, order.SwapUpdate{
		SwapID:            swapID,
		RedeemTxHash:      ev.Raw.TxHash.Hex(),
		RedeemBlockNumber: &block,
		Secret:            &secret,
	}); err != nil {
		w.log.Error("evmwatch: applying Redeemed update", "swap_id", swapID, "err", err)
	}
}

func (w *Watcher) projectRefunded(ctx context.Context, ev htlc.AtomicSwapRefunded) {
	swapID := hex.EncodeToString(ev.OrderID[:])
	o, side, err := w.locate(ctx, swapID)
	if err != nil {
		return
	}
	block := ev.Raw.BlockNumber
	if err := w.store.ApplySwapUpdate(ctx, o.CreateID, side, order.SwapUpdate{
		SwapID:            swapID,
		RefundTxHash:      ev.Raw.TxHash.Hex(),
		RefundBlockNumber: &block,
	}); err != nil {
		w.log.Error("evmwatch: applying Refunded update", "swap_id", swapID, "err", err)
	}
}

// projectUDACreated records the deployed HTLC address for whichever
// pending order's deposit_address matches the deployed UDA. The
// Registry events carry no order_id, so the deposit address itself is
// the join key - it is the deterministic output of the same
// GetERC20Address formula the Orderbook evaluated at order creation.
func (w *Watcher) projectUDACreated(ctx context.Context, udaAddress, htlcAddress string) {
	pending, err := w.store.ListPending(ctx)
	if err != nil {
		w.log.Error("evmwatch: listing pending orders for UDACreated", "err", err)
		return
	}
	for _, o := range pending {
		for _, side := range []order.Side{order.Source, order.Destination} {
			swap := o.Swap(side)
			if swap.Chain != w.chain || swap.DepositAddress == "" {
				continue
			}
			if !sameAddress(swap.DepositAddress, udaAddress) {
				continue
			}
			if err := w.store.ApplySwapUpdate(ctx, o.CreateID, side, order.SwapUpdate{
				SwapID:      swap.SwapID,
				HTLCAddress: htlcAddress,
			}); err != nil {
				w.log.Error("evmwatch: applying UDACreated update", "uda", udaAddress, "err", err)
			}
			return
		}
	}
	w.log.Warn("evmwatch: UDACreated for unknown deposit address, skipping", "uda", udaAddress, "chain", w.chain)
}

func sameAddress(a, b string) bool {
	return strings.EqualFold(strings.TrimPrefix(a, "0x"), strings.TrimPrefix(b, "0x"))
}

// locate finds the Order and side owning swapID. A swap_id matching no
// known Order is audit-logged and skipped (spec §4.2 edge case), not
// treated as a batch failure.
func (w *Watcher) locate(ctx context.Context, swapID string) (*order.Order, order.Side, error) {
	o, err := w.store.GetBySwapID(ctx, swapID)
	if err != nil {
		w.log.Warn("evmwatch: log for unknown swap_id, skipping", "swap_id", swapID, "chain", w.chain)
		return nil, "", err
	}
	side := order.Source
	if o.DestinationSwap.SwapID == swapID {
		side = order.Destination
	}
	return o, side, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
