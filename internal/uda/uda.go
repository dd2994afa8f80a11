// Package uda watches the deterministic deposit address of every
// EVM-source order for the user's on-chain deposit and binds it into a
// freshly-deployed HTLC via the registry contract (spec §4.4).
package uda

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"time"

	"github.com/charmbracelet/log"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/klingonswap/bridge/internal/chainmodel"
	"github.com/klingonswap/bridge/internal/order"
)

// ChainClient is the subset of *internal/htlc.Client the watcher needs,
// narrowed for fake-driven testing.
type ChainClient interface {
	ERC20BalanceOf(ctx context.Context, token, account common.Address) (*big.Int, error)
	CreateERC20SwapAddress(ctx context.Context, signer *ecdsa.PrivateKey, token, refundAddress, redeemer common.Address, timelock, amount *big.Int, secretHash [32]byte) (*types.Transaction, error)
}

// Watcher deploys user-deposit HTLCs for EVM-source orders once their
// deposit address balance reaches the required amount.
type Watcher struct {
	chain  chainmodel.ChainId
	client ChainClient
	store  order.Store
	signer *ecdsa.PrivateKey

	backoffBase time.Duration
	backoffMax  time.Duration
	maxAttempts int

	log *log.Logger

	attempts      map[string]int
	nextAttemptAt map[string]time.Time
	now           func() time.Time
}

func NewWatcher(chain chainmodel.ChainId, client ChainClient, store order.Store, signer *ecdsa.PrivateKey, backoffBase, backoffMax time.Duration, maxAttempts int, logger *log.Logger) *Watcher {
	return &Watcher{
		chain:       chain,
		client:      client,
		store:       store,
		signer:      signer,
		backoffBase: backoffBase,
		backoffMax:  backoffMax,
		maxAttempts: maxAttempts,
		log:           logger,
		attempts:      make(map[string]int),
		nextAttemptAt: make(map[string]time.Time),
		now:           time.Now,
	}
}

// Poll is the scheduler.Body: load every EVM-source order not yet
// initiated, check its deposit balance, and deploy the HTLC once
// sufficient funds have arrived.
func (w *Watcher) Poll(ctx context.Context) error {
	pending, err := w.store.ListPending(ctx)
	if err != nil {
		return fmt.Errorf("uda: listing pending orders: %w", err)
	}

	for _, o := range pending {
		// UDA deposits are the source-side funding mechanism only (spec
		// §4.4 step 1: "load all orders whose source chain is EVM"); the
		// destination leg is always funded directly by the executor's
		// own initiate call, never through a deposit address.
		swap := o.Swap(order.Source)
		if swap.Chain != w.chain || swap.DepositAddress == "" {
			continue
		}
		if swap.IsInitiated() || swap.HTLCAddress != "" {
			// Already deployed (or evmwatch observed Initiated already);
			// exactly-once is enforced by this flag plus the registry's
			// own revert-on-duplicate-address behavior.
			continue
		}
		w.pollSwap(ctx, o, order.Source)
	}
	return nil
}

func (w *Watcher) pollSwap(ctx context.Context, o *order.Order, side order.Side) {
	swap := o.Swap(side)
	key := o.CreateID + ":" + string(side)

	if until, ok := w.nextAttemptAt[key]; ok && w.now().Before(until) {
		return
	}
	if w.attempts[key] >= w.maxAttempts {
		return
	}

	balance, err := w.client.ERC20BalanceOf(ctx, common.HexToAddress(swap.TokenAddress), common.HexToAddress(swap.DepositAddress))
	if err != nil {
		w.recordFailure(key)
		w.log.Warn("uda: balance check failed", "create_id", o.CreateID, "side", side, "attempt", w.attempts[key], "err", err)
		return
	}

	if balance.Cmp(swap.Amount.Big()) < 0 {
		return
	}

	redeemer := common.HexToAddress(swap.Redeemer)
	refundAddress := common.HexToAddress(swap.Initiator)
	timelock := new(big.Int).SetUint64(swap.Timelock)
	secretHash := [32]byte(swap.SecretHash)

	tx, err := w.client.CreateERC20SwapAddress(ctx, w.signer, common.HexToAddress(swap.TokenAddress), refundAddress, redeemer, timelock, swap.Amount.Big(), secretHash)
	if err != nil {
		w.recordFailure(key)
		w.log.Warn("uda: HTLC deployment failed", "create_id", o.CreateID, "side", side, "attempt", w.attempts[key], "err", err)
		return
	}

	delete(w.attempts, key)
	delete(w.nextAttemptAt, key)
	w.log.Info("uda: submitted HTLC deployment", "create_id", o.CreateID, "side", side, "tx", tx.Hash().Hex())
}

// recordFailure advances the retry counter and schedules the next
// eligible attempt using exponential backoff bounded by backoffMax,
// the same doubling shape as the teacher's message retry worker.
func (w *Watcher) recordFailure(key string) {
	w.attempts[key]++
	backoff := w.backoffBase << uint(w.attempts[key]-1)
	if backoff > w.backoffMax || backoff <= 0 {
		backoff = w.backoffMax
	}
	w.nextAttemptAt[key] = w.now().Add(backoff)
}

// Exhausted reports whether an order/side has exceeded its backoff
// attempt budget for this polling cycle's caller to decide whether to
// keep retrying or surface an alert (spec §4.4 step 4: "skip this order
// in this cycle" after bounded attempts).
func (w *Watcher) Exhausted(createID string, side order.Side) bool {
	return w.attempts[createID+":"+string(side)] >= w.maxAttempts
}
