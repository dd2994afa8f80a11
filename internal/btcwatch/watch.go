package btcwatch

import (
	"context"
	"encoding/hex"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/charmbracelet/log"

	"github.com/klingonswap/bridge/internal/btchtlc"
	"github.com/klingonswap/bridge/internal/chainmodel"
	"github.com/klingonswap/bridge/internal/order"
	"github.com/klingonswap/bridge/internal/secretkey"
	"github.com/klingonswap/bridge/pkg/helpers"
)

// Watcher scans the P2TR deposit addresses of every pending Bitcoin swap
// for deposits, redemptions, and refunds (spec §4.3).
type Watcher struct {
	client        *EsploraClient
	store         order.Store
	chain         chainmodel.ChainId
	confirmations uint64
	log           *log.Logger
}

func NewWatcher(client *EsploraClient, store order.Store, chain chainmodel.ChainId, logger *log.Logger) *Watcher {
	params := chainmodel.MustGet(chain)
	return &Watcher{
		client:        client,
		store:         store,
		chain:         chain,
		confirmations: params.Confirmations,
		log:           logger,
	}
}

// Poll runs one scan over every Bitcoin-side pending swap. Errors for one
// order never stop the scan of the rest - the per-chain supervisor
// surfaces the aggregate error to the scheduler's error handler.
func (w *Watcher) Poll(ctx context.Context) error {
	orders, err := w.store.ListPending(ctx)
	if err != nil {
		return fmt.Errorf("btcwatch: listing pending orders: %w", err)
	}

	tip, err := w.client.BlockHeight(ctx)
	if err != nil {
		return fmt.Errorf("btcwatch: reading chain tip: %w", err)
	}

	var firstErr error
	for _, o := range orders {
		for _, side := range []order.Side{order.Source, order.Destination} {
			swap := o.Swap(side)
			if swap.Chain != w.chain {
				continue
			}
			if err := w.pollSwap(ctx, o, side, tip); err != nil && firstErr == nil {
				firstErr = err
				w.log.Error("btcwatch: poll failed", "create_id", o.CreateID, "side", side, "err", err)
			}
		}
	}
	return firstErr
}

func (w *Watcher) pollSwap(ctx context.Context, o *order.Order, side order.Side, tip int64) error {
	swap := o.Swap(side)
	if swap.DepositAddress == "" {
		return nil
	}

	if !swap.IsInitiated() {
		return w.detectDeposit(ctx, o, side, tip)
	}
	if !swap.IsRedeemed() && !swap.IsRefunded() {
		return w.detectSpend(ctx, o, side)
	}
	return nil
}

// detectDeposit looks for the first sufficient-value output paid to the
// deposit address (spec §4.3 step 1).
func (w *Watcher) detectDeposit(ctx context.Context, o *order.Order, side order.Side, tip int64) error {
	swap := o.Swap(side)

	utxos, err := w.client.AddressUTXOs(ctx, swap.DepositAddress)
	if err != nil {
		return fmt.Errorf("btcwatch: fetching UTXOs for %s: %w", swap.DepositAddress, err)
	}

	required := swap.Amount.Big().Uint64()
	for _, u := range utxos {
		if u.Value < required {
			continue
		}

		update := order.SwapUpdate{SwapID: swap.SwapID, InitiateTxHash: u.TxID}
		if u.Status.Confirmed && tip >= u.Status.BlockHeight && uint64(tip-u.Status.BlockHeight+1) >= w.confirmations {
			block := uint64(u.Status.BlockHeight)
			update.InitiateBlockNumber = &block
		}
		if err := w.store.ApplySwapUpdate(ctx, o.CreateID, side, update); err != nil {
			return fmt.Errorf("btcwatch: applying deposit update: %w", err)
		}
		return nil
	}
	return nil
}

// detectSpend looks for the transaction that spends the deposit output
// and classifies it as a redeem or refund by the leaf script revealed in
// its witness.
func (w *Watcher) detectSpend(ctx context.Context, o *order.Order, side order.Side) error {
	swap := o.Swap(side)

	txs, err := w.client.AddressTxs(ctx, swap.DepositAddress)
	if err != nil {
		return fmt.Errorf("btcwatch: fetching txs for %s: %w", swap.DepositAddress, err)
	}

	tree, err := rebuildTree(swap)
	if err != nil {
		return fmt.Errorf("btcwatch: rebuilding script tree: %w", err)
	}

	for _, tx := range txs {
		for _, in := range tx.Vin {
			if in.TxID != swap.InitiateTxHash {
				continue
			}

			witness, err := decodeWitness(in.Witness)
			if err != nil {
				w.log.Warn("btcwatch: undecodable witness", "txid", tx.TxID, "err", err)
				continue
			}

			observed, err := btchtlc.ParseWitness(witness, tree)
			if err != nil {
				w.log.Warn("btcwatch: witness does not match either leaf", "txid", tx.TxID, "err", err)
				continue
			}

			update := order.SwapUpdate{SwapID: swap.SwapID}
			switch observed.Kind {
			case btchtlc.SpendRedeem:
				update.RedeemTxHash = tx.TxID
				secret, err := secretkey.SecretFromBytes(observed.Secret)
				if err != nil {
					return fmt.Errorf("btcwatch: malformed revealed secret: %w", err)
				}
				update.Secret = &secret
			case btchtlc.SpendRefund:
				update.RefundTxHash = tx.TxID
			default:
				continue
			}
			if tx.Status.Confirmed {
				block := uint64(tx.Status.BlockHeight)
				if observed.Kind == btchtlc.SpendRedeem {
					update.RedeemBlockNumber = &block
				} else {
					update.RefundBlockNumber = &block
				}
			}
			return w.store.ApplySwapUpdate(ctx, o.CreateID, side, update)
		}
	}
	return nil
}

func rebuildTree(swap *order.Swap) (*btchtlc.ScriptTree, error) {
	redeemerKey, err := parsePubKeyHex(swap.Redeemer)
	if err != nil {
		return nil, fmt.Errorf("redeemer pubkey: %w", err)
	}
	initiatorKey, err := parsePubKeyHex(swap.Initiator)
	if err != nil {
		return nil, fmt.Errorf("initiator pubkey: %w", err)
	}

	return btchtlc.BuildScriptTree(btchtlc.Params{
		SecretHash:      swap.SecretHash,
		Timelock:        uint32(swap.Timelock),
		RedeemerPubKey:  redeemerKey,
		InitiatorPubKey: initiatorKey,
	})
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

func decodeWitness(items []string) ([][]byte, error) {
	out := make([][]byte, len(items))
	for i, item := range items {
		b, err := hex.DecodeString(item)
		if err != nil {
			return nil, err
		}
		out[i] = b
	}
	return out, nil
}
