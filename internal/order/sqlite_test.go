package order

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/klingonswap/bridge/internal/chainmodel"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := OpenSQLiteStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func sampleOrder(t *testing.T, nonce uint64, initiator string) *Order {
	t.Helper()
	c := sampleCreateOrder()
	c.Nonce = nonce
	c.InitiatorSourceAddress = initiator
	id, err := c.CreateID()
	require.NoError(t, err)

	return &Order{
		CreateID:    id,
		CreateOrder: c,
		SourceSwap: Swap{
			SwapID:     id + "-src",
			Chain:      chainmodel.BitcoinTestnet,
			SecretHash: c.SecretHash,
			Amount:     c.SourceAmount,
		},
		DestinationSwap: Swap{
			SwapID:     id + "-dst",
			Chain:      chainmodel.AvalancheTestnet,
			SecretHash: c.SecretHash,
			Amount:     c.DestinationAmount,
		},
		CreatedAt: c.CreatedAt,
	}
}

func TestSQLiteCreateAndGetByCreateID(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	o := sampleOrder(t, 1, "addrA")
	require.NoError(t, store.Create(ctx, o))

	got, err := store.GetByCreateID(ctx, o.CreateID)
	require.NoError(t, err)
	require.Equal(t, o.CreateID, got.CreateID)
	require.Equal(t, o.SourceSwap.SwapID, got.SourceSwap.SwapID)
	require.Equal(t, o.CreateOrder.SourceAmount.String(), got.CreateOrder.SourceAmount.String())
}

func TestSQLiteCreateRejectsDuplicateCreateID(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	o := sampleOrder(t, 1, "addrA")
	require.NoError(t, store.Create(ctx, o))
	require.ErrorIs(t, store.Create(ctx, o), ErrDuplicateCreateID)
}

func TestSQLiteCreateRejectsStaleNonce(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	first := sampleOrder(t, 5, "addrA")
	require.NoError(t, store.Create(ctx, first))

	second := sampleOrder(t, 5, "addrA")
	second.CreateOrder.InitiatorDestinationAddress = "different"
	second.SourceSwap.SwapID = first.SourceSwap.SwapID + "-other"
	second.DestinationSwap.SwapID = first.DestinationSwap.SwapID + "-other"
	id2, err := second.CreateOrder.CreateID()
	require.NoError(t, err)
	second.CreateID = id2

	require.ErrorIs(t, store.Create(ctx, second), ErrDuplicateNonce)
}

func TestSQLiteGetByCreateIDNotFound(t *testing.T) {
	store := newTestStore(t)
	_, err := store.GetByCreateID(context.Background(), "does-not-exist")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestSQLiteGetBySwapID(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	o := sampleOrder(t, 1, "addrA")
	require.NoError(t, store.Create(ctx, o))

	got, err := store.GetBySwapID(ctx, o.DestinationSwap.SwapID)
	require.NoError(t, err)
	require.Equal(t, o.CreateID, got.CreateID)
}

func TestSQLiteListByInitiator(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	o1 := sampleOrder(t, 1, "addrA")
	o2 := sampleOrder(t, 2, "addrA")
	require.NoError(t, store.Create(ctx, o1))
	require.NoError(t, store.Create(ctx, o2))

	orders, err := store.ListByInitiator(ctx, "addrA")
	require.NoError(t, err)
	require.Len(t, orders, 2)
}

func TestSQLiteApplySwapUpdateRespectsFieldExistsGuard(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	o := sampleOrder(t, 1, "addrA")
	require.NoError(t, store.Create(ctx, o))

	require.NoError(t, store.ApplySwapUpdate(ctx, o.CreateID, Source, SwapUpdate{
		SwapID:         o.SourceSwap.SwapID,
		InitiateTxHash: "txid-1",
	}))

	got, err := store.GetByCreateID(ctx, o.CreateID)
	require.NoError(t, err)
	require.Equal(t, "txid-1", got.SourceSwap.InitiateTxHash)

	// Second write with a different hash must not overwrite the first.
	require.NoError(t, store.ApplySwapUpdate(ctx, o.CreateID, Source, SwapUpdate{
		SwapID:         o.SourceSwap.SwapID,
		InitiateTxHash: "txid-2",
	}))

	got, err = store.GetByCreateID(ctx, o.CreateID)
	require.NoError(t, err)
	require.Equal(t, "txid-1", got.SourceSwap.InitiateTxHash)
}

func TestSQLiteApplySwapUpdateUnknownOrder(t *testing.T) {
	store := newTestStore(t)
	err := store.ApplySwapUpdate(context.Background(), "missing", Source, SwapUpdate{InitiateTxHash: "x"})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestSQLiteListPendingExcludesTerminalOrders(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	pending := sampleOrder(t, 1, "addrA")
	require.NoError(t, store.Create(ctx, pending))

	done := sampleOrder(t, 2, "addrA")
	require.NoError(t, store.Create(ctx, done))
	require.NoError(t, store.ApplySwapUpdate(ctx, done.CreateID, Source, SwapUpdate{
		SwapID:       done.SourceSwap.SwapID,
		RedeemTxHash: "txid-redeem",
	}))

	orders, err := store.ListPending(ctx)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	require.Equal(t, pending.CreateID, orders[0].CreateID)
}

func TestSQLiteListPendingIncludesCounterPartyRedeemed(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	o := sampleOrder(t, 1, "addrA")
	require.NoError(t, store.Create(ctx, o))
	require.NoError(t, store.ApplySwapUpdate(ctx, o.CreateID, Destination, SwapUpdate{
		SwapID:       o.DestinationSwap.SwapID,
		RedeemTxHash: "dst-redeem-tx",
	}))

	orders, err := store.ListPending(ctx)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	require.Equal(t, o.CreateID, orders[0].CreateID)
	require.Equal(t, StatusCounterPartyRedeemed, Project(orders[0]))
}

func TestSQLiteHighestNonce(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	_, ok, err := store.HighestNonce(ctx, "addrA")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, store.Create(ctx, sampleOrder(t, 7, "addrA")))

	n, ok, err := store.HighestNonce(ctx, "addrA")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, uint64(7), n)
}

func TestSQLiteArchiveTerminalOrders(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	old := sampleOrder(t, 1, "addrA")
	old.CreatedAt = time.Now().Add(-48 * time.Hour)
	old.CreateOrder.CreatedAt = old.CreatedAt
	id, err := old.CreateOrder.CreateID()
	require.NoError(t, err)
	old.CreateID = id
	require.NoError(t, store.Create(ctx, old))
	require.NoError(t, store.ApplySwapUpdate(ctx, old.CreateID, Source, SwapUpdate{
		SwapID:       old.SourceSwap.SwapID,
		RedeemTxHash: "txid-redeem",
	}))

	recent := sampleOrder(t, 2, "addrA")
	require.NoError(t, store.Create(ctx, recent))

	removed, err := store.ArchiveTerminalOrders(ctx, time.Now().Add(-24*time.Hour))
	require.NoError(t, err)
	require.Equal(t, 1, removed)

	_, err = store.GetByCreateID(ctx, old.CreateID)
	require.ErrorIs(t, err, ErrNotFound)

	_, err = store.GetByCreateID(ctx, recent.CreateID)
	require.NoError(t, err)
}
