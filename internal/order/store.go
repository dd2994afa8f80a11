package order

import (
	"context"
	"errors"
	"time"

	"github.com/klingonswap/bridge/internal/secretkey"
)

// ErrNotFound is returned by Store lookups that find no matching row.
var ErrNotFound = errors.New("order: not found")

// ErrDuplicateCreateID is returned by Create when create_id already
// exists, per spec §3 invariant 1.
var ErrDuplicateCreateID = errors.New("order: duplicate create_id")

// ErrDuplicateNonce is returned by Create when the nonce has already
// been used (or superseded) by the same initiator address, per spec
// §4.1's sliding replay window.
var ErrDuplicateNonce = errors.New("order: duplicate or stale nonce")

// SwapUpdate carries the subset of Swap fields a watcher is allowed to
// write. Only non-nil/non-empty fields are applied, and only when the
// corresponding stored field is still empty - the field-exists guard
// described in spec §5 that makes concurrent watcher writes
// non-conflicting.
type SwapUpdate struct {
	SwapID              string
	InitiateTxHash      string
	InitiateBlockNumber *uint64
	RedeemTxHash        string
	RedeemBlockNumber   *uint64
	Secret              *secretkey.Secret
	RefundTxHash        string
	RefundBlockNumber   *uint64
	HTLCAddress         string
}

// Store is the persistence interface every component depends on. A
// single SQLite-backed implementation satisfies it (internal/order's
// sqlite.go); tests use an in-memory fake.
type Store interface {
	// Create persists a brand new Order. Returns ErrDuplicateCreateID if
	// the create_id already exists, or ErrDuplicateNonce if the nonce
	// has already been consumed by this initiator address.
	Create(ctx context.Context, o *Order) error

	// GetByCreateID returns the Order with the given create_id, or
	// ErrNotFound.
	GetByCreateID(ctx context.Context, createID string) (*Order, error)

	// GetBySwapID returns the Order owning a swap_id on either side, or
	// ErrNotFound. Used by watchers to locate the order a log event
	// belongs to.
	GetBySwapID(ctx context.Context, swapID string) (*Order, error)

	// ListByInitiator returns every Order whose initiator_source_address
	// or initiator_destination_address matches addr, newest first.
	ListByInitiator(ctx context.Context, addr string) ([]*Order, error)

	// ListPending returns orders whose projected status is not Completed
	// or Refunded, for watcher/executor polling loops.
	ListPending(ctx context.Context) ([]*Order, error)

	// ApplySwapUpdate atomically applies a field-exists-guarded update to
	// one side of an order. Returns ErrNotFound if swapID matches no
	// swap on the order.
	ApplySwapUpdate(ctx context.Context, createID string, side Side, update SwapUpdate) error

	// HighestNonce returns the highest nonce seen for an initiator
	// address, and whether any has been seen at all.
	HighestNonce(ctx context.Context, initiatorAddress string) (uint64, bool, error)

	// ArchiveTerminalOrders deletes orders whose projected status is
	// terminal (Completed or Refunded) and whose created_at predates
	// olderThan. Returns the count removed. Supplements spec §3's
	// "may be archived" lifecycle note with a concrete operation.
	ArchiveTerminalOrders(ctx context.Context, olderThan time.Time) (int, error)

	Close() error
}
