package order

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/klingonswap/bridge/internal/chainmodel"
	"github.com/klingonswap/bridge/internal/secretkey"
	"github.com/klingonswap/bridge/pkg/helpers"
)

// SQLiteStore is the production Store implementation, grounded on
// klingdex's storage package: WAL mode, a single-writer connection
// pool (SQLite only supports one writer at a time), and a plain
// `CREATE TABLE IF NOT EXISTS` schema applied at open time.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLiteStore opens (creating if necessary) a SQLite-backed Store
// at dataDir/bridge.db.
func OpenSQLiteStore(dataDir string) (*SQLiteStore, error) {
	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		return nil, fmt.Errorf("order: creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "bridge.db")
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("order: opening database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("order: pinging database: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	s := &SQLiteStore{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("order: initializing schema: %w", err)
	}
	return s, nil
}

const schema = `
CREATE TABLE IF NOT EXISTS orders (
	create_id TEXT PRIMARY KEY,

	from_asset TEXT NOT NULL,
	to_asset TEXT NOT NULL,
	source_amount TEXT NOT NULL,
	destination_amount TEXT NOT NULL,
	nonce INTEGER NOT NULL,
	initiator_source_address TEXT NOT NULL,
	initiator_destination_address TEXT NOT NULL,
	secret_hash TEXT NOT NULL,
	bitcoin_optional_recipient TEXT,
	input_token_price REAL NOT NULL DEFAULT 0,
	output_token_price REAL NOT NULL DEFAULT 0,
	created_at INTEGER NOT NULL,

	source_swap_id TEXT NOT NULL,
	source_chain TEXT NOT NULL,
	source_htlc_address TEXT,
	source_token_address TEXT,
	source_initiator TEXT,
	source_redeemer TEXT,
	source_deposit_address TEXT,
	source_swap_amount TEXT NOT NULL,
	source_filled_amount TEXT NOT NULL DEFAULT '0',
	source_timelock INTEGER NOT NULL DEFAULT 0,
	source_secret_hash TEXT NOT NULL,
	source_secret TEXT,
	source_initiate_tx_hash TEXT,
	source_initiate_block_number INTEGER,
	source_redeem_tx_hash TEXT,
	source_redeem_block_number INTEGER,
	source_refund_tx_hash TEXT,
	source_refund_block_number INTEGER,

	dest_swap_id TEXT NOT NULL,
	dest_chain TEXT NOT NULL,
	dest_htlc_address TEXT,
	dest_token_address TEXT,
	dest_initiator TEXT,
	dest_redeemer TEXT,
	dest_deposit_address TEXT,
	dest_swap_amount TEXT NOT NULL,
	dest_filled_amount TEXT NOT NULL DEFAULT '0',
	dest_timelock INTEGER NOT NULL DEFAULT 0,
	dest_secret_hash TEXT NOT NULL,
	dest_secret TEXT,
	dest_initiate_tx_hash TEXT,
	dest_initiate_block_number INTEGER,
	dest_redeem_tx_hash TEXT,
	dest_redeem_block_number INTEGER,
	dest_refund_tx_hash TEXT,
	dest_refund_block_number INTEGER
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_orders_source_swap ON orders(source_swap_id);
CREATE UNIQUE INDEX IF NOT EXISTS idx_orders_dest_swap ON orders(dest_swap_id);
CREATE INDEX IF NOT EXISTS idx_orders_initiator_source ON orders(initiator_source_address);
CREATE INDEX IF NOT EXISTS idx_orders_initiator_dest ON orders(initiator_destination_address);
CREATE INDEX IF NOT EXISTS idx_orders_created_at ON orders(created_at);

CREATE TABLE IF NOT EXISTS nonces (
	initiator_address TEXT PRIMARY KEY,
	highest_nonce INTEGER NOT NULL
);
`

func (s *SQLiteStore) initSchema() error {
	_, err := s.db.Exec(schema)
	return err
}

// Close closes the underlying database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Create(ctx context.Context, o *Order) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("order: begin tx: %w", err)
	}
	defer tx.Rollback()

	var exists int
	err = tx.QueryRowContext(ctx, `SELECT 1 FROM orders WHERE create_id = ?`, o.CreateID).Scan(&exists)
	if err == nil {
		return ErrDuplicateCreateID
	}
	if err != sql.ErrNoRows {
		return fmt.Errorf("order: checking create_id: %w", err)
	}

	var highest sql.NullInt64
	err = tx.QueryRowContext(ctx, `SELECT highest_nonce FROM nonces WHERE initiator_address = ?`,
		o.CreateOrder.InitiatorSourceAddress).Scan(&highest)
	if err != nil && err != sql.ErrNoRows {
		return fmt.Errorf("order: checking nonce: %w", err)
	}
	if highest.Valid && o.CreateOrder.Nonce <= uint64(highest.Int64) {
		return ErrDuplicateNonce
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO orders (
			create_id, from_asset, to_asset, source_amount, destination_amount, nonce,
			initiator_source_address, initiator_destination_address, secret_hash,
			bitcoin_optional_recipient, input_token_price, output_token_price, created_at,
			source_swap_id, source_chain, source_htlc_address, source_token_address,
			source_initiator, source_redeemer, source_deposit_address, source_swap_amount,
			source_filled_amount, source_timelock, source_secret_hash,
			dest_swap_id, dest_chain, dest_htlc_address, dest_token_address,
			dest_initiator, dest_redeemer, dest_deposit_address, dest_swap_amount,
			dest_filled_amount, dest_timelock, dest_secret_hash
		) VALUES (?,?,?,?,?,?, ?,?,?, ?,?,?,?, ?,?,?,?, ?,?,?,?, ?,?,?, ?,?,?,?, ?,?,?,?, ?,?,?)`,
		o.CreateID, string(o.CreateOrder.From), string(o.CreateOrder.To),
		o.CreateOrder.SourceAmount.String(), o.CreateOrder.DestinationAmount.String(), o.CreateOrder.Nonce,
		o.CreateOrder.InitiatorSourceAddress, o.CreateOrder.InitiatorDestinationAddress,
		hexHash(o.CreateOrder.SecretHash), nullableString(o.CreateOrder.BitcoinOptionalRecipient),
		o.CreateOrder.InputTokenPrice, o.CreateOrder.OutputTokenPrice, o.CreatedAt.Unix(),
		o.SourceSwap.SwapID, string(o.SourceSwap.Chain), nullableString(o.SourceSwap.HTLCAddress),
		nullableString(o.SourceSwap.TokenAddress), nullableString(o.SourceSwap.Initiator),
		nullableString(o.SourceSwap.Redeemer), nullableString(o.SourceSwap.DepositAddress),
		o.SourceSwap.Amount.String(), o.SourceSwap.FilledAmount.String(), o.SourceSwap.Timelock,
		hexHash(o.SourceSwap.SecretHash),
		o.DestinationSwap.SwapID, string(o.DestinationSwap.Chain), nullableString(o.DestinationSwap.HTLCAddress),
		nullableString(o.DestinationSwap.TokenAddress), nullableString(o.DestinationSwap.Initiator),
		nullableString(o.DestinationSwap.Redeemer), nullableString(o.DestinationSwap.DepositAddress),
		o.DestinationSwap.Amount.String(), o.DestinationSwap.FilledAmount.String(), o.DestinationSwap.Timelock,
		hexHash(o.DestinationSwap.SecretHash),
	); err != nil {
		return fmt.Errorf("order: inserting order: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO nonces (initiator_address, highest_nonce) VALUES (?, ?)
		ON CONFLICT(initiator_address) DO UPDATE SET highest_nonce = excluded.highest_nonce`,
		o.CreateOrder.InitiatorSourceAddress, o.CreateOrder.Nonce,
	); err != nil {
		return fmt.Errorf("order: updating nonce table: %w", err)
	}

	return tx.Commit()
}

func (s *SQLiteStore) GetByCreateID(ctx context.Context, createID string) (*Order, error) {
	row := s.db.QueryRowContext(ctx, selectOrderSQL+` WHERE create_id = ?`, createID)
	return scanOrder(row)
}

func (s *SQLiteStore) GetBySwapID(ctx context.Context, swapID string) (*Order, error) {
	row := s.db.QueryRowContext(ctx, selectOrderSQL+` WHERE source_swap_id = ? OR dest_swap_id = ?`, swapID, swapID)
	return scanOrder(row)
}

func (s *SQLiteStore) ListByInitiator(ctx context.Context, addr string) ([]*Order, error) {
	rows, err := s.db.QueryContext(ctx,
		selectOrderSQL+` WHERE initiator_source_address = ? OR initiator_destination_address = ? ORDER BY created_at DESC`,
		addr, addr)
	if err != nil {
		return nil, fmt.Errorf("order: listing by initiator: %w", err)
	}
	defer rows.Close()
	return scanOrders(rows)
}

// ListPending returns every order whose projected status is not yet
// terminal (Completed or Refunded), for the Counterparty Executor's
// poll loop. The SQL filter only excludes source_redeem_tx_hash /
// *_refund_tx_hash, since those are the raw columns a terminal status
// can ever set; dest_redeem_tx_hash alone does not imply terminal (it
// is exactly the counter_party_redeemed state the executor still has
// work to do on - see ArchiveTerminalOrders, which recomputes status
// in Go for the same reason).
func (s *SQLiteStore) ListPending(ctx context.Context) ([]*Order, error) {
	rows, err := s.db.QueryContext(ctx,
		selectOrderSQL+` WHERE source_redeem_tx_hash IS NULL
		                   AND source_refund_tx_hash IS NULL AND dest_refund_tx_hash IS NULL
		                 ORDER BY created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("order: listing pending: %w", err)
	}
	defer rows.Close()
	candidates, err := scanOrders(rows)
	if err != nil {
		return nil, err
	}

	pending := make([]*Order, 0, len(candidates))
	for _, o := range candidates {
		st := Project(o)
		if st == StatusCompleted || st == StatusRefunded {
			continue
		}
		pending = append(pending, o)
	}
	return pending, nil
}

func (s *SQLiteStore) HighestNonce(ctx context.Context, initiatorAddress string) (uint64, bool, error) {
	var n int64
	err := s.db.QueryRowContext(ctx, `SELECT highest_nonce FROM nonces WHERE initiator_address = ?`, initiatorAddress).Scan(&n)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("order: reading highest nonce: %w", err)
	}
	return uint64(n), true, nil
}

// ApplySwapUpdate applies a field-exists-guarded partial update to one
// side of an order: each column is only written when it is currently
// NULL/empty, so two watchers racing on the same swap never clobber
// each other's write, per spec §5.
func (s *SQLiteStore) ApplySwapUpdate(ctx context.Context, createID string, side Side, update SwapUpdate) error {
	prefix := "source"
	if side == Destination {
		prefix = "dest"
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("order: begin tx: %w", err)
	}
	defer tx.Rollback()

	var storedSwapID string
	col := fmt.Sprintf("%s_swap_id", prefix)
	if err := tx.QueryRowContext(ctx, fmt.Sprintf(`SELECT %s FROM orders WHERE create_id = ?`, col), createID).Scan(&storedSwapID); err != nil {
		if err == sql.ErrNoRows {
			return ErrNotFound
		}
		return fmt.Errorf("order: reading swap_id: %w", err)
	}
	if update.SwapID != "" && storedSwapID != update.SwapID {
		return ErrNotFound
	}

	set := make([]string, 0, 8)
	args := make([]any, 0, 8)

	addIfEmpty := func(column string, value string) {
		if value == "" {
			return
		}
		set = append(set, fmt.Sprintf("%s = CASE WHEN %s IS NULL THEN ? ELSE %s END", column, column, column))
		args = append(args, value)
	}
	addBlockIfEmpty := func(column string, value *uint64) {
		if value == nil {
			return
		}
		set = append(set, fmt.Sprintf("%s = CASE WHEN %s IS NULL THEN ? ELSE %s END", column, column, column))
		args = append(args, *value)
	}

	addIfEmpty(prefix+"_htlc_address", update.HTLCAddress)
	addIfEmpty(prefix+"_initiate_tx_hash", update.InitiateTxHash)
	addBlockIfEmpty(prefix+"_initiate_block_number", update.InitiateBlockNumber)
	addIfEmpty(prefix+"_redeem_tx_hash", update.RedeemTxHash)
	addBlockIfEmpty(prefix+"_redeem_block_number", update.RedeemBlockNumber)
	addIfEmpty(prefix+"_refund_tx_hash", update.RefundTxHash)
	addBlockIfEmpty(prefix+"_refund_block_number", update.RefundBlockNumber)
	if update.Secret != nil {
		col := prefix + "_secret"
		set = append(set, fmt.Sprintf("%s = CASE WHEN %s IS NULL THEN ? ELSE %s END", col, col, col))
		args = append(args, fmt.Sprintf("%x", *update.Secret))
	}

	if len(set) == 0 {
		return tx.Commit()
	}

	query := fmt.Sprintf(`UPDATE orders SET %s WHERE create_id = ?`, joinSet(set))
	args = append(args, createID)
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("order: applying swap update: %w", err)
	}

	return tx.Commit()
}

// ArchiveTerminalOrders deletes orders whose created_at predates
// olderThan and whose status (recomputed in Go, since SQL has no
// knowledge of the projection function) is Completed or Refunded.
func (s *SQLiteStore) ArchiveTerminalOrders(ctx context.Context, olderThan time.Time) (int, error) {
	rows, err := s.db.QueryContext(ctx, selectOrderSQL+` WHERE created_at < ?`, olderThan.Unix())
	if err != nil {
		return 0, fmt.Errorf("order: scanning for archival: %w", err)
	}
	candidates, err := scanOrders(rows)
	rows.Close()
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, o := range candidates {
		st := Project(o)
		if st != StatusCompleted && st != StatusRefunded {
			continue
		}
		if _, err := s.db.ExecContext(ctx, `DELETE FROM orders WHERE create_id = ?`, o.CreateID); err != nil {
			return removed, fmt.Errorf("order: deleting archived order %s: %w", o.CreateID, err)
		}
		removed++
	}
	return removed, nil
}

const selectOrderSQL = `
SELECT
	create_id, from_asset, to_asset, source_amount, destination_amount, nonce,
	initiator_source_address, initiator_destination_address, secret_hash,
	bitcoin_optional_recipient, input_token_price, output_token_price, created_at,

	source_swap_id, source_chain, source_htlc_address, source_token_address,
	source_initiator, source_redeemer, source_deposit_address, source_swap_amount,
	source_filled_amount, source_timelock, source_secret_hash, source_secret,
	source_initiate_tx_hash, source_initiate_block_number,
	source_redeem_tx_hash, source_redeem_block_number,
	source_refund_tx_hash, source_refund_block_number,

	dest_swap_id, dest_chain, dest_htlc_address, dest_token_address,
	dest_initiator, dest_redeemer, dest_deposit_address, dest_swap_amount,
	dest_filled_amount, dest_timelock, dest_secret_hash, dest_secret,
	dest_initiate_tx_hash, dest_initiate_block_number,
	dest_redeem_tx_hash, dest_redeem_block_number,
	dest_refund_tx_hash, dest_refund_block_number
FROM orders`

type scanner interface {
	Scan(dest ...any) error
}

func scanOrder(row scanner) (*Order, error) {
	var o Order
	var fromAsset, toAsset, secretHash, bitcoinRecipient sql.NullString
	var sourceHTLC, sourceToken, sourceInitiator, sourceRedeemer, sourceDeposit sql.NullString
	var sourceSecretHash, sourceSecret sql.NullString
	var sourceInitTx, sourceRedeemTx, sourceRefundTx sql.NullString
	var sourceInitBlock, sourceRedeemBlock, sourceRefundBlock sql.NullInt64
	var destHTLC, destToken, destInitiator, destRedeemer, destDeposit sql.NullString
	var destSecretHash, destSecret sql.NullString
	var destInitTx, destRedeemTx, destRefundTx sql.NullString
	var destInitBlock, destRedeemBlock, destRefundBlock sql.NullInt64
	var createdAt int64
	var sourceAmount, destAmount string
	var sourceSwapAmount, sourceFilledAmount string
	var destSwapAmount, destFilledAmount string
	var sourceTimelock, destTimelock int64

	err := row.Scan(
		&o.CreateID, &fromAsset, &toAsset, &sourceAmount, &destAmount, &o.CreateOrder.Nonce,
		&o.CreateOrder.InitiatorSourceAddress, &o.CreateOrder.InitiatorDestinationAddress, &secretHash,
		&bitcoinRecipient, &o.CreateOrder.InputTokenPrice, &o.CreateOrder.OutputTokenPrice, &createdAt,

		&o.SourceSwap.SwapID, &o.SourceSwap.Chain, &sourceHTLC, &sourceToken,
		&sourceInitiator, &sourceRedeemer, &sourceDeposit, &sourceSwapAmount,
		&sourceFilledAmount, &sourceTimelock, &sourceSecretHash, &sourceSecret,
		&sourceInitTx, &sourceInitBlock, &sourceRedeemTx, &sourceRedeemBlock, &sourceRefundTx, &sourceRefundBlock,

		&o.DestinationSwap.SwapID, &o.DestinationSwap.Chain, &destHTLC, &destToken,
		&destInitiator, &destRedeemer, &destDeposit, &destSwapAmount,
		&destFilledAmount, &destTimelock, &destSecretHash, &destSecret,
		&destInitTx, &destInitBlock, &destRedeemTx, &destRedeemBlock, &destRefundTx, &destRefundBlock,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("order: scanning row: %w", err)
	}

	o.CreateOrder.From = chainmodel.AssetKey(fromAsset.String)
	o.CreateOrder.To = chainmodel.AssetKey(toAsset.String)
	o.CreateOrder.BitcoinOptionalRecipient = bitcoinRecipient.String
	o.CreatedAt = time.Unix(createdAt, 0).UTC()

	if amt, err := chainmodel.ParseAmount(sourceAmount); err == nil {
		o.CreateOrder.SourceAmount = amt
	}
	if amt, err := chainmodel.ParseAmount(destAmount); err == nil {
		o.CreateOrder.DestinationAmount = amt
	}
	if h, err := secretkey.HashFromBytes(hexDecode(secretHash.String)); err == nil {
		o.CreateOrder.SecretHash = h
	}

	fillSwap(&o.SourceSwap, sourceHTLC, sourceToken, sourceInitiator, sourceRedeemer, sourceDeposit,
		sourceSwapAmount, sourceFilledAmount, uint64(sourceTimelock), sourceSecretHash, sourceSecret,
		sourceInitTx, sourceInitBlock, sourceRedeemTx, sourceRedeemBlock, sourceRefundTx, sourceRefundBlock)
	fillSwap(&o.DestinationSwap, destHTLC, destToken, destInitiator, destRedeemer, destDeposit,
		destSwapAmount, destFilledAmount, uint64(destTimelock), destSecretHash, destSecret,
		destInitTx, destInitBlock, destRedeemTx, destRedeemBlock, destRefundTx, destRefundBlock)

	return &o, nil
}

func fillSwap(s *Swap, htlc, token, initiator, redeemer, deposit sql.NullString,
	amount, filled string, timelock uint64, secretHash, secret sql.NullString,
	initTx sql.NullString, initBlock sql.NullInt64, redeemTx sql.NullString, redeemBlock sql.NullInt64,
	refundTx sql.NullString, refundBlock sql.NullInt64) {

	s.HTLCAddress = htlc.String
	s.TokenAddress = token.String
	s.Initiator = initiator.String
	s.Redeemer = redeemer.String
	s.DepositAddress = deposit.String
	s.Timelock = timelock

	if amt, err := chainmodel.ParseAmount(amount); err == nil {
		s.Amount = amt
	}
	if amt, err := chainmodel.ParseAmount(filled); err == nil {
		s.FilledAmount = amt
	}
	if h, err := secretkey.HashFromBytes(hexDecode(secretHash.String)); err == nil {
		s.SecretHash = h
	}
	if secret.Valid && secret.String != "" {
		if sec, err := secretkey.SecretFromBytes(hexDecode(secret.String)); err == nil {
			s.Secret = &sec
		}
	}

	s.InitiateTxHash = initTx.String
	if initBlock.Valid {
		v := uint64(initBlock.Int64)
		s.InitiateBlockNumber = &v
	}
	s.RedeemTxHash = redeemTx.String
	if redeemBlock.Valid {
		v := uint64(redeemBlock.Int64)
		s.RedeemBlockNumber = &v
	}
	s.RefundTxHash = refundTx.String
	if refundBlock.Valid {
		v := uint64(refundBlock.Int64)
		s.RefundBlockNumber = &v
	}
}

func scanOrders(rows *sql.Rows) ([]*Order, error) {
	var out []*Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func hexHash(h secretkey.Hash) string {
	return fmt.Sprintf("%x", h)
}

func hexDecode(s string) []byte {
	if s == "" {
		return nil
	}
	b, err := helpers.HexToBytes(s)
	if err != nil {
		return nil
	}
	return b
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func joinSet(set []string) string {
	out := ""
	for i, s := range set {
		if i > 0 {
			out += ", "
		}
		out += s
	}
	return out
}
