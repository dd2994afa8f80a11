// Package order holds the central Order/Swap aggregate, its derived
// status projection, and the Store interface (with a SQLite
// implementation) that every other component reads and writes through.
package order

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"time"

	"github.com/klingonswap/bridge/internal/chainmodel"
	"github.com/klingonswap/bridge/internal/secretkey"
)

// Side distinguishes an order's two legs.
type Side string

const (
	Source      Side = "source"
	Destination Side = "destination"
)

// CreateOrder is the immutable request a client submits to mint a new
// Order. Its canonical JSON encoding is hashed to produce the order's
// create_id.
type CreateOrder struct {
	From                        chainmodel.AssetKey `json:"from"`
	To                          chainmodel.AssetKey `json:"to"`
	SourceAmount                chainmodel.Amount   `json:"source_amount"`
	DestinationAmount           chainmodel.Amount   `json:"destination_amount"`
	Nonce                       uint64              `json:"nonce"`
	InitiatorSourceAddress      string              `json:"initiator_source_address"`
	InitiatorDestinationAddress string              `json:"initiator_destination_address"`
	SecretHash                  secretkey.Hash      `json:"secret_hash"`
	BitcoinOptionalRecipient    string              `json:"bitcoin_optional_recipient,omitempty"`
	CreatedAt                   time.Time           `json:"created_at"`
	InputTokenPrice             float64             `json:"input_token_price"`
	OutputTokenPrice            float64             `json:"output_token_price"`
}

// canonicalJSON renders the fields that participate in create_id hashing
// in a fixed field order, independent of Go's (stable but incidental)
// struct-tag JSON ordering, so the hash is a genuine function of content.
func (c CreateOrder) canonicalJSON() ([]byte, error) {
	type canonical struct {
		From                        chainmodel.AssetKey `json:"from"`
		To                          chainmodel.AssetKey `json:"to"`
		SourceAmount                string              `json:"source_amount"`
		DestinationAmount           string              `json:"destination_amount"`
		Nonce                       uint64              `json:"nonce"`
		InitiatorSourceAddress      string              `json:"initiator_source_address"`
		InitiatorDestinationAddress string              `json:"initiator_destination_address"`
		SecretHash                  string              `json:"secret_hash"`
		BitcoinOptionalRecipient    string              `json:"bitcoin_optional_recipient"`
	}
	return json.Marshal(canonical{
		From:                        c.From,
		To:                          c.To,
		SourceAmount:                c.SourceAmount.String(),
		DestinationAmount:           c.DestinationAmount.String(),
		Nonce:                       c.Nonce,
		InitiatorSourceAddress:      c.InitiatorSourceAddress,
		InitiatorDestinationAddress: c.InitiatorDestinationAddress,
		SecretHash:                  fmt.Sprintf("%x", c.SecretHash),
		BitcoinOptionalRecipient:    c.BitcoinOptionalRecipient,
	})
}

// CreateID computes create_id = SHA256(canonical(create_order)), hex
// encoded, per spec §3.
func (c CreateOrder) CreateID() (string, error) {
	raw, err := c.canonicalJSON()
	if err != nil {
		return "", fmt.Errorf("order: canonicalizing create order: %w", err)
	}
	sum := sha256.Sum256(raw)
	return fmt.Sprintf("%x", sum), nil
}

// Swap is one side (source or destination) of an Order.
type Swap struct {
	SwapID         string            `json:"swap_id"`
	Chain          chainmodel.ChainId `json:"chain"`
	HTLCAddress    string            `json:"htlc_address"`
	TokenAddress   string            `json:"token_address,omitempty"`
	Initiator      string            `json:"initiator"`
	Redeemer       string            `json:"redeemer"`
	DepositAddress string            `json:"deposit_address"`

	Amount       chainmodel.Amount `json:"amount"`
	FilledAmount chainmodel.Amount `json:"filled_amount"`
	Timelock     uint64            `json:"timelock"`

	SecretHash secretkey.Hash   `json:"secret_hash"`
	Secret     *secretkey.Secret `json:"secret,omitempty"`

	InitiateTxHash      string `json:"initiate_tx_hash,omitempty"`
	InitiateBlockNumber *uint64 `json:"initiate_block_number,omitempty"`
	RedeemTxHash        string `json:"redeem_tx_hash,omitempty"`
	RedeemBlockNumber   *uint64 `json:"redeem_block_number,omitempty"`
	RefundTxHash        string `json:"refund_tx_hash,omitempty"`
	RefundBlockNumber   *uint64 `json:"refund_block_number,omitempty"`
}

// IsInitiated reports whether this swap's HTLC has been observed created.
func (s *Swap) IsInitiated() bool {
	return s.InitiateTxHash != ""
}

// IsConfirmed reports whether the initiate event has reached finality.
func (s *Swap) IsConfirmed() bool {
	return s.InitiateBlockNumber != nil
}

// IsRedeemed reports whether this swap has been redeemed.
func (s *Swap) IsRedeemed() bool {
	return s.RedeemTxHash != ""
}

// IsRefunded reports whether this swap has been refunded.
func (s *Swap) IsRefunded() bool {
	return s.RefundTxHash != ""
}

// Order is the root aggregate: an immutable create request plus the two
// mutable swap legs watchers and the executor observe and fill in.
type Order struct {
	CreateID    string      `json:"create_id"`
	CreateOrder CreateOrder `json:"create_order"`

	SourceSwap      Swap `json:"source_swap"`
	DestinationSwap Swap `json:"destination_swap"`

	CreatedAt time.Time `json:"created_at"`
}

// Swap returns the requested side's swap record.
func (o *Order) Swap(side Side) *Swap {
	if side == Source {
		return &o.SourceSwap
	}
	return &o.DestinationSwap
}

// SourceChain and DestinationChain read the chain component out of the
// order's asset keys, used by components that branch on chain kind
// (e.g. the executor's Bitcoin-vs-EVM source logic).
func (o *Order) SourceChain() chainmodel.ChainId {
	return o.CreateOrder.From.Chain()
}

func (o *Order) DestinationChain() chainmodel.ChainId {
	return o.CreateOrder.To.Chain()
}
