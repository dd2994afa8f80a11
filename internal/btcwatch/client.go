// Package btcwatch detects Bitcoin-side HTLC deposits, redemptions, and
// refunds against per-order P2TR addresses (spec §4.3).
package btcwatch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// EsploraClient is a minimal read-only client for mempool.space-compatible
// Esplora REST APIs, grounded on the same endpoint shapes as the
// mempool.space backend this module's teacher already wraps.
type EsploraClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewEsploraClient(baseURL string) *EsploraClient {
	return &EsploraClient{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// UTXO is an unspent output at a watched address.
type UTXO struct {
	TxID   string   `json:"txid"`
	Vout   uint32   `json:"vout"`
	Value  uint64   `json:"value"`
	Status TxStatus `json:"status"`
}

type TxStatus struct {
	Confirmed   bool   `json:"confirmed"`
	BlockHeight int64  `json:"block_height"`
	BlockHash   string `json:"block_hash"`
}

// Tx is a transaction as returned by the Esplora API, including witness
// data needed to classify HTLC spends.
type Tx struct {
	TxID   string   `json:"txid"`
	Status TxStatus `json:"status"`
	Vin    []TxIn   `json:"vin"`
	Vout   []TxOut  `json:"vout"`
}

type TxIn struct {
	TxID     string   `json:"txid"`
	Vout     uint32   `json:"vout"`
	Witness  []string `json:"witness"`
	Sequence uint32   `json:"sequence"`
}

type TxOut struct {
	ScriptPubKey string `json:"scriptpubkey"`
	Value        uint64 `json:"value"`
}

// AddressUTXOs returns current unspent outputs at address.
func (c *EsploraClient) AddressUTXOs(ctx context.Context, address string) ([]UTXO, error) {
	var out []UTXO
	if err := c.get(ctx, "/address/"+address+"/utxo", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// AddressTxs returns the address's transaction history, newest first,
// used to find the transaction that spent a detected deposit.
func (c *EsploraClient) AddressTxs(ctx context.Context, address string) ([]Tx, error) {
	var out []Tx
	if err := c.get(ctx, "/address/"+address+"/txs", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// BlockHeight returns the current chain tip height.
func (c *EsploraClient) BlockHeight(ctx context.Context) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/blocks/tip/height", nil)
	if err != nil {
		return 0, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, err
	}
	var height int64
	if err := json.Unmarshal(body, &height); err != nil {
		return 0, fmt.Errorf("btcwatch: bad block height response: %w", err)
	}
	return height, nil
}

func (c *EsploraClient) get(ctx context.Context, path string, result interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("btcwatch: unexpected status %d from %s: %s", resp.StatusCode, path, string(body))
	}
	return json.NewDecoder(resp.Body).Decode(result)
}
