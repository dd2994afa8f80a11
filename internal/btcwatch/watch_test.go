package btcwatch

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/require"

	"github.com/klingonswap/bridge/internal/btchtlc"
	"github.com/klingonswap/bridge/internal/chainmodel"
	"github.com/klingonswap/bridge/internal/order"
	"github.com/klingonswap/bridge/internal/secretkey"
)

type fakeEsplora struct {
	utxos  map[string][]UTXO
	txs    map[string][]Tx
	height int64
}

func newFakeEsploraServer(t *testing.T, f *fakeEsplora) *EsploraClient {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/blocks/tip/height", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(f.height)
	})
	mux.HandleFunc("/address/", func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path
		switch {
		case len(path) > 5 && path[len(path)-5:] == "/utxo":
			addr := path[len("/address/") : len(path)-len("/utxo")]
			_ = json.NewEncoder(w).Encode(f.utxos[addr])
		case len(path) > 4 && path[len(path)-4:] == "/txs":
			addr := path[len("/address/") : len(path)-len("/txs")]
			_ = json.NewEncoder(w).Encode(f.txs[addr])
		default:
			http.NotFound(w, r)
		}
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return NewEsploraClient(srv.URL)
}

func newTestStore(t *testing.T) order.Store {
	t.Helper()
	store, err := order.OpenSQLiteStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func sampleBitcoinOrder(t *testing.T, nonce uint64, depositAddr string, redeemerKey, initiatorKey *btcec.PrivateKey) *order.Order {
	t.Helper()
	_, hash, err := secretkey.GenerateSecret()
	require.NoError(t, err)

	c := order.CreateOrder{
		From:                        chainmodel.NewAssetKey(chainmodel.BitcoinTestnet, "btc"),
		To:                          chainmodel.NewAssetKey(chainmodel.AvalancheTestnet, "usdt"),
		SourceAmount:                chainmodel.NewAmount(100000),
		DestinationAmount:           chainmodel.NewAmount(100000),
		Nonce:                       nonce,
		InitiatorSourceAddress:      "tb1pinitiator",
		InitiatorDestinationAddress: "0xredeemer",
		SecretHash:                  hash,
	}
	id, err := c.CreateID()
	require.NoError(t, err)

	return &order.Order{
		CreateID:    id,
		CreateOrder: c,
		SourceSwap: order.Swap{
			SwapID:         id + "-src",
			Chain:          chainmodel.BitcoinTestnet,
			DepositAddress: depositAddr,
			Initiator:      hex.EncodeToString(schnorr.SerializePubKey(initiatorKey.PubKey())),
			Redeemer:       hex.EncodeToString(schnorr.SerializePubKey(redeemerKey.PubKey())),
			Amount:         chainmodel.NewAmount(100000),
			Timelock:       144,
			SecretHash:     hash,
		},
		DestinationSwap: order.Swap{
			SwapID: id + "-dst",
			Chain:  chainmodel.AvalancheTestnet,
		},
	}
}

func TestPollDetectsDeposit(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	redeemerKey, err := btcec.NewPrivateKey()
	require.NoError(t, err)
	initiatorKey, err := btcec.NewPrivateKey()
	require.NoError(t, err)

	o := sampleBitcoinOrder(t, 1, "tb1pdeposit", redeemerKey, initiatorKey)
	require.NoError(t, store.Create(ctx, o))

	f := &fakeEsplora{
		height: 1000,
		utxos: map[string][]UTXO{
			"tb1pdeposit": {
				{TxID: "deposit-tx", Value: 100000, Status: TxStatus{Confirmed: true, BlockHeight: 998}},
			},
		},
		txs: map[string][]Tx{},
	}
	client := newFakeEsploraServer(t, f)
	w := NewWatcher(client, store, chainmodel.BitcoinTestnet, log.Default())

	require.NoError(t, w.Poll(ctx))

	got, err := store.GetByCreateID(ctx, o.CreateID)
	require.NoError(t, err)
	require.Equal(t, "deposit-tx", got.SourceSwap.InitiateTxHash)
	require.NotNil(t, got.SourceSwap.InitiateBlockNumber)
	require.Equal(t, uint64(998), *got.SourceSwap.InitiateBlockNumber)
}

func TestPollDetectsRedeemAndExtractsSecret(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	redeemerKey, err := btcec.NewPrivateKey()
	require.NoError(t, err)
	initiatorKey, err := btcec.NewPrivateKey()
	require.NoError(t, err)

	o := sampleBitcoinOrder(t, 2, "tb1pdeposit2", redeemerKey, initiatorKey)
	o.SourceSwap.InitiateTxHash = "deposit-tx"
	require.NoError(t, store.Create(ctx, o))

	secret, secretHash, err := secretkey.GenerateSecret()
	require.NoError(t, err)
	o.SourceSwap.SecretHash = secretHash
	require.NoError(t, store.ApplySwapUpdate(ctx, o.CreateID, order.Source, order.SwapUpdate{
		SwapID:         o.SourceSwap.SwapID,
		InitiateTxHash: "deposit-tx",
	}))

	tree, err := btchtlc.BuildScriptTree(btchtlc.Params{
		SecretHash:      secretHash,
		Timelock:        144,
		RedeemerPubKey:  redeemerKey.PubKey(),
		InitiatorPubKey: initiatorKey.PubKey(),
	})
	require.NoError(t, err)

	// reload to pick up the stored secret hash matching the tree we just built
	reloaded, err := store.GetByCreateID(ctx, o.CreateID)
	require.NoError(t, err)
	reloaded.SourceSwap.SecretHash = secretHash

	witness := [][]byte{
		make([]byte, 64),
		secret[:],
		tree.RedeemScript,
		mustControlBlock(t, tree, tree.RedeemScript),
	}

	f := &fakeEsplora{
		height: 1000,
		utxos:  map[string][]UTXO{},
		txs: map[string][]Tx{
			"tb1pdeposit2": {
				{
					TxID:   "redeem-tx",
					Status: TxStatus{Confirmed: true, BlockHeight: 999},
					Vin: []TxIn{
						{TxID: "deposit-tx", Witness: hexWitness(witness)},
					},
				},
			},
		},
	}
	client := newFakeEsploraServer(t, f)
	w := NewWatcher(client, store, chainmodel.BitcoinTestnet, log.Default())

	require.NoError(t, w.Poll(ctx))

	got, err := store.GetByCreateID(ctx, o.CreateID)
	require.NoError(t, err)
	require.Equal(t, "redeem-tx", got.SourceSwap.RedeemTxHash)
	require.NotNil(t, got.SourceSwap.Secret)
	require.Equal(t, secret, *got.SourceSwap.Secret)
}

func mustControlBlock(t *testing.T, tree *btchtlc.ScriptTree, script []byte) []byte {
	t.Helper()
	cb, err := tree.ControlBlock(script)
	require.NoError(t, err)
	return cb
}

func hexWitness(items [][]byte) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = hex.EncodeToString(item)
	}
	return out
}
