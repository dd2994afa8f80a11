package httpapi

import (
	"crypto/ecdsa"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/ethereum/go-ethereum/common"

	"github.com/klingonswap/bridge/internal/bridgeerr"
	"github.com/klingonswap/bridge/internal/chainmodel"
	"github.com/klingonswap/bridge/internal/order"
	"github.com/klingonswap/bridge/internal/secretkey"
)

// envelope is the {status, result} wire shape every bridge HTTP
// endpoint uses, per spec §6.
type envelope struct {
	Status string      `json:"status"`
	Result interface{} `json:"result"`
}

func writeOK(w http.ResponseWriter, result interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(envelope{Status: "Ok", Result: result})
}

func writeError(w http.ResponseWriter, logger *log.Logger, err error) {
	kind := bridgeerr.KindOf(err)
	logger.Warn("httpapi: request failed", "kind", kind, "err", err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(bridgeerr.HTTPStatus(kind))
	_ = json.NewEncoder(w).Encode(envelope{Status: "Error", Result: err.Error()})
}

// Handler wires the Orderbook's order-creation, query, and relay
// operations onto http.ServeMux routes (spec §4.1, §6).
type Handler struct {
	store   order.Store
	builder *Builder
	evm     map[chainmodel.ChainId]EVMChainClient
	signer  *ecdsa.PrivateKey
	log     *log.Logger
}

func NewHandler(store order.Store, builder *Builder, evm map[chainmodel.ChainId]EVMChainClient, signer *ecdsa.PrivateKey, logger *log.Logger) *Handler {
	return &Handler{store: store, builder: builder, evm: evm, signer: signer, log: logger}
}

func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /orders", h.handleCreateOrder)
	mux.HandleFunc("GET /orders/id/{create_id}", h.handleGetOrder)
	mux.HandleFunc("GET /orders/id/{create_id}/stream", h.handleStream)
	mux.HandleFunc("GET /orders/user/{address}", h.handleListByUser)
	mux.HandleFunc("POST /initiate", h.handleInitiate)
	mux.HandleFunc("POST /redeem", h.handleRedeem)
	mux.HandleFunc("GET /health", h.handleHealth)
}

func (h *Handler) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	var req order.CreateOrder
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.log, bridgeerr.InvalidRequest("malformed request body: %v", err))
		return
	}

	o, err := h.builder.Build(r.Context(), req)
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	if err := h.store.Create(r.Context(), o); err != nil {
		writeError(w, h.log, classifyCreateErr(err))
		return
	}

	writeOK(w, o.CreateID)
}

func classifyCreateErr(err error) error {
	switch {
	case err == order.ErrDuplicateCreateID:
		return bridgeerr.Duplicate("an order with this create_id already exists")
	case err == order.ErrDuplicateNonce:
		return bridgeerr.Duplicate("nonce has already been used by this initiator")
	default:
		return bridgeerr.Storage(err)
	}
}

func (h *Handler) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	createID := r.PathValue("create_id")
	o, err := h.lookupOrder(r, createID)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeOK(w, orderView(o))
}

func (h *Handler) lookupOrder(r *http.Request, createID string) (*order.Order, error) {
	o, err := h.store.GetByCreateID(r.Context(), createID)
	if err == order.ErrNotFound {
		return nil, bridgeerr.InvalidRequest("no order with create_id %q", createID)
	}
	if err != nil {
		return nil, bridgeerr.Storage(err)
	}
	return o, nil
}

func (h *Handler) handleListByUser(w http.ResponseWriter, r *http.Request) {
	addr := r.PathValue("address")
	orders, err := h.store.ListByInitiator(r.Context(), addr)
	if err != nil {
		writeError(w, h.log, bridgeerr.Storage(err))
		return
	}
	views := make([]orderWithStatus, 0, len(orders))
	for _, o := range orders {
		views = append(views, orderView(o))
	}
	writeOK(w, views)
}

// orderWithStatus is the JSON shape an Order is returned in: the
// persisted record plus its derived status, which is never stored.
type orderWithStatus struct {
	*order.Order
	Status order.Status `json:"status"`
}

func orderView(o *order.Order) orderWithStatus {
	return orderWithStatus{Order: o, Status: order.Project(o)}
}

type initiateRequest struct {
	OrderID   string `json:"order_id"`
	Signature string `json:"signature"`
	PerformOn string `json:"perform_on"`
}

func (h *Handler) handleInitiate(w http.ResponseWriter, r *http.Request) {
	var req initiateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.log, bridgeerr.InvalidRequest("malformed request body: %v", err))
		return
	}

	side, err := parseSide(req.PerformOn)
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	o, err := h.lookupOrder(r, req.OrderID)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	swap := o.Swap(side)

	if swap.IsInitiated() {
		writeOK(w, swap.InitiateTxHash)
		return
	}

	client, ok := h.evm[swap.Chain]
	if !ok {
		writeError(w, h.log, bridgeerr.InvalidRequest("chain %q has no relay client", swap.Chain))
		return
	}

	signature, err := hexToBytes(req.Signature)
	if err != nil {
		writeError(w, h.log, bridgeerr.InvalidRequest("invalid signature: %v", err))
		return
	}

	token := common.HexToAddress(swap.TokenAddress)
	tx, err := client.InitiateWithSignature(
		r.Context(), h.signer,
		token, common.HexToAddress(swap.Initiator), common.HexToAddress(swap.Redeemer),
		new(big.Int).SetUint64(swap.Timelock), swap.Amount.Big(), [32]byte(swap.SecretHash),
		signature,
	)
	if err != nil {
		writeError(w, h.log, bridgeerr.ContractRevert(err.Error()))
		return
	}
	writeOK(w, tx.Hash().Hex())
}

type redeemRequest struct {
	OrderID   string `json:"order_id"`
	Secret    string `json:"secret"`
	PerformOn string `json:"perform_on"`
}

func (h *Handler) handleRedeem(w http.ResponseWriter, r *http.Request) {
	var req redeemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.log, bridgeerr.InvalidRequest("malformed request body: %v", err))
		return
	}

	side, err := parseSide(req.PerformOn)
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	o, err := h.lookupOrder(r, req.OrderID)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	swap := o.Swap(side)

	if swap.IsRedeemed() {
		writeOK(w, swap.RedeemTxHash)
		return
	}

	secretBytes, err := hexToBytes(req.Secret)
	if err != nil {
		writeError(w, h.log, bridgeerr.InvalidRequest("invalid secret: %v", err))
		return
	}
	secret, err := secretkey.SecretFromBytes(secretBytes)
	if err != nil {
		writeError(w, h.log, bridgeerr.InvalidRequest("%v", err))
		return
	}
	if !secretkey.Verify(secret, swap.SecretHash) {
		writeError(w, h.log, bridgeerr.SecretMismatch())
		return
	}

	client, ok := h.evm[swap.Chain]
	if !ok {
		writeError(w, h.log, bridgeerr.InvalidRequest("chain %q has no relay client", swap.Chain))
		return
	}

	orderID, err := hexTo32(swap.SwapID)
	if err != nil {
		writeError(w, h.log, bridgeerr.Wrap(bridgeerr.KindInternal, "malformed swap_id", err))
		return
	}

	tx, err := client.Redeem(r.Context(), h.signer, orderID, [32]byte(secret))
	if err != nil {
		writeError(w, h.log, bridgeerr.ContractRevert(err.Error()))
		return
	}
	writeOK(w, tx.Hash().Hex())
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeOK(w, "ok")
}

func parseSide(s string) (order.Side, error) {
	switch s {
	case "Source":
		return order.Source, nil
	case "Destination":
		return order.Destination, nil
	default:
		return "", bridgeerr.InvalidRequest("perform_on must be %q or %q", "Source", "Destination")
	}
}

func hexToBytes(s string) ([]byte, error) {
	s = trimHexPrefix(s)
	return hex.DecodeString(s)
}

func hexTo32(s string) ([32]byte, error) {
	var out [32]byte
	b, err := hexToBytes(s)
	if err != nil {
		return out, err
	}
	if len(b) != 32 {
		return out, fmt.Errorf("expected 32 bytes, got %d", len(b))
	}
	copy(out[:], b)
	return out, nil
}

func trimHexPrefix(s string) string {
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		return s[2:]
	}
	return s
}
