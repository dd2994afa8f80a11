package quote

import (
	"encoding/json"
	"net/http"

	"github.com/charmbracelet/log"

	"github.com/klingonswap/bridge/internal/bridgeerr"
	"github.com/klingonswap/bridge/internal/chainmodel"
)

// envelope is the {status, result} wire shape every bridge HTTP endpoint
// uses, per spec §6.
type envelope struct {
	Status string      `json:"status"`
	Result interface{} `json:"result"`
}

func writeOK(w http.ResponseWriter, result interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(envelope{Status: "Ok", Result: result})
}

func writeError(w http.ResponseWriter, log *log.Logger, err error) {
	kind := bridgeerr.KindOf(err)
	log.Warn("quote: request failed", "kind", kind, "err", err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(bridgeerr.HTTPStatus(kind))
	_ = json.NewEncoder(w).Encode(envelope{Status: "Error", Result: err.Error()})
}

// Handler wires the Service's operations onto http.ServeMux routes.
type Handler struct {
	service *Service
	log     *log.Logger
}

func NewHandler(service *Service, logger *log.Logger) *Handler {
	return &Handler{service: service, log: logger}
}

func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/supported-assets", h.handleSupportedAssets)
	mux.HandleFunc("/quote", h.handleQuote)
	mux.HandleFunc("/health", h.handleHealth)
}

func (h *Handler) handleSupportedAssets(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeOK(w, h.service.SupportedAssets())
}

func (h *Handler) handleQuote(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	q := r.URL.Query()
	from := chainmodel.AssetKey(q.Get("from"))
	to := chainmodel.AssetKey(q.Get("to"))
	amountRaw := q.Get("amount")

	if from == "" || to == "" || amountRaw == "" {
		writeError(w, h.log, bridgeerr.InvalidRequest("from, to, and amount are required"))
		return
	}

	amount, err := chainmodel.ParseAmount(amountRaw)
	if err != nil {
		writeError(w, h.log, bridgeerr.InvalidRequest("invalid amount: %v", err))
		return
	}

	result, err := h.service.Quote(r.Context(), from, to, amount)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeOK(w, []Result{result})
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeOK(w, "ok")
}
