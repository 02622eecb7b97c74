package api

import (
	"encoding/json"
	"net/http"

	"github.com/martinsuchenak/devcalc/internal/log"
	"github.com/martinsuchenak/devcalc/internal/model"
	"github.com/martinsuchenak/devcalc/internal/netcalc"
)

// maxBodyBytes caps calculation request bodies
const maxBodyBytes = 1 << 20

// Handler handles HTTP requests
type Handler struct {
	calc *netcalc.Calculator
}

// NewHandler creates a new API handler
func NewHandler(calc *netcalc.Calculator) *Handler {
	return &Handler{calc: calc}
}

// RegisterRoutes registers all API routes
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/devices/calculate", h.calculateDevice)

	mux.HandleFunc("GET /api/networks/sample", h.sampleNetwork)
	mux.HandleFunc("GET /api/networks/describe", h.describeNetwork)

	mux.HandleFunc("GET /api/mac", h.generateMAC)

	mux.HandleFunc("GET /api/health", h.health)
}

// calculateDevice handles POST /api/devices/calculate
func (h *Handler) calculateDevice(w http.ResponseWriter, r *http.Request) {
	var req model.DeviceRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		h.writeJSON(w, http.StatusBadRequest, model.Failure("invalid request body"))
		return
	}

	outcome, err := h.calc.Evaluate(req)
	if err != nil {
		status := statusFor(err)
		if status == http.StatusInternalServerError {
			log.Error("Device calculation failed", "request_id", RequestID(r), "error", err)
		} else {
			log.Debug("Device calculation rejected", "request_id", RequestID(r), "kind", netcalc.KindOf(err), "error", err)
		}
		h.writeJSON(w, status, outcome)
		return
	}

	log.Debug("Device calculated", "request_id", RequestID(r), "type", req.Type, "name", outcome.Data.Name, "ip", outcome.Data.IP)
	h.writeJSON(w, http.StatusOK, outcome)
}

// sampleNetwork handles GET /api/networks/sample?network=CIDR
func (h *Handler) sampleNetwork(w http.ResponseWriter, r *http.Request) {
	network := r.URL.Query().Get("network")
	if network == "" {
		h.writeError(w, http.StatusBadRequest, "network query parameter is required")
		return
	}

	sample, err := netcalc.SampleNetwork(h.calc.Source(), network)
	if err != nil {
		h.writeError(w, statusFor(err), err.Error())
		return
	}

	h.writeJSON(w, http.StatusOK, sample.ToModel())
}

// describeNetwork handles GET /api/networks/describe?network=CIDR
func (h *Handler) describeNetwork(w http.ResponseWriter, r *http.Request) {
	network := r.URL.Query().Get("network")
	if network == "" {
		h.writeError(w, http.StatusBadRequest, "network query parameter is required")
		return
	}

	info, err := netcalc.DescribeNetwork(network)
	if err != nil {
		h.writeError(w, statusFor(err), err.Error())
		return
	}

	h.writeJSON(w, http.StatusOK, info)
}

// generateMAC handles GET /api/mac
func (h *Handler) generateMAC(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"mac": netcalc.GenerateMAC(h.calc.Source())})
}

// health handles GET /api/health
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// statusFor maps a calculation failure to an HTTP status
func statusFor(err error) int {
	switch netcalc.KindOf(err) {
	case netcalc.KindMissingField, netcalc.KindInvalidNetwork, netcalc.KindNetworkTooSmall, netcalc.KindInvalidRequest:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// writeJSON writes a JSON response
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError writes an error response
func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"status": model.StatusError, "message": message})
}
