package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gourl/msid/internal/ratelimit"
	"github.com/gourl/msid/internal/services"
)

// MintIDsRequest represents the request body for minting identifiers. Time
// fields accept RFC 3339 or unix milliseconds.
type MintIDsRequest struct {
	Profile    string `json:"profile,omitempty"`
	Epoch      string `json:"epoch,omitempty"`
	Alphabet   string `json:"alphabet,omitempty"`
	Resolution string `json:"resolution,omitempty"`
	At         string `json:"at,omitempty"`
	Count      int    `json:"count,omitempty"`
}

// MintIDsResponse represents the response for freshly minted identifiers.
type MintIDsResponse struct {
	IDs        []string `json:"ids"`
	Resolution string   `json:"resolution"`
	Profile    string   `json:"profile,omitempty"`
}

// IDInfoResponse represents a decoded identifier.
type IDInfoResponse struct {
	ID         string `json:"id"`
	Time       string `json:"time"`
	UnixMilli  int64  `json:"unix_ms"`
	Resolution string `json:"resolution"`
	Inferred   bool   `json:"inferred"`
}

// IDHandler handles identifier endpoints.
type IDHandler struct {
	service services.IDService
	quota   ratelimit.Limiter
}

// NewIDHandler creates a new IDHandler.
func NewIDHandler(svc services.IDService, opts ...IDHandlerOption) *IDHandler {
	h := &IDHandler{service: svc}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Mint handles POST /api/v1/ids requests. An empty body mints one
// identifier for the current time.
func (h *IDHandler) Mint(w http.ResponseWriter, r *http.Request) {
	var req MintIDsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeBadRequest(w, "invalid request body")
		return
	}

	cfg, err := services.ParseConfig(req.Epoch, req.Alphabet, req.Resolution)
	if err != nil {
		writeError(w, err)
		return
	}

	mintReq := services.MintRequest{
		Profile: req.Profile,
		Config:  cfg,
		Count:   req.Count,
	}
	if req.At != "" {
		at, err := services.ParseInstant(req.At)
		if err != nil {
			writeError(w, err)
			return
		}
		mintReq.At = &at
	}

	if !h.chargeQuota(w, r, max(req.Count, 1)) {
		return
	}

	resp, err := h.service.Mint(r.Context(), mintReq)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, MintIDsResponse{
		IDs:        resp.IDs,
		Resolution: resp.Resolution.String(),
		Profile:    resp.Profile,
	})
}

// Inspect handles GET /api/v1/ids/{id} requests. The codec configuration
// is read from the profile, epoch, alphabet and resolution query parameters.
func (h *IDHandler) Inspect(w http.ResponseWriter, r *http.Request, id string) {
	q := r.URL.Query()
	cfg, err := services.ParseConfig(q.Get("epoch"), q.Get("alphabet"), q.Get("resolution"))
	if err != nil {
		writeError(w, err)
		return
	}

	resp, err := h.service.Inspect(r.Context(), services.InspectRequest{
		ID:      id,
		Profile: q.Get("profile"),
		Config:  cfg,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, IDInfoResponse{
		ID:         resp.ID,
		Time:       resp.Time.UTC().Format(services.TimeLayout),
		UnixMilli:  resp.UnixMilli,
		Resolution: resp.Resolution.String(),
		Inferred:   resp.Inferred,
	})
}
