package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gourl/msid/internal/models"
	"github.com/gourl/msid/internal/services"
)

// CreateProfileRequest represents the request body for creating a profile.
type CreateProfileRequest struct {
	Name       string `json:"name"`
	Epoch      string `json:"epoch,omitempty"`
	Alphabet   string `json:"alphabet,omitempty"`
	Resolution string `json:"resolution,omitempty"`
}

// ProfileResponse represents a stored profile.
type ProfileResponse struct {
	Name       string  `json:"name"`
	Epoch      *string `json:"epoch,omitempty"`
	Alphabet   string  `json:"alphabet,omitempty"`
	Resolution string  `json:"resolution,omitempty"`
	Minted     int64   `json:"minted"`
	CreatedAt  string  `json:"created_at"`
}

// ProfileListResponse represents the response for profile listing.
type ProfileListResponse struct {
	Profiles []ProfileResponse `json:"profiles"`
}

// ProfileHandler handles profile management endpoints.
type ProfileHandler struct {
	service services.ProfileService
}

// NewProfileHandler creates a new ProfileHandler.
func NewProfileHandler(svc services.ProfileService) *ProfileHandler {
	return &ProfileHandler{service: svc}
}

// Create handles POST /api/v1/profiles requests.
func (h *ProfileHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	cfg, err := services.ParseConfig(req.Epoch, req.Alphabet, req.Resolution)
	if err != nil {
		writeError(w, err)
		return
	}

	create := models.ProfileCreate{
		Name:       req.Name,
		Alphabet:   cfg.Alphabet,
		Resolution: cfg.Resolution,
	}
	if !cfg.Epoch.IsZero() {
		create.Epoch = &cfg.Epoch
	}

	profile, err := h.service.Create(r.Context(), create)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toProfileResponse(profile))
}

// List handles GET /api/v1/profiles requests.
func (h *ProfileHandler) List(w http.ResponseWriter, r *http.Request) {
	profiles, err := h.service.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	resp := ProfileListResponse{Profiles: make([]ProfileResponse, 0, len(profiles))}
	for _, p := range profiles {
		resp.Profiles = append(resp.Profiles, toProfileResponse(p))
	}
	writeJSON(w, http.StatusOK, resp)
}

// Get handles GET /api/v1/profiles/{name} requests.
func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request, name string) {
	profile, err := h.service.Get(r.Context(), name)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toProfileResponse(profile))
}

// Delete handles DELETE /api/v1/profiles/{name} requests.
func (h *ProfileHandler) Delete(w http.ResponseWriter, r *http.Request, name string) {
	if err := h.service.Delete(r.Context(), name); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func toProfileResponse(p *models.Profile) ProfileResponse {
	return ProfileResponse{
		Name:       p.Name,
		Epoch:      formatOptionalTime(p.Epoch),
		Alphabet:   p.Alphabet,
		Resolution: p.Resolution.String(),
		Minted:     p.Minted,
		CreatedAt:  p.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// formatOptionalTime formats t, or returns nil for a nil t.
func formatOptionalTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(time.RFC3339Nano)
	return &s
}
