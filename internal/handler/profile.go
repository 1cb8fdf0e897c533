package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dhollis/choreboard/internal/dueset"
	"github.com/dhollis/choreboard/internal/ledger"
	"github.com/dhollis/choreboard/internal/recurrence"
	"github.com/dhollis/choreboard/internal/store"
	"github.com/dhollis/choreboard/internal/websocket"
)

type ProfileHandler struct {
	profileStore *store.ProfileStore
	builder      *dueset.Builder
	hub          *websocket.Hub
	logger       *slog.Logger
}

func NewProfileHandler(ps *store.ProfileStore, b *dueset.Builder, hub *websocket.Hub, logger *slog.Logger) *ProfileHandler {
	return &ProfileHandler{profileStore: ps, builder: b, hub: hub, logger: logger}
}

type profileRequest struct {
	Name       string `json:"name"`
	Role       string `json:"role"`
	ColorTheme string `json:"color_theme"`
	IconName   string `json:"icon_name"`
}

func (r *profileRequest) validate() string {
	r.Name = strings.TrimSpace(r.Name)
	r.Role = strings.TrimSpace(r.Role)
	switch {
	case r.Name == "":
		return "name is required"
	case r.Role == "":
		return "role is required"
	case r.ColorTheme == "":
		return "color_theme is required"
	case r.IconName == "":
		return "icon_name is required"
	}
	return ""
}

// List renders the daily dashboard: every profile with its due chores for the
// requested date (today when the date param is absent).
func (h *ProfileHandler) List(w http.ResponseWriter, r *http.Request) {
	date, err := parseDateParam(r, "date")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid date, want YYYY-MM-DD"})
		return
	}

	profiles, err := h.builder.ForDate(date)
	if err != nil {
		h.logger.Error("resolve due set", "date", date.Format(recurrence.DateFormat), "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to resolve due chores"})
		return
	}
	writeJSON(w, http.StatusOK, profiles)
}

func (h *ProfileHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req profileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	if msg := req.validate(); msg != "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
		return
	}

	profile, err := h.profileStore.Create(req.Name, req.Role, req.ColorTheme, req.IconName)
	if err != nil {
		h.logger.Error("create profile", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to create profile"})
		return
	}

	h.hub.Broadcast(websocket.NewMessage("profile", "created", profile.ID, nil))
	writeJSON(w, http.StatusCreated, profile)
}

func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	existing, err := h.profileStore.GetByID(id)
	if err != nil {
		h.logger.Error("get profile", "profile_id", id, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get profile"})
		return
	}
	if existing == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "profile not found"})
		return
	}

	var req profileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	if msg := req.validate(); msg != "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
		return
	}

	profile, err := h.profileStore.Update(id, req.Name, req.Role, req.ColorTheme, req.IconName)
	if err != nil {
		h.logger.Error("update profile", "profile_id", id, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to update profile"})
		return
	}

	h.hub.Broadcast(websocket.NewMessage("profile", "updated", id, nil))
	writeJSON(w, http.StatusOK, profile)
}

// --- shared helpers ---

func parseIDParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(r.PathValue("id"), 10, 64)
}

// parseDateParam reads a YYYY-MM-DD query parameter, defaulting to today.
func parseDateParam(r *http.Request, name string) (time.Time, error) {
	return parseDateBody(r.URL.Query().Get(name))
}

// parseDateBody parses a YYYY-MM-DD value from a request body, defaulting to
// today when empty.
func parseDateBody(v string) (time.Time, error) {
	if v == "" {
		now := time.Now()
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	return recurrence.ParseDate(v)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeLedgerError maps the ledger error taxonomy onto HTTP statuses. The
// structured kind rides along so clients can branch without string matching.
func writeLedgerError(w http.ResponseWriter, logger *slog.Logger, op string, err error) {
	kind := ledger.KindOf(err)

	var status int
	switch kind {
	case ledger.KindValidation:
		status = http.StatusBadRequest
	case ledger.KindNotFound:
		status = http.StatusNotFound
	case ledger.KindConflict:
		status = http.StatusConflict
	default:
		status = http.StatusInternalServerError
	}

	detail := "failed to " + op
	var lerr *ledger.Error
	if errors.As(err, &lerr) && kind != ledger.KindStorage {
		detail = lerr.Msg
	}
	if status >= 500 {
		logger.Error(op, "error", err)
	}

	writeJSON(w, status, map[string]string{"error": detail, "kind": kind.String()})
}
