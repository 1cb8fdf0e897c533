package handler

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/dhollis/choreboard/internal/dueset"
	"github.com/dhollis/choreboard/internal/ledger"
	"github.com/dhollis/choreboard/internal/model"
	"github.com/dhollis/choreboard/internal/recurrence"
	"github.com/dhollis/choreboard/internal/store"
	"github.com/dhollis/choreboard/internal/websocket"
)

type ChoreHandler struct {
	choreStore   *store.ChoreStore
	profileStore *store.ProfileStore
	builder      *dueset.Builder
	ledger       *ledger.Ledger
	hub          *websocket.Hub
	logger       *slog.Logger
}

func NewChoreHandler(cs *store.ChoreStore, ps *store.ProfileStore, b *dueset.Builder, l *ledger.Ledger, hub *websocket.Hub, logger *slog.Logger) *ChoreHandler {
	return &ChoreHandler{choreStore: cs, profileStore: ps, builder: b, ledger: l, hub: hub, logger: logger}
}

type choreRequest struct {
	Title      string   `json:"title"`
	Points     int      `json:"points"`
	IsRepeat   bool     `json:"is_repeat"`
	Interval   string   `json:"interval"` // daily | weekly | monthly
	StartDate  string   `json:"start_date"`
	Weekdays   []string `json:"weekdays"` // three-letter codes, weekly only
	Until      string   `json:"until"`
	Time       string   `json:"time"` // HH:MM, daily only; empty = all day
	ProfileIDs []int64  `json:"profile_ids"`
}

// rule assembles and validates the recurrence rule described by the request.
func (req *choreRequest) rule() (recurrence.Rule, error) {
	start, err := recurrence.ParseDate(req.StartDate)
	if err != nil {
		return recurrence.Rule{}, fmt.Errorf("invalid start_date: %q", req.StartDate)
	}

	r := recurrence.Rule{Kind: recurrence.Once, Start: start}
	if req.IsRepeat {
		switch req.Interval {
		case "daily":
			r.Kind = recurrence.Daily
			r.TimeOfDay = req.Time
		case "weekly":
			r.Kind = recurrence.Weekly
			for _, code := range req.Weekdays {
				wd, ok := recurrence.ParseWeekday(code)
				if !ok {
					return recurrence.Rule{}, fmt.Errorf("unknown weekday: %q", code)
				}
				r.Weekdays = append(r.Weekdays, wd)
			}
		case "monthly":
			r.Kind = recurrence.Monthly
		}
		if req.Until != "" {
			until, err := recurrence.ParseDate(req.Until)
			if err != nil {
				return recurrence.Rule{}, fmt.Errorf("invalid until: %q", req.Until)
			}
			r.Until = &until
		}
	}
	if err := r.Validate(); err != nil {
		return recurrence.Rule{}, err
	}
	return r, nil
}

type choreResponse struct {
	model.Chore
	Schedule string `json:"schedule"`
}

func (h *ChoreHandler) List(w http.ResponseWriter, r *http.Request) {
	chores, err := h.choreStore.List()
	if err != nil {
		h.logger.Error("list chores", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list chores"})
		return
	}

	resp := make([]choreResponse, 0, len(chores))
	for _, c := range chores {
		cr := choreResponse{Chore: c}
		if rule, err := recurrence.Parse(c.RecurrenceRule); err == nil {
			cr.Schedule = rule.Describe()
		}
		resp = append(resp, cr)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *ChoreHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req choreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "title is required"})
		return
	}
	if req.Points < 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "points must not be negative"})
		return
	}
	if req.IsRepeat && req.Interval != "daily" && req.Interval != "weekly" && req.Interval != "monthly" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "interval must be daily, weekly, or monthly"})
		return
	}
	if len(req.ProfileIDs) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "at least one profile_id is required"})
		return
	}

	rule, err := req.rule()
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	for _, pid := range req.ProfileIDs {
		profile, err := h.profileStore.GetByID(pid)
		if err != nil {
			h.logger.Error("check profile", "profile_id", pid, "error", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to check profile"})
			return
		}
		if profile == nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "profile not found"})
			return
		}
	}

	chore, err := h.choreStore.Create(req.Title, req.Points, rule.String(), req.ProfileIDs)
	if err != nil {
		h.logger.Error("create chore", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to create chore"})
		return
	}

	h.hub.Broadcast(websocket.NewMessage("chore", "created", chore.ID, nil))
	writeJSON(w, http.StatusCreated, choreResponse{Chore: *chore, Schedule: rule.Describe()})
}

func (h *ChoreHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	if err := h.ledger.DeleteChore(id); err != nil {
		writeLedgerError(w, h.logger, "delete chore", err)
		return
	}

	h.hub.Broadcast(websocket.NewMessage("chore", "deleted", id, nil))
	w.WriteHeader(http.StatusNoContent)
}

type toggleRequest struct {
	ProfileID   int64  `json:"profile_id"`
	Date        string `json:"date"`
	IsCompleted bool   `json:"is_completed"`
}

// Toggle flips one (chore, profile, date) completion through the ledger and
// returns the refreshed dashboard for that date.
func (h *ChoreHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	var req toggleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	date, err := parseDateBody(req.Date)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid date, want YYYY-MM-DD"})
		return
	}

	result, err := h.ledger.ToggleCompletion(id, req.ProfileID, date, req.IsCompleted)
	if err != nil {
		writeLedgerError(w, h.logger, "toggle completion", err)
		return
	}

	if result.Changed {
		h.hub.Broadcast(websocket.BalanceMessage("chore", "toggled", id, req.ProfileID, result.NewBalance))
	}

	profiles, err := h.builder.ForDate(date)
	if err != nil {
		h.logger.Error("resolve due set after toggle", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to resolve due chores"})
		return
	}
	writeJSON(w, http.StatusOK, profiles)
}
