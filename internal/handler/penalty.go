package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/dhollis/choreboard/internal/ledger"
	"github.com/dhollis/choreboard/internal/model"
	"github.com/dhollis/choreboard/internal/store"
	"github.com/dhollis/choreboard/internal/websocket"
)

type PenaltyHandler struct {
	penaltyStore *store.PenaltyStore
	ledger       *ledger.Ledger
	hub          *websocket.Hub
	logger       *slog.Logger
}

func NewPenaltyHandler(ps *store.PenaltyStore, l *ledger.Ledger, hub *websocket.Hub, logger *slog.Logger) *PenaltyHandler {
	return &PenaltyHandler{penaltyStore: ps, ledger: l, hub: hub, logger: logger}
}

func (h *PenaltyHandler) List(w http.ResponseWriter, r *http.Request) {
	penalties, err := h.penaltyStore.List()
	if err != nil {
		h.logger.Error("list penalties", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list penalties"})
		return
	}
	if penalties == nil {
		penalties = []model.Penalty{}
	}
	writeJSON(w, http.StatusOK, penalties)
}

type penaltyRequest struct {
	Name      string `json:"name"`
	Points    int    `json:"points"`
	ProfileID int64  `json:"profile_id"`
}

func (h *PenaltyHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req penaltyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	penalty, err := h.ledger.IssuePenalty(req.ProfileID, req.Name, req.Points)
	if err != nil {
		writeLedgerError(w, h.logger, "issue penalty", err)
		return
	}

	h.hub.Broadcast(websocket.NewMessage("penalty", "issued", penalty.ID, map[string]any{
		"profile_id": penalty.ProfileID,
		"points":     penalty.Points,
	}))
	writeJSON(w, http.StatusCreated, penalty)
}

func (h *PenaltyHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	if err := h.ledger.RevokePenalty(id); err != nil {
		writeLedgerError(w, h.logger, "revoke penalty", err)
		return
	}

	h.hub.Broadcast(websocket.NewMessage("penalty", "revoked", id, nil))
	w.WriteHeader(http.StatusNoContent)
}
