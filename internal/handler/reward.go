package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/dhollis/choreboard/internal/ledger"
	"github.com/dhollis/choreboard/internal/model"
	"github.com/dhollis/choreboard/internal/store"
	"github.com/dhollis/choreboard/internal/websocket"
)

type RewardHandler struct {
	rewardStore *store.RewardStore
	ledger      *ledger.Ledger
	hub         *websocket.Hub
	logger      *slog.Logger
}

func NewRewardHandler(rs *store.RewardStore, l *ledger.Ledger, hub *websocket.Hub, logger *slog.Logger) *RewardHandler {
	return &RewardHandler{rewardStore: rs, ledger: l, hub: hub, logger: logger}
}

type rewardResponse struct {
	model.Reward
	Redemptions []model.RewardRedemption `json:"redemptions"`
}

func (h *RewardHandler) List(w http.ResponseWriter, r *http.Request) {
	rewards, err := h.rewardStore.List()
	if err != nil {
		h.logger.Error("list rewards", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list rewards"})
		return
	}

	resp := make([]rewardResponse, 0, len(rewards))
	for _, rw := range rewards {
		redemptions, err := h.rewardStore.ListRedemptions(rw.ID)
		if err != nil {
			h.logger.Error("list redemptions", "reward_id", rw.ID, "error", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list rewards"})
			return
		}
		if redemptions == nil {
			redemptions = []model.RewardRedemption{}
		}
		resp = append(resp, rewardResponse{Reward: rw, Redemptions: redemptions})
	}
	writeJSON(w, http.StatusOK, resp)
}

type rewardRequest struct {
	Name       string `json:"name"`
	PointsCost int    `json:"points_cost"`
}

func (h *RewardHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req rewardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}
	if req.PointsCost < 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "points_cost must not be negative"})
		return
	}

	reward, err := h.rewardStore.Create(req.Name, req.PointsCost)
	if err != nil {
		h.logger.Error("create reward", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to create reward"})
		return
	}

	h.hub.Broadcast(websocket.NewMessage("reward", "created", reward.ID, nil))
	writeJSON(w, http.StatusCreated, reward)
}

type redeemRequest struct {
	ProfileID int64  `json:"profile_id"`
	Date      string `json:"date"`
}

func (h *RewardHandler) Redeem(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	var req redeemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	date, err := parseDateBody(req.Date)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid date, want YYYY-MM-DD"})
		return
	}

	result, err := h.ledger.RedeemReward(id, req.ProfileID, date)
	if err != nil {
		writeLedgerError(w, h.logger, "redeem reward", err)
		return
	}

	h.hub.Broadcast(websocket.BalanceMessage("reward", "redeemed", id, req.ProfileID, result.NewBalance))
	writeJSON(w, http.StatusOK, result)
}
