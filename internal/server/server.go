package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/dhollis/choreboard/internal/dueset"
	"github.com/dhollis/choreboard/internal/handler"
	"github.com/dhollis/choreboard/internal/ledger"
	"github.com/dhollis/choreboard/internal/middleware"
	"github.com/dhollis/choreboard/internal/store"
	ws "github.com/dhollis/choreboard/internal/websocket"
)

type Server struct {
	db       *sql.DB
	hub      *ws.Hub
	profileH *handler.ProfileHandler
	choreH   *handler.ChoreHandler
	penaltyH *handler.PenaltyHandler
	rewardH  *handler.RewardHandler
	logger   *slog.Logger
}

func New(db *sql.DB, logger *slog.Logger) *Server {
	hub := ws.NewHub(logger.With("component", "websocket"))

	profileStore := store.NewProfileStore(db)
	choreStore := store.NewChoreStore(db)
	penaltyStore := store.NewPenaltyStore(db)
	rewardStore := store.NewRewardStore(db)

	ledg := ledger.New(db, logger.With("component", "ledger"))
	builder := dueset.NewBuilder(profileStore, choreStore, logger.With("component", "dueset"))

	return &Server{
		db:       db,
		hub:      hub,
		profileH: handler.NewProfileHandler(profileStore, builder, hub, logger.With("component", "profile")),
		choreH:   handler.NewChoreHandler(choreStore, profileStore, builder, ledg, hub, logger.With("component", "chore")),
		penaltyH: handler.NewPenaltyHandler(penaltyStore, ledg, hub, logger.With("component", "penalty")),
		rewardH:  handler.NewRewardHandler(rewardStore, ledg, hub, logger.With("component", "reward")),
		logger:   logger,
	}
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	// Profile API routes — GET doubles as the daily dashboard
	mux.HandleFunc("GET /api/profiles", s.profileH.List)
	mux.HandleFunc("POST /api/profiles", s.profileH.Create)
	mux.HandleFunc("PUT /api/profiles/{id}", s.profileH.Update)

	// Chore API routes
	mux.HandleFunc("GET /api/chores", s.choreH.List)
	mux.HandleFunc("POST /api/chores", s.choreH.Create)
	mux.HandleFunc("DELETE /api/chores/{id}", s.choreH.Delete)
	mux.HandleFunc("PATCH /api/chores/{id}/toggle", s.choreH.Toggle)

	// Penalty API routes
	mux.HandleFunc("GET /api/penalties", s.penaltyH.List)
	mux.HandleFunc("POST /api/penalties", s.penaltyH.Create)
	mux.HandleFunc("DELETE /api/penalties/{id}", s.penaltyH.Delete)

	// Reward API routes
	mux.HandleFunc("GET /api/rewards", s.rewardH.List)
	mux.HandleFunc("POST /api/rewards", s.rewardH.Create)
	mux.HandleFunc("POST /api/rewards/{id}/redeem", s.rewardH.Redeem)

	mux.HandleFunc("GET /ws", ws.HandleWebSocket(s.hub))
	mux.HandleFunc("GET /health", s.healthHandler)

	return middleware.RequestLogger(s.logger.With("component", "http"))(mux)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
