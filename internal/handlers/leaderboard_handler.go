package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"cogniplay/internal/service"
)

// LeaderboardHandler serves the ranking endpoints
type LeaderboardHandler struct {
	leaderboardService *service.LeaderboardService
	logger             *zap.Logger
}

// NewLeaderboardHandler creates the leaderboard handler
func NewLeaderboardHandler(leaderboardService *service.LeaderboardService, logger *zap.Logger) *LeaderboardHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LeaderboardHandler{leaderboardService: leaderboardService, logger: logger}
}

// Leaderboard handles GET /api/leaderboard?sort=score&limit=N
func (h *LeaderboardHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	metric := service.LeaderboardMetric(strings.ToLower(r.URL.Query().Get("sort")))

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			respondError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	entries, err := h.leaderboardService.Leaderboard(metric, limit)
	if err != nil {
		if errors.Is(err, service.ErrUnknownMetric) {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("failed to build leaderboard", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to build leaderboard")
		return
	}
	respondData(w, http.StatusOK, entries)
}

// Rank handles GET /api/leaderboard/me?sort=score
func (h *LeaderboardHandler) Rank(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	metric := service.LeaderboardMetric(strings.ToLower(r.URL.Query().Get("sort")))

	entry, err := h.leaderboardService.RankOf(metric, user.ID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			respondError(w, http.StatusNotFound, "user not ranked")
			return
		}
		h.logger.Error("failed to rank user", zap.String("userId", user.ID), zap.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to rank user")
		return
	}
	respondData(w, http.StatusOK, entry)
}
