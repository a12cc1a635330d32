package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"cogniplay/internal/games"
	"cogniplay/internal/models"
	"cogniplay/internal/service"
)

// GamesHandler serves the static game catalog
type GamesHandler struct {
	progressService *service.ProgressService
	logger          *zap.Logger
}

// NewGamesHandler creates the games handler
func NewGamesHandler(progressService *service.ProgressService, logger *zap.Logger) *GamesHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GamesHandler{progressService: progressService, logger: logger}
}

// Catalog handles GET /api/games, optionally filtered by category or
// difficulty
func (h *GamesHandler) Catalog(w http.ResponseWriter, r *http.Request) {
	if category := r.URL.Query().Get("category"); category != "" {
		respondData(w, http.StatusOK, games.ByCategory(category))
		return
	}
	if difficulty := r.URL.Query().Get("difficulty"); difficulty != "" {
		respondData(w, http.StatusOK, games.ByDifficulty(models.Difficulty(difficulty)))
		return
	}
	respondData(w, http.StatusOK, games.Catalog())
}

// Game handles GET /api/games/{id}
func (h *GamesHandler) Game(w http.ResponseWriter, r *http.Request) {
	info, ok := games.ByID(r.PathValue("id"))
	if !ok {
		respondError(w, http.StatusNotFound, "game not found")
		return
	}
	respondData(w, http.StatusOK, info)
}

// Recommended handles GET /api/games/recommended. Suggestions exclude games
// the user already played, honoring a preferred category.
func (h *GamesHandler) Recommended(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	progress, err := h.progressService.Progress(user.ID)
	if err != nil {
		h.logger.Error("failed to load progress", zap.String("userId", user.ID), zap.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to load recommendations")
		return
	}

	// Map played game types back to the catalog entries they cover
	var playedIDs []string
	for _, g := range games.Catalog() {
		if progress.StatsFor(g.Type).TimesPlayed > 0 {
			playedIDs = append(playedIDs, g.ID)
		}
	}

	respondData(w, http.StatusOK, games.Recommended(playedIDs, r.URL.Query().Get("category")))
}
