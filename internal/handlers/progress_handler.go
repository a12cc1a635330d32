package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"cogniplay/internal/models"
	"cogniplay/internal/service"
)

// ProgressHandler serves the progress and settings endpoints
type ProgressHandler struct {
	progressService *service.ProgressService
	logger          *zap.Logger
}

// NewProgressHandler creates the progress handler
func NewProgressHandler(progressService *service.ProgressService, logger *zap.Logger) *ProgressHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProgressHandler{progressService: progressService, logger: logger}
}

// progressView decorates the aggregate with its derived values
type progressView struct {
	*models.UserProgress
	LevelProgress int `json:"levelProgress"`
}

// Progress handles GET /api/progress
func (h *ProgressHandler) Progress(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	progress, err := h.progressService.Progress(user.ID)
	if err != nil {
		h.logger.Error("failed to load progress", zap.String("userId", user.ID), zap.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to load progress")
		return
	}

	respondData(w, http.StatusOK, progressView{
		UserProgress:  progress,
		LevelProgress: progress.LevelProgress(),
	})
}

// SubmitSession handles POST /api/progress/sessions
func (h *ProgressHandler) SubmitSession(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	var session models.GameSession
	if !decodeBody(w, r, &session) {
		return
	}

	progress, outcome, err := h.progressService.SubmitSession(user.ID, session)
	if err != nil {
		if errors.Is(err, service.ErrSessionNotFinished) {
			respondError(w, http.StatusBadRequest, "game session is not finished")
			return
		}
		h.logger.Error("failed to submit session", zap.String("userId", user.ID), zap.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to submit session")
		return
	}

	respondData(w, http.StatusOK, struct {
		Progress interface{}           `json:"progress"`
		Outcome  models.SessionOutcome `json:"outcome"`
	}{
		Progress: progressView{UserProgress: progress, LevelProgress: progress.LevelProgress()},
		Outcome:  outcome,
	})
}

// Stats handles GET /api/progress/stats
func (h *ProgressHandler) Stats(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	stats, err := h.progressService.Stats(user.ID)
	if err != nil {
		h.logger.Error("failed to load stats", zap.String("userId", user.ID), zap.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to load stats")
		return
	}
	respondData(w, http.StatusOK, stats)
}

// StatsFor handles GET /api/progress/stats/{gameType}
func (h *ProgressHandler) StatsFor(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	gameType := models.GameType(r.PathValue("gameType"))

	known := false
	for _, gt := range models.GameTypes {
		if gt == gameType {
			known = true
			break
		}
	}
	if !known {
		respondError(w, http.StatusNotFound, "unknown game type")
		return
	}

	stats, err := h.progressService.StatsFor(user.ID, gameType)
	if err != nil {
		h.logger.Error("failed to load stats", zap.String("userId", user.ID), zap.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to load stats")
		return
	}
	respondData(w, http.StatusOK, stats)
}

// Achievements handles GET /api/progress/achievements?recent=N
func (h *ProgressHandler) Achievements(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	progress, err := h.progressService.Progress(user.ID)
	if err != nil {
		h.logger.Error("failed to load progress", zap.String("userId", user.ID), zap.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to load achievements")
		return
	}

	if raw := r.URL.Query().Get("recent"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			respondError(w, http.StatusBadRequest, "recent must be a positive integer")
			return
		}
		respondData(w, http.StatusOK, progress.RecentAchievements(n))
		return
	}
	respondData(w, http.StatusOK, progress.Achievements)
}

// Reset handles DELETE /api/progress/reset. Irreversible.
func (h *ProgressHandler) Reset(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	if err := h.progressService.ResetProgress(user.ID); err != nil {
		h.logger.Error("failed to reset progress", zap.String("userId", user.ID), zap.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to reset progress")
		return
	}
	respondMessage(w, http.StatusOK, "progress reset")
}

// Settings handles GET /api/progress/accessibility
func (h *ProgressHandler) Settings(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	settings, err := h.progressService.Settings(user.ID)
	if err != nil {
		h.logger.Error("failed to load settings", zap.String("userId", user.ID), zap.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to load settings")
		return
	}
	respondData(w, http.StatusOK, settings)
}

// UpdateSettings handles PUT /api/progress/accessibility
func (h *ProgressHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	var update models.AccessibilityUpdate
	if !decodeBody(w, r, &update) {
		return
	}

	settings, err := h.progressService.UpdateSettings(user.ID, update)
	if err != nil {
		h.logger.Error("failed to update settings", zap.String("userId", user.ID), zap.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to update settings")
		return
	}
	respondData(w, http.StatusOK, settings)
}
