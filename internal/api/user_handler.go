package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/kioku/internal/api/shared"
	"github.com/phrazzld/kioku/internal/platform/logger"
	"github.com/phrazzld/kioku/internal/service/study"
)

// UserHandler serves the read-only views of a user's study history.
type UserHandler struct {
	studyService study.StudyService
	logger       *slog.Logger
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(studyService study.StudyService, logger *slog.Logger) *UserHandler {
	if studyService == nil {
		panic("studyService cannot be nil for UserHandler")
	}
	if logger == nil {
		panic("logger cannot be nil for UserHandler")
	}
	return &UserHandler{
		studyService: studyService,
		logger:       logger.With(slog.String("component", "user_handler")),
	}
}

// GetStats handles GET /api/user/stats.
func (h *UserHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	userID, ok := requireUserID(w, r, log)
	if !ok {
		return
	}

	stats, err := h.studyService.GetUserStats(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, statsToResponse(stats))
}

// GetReviewHistory handles GET /api/user/review-history?days=N.
func (h *UserHandler) GetReviewHistory(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	userID, ok := requireUserID(w, r, log)
	if !ok {
		return
	}

	days, err := queryInt(r, "days", 1, study.MaxHistoryDays)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	history, err := h.studyService.GetReviewHistory(r.Context(), userID, days)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, history)
}

// ListProgress handles GET /api/user/progress.
func (h *UserHandler) ListProgress(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	userID, ok := requireUserID(w, r, log)
	if !ok {
		return
	}

	records, err := h.studyService.ListProgress(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, progressToResponse(records))
}

// ListDue handles GET /api/reviews/due?limit=N.
func (h *UserHandler) ListDue(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	userID, ok := requireUserID(w, r, log)
	if !ok {
		return
	}

	limit, err := queryInt(r, "limit", 1, study.MaxDueLimit)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	records, err := h.studyService.ListDue(r.Context(), userID, limit)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, progressToResponse(records))
}
