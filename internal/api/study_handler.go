package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/phrazzld/kioku/internal/api/shared"
	"github.com/phrazzld/kioku/internal/domain"
	"github.com/phrazzld/kioku/internal/platform/logger"
	"github.com/phrazzld/kioku/internal/service/study"
)

// StudyHandler handles study session submissions.
type StudyHandler struct {
	studyService study.StudyService
	logger       *slog.Logger
}

// NewStudyHandler creates a new StudyHandler
func NewStudyHandler(studyService study.StudyService, logger *slog.Logger) *StudyHandler {
	if studyService == nil {
		panic("studyService cannot be nil for StudyHandler")
	}
	if logger == nil {
		panic("logger cannot be nil for StudyHandler")
	}
	return &StudyHandler{
		studyService: studyService,
		logger:       logger.With(slog.String("component", "study_handler")),
	}
}

// SubmitSession handles POST /api/study/sessions. The body is a batch of
// reviews; each review commits independently and the response lists the
// ones that did not.
func (h *StudyHandler) SubmitSession(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := requireUserID(w, r, log)
	if !ok {
		return
	}

	var batch study.Batch
	if err := shared.DecodeJSON(w, r, &batch); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request format", err)
		return
	}

	result, err := h.studyService.SubmitBatch(r.Context(), userID, batch)
	if err != nil {
		var total *domain.TotalFailure
		if errors.As(err, &total) {
			shared.RespondWithErrorBody(w, r, http.StatusUnprocessableEntity, GetSafeErrorMessage(err), err,
				TotalFailureResponse{
					Success:       false,
					Error:         GetSafeErrorMessage(err),
					FailedReviews: failedReviews(total.Failures),
					TraceID:       shared.GetTraceID(r.Context()),
				})
			return
		}
		HandleAPIError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, SubmitSessionResponse{
		Success:       true,
		SessionID:     result.SessionID,
		ReviewEntries: result.ReviewEntries,
		FailedReviews: failedReviews(result.Failed),
		Stats:         result.Stats,
	})
}
