package api

import (
	"errors"
	"net/http"

	"github.com/phrazzld/kioku/internal/api/shared"
	"github.com/phrazzld/kioku/internal/domain"
	"github.com/phrazzld/kioku/internal/service/auth"
	"github.com/phrazzld/kioku/internal/service/study"
	"github.com/phrazzld/kioku/internal/store"
)

// MapErrorToStatusCode maps internal errors to HTTP status codes based on
// the error type.
func MapErrorToStatusCode(err error) int {
	switch {
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrMissingToken):
		return http.StatusUnauthorized

	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, study.ErrInvalidHistoryWindow),
		errors.Is(err, store.ErrInvalidEntity):
		return http.StatusBadRequest

	case errors.Is(err, domain.ErrTotalFailure):
		return http.StatusUnprocessableEntity

	case errors.Is(err, store.ErrUserNotFound):
		return http.StatusNotFound

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a client-facing message for err. Validation
// messages are built from field names and limits only, so they are passed
// through; everything else is replaced by a fixed message.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		return verr.Error()
	case errors.Is(err, study.ErrInvalidHistoryWindow):
		return "Invalid history window"
	case errors.Is(err, domain.ErrTotalFailure):
		return "No reviews could be saved"
	case errors.Is(err, auth.ErrExpiredToken):
		return "Token expired"
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrMissingToken):
		return "Invalid token"
	case errors.Is(err, store.ErrUserNotFound):
		return "User not found"
	case errors.Is(err, store.ErrInvalidEntity):
		return "Invalid entity data"
	default:
		return "An unexpected error occurred"
	}
}

// itemFailure classifies why one review was not committed.
func itemFailure(err error) (kind, message string) {
	switch {
	case errors.Is(err, domain.ErrReferential):
		return FailureKindNotFound, "Item not found"
	case errors.Is(err, domain.ErrPersistence):
		return FailureKindPersistence, "Failed to save review"
	default:
		return FailureKindUnknown, "Review not saved"
	}
}

// HandleAPIError writes the status and safe message for err and logs the
// redacted cause.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error) {
	status := MapErrorToStatusCode(err)
	shared.RespondWithErrorAndLog(w, r, status, GetSafeErrorMessage(err), err)
}
