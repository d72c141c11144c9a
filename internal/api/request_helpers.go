package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/phrazzld/kioku/internal/api/shared"
	"github.com/phrazzld/kioku/internal/domain"
)

// requireUserID returns the authenticated user. When the request carries
// none it writes a 401 and returns false.
func requireUserID(w http.ResponseWriter, r *http.Request, log *slog.Logger) (uuid.UUID, bool) {
	userID, ok := shared.UserIDFromContext(r.Context())
	if !ok {
		log.Warn("user ID not found or invalid in request context")
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return uuid.Nil, false
	}
	return userID, true
}

// queryInt parses an optional integer query parameter. A missing parameter
// yields 0; anything outside [min, max] is a ValidationError.
func queryInt(r *http.Request, name string, min, max int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, domain.NewValidationError(name, "must be an integer")
	}
	if v < min || v > max {
		return 0, domain.NewValidationError(name, fmt.Sprintf("must be between %d and %d", min, max))
	}
	return v, nil
}
