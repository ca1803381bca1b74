package httpapi

import (
	"errors"
	"net/http"

	"github.com/alexanderramin/itinera/internal/app"
	"github.com/alexanderramin/itinera/internal/domain"
	"github.com/alexanderramin/itinera/internal/repository"
	"github.com/gin-gonic/gin"
)

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// statusFor maps service errors onto HTTP status codes and stable error codes.
func statusFor(err error) (int, string) {
	var (
		stale   *app.StalePreferencesError
		replan  *app.ReplanError
		sources *app.SourcingUnavailableError
	)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound, "NOT_FOUND"
	case errors.As(err, &stale):
		return http.StatusUnprocessableEntity, string(app.ErrStalePreferences)
	case errors.As(err, &replan):
		if replan.Code == app.ReplanErrDataIntegrity {
			return http.StatusInternalServerError, string(replan.Code)
		}
		return http.StatusUnprocessableEntity, string(replan.Code)
	case errors.As(err, &sources):
		return http.StatusServiceUnavailable, string(app.ErrSourcingUnavailable)
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest, "VALIDATION_FAILED"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR"
	}
}

func (s *Server) fail(c *gin.Context, err error) {
	status, code := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.ErrorContext(c.Request.Context(), "request failed",
			"path", c.FullPath(), "request_id", requestID(c), "error", err)
	}
	c.AbortWithStatusJSON(status, gin.H{"error": errorBody{Code: code, Message: err.Error()}})
}

func badRequest(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": errorBody{Code: "BAD_REQUEST", Message: err.Error()}})
}
