package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"tradematch.app/linkup/internal/domain"
	"tradematch.app/linkup/internal/http/dto"
	"tradematch.app/linkup/internal/http/middleware"
	"tradematch.app/linkup/internal/service"
)

func writeError(c *gin.Context, status int, code, message string, details []dto.ErrorDetail) {
	c.JSON(status, dto.ErrorResponse{
		Error:     message,
		Code:      code,
		RequestID: middleware.GetRequestID(c.Request.Context()),
		Details:   details,
	})
}

// respondError maps service and domain errors onto the HTTP error taxonomy.
func respondError(c *gin.Context, err error) {
	ctx := c.Request.Context()

	var (
		verr *domain.ValidationError
		terr *domain.TransitionError
	)
	switch {
	case errors.As(err, &verr):
		details := make([]dto.ErrorDetail, len(verr.Issues))
		for i, issue := range verr.Issues {
			details[i] = dto.ErrorDetail{Field: issue.Field, Reason: issue.Reason}
		}
		writeError(c, http.StatusBadRequest, dto.CodeValidation, "invalid request", details)
	case errors.As(err, &terr):
		writeError(c, http.StatusBadRequest, dto.CodeInvalidTransition, terr.Error(), nil)
	case errors.Is(err, service.ErrConnectionNotFound):
		writeError(c, http.StatusNotFound, dto.CodeNotFound, "connection not found", nil)
	case errors.Is(err, service.ErrConflict):
		writeError(c, http.StatusConflict, dto.CodeConflict, err.Error(), nil)
	case errors.Is(err, service.ErrUnauthenticated):
		writeError(c, http.StatusUnauthorized, dto.CodeUnauthorized, "not authenticated", nil)
	default:
		slog.ErrorContext(ctx, "request failed", "error", err)
		writeError(c, http.StatusInternalServerError, dto.CodeInternal, "internal server error", nil)
	}
}

// respondBindError reports a body or query that could not be decoded.
func respondBindError(c *gin.Context, err error) {
	slog.WarnContext(c.Request.Context(), "invalid request", "error", err)

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		details := make([]dto.ErrorDetail, len(fieldErrs))
		for i, fe := range fieldErrs {
			details[i] = dto.ErrorDetail{Field: fe.Field(), Reason: "failed " + fe.Tag() + " check"}
		}
		writeError(c, http.StatusBadRequest, dto.CodeValidation, "invalid request", details)
		return
	}
	writeError(c, http.StatusBadRequest, dto.CodeValidation, err.Error(), nil)
}
