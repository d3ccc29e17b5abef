// Package handler exposes the credit ledger over HTTP. Every handler
// embeds BaseHandler, which owns the response envelope and the mapping
// from domain errors to status codes.
package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/posledger/backend/internal/domain/shared"
	"github.com/posledger/backend/internal/interfaces/http/dto"
	"github.com/posledger/backend/internal/interfaces/http/middleware"
)

// RequestIDKey is the gin context key the request ID middleware writes.
const RequestIDKey = "X-Request-ID"

// BaseHandler provides the shared response vocabulary.
type BaseHandler struct{}

func getRequestID(c *gin.Context) string {
	if id := c.GetString(RequestIDKey); id != "" {
		return id
	}
	return c.GetHeader(RequestIDKey)
}

// getUserID reads the authenticated user from the JWT claims.
func getUserID(c *gin.Context) (uuid.UUID, error) {
	raw := middleware.GetJWTUserID(c)
	if raw == "" {
		return uuid.Nil, errors.New("user ID not found in context")
	}
	return uuid.Parse(raw)
}

// getBusinessID reads the authenticated business from the JWT claims.
func getBusinessID(c *gin.Context) (uuid.UUID, error) {
	raw := middleware.GetJWTBusinessID(c)
	if raw == "" {
		return uuid.Nil, errors.New("business ID not found in context")
	}
	return uuid.Parse(raw)
}

func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

func (h *BaseHandler) SuccessWithMeta(c *gin.Context, data any, total int64, page, pageSize int) {
	c.JSON(http.StatusOK, dto.NewSuccessResponseWithMeta(data, total, page, pageSize))
}

func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

func (h *BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Error writes the error envelope with an explicit status code.
func (h *BaseHandler) Error(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, dto.NewErrorResponseWithRequestID(code, message, getRequestID(c)))
}

// ErrorWithCode derives the status code from the error code.
func (h *BaseHandler) ErrorWithCode(c *gin.Context, code, message string) {
	h.Error(c, dto.GetHTTPStatus(code), code, message)
}

func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, message)
}

func (h *BaseHandler) NotFound(c *gin.Context, message string) {
	h.Error(c, http.StatusNotFound, dto.ErrCodeNotFound, message)
}

func (h *BaseHandler) Unauthorized(c *gin.Context, message string) {
	h.Error(c, http.StatusUnauthorized, dto.ErrCodeUnauthorized, message)
}

func (h *BaseHandler) Forbidden(c *gin.Context, message string) {
	h.Error(c, http.StatusForbidden, dto.ErrCodeForbidden, message)
}

func (h *BaseHandler) Conflict(c *gin.Context, message string) {
	h.Error(c, http.StatusConflict, dto.ErrCodeConflict, message)
}

func (h *BaseHandler) UnprocessableEntity(c *gin.Context, code, message string) {
	h.Error(c, http.StatusUnprocessableEntity, code, message)
}

func (h *BaseHandler) InternalError(c *gin.Context, message string) {
	h.Error(c, http.StatusInternalServerError, dto.ErrCodeInternal, message)
}

func (h *BaseHandler) TooManyRequests(c *gin.Context, message string) {
	h.Error(c, http.StatusTooManyRequests, dto.ErrCodeRateLimited, message)
}

// BindError renders a binding failure, with per-field detail when the
// validator rejected the payload.
func (h *BaseHandler) BindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		middleware.HandleValidationError(c, err)
		return
	}
	h.BadRequest(c, "Invalid request body")
}

// ValidationError writes a 400 with per-field details.
func (h *BaseHandler) ValidationError(c *gin.Context, details []dto.ValidationDetail) {
	c.JSON(http.StatusBadRequest, dto.NewValidationErrorResponse(
		"Request validation failed", getRequestID(c), details))
}

// HandleError translates service-layer errors: repository sentinels
// first, then coded domain errors, and an opaque 500 for anything
// unrecognized so internals never leak to clients.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	switch {
	case errors.Is(err, shared.ErrNotFound):
		h.Error(c, http.StatusNotFound, dto.ErrCodeNotFound, "Resource not found")
		return
	case errors.Is(err, shared.ErrConcurrencyConflict):
		h.Error(c, http.StatusConflict, "CONCURRENCY_CONFLICT",
			"The record was modified by another request, please retry")
		return
	}

	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		h.ErrorWithCode(c, domainErr.Code, domainErr.Message)
		return
	}

	h.Error(c, http.StatusInternalServerError, dto.ErrCodeInternal,
		"An unexpected error occurred")
}
