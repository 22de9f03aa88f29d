package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/erp/zidsync/internal/domain/connector"
	"github.com/erp/zidsync/internal/domain/mirror"
	"github.com/erp/zidsync/internal/domain/ordersync"
	"github.com/erp/zidsync/internal/domain/queue"
	"github.com/erp/zidsync/internal/domain/shared"
	"github.com/erp/zidsync/internal/domain/stocksync"
	"github.com/erp/zidsync/internal/infrastructure/zid"
	"github.com/erp/zidsync/internal/interfaces/http/dto"
)

// RequestIDKey is the context key for request ID
const RequestIDKey = "X-Request-ID"

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// getRequestID extracts the request ID from the context
func getRequestID(c *gin.Context) string {
	if id := c.GetString(RequestIDKey); id != "" {
		return id
	}
	if id := c.GetHeader(RequestIDKey); id != "" {
		return id
	}
	return ""
}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// SuccessWithMeta sends a success response with pagination meta
func (h *BaseHandler) SuccessWithMeta(c *gin.Context, data any, total int64, page, pageSize int) {
	c.JSON(http.StatusOK, dto.NewSuccessResponseWithMeta(data, total, page, pageSize))
}

// Created sends a 201 created response
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// NoContent sends a 204 no content response
func (h *BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Error sends an error response with the appropriate status code
func (h *BaseHandler) Error(c *gin.Context, statusCode int, code, message string) {
	requestID := getRequestID(c)
	c.JSON(statusCode, dto.NewErrorResponseWithRequestID(code, message, requestID))
}

// ErrorWithCode sends an error response, deriving status code from error code
func (h *BaseHandler) ErrorWithCode(c *gin.Context, code, message string) {
	statusCode := dto.GetHTTPStatus(code)
	requestID := getRequestID(c)
	c.JSON(statusCode, dto.NewErrorResponseWithRequestID(code, message, requestID))
}

// BadRequest sends a 400 bad request response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, message)
}

// NotFound sends a 404 not found response
func (h *BaseHandler) NotFound(c *gin.Context, message string) {
	h.Error(c, http.StatusNotFound, dto.ErrCodeNotFound, message)
}

// Unauthorized sends a 401 unauthorized response
func (h *BaseHandler) Unauthorized(c *gin.Context, message string) {
	h.Error(c, http.StatusUnauthorized, dto.ErrCodeUnauthorized, message)
}

// Forbidden sends a 403 forbidden response
func (h *BaseHandler) Forbidden(c *gin.Context, message string) {
	h.Error(c, http.StatusForbidden, dto.ErrCodeForbidden, message)
}

// Conflict sends a 409 conflict response
func (h *BaseHandler) Conflict(c *gin.Context, message string) {
	h.Error(c, http.StatusConflict, dto.ErrCodeConflict, message)
}

// UnprocessableEntity sends a 422 unprocessable entity response
func (h *BaseHandler) UnprocessableEntity(c *gin.Context, code, message string) {
	h.Error(c, http.StatusUnprocessableEntity, code, message)
}

// InternalError sends a 500 internal server error response
func (h *BaseHandler) InternalError(c *gin.Context, message string) {
	h.Error(c, http.StatusInternalServerError, dto.ErrCodeInternal, message)
}

// TooManyRequests sends a 429 too many requests response
func (h *BaseHandler) TooManyRequests(c *gin.Context, message string) {
	h.Error(c, http.StatusTooManyRequests, dto.ErrCodeRateLimited, message)
}

// ValidationError sends a 400 validation error response with details
func (h *BaseHandler) ValidationError(c *gin.Context, details []dto.ValidationDetail) {
	requestID := getRequestID(c)
	c.JSON(http.StatusBadRequest, dto.NewValidationErrorResponse(
		"Request validation failed",
		requestID,
		details,
	))
}

// sentinelCodes maps domain sentinel errors to wire error codes. Domain
// packages use plain errors for their invariants; this table is the
// single place they are given HTTP semantics.
var sentinelCodes = []struct {
	err  error
	code string
}{
	{connector.ErrConnectorNotFound, dto.ErrCodeNotFound},
	{connector.ErrStoreIDTaken, dto.ErrCodeAlreadyExists},
	{connector.ErrNameRequired, dto.ErrCodeInvalidInput},
	{connector.ErrStoreIDRequired, dto.ErrCodeInvalidInput},
	{connector.ErrTokenRequired, dto.ErrCodeInvalidInput},
	{connector.ErrNotConnected, dto.ErrCodeNotConnected},
	{connector.ErrImportInProgress, dto.ErrCodeImportInProgress},
	{ordersync.ErrOrderNotFound, dto.ErrCodeNotFound},
	{ordersync.ErrReverseNotFound, dto.ErrCodeNotFound},
	{ordersync.ErrDuplicateOrder, dto.ErrCodeAlreadyExists},
	{ordersync.ErrInvalidTransition, dto.ErrCodeInvalidState},
	{ordersync.ErrWaybillExists, dto.ErrCodeInvalidState},
	{ordersync.ErrWaybillNotRequested, dto.ErrCodeInvalidState},
	{ordersync.ErrNotDelivered, dto.ErrCodeBusinessRule},
	{ordersync.ErrItemsRequired, dto.ErrCodeInvalidInput},
	{stocksync.ErrMappingNotFound, dto.ErrCodeNotFound},
	{stocksync.ErrMappingInactive, dto.ErrCodeInvalidState},
	{stocksync.ErrDuplicateMapping, dto.ErrCodeAlreadyExists},
	{stocksync.ErrProductNotLinked, dto.ErrCodeBusinessRule},
	{stocksync.ErrLocationRequired, dto.ErrCodeInvalidInput},
	{mirror.ErrNotFound, dto.ErrCodeNotFound},
	{mirror.ErrDuplicate, dto.ErrCodeAlreadyExists},
	{queue.ErrInvalidModelType, dto.ErrCodeInvalidInput},
	{queue.ErrNoHandler, dto.ErrCodeInvalidInput},
	{zid.ErrUnauthorized, dto.ErrCodeNotConnected},
	{zid.ErrCommunication, dto.ErrCodeRemoteUnavailable},
}

// HandleError converts domain and platform errors to HTTP responses
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	requestID := getRequestID(c)

	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		code := dto.NormalizeErrorCode(domainErr.Code)
		statusCode := dto.GetHTTPStatus(code)
		c.JSON(statusCode, dto.NewErrorResponseWithRequestID(code, domainErr.Message, requestID))
		return
	}

	var remoteErr *zid.RemoteError
	if errors.As(err, &remoteErr) {
		c.JSON(http.StatusBadGateway, dto.NewErrorResponseWithRequestID(
			dto.ErrCodeRemoteRejected, remoteErr.Error(), requestID))
		return
	}

	for _, s := range sentinelCodes {
		if errors.Is(err, s.err) {
			statusCode := dto.GetHTTPStatus(s.code)
			c.JSON(statusCode, dto.NewErrorResponseWithRequestID(s.code, s.err.Error(), requestID))
			return
		}
	}

	c.JSON(http.StatusInternalServerError, dto.NewErrorResponseWithRequestID(
		dto.ErrCodeInternal,
		"An unexpected error occurred",
		requestID,
	))
}
