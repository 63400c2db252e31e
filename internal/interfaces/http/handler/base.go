// Package handler holds the gin handlers of the REST API.
package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/school/backend/internal/domain/shared"
	"github.com/school/backend/internal/infrastructure/logger"
	"github.com/school/backend/internal/interfaces/http/dto"
	"github.com/school/backend/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

// BaseHandler provides the response helpers shared by all handlers
type BaseHandler struct{}

// Success sends a 200 response
func (h *BaseHandler) Success(c *gin.Context, data any, message string) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data, message))
}

// Created sends a 201 response
func (h *BaseHandler) Created(c *gin.Context, data any, message string) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data, message))
}

// Error sends an error response with an explicit status
func (h *BaseHandler) Error(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, dto.NewErrorResponseWithRequestID(code, message, middleware.GetRequestID(c)))
}

// BadRequest sends a 400 response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, message)
}

// NotFound sends a 404 response
func (h *BaseHandler) NotFound(c *gin.Context, message string) {
	h.Error(c, http.StatusNotFound, dto.ErrCodeNotFound, message)
}

// ValidationError sends a 400 response listing field problems
func (h *BaseHandler) ValidationError(c *gin.Context, details []shared.FieldError) {
	c.JSON(http.StatusBadRequest, dto.NewValidationErrorResponse(
		"Invalid input data",
		middleware.GetRequestID(c),
		details,
	))
}

// BindError answers a failed ShouldBind call with itemized errors
func (h *BaseHandler) BindError(c *gin.Context, err error) {
	h.ValidationError(c, middleware.FormatValidationErrors(err))
}

// HandleError maps an error to the envelope. Domain errors keep their code,
// message and field details; anything else is a 500 with the error text.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)

	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		if len(domainErr.Details) > 0 {
			resp := dto.NewValidationErrorResponse(domainErr.Message, middleware.GetRequestID(c), domainErr.Details)
			resp.Code = domainErr.Code
			c.JSON(dto.GetHTTPStatus(domainErr.Code), resp)
			return
		}
		h.Error(c, dto.GetHTTPStatus(domainErr.Code), domainErr.Code, domainErr.Message)
		return
	}

	if errors.Is(err, context.DeadlineExceeded) {
		h.Error(c, http.StatusGatewayTimeout, dto.ErrCodeTimeout, "Request timed out")
		return
	}

	logger.GetGinLogger(c).Error("Request failed", zap.Error(err))
	h.Error(c, http.StatusInternalServerError, dto.ErrCodeInternal, err.Error())
}

// parseID reads a UUID path parameter, answering 400 when malformed
func (h *BaseHandler) parseID(c *gin.Context, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		h.ValidationError(c, []shared.FieldError{{Field: param, Message: "Invalid UUID format"}})
		return uuid.Nil, false
	}
	return id, true
}
