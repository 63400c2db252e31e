package dto

import "github.com/school/backend/internal/domain/shared"

// Response is the envelope every endpoint answers with
type Response struct {
	Success   bool                `json:"success"`
	Data      any                 `json:"data,omitempty"`
	Message   string              `json:"message"`
	Code      string              `json:"code,omitempty"`
	Errors    []shared.FieldError `json:"errors,omitempty"`
	RequestID string              `json:"requestId,omitempty"`
}

// NewSuccessResponse creates a success response
func NewSuccessResponse(data any, message string) Response {
	return Response{
		Success: true,
		Data:    data,
		Message: message,
	}
}

// NewErrorResponse creates an error response
func NewErrorResponse(code, message string) Response {
	return Response{
		Success: false,
		Code:    code,
		Message: message,
	}
}

// NewErrorResponseWithRequestID creates an error response carrying the request ID
func NewErrorResponseWithRequestID(code, message, requestID string) Response {
	resp := NewErrorResponse(code, message)
	resp.RequestID = requestID
	return resp
}

// NewValidationErrorResponse creates a validation error response with field details
func NewValidationErrorResponse(message, requestID string, details []shared.FieldError) Response {
	return Response{
		Success:   false,
		Code:      ErrCodeValidation,
		Message:   message,
		Errors:    details,
		RequestID: requestID,
	}
}

// ListRequest holds the paging query parameters shared by list endpoints
type ListRequest struct {
	Page   int    `form:"page" binding:"omitempty,min=1,max=1000000"`
	Limit  int    `form:"limit" binding:"omitempty,min=1,max=100"`
	Search string `form:"search" binding:"max=100"`
}

// IDRequest binds a UUID path parameter
type IDRequest struct {
	ID string `uri:"id" binding:"required,uuid"`
}
