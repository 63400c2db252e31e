package handler

import "github.com/school/backend/internal/domain/shared"

// APIResponse documents the success envelope with a typed data field
// @Description Standard API response wrapper
type APIResponse[T any] struct {
	Success bool   `json:"success" example:"true"`
	Data    T      `json:"data,omitempty"`
	Message string `json:"message" example:"Teacher fetched successfully"`
}

// ErrorResponse documents the failure envelope
// @Description Standard error response
type ErrorResponse struct {
	Success   bool                `json:"success" example:"false"`
	Message   string              `json:"message" example:"Invalid input data"`
	Code      string              `json:"code" example:"VALIDATION_FAILED"`
	Errors    []shared.FieldError `json:"errors,omitempty"`
	RequestID string              `json:"requestId,omitempty" example:"4f1c2a9e-2b7d-4d2f-9c55-0b1c8a7e2f10"`
}

// MessageResponse documents a success envelope without data
// @Description Success response without data
type MessageResponse struct {
	Success bool   `json:"success" example:"true"`
	Message string `json:"message" example:"Teacher deleted successfully"`
}

// TeacherStatsResponse documents the teacher counters
// @Description Teacher counts by employment status
type TeacherStatsResponse struct {
	Total    int64 `json:"total" example:"42"`
	Active   int64 `json:"active" example:"37"`
	Inactive int64 `json:"inactive" example:"5"`
}
