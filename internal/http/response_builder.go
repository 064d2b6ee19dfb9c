// Package http provides HTTP server and handler implementations.
//
// This file implements the builder for JSON responses and the mapping from
// gateway results to status codes.

package http

import (
	"encoding/json"
	"net/http"
	"strings"

	"fintrack/internal/core"
	"fintrack/internal/services"
)

// JSONResponseBuilder provides a fluent API for building JSON responses.
type JSONResponseBuilder struct {
	statusCode int
	body       any
	headers    map[string]string
}

// NewJSONResponse creates a new response builder with default 200 status.
func NewJSONResponse() *JSONResponseBuilder {
	return &JSONResponseBuilder{
		statusCode: http.StatusOK,
		headers:    make(map[string]string),
	}
}

func (b *JSONResponseBuilder) Status(code int) *JSONResponseBuilder {
	b.statusCode = code
	return b
}

func (b *JSONResponseBuilder) Header(name, value string) *JSONResponseBuilder {
	b.headers[name] = value
	return b
}

// Body sets the value encoded as the response body.
func (b *JSONResponseBuilder) Body(v any) *JSONResponseBuilder {
	b.body = v
	return b
}

// Write sends the built response. An unencodable body degrades to a 500
// with a fixed message.
func (b *JSONResponseBuilder) Write(w http.ResponseWriter) {
	for name, value := range b.headers {
		w.Header().Set(name, value)
	}

	payload, err := json.Marshal(b.body)
	if err != nil {
		b.statusCode = http.StatusInternalServerError
		payload = []byte(`{"success":false,"error":"failed to encode response"}`)
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(b.statusCode)
	_, _ = w.Write(payload)
	_, _ = w.Write([]byte("\n"))
}

// errorBody is the failed Result shape.
type errorBody struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// validationBody is the 422 shape: a Result failure plus per-field messages.
type validationBody struct {
	Success bool              `json:"success"`
	Error   string            `json:"error"`
	Fields  map[string]string `json:"fields"`
}

// ErrorResponse creates a failed Result response with the given status.
func ErrorResponse(statusCode int, message string) *JSONResponseBuilder {
	return NewJSONResponse().
		Status(statusCode).
		Body(errorBody{Error: message})
}

func BadRequestError(message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusBadRequest, message)
}

func NotFoundError(message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusNotFound, message)
}

func InternalServerError(message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusInternalServerError, message)
}

// ValidationError creates the 422 response for a rejected form.
func ValidationError(fields map[string]string) *JSONResponseBuilder {
	return NewJSONResponse().
		Status(http.StatusUnprocessableEntity).
		Body(validationBody{Error: "validation failed", Fields: fields})
}

// ResultResponse writes a gateway result, choosing the status from its
// error message. okStatus is used on success.
func ResultResponse[T any](res core.Result[T], okStatus int) *JSONResponseBuilder {
	if res.Success {
		return NewJSONResponse().Status(okStatus).Body(res)
	}
	return ErrorResponse(StatusForError(res.Error), res.Error)
}

// validationMessages are the prefixes of the core field-rule errors.
var validationMessages = []string{
	core.ErrInvalidDate.Error(),
	core.ErrInvalidMonth.Error(),
	core.ErrInvalidYear.Error(),
	core.ErrInvalidAmount.Error(),
	core.ErrInvalidType.Error(),
	core.ErrInvalidCurrency.Error(),
	core.ErrEmptyField.Error(),
}

// StatusForError maps a failed Result message to an HTTP status.
func StatusForError(msg string) int {
	switch msg {
	case core.ErrNotFound.Error():
		return http.StatusNotFound
	case services.MsgNotAuthenticated:
		return http.StatusUnauthorized
	case services.MsgNoPeriod:
		return http.StatusBadRequest
	}
	for _, prefix := range validationMessages {
		if strings.HasPrefix(msg, prefix) {
			return http.StatusUnprocessableEntity
		}
	}
	return http.StatusInternalServerError
}
