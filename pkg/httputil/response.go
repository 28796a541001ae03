// Package httputil renders the API's response envelopes. Handlers never
// build status codes or error bodies themselves; they hand data or an
// error to this package.
package httputil

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/risingbsm/bsm-api/internal/query"
	"github.com/risingbsm/bsm-api/pkg/errors"
)

// Response is the success envelope.
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
	Meta    *Meta       `json:"meta,omitempty"`
}

// Meta carries response metadata. Pagination always nests here, never
// beside the data.
type Meta struct {
	Pagination *query.Pagination `json:"pagination,omitempty"`
}

// ErrorResponse is the error envelope.
type ErrorResponse struct {
	Success    bool     `json:"success"`
	Error      string   `json:"error"`
	ErrorCode  string   `json:"errorCode"`
	StatusCode int      `json:"statusCode"`
	Errors     []string `json:"errors,omitempty"`
}

// OK sends a 200 success envelope.
func OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{Success: true, Data: data})
}

// OKMessage sends a 200 success envelope with a human-readable message.
func OKMessage(c *gin.Context, data interface{}, message string) {
	c.JSON(http.StatusOK, Response{Success: true, Data: data, Message: message})
}

// Created sends a 201 success envelope.
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{Success: true, Data: data})
}

// Paginated sends a 200 success envelope with pagination metadata.
func Paginated(c *gin.Context, data interface{}, p query.Pagination) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    data,
		Meta:    &Meta{Pagination: &p},
	})
}

// Error converts any error into the error envelope. Unexpected errors
// map to 500 and are logged with their cause; the cause itself never
// reaches the client.
func Error(c *gin.Context, err error) {
	appErr := errors.AsAppError(err)
	if appErr.Status >= http.StatusInternalServerError {
		log.Error().
			Err(err).
			Str("path", c.Request.URL.Path).
			Str("method", c.Request.Method).
			Msg("request failed")
	}
	c.JSON(appErr.Status, ErrorResponse{
		Success:    false,
		Error:      appErr.Message,
		ErrorCode:  string(appErr.Code),
		StatusCode: appErr.Status,
		Errors:     appErr.Details,
	})
}

// BindError reports a malformed request body or query string.
func BindError(c *gin.Context, err error) {
	Error(c, errors.Validation("invalid request payload", err.Error()))
}

// Abort renders err like Error and stops the handler chain. Middleware
// uses this; plain Error would let later handlers run.
func Abort(c *gin.Context, err error) {
	appErr := errors.AsAppError(err)
	c.AbortWithStatusJSON(appErr.Status, ErrorResponse{
		Success:    false,
		Error:      appErr.Message,
		ErrorCode:  string(appErr.Code),
		StatusCode: appErr.Status,
		Errors:     appErr.Details,
	})
}
