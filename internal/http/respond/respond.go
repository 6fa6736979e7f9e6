// Package respond implements the uniform envelope every handler replies
// with: { status: "success"|"fail"|"error", data?, message? }, plus the
// one mapping from an apperr.Kind to its HTTP status and envelope status.
package respond

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/basegraph/salesassist/internal/apperr"
)

// Status is the envelope's closed set of outcomes.
type Status string

const (
	StatusSuccess Status = "success"
	StatusFail    Status = "fail"
	StatusError   Status = "error"
)

// envelope is the wire shape of every response body.
type envelope struct {
	Status  Status `json:"status"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

// OK writes a 200 success envelope carrying data.
func OK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, envelope{Status: StatusSuccess, Data: data})
}

// Created writes a 201 success envelope carrying data.
func Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, envelope{Status: StatusSuccess, Data: data})
}

// Fail writes a client-error envelope (4xx, status "fail") with a
// user-facing message and no data.
func Fail(c *gin.Context, httpStatus int, message string) {
	c.JSON(httpStatus, envelope{Status: StatusFail, Message: message})
}

// Error writes a server-error envelope (status "error") with a
// user-facing message and no data.
func Error(c *gin.Context, httpStatus int, message string) {
	c.JSON(httpStatus, envelope{Status: StatusError, Message: message})
}

// FromError maps an apperr.Kind to an HTTP status and envelope status,
// and writes the envelope. A nil err is a programmer mistake; callers
// only call this on a non-nil err.
func FromError(c *gin.Context, err error) {
	kind, ok := apperr.KindOf(err)
	if !ok {
		Error(c, http.StatusInternalServerError, "internal error")
		return
	}

	switch kind {
	case apperr.KindValidationFailed:
		Fail(c, http.StatusBadRequest, err.Error())
	case apperr.KindUnauthorized:
		Fail(c, http.StatusUnauthorized, err.Error())
	case apperr.KindInvalidSessionID:
		Fail(c, http.StatusBadRequest, err.Error())
	case apperr.KindSessionNotFound:
		Fail(c, http.StatusNotFound, err.Error())
	case apperr.KindDependencyUnavailable, apperr.KindDependencyTimeout,
		apperr.KindDependencyAuth, apperr.KindDependencyNotFound,
		apperr.KindDependencyRateLimited, apperr.KindParseFailed:
		Error(c, http.StatusBadGateway, "a downstream dependency failed")
	default:
		Error(c, http.StatusInternalServerError, "internal error")
	}
}
