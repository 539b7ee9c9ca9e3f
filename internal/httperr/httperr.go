// Package httperr renders application errors as JSON responses.
//
// Every error leaves the service in the same envelope:
//
//	{"detail": [{"type": "Unauthorized", "msg": "...", "detail": null}]}
//
// The status code comes from the kind table below; anything that is not an
// *apperr.Error becomes a generic 500.
package httperr

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/mrlokans/crudgate/internal/apperr"
)

const internalMessage = "Internal Server Error"

var statusByKind = map[apperr.Kind]int{
	apperr.KindInvalidCredentials:        http.StatusUnauthorized,
	apperr.KindInvalidToken:              http.StatusUnauthorized,
	apperr.KindTokenExpired:              http.StatusUnauthorized,
	apperr.KindUnauthorized:              http.StatusUnauthorized,
	apperr.KindForbidden:                 http.StatusForbidden,
	apperr.KindOperationNotAllowed:       http.StatusForbidden,
	apperr.KindEntityNotFound:            http.StatusNotFound,
	apperr.KindEntityAlreadyExists:       http.StatusConflict,
	apperr.KindUniqueConstraintViolation: http.StatusConflict,
	apperr.KindValidation:                http.StatusUnprocessableEntity,
	apperr.KindInternal:                  http.StatusInternalServerError,
}

// ErrorDetail is one entry of the error envelope.
type ErrorDetail struct {
	Type   string `json:"type"`
	Msg    string `json:"msg"`
	Detail any    `json:"detail"`
}

// ErrorResponse is the error envelope returned for every failed request.
type ErrorResponse struct {
	Detail []ErrorDetail `json:"detail"`
}

// StatusOf maps an error kind to its HTTP status.
func StatusOf(kind apperr.Kind) int {
	if status, ok := statusByKind[kind]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// Render converts err to a status code and envelope. Unknown errors are
// reported without any internal detail.
func Render(err error) (int, ErrorResponse) {
	if ve, ok := validationDetail(err); ok {
		return http.StatusUnprocessableEntity, ErrorResponse{Detail: []ErrorDetail{{
			Type:   string(apperr.KindValidation),
			Msg:    "Request validation failed",
			Detail: ve,
		}}}
	}

	e, ok := apperr.As(err)
	if !ok || e.Kind == apperr.KindInternal {
		return http.StatusInternalServerError, ErrorResponse{Detail: []ErrorDetail{{
			Type: string(apperr.KindInternal),
			Msg:  internalMessage,
		}}}
	}

	return StatusOf(e.Kind), ErrorResponse{Detail: []ErrorDetail{{
		Type:   string(e.Kind),
		Msg:    e.Msg,
		Detail: e.Detail,
	}}}
}

// Abort writes the envelope for err and stops the handler chain.
func Abort(c *gin.Context, err error) {
	_ = c.Error(err)
	status, body := Render(err)
	c.AbortWithStatusJSON(status, body)
}

// Handler renders errors attached with c.Error by handlers that did not
// write a response themselves, and turns panics into a generic 500.
func Handler(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				log.Error("panic recovered",
					zap.Any("panic", rec),
					zap.String("method", c.Request.Method),
					zap.String("path", c.Request.URL.Path),
					zap.Stack("stack"),
				)
				status, body := Render(errors.New("panic"))
				c.AbortWithStatusJSON(status, body)
			}
		}()

		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		err := c.Errors.Last().Err
		status, body := Render(err)
		if status >= http.StatusInternalServerError {
			log.Error("request failed",
				zap.Error(err),
				zap.String("method", c.Request.Method),
				zap.String("path", c.Request.URL.Path),
			)
		}
		if c.Writer.Written() {
			return
		}
		c.AbortWithStatusJSON(status, body)
	}
}

// FieldError describes one failed validation rule.
type FieldError struct {
	Field string `json:"field"`
	Tag   string `json:"tag"`
	Param string `json:"param,omitempty"`
}

func validationDetail(err error) ([]FieldError, bool) {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return nil, false
	}
	out := make([]FieldError, 0, len(ve))
	for _, fe := range ve {
		out = append(out, FieldError{Field: fe.Field(), Tag: fe.Tag(), Param: fe.Param()})
	}
	return out, true
}
