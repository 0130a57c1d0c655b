package apperr

import (
	"errors"
	"net/http"
)

// Error 统一业务错误：Status 即 HTTP 状态码，Fields 携带逐字段校验信息
type Error struct {
	Status int
	Msg    string
	Fields map[string]string
	Err    error
}

func (e *Error) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return http.StatusText(e.Status)
}

func (e *Error) Unwrap() error { return e.Err }

func BadRequest(msg string) *Error   { return &Error{Status: http.StatusBadRequest, Msg: msg} }
func Unauthorized(msg string) *Error { return &Error{Status: http.StatusUnauthorized, Msg: msg} }
func Forbidden(msg string) *Error    { return &Error{Status: http.StatusForbidden, Msg: msg} }
func NotFound(msg string) *Error     { return &Error{Status: http.StatusNotFound, Msg: msg} }
func Conflict(msg string) *Error     { return &Error{Status: http.StatusConflict, Msg: msg} }
func TooManyRequests(msg string) *Error {
	return &Error{Status: http.StatusTooManyRequests, Msg: msg}
}
func Internal(msg string, err error) *Error {
	return &Error{Status: http.StatusInternalServerError, Msg: msg, Err: err}
}

// Validation 400 + 逐字段错误
func Validation(fields map[string]string) *Error {
	return &Error{Status: http.StatusBadRequest, Msg: "Validation failed", Fields: fields}
}

// From 任意 error 归一化为 *Error；未知错误一律 500
func From(err error) *Error {
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	return &Error{Status: http.StatusInternalServerError, Err: err}
}
