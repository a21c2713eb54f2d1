package app

import (
	"errors"
	"net/http"
)

// SheetError carries an HTTP-style status code alongside the failure message.
// 4xx codes mark caller mistakes, 5xx codes mark platform failures.
type SheetError struct {
	StatusCode int
	Message    string
	Err        error
}

// NewSheetError creates a SheetError with an optional underlying cause
func NewSheetError(statusCode int, message string, cause error) *SheetError {
	return &SheetError{
		StatusCode: statusCode,
		Message:    message,
		Err:        cause,
	}
}

func (e *SheetError) Error() string {
	return e.Message
}

func (e *SheetError) Unwrap() error {
	return e.Err
}

// BadRequest is shorthand for a 400 SheetError
func BadRequest(message string) *SheetError {
	return NewSheetError(http.StatusBadRequest, message, nil)
}

// WrapError turns any failure into a 500 SheetError carrying the cause's message.
// Errors that are already SheetErrors keep their status code.
func WrapError(err error) error {
	if err == nil {
		return nil
	}
	var sheetErr *SheetError
	if errors.As(err, &sheetErr) {
		return err
	}
	return NewSheetError(http.StatusInternalServerError, err.Error(), err)
}

// StatusCodeOf reports the status code carried by err, 500 for foreign errors
func StatusCodeOf(err error) int {
	var sheetErr *SheetError
	if errors.As(err, &sheetErr) {
		return sheetErr.StatusCode
	}
	return http.StatusInternalServerError
}
