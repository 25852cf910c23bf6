package api

import (
	"errors"
	"net/http"
)

type AppError struct {
	Code    int    `json:"-"`
	Message string `json:"error"`
}

func (e *AppError) Error() string {
	return e.Message
}

var (
	ErrBadRequest      = &AppError{Code: http.StatusBadRequest, Message: "bad request"}
	ErrPayloadTooLarge = &AppError{Code: http.StatusRequestEntityTooLarge, Message: "request body too large"}
	ErrInternalServer  = &AppError{Code: http.StatusInternalServerError, Message: "internal server error"}
)

// HandleError writes err as a plain-text response. Errors that are not
// AppErrors are reported as 500 without detail.
func HandleError(w http.ResponseWriter, err error) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		Text(w, appErr.Code, appErr.Message)
		return
	}
	Text(w, http.StatusInternalServerError, ErrInternalServer.Message)
}
