// Package httputil provides HTTP response helpers for consistent JSON
// encoding and error bodies.
package httputil

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/wardenhq/warden/pkg/authz"
)

// WriteJSON writes a JSON response with the given status code
func WriteJSON(w http.ResponseWriter, status int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(data)
}

// WriteErrorMessage writes a JSON error body with a custom message
func WriteErrorMessage(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{
		"error": message,
	})
}

// WriteAuthzError maps an error from the authorization core to its HTTP
// response. Authorization-kind errors keep their specific message and status;
// anything else is an infrastructure fault and gets the generic 500 body so
// store internals never leak to clients.
func WriteAuthzError(w http.ResponseWriter, err error) {
	var authzErr *authz.Error
	if errors.As(err, &authzErr) {
		w.Header().Set("X-Error-Code", authzErr.Code)
		WriteErrorMessage(w, authzErr.Status, authzErr.Message)
		return
	}
	w.Header().Set("X-Error-Code", authz.ErrStoreUnavailable.Code)
	WriteErrorMessage(w, http.StatusInternalServerError, "Internal Server Error")
}

// WriteSuccess writes a 200 response with JSON data
func WriteSuccess(w http.ResponseWriter, data interface{}) error {
	return WriteJSON(w, http.StatusOK, data)
}

// WriteNoContent writes a 204 response
func WriteNoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// WriteBadRequest writes a 400 error body
func WriteBadRequest(w http.ResponseWriter, message string) {
	WriteErrorMessage(w, http.StatusBadRequest, message)
}

// WriteNotFound writes a 404 error body
func WriteNotFound(w http.ResponseWriter, message string) {
	WriteErrorMessage(w, http.StatusNotFound, message)
}
