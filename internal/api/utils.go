package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/jbweber/homelab/hil/internal/domain"
	"github.com/jbweber/homelab/hil/internal/log"
)

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Type  string `json:"type"`
	Error string `json:"msg"`
}

// errorClasses maps each error class to its wire name and status code
var errorClasses = []struct {
	err    error
	name   string
	status int
}{
	{domain.ErrNotFound, "NotFoundError", http.StatusNotFound},
	{domain.ErrDuplicate, "DuplicateError", http.StatusConflict},
	{domain.ErrBlocked, "BlockedError", http.StatusConflict},
	{domain.ErrBadArgument, "BadArgumentError", http.StatusBadRequest},
	{domain.ErrProjectMismatch, "ProjectMismatchError", http.StatusConflict},
	{domain.ErrAllocationExhausted, "AllocationError", http.StatusServiceUnavailable},
	{domain.ErrIllegalState, "IllegalStateError", http.StatusConflict},
}

// classify returns the wire name and status code for err
func classify(err error) (string, int) {
	for _, c := range errorClasses {
		if errors.Is(err, c.err) {
			return c.name, c.status
		}
	}
	return "ServerError", http.StatusInternalServerError
}

// writeJSON encodes v with the given status code
func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.G(r.Context()).WithError(err).Error("failed to encode response")
	}
}

// writeError reports err with the status code of its class. Server errors
// are logged and their details withheld from the caller.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	name, status := classify(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		log.G(r.Context()).WithError(err).WithField("path", r.URL.Path).Error("request failed")
		msg = "internal server error"
	}
	writeJSON(w, r, status, ErrorResponse{Type: name, Error: msg})
}

// decodeBody decodes an optional JSON body into v
func decodeBody(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil && err != io.EOF {
		return fmt.Errorf("invalid JSON: %v: %w", err, domain.ErrBadArgument)
	}
	return nil
}

// urlParam returns a path parameter, undoing any percent encoding. Port names
// such as gi1/0/5 travel encoded.
func urlParam(r *http.Request, name string) string {
	raw := chi.URLParam(r, name)
	if v, err := url.PathUnescape(raw); err == nil {
		return v
	}
	return raw
}
