package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/hdnotes/notes-api/internal/payload"
)

func respond(w http.ResponseWriter, status int, body payload.Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func respondSuccess(w http.ResponseWriter, status int, message string, data any) {
	respond(w, status, payload.Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

func respondError(w http.ResponseWriter, status int, message string) {
	respond(w, status, payload.Response{
		Success: false,
		Message: message,
	})
}

func respondValidationErrors(w http.ResponseWriter, errs []string) {
	respond(w, http.StatusBadRequest, payload.Response{
		Success: false,
		Message: "Validation failed",
		Errors:  errs,
	})
}

func respondInternalError(w http.ResponseWriter) {
	respondError(w, http.StatusInternalServerError, "Internal server error")
}

// decodeJSON reads a request body into dst. An empty or malformed body is a
// client error, not an internal one.
func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is required")
		}

		return errors.New("request body is not valid JSON")
	}

	return nil
}
