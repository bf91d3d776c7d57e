package main

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/farxc/odca-monitor/internal/odca/report"
	"github.com/farxc/odca-monitor/internal/response"
)

func writeJSON(w http.ResponseWriter, status int, data any) error {
	w.Header().Set("Content-Type", "application/json")

	w.WriteHeader(status)

	return json.NewEncoder(w).Encode(data)
}

func writeJSONError(w http.ResponseWriter, status int, message string) error {
	return writeJSON(w, status, &response.ErrorResponse{Error: message})

}

// writeError maps err to a status: unknown categories are 422, bad query
// parameters 400 and anything else 500.
func writeError(w http.ResponseWriter, message string, err error) {
	var bad *paramError
	switch {
	case errors.Is(err, report.ErrUnknownCategory):
		writeJSONError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.As(err, &bad):
		writeJSONError(w, http.StatusBadRequest, err.Error())
	default:
		writeJSONError(w, http.StatusInternalServerError, message+": "+err.Error())
	}
}

func writeData[T any](w http.ResponseWriter, message string, data T) {
	response := &response.APIResponse[T]{
		Success: true,
		Data:    data,
		Message: message,
	}

	if err := writeJSON(w, http.StatusOK, response); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to write response")
	}
}
