// Package handlers contains the HTTP handlers for the maintenance
// logbook API.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/vlefranc/carnet/internal/db"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// httpStoreError maps storage errors to HTTP responses: a missing
// document is a 404, anything else a 500 with the given message.
func httpStoreError(w http.ResponseWriter, err error, msg string) {
	if errors.Is(err, db.ErrNotFound) {
		http.Error(w, "Not found", http.StatusNotFound)
		return
	}
	http.Error(w, msg, http.StatusInternalServerError)
}
