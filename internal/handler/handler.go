package handler

import (
	"encoding/json"
	"net/http"
	"time"
)

// HelloHandler is the rate-limited demo endpoint.
func HelloHandler(w http.ResponseWriter, r *http.Request) {
	clientID := r.Header.Get("X-Client-ID")
	if clientID == "" {
		clientID = "default"
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message":   "request admitted",
		"client_id": clientID,
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

// StatusHandler reports liveness; it sits outside the rate limiter.
func StatusHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"time":   time.Now().Format(time.RFC3339),
	})
}

func writeJSON(w http.ResponseWriter, status int, body map[string]string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
