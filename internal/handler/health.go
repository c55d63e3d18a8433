package handler

import (
	"context"
	"net/http"
	"time"
)

// Pinger reports store connectivity
type Pinger interface {
	Ping(ctx context.Context) error
}

// NewHealthHandler returns a health check handler backed by the store
func NewHealthHandler(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := db.Ping(ctx); err != nil {
			WriteJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "unavailable",
			})
			return
		}

		WriteJSON(w, http.StatusOK, map[string]string{
			"status": "ok",
		})
	}
}
