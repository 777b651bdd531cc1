package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"task-manager/utils"
)

// Pinger reports whether the store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

func homeHandler(w http.ResponseWriter, r *http.Request) {
	fmt.Fprintln(w, "Welcome to the Task Manager API")
}

func healthHandler(store Pinger, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := store.Ping(ctx); err != nil {
			logger.Warn("health check failed", slog.String("error", err.Error()))
			utils.WriteError(w, http.StatusServiceUnavailable, "store unavailable")
			return
		}
		fmt.Fprintln(w, "ok")
	}
}
