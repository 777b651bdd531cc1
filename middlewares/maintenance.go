package middlewares

import (
	"net/http"

	"task-manager/utils"
)

// Maintenance answers every request with 503 while enabled.
func Maintenance(enabled bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !enabled {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			utils.WriteError(w, http.StatusServiceUnavailable, "Service is under maintenance")
		})
	}
}
