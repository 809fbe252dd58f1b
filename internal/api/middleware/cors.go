package middleware

import (
	"net/http"

	gorillaHandlers "github.com/gorilla/handlers"
)

// CORS разрешает запросы веб-календаря с указанных источников
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	return gorillaHandlers.CORS(
		gorillaHandlers.AllowedOrigins(allowedOrigins),
		gorillaHandlers.AllowedMethods([]string{
			http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodOptions,
		}),
		gorillaHandlers.AllowedHeaders([]string{
			"Content-Type", headerUserID, headerUserRole, "Idempotency-Key",
		}),
	)
}
