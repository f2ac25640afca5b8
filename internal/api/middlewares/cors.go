package middlewares

import (
	"net/http"

	"github.com/rs/cors"

	"github.com/basisledger/iou-ledger-service/internal/config"
)

const maxAge = 300

// CorsMiddleware lets browser wallets call the API and read the trace id.
func CorsMiddleware(cfg *config.Config) func(http.Handler) http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", requestIdHeader},
		ExposedHeaders: []string{traceIdHeader},
		MaxAge:         maxAge,
	})
	return c.Handler
}
