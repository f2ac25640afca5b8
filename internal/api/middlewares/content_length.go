package middlewares

import (
	"net/http"

	"github.com/basisledger/iou-ledger-service/internal/config"
	"github.com/basisledger/iou-ledger-service/internal/types"
)

func ContentLengthMiddleware(cfg *config.Config) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodPost {
				if r.ContentLength > cfg.Server.MaxContentLength {
					writeError(w, http.StatusRequestEntityTooLarge, types.BadRequest, "request entity too large")
					return
				}
				// chunked bodies carry no length up front
				r.Body = http.MaxBytesReader(w, r.Body, cfg.Server.MaxContentLength)
			}
			next.ServeHTTP(w, r)
		})
	}
}
