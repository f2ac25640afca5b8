package middlewares

import (
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/unrolled/secure"

	"github.com/basisledger/iou-ledger-service/internal/types"
)

const swaggerContentSecurityPolicy = "default-src 'self'; " +
	"script-src 'self' 'unsafe-inline'; " +
	"style-src 'self' 'unsafe-inline'; " +
	"img-src 'self' data:; " +
	"object-src 'none'; " +
	"frame-ancestors 'none'; " +
	"base-uri 'self'"

// SecurityHeadersMiddleware sets security headers with unrolled/secure. The
// ledger API only ever returns JSON, so everything outside the swagger UI is
// served with a deny-all content security policy.
func SecurityHeadersMiddleware() func(http.Handler) http.Handler {
	base := secure.Options{
		FrameDeny:          true,
		ContentTypeNosniff: true,
		BrowserXssFilter:   true,
		ReferrerPolicy:     "no-referrer",
	}
	apiOptions := base
	apiOptions.ContentSecurityPolicy = "default-src 'none'; frame-ancestors 'none'"
	swaggerOptions := base
	swaggerOptions.ContentSecurityPolicy = swaggerContentSecurityPolicy

	api, swagger := secure.New(apiOptions), secure.New(swaggerOptions)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sec := api
			if strings.HasPrefix(r.URL.Path, "/swagger/") {
				sec = swagger
			} else {
				// balances and receipts must not be cached by intermediaries
				w.Header().Set("Cache-Control", "no-store")
			}
			if err := sec.Process(w, r); err != nil {
				log.Ctx(r.Context()).Error().Err(err).Msg("error while applying security headers")
				writeError(w, http.StatusBadRequest, types.BadRequest, "request rejected by security policy")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
