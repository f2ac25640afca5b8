package api

import (
	"github.com/go-chi/chi"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/basisledger/iou-ledger-service/docs"
	"github.com/basisledger/iou-ledger-service/internal/api/middlewares"
)

func (a *Server) SetupRoutes(r *chi.Mux) {
	handlers := a.handlers
	r.Get("/healthcheck", registerHandler(handlers.HealthCheck))

	r.Get("/v1/notes/issuer/{issuer_pubkey}/recipient/{recipient_pubkey}", registerHandler(handlers.GetNote))
	r.Get("/v1/notes/issuer/{issuer_pubkey}", registerHandler(handlers.GetNotesByIssuer))
	r.Get("/v1/notes/recipient/{recipient_pubkey}", registerHandler(handlers.GetNotesByRecipient))
	r.Get("/v1/reserves/issuer/{issuer_pubkey}", registerHandler(handlers.GetReservesByIssuer))
	r.Get("/v1/issuers/{issuer_pubkey}/status", registerHandler(handlers.GetIssuerStatus))
	r.Get("/v1/redemptions/{redemption_id}", registerHandler(handlers.GetRedemption))
	r.Get("/v1/events", registerHandler(handlers.GetEvents))
	r.Get("/v1/commitment", registerHandler(handlers.GetCommitment))
	r.Get("/v1/proof", registerHandler(handlers.GetNoteProof))

	r.Group(func(r chi.Router) {
		r.Use(middlewares.RateLimitMiddleware(a.cfg))
		r.Post("/v1/notes", registerHandler(handlers.CreateNote))
		r.Post("/v1/redeem/prepare", registerHandler(handlers.PrepareRedemption))
		r.Post("/v1/redeem", registerHandler(handlers.Redeem))
	})

	r.Get("/swagger/*", httpSwagger.WrapHandler)
}
