package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/automarket/automarket/internal/api/handler"
	"github.com/automarket/automarket/internal/api/middleware"
	"github.com/automarket/automarket/internal/auth"
	"github.com/automarket/automarket/internal/specialist"
	"github.com/automarket/automarket/internal/telemetry"
)

// RouterDeps holds all dependencies needed by the router.
type RouterDeps struct {
	DB             handler.Pinger
	Version        string
	OpenAPISpec    []byte
	Authenticator  middleware.Authenticator
	RateLimiter    *middleware.RateLimiter
	AccountIssuer  handler.AccountIssuer
	AccountRepo    auth.AccountRepository
	SpecialistRepo specialist.Repository
	Lifecycle      handler.Lifecycle
	Engagements    handler.Engagements
}

// NewRouter creates and configures a Chi router with all middleware and routes.
func NewRouter(deps RouterDeps) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery)
	r.Use(chimiddleware.Logger)
	r.Use(telemetry.InstrumentHandler)

	r.Get("/health", handler.NewHealthHandler(deps.DB, deps.Version).ServeHTTP)
	r.Method(http.MethodGet, "/metrics", telemetry.Handler())
	if len(deps.OpenAPISpec) > 0 {
		r.Get("/openapi.json", handler.NewOpenAPIHandler(deps.OpenAPISpec).ServeHTTP)
	}

	accounts := handler.NewAccountHandler(deps.AccountIssuer, deps.AccountRepo)
	specialists := handler.NewSpecialistHandler(deps.SpecialistRepo)
	solutions := handler.NewSolutionHandler(deps.Lifecycle)
	engagements := handler.NewEngagementHandler(deps.Engagements)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(deps.Authenticator))
		if deps.RateLimiter != nil {
			r.Use(deps.RateLimiter.Handler)
		}

		// Any authenticated caller.
		r.Get("/specialists/{id}", specialists.Get)
		r.Get("/specialists/{id}/commission", specialists.Commission)

		// Ownership is enforced by the lifecycle.
		r.Get("/solutions", solutions.List)
		r.Get("/solutions/{id}", solutions.Get)
		r.Patch("/solutions/{id}", solutions.Update)
		r.Post("/solutions/{id}/publish", solutions.Publish)
		r.Post("/solutions/{id}/archive", solutions.Archive)
		r.Get("/solutions/{id}/lock", solutions.Lock)
		r.Get("/solutions/{id}/payout", solutions.Payout)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(auth.RoleSpecialist))
			r.Post("/specialists", specialists.Create)
			r.Post("/solutions", solutions.Create)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(auth.RoleBuyer))
			r.Post("/solutions/{id}/bids", engagements.OpenBid)
			r.Post("/solutions/{id}/conversations", engagements.OpenConversation)
			r.Post("/solutions/{id}/orders", engagements.PlaceOrder)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAdmin())

			r.Post("/accounts", accounts.Create)
			r.Get("/accounts", accounts.List)
			r.Delete("/accounts/{id}", accounts.Delete)

			r.Put("/specialists/{id}/commission-override", specialists.SetCommissionOverride)
			r.Post("/specialists/{id}/verify", specialists.Verify)
			r.Post("/specialists/{id}/founding", specialists.PromoteFounding)

			r.Put("/bids/{id}/status", engagements.SetBidStatus)
			r.Put("/conversations/{id}/status", engagements.SetConversationStatus)
			r.Put("/orders/{id}/status", engagements.SetOrderStatus)
			r.Post("/orders/{id}/complete", engagements.CompleteOrder)
		})
	})

	return r
}
