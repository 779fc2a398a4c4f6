package service

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tallyapp/tally/internal/auth"
	"github.com/tallyapp/tally/internal/middleware"
)

// NewRouter assembles the full HTTP surface: read-only ledger routes open
// to everyone, mutating routes behind the editor guard, session routes,
// and the health/metrics endpoints.
func NewRouter(ledgerSvc *LedgerService, sessionSvc *SessionService, jwtManager *auth.JWTManager, gate *auth.Gate) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger)
	r.Use(middleware.Metrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		// View-only surface: balances, history, session state, sign-in.
		r.Get("/participants", ledgerSvc.ListParticipants)
		r.Get("/participants/{id}/transactions", ledgerSvc.GetHistory)
		r.Get("/session", sessionSvc.GetSession)
		r.Post("/session", sessionSvc.Login)
		r.Delete("/session", sessionSvc.Logout)
		r.Get("/editors", sessionSvc.ListEditors)

		// Editor surface: every mutation goes through the gate.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireEditor(jwtManager, gate))

			r.Post("/participants", ledgerSvc.AddParticipant)
			r.Delete("/participants/{id}", ledgerSvc.RemoveParticipant)
			r.Post("/adjustments", ledgerSvc.ApplyBatch)
			r.Post("/editors", sessionSvc.AddEditor)
		})
	})

	return r
}
