// Copyright 2026 The Anzenboard Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/anzenboard/anzenboard/internal/audit"
	"github.com/anzenboard/anzenboard/internal/board"
	"github.com/anzenboard/anzenboard/internal/claims"
	"github.com/anzenboard/anzenboard/internal/identity"
	"github.com/anzenboard/anzenboard/internal/tenant"
)

// Handler holds HTTP handlers and dependencies
type Handler struct {
	tenantService    *tenant.Service
	boardService     *board.Service
	identityProvider *identity.Provider
	linkService      *identity.LinkService
	issuer           *claims.Issuer
	auditLogger      audit.Logger
	metrics          *CallableMetrics
}

// NewHandler creates a new HTTP handler
func NewHandler(
	tenantService *tenant.Service,
	boardService *board.Service,
	identityProvider *identity.Provider,
	linkService *identity.LinkService,
	issuer *claims.Issuer,
	auditLogger audit.Logger,
	callableMetrics *CallableMetrics,
) *Handler {
	return &Handler{
		tenantService:    tenantService,
		boardService:     boardService,
		identityProvider: identityProvider,
		linkService:      linkService,
		issuer:           issuer,
		auditLogger:      auditLogger,
		metrics:          callableMetrics,
	}
}

// NewRouter creates a new HTTP router
func NewRouter(h *Handler, rateLimiter *RateLimiter) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(RateLimitMiddleware(rateLimiter))
	r.Use(func(handler http.Handler) http.Handler {
		return otelhttp.NewHandler(handler, "http_request",
			otelhttp.WithSpanNameFormatter(func(operation string, r *http.Request) string {
				return r.Method + " " + r.URL.Path
			}),
		)
	})
	r.Use(LoggingMiddleware())
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	// Health check
	r.Get("/health", h.HealthCheck)

	// Passwordless sign-in
	r.Route("/auth", func(r chi.Router) {
		r.Post("/link", h.BeginSignIn)
		r.Post("/link/verify", h.CompleteSignIn)
		r.With(h.AuthMiddleware).Post("/refresh", h.Refresh)
	})

	// Callable endpoints mirror the client SDK call surface: one POST
	// per function, request data and response wrapped in an envelope.
	r.Route("/call", func(r chi.Router) {
		r.Use(h.AuthMiddleware)
		r.Post("/switchTenant", h.callable("switchTenant", h.callSwitchTenant))
		r.Post("/createUser", h.callable("createUser", h.callCreateUser))
		r.Post("/updateUser", h.callable("updateUser", h.callUpdateUser))
	})

	// Board API
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(h.AuthMiddleware)

		r.Get("/users", h.ListUsers)

		r.Route("/safety-confirmations", func(r chi.Router) {
			r.Get("/", h.ListSafetyConfirmations)
			r.Post("/", h.CreateSafetyConfirmation)
			r.Route("/{confirmationID}", func(r chi.Router) {
				r.Get("/", h.GetSafetyConfirmation)
				r.Get("/answers", h.ListAnswers)
				r.Post("/answers", h.SubmitAnswer)
			})
		})

		r.Route("/informations", func(r chi.Router) {
			r.Get("/", h.ListInformations)
			r.Post("/", h.CreateInformation)
			r.Post("/{informationID}/publish", h.PublishInformation)
		})

		r.Route("/messages", func(r chi.Router) {
			r.Get("/", h.ListMessages)
			r.Post("/", h.PostMessage)
		})
	})

	return r
}

// HealthCheck returns the health status
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "anzenboard",
	})
}

// Helper functions
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}

func getIPAddress(r *http.Request) string {
	// Check X-Forwarded-For header first
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		return xff
	}
	// Check X-Real-IP header
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	return r.RemoteAddr
}
