// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"net/http"

	"github.com/danielhkuo/votegate/admission"
	"github.com/danielhkuo/votegate/cliparse"
	"github.com/danielhkuo/votegate/handlers"
	"github.com/danielhkuo/votegate/identity"
	"github.com/danielhkuo/votegate/ledger"
	"github.com/danielhkuo/votegate/metrics"
	"github.com/danielhkuo/votegate/middleware"
	"github.com/danielhkuo/votegate/ratelimit"
)

func NewRouter(store *ledger.Store, cfg cliparse.Config) *http.ServeMux {
	mux := http.NewServeMux()

	// Admission pipeline
	system := admission.NewSystemConfig(cfg.StartOpen, cfg.MaxVotesPerNetwork)
	collector := metrics.New()
	limiter := ratelimit.New(cfg.RateLimit, cfg.RateWindow)
	controller := admission.NewController(store, system,
		admission.WithPolicy(admission.Policy{
			DeviceCheck:  !cfg.DisableDeviceCheck,
			NetworkLimit: !cfg.DisableNetworkLimit,
		}),
		admission.WithObserver(collector),
	)
	extractor := identity.RequestExtractor{
		TrustProxy:  cfg.TrustProxy,
		AddressSalt: cfg.AddressSalt,
	}

	// Initialize handlers
	votingHandler := handlers.NewVotingHandler(controller, extractor)
	resultsHandler := handlers.NewResultsHandler(store)
	adminHandler := handlers.NewAdminHandler(store, system, cfg)

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	mux.Handle("GET /metrics", collector.Handler())

	// Voting (public, rate limited per network address)
	mux.HandleFunc("POST /api/vote", middleware.WithLogging(
		middleware.WithRateLimit(limiter, cfg.TrustProxy, collector.RateLimited, votingHandler.CastVote),
	))
	mux.HandleFunc("GET /api/stats", middleware.WithLogging(resultsHandler.GetStats))

	// Administration
	mux.HandleFunc("POST /api/admin-auth", middleware.WithLogging(adminHandler.Authenticate))
	mux.HandleFunc("POST /api/reset", middleware.WithLogging(adminHandler.Reset))
	mux.HandleFunc("GET /api/system-status", middleware.WithLogging(adminHandler.GetSystemStatus))
	mux.HandleFunc("POST /api/system-status", middleware.WithLogging(adminHandler.UpdateSystemStatus))

	// Root endpoint
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("votegate API v1"))
	})

	return mux
}
