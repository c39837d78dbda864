// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and helper functions.

# Request Logging

Wrap handlers with request logging:

	mux.HandleFunc("GET /health", middleware.WithLogging(handler))

Logs request start (method, path, remote) and completion (duration_ms).

# Rate Limiting

WithRateLimit consults a Limiter keyed by client address and answers 429
with a Retry-After header and a RATE_LIMITED VoteResponse when the budget
is spent:

	middleware.WithRateLimit(limiter, cfg.TrustProxy, collector.RateLimited, h.CastVote)

# CORS Middleware

Enable cross-origin requests for frontend access:

	server := http.Server{
		Handler: middleware.CORS(mux),
	}

Allows methods GET, POST, OPTIONS with headers Content-Type and
Authorization. Credentials are allowed so the admin session cookie is sent.

# JSON Helpers

Write JSON responses:

	middleware.JSONResponse(w, http.StatusOK, data)
	middleware.ErrorResponse(w, http.StatusBadRequest, "message")

Parse JSON request bodies (capped at MaxBodyBytes):

	var req models.VoteRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

# Client IP Extraction

Get the client address, honouring X-Forwarded-For and X-Real-IP only when
proxies are trusted:

	ip := middleware.GetClientIP(r, trustProxy)

Addresses are normalized so IPv4-mapped IPv6 and bracketed forms compare
equal. The result is the network address signal for the admission checks
and the rate limiter key.
*/
package middleware
