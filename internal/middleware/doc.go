// Package middleware provides the HTTP middleware stack for the Handy API.
//
// # Available Middleware
//
//   - Auth / OptionalAuth: bearer token verification and identity extraction
//   - RateLimit: per-caller token bucket limiting
//   - Idempotency: response replay for retried POST/PATCH requests
//   - RequestID, Logger, Recovery, CORS, Compress: request plumbing
//
// # Composition
//
// Chain applies middlewares outermost-first:
//
//	handler := middleware.Chain(mux,
//	    middleware.RequestID,
//	    middleware.Logger,
//	    middleware.Recovery,
//	    middleware.RateLimit(limiter),
//	)
//
// # Authentication
//
// Auth rejects requests without a valid token; OptionalAuth attaches
// identity when present but lets anonymous traffic through. After either,
// handlers read the caller from context:
//
//	externalID := middleware.GetUserID(r.Context())
//
// # Context Values
//
//   - GetUserID(ctx): authenticated external identity
//   - GetUserEmail(ctx): authenticated email
//   - GetClaims(ctx): full token claims
//   - GetRequestID(ctx): unique request identifier
package middleware
