// Package config manages application configuration for the Handy API.
//
// The config package loads and validates configuration from environment
// variables, with an optional .env file for local development. All
// configuration is centralized here to provide a single source of truth.
//
// # Configuration Loading
//
// Configuration is loaded from environment variables:
//
//	cfg, err := config.Load()
//
// # Configuration Groups
//
// Configuration is organized into logical groups:
//
//   - ServerConfig: HTTP server settings (port, timeouts, CORS)
//   - DatabaseConfig: SurrealDB connection settings
//   - JWTConfig: JWT verification settings
//   - NATSConfig: Domain event publishing settings
//   - ReconcilerConfig: Membership list sweep schedule
//
// # Environment Variables
//
// Key environment variables:
//
//	SERVER_PORT          - HTTP server port (default: 8080)
//	DB_HOST, DB_PORT     - SurrealDB endpoint
//	DB_USER, DB_PASSWORD - Database credentials
//	DB_NAMESPACE, DB_DATABASE - Namespace and database names
//	JWT_PUBLIC_KEY_PATH  - RSA public key for token verification
//	NATS_URL             - NATS server URL (empty disables events)
//	RECONCILER_INTERVAL  - Sweep interval (default: 5m)
package config
