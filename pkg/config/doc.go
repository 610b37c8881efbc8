// Package config loads application configuration from PROPDOCS_* environment
// variables with sensible defaults.
//
// Server:
//
//	PROPDOCS_HOST="0.0.0.0"
//	PROPDOCS_PORT="8080"
//	PROPDOCS_HEALTH_PORT="9090"
//
// Persistence:
//
//	PROPDOCS_DATABASE_URL="postgres://localhost/propdocs?sslmode=disable"
//	PROPDOCS_REDIS_ADDR=""            # empty keeps rate limiting in-process
//
// Auth and billing:
//
//	PROPDOCS_JWT_SECRET               # required
//	PROPDOCS_STRIPE_SECRET_KEY        # empty disables payment verification
//
// Policy knobs:
//
//	PROPDOCS_TRIAL_SELF_MAX_DAYS="14"
//	PROPDOCS_TRIAL_ADMIN_MAX_DAYS="180"
//	PROPDOCS_PUBLIC_DOC_MAX_REQUESTS="20"
//	PROPDOCS_PUBLIC_DOC_WINDOW="60s"
package config
