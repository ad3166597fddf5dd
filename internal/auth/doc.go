// Package auth protects the HTTP API.
//
// The service has a single operator, so there is no user table. Two modes:
//   - "none": no authentication (default, for a service bound to localhost)
//   - "local": a configured username with a bcrypt password hash for browser
//     sessions, and/or a static API token for scripts
//
// # Configuration
//
//	AUTH_MODE=local
//	AUTH_USERNAME=me
//	AUTH_PASSWORD_HASH=<output of "kindle-notebook auth-hash-password">
//	AUTH_API_TOKEN=<random string>          # optional
//	AUTH_SESSION_SECRET=<32+ random bytes>  # CSRF key, generated if empty
//	AUTH_SESSION_LIFETIME=24h
//	AUTH_SECURE_COOKIES=true                # HTTPS-only cookies
//
// Browser sessions are stored in the application database through scs and
// every unsafe request carrying a session cookie needs an X-CSRF-Token header,
// obtained from GET /api/auth/me. Bearer requests skip CSRF.
package auth
