// Package graph implements the client for the chat platform's
// directory/graph API.
//
// The sweeper uses two operations: looking up the installation identifier
// of the onboarding add-in in a user's personal scope, and removing that
// installation. Both are thin REST calls; the client adds connection
// pooling, bounded retries with exponential backoff for transient
// failures, and typed errors so callers can distinguish authentication
// problems, rate limiting, and missing installations.
package graph
