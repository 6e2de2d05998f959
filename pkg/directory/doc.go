// Package directory defines the user store consumed by the retention
// sweeper.
//
// The store holds one UserRecord per known account, keyed by the account's
// directory identifier. Records are written by the onboarding add-in when
// it is installed for a user; the sweeper only reads them and deletes the
// ones whose installation age has exceeded the retention threshold.
//
// Two backends are provided: a SQLite backend for deployments and an
// in-memory backend for tests.
package directory
