package directory

import (
	"context"
	"time"
)

// RoleNewHire is the role flag marking onboarding-tracked accounts.
// Only records with this role are considered by the retention sweeper.
const RoleNewHire = "new-hire"

// UserRecord is one entry per known account in the user store.
// The store owns these records; the sweeper reads and deletes them but
// never creates or updates them.
type UserRecord struct {
	// ID is the account's unique directory identifier.
	ID string

	// Role is the account's role flag (e.g. RoleNewHire).
	Role string

	// InstalledAt is when the add-in was installed for this account,
	// stored in UTC.
	InstalledAt time.Time

	// DisplayName is the account's display name, carried for logs and
	// the audit journal.
	DisplayName string

	// UPN is the account's user principal name.
	UPN string
}

// Store is the user store contract consumed by the sweeper.
type Store interface {
	// ListByRole returns all records with the given role, ordered by
	// installation time ascending (oldest first). An empty slice and a
	// nil error means no records exist.
	ListByRole(ctx context.Context, role string) ([]UserRecord, error)

	// Delete removes the records with the given IDs as a single batch,
	// failing as a unit on error. It returns the number of rows removed.
	Delete(ctx context.Context, ids []string) (int64, error)

	// Upsert inserts or replaces a record. Used by tooling and tests;
	// the sweeper never calls it.
	Upsert(ctx context.Context, rec UserRecord) error

	// Count returns the total number of records in the store.
	Count(ctx context.Context) (int64, error)

	// Ping verifies the backend is reachable. Used by readiness checks.
	Ping(ctx context.Context) error

	// Close releases backend resources.
	Close() error
}
