package store

import (
	"context"
	"errors"
	"time"

	"github.com/tradelane/tradegate/internal/gate/domain"
)

var ErrNotFound = errors.New("store: not found")

// Store is the root data access interface. Concrete drivers (sqlite for now)
// implement this. It exposes sub-repositories to keep concerns tidy and
// testable.
type Store interface {
	Subjects() Subjects

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction. If fn returns an error the
	// transaction is rolled back, otherwise it is committed.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It exposes the same repos plus Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Subjects interface {
	// GetSubjectByID returns a subject by its provider-assigned id.
	GetSubjectByID(ctx context.Context, id string) (domain.Subject, error)

	// UpsertSubject inserts the subject or refreshes its provider-owned
	// fields (email, username, phone, verification). Local two-factor state
	// is never touched by an upsert.
	UpsertSubject(ctx context.Context, s domain.Subject) error

	// SetPendingTwoFactorSecret stores a freshly generated secret ciphertext
	// and stamps the enrollment as pending. Any prior secret, pending or
	// enabled, is overwritten.
	SetPendingTwoFactorSecret(ctx context.Context, subjectID, ciphertext string, at time.Time) error

	// EnableTwoFactor marks the pending enrollment as confirmed.
	EnableTwoFactor(ctx context.Context, subjectID string, at time.Time) error

	// ClearStalePendingSecrets removes pending secrets generated before the
	// cutoff and reports how many were cleared. Confirmed enrollments are
	// left alone.
	ClearStalePendingSecrets(ctx context.Context, before time.Time) (int64, error)
}
