package store

import (
	"context"
	"errors"
	"time"

	"github.com/vistoriapro/vistoria/internal/access/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")

	// ErrInsufficientCredits is returned by DeductCredit when the balance is
	// already zero. The balance is left untouched.
	ErrInsufficientCredits = errors.New("store: insufficient credits")
)

// Store is the root data access interface. Concrete drivers (sqlite,
// postgres) implement it and expose sub-repositories per concern.
type Store interface {
	Accounts() Accounts
	Grants() Grants
	Disputes() Disputes

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx runs fn in a transaction, committing when fn returns nil and
	// rolling back otherwise.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Accounts interface {
	// GetAccountByExternalID resolves an identity provider subject.
	GetAccountByExternalID(ctx context.Context, externalID string) (domain.Account, error)

	// GetAccountByEmail matches case-insensitively.
	GetAccountByEmail(ctx context.Context, email string) (domain.Account, error)

	GetAccountByID(ctx context.Context, id string) (domain.Account, error)

	// ListAccounts returns accounts ordered by creation date (newest first).
	ListAccounts(ctx context.Context, limit, offset int) ([]domain.Account, error)

	// UpsertAccount inserts or updates by external id. It is the entry
	// point for identity sync and never touches the credit balance of an
	// existing account.
	UpsertAccount(ctx context.Context, a domain.Account) (domain.Account, error)

	// DeductCredit atomically decrements the balance by one and returns the
	// new balance, or ErrInsufficientCredits when it is already zero.
	DeductCredit(ctx context.Context, accountID string) (int, error)
}

type Grants interface {
	// HasAccess reports whether subjectEmail holds an unexpired grant on
	// resourceID at now.
	HasAccess(ctx context.Context, resourceID, subjectEmail string, now time.Time) (bool, error)

	// UpsertGrant creates the grant or refreshes expiry, creator and link
	// fingerprint of the existing one for the same resource and subject.
	UpsertGrant(ctx context.Context, g domain.Grant) (domain.Grant, error)

	// ListGrants returns every grant on resourceID, newest first.
	ListGrants(ctx context.Context, resourceID string) ([]domain.Grant, error)

	// ExpireGrant sets expires_at to now, cutting off every link for the pair.
	ExpireGrant(ctx context.Context, resourceID, subjectEmail string, now time.Time) error

	// DeleteExpiredGrants is housekeeping; it returns the number removed.
	DeleteExpiredGrants(ctx context.Context, before time.Time) (int64, error)
}

type Disputes interface {
	// GetDispute returns the dispute row only.
	GetDispute(ctx context.Context, id string) (domain.Dispute, error)

	// GetDisputeWithRelations returns the dispute with items, messages,
	// evidence and grants loaded.
	GetDisputeWithRelations(ctx context.Context, id string) (domain.Dispute, error)

	CreateDispute(ctx context.Context, d domain.Dispute) error
	AddItem(ctx context.Context, it domain.DisputeItem) error
	AddMessage(ctx context.Context, m domain.Message) error
	AddEvidence(ctx context.Context, e domain.Evidence) error
}
