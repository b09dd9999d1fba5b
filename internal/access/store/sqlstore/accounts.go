package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vistoriapro/vistoria/internal/access/domain"
	"github.com/vistoriapro/vistoria/internal/access/store"
)

const accountColumns = `id, external_id, email, name, role, credit_balance, created_at, updated_at`

type accountsRepo struct {
	c   conn
	now func() time.Time
}

func scanAccount(row interface{ Scan(...any) error }) (domain.Account, error) {
	var (
		a    domain.Account
		role string
	)
	err := row.Scan(&a.ID, &a.ExternalID, &a.Email, &a.Name, &role, &a.CreditBalance, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return domain.Account{}, mapNotFound(err)
	}
	a.Role = domain.Role(role)
	a.CreatedAt = a.CreatedAt.UTC()
	a.UpdatedAt = a.UpdatedAt.UTC()
	return a, nil
}

func (r *accountsRepo) GetAccountByExternalID(ctx context.Context, externalID string) (domain.Account, error) {
	return scanAccount(r.c.queryRow(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE external_id = ?`, externalID))
}

func (r *accountsRepo) GetAccountByEmail(ctx context.Context, email string) (domain.Account, error) {
	return scanAccount(r.c.queryRow(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE email = ?`, normaliseEmail(email)))
}

func (r *accountsRepo) GetAccountByID(ctx context.Context, id string) (domain.Account, error) {
	return scanAccount(r.c.queryRow(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE id = ?`, id))
}

func (r *accountsRepo) ListAccounts(ctx context.Context, limit, offset int) ([]domain.Account, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.c.query(ctx,
		`SELECT `+accountColumns+` FROM accounts ORDER BY created_at DESC, id LIMIT ? OFFSET ?`,
		limit, max(offset, 0))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *accountsRepo) UpsertAccount(ctx context.Context, a domain.Account) (domain.Account, error) {
	if a.ExternalID == "" || a.Email == "" {
		return domain.Account{}, errors.New("store: account needs external id and email")
	}
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if !a.Role.Valid() {
		a.Role = domain.RoleUser
	}
	now := ts(r.now())

	// The credit balance is only set on insert.
	_, err := r.c.exec(ctx, `
		INSERT INTO accounts (id, external_id, email, name, role, credit_balance, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (external_id) DO UPDATE SET
			email = excluded.email,
			name = excluded.name,
			role = excluded.role,
			updated_at = excluded.updated_at`,
		a.ID, a.ExternalID, normaliseEmail(a.Email), a.Name, string(a.Role), max(a.CreditBalance, 0), now, now,
	)
	if err != nil {
		if isUniqueViolation(err) {
			// email already belongs to another identity
			return domain.Account{}, store.ErrAlreadyExists
		}
		return domain.Account{}, err
	}
	return r.GetAccountByExternalID(ctx, a.ExternalID)
}

func (r *accountsRepo) DeductCredit(ctx context.Context, accountID string) (int, error) {
	var balance int
	err := r.c.queryRow(ctx, `
		UPDATE accounts SET credit_balance = credit_balance - 1, updated_at = ?
		WHERE id = ? AND credit_balance > 0
		RETURNING credit_balance`,
		ts(r.now()), accountID,
	).Scan(&balance)
	if err == nil {
		return balance, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, err
	}

	// Nothing updated: either the account is gone or the balance is zero.
	if _, err := r.GetAccountByID(ctx, accountID); err != nil {
		return 0, err
	}
	return 0, store.ErrInsufficientCredits
}

func normaliseEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
