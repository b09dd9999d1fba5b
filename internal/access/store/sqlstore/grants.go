package sqlstore

import (
	"context"
	"errors"
	"time"

	"github.com/vistoriapro/vistoria/internal/access/domain"
	"github.com/vistoriapro/vistoria/internal/access/store"
	"github.com/vistoriapro/vistoria/pkg/idx"
)

const grantColumns = `id, resource_id, subject_email, created_by, link_fingerprint, expires_at, created_at`

type grantsRepo struct {
	c   conn
	now func() time.Time
}

func scanGrant(row interface{ Scan(...any) error }) (domain.Grant, error) {
	var g domain.Grant
	if err := row.Scan(&g.ID, &g.ResourceID, &g.SubjectEmail, &g.CreatedBy, &g.LinkFingerprint, &g.ExpiresAt, &g.CreatedAt); err != nil {
		return domain.Grant{}, mapNotFound(err)
	}
	g.ExpiresAt = g.ExpiresAt.UTC()
	g.CreatedAt = g.CreatedAt.UTC()
	return g, nil
}

func (r *grantsRepo) HasAccess(ctx context.Context, resourceID, subjectEmail string, now time.Time) (bool, error) {
	var n int
	err := r.c.queryRow(ctx, `
		SELECT COUNT(*) FROM access_grants
		WHERE resource_id = ? AND subject_email = ? AND expires_at > ?`,
		resourceID, normaliseEmail(subjectEmail), ts(now),
	).Scan(&n)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *grantsRepo) UpsertGrant(ctx context.Context, g domain.Grant) (domain.Grant, error) {
	if g.ResourceID == "" || g.SubjectEmail == "" {
		return domain.Grant{}, errors.New("store: grant needs resource and subject")
	}
	if g.ID == "" {
		g.ID = idx.New().String()
	}

	email := normaliseEmail(g.SubjectEmail)
	_, err := r.c.exec(ctx, `
		INSERT INTO access_grants (id, resource_id, subject_email, created_by, link_fingerprint, expires_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (resource_id, subject_email) DO UPDATE SET
			created_by = excluded.created_by,
			link_fingerprint = excluded.link_fingerprint,
			expires_at = excluded.expires_at`,
		g.ID, g.ResourceID, email, g.CreatedBy, g.LinkFingerprint, ts(g.ExpiresAt), ts(r.now()),
	)
	if err != nil {
		return domain.Grant{}, err
	}

	return scanGrant(r.c.queryRow(ctx,
		`SELECT `+grantColumns+` FROM access_grants WHERE resource_id = ? AND subject_email = ?`,
		g.ResourceID, email))
}

func (r *grantsRepo) ListGrants(ctx context.Context, resourceID string) ([]domain.Grant, error) {
	rows, err := r.c.query(ctx,
		`SELECT `+grantColumns+` FROM access_grants WHERE resource_id = ? ORDER BY created_at DESC, id DESC`,
		resourceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Grant
	for rows.Next() {
		g, err := scanGrant(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

func (r *grantsRepo) ExpireGrant(ctx context.Context, resourceID, subjectEmail string, now time.Time) error {
	res, err := r.c.exec(ctx,
		`UPDATE access_grants SET expires_at = ? WHERE resource_id = ? AND subject_email = ?`,
		ts(now), resourceID, normaliseEmail(subjectEmail))
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *grantsRepo) DeleteExpiredGrants(ctx context.Context, before time.Time) (int64, error) {
	res, err := r.c.exec(ctx, `DELETE FROM access_grants WHERE expires_at <= ?`, ts(before))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
