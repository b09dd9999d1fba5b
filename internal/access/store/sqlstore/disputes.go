package sqlstore

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/vistoriapro/vistoria/internal/access/domain"
	"github.com/vistoriapro/vistoria/internal/access/store"
	"github.com/vistoriapro/vistoria/pkg/idx"
)

const disputeColumns = `id, inspection_id, owner_account_id, title, description, status,
	internal_notes, resolved_by, resolved_at, created_at, updated_at`

type disputesRepo struct {
	c   conn
	now func() time.Time
}

func (r *disputesRepo) GetDispute(ctx context.Context, id string) (domain.Dispute, error) {
	var (
		d          domain.Dispute
		inspection sql.NullString
		resolvedBy sql.NullString
		resolvedAt sql.NullTime
		status     string
	)
	err := r.c.queryRow(ctx, `SELECT `+disputeColumns+` FROM disputes WHERE id = ?`, id).Scan(
		&d.ID, &inspection, &d.OwnerAccountID, &d.Title, &d.Description, &status,
		&d.InternalNotes, &resolvedBy, &resolvedAt, &d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		return domain.Dispute{}, mapNotFound(err)
	}
	d.InspectionID = inspection.String
	d.ResolvedBy = resolvedBy.String
	d.ResolvedAt = timePtr(resolvedAt)
	d.Status = domain.DisputeStatus(status)
	d.CreatedAt = d.CreatedAt.UTC()
	d.UpdatedAt = d.UpdatedAt.UTC()
	return d, nil
}

func (r *disputesRepo) GetDisputeWithRelations(ctx context.Context, id string) (domain.Dispute, error) {
	d, err := r.GetDispute(ctx, id)
	if err != nil {
		return domain.Dispute{}, err
	}
	if d.Items, err = r.items(ctx, id); err != nil {
		return domain.Dispute{}, err
	}
	if d.Messages, err = r.messages(ctx, id); err != nil {
		return domain.Dispute{}, err
	}
	if d.Evidence, err = r.evidence(ctx, id); err != nil {
		return domain.Dispute{}, err
	}
	if d.Grants, err = (&grantsRepo{c: r.c, now: r.now}).ListGrants(ctx, id); err != nil {
		return domain.Dispute{}, err
	}
	return d, nil
}

func (r *disputesRepo) CreateDispute(ctx context.Context, d domain.Dispute) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	if d.Status == "" {
		d.Status = domain.DisputeOpen
	}
	now := ts(r.now())
	_, err := r.c.exec(ctx, `
		INSERT INTO disputes (`+disputeColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		d.ID, nullString(d.InspectionID), d.OwnerAccountID, d.Title, d.Description, string(d.Status),
		d.InternalNotes, nullString(d.ResolvedBy), nullTime(d.ResolvedAt), now, now,
	)
	if err != nil && isUniqueViolation(err) {
		return store.ErrAlreadyExists
	}
	return err
}

func (r *disputesRepo) AddItem(ctx context.Context, it domain.DisputeItem) error {
	if it.ID == "" {
		it.ID = idx.New().String()
	}
	_, err := r.c.exec(ctx, `
		INSERT INTO dispute_items (id, dispute_id, room, item, reason, internal_only, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		it.ID, it.DisputeID, it.Room, it.Item, it.Reason, it.InternalOnly, ts(r.now()),
	)
	return err
}

func (r *disputesRepo) AddMessage(ctx context.Context, m domain.Message) error {
	if m.ID == "" {
		m.ID = idx.New().String()
	}
	_, err := r.c.exec(ctx, `
		INSERT INTO dispute_messages (id, dispute_id, author_kind, author_account_id, author_name, body, internal_only, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		m.ID, m.DisputeID, string(m.AuthorKind), nullString(m.AuthorAccountID), m.AuthorName, m.Body, m.InternalOnly, ts(r.now()),
	)
	return err
}

func (r *disputesRepo) AddEvidence(ctx context.Context, e domain.Evidence) error {
	if e.ID == "" {
		e.ID = idx.New().String()
	}
	_, err := r.c.exec(ctx, `
		INSERT INTO dispute_evidence (id, dispute_id, uploader_account_id, file_url, description, internal_only, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.DisputeID, nullString(e.UploaderAccountID), e.FileURL, e.Description, e.InternalOnly, ts(r.now()),
	)
	return err
}

func (r *disputesRepo) items(ctx context.Context, disputeID string) ([]domain.DisputeItem, error) {
	rows, err := r.c.query(ctx, `
		SELECT id, dispute_id, room, item, reason, internal_only, created_at
		FROM dispute_items WHERE dispute_id = ? ORDER BY created_at, id`, disputeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.DisputeItem
	for rows.Next() {
		var it domain.DisputeItem
		if err := rows.Scan(&it.ID, &it.DisputeID, &it.Room, &it.Item, &it.Reason, &it.InternalOnly, &it.CreatedAt); err != nil {
			return nil, err
		}
		it.CreatedAt = it.CreatedAt.UTC()
		out = append(out, it)
	}
	return out, rows.Err()
}

func (r *disputesRepo) messages(ctx context.Context, disputeID string) ([]domain.Message, error) {
	rows, err := r.c.query(ctx, `
		SELECT id, dispute_id, author_kind, author_account_id, author_name, body, internal_only, created_at
		FROM dispute_messages WHERE dispute_id = ? ORDER BY created_at, id`, disputeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Message
	for rows.Next() {
		var (
			m      domain.Message
			kind   string
			author sql.NullString
		)
		if err := rows.Scan(&m.ID, &m.DisputeID, &kind, &author, &m.AuthorName, &m.Body, &m.InternalOnly, &m.CreatedAt); err != nil {
			return nil, err
		}
		m.AuthorKind = domain.AuthorKind(kind)
		m.AuthorAccountID = author.String
		m.CreatedAt = m.CreatedAt.UTC()
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *disputesRepo) evidence(ctx context.Context, disputeID string) ([]domain.Evidence, error) {
	rows, err := r.c.query(ctx, `
		SELECT id, dispute_id, uploader_account_id, file_url, description, internal_only, created_at
		FROM dispute_evidence WHERE dispute_id = ? ORDER BY created_at, id`, disputeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Evidence
	for rows.Next() {
		var (
			e        domain.Evidence
			uploader sql.NullString
		)
		if err := rows.Scan(&e.ID, &e.DisputeID, &uploader, &e.FileURL, &e.Description, &e.InternalOnly, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.UploaderAccountID = uploader.String
		e.CreatedAt = e.CreatedAt.UTC()
		out = append(out, e)
	}
	return out, rows.Err()
}
