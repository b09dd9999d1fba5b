package sqlite_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/vistoriapro/vistoria/internal/access/domain"
	"github.com/vistoriapro/vistoria/internal/access/store"
	"github.com/vistoriapro/vistoria/internal/access/store/drivers/sqlite"
)

func newStore(t *testing.T) store.Store {
	t.Helper()
	s, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	require.NoError(t, s.ApplyMigrations())
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func seedAccount(t *testing.T, s store.Store, ext, email string, credits int) domain.Account {
	t.Helper()
	a, err := s.Accounts().UpsertAccount(context.Background(), domain.Account{
		ExternalID:    ext,
		Email:         email,
		Name:          ext,
		Role:          domain.RoleUser,
		CreditBalance: credits,
	})
	require.NoError(t, err)
	return a
}

func TestMigrationsAreIdempotent(t *testing.T) {
	s := newStore(t)
	require.NoError(t, s.ApplyMigrations())
	require.NoError(t, s.Ping(context.Background()))
}

func TestAccounts(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	a := seedAccount(t, s, "user_1", " Tenant@Example.com ", 3)
	_, err := uuid.Parse(a.ID)
	require.NoError(t, err)
	require.Equal(t, "tenant@example.com", a.Email)
	require.Equal(t, 3, a.CreditBalance)

	got, err := s.Accounts().GetAccountByExternalID(ctx, "user_1")
	require.NoError(t, err)
	require.Equal(t, a.ID, got.ID)

	got, err = s.Accounts().GetAccountByEmail(ctx, "TENANT@example.com")
	require.NoError(t, err)
	require.Equal(t, a.ID, got.ID)

	_, err = s.Accounts().GetAccountByExternalID(ctx, "nobody")
	require.ErrorIs(t, err, store.ErrNotFound)

	t.Run("upsert keeps balance and id", func(t *testing.T) {
		up, err := s.Accounts().UpsertAccount(ctx, domain.Account{
			ExternalID:    "user_1",
			Email:         "tenant@example.com",
			Name:          "Renamed",
			Role:          domain.RoleAdmin,
			CreditBalance: 99,
		})
		require.NoError(t, err)
		require.Equal(t, a.ID, up.ID)
		require.Equal(t, "Renamed", up.Name)
		require.Equal(t, domain.RoleAdmin, up.Role)
		require.Equal(t, 3, up.CreditBalance)
	})

	t.Run("email taken by another identity", func(t *testing.T) {
		_, err := s.Accounts().UpsertAccount(ctx, domain.Account{ExternalID: "user_2", Email: "tenant@example.com"})
		require.ErrorIs(t, err, store.ErrAlreadyExists)
	})

	t.Run("list", func(t *testing.T) {
		seedAccount(t, s, "user_3", "other@example.com", 0)
		list, err := s.Accounts().ListAccounts(ctx, 10, 0)
		require.NoError(t, err)
		require.Len(t, list, 2)

		list, err = s.Accounts().ListAccounts(ctx, 1, 1)
		require.NoError(t, err)
		require.Len(t, list, 1)
	})
}

func TestDeductCredit(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	a := seedAccount(t, s, "user_1", "a@example.com", 2)

	bal, err := s.Accounts().DeductCredit(ctx, a.ID)
	require.NoError(t, err)
	require.Equal(t, 1, bal)

	bal, err = s.Accounts().DeductCredit(ctx, a.ID)
	require.NoError(t, err)
	require.Equal(t, 0, bal)

	_, err = s.Accounts().DeductCredit(ctx, a.ID)
	require.ErrorIs(t, err, store.ErrInsufficientCredits)

	got, err := s.Accounts().GetAccountByID(ctx, a.ID)
	require.NoError(t, err)
	require.Equal(t, 0, got.CreditBalance)

	_, err = s.Accounts().DeductCredit(ctx, uuid.NewString())
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestGrants(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	now := time.Now().UTC()
	d1, d2 := uuid.NewString(), uuid.NewString()

	g, err := s.Grants().UpsertGrant(ctx, domain.Grant{
		ResourceID:      d1,
		SubjectEmail:    "Landlord@Example.com",
		CreatedBy:       "acc-1",
		LinkFingerprint: "fp-1",
		ExpiresAt:       now.Add(time.Hour),
	})
	require.NoError(t, err)
	require.Equal(t, "landlord@example.com", g.SubjectEmail)
	require.NotEmpty(t, g.ID)

	ok, err := s.Grants().HasAccess(ctx, d1, "LANDLORD@example.com", now)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = s.Grants().HasAccess(ctx, d2, "landlord@example.com", now)
	require.NoError(t, err)
	require.False(t, ok)

	ok, err = s.Grants().HasAccess(ctx, d1, "landlord@example.com", now.Add(2*time.Hour))
	require.NoError(t, err)
	require.False(t, ok)

	// re-sharing refreshes the same row
	g2, err := s.Grants().UpsertGrant(ctx, domain.Grant{
		ResourceID:      d1,
		SubjectEmail:    "landlord@example.com",
		CreatedBy:       "acc-2",
		LinkFingerprint: "fp-2",
		ExpiresAt:       now.Add(3 * time.Hour),
	})
	require.NoError(t, err)
	require.Equal(t, g.ID, g2.ID)
	require.Equal(t, "fp-2", g2.LinkFingerprint)

	list, err := s.Grants().ListGrants(ctx, d1)
	require.NoError(t, err)
	require.Len(t, list, 1)

	require.NoError(t, s.Grants().ExpireGrant(ctx, d1, "landlord@example.com", now))
	ok, err = s.Grants().HasAccess(ctx, d1, "landlord@example.com", now)
	require.NoError(t, err)
	require.False(t, ok)

	require.ErrorIs(t, s.Grants().ExpireGrant(ctx, d2, "landlord@example.com", now), store.ErrNotFound)

	n, err := s.Grants().DeleteExpiredGrants(ctx, now.Add(time.Second))
	require.NoError(t, err)
	require.EqualValues(t, 1, n)
}

func TestDisputeWithRelations(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	owner := seedAccount(t, s, "user_1", "tenant@example.com", 1)

	d := domain.Dispute{
		ID:             uuid.NewString(),
		OwnerAccountID: owner.ID,
		Title:          "Scratched floor",
		InternalNotes:  "tenant has history",
	}
	require.NoError(t, s.Disputes().CreateDispute(ctx, d))
	require.ErrorIs(t, s.Disputes().CreateDispute(ctx, d), store.ErrAlreadyExists)

	require.NoError(t, s.Disputes().AddItem(ctx, domain.DisputeItem{DisputeID: d.ID, Room: "Sala", Item: "Piso"}))
	require.NoError(t, s.Disputes().AddItem(ctx, domain.DisputeItem{DisputeID: d.ID, Item: "Rodapé", InternalOnly: true}))
	require.NoError(t, s.Disputes().AddMessage(ctx, domain.Message{
		DisputeID: d.ID, AuthorKind: domain.AuthorTenant, AuthorAccountID: owner.ID, Body: "Was already there",
	}))
	require.NoError(t, s.Disputes().AddMessage(ctx, domain.Message{
		DisputeID: d.ID, AuthorKind: domain.AuthorStaff, Body: "check photos", InternalOnly: true,
	}))
	require.NoError(t, s.Disputes().AddEvidence(ctx, domain.Evidence{
		DisputeID: d.ID, UploaderAccountID: owner.ID, FileURL: "https://cdn.example.com/1.jpg",
	}))
	_, err := s.Grants().UpsertGrant(ctx, domain.Grant{
		ResourceID: d.ID, SubjectEmail: "landlord@example.com", ExpiresAt: time.Now().Add(time.Hour),
	})
	require.NoError(t, err)

	got, err := s.Disputes().GetDisputeWithRelations(ctx, d.ID)
	require.NoError(t, err)
	require.Equal(t, domain.DisputeOpen, got.Status)
	require.Equal(t, "tenant has history", got.InternalNotes)
	require.Nil(t, got.ResolvedAt)
	require.Len(t, got.Items, 2)
	require.True(t, got.Items[1].InternalOnly)
	require.Len(t, got.Messages, 2)
	require.Equal(t, owner.ID, got.Messages[0].AuthorAccountID)
	require.Empty(t, got.Messages[1].AuthorAccountID)
	require.Len(t, got.Evidence, 1)
	require.Len(t, got.Grants, 1)

	_, err = s.Disputes().GetDisputeWithRelations(ctx, uuid.NewString())
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestWithTxRollsBack(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := s.WithTx(ctx, func(tx store.Tx) error {
		_, err := tx.Accounts().UpsertAccount(ctx, domain.Account{ExternalID: "user_tx", Email: "tx@example.com"})
		require.NoError(t, err)
		return boom
	})
	require.ErrorIs(t, err, boom)

	_, err = s.Accounts().GetAccountByExternalID(ctx, "user_tx")
	require.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, s.WithTx(ctx, func(tx store.Tx) error {
		_, err := tx.Accounts().UpsertAccount(ctx, domain.Account{ExternalID: "user_tx", Email: "tx@example.com"})
		return err
	}))
	_, err = s.Accounts().GetAccountByExternalID(ctx, "user_tx")
	require.NoError(t, err)
}
