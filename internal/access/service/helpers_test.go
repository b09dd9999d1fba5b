package service_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/vistoriapro/vistoria/internal/access/domain"
	"github.com/vistoriapro/vistoria/internal/access/service"
	"github.com/vistoriapro/vistoria/internal/access/store"
	"github.com/vistoriapro/vistoria/internal/access/store/drivers/sqlite"
)

var testSecret = []byte(strings.Repeat("s", 32))

type clock struct{ t time.Time }

func (c *clock) Now() time.Time          { return c.t }
func (c *clock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newClock() *clock {
	return &clock{t: time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)}
}

func newStore(t *testing.T) store.Store {
	t.Helper()
	s, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	require.NoError(t, s.ApplyMigrations())
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func seedAccount(t *testing.T, s store.Store, ext, email string, role domain.Role, credits int) domain.Account {
	t.Helper()
	a, err := s.Accounts().UpsertAccount(context.Background(), domain.Account{
		ExternalID:    ext,
		Email:         email,
		Name:          ext,
		Role:          role,
		CreditBalance: credits,
	})
	require.NoError(t, err)
	return a
}

// seedDispute creates a dispute with one public and one internal row of
// every kind.
func seedDispute(t *testing.T, s store.Store, owner domain.Account) domain.Dispute {
	t.Helper()
	ctx := context.Background()
	d := domain.Dispute{
		ID:             uuid.NewString(),
		OwnerAccountID: owner.ID,
		Title:          "Contestação vistoria de saída",
		InternalNotes:  "tenant has history",
	}
	require.NoError(t, s.Disputes().CreateDispute(ctx, d))
	require.NoError(t, s.Disputes().AddItem(ctx, domain.DisputeItem{DisputeID: d.ID, Room: "Sala", Item: "Piso"}))
	require.NoError(t, s.Disputes().AddItem(ctx, domain.DisputeItem{DisputeID: d.ID, Item: "Rodapé", InternalOnly: true}))
	require.NoError(t, s.Disputes().AddMessage(ctx, domain.Message{
		DisputeID: d.ID, AuthorKind: domain.AuthorTenant, AuthorAccountID: owner.ID, Body: "was already scratched",
	}))
	require.NoError(t, s.Disputes().AddMessage(ctx, domain.Message{
		DisputeID: d.ID, AuthorKind: domain.AuthorStaff, Body: "check photos", InternalOnly: true,
	}))
	require.NoError(t, s.Disputes().AddEvidence(ctx, domain.Evidence{
		DisputeID: d.ID, UploaderAccountID: owner.ID, FileURL: "https://cdn.example.com/1.jpg",
	}))
	return d
}

func newLinks(t *testing.T, c *clock) *service.LinkTokenService {
	t.Helper()
	links, err := service.NewLinkTokenService(service.LinkTokenConfig{
		Secret: testSecret,
		Issuer: "vistoria-test",
		MaxTTL: 7 * 24 * time.Hour,
		Now:    c.Now,
	})
	require.NoError(t, err)
	return links
}
