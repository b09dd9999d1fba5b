package service_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vistoriapro/vistoria/internal/access/domain"
	"github.com/vistoriapro/vistoria/internal/access/service"
)

func TestConsumeDeducts(t *testing.T) {
	s := newStore(t)
	acc := seedAccount(t, s, "user_tenant", "tenant@example.com", domain.RoleUser, 2)
	svc := &service.CreditService{Accounts: s.Accounts()}
	ctx := context.Background()

	res, err := svc.Consume(ctx, acc)
	require.NoError(t, err)
	require.True(t, res.Deducted)
	require.Equal(t, service.Balance(1), res.Credits)

	acc.CreditBalance = 1
	res, err = svc.Consume(ctx, acc)
	require.NoError(t, err)
	require.Equal(t, service.Balance(0), res.Credits)

	acc.CreditBalance = 0
	_, err = svc.Consume(ctx, acc)
	require.ErrorIs(t, err, service.ErrNoCapacity)
}

func TestConsumeStaleBalanceCannotOverdraw(t *testing.T) {
	s := newStore(t)
	acc := seedAccount(t, s, "user_tenant", "tenant@example.com", domain.RoleUser, 1)
	svc := &service.CreditService{Accounts: s.Accounts()}
	ctx := context.Background()

	_, err := svc.Consume(ctx, acc)
	require.NoError(t, err)

	// acc still says 1
	_, err = svc.Consume(ctx, acc)
	require.ErrorIs(t, err, service.ErrNoCapacity)

	got, err := s.Accounts().GetAccountByID(ctx, acc.ID)
	require.NoError(t, err)
	require.Equal(t, 0, got.CreditBalance)
}

func TestConsumeConcurrent(t *testing.T) {
	s := newStore(t)
	acc := seedAccount(t, s, "user_tenant", "tenant@example.com", domain.RoleUser, 5)
	svc := &service.CreditService{Accounts: s.Accounts()}

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Consume(context.Background(), acc)
			mu.Lock()
			errs = append(errs, err)
			mu.Unlock()
		}()
	}
	wg.Wait()

	var ok, out int
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		require.ErrorIs(t, err, service.ErrNoCapacity)
		out++
	}
	require.Equal(t, 5, ok)
	require.Equal(t, 15, out)
}

func TestConsumeOverrideSkipsLedger(t *testing.T) {
	s := newStore(t)
	acc := seedAccount(t, s, "user_owner", "owner@vistoriapro.com.br", domain.RoleSuperAdmin, 0)
	svc := &service.CreditService{
		Accounts: s.Accounts(),
		Policy:   service.NewEntitlementPolicy([]string{"OWNER@vistoriapro.com.br"}),
	}

	for range 3 {
		res, err := svc.Consume(context.Background(), acc)
		require.NoError(t, err)
		require.False(t, res.Deducted)
		require.True(t, res.Credits.IsUnlimited())
	}

	got, err := s.Accounts().GetAccountByID(context.Background(), acc.ID)
	require.NoError(t, err)
	require.Equal(t, 0, got.CreditBalance)
}

func TestConsumeUnknownAccount(t *testing.T) {
	s := newStore(t)
	svc := &service.CreditService{Accounts: s.Accounts()}

	_, err := svc.Consume(context.Background(), domain.Account{ID: "00000000-0000-0000-0000-000000000000", CreditBalance: 1})
	require.ErrorIs(t, err, service.ErrAccountNotFound)
}
