package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/vistoriapro/vistoria/internal/access/domain"
	"github.com/vistoriapro/vistoria/internal/access/obs"
	"github.com/vistoriapro/vistoria/internal/access/store"
	"github.com/vistoriapro/vistoria/pkg/slogx"
)

// ConsumeResult describes what happened to the balance.
type ConsumeResult struct {
	Deducted bool    `json:"deducted"`
	Credits  Credits `json:"credits"`
}

// CreditService gates credit-consuming actions (starting an AI analysis,
// generating a report) on the account's entitlement.
type CreditService struct {
	Accounts store.Accounts
	Policy   EntitlementPolicy
	Metrics  *obs.Metrics
}

// Consume takes one credit from acc. Allowlisted accounts pass without a
// deduction; everyone else needs a positive balance, and the decrement is
// a single conditional update so concurrent calls can never overdraw.
func (s *CreditService) Consume(ctx context.Context, acc domain.Account) (ConsumeResult, error) {
	l := slogx.FromContext(ctx).With(slog.String("account_id", acc.ID))

	// 1. Capacity check against the balance we already have
	if !s.Policy.HasCapacity(acc.CreditBalance, acc.Email) {
		s.Metrics.CreditConsumed("no_capacity")
		return ConsumeResult{}, ErrNoCapacity
	}

	// 2. Override accounts never touch the ledger
	if !s.Policy.ShouldDeduct(acc.Email) {
		s.Metrics.CreditConsumed("skipped")
		l.Debug("credit deduction skipped for override account")
		return ConsumeResult{Deducted: false, Credits: Unlimited}, nil
	}

	// 3. Atomic decrement; the stored balance may have moved since we read it
	balance, err := s.Accounts.DeductCredit(ctx, acc.ID)
	switch {
	case errors.Is(err, store.ErrInsufficientCredits):
		s.Metrics.CreditConsumed("no_capacity")
		return ConsumeResult{}, ErrNoCapacity
	case errors.Is(err, store.ErrNotFound):
		return ConsumeResult{}, ErrAccountNotFound
	case err != nil:
		s.Metrics.CreditConsumed("error")
		return ConsumeResult{}, fmt.Errorf("deduct credit: %w", err)
	}

	s.Metrics.CreditConsumed("deducted")
	l.Info("credit consumed", slog.Int("balance", balance))
	return ConsumeResult{Deducted: true, Credits: Balance(balance)}, nil
}
