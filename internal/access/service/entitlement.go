package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/vistoriapro/vistoria/internal/access/domain"
	"github.com/vistoriapro/vistoria/internal/access/store"
)

// Credits is an effective credit balance: a count, or unlimited. It
// encodes as a JSON integer or the string "unlimited".
type Credits struct {
	balance   int
	unlimited bool
}

// Unlimited is the balance of accounts on the override allowlist.
var Unlimited = Credits{unlimited: true}

// Balance wraps a stored balance.
func Balance(n int) Credits { return Credits{balance: n} }

func (c Credits) IsUnlimited() bool { return c.unlimited }

// Count returns the numeric balance; meaningless when unlimited.
func (c Credits) Count() int { return c.balance }

func (c Credits) String() string {
	if c.unlimited {
		return "unlimited"
	}
	return strconv.Itoa(c.balance)
}

func (c Credits) MarshalJSON() ([]byte, error) {
	if c.unlimited {
		return []byte(`"unlimited"`), nil
	}
	return []byte(strconv.Itoa(c.balance)), nil
}

func (c *Credits) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte(`"unlimited"`)) {
		*c = Unlimited
		return nil
	}
	var n int
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("credits: want integer or \"unlimited\": %w", err)
	}
	*c = Balance(n)
	return nil
}

// EntitlementPolicy holds the override allowlist: emails that get
// unlimited credits and never have a credit deducted. It is built once at
// startup and read-only afterwards.
type EntitlementPolicy struct {
	overrides map[string]struct{}
}

// NewEntitlementPolicy normalises the configured emails. Blank entries
// are ignored; there is no wildcard or pattern matching.
func NewEntitlementPolicy(emails []string) EntitlementPolicy {
	set := make(map[string]struct{}, len(emails))
	for _, e := range emails {
		e = strings.ToLower(strings.TrimSpace(e))
		if e == "" {
			continue
		}
		set[e] = struct{}{}
	}
	return EntitlementPolicy{overrides: set}
}

// IsOverride reports an exact, case-insensitive match of email. Only the
// configured entries are trimmed.
func (p EntitlementPolicy) IsOverride(email string) bool {
	_, ok := p.overrides[strings.ToLower(email)]
	return ok
}

// Size is the number of allowlisted emails.
func (p EntitlementPolicy) Size() int { return len(p.overrides) }

func (p EntitlementPolicy) EffectiveCredits(balance int, email string) Credits {
	if p.IsOverride(email) {
		return Unlimited
	}
	return Balance(balance)
}

func (p EntitlementPolicy) HasCapacity(balance int, email string) bool {
	if p.IsOverride(email) {
		return true
	}
	return balance > 0
}

func (p EntitlementPolicy) ShouldDeduct(email string) bool {
	return !p.IsOverride(email)
}

// Entitlement is what an account may do right now.
type Entitlement struct {
	Account     domain.Account `json:"-"`
	Role        domain.Role    `json:"role"`
	Credits     Credits        `json:"credits"`
	HasCapacity bool           `json:"has_capacity"`
	Unlimited   bool           `json:"unlimited"`
}

// EntitlementResolver turns an authenticated identity into an Entitlement.
type EntitlementResolver struct {
	Accounts store.Accounts
	Policy   EntitlementPolicy
}

// Resolve looks up the account for an identity provider subject.
func (r *EntitlementResolver) Resolve(ctx context.Context, externalID string) (Entitlement, error) {
	if strings.TrimSpace(externalID) == "" {
		return Entitlement{}, ErrAccountNotFound
	}
	acc, err := r.Accounts.GetAccountByExternalID(ctx, externalID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return Entitlement{}, ErrAccountNotFound
		}
		return Entitlement{}, fmt.Errorf("resolve entitlement: %w", err)
	}
	return r.For(acc), nil
}

// For computes the entitlement of an already loaded account.
func (r *EntitlementResolver) For(acc domain.Account) Entitlement {
	credits := r.Policy.EffectiveCredits(acc.CreditBalance, acc.Email)
	return Entitlement{
		Account:     acc,
		Role:        acc.Role,
		Credits:     credits,
		HasCapacity: r.Policy.HasCapacity(acc.CreditBalance, acc.Email),
		Unlimited:   credits.IsUnlimited(),
	}
}
