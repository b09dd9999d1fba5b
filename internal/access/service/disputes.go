package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/vistoriapro/vistoria/internal/access/domain"
	"github.com/vistoriapro/vistoria/internal/access/projector"
	"github.com/vistoriapro/vistoria/internal/access/store"
	"github.com/vistoriapro/vistoria/pkg/slogx"
)

// DisputeService loads disputes for a viewer and shares them with
// landlords.
type DisputeService struct {
	Store store.Store
	Links *LinkTokenService
	Now   func() time.Time

	// LinkBaseURL is where the landlord review page lives; links are
	// LinkBaseURL/{token}/disputes/{id}.
	LinkBaseURL string

	// DefaultTTL applies when a share request does not ask for one.
	DefaultTTL time.Duration
}

func (s *DisputeService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *DisputeService) load(ctx context.Context, id string) (domain.Dispute, error) {
	d, err := s.Store.Disputes().GetDisputeWithRelations(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Dispute{}, ErrDisputeNotFound
		}
		return domain.Dispute{}, fmt.Errorf("load dispute: %w", err)
	}
	return d, nil
}

// canManage reports whether acc may see and share d. Non-owners get
// ErrDisputeNotFound so a dispute's existence is never confirmed to them.
func canManage(acc domain.Account, d domain.Dispute) bool {
	return acc.Role.IsStaff() || (acc.ID != "" && d.OwnerAccountID == acc.ID)
}

// ViewForAccount returns the dispute projected for an internal account:
// the owner view for its owner, the staff view for admins.
func (s *DisputeService) ViewForAccount(ctx context.Context, id string, acc domain.Account) (domain.Dispute, error) {
	d, err := s.load(ctx, id)
	if err != nil {
		return domain.Dispute{}, err
	}
	if !canManage(acc, d) {
		return domain.Dispute{}, ErrDisputeNotFound
	}
	return projector.Project(d, projector.ForRole(acc.Role)), nil
}

// ViewForStaff returns the unredacted dispute.
func (s *DisputeService) ViewForStaff(ctx context.Context, id string) (domain.Dispute, error) {
	d, err := s.load(ctx, id)
	if err != nil {
		return domain.Dispute{}, err
	}
	return projector.Project(d, projector.ViewerStaff), nil
}

// ViewForLandlord returns the external projection. The caller must have
// passed the link and grant checks for id.
func (s *DisputeService) ViewForLandlord(ctx context.Context, id string) (domain.Dispute, error) {
	d, err := s.load(ctx, id)
	if err != nil {
		return domain.Dispute{}, err
	}
	return projector.Project(d, projector.ViewerExternal), nil
}

// ShareRequest asks for an access link to a dispute for one landlord.
type ShareRequest struct {
	DisputeID string
	Requester domain.Account
	Email     string
	Name      string
	TTL       time.Duration
}

type ShareResult struct {
	URL       string       `json:"url"`
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	Grant     domain.Grant `json:"grant"`
}

// Share issues a dispute_review link for the landlord and records the
// grant the gate checks on every request. Re-sharing with the same
// landlord refreshes the existing grant.
func (s *DisputeService) Share(ctx context.Context, req ShareRequest) (ShareResult, error) {
	l := slogx.FromContext(ctx).With(
		slog.String("dispute_id", req.DisputeID),
		slog.String("requester_id", req.Requester.ID),
	)

	// 1. Only the owner or staff may share
	d, err := s.Store.Disputes().GetDispute(ctx, req.DisputeID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ShareResult{}, ErrDisputeNotFound
		}
		return ShareResult{}, fmt.Errorf("load dispute: %w", err)
	}
	if !canManage(req.Requester, d) {
		return ShareResult{}, ErrDisputeNotFound
	}

	ttl := req.TTL
	if ttl <= 0 {
		ttl = s.DefaultTTL
	}

	// 2. Sign the link
	link, err := s.Links.Issue(LinkSubject{Email: req.Email, Name: req.Name}, domain.ScopeDisputeReview, ttl)
	if err != nil {
		return ShareResult{}, err
	}

	// 3. Record the grant, keyed by dispute and landlord
	grant, err := s.Store.Grants().UpsertGrant(ctx, domain.Grant{
		ResourceID:      d.ID,
		SubjectEmail:    req.Email,
		CreatedBy:       req.Requester.ID,
		LinkFingerprint: link.Fingerprint,
		ExpiresAt:       link.ExpiresAt,
	})
	if err != nil {
		return ShareResult{}, fmt.Errorf("upsert grant: %w", err)
	}

	l.Info("dispute shared",
		slog.String("jti", link.JTI),
		slog.String("kid", link.KID),
		slog.Time("expires_at", link.ExpiresAt),
	)

	return ShareResult{
		URL:       s.linkURL(link.Token, d.ID),
		Token:     link.Token,
		ExpiresAt: link.ExpiresAt,
		Grant:     grant,
	}, nil
}

// Unshare expires the landlord's grant, which cuts off every link issued
// to them for this dispute regardless of the links' own expiry.
func (s *DisputeService) Unshare(ctx context.Context, disputeID string, requester domain.Account, email string) error {
	d, err := s.Store.Disputes().GetDispute(ctx, disputeID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrDisputeNotFound
		}
		return fmt.Errorf("load dispute: %w", err)
	}
	if !canManage(requester, d) {
		return ErrDisputeNotFound
	}

	if err := s.Store.Grants().ExpireGrant(ctx, d.ID, email, s.now()); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrDisputeNotFound
		}
		return fmt.Errorf("expire grant: %w", err)
	}
	slogx.FromContext(ctx).Info("dispute unshared", slog.String("dispute_id", d.ID), slog.String("requester_id", requester.ID))
	return nil
}

func (s *DisputeService) linkURL(token, disputeID string) string {
	base := strings.TrimRight(s.LinkBaseURL, "/")
	return base + "/" + url.PathEscape(token) + "/disputes/" + url.PathEscape(disputeID)
}
