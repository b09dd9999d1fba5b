package accesssdk

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

// Entitlements returns the signed-in account's role and credits.
func (s *Session) Entitlements(ctx context.Context) (*EntitlementResponse, error) {
	resp, err := s.do(ctx, http.MethodGet, "/v1/me/entitlements", nil)
	if err != nil {
		return nil, err
	}

	var out EntitlementResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// ConsumeCredit spends one credit on action. It fails with
// ErrInsufficientCredits when the balance is zero.
func (s *Session) ConsumeCredit(ctx context.Context, action string) (*ConsumeCreditResponse, error) {
	resp, err := s.do(ctx, http.MethodPost, "/v1/credits/consume", ConsumeCreditRequest{Action: action})
	if err != nil {
		return nil, err
	}

	var out ConsumeCreditResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// Dispute returns the caller's view of one of their disputes.
func (s *Session) Dispute(ctx context.Context, id string) (*Dispute, error) {
	return s.getDispute(ctx, "/v1/disputes/"+url.PathEscape(id))
}

// ShareDispute issues an access link for a landlord.
func (s *Session) ShareDispute(ctx context.Context, id string, req ShareDisputeRequest) (*ShareDisputeResponse, error) {
	resp, err := s.do(ctx, http.MethodPost, "/v1/disputes/"+url.PathEscape(id)+"/share", req)
	if err != nil {
		return nil, err
	}

	var out ShareDisputeResponse
	if err := decodeJSON(resp, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return &out, nil
}

// UnshareDispute expires the landlord's grant; every link they hold for
// the dispute stops working.
func (s *Session) UnshareDispute(ctx context.Context, id, email string) error {
	resp, err := s.do(ctx, http.MethodDelete, "/v1/disputes/"+url.PathEscape(id)+"/grants/"+url.PathEscape(email), nil)
	if err != nil {
		return err
	}
	return checkStatusNoContent(resp)
}

// ListAccounts pages through accounts. Requires the admin role.
func (s *Session) ListAccounts(ctx context.Context, limit, offset int) (*ListAccountsResponse, error) {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))
	q.Set("offset", strconv.Itoa(offset))

	resp, err := s.do(ctx, http.MethodGet, "/v1/admin/accounts?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}

	var out ListAccountsResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// Account returns one account's entitlement. Requires the admin role.
func (s *Session) Account(ctx context.Context, id string) (*EntitlementResponse, error) {
	resp, err := s.do(ctx, http.MethodGet, "/v1/admin/accounts/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, err
	}

	var out EntitlementResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// StaffDispute returns the unredacted dispute. Requires the admin role.
func (s *Session) StaffDispute(ctx context.Context, id string) (*Dispute, error) {
	return s.getDispute(ctx, "/v1/admin/disputes/"+url.PathEscape(id))
}

// Overrides reports the allowlist size and, when email is set, whether it
// is on the list. Requires the super_admin role.
func (s *Session) Overrides(ctx context.Context, email string) (*OverridesResponse, error) {
	path := "/v1/admin/overrides"
	if email != "" {
		path += "?" + url.Values{"email": {email}}.Encode()
	}
	resp, err := s.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	var out OverridesResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Session) getDispute(ctx context.Context, path string) (*Dispute, error) {
	resp, err := s.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	var d Dispute
	if err := decodeJSON(resp, &d, http.StatusOK); err != nil {
		return nil, err
	}
	return &d, nil
}
