package accesssdk

import (
	"context"
	"net/http"
	"net/url"
)

func (c *Client) landlordHeaders() map[string]string {
	if c.AcceptLanguage == "" {
		return nil
	}
	return map[string]string{"Accept-Language": c.AcceptLanguage}
}

func (c *Client) landlordPath(linkToken, disputeID, suffix string) string {
	return "/v1/landlord/" + url.PathEscape(linkToken) + "/disputes/" + url.PathEscape(disputeID) + suffix
}

// SharedDispute fetches a dispute with a landlord's access link.
func (c *Client) SharedDispute(ctx context.Context, linkToken, disputeID string) (*Dispute, error) {
	resp, err := c.do(ctx, http.MethodGet, c.landlordPath(linkToken, disputeID, ""), nil, c.landlordHeaders())
	if err != nil {
		return nil, err
	}

	var d Dispute
	if err := decodeJSON(resp, &d, http.StatusOK); err != nil {
		return nil, err
	}
	return &d, nil
}

// SharedMessages lists the dispute messages a landlord may read.
func (c *Client) SharedMessages(ctx context.Context, linkToken, disputeID string) ([]Message, error) {
	resp, err := c.do(ctx, http.MethodGet, c.landlordPath(linkToken, disputeID, "/messages"), nil, c.landlordHeaders())
	if err != nil {
		return nil, err
	}

	var out MessagesResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return out.Messages, nil
}

// SharedEvidence lists the dispute evidence a landlord may see.
func (c *Client) SharedEvidence(ctx context.Context, linkToken, disputeID string) ([]Evidence, error) {
	resp, err := c.do(ctx, http.MethodGet, c.landlordPath(linkToken, disputeID, "/evidence"), nil, c.landlordHeaders())
	if err != nil {
		return nil, err
	}

	var out EvidenceResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return out.Evidence, nil
}
