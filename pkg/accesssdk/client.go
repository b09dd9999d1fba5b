package accesssdk

import (
	"net/http"
	"strings"
	"time"
)

// Client talks to the access service. The zero value is not usable; create
// one with NewClient.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client

	// AcceptLanguage is sent on landlord calls so error messages come back
	// in the reader's language. Empty means the service default (pt-BR).
	AcceptLanguage string
}

// NewClient creates a client for the service at baseURL.
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// WithSession returns a Session that authenticates with an identity
// provider session token. Refreshing that token is the caller's job; the
// identity provider SDK already does it.
func (c *Client) WithSession(token string) *Session {
	return &Session{client: c, token: token}
}

// Session makes internal calls on behalf of one signed-in account.
type Session struct {
	client *Client
	token  string
}
