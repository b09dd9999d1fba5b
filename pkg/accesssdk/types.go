package accesssdk

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// ============================================================================
// Errors
// ============================================================================

// ErrorResponse is the body of internal error responses.
type ErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
}

// ExternalErrorResponse is the body of landlord error responses.
type ExternalErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// ============================================================================
// Health
// ============================================================================

type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime"`
	Version string        `json:"version"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}

type HealthChecks struct {
	Database         string `json:"database"`
	IdentityProvider string `json:"identity_provider"`
}

// ============================================================================
// Entitlements and credits
// ============================================================================

// Credits is a balance or unlimited. On the wire it is an integer or the
// string "unlimited".
type Credits struct {
	Balance   int
	Unlimited bool
}

func (c Credits) String() string {
	if c.Unlimited {
		return "unlimited"
	}
	return strconv.Itoa(c.Balance)
}

func (c Credits) MarshalJSON() ([]byte, error) {
	if c.Unlimited {
		return []byte(`"unlimited"`), nil
	}
	return []byte(strconv.Itoa(c.Balance)), nil
}

func (c *Credits) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte(`"unlimited"`)) {
		*c = Credits{Unlimited: true}
		return nil
	}
	var n int
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("credits: want integer or \"unlimited\": %w", err)
	}
	*c = Credits{Balance: n}
	return nil
}

// EntitlementResponse is returned by GET /v1/me/entitlements and the admin
// account endpoints.
type EntitlementResponse struct {
	AccountID   string  `json:"account_id"`
	Email       string  `json:"email"`
	Name        string  `json:"name,omitempty"`
	Role        string  `json:"role"`
	Credits     Credits `json:"credits" swaggertype:"string" example:"3"`
	HasCapacity bool    `json:"has_capacity"`
	Unlimited   bool    `json:"unlimited"`
}

// Credit-consuming actions.
const (
	ActionAIAnalysis       = "ai_analysis"
	ActionReportGeneration = "report_generation"
)

type ConsumeCreditRequest struct {
	Action string `json:"action" validate:"required,oneof=ai_analysis report_generation"`
}

type ConsumeCreditResponse struct {
	Action   string  `json:"action"`
	Deducted bool    `json:"deducted"`
	Credits  Credits `json:"credits" swaggertype:"string" example:"2"`
}

// ============================================================================
// Accounts (admin)
// ============================================================================

type ListAccountsResponse struct {
	Accounts []EntitlementResponse `json:"accounts"`
	Limit    int                   `json:"limit"`
	Offset   int                   `json:"offset"`
}

// OverridesResponse reports on the unlimited-credit allowlist without
// revealing its members.
type OverridesResponse struct {
	Size  int    `json:"size"`
	Email string `json:"email,omitempty"`
	Match *bool  `json:"match,omitempty"`
}

// ============================================================================
// Disputes
// ============================================================================

type Dispute struct {
	ID             string     `json:"id"`
	InspectionID   string     `json:"inspection_id,omitempty"`
	OwnerAccountID string     `json:"owner_account_id,omitempty"`
	Title          string     `json:"title"`
	Description    string     `json:"description,omitempty"`
	Status         string     `json:"status"`
	InternalNotes  string     `json:"internal_notes,omitempty"`
	ResolvedBy     string     `json:"resolved_by,omitempty"`
	ResolvedAt     *time.Time `json:"resolved_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`

	Items    []DisputeItem `json:"items,omitempty"`
	Messages []Message     `json:"messages,omitempty"`
	Evidence []Evidence    `json:"evidence,omitempty"`
	Grants   []Grant       `json:"grants,omitempty"`
}

type DisputeItem struct {
	ID           string    `json:"id"`
	Room         string    `json:"room,omitempty"`
	Item         string    `json:"item"`
	Reason       string    `json:"reason,omitempty"`
	InternalOnly bool      `json:"internal_only,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

type Message struct {
	ID              string    `json:"id"`
	AuthorKind      string    `json:"author_kind"`
	AuthorAccountID string    `json:"author_account_id,omitempty"`
	AuthorName      string    `json:"author_name,omitempty"`
	Body            string    `json:"body"`
	InternalOnly    bool      `json:"internal_only,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

type Evidence struct {
	ID                string    `json:"id"`
	UploaderAccountID string    `json:"uploader_account_id,omitempty"`
	FileURL           string    `json:"file_url"`
	Description       string    `json:"description,omitempty"`
	InternalOnly      bool      `json:"internal_only,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
}

type Grant struct {
	ID              string    `json:"id"`
	SubjectEmail    string    `json:"subject_email"`
	CreatedBy       string    `json:"created_by,omitempty"`
	LinkFingerprint string    `json:"link_fingerprint,omitempty"`
	ExpiresAt       time.Time `json:"expires_at"`
	CreatedAt       time.Time `json:"created_at"`
}

type MessagesResponse struct {
	Messages []Message `json:"messages"`
}

type EvidenceResponse struct {
	Evidence []Evidence `json:"evidence"`
}

// ShareDisputeRequest asks for an access link for a landlord. TTLSeconds
// of zero uses the service default; values above ACCESS_LINK_MAX_TTL are
// rejected.
type ShareDisputeRequest struct {
	Email      string `json:"email" validate:"required,email,max=254"`
	Name       string `json:"name,omitempty" validate:"max=120"`
	TTLSeconds int    `json:"ttl_seconds,omitempty" validate:"gte=0"`
}

// ShareDisputeResponse carries the link. Token is shown once; the service
// keeps only its fingerprint.
type ShareDisputeResponse struct {
	URL       string    `json:"url"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	GrantID   string    `json:"grant_id"`
}
