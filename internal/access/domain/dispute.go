package domain

import "time"

// ScopeDisputeReview is the only link scope we issue today: read access to
// one dispute and its messages and evidence.
const ScopeDisputeReview = "dispute_review"

type DisputeStatus string

const (
	DisputeOpen        DisputeStatus = "open"
	DisputeUnderReview DisputeStatus = "under_review"
	DisputeResolved    DisputeStatus = "resolved"
	DisputeRejected    DisputeStatus = "rejected"
)

// Dispute is a tenant's contestation of inspection findings together with
// everything hanging off it. JSON tags use omitempty so fields a viewer is
// not allowed to see disappear from responses once zeroed.
type Dispute struct {
	ID             string        `json:"id"`
	InspectionID   string        `json:"inspection_id,omitempty"`
	OwnerAccountID string        `json:"owner_account_id,omitempty"`
	Title          string        `json:"title"`
	Description    string        `json:"description,omitempty"`
	Status         DisputeStatus `json:"status"`
	InternalNotes  string        `json:"internal_notes,omitempty"`
	ResolvedBy     string        `json:"resolved_by,omitempty"`
	ResolvedAt     *time.Time    `json:"resolved_at,omitempty"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`

	Items    []DisputeItem `json:"items,omitempty"`
	Messages []Message     `json:"messages,omitempty"`
	Evidence []Evidence    `json:"evidence,omitempty"`
	Grants   []Grant       `json:"grants,omitempty"`
}

// DisputeItem is one contested inspection finding.
type DisputeItem struct {
	ID           string    `json:"id"`
	DisputeID    string    `json:"dispute_id"`
	Room         string    `json:"room,omitempty"`
	Item         string    `json:"item"`
	Reason       string    `json:"reason,omitempty"`
	InternalOnly bool      `json:"internal_only,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

type AuthorKind string

const (
	AuthorTenant   AuthorKind = "tenant"
	AuthorLandlord AuthorKind = "landlord"
	AuthorStaff    AuthorKind = "staff"
)

type Message struct {
	ID              string     `json:"id"`
	DisputeID       string     `json:"dispute_id"`
	AuthorKind      AuthorKind `json:"author_kind"`
	AuthorAccountID string     `json:"author_account_id,omitempty"`
	AuthorName      string     `json:"author_name,omitempty"`
	Body            string     `json:"body"`
	InternalOnly    bool       `json:"internal_only,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

type Evidence struct {
	ID                string    `json:"id"`
	DisputeID         string    `json:"dispute_id"`
	UploaderAccountID string    `json:"uploader_account_id,omitempty"`
	FileURL           string    `json:"file_url"`
	Description       string    `json:"description,omitempty"`
	InternalOnly      bool      `json:"internal_only,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
}

// Grant records that an external subject may open links for one resource.
// The link itself is never stored, only its fingerprint.
type Grant struct {
	ID              string    `json:"id"`
	ResourceID      string    `json:"resource_id"`
	SubjectEmail    string    `json:"subject_email"`
	CreatedBy       string    `json:"created_by,omitempty"`
	LinkFingerprint string    `json:"link_fingerprint,omitempty"`
	ExpiresAt       time.Time `json:"expires_at"`
	CreatedAt       time.Time `json:"created_at"`
}

// Active reports whether the grant still authorizes access at now.
func (g Grant) Active(now time.Time) bool { return now.Before(g.ExpiresAt) }
