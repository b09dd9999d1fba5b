// Package projector strips what a viewer must not see from a dispute
// record graph before it leaves the service.
package projector

import (
	"slices"

	"github.com/vistoriapro/vistoria/internal/access/domain"
)

// Viewer is the authorization level a record is projected for.
type Viewer int

const (
	// ViewerExternal is a landlord holding an access link. It is the zero
	// value so a forgotten viewer gets the most restrictive projection.
	ViewerExternal Viewer = iota
	// ViewerOwner is the account that opened the dispute.
	ViewerOwner
	// ViewerStaff is admin or super_admin.
	ViewerStaff
)

func (v Viewer) String() string {
	switch v {
	case ViewerOwner:
		return "owner"
	case ViewerStaff:
		return "staff"
	default:
		return "external"
	}
}

// ForRole picks the viewer for an internal account looking at a dispute.
func ForRole(role domain.Role) Viewer {
	if role.IsStaff() {
		return ViewerStaff
	}
	return ViewerOwner
}

// Project returns a copy of d with the fields denied to v zeroed and the
// internal-only sub-records removed. d is never modified, and projecting
// an already projected record changes nothing.
//
//	external: internal notes, owner account, resolver, every grant, message
//	          authors' and evidence uploaders' account ids, internal-only
//	          items, messages and evidence
//	owner:    internal notes, resolver, grant link fingerprints,
//	          internal-only items, messages and evidence
//	staff:    nothing
func Project(d domain.Dispute, v Viewer) domain.Dispute {
	out := d
	if d.ResolvedAt != nil {
		at := *d.ResolvedAt
		out.ResolvedAt = &at
	}

	switch v {
	case ViewerStaff:
		out.Items = slices.Clone(d.Items)
		out.Messages = slices.Clone(d.Messages)
		out.Evidence = slices.Clone(d.Evidence)
		out.Grants = slices.Clone(d.Grants)
		return out

	case ViewerOwner:
		out.InternalNotes = ""
		out.ResolvedBy = ""
		out.Items = visibleItems(d.Items)
		out.Messages = visibleMessages(d.Messages, false)
		out.Evidence = visibleEvidence(d.Evidence, false)
		out.Grants = blankFingerprints(d.Grants)
		return out

	default:
		out.InternalNotes = ""
		out.OwnerAccountID = ""
		out.ResolvedBy = ""
		out.Items = visibleItems(d.Items)
		out.Messages = visibleMessages(d.Messages, true)
		out.Evidence = visibleEvidence(d.Evidence, true)
		out.Grants = nil
		return out
	}
}

func visibleItems(in []domain.DisputeItem) []domain.DisputeItem {
	var out []domain.DisputeItem
	for _, it := range in {
		if !it.InternalOnly {
			out = append(out, it)
		}
	}
	return out
}

func visibleMessages(in []domain.Message, hideAuthors bool) []domain.Message {
	var out []domain.Message
	for _, m := range in {
		if m.InternalOnly {
			continue
		}
		if hideAuthors {
			m.AuthorAccountID = ""
		}
		out = append(out, m)
	}
	return out
}

func visibleEvidence(in []domain.Evidence, hideUploaders bool) []domain.Evidence {
	var out []domain.Evidence
	for _, e := range in {
		if e.InternalOnly {
			continue
		}
		if hideUploaders {
			e.UploaderAccountID = ""
		}
		out = append(out, e)
	}
	return out
}

func blankFingerprints(in []domain.Grant) []domain.Grant {
	if in == nil {
		return nil
	}
	out := make([]domain.Grant, len(in))
	for i, g := range in {
		g.LinkFingerprint = ""
		out[i] = g
	}
	return out
}
