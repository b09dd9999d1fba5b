package http

import (
	"net/http"

	"github.com/vistoriapro/vistoria/internal/access/domain"
	"github.com/vistoriapro/vistoria/internal/access/service"
	"github.com/vistoriapro/vistoria/pkg/httpx"
)

// LandlordHandler serves disputes to landlords holding an access link.
// The gate has already checked the link and the grant for {id}.
type LandlordHandler struct {
	DisputeService *service.DisputeService
}

func (h *LandlordHandler) load(w http.ResponseWriter, r *http.Request) (domain.Dispute, bool) {
	c, ok := gateContext(w, r)
	if !ok {
		return domain.Dispute{}, false
	}
	d, err := h.DisputeService.ViewForLandlord(r.Context(), c.ResourceID)
	if err != nil {
		writeLandlordError(w, r, err)
		return domain.Dispute{}, false
	}
	return d, true
}

// HandleDispute handles GET /v1/landlord/{token}/disputes/{id}
//
//	@Summary		Shared dispute
//	@Description	The dispute as a landlord may see it. Errors carry a localized message (Accept-Language: pt-BR or en).
//	@Tags			Landlord
//	@Produce		json
//	@Param			token	path		string	true	"Access link token"
//	@Param			id		path		string	true	"Dispute id"
//	@Success		200		{object}	accesssdk.Dispute
//	@Failure		401		{object}	accesssdk.ExternalErrorResponse	"link_invalid"
//	@Failure		403		{object}	accesssdk.ExternalErrorResponse	"access_denied"
//	@Failure		404		{object}	accesssdk.ExternalErrorResponse	"not_found"
//	@Router			/v1/landlord/{token}/disputes/{id} [get].
func (h *LandlordHandler) HandleDispute(w http.ResponseWriter, r *http.Request) {
	d, ok := h.load(w, r)
	if !ok {
		return
	}
	httpx.WriteJSON(w, http.StatusOK, d)
}

// HandleMessages handles GET /v1/landlord/{token}/disputes/{id}/messages
//
//	@Summary		Shared dispute messages
//	@Tags			Landlord
//	@Produce		json
//	@Param			token	path		string	true	"Access link token"
//	@Param			id		path		string	true	"Dispute id"
//	@Success		200		{object}	accesssdk.MessagesResponse
//	@Failure		401		{object}	accesssdk.ExternalErrorResponse
//	@Failure		403		{object}	accesssdk.ExternalErrorResponse
//	@Router			/v1/landlord/{token}/disputes/{id}/messages [get].
func (h *LandlordHandler) HandleMessages(w http.ResponseWriter, r *http.Request) {
	d, ok := h.load(w, r)
	if !ok {
		return
	}
	msgs := d.Messages
	if msgs == nil {
		msgs = []domain.Message{}
	}
	httpx.WriteJSON(w, http.StatusOK, struct {
		Messages []domain.Message `json:"messages"`
	}{msgs})
}

// HandleEvidence handles GET /v1/landlord/{token}/disputes/{id}/evidence
//
//	@Summary		Shared dispute evidence
//	@Tags			Landlord
//	@Produce		json
//	@Param			token	path		string	true	"Access link token"
//	@Param			id		path		string	true	"Dispute id"
//	@Success		200		{object}	accesssdk.EvidenceResponse
//	@Failure		401		{object}	accesssdk.ExternalErrorResponse
//	@Failure		403		{object}	accesssdk.ExternalErrorResponse
//	@Router			/v1/landlord/{token}/disputes/{id}/evidence [get].
func (h *LandlordHandler) HandleEvidence(w http.ResponseWriter, r *http.Request) {
	d, ok := h.load(w, r)
	if !ok {
		return
	}
	ev := d.Evidence
	if ev == nil {
		ev = []domain.Evidence{}
	}
	httpx.WriteJSON(w, http.StatusOK, struct {
		Evidence []domain.Evidence `json:"evidence"`
	}{ev})
}
