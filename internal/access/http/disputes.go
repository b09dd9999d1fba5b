package http

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/vistoriapro/vistoria/internal/access/service"
	"github.com/vistoriapro/vistoria/pkg/accesssdk"
	"github.com/vistoriapro/vistoria/pkg/httpx"
)

// DisputesHandler serves the internal dispute endpoints.
type DisputesHandler struct {
	DisputeService *service.DisputeService
}

// disputeID reads {id}. Dispute ids are uuids; anything else cannot exist.
func disputeID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := r.PathValue("id")
	if _, err := uuid.Parse(id); err != nil {
		httpx.WriteError(w, http.StatusNotFound, "not_found", "dispute not found")
		return "", false
	}
	return id, true
}

// HandleGet handles GET /v1/disputes/{id}
//
//	@Summary		Get a dispute
//	@Description	Owner view of the caller's dispute. Staff receive the full record. Disputes of other accounts answer 404.
//	@Tags			Disputes
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		string	true	"Dispute id"
//	@Success		200	{object}	accesssdk.Dispute
//	@Failure		401	{object}	accesssdk.ErrorResponse
//	@Failure		404	{object}	accesssdk.ErrorResponse
//	@Router			/v1/disputes/{id} [get].
func (h *DisputesHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	c, ok := gateContext(w, r)
	if !ok {
		return
	}
	id, ok := disputeID(w, r)
	if !ok {
		return
	}

	d, err := h.DisputeService.ViewForAccount(r.Context(), id, c.Account())
	if err != nil {
		writeServiceError(w, r, err, "load dispute")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, d)
}

// HandleStaffGet handles GET /v1/admin/disputes/{id}
//
//	@Summary		Get a dispute (staff)
//	@Description	The complete dispute record including internal notes and grants.
//	@Tags			Admin
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		string	true	"Dispute id"
//	@Success		200	{object}	accesssdk.Dispute
//	@Failure		401	{object}	accesssdk.ErrorResponse
//	@Failure		403	{object}	accesssdk.ErrorResponse
//	@Failure		404	{object}	accesssdk.ErrorResponse
//	@Router			/v1/admin/disputes/{id} [get].
func (h *DisputesHandler) HandleStaffGet(w http.ResponseWriter, r *http.Request) {
	id, ok := disputeID(w, r)
	if !ok {
		return
	}

	d, err := h.DisputeService.ViewForStaff(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err, "load dispute")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, d)
}

// HandleShare handles POST /v1/disputes/{id}/share
//
//	@Summary		Share a dispute with a landlord
//	@Description	Issues a dispute_review access link and records the landlord's grant. The token is returned once.
//	@Tags			Disputes
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id		path		string							true	"Dispute id"
//	@Param			request	body		accesssdk.ShareDisputeRequest	true	"Landlord to share with"
//	@Success		201		{object}	accesssdk.ShareDisputeResponse
//	@Failure		400		{object}	accesssdk.ErrorResponse
//	@Failure		401		{object}	accesssdk.ErrorResponse
//	@Failure		404		{object}	accesssdk.ErrorResponse
//	@Router			/v1/disputes/{id}/share [post].
func (h *DisputesHandler) HandleShare(w http.ResponseWriter, r *http.Request) {
	c, ok := gateContext(w, r)
	if !ok {
		return
	}
	id, ok := disputeID(w, r)
	if !ok {
		return
	}

	var req accesssdk.ShareDisputeRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if maxTTL := h.DisputeService.Links.MaxTTL(); req.TTLSeconds > int(maxTTL/time.Second) {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "ttl_seconds failed max")
		return
	}

	res, err := h.DisputeService.Share(r.Context(), service.ShareRequest{
		DisputeID: id,
		Requester: c.Account(),
		Email:     req.Email,
		Name:      req.Name,
		TTL:       time.Duration(req.TTLSeconds) * time.Second,
	})
	if err != nil {
		writeServiceError(w, r, err, "share dispute")
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, accesssdk.ShareDisputeResponse{
		URL:       res.URL,
		Token:     res.Token,
		ExpiresAt: res.ExpiresAt,
		GrantID:   res.Grant.ID,
	})
}

// HandleUnshare handles DELETE /v1/disputes/{id}/grants/{email}
//
//	@Summary		Revoke a landlord's access
//	@Description	Expires the landlord's grant, which stops every link issued to them for this dispute.
//	@Tags			Disputes
//	@Security		BearerAuth
//	@Param			id		path	string	true	"Dispute id"
//	@Param			email	path	string	true	"Landlord email"
//	@Success		204
//	@Failure		401	{object}	accesssdk.ErrorResponse
//	@Failure		404	{object}	accesssdk.ErrorResponse
//	@Router			/v1/disputes/{id}/grants/{email} [delete].
func (h *DisputesHandler) HandleUnshare(w http.ResponseWriter, r *http.Request) {
	c, ok := gateContext(w, r)
	if !ok {
		return
	}
	id, ok := disputeID(w, r)
	if !ok {
		return
	}

	if err := h.DisputeService.Unshare(r.Context(), id, c.Account(), r.PathValue("email")); err != nil {
		writeServiceError(w, r, err, "unshare dispute")
		return
	}
	httpx.NoCache(w)
	w.WriteHeader(http.StatusNoContent)
}
