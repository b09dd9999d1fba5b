package http

import (
	"net/http"

	"github.com/vistoriapro/vistoria/internal/access/service"
	"github.com/vistoriapro/vistoria/pkg/accesssdk"
	"github.com/vistoriapro/vistoria/pkg/httpx"
)

type EntitlementsHandler struct{}

// ServeHTTP handles GET /v1/me/entitlements
//
//	@Summary		Current entitlements
//	@Description	Role, effective credits and whether a credit-consuming action may start now.
//	@Tags			Entitlements
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	accesssdk.EntitlementResponse
//	@Failure		401	{object}	accesssdk.ErrorResponse	"Missing or invalid session"
//	@Failure		500	{object}	accesssdk.ErrorResponse
//	@Router			/v1/me/entitlements [get].
func (h *EntitlementsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	c, ok := gateContext(w, r)
	if !ok {
		return
	}
	httpx.WriteJSON(w, http.StatusOK, entitlementResponse(c.Entitlement))
}

func sdkCredits(c service.Credits) accesssdk.Credits {
	return accesssdk.Credits{Balance: c.Count(), Unlimited: c.IsUnlimited()}
}

func entitlementResponse(e service.Entitlement) accesssdk.EntitlementResponse {
	return accesssdk.EntitlementResponse{
		AccountID:   e.Account.ID,
		Email:       e.Account.Email,
		Name:        e.Account.Name,
		Role:        string(e.Role),
		Credits:     sdkCredits(e.Credits),
		HasCapacity: e.HasCapacity,
		Unlimited:   e.Unlimited,
	}
}

type CreditsHandler struct {
	CreditService *service.CreditService
}

// ServeHTTP handles POST /v1/credits/consume
//
//	@Summary		Consume a credit
//	@Description	Takes one credit for a credit-consuming action. Accounts on the unlimited allowlist pass without a deduction.
//	@Tags			Entitlements
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		accesssdk.ConsumeCreditRequest	true	"Action being paid for"
//	@Success		200		{object}	accesssdk.ConsumeCreditResponse
//	@Failure		400		{object}	accesssdk.ErrorResponse	"Unknown action"
//	@Failure		401		{object}	accesssdk.ErrorResponse
//	@Failure		402		{object}	accesssdk.ErrorResponse	"insufficient_credits"
//	@Failure		500		{object}	accesssdk.ErrorResponse
//	@Router			/v1/credits/consume [post].
func (h *CreditsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	c, ok := gateContext(w, r)
	if !ok {
		return
	}

	var req accesssdk.ConsumeCreditRequest
	if !decodeBody(w, r, &req) {
		return
	}

	res, err := h.CreditService.Consume(r.Context(), c.Account())
	if err != nil {
		writeServiceError(w, r, err, "consume credit")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, accesssdk.ConsumeCreditResponse{
		Action:   req.Action,
		Deducted: res.Deducted,
		Credits:  sdkCredits(res.Credits),
	})
}
