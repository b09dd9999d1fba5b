package http

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/vistoriapro/vistoria/internal/access/service"
	"github.com/vistoriapro/vistoria/internal/access/store"
	"github.com/vistoriapro/vistoria/pkg/accesssdk"
	"github.com/vistoriapro/vistoria/pkg/httpx"
	"github.com/vistoriapro/vistoria/pkg/slogx"
)

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

type AccountsHandler struct {
	Accounts store.Accounts
	Resolver *service.EntitlementResolver
}

// HandleList handles GET /v1/admin/accounts
//
//	@Summary		List accounts
//	@Description	Accounts newest first with their effective credits.
//	@Tags			Admin
//	@Produce		json
//	@Security		BearerAuth
//	@Param			limit	query		int	false	"Page size (max 200)"
//	@Param			offset	query		int	false	"Offset"
//	@Success		200		{object}	accesssdk.ListAccountsResponse
//	@Failure		400		{object}	accesssdk.ErrorResponse
//	@Failure		401		{object}	accesssdk.ErrorResponse
//	@Failure		403		{object}	accesssdk.ErrorResponse
//	@Router			/v1/admin/accounts [get].
func (h *AccountsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	limit, ok := queryInt(w, r, "limit", defaultPageSize)
	if !ok {
		return
	}
	offset, ok := queryInt(w, r, "offset", 0)
	if !ok {
		return
	}
	limit = min(max(limit, 1), maxPageSize)

	accounts, err := h.Accounts.ListAccounts(ctx, limit, offset)
	if err != nil {
		log.Error("failed to list accounts", "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "failed to list accounts")
		return
	}

	resp := accesssdk.ListAccountsResponse{
		Accounts: make([]accesssdk.EntitlementResponse, len(accounts)),
		Limit:    limit,
		Offset:   offset,
	}
	for i, a := range accounts {
		resp.Accounts[i] = entitlementResponse(h.Resolver.For(a))
	}
	httpx.WriteJSON(w, http.StatusOK, resp)
}

// HandleGet handles GET /v1/admin/accounts/{id}
//
//	@Summary		Get an account
//	@Description	One account's role and effective credits.
//	@Tags			Admin
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		string	true	"Account id"
//	@Success		200	{object}	accesssdk.EntitlementResponse
//	@Failure		401	{object}	accesssdk.ErrorResponse
//	@Failure		403	{object}	accesssdk.ErrorResponse
//	@Failure		404	{object}	accesssdk.ErrorResponse
//	@Router			/v1/admin/accounts/{id} [get].
func (h *AccountsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if _, err := uuid.Parse(id); err != nil {
		httpx.WriteError(w, http.StatusNotFound, "not_found", "account not found")
		return
	}

	acc, err := h.Accounts.GetAccountByID(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		err = service.ErrAccountNotFound
	}
	if err != nil {
		writeServiceError(w, r, err, "load account")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, entitlementResponse(h.Resolver.For(acc)))
}

type OverridesHandler struct {
	Policy service.EntitlementPolicy
}

// ServeHTTP handles GET /v1/admin/overrides
//
//	@Summary		Inspect the unlimited allowlist
//	@Description	Number of allowlisted emails and, with ?email=, whether that email is on the list. Members are never listed.
//	@Tags			Admin
//	@Produce		json
//	@Security		BearerAuth
//	@Param			email	query		string	false	"Email to test"
//	@Success		200		{object}	accesssdk.OverridesResponse
//	@Failure		401		{object}	accesssdk.ErrorResponse
//	@Failure		403		{object}	accesssdk.ErrorResponse
//	@Router			/v1/admin/overrides [get].
func (h *OverridesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	resp := accesssdk.OverridesResponse{Size: h.Policy.Size()}
	if email := strings.TrimSpace(r.URL.Query().Get("email")); email != "" {
		match := h.Policy.IsOverride(email)
		resp.Email = email
		resp.Match = &match
	}
	httpx.WriteJSON(w, http.StatusOK, resp)
}

func queryInt(w http.ResponseWriter, r *http.Request, name string, def int) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", name+" must be a non-negative integer")
		return 0, false
	}
	return n, true
}
