package http

import (
	"errors"
	"net/http"

	"github.com/vistoriapro/vistoria/internal/access/gate"
	"github.com/vistoriapro/vistoria/internal/access/locale"
	"github.com/vistoriapro/vistoria/internal/access/service"
	"github.com/vistoriapro/vistoria/pkg/httpx"
	"github.com/vistoriapro/vistoria/pkg/slogx"
)

// writeServiceError maps service errors onto internal JSON responses.
// Unknown errors are logged and reported as server_error.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error, what string) {
	switch {
	case errors.Is(err, service.ErrDisputeNotFound):
		httpx.WriteError(w, http.StatusNotFound, "not_found", "dispute not found")
	case errors.Is(err, service.ErrAccountNotFound):
		httpx.WriteError(w, http.StatusNotFound, "not_found", "account not found")
	case errors.Is(err, service.ErrNoCapacity):
		httpx.WriteError(w, http.StatusPaymentRequired, "insufficient_credits", "no credits left")
	case errors.Is(err, service.ErrInvalidLinkRequest):
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "invalid share request")
	default:
		slogx.FromContext(r.Context()).Error("failed to "+what, "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "internal error")
	}
}

// writeLandlordError is the localized counterpart for landlord routes.
func writeLandlordError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, service.ErrDisputeNotFound) {
		gate.WriteExternal(w, r, http.StatusNotFound, locale.NotFound)
		return
	}
	slogx.FromContext(r.Context()).Error("failed to load shared dispute", "error", err)
	gate.WriteExternal(w, r, http.StatusInternalServerError, locale.Unavailable)
}

// gateContext returns the context left by gate.Require. Every route here
// sits behind the gate, so a missing context is a wiring bug.
func gateContext(w http.ResponseWriter, r *http.Request) (gate.Context, bool) {
	c, ok := gate.FromContext(r.Context())
	if !ok {
		slogx.FromContext(r.Context()).Error("handler mounted without gate")
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "internal error")
	}
	return c, ok
}
