// Package auth has the sign-in transport: flow start, the callback
// endpoint, and session endpoints.
package auth

import (
	"errors"
	"net/http"

	httpx "github.com/dropDatabas3/frontdoor/internal/http"
	svcauth "github.com/dropDatabas3/frontdoor/internal/http/services/auth"
	"github.com/dropDatabas3/frontdoor/internal/observability/logger"
)

// FlowCookieName carries the sealed authorize parameters between flow
// start and the callback.
const FlowCookieName = "frontdoor_flow"

// flowCookieMaxAge bounds how long a started flow stays completable.
const flowCookieMaxAge = 10 * 60

// FlowController serves GET /api/get-app-login.
type FlowController struct {
	service      svcauth.FlowService
	cookieSecure bool
}

// NewFlowController creates a FlowController.
func NewFlowController(service svcauth.FlowService, cookieSecure bool) *FlowController {
	return &FlowController{service: service, cookieSecure: cookieSecure}
}

// GetAppLogin validates the authorize parameters, seals them into the flow
// cookie, and returns the application for the login page to render.
func (c *FlowController) GetAppLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("FlowController.GetAppLogin"))

	q := r.URL.Query()
	res, err := c.service.Start(ctx, svcauth.StartRequest{
		ClientID:     q.Get("clientId"),
		ResponseType: q.Get("responseType"),
		RedirectURI:  q.Get("redirectUri"),
		Scope:        q.Get("scope"),
		State:        q.Get("state"),
	})
	if err != nil {
		log.Warn("flow start rejected", logger.Err(err))
		status := http.StatusBadGateway
		if errors.Is(err, svcauth.ErrStartMissingClientID) || errors.Is(err, svcauth.ErrStartMissingRedirect) {
			status = http.StatusBadRequest
		}
		httpx.WriteErrorMsg(w, status, err.Error())
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     FlowCookieName,
		Value:    res.FlowToken,
		Path:     "/",
		MaxAge:   flowCookieMaxAge,
		HttpOnly: true,
		Secure:   c.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	httpx.WriteOK(w, res.Application)
}
