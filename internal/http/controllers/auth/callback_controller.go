package auth

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dropDatabas3/frontdoor/internal/audit"
	authcore "github.com/dropDatabas3/frontdoor/internal/auth"
	httpx "github.com/dropDatabas3/frontdoor/internal/http"
	"github.com/dropDatabas3/frontdoor/internal/http/middlewares"
	svcauth "github.com/dropDatabas3/frontdoor/internal/http/services/auth"
	"github.com/dropDatabas3/frontdoor/internal/observability/logger"
)

// CallbackController serves GET /callback/{applicationName}/{providerName}/{method}:
// the single endpoint every external sign-in returns to.
type CallbackController struct {
	service  svcauth.CallbackService
	sessions middlewares.SessionConfig
	origin   string
}

// NewCallbackController creates a CallbackController. origin is the
// console's own origin, used to rebuild the registered redirect URI.
func NewCallbackController(service svcauth.CallbackService, sessions middlewares.SessionConfig, origin string) *CallbackController {
	return &CallbackController{service: service, sessions: sessions, origin: origin}
}

// Callback runs the one-shot exchange and issues exactly one navigation,
// or surfaces the error with no navigation at all.
func (c *CallbackController) Callback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("CallbackController.Callback"))

	q := r.URL.Query()
	req := svcauth.CallbackRequest{
		ApplicationName:  chi.URLParam(r, "applicationName"),
		ProviderName:     chi.URLParam(r, "providerName"),
		Method:           chi.URLParam(r, "method"),
		Code:             q.Get("code"),
		State:            q.Get("state"),
		RedirectURIParam: q.Get("redirect_uri"),
		Origin:           c.origin,
	}
	if cookie, err := r.Cookie(FlowCookieName); err == nil {
		req.FlowToken = cookie.Value
	}

	res, err := c.service.Callback(ctx, req)
	if err != nil {
		log.Warn("callback failed",
			logger.Application(req.ApplicationName),
			logger.Provider(req.ProviderName),
			logger.Err(err),
		)
		c.writeError(w, err)
		return
	}

	if res.Session != nil {
		c.sessions.SetCookie(w, res.Session)
		audit.Log(ctx, audit.EventSignin,
			logger.UserID(res.Session.Principal.ID()),
			logger.Application(req.ApplicationName),
			logger.Provider(req.ProviderName),
		)
	}

	// Flow cookie is one-shot: drop it once the exchange concluded.
	http.SetCookie(w, &http.Cookie{Name: FlowCookieName, Value: "", Path: "/", MaxAge: -1})
	http.Redirect(w, r, res.RedirectURL, http.StatusFound)
}

func (c *CallbackController) writeError(w http.ResponseWriter, err error) {
	var exchangeErr *authcore.ExchangeError
	switch {
	case errors.As(err, &exchangeErr):
		// Upstream said status=error: show its message, navigate nowhere.
		httpx.WriteErrorMsg(w, http.StatusUnauthorized, exchangeErr.Msg)
	case errors.Is(err, authcore.ErrMalformedRedirectURI),
		errors.Is(err, authcore.ErrStateMismatch),
		errors.Is(err, svcauth.ErrCallbackMissingCode),
		errors.Is(err, svcauth.ErrCallbackMissingState),
		errors.Is(err, svcauth.ErrCallbackMissingFlow):
		httpx.WriteErrorMsg(w, http.StatusBadRequest, err.Error())
	default:
		httpx.WriteErrorMsg(w, http.StatusBadGateway, "login exchange failed, please try again")
	}
}
