package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	authcore "github.com/dropDatabas3/frontdoor/internal/auth"
	httpx "github.com/dropDatabas3/frontdoor/internal/http"
	"github.com/dropDatabas3/frontdoor/internal/http/middlewares"
	svcauth "github.com/dropDatabas3/frontdoor/internal/http/services/auth"
	"github.com/dropDatabas3/frontdoor/internal/session"
)

type fakeCallbackService struct {
	lastReq svcauth.CallbackRequest
	result  *svcauth.CallbackResult
	err     error
}

func (f *fakeCallbackService) Callback(ctx context.Context, req svcauth.CallbackRequest) (*svcauth.CallbackResult, error) {
	f.lastReq = req
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func newCallbackRouter(svc svcauth.CallbackService) http.Handler {
	sessions := middlewares.SessionConfig{
		Store:      session.NewMemory(time.Minute),
		CookieName: "frontdoor_session",
		TTL:        time.Minute,
	}
	ctrl := NewCallbackController(svc, sessions, "http://localhost:8000")
	r := chi.NewRouter()
	r.Get("/callback/{applicationName}/{providerName}/{method}", ctrl.Callback)
	return r
}

func cookieByName(t *testing.T, res *http.Response, name string) *http.Cookie {
	t.Helper()
	for _, c := range res.Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestCallback_CodeModeRedirects(t *testing.T) {
	svc := &fakeCallbackService{result: &svcauth.CallbackResult{
		RedirectURL: "http://localhost:9000/login?code=abc123&state=xyz",
	}}
	router := newCallbackRouter(svc)

	req := httptest.NewRequest(http.MethodGet,
		"/callback/app-casbin-oa/provider-github/signup?code=idpcode&state=xyz&redirect_uri=http%3A%2F%2Flocalhost%3A9000%2Flogin", nil)
	req.AddCookie(&http.Cookie{Name: FlowCookieName, Value: "sealed-flow"})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	res := rec.Result()

	require.Equal(t, http.StatusFound, res.StatusCode)
	require.Equal(t, "http://localhost:9000/login?code=abc123&state=xyz", res.Header.Get("Location"))

	require.Equal(t, "app-casbin-oa", svc.lastReq.ApplicationName)
	require.Equal(t, "provider-github", svc.lastReq.ProviderName)
	require.Equal(t, "signup", svc.lastReq.Method)
	require.Equal(t, "idpcode", svc.lastReq.Code)
	require.Equal(t, "http://localhost:9000/login", svc.lastReq.RedirectURIParam)
	require.Equal(t, "sealed-flow", svc.lastReq.FlowToken)
	require.Equal(t, "http://localhost:8000", svc.lastReq.Origin)

	flow := cookieByName(t, res, FlowCookieName)
	require.NotNil(t, flow, "flow cookie must be cleared")
	require.Less(t, flow.MaxAge, 0)
	require.Nil(t, cookieByName(t, res, "frontdoor_session"), "code mode must not set a session cookie")
}

func TestCallback_LoginModeSetsSessionCookie(t *testing.T) {
	svc := &fakeCallbackService{result: &svcauth.CallbackResult{
		RedirectURL: "/",
		Session: &session.Session{
			ID:        "sess-1",
			Principal: session.Principal{Owner: "built-in", Name: "alice"},
		},
	}}
	router := newCallbackRouter(svc)

	req := httptest.NewRequest(http.MethodGet,
		"/callback/app-built-in/provider-google/signup?code=idpcode&state=xyz", nil)
	req.AddCookie(&http.Cookie{Name: FlowCookieName, Value: "sealed-flow"})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	res := rec.Result()

	require.Equal(t, http.StatusFound, res.StatusCode)
	require.Equal(t, "/", res.Header.Get("Location"))

	sess := cookieByName(t, res, "frontdoor_session")
	require.NotNil(t, sess)
	require.Equal(t, "sess-1", sess.Value)
	require.True(t, sess.HttpOnly)
}

func TestCallback_ExchangeErrorSurfacesMessage(t *testing.T) {
	svc := &fakeCallbackService{err: &authcore.ExchangeError{Msg: "invalid code"}}
	router := newCallbackRouter(svc)

	req := httptest.NewRequest(http.MethodGet,
		"/callback/app-built-in/provider-github/signup?code=bad&state=xyz", nil)
	req.AddCookie(&http.Cookie{Name: FlowCookieName, Value: "sealed-flow"})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	res := rec.Result()

	require.Equal(t, http.StatusUnauthorized, res.StatusCode)
	require.Empty(t, res.Header.Get("Location"), "errors must not navigate")

	var body httpx.Response
	require.NoError(t, json.NewDecoder(res.Body).Decode(&body))
	require.Equal(t, "error", body.Status)
	require.Equal(t, "invalid code", body.Msg)
}

func TestCallback_BadInputsAreBadRequests(t *testing.T) {
	for _, err := range []error{
		authcore.ErrMalformedRedirectURI,
		authcore.ErrStateMismatch,
		svcauth.ErrCallbackMissingCode,
		svcauth.ErrCallbackMissingFlow,
	} {
		svc := &fakeCallbackService{err: err}
		router := newCallbackRouter(svc)

		req := httptest.NewRequest(http.MethodGet,
			"/callback/app-built-in/provider-github/signup?code=c&state=s", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equalf(t, http.StatusBadRequest, rec.Code, "error %v", err)
	}
}

func TestCallback_UnknownFailureIsBadGateway(t *testing.T) {
	svc := &fakeCallbackService{err: context.DeadlineExceeded}
	router := newCallbackRouter(svc)

	req := httptest.NewRequest(http.MethodGet,
		"/callback/app-built-in/provider-github/signup?code=c&state=s", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadGateway, rec.Code)
}
