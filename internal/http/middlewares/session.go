package middlewares

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/dropDatabas3/frontdoor/internal/audit"
	httpx "github.com/dropDatabas3/frontdoor/internal/http"
	"github.com/dropDatabas3/frontdoor/internal/observability/logger"
	"github.com/dropDatabas3/frontdoor/internal/session"
)

type sessionCtxKey struct{}

// SessionFrom returns the session attached to the request, if any.
func SessionFrom(ctx context.Context) (*session.Session, bool) {
	s, ok := ctx.Value(sessionCtxKey{}).(*session.Session)
	return s, ok
}

// SessionConfig wires the session middleware.
type SessionConfig struct {
	Store        session.Store
	Tokens       *session.TokenCodec
	CookieName   string
	CookieSecure bool
	TTL          time.Duration
}

// SetCookie writes the session cookie for a freshly created session.
func (c SessionConfig) SetCookie(w http.ResponseWriter, sess *session.Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     c.CookieName,
		Value:    sess.ID,
		Path:     "/",
		MaxAge:   int(c.TTL.Seconds()),
		HttpOnly: true,
		Secure:   c.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearCookie expires the session cookie.
func (c SessionConfig) ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     c.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   c.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

// WithSession resolves the session cookie and attaches the live session to
// the request context. The auto-signin path runs first: a valid JWT in the
// accessToken query parameter establishes a session on the spot, an
// invalid one fails the request before the handler runs.
func (c SessionConfig) WithSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if token := strings.TrimSpace(r.URL.Query().Get("accessToken")); token != "" {
			principal, err := c.Tokens.Parse(token)
			if err != nil {
				httpx.WriteErrorMsg(w, http.StatusUnauthorized, "invalid JWT token")
				return
			}
			sess, err := c.Store.Create(ctx, principal)
			if err != nil {
				httpx.WriteErrorMsg(w, http.StatusInternalServerError, "failed to create session")
				return
			}
			c.SetCookie(w, sess)
			audit.Log(ctx, audit.EventAutoSignin, logger.UserID(principal.ID()))
			next.ServeHTTP(w, r.WithContext(context.WithValue(ctx, sessionCtxKey{}, sess)))
			return
		}

		cookie, err := r.Cookie(c.CookieName)
		if err != nil || cookie.Value == "" {
			next.ServeHTTP(w, r)
			return
		}
		sess, err := c.Store.Get(ctx, cookie.Value)
		if err != nil {
			if !errors.Is(err, session.ErrNotFound) {
				logger.From(ctx).Warn("session lookup failed", logger.Err(err))
			}
			next.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(ctx, sessionCtxKey{}, sess)))
	})
}

// RequireSession rejects requests without a live session.
func RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := SessionFrom(r.Context()); !ok {
			httpx.WriteErrorMsg(w, http.StatusUnauthorized, "please sign in first")
			return
		}
		next.ServeHTTP(w, r)
	})
}
