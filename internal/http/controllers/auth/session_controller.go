package auth

import (
	"errors"
	"net/http"

	"github.com/dropDatabas3/frontdoor/internal/audit"
	"github.com/dropDatabas3/frontdoor/internal/backend"
	httpx "github.com/dropDatabas3/frontdoor/internal/http"
	"github.com/dropDatabas3/frontdoor/internal/http/middlewares"
	svcprompt "github.com/dropDatabas3/frontdoor/internal/http/services/prompt"
	"github.com/dropDatabas3/frontdoor/internal/observability/logger"
)

// SessionController serves the account endpoints of a live session.
type SessionController struct {
	sessions middlewares.SessionConfig
	backend  *backend.Client
	prompts  svcprompt.Service
}

// NewSessionController creates a SessionController.
func NewSessionController(sessions middlewares.SessionConfig, b *backend.Client, prompts svcprompt.Service) *SessionController {
	return &SessionController{sessions: sessions, backend: b, prompts: prompts}
}

// GetAccount returns the signed-in user's profile.
func (c *SessionController) GetAccount(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess, _ := middlewares.SessionFrom(ctx)

	user, err := c.backend.GetUser(ctx, sess.Principal.Owner, sess.Principal.Name)
	if err != nil {
		if errors.Is(err, backend.ErrNotFound) {
			httpx.WriteErrorMsg(w, http.StatusNotFound, "account no longer exists")
			return
		}
		logger.From(ctx).Error("account fetch failed", logger.Err(err))
		httpx.WriteErrorMsg(w, http.StatusBadGateway, "failed to fetch account")
		return
	}
	httpx.WriteOK(w, user)
}

// Logout ends the session: store entry, cookie, and any prompt page
// instances tied to it.
func (c *SessionController) Logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess, _ := middlewares.SessionFrom(ctx)

	c.prompts.Drop(sess.ID)
	if err := c.sessions.Store.Delete(ctx, sess.ID); err != nil {
		logger.From(ctx).Warn("session delete failed", logger.Err(err))
	}
	c.sessions.ClearCookie(w)
	audit.Log(ctx, audit.EventSignout, logger.UserID(sess.Principal.ID()))
	httpx.WriteOK(w, nil)
}
