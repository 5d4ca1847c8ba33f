// Package prompt is the transport for the post-login prompt page.
package prompt

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dropDatabas3/frontdoor/internal/audit"
	"github.com/dropDatabas3/frontdoor/internal/backend"
	httpx "github.com/dropDatabas3/frontdoor/internal/http"
	"github.com/dropDatabas3/frontdoor/internal/http/middlewares"
	svcprompt "github.com/dropDatabas3/frontdoor/internal/http/services/prompt"
	"github.com/dropDatabas3/frontdoor/internal/observability/logger"
	promptcore "github.com/dropDatabas3/frontdoor/internal/prompt"
)

// Controller serves /api/prompt/{applicationName}.
type Controller struct {
	service svcprompt.Service
}

// NewController creates a prompt Controller.
func NewController(service svcprompt.Service) *Controller {
	return &Controller{service: service}
}

// Page answers the page state: application, user, and what is still
// unanswered. An application without prompt requirements gets the
// unexpected-access error state instead.
func (c *Controller) Page(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess, _ := middlewares.SessionFrom(ctx)
	appName := chi.URLParam(r, "applicationName")

	data, err := c.service.Page(ctx, sess, appName)
	if err != nil {
		c.writeError(ctx, w, appName, err)
		return
	}
	httpx.WriteOK(w, data)
}

type fieldRequest struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// UpdateField applies one field edit. Persistence is fire-and-forget: the
// answer is 202 regardless of how the write later fares.
func (c *Controller) UpdateField(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess, _ := middlewares.SessionFrom(ctx)
	appName := chi.URLParam(r, "applicationName")

	var req fieldRequest
	if !httpx.ReadJSON(w, r, &req) {
		return
	}
	if req.Key == "" {
		httpx.WriteErrorMsg(w, http.StatusBadRequest, "key is required")
		return
	}

	if err := c.service.UpdateField(ctx, sess, appName, req.Key, req.Value); err != nil {
		c.writeError(ctx, w, appName, err)
		return
	}
	httpx.WriteJSON(w, http.StatusAccepted, httpx.Response{Status: "ok"})
}

// Submit finalizes the prompt page. Success hands back the login entry URL
// to navigate to; failure leaves the user on the page with the message.
func (c *Controller) Submit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess, _ := middlewares.SessionFrom(ctx)
	appName := chi.URLParam(r, "applicationName")

	target, err := c.service.Submit(ctx, sess, appName)
	if err != nil {
		c.writeError(ctx, w, appName, err)
		return
	}
	audit.Log(ctx, audit.EventPromptSubmit,
		logger.UserID(sess.Principal.ID()),
		logger.Application(appName),
	)
	httpx.WriteOK(w, map[string]string{"redirectUrl": target})
}

func (c *Controller) writeError(ctx context.Context, w http.ResponseWriter, appName string, err error) {
	logger.From(ctx).Warn("prompt request failed", logger.Application(appName), logger.Err(err))
	switch {
	case errors.Is(err, svcprompt.ErrUnexpectedAccess):
		httpx.WriteErrorMsg(w, http.StatusForbidden, err.Error())
	case errors.Is(err, svcprompt.ErrNoInstance),
		errors.Is(err, svcprompt.ErrIncomplete),
		errors.Is(err, promptcore.ErrUnknownField):
		httpx.WriteErrorMsg(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, backend.ErrNotFound):
		httpx.WriteErrorMsg(w, http.StatusNotFound, err.Error())
	default:
		var apiErr *backend.APIError
		if errors.As(err, &apiErr) {
			httpx.WriteErrorMsg(w, http.StatusBadGateway, apiErr.Msg)
			return
		}
		httpx.WriteErrorMsg(w, http.StatusBadGateway, "backend request failed")
	}
}
