package backend

import (
	"context"
	"net/url"

	"github.com/dropDatabas3/frontdoor/internal/auth"
	"github.com/dropDatabas3/frontdoor/internal/domain"
	"github.com/dropDatabas3/frontdoor/internal/metrics"
)

// GetAppLogin validates the authorize parameters against the backend and
// returns the matching application. The backend answers status=error with
// a message when the client_id or redirect_uri is not registered.
func (c *Client) GetAppLogin(ctx context.Context, params auth.CapturedParams) (*domain.Application, error) {
	q := url.Values{}
	q.Set("clientId", params.ClientID)
	q.Set("responseType", params.ResponseType)
	q.Set("redirectUri", params.RedirectURI)
	q.Set("scope", params.Scope)
	q.Set("state", params.State)

	var res struct {
		Status string              `json:"status"`
		Msg    string              `json:"msg"`
		Data   *domain.Application `json:"data"`
	}
	body, err := c.do(ctx, "GET", "/api/get-app-login?"+q.Encode(), nil)
	if err != nil {
		metrics.BackendRequests.WithLabelValues("get-app-login", "error").Inc()
		return nil, err
	}
	if err := unmarshal(body, &res, "get-app-login"); err != nil {
		metrics.BackendRequests.WithLabelValues("get-app-login", "error").Inc()
		return nil, err
	}
	if res.Status != domain.StatusOK {
		metrics.BackendRequests.WithLabelValues("get-app-login", "rejected").Inc()
		return nil, &APIError{Msg: res.Msg}
	}
	metrics.BackendRequests.WithLabelValues("get-app-login", "ok").Inc()
	return res.Data, nil
}
