// Package backend is the typed REST client for the identity provider's
// CRUD/login backend. Everything the console knows about applications and
// users comes through here.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dropDatabas3/frontdoor/internal/auth"
	"github.com/dropDatabas3/frontdoor/internal/domain"
	"github.com/dropDatabas3/frontdoor/internal/metrics"
)

// ErrNotFound marks a (owner, name) lookup the backend answered empty.
var ErrNotFound = errors.New("not found")

// APIError is a backend response with a non-empty msg.
type APIError struct {
	Msg string
}

func (e *APIError) Error() string {
	return e.Msg
}

// Client talks to the backend REST API.
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a backend client. timeout bounds every call; context
// cancellation still applies per request.
func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// GetApplication fetches one application by (owner, name).
func (c *Client) GetApplication(ctx context.Context, owner, name string) (*domain.Application, error) {
	var app domain.Application
	ok, err := c.getObject(ctx, "get-application", owner+"/"+name, &app)
	if err != nil {
		metrics.BackendRequests.WithLabelValues("get-application", "error").Inc()
		return nil, err
	}
	if !ok {
		metrics.BackendRequests.WithLabelValues("get-application", "miss").Inc()
		return nil, fmt.Errorf("application %s/%s: %w", owner, name, ErrNotFound)
	}
	metrics.BackendRequests.WithLabelValues("get-application", "ok").Inc()
	return &app, nil
}

// GetUser fetches one user by (owner, name).
func (c *Client) GetUser(ctx context.Context, owner, name string) (*domain.User, error) {
	var user domain.User
	ok, err := c.getObject(ctx, "get-user", owner+"/"+name, &user)
	if err != nil {
		metrics.BackendRequests.WithLabelValues("get-user", "error").Inc()
		return nil, err
	}
	if !ok {
		metrics.BackendRequests.WithLabelValues("get-user", "miss").Inc()
		return nil, fmt.Errorf("user %s/%s: %w", owner, name, ErrNotFound)
	}
	metrics.BackendRequests.WithLabelValues("get-user", "ok").Inc()
	return &user, nil
}

// UpdateUser writes the full user record. A non-empty msg in the response
// becomes an *APIError.
func (c *Client) UpdateUser(ctx context.Context, user *domain.User) error {
	q := url.Values{}
	q.Set("id", user.Owner+"/"+user.Name)

	var res domain.UpdateResult
	if err := c.post(ctx, "/api/update-user?"+q.Encode(), user, &res); err != nil {
		metrics.BackendRequests.WithLabelValues("update-user", "error").Inc()
		return err
	}
	if res.Msg != "" {
		metrics.BackendRequests.WithLabelValues("update-user", "rejected").Inc()
		return &APIError{Msg: res.Msg}
	}
	metrics.BackendRequests.WithLabelValues("update-user", "ok").Inc()
	return nil
}

// Login submits the login exchange. The captured authorize parameters ride
// as query parameters, matching what the backend reads next to the body.
func (c *Client) Login(ctx context.Context, req domain.LoginRequest, captured auth.CapturedParams) (*domain.LoginResult, error) {
	q := url.Values{}
	q.Set("clientId", captured.ClientID)
	q.Set("responseType", captured.ResponseType)
	q.Set("redirectUri", captured.RedirectURI)
	q.Set("scope", captured.Scope)
	q.Set("state", captured.State)

	var res domain.LoginResult
	if err := c.post(ctx, "/api/login?"+q.Encode(), req, &res); err != nil {
		metrics.BackendRequests.WithLabelValues("login", "error").Inc()
		return nil, err
	}
	metrics.BackendRequests.WithLabelValues("login", res.Status).Inc()
	return &res, nil
}

// getObject fetches a single object endpoint. Returns ok=false when the
// backend answers the JSON null that means "not found".
func (c *Client) getObject(ctx context.Context, endpoint, id string, dst any) (bool, error) {
	q := url.Values{}
	q.Set("id", id)

	body, err := c.do(ctx, http.MethodGet, "/api/"+endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return false, err
	}
	if len(bytes.TrimSpace(body)) == 0 || string(bytes.TrimSpace(body)) == "null" {
		return false, nil
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return false, fmt.Errorf("decode %s: %w", endpoint, err)
	}
	return true, nil
}

func unmarshal(body []byte, dst any, endpoint string) error {
	if err := json.Unmarshal(body, dst); err != nil {
		return fmt.Errorf("decode %s: %w", endpoint, err)
	}
	return nil
}

func (c *Client) post(ctx context.Context, path string, in, out any) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return err
	}
	body, err := c.do(ctx, http.MethodPost, path, payload)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, payload []byte) ([]byte, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode/100 != 2 {
		return nil, fmt.Errorf("backend %s %s: status=%d body=%s", method, path, resp.StatusCode, body)
	}
	return body, nil
}
