package auth

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"

	"github.com/dropDatabas3/frontdoor/internal/domain"
	"github.com/dropDatabas3/frontdoor/internal/metrics"
)

// Exchanger submits a login request, together with the OAuth parameters
// captured at flow start, to the backend login exchange.
type Exchanger interface {
	Login(ctx context.Context, req domain.LoginRequest, captured CapturedParams) (*domain.LoginResult, error)
}

// CapturedParams are the OAuth authorize parameters sealed away when the
// flow began. State must round-trip unchanged: the code-mode redirect uses
// the captured value, never a server-echoed one.
type CapturedParams struct {
	ClientID     string `json:"clientId"`
	ResponseType string `json:"responseType"`
	RedirectURI  string `json:"redirectUri"`
	Scope        string `json:"scope"`
	State        string `json:"state"`
}

// Input carries everything the callback pass needs, injected explicitly so
// the pass is a function of (query, origin) and testable without a server.
type Input struct {
	ApplicationName string
	ProviderName    string
	Method          string

	Code             string
	State            string
	RedirectURIParam string // redirect_uri query param from the original caller

	Origin       string // origin serving the /callback route
	ServerOrigin string // identity server's canonical origin

	Captured CapturedParams
}

// Outcome is the single navigation the callback produces on success.
type Outcome struct {
	Mode Mode
	// RedirectURL is "/" in login mode, or the relying party's captured
	// redirect URI with code and state appended in code mode.
	RedirectURL string
	// UserID is the backend's owner/name reference, set in login mode so
	// the caller can finalize the local session.
	UserID string
}

// State of the callback pass.
type State int

const (
	StateIdle State = iota
	StateExchanging
	StateDone
	StateFailed
)

var (
	// ErrAlreadyStarted is returned when Start is called more than once.
	// The pass is one-shot; idempotency is not guaranteed upstream.
	ErrAlreadyStarted = errors.New("callback already started")
	// ErrStateMismatch is returned when the incoming state differs from
	// the captured one.
	ErrStateMismatch = errors.New("state does not match the captured value")
)

// ExchangeError is an upstream status=error answer. Recovered locally: the
// message is surfaced to the user and nothing is navigated or written.
type ExchangeError struct {
	Msg string
}

func (e *ExchangeError) Error() string {
	return e.Msg
}

// Callback runs the one-shot exchange of an authorization response for a
// login result. The zero value is not usable; construct with NewCallback
// and drive it with a single Start call from the page lifecycle.
type Callback struct {
	exchanger Exchanger

	mu      sync.Mutex
	state   State
	outcome *Outcome
	err     error
}

// NewCallback returns an idle callback pass bound to an exchanger.
func NewCallback(exchanger Exchanger) *Callback {
	return &Callback{exchanger: exchanger, state: StateIdle}
}

// State returns the current state of the pass.
func (c *Callback) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Start runs the single callback pass: resolve the response mode, submit
// the exchange, and compute the navigation outcome. Sequential, no retry.
// If ctx is canceled while the exchange is in flight the resolution is
// dropped: no transition to Done or Failed happens and no outcome is
// returned.
func (c *Callback) Start(ctx context.Context, in Input) (*Outcome, error) {
	c.mu.Lock()
	if c.state != StateIdle {
		c.mu.Unlock()
		return nil, ErrAlreadyStarted
	}
	c.state = StateExchanging
	c.mu.Unlock()

	// Reproduce exactly the redirect URI registered with the external
	// provider when the flow was initiated; a mismatch fails upstream.
	redirectURI := fmt.Sprintf("%s/callback/%s/%s/%s", in.Origin, in.ApplicationName, in.ProviderName, in.Method)

	mode, err := ResolveMode(in.ServerOrigin, in.RedirectURIParam)
	if err != nil {
		return nil, c.fail(err)
	}

	if in.Captured.State != "" && in.State != in.Captured.State {
		return nil, c.fail(fmt.Errorf("%w: got %q", ErrStateMismatch, in.State))
	}

	req := domain.LoginRequest{
		Type:        string(mode),
		Application: in.ApplicationName,
		Provider:    in.ProviderName,
		Method:      in.Method,
		Code:        in.Code,
		State:       in.State,
		RedirectURI: redirectURI,
	}

	res, err := c.exchanger.Login(ctx, req, in.Captured)
	if ctx.Err() != nil {
		// Canceled mid-flight: drop the resolution without applying it.
		return nil, ctx.Err()
	}
	if err != nil {
		return nil, c.fail(err)
	}
	if res.Status != domain.StatusOK {
		metrics.CallbackTotal.WithLabelValues(string(mode), "error").Inc()
		return nil, c.fail(&ExchangeError{Msg: res.Msg})
	}

	out := &Outcome{Mode: mode}
	switch mode {
	case ModeLogin:
		out.RedirectURL = "/"
		out.UserID = res.Data
	case ModeCode:
		target, err := appendCodeAndState(in.Captured.RedirectURI, res.Data, in.Captured.State)
		if err != nil {
			return nil, c.fail(err)
		}
		out.RedirectURL = target
	}
	metrics.CallbackTotal.WithLabelValues(string(mode), "ok").Inc()

	c.mu.Lock()
	c.state = StateDone
	c.outcome = out
	c.mu.Unlock()
	return out, nil
}

func (c *Callback) fail(err error) error {
	c.mu.Lock()
	c.state = StateFailed
	c.err = err
	c.mu.Unlock()
	return err
}

// appendCodeAndState builds <redirectURI>?code=<code>&state=<state>,
// preserving any query the relying party already put on its URI.
func appendCodeAndState(redirectURI, code, state string) (string, error) {
	u, err := url.Parse(redirectURI)
	if err != nil {
		return "", fmt.Errorf("%w: %q: %v", ErrMalformedRedirectURI, redirectURI, err)
	}
	q := u.Query()
	q.Set("code", code)
	q.Set("state", state)
	u.RawQuery = q.Encode()
	return u.String(), nil
}
