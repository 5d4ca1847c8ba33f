package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	authcore "github.com/dropDatabas3/frontdoor/internal/auth"
	"github.com/dropDatabas3/frontdoor/internal/security/flowseal"
	"github.com/dropDatabas3/frontdoor/internal/session"
)

// CallbackService runs the one-shot callback exchange and decides where
// the browser goes next.
type CallbackService interface {
	Callback(ctx context.Context, req CallbackRequest) (*CallbackResult, error)
}

// CallbackRequest carries the path and query parameters of the callback
// route plus the sealed flow cookie value.
type CallbackRequest struct {
	ApplicationName string
	ProviderName    string
	Method          string

	Code             string
	State            string
	RedirectURIParam string

	Origin    string
	FlowToken string
}

// CallbackResult is the navigation the controller performs. Session is
// non-nil in login mode: the controller must set the session cookie before
// redirecting.
type CallbackResult struct {
	RedirectURL string
	Session     *session.Session
}

// Errors for the callback service.
var (
	ErrCallbackMissingCode  = errors.New("missing code")
	ErrCallbackMissingState = errors.New("missing state")
	ErrCallbackMissingFlow  = errors.New("missing or expired flow cookie")
	ErrCallbackBadUserID    = errors.New("malformed user id in exchange result")
)

type callbackService struct {
	exchanger    authcore.Exchanger
	sealer       *flowseal.Sealer
	sessions     session.Store
	serverOrigin string
}

// NewCallbackService wires the callback service. serverOrigin is the
// identity server's canonical origin used for response-mode resolution.
func NewCallbackService(exchanger authcore.Exchanger, sealer *flowseal.Sealer, sessions session.Store, serverOrigin string) CallbackService {
	return &callbackService{
		exchanger:    exchanger,
		sealer:       sealer,
		sessions:     sessions,
		serverOrigin: serverOrigin,
	}
}

func (s *callbackService) Callback(ctx context.Context, req CallbackRequest) (*CallbackResult, error) {
	if req.Code == "" {
		return nil, ErrCallbackMissingCode
	}
	if req.State == "" {
		return nil, ErrCallbackMissingState
	}
	if req.FlowToken == "" {
		return nil, ErrCallbackMissingFlow
	}

	var captured authcore.CapturedParams
	if err := s.sealer.Open(req.FlowToken, &captured); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCallbackMissingFlow, err)
	}

	cb := authcore.NewCallback(s.exchanger)
	out, err := cb.Start(ctx, authcore.Input{
		ApplicationName:  req.ApplicationName,
		ProviderName:     req.ProviderName,
		Method:           req.Method,
		Code:             req.Code,
		State:            req.State,
		RedirectURIParam: req.RedirectURIParam,
		Origin:           req.Origin,
		ServerOrigin:     s.serverOrigin,
		Captured:         captured,
	})
	if err != nil {
		return nil, err
	}

	res := &CallbackResult{RedirectURL: out.RedirectURL}
	if out.Mode == authcore.ModeLogin {
		owner, name, ok := splitUserID(out.UserID)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrCallbackBadUserID, out.UserID)
		}
		sess, err := s.sessions.Create(ctx, session.Principal{Owner: owner, Name: name})
		if err != nil {
			return nil, err
		}
		res.Session = sess
	}
	return res, nil
}

func splitUserID(id string) (owner, name string, ok bool) {
	owner, name, found := strings.Cut(id, "/")
	if !found || owner == "" || name == "" {
		return "", "", false
	}
	return owner, name, true
}
