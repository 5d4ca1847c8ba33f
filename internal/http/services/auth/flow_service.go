// Package auth holds the sign-in flow services: flow start (capture the
// authorize parameters) and the callback exchange.
package auth

import (
	"context"
	"errors"

	authcore "github.com/dropDatabas3/frontdoor/internal/auth"
	"github.com/dropDatabas3/frontdoor/internal/backend"
	"github.com/dropDatabas3/frontdoor/internal/domain"
	"github.com/dropDatabas3/frontdoor/internal/security/flowseal"
)

// FlowService starts a login flow: validates the authorize parameters and
// seals them into an opaque token for the flow cookie.
type FlowService interface {
	Start(ctx context.Context, req StartRequest) (*StartResult, error)
}

// StartRequest carries the authorize query parameters.
type StartRequest struct {
	ClientID     string
	ResponseType string
	RedirectURI  string
	Scope        string
	State        string
}

// StartResult is the validated application plus the sealed flow token the
// controller puts in the flow cookie.
type StartResult struct {
	Application *domain.Application
	FlowToken   string
}

// Errors for the flow service.
var (
	ErrStartMissingClientID = errors.New("missing client_id")
	ErrStartMissingRedirect = errors.New("missing redirect_uri")
)

type flowService struct {
	backend *backend.Client
	sealer  *flowseal.Sealer
}

// NewFlowService wires the flow service.
func NewFlowService(b *backend.Client, sealer *flowseal.Sealer) FlowService {
	return &flowService{backend: b, sealer: sealer}
}

func (s *flowService) Start(ctx context.Context, req StartRequest) (*StartResult, error) {
	if req.ClientID == "" {
		return nil, ErrStartMissingClientID
	}
	if req.RedirectURI == "" {
		return nil, ErrStartMissingRedirect
	}

	captured := authcore.CapturedParams{
		ClientID:     req.ClientID,
		ResponseType: req.ResponseType,
		RedirectURI:  req.RedirectURI,
		Scope:        req.Scope,
		State:        req.State,
	}

	app, err := s.backend.GetAppLogin(ctx, captured)
	if err != nil {
		return nil, err
	}

	token, err := s.sealer.Seal(captured)
	if err != nil {
		return nil, err
	}
	return &StartResult{Application: app, FlowToken: token}, nil
}
