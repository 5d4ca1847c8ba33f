// Package prompt is the service behind the prompt page API: it owns one
// propagator per (session, application) page instance and answers gate
// queries from live state.
package prompt

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dropDatabas3/frontdoor/internal/domain"
	promptcore "github.com/dropDatabas3/frontdoor/internal/prompt"
	"github.com/dropDatabas3/frontdoor/internal/session"
)

// Store is the slice of the backend the prompt workflow needs.
type Store interface {
	GetApplication(ctx context.Context, owner, name string) (*domain.Application, error)
	GetUser(ctx context.Context, owner, name string) (*domain.User, error)
	UpdateUser(ctx context.Context, user *domain.User) error
}

// Service drives the prompt page for one signed-in user at a time.
type Service interface {
	// Page loads (or reuses) the page instance and reports its gate state.
	Page(ctx context.Context, sess *session.Session, appName string) (*PageData, error)
	// UpdateField applies one field edit, fire-and-forget persisted.
	UpdateField(ctx context.Context, sess *session.Session, appName, key, value string) error
	// Submit finalizes: persists synchronously and returns the login
	// entry URL to navigate to.
	Submit(ctx context.Context, sess *session.Session, appName string) (string, error)
	// Drop discards every page instance of a session (logout).
	Drop(sessionID string)
}

// PageData is the prompt page state, derived fresh on every call.
type PageData struct {
	Application *domain.Application `json:"application"`
	User        *domain.User        `json:"user"`
	Unanswered  []string            `json:"unanswered"`
	Complete    bool                `json:"complete"`
}

// Errors for the prompt service.
var (
	// ErrUnexpectedAccess: the application has no prompt requirements, so
	// landing on the prompt page is an invalid navigation, distinct from
	// "complete".
	ErrUnexpectedAccess = errors.New("you are unexpected to see this prompt page")
	// ErrNoInstance: field edit or submit without a prior Page load.
	ErrNoInstance = errors.New("prompt page not loaded")
	// ErrIncomplete: submit while required prompts are still unanswered.
	// The page disables its submit action on this condition; the server
	// enforces it regardless of what the client sends.
	ErrIncomplete = errors.New("required prompts are still unanswered")
)

// applicationOwner is the owner namespace applications live in.
const applicationOwner = "admin"

type instance struct {
	app    *domain.Application
	prop   *promptcore.Propagator
	cancel context.CancelFunc
}

type service struct {
	store        Store
	serverOrigin string

	mu        sync.Mutex
	instances map[string]*instance
}

// NewService wires the prompt service.
func NewService(store Store, serverOrigin string) Service {
	return &service{
		store:        store,
		serverOrigin: serverOrigin,
		instances:    make(map[string]*instance),
	}
}

func instanceKey(sessionID, appName string) string {
	return sessionID + "/" + appName
}

func (s *service) Page(ctx context.Context, sess *session.Session, appName string) (*PageData, error) {
	inst, err := s.getOrCreate(ctx, sess, appName)
	if err != nil {
		return nil, err
	}
	return s.pageData(inst), nil
}

func (s *service) UpdateField(ctx context.Context, sess *session.Session, appName, key, value string) error {
	inst, ok := s.lookup(sess.ID, appName)
	if !ok {
		return ErrNoInstance
	}
	return inst.prop.Update(key, value)
}

func (s *service) Submit(ctx context.Context, sess *session.Session, appName string) (string, error) {
	inst, ok := s.lookup(sess.ID, appName)
	if !ok {
		return "", ErrNoInstance
	}
	if !promptcore.IsComplete(inst.app, inst.prop.User()) {
		return "", ErrIncomplete
	}
	if err := inst.prop.Submit(ctx); err != nil {
		return "", err
	}

	target := s.loginEntryURL(inst.app)
	s.drop(instanceKey(sess.ID, appName))
	return target, nil
}

func (s *service) Drop(sessionID string) {
	s.mu.Lock()
	var keys []string
	for k := range s.instances {
		if len(k) > len(sessionID) && k[:len(sessionID)] == sessionID && k[len(sessionID)] == '/' {
			keys = append(keys, k)
		}
	}
	s.mu.Unlock()
	for _, k := range keys {
		s.drop(k)
	}
}

func (s *service) lookup(sessionID, appName string) (*instance, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	inst, ok := s.instances[instanceKey(sessionID, appName)]
	return inst, ok
}

func (s *service) getOrCreate(ctx context.Context, sess *session.Session, appName string) (*instance, error) {
	if inst, ok := s.lookup(sess.ID, appName); ok {
		return inst, nil
	}

	app, err := s.store.GetApplication(ctx, applicationOwner, appName)
	if err != nil {
		return nil, err
	}
	if !app.HasPromptPage() {
		return nil, ErrUnexpectedAccess
	}
	user, err := s.store.GetUser(ctx, sess.Principal.Owner, sess.Principal.Name)
	if err != nil {
		return nil, err
	}

	// The propagator outlives this request: its lifetime is the page
	// instance, ended by Submit or Drop.
	propCtx, cancel := context.WithCancel(context.Background())
	inst := &instance{
		app:    app,
		prop:   promptcore.NewPropagator(propCtx, s.store, user),
		cancel: cancel,
	}

	s.mu.Lock()
	key := instanceKey(sess.ID, appName)
	if existing, ok := s.instances[key]; ok {
		// Lost the race; keep the first instance.
		s.mu.Unlock()
		cancel()
		inst.prop.Close()
		return existing, nil
	}
	s.instances[key] = inst
	s.mu.Unlock()
	return inst, nil
}

func (s *service) drop(key string) {
	s.mu.Lock()
	inst, ok := s.instances[key]
	delete(s.instances, key)
	s.mu.Unlock()
	if !ok {
		return
	}
	inst.prop.Close()
	inst.cancel()
}

func (s *service) pageData(inst *instance) *PageData {
	user := inst.prop.User()
	var unanswered []string
	for _, r := range promptcore.UnansweredRequirements(inst.app, user) {
		unanswered = append(unanswered, r.Name)
	}
	return &PageData{
		Application: inst.app,
		User:        user,
		Unanswered:  unanswered,
		Complete:    promptcore.IsComplete(inst.app, user),
	}
}

func (s *service) loginEntryURL(app *domain.Application) string {
	if app.SigninURL != "" {
		return app.SigninURL
	}
	return fmt.Sprintf("%s/login/%s", s.serverOrigin, app.Name)
}
