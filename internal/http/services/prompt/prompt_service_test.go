package prompt

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/frontdoor/internal/domain"
	"github.com/dropDatabas3/frontdoor/internal/session"
)

type fakeStore struct {
	app  *domain.Application
	user *domain.User

	mu      sync.Mutex
	updates []domain.User
}

func (f *fakeStore) GetApplication(ctx context.Context, owner, name string) (*domain.Application, error) {
	return f.app, nil
}

func (f *fakeStore) GetUser(ctx context.Context, owner, name string) (*domain.User, error) {
	u := *f.user
	return &u, nil
}

func (f *fakeStore) UpdateUser(ctx context.Context, user *domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates = append(f.updates, *user)
	return nil
}

func (f *fakeStore) updateCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.updates)
}

func promptedApp() *domain.Application {
	return &domain.Application{
		Owner: "admin",
		Name:  "app-test",
		SignupItems: []domain.SignupItem{
			{Name: "Affiliation", Prompted: true},
		},
	}
}

func testSession() *session.Session {
	return &session.Session{ID: "sess-1", Principal: session.Principal{Owner: "built-in", Name: "alice"}}
}

func TestPage_NoPromptRequirementsIsUnexpected(t *testing.T) {
	store := &fakeStore{
		app:  &domain.Application{Owner: "admin", Name: "app-plain"},
		user: &domain.User{Owner: "built-in", Name: "alice"},
	}
	svc := NewService(store, "http://localhost:8000")

	_, err := svc.Page(context.Background(), testSession(), "app-plain")
	require.ErrorIs(t, err, ErrUnexpectedAccess)
}

func TestPage_ReportsUnanswered(t *testing.T) {
	store := &fakeStore{app: promptedApp(), user: &domain.User{Owner: "built-in", Name: "alice"}}
	svc := NewService(store, "http://localhost:8000")

	data, err := svc.Page(context.Background(), testSession(), "app-test")
	require.NoError(t, err)
	require.False(t, data.Complete)
	require.Equal(t, []string{"Affiliation"}, data.Unanswered)
}

func TestUpdateFieldBeforePage(t *testing.T) {
	svc := NewService(&fakeStore{}, "http://localhost:8000")
	err := svc.UpdateField(context.Background(), testSession(), "app-test", "affiliation", "Acme")
	require.ErrorIs(t, err, ErrNoInstance)
}

func TestFieldEditThenSubmit(t *testing.T) {
	store := &fakeStore{app: promptedApp(), user: &domain.User{Owner: "built-in", Name: "alice"}}
	svc := NewService(store, "http://localhost:8000")
	ctx := context.Background()
	sess := testSession()

	_, err := svc.Page(ctx, sess, "app-test")
	require.NoError(t, err)

	require.NoError(t, svc.UpdateField(ctx, sess, "app-test", "affiliation", "Acme"))

	// The edit is visible on the page immediately, before any persist lands.
	data, err := svc.Page(ctx, sess, "app-test")
	require.NoError(t, err)
	require.True(t, data.Complete)
	require.Empty(t, data.Unanswered)
	require.Equal(t, "Acme", data.User.Affiliation)

	target, err := svc.Submit(ctx, sess, "app-test")
	require.NoError(t, err)
	require.Equal(t, "http://localhost:8000/login/app-test", target)

	// Submit flushed behind the edit: both writes reached the store, the
	// last one carrying the full edited record.
	require.Equal(t, 2, store.updateCount())
	require.Equal(t, "Acme", store.updates[len(store.updates)-1].Affiliation)

	// Submit ends the page instance.
	err = svc.UpdateField(ctx, sess, "app-test", "affiliation", "Globex")
	require.ErrorIs(t, err, ErrNoInstance)
}

func TestSubmit_RejectedWhileIncomplete(t *testing.T) {
	store := &fakeStore{app: promptedApp(), user: &domain.User{Owner: "built-in", Name: "alice"}}
	svc := NewService(store, "http://localhost:8000")
	ctx := context.Background()
	sess := testSession()

	data, err := svc.Page(ctx, sess, "app-test")
	require.NoError(t, err)
	require.False(t, data.Complete)

	// The gate binds on the server, not just on the page's submit button.
	_, err = svc.Submit(ctx, sess, "app-test")
	require.ErrorIs(t, err, ErrIncomplete)
	require.Zero(t, store.updateCount(), "rejected submit must not persist")

	// Answering the requirement unblocks the same instance.
	require.NoError(t, svc.UpdateField(ctx, sess, "app-test", "affiliation", "Acme"))
	target, err := svc.Submit(ctx, sess, "app-test")
	require.NoError(t, err)
	require.Equal(t, "http://localhost:8000/login/app-test", target)
}

func TestSubmit_UsesSigninURLWhenSet(t *testing.T) {
	app := promptedApp()
	app.SigninURL = "https://oa.example.com/signin"
	store := &fakeStore{app: app, user: &domain.User{Owner: "built-in", Name: "alice", Affiliation: "Acme"}}
	svc := NewService(store, "http://localhost:8000")
	ctx := context.Background()
	sess := testSession()

	_, err := svc.Page(ctx, sess, "app-test")
	require.NoError(t, err)

	target, err := svc.Submit(ctx, sess, "app-test")
	require.NoError(t, err)
	require.Equal(t, "https://oa.example.com/signin", target)
}

func TestDrop_EndsAllInstancesOfSession(t *testing.T) {
	store := &fakeStore{app: promptedApp(), user: &domain.User{Owner: "built-in", Name: "alice"}}
	svc := NewService(store, "http://localhost:8000")
	ctx := context.Background()
	sess := testSession()

	_, err := svc.Page(ctx, sess, "app-test")
	require.NoError(t, err)

	svc.Drop(sess.ID)

	err = svc.UpdateField(ctx, sess, "app-test", "affiliation", "Acme")
	require.ErrorIs(t, err, ErrNoInstance)
}

func TestPage_ReusesInstanceAcrossCalls(t *testing.T) {
	store := &fakeStore{app: promptedApp(), user: &domain.User{Owner: "built-in", Name: "alice"}}
	svc := NewService(store, "http://localhost:8000")
	ctx := context.Background()
	sess := testSession()

	_, err := svc.Page(ctx, sess, "app-test")
	require.NoError(t, err)
	require.NoError(t, svc.UpdateField(ctx, sess, "app-test", "affiliation", "Acme"))

	// Second Page load must see the in-flight edit, not a fresh fetch.
	data, err := svc.Page(ctx, sess, "app-test")
	require.NoError(t, err)
	require.Equal(t, "Acme", data.User.Affiliation)

	// Give the fire-and-forget persist a moment so the test leaves no
	// goroutine mid-write.
	deadline := time.Now().Add(time.Second)
	for store.updateCount() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	require.Equal(t, 1, store.updateCount())
	svc.Drop(sess.ID)
}
