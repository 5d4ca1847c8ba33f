package prompt

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/dropDatabas3/frontdoor/internal/domain"
)

type fakePersister struct {
	mu    sync.Mutex
	calls []*domain.User
	errs  []error // popped per call; nil once exhausted
}

func (f *fakePersister) UpdateUser(ctx context.Context, user *domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, user.Clone())
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		return err
	}
	return nil
}

func (f *fakePersister) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakePersister) call(i int) *domain.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[i]
}

func newTestPropagator(t *testing.T, p Persister) *Propagator {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	prop := NewPropagator(ctx, p, &domain.User{Owner: "built-in", Name: "alice"})
	t.Cleanup(prop.Close)
	return prop
}

func TestPropagator_UpdateAppliesSynchronously(t *testing.T) {
	fp := &fakePersister{}
	prop := newTestPropagator(t, fp)

	if err := prop.Update("affiliation", "Acme"); err != nil {
		t.Fatalf("update: %v", err)
	}
	// Visible to the gate before any persistence resolves.
	if got := prop.User().Affiliation; got != "Acme" {
		t.Fatalf("affiliation = %q, want Acme", got)
	}
}

func TestPropagator_IdempotentEditsPersistTwice(t *testing.T) {
	fp := &fakePersister{}
	prop := newTestPropagator(t, fp)

	if err := prop.Update("affiliation", "Acme"); err != nil {
		t.Fatalf("update: %v", err)
	}
	if err := prop.Update("affiliation", "Acme"); err != nil {
		t.Fatalf("update: %v", err)
	}
	// Submit flushes behind the queued edits, so after it returns both
	// fire-and-forget persists have run: two calls, never one merged.
	if err := prop.Submit(context.Background()); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if got := fp.count(); got != 3 {
		t.Fatalf("persist calls = %d, want 3 (two edits + submit)", got)
	}
	if got := prop.User().Affiliation; got != "Acme" {
		t.Fatalf("affiliation = %q, want Acme", got)
	}
}

func TestPropagator_FullRecordNotPartialPatch(t *testing.T) {
	fp := &fakePersister{}
	prop := newTestPropagator(t, fp)

	if err := prop.Update("affiliation", "Acme"); err != nil {
		t.Fatalf("update: %v", err)
	}
	if err := prop.Update("github", "alice-gh"); err != nil {
		t.Fatalf("update: %v", err)
	}
	if err := prop.Submit(context.Background()); err != nil {
		t.Fatalf("submit: %v", err)
	}

	// The second persist carries the whole record including the first
	// edit, not a patch.
	second := fp.call(1)
	if second.Affiliation != "Acme" || second.GitHub != "alice-gh" {
		t.Fatalf("second persist = %+v, want full record", second)
	}
}

func TestPropagator_IntermediateFailureAbsorbed(t *testing.T) {
	fp := &fakePersister{errs: []error{errors.New("backend down")}}
	prop := newTestPropagator(t, fp)

	// The failing edit neither blocks nor errors.
	if err := prop.Update("affiliation", "Acme"); err != nil {
		t.Fatalf("update must absorb persistence failure, got %v", err)
	}
	if err := prop.Submit(context.Background()); err != nil {
		t.Fatalf("submit after absorbed failure: %v", err)
	}
	if got := fp.count(); got != 2 {
		t.Fatalf("persist calls = %d, want 2", got)
	}
}

func TestPropagator_SubmitSurfacesFailure(t *testing.T) {
	fp := &fakePersister{errs: []error{errors.New("quota exceeded")}}
	prop := newTestPropagator(t, fp)

	err := prop.Submit(context.Background())
	if err == nil || err.Error() != "quota exceeded" {
		t.Fatalf("expected surfaced submit error, got %v", err)
	}
	// User stays editable for a retry.
	if err := prop.Update("affiliation", "Acme"); err != nil {
		t.Fatalf("update after failed submit: %v", err)
	}
	if err := prop.Submit(context.Background()); err != nil {
		t.Fatalf("retry submit: %v", err)
	}
}

func TestPropagator_UnknownFieldRejected(t *testing.T) {
	fp := &fakePersister{}
	prop := newTestPropagator(t, fp)

	if err := prop.Update("shoe_size", "42"); !errors.Is(err, ErrUnknownField) {
		t.Fatalf("expected ErrUnknownField, got %v", err)
	}
	if got := fp.count(); got != 0 {
		t.Fatalf("rejected edit must not persist, got %d calls", got)
	}
}

func TestPropagator_ClosedRejectsEdits(t *testing.T) {
	fp := &fakePersister{}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	prop := NewPropagator(ctx, fp, &domain.User{Owner: "built-in", Name: "alice"})

	prop.Close()
	prop.Close() // idempotent

	if err := prop.Update("affiliation", "Acme"); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
	if err := prop.Submit(context.Background()); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed from submit, got %v", err)
	}
}

func TestPropagator_ConcurrentUpdateAndClose(t *testing.T) {
	// Field edits racing a logout's Close on the same instance must end in
	// ErrClosed, never a panic on the queue channel.
	for i := 0; i < 500; i++ {
		fp := &fakePersister{}
		ctx, cancel := context.WithCancel(context.Background())
		prop := NewPropagator(ctx, fp, &domain.User{Owner: "built-in", Name: "alice"})

		var wg sync.WaitGroup
		for g := 0; g < 4; g++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for {
					if err := prop.Update("affiliation", "Acme"); errors.Is(err, ErrClosed) {
						return
					}
				}
			}()
		}
		prop.Close()
		wg.Wait()
		cancel()
	}
}

func TestPropagator_CloseDrainsQueue(t *testing.T) {
	fp := &fakePersister{}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	prop := NewPropagator(ctx, fp, &domain.User{Owner: "built-in", Name: "alice"})

	for i := 0; i < 5; i++ {
		if err := prop.Update("affiliation", "Acme"); err != nil {
			t.Fatalf("update %d: %v", i, err)
		}
	}
	prop.Close()

	deadline := time.Now().Add(2 * time.Second)
	for fp.count() < 5 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if got := fp.count(); got != 5 {
		t.Fatalf("persist calls after close = %d, want 5", got)
	}
}
