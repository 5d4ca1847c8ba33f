package prompt

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/dropDatabas3/frontdoor/internal/domain"
	"github.com/dropDatabas3/frontdoor/internal/metrics"
	"github.com/dropDatabas3/frontdoor/internal/observability/logger"
)

// Persister writes the full user record to the external store.
type Persister interface {
	UpdateUser(ctx context.Context, user *domain.User) error
}

var (
	// ErrUnknownField is returned for an update key with no user field.
	ErrUnknownField = errors.New("unknown user field")
	// ErrClosed is returned once the propagator has been closed.
	ErrClosed = errors.New("propagator closed")
)

const (
	queueDepth     = 64
	persistTimeout = 10 * time.Second
)

type job struct {
	snapshot *domain.User
	reply    chan error // nil for fire-and-forget edits
}

// Propagator applies incremental user-field edits. Each edit lands on the
// in-memory record synchronously, then the full record is persisted through
// a single serializing worker, so rapid edits cannot race and the last
// write issued is the last write persisted. Failures on intermediate edits
// are absorbed; only the final Submit surfaces them.
type Propagator struct {
	persister Persister
	ctx       context.Context
	log       *zap.Logger

	mu     sync.Mutex
	user   *domain.User
	closed bool

	jobs chan job
	done chan struct{}
}

// NewPropagator starts a propagator for one page instance. ctx bounds the
// instance's lifetime: on cancellation, queued and in-flight persists are
// dropped rather than applied.
func NewPropagator(ctx context.Context, persister Persister, user *domain.User) *Propagator {
	p := &Propagator{
		persister: persister,
		ctx:       ctx,
		log:       logger.Named("prompt.propagator"),
		user:      user.Clone(),
		jobs:      make(chan job, queueDepth),
		done:      make(chan struct{}),
	}
	go p.run()
	return p
}

func (p *Propagator) run() {
	defer close(p.done)
	for {
		select {
		case <-p.ctx.Done():
			return
		case j, ok := <-p.jobs:
			if !ok {
				return
			}
			err := p.persist(j.snapshot)
			if j.reply != nil {
				j.reply <- err
				continue
			}
			if err != nil {
				// Absorbed: transient failures on intermediate edits do
				// not block or warn. Counted so they are not invisible.
				metrics.PersistFailures.Inc()
				p.log.Debug("intermediate persist failed",
					logger.UserID(j.snapshot.Owner+"/"+j.snapshot.Name),
					logger.Err(err),
				)
			}
		}
	}
}

func (p *Propagator) persist(snapshot *domain.User) error {
	ctx, cancel := context.WithTimeout(p.ctx, persistTimeout)
	defer cancel()
	return p.persister.UpdateUser(ctx, snapshot)
}

// Update applies value to the user field synchronously and enqueues a
// full-record persist. The caller never waits on the persistence result.
func (p *Propagator) Update(key, value string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrClosed
	}
	if !p.user.SetField(key, value) {
		return ErrUnknownField
	}
	snap := p.user.Clone()

	// Enqueue under the lock: Close closes the channel under the same
	// lock, so a send can never hit a closed channel.
	select {
	case p.jobs <- job{snapshot: snap}:
		return nil
	case <-p.ctx.Done():
		return p.ctx.Err()
	}
}

// User returns a copy of the current in-memory record. This is the ground
// truth the completion gate reads after every edit.
func (p *Propagator) User() *domain.User {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.user.Clone()
}

// Submit persists the current record synchronously, behind any edits still
// queued, and reports the result. On failure the caller surfaces the error
// and the user stays on the page to retry.
func (p *Propagator) Submit(ctx context.Context) error {
	reply := make(chan error, 1)

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return ErrClosed
	}
	snap := p.user.Clone()
	select {
	case p.jobs <- job{snapshot: snap, reply: reply}:
		p.mu.Unlock()
	case <-ctx.Done():
		p.mu.Unlock()
		return ctx.Err()
	case <-p.ctx.Done():
		p.mu.Unlock()
		return p.ctx.Err()
	}

	select {
	case err := <-reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops accepting edits and lets the worker drain what was already
// queued. Safe to call more than once.
func (p *Propagator) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.jobs)
	p.mu.Unlock()
	<-p.done
}
