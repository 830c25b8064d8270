// Package screen guards screen-owned state against responses that arrive
// after the screen was dismissed.
package screen

import (
	"context"
	"sync"

	pkgerrors "github.com/alkarmah/storefront/pkg/errors"
)

// Scope is the lifetime of one screen instance. Its context is cancelled on
// Dispose and every later Apply is rejected with STALE_RESPONSE.
type Scope struct {
	name   string
	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	disposed bool
	inflight sync.WaitGroup
}

// NewScope opens a live scope derived from parent.
func NewScope(parent context.Context, name string) *Scope {
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)
	return &Scope{name: name, ctx: ctx, cancel: cancel}
}

// Name returns the screen name.
func (s *Scope) Name() string {
	return s.name
}

// Context is cancelled when the scope is disposed.
func (s *Scope) Context() context.Context {
	return s.ctx
}

// Dispose ends the scope. It waits for an Apply already running to finish,
// so no state mutation is ever observed half-way. Safe to call twice.
func (s *Scope) Dispose() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.disposed {
		return
	}
	s.disposed = true
	s.cancel()
}

// Disposed reports whether the scope has ended.
func (s *Scope) Disposed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.disposed
}

// Apply runs fn as the scope's single writer, unless the scope is disposed.
func (s *Scope) Apply(fn func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.disposed {
		return stale(s.name)
	}
	return fn()
}

// Wait blocks until every fetch started with Go has been applied or dropped.
func (s *Scope) Wait() {
	s.inflight.Wait()
}

// Go runs fetch in the background on the scope's context and hands its
// result to apply only while the scope is alive. The returned channel
// yields the outcome once: the fetch error, apply's error, or STALE_RESPONSE.
func Go[T any](s *Scope, fetch func(ctx context.Context) (T, error), apply func(T) error) <-chan error {
	done := make(chan error, 1)
	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		result, err := fetch(s.ctx)
		if s.Disposed() {
			done <- stale(s.name)
			return
		}
		if err != nil {
			done <- err
			return
		}
		done <- s.Apply(func() error { return apply(result) })
	}()
	return done
}

func stale(name string) error {
	return pkgerrors.New(pkgerrors.CodeStaleResponse, "screen was closed before the response arrived").
		WithDetails(map[string]any{"screen": name})
}

type scopeKey struct{}

// WithScope attaches a scope to ctx.
func WithScope(ctx context.Context, s *Scope) context.Context {
	return context.WithValue(ctx, scopeKey{}, s)
}

// FromContext returns the scope attached to ctx, if any.
func FromContext(ctx context.Context) (*Scope, bool) {
	if ctx == nil {
		return nil, false
	}
	s, ok := ctx.Value(scopeKey{}).(*Scope)
	return s, ok && s != nil
}

// Apply runs fn through the scope attached to ctx. Without a scope fn runs
// directly.
func Apply(ctx context.Context, fn func() error) error {
	if s, ok := FromContext(ctx); ok {
		return s.Apply(fn)
	}
	return fn()
}
