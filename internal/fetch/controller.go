// Package fetch implements the remote-data controller shared by every view:
// it tracks {data, loading, error} for one API dependency and decides, each
// time the caller's query changes, whether a request should go out.
//
// The decision is an explicit state machine (Idle → Fetching → Success|Failed)
// evaluated by Sync. Results are applied in epoch order: a response belonging
// to a superseded Sync is discarded even if it arrives last, and the
// superseded request is cancelled.
package fetch

import (
	"context"
	"sync"

	"idservices-admin/internal/infrastructure/apiclient"
)

// Phase is the controller's position in the fetch state machine.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseFetching
	PhaseSuccess
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseFetching:
		return "fetching"
	case PhaseSuccess:
		return "success"
	case PhaseFailed:
		return "failed"
	default:
		return "idle"
	}
}

// Options are the policy axes of a controller.
type Options struct {
	// Prefetch=false defers the first request until the query changes once.
	Prefetch bool
	// FetchOnce limits the controller to a single request per lifetime.
	FetchOnce bool
	// RequireAuth skips evaluation while no access token is available.
	RequireAuth bool
	// ModalGating keeps a fetched result untouched while the backing modal is closed.
	ModalGating bool
}

// DefaultOptions is the configuration used by plain list and detail views.
func DefaultOptions() Options {
	return Options{Prefetch: true, RequireAuth: true}
}

// ModalOptions is the configuration for content shown inside a modal: no
// request until the modal is first opened, no refetch while it is closed.
func ModalOptions() Options {
	return Options{Prefetch: false, RequireAuth: true, ModalGating: true}
}

// Query is the caller's dependency set for one evaluation.
type Query struct {
	URL       string
	Method    string
	Body      any
	ModalOpen bool
}

// State is a snapshot of a controller.
type State[T any] struct {
	Data    T
	Loading bool
	Err     *apiclient.ErrorInfo
	Phase   Phase
	// Version increases on every change; use it to order snapshots delivered
	// to subscribers from different goroutines.
	Version uint64
}

// HasError reports whether the last settled request failed.
func (s State[T]) HasError() bool {
	return s.Err != nil
}

// Caller performs one classified API call (see apiclient.Client.Call).
type Caller interface {
	Call(ctx context.Context, r apiclient.Request, dst any) error
}

// TokenSource yields the current access token, if any.
type TokenSource interface {
	Token() (string, bool)
}

// Controller owns the fetch lifecycle of one remote dependency.
type Controller[T any] struct {
	caller   Caller
	tokens   TokenSource
	opts     Options
	newValue func() T

	mu          sync.Mutex
	state       State[T]
	epoch       uint64
	fetched     bool
	initialized bool
	cancel      context.CancelFunc
	closed      bool
	subs        map[int]func(State[T])
	nextSub     int
}

func newController[T any](caller Caller, tokens TokenSource, opts Options, newValue func() T) *Controller[T] {
	return &Controller[T]{
		caller:   caller,
		tokens:   tokens,
		opts:     opts,
		newValue: newValue,
		state: State[T]{
			Data:    newValue(),
			Loading: true,
			Phase:   PhaseIdle,
		},
		subs: make(map[int]func(State[T])),
	}
}

// Options returns the controller's configuration.
func (c *Controller[T]) Options() Options {
	return c.opts
}

// State returns the current snapshot.
func (c *Controller[T]) State() State[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Fetched reports whether a request has ever been started.
func (c *Controller[T]) Fetched() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fetched
}

// Subscribe registers fn for state changes and returns its cancel func.
// fn runs on the goroutine that produced the change and must not block.
func (c *Controller[T]) Subscribe(fn func(State[T])) func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.subs, id)
	}
}

// Sync evaluates q against the gating rules, in order:
//
//  1. RequireAuth and no token: nothing happens, state is left as is.
//  2. Already fetched, ModalGating and the modal is closed: nothing happens.
//  3. Prefetch disabled and first evaluation: marks initialized only.
//  4. FetchOnce and already fetched: nothing happens.
//
// Otherwise a request starts in the background under a new epoch and any
// in-flight request is cancelled. The returned Job settles when that request
// does; Sync returns nil when no request was started.
func (c *Controller[T]) Sync(ctx context.Context, q Query) *Job {
	c.mu.Lock()

	if c.closed {
		c.mu.Unlock()
		return nil
	}

	token, hasToken := "", false
	if c.tokens != nil {
		token, hasToken = c.tokens.Token()
	}
	if c.opts.RequireAuth && !hasToken {
		c.mu.Unlock()
		return nil
	}

	if c.fetched && c.opts.ModalGating && !q.ModalOpen {
		c.mu.Unlock()
		return nil
	}

	if !c.opts.Prefetch && !c.initialized {
		c.initialized = true
		c.mu.Unlock()
		return nil
	}

	if c.opts.FetchOnce && c.fetched {
		c.mu.Unlock()
		return nil
	}

	c.fetched = true
	c.epoch++
	epoch := c.epoch

	if c.cancel != nil {
		c.cancel()
	}
	reqCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel

	c.state.Loading = true
	c.state.Err = nil
	c.state.Phase = PhaseFetching
	c.state.Version++
	snap, subs := c.snapshotLocked()
	c.mu.Unlock()

	notify(subs, snap)

	job := newJob(epoch)
	req := apiclient.Request{URL: q.URL, Method: q.Method, Body: q.Body, Token: token}
	go c.run(reqCtx, cancel, req, job)
	return job
}

func (c *Controller[T]) run(ctx context.Context, cancel context.CancelFunc, req apiclient.Request, job *Job) {
	defer close(job.done)
	defer cancel()

	data := c.newValue()
	err := c.caller.Call(ctx, req, &data)
	job.applied = c.settle(job.epoch, data, err)
}

// settle applies a finished request if it still belongs to the current epoch.
func (c *Controller[T]) settle(epoch uint64, data T, err error) bool {
	c.mu.Lock()
	if c.closed || epoch != c.epoch {
		c.mu.Unlock()
		return false
	}

	if err != nil {
		c.state.Err = apiclient.AsErrorInfo(err)
		c.state.Phase = PhaseFailed
	} else {
		c.state.Data = data
		c.state.Err = nil
		c.state.Phase = PhaseSuccess
	}
	c.state.Loading = false
	c.state.Version++
	c.cancel = nil
	snap, subs := c.snapshotLocked()
	c.mu.Unlock()

	notify(subs, snap)
	return true
}

// Close cancels any in-flight request and drops subscribers. Results that
// arrive afterwards are discarded.
func (c *Controller[T]) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.subs = make(map[int]func(State[T]))
}

func (c *Controller[T]) snapshotLocked() (State[T], []func(State[T])) {
	subs := make([]func(State[T]), 0, len(c.subs))
	for _, fn := range c.subs {
		subs = append(subs, fn)
	}
	return c.state, subs
}

func notify[T any](subs []func(State[T]), s State[T]) {
	for _, fn := range subs {
		fn(s)
	}
}
