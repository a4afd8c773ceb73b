package streaming

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/joeycumines/go-catrate"
	"github.com/joeycumines/go-uilayer"
	"github.com/joeycumines/logiface"
	"golang.org/x/sync/semaphore"
	"golang.org/x/sync/singleflight"
)

// ErrClosed is returned by [Manager.ResolveNow] after [Manager.Close].
var ErrClosed = errors.New(`streaming: manager closed`)

type (
	// Resolver resolves a class path. Implementations must be safe for
	// concurrent use, and should return promptly once ctx is done. A nil
	// class, with a nil error, indicates the path exists but is not a usable
	// widget class.
	Resolver interface {
		Resolve(ctx context.Context, path string) (uilayer.WidgetClass, error)
	}

	// ResolverFunc implements [Resolver].
	ResolverFunc func(ctx context.Context, path string) (uilayer.WidgetClass, error)

	// Manager implements [uilayer.Streamer] and [uilayer.SyncResolver].
	// Each request is resolved on its own goroutine, and its callbacks are
	// submitted to the loop. Resolve failures are logged, and delivered as
	// a nil class.
	//
	// RequestResolve and ResolveNow are safe for concurrent use. The
	// returned handles follow [uilayer.AsyncHandle] rules.
	Manager struct {
		loop     uilayer.Loop
		resolver Resolver
		logger   *logiface.Logger[logiface.Event]
		sem      *semaphore.Weighted
		limiter  *catrate.Limiter
		ctx      context.Context
		stop     context.CancelFunc
		group    singleflight.Group
		mu       sync.Mutex
		wg       sync.WaitGroup
		closed   bool
		pending  atomic.Int64
		bypass   bool
	}

	handle struct {
		m          *Manager
		ctx        context.Context
		cancel     context.CancelFunc
		onResolved func(class uilayer.WidgetClass)
		onCanceled func()
		ref        uilayer.SoftClassRef
		priority   uilayer.Priority
	}
)

var (
	_ uilayer.Streamer     = (*Manager)(nil)
	_ uilayer.SyncResolver = (*Manager)(nil)
	_ uilayer.AsyncHandle  = (*handle)(nil)
)

// Resolve implements [Resolver].
func (x ResolverFunc) Resolve(ctx context.Context, path string) (uilayer.WidgetClass, error) {
	return x(ctx, path)
}

// New constructs a manager that resolves using resolver, delivering results
// on loop.
func New(loop uilayer.Loop, resolver Resolver, opts ...Option) (*Manager, error) {
	if loop == nil {
		return nil, errors.New(`streaming: loop must not be nil`)
	}
	if resolver == nil {
		return nil, errors.New(`streaming: resolver must not be nil`)
	}
	cfg, err := resolveOptions(opts)
	if err != nil {
		return nil, err
	}
	var limiter *catrate.Limiter
	if len(cfg.rates) != 0 {
		if limiter, err = newLimiter(cfg.rates); err != nil {
			return nil, err
		}
	}
	ctx, stop := context.WithCancel(context.Background())
	return &Manager{
		loop:     loop,
		resolver: resolver,
		logger:   cfg.logger,
		sem:      semaphore.NewWeighted(cfg.maxConcurrent),
		limiter:  limiter,
		ctx:      ctx,
		stop:     stop,
		bypass:   !cfg.noBypass,
	}, nil
}

func newLimiter(rates map[time.Duration]int) (limiter *catrate.Limiter, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf(`streaming: %v`, r)
		}
	}()
	return catrate.NewLimiter(rates), nil
}

// RequestResolve implements [uilayer.Streamer].
func (x *Manager) RequestResolve(ref uilayer.SoftClassRef, priority uilayer.Priority) uilayer.AsyncHandle {
	ctx, cancel := context.WithCancel(x.ctx)
	h := &handle{
		m:        x,
		ctx:      ctx,
		cancel:   cancel,
		ref:      ref,
		priority: priority,
	}
	x.mu.Lock()
	defer x.mu.Unlock()
	x.pending.Add(1)
	if x.closed {
		cancel()
		h.submit(h.canceled)
		return h
	}
	x.wg.Add(1)
	go h.run()
	return h
}

// ResolveNow implements [uilayer.SyncResolver], blocking until ref is
// resolved, bypassing the concurrency bound and rate limits.
func (x *Manager) ResolveNow(ref uilayer.SoftClassRef) (uilayer.WidgetClass, error) {
	if x.ctx.Err() != nil {
		return nil, ErrClosed
	}
	v, err, _ := x.group.Do(ref.Path, x.resolveFunc(ref.Path))
	if err != nil {
		return nil, err
	}
	class, _ := v.(uilayer.WidgetClass)
	return class, nil
}

// Pending returns the number of requests that have not yet delivered.
func (x *Manager) Pending() int {
	return int(x.pending.Load())
}

// Close cancels every outstanding request, and waits for their resolves to
// stop. Each outstanding request still delivers its canceled callback, if
// the loop accepts it. Requests made after Close deliver only their
// canceled callback. Safe to call repeatedly.
func (x *Manager) Close() error {
	x.mu.Lock()
	x.closed = true
	x.mu.Unlock()
	x.stop()
	x.wg.Wait()
	return nil
}

func (x *Manager) resolveFunc(path string) func() (any, error) {
	return func() (any, error) {
		class, err := x.resolver.Resolve(x.ctx, path)
		if err != nil {
			return nil, err
		}
		return class, nil
	}
}

// resolve waits for any rate limit and concurrency slot, then resolves,
// sharing the work with any concurrent request for the same path.
func (x *Manager) resolve(ctx context.Context, path string, priority uilayer.Priority) (uilayer.WidgetClass, error) {
	if x.limiter != nil {
		for {
			next, ok := x.limiter.Allow(path)
			if ok {
				break
			}
			x.logger.Debug().
				Limit().
				Str(`class`, path).
				Dur(`delay`, time.Until(next)).
				Log(`streaming: resolve rate limited`)
			timer := time.NewTimer(time.Until(next))
			select {
			case <-ctx.Done():
				timer.Stop()
				return nil, ctx.Err()
			case <-timer.C:
			}
		}
	}

	if !(x.bypass && priority == uilayer.PriorityHigh) {
		if err := x.sem.Acquire(ctx, 1); err != nil {
			return nil, err
		}
		defer x.sem.Release(1)
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-x.group.DoChan(path, x.resolveFunc(path)):
		if res.Err != nil {
			return nil, res.Err
		}
		class, _ := res.Val.(uilayer.WidgetClass)
		return class, nil
	}
}

func (x *handle) BindOnResolved(fn func(class uilayer.WidgetClass)) {
	x.onResolved = fn
}

func (x *handle) BindOnCanceled(fn func()) {
	x.onCanceled = fn
}

func (x *handle) Cancel() {
	x.cancel()
}

func (x *handle) run() {
	defer x.m.wg.Done()
	defer x.cancel()

	class, err := x.m.resolve(x.ctx, x.ref.Path, x.priority)

	var deliver func()
	switch {
	case x.ctx.Err() != nil:
		deliver = x.canceled
	default:
		if err != nil {
			x.m.logger.Warning().
				Str(`class`, x.ref.Path).
				Err(err).
				Log(`streaming: resolve failed`)
			class = nil
		}
		deliver = func() {
			if x.onResolved != nil {
				x.onResolved(class)
			}
		}
	}

	x.submit(deliver)
}

func (x *handle) canceled() {
	if x.onCanceled != nil {
		x.onCanceled()
	}
}

// submit delivers on the loop, settling the pending count either way.
func (x *handle) submit(deliver func()) {
	if err := x.m.loop.Submit(func() {
		x.m.pending.Add(-1)
		deliver()
	}); err != nil {
		x.m.pending.Add(-1)
		x.m.logger.Warning().
			Str(`class`, x.ref.Path).
			Err(err).
			Log(`streaming: loop rejected delivery`)
	}
}
