package streaming_test

import (
	"context"
	"sync"
	"testing"
	"time"

	eventloop "github.com/joeycumines/go-eventloop"
	"github.com/joeycumines/go-uilayer"
)

const waitTimeout = 5 * time.Second

// newTestLoop creates a new event loop, starts it, and registers cleanup.
func newTestLoop(t testing.TB) *eventloop.Loop {
	t.Helper()
	loop, err := eventloop.New()
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = loop.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return loop
}

// onLoop runs fn on the loop, and waits for it.
func onLoop(t testing.TB, loop uilayer.Loop, fn func()) {
	t.Helper()
	done := make(chan struct{})
	if err := loop.Submit(func() {
		defer close(done)
		fn()
	}); err != nil {
		t.Fatal(err)
	}
	select {
	case <-done:
	case <-time.After(waitTimeout):
		t.Fatal(`timed out waiting for loop`)
	}
}

// outcome captures the terminal callback of a load.
type outcome struct {
	class    uilayer.WidgetClass
	done     chan struct{}
	canceled bool
}

func newOutcome() *outcome {
	return &outcome{done: make(chan struct{})}
}

func (o *outcome) bind(h *uilayer.LoadHandle) {
	h.BindCompletion(func(class uilayer.WidgetClass) {
		o.class = class
		close(o.done)
	})
	h.BindCancellation(func() {
		o.canceled = true
		close(o.done)
	})
}

func (o *outcome) wait(t testing.TB) {
	t.Helper()
	select {
	case <-o.done:
	case <-time.After(waitTimeout):
		t.Fatal(`timed out waiting for load`)
	}
}

// gatedResolver blocks every resolve until released, counting calls.
type gatedResolver struct {
	gate    chan struct{}
	started chan string
	mu      sync.Mutex
	calls   map[string]int
}

func newGatedResolver() *gatedResolver {
	return &gatedResolver{
		gate:    make(chan struct{}),
		started: make(chan string, 16),
		calls:   make(map[string]int),
	}
}

func (r *gatedResolver) Resolve(ctx context.Context, path string) (uilayer.WidgetClass, error) {
	r.mu.Lock()
	r.calls[path]++
	r.mu.Unlock()
	r.started <- path
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-r.gate:
		return className(path), nil
	}
}

func (r *gatedResolver) count(path string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls[path]
}

func (r *gatedResolver) waitStarted(t testing.TB) string {
	t.Helper()
	select {
	case path := <-r.started:
		return path
	case <-time.After(waitTimeout):
		t.Fatal(`timed out waiting for resolve to start`)
		return ``
	}
}

type className string

func (c className) Name() string { return string(c) }
