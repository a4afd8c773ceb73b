package termui_test

import (
	"context"
	"testing"
	"time"

	eventloop "github.com/joeycumines/go-eventloop"
	"github.com/joeycumines/go-uilayer"
	"github.com/joeycumines/go-uilayer/streaming"
	"github.com/joeycumines/go-uilayer/termui"
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

// newLayout builds a layout backed by a running loop, and an empty catalog.
func newLayout(t testing.TB, root uilayer.RootLayout, player uilayer.Player, opts ...uilayer.Option) *uilayer.Layout {
	t.Helper()
	loop := newTestLoop(t)
	streamer, err := streaming.New(loop, &streaming.Catalog{})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = streamer.Close() })
	layout, err := uilayer.NewLayout(root, player, append([]uilayer.Option{
		uilayer.WithLoop(loop),
		uilayer.WithToolkit(&termui.Toolkit{}),
		uilayer.WithStreamer(streamer),
	}, opts...)...)
	if err != nil {
		t.Fatal(err)
	}
	return layout
}
