package uilayer_test

import (
	"testing"

	"github.com/joeycumines/go-uilayer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type loadOutcome struct {
	completed []uilayer.WidgetClass
	canceled  int
}

func (o *loadOutcome) bind(h *uilayer.LoadHandle) {
	h.BindCompletion(func(class uilayer.WidgetClass) { o.completed = append(o.completed, class) })
	h.BindCancellation(func() { o.canceled++ })
}

func (o *loadOutcome) total() int {
	return len(o.completed) + o.canceled
}

func newLoader(h *harness) *uilayer.Loader {
	return &uilayer.Loader{Streamer: h.streamer, Loop: h.loop, Logger: h.logger}
}

func TestLoadHandle_Completes(t *testing.T) {
	h := newHarness(t)
	var out loadOutcome
	handle := newLoader(h).Request(uilayer.SoftClassRef{Path: `/ui/a`}, uilayer.PriorityHigh)
	out.bind(handle)

	require.Len(t, h.streamer.requests, 1)
	assert.Equal(t, uilayer.PriorityHigh, h.streamer.last().priority)
	assert.Equal(t, uilayer.LoadPending, handle.State())

	h.streamer.last().resolve(fakeClass(`A`))
	h.loop.drain()

	assert.Equal(t, uilayer.LoadCompleted, handle.State())
	assert.Equal(t, []uilayer.WidgetClass{fakeClass(`A`)}, out.completed)
	assert.Zero(t, out.canceled)
	assert.Equal(t, fakeClass(`A`), handle.Class())

	handle.Cancel()
	h.loop.drain()
	assert.Equal(t, uilayer.LoadCompleted, handle.State())
	assert.Zero(t, h.streamer.last().cancels)
	assert.Equal(t, 1, out.total())
}

func TestLoadHandle_CancelBeforeResolve(t *testing.T) {
	h := newHarness(t)
	var out loadOutcome
	handle := newLoader(h).Request(uilayer.SoftClassRef{Path: `/ui/a`}, uilayer.PriorityNormal)
	out.bind(handle)

	handle.Cancel()
	assert.Equal(t, uilayer.LoadCanceled, handle.State())
	assert.Zero(t, out.total(), `cancellation must be delivered asynchronously`)
	assert.Equal(t, 1, h.streamer.last().cancels)

	h.streamer.last().resolve(fakeClass(`A`))
	h.loop.drain()

	assert.Equal(t, 1, out.canceled)
	assert.Empty(t, out.completed)
	assert.Nil(t, handle.Class())

	handle.Cancel()
	h.loop.drain()
	assert.Equal(t, 1, h.streamer.last().cancels)
	assert.Equal(t, 1, out.total())
}

func TestLoadHandle_ResolvedNil(t *testing.T) {
	h := newHarness(t)
	var out loadOutcome
	handle := newLoader(h).Request(uilayer.SoftClassRef{Path: `/ui/missing`}, uilayer.PriorityNormal)
	out.bind(handle)

	h.streamer.last().resolve(nil)
	h.loop.drain()

	assert.Equal(t, uilayer.LoadCanceled, handle.State())
	assert.Equal(t, 1, out.canceled)
	assert.Empty(t, out.completed)
	assert.True(t, h.logged(`did not resolve to a widget class`))
}

func TestLoadHandle_StreamerCancels(t *testing.T) {
	h := newHarness(t)
	var out loadOutcome
	handle := newLoader(h).Request(uilayer.SoftClassRef{Path: `/ui/a`}, uilayer.PriorityNormal)
	out.bind(handle)

	h.streamer.last().fail()
	h.streamer.last().resolve(fakeClass(`A`))
	h.loop.drain()

	assert.Equal(t, uilayer.LoadCanceled, handle.State())
	assert.Equal(t, 1, out.canceled)
	assert.Empty(t, out.completed)
}

func TestLoadHandle_InvalidRequest(t *testing.T) {
	for _, tc := range []struct {
		name   string
		loader func(h *harness) *uilayer.Loader
		ref    uilayer.SoftClassRef
	}{
		{`null ref`, newLoader, uilayer.SoftClassRef{}},
		{`no streamer`, func(h *harness) *uilayer.Loader {
			return &uilayer.Loader{Loop: h.loop, Logger: h.logger}
		}, uilayer.SoftClassRef{Path: `/ui/a`}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			h := newHarness(t)
			var out loadOutcome
			handle := tc.loader(h).Request(tc.ref, uilayer.PriorityNormal)
			out.bind(handle)

			assert.Equal(t, uilayer.LoadCanceled, handle.State())
			assert.Zero(t, out.total())
			assert.Empty(t, h.streamer.requests)

			h.loop.drain()
			assert.Equal(t, 1, out.canceled)
		})
	}
}

func TestLoadHandle_CancelWithClosedLoop(t *testing.T) {
	h := newHarness(t)
	var out loadOutcome
	handle := newLoader(h).Request(uilayer.SoftClassRef{Path: `/ui/a`}, uilayer.PriorityNormal)
	out.bind(handle)

	h.loop.closed = true
	handle.Cancel()

	assert.Equal(t, 1, out.canceled)
	assert.True(t, h.logged(`delivering inline`))
}

func TestLoadHandle_LateBinding(t *testing.T) {
	h := newHarness(t)
	var out loadOutcome
	handle := newLoader(h).Request(uilayer.SoftClassRef{Path: `/ui/a`}, uilayer.PriorityNormal)

	h.streamer.last().resolve(fakeClass(`A`))
	h.loop.drain()
	require.Equal(t, uilayer.LoadCompleted, handle.State())

	out.bind(handle)
	assert.Equal(t, []uilayer.WidgetClass{fakeClass(`A`)}, out.completed)
	assert.Zero(t, out.canceled)
}

// TestLoadHandle_ExactlyOnce exercises interleavings of caller cancel,
// streamer cancel, and completion, asserting exactly one outcome.
func TestLoadHandle_ExactlyOnce(t *testing.T) {
	type step int
	const (
		cancelCall step = iota
		resolveOK
		resolveNil
		streamerCancel
		drain
	)
	for _, tc := range []struct {
		name      string
		steps     []step
		completed bool
	}{
		{`resolve`, []step{resolveOK, drain}, true},
		{`cancel then resolve`, []step{cancelCall, resolveOK, drain}, false},
		{`resolve queued then cancel`, []step{resolveOK, cancelCall, drain}, false},
		{`resolve delivered then cancel`, []step{resolveOK, drain, cancelCall, drain}, true},
		{`cancel twice`, []step{cancelCall, cancelCall, drain, cancelCall, drain}, false},
		{`nil then ok`, []step{resolveNil, resolveOK, drain}, false},
		{`streamer cancel then cancel`, []step{streamerCancel, drain, cancelCall, drain}, false},
		{`cancel then streamer cancel`, []step{cancelCall, streamerCancel, drain}, false},
		{`ok then streamer cancel`, []step{resolveOK, streamerCancel, drain}, true},
	} {
		for _, reportCancel := range []bool{false, true} {
			t.Run(tc.name, func(t *testing.T) {
				h := newHarness(t)
				h.streamer.reportCancel = reportCancel
				var out loadOutcome
				handle := newLoader(h).Request(uilayer.SoftClassRef{Path: `/ui/a`}, uilayer.PriorityNormal)
				out.bind(handle)
				async := h.streamer.last()

				for _, s := range tc.steps {
					switch s {
					case cancelCall:
						handle.Cancel()
					case resolveOK:
						async.resolve(fakeClass(`A`))
					case resolveNil:
						async.resolve(nil)
					case streamerCancel:
						async.fail()
					case drain:
						h.loop.drain()
					}
				}

				require.Equal(t, 1, out.total())
				if tc.completed {
					assert.Len(t, out.completed, 1)
					assert.Equal(t, uilayer.LoadCompleted, handle.State())
				} else {
					assert.Equal(t, 1, out.canceled)
					assert.Equal(t, uilayer.LoadCanceled, handle.State())
				}
			})
		}
	}
}
