package uilayer_test

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/joeycumines/go-uilayer"
	"github.com/joeycumines/logiface"
	"github.com/joeycumines/stumpy"
)

var errLoopClosed = errors.New(`manual loop closed`)

// manualLoop is a deterministic [uilayer.Loop], drained explicitly by tests.
type manualLoop struct {
	tasks  []func()
	closed bool
}

func (l *manualLoop) Submit(task func()) error {
	if l.closed {
		return errLoopClosed
	}
	l.tasks = append(l.tasks, task)
	return nil
}

// drain runs tasks until the queue is empty, returning the number run.
func (l *manualLoop) drain() int {
	var n int
	for len(l.tasks) != 0 {
		task := l.tasks[0]
		l.tasks = l.tasks[1:]
		task()
		n++
	}
	return n
}

type suppression struct {
	channel    uilayer.InputChannel
	token      uilayer.SuspendToken
	suppressed bool
}

type fakeInput struct {
	calls  []suppression
	tokens map[uilayer.InputChannel]map[uilayer.SuspendToken]struct{}
}

func newFakeInput() *fakeInput {
	return &fakeInput{tokens: make(map[uilayer.InputChannel]map[uilayer.SuspendToken]struct{})}
}

func (f *fakeInput) SetChannelSuppressed(channel uilayer.InputChannel, token uilayer.SuspendToken, suppressed bool) {
	f.calls = append(f.calls, suppression{channel, token, suppressed})
	if f.tokens[channel] == nil {
		f.tokens[channel] = make(map[uilayer.SuspendToken]struct{})
	}
	if suppressed {
		f.tokens[channel][token] = struct{}{}
	} else {
		delete(f.tokens[channel], token)
	}
}

// suppressed reports whether any channel is suppressed by any token.
func (f *fakeInput) suppressed() bool {
	for _, tokens := range f.tokens {
		if len(tokens) != 0 {
			return true
		}
	}
	return false
}

func (f *fakeInput) heldBy(token uilayer.SuspendToken) int {
	var n int
	for _, tokens := range f.tokens {
		if _, ok := tokens[token]; ok {
			n++
		}
	}
	return n
}

type fakePlayer struct {
	input *fakeInput
	name  string
	gone  bool
}

func newFakePlayer(name string) *fakePlayer {
	return &fakePlayer{name: name, input: newFakeInput()}
}

func (p *fakePlayer) Valid() bool { return !p.gone }

func (p *fakePlayer) Input() uilayer.InputControl {
	if p.input == nil {
		return nil
	}
	return p.input
}

func (p *fakePlayer) String() string { return p.name }

type fakeClass string

func (c fakeClass) Name() string { return string(c) }

type fakeWidget struct {
	owner uilayer.Player
	class string
	title string
}

func (w *fakeWidget) OwningPlayer() uilayer.Player { return w.owner }

type fakeToolkit struct {
	created []*fakeWidget
	fail    bool
}

func (t *fakeToolkit) InstantiateWidget(class uilayer.WidgetClass, owner uilayer.Player) uilayer.Widget {
	if t.fail {
		return nil
	}
	w := &fakeWidget{owner: owner, class: class.Name()}
	t.created = append(t.created, w)
	return w
}

type fakeContainer struct {
	widgets    []uilayer.Widget
	transition time.Duration
}

func newFakeContainer() *fakeContainer {
	return &fakeContainer{transition: -1}
}

func (c *fakeContainer) Insert(widget uilayer.Widget) { c.widgets = append(c.widgets, widget) }

func (c *fakeContainer) Remove(widget uilayer.Widget) {
	for i, w := range c.widgets {
		if w == widget {
			c.widgets = append(c.widgets[:i], c.widgets[i+1:]...)
			return
		}
	}
}

func (c *fakeContainer) SetTransitionDuration(d time.Duration) { c.transition = d }

type fakeRoot struct {
	z        int
	attaches int
	detaches int
	attached bool
}

func (r *fakeRoot) AttachToPlayerViewport(zOrder int) {
	r.attaches++
	r.attached = true
	r.z = zOrder
}

func (r *fakeRoot) DetachFromViewport() {
	r.detaches++
	r.attached = false
}

// fakeAsync is a resolve controlled by the test. Callbacks are delivered
// via the loop, as a real streamer would.
type fakeAsync struct {
	loop       uilayer.Loop
	onResolved func(uilayer.WidgetClass)
	onCanceled func()
	ref        uilayer.SoftClassRef
	priority   uilayer.Priority
	cancels    int
	// reportCancel makes Cancel deliver the streamer's own cancel callback
	reportCancel bool
}

func (h *fakeAsync) BindOnResolved(fn func(uilayer.WidgetClass)) { h.onResolved = fn }

func (h *fakeAsync) BindOnCanceled(fn func()) { h.onCanceled = fn }

func (h *fakeAsync) Cancel() {
	h.cancels++
	if h.reportCancel && h.cancels == 1 {
		_ = h.loop.Submit(func() { h.onCanceled() })
	}
}

// resolve schedules delivery of class.
func (h *fakeAsync) resolve(class uilayer.WidgetClass) {
	_ = h.loop.Submit(func() { h.onResolved(class) })
}

// fail schedules delivery of the streamer's own cancellation.
func (h *fakeAsync) fail() {
	_ = h.loop.Submit(func() { h.onCanceled() })
}

type fakeStreamer struct {
	loop         uilayer.Loop
	requests     []*fakeAsync
	sync         map[string]uilayer.WidgetClass
	reportCancel bool
}

func (s *fakeStreamer) RequestResolve(ref uilayer.SoftClassRef, priority uilayer.Priority) uilayer.AsyncHandle {
	h := &fakeAsync{loop: s.loop, ref: ref, priority: priority, reportCancel: s.reportCancel}
	s.requests = append(s.requests, h)
	return h
}

func (s *fakeStreamer) last() *fakeAsync {
	if len(s.requests) == 0 {
		panic(`no requests`)
	}
	return s.requests[len(s.requests)-1]
}

// syncStreamer additionally implements [uilayer.SyncResolver].
type syncStreamer struct {
	*fakeStreamer
}

func (s syncStreamer) ResolveNow(ref uilayer.SoftClassRef) (uilayer.WidgetClass, error) {
	if class, ok := s.sync[ref.Path]; ok {
		return class, nil
	}
	return nil, fmt.Errorf(`not found: %s`, ref.Path)
}

// harness bundles the collaborators most tests need.
type harness struct {
	loop     *manualLoop
	streamer *fakeStreamer
	toolkit  *fakeToolkit
	logs     *bytes.Buffer
	logger   *logiface.Logger[logiface.Event]
	registry *uilayer.SuspendRegistry
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		loop:    new(manualLoop),
		toolkit: new(fakeToolkit),
		logs:    new(bytes.Buffer),
	}
	h.streamer = &fakeStreamer{loop: h.loop}
	h.logger = newTestLogger(h.logs)
	h.registry = uilayer.NewSuspendRegistry(h.logger)
	return h
}

func (h *harness) options(extra ...uilayer.Option) []uilayer.Option {
	return append([]uilayer.Option{
		uilayer.WithLoop(h.loop),
		uilayer.WithToolkit(h.toolkit),
		uilayer.WithStreamer(h.streamer),
		uilayer.WithSuspendRegistry(h.registry),
		uilayer.WithLogger(h.logger),
	}, extra...)
}

func (h *harness) logged(msg string) bool {
	return strings.Contains(h.logs.String(), msg)
}

func newTestLogger(w *bytes.Buffer) *logiface.Logger[logiface.Event] {
	return stumpy.L.New(
		stumpy.L.WithStumpy(
			stumpy.WithWriter(w),
			stumpy.WithTimeField(``),
		),
		stumpy.L.WithLevel(logiface.LevelTrace),
	).Logger()
}
