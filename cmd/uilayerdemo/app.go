package main

import (
	"fmt"
	"slices"
	"strings"
	"sync/atomic"

	"github.com/joeycumines/go-uilayer"
	"github.com/joeycumines/go-uilayer/streaming"
	"github.com/joeycumines/go-uilayer/termui"
	"github.com/joeycumines/logiface"
)

// missingClass is offered alongside the catalog paths, to demonstrate a
// push that is canceled.
const missingClass = `/ui/missing`

type (
	// app holds every piece of state owned by the loop. Methods other than
	// run must only be called on the loop.
	app struct {
		loop     uilayer.Loop
		sub      *uilayer.Subsystem
		streamer *streaming.Manager
		screen   *termui.Screen
		logger   *logiface.Logger[logiface.Event]
		send     func(frame frameMsg)
		newMgr   uilayer.ManagerFactory
		classes  []string
		layers   []uilayer.LayerID
		players  []*termui.Player
		ops      map[*termui.Player][]*uilayer.PushOperation
		seq      atomic.Uint64
		selected int
		class    int
		layer    int
		next     int
		suspend  bool
	}

	// frameMsg is a rendered snapshot of the app.
	frameMsg struct {
		view   string
		status string
		seq    uint64
	}
)

// run executes fn on the loop, and returns the resulting frame.
func (x *app) run(fn func() string) frameMsg {
	ch := make(chan frameMsg, 1)
	if err := x.loop.Submit(func() { ch <- x.frame(fn()) }); err != nil {
		return frameMsg{status: err.Error()}
	}
	return <-ch
}

// notify renders a frame on the loop, and delivers it asynchronously.
func (x *app) notify(status string) {
	if x.send == nil {
		return
	}
	frame := x.frame(status)
	go x.send(frame)
}

func (x *app) frame(status string) frameMsg {
	var b strings.Builder
	if player := x.player(); player != nil {
		fmt.Fprintf(&b, "player: %s (%d/%d)", player.Name(), x.selected+1, len(x.players))
	} else {
		b.WriteString(`player: none`)
	}
	fmt.Fprintf(&b, "  class: %s  layer: %s  suspend: %t\n\n", x.classes[x.class], x.layers[x.layer], x.suspend)
	b.WriteString(x.screen.Render())
	return frameMsg{view: b.String(), status: status, seq: x.seq.Add(1)}
}

func (x *app) player() *termui.Player {
	if x.selected < 0 || x.selected >= len(x.players) {
		return nil
	}
	return x.players[x.selected]
}

func (x *app) addPlayer() string {
	x.next++
	player := termui.NewPlayer(fmt.Sprintf(`player%d`, x.next))
	x.players = append(x.players, player)
	x.selected = len(x.players) - 1
	x.sub.NotifyPlayerAdded(player)
	return `added ` + player.Name()
}

func (x *app) removePlayer() string {
	player := x.player()
	if player == nil {
		return `no player`
	}
	x.sub.NotifyPlayerRemoved(player)
	return `removed ` + player.Name() + `, layout retained`
}

func (x *app) readdPlayer() string {
	player := x.player()
	if player == nil {
		return `no player`
	}
	x.sub.RefreshPlayer(player)
	return `refreshed ` + player.Name()
}

func (x *app) destroyPlayer() string {
	player := x.player()
	if player == nil {
		return `no player`
	}
	player.Destroy()
	x.sub.NotifyPlayerDestroyed(player)
	delete(x.ops, player)
	x.players = slices.Delete(x.players, x.selected, x.selected+1)
	if x.selected >= len(x.players) {
		x.selected = len(x.players) - 1
	}
	return `destroyed ` + player.Name()
}

func (x *app) cyclePlayer() string {
	if len(x.players) != 0 {
		x.selected = (x.selected + 1) % len(x.players)
	}
	return ``
}

func (x *app) cycleClass() string {
	x.class = (x.class + 1) % len(x.classes)
	return ``
}

func (x *app) cycleLayer() string {
	x.layer = (x.layer + 1) % len(x.layers)
	return ``
}

func (x *app) toggleSuspend() string {
	x.suspend = !x.suspend
	return fmt.Sprintf(`suspend input on push: %t`, x.suspend)
}

func (x *app) toggleInput() string {
	player := x.player()
	if player == nil {
		return `no player`
	}
	if player.Filter() != nil {
		player.DetachInput()
		return `detached input of ` + player.Name()
	}
	player.AttachInput(termui.NewInputFilter())
	return `attached input to ` + player.Name()
}

func (x *app) ref() uilayer.SoftClassRef {
	return uilayer.SoftClassRef{Path: x.classes[x.class]}
}

// pushAction pushes via the async action, see [uilayer.Subsystem.PushToLayer].
func (x *app) pushAction() string {
	player := x.player()
	if player == nil {
		return `no player`
	}
	layer, ref := x.layers[x.layer], x.ref()
	action, err := x.sub.PushToLayer(player, layer, ref, x.suspend)
	if err != nil {
		return err.Error()
	}
	action.OnInitialize = func(widget uilayer.Widget) {
		if w, ok := widget.(*termui.Widget); ok {
			w.SetTitle(fmt.Sprintf(`%s #%s`, w.Title(), w.ID().String()[:4]))
		}
	}
	action.OnAfterPush = func(widget uilayer.Widget) {
		x.notify(fmt.Sprintf(`pushed %s to %s`, ref, layer))
	}
	action.OnCanceled = func() {
		x.notify(fmt.Sprintf(`push of %s canceled`, ref))
	}
	action.Activate()
	if op := action.Operation(); op != nil {
		x.track(player, op)
	}
	return fmt.Sprintf(`pushing %s to %s`, ref, layer)
}

// pushStreamed pushes via [uilayer.Subsystem.PushStreamedContentToLayer],
// at high priority.
func (x *app) pushStreamed() string {
	player := x.player()
	if player == nil {
		return `no player`
	}
	priority := uilayer.PriorityHigh
	layer, ref := x.layers[x.layer], x.ref()
	op, err := x.sub.PushStreamedContentToLayer(player, uilayer.PushRequest{
		Class:        ref,
		Layer:        layer,
		Priority:     &priority,
		SuspendInput: x.suspend,
		OnEvent: func(event uilayer.PushEvent) {
			if event.State != uilayer.PushInitialize {
				x.notify(fmt.Sprintf(`%s: %s`, ref, event.State))
			}
		},
	})
	if err != nil {
		return err.Error()
	}
	x.track(player, op)
	return fmt.Sprintf(`pushing %s to %s (high priority)`, ref, layer)
}

// pushSync pushes via [uilayer.Subsystem.PushContentToLayer], blocking the
// loop until resolved.
func (x *app) pushSync() string {
	player := x.player()
	if player == nil {
		return `no player`
	}
	if _, err := x.sub.PushContentToLayer(player, x.layers[x.layer], x.ref()); err != nil {
		return err.Error()
	}
	return fmt.Sprintf(`pushed %s synchronously`, x.ref())
}

// createWidget exercises [uilayer.Subsystem.CreateWidgetAsync], then
// places the widget on the selected layer.
func (x *app) createWidget() string {
	player := x.player()
	if player == nil {
		return `no player`
	}
	ref, layer := x.ref(), x.layers[x.layer]
	action, err := x.sub.CreateWidgetAsync(player, ref, x.suspend)
	if err != nil {
		return err.Error()
	}
	action.OnComplete = func(widget uilayer.Widget) {
		if root := x.screen.Root(player); root != nil {
			if stack := root.Stack(layer); stack != nil {
				stack.Insert(widget)
			}
		}
		x.notify(fmt.Sprintf(`created %s`, ref))
	}
	action.OnCanceled = func() {
		x.notify(fmt.Sprintf(`create of %s canceled`, ref))
	}
	action.Activate()
	return fmt.Sprintf(`creating %s`, ref)
}

func (x *app) track(player *termui.Player, op *uilayer.PushOperation) {
	ops := slices.DeleteFunc(x.ops[player], (*uilayer.PushOperation).Done)
	x.ops[player] = append(ops, op)
}

func (x *app) cancelPushes() string {
	player := x.player()
	if player == nil {
		return `no player`
	}
	var n int
	for _, op := range x.ops[player] {
		if !op.Done() {
			op.Cancel()
			n++
		}
	}
	delete(x.ops, player)
	return fmt.Sprintf(`canceled %d push(es)`, n)
}

func (x *app) pop() string {
	player := x.player()
	if player == nil {
		return `no player`
	}
	root := x.screen.Root(player)
	if root == nil {
		return `no layout`
	}
	widget := root.Focus()
	if widget == nil {
		return `nothing to pop`
	}
	if !x.sub.PopContentFromLayer(widget) {
		// not pushed through the layout, e.g. created directly
		for _, stack := range root.Stacks() {
			stack.Remove(widget)
		}
	}
	return `popped ` + fmt.Sprint(widget)
}

// switchManager replaces the active manager with a fresh one.
func (x *app) switchManager() string {
	manager, err := x.newMgr(x.sub)
	if err != nil {
		return err.Error()
	}
	x.sub.SwitchManager(manager)
	return `switched layout manager`
}

func (x *app) pending() string {
	return fmt.Sprintf(`%d resolve(s) pending`, x.streamer.Pending())
}
