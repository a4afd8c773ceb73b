package termui

import (
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/joeycumines/go-uilayer"
)

type (
	// Widget implements [uilayer.Widget].
	Widget struct {
		class uilayer.WidgetClass
		owner uilayer.Player
		title string
		mu    sync.Mutex
		id    uuid.UUID
	}

	// Toolkit implements [uilayer.Toolkit], creating [Widget] values.
	Toolkit struct {
		// Refuse optionally causes instantiation of a class to fail.
		Refuse  func(class uilayer.WidgetClass) bool
		created atomic.Int64
	}
)

var (
	_ uilayer.Widget  = (*Widget)(nil)
	_ uilayer.Toolkit = (*Toolkit)(nil)
)

// InstantiateWidget implements [uilayer.Toolkit]. It fails for a nil class.
func (x *Toolkit) InstantiateWidget(class uilayer.WidgetClass, owner uilayer.Player) uilayer.Widget {
	if class == nil || (x.Refuse != nil && x.Refuse(class)) {
		return nil
	}
	x.created.Add(1)
	return &Widget{
		id:    uuid.New(),
		class: class,
		owner: owner,
		title: class.Name(),
	}
}

// Created returns the number of widgets instantiated.
func (x *Toolkit) Created() int {
	return int(x.created.Load())
}

// ID returns the unique identity of the widget.
func (x *Widget) ID() uuid.UUID {
	return x.id
}

// Class returns the class the widget was instantiated from.
func (x *Widget) Class() uilayer.WidgetClass {
	return x.class
}

// OwningPlayer implements [uilayer.Widget].
func (x *Widget) OwningPlayer() uilayer.Player {
	return x.owner
}

// Title returns the rendered title, which defaults to the class name.
func (x *Widget) Title() string {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.title
}

func (x *Widget) SetTitle(title string) {
	x.mu.Lock()
	x.title = title
	x.mu.Unlock()
}

// String implements [fmt.Stringer].
func (x *Widget) String() string {
	return x.Title()
}
