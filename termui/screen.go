package termui

import (
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/joeycumines/go-uilayer"
)

// DefaultLayers are the layers of a root created without explicit layers,
// bottom first.
var DefaultLayers = []uilayer.LayerID{
	uilayer.LayerGame,
	uilayer.LayerGameMenu,
	uilayer.LayerMenu,
	uilayer.LayerModal,
}

var (
	titleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#89b4fa")).Bold(true)
	layerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#7f849c"))
	widgetStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#cdd6f4"))
	focusStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#89b4fa")).Bold(true)
	blockedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#f38ba8"))
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#a6e3a1"))
	boxStyle     = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#45475a")).
			Padding(0, 1)
)

// Screen composes the roots of every player.
type Screen struct {
	roots []*Root
	// Width is the width of each rendered root, defaulting to 36.
	Width int
	mu    sync.Mutex
}

// NewRoot creates and tracks a root for player, with the given layers, or
// [DefaultLayers] if none are given. Any existing root for player is
// replaced.
func (x *Screen) NewRoot(player *Player, layers ...uilayer.LayerID) *Root {
	if len(layers) == 0 {
		layers = DefaultLayers
	}
	root := &Root{player: player}
	for _, id := range layers {
		root.stacks = append(root.stacks, NewStack(id))
	}
	x.mu.Lock()
	defer x.mu.Unlock()
	x.roots = slices.DeleteFunc(x.roots, func(r *Root) bool { return r.player == player })
	x.roots = append(x.roots, root)
	return root
}

// Root returns the root for player, or nil.
func (x *Screen) Root(player *Player) *Root {
	x.mu.Lock()
	defer x.mu.Unlock()
	for _, r := range x.roots {
		if r.player == player {
			return r
		}
	}
	return nil
}

// Forget stops tracking the root for player.
func (x *Screen) Forget(player *Player) {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.roots = slices.DeleteFunc(x.roots, func(r *Root) bool { return r.player == player })
}

// Attached returns every attached root, lowest z-order first, ties broken
// by creation order.
func (x *Screen) Attached() []*Root {
	x.mu.Lock()
	roots := slices.Clone(x.roots)
	x.mu.Unlock()
	roots = slices.DeleteFunc(roots, func(r *Root) bool {
		_, ok := r.Attached()
		return !ok
	})
	slices.SortStableFunc(roots, func(a, b *Root) int {
		az, _ := a.Attached()
		bz, _ := b.Attached()
		return az - bz
	})
	return roots
}

// Render renders every attached root, side by side.
func (x *Screen) Render() string {
	roots := x.Attached()
	if len(roots) == 0 {
		return layerStyle.Render(`no attached layouts`)
	}
	width := x.Width
	if width <= 0 {
		width = 36
	}
	boxes := make([]string, 0, len(roots))
	for _, root := range roots {
		boxes = append(boxes, boxStyle.Width(width).Render(renderRoot(root)))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, boxes...)
}

func renderRoot(root *Root) string {
	z, _ := root.Attached()
	lines := []string{titleStyle.Render(fmt.Sprintf(`%s (z=%d)`, root.player.Name(), z))}
	lines = append(lines, renderInput(root.player))

	focus := root.Focus()
	// top layer first
	for i := len(root.stacks) - 1; i >= 0; i-- {
		stack := root.stacks[i]
		lines = append(lines, layerStyle.Render(string(stack.ID())))
		widgets := stack.Widgets()
		for j := len(widgets) - 1; j >= 0; j-- {
			w := widgets[j]
			if w == focus {
				lines = append(lines, focusStyle.Render(`> `+widgetTitle(w)))
			} else {
				lines = append(lines, widgetStyle.Render(`  `+widgetTitle(w)))
			}
		}
	}
	return strings.Join(lines, "\n")
}

func renderInput(player *Player) string {
	filter := player.Filter()
	if filter == nil {
		return blockedStyle.Render(`input: detached`)
	}
	var held []string
	for _, ch := range uilayer.InputChannels() {
		for _, token := range filter.Holders(ch) {
			if s := token.String(); !slices.Contains(held, s) {
				held = append(held, s)
			}
		}
	}
	if len(held) == 0 {
		return okStyle.Render(`input: ok`)
	}
	return blockedStyle.Render(`input: suspended ` + strings.Join(held, `, `))
}

func widgetTitle(w uilayer.Widget) string {
	if s, ok := w.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprintf(`%T`, w)
}
