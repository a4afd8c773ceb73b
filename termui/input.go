package termui

import (
	"slices"
	"strings"
	"sync"

	"github.com/joeycumines/go-uilayer"
)

// InputFilter implements [uilayer.InputControl]. A channel is suppressed
// while at least one token holds it.
type InputFilter struct {
	holds map[uilayer.InputChannel]map[uilayer.SuspendToken]struct{}
	mu    sync.Mutex
}

var _ uilayer.InputControl = (*InputFilter)(nil)

func NewInputFilter() *InputFilter {
	return &InputFilter{holds: make(map[uilayer.InputChannel]map[uilayer.SuspendToken]struct{})}
}

// SetChannelSuppressed implements [uilayer.InputControl].
func (x *InputFilter) SetChannelSuppressed(channel uilayer.InputChannel, token uilayer.SuspendToken, suppressed bool) {
	x.mu.Lock()
	defer x.mu.Unlock()
	tokens := x.holds[channel]
	if suppressed {
		if tokens == nil {
			tokens = make(map[uilayer.SuspendToken]struct{})
			x.holds[channel] = tokens
		}
		tokens[token] = struct{}{}
		return
	}
	delete(tokens, token)
	if len(tokens) == 0 {
		delete(x.holds, channel)
	}
}

// Suppressed reports whether channel is currently suppressed.
func (x *InputFilter) Suppressed(channel uilayer.InputChannel) bool {
	x.mu.Lock()
	defer x.mu.Unlock()
	return len(x.holds[channel]) != 0
}

// Allow reports whether input on channel should be delivered.
func (x *InputFilter) Allow(channel uilayer.InputChannel) bool {
	return !x.Suppressed(channel)
}

// Holders returns the tokens suppressing channel, sorted by their string
// form.
func (x *InputFilter) Holders(channel uilayer.InputChannel) []uilayer.SuspendToken {
	x.mu.Lock()
	tokens := make([]uilayer.SuspendToken, 0, len(x.holds[channel]))
	for token := range x.holds[channel] {
		tokens = append(tokens, token)
	}
	x.mu.Unlock()
	slices.SortFunc(tokens, func(a, b uilayer.SuspendToken) int {
		return strings.Compare(a.String(), b.String())
	})
	return tokens
}
