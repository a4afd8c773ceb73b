package uilayer

import (
	"fmt"

	"github.com/joeycumines/logiface"
)

// playerID returns a loggable identity for player, if it has one.
func playerID(player Player) (string, bool) {
	if s, ok := player.(fmt.Stringer); ok && s != nil {
		return s.String(), true
	}
	return ``, false
}

// withPlayer attaches the player field, if the player has an identity.
func withPlayer(b *logiface.Builder[logiface.Event], player Player) *logiface.Builder[logiface.Event] {
	if id, ok := playerID(player); ok {
		b = b.Str(`player`, id)
	}
	return b
}
