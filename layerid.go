package uilayer

import (
	"fmt"
	"strings"
)

// LayerID is a validated, hierarchical tag identifying a UI layer, e.g.
// "UI.Layer.Modal". Each dot separated segment must be non-empty, and
// consist only of ASCII letters, digits, and underscores.
type LayerID string

// Well-known layer ids.
const (
	LayerGame     LayerID = `UI.Layer.Game`
	LayerGameMenu LayerID = `UI.Layer.GameMenu`
	LayerMenu     LayerID = `UI.Layer.Menu`
	LayerModal    LayerID = `UI.Layer.Modal`
)

// ParseLayerID validates s as a [LayerID].
func ParseLayerID(s string) (LayerID, error) {
	id := LayerID(s)
	if !id.Valid() {
		return ``, fmt.Errorf(`%w: layer id %q`, ErrInvalidArgument, s)
	}
	return id, nil
}

// Valid reports whether the receiver is a well-formed layer id.
func (x LayerID) Valid() bool {
	if x == `` {
		return false
	}
	for segment := range strings.SplitSeq(string(x), `.`) {
		if segment == `` {
			return false
		}
		for _, r := range segment {
			switch {
			case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			default:
				return false
			}
		}
	}
	return true
}

// String implements [fmt.Stringer].
func (x LayerID) String() string {
	return string(x)
}
