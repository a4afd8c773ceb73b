package uilayer

import (
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/joeycumines/logiface"
)

// Suspend reasons used internally, as the base of generated tokens.
const (
	SuspendReasonPush         = `PushWidgetToLayer`
	SuspendReasonCreateWidget = `CreatingWidgetAsync`
)

type (
	// SuspendToken identifies one outstanding input-suppression request.
	// Tokens are unique for the lifetime of the process. The zero value is
	// the "none" token, see [SuspendToken.IsNone].
	SuspendToken struct {
		reason string
		seq    uint64
	}

	// SuspendRegistry issues [SuspendToken] values, and tracks the input
	// channels suppressed on behalf of each. It is safe for concurrent use.
	SuspendRegistry struct {
		// Logger is used to report degraded suspends and ignored resumes.
		Logger *logiface.Logger[logiface.Event]

		active map[SuspendToken]InputControl
		mu     sync.Mutex
	}
)

// suspendSeq is the process-wide token counter. It is never reset, and the
// first token issued is 1, reserving 0 for the none token. At one suspend per
// nanosecond it would take centuries to wrap.
var suspendSeq atomic.Uint64

// NewSuspendRegistry returns a new, empty registry. Tokens are unique across
// every registry in the process, but must be resumed via the registry that
// issued them.
func NewSuspendRegistry(logger *logiface.Logger[logiface.Event]) *SuspendRegistry {
	return &SuspendRegistry{Logger: logger}
}

// IsNone reports whether the token is the "none" token, which is returned
// when input could not be suspended, and is ignored by resume.
func (x SuspendToken) IsNone() bool {
	return x.seq == 0
}

// Reason returns the reason base the token was generated from.
func (x SuspendToken) Reason() string {
	return x.reason
}

// String implements [fmt.Stringer].
func (x SuspendToken) String() string {
	if x.IsNone() {
		return `None`
	}
	return x.reason + `_` + strconv.FormatUint(x.seq, 10)
}

// Suspend suppresses every input channel of player, returning a token that
// must be passed to [SuspendRegistry.Resume] to release them. If the player
// has no input-control surface, a warning is logged, and the none token is
// returned (input is never suspended in that case).
func (x *SuspendRegistry) Suspend(player Player, reason string) SuspendToken {
	var input InputControl
	if player != nil {
		input = player.Input()
	}
	if input == nil {
		x.Logger.Warning().
			Limit().
			Str(`reason`, reason).
			Bool(`player`, player != nil).
			Log(`uilayer: suspend input failed: no input-control surface`)
		return SuspendToken{}
	}

	token := SuspendToken{reason: reason, seq: suspendSeq.Add(1)}

	x.mu.Lock()
	if x.active == nil {
		x.active = make(map[SuspendToken]InputControl)
	}
	x.active[token] = input
	x.mu.Unlock()

	for _, channel := range InputChannels() {
		input.SetChannelSuppressed(channel, token, true)
	}

	x.Logger.Debug().
		Str(`token`, token.String()).
		Log(`uilayer: input suspended`)

	return token
}

// Resume releases the input channels suppressed by token. It is a no-op for
// the none token, for tokens that were already resumed, and if the player's
// input-control surface no longer exists. The player may be nil, or no
// longer valid, in which case the surface captured by Suspend is used.
func (x *SuspendRegistry) Resume(player Player, token SuspendToken) {
	if token.IsNone() {
		x.Logger.Debug().
			Log(`uilayer: resume input ignored: none token`)
		return
	}

	x.mu.Lock()
	input, ok := x.active[token]
	delete(x.active, token)
	x.mu.Unlock()

	if !ok {
		x.Logger.Debug().
			Str(`token`, token.String()).
			Log(`uilayer: resume input ignored: token not active`)
		return
	}

	if player != nil && player.Valid() && player.Input() == nil {
		x.Logger.Debug().
			Str(`token`, token.String()).
			Log(`uilayer: resume input ignored: input-control surface gone`)
		return
	}

	for _, channel := range InputChannels() {
		input.SetChannelSuppressed(channel, token, false)
	}

	x.Logger.Debug().
		Str(`token`, token.String()).
		Log(`uilayer: input resumed`)
}

// Active reports whether token is suspended, and not yet resumed.
func (x *SuspendRegistry) Active(token SuspendToken) bool {
	x.mu.Lock()
	defer x.mu.Unlock()
	_, ok := x.active[token]
	return ok
}

// Len returns the number of outstanding tokens.
func (x *SuspendRegistry) Len() int {
	x.mu.Lock()
	defer x.mu.Unlock()
	return len(x.active)
}
