package protocol

const (
	// Protocol/transport validation.
	ErrProtoBadRequest = "E_PROTO_BAD_REQUEST"

	// Session routing/state.
	ErrWorldBusy  = "E_WORLD_BUSY"
	ErrSessionEnd = "E_SESSION_ENDED"

	// Rule/action layer.
	ErrBadRequest        = "E_BAD_REQUEST"
	ErrUnaffordable      = "E_UNAFFORDABLE"
	ErrCapacity          = "E_CAPACITY"
	ErrInvalidTransition = "E_INVALID_TRANSITION"
	ErrOutOfRange        = "E_OUT_OF_RANGE"
	ErrCooldown          = "E_COOLDOWN"
	ErrLoseCondition     = "E_LOSE"
	ErrInternal          = "E_INTERNAL"
)

var knownCodes = map[string]struct{}{
	ErrProtoBadRequest:   {},
	ErrWorldBusy:         {},
	ErrSessionEnd:        {},
	ErrBadRequest:        {},
	ErrUnaffordable:      {},
	ErrCapacity:          {},
	ErrInvalidTransition: {},
	ErrOutOfRange:        {},
	ErrCooldown:          {},
	ErrLoseCondition:     {},
	ErrInternal:          {},
}

func IsKnownCode(code string) bool {
	if code == "" {
		return true
	}
	_, ok := knownCodes[code]
	return ok
}
