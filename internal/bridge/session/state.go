package session

// State identifies the session lifecycle phase.
//
// Transitions: Idle → Connecting → Connected ⇄ Reconnecting →
// Disconnecting → Stopped. Reconnecting is entered on connection loss
// and left by the engine's automatic reconnection; the session never
// re-issues connect.
type State int32

const (
	StateIdle State = iota
	StateConnecting
	StateConnected
	StateReconnecting
	StateDisconnecting
	StateStopped
)

// String returns a human-readable name for the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateReconnecting:
		return "reconnecting"
	case StateDisconnecting:
		return "disconnecting"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}
