package session

// State is the lifecycle state of a Session.
type State int32

// Session states.
//
//	Uninitialized -> Connecting -> Connected -> Closed
//	any           -> Failed  (unrecoverable native error)
//	Failed        -> Connecting (reconnect)
const (
	StateUninitialized State = iota
	StateConnecting
	StateConnected
	StateClosed
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateClosed:
		return "closed"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

func (s State) canConnect() bool {
	return s == StateUninitialized || s == StateFailed
}
