package chat

import "errors"

// Operation errors surfaced to clients through ack frames. Anything outside
// this taxonomy is a persistence or transport failure and is reported as
// "server-error".
var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrBanned          = errors.New("banned")
	ErrInvalidPeer     = errors.New("invalid-peer")
	ErrInvalidPayload  = errors.New("invalid-payload")
)

func ackCode(err error) string {
	switch {
	case errors.Is(err, ErrUnauthenticated):
		return "unauthenticated"
	case errors.Is(err, ErrBanned):
		return "banned"
	case errors.Is(err, ErrInvalidPeer):
		return "invalid-peer"
	case errors.Is(err, ErrInvalidPayload):
		return "invalid-payload"
	default:
		return "server-error"
	}
}
