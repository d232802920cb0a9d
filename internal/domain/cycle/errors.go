package cycle

import "errors"

// Failure kinds. Adapters wrap their causes with one of these so the cycle
// can classify a failure with errors.Is.
var (
	ErrInvalidInput = errors.New("invalid input")
	ErrTransport    = errors.New("scoring transport failed")
	ErrStatus       = errors.New("scoring service rejected request")
	ErrDecode       = errors.New("scoring response malformed")
)

// Kind is the wire label of a failure.
type Kind string

// Failure kind labels.
const (
	KindNone         Kind = ""
	KindInvalidInput Kind = "invalid_input"
	KindTransport    Kind = "transport"
	KindStatus       Kind = "status"
	KindDecode       Kind = "decode"
	KindUnknown      Kind = "unknown"
)

// User-facing failure messages.
const (
	MessageBackendFailed = "backend connection failed"
	MessageInvalidInput  = "invalid transaction input"
)

// KindOf classifies err. A nil error has no kind.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrInvalidInput):
		return KindInvalidInput
	case errors.Is(err, ErrStatus):
		return KindStatus
	case errors.Is(err, ErrDecode):
		return KindDecode
	case errors.Is(err, ErrTransport):
		return KindTransport
	default:
		return KindUnknown
	}
}

// Message returns the status text shown for a failure kind. Every backend
// side failure shares one message.
func (k Kind) Message() string {
	if k == KindInvalidInput {
		return MessageInvalidInput
	}
	return MessageBackendFailed
}
