package protocol

import "github.com/pkg/errors"

// ErrMalformedCommand marks a payload that could not be decoded at all.
var ErrMalformedCommand = errors.New("malformed command")

type ErrorCode string

const (
	CodeInvalidCommand          ErrorCode = "invalid_command"
	CodeInvalidStatusTransition ErrorCode = "invalid_status_transition"
	CodeInvalidSignature        ErrorCode = "invalid_jws_signature"
	CodeUnknownCommandType      ErrorCode = "unknown_command_type"
	CodeExpired                 ErrorCode = "invalid_expiration_timestamp"
	CodeImmutableField          ErrorCode = "immutable_field_changed"
)

// ErrorObject is a protocol-level error carried inside the reply envelope.
type ErrorObject struct {
	Type    string    `json:"type"`
	Code    ErrorCode `json:"code"`
	Field   string    `json:"field,omitempty"`
	Message string    `json:"message,omitempty"`
}

// Error is a protocol violation: the whole inbound request is rejected with
// a 400 reply and no local state change.
type Error struct {
	Obj ErrorObject
}

func (e *Error) Error() string {
	return "protocol error: " + string(e.Obj.Code) + ": " + e.Obj.Message
}

func NewError(code ErrorCode, field, message string) *Error {
	return &Error{Obj: ErrorObject{
		Type:    "command_error",
		Code:    code,
		Field:   field,
		Message: message,
	}}
}

// AsError extracts a protocol error from an error chain.
func AsError(err error) (*Error, bool) {
	var perr *Error
	if errors.As(err, &perr) {
		return perr, true
	}
	return nil, false
}
