package tiger

import "errors"

// Kind classifies an invocation failure. Every failure from this package is
// terminal for its call; nothing is retried.
type Kind int

const (
	// KindNotFound covers an absent mod descriptor or tiger config file.
	KindNotFound Kind = iota
	// KindToolNotFound means the tiger executable could not be launched
	// from the configured path.
	KindToolNotFound
	// KindTimeout means the wall-clock budget elapsed and the child was
	// killed.
	KindTimeout
	// KindToolError means tiger wrote to stderr and produced no parseable
	// output.
	KindToolError
	// KindMalformedOutput means stdout was present but not a valid
	// diagnostic array.
	KindMalformedOutput
	// KindUnexpected is anything else; the message carries the cause.
	KindUnexpected
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindToolNotFound:
		return "tool_not_found"
	case KindTimeout:
		return "timeout"
	case KindToolError:
		return "tool_error"
	case KindMalformedOutput:
		return "malformed_output"
	default:
		return "unexpected"
	}
}

// Error is a typed invocation failure. Message is always sufficient to
// diagnose the root cause on its own; Stderr carries the tool's own error
// text verbatim when Kind is KindToolError.
type Error struct {
	Kind    Kind
	Message string
	Stderr  string
}

func (e *Error) Error() string { return e.Message }

// AsError unwraps err to this package's Error type, if it is one.
func AsError(err error) (*Error, bool) {
	var te *Error
	if errors.As(err, &te) {
		return te, true
	}
	return nil, false
}

// KindOf reports the failure kind of err, or KindUnexpected for errors that
// did not originate here.
func KindOf(err error) Kind {
	if te, ok := AsError(err); ok {
		return te.Kind
	}
	return KindUnexpected
}
