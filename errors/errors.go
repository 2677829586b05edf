package errors

import (
	"errors"
)

// Kind discriminates the two outcomes a parse attempt may fail with.
type Kind uint8

const (
	// Incomplete means the supplied bytes don't contain a whole grammatical unit yet.
	// Supply more bytes and retry.
	Incomplete Kind = iota + 1
	// Malformed means the bytes violate the grammar. It is terminal for the message.
	Malformed
)

// ParseError is returned by every operation of the engine. Detailed errors of the same
// kind compare equal to their kind marker via errors.Is, so callers can either match
// a concrete failure or just the kind.
type ParseError struct {
	Message string
	Kind    Kind
}

func NewError(kind Kind, message string) error {
	return ParseError{
		Kind:    kind,
		Message: message,
	}
}

func (p ParseError) Error() string {
	return p.Message
}

// Is matches either the very same error or the kind marker.
func (p ParseError) Is(target error) bool {
	t, ok := target.(ParseError)
	if !ok {
		return false
	}

	return t.Kind == p.Kind && (t.Message == p.Message || t == kindMarkers[t.Kind])
}

var kindMarkers = map[Kind]ParseError{
	Incomplete: {Kind: Incomplete, Message: "incomplete input"},
	Malformed:  {Kind: Malformed, Message: "malformed input"},
}

var (
	ErrIncomplete error = kindMarkers[Incomplete]
	ErrMalformed  error = kindMarkers[Malformed]

	ErrBadMethod              = NewError(Malformed, "bad request method")
	ErrBadRequestTarget       = NewError(Malformed, "bad request target")
	ErrBadVersion             = NewError(Malformed, "bad HTTP version")
	ErrBadStatus              = NewError(Malformed, "bad status code")
	ErrBadReason              = NewError(Malformed, "bad reason phrase")
	ErrBadLineEnding          = NewError(Malformed, "CR is not followed by LF")
	ErrBadHeaderName          = NewError(Malformed, "bad header field name")
	ErrBadHeaderValue         = NewError(Malformed, "bad header field value")
	ErrUnexpectedContinuation = NewError(Malformed, "continuation line without preceding field")
	ErrTooManyHeaders         = NewError(Malformed, "too many headers")
	ErrBadChunk               = NewError(Malformed, "malformed chunk-encoded data")
	ErrChunkTooLarge          = NewError(Malformed, "chunk size overflows")
	ErrBadTrailer             = NewError(Malformed, "malformed trailer field")
	ErrDecoderDone            = NewError(Malformed, "chunked body is already decoded")
)

// KindOf returns the kind of err, or 0 if err didn't originate in the engine.
func KindOf(err error) Kind {
	var p ParseError
	if errors.As(err, &p) {
		return p.Kind
	}

	return 0
}

// Code maps a (result, error) pair into the integer convention: n on success,
// -2 on incomplete input and -1 on malformed input.
func Code(n int, err error) int {
	switch {
	case err == nil:
		return n
	case KindOf(err) == Incomplete:
		return -2
	default:
		return -1
	}
}
