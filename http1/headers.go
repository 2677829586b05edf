package http1

import (
	"github.com/indigo-web/iter"
	"github.com/indigo-web/utils/strcomp"
	"github.com/indigo-web/utils/uf"
)

// Header is a single field line. Both slices point into the parsed buffer, so they stay
// valid only as long as the buffer isn't reused. A nil Name marks a continuation line
// (obs-fold): its Value belongs to the previous field and must be folded by the caller.
type Header struct {
	Name, Value []byte
}

// IsContinuation reports whether the line continues the previous field's value.
func (h Header) IsContinuation() bool {
	return h.Name == nil
}

// Key returns the name as a string without copying.
func (h Header) Key() string {
	return uf.B2S(h.Name)
}

// String returns the value as a string without copying.
func (h Header) String() string {
	return uf.B2S(h.Value)
}

// Headers is the sequence of field lines in order of appearance. Lookups are
// case-insensitive. Continuation lines are never merged into the values returned
// by Get or Values.
type Headers []Header

// Get returns the first value of the key and whether it is present.
func (h Headers) Get(key string) (string, bool) {
	for _, header := range h {
		if header.Name != nil && strcomp.EqualFold(header.Key(), key) {
			return header.String(), true
		}
	}

	return "", false
}

// Value returns the first value of the key, or an empty string.
func (h Headers) Value(key string) string {
	value, _ := h.Get(key)
	return value
}

// Has indicates whether there's at least one field with the key.
func (h Headers) Has(key string) bool {
	_, found := h.Get(key)
	return found
}

// Values returns all values of the key, appending them to buff.
func (h Headers) Values(buff []string, key string) []string {
	for _, header := range h {
		if header.Name != nil && strcomp.EqualFold(header.Key(), key) {
			buff = append(buff, header.String())
		}
	}

	return buff
}

// HasContinuations reports whether at least one obs-fold line is present. Servers
// are expected to either reject such a message or fold the lines themselves.
func (h Headers) HasContinuations() bool {
	for _, header := range h {
		if header.IsContinuation() {
			return true
		}
	}

	return false
}

// Iter returns an iterator over all the field lines, continuations included.
func (h Headers) Iter() iter.Iterator[Header] {
	return iter.Slice(h)
}
