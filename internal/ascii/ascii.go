// Package ascii classifies octets the way RFC 9110/9112 grammar does.
//
//	token          = 1*tchar
//	tchar          = "!" / "#" / "$" / "%" / "&" / "'" / "*" / "+" / "-" / "." /
//	                 "^" / "_" / "`" / "|" / "~" / DIGIT / ALPHA
//	field-vchar    = VCHAR / obs-text
//	obs-text       = %x80-FF
//	OWS            = *( SP / HTAB )
package ascii

type class uint8

const (
	classToken class = 1 << iota
	classTarget
	classValue
	classSpace
	classDigit
)

var classes [256]class

func init() {
	for c := 0; c < 256; c++ {
		var t class

		isControl := c <= 31 || c == 127
		if !isControl && c != ' ' {
			t |= classTarget
		}

		if !isControl || c == '\t' {
			t |= classValue
		}

		switch c {
		case ' ', '\t':
			t |= classSpace
		}

		if '0' <= c && c <= '9' {
			t |= classDigit
		}

		if c < 128 && !isControl {
			switch c {
			case '(', ')', '<', '>', '@', ',', ';', ':', '"', '/', '[', ']', '?', '=', '{', '}', '\\', ' ', '\t':
			default:
				t |= classToken
			}
		}

		classes[c] = t
	}
}

// IsToken reports whether c may appear in a method or a field name.
func IsToken(c byte) bool { return classes[c]&classToken != 0 }

// IsTarget reports whether c may appear in a request-target: anything except
// controls, DEL and SP. Octets above 0x7f are let through.
func IsTarget(c byte) bool { return classes[c]&classTarget != 0 }

// IsValue reports whether c may appear in a field value or a reason phrase.
func IsValue(c byte) bool { return classes[c]&classValue != 0 }

// IsSpace reports SP and HTAB.
func IsSpace(c byte) bool { return classes[c]&classSpace != 0 }

func IsDigit(c byte) bool { return classes[c]&classDigit != 0 }

// TrimSpace excludes leading and trailing SP/HTAB from b without touching the bytes.
func TrimSpace(b []byte) []byte {
	for len(b) > 0 && IsSpace(b[0]) {
		b = b[1:]
	}

	for len(b) > 0 && IsSpace(b[len(b)-1]) {
		b = b[:len(b)-1]
	}

	return b
}
