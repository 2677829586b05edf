package http1

import (
	"github.com/indigo-web/pico/errors"
	"github.com/indigo-web/pico/internal/ascii"
	"github.com/indigo-web/utils/uf"
)

const versionPrefix = "HTTP/1."

// Request is the request line followed by its header block. All the slices point
// into the parsed buffer.
type Request struct {
	Method  []byte
	Path    []byte
	Minor   int
	Headers Headers
}

func (r Request) MethodString() string { return uf.B2S(r.Method) }
func (r Request) PathString() string   { return uf.B2S(r.Path) }

// Response is the status line followed by its header block. Reason may be empty.
type Response struct {
	Minor   int
	Status  int
	Reason  []byte
	Headers Headers
}

func (r Response) ReasonString() string { return uf.B2S(r.Reason) }

// ParseRequest parses a request line and the header block following it.
//
// Header fields are stored into the backing array of headers, at most cap(headers)
// of them. On success the number of bytes consumed, the terminating empty line
// included, is returned. errors.ErrIncomplete is returned whenever buf ends before
// the header block does; retry with a grown buffer, passing the length of the
// previously attempted buffer as lastLen (0 on the first attempt). Any other error
// is malformed input and is terminal.
func ParseRequest(buf []byte, headers []Header, lastLen int) (req Request, n int, err error) {
	if err = checkComplete(buf, lastLen, false); err != nil {
		return req, 0, err
	}

	var i int
	// some clients send an extra CRLF after the body of a previous request
	if i, err = skipEmptyLine(buf, 0); err != nil {
		return req, 0, err
	}

	start := i
	for ; ; i++ {
		if i >= len(buf) {
			return req, 0, errors.ErrIncomplete
		}

		if !ascii.IsToken(buf[i]) {
			break
		}
	}

	if i == start || buf[i] != ' ' {
		return req, 0, errors.ErrBadMethod
	}

	req.Method = buf[start:i:i]
	i++

	start = i
	for ; ; i++ {
		if i >= len(buf) {
			return req, 0, errors.ErrIncomplete
		}

		if !ascii.IsTarget(buf[i]) {
			break
		}
	}

	if i == start || buf[i] != ' ' {
		return req, 0, errors.ErrBadRequestTarget
	}

	req.Path = buf[start:i:i]
	i++

	if req.Minor, i, err = parseVersion(buf, i); err != nil {
		return req, 0, err
	}

	if i, err = expectEOL(buf, i, errors.ErrBadVersion); err != nil {
		return req, 0, err
	}

	if req.Headers, n, err = parseHeaders(buf, i, headers[:0]); err != nil {
		return req, 0, err
	}

	return req, n, nil
}

// ParseResponse parses a status line and the header block following it. The result
// convention and the meaning of lastLen are the same as in ParseRequest.
func ParseResponse(buf []byte, headers []Header, lastLen int) (resp Response, n int, err error) {
	if err = checkComplete(buf, lastLen, false); err != nil {
		return resp, 0, err
	}

	var i int
	if resp.Minor, i, err = parseVersion(buf, 0); err != nil {
		return resp, 0, err
	}

	if i >= len(buf) {
		return resp, 0, errors.ErrIncomplete
	}

	if buf[i] != ' ' {
		return resp, 0, errors.ErrBadVersion
	}

	i++

	for end := i + 3; i < end; i++ {
		if i >= len(buf) {
			return resp, 0, errors.ErrIncomplete
		}

		if !ascii.IsDigit(buf[i]) {
			return resp, 0, errors.ErrBadStatus
		}

		resp.Status = resp.Status*10 + int(buf[i]-'0')
	}

	if i >= len(buf) {
		return resp, 0, errors.ErrIncomplete
	}

	switch buf[i] {
	case '\r', '\n':
		// the reason phrase is mandatory by the grammar, but many servers omit it
		resp.Reason = buf[i:i]
		if i, err = expectEOL(buf, i, errors.ErrBadReason); err != nil {
			return resp, 0, err
		}
	case ' ':
		var reason []byte
		if reason, i, err = scanLine(buf, i+1, errors.ErrBadReason); err != nil {
			return resp, 0, err
		}

		for len(reason) > 0 && ascii.IsSpace(reason[0]) {
			reason = reason[1:]
		}

		resp.Reason = reason
	default:
		return resp, 0, errors.ErrBadStatus
	}

	if resp.Headers, n, err = parseHeaders(buf, i, headers[:0]); err != nil {
		return resp, 0, err
	}

	return resp, n, nil
}

// ParseHeaders parses a bare header block, e.g. a trailer section or a nested message.
// The result convention and the meaning of lastLen are the same as in ParseRequest.
func ParseHeaders(buf []byte, headers []Header, lastLen int) (Headers, int, error) {
	if err := checkComplete(buf, lastLen, true); err != nil {
		return nil, 0, err
	}

	hdrs, n, err := parseHeaders(buf, 0, headers[:0])
	if err != nil {
		return nil, 0, err
	}

	return hdrs, n, nil
}

func parseHeaders(buf []byte, i int, headers Headers) (Headers, int, error) {
	for {
		if i >= len(buf) {
			return nil, 0, errors.ErrIncomplete
		}

		switch buf[i] {
		case '\r':
			if i+1 >= len(buf) {
				return nil, 0, errors.ErrIncomplete
			}

			if buf[i+1] != '\n' {
				return nil, 0, errors.ErrBadLineEnding
			}

			return headers, i + 2, nil
		case '\n':
			return headers, i + 1, nil
		}

		if len(headers) == cap(headers) {
			return nil, 0, errors.ErrTooManyHeaders
		}

		var name []byte

		if ascii.IsSpace(buf[i]) {
			if len(headers) == 0 {
				return nil, 0, errors.ErrUnexpectedContinuation
			}
		} else {
			start := i
			for ; ; i++ {
				if i >= len(buf) {
					return nil, 0, errors.ErrIncomplete
				}

				if !ascii.IsToken(buf[i]) {
					break
				}
			}

			// whitespace between the name and the colon is rejected on purpose, see RFC 9112 5.1
			if i == start || buf[i] != ':' {
				return nil, 0, errors.ErrBadHeaderName
			}

			name = buf[start:i:i]
			i++
		}

		value, next, err := scanLine(buf, i, errors.ErrBadHeaderValue)
		if err != nil {
			return nil, 0, err
		}

		headers = append(headers, Header{
			Name:  name,
			Value: ascii.TrimSpace(value),
		})
		i = next
	}
}

// scanLine returns the bytes until the end of the line, which is CRLF or a bare LF,
// and the offset right after it. Any control character except HTAB results in bad.
func scanLine(buf []byte, i int, bad error) (line []byte, next int, err error) {
	start := i

	for ; i < len(buf); i++ {
		c := buf[i]
		if ascii.IsValue(c) {
			continue
		}

		switch c {
		case '\r':
			if i+1 >= len(buf) {
				return nil, 0, errors.ErrIncomplete
			}

			if buf[i+1] != '\n' {
				return nil, 0, errors.ErrBadLineEnding
			}

			return buf[start:i:i], i + 2, nil
		case '\n':
			return buf[start:i:i], i + 1, nil
		default:
			return nil, 0, bad
		}
	}

	return nil, 0, errors.ErrIncomplete
}

func parseVersion(buf []byte, i int) (minor, next int, err error) {
	rest := buf[i:]
	n := min(len(rest), len(versionPrefix))
	if string(rest[:n]) != versionPrefix[:n] {
		return 0, 0, errors.ErrBadVersion
	}

	if len(rest) <= len(versionPrefix) {
		return 0, 0, errors.ErrIncomplete
	}

	digit := rest[len(versionPrefix)]
	if !ascii.IsDigit(digit) {
		return 0, 0, errors.ErrBadVersion
	}

	return int(digit - '0'), i + len(versionPrefix) + 1, nil
}

// expectEOL consumes exactly one line ending at i. Anything else results in bad.
func expectEOL(buf []byte, i int, bad error) (int, error) {
	if i >= len(buf) {
		return 0, errors.ErrIncomplete
	}

	switch buf[i] {
	case '\r':
		if i+1 >= len(buf) {
			return 0, errors.ErrIncomplete
		}

		if buf[i+1] != '\n' {
			return 0, errors.ErrBadLineEnding
		}

		return i + 2, nil
	case '\n':
		return i + 1, nil
	default:
		return 0, bad
	}
}

func skipEmptyLine(buf []byte, i int) (int, error) {
	if i >= len(buf) {
		return 0, errors.ErrIncomplete
	}

	switch buf[i] {
	case '\r', '\n':
		return expectEOL(buf, i, errors.ErrBadLineEnding)
	default:
		return i, nil
	}
}

// checkComplete is a shortcut for retries: if the header block couldn't end within the
// newly arrived bytes, there's no point in re-parsing the whole buffer. Two consecutive
// line endings are looked for starting 3 bytes before lastLen, as the previous attempt
// might have stopped in the middle of them. A lastLen out of [1, len(buf)] disables
// the shortcut. A bare header block has no start line, so with leadingEOL its very
// beginning counts as a line ending.
func checkComplete(buf []byte, lastLen int, leadingEOL bool) error {
	if lastLen <= 0 || lastLen > len(buf) {
		return nil
	}

	start := max(lastLen-3, 0)
	lineEnds := 0
	if leadingEOL && start == 0 {
		lineEnds = 1
	}

	for i := start; i < len(buf); i++ {
		switch buf[i] {
		case '\r':
			if i+1 >= len(buf) {
				return errors.ErrIncomplete
			}

			if buf[i+1] != '\n' {
				return errors.ErrBadLineEnding
			}

			i++
			lineEnds++
		case '\n':
			lineEnds++
		default:
			lineEnds = 0
		}

		if lineEnds == 2 {
			return nil
		}
	}

	return errors.ErrIncomplete
}
