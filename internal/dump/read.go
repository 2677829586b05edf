package dump

import (
	"errors"
	"io"
	"strconv"
	"strings"

	"github.com/indigo-web/pico/config"
	picoerrors "github.com/indigo-web/pico/errors"
	"github.com/indigo-web/pico/http1"
	"github.com/indigo-web/utils/strcomp"
)

var (
	ErrHeadTooLarge     = errors.New("message head exceeds the buffer limit")
	ErrBadContentLength = errors.New("bad Content-Length value")
)

// Read reads a single message of the given kind from r, driving the parser over a
// growing buffer and then decoding the body, if any.
func Read(r io.Reader, cfg *config.Config, kind Kind) (Message, error) {
	var (
		buf      = make([]byte, 0, cfg.Buffer.Size.Default)
		slots    = cfg.HeaderSlots()
		lastLen  int
		msg      Message
		headers  http1.Headers
		consumed int
		err      error
	)

	for {
		if buf, err = fill(r, buf, cfg); err != nil && !errors.Is(err, io.EOF) {
			return msg, err
		}

		eof := err != nil

		switch kind {
		case KindResponse:
			var response http1.Response
			response, consumed, err = http1.ParseResponse(buf, slots, lastLen)
			msg, headers = Response(response, consumed), response.Headers
		default:
			var request http1.Request
			request, consumed, err = http1.ParseRequest(buf, slots, lastLen)
			msg, headers = Request(request, consumed), request.Headers
		}

		if err == nil {
			break
		}

		if picoerrors.KindOf(err) != picoerrors.Incomplete {
			return msg, err
		}

		if eof {
			return msg, io.ErrUnexpectedEOF
		}

		lastLen = len(buf)
	}

	rest := buf[consumed:]

	switch {
	case isChunked(headers):
		msg.Chunked = true
		err = readChunked(r, rest, cfg, &msg)
	case headers.Has("Content-Length"):
		err = readSized(r, rest, headers.Value("Content-Length"), &msg)
	case kind == KindResponse && !bodyless(msg.Status):
		// the body is delimited by the connection close
		var tail []byte
		tail, err = io.ReadAll(r)
		msg.Body = string(rest) + string(tail)
	default:
		msg.Tail = len(rest)
	}

	return msg, err
}

// fill reads the next portion into buf, growing it when it's full.
func fill(r io.Reader, buf []byte, cfg *config.Config) ([]byte, error) {
	if len(buf) == cap(buf) {
		if cap(buf) >= cfg.Buffer.Size.Maximal {
			return buf, ErrHeadTooLarge
		}

		grown := make([]byte, len(buf), min(max(cap(buf)*2, 1), cfg.Buffer.Size.Maximal))
		copy(grown, buf)
		buf = grown
	}

	end := min(len(buf)+cfg.Buffer.ReadSize, cap(buf))
	n, err := r.Read(buf[len(buf):end])

	return buf[:len(buf)+n], err
}

func readChunked(r io.Reader, data []byte, cfg *config.Config, msg *Message) error {
	var (
		decoder = cfg.NewDecoder()
		body    []byte
		scratch = make([]byte, cfg.Buffer.ReadSize)
	)

	for {
		n, rest, err := decoder.Decode(data)
		body = append(body, data[:n]...)

		switch {
		case err == nil:
			msg.Body, msg.Tail = string(body), rest
			return nil
		case picoerrors.KindOf(err) != picoerrors.Incomplete:
			return err
		}

		read, err := r.Read(scratch)
		if read == 0 && err != nil {
			if errors.Is(err, io.EOF) {
				return io.ErrUnexpectedEOF
			}

			return err
		}

		data = scratch[:read]
	}
}

func readSized(r io.Reader, data []byte, value string, msg *Message) error {
	length, err := strconv.ParseUint(value, 10, 63)
	if err != nil {
		return ErrBadContentLength
	}

	if uint64(len(data)) >= length {
		msg.Body, msg.Tail = string(data[:length]), len(data)-int(length)
		return nil
	}

	tail, err := io.ReadAll(io.LimitReader(r, int64(length)-int64(len(data))))
	if err != nil {
		return err
	}

	if uint64(len(data)+len(tail)) < length {
		return io.ErrUnexpectedEOF
	}

	msg.Body = string(data) + string(tail)

	return nil
}

// isChunked reports whether chunked is the final transfer coding.
func isChunked(headers http1.Headers) bool {
	var codings []string
	for _, value := range headers.Values(nil, "Transfer-Encoding") {
		codings = append(codings, strings.Split(value, ",")...)
	}

	if len(codings) == 0 {
		return false
	}

	return strcomp.EqualFold(strings.TrimSpace(codings[len(codings)-1]), "chunked")
}

func bodyless(status int) bool {
	return status/100 == 1 || status == 204 || status == 304
}
