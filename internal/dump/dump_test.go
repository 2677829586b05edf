package dump

import (
	"bytes"
	"io"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/indigo-web/pico/config"
	"github.com/indigo-web/pico/errors"
	json "github.com/json-iterator/go"
	"github.com/stretchr/testify/require"
)

func TestRead(t *testing.T) {
	cfg := config.Default()

	t.Run("request without body", func(t *testing.T) {
		raw := "GET /index.html HTTP/1.1\r\nHost: localhost\r\n\r\n"
		msg, err := Read(strings.NewReader(raw), cfg, KindRequest)
		require.NoError(t, err)
		require.Equal(t, KindRequest, msg.Kind)
		require.Equal(t, "GET", msg.Method)
		require.Equal(t, "/index.html", msg.Path)
		require.Equal(t, 1, msg.Minor)
		require.Equal(t, []Header{{Name: "Host", Value: "localhost"}}, msg.Headers)
		require.Equal(t, len(raw), msg.Consumed)
		require.Empty(t, msg.Body)
		require.Zero(t, msg.Tail)
	})

	t.Run("byte by byte", func(t *testing.T) {
		raw := "POST / HTTP/1.1\r\nContent-Length: 5\r\nX-Folded: a\r\n b\r\n\r\nhello"
		msg, err := Read(iotest.OneByteReader(strings.NewReader(raw)), cfg, KindRequest)
		require.NoError(t, err)
		require.Equal(t, "hello", msg.Body)
		require.Equal(t, []Header{
			{Name: "Content-Length", Value: "5"},
			{Name: "X-Folded", Value: "a"},
			{Value: "b", Continuation: true},
		}, msg.Headers)
	})

	t.Run("chunked request", func(t *testing.T) {
		raw := "POST / HTTP/1.1\r\nTransfer-Encoding: gzip, chunked\r\n\r\n4\r\nWiki\r\n5\r\npedia\r\n0\r\n\r\nGET"
		for _, reader := range []io.Reader{
			strings.NewReader(raw),
			iotest.OneByteReader(strings.NewReader(raw)),
			iotest.HalfReader(strings.NewReader(raw)),
		} {
			msg, err := Read(reader, cfg, KindRequest)
			require.NoError(t, err)
			require.True(t, msg.Chunked)
			require.Equal(t, "Wikipedia", msg.Body)
		}

		msg, err := Read(strings.NewReader(raw), cfg, KindRequest)
		require.NoError(t, err)
		require.Equal(t, len("GET"), msg.Tail)
	})

	t.Run("chunked response with trailer", func(t *testing.T) {
		raw := "HTTP/1.1 200 OK\r\ntransfer-encoding: CHUNKED\r\n\r\n3\r\nabc\r\n0\r\nExpires: never\r\n\r\n"
		msg, err := Read(strings.NewReader(raw), cfg, KindResponse)
		require.NoError(t, err)
		require.Equal(t, KindResponse, msg.Kind)
		require.Equal(t, 200, msg.Status)
		require.Equal(t, "OK", msg.Reason)
		require.Equal(t, "abc", msg.Body)
		require.Zero(t, msg.Tail)
	})

	t.Run("trailer left undecoded", func(t *testing.T) {
		keep := config.Default()
		keep.Chunked.ConsumeTrailer = false
		trailer := "Expires: never\r\n\r\n"
		raw := "POST / HTTP/1.1\r\nTransfer-Encoding: chunked\r\n\r\n3\r\nabc\r\n0\r\n" + trailer

		msg, err := Read(strings.NewReader(raw), keep, KindRequest)
		require.NoError(t, err)
		require.Equal(t, "abc", msg.Body)
		require.Equal(t, len(trailer), msg.Tail)

		// only the bytes read so far count
		msg, err = Read(iotest.OneByteReader(strings.NewReader(raw)), keep, KindRequest)
		require.NoError(t, err)
		require.Equal(t, "abc", msg.Body)
		require.Zero(t, msg.Tail)
	})

	t.Run("response until EOF", func(t *testing.T) {
		raw := "HTTP/1.0 200 OK\r\n\r\nhello, world"
		msg, err := Read(iotest.OneByteReader(strings.NewReader(raw)), cfg, KindResponse)
		require.NoError(t, err)
		require.Equal(t, "hello, world", msg.Body)
	})

	t.Run("bodyless response", func(t *testing.T) {
		raw := "HTTP/1.1 304 Not Modified\r\n\r\nHTTP/1.1"
		msg, err := Read(strings.NewReader(raw), cfg, KindResponse)
		require.NoError(t, err)
		require.Empty(t, msg.Body)
		require.Equal(t, len("HTTP/1.1"), msg.Tail)
	})

	t.Run("sized with tail", func(t *testing.T) {
		raw := "POST / HTTP/1.1\r\nContent-Length: 2\r\n\r\nhiGET"
		msg, err := Read(strings.NewReader(raw), cfg, KindRequest)
		require.NoError(t, err)
		require.Equal(t, "hi", msg.Body)
		require.Equal(t, 3, msg.Tail)
	})

	t.Run("truncated head", func(t *testing.T) {
		_, err := Read(strings.NewReader("GET / HTTP/1.1\r\nHost: a"), cfg, KindRequest)
		require.ErrorIs(t, err, io.ErrUnexpectedEOF)
	})

	t.Run("truncated chunked body", func(t *testing.T) {
		raw := "POST / HTTP/1.1\r\nTransfer-Encoding: chunked\r\n\r\n4\r\nWi"
		_, err := Read(strings.NewReader(raw), cfg, KindRequest)
		require.ErrorIs(t, err, io.ErrUnexpectedEOF)
	})

	t.Run("truncated sized body", func(t *testing.T) {
		raw := "POST / HTTP/1.1\r\nContent-Length: 10\r\n\r\nhi"
		_, err := Read(strings.NewReader(raw), cfg, KindRequest)
		require.ErrorIs(t, err, io.ErrUnexpectedEOF)
	})

	t.Run("bad content length", func(t *testing.T) {
		raw := "POST / HTTP/1.1\r\nContent-Length: -1\r\n\r\n"
		_, err := Read(strings.NewReader(raw), cfg, KindRequest)
		require.ErrorIs(t, err, ErrBadContentLength)
	})

	t.Run("malformed", func(t *testing.T) {
		_, err := Read(strings.NewReader("GET / HTTP/1.1\r\nHost : a\r\n\r\n"), cfg, KindRequest)
		require.ErrorIs(t, err, errors.ErrBadHeaderName)

		raw := "POST / HTTP/1.1\r\nTransfer-Encoding: chunked\r\n\r\nzz\r\n"
		_, err = Read(strings.NewReader(raw), cfg, KindRequest)
		require.ErrorIs(t, err, errors.ErrBadChunk)
	})

	t.Run("head too large", func(t *testing.T) {
		small := config.Default()
		small.Buffer.Size.Default = 16
		small.Buffer.Size.Maximal = 64
		small.Buffer.ReadSize = 8
		raw := "GET / HTTP/1.1\r\nX-Long: " + strings.Repeat("a", 100) + "\r\n\r\n"
		_, err := Read(strings.NewReader(raw), small, KindRequest)
		require.ErrorIs(t, err, ErrHeadTooLarge)
	})

	t.Run("buffer grows", func(t *testing.T) {
		small := config.Default()
		small.Buffer.Size.Default = 16
		small.Buffer.ReadSize = 8
		raw := "GET / HTTP/1.1\r\nX-Long: " + strings.Repeat("a", 100) + "\r\n\r\n"
		msg, err := Read(strings.NewReader(raw), small, KindRequest)
		require.NoError(t, err)
		require.Equal(t, strings.Repeat("a", 100), msg.Headers[0].Value)
	})
}

func TestJSON(t *testing.T) {
	msg := Message{
		Kind:     KindResponse,
		Minor:    1,
		Status:   200,
		Reason:   "OK",
		Headers:  []Header{{Name: "Host", Value: "a"}, {Value: "b", Continuation: true}},
		Consumed: 42,
	}

	var out bytes.Buffer
	require.NoError(t, JSON(&out, msg))
	require.True(t, strings.HasSuffix(out.String(), "\n"))

	var decoded Message
	require.NoError(t, json.Unmarshal(out.Bytes(), &decoded))
	require.Equal(t, msg, decoded)
	require.Contains(t, out.String(), `"continuation":true`)
	require.NotContains(t, out.String(), `"method"`)
}
