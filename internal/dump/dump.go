package dump

import (
	"io"

	"github.com/indigo-web/iter"
	"github.com/indigo-web/pico/http1"
	json "github.com/json-iterator/go"
)

type Kind string

const (
	KindRequest  Kind = "request"
	KindResponse Kind = "response"
)

type Header struct {
	Name         string `json:"name,omitempty"`
	Value        string `json:"value"`
	Continuation bool   `json:"continuation,omitempty"`
}

// Message is a detached copy of a parsed message, so it stays valid after the
// buffer it was parsed from is gone.
//
// Tail is the number of bytes following the message that were already read from the
// source, e.g. a pipelined message or a trailer section left undecoded. Bytes the
// source still holds are not counted, so Tail depends on how the source splits its
// reads.
type Message struct {
	Kind     Kind     `json:"kind"`
	Method   string   `json:"method,omitempty"`
	Path     string   `json:"path,omitempty"`
	Minor    int      `json:"minor"`
	Status   int      `json:"status,omitempty"`
	Reason   string   `json:"reason,omitempty"`
	Headers  []Header `json:"headers"`
	Consumed int      `json:"consumed"`
	Chunked  bool     `json:"chunked,omitempty"`
	Body     string   `json:"body,omitempty"`
	Tail     int      `json:"tail"`
}

func Request(request http1.Request, consumed int) Message {
	return Message{
		Kind:     KindRequest,
		Method:   string(request.Method),
		Path:     string(request.Path),
		Minor:    request.Minor,
		Headers:  headers(request.Headers),
		Consumed: consumed,
	}
}

func Response(response http1.Response, consumed int) Message {
	return Message{
		Kind:     KindResponse,
		Minor:    response.Minor,
		Status:   response.Status,
		Reason:   string(response.Reason),
		Headers:  headers(response.Headers),
		Consumed: consumed,
	}
}

func headers(hdrs http1.Headers) []Header {
	return iter.Extract(iter.Map(detach, hdrs.Iter()), make([]Header, 0, len(hdrs)))
}

func detach(h http1.Header) Header {
	return Header{
		Name:         string(h.Name),
		Value:        string(h.Value),
		Continuation: h.IsContinuation(),
	}
}

// JSON writes the message as a single JSON object.
func JSON(w io.Writer, m Message) error {
	stream := json.ConfigDefault.BorrowStream(w)
	stream.WriteVal(m)
	stream.WriteRaw("\n")
	err := stream.Flush()
	json.ConfigDefault.ReturnStream(stream)

	return err
}
