package config

import (
	"github.com/indigo-web/pico/chunked"
	"github.com/indigo-web/pico/http1"
)

type (
	BufferSize struct {
		Default, Maximal int
	}
)

type (
	Headers struct {
		// MaxNumber is the number of header slots handed to the parser. Messages carrying
		// more fields than that are rejected as malformed.
		MaxNumber int
	}

	Buffer struct {
		// ReadSize is how many bytes are requested from the reader at once.
		ReadSize int
		// Size limits the buffer holding the message head. The buffer starts at the
		// default size and doubles until the maximal one is reached.
		Size BufferSize
	}

	Chunked struct {
		// ConsumeTrailer defines whether the trailer section of chunked bodies is
		// validated and discarded, or is left after the body as undecoded bytes.
		ConsumeTrailer bool
	}
)

// Config holds limits and policies used by the callers of the engine. The engine itself
// is configured purely through arguments; the Config only tells what these arguments are.
//
// You must ALWAYS modify defaults (returned via Default()) and NEVER try to initialize the
// config manually.
type Config struct {
	Headers Headers
	Buffer  Buffer
	Chunked Chunked
}

// Default returns default config.
func Default() *Config {
	return &Config{
		Headers: Headers{
			MaxNumber: 100,
		},
		Buffer: Buffer{
			ReadSize: 4 * 1024,
			Size: BufferSize{
				Default: 4 * 1024,
				// the head of the message must fit into it entirely, so that's the
				// effective limit of the request line and the header block together.
				Maximal: 64 * 1024,
			},
		},
		Chunked: Chunked{
			ConsumeTrailer: true,
		},
	}
}

// HeaderSlots allocates the array the parser stores header fields in. It can be reused
// across messages as soon as the previous results aren't needed anymore.
func (c *Config) HeaderSlots() []http1.Header {
	return make([]http1.Header, 0, c.Headers.MaxNumber)
}

// NewDecoder returns a fresh chunked body decoder following the trailer policy.
func (c *Config) NewDecoder() *chunked.Decoder {
	return chunked.NewDecoder(c.Chunked.ConsumeTrailer)
}
