package chunked

import (
	"github.com/indigo-web/pico/errors"
	"github.com/indigo-web/pico/internal/ascii"
	"github.com/indigo-web/pico/internal/hexconv"
)

type decoderState uint8

const (
	eChunkSize decoderState = iota
	eChunkSizeWS
	eChunkExt
	eChunkSizeCR
	eChunkData
	eChunkDataDone
	eChunkDataCR
	eTrailerFirstLine
	eTrailerLine
	eTrailerName
	eTrailerValue
	eTrailerValueCR
	eTrailerEndCR
	eDone
)

// maxChunkSizeDigits keeps the chunk size within uint64. Leading zeroes count, too.
const maxChunkSizeDigits = 16

// Decoder strips the chunked transfer-coding from a body, rewriting the buffer in place.
// The zero value is ready to use; set ConsumeTrailer before the first call if needed.
//
// A Decoder belongs to exactly one body at a time. It must be fed with the body bytes
// in order of their arrival and must not be modified between the calls.
type Decoder struct {
	// ConsumeTrailer controls whether the trailer section is validated and discarded.
	// Otherwise, decoding completes right after the last-chunk line, so the trailer
	// fields and the terminating empty line are left undecoded.
	ConsumeTrailer bool
	hexCount       uint8
	state          decoderState
	bytesLeft      uint64
}

// NewDecoder returns a decoder with the given trailer policy.
func NewDecoder(consumeTrailer bool) *Decoder {
	return &Decoder{ConsumeTrailer: consumeTrailer}
}

// Decode consumes chunked data from buf and moves the payload into its beginning, so
// buf[:n] is the decoded payload found in this call.
//
// errors.ErrIncomplete means that the body isn't over yet. Every byte of buf has been
// consumed by then, so only buf[:n] must be kept, and the following bytes are fed
// with the next call. On completion err is nil and rest is the number of bytes past
// the end of the body, which were moved to buf[n:n+rest]. Any other error means the
// framing is malformed, so the body can't be decoded any further.
func (d *Decoder) Decode(buf []byte) (n, rest int, err error) {
	var src, dst int
	err = errors.ErrIncomplete

loop:
	for {
		switch d.state {
		case eChunkSize:
			for ; ; src++ {
				if src == len(buf) {
					break loop
				}

				v := hexconv.Halfbyte[buf[src]]
				if v == 0xFF {
					break
				}

				if d.hexCount == maxChunkSizeDigits {
					err = errors.ErrChunkTooLarge
					break loop
				}

				d.bytesLeft = (d.bytesLeft << 4) | uint64(v)
				d.hexCount++
			}

			if d.hexCount == 0 {
				err = errors.ErrBadChunk
				break loop
			}

			d.hexCount = 0

			switch buf[src] {
			case ';':
				d.state = eChunkExt
			case ' ', '\t':
				d.state = eChunkSizeWS
			case '\r':
				d.state = eChunkSizeCR
			case '\n':
				if d.sizeLineDone() {
					src++
					err = nil
					break loop
				}
			default:
				err = errors.ErrBadChunk
				break loop
			}

			src++
		case eChunkSizeWS:
			if src == len(buf) {
				break loop
			}

			switch buf[src] {
			case ' ', '\t':
			case ';':
				d.state = eChunkExt
			case '\r':
				d.state = eChunkSizeCR
			case '\n':
				if d.sizeLineDone() {
					src++
					err = nil
					break loop
				}
			default:
				err = errors.ErrBadChunk
				break loop
			}

			src++
		case eChunkExt:
			// extensions are not supported, so they're skipped completely. Line folding
			// is prohibited in them, see RFC 9112 7.1.1
			for ; ; src++ {
				if src == len(buf) {
					break loop
				}

				if c := buf[src]; c == '\r' || c == '\n' {
					break
				}
			}

			if buf[src] == '\r' {
				d.state = eChunkSizeCR
				src++
				break
			}

			src++
			if d.sizeLineDone() {
				err = nil
				break loop
			}
		case eChunkSizeCR:
			if src == len(buf) {
				break loop
			}

			if buf[src] != '\n' {
				err = errors.ErrBadChunk
				break loop
			}

			src++
			if d.sizeLineDone() {
				err = nil
				break loop
			}
		case eChunkData:
			avail := len(buf) - src
			if uint64(avail) < d.bytesLeft {
				copy(buf[dst:], buf[src:])
				src += avail
				dst += avail
				d.bytesLeft -= uint64(avail)
				break loop
			}

			size := int(d.bytesLeft)
			copy(buf[dst:dst+size], buf[src:src+size])
			src += size
			dst += size
			d.bytesLeft = 0
			d.state = eChunkDataDone
		case eChunkDataDone:
			if src == len(buf) {
				break loop
			}

			switch buf[src] {
			case '\r':
				d.state = eChunkDataCR
			case '\n':
				d.state = eChunkSize
			default:
				err = errors.ErrBadChunk
				break loop
			}

			src++
		case eChunkDataCR:
			if src == len(buf) {
				break loop
			}

			if buf[src] != '\n' {
				err = errors.ErrBadChunk
				break loop
			}

			src++
			d.state = eChunkSize
		case eTrailerFirstLine, eTrailerLine:
			if src == len(buf) {
				break loop
			}

			switch c := buf[src]; {
			case c == '\r':
				d.state = eTrailerEndCR
			case c == '\n':
				d.state = eDone
				src++
				err = nil
				break loop
			case ascii.IsSpace(c):
				// obs-fold can't be the very first line
				if d.state == eTrailerFirstLine {
					err = errors.ErrBadTrailer
					break loop
				}

				d.state = eTrailerValue
			case ascii.IsToken(c):
				d.state = eTrailerName
			default:
				err = errors.ErrBadTrailer
				break loop
			}

			src++
		case eTrailerName:
			for ; ; src++ {
				if src == len(buf) {
					break loop
				}

				if !ascii.IsToken(buf[src]) {
					break
				}
			}

			if buf[src] != ':' {
				err = errors.ErrBadTrailer
				break loop
			}

			src++
			d.state = eTrailerValue
		case eTrailerValue:
			for ; ; src++ {
				if src == len(buf) {
					break loop
				}

				if !ascii.IsValue(buf[src]) {
					break
				}
			}

			switch buf[src] {
			case '\r':
				d.state = eTrailerValueCR
			case '\n':
				d.state = eTrailerLine
			default:
				err = errors.ErrBadTrailer
				break loop
			}

			src++
		case eTrailerValueCR:
			if src == len(buf) {
				break loop
			}

			if buf[src] != '\n' {
				err = errors.ErrBadTrailer
				break loop
			}

			src++
			d.state = eTrailerLine
		case eTrailerEndCR:
			if src == len(buf) {
				break loop
			}

			if buf[src] != '\n' {
				err = errors.ErrBadTrailer
				break loop
			}

			src++
			d.state = eDone
			err = nil
			break loop
		case eDone:
			err = errors.ErrDecoderDone
			break loop
		default:
			panic("BUG: chunked decoder: unknown state")
		}
	}

	if err == nil {
		rest = copy(buf[dst:], buf[src:])
	}

	return dst, rest, err
}

// sizeLineDone picks the state following a complete chunk-size line. It reports whether
// the body is over.
func (d *Decoder) sizeLineDone() (done bool) {
	switch {
	case d.bytesLeft > 0:
		d.state = eChunkData
	case d.ConsumeTrailer:
		d.state = eTrailerFirstLine
	default:
		d.state = eDone
		return true
	}

	return false
}

// InData reports whether the decoder is in the middle of chunk data, as opposed to the
// framing (chunk-size lines, line endings or the trailer section).
func (d *Decoder) InData() bool {
	return d.state == eChunkData
}

// BytesLeft returns how many bytes of the current chunk's data are yet to come.
func (d *Decoder) BytesLeft() uint64 {
	return d.bytesLeft
}

// Done reports whether the whole body has been decoded.
func (d *Decoder) Done() bool {
	return d.state == eDone
}

// Reset prepares the decoder for a new body. The trailer policy is preserved.
func (d *Decoder) Reset() {
	*d = Decoder{ConsumeTrailer: d.ConsumeTrailer}
}
