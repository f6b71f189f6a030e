// Package compose implements the Compose stream producer: the logical
// byte sequence Header ‖ Body ‖ Pad that container writers consume one
// byte at a time.
package compose

import (
	"io"

	"github.com/sndpng/spng/internal/keystream"
)

// Stream presents the single primitive container writers need:
// NextByte. Header bytes are exhausted first, then refilled bytes from
// the payload body (encrypted through cipher as they're read), then an
// indefinite run of zero padding once the body is exhausted.
type Stream struct {
	header     []byte
	headerPos  int
	body       io.Reader
	cipher     *keystream.Cipher
	bodyLen    uint64
	bodyRead   uint64
	totalLen   uint64
	buf        []byte
	bufPos     int
	bufLen     int
	bodyDone   bool
}

// New builds a Stream. header must already be the fully serialized frame
// header (typically 128 bytes). body is the compressed payload source;
// bodyLen is its exact byte length (== header's PayloadLen). cipher may
// be nil, meaning the body passes through unencrypted. bufferSize bounds
// the internal refill buffer.
func New(header []byte, body io.Reader, bodyLen uint64, cipher *keystream.Cipher, bufferSize int) *Stream {
	if bufferSize <= 0 {
		bufferSize = 64 * 1024
	}
	return &Stream{
		header:   header,
		body:     body,
		cipher:   cipher,
		bodyLen:  bodyLen,
		totalLen: uint64(len(header)) + bodyLen,
		buf:      make([]byte, bufferSize),
	}
}

// TotalLen returns 128 + payload_len, the full length of the logical
// stream before indefinite zero padding begins. Plugins that need to
// pre-compute per-frame byte allotments (e.g. the sequence-of-frames
// carrier) call this before pulling any bytes.
func (s *Stream) TotalLen() uint64 {
	return s.totalLen
}

// NextByte yields the next byte of the logical stream. Once the body is
// exhausted it yields zero indefinitely; carrier writers keep pulling
// that padding to fill the rest of the cover, while a consumer that
// wants only the framed bytes stops after TotalLen() of them.
func (s *Stream) NextByte() byte {
	if s.headerPos < len(s.header) {
		b := s.header[s.headerPos]
		s.headerPos++
		return b
	}

	if s.bufPos < s.bufLen {
		b := s.buf[s.bufPos]
		s.bufPos++
		return b
	}

	if s.bodyDone || s.bodyRead >= s.bodyLen {
		s.bodyDone = true
		return 0
	}

	s.refill()
	if s.bufLen == 0 {
		s.bodyDone = true
		return 0
	}
	b := s.buf[0]
	s.bufPos = 1
	return b
}

func (s *Stream) refill() {
	want := s.buf
	if remaining := s.bodyLen - s.bodyRead; uint64(len(want)) > remaining {
		want = want[:remaining]
	}
	n, err := io.ReadFull(s.body, want)
	if n > 0 {
		if s.cipher != nil {
			s.cipher.Transform(want[:n], want[:n])
		}
		s.bufLen = n
		s.bufPos = 0
		s.bodyRead += uint64(n)
	} else {
		s.bufLen = 0
	}
	if err != nil {
		// Short read at end of stream is expected; the next refill
		// reads nothing (or bodyRead has reached bodyLen) and NextByte
		// pads with zero.
		_ = err
	}
}
