// Package header implements the fixed 128-byte frame header that precedes
// every steganographic payload body.
package header

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
)

// Size is the total length in bytes of a serialized Header.
const Size = 128

// Magic is the constant 4-byte ASCII marker at offset 0.
var Magic = [4]byte{'S', 'P', 'N', 'G'}

// CurrentVersion is the version this package writes.
const CurrentVersion uint8 = 1

const (
	flagEncrypted  uint8 = 1 << 0
	flagCompressed uint8 = 1 << 1
)

const extensionFieldSize = 8

// ErrMalformed means fewer than Size bytes were extractable, or the magic
// bytes did not match.
var ErrMalformed = errors.New("header: malformed or truncated")

// ErrVersionUnknown is a non-fatal warning: the header's version field is
// not CurrentVersion. Callers may continue processing.
var ErrVersionUnknown = errors.New("header: unknown version")

// Header is the decoded representation of the 128-byte frame header
// described in spec §3.
type Header struct {
	Version     uint8
	Encrypted   bool
	Compressed  bool
	PayloadLen  uint64
	Timestamp   uint64
	Hash        [32]byte
	Extension   string
}

// New builds a Header ready for serialization. Compressed is always true,
// per the invariant that the body is never stored without deflate.
func New(payloadLen uint64, encrypted bool, timestamp uint64, hash [32]byte, extension string) Header {
	return Header{
		Version:    CurrentVersion,
		Encrypted:  encrypted,
		Compressed: true,
		PayloadLen: payloadLen,
		Timestamp:  timestamp,
		Hash:       hash,
		Extension:  extension,
	}
}

// Serialize packs h into a zero-padded 128-byte little-endian buffer.
func (h Header) Serialize() [Size]byte {
	var buf [Size]byte
	copy(buf[0:4], Magic[:])
	binary.LittleEndian.PutUint64(buf[4:12], h.PayloadLen)
	buf[12] = h.Version
	var flags uint8
	if h.Encrypted {
		flags |= flagEncrypted
	}
	// Compressed is always set; the design never produces an
	// uncompressed body.
	flags |= flagCompressed
	buf[13] = flags
	binary.LittleEndian.PutUint64(buf[14:22], h.Timestamp)
	copy(buf[22:54], h.Hash[:])

	ext := []byte(h.Extension)
	if len(ext) > extensionFieldSize {
		ext = ext[:extensionFieldSize]
	}
	copy(buf[54:54+len(ext)], ext)
	// buf[54+len(ext):62] and buf[62:128] (reserved) stay zero.
	return buf
}

// Parse decodes a 128-byte buffer into a Header. When the version field
// isn't CurrentVersion, a valid Header is returned alongside an error
// wrapping ErrVersionUnknown (match it with errors.Is) — this is a
// warning, not a fatal error, and callers that don't care may discard it.
func Parse(buf []byte) (Header, error) {
	if len(buf) < Size {
		return Header{}, fmt.Errorf("%w: got %d bytes, need %d", ErrMalformed, len(buf), Size)
	}
	if !bytes.Equal(buf[0:4], Magic[:]) {
		return Header{}, fmt.Errorf("%w: bad magic %q", ErrMalformed, buf[0:4])
	}

	var h Header
	h.PayloadLen = binary.LittleEndian.Uint64(buf[4:12])
	h.Version = buf[12]
	flags := buf[13]
	h.Encrypted = flags&flagEncrypted != 0
	h.Compressed = flags&flagCompressed != 0
	h.Timestamp = binary.LittleEndian.Uint64(buf[14:22])
	copy(h.Hash[:], buf[22:54])

	extRaw := buf[54 : 54+extensionFieldSize]
	if nul := bytes.IndexByte(extRaw, 0); nul >= 0 {
		h.Extension = string(extRaw[:nul])
	} else {
		h.Extension = string(extRaw)
	}

	if h.Version != CurrentVersion {
		return h, fmt.Errorf("%w: got %d, expected %d", ErrVersionUnknown, h.Version, CurrentVersion)
	}
	return h, nil
}
