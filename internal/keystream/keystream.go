// Package keystream implements the two-layer symmetric XOR cipher used to
// protect the compressed payload body: a deterministic ChaCha8 keystream
// seeded by the header timestamp, optionally combined with a physical
// key-file XOR applied on top.
package keystream

import (
	"encoding/binary"
	"io"

	"nullprogram.com/x/chacha"
)

const (
	chachaRounds = 8
	chachaKeyLen = 32
	chachaIVLen  = 8
)

// Cipher XORs data against the ChaCha8 keystream derived from a 64-bit
// seed, then XORs the result against bytes read sequentially from an
// optional key file. Both directions (encrypt/decrypt) use XORKeyStream,
// since XOR streams are their own inverse: Cipher(Cipher(x)) == x given
// the same seed and key reader.
//
// The key reader is consumed left to right and never rewound or cycled —
// once it reaches EOF, the remaining body bytes skip the physical layer
// (the algorithmic layer still applies). This is a deliberate
// non-repeating choice, not an oversight.
type Cipher struct {
	algo *chacha.Cipher
	key  io.Reader
	// keyBuf is scratch space for the physical key layer, sized to the
	// caller's configured buffer so a single Cipher never allocates more
	// per call than the rest of the pipeline does.
	keyBuf []byte
	keyEOF bool
}

// New builds a Cipher seeded by timestamp. key may be nil, meaning no
// physical key layer is applied. bufferSize bounds the internal
// scratch buffer used when draining the key reader.
func New(timestamp uint64, key io.Reader, bufferSize int) *Cipher {
	if bufferSize <= 0 {
		bufferSize = 64 * 1024
	}
	var seedKey [chachaKeyLen]byte
	binary.LittleEndian.PutUint64(seedKey[0:8], timestamp)
	// The remaining 24 key bytes and 8 IV bytes stay zero: the
	// specification defines the seed as the single 64-bit timestamp,
	// so the rest of the ChaCha key material is a fixed constant
	// rather than further entropy.
	var iv [chachaIVLen]byte

	return &Cipher{
		algo:   chacha.New(seedKey[:], iv[:], chachaRounds),
		key:    key,
		keyBuf: make([]byte, bufferSize),
	}
}

// Transform XORs src into dst in place semantics (dst may alias src).
// len(dst) must equal len(src).
func (c *Cipher) Transform(dst, src []byte) {
	c.algo.XORKeyStream(dst, src)
	c.applyKeyLayer(dst)
}

// applyKeyLayer XORs the physical key-file bytes over buf, stopping
// silently (leaving the remainder untouched) once the key reader is
// exhausted.
func (c *Cipher) applyKeyLayer(buf []byte) {
	if c.key == nil || c.keyEOF {
		return
	}
	off := 0
	for off < len(buf) {
		chunk := c.keyBuf
		if want := len(buf) - off; want < len(chunk) {
			chunk = chunk[:want]
		}
		n, err := c.key.Read(chunk)
		for i := 0; i < n; i++ {
			buf[off+i] ^= chunk[i]
		}
		off += n
		if err != nil {
			c.keyEOF = true
			return
		}
	}
}
