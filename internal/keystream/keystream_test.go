package keystream

import (
	"bytes"
	"strings"
	"testing"
)

func TestEncryptDecryptSymmetryNoKey(t *testing.T) {
	plain := []byte("the quick brown fox jumps over the lazy dog, 1234567890")

	enc := New(42, nil, 0)
	cipherText := make([]byte, len(plain))
	enc.Transform(cipherText, plain)

	dec := New(42, nil, 0)
	decoded := make([]byte, len(cipherText))
	dec.Transform(decoded, cipherText)

	if !bytes.Equal(decoded, plain) {
		t.Fatalf("round trip mismatch: got %q want %q", decoded, plain)
	}
	if bytes.Equal(cipherText, plain) {
		t.Fatal("ciphertext equals plaintext — cipher did nothing")
	}
}

func TestEncryptDecryptSymmetryWithKeyFile(t *testing.T) {
	plain := bytes.Repeat([]byte{0xAB}, 300)
	keyMaterial := strings.Repeat("k", 32)

	enc := New(7, strings.NewReader(keyMaterial), 16)
	cipherText := make([]byte, len(plain))
	enc.Transform(cipherText, plain)

	dec := New(7, strings.NewReader(keyMaterial), 16)
	decoded := make([]byte, len(cipherText))
	dec.Transform(decoded, cipherText)

	if !bytes.Equal(decoded, plain) {
		t.Fatalf("round trip mismatch with key file")
	}
}

func TestKeyFileShorterThanBodyStopsWithoutCycling(t *testing.T) {
	plain := bytes.Repeat([]byte{0x11}, 100)
	shortKey := "short-key" // much shorter than plain

	enc := New(1, strings.NewReader(shortKey), 4)
	cipherText := make([]byte, len(plain))
	enc.Transform(cipherText, plain)

	// Decoding with an identical (fresh) reader over the same short key
	// must reproduce the plaintext bit-for-bit: once the key reader is
	// exhausted, both sides silently stop applying the physical layer at
	// the same offset, and the algorithmic layer alone remains
	// reversible.
	dec := New(1, strings.NewReader(shortKey), 4)
	decoded := make([]byte, len(cipherText))
	dec.Transform(decoded, cipherText)

	if !bytes.Equal(decoded, plain) {
		t.Fatalf("short key-file round trip mismatch")
	}

	// Past the end of the key only the algorithmic layer applies, so the
	// tail must equal a key-less encryption under the same seed.
	algoOnly := make([]byte, len(plain))
	New(1, nil, 0).Transform(algoOnly, plain)
	if !bytes.Equal(cipherText[len(shortKey):], algoOnly[len(shortKey):]) {
		t.Fatal("key layer was applied past the end of the key file")
	}
}

func TestDifferentTimestampsProduceDifferentCiphertext(t *testing.T) {
	plain := []byte("identical plaintext")

	a := New(1, nil, 0)
	b := New(2, nil, 0)

	ca := make([]byte, len(plain))
	cb := make([]byte, len(plain))
	a.Transform(ca, plain)
	b.Transform(cb, plain)

	if bytes.Equal(ca, cb) {
		t.Fatal("different timestamps produced identical ciphertext")
	}
}
