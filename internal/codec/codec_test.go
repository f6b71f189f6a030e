package codec

import (
	"bytes"
	"image"
	"image/color"
	stdpng "image/png"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

func writePNGCover(t *testing.T, dir string, w, h int, fill color.NRGBA) string {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, fill)
		}
	}
	path := filepath.Join(dir, "cover.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create cover: %v", err)
	}
	defer f.Close()
	if err := stdpng.Encode(f, img); err != nil {
		t.Fatalf("encode cover: %v", err)
	}
	return path
}

func writeWAVCover(t *testing.T, dir string, frames int) string {
	t.Helper()
	path := filepath.Join(dir, "cover.wav")
	out, err := os.Create(path)
	if err != nil {
		t.Fatalf("create cover: %v", err)
	}
	defer out.Close()
	enc := wav.NewEncoder(out, 44100, 16, 1, 1)
	data := make([]int, frames)
	for i := range data {
		data[i] = int(10000 * math.Sin(float64(i)*0.07))
	}
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: 44100},
		Data:           data,
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		t.Fatalf("write cover: %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("close cover: %v", err)
	}
	return path
}

func writeKeyFile(t *testing.T, dir string, n int, b byte) string {
	t.Helper()
	path := filepath.Join(dir, "key.bin")
	buf := bytes.Repeat([]byte{b}, n)
	if err := os.WriteFile(path, buf, 0o644); err != nil {
		t.Fatalf("write key file: %v", err)
	}
	return path
}

func TestRoundTripPNGNoEncryption(t *testing.T) {
	dir := t.TempDir()
	cover := writePNGCover(t, dir, 100, 100, color.NRGBA{A: 255})

	payload := make([]byte, 1000)
	for i := range payload {
		payload[i] = byte(i % 255)
	}

	stego := filepath.Join(dir, "stego.png")
	out := filepath.Join(dir, "recovered.bin")

	err := EncodeStream(bytes.NewReader(payload), cover, "", stego, false, "bin", "png", 1710000000, Options{})
	if err != nil {
		t.Fatalf("EncodeStream: %v", err)
	}

	ext, err := DecodeStream(stego, out, "", "png", Options{})
	if err != nil {
		t.Fatalf("DecodeStream: %v", err)
	}
	if ext != "bin" {
		t.Fatalf("ext = %q, want bin", ext)
	}

	got, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read recovered: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatal("round trip mismatch")
	}
}

func TestRoundTripWAV(t *testing.T) {
	dir := t.TempDir()
	cover := writeWAVCover(t, dir, 5000)

	payload := make([]byte, 200)
	for i := range payload {
		payload[i] = byte(i * 3)
	}

	stego := filepath.Join(dir, "stego.wav")
	out := filepath.Join(dir, "recovered.bin")

	if err := EncodeStream(bytes.NewReader(payload), cover, "", stego, false, "wav", "wav", 1710000001, Options{}); err != nil {
		t.Fatalf("EncodeStream: %v", err)
	}
	if _, err := DecodeStream(stego, out, "", "wav", Options{}); err != nil {
		t.Fatalf("DecodeStream: %v", err)
	}
	got, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read recovered: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatal("round trip mismatch")
	}
}

func TestKeyRequiredWrongKeyYieldsCompressionError(t *testing.T) {
	dir := t.TempDir()
	cover := writePNGCover(t, dir, 1000, 1000, color.NRGBA{A: 255})
	key := writeKeyFile(t, dir, 32, 0xA5)
	wrongKey := writeKeyFile(t, dir, 32, 0x5A)

	payload := []byte("hello\n")
	stego := filepath.Join(dir, "stego.png")
	out := filepath.Join(dir, "recovered.bin")

	if err := EncodeStream(bytes.NewReader(payload), cover, key, stego, true, "txt", "png", 1710000002, Options{}); err != nil {
		t.Fatalf("EncodeStream: %v", err)
	}

	_, err := DecodeStream(stego, out, wrongKey, "png", Options{})
	if err == nil {
		t.Fatal("expected decode with wrong key to fail")
	}
	if !IsKind(err, KindCompressionError) && !IsKind(err, KindIntegrityError) {
		t.Fatalf("err = %v, want CompressionError or IntegrityError", err)
	}

	if _, err := DecodeStream(stego, out, key, "png", Options{}); err != nil {
		t.Fatalf("DecodeStream with correct key: %v", err)
	}
	got, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read recovered: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("got %q, want %q", got, payload)
	}
}

func TestAnalyzeHeaderReportsEncryptedFlag(t *testing.T) {
	dir := t.TempDir()
	cover := writePNGCover(t, dir, 100, 100, color.NRGBA{A: 255})

	plain := filepath.Join(dir, "plain.png")
	if err := EncodeStream(bytes.NewReader([]byte("x")), cover, "", plain, false, "txt", "png", 1710000003, Options{}); err != nil {
		t.Fatalf("EncodeStream plain: %v", err)
	}
	encrypted := filepath.Join(dir, "encrypted.png")
	if err := EncodeStream(bytes.NewReader([]byte("x")), cover, "", encrypted, true, "txt", "png", 1710000004, Options{}); err != nil {
		t.Fatalf("EncodeStream encrypted: %v", err)
	}

	if enc, err := AnalyzeHeader(plain, "png", Options{}); err != nil || enc {
		t.Fatalf("plain: encrypted=%v err=%v, want false/nil", enc, err)
	}
	if enc, err := AnalyzeHeader(encrypted, "png", Options{}); err != nil || !enc {
		t.Fatalf("encrypted: encrypted=%v err=%v, want true/nil", enc, err)
	}
}

func TestUnsupportedContainerKind(t *testing.T) {
	dir := t.TempDir()
	cover := writePNGCover(t, dir, 10, 10, color.NRGBA{A: 255})
	err := EncodeStream(bytes.NewReader([]byte("x")), cover, "", filepath.Join(dir, "out.bin"), false, "", "flac", 1, Options{})
	if !IsKind(err, KindUnsupportedContainer) {
		t.Fatalf("err = %v, want UnsupportedContainer", err)
	}
}

func TestPaddingToleranceLargerCarrierDecodesSamePayload(t *testing.T) {
	dir := t.TempDir()
	// A generously oversized cover so the PNG writer does not need to
	// auto-expand; capacity far exceeds 128+payload_len.
	cover := writePNGCover(t, dir, 500, 500, color.NRGBA{A: 255})

	payload := []byte("padding tolerance check")
	stego := filepath.Join(dir, "stego.png")
	out := filepath.Join(dir, "recovered.bin")

	if err := EncodeStream(bytes.NewReader(payload), cover, "", stego, false, "txt", "png", 1710000005, Options{}); err != nil {
		t.Fatalf("EncodeStream: %v", err)
	}
	if _, err := DecodeStream(stego, out, "", "png", Options{}); err != nil {
		t.Fatalf("DecodeStream: %v", err)
	}
	got, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read recovered: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatal("round trip mismatch with oversized carrier")
	}
}
