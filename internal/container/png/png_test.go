package png

import (
	"bytes"
	"image"
	"image/color"
	stdpng "image/png"
	"io"
	"os"
	"path/filepath"
	"testing"
)

// fakeSource is a deterministic container.ByteSource for tests.
type fakeSource struct {
	data []byte
	pos  int
}

func (f *fakeSource) NextByte() byte {
	if f.pos >= len(f.data) {
		return 0
	}
	b := f.data[f.pos]
	f.pos++
	return b
}

func (f *fakeSource) TotalLen() uint64 { return uint64(len(f.data)) }

func writeCover(t *testing.T, dir string, w, h int, fill color.NRGBA) string {
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

func TestWriteThenReadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	cover := writeCover(t, dir, 100, 100, color.NRGBA{R: 0, G: 0, B: 0, A: 255})

	payload := make([]byte, 1000)
	for i := range payload {
		payload[i] = byte(i % 255)
	}

	out := filepath.Join(dir, "stego.png")
	w := Writer{}
	if err := w.Write(cover, out, &fakeSource{data: payload}, nil); err != nil {
		t.Fatalf("Write: %v", err)
	}

	r, err := Open(out)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	got := make([]byte, len(payload))
	if _, err := io.ReadFull(r, got); err != nil {
		t.Fatalf("read carrier: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("round trip mismatch")
	}
}

func TestAutoExpandsWhenCoverTooSmall(t *testing.T) {
	dir := t.TempDir()
	cover := writeCover(t, dir, 10, 10, color.NRGBA{R: 10, G: 20, B: 30, A: 255})

	// 2500 i16 samples ~= 5000 bytes, far larger than a 10x10 cover (100
	// pixels * 3 bytes = 300 bytes capacity) can hold without resizing.
	payload := make([]byte, 5000)
	for i := range payload {
		payload[i] = byte(i)
	}

	out := filepath.Join(dir, "stego.png")
	w := Writer{}
	if err := w.Write(cover, out, &fakeSource{data: payload}, nil); err != nil {
		t.Fatalf("Write: %v", err)
	}

	f, err := os.Open(out)
	if err != nil {
		t.Fatalf("open output: %v", err)
	}
	defer f.Close()
	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		t.Fatalf("decode config: %v", err)
	}
	if cfg.Width <= 10 || cfg.Height <= 10 {
		t.Fatalf("expected strictly larger dimensions than 10x10, got %dx%d", cfg.Width, cfg.Height)
	}

	r, err := Open(out)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	got := make([]byte, len(payload))
	if _, err := io.ReadFull(r, got); err != nil {
		t.Fatalf("read carrier: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("round trip mismatch after auto-expand")
	}
}

func TestResizeRefusedWhenDisabled(t *testing.T) {
	dir := t.TempDir()
	cover := writeCover(t, dir, 2, 2, color.NRGBA{A: 255})

	payload := make([]byte, 1000)
	out := filepath.Join(dir, "stego.png")
	w := Writer{DisableAutoResize: true}
	err := w.Write(cover, out, &fakeSource{data: payload}, nil)
	if err != ErrResizeRefused {
		t.Fatalf("err = %v, want ErrResizeRefused", err)
	}
}
