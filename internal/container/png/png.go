// Package png implements the PNG carrier: a 16-bit RGBA PNG whose R/G/B
// low bytes hold hidden data, matching spec §3/§4.5/§4.6. The package
// name mirrors the teacher pack's own steganography-focused PNG package
// (zanicar/stegano/png), generalized from 2-bit LSB packing to the
// low-byte-per-channel scheme this specification requires.
package png

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg" // register JPEG decoding so JPG covers are accepted, per spec §9
	"image/png"
	"io"
	"math"
	"os"

	"github.com/nfnt/resize"

	"github.com/sndpng/spng/internal/container"
)

const channelsPerPixel = 3

// BytesPerPixel is the number of hidden data bytes each pixel carries
// (one per R, G, B channel; alpha carries none).
const BytesPerPixel = channelsPerPixel

// resizeMargin is the flat pixel margin added to each dimension after an
// upward scale, ensuring rounding never leaves the cover exactly at
// capacity.
const resizeMargin = 50

// RequiredPixels returns the minimum pixel count needed to carry
// totalLen bytes, three bytes per pixel (R, G, B; alpha carries no
// data).
func RequiredPixels(totalLen uint64) int {
	return int((totalLen + channelsPerPixel - 1) / channelsPerPixel)
}

// CoverPixelCount decodes the image at path far enough to report its
// pixel count, for capacity reporting before any embedding happens.
func CoverPixelCount(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("png: open cover: %w", err)
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return 0, fmt.Errorf("png: decode cover config: %w", err)
	}
	return cfg.Width * cfg.Height, nil
}

// Writer implements container.Writer for the PNG carrier.
type Writer struct {
	// DisableAutoResize turns capacity shortfalls into
	// ErrResizeRefused instead of silently upscaling the
	// cover, per spec §7/§9 ("a future variant disables auto-resize").
	DisableAutoResize bool
}

var _ container.Writer = (*Writer)(nil)

// ErrResizeRefused is returned when the cover is too small to hold the
// data and DisableAutoResize is set.
var ErrResizeRefused = fmt.Errorf("png: cover too small and auto-resize disabled")

func (w Writer) Write(coverPath, outputPath string, data container.ByteSource, progress container.ProgressFunc) error {
	if progress == nil {
		progress = container.NoProgress
	}

	in, err := os.Open(coverPath)
	if err != nil {
		return fmt.Errorf("png writer: open cover: %w", err)
	}
	defer in.Close()

	src, _, err := image.Decode(in)
	if err != nil {
		return fmt.Errorf("png writer: decode cover: %w", err)
	}

	bounds := src.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	needed := RequiredPixels(data.TotalLen())

	if width*height < needed {
		if w.DisableAutoResize {
			return ErrResizeRefused
		}
		scale := math.Ceil(math.Sqrt(float64(needed) / float64(width*height)))
		newW := uint(float64(width)*scale) + resizeMargin
		newH := uint(float64(height)*scale) + resizeMargin
		src = resize.Resize(newW, newH, src, resize.Lanczos3)
		bounds = src.Bounds()
		width, height = bounds.Dx(), bounds.Dy()
	}

	out := image.NewNRGBA64(image.Rect(0, 0, width, height))
	totalRows := height
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			c := color.NRGBAModel.Convert(src.At(bounds.Min.X+x, bounds.Min.Y+y)).(color.NRGBA)
			r16 := uint16(c.R)<<8 | uint16(data.NextByte())
			g16 := uint16(c.G)<<8 | uint16(data.NextByte())
			b16 := uint16(c.B)<<8 | uint16(data.NextByte())
			out.Set(x, y, color.NRGBA64{R: r16, G: g16, B: b16, A: 0xFFFF})
		}
		if y%50 == 0 {
			progress(float64(y) / float64(totalRows))
		}
	}

	outFile, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("png writer: create output: %w", err)
	}
	defer outFile.Close()

	if err := png.Encode(outFile, out); err != nil {
		return fmt.Errorf("png writer: encode: %w", err)
	}
	progress(1.0)
	return nil
}

// Reader implements container.Reader for the PNG carrier, yielding the
// low byte of R, G and B for each pixel in row-major order.
type Reader struct {
	img    image.Image
	bounds image.Rectangle
	x, y   int
	pend   bytes.Buffer
}

var _ container.Reader = (*Reader)(nil)

// Open decodes the carrier at path and returns a streaming Reader over
// its hidden byte sequence. Go's standard image/png decoder has no
// partial/streaming API, so the decode itself is not row-incremental —
// only the byte emission that follows is bounded.
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("png reader: open: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("png reader: decode: %w", err)
	}
	return &Reader{img: img, bounds: img.Bounds()}, nil
}

func (r *Reader) Read(p []byte) (int, error) {
	n := 0
	for n < len(p) {
		if r.pend.Len() > 0 {
			nn, _ := r.pend.Read(p[n:])
			n += nn
			continue
		}
		if r.y >= r.bounds.Dy() {
			if n == 0 {
				return 0, io.EOF
			}
			return n, nil
		}
		px := r.bounds.Min.X + r.x
		py := r.bounds.Min.Y + r.y
		rr, gg, bb, _ := r.img.At(px, py).RGBA()
		r.pend.WriteByte(byte(rr & 0xFF))
		r.pend.WriteByte(byte(gg & 0xFF))
		r.pend.WriteByte(byte(bb & 0xFF))

		r.x++
		if r.x >= r.bounds.Dx() {
			r.x = 0
			r.y++
		}
	}
	return n, nil
}
