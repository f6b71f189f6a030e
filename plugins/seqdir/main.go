// Command seqdir is a reference carrier plugin implementing the
// sequence-of-frames scheme described in spec §9: the Compose stream is
// distributed across a directory of cover PNGs in filename order,
// ceil(total_len/N) bytes per frame, and frames left over once the
// logical stream is exhausted are copied through with the cover's 8-bit
// colour in the high byte and a zero low byte.
//
// Build it with `go build -buildmode=plugin -o seqdir.sn .` and drop
// the resulting seqdir.sn into the host's Plugins/ directory; the host
// dispatches to it for the container kind "seqdir" once enabled.
package main

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/sndpng/spng/pluginapi"
)

const (
	containerTag     = "seqdir"
	channelsPerPixel = 3
)

func coverFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("seqdir: read dir %s: %w", dir, err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}

// --- encoder ---

type encoder struct{}

var _ pluginapi.ContainerEncoder = encoder{}

func (encoder) Metadata() pluginapi.Metadata {
	return pluginapi.Metadata{
		Name:        "seqdir",
		Description: "Sequence-of-frames carrier: spreads the framed payload across a directory of cover PNGs.",
		Version:     "1.0.0",
		Author:      "spng",
	}
}

func (encoder) SupportedExtensions() []string { return []string{containerTag} }

func (encoder) Encode(containerPath, outputPath string, data pluginapi.ByteSource, progress pluginapi.ProgressFunc) error {
	if progress == nil {
		progress = func(float64) {}
	}
	names, err := coverFiles(containerPath)
	if err != nil {
		return err
	}
	if len(names) == 0 {
		return fmt.Errorf("seqdir: no cover frames found in %s", containerPath)
	}
	if err := os.MkdirAll(outputPath, 0o755); err != nil {
		return fmt.Errorf("seqdir: create output dir: %w", err)
	}

	total := data.TotalLen()
	perFrame := (total + uint64(len(names)) - 1) / uint64(len(names))

	var produced uint64
	for i, name := range names {
		remaining := total - produced
		take := perFrame
		if remaining < take {
			take = remaining
		}

		if err := embedFrame(filepath.Join(containerPath, name), filepath.Join(outputPath, name), data, take); err != nil {
			return fmt.Errorf("seqdir: frame %s: %w", name, err)
		}
		produced += take
		progress(float64(i+1) / float64(len(names)))
	}
	return nil
}

// embedFrame writes take bytes pulled from data into the low byte of
// each R/G/B channel of the cover at srcPath, in row-major order,
// leaving the low byte of every remaining channel zero once take bytes
// have been consumed.
func embedFrame(srcPath, dstPath string, data pluginapi.ByteSource, take uint64) error {
	in, err := os.Open(srcPath)
	if err != nil {
		return err
	}
	defer in.Close()

	src, err := png.Decode(in)
	if err != nil {
		return err
	}
	bounds := src.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	needed := (take + channelsPerPixel - 1) / channelsPerPixel
	if uint64(width*height) < needed {
		return fmt.Errorf("frame too small: has %d pixels, needs %d", width*height, needed)
	}

	out := image.NewNRGBA64(image.Rect(0, 0, width, height))
	var pulled uint64
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			c := color.NRGBAModel.Convert(src.At(bounds.Min.X+x, bounds.Min.Y+y)).(color.NRGBA)
			r, g, b := uint16(c.R)<<8, uint16(c.G)<<8, uint16(c.B)<<8
			if pulled < take {
				r |= uint16(data.NextByte())
				pulled++
			}
			if pulled < take {
				g |= uint16(data.NextByte())
				pulled++
			}
			if pulled < take {
				b |= uint16(data.NextByte())
				pulled++
			}
			out.Set(x, y, color.NRGBA64{R: r, G: g, B: b, A: 0xFFFF})
		}
	}

	outFile, err := os.Create(dstPath)
	if err != nil {
		return err
	}
	defer outFile.Close()
	return png.Encode(outFile, out)
}

// --- decoder ---

type decoder struct{}

var _ pluginapi.ContainerDecoder = decoder{}

func (decoder) Metadata() pluginapi.Metadata {
	return pluginapi.Metadata{
		Name:        "seqdir",
		Description: "Sequence-of-frames carrier: spreads the framed payload across a directory of cover PNGs.",
		Version:     "1.0.0",
		Author:      "spng",
	}
}

func (decoder) SupportedExtensions() []string { return []string{containerTag} }

func (decoder) Decode(containerPath string, progress pluginapi.ProgressFunc) (io.ReadCloser, error) {
	if progress == nil {
		progress = func(float64) {}
	}
	names, err := coverFiles(containerPath)
	if err != nil {
		return nil, err
	}
	readers := make([]io.Reader, 0, len(names))
	for i, name := range names {
		r, err := newFrameReader(filepath.Join(containerPath, name))
		if err != nil {
			return nil, fmt.Errorf("seqdir: frame %s: %w", name, err)
		}
		readers = append(readers, r)
		progress(float64(i+1) / float64(len(names)))
	}
	return io.NopCloser(io.MultiReader(readers...)), nil
}

// frameReader yields the low byte of R, G and B for each pixel of a
// decoded frame, in row-major order.
type frameReader struct {
	img    image.Image
	bounds image.Rectangle
	x, y   int
	pend   [3]byte
	pendN  int
	pendI  int
}

func newFrameReader(path string) (*frameReader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		return nil, err
	}
	return &frameReader{img: img, bounds: img.Bounds()}, nil
}

func (r *frameReader) Read(p []byte) (int, error) {
	n := 0
	for n < len(p) {
		if r.pendI < r.pendN {
			p[n] = r.pend[r.pendI]
			r.pendI++
			n++
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
		r.pend[0], r.pend[1], r.pend[2] = byte(rr&0xFF), byte(gg&0xFF), byte(bb&0xFF)
		r.pendN, r.pendI = 3, 0

		r.x++
		if r.x >= r.bounds.Dx() {
			r.x = 0
			r.y++
		}
	}
	return n, nil
}

// --- ABI exports ---

func _create_encoder() pluginapi.ContainerEncoder { return encoder{} }
func _create_decoder() pluginapi.ContainerDecoder { return decoder{} }
