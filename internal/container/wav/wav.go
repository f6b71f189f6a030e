// Package wav implements the WAV carrier: a 32-bit integer PCM file
// whose upper 16 bits hold the normalized cover sample and whose lower
// 16 bits hold two hidden data bytes, per spec §3/§4.5/§4.6.
package wav

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/sndpng/spng/internal/container"
)

// wavFormatIEEEFloat is the fmt-chunk audio format tag (3) marking
// 32-bit-float PCM, as opposed to format tag 1 (integer PCM).
const wavFormatIEEEFloat = 3

const (
	bytesPerSample    = 2
	progressEverySamp = 10000
	// writeChunkFrames bounds how many output samples are batched into a
	// single encoder Write call while streaming.
	writeChunkFrames = 4096
)

// BytesPerSample is the number of hidden data bytes each output sample
// carries (the low 16 bits of the 32-bit carrier sample).
const BytesPerSample = bytesPerSample

// CoverSampleCount reports how many source samples are available in the
// cover at path, for capacity reporting before any embedding happens.
func CoverSampleCount(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("wav: open cover: %w", err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return 0, fmt.Errorf("wav: not a valid WAV file")
	}
	if err := dec.FwdToPCM(); err != nil {
		return 0, fmt.Errorf("wav: seek to PCM data: %w", err)
	}
	srcBytesPerSample := int(dec.BitDepth) / 8
	if srcBytesPerSample <= 0 {
		return 0, fmt.Errorf("wav: unsupported bit depth %d", dec.BitDepth)
	}

	info, err := f.Stat()
	if err != nil {
		return 0, fmt.Errorf("wav: stat cover: %w", err)
	}
	pos, err := f.Seek(0, io.SeekCurrent)
	if err != nil {
		return 0, fmt.Errorf("wav: tell cover: %w", err)
	}
	remaining := info.Size() - pos
	if remaining < 0 {
		remaining = 0
	}
	return int(remaining) / srcBytesPerSample, nil
}

// RequiredSamples returns the minimum sample count needed to carry
// totalLen bytes, two bytes per sample.
func RequiredSamples(totalLen uint64) int {
	return int((totalLen + bytesPerSample - 1) / bytesPerSample)
}

// normalizeToI16 converts a single raw PCM sample of the given source
// bit depth into a signed 16-bit value, per spec §3 ("24-bit sources
// shift right 8, 32-bit sources shift right 16, 32-bit float sources
// multiply by I16_MAX"). audioFormat distinguishes 32-bit integer PCM
// (format 1) from 32-bit IEEE float PCM (format 3); it is ignored for
// every other bit depth.
func normalizeToI16(srcBitDepth, audioFormat int, raw []byte) int16 {
	switch srcBitDepth {
	case 8:
		return int16((int(raw[0]) - 128) << 8)
	case 16:
		return int16(binary.LittleEndian.Uint16(raw))
	case 24:
		s := int32(raw[0]) | int32(raw[1])<<8 | int32(raw[2])<<16
		if s&0x800000 != 0 {
			s |= ^int32(0xFFFFFF)
		}
		return int16(s >> 8)
	case 32:
		if audioFormat == wavFormatIEEEFloat {
			f := math.Float32frombits(binary.LittleEndian.Uint32(raw))
			v := int(f * 32767)
			if v > math.MaxInt16 {
				v = math.MaxInt16
			} else if v < math.MinInt16 {
				v = math.MinInt16
			}
			return int16(v)
		}
		return int16(int32(binary.LittleEndian.Uint32(raw)) >> 16)
	default:
		return 0
	}
}

// Writer implements container.Writer for the WAV carrier.
type Writer struct{}

var _ container.Writer = (*Writer)(nil)

func (Writer) Write(coverPath, outputPath string, data container.ByteSource, progress container.ProgressFunc) error {
	if progress == nil {
		progress = container.NoProgress
	}

	in, err := os.Open(coverPath)
	if err != nil {
		return fmt.Errorf("wav writer: open cover: %w", err)
	}
	defer in.Close()

	dec := wav.NewDecoder(in)
	if !dec.IsValidFile() {
		return fmt.Errorf("wav writer: not a valid WAV file")
	}
	if err := dec.FwdToPCM(); err != nil {
		return fmt.Errorf("wav writer: seek to PCM data: %w", err)
	}
	srcBitDepth := int(dec.BitDepth)
	srcAudioFormat := int(dec.WavAudioFormat)
	numChans := int(dec.NumChans)
	sampleRate := int(dec.SampleRate)
	srcBytesPerSample := srcBitDepth / 8

	outFile, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("wav writer: create output: %w", err)
	}
	defer outFile.Close()

	enc := wav.NewEncoder(outFile, sampleRate, 32, numChans, 1)

	needed := RequiredSamples(data.TotalLen())
	written := 0
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: numChans, SampleRate: sampleRate},
		SourceBitDepth: 32,
	}
	srcRaw := make([]byte, srcBytesPerSample)

	for {
		n, readErr := io.ReadFull(in, srcRaw)
		if n < srcBytesPerSample {
			break
		}
		s16 := normalizeToI16(srcBitDepth, srcAudioFormat, srcRaw)
		b1 := data.NextByte()
		b2 := data.NextByte()
		chunk := uint16(b1) | uint16(b2)<<8
		buf.Data = append(buf.Data, (int(s16)<<16)|int(chunk))
		if len(buf.Data) >= writeChunkFrames {
			if err := enc.Write(buf); err != nil {
				return fmt.Errorf("wav writer: encode sample: %w", err)
			}
			buf.Data = buf.Data[:0]
		}
		written++
		if written%progressEverySamp == 0 {
			progress(minF(1.0, float64(written)/float64(maxI(needed, 1))))
		}
		if readErr != nil {
			break
		}
	}

	// Cover exhausted before the embedded data: append silent samples
	// (zero cover component) until the carrier has enough capacity.
	for written < needed {
		b1 := data.NextByte()
		b2 := data.NextByte()
		chunk := uint16(b1) | uint16(b2)<<8
		buf.Data = append(buf.Data, int(chunk))
		if len(buf.Data) >= writeChunkFrames {
			if err := enc.Write(buf); err != nil {
				return fmt.Errorf("wav writer: encode padding sample: %w", err)
			}
			buf.Data = buf.Data[:0]
		}
		written++
	}
	if len(buf.Data) > 0 {
		if err := enc.Write(buf); err != nil {
			return fmt.Errorf("wav writer: encode sample: %w", err)
		}
	}

	if err := enc.Close(); err != nil {
		return fmt.Errorf("wav writer: finalize: %w", err)
	}
	progress(1.0)
	return nil
}

func minF(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func maxI(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// Reader implements container.Reader for the WAV carrier, yielding the
// low 16 bits of each 32-bit output sample as two little-endian bytes.
type Reader struct {
	f       *os.File
	pend    [2]byte
	havePend bool
	sample  [4]byte
}

var _ container.Reader = (*Reader)(nil)

// Open decodes the carrier's format header and returns a streaming
// Reader over its hidden byte sequence. The carrier is always 32-bit
// int PCM, produced by Writer, so the sample width is fixed.
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("wav reader: open: %w", err)
	}
	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		f.Close()
		return nil, fmt.Errorf("wav reader: not a valid WAV file")
	}
	if err := dec.FwdToPCM(); err != nil {
		f.Close()
		return nil, fmt.Errorf("wav reader: seek to PCM data: %w", err)
	}
	if dec.BitDepth != 32 {
		f.Close()
		return nil, fmt.Errorf("wav reader: carrier is not 32-bit PCM (got %d-bit)", dec.BitDepth)
	}
	return &Reader{f: f}, nil
}

func (r *Reader) Read(p []byte) (int, error) {
	n := 0
	for n < len(p) {
		if r.havePend {
			p[n] = r.pend[0]
			n++
			r.havePend = false
			continue
		}
		rn, err := io.ReadFull(r.f, r.sample[:])
		if rn < len(r.sample) {
			if n == 0 {
				r.f.Close()
				return 0, io.EOF
			}
			return n, nil
		}
		lo, hi := r.sample[0], r.sample[1]
		p[n] = lo
		n++
		if n < len(p) {
			p[n] = hi
			n++
		} else {
			r.pend[0] = hi
			r.havePend = true
		}
		if err != nil {
			break
		}
	}
	return n, nil
}

// Close releases the underlying file handle.
func (r *Reader) Close() error {
	return r.f.Close()
}
