package codec

import (
	"compress/flate"
	"crypto/sha256"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sndpng/spng/internal/compose"
	"github.com/sndpng/spng/internal/container"
	"github.com/sndpng/spng/internal/container/png"
	"github.com/sndpng/spng/internal/container/wav"
	"github.com/sndpng/spng/internal/header"
	"github.com/sndpng/spng/internal/keystream"
	"github.com/sndpng/spng/pluginapi"
)

// EncodeStream compresses payload, frames it behind a 128-byte header,
// optionally encrypts it, and embeds the result into containerPath's
// carrier, writing outputPath. containerKind selects the built-in PNG
// or WAV carrier, or names a plugin-declared extension if opts.Plugins
// has a matching enabled encoder. keyPath, if non-empty, layers a
// physical key-file XOR on top of the algorithmic ChaCha8 keystream.
//
// Phases: Compressing (deflate payload to a temp file) → Hashing (sha256
// over the compressed bytes) → Embedding (stream Header‖Body through the
// chosen carrier). The temp file is removed on every exit path.
func EncodeStream(payload io.Reader, containerPath, keyPath, outputPath string, encrypt bool, payloadExt string, containerKind string, timestamp uint64, opts Options) error {
	opts.progress(0.0)
	bufSize := opts.bufferSize()

	tempCompressed := filepath.Join(os.TempDir(), fmt.Sprintf("spng_enc_%d.tmp", timestamp))
	defer os.Remove(tempCompressed)

	if err := compressToFile(payload, tempCompressed, bufSize); err != nil {
		return wrapErr(KindCompressionError, "deflate payload", err)
	}

	payloadLen, hash, err := sizeAndHash(tempCompressed, bufSize)
	if err != nil {
		return wrapErr(KindIoError, "hash compressed payload", err)
	}
	opts.progress(0.2)

	effectiveEncrypt := encrypt || keyPath != ""
	hdr := header.New(payloadLen, effectiveEncrypt, timestamp, hash, payloadExt)
	headerBytes := hdr.Serialize()

	compressedFile, err := os.Open(tempCompressed)
	if err != nil {
		return wrapErr(KindIoError, "reopen compressed payload", err)
	}
	defer compressedFile.Close()

	var keyReader io.Reader
	if keyPath != "" {
		kf, err := os.Open(keyPath)
		if err != nil {
			return wrapErr(KindIoError, "open key file", err)
		}
		defer kf.Close()
		keyReader = kf
	}

	var cipher *keystream.Cipher
	if effectiveEncrypt {
		cipher = keystream.New(timestamp, keyReader, bufSize)
	}

	stream := compose.New(headerBytes[:], compressedFile, payloadLen, cipher, bufSize)
	embedProgress := func(p float64) { opts.progress(0.2 + 0.8*p) }

	if opts.Plugins != nil {
		if enc, ok := opts.Plugins.Encoder(containerKind); ok {
			if err := enc.Encode(containerPath, outputPath, pluginByteSource{stream}, pluginapi.ProgressFunc(embedProgress)); err != nil {
				return wrapErr(KindPluginOperationError, "plugin encode", err)
			}
			opts.progress(1.0)
			return nil
		}
	}

	var writer container.Writer
	switch containerKind {
	case string(container.KindPNG), "jpg", "jpeg":
		writer = png.Writer{DisableAutoResize: opts.DisableAutoResize}
	case string(container.KindWAV):
		writer = wav.Writer{}
	default:
		return wrapErr(KindUnsupportedContainer, fmt.Sprintf("no built-in or plugin carrier for %q", containerKind), nil)
	}

	if err := writer.Write(containerPath, outputPath, stream, embedProgress); err != nil {
		if err == png.ErrResizeRefused {
			return wrapErr(KindResizeRequiredButRefused, "cover too small and auto-resize disabled", err)
		}
		return wrapErr(KindIoError, "embed into carrier", err)
	}

	opts.progress(1.0)
	return nil
}

func compressToFile(payload io.Reader, destPath string, bufSize int) error {
	out, err := os.Create(destPath)
	if err != nil {
		return err
	}
	defer out.Close()

	fw, err := flate.NewWriter(out, flate.DefaultCompression)
	if err != nil {
		return err
	}
	buf := make([]byte, bufSize)
	for {
		n, rerr := payload.Read(buf)
		if n > 0 {
			if _, werr := fw.Write(buf[:n]); werr != nil {
				return werr
			}
		}
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			return rerr
		}
	}
	return fw.Close()
}

func sizeAndHash(path string, bufSize int) (uint64, [32]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, [32]byte{}, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return 0, [32]byte{}, err
	}

	hasher := sha256.New()
	buf := make([]byte, bufSize)
	for {
		n, rerr := f.Read(buf)
		if n > 0 {
			hasher.Write(buf[:n])
		}
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			return 0, [32]byte{}, rerr
		}
	}
	var sum [32]byte
	copy(sum[:], hasher.Sum(nil))
	return uint64(info.Size()), sum, nil
}

// pluginByteSource adapts *compose.Stream to the pluginapi.ByteSource
// interface so the same Compose stream feeds either a built-in writer
// or an external plugin encoder without duplicating the pipeline.
type pluginByteSource struct {
	s *compose.Stream
}

func (p pluginByteSource) NextByte() byte   { return p.s.NextByte() }
func (p pluginByteSource) TotalLen() uint64 { return p.s.TotalLen() }
