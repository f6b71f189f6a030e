package codec

import (
	"bytes"
	"compress/flate"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/sndpng/spng/internal/container"
	"github.com/sndpng/spng/internal/container/png"
	"github.com/sndpng/spng/internal/container/wav"
	"github.com/sndpng/spng/internal/header"
	"github.com/sndpng/spng/internal/keystream"
)

// decryptReader XORs every byte read from inner through cipher before
// returning it to the caller. A nil cipher makes it a pass-through.
type decryptReader struct {
	inner  io.Reader
	cipher *keystream.Cipher
}

func (d decryptReader) Read(p []byte) (int, error) {
	n, err := d.inner.Read(p)
	if n > 0 && d.cipher != nil {
		d.cipher.Transform(p[:n], p[:n])
	}
	return n, err
}

// openContainerReader returns the raw Header‖Body byte stream hidden in
// the carrier at inputPath, preferring an enabled plugin decoder that
// claims containerKind over the built-in PNG/WAV readers.
func openContainerReader(inputPath, containerKind string, opts Options) (io.ReadCloser, error) {
	if opts.Plugins != nil {
		if dec, ok := opts.Plugins.DecoderByExtension(containerKind); ok {
			rc, err := dec.Decode(inputPath, func(f float64) { opts.progress(f * 0.1) })
			if err != nil {
				return nil, wrapErr(KindPluginOperationError, "plugin decode", err)
			}
			return rc, nil
		}
	}

	switch containerKind {
	case string(container.KindPNG), "jpg", "jpeg":
		r, err := png.Open(inputPath)
		if err != nil {
			return nil, wrapErr(KindIoError, "open PNG carrier", err)
		}
		return io.NopCloser(r), nil
	case string(container.KindWAV):
		r, err := wav.Open(inputPath)
		if err != nil {
			return nil, wrapErr(KindIoError, "open WAV carrier", err)
		}
		return r, nil
	default:
		return nil, wrapErr(KindUnsupportedContainer, fmt.Sprintf("no built-in or plugin carrier for %q", containerKind), nil)
	}
}

// DecodeStream extracts, decrypts, and inflates the payload hidden in
// inputPath's carrier, writing it to outputPath. It returns the
// extension hint recorded in the header. If keyPath is non-empty, it is
// XORed on top of the algorithmic keystream exactly as encoding applied
// it — an absent or wrong key yields KindCompressionError when the
// inflated stream is invalid, and KindIntegrityError if inflate
// succeeds but the hash of the decrypted compressed body doesn't match.
func DecodeStream(inputPath, outputPath, keyPath string, containerKind string, opts Options) (string, error) {
	opts.progress(0.0)
	bufSize := opts.bufferSize()

	raw, err := openContainerReader(inputPath, containerKind, opts)
	if err != nil {
		return "", err
	}
	defer raw.Close()

	headerBuf := make([]byte, header.Size)
	if _, err := io.ReadFull(raw, headerBuf); err != nil {
		return "", wrapErr(KindMalformedHeader, "read 128-byte header", err)
	}
	hdr, err := header.Parse(headerBuf)
	versionWarning := err
	if err != nil && !isVersionWarning(err) {
		return "", wrapErr(KindMalformedHeader, "parse header", err)
	}
	opts.progress(0.05)

	var keyReader io.Reader
	if keyPath != "" {
		kf, err := os.Open(keyPath)
		if err != nil {
			return "", wrapErr(KindIoError, "open key file", err)
		}
		defer kf.Close()
		keyReader = kf
	}

	var cipher *keystream.Cipher
	if hdr.Encrypted {
		cipher = keystream.New(hdr.Timestamp, keyReader, bufSize)
	}

	limited := io.LimitReader(raw, int64(hdr.PayloadLen))
	decrypted := decryptReader{inner: limited, cipher: cipher}

	hasher := sha256.New()
	teed := io.TeeReader(decrypted, hasher)

	inflater := flate.NewReader(teed)
	defer inflater.Close()

	outFile, err := os.Create(outputPath)
	if err != nil {
		return "", wrapErr(KindIoError, "create output file", err)
	}
	defer outFile.Close()

	buf := make([]byte, bufSize)
	var totalWritten int64
	for {
		n, rerr := inflater.Read(buf)
		if n > 0 {
			if _, werr := outFile.Write(buf[:n]); werr != nil {
				return "", wrapErr(KindIoError, "write decoded payload", werr)
			}
			totalWritten += int64(n)
			if totalWritten%(1024*1024) == 0 {
				opts.progress(0.5)
			}
		}
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			return "", wrapErr(KindCompressionError, "inflate payload (wrong key or corrupt carrier)", rerr)
		}
	}

	// Drain any unread bytes within payload_len through teed so the
	// hash still covers the full compressed body even if inflate
	// stopped reading before payload_len bytes were consumed.
	io.Copy(io.Discard, teed)

	if !bytes.Equal(hasher.Sum(nil), hdr.Hash[:]) {
		return "", wrapErr(KindIntegrityError, "decoded payload hash does not match header", nil)
	}

	opts.progress(1.0)

	if versionWarning != nil {
		return hdr.Extension, wrapErr(KindVersionUnknown, "header version differs from this build", versionWarning)
	}
	return hdr.Extension, nil
}

func isVersionWarning(err error) bool {
	return errors.Is(err, header.ErrVersionUnknown)
}

// AnalyzeHeader reads just the 128-byte header from inputPath's carrier
// and reports whether the payload is encrypted, without decoding the
// body.
func AnalyzeHeader(inputPath, containerKind string, opts Options) (encrypted bool, err error) {
	raw, err := openContainerReader(inputPath, containerKind, opts)
	if err != nil {
		return false, err
	}
	defer raw.Close()

	headerBuf := make([]byte, header.Size)
	if _, err := io.ReadFull(raw, headerBuf); err != nil {
		return false, wrapErr(KindMalformedHeader, "read 128-byte header", err)
	}
	hdr, err := header.Parse(headerBuf)
	if err != nil && !isVersionWarning(err) {
		return false, wrapErr(KindMalformedHeader, "parse header", err)
	}
	return hdr.Encrypted, nil
}
