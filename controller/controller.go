// Package controller bridges the byte-buffer world the HTTP layer works
// in with the path-based streaming pipeline in internal/codec. Every
// request arrives and leaves as an in-memory []byte (a multipart form
// field), but the codec itself streams through files so memory stays
// bounded regardless of payload size; this package is the seam that
// spills a request to the OS temp directory, drives the codec, and
// reads the result back.
package controller

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sndpng/spng/internal/codec"
	"github.com/sndpng/spng/internal/container/png"
	"github.com/sndpng/spng/internal/container/wav"
	"github.com/sndpng/spng/internal/header"
	"github.com/sndpng/spng/models"
)

// scratchDir returns a fresh temp directory for one request's
// intermediate files, named so concurrent requests never collide.
func scratchDir() (string, error) {
	return os.MkdirTemp("", fmt.Sprintf("spng_req_%d_", time.Now().UnixNano()))
}

func writeTemp(dir, name string, data []byte) (string, error) {
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", fmt.Errorf("controller: write %s: %w", name, err)
	}
	return path, nil
}

// Encode hides req's payload inside req's cover and returns the carrier
// bytes. opts.Plugins, if set, is consulted before the built-in PNG/WAV
// writers. The encode timestamp is taken at call time and doubles as
// the keystream seed, per spec §3.
func Encode(req *models.EncodeRequest, opts codec.Options) (*models.EncodeResponse, error) {
	dir, err := scratchDir()
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(dir)

	coverName := "cover." + string(req.ContainerKind)
	coverPath, err := writeTemp(dir, coverName, req.CoverData)
	if err != nil {
		return nil, err
	}

	var keyPath string
	if len(req.KeyData) > 0 {
		keyPath, err = writeTemp(dir, "key.bin", req.KeyData)
		if err != nil {
			return nil, err
		}
	}

	ext := payloadExtension(req.PayloadFilename)
	outputName := "stego." + string(req.ContainerKind)
	outputPath := filepath.Join(dir, outputName)

	timestamp := uint64(time.Now().Unix())
	err = codec.EncodeStream(
		bytes.NewReader(req.PayloadData), coverPath, keyPath, outputPath,
		req.Encrypt, ext, string(req.ContainerKind), timestamp, opts,
	)
	if err != nil {
		return nil, err
	}

	carrier, err := os.ReadFile(outputPath)
	if err != nil {
		return nil, fmt.Errorf("controller: read encoded carrier: %w", err)
	}
	return &models.EncodeResponse{CarrierData: carrier, Filename: outputName}, nil
}

// Decode recovers the payload hidden inside req's carrier bytes.
func Decode(req *models.DecodeRequest, opts codec.Options) (*models.DecodeResponse, error) {
	dir, err := scratchDir()
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(dir)

	carrierName := "carrier." + string(req.ContainerKind)
	carrierPath, err := writeTemp(dir, carrierName, req.CarrierData)
	if err != nil {
		return nil, err
	}

	var keyPath string
	if len(req.KeyData) > 0 {
		keyPath, err = writeTemp(dir, "key.bin", req.KeyData)
		if err != nil {
			return nil, err
		}
	}

	outputPath := filepath.Join(dir, "payload.bin")
	ext, err := codec.DecodeStream(carrierPath, outputPath, keyPath, string(req.ContainerKind), opts)
	// A version warning is non-fatal: the extension is still valid and
	// the payload still decoded successfully.
	if err != nil && !codec.IsKind(err, codec.KindVersionUnknown) {
		return nil, err
	}

	payload, rerr := os.ReadFile(outputPath)
	if rerr != nil {
		return nil, fmt.Errorf("controller: read decoded payload: %w", rerr)
	}
	return &models.DecodeResponse{PayloadData: payload, Extension: ext}, nil
}

// Analyze reports whether carrierData's header has the encrypted flag
// set, without decoding the body.
func Analyze(carrierData []byte, kind models.ContainerKind, opts codec.Options) (*models.AnalyzeResponse, error) {
	dir, err := scratchDir()
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(dir)

	carrierPath, err := writeTemp(dir, "carrier."+string(kind), carrierData)
	if err != nil {
		return nil, err
	}

	encrypted, err := codec.AnalyzeHeader(carrierPath, string(kind), opts)
	if err != nil {
		return nil, err
	}
	return &models.AnalyzeResponse{Encrypted: encrypted}, nil
}

// Capacity reports how many compressed+encrypted payload bytes
// coverData can carry as kind before the writer would need to
// auto-expand it. The figure counts wire-body bytes, i.e. after deflate
// (encryption does not change the byte count); it says nothing about
// the original (pre-compression) payload size.
func Capacity(coverData []byte, kind models.ContainerKind) (*models.CapacityResult, error) {
	dir, err := scratchDir()
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(dir)

	coverPath, err := writeTemp(dir, "cover."+string(kind), coverData)
	if err != nil {
		return nil, err
	}

	var totalBytes int64
	switch kind {
	case models.ContainerPNG:
		pixels, err := png.CoverPixelCount(coverPath)
		if err != nil {
			return nil, err
		}
		totalBytes = int64(pixels) * png.BytesPerPixel
	case models.ContainerWAV:
		samples, err := wav.CoverSampleCount(coverPath)
		if err != nil {
			return nil, err
		}
		totalBytes = int64(samples) * wav.BytesPerSample
	default:
		return nil, fmt.Errorf("controller: capacity: %w: %q", models.ErrUnsupportedContainer, kind)
	}

	maxPayload := totalBytes - header.Size
	if maxPayload < 0 {
		maxPayload = 0
	}
	return &models.CapacityResult{
		ContainerKind:   string(kind),
		MaxPayloadBytes: maxPayload,
		HeaderOverhead:  header.Size,
	}, nil
}

func payloadExtension(filename string) string {
	ext := filepath.Ext(filename)
	if len(ext) > 0 && ext[0] == '.' {
		ext = ext[1:]
	}
	return ext
}
