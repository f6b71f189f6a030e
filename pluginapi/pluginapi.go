// Package pluginapi defines the stable ABI that external carrier
// plugins, built with `go build -buildmode=plugin` and loaded at
// runtime via the standard library's plugin package, must implement.
//
// A plugin shared object exports one or both of the functions
//
//	func _create_encoder() pluginapi.ContainerEncoder
//	func _create_decoder() pluginapi.ContainerDecoder
//
// mirroring the symbol names the host looks up (see
// internal/pluginhost), so that a plugin built against an older
// host binary fails to load cleanly instead of crashing on a renamed
// symbol.
package pluginapi

import "io"

// Metadata describes a plugin for display and for the enabled/disabled
// registry the host keeps per plugin name.
type Metadata struct {
	Name        string
	Description string
	Version     string
	Author      string
}

// ProgressFunc reports fractional completion in [0, 1]. Plugins must
// tolerate it being called from the goroutine that invoked Encode or
// Decode; the host never calls it concurrently with itself.
type ProgressFunc func(fraction float64)

// ByteSource is the primitive the host's Compose stream exposes to a
// plugin encoder: one byte at a time (already header-framed, encrypted
// and compressed) plus the total logical length, so a plugin that
// spreads bytes across multiple output files (e.g. a directory of
// frames) can size its distribution up front.
type ByteSource interface {
	NextByte() byte
	TotalLen() uint64
}

// ContainerEncoder embeds a ByteSource's bytes into a cover container.
// containerPath may name a single file or a directory, depending on
// the plugin's own carrier scheme.
type ContainerEncoder interface {
	Metadata() Metadata
	SupportedExtensions() []string
	Encode(containerPath, outputPath string, data ByteSource, progress ProgressFunc) error
}

// ContainerDecoder exposes the hidden byte stream embedded in a
// container produced by the matching ContainerEncoder. The host parses
// the Header and runs decryption/inflation itself; a decoder only
// needs to extract the raw Header‖Body byte sequence.
type ContainerDecoder interface {
	Metadata() Metadata
	SupportedExtensions() []string
	Decode(containerPath string, progress ProgressFunc) (io.ReadCloser, error)
}
