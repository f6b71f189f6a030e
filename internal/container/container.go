// Package container defines the byte-stream abstractions that carriers
// (PNG, WAV, or an external plugin) must satisfy to participate in the
// Compose/Extract pipeline, plus the two built-in carrier kinds.
package container

import "io"

// Kind names a built-in or plugin-declared container tag, e.g. "png",
// "wav", or a custom tag exported by a plugin's metadata.
type Kind string

const (
	KindPNG Kind = "png"
	KindWAV Kind = "wav"
)

// ByteSource is the primitive a Compose-style producer exposes to a
// Writer: one byte at a time, plus the total logical length so writers
// that need to pre-size their output (e.g. computing embedding capacity)
// can do so up front.
type ByteSource interface {
	NextByte() byte
	TotalLen() uint64
}

// ProgressFunc reports fractional completion in [0, 1].
type ProgressFunc func(fraction float64)

// Writer embeds a ByteSource's bytes into a cover file and emits a new
// carrier file.
type Writer interface {
	// Write reads the cover from coverPath, embeds data's bytes into it,
	// and writes the resulting carrier to outputPath.
	Write(coverPath, outputPath string, data ByteSource, progress ProgressFunc) error
}

// Reader exposes the hidden byte stream embedded in a carrier file.
type Reader interface {
	io.Reader
}

// NoProgress is a ProgressFunc that does nothing, for callers that don't
// care about progress reporting.
func NoProgress(float64) {}
