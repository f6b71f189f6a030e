package codec

import "errors"

// Kind classifies a codec failure for callers (and tests) that need to
// distinguish error categories without string-matching messages.
type Kind int

const (
	// KindUnsupportedContainer means the carrier extension is not
	// built in and no enabled plugin claims it.
	KindUnsupportedContainer Kind = iota
	// KindMalformedHeader means fewer than 128 bytes were extractable,
	// or the magic bytes didn't match.
	KindMalformedHeader
	// KindVersionUnknown is a non-fatal warning: the header parsed but
	// its version differs from the one this build writes.
	KindVersionUnknown
	// KindPayloadTruncated means fewer than 128+payload_len bytes were
	// extractable from the carrier.
	KindPayloadTruncated
	// KindCompressionError means inflate or deflate failed, which
	// often indicates the wrong key or no key at all.
	KindCompressionError
	// KindIoError wraps an underlying file or network error.
	KindIoError
	// KindPluginLoadError means a plugin shared library failed to
	// open or export the expected symbols.
	KindPluginLoadError
	// KindPluginOperationError means a loaded plugin's encode/decode
	// call itself failed.
	KindPluginOperationError
	// KindResizeRequiredButRefused means the cover was too small and
	// the caller disabled auto-resize.
	KindResizeRequiredButRefused
	// KindIntegrityError means the SHA-256 of the decrypted, still
	// compressed body did not match the header's recorded hash. Not part of the original
	// error taxonomy; added so a corrupted-but-inflatable payload is
	// still caught.
	KindIntegrityError
)

func (k Kind) String() string {
	switch k {
	case KindUnsupportedContainer:
		return "UnsupportedContainer"
	case KindMalformedHeader:
		return "MalformedHeader"
	case KindVersionUnknown:
		return "VersionUnknown"
	case KindPayloadTruncated:
		return "PayloadTruncated"
	case KindCompressionError:
		return "CompressionError"
	case KindIoError:
		return "IoError"
	case KindPluginLoadError:
		return "PluginLoadError"
	case KindPluginOperationError:
		return "PluginOperationError"
	case KindResizeRequiredButRefused:
		return "ResizeRequiredButRefused"
	case KindIntegrityError:
		return "IntegrityError"
	default:
		return "Unknown"
	}
}

// Error is the structured error the core API returns. Callers that only
// want a message can treat it as a plain error; tests that need the
// category can check Kind via errors.As.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Kind.String() + ": " + e.Message + ": " + e.Err.Error()
	}
	return e.Kind.String() + ": " + e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func wrapErr(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// IsKind reports whether err is a *Error of the given Kind.
func IsKind(err error, kind Kind) bool {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Kind == kind
	}
	return false
}
