package codec

import "github.com/sndpng/spng/internal/pluginhost"

// defaultBufferKiB is the configurable block size governing deflate
// input blocks, hasher blocks, decompress output blocks, the writer's
// per-copy block, and the key-file chunk size.
const defaultBufferKiB = 64

// Options configures a single encode or decode job.
type Options struct {
	// BufferKiB sizes every internal I/O block in the pipeline. Zero
	// means defaultBufferKiB.
	BufferKiB int
	// DisableAutoResize refuses to upscale a PNG cover that is too
	// small, returning KindResizeRequiredButRefused instead.
	DisableAutoResize bool
	// Plugins is consulted before falling back to the built-in PNG/WAV
	// carriers. Nil means no plugins are available.
	Plugins *pluginhost.Registry
	// Progress is called with a fraction in [0, 1] as the job
	// advances. Nil is treated as a no-op.
	Progress func(float64)
}

func (o Options) bufferSize() int {
	kib := o.BufferKiB
	if kib <= 0 {
		kib = defaultBufferKiB
	}
	return kib * 1024
}

func (o Options) progress(f float64) {
	if o.Progress != nil {
		o.Progress(f)
	}
}
