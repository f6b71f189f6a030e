// Package pluginhost discovers and dispatches to external carrier
// plugins (see pluginapi), translating the Rust PluginManager's
// Arc<Mutex<HashMap>> registry into an idiomatic Go mutex-guarded map.
package pluginhost

import (
	"fmt"
	"os"
	"path/filepath"
	"plugin"
	"sync"

	"github.com/sndpng/spng/pluginapi"
)

const pluginExtension = ".sn"

// loaded bundles the symbols a single plugin shared object exported,
// plus whether it is currently enabled for use.
type loaded struct {
	encoder pluginapi.ContainerEncoder
	decoder pluginapi.ContainerDecoder
	meta    pluginapi.Metadata
	enabled bool
}

// Registry tracks every plugin discovered under a directory, keyed by
// plugin name, and whether each is enabled. Plugins load disabled by
// default; a caller must opt in via SetEnabled before Encoder/Decoder
// will return them.
type Registry struct {
	mu      sync.RWMutex
	plugins map[string]*loaded
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{plugins: make(map[string]*loaded)}
}

// LoadDir opens every *.sn file in dir and registers the
// ContainerEncoder/ContainerDecoder it exports. A file that fails to
// open or exports neither symbol is skipped; the first error
// encountered for a given file is returned wrapped with its path, but
// loading continues for the remaining files so one bad plugin doesn't
// block the rest.
func (r *Registry) LoadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("pluginhost: read plugin dir: %w", err)
	}

	var firstErr error
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != pluginExtension {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := r.loadOne(path); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("pluginhost: load %s: %w", path, err)
		}
	}
	return firstErr
}

func (r *Registry) loadOne(path string) error {
	p, err := plugin.Open(path)
	if err != nil {
		return err
	}

	var enc pluginapi.ContainerEncoder
	var dec pluginapi.ContainerDecoder

	if sym, err := p.Lookup("_create_encoder"); err == nil {
		if fn, ok := sym.(func() pluginapi.ContainerEncoder); ok {
			enc = fn()
		}
	}
	if sym, err := p.Lookup("_create_decoder"); err == nil {
		if fn, ok := sym.(func() pluginapi.ContainerDecoder); ok {
			dec = fn()
		}
	}
	if enc == nil && dec == nil {
		return fmt.Errorf("pluginhost: exports neither _create_encoder nor _create_decoder")
	}

	var meta pluginapi.Metadata
	switch {
	case enc != nil:
		meta = enc.Metadata()
	case dec != nil:
		meta = dec.Metadata()
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.plugins[meta.Name] = &loaded{encoder: enc, decoder: dec, meta: meta, enabled: false}
	return nil
}

// SetEnabled toggles whether a loaded plugin participates in dispatch.
// It is a no-op if name is not registered.
func (r *Registry) SetEnabled(name string, enabled bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.plugins[name]; ok {
		p.enabled = enabled
	}
}

// EnabledMetadata returns the metadata of every enabled plugin.
func (r *Registry) EnabledMetadata() []pluginapi.Metadata {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]pluginapi.Metadata, 0, len(r.plugins))
	for _, p := range r.plugins {
		if p.enabled {
			out = append(out, p.meta)
		}
	}
	return out
}

// AllMetadata returns every loaded plugin's metadata alongside its
// enabled flag, regardless of enablement.
func (r *Registry) AllMetadata() map[string]bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]bool, len(r.plugins))
	for name, p := range r.plugins {
		out[name] = p.enabled
	}
	return out
}

// Encoder finds the first enabled plugin whose encoder declares support
// for the given container-kind tag, mirroring DecoderByExtension so
// dispatch works the same way on both sides of the ABI regardless of
// whether a plugin's declared Metadata().Name matches the tag it
// actually writes.
func (r *Registry) Encoder(tag string) (pluginapi.ContainerEncoder, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.plugins {
		if !p.enabled || p.encoder == nil {
			continue
		}
		for _, e := range p.encoder.SupportedExtensions() {
			if e == tag {
				return p.encoder, true
			}
		}
	}
	return nil, false
}

// DecoderByExtension finds the first enabled plugin whose decoder
// declares support for ext, mirroring the Rust manager's
// get_decoder_by_ext fallback used when the caller doesn't know which
// plugin produced a given file.
func (r *Registry) DecoderByExtension(ext string) (pluginapi.ContainerDecoder, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.plugins {
		if !p.enabled || p.decoder == nil {
			continue
		}
		for _, e := range p.decoder.SupportedExtensions() {
			if e == ext {
				return p.decoder, true
			}
		}
	}
	return nil, false
}
