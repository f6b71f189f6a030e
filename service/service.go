// Package service wraps the controller's byte-buffer codec operations
// behind the CodecService/PluginService interfaces the HTTP handlers
// depend on, giving main.go a single place to wire dependencies.
package service

import (
	"github.com/sndpng/spng/controller"
	"github.com/sndpng/spng/internal/codec"
	"github.com/sndpng/spng/internal/pluginhost"
	"github.com/sndpng/spng/models"
)

// codecService is the default CodecService implementation, backed by
// the internal streaming pipeline and an optional plugin registry.
type codecService struct {
	plugins   *pluginhost.Registry
	bufferKiB int
}

// NewCodecService builds a CodecService. plugins may be nil, meaning
// only the built-in PNG and WAV carriers are available. bufferKiB
// configures every internal I/O block size (see internal/codec.Options);
// zero means the codec's default of 64 KiB.
func NewCodecService(plugins *pluginhost.Registry, bufferKiB int) CodecService {
	return &codecService{plugins: plugins, bufferKiB: bufferKiB}
}

func (s *codecService) options() codec.Options {
	return codec.Options{
		BufferKiB: s.bufferKiB,
		Plugins:   s.plugins,
	}
}

func (s *codecService) Capacity(coverData []byte, kind models.ContainerKind) (*models.CapacityResult, error) {
	return controller.Capacity(coverData, kind)
}

func (s *codecService) Encode(req *models.EncodeRequest) (*models.EncodeResponse, error) {
	return controller.Encode(req, s.options())
}

func (s *codecService) Decode(req *models.DecodeRequest) (*models.DecodeResponse, error) {
	return controller.Decode(req, s.options())
}

func (s *codecService) Analyze(carrierData []byte, kind models.ContainerKind) (*models.AnalyzeResponse, error) {
	return controller.Analyze(carrierData, kind, s.options())
}

// pluginService is the default PluginService implementation.
type pluginService struct {
	registry *pluginhost.Registry
}

// NewPluginService wraps registry for listing and toggling. A nil
// registry behaves as if no plugins were ever loaded.
func NewPluginService(registry *pluginhost.Registry) PluginService {
	return &pluginService{registry: registry}
}

func (s *pluginService) List() []models.PluginInfo {
	if s.registry == nil {
		return nil
	}
	all := s.registry.AllMetadata()
	out := make([]models.PluginInfo, 0, len(all))
	for name, enabled := range all {
		out = append(out, models.PluginInfo{Name: name, Enabled: enabled})
	}
	return out
}

func (s *pluginService) SetEnabled(name string, enabled bool) {
	if s.registry == nil {
		return
	}
	s.registry.SetEnabled(name, enabled)
}
