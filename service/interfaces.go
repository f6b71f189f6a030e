package service

import (
	"github.com/sndpng/spng/models"
)

// CodecService defines the interface for steganographic encode/decode
// operations over the PNG and WAV carriers (plus any enabled plugin
// carrier).
type CodecService interface {
	// Capacity reports how many payload bytes coverData can carry as
	// the given container kind before the writer must auto-expand it.
	Capacity(coverData []byte, kind models.ContainerKind) (*models.CapacityResult, error)

	// Encode hides req's payload inside req's cover and returns the
	// resulting carrier bytes.
	Encode(req *models.EncodeRequest) (*models.EncodeResponse, error)

	// Decode recovers the payload hidden inside req's carrier bytes.
	Decode(req *models.DecodeRequest) (*models.DecodeResponse, error)

	// Analyze reports whether a carrier's payload is encrypted without
	// decoding its body.
	Analyze(carrierData []byte, kind models.ContainerKind) (*models.AnalyzeResponse, error)
}

// PluginService defines the interface for discovering and toggling
// carrier plugins.
type PluginService interface {
	// List returns every loaded plugin's name and enabled state.
	List() []models.PluginInfo

	// SetEnabled toggles whether a loaded plugin participates in
	// dispatch.
	SetEnabled(name string, enabled bool)
}
