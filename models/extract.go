package models

// DecodeRequest carries the parameters of one decode job.
type DecodeRequest struct {
	CarrierData   []byte
	ContainerKind ContainerKind
	KeyData       []byte
}

// DecodeResponse wraps the recovered payload bytes.
type DecodeResponse struct {
	PayloadData []byte
	Extension   string
}

// AnalyzeResponse reports what a carrier's header reveals without
// decoding its body.
type AnalyzeResponse struct {
	Encrypted bool `json:"encrypted"`
}

// PluginInfo describes one loaded carrier plugin for listing/toggling.
type PluginInfo struct {
	Name    string `json:"name"`
	Enabled bool   `json:"enabled"`
}
