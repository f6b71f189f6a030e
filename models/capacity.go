package models

// CapacityResult reports how many payload bytes a cover file can carry
// before the writer would need to auto-expand it.
type CapacityResult struct {
	ContainerKind   string `json:"container_kind"`
	MaxPayloadBytes int64  `json:"max_payload_bytes"`
	HeaderOverhead  int    `json:"header_overhead_bytes"`
}
