package models

// ContainerKind names a carrier format, matching internal/container's
// Kind values plus whatever extensions enabled plugins declare.
type ContainerKind string

const (
	ContainerPNG ContainerKind = "png"
	ContainerWAV ContainerKind = "wav"
)

// EncodeRequest carries the parameters of one encode job, as collected
// from a multipart form.
type EncodeRequest struct {
	CoverData      []byte
	PayloadData    []byte
	PayloadFilename string
	ContainerKind  ContainerKind
	Encrypt        bool
	KeyData        []byte
}

// EncodeResponse wraps the produced carrier bytes.
type EncodeResponse struct {
	CarrierData []byte
	Filename    string
}
