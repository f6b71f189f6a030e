package models

import (
	"errors"
)

// Predefined errors for steganography operations
var (
	ErrUnsupportedContainer = errors.New("carrier extension is not built in and no enabled plugin claims it")
	ErrFileTooLarge         = errors.New("file size exceeds maximum allowed limit")
	ErrInvalidFileFormat    = errors.New("invalid file format")
)

type ErrorResponse struct {
	Success bool        `json:"success"`
	Error   ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}
