package utils

import (
	"github.com/google/uuid"
)

// NewJobID generates a unique job ID
func NewJobID() string {
	return uuid.NewString()
}

// ShortRunID generates a compact run ID (first UUID block)
func ShortRunID() string {
	return uuid.NewString()[:8]
}
