package core

import "github.com/google/uuid"

// NewID returns a new random identifier for stored entities.
func NewID() string {
	return uuid.NewString()
}
