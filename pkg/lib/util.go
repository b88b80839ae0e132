package lib

import (
	"github.com/google/uuid"
)

// NewID returns a random tag used to tell launches and runs apart, even when
// the same program is launched more than once.
func NewID() string {
	return uuid.NewString()
}
