package utils

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// GenerateID returns a new unique identifier string
func GenerateID() string {
	return uuid.New().String()
}

// GenerateTrackingNumber returns a short human readable job reference like "JOB-1A2B3C4D"
func GenerateTrackingNumber() string {
	id := uuid.New()
	return fmt.Sprintf("JOB-%s", strings.ToUpper(id.String()[:8]))
}
