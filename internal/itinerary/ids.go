package itinerary

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jxskiss/base62"
)

// IDSource hands out identifiers that are unique across concurrent callers.
type IDSource interface {
	NewID(prefix string) (string, error)
}

type Clock interface {
	Now() time.Time
}

// UUIDSource builds "<PREFIX>-<base62 uuid v7>" identifiers.
type UUIDSource struct{}

func (UUIDSource) NewID(prefix string) (string, error) {
	u, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	id := base62.EncodeToString(u[:])
	prefix = strings.ToUpper(strings.TrimSpace(prefix))
	if prefix == "" {
		return id, nil
	}
	return prefix + "-" + id, nil
}

type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}
