package postgresadapter

import (
	"context"

	"github.com/google/uuid"
)

// UUIDGenerator creates UUIDv4 identifiers for folders and assets.
type UUIDGenerator struct{}

func (UUIDGenerator) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}
