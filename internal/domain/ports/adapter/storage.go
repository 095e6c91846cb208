package adapter

import "context"

// ArtifactStore archives delivered files and returns their location.
type ArtifactStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
}
