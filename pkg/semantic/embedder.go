// Package semantic scores the meaning-similarity of string pairs using
// vector embeddings and classifies each pair against a configurable
// threshold profile.
package semantic

import (
	"context"
	"fmt"
)

// Embedder generates a vector embedding for text. Implementations must be
// deterministic for a fixed model identifier.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// ProviderError reports a failed embedding call: transport failure, an
// over-length input, or a malformed provider response.
type ProviderError struct {
	Model string
	Err   error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("embedding provider (model %s): %v", e.Model, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }
