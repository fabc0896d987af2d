package semantic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultMaxInputBytes = 8192

// HTTPEmbedder calls an OpenAI-compatible /v1/embeddings endpoint. Local
// inference servers speaking the same wire format work unchanged.
type HTTPEmbedder struct {
	endpoint      string
	apiKey        string
	model         string
	maxInputBytes int
	client        *http.Client
}

// NewHTTPEmbedder creates an embedder for the given endpoint and model.
// The API key may be empty for unauthenticated local servers.
func NewHTTPEmbedder(endpoint, apiKey, model string) *HTTPEmbedder {
	return &HTTPEmbedder{
		endpoint:      strings.TrimRight(endpoint, "/"),
		apiKey:        apiKey,
		model:         model,
		maxInputBytes: defaultMaxInputBytes,
		client:        &http.Client{Timeout: 30 * time.Second},
	}
}

// Model returns the fixed model identifier this embedder is bound to.
func (e *HTTPEmbedder) Model() string { return e.model }

type embedRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embedResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
}

// Embed requests a vector for text. All failure modes surface as
// *ProviderError so callers can degrade the affected record instead of
// aborting the comparison.
func (e *HTTPEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if len(text) > e.maxInputBytes {
		return nil, &ProviderError{Model: e.model, Err: fmt.Errorf("input of %d bytes exceeds limit of %d", len(text), e.maxInputBytes)}
	}

	body, err := json.Marshal(embedRequest{Model: e.model, Input: []string{text}})
	if err != nil {
		return nil, &ProviderError{Model: e.model, Err: fmt.Errorf("marshaling request: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, "POST", e.endpoint+"/v1/embeddings", bytes.NewReader(body))
	if err != nil {
		return nil, &ProviderError{Model: e.model, Err: fmt.Errorf("creating request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	if e.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+e.apiKey)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, &ProviderError{Model: e.model, Err: fmt.Errorf("request failed: %w", err)}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, &ProviderError{Model: e.model, Err: fmt.Errorf("endpoint returned %d: %s", resp.StatusCode, string(respBody))}
	}

	var decoded embedResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, &ProviderError{Model: e.model, Err: fmt.Errorf("decoding response: %w", err)}
	}
	if len(decoded.Data) == 0 || len(decoded.Data[0].Embedding) == 0 {
		return nil, &ProviderError{Model: e.model, Err: fmt.Errorf("empty embedding in response")}
	}

	return decoded.Data[0].Embedding, nil
}
