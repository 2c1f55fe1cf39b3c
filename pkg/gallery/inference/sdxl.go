package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const maxErrorBodySize = 4096

// SDXLGenerator posts image requests to a hosted SDXL predict endpoint that
// answers with {"completion": {"image_0": "<base64>"}}.
type SDXLGenerator struct {
	endpoint   string
	token      string
	httpClient *http.Client
}

var _ ImageBackend = (*SDXLGenerator)(nil)

func NewSDXLGenerator(endpoint string, token string, httpClient *http.Client) *SDXLGenerator {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &SDXLGenerator{
		endpoint:   endpoint,
		token:      token,
		httpClient: httpClient,
	}
}

func (g *SDXLGenerator) GenerateImage(ctx context.Context, req ImageRequest) (*ImageResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal image request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create image request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	if g.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+g.token)
	}

	resp, err := g.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to perform image request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
		return nil, &BackendError{
			Backend:    "sdxl",
			StatusCode: resp.StatusCode,
			Err:        errors.New(strings.TrimSpace(string(msg))),
		}
	}

	var out ImageResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode image response: %w", err)
	}

	return &out, nil
}
