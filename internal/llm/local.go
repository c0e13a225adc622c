package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

// LocalBackend speaks the Ollama generate protocol.
type LocalBackend struct {
	Endpoint     string
	Model        string
	SystemPrompt string
	Client       *http.Client
}

type generateRequest struct {
	Model  string   `json:"model"`
	Prompt string   `json:"prompt"`
	System string   `json:"system,omitempty"`
	Images []string `json:"images,omitempty"`
	Stream bool     `json:"stream"`
}

type generateResponse struct {
	Response string `json:"response"`
	Error    string `json:"error"`
}

func (b *LocalBackend) Name() string { return "local" }

func (b *LocalBackend) Complete(ctx context.Context, req Request) (string, error) {
	payload := generateRequest{
		Model:  b.Model,
		Prompt: req.Text,
		System: b.SystemPrompt,
		Stream: false,
	}
	if req.ImageBase64 != "" {
		payload.Images = []string{req.ImageBase64}
	}

	url := strings.TrimRight(b.Endpoint, "/") + "/api/generate"
	var resp generateResponse
	if err := postJSON(ctx, httpClient(b.Client), b.Name(), url, nil, payload, &resp); err != nil {
		return "", err
	}
	if resp.Error != "" {
		return "", fmt.Errorf("%s: %w: %s", b.Name(), ErrMalformedResponse, resp.Error)
	}
	if strings.TrimSpace(resp.Response) == "" {
		return "", fmt.Errorf("%s: %w: empty response", b.Name(), ErrMalformedResponse)
	}
	return resp.Response, nil
}

func httpClient(client *http.Client) *http.Client {
	if client == nil {
		return http.DefaultClient
	}
	return client
}
