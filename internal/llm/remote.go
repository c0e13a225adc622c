package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

// RemoteBackend speaks the OpenAI chat-completions protocol.
type RemoteBackend struct {
	URL          string
	APIKey       string
	Model        string
	SystemPrompt string
	Client       *http.Client
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL string `json:"url"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (b *RemoteBackend) Name() string { return "remote" }

func (b *RemoteBackend) Complete(ctx context.Context, req Request) (string, error) {
	messages := make([]chatMessage, 0, 2)
	if strings.TrimSpace(b.SystemPrompt) != "" {
		messages = append(messages, chatMessage{Role: "system", Content: b.SystemPrompt})
	}

	if req.ImageBase64 == "" {
		messages = append(messages, chatMessage{Role: "user", Content: req.Text})
	} else {
		messages = append(messages, chatMessage{Role: "user", Content: []contentPart{
			{Type: "text", Text: req.Text},
			{Type: "image_url", ImageURL: &imageURL{URL: "data:image/png;base64," + req.ImageBase64}},
		}})
	}

	headers := map[string]string{}
	if b.APIKey != "" {
		headers["Authorization"] = "Bearer " + b.APIKey
	}

	var resp chatResponse
	if err := postJSON(ctx, httpClient(b.Client), b.Name(), b.URL, headers, chatRequest{Model: b.Model, Messages: messages}, &resp); err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%s: %w: no choices", b.Name(), ErrMalformedResponse)
	}
	content := resp.Choices[0].Message.Content
	if strings.TrimSpace(content) == "" {
		return "", fmt.Errorf("%s: %w: empty content", b.Name(), ErrMalformedResponse)
	}
	return content, nil
}
