package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/rbright/lma/internal/fault"
	"github.com/rbright/lma/internal/version"
)

const maxErrorBody = 512

func postJSON(ctx context.Context, client *http.Client, backend string, url string, headers map[string]string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s request: %w", backend, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build %s request: %w", backend, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", version.UserAgent())
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%s request: %w: %w", backend, fault.ErrBackendUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s read body: %w: %w", backend, fault.ErrBackendUnavailable, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet := strings.TrimSpace(string(raw))
		if len(snippet) > maxErrorBody {
			snippet = snippet[:maxErrorBody]
		}
		return &StatusError{Backend: backend, StatusCode: resp.StatusCode, Body: snippet}
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%s: %w: %v", backend, ErrMalformedResponse, err)
	}
	return nil
}
