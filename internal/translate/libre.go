package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// LibreBackend calls a LibreTranslate instance. Second in line after
// the Google endpoint.
type LibreBackend struct {
	baseURL string
	client  *http.Client
}

func NewLibreBackend(baseURL string, client *http.Client) *LibreBackend {
	if client == nil {
		client = http.DefaultClient
	}
	return &LibreBackend{baseURL: baseURL, client: client}
}

func (l *LibreBackend) Name() string { return "libre" }

type libreRequest struct {
	Q      string `json:"q"`
	Source string `json:"source"`
	Target string `json:"target"`
	Format string `json:"format"`
}

type libreResponse struct {
	TranslatedText string `json:"translatedText"`
}

func (l *LibreBackend) Translate(ctx context.Context, text, source, target string) (string, error) {
	body, err := json.Marshal(libreRequest{
		Q:      text,
		Source: source,
		Target: target,
		Format: "text",
	})
	if err != nil {
		return "", fmt.Errorf("encoding libretranslate request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, l.baseURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("building libretranslate request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := l.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling libretranslate: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return "", fmt.Errorf("libretranslate returned status %d", resp.StatusCode)
	}

	var payload libreResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("decoding libretranslate response: %w", err)
	}
	if payload.TranslatedText == "" {
		return "", fmt.Errorf("libretranslate returned empty translation")
	}
	return payload.TranslatedText, nil
}
