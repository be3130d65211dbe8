package translate

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// GoogleBackend calls the public Google Translate endpoint used by the
// browser widget. No API key, so it is first in line but rate limited.
type GoogleBackend struct {
	baseURL string
	client  *http.Client
}

func NewGoogleBackend(baseURL string, client *http.Client) *GoogleBackend {
	if client == nil {
		client = http.DefaultClient
	}
	return &GoogleBackend{baseURL: baseURL, client: client}
}

func (g *GoogleBackend) Name() string { return "google" }

func (g *GoogleBackend) Translate(ctx context.Context, text, source, target string) (string, error) {
	q := url.Values{}
	q.Set("client", "gtx")
	q.Set("sl", source)
	q.Set("tl", target)
	q.Set("dt", "t")
	q.Set("q", text)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("building google translate request: %w", err)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling google translate: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return "", fmt.Errorf("google translate returned status %d", resp.StatusCode)
	}

	// The response is a nested array. Element 0 holds the segments,
	// each segment's element 0 is the translated text.
	var payload []json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("decoding google translate response: %w", err)
	}
	if len(payload) == 0 {
		return "", fmt.Errorf("empty google translate response")
	}

	var segments [][]json.RawMessage
	if err := json.Unmarshal(payload[0], &segments); err != nil {
		return "", fmt.Errorf("decoding google translate segments: %w", err)
	}

	var sb strings.Builder
	for _, seg := range segments {
		if len(seg) == 0 {
			continue
		}
		var part string
		if err := json.Unmarshal(seg[0], &part); err != nil {
			continue
		}
		sb.WriteString(part)
	}

	translated := sb.String()
	if translated == "" {
		return "", fmt.Errorf("google translate returned no segments")
	}
	return translated, nil
}
