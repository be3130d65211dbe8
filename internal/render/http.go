package render

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ceramicarte/preventivi-backend/pkg/db/models"
	pkgerrors "github.com/ceramicarte/preventivi-backend/pkg/errors"
)

// HTTPRenderer posts the finalized quote to an external rendering
// service and streams back the produced document.
type HTTPRenderer struct {
	url    string
	client *http.Client
}

func NewHTTPRenderer(url string, timeout time.Duration, client *http.Client) *HTTPRenderer {
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}
	return &HTTPRenderer{url: url, client: client}
}

type renderRequest struct {
	Quote  *models.Quote `json:"quote"`
	Format Format        `json:"format"`
}

func (r *HTTPRenderer) Render(ctx context.Context, quote *models.Quote, format Format) (*Result, error) {
	if r.url == "" {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "render service is not configured")
	}

	body, err := json.Marshal(renderRequest{Quote: quote, Format: format})
	if err != nil {
		return nil, fmt.Errorf("encoding render request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building render request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "calling render service")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, pkgerrors.New(pkgerrors.CodeDependency, fmt.Sprintf("render service returned status %d", resp.StatusCode))
	}

	content, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reading rendered document")
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return &Result{Content: content, ContentType: contentType}, nil
}
