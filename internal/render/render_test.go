package render

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ceramicarte/preventivi-backend/pkg/db/models"
)

func TestFilename(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, "PRV-2026-0007_2026-08-30.pdf", Filename("PRV-2026-0007", FormatPDF, now))
	assert.Equal(t, "preventivo_2026-08-30.png", Filename("", FormatImage, now))
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("pdf")
	require.NoError(t, err)
	assert.Equal(t, FormatPDF, f)

	_, err = ParseFormat("docx")
	require.Error(t, err)
}

func TestHTTPRenderer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req renderRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, FormatPDF, req.Format)
		assert.Equal(t, "PRV-2026-0001", req.Quote.QuoteNumber)

		w.Header().Set("Content-Type", "application/pdf")
		w.Write([]byte("%PDF-1.7 fake"))
	}))
	defer srv.Close()

	renderer := NewHTTPRenderer(srv.URL, 5*time.Second, srv.Client())
	result, err := renderer.Render(context.Background(), &models.Quote{QuoteNumber: "PRV-2026-0001"}, FormatPDF)
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", result.ContentType)
	assert.Equal(t, []byte("%PDF-1.7 fake"), result.Content)
}

func TestHTTPRenderer_UpstreamFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	renderer := NewHTTPRenderer(srv.URL, 5*time.Second, srv.Client())
	_, err := renderer.Render(context.Background(), &models.Quote{}, FormatImage)
	require.Error(t, err)
}

func TestHTTPRenderer_Unconfigured(t *testing.T) {
	renderer := NewHTTPRenderer("", time.Second, nil)
	_, err := renderer.Render(context.Background(), &models.Quote{}, FormatPDF)
	require.Error(t, err)
}
