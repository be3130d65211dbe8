package render

import (
	"context"
	"fmt"
	"time"

	"github.com/ceramicarte/preventivi-backend/pkg/db/models"
)

// Format selects the export output type.
type Format string

const (
	FormatPDF   Format = "pdf"
	FormatImage Format = "image"
)

func (f Format) IsValid() bool {
	return f == FormatPDF || f == FormatImage
}

func (f Format) Extension() string {
	if f == FormatImage {
		return "png"
	}
	return "pdf"
}

func ParseFormat(raw string) (Format, error) {
	f := Format(raw)
	if !f.IsValid() {
		return "", fmt.Errorf("invalid export format: %q", raw)
	}
	return f, nil
}

// Result is a rendered document ready to be sent to the client.
type Result struct {
	Content     []byte
	ContentType string
}

// Renderer turns a finalized quote into a downloadable document. The
// rendering service itself is external, only the contract lives here.
type Renderer interface {
	Render(ctx context.Context, quote *models.Quote, format Format) (*Result, error)
}

// Filename builds the download name, falling back to "preventivo" for
// quotes that were never assigned a number.
func Filename(quoteNumber string, format Format, now time.Time) string {
	base := quoteNumber
	if base == "" {
		base = "preventivo"
	}
	return fmt.Sprintf("%s_%s.%s", base, now.Format("2006-01-02"), format.Extension())
}
