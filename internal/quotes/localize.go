package quotes

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/ceramicarte/preventivi-backend/internal/translate"
	"github.com/ceramicarte/preventivi-backend/pkg/db/models"
	"github.com/ceramicarte/preventivi-backend/pkg/enums"
	"github.com/ceramicarte/preventivi-backend/pkg/logger"
	"github.com/ceramicarte/preventivi-backend/pkg/metrics"
	"github.com/ceramicarte/preventivi-backend/pkg/types"
)

// translateConcurrency caps the fan-out of one localization pass. The
// backends are free public endpoints, hammering them gets the whole
// pass rate limited.
const translateConcurrency = 8

// Localizer produces the display-language projection of a draft. Text
// is always derived from the Italian source, either the catalog
// product's current fields or the literal the admin typed for free
// lines. It never feeds previously translated output back in.
type Localizer struct {
	gateway translate.Gateway
	log     *logger.Logger
	metrics *metrics.Registry
}

func NewLocalizer(gateway translate.Gateway, log *logger.Logger, reg *metrics.Registry) *Localizer {
	return &Localizer{gateway: gateway, log: log, metrics: reg}
}

// itemSource resolves the Italian source text for a line. Catalog
// lines re-derive from the product so later catalog edits are picked
// up; free lines use the typed text as-is.
func itemSource(item types.QuoteItem, sources map[uuid.UUID]models.Product) (string, string) {
	if item.ProductID != nil {
		if product, ok := sources[*item.ProductID]; ok {
			return product.Name, product.Description
		}
	}
	return item.Name, item.Description
}

// Run executes one localization pass over the given input. Field
// translations fan out concurrently and the view is assembled only
// after every call settles. The returned error aggregates per-field
// fallbacks and is advisory, the view is always usable.
func (l *Localizer) Run(ctx context.Context, in PassInput, sources map[uuid.UUID]models.Product) (LocalizedView, error) {
	view := LocalizedView{
		Language:   in.Language,
		Items:      make([]types.TranslatedItem, len(in.Items)),
		Generation: in.Generation,
	}

	var (
		mu       sync.Mutex
		warnings error
	)
	record := func(err error) {
		if err == nil {
			return
		}
		mu.Lock()
		warnings = multierr.Append(warnings, err)
		mu.Unlock()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(translateConcurrency)

	for i := range in.Items {
		item := in.Items[i]
		idx := i
		g.Go(func() error {
			name, description := itemSource(item, sources)

			translatedName, err := l.field(gctx, name, in.Language)
			record(err)
			translatedDesc, err := l.field(gctx, description, in.Language)
			record(err)

			view.Items[idx] = types.TranslatedItem{
				Name:        translatedName,
				Description: translatedDesc,
			}
			return nil
		})
	}

	g.Go(func() error {
		translated, err := l.field(gctx, in.Notes, in.Language)
		record(err)
		mu.Lock()
		view.Notes = translated
		mu.Unlock()
		return nil
	})
	g.Go(func() error {
		translated, err := l.field(gctx, in.PaymentDetails, in.Language)
		record(err)
		mu.Lock()
		view.PaymentDetails = translated
		mu.Unlock()
		return nil
	})

	// Group functions never return errors, Wait is pure fan-in here.
	_ = g.Wait()

	if warnings != nil && l.log != nil {
		l.log.Warn(l.log.WithFields(ctx, map[string]any{
			"language": in.Language.String(),
			"failures": len(multierr.Errors(warnings)),
		}), "localization pass degraded to Italian for some fields")
	}
	return view, warnings
}

// field translates one text, falling back to the normalized Italian
// source when every backend fails. The error is returned for
// aggregation but the returned text is always usable.
func (l *Localizer) field(ctx context.Context, text string, target enums.Language) (string, error) {
	if text == "" {
		return "", nil
	}
	if target == enums.LanguageItalian {
		return translate.Normalize(text), nil
	}
	translated, err := l.gateway.Translate(ctx, text, enums.LanguageItalian, target)
	if err != nil {
		if l.metrics != nil {
			l.metrics.TranslationFallback.Inc()
		}
		return translate.Normalize(text), err
	}
	return translated, nil
}

// Snapshot runs a localization pass and freezes the result into the
// cleaned form used by preview and export: names and descriptions
// trimmed, blank notes dropped, payment details dropped when no
// payment method is set.
func (l *Localizer) Snapshot(ctx context.Context, in PassInput, sources map[uuid.UUID]models.Product, hasPaymentMethod bool) (types.QuoteSnapshot, error) {
	view, warnings := l.Run(ctx, in, sources)

	items := make(types.QuoteItems, len(in.Items))
	for i, item := range in.Items {
		frozen := item
		frozen.Name = strings.TrimSpace(view.Items[i].Name)
		frozen.Description = strings.TrimSpace(view.Items[i].Description)
		items[i] = frozen
	}

	snapshot := types.QuoteSnapshot{
		Language:    in.Language.String(),
		Items:       items,
		Notes:       strings.TrimSpace(view.Notes),
		GeneratedAt: time.Now(),
	}
	if hasPaymentMethod {
		snapshot.PaymentDetails = strings.TrimSpace(view.PaymentDetails)
	}
	return snapshot, warnings
}
