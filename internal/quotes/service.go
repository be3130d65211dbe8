package quotes

import (
	"context"
	stdErrors "errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/ceramicarte/preventivi-backend/internal/catalog"
	"github.com/ceramicarte/preventivi-backend/internal/render"
	"github.com/ceramicarte/preventivi-backend/pkg/db"
	"github.com/ceramicarte/preventivi-backend/pkg/db/models"
	"github.com/ceramicarte/preventivi-backend/pkg/enums"
	pkgerrors "github.com/ceramicarte/preventivi-backend/pkg/errors"
	"github.com/ceramicarte/preventivi-backend/pkg/logger"
	"github.com/ceramicarte/preventivi-backend/pkg/metrics"
	"github.com/ceramicarte/preventivi-backend/pkg/types"
)

// DetailsUpdate mutates quote-level fields of a draft. Pointer fields
// left nil are untouched. Setting PaymentMethod to an empty string
// clears it.
type DetailsUpdate struct {
	CustomerName    *string
	CustomerEmail   *string
	CustomerPhone   *string
	CustomerAddress *string
	DiscountPercent *decimal.Decimal
	Notes           *string
	PaymentMethod   *string
	PaymentDetails  *string
	ValidityDays    *int
}

// ExportResult is a rendered document plus its download metadata.
type ExportResult struct {
	Filename    string
	ContentType string
	Content     []byte
}

// Service is the quote workflow root: editing sessions, persistence,
// finalization and export.
type Service interface {
	CreateDraft(ctx context.Context) (*DraftDTO, error)
	OpenQuote(ctx context.Context, quoteID uuid.UUID) (*DraftDTO, error)
	GetDraft(ctx context.Context, sessionID uuid.UUID) (*DraftDTO, error)
	CloseDraft(ctx context.Context, sessionID uuid.UUID) error

	AddManualItem(ctx context.Context, sessionID uuid.UUID) (*DraftDTO, error)
	AddProductItem(ctx context.Context, sessionID, productID uuid.UUID, quantity int) (*DraftDTO, error)
	UpdateItem(ctx context.Context, sessionID, itemID uuid.UUID, update ItemUpdate) (*DraftDTO, error)
	SetItemProduct(ctx context.Context, sessionID, itemID, productID uuid.UUID) (*DraftDTO, error)
	RemoveItem(ctx context.Context, sessionID, itemID uuid.UUID) (*DraftDTO, error)
	ApplyPackage(ctx context.Context, sessionID, packageID uuid.UUID) (*DraftDTO, error)
	ClearPackage(ctx context.Context, sessionID uuid.UUID) (*DraftDTO, error)

	SetLanguage(ctx context.Context, sessionID uuid.UUID, lang enums.Language) (*DraftDTO, error)
	UpdateDetails(ctx context.Context, sessionID uuid.UUID, update DetailsUpdate) (*DraftDTO, error)

	SaveDraft(ctx context.Context, sessionID uuid.UUID) (*DraftDTO, error)
	Finalize(ctx context.Context, sessionID uuid.UUID) (*DraftDTO, error)
	Export(ctx context.Context, sessionID uuid.UUID, format render.Format) (*ExportResult, error)

	ListQuotes(ctx context.Context, status *enums.QuoteStatus) ([]models.Quote, error)
	GetQuote(ctx context.Context, id uuid.UUID) (*models.Quote, error)
	DeleteQuote(ctx context.Context, id uuid.UUID) error
	SetQuoteStatus(ctx context.Context, id uuid.UUID, status enums.QuoteStatus) (*models.Quote, error)
	Duplicate(ctx context.Context, quoteID uuid.UUID) (*DraftDTO, error)
}

type service struct {
	client    *db.Client
	repo      *Repository
	manager   *Manager
	catalog   catalog.Service
	localizer *Localizer
	renderer  render.Renderer
	metrics   *metrics.Registry
	log       *logger.Logger
}

func NewService(
	client *db.Client,
	manager *Manager,
	catalogSvc catalog.Service,
	localizer *Localizer,
	renderer render.Renderer,
	reg *metrics.Registry,
	log *logger.Logger,
) Service {
	return &service{
		client:    client,
		repo:      NewRepository(client.DB),
		manager:   manager,
		catalog:   catalogSvc,
		localizer: localizer,
		renderer:  renderer,
		metrics:   reg,
		log:       log,
	}
}

func (s *service) CreateDraft(ctx context.Context) (*DraftDTO, error) {
	d := NewDraft()
	s.manager.Put(d)
	s.log.Info(s.log.WithDraftID(ctx, d.ID.String()), "draft session created")
	return NewDraftDTO(d), nil
}

func (s *service) OpenQuote(ctx context.Context, quoteID uuid.UUID) (*DraftDTO, error) {
	quote, err := s.GetQuote(ctx, quoteID)
	if err != nil {
		return nil, err
	}

	d := DraftFromQuote(quote)
	s.manager.Put(d)
	s.relocalize(ctx, d.ID)

	s.log.Info(s.log.WithFields(ctx, map[string]any{
		"draft_id": d.ID.String(),
		"quote_id": quoteID.String(),
	}), "quote opened for editing")
	return s.GetDraft(ctx, d.ID)
}

func (s *service) GetDraft(_ context.Context, sessionID uuid.UUID) (*DraftDTO, error) {
	var dto *DraftDTO
	err := s.manager.With(sessionID, func(d *Draft) error {
		dto = NewDraftDTO(d)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dto, nil
}

func (s *service) CloseDraft(_ context.Context, sessionID uuid.UUID) error {
	s.manager.Delete(sessionID)
	return nil
}

func (s *service) AddManualItem(ctx context.Context, sessionID uuid.UUID) (*DraftDTO, error) {
	return s.mutate(ctx, sessionID, func(d *Draft) error {
		d.AddManualItem()
		return nil
	})
}

func (s *service) AddProductItem(ctx context.Context, sessionID, productID uuid.UUID, quantity int) (*DraftDTO, error) {
	product, err := s.catalog.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	if _, err := s.mutate(ctx, sessionID, func(d *Draft) error {
		_, addErr := d.AddProductItem(*product, quantity)
		return addErr
	}); err != nil {
		return nil, err
	}
	s.relocalize(ctx, sessionID)
	return s.GetDraft(ctx, sessionID)
}

func (s *service) UpdateItem(ctx context.Context, sessionID, itemID uuid.UUID, update ItemUpdate) (*DraftDTO, error) {
	return s.mutate(ctx, sessionID, func(d *Draft) error {
		return d.UpdateItem(itemID, update)
	})
}

func (s *service) SetItemProduct(ctx context.Context, sessionID, itemID, productID uuid.UUID) (*DraftDTO, error) {
	product, err := s.catalog.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	if _, err := s.mutate(ctx, sessionID, func(d *Draft) error {
		return d.SetItemProduct(itemID, *product)
	}); err != nil {
		return nil, err
	}
	s.relocalize(ctx, sessionID)
	return s.GetDraft(ctx, sessionID)
}

func (s *service) RemoveItem(ctx context.Context, sessionID, itemID uuid.UUID) (*DraftDTO, error) {
	return s.mutate(ctx, sessionID, func(d *Draft) error {
		return d.RemoveItem(itemID)
	})
}

func (s *service) ApplyPackage(ctx context.Context, sessionID, packageID uuid.UUID) (*DraftDTO, error) {
	pkg, products, err := s.catalog.ResolvePackage(ctx, packageID)
	if err != nil {
		return nil, err
	}
	if _, err := s.mutate(ctx, sessionID, func(d *Draft) error {
		d.ApplyPackage(pkg, products)
		return nil
	}); err != nil {
		return nil, err
	}
	s.relocalize(ctx, sessionID)
	return s.GetDraft(ctx, sessionID)
}

func (s *service) ClearPackage(ctx context.Context, sessionID uuid.UUID) (*DraftDTO, error) {
	return s.mutate(ctx, sessionID, func(d *Draft) error {
		d.ClearPackage()
		return nil
	})
}

func (s *service) SetLanguage(ctx context.Context, sessionID uuid.UUID, lang enums.Language) (*DraftDTO, error) {
	if _, err := s.mutate(ctx, sessionID, func(d *Draft) error {
		return d.SetLanguage(lang)
	}); err != nil {
		return nil, err
	}
	s.relocalize(ctx, sessionID)
	return s.GetDraft(ctx, sessionID)
}

func (s *service) UpdateDetails(ctx context.Context, sessionID uuid.UUID, update DetailsUpdate) (*DraftDTO, error) {
	return s.mutate(ctx, sessionID, func(d *Draft) error {
		if update.CustomerName != nil || update.CustomerEmail != nil ||
			update.CustomerPhone != nil || update.CustomerAddress != nil {
			d.SetCustomer(CustomerUpdate{
				Name:    update.CustomerName,
				Email:   update.CustomerEmail,
				Phone:   update.CustomerPhone,
				Address: update.CustomerAddress,
			})
		}
		if update.DiscountPercent != nil {
			if err := d.SetDiscount(*update.DiscountPercent); err != nil {
				return err
			}
		}
		if update.Notes != nil {
			d.SetNotes(*update.Notes)
		}
		if update.PaymentMethod != nil || update.PaymentDetails != nil {
			method := d.PaymentMethod
			if update.PaymentMethod != nil {
				if *update.PaymentMethod == "" {
					method = nil
				} else {
					parsed, err := enums.ParsePaymentMethod(*update.PaymentMethod)
					if err != nil {
						return pkgerrors.New(pkgerrors.CodeValidation, err.Error())
					}
					method = &parsed
				}
			}
			details := d.PaymentDetails
			if update.PaymentDetails != nil {
				details = *update.PaymentDetails
			}
			if err := d.SetPayment(method, details); err != nil {
				return err
			}
		}
		if update.ValidityDays != nil {
			if err := d.SetValidityDays(*update.ValidityDays); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *service) SaveDraft(ctx context.Context, sessionID uuid.UUID) (*DraftDTO, error) {
	var (
		quote    *models.Quote
		creating bool
	)
	err := s.manager.With(sessionID, func(d *Draft) error {
		if err := d.validateForSave(); err != nil {
			return err
		}
		quote = d.ToQuote()
		creating = d.QuoteID == nil
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = s.client.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if creating {
			number, numErr := repo.NextQuoteNumber(ctx, time.Now())
			if numErr != nil {
				return numErr
			}
			quote.QuoteNumber = number
			_, txErr := repo.Create(ctx, quote)
			return txErr
		}
		_, txErr := repo.Update(ctx, quote)
		return txErr
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "saving quote")
	}

	err = s.manager.With(sessionID, func(d *Draft) error {
		quoteID := quote.ID
		d.QuoteID = &quoteID
		d.QuoteNumber = quote.QuoteNumber
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info(s.log.WithFields(ctx, map[string]any{
		"draft_id":     sessionID.String(),
		"quote_number": quote.QuoteNumber,
	}), "quote saved")
	return s.GetDraft(ctx, sessionID)
}

func (s *service) Finalize(ctx context.Context, sessionID uuid.UUID) (*DraftDTO, error) {
	var (
		gen       uint64
		in        PassInput
		hasMethod bool
	)
	err := s.manager.With(sessionID, func(d *Draft) error {
		var beginErr error
		gen, beginErr = d.BeginFinalize()
		if beginErr != nil {
			return beginErr
		}
		in = d.PassInput()
		hasMethod = d.PaymentMethod != nil
		return nil
	})
	if err != nil {
		return nil, err
	}

	sources, err := s.sourcesFor(ctx, in.Items)
	if err != nil {
		s.abortFinalize(sessionID, gen)
		return nil, err
	}

	// Translation failures degrade per field inside the pass, they
	// never fail finalization.
	snapshot, _ := s.localizer.Snapshot(ctx, in, sources, hasMethod)

	err = s.manager.With(sessionID, func(d *Draft) error {
		return d.CompleteFinalize(gen, snapshot)
	})
	if err != nil {
		if stdErrors.Is(err, ErrStalePass) {
			return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "draft changed during finalization, retry")
		}
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.QuoteFinalizations.Inc()
	}
	s.log.Info(s.log.WithDraftID(ctx, sessionID.String()), "quote finalized")
	return s.GetDraft(ctx, sessionID)
}

func (s *service) Export(ctx context.Context, sessionID uuid.UUID, format render.Format) (*ExportResult, error) {
	if !format.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "export format must be pdf or image")
	}

	var quote *models.Quote
	err := s.manager.With(sessionID, func(d *Draft) error {
		if d.State() != StateFinalized {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "quote must be finalized before export")
		}
		quote = d.ToQuote()
		return nil
	})
	if err != nil {
		return nil, err
	}

	result, err := s.renderer.Render(ctx, quote, format)
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.QuoteExports.WithLabelValues(string(format)).Inc()
	}
	return &ExportResult{
		Filename:    render.Filename(quote.QuoteNumber, format, time.Now()),
		ContentType: result.ContentType,
		Content:     result.Content,
	}, nil
}

func (s *service) ListQuotes(ctx context.Context, status *enums.QuoteStatus) ([]models.Quote, error) {
	quotes, err := s.repo.List(ctx, status)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing quotes")
	}
	return quotes, nil
}

func (s *service) GetQuote(ctx context.Context, id uuid.UUID) (*models.Quote, error) {
	quote, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if stdErrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "quote not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading quote")
	}
	return quote, nil
}

func (s *service) DeleteQuote(ctx context.Context, id uuid.UUID) error {
	if _, err := s.GetQuote(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "deleting quote")
	}
	s.log.Info(s.log.WithQuoteID(ctx, id.String()), "quote deleted")
	return nil
}

func (s *service) SetQuoteStatus(ctx context.Context, id uuid.UUID, status enums.QuoteStatus) (*models.Quote, error) {
	if !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid quote status")
	}
	quote, err := s.GetQuote(ctx, id)
	if err != nil {
		return nil, err
	}
	quote.Status = status
	updated, err := s.repo.Update(ctx, quote)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "updating quote status")
	}
	return updated, nil
}

// Duplicate copies a stored quote into a brand-new persisted draft
// with a fresh number and opens an editing session for it. Payment
// method and details are deliberately not carried over.
func (s *service) Duplicate(ctx context.Context, quoteID uuid.UUID) (*DraftDTO, error) {
	source, err := s.GetQuote(ctx, quoteID)
	if err != nil {
		return nil, err
	}

	clone := &models.Quote{
		CustomerName:     source.CustomerName,
		CustomerEmail:    source.CustomerEmail,
		CustomerPhone:    source.CustomerPhone,
		CustomerAddress:  source.CustomerAddress,
		Language:         source.Language,
		Items:            duplicateItems(source.Items),
		AppliedPackageID: source.AppliedPackageID,
		DiscountPercent:  source.DiscountPercent,
		Subtotal:         source.Subtotal,
		DiscountAmount:   source.DiscountAmount,
		Total:            source.Total,
		Notes:            source.Notes,
		ValidityDays:     source.ValidityDays,
		Status:           enums.QuoteStatusDraft,
	}

	err = s.client.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		number, numErr := repo.NextQuoteNumber(ctx, time.Now())
		if numErr != nil {
			return numErr
		}
		clone.QuoteNumber = number
		_, txErr := repo.Create(ctx, clone)
		return txErr
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "duplicating quote")
	}

	s.log.Info(s.log.WithFields(ctx, map[string]any{
		"source_quote_id": quoteID.String(),
		"quote_number":    clone.QuoteNumber,
	}), "quote duplicated")
	return s.OpenQuote(ctx, clone.ID)
}

// mutate runs fn under the session lock and returns the refreshed DTO.
func (s *service) mutate(_ context.Context, sessionID uuid.UUID, fn func(d *Draft) error) (*DraftDTO, error) {
	var dto *DraftDTO
	err := s.manager.With(sessionID, func(d *Draft) error {
		if err := fn(d); err != nil {
			return err
		}
		dto = NewDraftDTO(d)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dto, nil
}

// relocalize runs one localization pass against the draft's current
// content and installs the view unless a newer edit superseded it.
func (s *service) relocalize(ctx context.Context, sessionID uuid.UUID) {
	var in PassInput
	if err := s.manager.With(sessionID, func(d *Draft) error {
		in = d.PassInput()
		return nil
	}); err != nil {
		return
	}

	sources, err := s.sourcesFor(ctx, in.Items)
	if err != nil {
		s.log.Warn(s.log.WithDraftID(ctx, sessionID.String()), "skipping localization, catalog unavailable")
		return
	}

	view, _ := s.localizer.Run(ctx, in, sources)

	_ = s.manager.With(sessionID, func(d *Draft) error {
		if err := d.SetLocalized(view); stdErrors.Is(err, ErrStalePass) {
			s.log.Info(s.log.WithDraftID(ctx, sessionID.String()), "dropped stale localization pass")
		}
		return nil
	})
}

func (s *service) abortFinalize(sessionID uuid.UUID, gen uint64) {
	_ = s.manager.With(sessionID, func(d *Draft) error {
		d.AbortFinalize(gen)
		return nil
	})
}

func (s *service) sourcesFor(ctx context.Context, items types.QuoteItems) (map[uuid.UUID]models.Product, error) {
	ids := make([]uuid.UUID, 0, len(items))
	seen := make(map[uuid.UUID]struct{}, len(items))
	for _, item := range items {
		if item.ProductID == nil {
			continue
		}
		if _, ok := seen[*item.ProductID]; ok {
			continue
		}
		seen[*item.ProductID] = struct{}{}
		ids = append(ids, *item.ProductID)
	}
	if len(ids) == 0 {
		return map[uuid.UUID]models.Product{}, nil
	}

	products, err := s.catalog.GetProductsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	return products, nil
}

// duplicateItems deep-copies lines with fresh line ids.
func duplicateItems(items types.QuoteItems) types.QuoteItems {
	out := make(types.QuoteItems, len(items))
	for i, item := range items {
		copied := item
		copied.ID = uuid.New()
		out[i] = copied
	}
	return out
}
