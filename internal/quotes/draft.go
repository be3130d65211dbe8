package quotes

import (
	stdErrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ceramicarte/preventivi-backend/pkg/db/models"
	"github.com/ceramicarte/preventivi-backend/pkg/enums"
	pkgerrors "github.com/ceramicarte/preventivi-backend/pkg/errors"
	"github.com/ceramicarte/preventivi-backend/pkg/types"
)

// DraftState is the finalization state of an editing session.
type DraftState string

const (
	StateEditable   DraftState = "editable"
	StateFinalizing DraftState = "finalizing"
	StateFinalized  DraftState = "finalized"
)

// ErrStalePass marks a localization or finalization result that was
// produced against an older version of the draft and must be dropped.
var ErrStalePass = stdErrors.New("stale pass superseded by a newer edit")

// LocalizedView is the display-language projection of a draft produced
// by one localization pass. The draft's own fields stay in Italian.
type LocalizedView struct {
	Language       enums.Language
	Items          []types.TranslatedItem
	Notes          string
	PaymentDetails string
	Generation     uint64
}

// Draft is one in-memory quote editing session. Item names,
// descriptions and notes are kept in canonical Italian; display text
// lives in the localized view and in the finalized snapshot. A Draft
// is not safe for concurrent use, the session manager serializes
// access.
type Draft struct {
	ID      uuid.UUID
	QuoteID *uuid.UUID

	QuoteNumber string

	CustomerName    string
	CustomerEmail   string
	CustomerPhone   string
	CustomerAddress string

	Language enums.Language

	Items            types.QuoteItems
	AppliedPackageID *uuid.UUID

	DiscountPercent decimal.Decimal
	Notes           string
	PaymentMethod   *enums.PaymentMethod
	PaymentDetails  string
	ValidityDays    int
	Status          enums.QuoteStatus

	state       DraftState
	gen         uint64
	localized   *LocalizedView
	snapshot    types.QuoteSnapshot
	finalizedAt *time.Time

	CreatedAt time.Time
}

// NewDraft starts a blank Italian draft.
func NewDraft() *Draft {
	return &Draft{
		ID:           uuid.New(),
		Language:     enums.LanguageItalian,
		Items:        types.QuoteItems{},
		ValidityDays: 30,
		Status:       enums.QuoteStatusDraft,
		state:        StateEditable,
		CreatedAt:    time.Now(),
	}
}

// DraftFromQuote opens a stored quote for editing. Package membership
// survives reload because each item carries its source package id.
func DraftFromQuote(q *models.Quote) *Draft {
	d := NewDraft()
	quoteID := q.ID
	d.QuoteID = &quoteID
	d.QuoteNumber = q.QuoteNumber
	d.CustomerName = q.CustomerName
	d.CustomerEmail = q.CustomerEmail
	d.CustomerPhone = q.CustomerPhone
	d.CustomerAddress = q.CustomerAddress
	d.Language = q.Language
	d.Items = append(types.QuoteItems{}, q.Items...)
	d.AppliedPackageID = q.AppliedPackageID
	d.DiscountPercent = q.DiscountPercent
	d.Notes = q.Notes
	d.PaymentMethod = q.PaymentMethod
	d.PaymentDetails = q.PaymentDetails
	if q.ValidityDays > 0 {
		d.ValidityDays = q.ValidityDays
	}
	d.Status = q.Status
	return d
}

func (d *Draft) State() DraftState { return d.state }

// Generation increases on every content mutation. Localization and
// finalization passes are stamped with it so stale results get dropped.
func (d *Draft) Generation() uint64 { return d.gen }

func (d *Draft) Localized() *LocalizedView { return d.localized }

func (d *Draft) Snapshot() types.QuoteSnapshot { return d.snapshot }

func (d *Draft) FinalizedAt() *time.Time { return d.finalizedAt }

// touch registers a content mutation. Any edit after finalization
// silently reopens the draft and discards the frozen snapshot, so an
// export can never ship stale content.
func (d *Draft) touch() {
	d.gen++
	d.localized = nil
	if d.state != StateEditable {
		d.state = StateEditable
		d.snapshot = types.QuoteSnapshot{}
		d.finalizedAt = nil
	}
}

func (d *Draft) Totals() Totals {
	return ComputeTotals(d.Items, d.DiscountPercent)
}

// AddManualItem appends an empty editable line.
func (d *Draft) AddManualItem() *types.QuoteItem {
	d.touch()
	d.Items = append(d.Items, types.QuoteItem{
		ID:        uuid.New(),
		Quantity:  1,
		UnitPrice: decimal.Zero,
	})
	return &d.Items[len(d.Items)-1]
}

// AddProductItem appends a line for a catalog product at its base
// price.
func (d *Draft) AddProductItem(product models.Product, quantity int) (*types.QuoteItem, error) {
	if quantity < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}
	d.touch()
	productID := product.ID
	d.Items = append(d.Items, types.QuoteItem{
		ID:          uuid.New(),
		ProductID:   &productID,
		Name:        product.Name,
		Description: product.Description,
		Quantity:    quantity,
		UnitPrice:   product.Price,
	})
	return &d.Items[len(d.Items)-1], nil
}

// ItemUpdate carries optional per-field item mutations.
type ItemUpdate struct {
	Name        *string
	Description *string
	Quantity    *int
	UnitPrice   *decimal.Decimal
}

func (d *Draft) UpdateItem(itemID uuid.UUID, update ItemUpdate) error {
	idx := d.itemIndex(itemID)
	if idx < 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "item not found")
	}
	if update.Quantity != nil && *update.Quantity < 1 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}
	if update.UnitPrice != nil && update.UnitPrice.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "unit price cannot be negative")
	}

	d.touch()
	item := &d.Items[idx]
	if update.Name != nil {
		item.Name = *update.Name
	}
	if update.Description != nil {
		item.Description = *update.Description
	}
	if update.Quantity != nil {
		item.Quantity = *update.Quantity
	}
	if update.UnitPrice != nil {
		item.UnitPrice = *update.UnitPrice
	}
	return nil
}

// SetItemProduct binds a line to a catalog product, taking the
// product's base price and Italian text while keeping the line's
// quantity.
func (d *Draft) SetItemProduct(itemID uuid.UUID, product models.Product) error {
	idx := d.itemIndex(itemID)
	if idx < 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "item not found")
	}

	d.touch()
	item := &d.Items[idx]
	productID := product.ID
	item.ProductID = &productID
	item.Name = product.Name
	item.Description = product.Description
	item.UnitPrice = product.Price
	return nil
}

func (d *Draft) RemoveItem(itemID uuid.UUID) error {
	idx := d.itemIndex(itemID)
	if idx < 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "item not found")
	}
	d.touch()
	d.Items = append(d.Items[:idx], d.Items[idx+1:]...)
	return nil
}

func (d *Draft) itemIndex(itemID uuid.UUID) int {
	for i := range d.Items {
		if d.Items[i].ID == itemID {
			return i
		}
	}
	return -1
}

// ApplyPackage swaps the current package lines for the given package's
// lines in one step. Manual lines are untouched. Unresolvable products
// are skipped rather than producing broken lines. A package discount
// greater than zero overwrites the draft discount.
func (d *Draft) ApplyPackage(pkg *models.Package, products map[uuid.UUID]models.Product) {
	d.touch()

	d.removePackageItems()

	packageID := pkg.ID
	for _, pkgItem := range pkg.Items {
		product, ok := products[pkgItem.ProductID]
		if !ok {
			continue
		}
		unitPrice := product.Price
		if pkgItem.PriceOverride != nil {
			unitPrice = *pkgItem.PriceOverride
		}
		productID := product.ID
		d.Items = append(d.Items, types.QuoteItem{
			ID:              uuid.New(),
			ProductID:       &productID,
			SourcePackageID: &packageID,
			Name:            product.Name,
			Description:     product.Description,
			Quantity:        pkgItem.Quantity,
			UnitPrice:       unitPrice,
		})
	}

	d.AppliedPackageID = &packageID
	if pkg.DiscountPercent.IsPositive() {
		d.DiscountPercent = pkg.DiscountPercent
	}
}

// ClearPackage removes every line that came from the applied package
// and resets the discount.
func (d *Draft) ClearPackage() {
	d.touch()
	d.removePackageItems()
	d.AppliedPackageID = nil
	d.DiscountPercent = decimal.Zero
}

func (d *Draft) removePackageItems() {
	kept := d.Items[:0]
	for _, item := range d.Items {
		if item.SourcePackageID == nil {
			kept = append(kept, item)
		}
	}
	d.Items = kept
}

// CustomerUpdate carries optional customer field mutations.
type CustomerUpdate struct {
	Name    *string
	Email   *string
	Phone   *string
	Address *string
}

func (d *Draft) SetCustomer(update CustomerUpdate) {
	d.touch()
	if update.Name != nil {
		d.CustomerName = *update.Name
	}
	if update.Email != nil {
		d.CustomerEmail = *update.Email
	}
	if update.Phone != nil {
		d.CustomerPhone = *update.Phone
	}
	if update.Address != nil {
		d.CustomerAddress = *update.Address
	}
}

func (d *Draft) SetLanguage(lang enums.Language) error {
	if !lang.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid language %q", lang))
	}
	d.touch()
	d.Language = lang
	return nil
}

func (d *Draft) SetDiscount(percent decimal.Decimal) error {
	if percent.IsNegative() || percent.GreaterThan(oneHundred) {
		return pkgerrors.New(pkgerrors.CodeValidation, "discount percent must be between 0 and 100")
	}
	d.touch()
	d.DiscountPercent = percent
	return nil
}

func (d *Draft) SetNotes(notes string) {
	d.touch()
	d.Notes = notes
}

func (d *Draft) SetPayment(method *enums.PaymentMethod, details string) error {
	if method != nil && !method.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid payment method %q", *method))
	}
	d.touch()
	d.PaymentMethod = method
	d.PaymentDetails = details
	return nil
}

func (d *Draft) SetValidityDays(days int) error {
	if days < 1 {
		return pkgerrors.New(pkgerrors.CodeValidation, "validity days must be at least 1")
	}
	d.touch()
	d.ValidityDays = days
	return nil
}

// PassInput is a stable copy of the draft's translatable content taken
// at the start of a localization pass, so the pass can run without
// holding the session lock.
type PassInput struct {
	Generation     uint64
	Language       enums.Language
	Items          types.QuoteItems
	Notes          string
	PaymentDetails string
}

func (d *Draft) PassInput() PassInput {
	return PassInput{
		Generation:     d.gen,
		Language:       d.Language,
		Items:          append(types.QuoteItems{}, d.Items...),
		Notes:          d.Notes,
		PaymentDetails: d.PaymentDetails,
	}
}

// SetLocalized installs the result of a localization pass. A view
// stamped with an older generation is dropped so rapid language
// switches always settle on the most recent one.
func (d *Draft) SetLocalized(view LocalizedView) error {
	if view.Generation != d.gen {
		return ErrStalePass
	}
	d.localized = &view
	return nil
}

// validateForSave enforces the shared save and finalize guard.
func (d *Draft) validateForSave() error {
	if strings.TrimSpace(d.CustomerName) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "customer name is required")
	}
	if len(d.Items) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quote must contain at least one item")
	}
	return nil
}

// BeginFinalize checks the finalization guard and marks the draft as
// finalizing. It returns the generation the pass must present to
// CompleteFinalize.
func (d *Draft) BeginFinalize() (uint64, error) {
	if err := d.validateForSave(); err != nil {
		return 0, err
	}
	d.state = StateFinalizing
	return d.gen, nil
}

// CompleteFinalize freezes the snapshot produced by the pass started
// with BeginFinalize. If the draft changed in the meantime the result
// is rejected and the draft stays editable.
func (d *Draft) CompleteFinalize(gen uint64, snapshot types.QuoteSnapshot) error {
	if gen != d.gen {
		if d.state == StateFinalizing {
			d.state = StateEditable
		}
		return ErrStalePass
	}
	now := time.Now()
	d.snapshot = snapshot
	d.finalizedAt = &now
	d.state = StateFinalized
	return nil
}

// AbortFinalize reverts a finalizing draft back to editable.
func (d *Draft) AbortFinalize(gen uint64) {
	if gen == d.gen && d.state == StateFinalizing {
		d.state = StateEditable
	}
}

// ToQuote projects the draft onto its persistence model. Totals are
// recomputed at projection time so the stored figures always reconcile
// with the stored lines.
func (d *Draft) ToQuote() *models.Quote {
	totals := d.Totals()

	q := &models.Quote{
		QuoteNumber:      d.QuoteNumber,
		CustomerName:     strings.TrimSpace(d.CustomerName),
		CustomerEmail:    strings.TrimSpace(d.CustomerEmail),
		CustomerPhone:    strings.TrimSpace(d.CustomerPhone),
		CustomerAddress:  strings.TrimSpace(d.CustomerAddress),
		Language:         d.Language,
		Items:            append(types.QuoteItems{}, d.Items...),
		AppliedPackageID: d.AppliedPackageID,
		DiscountPercent:  d.DiscountPercent,
		Subtotal:         totals.Subtotal,
		DiscountAmount:   totals.DiscountAmount,
		Total:            totals.Total,
		Notes:            d.Notes,
		PaymentMethod:    d.PaymentMethod,
		PaymentDetails:   d.PaymentDetails,
		ValidityDays:     d.ValidityDays,
		Status:           d.Status,
		Snapshot:         d.snapshot,
		FinalizedAt:      d.finalizedAt,
	}
	if d.QuoteID != nil {
		q.ID = *d.QuoteID
	}
	return q
}
