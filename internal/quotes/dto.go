package quotes

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ceramicarte/preventivi-backend/pkg/types"
)

// ItemDTO is one quote line as returned to clients.
type ItemDTO struct {
	ID              uuid.UUID        `json:"id"`
	ProductID       *uuid.UUID       `json:"product_id,omitempty"`
	SourcePackageID *uuid.UUID       `json:"source_package_id,omitempty"`
	Name            string           `json:"name"`
	Description     string           `json:"description,omitempty"`
	Quantity        int              `json:"quantity"`
	UnitPrice       decimal.Decimal  `json:"unit_price"`
	Total           decimal.Decimal  `json:"total"`
}

// LocalizedDTO carries the display-language projection of the draft.
type LocalizedDTO struct {
	Language       string                 `json:"language"`
	Items          []types.TranslatedItem `json:"items"`
	Notes          string                 `json:"notes,omitempty"`
	PaymentDetails string                 `json:"payment_details,omitempty"`
}

// DraftDTO is the full editing session state returned to the admin UI.
type DraftDTO struct {
	SessionID   uuid.UUID  `json:"session_id"`
	QuoteID     *uuid.UUID `json:"quote_id,omitempty"`
	QuoteNumber string     `json:"quote_number,omitempty"`

	CustomerName    string `json:"customer_name"`
	CustomerEmail   string `json:"customer_email,omitempty"`
	CustomerPhone   string `json:"customer_phone,omitempty"`
	CustomerAddress string `json:"customer_address,omitempty"`

	Language string    `json:"language"`
	Items    []ItemDTO `json:"items"`

	AppliedPackageID *uuid.UUID `json:"applied_package_id,omitempty"`

	DiscountPercent decimal.Decimal `json:"discount_percent"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	DiscountAmount  decimal.Decimal `json:"discount_amount"`
	Total           decimal.Decimal `json:"total"`

	Notes          string `json:"notes,omitempty"`
	PaymentMethod  string `json:"payment_method,omitempty"`
	PaymentDetails string `json:"payment_details,omitempty"`
	ValidityDays   int    `json:"validity_days"`
	Status         string `json:"status"`

	State       string               `json:"state"`
	Localized   *LocalizedDTO        `json:"localized,omitempty"`
	Snapshot    *types.QuoteSnapshot `json:"snapshot,omitempty"`
	FinalizedAt *time.Time           `json:"finalized_at,omitempty"`
}

// NewDraftDTO projects the draft for API responses. Call while holding
// the session lock.
func NewDraftDTO(d *Draft) *DraftDTO {
	totals := d.Totals()

	items := make([]ItemDTO, len(d.Items))
	for i, item := range d.Items {
		items[i] = ItemDTO{
			ID:              item.ID,
			ProductID:       item.ProductID,
			SourcePackageID: item.SourcePackageID,
			Name:            item.Name,
			Description:     item.Description,
			Quantity:        item.Quantity,
			UnitPrice:       item.UnitPrice,
			Total:           item.LineTotal(),
		}
	}

	dto := &DraftDTO{
		SessionID:        d.ID,
		QuoteID:          d.QuoteID,
		QuoteNumber:      d.QuoteNumber,
		CustomerName:     d.CustomerName,
		CustomerEmail:    d.CustomerEmail,
		CustomerPhone:    d.CustomerPhone,
		CustomerAddress:  d.CustomerAddress,
		Language:         d.Language.String(),
		Items:            items,
		AppliedPackageID: d.AppliedPackageID,
		DiscountPercent:  d.DiscountPercent,
		Subtotal:         totals.Subtotal,
		DiscountAmount:   totals.DiscountAmount,
		Total:            totals.Total,
		Notes:            d.Notes,
		PaymentDetails:   d.PaymentDetails,
		ValidityDays:     d.ValidityDays,
		Status:           d.Status.String(),
		State:            string(d.State()),
		FinalizedAt:      d.FinalizedAt(),
	}
	if d.PaymentMethod != nil {
		dto.PaymentMethod = d.PaymentMethod.String()
	}
	if view := d.Localized(); view != nil {
		dto.Localized = &LocalizedDTO{
			Language:       view.Language.String(),
			Items:          view.Items,
			Notes:          view.Notes,
			PaymentDetails: view.PaymentDetails,
		}
	}
	if snapshot := d.Snapshot(); !snapshot.IsZero() {
		dto.Snapshot = &snapshot
	}
	return dto
}
