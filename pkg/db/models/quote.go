package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/ceramicarte/preventivi-backend/pkg/enums"
	"github.com/ceramicarte/preventivi-backend/pkg/types"
)

// Quote is a persisted quote. Item names and descriptions are stored in
// the quote's display language; the Italian catalog stays the source of
// truth for re-localization. QuoteNumber is assigned server side on
// first save and never changes afterward.
type Quote struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	QuoteNumber string    `gorm:"uniqueIndex" json:"quote_number"`

	CustomerName    string `gorm:"not null" json:"customer_name"`
	CustomerEmail   string `json:"customer_email"`
	CustomerPhone   string `json:"customer_phone"`
	CustomerAddress string `json:"customer_address"`

	Language enums.Language `gorm:"not null;default:it" json:"language"`

	Items            types.QuoteItems `gorm:"type:jsonb" json:"items"`
	AppliedPackageID *uuid.UUID       `gorm:"type:uuid" json:"applied_package_id,omitempty"`

	DiscountPercent decimal.Decimal `gorm:"type:numeric(5,2)" json:"discount_percent"`
	Subtotal        decimal.Decimal `gorm:"type:numeric(12,2)" json:"subtotal"`
	DiscountAmount  decimal.Decimal `gorm:"type:numeric(12,2)" json:"discount_amount"`
	Total           decimal.Decimal `gorm:"type:numeric(12,2)" json:"total"`

	Notes          string               `json:"notes"`
	PaymentMethod  *enums.PaymentMethod `json:"payment_method,omitempty"`
	PaymentDetails string               `json:"payment_details"`
	ValidityDays   int                  `gorm:"not null;default:30" json:"validity_days"`

	Status      enums.QuoteStatus   `gorm:"not null;default:draft" json:"status"`
	Snapshot    types.QuoteSnapshot `gorm:"type:jsonb" json:"snapshot"`
	FinalizedAt *time.Time          `json:"finalized_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Quote) TableName() string { return "quotes" }

func (q *Quote) BeforeCreate(_ *gorm.DB) error {
	if q.ID == uuid.Nil {
		q.ID = uuid.New()
	}
	return nil
}

// IsFinalized reports whether the quote carries a finalization snapshot.
func (q *Quote) IsFinalized() bool {
	return q.FinalizedAt != nil && !q.Snapshot.IsZero()
}
