package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/ceramicarte/preventivi-backend/pkg/types"
)

// Package bundles catalog products under a single bundle price.
// TotalPrice is recomputed from the referenced products at save time.
type Package struct {
	ID              uuid.UUID          `gorm:"type:uuid;primaryKey" json:"id"`
	Name            string             `gorm:"not null" json:"name"`
	Description     string             `json:"description"`
	Items           types.PackageItems `gorm:"type:jsonb" json:"items"`
	DiscountPercent decimal.Decimal    `gorm:"type:numeric(5,2)" json:"discount_percent"`
	TotalPrice      decimal.Decimal    `gorm:"type:numeric(12,2);not null" json:"total_price"`
	Active          bool               `gorm:"not null;default:true" json:"active"`
	DisplayOrder    int                `gorm:"not null;default:0" json:"display_order"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Package) TableName() string { return "quote_packages" }

func (p *Package) BeforeCreate(_ *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
