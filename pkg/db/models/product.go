package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/ceramicarte/preventivi-backend/pkg/enums"
)

// Product is a catalog entry offered on quotes. Name and description
// are authored in Italian.
type Product struct {
	ID           uuid.UUID             `gorm:"type:uuid;primaryKey" json:"id"`
	Name         string                `gorm:"not null" json:"name"`
	Description  string                `json:"description"`
	Category     enums.ProductCategory `gorm:"not null" json:"category"`
	Price        decimal.Decimal       `gorm:"type:numeric(12,2);not null" json:"price"`
	Unit         string                `gorm:"default:pz" json:"unit"`
	ImageURL     string                `json:"image_url"`
	Active       bool                  `gorm:"not null;default:true" json:"active"`
	DisplayOrder int                   `gorm:"not null;default:0" json:"display_order"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Product) TableName() string { return "quote_products" }

func (p *Product) BeforeCreate(_ *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
