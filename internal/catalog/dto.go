package catalog

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ceramicarte/preventivi-backend/pkg/enums"
)

// ProductInput holds the validated payload to create a product.
type ProductInput struct {
	Name         string
	Description  string
	Category     enums.ProductCategory
	Price        decimal.Decimal
	Unit         string
	ImageURL     string
	Active       *bool
	DisplayOrder int
}

// ProductUpdate holds optional mutation values for a product.
type ProductUpdate struct {
	Name         *string
	Description  *string
	Category     *enums.ProductCategory
	Price        *decimal.Decimal
	Unit         *string
	ImageURL     *string
	Active       *bool
	DisplayOrder *int
}

// PackageItemInput references a product to include in a package. The
// optional override replaces the product's base price on quote lines
// produced from this package.
type PackageItemInput struct {
	ProductID     uuid.UUID
	Quantity      int
	PriceOverride *decimal.Decimal
}

// PackageInput holds the validated payload to create a package. The
// bundle price is always recomputed from the referenced products.
type PackageInput struct {
	Name            string
	Description     string
	Items           []PackageItemInput
	DiscountPercent decimal.Decimal
	Active          *bool
	DisplayOrder    int
}

// PackageUpdate holds optional mutation values for a package.
type PackageUpdate struct {
	Name            *string
	Description     *string
	Items           *[]PackageItemInput
	DiscountPercent *decimal.Decimal
	Active          *bool
	DisplayOrder    *int
}
