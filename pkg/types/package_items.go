package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PackageItem references a catalog product included in a package.
// PriceOverride, when set, replaces the product's base price for lines
// produced from this package.
type PackageItem struct {
	ProductID     uuid.UUID        `json:"product_id"`
	Quantity      int              `json:"quantity"`
	PriceOverride *decimal.Decimal `json:"price_override,omitempty"`
}

// PackageItems is stored as a JSONB column.
type PackageItems []PackageItem

func (p PackageItems) Value() (driver.Value, error) {
	if p == nil {
		p = PackageItems{}
	}
	b, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("marshaling package items: %w", err)
	}
	return b, nil
}

func (p *PackageItems) Scan(value any) error {
	if value == nil {
		*p = PackageItems{}
		return nil
	}

	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported type for package items: %T", value)
	}

	if len(data) == 0 {
		*p = PackageItems{}
		return nil
	}
	return json.Unmarshal(data, p)
}
