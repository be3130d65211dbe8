package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// QuoteItem is a single line on a quote. ProductID is set when the line
// was added from the catalog, nil for free-form lines. SourcePackageID
// marks lines that arrived via a package application so they can be
// removed together when the package is cleared or switched.
type QuoteItem struct {
	ID              uuid.UUID       `json:"id"`
	ProductID       *uuid.UUID      `json:"product_id,omitempty"`
	SourcePackageID *uuid.UUID      `json:"source_package_id,omitempty"`
	Name            string          `json:"name"`
	Description     string          `json:"description,omitempty"`
	Quantity        int             `json:"quantity"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
}

// LineTotal is unit price times quantity.
func (i QuoteItem) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// FromPackage reports whether the line was added as part of a package.
func (i QuoteItem) FromPackage() bool {
	return i.SourcePackageID != nil
}

// TranslatedItem is the display-language text of one quote line. It is
// never persisted on its own, only inside a localized view or a frozen
// snapshot.
type TranslatedItem struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// QuoteItems is stored as a JSONB column.
type QuoteItems []QuoteItem

func (q QuoteItems) Value() (driver.Value, error) {
	if q == nil {
		q = QuoteItems{}
	}
	b, err := json.Marshal(q)
	if err != nil {
		return nil, fmt.Errorf("marshaling quote items: %w", err)
	}
	return b, nil
}

func (q *QuoteItems) Scan(value any) error {
	if value == nil {
		*q = QuoteItems{}
		return nil
	}

	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported type for quote items: %T", value)
	}

	if len(data) == 0 {
		*q = QuoteItems{}
		return nil
	}
	return json.Unmarshal(data, q)
}
