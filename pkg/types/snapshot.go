package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// QuoteSnapshot is the frozen, cleaned, translated copy of a quote's
// text produced at finalize time. Preview and export read from here,
// never from the live editable fields.
type QuoteSnapshot struct {
	Language       string     `json:"language"`
	Items          QuoteItems `json:"items"`
	Notes          string     `json:"notes,omitempty"`
	PaymentDetails string     `json:"payment_details,omitempty"`
	GeneratedAt    time.Time  `json:"generated_at"`
}

// IsZero reports whether no snapshot has been generated.
func (s QuoteSnapshot) IsZero() bool {
	return s.Language == "" && len(s.Items) == 0 && s.GeneratedAt.IsZero()
}

func (s QuoteSnapshot) Value() (driver.Value, error) {
	b, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("marshaling quote snapshot: %w", err)
	}
	return b, nil
}

func (s *QuoteSnapshot) Scan(value any) error {
	if value == nil {
		*s = QuoteSnapshot{}
		return nil
	}

	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported type for quote snapshot: %T", value)
	}

	if len(data) == 0 {
		*s = QuoteSnapshot{}
		return nil
	}
	return json.Unmarshal(data, s)
}
