package enums

import "fmt"

// QuoteStatus tracks a saved quote after finalization. Drafts under
// active editing live in memory and are not covered by this enum.
type QuoteStatus string

const (
	QuoteStatusDraft    QuoteStatus = "draft"
	QuoteStatusSent     QuoteStatus = "sent"
	QuoteStatusAccepted QuoteStatus = "accepted"
	QuoteStatusRejected QuoteStatus = "rejected"
	QuoteStatusExpired  QuoteStatus = "expired"
)

var validQuoteStatuses = []QuoteStatus{
	QuoteStatusDraft,
	QuoteStatusSent,
	QuoteStatusAccepted,
	QuoteStatusRejected,
	QuoteStatusExpired,
}

func (s QuoteStatus) IsValid() bool {
	for _, v := range validQuoteStatuses {
		if s == v {
			return true
		}
	}
	return false
}

func (s QuoteStatus) String() string {
	return string(s)
}

func ParseQuoteStatus(raw string) (QuoteStatus, error) {
	s := QuoteStatus(raw)
	if !s.IsValid() {
		return "", fmt.Errorf("invalid quote status: %q", raw)
	}
	return s, nil
}
