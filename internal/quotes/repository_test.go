package quotes

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ceramicarte/preventivi-backend/pkg/db/models"
	"github.com/ceramicarte/preventivi-backend/pkg/enums"
	"github.com/ceramicarte/preventivi-backend/pkg/types"
)

func seedQuote(t *testing.T, repo *Repository, number string) *models.Quote {
	t.Helper()
	quote := &models.Quote{
		QuoteNumber:  number,
		CustomerName: "Mario Rossi",
		Language:     enums.LanguageItalian,
		Items:        types.QuoteItems{},
		Status:       enums.QuoteStatusDraft,
	}
	if _, err := repo.Create(context.Background(), quote); err != nil {
		t.Fatalf("seed quote %s: %v", number, err)
	}
	return quote
}

func TestNextQuoteNumber_StartsAtOne(t *testing.T) {
	client := openTestDB(t)
	repo := NewRepository(client.DB)

	now := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
	number, err := repo.NextQuoteNumber(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, "PRV-2026-0001", number)
}

func TestNextQuoteNumber_Increments(t *testing.T) {
	client := openTestDB(t)
	repo := NewRepository(client.DB)

	seedQuote(t, repo, "PRV-2026-0001")
	seedQuote(t, repo, "PRV-2026-0007")

	now := time.Date(2026, time.June, 15, 0, 0, 0, 0, time.UTC)
	number, err := repo.NextQuoteNumber(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, "PRV-2026-0008", number)
}

func TestNextQuoteNumber_RestartsEachYear(t *testing.T) {
	client := openTestDB(t)
	repo := NewRepository(client.DB)

	seedQuote(t, repo, "PRV-2025-0042")

	now := time.Date(2026, time.January, 2, 0, 0, 0, 0, time.UTC)
	number, err := repo.NextQuoteNumber(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, "PRV-2026-0001", number)
}

func TestNextQuoteNumber_GrowsPastPadding(t *testing.T) {
	client := openTestDB(t)
	repo := NewRepository(client.DB)

	seedQuote(t, repo, "PRV-2026-9999")

	now := time.Date(2026, time.December, 31, 0, 0, 0, 0, time.UTC)
	number, err := repo.NextQuoteNumber(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, "PRV-2026-10000", number)
}

func TestListFiltersByStatus(t *testing.T) {
	client := openTestDB(t)
	repo := NewRepository(client.DB)

	for i := 1; i <= 3; i++ {
		seedQuote(t, repo, fmt.Sprintf("PRV-2026-%04d", i))
	}
	sentQuote := seedQuote(t, repo, "PRV-2026-0004")
	sentQuote.Status = enums.QuoteStatusSent
	_, err := repo.Update(context.Background(), sentQuote)
	require.NoError(t, err)

	all, err := repo.List(context.Background(), nil)
	require.NoError(t, err)
	assert.Len(t, all, 4)

	sent := enums.QuoteStatusSent
	filtered, err := repo.List(context.Background(), &sent)
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, "PRV-2026-0004", filtered[0].QuoteNumber)
}
