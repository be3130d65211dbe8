package quotes

import (
	"context"
	stdErrors "errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ceramicarte/preventivi-backend/pkg/db/models"
	"github.com/ceramicarte/preventivi-backend/pkg/enums"
)

// Repository persists quotes.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

func (r *Repository) Create(ctx context.Context, quote *models.Quote) (*models.Quote, error) {
	if err := r.db.WithContext(ctx).Create(quote).Error; err != nil {
		return nil, err
	}
	return quote, nil
}

func (r *Repository) Update(ctx context.Context, quote *models.Quote) (*models.Quote, error) {
	if err := r.db.WithContext(ctx).Save(quote).Error; err != nil {
		return nil, err
	}
	return quote, nil
}

func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Quote{}, "id = ?", id).Error
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Quote, error) {
	var quote models.Quote
	if err := r.db.WithContext(ctx).First(&quote, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &quote, nil
}

func (r *Repository) List(ctx context.Context, status *enums.QuoteStatus) ([]models.Quote, error) {
	query := r.db.WithContext(ctx).Order("created_at DESC")
	if status != nil {
		query = query.Where("status = ?", *status)
	}
	var quotes []models.Quote
	if err := query.Find(&quotes).Error; err != nil {
		return nil, err
	}
	return quotes, nil
}

// NextQuoteNumber produces the next number in the PRV-{year}-{seq}
// series. The sequence restarts each year. Call inside the same
// transaction as the insert so concurrent saves cannot take the same
// number past the unique index.
func (r *Repository) NextQuoteNumber(ctx context.Context, now time.Time) (string, error) {
	prefix := fmt.Sprintf("PRV-%d-", now.Year())

	var numbers []string
	err := r.db.WithContext(ctx).
		Model(&models.Quote{}).
		Where("quote_number LIKE ?", prefix+"%").
		Order("quote_number DESC").
		Limit(1).
		Pluck("quote_number", &numbers).Error
	if err != nil && !stdErrors.Is(err, gorm.ErrRecordNotFound) {
		return "", err
	}

	seq := 1
	if len(numbers) > 0 {
		last := numbers[0]
		raw := strings.TrimPrefix(last, prefix)
		if parsed, perr := strconv.Atoi(raw); perr == nil {
			seq = parsed + 1
		}
	}
	return fmt.Sprintf("%s%04d", prefix, seq), nil
}
