package catalog

import (
	"context"
	"fmt"
	"io"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/ceramicarte/preventivi-backend/pkg/config"
	"github.com/ceramicarte/preventivi-backend/pkg/db"
	"github.com/ceramicarte/preventivi-backend/pkg/db/models"
	"github.com/ceramicarte/preventivi-backend/pkg/enums"
	"github.com/ceramicarte/preventivi-backend/pkg/logger"
)

func openTestDB(t *testing.T) *db.Client {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	client, err := db.New(
		config.DBConfig{DSN: dsn},
		config.FeatureFlagsConfig{UseSQLite: true},
		false,
	)
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })

	if err := client.DB.AutoMigrate(&models.Product{}, &models.Package{}, &models.Quote{}); err != nil {
		t.Fatalf("failed to migrate test db: %v", err)
	}
	return client
}

func newTestLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func mustCreateTestProduct(t *testing.T, svc Service, name string, price string) *models.Product {
	t.Helper()

	product, err := svc.CreateProduct(context.Background(), ProductInput{
		Name:     name,
		Category: enums.ProductCategoryCeramica,
		Price:    decimal.RequireFromString(price),
	})
	if err != nil {
		t.Fatalf("create product %s: %v", name, err)
	}
	return product
}
