package quotes

import (
	"context"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ceramicarte/preventivi-backend/internal/catalog"
	"github.com/ceramicarte/preventivi-backend/internal/render"
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

// echoGateway "translates" by prefixing the target language, making
// assertions on translated output trivial.
type echoGateway struct{}

func (echoGateway) Translate(_ context.Context, text string, _, target enums.Language) (string, error) {
	return fmt.Sprintf("[%s] %s", target, text), nil
}

type stubRenderer struct {
	fail bool
}

func (r *stubRenderer) Render(_ context.Context, quote *models.Quote, format render.Format) (*render.Result, error) {
	if r.fail {
		return nil, fmt.Errorf("render backend down")
	}
	return &render.Result{
		Content:     []byte("rendered " + quote.QuoteNumber + " as " + string(format)),
		ContentType: "application/octet-stream",
	}, nil
}

type testEnv struct {
	svc     Service
	catalog catalog.Service
	client  *db.Client
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	client := openTestDB(t)
	log := newTestLogger()
	catalogSvc := catalog.NewService(client, log)
	localizer := NewLocalizer(echoGateway{}, log, nil)
	manager := NewManager(time.Hour, log)
	svc := NewService(client, manager, catalogSvc, localizer, &stubRenderer{}, nil, log)

	return &testEnv{svc: svc, catalog: catalogSvc, client: client}
}

func (e *testEnv) createProduct(t *testing.T, name, price string) *models.Product {
	t.Helper()
	product, err := e.catalog.CreateProduct(context.Background(), catalog.ProductInput{
		Name:     name,
		Category: enums.ProductCategoryCeramica,
		Price:    decimal.RequireFromString(price),
	})
	if err != nil {
		t.Fatalf("create product %s: %v", name, err)
	}
	return product
}

func (e *testEnv) createPackage(t *testing.T, name string, discount int64, items ...catalog.PackageItemInput) *models.Package {
	t.Helper()
	pkg, err := e.catalog.CreatePackage(context.Background(), catalog.PackageInput{
		Name:            name,
		DiscountPercent: decimal.NewFromInt(discount),
		Items:           items,
	})
	if err != nil {
		t.Fatalf("create package %s: %v", name, err)
	}
	return pkg
}
