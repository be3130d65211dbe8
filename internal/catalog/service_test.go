package catalog

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/ceramicarte/preventivi-backend/pkg/errors"
)

func TestCreateProduct_Validation(t *testing.T) {
	svc := NewService(openTestDB(t), newTestLogger())

	_, err := svc.CreateProduct(context.Background(), ProductInput{Name: ""})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())

	_, err = svc.CreateProduct(context.Background(), ProductInput{Name: "Vaso", Category: "mobili"})
	require.Error(t, err)

	_, err = svc.CreateProduct(context.Background(), ProductInput{
		Name:     "Vaso",
		Category: "ceramica",
		Price:    decimal.NewFromInt(-5),
	})
	require.Error(t, err)
}

func TestProductLifecycle(t *testing.T) {
	svc := NewService(openTestDB(t), newTestLogger())

	created := mustCreateTestProduct(t, svc, "Vaso grande", "45.50")
	assert.NotEqual(t, uuid.Nil, created.ID)
	assert.True(t, created.Active)

	loaded, err := svc.GetProduct(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Vaso grande", loaded.Name)
	assert.True(t, loaded.Price.Equal(decimal.RequireFromString("45.50")))

	newPrice := decimal.RequireFromString("50.00")
	inactive := false
	updated, err := svc.UpdateProduct(context.Background(), created.ID, ProductUpdate{
		Price:  &newPrice,
		Active: &inactive,
	})
	require.NoError(t, err)
	assert.True(t, updated.Price.Equal(newPrice))
	assert.False(t, updated.Active)

	active, err := svc.ListProducts(context.Background(), true)
	require.NoError(t, err)
	assert.Empty(t, active)

	all, err := svc.ListProducts(context.Background(), false)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	require.NoError(t, svc.DeleteProduct(context.Background(), created.ID))

	_, err = svc.GetProduct(context.Background(), created.ID)
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}

func TestCreatePackage_ComputesBundlePrice(t *testing.T) {
	svc := NewService(openTestDB(t), newTestLogger())

	vaso := mustCreateTestProduct(t, svc, "Vaso", "10.00")
	piatto := mustCreateTestProduct(t, svc, "Piatto", "7.50")

	pkg, err := svc.CreatePackage(context.Background(), PackageInput{
		Name: "Set tavola",
		Items: []PackageItemInput{
			{ProductID: vaso.ID, Quantity: 2},
			{ProductID: piatto.ID, Quantity: 4},
		},
	})
	require.NoError(t, err)
	assert.True(t, pkg.TotalPrice.Equal(decimal.RequireFromString("50.00")),
		"expected 2x10.00 + 4x7.50 = 50.00, got %s", pkg.TotalPrice)
	assert.Len(t, pkg.Items, 2)
}

func TestCreatePackage_RejectsUnknownProduct(t *testing.T) {
	svc := NewService(openTestDB(t), newTestLogger())

	_, err := svc.CreatePackage(context.Background(), PackageInput{
		Name:  "Set fantasma",
		Items: []PackageItemInput{{ProductID: uuid.New(), Quantity: 1}},
	})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
}

func TestCreatePackage_RejectsEmptyItems(t *testing.T) {
	svc := NewService(openTestDB(t), newTestLogger())

	_, err := svc.CreatePackage(context.Background(), PackageInput{Name: "Set vuoto"})
	require.Error(t, err)
}

func TestUpdatePackage_RepricesOnProductChange(t *testing.T) {
	svc := NewService(openTestDB(t), newTestLogger())

	vaso := mustCreateTestProduct(t, svc, "Vaso", "10.00")
	pkg, err := svc.CreatePackage(context.Background(), PackageInput{
		Name:  "Set",
		Items: []PackageItemInput{{ProductID: vaso.ID, Quantity: 3}},
	})
	require.NoError(t, err)
	require.True(t, pkg.TotalPrice.Equal(decimal.RequireFromString("30.00")))

	newPrice := decimal.RequireFromString("12.00")
	_, err = svc.UpdateProduct(context.Background(), vaso.ID, ProductUpdate{Price: &newPrice})
	require.NoError(t, err)

	// Saving the package with no item changes still refreshes the price.
	updated, err := svc.UpdatePackage(context.Background(), pkg.ID, PackageUpdate{})
	require.NoError(t, err)
	assert.True(t, updated.TotalPrice.Equal(decimal.RequireFromString("36.00")),
		"expected repriced total 36.00, got %s", updated.TotalPrice)
}

func TestCreatePackage_PriceOverrideAndDiscount(t *testing.T) {
	svc := NewService(openTestDB(t), newTestLogger())

	vaso := mustCreateTestProduct(t, svc, "Vaso", "10.00")
	piatto := mustCreateTestProduct(t, svc, "Piatto", "7.50")

	override := decimal.RequireFromString("5.00")
	pkg, err := svc.CreatePackage(context.Background(), PackageInput{
		Name:            "Set scontato",
		DiscountPercent: decimal.NewFromInt(20),
		Items: []PackageItemInput{
			{ProductID: vaso.ID, Quantity: 2},
			{ProductID: piatto.ID, Quantity: 1, PriceOverride: &override},
		},
	})
	require.NoError(t, err)
	assert.True(t, pkg.TotalPrice.Equal(decimal.RequireFromString("25.00")),
		"expected 2x10.00 + 1x5.00 = 25.00, got %s", pkg.TotalPrice)
	assert.True(t, pkg.DiscountPercent.Equal(decimal.NewFromInt(20)))

	_, err = svc.CreatePackage(context.Background(), PackageInput{
		Name:            "Sconto assurdo",
		DiscountPercent: decimal.NewFromInt(120),
		Items:           []PackageItemInput{{ProductID: vaso.ID, Quantity: 1}},
	})
	require.Error(t, err)
}

func TestResolvePackage(t *testing.T) {
	svc := NewService(openTestDB(t), newTestLogger())

	vaso := mustCreateTestProduct(t, svc, "Vaso", "10.00")
	piatto := mustCreateTestProduct(t, svc, "Piatto", "5.00")

	pkg, err := svc.CreatePackage(context.Background(), PackageInput{
		Name: "Set",
		Items: []PackageItemInput{
			{ProductID: vaso.ID, Quantity: 1},
			{ProductID: piatto.ID, Quantity: 2},
		},
	})
	require.NoError(t, err)

	resolved, products, err := svc.ResolvePackage(context.Background(), pkg.ID)
	require.NoError(t, err)
	assert.Equal(t, pkg.ID, resolved.ID)
	require.Len(t, products, 2)
	assert.Equal(t, "Vaso", products[vaso.ID].Name)
	assert.Equal(t, "Piatto", products[piatto.ID].Name)
}
