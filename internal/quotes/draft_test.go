package quotes

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ceramicarte/preventivi-backend/pkg/db/models"
	"github.com/ceramicarte/preventivi-backend/pkg/enums"
	pkgerrors "github.com/ceramicarte/preventivi-backend/pkg/errors"
	"github.com/ceramicarte/preventivi-backend/pkg/types"
)

func testProduct(name, price string) models.Product {
	return models.Product{
		ID:       uuid.New(),
		Name:     name,
		Category: enums.ProductCategoryCeramica,
		Price:    decimal.RequireFromString(price),
		Active:   true,
	}
}

func testPackage(discount int64, items ...types.PackageItem) *models.Package {
	return &models.Package{
		ID:              uuid.New(),
		Name:            "Set",
		Items:           items,
		DiscountPercent: decimal.NewFromInt(discount),
		Active:          true,
	}
}

func productMap(products ...models.Product) map[uuid.UUID]models.Product {
	m := make(map[uuid.UUID]models.Product, len(products))
	for _, p := range products {
		m[p.ID] = p
	}
	return m
}

func TestNewDraftDefaults(t *testing.T) {
	d := NewDraft()

	assert.Equal(t, StateEditable, d.State())
	assert.Equal(t, enums.LanguageItalian, d.Language)
	assert.Equal(t, 30, d.ValidityDays)
	assert.Equal(t, enums.QuoteStatusDraft, d.Status)
	assert.Empty(t, d.Items)
}

func TestAddManualItem(t *testing.T) {
	d := NewDraft()

	item := d.AddManualItem()
	assert.Equal(t, "", item.Name)
	assert.Equal(t, 1, item.Quantity)
	assert.True(t, item.UnitPrice.IsZero())
	assert.True(t, item.LineTotal().IsZero())
}

func TestAddProductItem(t *testing.T) {
	d := NewDraft()
	vaso := testProduct("Vaso", "10.00")

	item, err := d.AddProductItem(vaso, 3)
	require.NoError(t, err)
	assert.Equal(t, "Vaso", item.Name)
	assert.True(t, item.UnitPrice.Equal(decimal.RequireFromString("10.00")))
	assert.True(t, item.LineTotal().Equal(decimal.RequireFromString("30.00")))

	totals := d.Totals()
	assert.True(t, totals.Subtotal.Equal(decimal.RequireFromString("30.00")))

	_, err = d.AddProductItem(vaso, 0)
	require.Error(t, err)
}

func TestUpdateItem(t *testing.T) {
	d := NewDraft()
	item := d.AddManualItem()

	qty := 4
	price := decimal.RequireFromString("2.50")
	name := "Piastrella dipinta a mano"
	require.NoError(t, d.UpdateItem(item.ID, ItemUpdate{Name: &name, Quantity: &qty, UnitPrice: &price}))

	assert.True(t, d.Items[0].LineTotal().Equal(decimal.RequireFromString("10.00")))

	badQty := 0
	err := d.UpdateItem(item.ID, ItemUpdate{Quantity: &badQty})
	require.Error(t, err)

	err = d.UpdateItem(uuid.New(), ItemUpdate{Quantity: &qty})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}

func TestSetItemProduct_PreservesQuantity(t *testing.T) {
	d := NewDraft()
	item := d.AddManualItem()
	qty := 5
	require.NoError(t, d.UpdateItem(item.ID, ItemUpdate{Quantity: &qty}))

	vaso := testProduct("Vaso", "12.00")
	require.NoError(t, d.SetItemProduct(item.ID, vaso))

	got := d.Items[0]
	assert.Equal(t, 5, got.Quantity)
	assert.Equal(t, "Vaso", got.Name)
	assert.True(t, got.UnitPrice.Equal(decimal.RequireFromString("12.00")))
	require.NotNil(t, got.ProductID)
	assert.Equal(t, vaso.ID, *got.ProductID)
}

func TestApplyPackage(t *testing.T) {
	d := NewDraft()
	manual := d.AddManualItem()
	manualName := "Riga manuale"
	require.NoError(t, d.UpdateItem(manual.ID, ItemUpdate{Name: &manualName}))

	vaso := testProduct("Vaso", "10.00")
	piatto := testProduct("Piatto", "8.00")
	override := decimal.RequireFromString("5.00")
	pkg := testPackage(20,
		types.PackageItem{ProductID: vaso.ID, Quantity: 2},
		types.PackageItem{ProductID: piatto.ID, Quantity: 1, PriceOverride: &override},
	)

	d.ApplyPackage(pkg, productMap(vaso, piatto))

	require.Len(t, d.Items, 3)
	assert.Equal(t, "Riga manuale", d.Items[0].Name)
	assert.True(t, d.Items[1].FromPackage())
	assert.True(t, d.Items[2].UnitPrice.Equal(override))
	assert.True(t, d.DiscountPercent.Equal(decimal.NewFromInt(20)))
	require.NotNil(t, d.AppliedPackageID)
	assert.Equal(t, pkg.ID, *d.AppliedPackageID)

	totals := d.Totals()
	assert.True(t, totals.Subtotal.Equal(decimal.RequireFromString("25.00")))
}

func TestApplyPackage_SkipsMissingProducts(t *testing.T) {
	d := NewDraft()
	vaso := testProduct("Vaso", "10.00")
	pkg := testPackage(0,
		types.PackageItem{ProductID: vaso.ID, Quantity: 1},
		types.PackageItem{ProductID: uuid.New(), Quantity: 2},
	)

	d.ApplyPackage(pkg, productMap(vaso))

	require.Len(t, d.Items, 1)
	assert.Equal(t, "Vaso", d.Items[0].Name)
}

func TestClearPackage_RestoresManualItems(t *testing.T) {
	d := NewDraft()
	manual := d.AddManualItem()
	manualName := "Manuale"
	require.NoError(t, d.UpdateItem(manual.ID, ItemUpdate{Name: &manualName}))

	vaso := testProduct("Vaso", "10.00")
	pkg := testPackage(15, types.PackageItem{ProductID: vaso.ID, Quantity: 2})
	d.ApplyPackage(pkg, productMap(vaso))
	require.Len(t, d.Items, 2)

	d.ClearPackage()

	require.Len(t, d.Items, 1)
	assert.Equal(t, "Manuale", d.Items[0].Name)
	assert.Nil(t, d.AppliedPackageID)
	assert.True(t, d.DiscountPercent.IsZero())
}

func TestSwitchPackage_EqualsClearThenApply(t *testing.T) {
	vaso := testProduct("Vaso", "10.00")
	piatto := testProduct("Piatto", "8.00")
	pkgA := testPackage(0, types.PackageItem{ProductID: vaso.ID, Quantity: 1})
	pkgB := testPackage(0, types.PackageItem{ProductID: piatto.ID, Quantity: 3})
	products := productMap(vaso, piatto)

	direct := NewDraft()
	direct.AddManualItem()
	direct.ApplyPackage(pkgA, products)
	direct.ApplyPackage(pkgB, products)

	stepped := NewDraft()
	stepped.AddManualItem()
	stepped.ApplyPackage(pkgA, products)
	stepped.ClearPackage()
	stepped.ApplyPackage(pkgB, products)

	require.Len(t, direct.Items, len(stepped.Items))
	for i := range direct.Items {
		assert.Equal(t, stepped.Items[i].Name, direct.Items[i].Name)
		assert.Equal(t, stepped.Items[i].Quantity, direct.Items[i].Quantity)
	}
	require.NotNil(t, direct.AppliedPackageID)
	assert.Equal(t, pkgB.ID, *direct.AppliedPackageID)
}

func TestBeginFinalize_Guards(t *testing.T) {
	d := NewDraft()

	_, err := d.BeginFinalize()
	require.Error(t, err)
	assert.Equal(t, StateEditable, d.State())

	name := "Mario Rossi"
	d.SetCustomer(CustomerUpdate{Name: &name})
	_, err = d.BeginFinalize()
	require.Error(t, err, "no items yet")
	assert.Equal(t, StateEditable, d.State())

	d.AddManualItem()
	gen, err := d.BeginFinalize()
	require.NoError(t, err)
	assert.Equal(t, StateFinalizing, d.State())
	assert.Equal(t, d.Generation(), gen)
}

func TestCompleteFinalize(t *testing.T) {
	d := NewDraft()
	name := "Mario Rossi"
	d.SetCustomer(CustomerUpdate{Name: &name})
	d.AddManualItem()

	gen, err := d.BeginFinalize()
	require.NoError(t, err)

	snapshot := types.QuoteSnapshot{
		Language:    d.Language.String(),
		Items:       append(types.QuoteItems{}, d.Items...),
		GeneratedAt: time.Now(),
	}
	require.NoError(t, d.CompleteFinalize(gen, snapshot))
	assert.Equal(t, StateFinalized, d.State())
	assert.NotNil(t, d.FinalizedAt())
	assert.False(t, d.Snapshot().IsZero())
}

func TestCompleteFinalize_StaleGeneration(t *testing.T) {
	d := NewDraft()
	name := "Mario Rossi"
	d.SetCustomer(CustomerUpdate{Name: &name})
	d.AddManualItem()

	gen, err := d.BeginFinalize()
	require.NoError(t, err)

	// An edit lands while the localization pass is in flight.
	d.SetNotes("nuove note")

	err = d.CompleteFinalize(gen, types.QuoteSnapshot{Language: "it"})
	require.ErrorIs(t, err, ErrStalePass)
	assert.Equal(t, StateEditable, d.State())
	assert.True(t, d.Snapshot().IsZero())
}

func TestEditAfterFinalize_Invalidates(t *testing.T) {
	d := NewDraft()
	name := "Mario Rossi"
	d.SetCustomer(CustomerUpdate{Name: &name})
	d.AddManualItem()

	gen, err := d.BeginFinalize()
	require.NoError(t, err)
	require.NoError(t, d.CompleteFinalize(gen, types.QuoteSnapshot{Language: "it", GeneratedAt: time.Now()}))
	require.Equal(t, StateFinalized, d.State())

	d.SetNotes("modifica successiva")

	assert.Equal(t, StateEditable, d.State())
	assert.True(t, d.Snapshot().IsZero())
	assert.Nil(t, d.FinalizedAt())
}

func TestSetLocalized_DropsStaleView(t *testing.T) {
	d := NewDraft()
	d.AddManualItem()

	gen := d.Generation()
	require.NoError(t, d.SetLocalized(LocalizedView{Language: enums.LanguageEnglish, Generation: gen}))
	require.NotNil(t, d.Localized())

	require.NoError(t, d.SetLanguage(enums.LanguageFrench))
	assert.Nil(t, d.Localized(), "language switch clears the old view")

	err := d.SetLocalized(LocalizedView{Language: enums.LanguageEnglish, Generation: gen})
	require.ErrorIs(t, err, ErrStalePass)
	assert.Nil(t, d.Localized())
}

func TestDraftRoundTrip(t *testing.T) {
	d := NewDraft()
	name := "Mario Rossi"
	d.SetCustomer(CustomerUpdate{Name: &name})

	vaso := testProduct("Vaso", "10.00")
	_, err := d.AddProductItem(vaso, 3)
	require.NoError(t, err)
	require.NoError(t, d.SetDiscount(decimal.NewFromInt(10)))

	q := d.ToQuote()
	assert.True(t, q.Subtotal.Equal(decimal.RequireFromString("30.00")))
	assert.True(t, q.DiscountAmount.Equal(decimal.RequireFromString("3.00")))
	assert.True(t, q.Total.Equal(decimal.RequireFromString("27.00")))

	q.ID = uuid.New()
	reopened := DraftFromQuote(q)
	assert.Equal(t, "Mario Rossi", reopened.CustomerName)
	require.Len(t, reopened.Items, 1)
	assert.Equal(t, StateEditable, reopened.State())
	require.NotNil(t, reopened.QuoteID)
	assert.Equal(t, q.ID, *reopened.QuoteID)
}
