package quotes

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ceramicarte/preventivi-backend/pkg/enums"
)

// stubGateway translates by lookup table, failing for unknown text.
type stubGateway struct {
	mu      sync.Mutex
	replies map[string]string
	failAll bool
	calls   int
}

func (s *stubGateway) Translate(_ context.Context, text string, _, target enums.Language) (string, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	if s.failAll {
		return "", fmt.Errorf("backends down")
	}
	if reply, ok := s.replies[text]; ok {
		return reply, nil
	}
	return "", fmt.Errorf("no translation for %q", text)
}

func (s *stubGateway) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func TestLocalizerRun_TranslatesFromCatalogSource(t *testing.T) {
	vaso := testProduct("Ceramica Quadra 20x20", "10.00")
	gateway := &stubGateway{replies: map[string]string{
		"Ceramica Quadra 20x20": "Square Ceramic 20x20",
	}}
	localizer := NewLocalizer(gateway, nil, nil)

	d := NewDraft()
	_, err := d.AddProductItem(vaso, 1)
	require.NoError(t, err)
	require.NoError(t, d.SetLanguage(enums.LanguageEnglish))

	view, warnings := localizer.Run(context.Background(), d.PassInput(), productMap(vaso))
	require.NoError(t, warnings)
	require.Len(t, view.Items, 1)
	assert.Equal(t, "Square Ceramic 20x20", view.Items[0].Name)
	assert.Equal(t, enums.LanguageEnglish, view.Language)
	assert.Equal(t, d.Generation(), view.Generation)
}

func TestLocalizerRun_ItalianIsIdentity(t *testing.T) {
	gateway := &stubGateway{}
	localizer := NewLocalizer(gateway, nil, nil)

	d := NewDraft()
	item := d.AddManualItem()
	name := "Vaso30cm"
	require.NoError(t, d.UpdateItem(item.ID, ItemUpdate{Name: &name}))
	d.SetNotes("note di prova")

	view, warnings := localizer.Run(context.Background(), d.PassInput(), nil)
	require.NoError(t, warnings)
	assert.Equal(t, "Vaso 30 cm", view.Items[0].Name)
	assert.Equal(t, "note di prova", view.Notes)
	assert.Equal(t, 0, gateway.callCount(), "italian target must not hit the gateway")
}

func TestLocalizerRun_FallsBackToItalianOnFailure(t *testing.T) {
	vaso := testProduct("Vaso grande", "10.00")
	gateway := &stubGateway{failAll: true}
	localizer := NewLocalizer(gateway, nil, nil)

	d := NewDraft()
	_, err := d.AddProductItem(vaso, 1)
	require.NoError(t, err)
	require.NoError(t, d.SetLanguage(enums.LanguageFrench))
	d.SetNotes("consegna entro 30giorni")

	view, warnings := localizer.Run(context.Background(), d.PassInput(), productMap(vaso))
	require.Error(t, warnings, "fallbacks are reported")
	assert.Equal(t, "Vaso grande", view.Items[0].Name)
	assert.Equal(t, "consegna entro 30 giorni", view.Notes)
}

func TestLocalizerRun_FreeTextTreatedAsItalian(t *testing.T) {
	gateway := &stubGateway{replies: map[string]string{
		"montaggio incluso": "assembly included",
	}}
	localizer := NewLocalizer(gateway, nil, nil)

	d := NewDraft()
	item := d.AddManualItem()
	name := "montaggio incluso"
	require.NoError(t, d.UpdateItem(item.ID, ItemUpdate{Name: &name}))
	require.NoError(t, d.SetLanguage(enums.LanguageEnglish))

	view, warnings := localizer.Run(context.Background(), d.PassInput(), nil)
	require.NoError(t, warnings)
	assert.Equal(t, "assembly included", view.Items[0].Name)
}

func TestLocalizerSnapshot_Cleaning(t *testing.T) {
	gateway := &stubGateway{failAll: true}
	localizer := NewLocalizer(gateway, nil, nil)

	d := NewDraft()
	item := d.AddManualItem()
	name := "  Vaso  "
	require.NoError(t, d.UpdateItem(item.ID, ItemUpdate{Name: &name}))
	d.SetNotes("   ")
	require.NoError(t, d.SetPayment(nil, "IT60X0542811101000000123456"))

	snapshot, _ := localizer.Snapshot(context.Background(), d.PassInput(), nil, false)

	assert.Equal(t, "Vaso", snapshot.Items[0].Name)
	assert.Equal(t, "", snapshot.Notes, "whitespace-only notes are dropped")
	assert.Equal(t, "", snapshot.PaymentDetails, "payment details dropped without a payment method")
	assert.Equal(t, "it", snapshot.Language)
	assert.False(t, snapshot.GeneratedAt.IsZero())
}

func TestLocalizerSnapshot_KeepsPaymentDetailsWithMethod(t *testing.T) {
	localizer := NewLocalizer(&stubGateway{}, nil, nil)

	d := NewDraft()
	item := d.AddManualItem()
	name := "Vaso"
	require.NoError(t, d.UpdateItem(item.ID, ItemUpdate{Name: &name}))
	method := enums.PaymentMethodIBAN
	require.NoError(t, d.SetPayment(&method, "  IT60X0542811101000000123456  "))

	snapshot, warnings := localizer.Snapshot(context.Background(), d.PassInput(), nil, true)
	require.NoError(t, warnings)
	assert.Equal(t, "IT60X0542811101000000123456", snapshot.PaymentDetails)
}

func TestLocalizerSnapshot_AllBackendsDownStillSucceeds(t *testing.T) {
	vaso := testProduct("Vaso", "10.00")
	localizer := NewLocalizer(&stubGateway{failAll: true}, nil, nil)

	d := NewDraft()
	name := "Mario Rossi"
	d.SetCustomer(CustomerUpdate{Name: &name})
	_, err := d.AddProductItem(vaso, 2)
	require.NoError(t, err)
	require.NoError(t, d.SetLanguage(enums.LanguageSpanish))

	gen, err := d.BeginFinalize()
	require.NoError(t, err)

	snapshot, _ := localizer.Snapshot(context.Background(), d.PassInput(), productMap(vaso), false)
	require.NoError(t, d.CompleteFinalize(gen, snapshot))

	assert.Equal(t, StateFinalized, d.State())
	assert.Equal(t, "Vaso", d.Snapshot().Items[0].Name, "degrades to the Italian source")
}
