package metrics

import (
	"testing"

	dto "github.com/prometheus/client_model/go"
)

func findFamily(t *testing.T, r *Registry, name string) *dto.MetricFamily {
	t.Helper()

	families, err := r.Gatherer().Gather()
	if err != nil {
		t.Fatalf("gathering metrics: %v", err)
	}
	for _, mf := range families {
		if mf.GetName() == name {
			return mf
		}
	}
	return nil
}

func counterValue(t *testing.T, r *Registry, name string) float64 {
	t.Helper()

	mf := findFamily(t, r, name)
	if mf == nil {
		return 0
	}
	var total float64
	for _, m := range mf.GetMetric() {
		if c := m.GetCounter(); c != nil {
			total += c.GetValue()
		}
	}
	return total
}

func TestRegistryCounters(t *testing.T) {
	r := New()

	r.TranslationRequests.WithLabelValues("google", "ok").Inc()
	r.TranslationRequests.WithLabelValues("libre", "error").Inc()
	r.TranslationFallback.Inc()
	r.QuoteExports.WithLabelValues("pdf").Add(2)

	if got := counterValue(t, r, "preventivi_translate_requests_total"); got != 2 {
		t.Fatalf("expected 2 translation requests, got %v", got)
	}
	if got := counterValue(t, r, "preventivi_translate_fallback_total"); got != 1 {
		t.Fatalf("expected 1 fallback, got %v", got)
	}
	if got := counterValue(t, r, "preventivi_quotes_exports_total"); got != 2 {
		t.Fatalf("expected 2 exports, got %v", got)
	}
}

func TestRegistryIsolated(t *testing.T) {
	a := New()
	b := New()

	a.QuoteFinalizations.Inc()

	if got := counterValue(t, b, "preventivi_quotes_finalizations_total"); got != 0 {
		t.Fatalf("expected isolated registries, got %v", got)
	}
}
