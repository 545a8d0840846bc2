package recommend

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap/zaptest"
)

func TestAlternativesForItem_RemoteSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/item2" {
			t.Errorf("Expected path /item2, got %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"alternatives":[{"id":"alt2","name":"Multigrain Bread","price":2.95,"similarity":90}]}`))
	}))
	defer srv.Close()

	client := NewClientWithURL(srv.URL, zaptest.NewLogger(t))
	alts := client.AlternativesForItem(context.Background(), "item2")
	if len(alts) != 1 || alts[0].ID != "alt2" {
		t.Errorf("Expected remote alternatives, got %+v", alts)
	}
}

func TestAlternativesForItem_FallsBackToPreset(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := NewClientWithURL(srv.URL, zaptest.NewLogger(t))
	alts := client.AlternativesForItem(context.Background(), "item2")
	if len(alts) != len(PresetCatalog()) {
		t.Errorf("Expected preset catalog fallback, got %d alternatives", len(alts))
	}
}

func TestLookupAlternative(t *testing.T) {
	alt, ok := LookupAlternative("alt2")
	if !ok {
		t.Fatal("Expected alt2 in catalog")
	}
	if alt.Price != 2.95 {
		t.Errorf("Expected price 2.95, got %v", alt.Price)
	}
	if _, ok := LookupAlternative("missing"); ok {
		t.Error("Expected missing id to report not found")
	}
}
