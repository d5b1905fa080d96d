package safety

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func newTestClient(baseURL string) *Client {
	return NewClient(baseURL, 2*time.Second, zerolog.Nop())
}

func TestLookup_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/medicines/Amoxicillin/safety" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"name":"Amoxicillin","safetyStatus":"Generally safe when prescribed.","advantages":["Treats bacterial infections"],"disadvantages":["May cause nausea"]}`))
	}))
	defer srv.Close()

	info := newTestClient(srv.URL).Lookup(context.Background(), "Amoxicillin")
	if info.Name != "Amoxicillin" {
		t.Errorf("expected name Amoxicillin, got %q", info.Name)
	}
	if info.SafetyStatus != "Generally safe when prescribed." {
		t.Errorf("unexpected safety status: %q", info.SafetyStatus)
	}
	if len(info.Advantages) != 1 || len(info.Disadvantages) != 1 {
		t.Errorf("unexpected advisory lists: %+v", info)
	}
}

func TestLookup_Non200FallsBack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	info := newTestClient(srv.URL).Lookup(context.Background(), "Cetirizine")
	assertFallback(t, info, "Cetirizine")
}

func TestLookup_BadJSONFallsBack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer srv.Close()

	info := newTestClient(srv.URL).Lookup(context.Background(), "Cetirizine")
	assertFallback(t, info, "Cetirizine")
}

func TestLookup_UnreachableFallsBack(t *testing.T) {
	info := newTestClient("http://127.0.0.1:1").Lookup(context.Background(), "Ibuprofen")
	assertFallback(t, info, "Ibuprofen")
}

func TestLookup_NoBaseURLFallsBack(t *testing.T) {
	info := newTestClient("").Lookup(context.Background(), "Ibuprofen")
	assertFallback(t, info, "Ibuprofen")
}

func assertFallback(t *testing.T, info Info, name string) {
	t.Helper()
	if info.Name != name {
		t.Errorf("expected fallback name %q, got %q", name, info.Name)
	}
	if info.SafetyStatus != "General safety verification pending. Consult a pharmacist." {
		t.Errorf("expected fallback status, got %q", info.SafetyStatus)
	}
	if len(info.Advantages) != 2 || len(info.Disadvantages) != 2 {
		t.Errorf("expected fallback advisory lists, got %+v", info)
	}
}
