package pubip

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
)

func newResolver(endpoints []string) *Resolver {
	return &Resolver{
		Endpoints: endpoints,
		Client:    &http.Client{Timeout: 2 * time.Second},
	}
}

func TestFirstSuccessfulEndpointWins(t *testing.T) {
	var mu sync.Mutex
	order := []string{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		order = append(order, r.URL.Path)
		mu.Unlock()
		switch r.URL.Path {
		case "/down":
			w.WriteHeader(http.StatusServiceUnavailable)
		case "/empty":
			w.Write([]byte("   \n"))
		case "/ok":
			w.Write([]byte("  203.0.113.7\n"))
		case "/later":
			w.Write([]byte("198.51.100.9"))
		}
	}))
	defer server.Close()

	r := newResolver([]string{
		server.URL + "/down",
		server.URL + "/empty",
		server.URL + "/ok",
		server.URL + "/later",
	})
	addr, ok := r.PublicIP()
	if !ok || addr != "203.0.113.7" {
		t.Fatalf("PublicIP = (%q, %v)", addr, ok)
	}

	// Strict order, no attempt past the first success.
	want := []string{"/down", "/empty", "/ok"}
	if len(order) != len(want) {
		t.Fatalf("requests = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("requests = %v, want %v", order, want)
		}
	}
}

/**
 * Exhaustion is degraded, not fatal: the placeholder is substituted
 */
func TestExhaustionReturnsPlaceholder(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	r := newResolver([]string{server.URL + "/a", server.URL + "/b"})
	addr, ok := r.PublicIP()
	if ok {
		t.Error("exhausted resolver reported success")
	}
	if addr != Placeholder {
		t.Errorf("addr = %q, want %q", addr, Placeholder)
	}
}
