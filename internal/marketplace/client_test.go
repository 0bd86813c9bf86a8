package marketplace

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestClientFetchListings(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("query"); got != "tata salt" {
			t.Fatalf("unexpected query %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"marketplaces":[
			{"id":"jiomart","name":"JioMart","price":24,"link":"https://jiomart.com","delivery":"next day"},
			{"id":"amazon","name":"Amazon Fresh","price":26,"link":"https://amazon.in","delivery":"2 hrs"}
		]}`))
	}))
	defer server.Close()

	client, err := NewClient(server.URL)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	listings, err := client.FetchListings(context.Background(), "tata salt")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(listings) != 2 {
		t.Fatalf("expected 2 listings, got %d", len(listings))
	}
	if listings[0].Name != "JioMart" || listings[0].Price != 24 {
		t.Fatalf("unexpected listing: %#v", listings[0])
	}
}

func TestClientFetchListingsNonOKStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client, err := NewClient(server.URL)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if _, err := client.FetchListings(context.Background(), "milk"); !errors.Is(err, ErrFetchFailed) {
		t.Fatalf("expected ErrFetchFailed, got %v", err)
	}
}

func TestClientFetchListingsTimeout(t *testing.T) {
	block := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		<-block
	}))
	defer server.Close()
	defer close(block)

	client, err := NewClient(server.URL, WithFetchTimeout(50*time.Millisecond))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if _, err := client.FetchListings(context.Background(), "milk"); !errors.Is(err, ErrFetchFailed) {
		t.Fatalf("expected ErrFetchFailed on timeout, got %v", err)
	}
}

func TestClientFetchListingsCancelled(t *testing.T) {
	block := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		<-block
	}))
	defer server.Close()
	defer close(block)

	client, err := NewClient(server.URL)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()
	if _, err := client.FetchListings(ctx, "milk"); !errors.Is(err, ErrFetchFailed) {
		t.Fatalf("expected ErrFetchFailed on cancellation, got %v", err)
	}
}

func TestClientRequiresQueryAndBaseURL(t *testing.T) {
	if _, err := NewClient("  "); err == nil {
		t.Fatalf("expected error for blank base url")
	}

	client, err := NewClient("http://localhost:9")
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if _, err := client.FetchListings(context.Background(), "  "); !errors.Is(err, ErrFetchFailed) {
		t.Fatalf("expected ErrFetchFailed for blank query, got %v", err)
	}
}

func TestSampleListingsDeterministic(t *testing.T) {
	first := SampleListings("Tata Salt 1kg")
	second := SampleListings("Tata Salt 1kg")
	if len(first) == 0 {
		t.Fatalf("expected sample listings")
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("samples must be deterministic: %#v vs %#v", first[i], second[i])
		}
	}
	// Salt maps to the staples set.
	if first[0].Price != 455 {
		t.Fatalf("expected staples sample set, got %#v", first[0])
	}
}

func TestSampleListingsDefaultCategory(t *testing.T) {
	listings := SampleListings("mystery item")
	if len(listings) != 5 {
		t.Fatalf("expected default sample set of 5, got %d", len(listings))
	}
}
