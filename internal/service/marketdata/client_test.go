package marketdata

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

const historyBody = `{
  "symbol": "aapl",
  "name": "Apple Inc.",
  "sector": "Technology",
  "bars": [
    {"date": "2024-01-02", "open": 100, "high": 102, "low": 99, "close": 101, "volume": 1000},
    {"date": "2024-01-03", "open": 101, "high": 103, "low": 100, "close": 102, "volume": 1100},
    {"date": "bad-date", "open": 1, "high": 1, "low": 1, "close": 1}
  ]
}`

func TestFetchHistory(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/daily/AAPL" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("days") != "30" {
			t.Errorf("unexpected days %s", r.URL.Query().Get("days"))
		}
		if r.Header.Get("X-Api-Key") != "secret" {
			t.Errorf("missing api key header")
		}
		fmt.Fprint(w, historyBody)
	}))
	defer srv.Close()

	c := New(srv.URL, "secret")
	company, bars, err := c.FetchHistory(context.Background(), "AAPL", 30)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if company.Symbol != "AAPL" || company.Name != "Apple Inc." {
		t.Fatalf("unexpected company %+v", company)
	}
	// The bad-date bar is skipped.
	if len(bars) != 2 {
		t.Fatalf("expected 2 bars, got %d", len(bars))
	}
	if bars[0].Close != 101 || bars[0].Volume == nil || *bars[0].Volume != 1000 {
		t.Fatalf("unexpected first bar %+v", bars[0])
	}
}

func TestFetchHistoryRetries(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		fmt.Fprint(w, historyBody)
	}))
	defer srv.Close()

	c := New(srv.URL, "", WithRetries(3, time.Millisecond))
	_, bars, err := c.FetchHistory(context.Background(), "AAPL", 30)
	if err != nil {
		t.Fatalf("expected success on third attempt, got %v", err)
	}
	if len(bars) != 2 {
		t.Fatalf("expected 2 bars, got %d", len(bars))
	}
	if atomic.LoadInt32(&calls) != 3 {
		t.Fatalf("expected 3 calls, got %d", calls)
	}
}

func TestFetchHistoryExhaustsRetries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := New(srv.URL, "", WithRetries(2, time.Millisecond))
	_, _, err := c.FetchHistory(context.Background(), "AAPL", 30)
	if err == nil {
		t.Fatalf("expected error after exhausting retries")
	}
}
