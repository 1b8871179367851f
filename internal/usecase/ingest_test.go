package usecase

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"EquityPulse/internal/service/marketdata"
	applogger "EquityPulse/pkg/logger"
)

func testLogger(t *testing.T) *applogger.Logger {
	t.Helper()
	l, err := applogger.New(&applogger.Config{Level: "error", Format: "json", Output: "stderr"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return l
}

func ingestBody(symbol string, n int) string {
	bars := ""
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		if i > 0 {
			bars += ","
		}
		close := 100 + float64(i)
		bars += fmt.Sprintf(`{"date":"%s","open":%f,"high":%f,"low":%f,"close":%f,"volume":1000}`,
			base.AddDate(0, 0, i).Format("2006-01-02"), close, close+1, close-1, close)
	}
	return fmt.Sprintf(`{"symbol":"%s","name":"Test Corp","sector":"Tech","bars":[%s]}`, symbol, bars)
}

func TestIngestSymbol(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, ingestBody("TEST", 40))
	}))
	defer srv.Close()

	store := &fakeStore{}
	client := marketdata.New(srv.URL, "", marketdata.WithRetries(1, time.Millisecond))
	ing := NewIngestor(client, store, testLogger(t), []string{"test"}, 365)

	if err := ing.IngestSymbol(context.Background(), "test"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	bars := store.bars["TEST"]
	if len(bars) != 40 {
		t.Fatalf("expected 40 bars stored, got %d", len(bars))
	}
	// Indicators are recomputed over the whole series before storage.
	if bars[6].MA7 == nil {
		t.Fatalf("expected ma_7 from the seventh bar")
	}
	if bars[5].MA7 != nil {
		t.Fatalf("expected nil ma_7 before a full window")
	}
	if len(store.companies) != 1 || store.companies[0].Name != "Test Corp" {
		t.Fatalf("expected company upserted, got %+v", store.companies)
	}
}

func TestIngestDropsInvalidBars(t *testing.T) {
	body := `{"symbol":"BAD","bars":[
		{"date":"2024-01-02","open":100,"high":99,"low":101,"close":100},
		{"date":"2024-01-03","open":100,"high":101,"low":99,"close":100},
		{"date":"2024-01-04","open":0,"high":1,"low":1,"close":1}
	]}`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, body)
	}))
	defer srv.Close()

	store := &fakeStore{}
	client := marketdata.New(srv.URL, "", marketdata.WithRetries(1, time.Millisecond))
	ing := NewIngestor(client, store, testLogger(t), []string{"BAD"}, 365)

	if err := ing.IngestSymbol(context.Background(), "BAD"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(store.bars["BAD"]) != 1 {
		t.Fatalf("expected only the valid bar stored, got %d", len(store.bars["BAD"]))
	}
}

func TestIngestDedupesDates(t *testing.T) {
	body := `{"symbol":"DUP","bars":[
		{"date":"2024-01-02","open":100,"high":101,"low":99,"close":100},
		{"date":"2024-01-03","open":100,"high":101,"low":99,"close":100},
		{"date":"2024-01-02","open":110,"high":111,"low":109,"close":110}
	]}`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, body)
	}))
	defer srv.Close()

	store := &fakeStore{}
	client := marketdata.New(srv.URL, "", marketdata.WithRetries(1, time.Millisecond))
	ing := NewIngestor(client, store, testLogger(t), []string{"DUP"}, 365)

	if err := ing.IngestSymbol(context.Background(), "DUP"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	bars := store.bars["DUP"]
	if len(bars) != 2 {
		t.Fatalf("expected duplicate date collapsed, got %d bars", len(bars))
	}
	// The later occurrence wins.
	if bars[0].Close != 110 {
		t.Fatalf("expected last duplicate kept, got close %v", bars[0].Close)
	}
}

func TestRunOnceAllFail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	store := &fakeStore{}
	client := marketdata.New(srv.URL, "", marketdata.WithRetries(1, time.Millisecond))
	ing := NewIngestor(client, store, testLogger(t), []string{"A", "B"}, 365)

	if err := ing.RunOnce(context.Background()); err == nil {
		t.Fatalf("expected error when every symbol fails")
	}
}
