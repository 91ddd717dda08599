package collector

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func newTestFetcher(t *testing.T, handler http.HandlerFunc) *BinanceFetcher {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewBinanceFetcher(srv.URL, "")
}

func TestBinanceFetcher_FetchKlines(t *testing.T) {
	f := newTestFetcher(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v3/klines" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("interval"); got != "1h" {
			t.Errorf("expected interval 1h, got %s", got)
		}
		// Out of order, with a duplicate open time.
		w.Write([]byte(`[
			[1700003600000,"101","103","100","102","5",1700007199999,"0",1,"0","0","0"],
			[1700000000000,"100","102","99","101","4",1700003599999,"0",1,"0","0","0"],
			[1700003600000,"101","104","100","103","6",1700007199999,"0",1,"0","0","0"]
		]`))
	})

	bars, err := f.FetchKlines(context.Background(), "BTCUSDT", "1h", 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(bars) != 2 {
		t.Fatalf("expected 2 bars after dedupe, got %d", len(bars))
	}
	if !bars[0].Time.Before(bars[1].Time) {
		t.Errorf("bars not sorted oldest-first")
	}
	if bars[1].Close != 103 || bars[1].Volume != 6 {
		t.Errorf("expected the last duplicate to win, got %+v", bars[1])
	}
	if !bars[0].Time.Equal(time.UnixMilli(1700000000000).UTC()) {
		t.Errorf("unexpected open time %v", bars[0].Time)
	}
}

func TestBinanceFetcher_MalformedKlines(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", `<html>`},
		{"short row", `[[1700000000000,"1","2"]]`},
		{"bad number", `[[1700000000000,"x","2","1","1","1"]]`},
		{"non-positive close", `[[1700000000000,"1","2","1","0","1"]]`},
		{"negative volume", `[[1700000000000,"1","2","1","1","-1"]]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newTestFetcher(t, func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tt.body))
			})
			if _, err := f.FetchKlines(context.Background(), "BTCUSDT", "1h", 1); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestBinanceFetcher_FetchCurrentPrice(t *testing.T) {
	f := newTestFetcher(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("symbol") != "ETHUSDT" {
			t.Errorf("unexpected symbol %s", r.URL.Query().Get("symbol"))
		}
		w.Write([]byte(`{"symbol":"ETHUSDT","price":"2500.50"}`))
	})
	price, err := f.FetchCurrentPrice(context.Background(), "ETHUSDT")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if price != 2500.50 {
		t.Errorf("expected 2500.50, got %f", price)
	}
}

func TestBinanceFetcher_Fetch24hStats(t *testing.T) {
	f := newTestFetcher(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"symbol":"BTCUSDT","priceChange":"-500.0","priceChangePercent":"-1.25",
			"highPrice":"41000","lowPrice":"39000","volume":"1234.5","quoteVolume":"50000000"}`))
	})
	stats, err := f.Fetch24hStats(context.Background(), "BTCUSDT")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.ChangePercent != -1.25 || stats.High != 41000 || stats.Symbol != "BTCUSDT" {
		t.Errorf("unexpected stats %+v", stats)
	}
}

func TestBinanceFetcher_APIError(t *testing.T) {
	f := newTestFetcher(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"code":-1121,"msg":"Invalid symbol."}`))
	})
	_, err := f.FetchCurrentPrice(context.Background(), "NOPE")
	if err == nil {
		t.Fatal("expected an error")
	}
	if !strings.Contains(err.Error(), "Invalid symbol.") {
		t.Errorf("expected API message in error, got %v", err)
	}
}
