package calculator

import (
	"errors"
	"math"
	"testing"
)

func TestRSI_AllGains(t *testing.T) {
	closes := make([]float64, 15)
	for i := range closes {
		closes[i] = float64(100 + i)
	}
	rsi, err := CalculateRSI(closes, 14)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rsi != 100 {
		t.Errorf("expected 100 for all gains, got %.4f", rsi)
	}
}

func TestRSI_AllLosses(t *testing.T) {
	closes := make([]float64, 20)
	for i := range closes {
		closes[i] = float64(200 - i)
	}
	rsi, err := CalculateRSI(closes, 14)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rsi != 0 {
		t.Errorf("expected 0 for all losses, got %.4f", rsi)
	}
}

func TestRSI_InsufficientData(t *testing.T) {
	_, err := CalculateRSI(make([]float64, 14), 14)
	if !errors.Is(err, ErrInsufficientData) {
		t.Fatalf("expected ErrInsufficientData, got %v", err)
	}
	if _, err := CalculateRSI(make([]float64, 20), 0); err == nil {
		t.Error("expected error for zero period")
	}
}

func TestRSI_Bounds(t *testing.T) {
	closes := waveCloses(120)
	for end := 15; end <= len(closes); end++ {
		rsi, err := CalculateRSI(closes[:end], 14)
		if err != nil {
			t.Fatalf("end=%d: %v", end, err)
		}
		if rsi < 0 || rsi > 100 {
			t.Fatalf("end=%d: RSI out of range: %.4f", end, rsi)
		}
	}
}

func TestRSISeries_AgreesWithLive(t *testing.T) {
	closes := waveCloses(80)
	series, err := CalculateRSISeries(closes, 14)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(series) != len(closes) {
		t.Fatalf("expected %d values, got %d", len(closes), len(series))
	}
	for i := 0; i < 14; i++ {
		if !math.IsNaN(series[i]) {
			t.Errorf("index %d: expected NaN warm-up, got %.4f", i, series[i])
		}
	}
	for end := 15; end <= len(closes); end++ {
		live, _ := CalculateRSI(closes[:end], 14)
		if !approx(live, series[end-1], 1e-6) {
			t.Errorf("end=%d: live %.8f vs batch %.8f", end, live, series[end-1])
		}
	}
}
