package mocks

import (
	"testing"
	"time"
)

func TestCandleGenerator_Generate(t *testing.T) {
	gen := NewCandleGenerator(42) // Fixed seed for reproducibility
	config := DefaultCandleConfig()
	config.Count = 100

	candles := gen.Generate(config)

	if len(candles) != 100 {
		t.Errorf("expected 100 candles, got %d", len(candles))
	}

	// Verify candles are in chronological order
	for i := 1; i < len(candles); i++ {
		if !candles[i].Timestamp.After(candles[i-1].Timestamp) {
			t.Errorf("candles not in chronological order at index %d", i)
		}
	}

	// Verify pair is set correctly
	for i, c := range candles {
		if c.Pair != config.Pair {
			t.Errorf("expected pair %s at index %d, got %s", config.Pair, i, c.Pair)
		}
	}

	// Verify OHLC values are positive
	for i, c := range candles {
		if c.Open <= 0 || c.High <= 0 || c.Low <= 0 || c.Close <= 0 {
			t.Errorf("invalid OHLC values at index %d: O=%f H=%f L=%f C=%f",
				i, c.Open, c.High, c.Low, c.Close)
		}
	}

	// Verify High >= Low
	for i, c := range candles {
		if c.High < c.Low {
			t.Errorf("High < Low at index %d: H=%f L=%f", i, c.High, c.Low)
		}
	}

	// Verify time intervals
	expectedInterval := config.Interval
	for i := 1; i < len(candles); i++ {
		actualInterval := candles[i].Timestamp.Sub(candles[i-1].Timestamp)
		if actualInterval != expectedInterval {
			t.Errorf("unexpected interval at index %d: expected %v, got %v",
				i, expectedInterval, actualInterval)
		}
	}
}

func TestCandleGenerator_Reproducibility(t *testing.T) {
	// Same seed should produce same results
	gen1 := NewCandleGenerator(42)
	gen2 := NewCandleGenerator(42)

	config := DefaultCandleConfig()
	config.Count = 10

	candles1 := gen1.Generate(config)
	candles2 := gen2.Generate(config)

	for i := range candles1 {
		if candles1[i].Close != candles2[i].Close {
			t.Errorf("series not reproducible at index %d: got %f and %f",
				i, candles1[i].Close, candles2[i].Close)
		}
	}
}

func TestCandleGenerator_Different_Seeds(t *testing.T) {
	gen1 := NewCandleGenerator(42)
	gen2 := NewCandleGenerator(123)

	config := DefaultCandleConfig()
	config.Count = 10

	candles1 := gen1.Generate(config)
	candles2 := gen2.Generate(config)

	// Different seeds should produce different results
	sameCount := 0
	for i := range candles1 {
		if candles1[i].Close == candles2[i].Close {
			sameCount++
		}
	}

	if sameCount == len(candles1) {
		t.Error("different seeds produced identical series")
	}
}

func TestCandleGenerator_GenerateMultiPair(t *testing.T) {
	gen := NewCandleGenerator(42)

	pairs := []string{"BTC/USDT", "ETH/USDT", "SOL/USDT"}
	config := DefaultCandleConfig()
	config.Count = 10

	candles := gen.GenerateMultiPair(pairs, config)

	if len(candles) != len(pairs)*config.Count {
		t.Errorf("expected %d candles, got %d", len(pairs)*config.Count, len(candles))
	}

	counts := make(map[string]int)
	for _, c := range candles {
		counts[c.Pair]++
	}

	for _, pair := range pairs {
		if counts[pair] != config.Count {
			t.Errorf("expected %d candles for %s, got %d", config.Count, pair, counts[pair])
		}
	}
}

func TestCandleGenerator_Interval(t *testing.T) {
	gen := NewCandleGenerator(7)

	config := DefaultCandleConfig()
	config.Count = 5
	config.Interval = 15 * time.Minute

	candles := gen.Generate(config)

	for i := 1; i < len(candles); i++ {
		if candles[i].Timestamp.Sub(candles[i-1].Timestamp) != 15*time.Minute {
			t.Errorf("unexpected interval at index %d", i)
		}
	}
}
