package location

import (
	"math"
	"testing"
)

func TestHaversineKm_BangaloreChennai(t *testing.T) {
	// Bangalore -> Chennai is roughly 290 km great-circle.
	d := HaversineKm(12.9716, 77.5946, 13.0827, 80.2707)
	if math.Abs(d-290) > 5 {
		t.Fatalf("expected ~290km, got %.2f", d)
	}
}

func TestHaversineKm_ZeroDistance(t *testing.T) {
	if d := HaversineKm(19.0760, 72.8777, 19.0760, 72.8777); d != 0 {
		t.Fatalf("expected 0, got %f", d)
	}
}

func TestHaversineKm_Symmetric(t *testing.T) {
	d1 := HaversineKm(28.6139, 77.2090, 12.9716, 77.5946)
	d2 := HaversineKm(12.9716, 77.5946, 28.6139, 77.2090)
	if math.Abs(d1-d2) > 1e-9 {
		t.Fatalf("haversine not symmetric: %f vs %f", d1, d2)
	}
}

func TestHaversineKmRounded(t *testing.T) {
	got := HaversineKmRounded(12.9716, 77.5946, 13.0827, 80.2707)
	if got < 285 || got > 295 {
		t.Fatalf("expected ~290, got %d", got)
	}
}
