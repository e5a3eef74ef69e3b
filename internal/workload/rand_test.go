package workload

import (
	"math"
	"testing"
)

func TestSourceDeterminism(t *testing.T) {
	a, b := NewSource(42), NewSource(42)
	for i := 0; i < 1000; i++ {
		if av, bv := a.Uint32(), b.Uint32(); av != bv {
			t.Fatalf("same seed diverged at draw %d: %d vs %d", i, av, bv)
		}
	}
	c := NewSource(43)
	same := 0
	for i := 0; i < 1000; i++ {
		if a.Uint32() == c.Uint32() {
			same++
		}
	}
	if same > 10 {
		t.Errorf("different seeds matched on %d of 1000 draws", same)
	}
}

func TestStreamsAreIndependent(t *testing.T) {
	streams := make(map[uint32]int)
	for w := 0; w < 8; w++ {
		streams[Stream("uniform", w).Uint32()] = w
	}
	if len(streams) != 8 {
		t.Errorf("8 worker streams produced %d distinct first draws", len(streams))
	}
	if Stream("uniform", 0).Uint32() != Stream("uniform", 0).Uint32() {
		t.Error("stream derivation is not stable")
	}
}

func TestUint32nBounds(t *testing.T) {
	tests := []struct {
		name  string
		limit uint32
	}{
		{"one", 1},
		{"small", 7},
		{"power of two", 1 << 16},
		{"large", 1_000_000_000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSource(7)
			for i := 0; i < 10_000; i++ {
				if v := s.Uint32n(tt.limit); v >= tt.limit {
					t.Fatalf("Uint32n(%d) = %d", tt.limit, v)
				}
			}
		})
	}
}

func TestDistributionMoments(t *testing.T) {
	const n = 200_000
	tests := []struct {
		name      string
		draw      func(*Source) float64
		mean      float64
		tolerance float64
	}{
		{"uniform", (*Source).Uniform, 0.5, 0.01},
		{"exponential", (*Source).Exponential, 1, 0.05},
		{"normal", (*Source).Normal, 0, 0.05},
		{"gamma4", func(s *Source) float64 { return s.Gamma(4) }, 1, 0.05},
		{"chisquared3", func(s *Source) float64 { return s.ChiSquared(3) }, 1, 0.05},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSource(123)
			sum := 0.0
			for i := 0; i < n; i++ {
				sum += tt.draw(s)
			}
			if mean := sum / n; math.Abs(mean-tt.mean) > tt.tolerance {
				t.Errorf("sample mean = %g, want %g within %g", mean, tt.mean, tt.tolerance)
			}
		})
	}
}

func TestUniformRange(t *testing.T) {
	s := NewSource(5)
	for i := 0; i < 10_000; i++ {
		if v := s.Uniform(); v < 0 || v > 1 {
			t.Fatalf("Uniform() = %g", v)
		}
	}
}
