package histogram

import (
	"math"
	"testing"
)

func TestQuantileInterpolation(t *testing.T) {
	h := mustNew(t, 5)
	for v := uint64(100); v < 200; v++ {
		h.Inc(v)
	}
	hs := h.Snapshot()
	if hs.Population() != 100 {
		t.Fatalf("population = %d, want 100", hs.Population())
	}
	if median := hs.ValueAtQuantile(0.5); median < 149 || median > 150 {
		t.Errorf("ValueAtQuantile(0.5) = %d, want within [149, 150]", median)
	}
	if rank := hs.RankOfValue(150); rank < 49 || rank > 51 {
		t.Errorf("RankOfValue(150) = %d, want within [49, 51]", rank)
	}
}

func TestOutOfRangeRank(t *testing.T) {
	h := mustNew(t, 6)
	hs := h.Snapshot()
	if v := hs.ValueAtRank(0); v != math.MaxUint64 {
		t.Errorf("empty ValueAtRank(0) = %d, want MaxUint64", v)
	}
	h.Inc(42)
	hs = h.Snapshot()
	if v := hs.ValueAtRank(0); v != 42 {
		t.Errorf("ValueAtRank(0) = %d, want 42", v)
	}
	if v := hs.ValueAtRank(1); v != math.MaxUint64 {
		t.Errorf("ValueAtRank(1) = %d, want MaxUint64", v)
	}
}

func TestMonotoneRank(t *testing.T) {
	h := mustNew(t, 4)
	src := newTestSource(7)
	for i := 0; i < 10_000; i++ {
		h.Inc(src.next() % 1_000_000)
	}
	hs := h.Snapshot()

	prev := uint64(0)
	for rank := uint64(0); rank < hs.Population(); rank += 97 {
		v := hs.ValueAtRank(rank)
		if v < prev {
			t.Fatalf("ValueAtRank(%d) = %d, below previous %d", rank, v, prev)
		}
		prev = v
	}

	prevRank := uint64(0)
	for v := uint64(0); v < 1_000_000; v += 1009 {
		r := hs.RankOfValue(v)
		if r < prevRank {
			t.Fatalf("RankOfValue(%d) = %d, below previous %d", v, r, prevRank)
		}
		prevRank = r
	}
}

func TestRankValueApproximateInverse(t *testing.T) {
	h := mustNew(t, 6)
	// distinct values, so no bucket holds more samples than it has values
	// and the interpolation rounding stays within one rank
	for i := uint64(0); i < 5_000; i++ {
		h.Inc(i * 37 % 100_000)
	}
	hs := h.Snapshot()
	for rank := uint64(0); rank < hs.Population(); rank += 101 {
		back := hs.RankOfValue(hs.ValueAtRank(rank))
		// interpolation rounds within one bucket slot
		lo, hi := rank, rank
		if lo > 0 {
			lo--
		}
		hi++
		if back < lo || back > hi {
			t.Errorf("RankOfValue(ValueAtRank(%d)) = %d, want within [%d, %d]", rank, back, lo, hi)
		}
	}
}

func TestSnapshotIdempotent(t *testing.T) {
	h := mustNew(t, 5)
	src := newTestSource(99)
	for i := 0; i < 1000; i++ {
		h.Inc(src.next() % 1_000_000_000)
	}
	a, b := h.Snapshot(), h.Snapshot()
	if a.Population() != b.Population() {
		t.Errorf("populations differ: %d vs %d", a.Population(), b.Population())
	}
	if a.Fingerprint() != b.Fingerprint() {
		t.Errorf("fingerprints differ: %x vs %x", a.Fingerprint(), b.Fingerprint())
	}
	for k := uint(0); k < a.Keys(); k++ {
		_, _, ca, _ := a.Get(k)
		_, _, cb, _ := b.Get(k)
		if ca != cb {
			t.Fatalf("key %d differs between snapshots: %d vs %d", k, ca, cb)
		}
	}
	h.Inc(0)
	if c := h.Snapshot(); c.Fingerprint() == a.Fingerprint() {
		t.Error("fingerprint unchanged after a write")
	}
}

func TestSnapshotMatchesLive(t *testing.T) {
	h := mustNew(t, 7)
	src := newTestSource(3)
	for i := 0; i < 2000; i++ {
		h.Add(src.next()%50_000, uint64(i%5))
	}
	hs := h.Snapshot()
	for k := uint(0); k < h.Keys(); k++ {
		lmin, lmax, lcount, lok := h.Get(k)
		smin, smax, scount, sok := hs.Get(k)
		if lok != sok || lmin != smin || lmax != smax || lcount != scount {
			t.Fatalf("key %d: live (%d, %d, %d, %v) vs snapshot (%d, %d, %d, %v)",
				k, lmin, lmax, lcount, lok, smin, smax, scount, sok)
		}
	}
}

func TestQuantileClamping(t *testing.T) {
	h := mustNew(t, 6)
	for v := uint64(1); v <= 100; v++ {
		h.Inc(v)
	}
	hs := h.Snapshot()
	if v := hs.ValueAtQuantile(-0.5); v != hs.ValueAtRank(0) {
		t.Errorf("ValueAtQuantile(-0.5) = %d, want rank 0 value %d", v, hs.ValueAtRank(0))
	}
	if v := hs.ValueAtQuantile(math.NaN()); v != hs.ValueAtRank(0) {
		t.Errorf("ValueAtQuantile(NaN) = %d, want rank 0 value", v)
	}
	if v := hs.ValueAtQuantile(1.5); v != math.MaxUint64 {
		t.Errorf("ValueAtQuantile(1.5) = %d, want MaxUint64 at the population edge", v)
	}
}

func TestQuantileOfValueEmpty(t *testing.T) {
	h := mustNew(t, 6)
	if q := h.Snapshot().QuantileOfValue(42); !math.IsNaN(q) {
		t.Errorf("empty QuantileOfValue = %g, want NaN", q)
	}
}

func TestQuantileOfValueRange(t *testing.T) {
	h := mustNew(t, 6)
	src := newTestSource(11)
	for i := 0; i < 1000; i++ {
		h.Inc(src.next() % 10_000)
	}
	hs := h.Snapshot()
	for _, v := range []uint64{0, 1, 5000, 9999, math.MaxUint64} {
		q := hs.QuantileOfValue(v)
		if q < 0 || q > 1 {
			t.Errorf("QuantileOfValue(%d) = %g, outside [0, 1]", v, q)
		}
	}
}
