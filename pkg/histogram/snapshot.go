package histogram

import (
	"encoding/binary"
	"math"
	"math/bits"

	"github.com/cespare/xxhash/v2"
)

// Snapshot is an immutable point-in-time copy of a histogram: the
// bucket grid, a bitmap of the bins present at capture, per-bin totals,
// the overall population, and a flat copy of every present bin's
// counters.
type Snapshot struct {
	grid
	binmap     uint64
	population uint64
	totals     [binCount]uint64
	counts     []uint64
}

// Snapshot captures the histogram for rank and quantile queries. It may
// run concurrently with writers: bins installed after the bitmap is
// taken are excluded, counters reflect whatever updates have landed,
// and each bin's stored total equals the sum of its copied counters,
// which is the consistency the query engine relies on.
func (h *Histogram) Snapshot() *Snapshot {
	hs := &Snapshot{grid: h.grid}
	var blocks [binCount]*counterBlock
	for b := uint(0); b < h.exponents; b++ {
		if blk := h.bins[b].Load(); blk != nil {
			blocks[b] = blk
			hs.binmap |= 1 << b
		}
	}
	hs.counts = make([]uint64, bits.OnesCount64(hs.binmap)*int(h.mantissas))
	off := 0
	for b := uint(0); b < h.exponents; b++ {
		blk := blocks[b]
		if blk == nil {
			continue
		}
		var total uint64
		for s := uint(0); s < h.mantissas; s++ {
			c := (*blk)[s].Load()
			hs.counts[off] = c
			total += c
			off++
		}
		hs.totals[b] = total
		hs.population += total
	}
	return hs
}

// Sigbits returns the resolution of the captured histogram.
func (hs *Snapshot) Sigbits() uint { return hs.sigbits }

// Keys returns the number of distinct buckets in the grid.
func (hs *Snapshot) Keys() uint { return hs.keys }

// Population returns the number of samples captured. Under concurrent
// writers this is a lower bound on the live histogram's count.
func (hs *Snapshot) Population() uint64 { return hs.population }

// binCounts returns bin b's frozen counters, or nil when the bin was
// absent at capture. Popcount addressing into the flat copy.
func (hs *Snapshot) binCounts(b uint) []uint64 {
	bit := uint64(1) << b
	if hs.binmap&bit == 0 {
		return nil
	}
	off := bits.OnesCount64(hs.binmap&(bit-1)) * int(hs.mantissas)
	return hs.counts[off : off+int(hs.mantissas)]
}

// Get reports bucket key's inclusive bounds and its frozen count. ok is
// false when key is outside the grid.
func (hs *Snapshot) Get(key uint) (min, max, count uint64, ok bool) {
	if key >= hs.keys {
		return 0, 0, 0, false
	}
	if c := hs.binCounts(hs.binFor(key)); c != nil {
		count = c[hs.slotFor(key)]
	}
	return hs.minOf(key), hs.maxOf(key), count, true
}

// interpolate evaluates span * (mul / div) in floating point. A zero
// divisor counts as a full fraction, so an empty bucket lands on its
// upper bound rather than dividing by zero.
func interpolate(span, mul, div uint64) uint64 {
	frac := 1.0
	if div != 0 {
		frac = float64(mul) / float64(div)
	}
	return uint64(float64(span) * frac)
}

// ValueAtRank returns the approximate value at the given zero-based
// rank, interpolated within the containing bucket. Ranks at or beyond
// the population return math.MaxUint64.
func (hs *Snapshot) ValueAtRank(rank uint64) uint64 {
	b := uint(0)
	for ; b < hs.exponents; b++ {
		if rank < hs.totals[b] {
			break
		}
		rank -= hs.totals[b]
	}
	if b == hs.exponents {
		return math.MaxUint64
	}
	counts := hs.binCounts(b)
	s := uint(0)
	var count uint64
	for ; s < hs.mantissas; s++ {
		count = counts[s]
		if rank < count {
			break
		}
		rank -= count
	}
	if s == hs.mantissas {
		return math.MaxUint64
	}
	key := b*hs.mantissas + s
	min := hs.minOf(key)
	return min + interpolate(hs.maxOf(key)-min, rank, count)
}

// RankOfValue returns the number of captured samples below value,
// interpolated within value's own bucket. Zero-width buckets contribute
// no partial rank, so the rank of the smallest recorded value is zero.
func (hs *Snapshot) RankOfValue(value uint64) uint64 {
	key := hs.keyOf(value)
	kb, kc := hs.binFor(key), hs.slotFor(key)
	var rank uint64
	for b := uint(0); b < kb; b++ {
		rank += hs.totals[b]
	}
	counts := hs.binCounts(kb)
	if counts == nil {
		return rank
	}
	for s := uint(0); s < kc; s++ {
		rank += counts[s]
	}
	min := hs.minOf(key)
	if width := hs.maxOf(key) - min; width != 0 {
		rank += uint64(float64(counts[kc]) * (float64(value-min) / float64(width)))
	}
	return rank
}

// ValueAtQuantile returns the approximate value at quantile q, which is
// clamped to [0, 1].
func (hs *Snapshot) ValueAtQuantile(q float64) uint64 {
	if !(q > 0) {
		q = 0
	}
	if q > 1 {
		q = 1
	}
	return hs.ValueAtRank(uint64(q * float64(hs.population)))
}

// QuantileOfValue returns value's rank as a fraction of the population.
// NaN when the snapshot is empty.
func (hs *Snapshot) QuantileOfValue(value uint64) float64 {
	return float64(hs.RankOfValue(value)) / float64(hs.population)
}

// Fingerprint hashes the grid, the bin bitmap, and the frozen counters.
// Two snapshots of an unmutated histogram produce equal fingerprints.
func (hs *Snapshot) Fingerprint() uint64 {
	d := xxhash.New()
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(hs.sigbits))
	d.Write(buf[:])
	binary.LittleEndian.PutUint64(buf[:], hs.binmap)
	d.Write(buf[:])
	for _, c := range hs.counts {
		binary.LittleEndian.PutUint64(buf[:], c)
		d.Write(buf[:])
	}
	return d.Sum64()
}
