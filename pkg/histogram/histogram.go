// Package histogram implements a compact quantile sketch over uint64
// values. Buckets sit on a logarithmic grid with 1<<sigbits resolution
// per binary decade, counter updates are lock-free, and rank/quantile
// queries run against immutable snapshots.
package histogram

import (
	"errors"
	"fmt"
	"math"
	"sync/atomic"
	"unsafe"
)

// ErrSigbitsOutOfRange is returned by New when sigbits is outside
// [MinSigbits, MaxSigbits].
var ErrSigbitsOutOfRange = errors.New("histogram: sigbits must be between 1 and 15")

// counterBlock is the dense counter array owned by one bin. A block is
// installed at most once per bin and is never resized or replaced while
// the histogram is live.
type counterBlock []atomic.Uint64

// Histogram is a concurrent log-grid histogram. Add and Inc are safe
// from any number of goroutines. Reads of live state (Get, Size,
// MeanVariance) may run alongside writers but do not observe a
// consistent cut; callers that need one take a Snapshot. Merge requires
// external synchronization of both arguments.
type Histogram struct {
	grid
	bins [binCount]atomic.Pointer[counterBlock]
}

// New allocates a histogram with the given per-decade resolution.
func New(sigbits uint) (*Histogram, error) {
	if sigbits < MinSigbits || sigbits > MaxSigbits {
		return nil, ErrSigbitsOutOfRange
	}
	return &Histogram{grid: newGrid(sigbits)}, nil
}

// Sigbits returns the resolution the histogram was created with.
func (h *Histogram) Sigbits() uint { return h.sigbits }

// Keys returns the number of distinct buckets in the grid.
func (h *Histogram) Keys() uint { return h.keys }

// loadBin returns bin b's counter block, installing a zero-filled block
// first when create is set. The publish is a one-shot CAS: the first
// writer wins and every later load observes its fully zeroed block;
// losers drop their allocation and adopt the winner's.
func (h *Histogram) loadBin(b uint, create bool) *counterBlock {
	blk := h.bins[b].Load()
	if blk != nil || !create {
		return blk
	}
	fresh := make(counterBlock, h.mantissas)
	if h.bins[b].CompareAndSwap(nil, &fresh) {
		return &fresh
	}
	return h.bins[b].Load()
}

// counter returns the counter cell for key, or nil when the bin is
// unallocated and create is false.
func (h *Histogram) counter(key uint, create bool) *atomic.Uint64 {
	blk := h.loadBin(h.binFor(key), create)
	if blk == nil {
		return nil
	}
	return &(*blk)[h.slotFor(key)]
}

// Inc adds one to the bucket holding value.
func (h *Histogram) Inc(value uint64) {
	h.Add(value, 1)
}

// Add adds inc to the bucket holding value. An inc of zero is a no-op
// and allocates nothing.
func (h *Histogram) Add(value, inc uint64) {
	if inc == 0 {
		return
	}
	h.counter(h.keyOf(value), true).Add(inc)
}

func (h *Histogram) addKey(key uint, inc uint64) {
	h.counter(key, true).Add(inc)
}

// Get reports bucket key's inclusive bounds and its current count,
// zero when the bin has never been written. ok is false when key is
// outside the grid, which makes Get usable as an iterator terminator.
func (h *Histogram) Get(key uint) (min, max, count uint64, ok bool) {
	if key >= h.keys {
		return 0, 0, 0, false
	}
	if c := h.counter(key, false); c != nil {
		count = c.Load()
	}
	return h.minOf(key), h.maxOf(key), count, true
}

// Next advances key by one, then skips over whole unallocated bins so
// sparse iteration does not visit runs of buckets that cannot hold a
// count.
func (h *Histogram) Next(key uint) uint {
	key++
	for key < h.keys && h.slotFor(key) == 0 && h.bins[h.binFor(key)].Load() == nil {
		key += h.mantissas
	}
	return key
}

// Size returns the resident bytes: the container plus one counter block
// per materialized bin. O(binCount).
func (h *Histogram) Size() uint64 {
	size := uint64(unsafe.Sizeof(*h))
	for b := range h.bins {
		if h.bins[b].Load() != nil {
			size += uint64(h.mantissas) * uint64(unsafe.Sizeof(atomic.Uint64{}))
		}
	}
	return size
}

// MeanVariance returns the mean and the biased variance of the recorded
// data, taking each bucket at its midpoint. Both are NaN when the
// histogram is empty. The accumulation is a single Welford-style pass;
// endpoints are halved before summing because min+max can wrap uint64
// at the top of the range.
func (h *Histogram) MeanVariance() (mean, variance float64) {
	var pop, sigma float64
	for b := uint(0); b < h.exponents; b++ {
		blk := h.loadBin(b, false)
		if blk == nil {
			continue
		}
		for s := uint(0); s < h.mantissas; s++ {
			count := (*blk)[s].Load()
			if count == 0 {
				continue
			}
			key := b*h.mantissas + s
			mid := float64(h.minOf(key))/2 + float64(h.maxOf(key))/2
			c := float64(count)
			pop += c
			delta := mid - mean
			mean += c * delta / pop
			sigma += c * delta * (mid - mean)
		}
	}
	if pop == 0 {
		return math.NaN(), math.NaN()
	}
	return mean, sigma / pop
}

// Merge adds source's counts into h, translating buckets between the
// two grids. A source bucket that spans several target buckets has its
// count split by integer division with the remainder spread over the
// first target keys, which handles both refinement and coarsening,
// including the asymmetric denormal region. Callers must ensure neither
// histogram is concurrently written.
func (h *Histogram) Merge(source *Histogram) {
	for sk := uint(0); sk < source.keys; sk++ {
		c := source.counter(sk, false)
		if c == nil {
			// at a bin boundary; skip the whole unallocated bin
			sk += source.mantissas - 1
			continue
		}
		count := c.Load()
		if count == 0 {
			continue
		}
		tkmin := h.keyOf(source.minOf(sk))
		tkmax := h.keyOf(source.maxOf(sk))
		span := uint64(tkmax - tkmin + 1)
		each, rem := count/span, count%span
		for i := uint64(0); i < span; i++ {
			inc := each
			if i < rem {
				inc++
			}
			if inc != 0 {
				h.addKey(tkmin+uint(i), inc)
			}
		}
	}
}

// Validate checks the bucket grid end to end: total coverage,
// contiguity between neighbouring buckets, and value-to-key round-trips
// at both endpoints of every bucket.
func (h *Histogram) Validate() error {
	if min := h.minOf(0); min != 0 {
		return fmt.Errorf("histogram: grid does not start at zero, got %d", min)
	}
	if max := h.maxOf(h.keys - 1); max != math.MaxUint64 {
		return fmt.Errorf("histogram: grid does not cover the top of the range, got %d", max)
	}
	prev := uint64(0)
	for k := uint(0); k < h.keys; k++ {
		min, max := h.minOf(k), h.maxOf(k)
		if min > max {
			return fmt.Errorf("histogram: key %d has inverted bounds [%d, %d]", k, min, max)
		}
		if k > 0 && prev+1 != min {
			return fmt.Errorf("histogram: gap between key %d and %d: %d vs %d", k-1, k, prev, min)
		}
		if got := h.keyOf(min); got != k {
			return fmt.Errorf("histogram: min of key %d maps back to %d", k, got)
		}
		if got := h.keyOf(max); got != k {
			return fmt.Errorf("histogram: max of key %d maps back to %d", k, got)
		}
		prev = max
	}
	return nil
}
