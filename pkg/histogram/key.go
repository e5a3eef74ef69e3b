package histogram

import (
	"math"
	"math/bits"
)

const (
	// binBits is the width of the bin index within a key. One bin per
	// binary exponent class of a 64-bit value.
	binBits  = 6
	binCount = 1 << binBits

	// MinSigbits and MaxSigbits bound the per-decade resolution.
	MinSigbits = 1
	MaxSigbits = 15
)

// grid is the bucket layout derived from sigbits. A key is laid out as
// (exponent << sigbits) | mantissa. Values below mantissas are denormal:
// they collapse into exponent class zero, one value per key, so the
// denormal and normal ranges stay contiguous with no gap.
type grid struct {
	sigbits   uint
	mantissas uint // counters per bin, 1 << sigbits
	exponents uint // active top-level bins, binCount - (sigbits - 1)
	keys      uint // distinct buckets, exponents * mantissas
}

func newGrid(sigbits uint) grid {
	mantissas := uint(1) << sigbits
	exponents := uint(binCount) - (sigbits - 1)
	return grid{
		sigbits:   sigbits,
		mantissas: mantissas,
		exponents: exponents,
		keys:      exponents * mantissas,
	}
}

// keyOf maps a value to its dense bucket key. Branchless: or-ing in the
// mantissas bit forces every denormal into exponent class zero, and the
// implicit leading one of a normalized value lands in the low bit of the
// exponent slot, so the arithmetic add carries it into the exponent.
func (g grid) keyOf(value uint64) uint {
	binned := value | uint64(g.mantissas)
	exponent := 63 - g.sigbits - uint(bits.LeadingZeros64(binned))
	mantissa := uint(value>>exponent) & (2*g.mantissas - 1)
	return exponent<<g.sigbits + mantissa
}

// minOf returns the smallest value in bucket key.
func (g grid) minOf(key uint) uint64 {
	if key < g.mantissas {
		return uint64(key)
	}
	exponent := key/g.mantissas - 1
	mantissa := key%g.mantissas + g.mantissas
	return uint64(mantissa) << exponent
}

// maxOf returns the largest value in bucket key, inclusive. The /4
// pre-shift form keeps the shift under 64 at the top of the range and
// avoids underflow in the denormal range, where buckets hold exactly
// one value.
func (g grid) maxOf(key uint) uint64 {
	shift := 63 - key/g.mantissas
	return g.minOf(key) + (uint64(math.MaxUint64)/4)>>shift
}

// binFor returns the top-level bin slot of a key.
func (g grid) binFor(key uint) uint { return key / g.mantissas }

// slotFor returns the counter slot of a key within its bin.
func (g grid) slotFor(key uint) uint { return key % g.mantissas }
