// Package sigfigs converts between significant decimal digits and
// significant bits, so drivers can accept precision in digits and
// configure the histogram grid in bits.
package sigfigs

import "math"

// convert rebases a count of significant figures from one base to
// another. The leading figure carries less than a full base's worth of
// information, hence the 1-(1-sigs) form rather than a plain ratio.
func convert(sigs float64, fromBase, toBase uint) float64 {
	if fromBase < 2 || toBase < 2 || sigs < 1 {
		return math.NaN()
	}
	factor := math.Log(float64(fromBase)) / math.Log(float64(toBase))
	return 1 - (1-sigs)*factor
}

// DigitsToBits returns the exact bit equivalent of a decimal digit
// count.
func DigitsToBits(digits float64) float64 {
	return convert(digits, 10, 2)
}

// BitsToDigits returns the exact decimal digit equivalent of a bit
// count.
func BitsToDigits(bits float64) float64 {
	return convert(bits, 2, 10)
}

// BitsForDigits returns the smallest sigbits that preserves the
// requested decimal precision.
func BitsForDigits(digits uint) uint {
	return uint(math.Ceil(DigitsToBits(float64(digits))))
}
