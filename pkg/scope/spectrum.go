package scope

import (
	"fmt"
	"math/bits"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

// FallbackSampleRateHz is used when the sample rate cannot be inferred
// because the first two samples share a timestamp.
const FallbackSampleRateHz = 1000

// Analyze returns the one-sided magnitude spectrum of s, or an empty series
// when the input cannot be analyzed. A sampleRateHz <= 0 means "infer from
// the spacing of the first two samples".
func Analyze(s Series, sampleRateHz float64) Series {
	out, err := TryAnalyze(s, sampleRateHz)
	if err != nil {
		return Series{}
	}
	return out
}

// TryAnalyze is Analyze with the reason for an empty result exposed.
//
// The input is zero-padded to the next power of two; bin i carries
// frequency i*rate/size and magnitude |X[i]|/size for i in [0, size/2).
// No window is applied.
func TryAnalyze(s Series, sampleRateHz float64) (Series, error) {
	if len(s) < 2 {
		return Series{}, fmt.Errorf("%w: spectrum needs 2 samples, got %d", ErrInsufficientData, len(s))
	}

	rate := sampleRateHz
	if !finite(rate) || rate <= 0 {
		rate = InferSampleRate(s)
	}

	size := NextPowerOfTwo(len(s))
	buf := make([]complex128, size)
	for i, p := range s {
		y := p.Y
		if !finite(y) {
			y = 0
		}
		buf[i] = complex(y, 0)
	}
	buf = fft.FFT(buf)

	bins := size / 2
	out := make(Series, bins)
	norm := float64(size)
	for i := 0; i < bins; i++ {
		out[i] = Sample{
			X: float64(i) * rate / norm,
			Y: cmplx.Abs(buf[i]) / norm,
		}
	}
	return out, nil
}

// InferSampleRate returns 1/(x1-x0), falling back to FallbackSampleRateHz
// when the spacing is not positive.
func InferSampleRate(s Series) float64 {
	if len(s) < 2 {
		return FallbackSampleRateHz
	}
	dt := s[1].X - s[0].X
	if !finite(dt) || dt <= 0 {
		return FallbackSampleRateHz
	}
	return 1 / dt
}

// NextPowerOfTwo returns the smallest power of two >= n (1 for n <= 1).
func NextPowerOfTwo(n int) int {
	if n <= 1 {
		return 1
	}
	return 1 << bits.Len(uint(n-1))
}

// BinWidth is the frequency spacing of the spectrum Analyze produces for an
// input of n samples at sampleRateHz.
func BinWidth(n int, sampleRateHz float64) float64 {
	return sampleRateHz / float64(NextPowerOfTwo(n))
}
