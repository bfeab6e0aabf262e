package analysis

import (
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

// PowerSpectrum returns the magnitudes of the first half of the real FFT of
// data, with the mean removed so the DC bin does not dominate.
func PowerSpectrum(data []float64) []float64 {
	if len(data) == 0 {
		return nil
	}

	mean := 0.0
	for _, v := range data {
		mean += v
	}
	mean /= float64(len(data))

	centered := make([]float64, len(data))
	for i, v := range data {
		centered[i] = v - mean
	}

	spectrum := fft.FFTReal(centered)
	ps := make([]float64, len(spectrum)/2)
	for i := range ps {
		ps[i] = cmplx.Abs(spectrum[i])
	}
	return ps
}

// DominantFrequency finds the strongest non-DC bin of a spectrum computed
// from n samples taken at sampleRate per second. It returns zero when the
// spectrum has no usable bins.
func DominantFrequency(ps []float64, n int, sampleRate float64) (freq, power float64) {
	maxIdx := 0
	for i := 1; i < len(ps); i++ {
		if ps[i] > power {
			power = ps[i]
			maxIdx = i
		}
	}
	if maxIdx == 0 || n == 0 {
		return 0, 0
	}
	return float64(maxIdx) * sampleRate / float64(n), power
}

// Period converts a frequency to seconds per cycle.
func Period(freq float64) float64 {
	if freq == 0 {
		return math.Inf(1)
	}
	return 1 / freq
}
