package metrics

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/pidroad/internal/sim"
)

// Summary describes the distribution of tracking error and correction over
// a run.
type Summary struct {
	Ticks          int     `json:"ticks"`
	MeanError      float64 `json:"mean_error"`
	StdDevError    float64 `json:"stddev_error"`
	RMSError       float64 `json:"rms_error"`
	MaxAbsError    float64 `json:"max_abs_error"`
	MeanCorrection float64 `json:"mean_correction"`
	StdDevCorr     float64 `json:"stddev_correction"`
}

func Summarize(samples []sim.Sample) Summary {
	s := Summary{Ticks: len(samples)}
	if len(samples) == 0 {
		return s
	}

	errs := make([]float64, len(samples))
	sq := make([]float64, len(samples))
	corrs := make([]float64, len(samples))
	for i, smp := range samples {
		errs[i] = smp.Error
		sq[i] = smp.Error * smp.Error
		corrs[i] = smp.Correction
		s.MaxAbsError = math.Max(s.MaxAbsError, math.Abs(smp.Error))
	}

	s.MeanError, s.StdDevError = stat.MeanStdDev(errs, nil)
	s.RMSError = math.Sqrt(stat.Mean(sq, nil))
	s.MeanCorrection, s.StdDevCorr = stat.MeanStdDev(corrs, nil)
	if len(samples) == 1 {
		// single observation has no spread
		s.StdDevError = 0
		s.StdDevCorr = 0
	}
	return s
}
