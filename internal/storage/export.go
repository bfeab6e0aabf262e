package storage

import (
	"encoding/json"
	"io"

	"github.com/san-kum/pidroad/internal/metrics"
	"github.com/san-kum/pidroad/internal/sim"
)

type ExportData struct {
	RunMetadata
	Summary metrics.Summary `json:"summary"`
	Samples []ExportSample  `json:"samples"`
}

type ExportSample struct {
	Tick        int     `json:"tick"`
	Position    float64 `json:"position"`
	Error       float64 `json:"error"`
	Correction  float64 `json:"correction"`
	Accumulator float64 `json:"accumulator"`
	P           float64 `json:"p"`
	I           float64 `json:"i"`
	D           float64 `json:"d"`
	Reset       bool    `json:"reset,omitempty"`
	Saturated   bool    `json:"saturated,omitempty"`
}

// ExportJSON writes a run's metadata, summary and samples as indented JSON.
func ExportJSON(w io.Writer, meta RunMetadata, samples []sim.Sample) error {
	data := ExportData{
		RunMetadata: meta,
		Summary:     metrics.Summarize(samples),
		Samples:     make([]ExportSample, len(samples)),
	}
	for i, s := range samples {
		data.Samples[i] = ExportSample{
			Tick:        s.Tick,
			Position:    s.Position,
			Error:       s.Error,
			Correction:  s.Correction,
			Accumulator: s.Accumulator,
			P:           s.P,
			I:           s.I,
			D:           s.D,
			Reset:       s.Reset,
			Saturated:   s.Saturated,
		}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}
