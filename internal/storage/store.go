package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/san-kum/pidroad/internal/sim"
)

const (
	metadataFile = "metadata.json"
	ticksFile    = "ticks.csv"
)

// ErrRunNotFound indicates a run ID with no stored metadata.
var ErrRunNotFound = errors.New("storage: run not found")

var ticksHeader = []string{"tick", "position", "error", "correction", "accumulator", "p", "i", "d", "reset", "saturated"}

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID         string             `json:"id"`
	Name       string             `json:"name"`
	Timestamp  time.Time          `json:"timestamp"`
	Seed       int64              `json:"seed"`
	Ticks      int                `json:"ticks"`
	Controller string             `json:"controller"`
	Kp         float64            `json:"kp"`
	Ki         float64            `json:"ki"`
	Kd         float64            `json:"kd"`
	Min        float64            `json:"min"`
	Max        float64            `json:"max"`
	Flags      []string           `json:"flags"`
	FPS        int                `json:"fps"`
	Metrics    map[string]float64 `json:"metrics"`
}

// Save writes a run directory and returns its ID. ID, Timestamp and
// Ticks are filled in from the result.
func (s *Store) Save(meta RunMetadata, result *sim.Result) (string, error) {
	if meta.Name == "" {
		meta.Name = "run"
	}
	now := time.Now()
	meta.ID = fmt.Sprintf("%s_%d_%s", meta.Name, now.Unix(), uuid.NewString()[:8])
	meta.Timestamp = now
	meta.Ticks = len(result.Samples)
	meta.Metrics = result.Metrics

	runDir := filepath.Join(s.baseDir, meta.ID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	// a half-written run would be skipped by List, so drop it instead
	if err := writeRun(runDir, meta, result.Samples); err != nil {
		_ = os.RemoveAll(runDir)
		return "", fmt.Errorf("save %s: %w", meta.ID, err)
	}
	return meta.ID, nil
}

func writeRun(runDir string, meta RunMetadata, samples []sim.Sample) error {
	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return err
	}
	return writeTicks(filepath.Join(runDir, ticksFile), samples)
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return err
	}
	return f.Close()
}

func writeTicks(path string, samples []sim.Sample) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return ExportCSV(f, samples)
}

// ExportCSV writes samples in the ticks.csv layout, header first.
func ExportCSV(out io.Writer, samples []sim.Sample) error {
	w := csv.NewWriter(out)
	if err := w.Write(ticksHeader); err != nil {
		return err
	}
	for _, smp := range samples {
		row := []string{
			strconv.Itoa(smp.Tick),
			formatFloat(smp.Position),
			formatFloat(smp.Error),
			formatFloat(smp.Correction),
			formatFloat(smp.Accumulator),
			formatFloat(smp.P),
			formatFloat(smp.I),
			formatFloat(smp.D),
			strconv.FormatBool(smp.Reset),
			strconv.FormatBool(smp.Saturated),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}

// List returns all readable runs, oldest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].Timestamp.Before(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	metaPath := filepath.Join(s.baseDir, runID, metadataFile)
	data, err := os.ReadFile(metaPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("decode %s: %w", metaPath, err)
	}

	return &meta, nil
}

// LoadSamples reads back the per-tick samples of a run. Malformed rows are
// skipped.
func (s *Store) LoadSamples(runID string) ([]sim.Sample, error) {
	csvPath := filepath.Join(s.baseDir, runID, ticksFile)
	file, err := os.Open(csvPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}

	if len(records) < 2 {
		return []sim.Sample{}, nil
	}

	samples := make([]sim.Sample, 0, len(records)-1)
	for _, record := range records[1:] {
		smp, ok := parseSample(record)
		if !ok {
			continue
		}
		samples = append(samples, smp)
	}

	return samples, nil
}

func parseSample(record []string) (sim.Sample, bool) {
	if len(record) < len(ticksHeader) {
		return sim.Sample{}, false
	}

	tick, err := strconv.Atoi(record[0])
	if err != nil {
		return sim.Sample{}, false
	}

	vals := make([]float64, 7)
	for i := range vals {
		v, err := strconv.ParseFloat(record[i+1], 64)
		if err != nil {
			return sim.Sample{}, false
		}
		vals[i] = v
	}
	reset, _ := strconv.ParseBool(record[8])
	saturated, _ := strconv.ParseBool(record[9])

	return sim.Sample{
		Tick:        tick,
		Position:    vals[0],
		Error:       vals[1],
		Correction:  vals[2],
		Accumulator: vals[3],
		P:           vals[4],
		I:           vals[5],
		D:           vals[6],
		Reset:       reset,
		Saturated:   saturated,
	}, true
}
