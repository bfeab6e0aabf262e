package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/pidroad/internal/analysis"
	"github.com/san-kum/pidroad/internal/automation"
	"github.com/san-kum/pidroad/internal/config"
	"github.com/san-kum/pidroad/internal/experiment"
	"github.com/san-kum/pidroad/internal/export"
	"github.com/san-kum/pidroad/internal/metrics"
	"github.com/san-kum/pidroad/internal/sim"
	"github.com/san-kum/pidroad/internal/storage"
)

var (
	sweepRuns  int
	sweepParam string
	sweepFrom  float64
	sweepTo    float64
	sweepSteps int
)

func addSweepFlags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&sweepRuns, "runs", 10, "number of consecutive seeds")
	cmd.Flags().StringVar(&sweepParam, "param", "", "sweep this gain (kp, ki, kd) instead of seeds")
	cmd.Flags().Float64Var(&sweepFrom, "from", 0, "first gain value")
	cmd.Flags().Float64Var(&sweepTo, "to", 1, "last gain value")
	cmd.Flags().IntVar(&sweepSteps, "steps", 5, "number of gain values")
}

func printMetrics(m map[string]float64) {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Println("\nmetrics:")
	for _, name := range names {
		fmt.Printf("  %s: %.6f\n", name, m[name])
	}
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTIME\tCTRL\tKP\tKI\tKD\tLIMIT\tFLAGS\tTICKS\tSEED")

	for _, run := range runs {
		flags := strings.Join(run.Flags, "|")
		if flags == "" {
			flags = "none"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%.3f\t%.3f\t%.3f\t[%.1f, %.1f]\t%s\t%d\t%d\n",
			run.ID,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Controller,
			run.Kp, run.Ki, run.Kd,
			run.Min, run.Max,
			flags,
			run.Ticks,
			run.Seed,
		)
	}

	return w.Flush()
}

func loadRun(runID string) (*storage.RunMetadata, []sim.Sample, error) {
	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return nil, nil, err
	}
	samples, err := st.LoadSamples(runID)
	if err != nil {
		return nil, nil, err
	}
	if len(samples) == 0 {
		return nil, nil, fmt.Errorf("run %s has no samples", runID)
	}
	return meta, samples, nil
}

func plotRun(cmd *cobra.Command, args []string) error {
	meta, samples, err := loadRun(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("controller: %s kp=%.3f ki=%.3f kd=%.3f\n", meta.Controller, meta.Kp, meta.Ki, meta.Kd)
	fmt.Printf("samples: %d\n\n", len(samples))

	series := []struct {
		caption string
		value   func(sim.Sample) float64
	}{
		{"position", func(s sim.Sample) float64 { return s.Position }},
		{"error", func(s sim.Sample) float64 { return s.Error }},
		{"correction", func(s sim.Sample) float64 { return s.Correction }},
		{"accumulator", func(s sim.Sample) float64 { return s.Accumulator }},
	}

	for _, sr := range series {
		data := make([]float64, len(samples))
		for i, s := range samples {
			data[i] = sr.value(s)
		}
		graph := asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(sr.caption),
		)
		fmt.Println(graph)
		fmt.Println()
	}
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func exportCSV(cmd *cobra.Command, args []string) error {
	_, samples, err := loadRun(args[0])
	if err != nil {
		return err
	}
	return storage.ExportCSV(os.Stdout, samples)
}

func exportJSON(cmd *cobra.Command, args []string) error {
	meta, samples, err := loadRun(args[0])
	if err != nil {
		return err
	}
	return storage.ExportJSON(os.Stdout, *meta, samples)
}

func exportSVG(cmd *cobra.Command, args []string) error {
	_, samples, err := loadRun(args[0])
	if err != nil {
		return err
	}

	// ticks.csv does not record the geometry, so draw on the default road
	r := config.DefaultConfig().RoadGeometry()
	if outFile == "" {
		return export.RoadSVG(os.Stdout, r, samples)
	}

	f, err := os.Create(outFile)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := export.RoadSVG(f, r, samples); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", outFile)
	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	meta, samples, err := loadRun(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("analysis: %s\n\n", meta.ID)

	sum := metrics.Summarize(samples)
	fmt.Printf("mean error:      %+.3f\n", sum.MeanError)
	fmt.Printf("stddev error:    %.3f\n", sum.StdDevError)
	fmt.Printf("rms error:       %.3f\n", sum.RMSError)
	fmt.Printf("max |error|:     %.3f\n", sum.MaxAbsError)
	fmt.Printf("mean correction: %+.3f\n\n", sum.MeanCorrection)

	// pad to a power of two for the FFT
	n := 1
	for n < len(samples) {
		n *= 2
	}
	data := make([]float64, n)
	for i, s := range samples {
		data[i] = s.Error
	}

	ps := analysis.PowerSpectrum(data)
	plotData := ps
	if len(ps) >= 8 {
		plotData = ps[:len(ps)/2]
	}
	graph := asciigraph.Plot(plotData,
		asciigraph.Height(12),
		asciigraph.Width(80),
		asciigraph.Caption("error spectrum"),
	)
	fmt.Println(graph)
	fmt.Println()

	rate := float64(meta.FPS)
	if rate <= 0 {
		rate = config.DefaultFPS
	}
	freq, _ := analysis.DominantFrequency(ps, n, rate)
	fmt.Printf("dominant frequency: %.3f hz\n", freq)
	if freq > 0 {
		fmt.Printf("period: %.2f s (%.1f ticks)\n", analysis.Period(freq), analysis.Period(freq)*rate)
	}

	portrait := analysis.NewPhasePortrait(samples)
	fmt.Printf("\n%s vs %s\n", portrait.YLabel, portrait.XLabel)
	fmt.Print(portrait.ASCII(70, 20))
	return nil
}

func compareFlags(cmd *cobra.Command, args []string) error {
	base, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	ctx, cancel := signalContext()
	defer cancel()

	registry := experiment.NewRegistry()
	type row struct {
		flags   string
		metrics map[string]float64
	}
	rows := make([]row, 0, len(args))

	for _, arg := range args {
		cfg := base.Clone()
		cfg.Controller.Flags = parseFlagList(strings.Split(arg, ","))
		exp := experiment.New(cfg)
		exp.SetLogger(log)
		if err := exp.Setup(registry); err != nil {
			return fmt.Errorf("flags %q: %w", arg, err)
		}
		result, err := exp.Run(ctx)
		if err != nil {
			return err
		}
		rows = append(rows, row{flags: arg, metrics: result.Metrics})
	}

	names := make([]string, 0)
	for name := range rows[0].metrics {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Printf("seed %d, %d ticks, kp=%.3f ki=%.3f kd=%.3f\n\n", base.Seed, base.Ticks, base.Controller.Kp, base.Controller.Ki, base.Controller.Kd)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "FLAGS\t"+strings.ToUpper(strings.Join(names, "\t")))
	for _, r := range rows {
		fmt.Fprint(w, r.flags)
		for _, name := range names {
			fmt.Fprintf(w, "\t%.4f", r.metrics[name])
		}
		fmt.Fprintln(w)
	}
	return w.Flush()
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	ctx, cancel := signalContext()
	defer cancel()

	runner := automation.NewRunner(experiment.NewRegistry(), nil, log)
	if sweepParam != "" {
		return gainSweep(ctx, runner, cfg)
	}

	outcomes, err := runner.RunSeeds(ctx, cfg, sweepRuns)
	if err != nil {
		return err
	}

	fmt.Printf("%d seeds from %d, %d ticks each\n", len(outcomes), cfg.Seed, cfg.Ticks)
	if n := automation.DivergedCount(outcomes); n > 0 {
		fmt.Printf("diverged: %d\n", n)
	}
	fmt.Println()

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "METRIC\tMEAN\tSTDDEV\tMIN\tMAX")
	for _, s := range automation.Aggregate(outcomes) {
		fmt.Fprintf(w, "%s\t%.4f\t%.4f\t%.4f\t%.4f\n", s.Name, s.Mean, s.StdDev, s.Min, s.Max)
	}
	return w.Flush()
}

func gainSweep(ctx context.Context, runner *automation.Runner, cfg *config.Config) error {
	points, err := runner.RunGainSweep(ctx, automation.GainSweep{
		Base:  cfg,
		Param: sweepParam,
		Min:   sweepFrom,
		Max:   sweepTo,
		Steps: sweepSteps,
	})
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\tTRACKING_ERROR\tCONTROL_EFFORT\tSATURATION\tOFF_ROAD\tRESETS\n", strings.ToUpper(sweepParam))
	for _, p := range points {
		fmt.Fprintf(w, "%.4f\t%.4f\t%.4f\t%.4f\t%.4f\t%.0f\n", p.Value,
			p.Metrics["tracking_error"],
			p.Metrics["control_effort"],
			p.Metrics["saturation"],
			p.Metrics["off_road"],
			p.Metrics["resets"],
		)
	}
	return w.Flush()
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tCTRL\tKP\tKI\tKD\tLIMIT\tFLAGS")
	for _, name := range config.ListPresets() {
		p := config.Presets[name]
		flags := strings.Join(p.Flags, "|")
		if flags == "" {
			flags = "none"
		}
		fmt.Fprintf(w, "%s\t%s\t%.3f\t%.3f\t%.3f\t[%.1f, %.1f]\t%s\n", name, p.Kind, p.Kp, p.Ki, p.Kd, p.Min, p.Max, flags)
	}
	return w.Flush()
}

func runScenario(cmd *cobra.Command, args []string) error {
	scenario, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}
	ctx, cancel := signalContext()
	defer cancel()

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	runner := automation.NewRunner(experiment.NewRegistry(), st, log)
	results, err := runner.RunScenario(ctx, scenario)
	for _, r := range results {
		id := r.RunID
		if id == "" {
			id = "(not saved)"
		}
		fmt.Printf("step %d: %s, tracking error %.4f\n", r.Step, id, r.Result.Metrics["tracking_error"])
	}
	return err
}
