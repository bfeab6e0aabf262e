package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/san-kum/pidroad/internal/config"
	"github.com/san-kum/pidroad/internal/experiment"
	"github.com/san-kum/pidroad/internal/logging"
	"github.com/san-kum/pidroad/internal/pid"
	"github.com/san-kum/pidroad/internal/sim"
	"github.com/san-kum/pidroad/internal/storage"
	"github.com/san-kum/pidroad/internal/telemetry"
	"github.com/san-kum/pidroad/internal/tui"
	"github.com/san-kum/pidroad/internal/viz"
)

var (
	dataDir     string
	logLevel    string
	metricsAddr string
	configFile  string
	preset      string
	kind        string
	kp          float64
	ki          float64
	kd          float64
	outMin      float64
	outMax      float64
	flagNames   []string
	ticks       int
	seed        int64
	fps         int
	runName     string
	theme       string
	pick        bool
	noDelay     bool
	outFile     string

	log = zap.NewNop()
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "pidroad",
		Short: "keep a randomly pushed car in the middle of the road with a PID controller",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			l, err := logging.New(logLevel, false)
			if err != nil {
				return err
			}
			log = l
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = log.Sync()
		},
		SilenceUsage: true,
		// the original demo: print the road until interrupted
		RunE: runDrive,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".pidroad", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	addConfigFlags(rootCmd)
	rootCmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve prometheus metrics on this address")
	rootCmd.Flags().BoolVar(&noDelay, "no-delay", false, "print as fast as possible")

	driveCmd := &cobra.Command{
		Use:   "drive",
		Short: "print the scrolling road, one row per tick",
		RunE:  runDrive,
	}
	addConfigFlags(driveCmd)
	driveCmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve prometheus metrics on this address")
	driveCmd.Flags().BoolVar(&noDelay, "no-delay", false, "print as fast as possible")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "interactive view with live tuning",
		RunE:  runLive,
	}
	addConfigFlags(liveCmd)
	liveCmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve prometheus metrics on this address")
	liveCmd.Flags().StringVar(&theme, "theme", "asphalt", "color theme ("+strings.Join(viz.ThemeNames(), ", ")+")")
	liveCmd.Flags().BoolVar(&pick, "pick", false, "choose a preset from a menu first")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run headless and save to the data directory",
		RunE:  runHeadless,
	}
	addConfigFlags(runCmd)
	runCmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve prometheus metrics on this address")
	runCmd.Flags().StringVar(&runName, "name", "", "run name (defaults to the preset or \"run\")")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list saved runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a saved run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "print run metadata as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "print run samples as CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "print run metadata, summary and samples as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "draw the car's path down the road as SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "oscillation and error analysis of a saved run",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}

	compareCmd := &cobra.Command{
		Use:   "compare [flags1] [flags2] ...",
		Short: "run the same seed under several flag sets (comma separated, or \"none\")",
		Args:  cobra.MinimumNArgs(1),
		RunE:  compareFlags,
	}
	addConfigFlags(compareCmd)

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "repeat a run over consecutive seeds, or over a range of one gain",
		RunE:  runSweep,
	}
	addConfigFlags(sweepCmd)
	addSweepFlags(sweepCmd)

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list controller presets",
		RunE:  listPresets,
	}

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run a YAML scenario",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}

	rootCmd.AddCommand(driveCmd, liveCmd, runCmd, listCmd, plotCmd, exportCmd, exportCSVCmd, exportJSONCmd, exportSVGCmd, analyzeCmd, compareCmd, sweepCmd, presetsCmd, scenarioCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addConfigFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&configFile, "config", "", "config file path (yaml)")
	f.StringVar(&preset, "preset", "", "controller preset ("+strings.Join(config.ListPresets(), ", ")+")")
	f.StringVar(&kind, "controller", "pid", "controller kind ("+strings.Join(experiment.NewRegistry().ListControllers(), ", ")+")")
	f.Float64Var(&kp, "kp", config.DefaultKp, "proportional gain")
	f.Float64Var(&ki, "ki", config.DefaultKi, "integral gain")
	f.Float64Var(&kd, "kd", config.DefaultKd, "derivative gain")
	f.Float64Var(&outMin, "min", -config.DefaultLimit, "lower output limit")
	f.Float64Var(&outMax, "max", config.DefaultLimit, "upper output limit")
	f.StringSliceVar(&flagNames, "flags", nil, "controller flags ("+strings.Join(pid.FlagNames(), ", ")+"), \"none\" for no flags")
	f.IntVar(&ticks, "ticks", config.DefaultTicks, "number of ticks")
	f.Int64Var(&seed, "seed", config.DefaultSeed, "disturbance seed")
	f.IntVar(&fps, "fps", config.DefaultFPS, "frames per second for drive and live")
}

// buildConfig layers a config file or preset under the command line flags.
// Only flags that were set explicitly override the base.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}
	if preset != "" {
		p := config.GetPreset(preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
		cfg.Controller = p.Controller
	}

	changed := cmd.Flags().Changed
	if changed("controller") {
		cfg.Controller.Kind = kind
	}
	if changed("kp") {
		cfg.Controller.Kp = kp
	}
	if changed("ki") {
		cfg.Controller.Ki = ki
	}
	if changed("kd") {
		cfg.Controller.Kd = kd
	}
	if changed("min") {
		cfg.Controller.Min = outMin
	}
	if changed("max") {
		cfg.Controller.Max = outMax
	}
	if changed("flags") {
		cfg.Controller.Flags = parseFlagList(flagNames)
	}
	if changed("ticks") {
		cfg.Ticks = ticks
	}
	if changed("seed") {
		cfg.Seed = seed
	}
	if changed("fps") {
		cfg.FPS = fps
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func parseFlagList(names []string) []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" || n == "none" {
			continue
		}
		out = append(out, n)
	}
	return out
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// startTelemetry serves prometheus metrics in the background when
// --metrics-addr is set and returns the collector to observe with.
func startTelemetry(ctx context.Context) (sim.Observer, error) {
	if metricsAddr == "" {
		return nil, nil
	}
	reg := prometheus.NewRegistry()
	c := telemetry.NewCollector()
	if err := c.Register(reg); err != nil {
		return nil, err
	}
	go func() {
		if err := telemetry.Serve(ctx, metricsAddr, reg, log); err != nil {
			log.Error("metrics server failed", zap.Error(err))
		}
	}()
	return c, nil
}

func setupExperiment(cfg *config.Config) (*experiment.Experiment, error) {
	exp := experiment.New(cfg)
	exp.SetLogger(log)
	if err := exp.Setup(experiment.NewRegistry()); err != nil {
		return nil, err
	}
	return exp, nil
}

func runDrive(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	ctx, cancel := signalContext()
	defer cancel()

	exp, err := setupExperiment(cfg)
	if err != nil {
		return err
	}
	s := exp.GetSimulator()

	printer := tui.NewPrinter(os.Stdout, cfg.RoadGeometry(), cfg.FPS)
	if noDelay {
		printer.NoDelay()
	}
	s.AddObserver(printer)

	obs, err := startTelemetry(ctx)
	if err != nil {
		return err
	}
	if obs != nil {
		s.AddObserver(obs)
	}

	// without an explicit tick count the road scrolls until interrupted
	limit := 0
	if cmd.Flags().Changed("ticks") || configFile != "" {
		limit = cfg.Ticks
	}

	err = s.RunWithCallback(ctx, sim.Config{Ticks: limit, Seed: cfg.Seed}, func(sim.Sample) bool {
		return printer.Err() == nil
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	if err != nil {
		return err
	}
	return printer.Err()
}

func runLive(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	var observers []sim.Observer
	obs, err := startTelemetry(ctx)
	if err != nil {
		return err
	}
	if obs != nil {
		observers = append(observers, obs)
	}

	registry := experiment.NewRegistry()
	if pick {
		return viz.RunPicker(viz.NewPicker(registry, log, theme, observers...))
	}

	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	m, err := viz.NewModel(cfg, registry, log, observers...)
	if err != nil {
		return err
	}
	return viz.Run(m.WithTheme(theme))
}

func runHeadless(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	ctx, cancel := signalContext()
	defer cancel()

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	exp, err := setupExperiment(cfg)
	if err != nil {
		return err
	}
	obs, err := startTelemetry(ctx)
	if err != nil {
		return err
	}
	if obs != nil {
		exp.GetSimulator().AddObserver(obs)
	}

	log.Info("running", zap.Int("ticks", cfg.Ticks), zap.Int64("seed", cfg.Seed))
	result, err := exp.Run(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	for _, e := range result.Errors {
		log.Warn("run ended early", zap.Error(e))
	}

	name := runName
	if name == "" {
		name = preset
	}
	if name == "" {
		name = "run"
	}
	runID, err := st.Save(storage.NewMetadata(name, cfg), result)
	if err != nil {
		return err
	}

	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("ticks: %d\n", len(result.Samples))
	printMetrics(result.Metrics)
	return nil
}
