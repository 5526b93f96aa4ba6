package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"text/tabwriter"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/san-kum/cosmosim/internal/config"
	"github.com/san-kum/cosmosim/internal/cosmology"
	"github.com/san-kum/cosmosim/internal/experiment"
	"github.com/san-kum/cosmosim/internal/export"
	"github.com/san-kum/cosmosim/internal/logging"
	"github.com/san-kum/cosmosim/internal/result"
	"github.com/san-kum/cosmosim/internal/storage"
	"github.com/san-kum/cosmosim/internal/viz"
	"github.com/san-kum/cosmosim/internal/watch"
)

var (
	dataDir    string
	verbose    bool
	configFile string
	preset     string
	modelName  string
	integrator string
	dt         float64
	duration   float64
	// Initial state
	startTime   float64
	density     float64
	energy      float64
	expansion   float64
	gravitation float64

	save      bool
	steps     int
	watchFile bool
	// Plot
	plotField  string
	plotHeight int
	plotWidth  int
	svgPath    string
	svgXField  string
	// Sweep
	sweepField   string
	sweepFrom    float64
	sweepTo      float64
	sweepPoints  int
	sweepWorkers int
	// Frame rate for live view
	frameRate int

	logger = zap.NewNop()
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "cosmosim",
		Short:        "toy cosmology simulation and results viewer",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			l, err := logging.New(verbose)
			if err != nil {
				return fmt.Errorf("failed to init logger: %w", err)
			}
			logger = l
			cmd.SetContext(logging.NewContext(cmd.Context(), logger))
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = logger.Sync()
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".cosmosim", "data directory")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run the simulation once and write one CSV line",
		Args:  cobra.NoArgs,
		RunE:  runProducer,
	}
	addSimFlags(runCmd)
	runCmd.Flags().String("out", config.DefaultCSVPath, "output CSV file")
	runCmd.Flags().BoolVar(&save, "save", false, "also store the full run under the data directory")

	showCmd := &cobra.Command{
		Use:   "show [path]",
		Short: "print the records of a JSON results file",
		Args:  cobra.MaximumNArgs(1),
		RunE:  showResults,
	}
	showCmd.Flags().BoolVarP(&watchFile, "watch", "w", false, "print again whenever the file changes")

	seriesCmd := &cobra.Command{
		Use:   "series",
		Short: "write every step of a run as CSV with a header",
		Args:  cobra.NoArgs,
		RunE:  runSeries,
	}
	addSimFlags(seriesCmd)
	seriesCmd.Flags().IntVar(&steps, "steps", 0, "number of steps (overrides --time)")
	seriesCmd.Flags().String("out", "", "output file (default stdout)")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json",
		Short: "write every step of a run as a JSON results file",
		Args:  cobra.NoArgs,
		RunE:  exportJSON,
	}
	addSimFlags(exportJSONCmd)
	exportJSONCmd.Flags().IntVar(&steps, "steps", 0, "number of steps (overrides --time)")
	exportJSONCmd.Flags().String("out", config.DefaultJSONPath, "output JSON file")

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "run many initial states concurrently and write the final records as JSON",
		Args:  cobra.NoArgs,
		RunE:  runSweep,
	}
	addSimFlags(sweepCmd)
	sweepCmd.Flags().StringVar(&sweepField, "field", config.DefaultSweepField, "initial field to vary")
	sweepCmd.Flags().Float64Var(&sweepFrom, "from", 0.5, "first value")
	sweepCmd.Flags().Float64Var(&sweepTo, "to", 2.0, "last value")
	sweepCmd.Flags().IntVar(&sweepPoints, "points", 8, "number of values")
	sweepCmd.Flags().IntVar(&sweepWorkers, "workers", config.DefaultWorkers, "concurrent runs (0 = unlimited)")
	sweepCmd.Flags().String("out", config.DefaultJSONPath, "output JSON file")

	plotCmd := &cobra.Command{
		Use:   "plot [path]",
		Short: "plot one field of a JSON results file",
		Args:  cobra.MaximumNArgs(1),
		RunE:  plotResults,
	}
	plotCmd.Flags().StringVar(&plotField, "field", "density", "field to plot")
	plotCmd.Flags().IntVar(&plotHeight, "height", 15, "plot height")
	plotCmd.Flags().IntVar(&plotWidth, "width", 70, "plot width")
	plotCmd.Flags().StringVar(&svgPath, "svg", "", "write an SVG of --field against --x instead")
	plotCmd.Flags().StringVar(&svgXField, "x", "time", "x axis field for --svg")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "step the model with a live terminal view",
		Args:  cobra.NoArgs,
		RunE:  runLive,
	}
	addSimFlags(liveCmd)
	liveCmd.Flags().IntVar(&frameRate, "fps", 30, "frame rate")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets [model]",
		Short: "list available presets for a model",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			presets := config.ListPresets(args[0])
			if len(presets) == 0 {
				fmt.Fprintf(out, "no presets for model: %s\n", args[0])
				return nil
			}
			fmt.Fprintf(out, "presets for %s:\n", args[0])
			for _, p := range presets {
				fmt.Fprintf(out, "  %s\n", p)
			}
			return nil
		},
	}

	rootCmd.AddCommand(runCmd, showCmd, seriesCmd, exportJSONCmd, sweepCmd, plotCmd, liveCmd, listCmd, presetsCmd)
	return rootCmd
}

func addSimFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration for --model")
	cmd.Flags().StringVar(&modelName, "model", config.DefaultModel, "model (rates, matter)")
	cmd.Flags().StringVar(&integrator, "integrator", config.DefaultIntegrator, "integrator (euler, rk4)")
	cmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "timestep")
	cmd.Flags().Float64Var(&duration, "time", config.DefaultDuration, "simulated time per run")
	cmd.Flags().Float64Var(&startTime, "t0", 0, "initial time")
	cmd.Flags().Float64Var(&density, "density", 1, "initial density")
	cmd.Flags().Float64Var(&energy, "energy", 1, "initial energy")
	cmd.Flags().Float64Var(&expansion, "expansion", 1, "initial expansion")
	cmd.Flags().Float64Var(&gravitation, "gravitation", 1, "initial gravitation")
}

// resolveConfig layers defaults, preset, config file and changed flags, in
// that order.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		p := config.GetPreset(modelName, preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets(modelName))
		}
		cfg = p
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("model") {
		cfg.Model = modelName
	}
	if flags.Changed("integrator") {
		cfg.Integrator = integrator
	}
	if flags.Changed("dt") {
		cfg.Dt = dt
	}
	if flags.Changed("time") {
		cfg.Duration = duration
	}
	if flags.Changed("t0") {
		cfg.Initial.Time = startTime
	}
	if flags.Changed("density") {
		cfg.Initial.Density = density
	}
	if flags.Changed("energy") {
		cfg.Initial.Energy = energy
	}
	if flags.Changed("expansion") {
		cfg.Initial.Expansion = expansion
	}
	if flags.Changed("gravitation") {
		cfg.Initial.Gravitation = gravitation
	}
	if flags.Lookup("steps") != nil && steps > 0 {
		cfg.Duration = float64(steps) * cfg.Dt
	}

	logger.Debug("resolved config",
		zap.String("model", cfg.Model),
		zap.String("integrator", cfg.Integrator),
		zap.Float64("dt", cfg.Dt),
		zap.Float64("duration", cfg.Duration),
		zap.Stringer("initial", cfg.Initial))
	return cfg, nil
}

// outputPath prefers an explicit --out over the configured path. Each
// command declares its own --out default, so the flag is read per command.
func outputPath(cmd *cobra.Command, configured string) string {
	out, _ := cmd.Flags().GetString("out")
	if cmd.Flags().Changed("out") || configured == "" {
		return out
	}
	return configured
}

func newEvolver(cmd *cobra.Command) (*config.Config, *cosmology.Evolver, error) {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	evolver, err := experiment.NewRegistry().NewRoutine(cfg, nil)
	if err != nil {
		return nil, nil, err
	}
	return cfg, evolver, nil
}

// produce computes one record and writes it as a single CSV line.
func produce(ctx context.Context, routine cosmology.Routine, initial result.SimulationResult, path string) (result.SimulationResult, error) {
	r, err := routine.Compute(ctx, initial)
	if err != nil {
		return result.SimulationResult{}, fmt.Errorf("simulation failed: %w", err)
	}
	if err := result.WriteCSVLine(path, r); err != nil {
		return result.SimulationResult{}, err
	}
	return r, nil
}

func runProducer(cmd *cobra.Command, args []string) error {
	cfg, evolver, err := newEvolver(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	path := outputPath(cmd, cfg.Output.CSV)

	if !save {
		r, err := produce(ctx, evolver, cfg.Initial, path)
		if err != nil {
			return err
		}
		logger.Info("wrote result", zap.String("path", path), zap.Stringer("result", r))
		return nil
	}

	run, err := evolver.Trajectory(ctx, cfg.Initial)
	if err != nil {
		return fmt.Errorf("simulation failed: %w", err)
	}
	if err := result.WriteCSVLine(path, run.Final()); err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	id, err := st.Save(storage.RunMetadata{
		Model:      cfg.Model,
		Integrator: cfg.Integrator,
		Dt:         cfg.Dt,
		Duration:   cfg.Duration,
		Params:     evolver.Model().GetParams(),
		Metrics:    run.Metrics,
	}, run.Records)
	if err != nil {
		return fmt.Errorf("failed to store run: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "run saved: %s\n", id)
	return nil
}

// reportResults loads path and prints one labelled line per record. A
// missing or malformed file is reported on w and yields no records.
func reportResults(w io.Writer, path string) []result.SimulationResult {
	results, err := result.Load(path)
	switch {
	case errors.Is(err, result.ErrNotFound):
		logger.Debug("results not found", zap.String("path", path), zap.Error(err))
		fmt.Fprintf(w, "results not found: %s\n", path)
		return nil
	case err != nil:
		logger.Debug("decode failed", zap.String("path", path), zap.Error(err))
		fmt.Fprintf(w, "failed to load results: %v\n", err)
		return nil
	}

	for _, r := range results {
		fmt.Fprintln(w, viz.RenderRecord(r))
	}
	return results
}

func showResults(cmd *cobra.Command, args []string) error {
	path := config.DefaultJSONPath
	if len(args) > 0 {
		path = args[0]
	}
	out := cmd.OutOrStdout()

	reportResults(out, path)
	if !watchFile {
		return nil
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	return watch.New(path, watch.DefaultDebounce, logger).Run(ctx, func() {
		fmt.Fprintln(out, viz.Separator(60))
		reportResults(out, path)
	})
}

func runSeries(cmd *cobra.Command, args []string) error {
	cfg, evolver, err := newEvolver(cmd)
	if err != nil {
		return err
	}

	run, err := evolver.Trajectory(cmd.Context(), cfg.Initial)
	if err != nil {
		return fmt.Errorf("simulation failed: %w", err)
	}

	path, _ := cmd.Flags().GetString("out")
	if path == "" {
		return result.WriteSeriesCSV(cmd.OutOrStdout(), run.Records)
	}
	if err := result.WriteSeriesFile(path, run.Records); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %d rows to %s\n", len(run.Records), path)
	return nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	cfg, evolver, err := newEvolver(cmd)
	if err != nil {
		return err
	}

	run, err := evolver.Trajectory(cmd.Context(), cfg.Initial)
	if err != nil {
		return fmt.Errorf("simulation failed: %w", err)
	}

	path := outputPath(cmd, cfg.Output.JSON)
	if err := result.WriteJSON(path, run.Records); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %d records to %s\n", len(run.Records), path)
	return nil
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, evolver, err := newEvolver(cmd)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("field") {
		cfg.Sweep.Field = sweepField
	}
	if flags.Changed("from") {
		cfg.Sweep.From = sweepFrom
	}
	if flags.Changed("to") {
		cfg.Sweep.To = sweepTo
	}
	if flags.Changed("points") {
		cfg.Sweep.Points = sweepPoints
	}
	if flags.Changed("workers") {
		cfg.Sweep.Workers = sweepWorkers
	}

	points, err := cfg.SweepPoints()
	if err != nil {
		return err
	}

	finals, err := evolver.Sweep(cmd.Context(), points, cfg.Sweep.Workers)
	if err != nil {
		return fmt.Errorf("sweep failed: %w", err)
	}

	path := outputPath(cmd, cfg.Output.JSON)
	if err := result.WriteJSON(path, finals); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %d records to %s\n", len(finals), path)
	return nil
}

func plotResults(cmd *cobra.Command, args []string) error {
	path := config.DefaultJSONPath
	if len(args) > 0 {
		path = args[0]
	}

	results, err := result.Load(path)
	if err != nil {
		return err
	}

	if svgPath != "" {
		svg, err := export.TrajectorySVG(results, svgXField, plotField, 800, 500, "#00ccff")
		if err != nil {
			return err
		}
		if err := os.WriteFile(svgPath, []byte(svg), 0644); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "exported SVG to %s\n", svgPath)
		return nil
	}

	chart, err := viz.Plot(results, plotField, plotHeight, plotWidth)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), chart)
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, evolver, err := newEvolver(cmd)
	if err != nil {
		return err
	}
	if err := cosmology.Validate(cfg.Initial); err != nil {
		return err
	}

	newInteg, err := experiment.NewRegistry().IntegratorFactory(cfg.Integrator)
	if err != nil {
		return err
	}

	m := viz.NewLiveModel(evolver.Model(), newInteg(), cfg.Initial, cfg.Dt, frameRate)
	final, err := tea.NewProgram(m, tea.WithContext(cmd.Context())).Run()
	if err != nil {
		return err
	}
	if lm, ok := final.(viz.LiveModel); ok && lm.Err() != nil {
		return lm.Err()
	}
	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	runs, err := storage.New(dataDir).List()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(runs) == 0 {
		fmt.Fprintln(out, "no runs")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tMODEL\tINTEGRATOR\tRECORDS\tFINAL\tTIMESTAMP")
	for _, r := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%s\n",
			r.ID, r.Model, r.Integrator, r.Records, strings.TrimSuffix(r.Final.CSVLine(), "\n"),
			r.Timestamp.Format("2006-01-02 15:04:05"))
	}
	return w.Flush()
}
