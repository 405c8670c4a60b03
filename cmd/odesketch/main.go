package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/odesketch/internal/config"
	"github.com/san-kum/odesketch/internal/coords"
	"github.com/san-kum/odesketch/internal/export"
	"github.com/san-kum/odesketch/internal/integrators"
	"github.com/san-kum/odesketch/internal/logging"
	"github.com/san-kum/odesketch/internal/ode"
	"github.com/san-kum/odesketch/internal/storage"
	"github.com/san-kum/odesketch/internal/viz"
)

var (
	dataDir string
	// logging
	verbosity int
	quiet     bool
	logFile   string
	logJSON   bool
	// problem
	configFile string
	preset     string
	frame      string
	x0         float64
	y0         float64
	length     float64
	method     string
	initStep   float64
	// controller
	tolerance float64
	safety    float64
	minStep   float64
	maxStep   float64
	maxIter   int
	// output
	save       bool
	graph      bool
	showPoints bool
	width      int
	height     int
	output     string
)

var logger = logging.Discard()

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var closer io.Closer
	rootCmd := &cobra.Command{
		Use:          "odesketch",
		Short:        "sketch solutions of first-order ODEs",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			opts := logging.Options{
				Level: logging.LevelFromVerbosity(verbosity, quiet),
				File:  logFile,
				JSON:  logJSON,
				// the explorer owns the terminal
				Writer: cmd.ErrOrStderr(),
			}
			if isExplorer(cmd) && logFile == "" {
				opts.Writer = io.Discard
			}
			l, c, err := logging.New(opts)
			if err != nil {
				return fmt.Errorf("failed to open log: %w", err)
			}
			logger, closer = l, c
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if closer != nil {
				return closer.Close()
			}
			return nil
		},
		RunE: runExplore,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&dataDir, "data", ".odesketch", "data directory")
	pf.CountVarP(&verbosity, "verbose", "v", "more logging (repeat for debug)")
	pf.BoolVarP(&quiet, "quiet", "q", false, "log errors only")
	pf.StringVar(&logFile, "log-file", "", "write the log to a file")
	pf.BoolVar(&logJSON, "log-json", false, "log as JSON")
	addProblemFlags(rootCmd)

	exploreCmd := &cobra.Command{
		Use:   "explore",
		Short: "interactive explorer",
		Args:  cobra.NoArgs,
		RunE:  runExplore,
	}
	addProblemFlags(exploreCmd)

	solveCmd := &cobra.Command{
		Use:   "solve [expression]",
		Short: "solve once and print a summary",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSolve,
	}
	addProblemFlags(solveCmd)
	solveCmd.Flags().BoolVar(&save, "save", false, "store the run under --data")
	solveCmd.Flags().BoolVar(&graph, "graph", false, "draw y against x")
	solveCmd.Flags().BoolVar(&showPoints, "points", false, "print every sample")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().IntVar(&width, "width", 80, "plot width")
	plotCmd.Flags().IntVar(&height, "height", 12, "plot height")

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run samples to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run metadata and samples to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "draw a stored run as SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().IntVar(&width, "width", 800, "image width")
	exportSVGCmd.Flags().IntVar(&height, "height", 600, "image height")

	exportPNGCmd := &cobra.Command{
		Use:   "export-png [run_id]",
		Short: "draw a stored run as PNG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportPNG,
	}

	for _, c := range []*cobra.Command{exportCSVCmd, exportJSONCmd, exportSVGCmd, exportPNGCmd} {
		c.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout or <run_id>.<ext>)")
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tFRAME\tEXPRESSION\tDESCRIPTION")
			for _, name := range config.ListPresets() {
				p := config.Presets[name]
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", name, p.Config.Frame, p.Config.Expression, p.Description)
			}
			return w.Flush()
		},
	}

	methodsCmd := &cobra.Command{
		Use:   "methods",
		Short: "list integration methods",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg := integrators.NewRegistry()
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			for _, name := range reg.Names() {
				marker := ""
				if name == integrators.DefaultMethod {
					marker = " (default)"
				}
				fmt.Fprintf(w, "%s%s\t%s\n", name, marker, reg.Describe(name))
			}
			return w.Flush()
		},
	}

	compareCmd := &cobra.Command{
		Use:   "compare [expression] [method1] [method2] ...",
		Short: "compare integration methods on the same problem",
		Args:  cobra.MinimumNArgs(1),
		RunE:  compareMethods,
	}
	addProblemFlags(compareCmd)

	rootCmd.AddCommand(exploreCmd, solveCmd, listCmd, plotCmd, exportCSVCmd, exportJSONCmd, exportSVGCmd, exportPNGCmd, presetsCmd, methodsCmd, compareCmd)
	return rootCmd
}

func addProblemFlags(cmd *cobra.Command) {
	d := config.DefaultConfig()
	f := cmd.Flags()
	f.StringVar(&configFile, "config", "", "config file path (yaml)")
	f.StringVar(&preset, "preset", "", "start from a preset")
	f.StringVar(&frame, "frame", d.Frame, "cartesian or polar")
	f.Float64Var(&x0, "x0", d.InitialConditions[0], "initial x")
	f.Float64Var(&y0, "y0", d.InitialConditions[1], "initial y")
	f.Float64Var(&length, "length", d.IntegrationLength, "integration length")
	f.StringVar(&method, "method", d.Method, "integration method")
	f.Float64Var(&initStep, "dt", d.InitialStep, "initial step")
	f.Float64Var(&tolerance, "tol", d.Integrator.Tolerance, "error tolerance")
	f.Float64Var(&safety, "safety", d.Integrator.SafetyFactor, "step safety factor")
	f.Float64Var(&minStep, "min-step", d.Integrator.MinStep, "smallest step")
	f.Float64Var(&maxStep, "max-step", d.Integrator.MaxStep, "largest step")
	f.IntVar(&maxIter, "max-iter", d.Integrator.MaxIterations, "attempts allowed per step")
}

func isExplorer(cmd *cobra.Command) bool {
	return cmd.Name() == "explore" || !cmd.HasParent()
}

// resolveConfig layers preset < config file < flags that were set.
func resolveConfig(cmd *cobra.Command, expression string) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}

	if configFile != "" {
		loaded, err := config.LoadOver(cfg, configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("frame") {
		cfg.Frame = frame
	}
	// a malformed list is left for Validate to report
	if len(cfg.InitialConditions) == 2 {
		if flags.Changed("x0") {
			cfg.InitialConditions[0] = x0
		}
		if flags.Changed("y0") {
			cfg.InitialConditions[1] = y0
		}
	}
	if flags.Changed("length") {
		cfg.IntegrationLength = length
	}
	if flags.Changed("method") {
		cfg.Method = method
	}
	if flags.Changed("dt") {
		cfg.InitialStep = initStep
	}
	if flags.Changed("tol") {
		cfg.Integrator.Tolerance = tolerance
	}
	if flags.Changed("safety") {
		cfg.Integrator.SafetyFactor = safety
	}
	if flags.Changed("min-step") {
		cfg.Integrator.MinStep = minStep
	}
	if flags.Changed("max-step") {
		cfg.Integrator.MaxStep = maxStep
	}
	if flags.Changed("max-iter") {
		cfg.Integrator.MaxIterations = maxIter
	}
	if expression != "" {
		cfg.Expression = expression
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newSolver() *ode.Solver {
	return ode.NewSolver(ode.WithLogger(logger))
}

func runExplore(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, "")
	if err != nil {
		return err
	}
	return viz.Run(cfg, ode.NewSession(newSolver()))
}

func runSolve(cmd *cobra.Command, args []string) error {
	expression := ""
	if len(args) == 1 {
		expression = args[0]
	}
	cfg, err := resolveConfig(cmd, expression)
	if err != nil {
		return err
	}
	settings, err := cfg.Settings()
	if err != nil {
		return err
	}

	sol, err := newSolver().Solve(settings)
	if err != nil {
		logger.Error("solve failed", "err", err)
		return err
	}

	out := cmd.OutOrStdout()
	vars := sol.Frame.Vars()
	tr := sol.Trajectory
	tEnd, yEnd := tr.Last()
	fmt.Fprintf(out, "d%s/d%s = %s\n", vars[1], vars[0], strings.Join(sol.Exprs, ", "))
	fmt.Fprintf(out, "frame:     %s\n", sol.Frame)
	fmt.Fprintf(out, "method:    %s\n", sol.Method)
	fmt.Fprintf(out, "span:      [%g, %g]\n", sol.Span.Start(), sol.Span.End())
	fmt.Fprintf(out, "end:       %s=%g %s=%g\n", vars[0], tEnd, vars[1], yEnd[0])
	fmt.Fprintf(out, "points:    %d\n", tr.Len())
	fmt.Fprintf(out, "steps:     %d accepted, %d rejected, %d evaluations\n", tr.Stats.Accepted, tr.Stats.Rejected, tr.Stats.Evaluations)
	fmt.Fprintf(out, "elapsed:   %v\n", sol.Elapsed)
	if tr.Truncated {
		fmt.Fprintln(out, "truncated: iteration budget exhausted before the end of the span")
	}

	if showPoints {
		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintf(w, "\n%s\t%s\tx\ty\n", vars[0], vars[1])
		for i, t := range tr.Times {
			p := sol.Display[i]
			fmt.Fprintf(w, "%.6g\t%.6g\t%.6g\t%.6g\n", t, tr.States[i][0], p.X, p.Y)
		}
		if err := w.Flush(); err != nil {
			return err
		}
	}

	if graph {
		fmt.Fprintln(out)
		fmt.Fprintln(out, displayGraph(sol.Display, 80, 12, "y against x"))
	}

	if save {
		st := storage.New(dataDir)
		runID, err := st.Save(settings, sol)
		if err != nil {
			return err
		}
		logger.Info("run saved", "id", runID, "dir", st.Dir())
		fmt.Fprintf(out, "run id:    %s\n", runID)
	}
	return nil
}

// displayGraph plots y over the samples; asciigraph spaces them evenly, so
// the horizontal axis follows the sample index rather than x.
func displayGraph(pts []coords.Point, w, h int, caption string) string {
	ys := make([]float64, 0, len(pts))
	for _, p := range pts {
		if !p.IsFinite() {
			break
		}
		ys = append(ys, p.Y)
	}
	if len(ys) == 0 {
		return "(nothing to plot)"
	}
	return asciigraph.Plot(ys,
		asciigraph.Height(h),
		asciigraph.Width(w),
		asciigraph.Caption(caption),
	)
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(runs) == 0 {
		fmt.Fprintln(out, "no runs found")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTIME\tFRAME\tMETHOD\tPOINTS\tEXPRESSION")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\n",
			run.ID,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Frame,
			run.Method,
			run.Points,
			run.Expression,
		)
	}
	return w.Flush()
}

func loadRun(runID string) (export.Data, error) {
	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return export.Data{}, err
	}
	tr, display, err := st.LoadTrajectory(runID)
	if err != nil {
		return export.Data{}, err
	}
	if tr.Len() == 0 {
		return export.Data{}, fmt.Errorf("run %s has no samples", runID)
	}
	return export.NewData(*meta, tr, display), nil
}

func plotRun(cmd *cobra.Command, args []string) error {
	data, err := loadRun(args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "run: %s\n", data.Run.ID)
	fmt.Fprintf(out, "expression: %s (%s)\n", data.Run.Expression, data.Run.Frame)
	fmt.Fprintf(out, "samples: %d\n\n", len(data.Samples))

	state := make([]float64, len(data.Samples))
	for i, s := range data.Samples {
		state[i] = s.State[0]
	}
	f, err := coords.ParseFrame(data.Run.Frame)
	if err != nil {
		return err
	}
	vars := f.Vars()
	fmt.Fprintln(out, asciigraph.Plot(state,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(fmt.Sprintf("%s against %s", vars[1], vars[0])),
	))
	if f == coords.Polar {
		fmt.Fprintln(out)
		fmt.Fprintln(out, displayGraph(data.Points(), width, height, "y against x"))
	}
	return nil
}

func exportCSV(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	tr, display, err := st.LoadTrajectory(args[0])
	if err != nil {
		return err
	}
	if tr.Len() == 0 {
		return fmt.Errorf("no data to export")
	}

	if output == "" {
		return storage.WriteCSV(cmd.OutOrStdout(), tr, display)
	}
	f, err := os.Create(output)
	if err != nil {
		return err
	}
	defer f.Close()
	return storage.WriteCSV(f, tr, display)
}

func exportJSON(cmd *cobra.Command, args []string) error {
	data, err := loadRun(args[0])
	if err != nil {
		return err
	}
	if output == "" {
		return export.WriteJSON(cmd.OutOrStdout(), data)
	}
	return export.ExportJSON(output, data)
}

func exportSVG(cmd *cobra.Command, args []string) error {
	data, err := loadRun(args[0])
	if err != nil {
		return err
	}
	path := outputPath(data.Run.ID, "svg")
	if err := export.ExportSVG(path, data.Points(), export.Bounds{}, width, height); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
	return nil
}

func exportPNG(cmd *cobra.Command, args []string) error {
	data, err := loadRun(args[0])
	if err != nil {
		return err
	}
	opts := export.DefaultPlotOptions()
	opts.Title = fmt.Sprintf("%s (%s, %s)", data.Run.Expression, data.Run.Frame, data.Run.Method)

	path := outputPath(data.Run.ID, "png")
	if err := export.ExportPNG(path, data.Points(), opts); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
	return nil
}

func outputPath(runID, ext string) string {
	if output != "" {
		return output
	}
	return filepath.Clean(runID + "." + ext)
}

func compareMethods(cmd *cobra.Command, args []string) error {
	methods := args[1:]
	if len(methods) == 0 {
		methods = integrators.NewRegistry().Names()
	}
	cfg, err := resolveConfig(cmd, args[0])
	if err != nil {
		return err
	}
	settings, err := cfg.Settings()
	if err != nil {
		return err
	}

	sols, err := newSolver().Compare(context.Background(), settings, methods)
	if err != nil {
		var se *ode.SolveError
		if errors.As(err, &se) {
			logger.Error("compare failed", "stage", se.Stage, "err", se.Err)
		}
		return err
	}

	out := cmd.OutOrStdout()
	vars := settings.Frame.Vars()
	fmt.Fprintf(out, "comparing methods for d%s/d%s = %s on [%g, %g]\n\n", vars[1], vars[0], sols[0].Exprs[0], sols[0].Span.Start(), sols[0].Span.End())

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(w, "method\tfinal_%s\tpoints\taccepted\trejected\tevals\ttime_ms\t\n", vars[1])
	for _, sol := range sols {
		tr := sol.Trajectory
		_, last := tr.Last()
		mark := ""
		if tr.Truncated {
			mark = " (truncated)"
		}
		fmt.Fprintf(w, "%s\t%.8g\t%d\t%d\t%d\t%d\t%.3f\t%s\n",
			sol.Method, last[0], tr.Len(), tr.Stats.Accepted, tr.Stats.Rejected, tr.Stats.Evaluations,
			float64(sol.Elapsed.Microseconds())/1000, mark)
	}
	return w.Flush()
}
