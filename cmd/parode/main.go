package main

import (
	"fmt"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/parode/internal/adjoint"
	"github.com/san-kum/parode/internal/config"
	"github.com/san-kum/parode/internal/control"
	"github.com/san-kum/parode/internal/integrators"
	"github.com/san-kum/parode/internal/metrics"
	"github.com/san-kum/parode/internal/problems"
	"github.com/san-kum/parode/internal/storage"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	v = viper.New()

	method     string
	controller string
	atol       float64
	rtol       float64
	dt0        float64
	dtMin      float64
	dtMax      float64
	maxSteps   int
	grids      []string
	configFile string
	preset     string
	compiled   bool
	noSave     bool
	element    int
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "parode",
		Short:        "batched adaptive ode solver",
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().String("data", ".parode", "data directory")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "log solver progress to stderr")
	v.SetEnvPrefix("parode")
	v.AutomaticEnv()
	_ = v.BindPFlag("data", rootCmd.PersistentFlags().Lookup("data"))
	_ = v.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	solveCmd := &cobra.Command{
		Use:   "solve [problem]",
		Short: "solve a batch of initial value problems",
		Args:  cobra.ExactArgs(1),
		RunE:  solveProblem,
	}
	solveCmd.Flags().StringVar(&method, "method", "dopri5", "step method ("+strings.Join(integrators.Names(), ", ")+")")
	solveCmd.Flags().StringVar(&controller, "controller", "integral", "step size controller (integral, pid)")
	solveCmd.Flags().Float64Var(&atol, "atol", config.DefaultAtol, "absolute tolerance")
	solveCmd.Flags().Float64Var(&rtol, "rtol", config.DefaultRtol, "relative tolerance")
	solveCmd.Flags().Float64Var(&dt0, "dt0", 0, "initial step for every element (0 estimates it)")
	solveCmd.Flags().Float64Var(&dtMin, "dt-min", 0, "minimum step size")
	solveCmd.Flags().Float64Var(&dtMax, "dt-max", 0, "maximum step size (0 is unbounded)")
	solveCmd.Flags().IntVar(&maxSteps, "max-steps", adjoint.DefaultMaxSteps, "maximum loop iterations")
	solveCmd.Flags().StringArrayVar(&grids, "t-eval", nil, "comma separated evaluation grid, once per batch element")
	solveCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	solveCmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	solveCmd.Flags().BoolVar(&compiled, "compile", false, "run the shape specialized loop")
	solveCmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the run")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot run results",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().IntVar(&element, "element", 0, "batch element to plot")

	compareCmd := &cobra.Command{
		Use:   "compare [problem] [method1] [method2] ...",
		Short: "compare step methods, eager and compiled, on the same problem",
		Args:  cobra.MinimumNArgs(1),
		RunE:  compareMethods,
	}
	compareCmd.Flags().Float64Var(&atol, "atol", config.DefaultAtol, "absolute tolerance")
	compareCmd.Flags().Float64Var(&rtol, "rtol", config.DefaultRtol, "relative tolerance")
	compareCmd.Flags().Float64Var(&dt0, "dt0", 0.01, "initial step for methods without an error estimate")
	compareCmd.Flags().StringArrayVar(&grids, "t-eval", nil, "comma separated evaluation grid, once per batch element")

	presetsCmd := &cobra.Command{
		Use:   "presets [problem]",
		Short: "list available presets for a problem",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			names := config.PresetNames(args[0])
			if len(names) == 0 {
				fmt.Printf("no presets for problem: %s\n", args[0])
				return nil
			}
			fmt.Printf("presets for %s:\n", args[0])
			for _, name := range names {
				p := config.GetPreset(args[0], name)
				fmt.Printf("  %-12s %s, %s atol=%g rtol=%g, %d elements\n",
					name, p.Method, p.Controller.Kind, p.Controller.Atol, p.Controller.Rtol, len(p.TEval))
			}
			return nil
		},
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return storage.New(v.GetString("data")).ExportJSON(os.Stdout, args[0])
		},
	}

	rootCmd.AddCommand(solveCmd, listCmd, plotCmd, compareCmd, presetsCmd, exportJSONCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger() log.Logger {
	if !v.GetBool("verbose") {
		return log.NewNopLogger()
	}
	logger := log.NewLogfmtLogger(log.NewSyncWriter(os.Stderr))
	logger = level.NewFilter(logger, level.AllowDebug())
	return log.With(logger, "ts", log.DefaultTimestampUTC, "caller", log.DefaultCaller)
}

func parseGrids(raw []string) ([][]float64, error) {
	out := make([][]float64, 0, len(raw))
	for _, g := range raw {
		var grid []float64
		for _, field := range strings.Split(g, ",") {
			t, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
			if err != nil {
				return nil, fmt.Errorf("bad evaluation grid %q: %w", g, err)
			}
			grid = append(grid, t)
		}
		out = append(out, grid)
	}
	return out, nil
}

// buildConfig layers defaults, then preset, then config file, then flags.
func buildConfig(cmd *cobra.Command, problem string) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		cfg = config.GetPreset(problem, preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.PresetNames(problem))
		}
	}
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}
	cfg.Problem = problem

	flags := cmd.Flags()
	if flags.Changed("method") {
		cfg.Method = method
	}
	if flags.Changed("controller") {
		cfg.Controller.Kind = controller
		if controller == "pid" && cfg.Controller.PCoeff == 0 {
			cfg.Controller.PCoeff, cfg.Controller.ICoeff = 0.2, 0.4
		}
	}
	if flags.Changed("atol") {
		cfg.Controller.Atol = atol
	}
	if flags.Changed("rtol") {
		cfg.Controller.Rtol = rtol
	}
	if flags.Changed("dt0") {
		cfg.Dt0 = dt0
	}
	if flags.Changed("dt-min") {
		cfg.Controller.DtMin = dtMin
	}
	if flags.Changed("dt-max") {
		cfg.Controller.DtMax = dtMax
	}
	if flags.Changed("max-steps") {
		cfg.MaxSteps = maxSteps
	}
	if flags.Changed("t-eval") {
		tEval, err := parseGrids(grids)
		if err != nil {
			return nil, err
		}
		cfg.TEval = tEval
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func solveProblem(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args[0])
	if err != nil {
		return err
	}

	_, f, p, err := problems.Get(cfg.Problem, cfg.TEval)
	if err != nil {
		return err
	}
	solver, steps, err := cfg.BuildSolver(f, adjoint.WithLogger(newLogger()))
	if err != nil {
		return err
	}

	fmt.Printf("solving %s with %s (%d elements)...\n", cfg.Problem, cfg.Method, p.BatchSize())
	start := time.Now()

	var sol *adjoint.Solution
	if compiled {
		program, err := solver.Compile(p.BatchSize(), p.Features())
		if err != nil {
			return err
		}
		sol, err = program.Solve(p, nil, steps)
		if err != nil {
			return err
		}
	} else {
		sol, err = solver.Solve(p, nil, steps)
		if err != nil {
			return err
		}
	}
	elapsed := time.Since(start)

	fmt.Printf("completed in %v\n", elapsed)

	model, err := problems.Lookup(cfg.Problem)
	if err != nil {
		return err
	}
	scores := metrics.Evaluate(metrics.Default(model), sol)
	if !noSave {
		st := storage.New(v.GetString("data"))
		if err := st.Init(); err != nil {
			return err
		}
		runID, err := st.Save(cfg, sol, scores)
		if err != nil {
			return err
		}
		fmt.Printf("run id: %s\n", runID)
	}
	fmt.Println()

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ELEM\tT_END\tSTEPS\tACCEPTED\tREJECTED\tF_EVALS\tFINAL")
	for i := range sol.Ts {
		st := sol.Stats[i]
		fmt.Fprintf(w, "%d\t%g\t%d\t%d\t%d\t%d\t%s\n",
			i, sol.Ts[i][len(sol.Ts[i])-1], st.Steps, st.Accepted, st.Rejected, st.FEvals, formatState(sol.Final(i)))
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Println("\nmetrics:")
	for _, name := range sortedKeys(scores) {
		fmt.Printf("  %s: %.6g\n", name, scores[name])
	}

	if sol.Eval != nil {
		fmt.Println("\nsamples:")
		for i, grid := range sol.Eval.Ts {
			for k, t := range grid {
				fmt.Printf("  [%d] t=%-10g %s\n", i, t, formatState(sol.Eval.Ys[i][k]))
			}
		}
	}
	return nil
}

func formatState(y []float64) string {
	parts := make([]string, len(y))
	for i, val := range y {
		parts[i] = strconv.FormatFloat(val, 'f', 6, 64)
	}
	return "[" + strings.Join(parts, " ") + "]"
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(v.GetString("data"))
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tPROBLEM\tTIME\tMETHOD\tCTRL\tATOL\tRTOL\tBATCH\tSTEPS")

	for _, run := range runs {
		steps := 0
		for _, s := range run.Stats {
			steps += s.Steps
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%g\t%g\t%d\t%d\n",
			run.ID,
			run.Problem,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Method,
			run.Controller,
			run.Atol,
			run.Rtol,
			run.BatchSize,
			steps,
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(v.GetString("data"))
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	ts, ys, err := st.LoadSolution(runID)
	if err != nil {
		return err
	}
	if element < 0 || element >= len(ys) || len(ys[element]) == 0 {
		return fmt.Errorf("no data to plot for element %d", element)
	}

	states := ys[element]
	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("problem: %s, method: %s\n", meta.Problem, meta.Method)
	fmt.Printf("element %d: t in [%g, %g], %d accepted points\n\n", element, ts[element][0], ts[element][len(ts[element])-1], len(states))

	for varIdx := range states[0] {
		data := make([]float64, len(states))
		for i := range states {
			data[i] = states[i][varIdx]
		}

		graph := asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(fmt.Sprintf("y%d per accepted step", varIdx)),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	return nil
}

func compareMethods(cmd *cobra.Command, args []string) error {
	name := args[0]
	methods := args[1:]
	if len(methods) == 0 {
		methods = integrators.Names()
	}

	tEval := [][]float64{{0, config.DefaultTEnd}}
	if len(grids) > 0 {
		var err error
		if tEval, err = parseGrids(grids); err != nil {
			return err
		}
	}
	_, f, p, err := problems.Get(name, tEval)
	if err != nil {
		return err
	}
	model, _ := problems.Lookup(name)
	logger := newLogger()

	fmt.Println(titleStyle.Render(fmt.Sprintf("comparing methods for %s (atol=%g, rtol=%g, %d elements)", name, atol, rtol, p.BatchSize())))
	fmt.Println()

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "METHOD\tSTEPS\tREJECTED\tF_EVALS\tEAGER_VS_COMPILED\tGLOBAL_ERROR\tENERGY_DRIFT\tTIME_MS")
	for _, methodName := range methods {
		m, err := integrators.ByName(methodName, f)
		if err != nil {
			fmt.Fprintf(w, "%s\t%s\n", methodName, errStyle.Render(err.Error()))
			continue
		}
		var steps []float64
		if !m.Adaptive() {
			steps = make([]float64, p.BatchSize())
			for i := range steps {
				steps[i] = dt0
			}
		}

		solver := adjoint.New(m, newController(), adjoint.WithLogger(logger))
		start := time.Now()
		eager, err := solver.Solve(p, nil, steps)
		elapsed := time.Since(start)
		if err != nil {
			fmt.Fprintf(w, "%s\t%s\n", methodName, errStyle.Render(err.Error()))
			continue
		}
		program, err := solver.Compile(p.BatchSize(), p.Features())
		if err != nil {
			return err
		}
		again, err := program.Solve(p, nil, steps)
		if err != nil {
			return err
		}

		total := eager.Total()
		scores := metrics.Evaluate(metrics.Default(model), eager)
		fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%.2e\t%s\t%s\t%.2f\n",
			methodName, total.Steps, total.Rejected, total.FEvals,
			maxDiff(eager, again), score(scores, "global_error"), score(scores, "energy_drift"),
			float64(elapsed.Microseconds())/1000)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Println()
	fmt.Println(dimStyle.Render("global error is the largest deviation from the exact solution over accepted points"))
	return nil
}

func newController() *control.Controller {
	return control.NewIntegral(atol, rtol)
}

func maxDiff(a, b *adjoint.Solution) float64 {
	diff := 0.0
	for i := range a.Ys {
		if len(a.Ys[i]) != len(b.Ys[i]) {
			return math.Inf(1)
		}
		for k := range a.Ys[i] {
			for j := range a.Ys[i][k] {
				diff = math.Max(diff, math.Abs(a.Ys[i][k][j]-b.Ys[i][k][j]))
			}
		}
	}
	return diff
}

func score(scores map[string]float64, name string) string {
	val, ok := scores[name]
	if !ok {
		return "-"
	}
	return fmt.Sprintf("%.2e", val)
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
