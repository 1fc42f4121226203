package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/san-kum/relic/internal/config"
	"github.com/san-kum/relic/internal/ncdm"
	"github.com/san-kum/relic/internal/store"
	"github.com/san-kum/relic/internal/telemetry"
	"github.com/san-kum/relic/internal/viz"
)

var (
	dataDir     string
	configFile  string
	preset      string
	logLevel    string
	metricsFile string
	theme       string

	zMin       float64
	zMax       float64
	points     int
	quantities []string
	save       bool
	asJSON     bool

	plotWidth  int
	plotHeight int
	svgFile    string

	aStart float64
	aToday float64
	tolW   float64
)

const sparkPoints = 48

// main registers the relic commands and executes the root command. It exits
// with status 1 if the command returns an error.
func main() {
	rootCmd := &cobra.Command{
		Use:           "relic",
		Short:         "phase-space engine for non-cold relic species",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(viz.ThemeNames(), theme) {
				return fmt.Errorf("unknown theme %q (available: %s)", theme, strings.Join(viz.ThemeNames(), ", "))
			}
			viz.SetTheme(theme)
			return setupLogger(logLevel)
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".relic", "data directory")
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "yaml input file")
	rootCmd.PersistentFlags().StringVarP(&preset, "preset", "p", "", "preset as group/name")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "debug, info, warn or error")
	rootCmd.PersistentFlags().StringVar(&metricsFile, "metrics-file", "", "write prometheus textfile after setup")
	rootCmd.PersistentFlags().StringVar(&theme, "theme", "cyberpunk", "colour theme: "+strings.Join(viz.ThemeNames(), ", "))

	summaryCmd := &cobra.Command{
		Use:   "summary",
		Short: "initialize species and print their parameters",
		Args:  cobra.NoArgs,
		RunE:  runSummary,
	}

	tableCmd := &cobra.Command{
		Use:   "table",
		Short: "background moments on a log redshift grid",
		Args:  cobra.NoArgs,
		RunE:  runTable,
	}
	addGridFlags(tableCmd)
	tableCmd.Flags().StringSliceVarP(&quantities, "quantities", "q", []string{"rho", "p"}, "n, rho, p, drho_dm, pseudo_p")
	tableCmd.Flags().BoolVar(&save, "save", false, "save the table under the data directory")
	tableCmd.Flags().BoolVar(&asJSON, "json", false, "write JSON instead of CSV")

	plotCmd := &cobra.Command{
		Use:   "plot",
		Short: "plot the equation of state of every species",
		Args:  cobra.NoArgs,
		RunE:  runPlot,
	}
	addGridFlags(plotCmd)
	plotCmd.Flags().IntVar(&plotWidth, "width", 80, "plot width")
	plotCmd.Flags().IntVar(&plotHeight, "height", 12, "plot height")
	plotCmd.Flags().StringVar(&svgFile, "svg", "", "also write an SVG plot to this file")

	onsetCmd := &cobra.Command{
		Use:   "onset",
		Short: "find the earliest scale factor where every species is relativistic",
		Args:  cobra.NoArgs,
		RunE:  runOnset,
	}
	onsetCmd.Flags().Float64Var(&aStart, "a", 0, "starting scale factor (default from config)")
	onsetCmd.Flags().Float64Var(&aToday, "a-today", 1, "scale factor today")
	onsetCmd.Flags().Float64Var(&tolW, "tol", 0, "tolerance on |w - 1/3| (default from config)")

	presetsCmd := &cobra.Command{
		Use:   "presets [group]",
		Short: "list preset groups or the presets in a group",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				for _, g := range config.ListGroups() {
					fmt.Printf("%s: %s\n", viz.Title.Render(g), strings.Join(config.ListPresets(g), ", "))
				}
				return nil
			}
			presets := config.ListPresets(args[0])
			if len(presets) == 0 {
				fmt.Printf("no presets in group: %s\n", args[0])
				return nil
			}
			fmt.Printf("presets in %s:\n", args[0])
			for _, p := range presets {
				fmt.Printf("  %s/%s\n", args[0], p)
			}
			return nil
		},
	}

	runsCmd := &cobra.Command{
		Use:   "runs",
		Short: "list saved tables",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "print a saved run and its table as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	rootCmd.AddCommand(summaryCmd, tableCmd, plotCmd, onsetCmd, presetsCmd, runsCmd, exportCmd)

	if err := rootCmd.Execute(); err != nil {
		slog.Error("relic failed", "err", err)
		os.Exit(1)
	}
}

func addGridFlags(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&zMin, "zmin", 0, "lowest redshift")
	cmd.Flags().Float64Var(&zMax, "zmax", 1e6, "highest redshift")
	cmd.Flags().IntVarP(&points, "points", "n", 100, "number of redshifts")
}

func setupLogger(level string) error {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})))
	return nil
}

// loadConfig resolves --preset and --config; the config file wins.
func loadConfig() (*config.Config, string, error) {
	if configFile != "" {
		cfg, err := config.Load(configFile)
		if err != nil {
			return nil, "", fmt.Errorf("failed to load config: %w", err)
		}
		return cfg, configFile, nil
	}
	if preset != "" {
		group, name, ok := strings.Cut(preset, "/")
		if !ok {
			return nil, "", fmt.Errorf("preset must be group/name, got %q", preset)
		}
		cfg := config.GetPreset(group, name)
		if cfg == nil {
			return nil, "", fmt.Errorf("unknown preset: %s (available in %s: %v)", preset, group, config.ListPresets(group))
		}
		if err := cfg.ApplyEnv(); err != nil {
			return nil, "", err
		}
		return cfg, preset, nil
	}
	return nil, "", fmt.Errorf("need --config or --preset")
}

func buildRegistry() (*ncdm.Registry, *config.Config, string, error) {
	cfg, source, err := loadConfig()
	if err != nil {
		return nil, nil, "", err
	}

	metrics := telemetry.New()
	start := time.Now()
	r, ok, err := cfg.Build(ncdm.WithLogger(slog.Default()), ncdm.WithObserver(metrics))
	if err != nil {
		return nil, nil, "", err
	}
	elapsed := time.Since(start)
	metrics.Record(r, elapsed)
	if metricsFile != "" {
		if err := metrics.WriteTextfile(metricsFile); err != nil {
			return nil, nil, "", fmt.Errorf("write metrics: %w", err)
		}
	}
	if !ok {
		return nil, nil, "", fmt.Errorf("%s configures no ncdm species", source)
	}

	for _, s := range r.Summaries() {
		slog.Info("species",
			"id", s.ID,
			"type", s.Type.String(),
			"mass_ev", s.MassEV,
			"omega0", s.Omega0,
			"delta_neff", s.DeltaNeff,
		)
	}
	slog.Debug("registry ready", "source", source, "elapsed", elapsed)
	return r, cfg, source, nil
}

func runSummary(cmd *cobra.Command, args []string) error {
	r, _, source, err := buildRegistry()
	if err != nil {
		return err
	}

	fmt.Println(viz.Title.Render(source))
	fmt.Println(viz.SpeciesTable(r.Summaries()))
	fmt.Println()
	fmt.Println(viz.Totals(r))

	zs, err := ncdm.RedshiftGrid(0, 1e6, sparkPoints)
	if err != nil {
		return err
	}
	rows, err := r.Table(cmd.Context(), zs, ncdm.Energy|ncdm.Pressure)
	if err != nil {
		return err
	}
	fmt.Println()
	fmt.Println(viz.Subtle.Render("equation of state, z = 0 .. 1e6"))
	fmt.Println(viz.EquationOfStateSparklines(rows, sparkPoints))

	if r.DecayBins() == 0 {
		return nil
	}
	fmt.Println()
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SPECIES\tORDINAL\tOFFSET\tBINS\tGAMMA [1/Mpc]\tDR INDEX\tSEEDED")
	for _, id := range r.DecaySpecies() {
		ch, _ := r.Channel(id)
		fmt.Fprintf(w, "%d\t%d\t%d\t%d\t%.4e\t%d\t%t\n",
			id, ch.Ordinal, ch.Offset, len(ch.DQ), ch.Gamma, ch.Source, ch.InitialPopulation)
	}
	return w.Flush()
}

var quantityNames = map[string]ncdm.Quantity{
	"n":        ncdm.Number,
	"rho":      ncdm.Energy,
	"p":        ncdm.Pressure,
	"drho_dm":  ncdm.EnergyMassDerivative,
	"pseudo_p": ncdm.PseudoPressure,
}

func parseQuantities(names []string) (ncdm.Quantity, error) {
	var want ncdm.Quantity
	for _, name := range names {
		q, ok := quantityNames[strings.TrimSpace(name)]
		if !ok {
			return 0, fmt.Errorf("unknown quantity %q", name)
		}
		want |= q
	}
	if want == 0 {
		return 0, fmt.Errorf("no quantities selected")
	}
	return want, nil
}

func computeTable(ctx context.Context, r *ncdm.Registry, want ncdm.Quantity) ([]ncdm.Row, error) {
	zs, err := ncdm.RedshiftGrid(zMin, zMax, points)
	if err != nil {
		return nil, err
	}
	return r.Table(ctx, zs, want)
}

func runTable(cmd *cobra.Command, args []string) error {
	want, err := parseQuantities(quantities)
	if err != nil {
		return err
	}
	r, _, source, err := buildRegistry()
	if err != nil {
		return err
	}
	rows, err := computeTable(cmd.Context(), r, want)
	if err != nil {
		return err
	}

	meta := store.Describe(source, r, rows)
	if save {
		st := store.New(dataDir)
		if err := st.Init(); err != nil {
			return err
		}
		runID, err := st.Save(meta, rows)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "saved run %s\n", runID)
		return nil
	}
	if asJSON {
		return store.ExportJSON(os.Stdout, meta, rows)
	}
	return store.WriteCSV(os.Stdout, rows)
}

func runPlot(cmd *cobra.Command, args []string) error {
	r, _, source, err := buildRegistry()
	if err != nil {
		return err
	}
	rows, err := computeTable(cmd.Context(), r, ncdm.Energy|ncdm.Pressure)
	if err != nil {
		return err
	}
	graph, err := viz.EquationOfState(rows, plotWidth, plotHeight)
	if err != nil {
		return err
	}
	fmt.Println(viz.Title.Render(source))
	fmt.Println(graph)

	if svgFile == "" {
		return nil
	}
	svg, err := viz.EquationOfStateSVG(rows, 800, 400)
	if err != nil {
		return err
	}
	return os.WriteFile(svgFile, []byte(svg), 0644)
}

func runOnset(cmd *cobra.Command, args []string) error {
	r, cfg, _, err := buildRegistry()
	if err != nil {
		return err
	}
	if !cmd.Flags().Changed("a") {
		aStart = cfg.Precision.AStart
	}
	if !cmd.Flags().Changed("tol") {
		tolW = cfg.Precision.TolInitialW
	}

	a, err := r.InitialScaleFactor(aStart, aToday, tolW)
	if err != nil {
		return err
	}
	fmt.Println(viz.KeyValue(
		[2]string{"a_ini", fmt.Sprintf("%.3e", a)},
		[2]string{"z_ini", fmt.Sprintf("%.3e", aToday/a-1)},
		[2]string{"tol", fmt.Sprintf("%g", tolW)},
	))
	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := store.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSOURCE\tTIME\tSPECIES\tPOINTS\tOMEGA0\tNEFF")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%.4e\t%.4f\n",
			run.ID,
			run.Source,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			len(run.Species),
			run.Points,
			run.Omega0,
			run.Neff,
		)
	}
	return w.Flush()
}

func exportRun(cmd *cobra.Command, args []string) error {
	return store.New(dataDir).Export(os.Stdout, args[0])
}
