package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/san-kum/stellarsim/internal/api"
	"github.com/san-kum/stellarsim/internal/catalog"
	"github.com/san-kum/stellarsim/internal/config"
	"github.com/san-kum/stellarsim/internal/engine"
	"github.com/san-kum/stellarsim/internal/metrics"
	"github.com/san-kum/stellarsim/internal/phasetable"
	"github.com/san-kum/stellarsim/internal/store"
	"github.com/san-kum/stellarsim/internal/viz"
)

var (
	dataDir     string
	configFile  string
	preset      string
	storeKind   string
	redisAddr   string
	listenAddr  string
	outJSON     string
	outCSV      string
	workers     int
	maxSteps    int
	maxAge      float64
	mass        float64
	metallicity float64
	seedAge     float64
	starID      string
	verbose     bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "stellarsim",
		Short: "stellar evolution simulation lab",
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".stellarsim", "data directory")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().StringVar(&preset, "preset", "", "use preset configuration")
	rootCmd.PersistentFlags().StringVar(&storeKind, "store", "", "trajectory store: memory, sqlite or redis (default from config)")
	rootCmd.PersistentFlags().StringVar(&redisAddr, "redis", "", "redis address (overrides config)")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "log progress to stderr")

	runCmd := &cobra.Command{
		Use:   "run [catalog.csv]",
		Short: "simulate a star catalog",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runBatch,
	}
	runCmd.Flags().Float64Var(&mass, "mass", 0, "initial mass in solar masses (single-star mode)")
	runCmd.Flags().Float64Var(&metallicity, "metallicity", catalog.SolarMetallicity, "metal mass fraction")
	runCmd.Flags().Float64Var(&seedAge, "seed-age", 0, "recorded age offset in Myr")
	runCmd.Flags().StringVar(&starID, "id", "star-1", "star id (single-star mode)")
	runCmd.Flags().IntVar(&workers, "workers", 0, "parallel runs (0 = config default)")
	runCmd.Flags().IntVar(&maxSteps, "max-steps", 0, "step budget (0 = config default)")
	runCmd.Flags().Float64Var(&maxAge, "max-age", 0, "age budget in Myr (0 = config default)")
	runCmd.Flags().StringVar(&outJSON, "out", "", "write batch document JSON to file")
	runCmd.Flags().StringVar(&outCSV, "csv", "", "write feature table CSV to file")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list archived trajectories",
		RunE:  listTrajectories,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [star_id]",
		Short: "plot an archived track",
		Args:  cobra.ExactArgs(1),
		RunE:  plotTrack,
	}

	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "export the archive as a batch document",
		RunE:  exportArchive,
	}
	exportCmd.Flags().StringVar(&outJSON, "out", "", "write JSON to file instead of stdout")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "serve archived trajectories over HTTP",
		RunE:  serveArchive,
	}
	serveCmd.Flags().StringVar(&listenAddr, "listen", "", "listen address (overrides config)")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range config.ListPresets() {
				fmt.Println(name)
			}
			return nil
		},
	}

	rootCmd.AddCommand(runCmd, listCmd, plotCmd, exportCmd, serveCmd, presetsCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		p := config.GetPreset(preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
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

	// CLI flags override both preset and file.
	if cmd.Flags().Changed("workers") {
		cfg.Workers = workers
	}
	if cmd.Flags().Changed("max-steps") {
		cfg.Budget.MaxSteps = maxSteps
	}
	if cmd.Flags().Changed("max-age") {
		cfg.Budget.MaxAge = maxAge
	}
	if storeKind != "" {
		cfg.Store = storeKind
	}
	if redisAddr != "" {
		cfg.RedisAddr = redisAddr
	}
	if dataDir != "" {
		cfg.DataDir = dataDir
	}
	if listenAddr != "" {
		cfg.ListenAddr = listenAddr
	}

	return cfg, cfg.Validate()
}

func openStore(cfg *config.Config) (store.Store, func(), error) {
	switch cfg.Store {
	case "memory":
		return store.NewMemory(), func() {}, nil
	case "sqlite":
		if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
			return nil, nil, err
		}
		db, err := store.OpenSqlite(filepath.Join(cfg.DataDir, "trajectories.db"))
		if err != nil {
			return nil, nil, err
		}
		return db, func() { db.Close() }, nil
	case "redis":
		r := store.NewRedis(cfg.RedisAddr)
		return r, func() { r.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown store: %s (memory, sqlite, redis)", cfg.Store)
	}
}

func logger() *slog.Logger {
	if !verbose {
		return slog.New(slog.DiscardHandler)
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func runBatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	var stars []catalog.Star
	switch {
	case len(args) == 1:
		stars, err = catalog.LoadCSV(args[0])
		if err != nil {
			return err
		}
	case cmd.Flags().Changed("mass"):
		stars = []catalog.Star{{ID: starID, Mass: mass, Metallicity: metallicity, SeedAge: seedAge}}
	default:
		return fmt.Errorf("provide a catalog file or --mass")
	}

	table, err := phasetable.New(cfg)
	if err != nil {
		return err
	}

	st, closeStore, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	m := metrics.New(prometheus.NewRegistry())
	batch := engine.NewBatch(cfg, table, st,
		engine.WithLogger(logger()),
		engine.WithMetrics(m),
	)

	fmt.Printf("simulating %d stars...\n", len(stars))
	start := time.Now()
	report := batch.Run(context.Background(), stars)
	elapsed := time.Since(start)

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("batch id: %s\n\n", report.BatchID)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STAR\tFINAL PHASE\tREASON\tSTEPS")
	for _, o := range report.Outcomes {
		if o.Err != nil {
			fmt.Fprintf(w, "%s\tfailed\t%v\t-\n", o.StarID, o.Err)
			continue
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\n", o.StarID, o.FinalPhase, o.Reason, o.Steps)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if outJSON != "" || outCSV != "" {
		trajs, err := st.All(context.Background())
		if err != nil {
			return err
		}
		if outJSON != "" {
			if err := store.ExportJSON(outJSON, trajs); err != nil {
				return err
			}
			fmt.Printf("\nwrote %s\n", outJSON)
		}
		if outCSV != "" {
			if err := store.ExportFeaturesCSV(outCSV, trajs); err != nil {
				return err
			}
			fmt.Printf("wrote %s\n", outCSV)
		}
	}

	if failed := report.Failed(); len(failed) > 0 {
		return fmt.Errorf("%d of %d stars failed", len(failed), len(stars))
	}
	return nil
}

func listTrajectories(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	st, closeStore, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	trajs, err := st.All(context.Background())
	if err != nil {
		return err
	}
	if len(trajs) == 0 {
		fmt.Println("no trajectories found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STAR\tMASS\tFINAL PHASE\tREASON\tSTEPS\tFINAL AGE")
	for _, t := range trajs {
		fmt.Fprintf(w, "%s\t%.3f\t%s\t%s\t%d\t%.1f Myr\n",
			t.StarID, t.InitialMass, t.FinalPhase(), t.TerminationReason,
			t.Len()-1, t.Final().Age)
	}
	return w.Flush()
}

func plotTrack(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	st, closeStore, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	t, err := st.Get(context.Background(), args[0])
	if err != nil {
		return err
	}

	fmt.Println(viz.LuminosityTrack(t))
	fmt.Println()
	fmt.Println(viz.TemperatureTrack(t))
	fmt.Println()
	fmt.Print(viz.PhaseTimeline(t))
	return nil
}

func exportArchive(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	st, closeStore, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	trajs, err := st.All(context.Background())
	if err != nil {
		return err
	}

	if outJSON != "" {
		if err := store.ExportJSON(outJSON, trajs); err != nil {
			return err
		}
		fmt.Printf("wrote %s (%d stars)\n", outJSON, len(trajs))
		return nil
	}
	return store.WriteJSON(os.Stdout, trajs)
}

func serveArchive(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	st, closeStore, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	reg := prometheus.NewRegistry()
	metrics.New(reg)

	srv := api.New(st,
		api.WithLogger(logger()),
		api.WithRegistry(reg),
	)
	return srv.ListenAndServe(cfg.ListenAddr)
}
