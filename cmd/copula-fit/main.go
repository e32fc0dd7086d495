// Command copula-fit estimates a copula model from a data file and writes
// a report: model summary, column profiles, tail concentration curve, and
// optional simulated draws.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"time"

	"copulakit/internal/config"
	"copulakit/internal/copula"
	"copulakit/internal/dataset"
	"copulakit/internal/exporter"
	"copulakit/internal/infrastructure"
)

func main() {
	input := flag.String("input", "", "input data file (.csv or .xlsx)")
	sheet := flag.String("sheet", "", "workbook sheet to read (xlsx input; default: first numeric sheet)")
	profilePath := flag.String("profile", "", "YAML fit profile; when set it replaces the model and fit flags")
	family := flag.String("family", "gaussian", "copula family: clayton, frank, gaussian, or independence")
	method := flag.String("method", "mpl", "estimation method: mpl, itau, or irho")
	ties := flag.String("ties", "average", "rank ties policy: average, min, max, dense, or ordinal")
	estVar := flag.Bool("estvar", false, "estimate parameter standard errors")
	compare := flag.Bool("compare", false, "fit every bundled family and rank them by AIC")
	simulate := flag.Int("simulate", 0, "draw this many observations from the fitted model")
	seed := flag.Int64("seed", -1, "simulation seed; negative leaves the draw unseeded")
	out := flag.String("out", "", "report output directory (default from config)")
	format := flag.String("format", "", "report format: csv, xlsx, both, or none (default from config)")
	timeout := flag.Duration("timeout", 10*time.Minute, "overall estimation timeout")
	verbose := flag.Int("verbose", 1, "fit verbosity: 0 silent, 1 progress, 2 optimizer trace")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Error("Failed to initialize logger", "error", err)
		os.Exit(1)
	}

	runID := infrastructure.NewRunID()
	ctx, cancel := context.WithTimeout(infrastructure.WithRunID(context.Background(), runID), *timeout)
	defer cancel()

	if *input == "" {
		logger.Error("No input file given", "hint", "pass -input data.csv or -input data.xlsx")
		os.Exit(1)
	}

	table, err := loadTable(*input, *sheet)
	if err != nil {
		logger.Error("Failed to load input data", "path", *input, "error", err)
		os.Exit(1)
	}
	logger.InfoContext(ctx, "Loaded observation table",
		"path", *input,
		"rows", table.Rows(),
		"columns", table.Cols())

	profiles, err := dataset.Profile(table)
	if err != nil {
		logger.Error("Failed to profile input columns", "error", err)
		os.Exit(1)
	}

	prof, err := resolveProfile(*profilePath, table.Cols(), flagProfile{
		Family:   *family,
		Method:   *method,
		Ties:     *ties,
		EstVar:   *estVar,
		Compare:  *compare,
		Simulate: *simulate,
		Seed:     *seed,
		Verbose:  *verbose,
		Export:   cfg.Report.Format,
	})
	if err != nil {
		logger.Error("Invalid fit settings", "error", err)
		os.Exit(1)
	}

	fitCfg := fitConfigFrom(prof)

	var model *copula.Copula
	if prof.Compare {
		model, err = compareFamilies(ctx, table, fitCfg, logger)
	} else {
		model, err = fitSingle(ctx, prof, table, fitCfg, logger)
	}
	if err != nil {
		logger.Error("Estimation failed", "error", err)
		os.Exit(1)
	}

	fmt.Println()
	fmt.Println(model.Summary().String())

	report := exporter.NewReport(runID, model, profiles, cfg.Report.ConcentrationPoints)
	printConcentration(report)

	if prof.Simulate > 0 {
		draws, err := model.Random(prof.Simulate, seedSource(prof.Seed))
		if err != nil {
			logger.Error("Simulation failed", "error", err)
			os.Exit(1)
		}
		report.Samples = draws
		logger.InfoContext(ctx, "Simulated observations", "n", prof.Simulate, "seed", prof.Seed)
	}

	outputDir := cfg.Report.OutputDir
	if *out != "" {
		outputDir = *out
	}
	exportFormat := prof.Export
	if *format != "" {
		exportFormat = *format
	}

	if err := exportReport(outputDir, exportFormat, report, logger); err != nil {
		logger.Error("Failed to write report", "error", err)
		os.Exit(1)
	}
}

// flagProfile carries the flag values merged into a FitProfile when no
// profile file is given.
type flagProfile struct {
	Family   string
	Method   string
	Ties     string
	EstVar   bool
	Compare  bool
	Simulate int
	Seed     int64
	Verbose  int
	Export   string
}

// resolveProfile builds the effective fit profile. A profile file wins
// wholesale over the flags; either way the result must agree with the
// data's width.
func resolveProfile(path string, dim int, flags flagProfile) (*config.FitProfile, error) {
	if path != "" {
		prof, err := config.LoadProfile(path)
		if err != nil {
			return nil, err
		}
		if prof.Dim != dim {
			return nil, fmt.Errorf("profile models %d variables but the data has %d columns", prof.Dim, dim)
		}
		return prof, nil
	}

	prof := config.DefaultProfile()
	prof.Family = flags.Family
	prof.Dim = dim
	prof.Method = flags.Method
	prof.Ties = flags.Ties
	prof.EstVar = flags.EstVar
	prof.Compare = flags.Compare
	prof.Simulate = flags.Simulate
	prof.Seed = flags.Seed
	prof.Verbose = flags.Verbose
	prof.Export = flags.Export
	if err := prof.Validate(); err != nil {
		return nil, err
	}
	return prof, nil
}

// fitConfigFrom translates a profile into the copula package's fit
// configuration. Zero optimizer values keep the package defaults.
func fitConfigFrom(prof *config.FitProfile) copula.FitConfig {
	cfg := copula.DefaultFitConfig()
	cfg.Method = copula.Method(prof.Method)
	cfg.Ties = copula.Ties(prof.Ties)
	cfg.EstVar = prof.EstVar
	cfg.Verbose = prof.Verbose
	cfg.X0 = prof.X0

	if prof.Optimizer.MaxIterations > 0 {
		cfg.Optim.MaxIterations = prof.Optimizer.MaxIterations
	}
	if prof.Optimizer.MaxFuncEvals > 0 {
		cfg.Optim.MaxFuncEvals = prof.Optimizer.MaxFuncEvals
	}
	if prof.Optimizer.Tolerance > 0 {
		cfg.Optim.Tolerance = prof.Optimizer.Tolerance
	}
	if prof.Optimizer.MultiStart > 0 {
		cfg.Optim.MultiStart = prof.Optimizer.MultiStart
	}
	return cfg
}

// loadTable dispatches on the input file extension.
func loadTable(path, sheet string) (*dataset.Table, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return dataset.LoadCSV(path)
	case ".xlsx":
		return dataset.LoadXLSX(path, sheet)
	default:
		return nil, fmt.Errorf("unsupported input format %q (want .csv or .xlsx)", filepath.Ext(path))
	}
}

func fitSingle(ctx context.Context, prof *config.FitProfile, table *dataset.Table, fitCfg copula.FitConfig, logger *slog.Logger) (*copula.Copula, error) {
	fam, err := copula.NewFamily(prof.Family, prof.Dim)
	if err != nil {
		return nil, err
	}
	model := copula.New(fam, copula.WithLogger(logger))
	if err := model.Fit(ctx, table.Data, fitCfg); err != nil {
		return nil, err
	}
	return model, nil
}

func compareFamilies(ctx context.Context, table *dataset.Table, fitCfg copula.FitConfig, logger *slog.Logger) (*copula.Copula, error) {
	candidates, err := copula.DefaultCandidates(table.Cols(), copula.WithLogger(logger))
	if err != nil {
		return nil, err
	}

	selCfg := copula.DefaultSelectionConfig()
	selCfg.Fit = fitCfg
	selCfg.Logger = logger
	result, err := copula.Select(ctx, candidates, table.Data, selCfg)
	if err != nil {
		return nil, err
	}

	fmt.Println("\n=== FAMILY COMPARISON (ascending AIC) ===")
	fmt.Println("Family       | LogLik      | AIC         | BIC         | Status")
	fmt.Println("-------------|-------------|-------------|-------------|-------")
	for _, cf := range result.Ranked {
		if cf.Err != nil {
			fmt.Printf("%-12s | %11s | %11s | %11s | %s\n", cf.Name, "-", "-", "-", cf.Err)
			continue
		}
		fmt.Printf("%-12s | %11.4f | %11.4f | %11.4f | ok\n", cf.Name, cf.LogLik, cf.AIC, cf.BIC)
	}
	return result.Best, nil
}

// printConcentration renders the sampled concentration curve, when the
// model's CDF admits one.
func printConcentration(report *exporter.Report) {
	if len(report.Concentration) == 0 {
		return
	}
	fmt.Println("=== TAIL CONCENTRATION ===")
	fmt.Println("    x | concentration")
	fmt.Println("------|--------------")
	for _, p := range report.Concentration {
		fmt.Printf("%.3f | %.6f\n", p.X, p.Value)
	}
}

// seedSource builds a reproducible source for non-negative seeds.
func seedSource(seed int64) rand.Source {
	if seed < 0 {
		return nil
	}
	return rand.NewPCG(uint64(seed), uint64(seed))
}

func exportReport(dir, format string, report *exporter.Report, logger *slog.Logger) error {
	switch format {
	case "none":
		return nil
	case "csv":
		written, err := exporter.WriteCSV(dir, report)
		if err != nil {
			return err
		}
		logger.Info("Report written", "format", "csv", "files", written)
	case "xlsx":
		path := filepath.Join(dir, "report.xlsx")
		if err := exporter.WriteXLSX(path, report); err != nil {
			return err
		}
		logger.Info("Report written", "format", "xlsx", "path", path)
	case "both":
		if err := exportReport(dir, "csv", report, logger); err != nil {
			return err
		}
		return exportReport(dir, "xlsx", report, logger)
	default:
		return fmt.Errorf("unknown report format %q (want csv, xlsx, both, or none)", format)
	}
	return nil
}
