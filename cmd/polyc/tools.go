package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/mattjoyce/polyc/internal/config"
	"github.com/mattjoyce/polyc/internal/doctor"
)

// loadConfigForTool loads the explicit or discovered config without the
// integrity check, so lock and doctor work on a config whose scripts changed.
func loadConfigForTool(configPath string) (*config.Config, error) {
	if configPath == "" {
		configPath = config.Discover()
	}
	if configPath == "" {
		return nil, fmt.Errorf("no config file found; pass --config or set %s", config.EnvConfig)
	}
	return config.LoadUnchecked(configPath)
}

func runLock(args []string) int {
	fs := flag.NewFlagSet("lock", flag.ContinueOnError)
	configPath := fs.String("config", "", "Path to configuration file")
	dryRun := fs.Bool("dry-run", false, "Show hashes without writing .checksums")
	verbose := fs.Bool("v", false, "List each hashed script")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}

	cfg, err := loadConfigForTool(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return exitFatal
	}

	report, err := config.GenerateChecksumsWithReport(cfg, *dryRun)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to lock engine scripts: %v\n", err)
		return exitFatal
	}

	hashed := 0
	for _, f := range report.Files {
		if f.Exists {
			hashed++
		}
		if !*verbose && !*dryRun {
			continue
		}
		if f.Exists {
			fmt.Printf("  %s  %s\n", f.Hash, f.Key)
		} else {
			fmt.Printf("  %-64s  %s (missing)\n", "-", f.Key)
		}
	}

	if report.Written {
		fmt.Printf("Wrote %s (%d script(s))\n", report.ChecksumPath, hashed)
	} else {
		fmt.Printf("Dry run: %s not written (%d script(s))\n", report.ChecksumPath, hashed)
	}
	return exitOK
}

func runDoctor(args []string) int {
	fs := flag.NewFlagSet("doctor", flag.ContinueOnError)
	configPath := fs.String("config", "", "Path to configuration file")
	jsonOut := fs.Bool("json", false, "Output result as JSON")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}

	var (
		cfg *config.Config
		err error
	)
	if *configPath == "" && config.Discover() == "" {
		cfg, err = config.LoadOrDefaults("")
	} else {
		cfg, err = loadConfigForTool(*configPath)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return exitFatal
	}

	result := doctor.New(cfg, doctor.DefaultEngineChecks(cfg)).Validate()

	if *jsonOut {
		out, err := doctor.FormatJSON(result)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to render JSON: %v\n", err)
			return exitFatal
		}
		fmt.Println(out)
	} else {
		fmt.Print(doctor.FormatHuman(result))
	}

	if !result.Valid {
		return exitFatal
	}
	return exitOK
}
