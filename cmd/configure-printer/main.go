package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/ternarybob/arbor"

	"github.com/justinreed270/sharp-automation/internal/common"
	"github.com/justinreed270/sharp-automation/internal/runner"
)

var (
	// Command-line flags
	configPath   = flag.String("config", "config.toml", "Configuration file path")
	configPathC  = flag.String("c", "", "Configuration file path (shorthand)")
	testOnly     = flag.Bool("test-only", false, "Run the SMTP connection test without submitting the configuration")
	skipTest     = flag.Bool("skip-test", false, "Submit without testing (for printers without a test button)")
	headless     = flag.Bool("headless", true, "Run the browser headless (overrides config)")
	showVersion  = flag.Bool("version", false, "Print version information")
	showVersionV = flag.Bool("v", false, "Print version information (shorthand)")
)

func main() {
	flag.Parse()

	if *showVersion || *showVersionV {
		fmt.Printf("configure-printer version %s\n", common.GetFullVersion())
		os.Exit(0)
	}

	if *testOnly && *skipTest {
		fmt.Fprintln(os.Stderr, "Error: -test-only and -skip-test are mutually exclusive")
		flag.Usage()
		os.Exit(1)
	}

	// Shorthand takes precedence
	path := *configPath
	if *configPathC != "" {
		path = *configPathC
	}

	// Startup sequence (REQUIRED ORDER):
	// 1. Load config (defaults -> file -> env)
	// 2. Apply CLI overrides (highest priority)
	// 3. Initialize logger
	// 4. Print banner
	config, err := common.LoadFromFile(path)
	if err != nil {
		// Use temporary logger for startup errors
		tempLogger := arbor.NewLogger()
		tempLogger.Fatal().Str("path", path).Err(err).Msg("Failed to load configuration")
		os.Exit(1)
	}

	flag.Visit(func(f *flag.Flag) {
		if f.Name == "headless" {
			config.Settings.Headless = *headless
		}
	})

	logger := common.InitLogger(config)
	common.PrintBanner(common.GetVersion())

	mode := runner.ModeNormal
	switch {
	case *testOnly:
		mode = runner.ModeTestOnly
	case *skipTest:
		mode = runner.ModeSkipTest
	}

	logger.Info().
		Str("config", path).
		Str("mode", mode.String()).
		Int("wait_timeout_s", config.Settings.WaitTimeout).
		Msg("Configuration loaded")

	if err := runner.Run(config, mode, logger); err != nil {
		logger.Error().Err(err).Msg("Configuration run failed")
		os.Exit(1)
	}

	logger.Info().Msg("Printer SMTP configuration succeeded")
}
