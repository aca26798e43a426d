// Copyright (c) 2026 Ledgershell
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package cmd provides the command-line interface for the ledgershell
// application using the Cobra CLI framework. It resolves configuration,
// opens the ledger driver, and hands control to the interactive shell.
package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"ledgershell/cli/internal/config"
	"ledgershell/cli/internal/ledger"
	"ledgershell/cli/internal/logging"
	"ledgershell/cli/internal/render"
	"ledgershell/cli/internal/shell"
	"ledgershell/cli/internal/terminal"
)

var (
	showVersion bool
	flagLedger  string
	flagRegion  string
	flagProfile string
	flagEnd     string
	showStats   bool
	saveConfig  bool
	verbose     bool
)

// rootCmd represents the base command: it runs the interactive shell.
var rootCmd = &cobra.Command{
	Use:   "ledgershell",
	Short: "Interactive shell for a transactional ledger database",
	Long: `ledgershell is an interactive shell for Amazon QLDB-style ledger databases.
Statements are executed as PartiQL; 'start', 'commit' and 'abort' group them
into explicit multi-statement transactions. AWS credentials are resolved from
the standard shared configuration chain.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if showVersion {
			fmt.Printf("ledgershell %s\n", Version)
			return nil
		}

		cfg, err := config.Load()
		if err != nil {
			return err
		}
		applyFlags(&cfg)
		if cfg.Ledger == "" {
			return errors.New("a ledger name is required (--ledger or config.json)")
		}
		if saveConfig {
			if err := config.Save(cfg); err != nil {
				pterm.Warning.Printfln("could not save configuration: %v", err)
			}
		}

		if !terminal.IsInteractive() {
			pterm.DisableColor()
		}

		ctx := cmd.Context()
		spinner, _ := pterm.DefaultSpinner.Start("Connecting to ledger " + cfg.Ledger)
		led, err := ledger.OpenQLDB(ctx, ledger.Options{
			Ledger:   cfg.Ledger,
			Region:   cfg.Region,
			Profile:  cfg.Profile,
			Endpoint: cfg.Endpoint,
			Verbose:  verbose,
		})
		if err != nil {
			failSpinner(spinner, err)
			return maskedErr(err)
		}

		sh, err := shell.New(ctx, led, &render.Printer{ShowStats: cfg.ShowStats}, cfg.Ledger, Version)
		if err != nil {
			failSpinner(spinner, err)
			led.Shutdown(ctx)
			return maskedErr(err)
		}
		if spinner != nil {
			spinner.Success("Connected to ledger " + cfg.Ledger)
		}

		if err := sh.Run(ctx); err != nil {
			return maskedErr(err)
		}
		return nil
	},
}

// applyFlags overlays command-line flags onto the loaded configuration.
func applyFlags(cfg *config.Config) {
	if flagLedger != "" {
		cfg.Ledger = flagLedger
	}
	if flagRegion != "" {
		cfg.Region = flagRegion
	}
	if flagProfile != "" {
		cfg.Profile = flagProfile
	}
	if flagEnd != "" {
		cfg.Endpoint = flagEnd
	}
	if showStats {
		cfg.ShowStats = true
	}
}

func failSpinner(spinner *pterm.SpinnerPrinter, err error) {
	if spinner != nil {
		spinner.Fail(logging.PresentError("connection failed", err))
	}
}

// maskedErr strips credentials from an error before it reaches stderr.
func maskedErr(err error) error {
	return errors.New(logging.Mask(err.Error()))
}

// Execute runs the CLI application. Unrecoverable failures exit non-zero;
// an explicit quit or EOF exits zero.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().BoolVar(&showVersion, "version", false, "Show version information")
	rootCmd.Flags().StringVarP(&flagLedger, "ledger", "l", "", "Name of the ledger to connect to")
	rootCmd.Flags().StringVar(&flagRegion, "region", "", "AWS region of the ledger (defaults to the shared config chain)")
	rootCmd.Flags().StringVarP(&flagProfile, "profile", "p", "", "AWS shared config profile to use")
	rootCmd.Flags().StringVar(&flagEnd, "endpoint", "", "Override the ledger session endpoint")
	rootCmd.Flags().BoolVarP(&showStats, "show-stats", "s", false, "Print read IOs and server timing after each result")
	rootCmd.Flags().BoolVar(&saveConfig, "save-config", false, "Persist the resolved settings as defaults")
	rootCmd.Flags().BoolVar(&verbose, "verbose", false, "Enable driver debug logging")
}
