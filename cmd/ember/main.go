package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Irumyuui/Ember/internal/config"
	"github.com/Irumyuui/Ember/internal/errdefs"
	"github.com/Irumyuui/Ember/internal/judge"
	"github.com/Irumyuui/Ember/internal/logger"
	"github.com/Irumyuui/Ember/internal/runner"
)

var (
	logLevel string
	logFile  string
)

func main() {
	// Re-exec hook: when the supervisor spawns this binary as the sandbox
	// runner, hand over before cobra touches argv. Init never returns.
	if len(os.Args) > 1 && os.Args[1] == runner.InitCommand {
		runner.Init()
	}

	root := &cobra.Command{
		Use:   "ember <config.json>",
		Short: "ember — single-shot judging sandbox",
		Long: "Executes one untrusted program under kernel-enforced resource limits\n" +
			"and prints a JSON verdict on stdout. Requires root.",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          run,
	}
	root.Flags().StringVar(&logLevel, "log-level", "info", "Log verbosity (debug, info, warn, error)")
	root.Flags().StringVar(&logFile, "log-file", "", "Also append logs to this file")

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "[Error] %v\n", err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	if err := logger.Init(logLevel, logFile); err != nil {
		return errdefs.Msg("initialize logging: %v", err)
	}

	cfg, err := config.Load(args[0])
	if err != nil {
		return err
	}

	res, err := judge.Run(cfg)
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return errdefs.Msg("encode verdict: %v", err)
	}
	if _, err := fmt.Fprintln(os.Stdout, string(out)); err != nil {
		return errdefs.IO(err)
	}
	return nil
}
