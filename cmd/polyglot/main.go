package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"codeberg.org/snonux/polyglot/internal/archive"
	"codeberg.org/snonux/polyglot/internal/cli"
	"codeberg.org/snonux/polyglot/internal/models"
	"codeberg.org/snonux/polyglot/internal/processor"
	"codeberg.org/snonux/polyglot/internal/server"
)

func main() {
	// Create flags instance
	flags := cli.NewFlags()

	// Create root command
	rootCmd := cli.CreateRootCommand(flags)
	serveCmd := cli.CreateServeCommand(flags)
	rootCmd.AddCommand(serveCmd)

	// Set up command initialization
	cobra.OnInitialize(func() {
		cli.InitConfig(flags.CfgFile)
		flags.Resolve()
	})

	// Set the run functions
	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		return runCommand(cmd, args, flags)
	}
	serveCmd.RunE = func(cmd *cobra.Command, args []string) error {
		return runServe(cmd, flags)
	}

	// Execute command
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runCommand(cmd *cobra.Command, args []string, flags *cli.Flags) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Handle --history flag
	if flags.History > 0 {
		return processor.PrintHistory(flags, os.Stdout, flags.History)
	}

	// Handle --list-models flag
	if flags.ListModels {
		lister := models.NewLister(cli.GetOpenAIKey(), flags.BaseURL)
		return lister.ListAvailableModels(ctx, os.Stdout)
	}

	// Handle --archive without an input: only move the output aside
	if flags.Archive && flags.BatchFile == "" && len(args) == 0 {
		path, err := archive.ArchiveOutput(flags.OutputDir)
		if err != nil {
			return fmt.Errorf("failed to archive output: %w", err)
		}
		fmt.Printf("Archived %s to %s\n", flags.OutputDir, path)
		return nil
	}

	if flags.BatchFile == "" && len(args) == 0 {
		return cmd.Help()
	}

	// Create runner
	runner, err := processor.NewRunner(flags)
	if err != nil {
		return err
	}
	defer runner.Close()

	// Handle batch processing
	if flags.BatchFile != "" {
		return runner.ProcessBatch(ctx)
	}

	// Process single document
	return runner.ProcessSingle(ctx, args[0])
}

func runServe(cmd *cobra.Command, flags *cli.Flags) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if !flags.Verbose {
		gin.SetMode(gin.ReleaseMode)
	}

	proc, err := processor.NewFromFlags(flags, os.Stdout)
	if err != nil {
		return err
	}

	fmt.Printf("polyglot API listening on %s (provider: %s)\n", flags.ServerAddress, proc.Provider().Name())
	return server.New(proc).Run(ctx, flags.ServerAddress)
}
