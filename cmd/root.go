// Package cmd provides the command line interface for the application.
package cmd

// Copyright (C) 2023-2025 the SMX authors
// SPDX-License-Identifier: Apache-2.0

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rv-smx/utils/cmd/classify"
	"github.com/rv-smx/utils/cmd/summary"
	"github.com/rv-smx/utils/internal/common"
)

var gLogFile *os.File
var gVersion = "0.1.0" // overwritten by ldflags in Makefile

var examples = []string{
	fmt.Sprintf("  Classify the loops of one analysis result:       $ %s classify results/foo.smx.json", common.AppName),
	fmt.Sprintf("  Summarize a directory of analysis results:       $ %s summary results/", common.AppName),
	fmt.Sprintf("  Summarize only loops that load through a stream: $ %s summary results/ --filter \"stream_loads > 0\"", common.AppName),
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:               common.AppName,
	Short:             common.AppName,
	Long:              fmt.Sprintf(`%s reports which memory accesses of analyzed loops the SMX stream extension can execute autonomously.`, common.AppName),
	Example:           strings.Join(examples, "\n"),
	PersistentPreRunE: initializeApplication,
	Version:           gVersion,
}

var (
	flagDebug     bool
	flagLogStdOut bool
)

const (
	flagDebugName     = "debug"
	flagLogStdOutName = "log-stdout"
)

func init() {
	rootCmd.SetHelpCommand(&cobra.Command{}) // block the help command
	rootCmd.CompletionOptions.HiddenDefaultCmd = true
	rootCmd.AddGroup([]*cobra.Group{{ID: "primary", Title: "Commands:"}}...)
	rootCmd.AddCommand(classify.Cmd)
	rootCmd.AddCommand(summary.Cmd)
	// Global (persistent) flags
	rootCmd.PersistentFlags().BoolVar(&flagDebug, flagDebugName, false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&flagLogStdOut, flagLogStdOutName, false, "write logs to stdout instead of a file")
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	cobra.EnableCommandSorting = false
	cobra.EnableCaseInsensitive = true
	if err := rootCmd.Execute(); err != nil {
		if gLogFile != nil {
			gLogFile.Close()
		}
		os.Exit(1)
	}
	if gLogFile != nil {
		gLogFile.Close()
	}
}

func initializeApplication(cmd *cobra.Command, args []string) error {
	var logOpts slog.HandlerOptions
	if flagDebug {
		logOpts.Level = slog.LevelDebug
		logOpts.AddSource = true
	} else {
		logOpts.Level = slog.LevelInfo
		logOpts.AddSource = false
	}
	if flagLogStdOut {
		slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &logOpts)))
	} else {
		var err error
		gLogFile, err = os.OpenFile(common.AppName+".log", os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644) // #nosec G302
		if err != nil {
			fmt.Printf("Error: failed to open log file: %v\n", err)
			os.Exit(1)
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(gLogFile, &logOpts)))
	}
	slog.Info("Starting up", slog.String("app", common.AppName), slog.String("version", gVersion), slog.Int("PID", os.Getpid()), slog.String("arguments", strings.Join(os.Args, " ")))
	return nil
}
