// Package classify is a subcommand of the root command. It classifies the
// memory streams of analyzed loops and reports per-loop metrics.
package classify

// Copyright (C) 2023-2025 the SMX authors
// SPDX-License-Identifier: Apache-2.0

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/rv-smx/utils/internal/common"
	"github.com/rv-smx/utils/internal/progress"
	"github.com/rv-smx/utils/internal/report"
	"github.com/rv-smx/utils/internal/smx"
)

const cmdName = "classify"

var examples = []string{
	fmt.Sprintf("  Classify one analysis result:          $ %s %s results/foo.smx.json", common.AppName, cmdName),
	fmt.Sprintf("  Classify a directory of results:       $ %s %s results/", common.AppName, cmdName),
	fmt.Sprintf("  Write csv and xlsx reports:            $ %s %s results/ --format csv,xlsx --output reports/", common.AppName, cmdName),
	fmt.Sprintf("  Classify results listed in a job file: $ %s %s --jobs jobs.yaml", common.AppName, cmdName),
}

var Cmd = &cobra.Command{
	Use:           cmdName + " [flags] PATH...",
	Short:         "Classify memory streams of analyzed loops",
	Example:       strings.Join(examples, "\n"),
	RunE:          runCmd,
	PreRunE:       validateFlags,
	GroupID:       "primary",
	Args:          cobra.ArbitraryArgs,
	SilenceErrors: true,
}

// flag vars
var (
	flagFormat  []string
	flagOutput  string
	flagJobs    string
	flagWorkers int
)

func init() {
	Cmd.Flags().StringSliceVar(&flagFormat, common.FlagFormatName, []string{report.FormatTxt}, "")
	Cmd.Flags().StringVar(&flagOutput, common.FlagOutputName, "", "")
	Cmd.Flags().StringVar(&flagJobs, common.FlagJobsName, "", "")
	Cmd.Flags().IntVar(&flagWorkers, common.FlagWorkersName, 0, "")
	Cmd.SetUsageFunc(usageFunc)
}

func usageFunc(cmd *cobra.Command) error {
	cmd.Printf("Usage: %s [flags] PATH...\n\n", cmd.CommandPath())
	cmd.Printf("Examples:\n%s\n\n", cmd.Example)
	cmd.Println("Flags:")
	for _, group := range getFlagGroups() {
		cmd.Printf("  %s:\n", group.GroupName)
		for _, flag := range group.Flags {
			flagDefault := ""
			if cmd.Flags().Lookup(flag.Name).DefValue != "" {
				flagDefault = fmt.Sprintf(" (default: %s)", cmd.Flags().Lookup(flag.Name).DefValue)
			}
			cmd.Printf("    --%-20s %s%s\n", flag.Name, flag.Help, flagDefault)
		}
	}
	cmd.Println("\nGlobal Flags:")
	cmd.Parent().PersistentFlags().VisitAll(func(pf *pflag.Flag) {
		cmd.Printf("  --%-20s %s\n", pf.Name, pf.Usage)
	})
	return nil
}

func getFlagGroups() []common.FlagGroup {
	return []common.FlagGroup{
		{
			GroupName: "Input Options",
			Flags: []common.Flag{
				{Name: common.FlagJobsName, Help: "YAML file listing analysis result files and their labels"},
				{Name: common.FlagWorkersName, Help: "number of classification workers, 0 for one per CPU"},
			},
		},
		{
			GroupName: "Output Options",
			Flags: []common.Flag{
				{Name: common.FlagFormatName, Help: fmt.Sprintf("choose output format(s) from: %s", strings.Join(append([]string{report.FormatAll}, report.FormatOptions...), ", "))},
				{Name: common.FlagOutputName, Help: "existing directory where report files will be written; reports print to stdout when not set"},
			},
		},
	}
}

func validateFlags(cmd *cobra.Command, args []string) error {
	if err := common.ValidateReportFlags(&flagFormat, flagOutput, args, flagJobs); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}

func runCmd(cmd *cobra.Command, args []string) error {
	jobs, err := common.GatherJobs(args, flagJobs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	spinner := progress.NewSpinner()
	spinner.Start()
	var labels []string
	var classifications []*smx.Classification
	numSkipped := 0
	for _, job := range jobs {
		spinner.Status(fmt.Sprintf("classifying %s", job.Label))
		docs, err := smx.LoadDocuments(job.Path)
		if err != nil {
			spinner.Finish()
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return err
		}
		results, errs := smx.ClassifyAll(docs, flagWorkers)
		for _, classifyErr := range errs {
			slog.Warn("skipping malformed loop analysis document", slog.String("file", job.Path), slog.String("error", classifyErr.Error()))
		}
		numSkipped += len(errs)
		for i, c := range results {
			if c == nil {
				continue
			}
			labels = append(labels, docs[i].Name(fmt.Sprintf("%s[%d]", job.Label, i)))
			classifications = append(classifications, c)
		}
	}
	spinner.Status(fmt.Sprintf("classified %d loops from %d file(s)", len(classifications), len(jobs)))
	spinner.Finish()
	if numSkipped > 0 {
		fmt.Fprintf(os.Stderr, "Skipped %d malformed loop analysis document(s), see log for details.\n", numSkipped)
	}
	table := report.LoopsTable(labels, classifications)
	return common.RenderReports(flagFormat, flagOutput, "loops", []report.TableValues{table})
}
