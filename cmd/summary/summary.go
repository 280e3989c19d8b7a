// Package summary is a subcommand of the root command. It aggregates loop
// classifications across a population and reports distributional statistics.
package summary

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

const cmdName = "summary"

var examples = []string{
	fmt.Sprintf("  Summarize a directory of analysis results:  $ %s %s results/", common.AppName, cmdName),
	fmt.Sprintf("  One summary table per result file:          $ %s %s results/ --per-file", common.AppName, cmdName),
	fmt.Sprintf("  Restrict the population with an expression: $ %s %s results/ --filter \"supported_mss > 0 && loads >= 8\"", common.AppName, cmdName),
	fmt.Sprintf("  Serve the summary as Prometheus gauges:     $ %s %s results/ --prometheus localhost:9090", common.AppName, cmdName),
}

var Cmd = &cobra.Command{
	Use:           cmdName + " [flags] PATH...",
	Short:         "Summarize streamization opportunity across a population of loops",
	Example:       strings.Join(examples, "\n"),
	RunE:          runCmd,
	PreRunE:       validateFlags,
	GroupID:       "primary",
	Args:          cobra.ArbitraryArgs,
	SilenceErrors: true,
}

// flag vars
var (
	flagFormat     []string
	flagOutput     string
	flagJobs       string
	flagWorkers    int
	flagFilter     string
	flagPerFile    bool
	flagPrometheus string
)

// flag names
const (
	flagFilterName     = "filter"
	flagPerFileName    = "per-file"
	flagPrometheusName = "prometheus"
)

func init() {
	Cmd.Flags().StringSliceVar(&flagFormat, common.FlagFormatName, []string{report.FormatTxt}, "")
	Cmd.Flags().StringVar(&flagOutput, common.FlagOutputName, "", "")
	Cmd.Flags().StringVar(&flagJobs, common.FlagJobsName, "", "")
	Cmd.Flags().IntVar(&flagWorkers, common.FlagWorkersName, 0, "")
	Cmd.Flags().StringVar(&flagFilter, flagFilterName, "", "")
	Cmd.Flags().BoolVar(&flagPerFile, flagPerFileName, false, "")
	Cmd.Flags().StringVar(&flagPrometheus, flagPrometheusName, "", "")
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
				{Name: flagFilterName, Help: "expression over per-loop metrics; only matching loops are aggregated, e.g., \"supported_mss > 0\""},
			},
		},
		{
			GroupName: "Output Options",
			Flags: []common.Flag{
				{Name: common.FlagFormatName, Help: fmt.Sprintf("choose output format(s) from: %s", strings.Join(append([]string{report.FormatAll}, report.FormatOptions...), ", "))},
				{Name: common.FlagOutputName, Help: "existing directory where report files will be written; reports print to stdout when not set"},
				{Name: flagPerFileName, Help: "emit one summary table per result file in addition to the combined table"},
				{Name: flagPrometheusName, Help: "serve the combined summary as Prometheus gauges on the given address instead of rendering a report"},
			},
		},
	}
}

func validateFlags(cmd *cobra.Command, args []string) error {
	if flagFilter != "" {
		if _, err := newFilter(flagFilter); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return err
		}
	}
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
	var loopFilter *filter
	if flagFilter != "" {
		// validated in PreRunE
		loopFilter, _ = newFilter(flagFilter)
	}
	spinner := progress.NewSpinner()
	spinner.Start()
	total := smx.NewAggregator()
	var tables []report.TableValues
	numSkipped := 0
	for _, job := range jobs {
		spinner.Status(fmt.Sprintf("summarizing %s", job.Label))
		perFile, skipped, err := aggregateJob(job, loopFilter)
		if err != nil {
			spinner.Finish()
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return err
		}
		numSkipped += skipped
		if flagPerFile {
			table := report.SummaryTable(perFile.Summarize())
			table.Name = fmt.Sprintf("%s - %s", report.SummaryTableName, job.Label)
			tables = append(tables, table)
		}
		total.Merge(perFile)
	}
	spinner.Status(fmt.Sprintf("summarized %d loops from %d file(s)", total.NumLoops(), len(jobs)))
	spinner.Finish()
	if numSkipped > 0 {
		fmt.Fprintf(os.Stderr, "Skipped %d malformed loop analysis document(s), see log for details.\n", numSkipped)
	}
	summary := total.Summarize()
	if flagPrometheus != "" {
		return serveSummary(flagPrometheus, summary)
	}
	tables = append(tables, report.SummaryTable(summary))
	return common.RenderReports(flagFormat, flagOutput, "summary", tables)
}

// aggregateJob classifies all loops of one result file into a fresh
// aggregator, applying the population filter when one is set.
func aggregateJob(job smx.Job, loopFilter *filter) (agg *smx.Aggregator, numSkipped int, err error) {
	docs, err := smx.LoadDocuments(job.Path)
	if err != nil {
		return
	}
	results, errs := smx.ClassifyAll(docs, flagWorkers)
	for _, classifyErr := range errs {
		slog.Warn("skipping malformed loop analysis document", slog.String("file", job.Path), slog.String("error", classifyErr.Error()))
	}
	numSkipped = len(errs)
	agg = smx.NewAggregator()
	for _, c := range results {
		if c == nil {
			continue
		}
		if loopFilter != nil {
			matched, filterErr := loopFilter.matches(c)
			if filterErr != nil {
				err = filterErr
				return
			}
			if !matched {
				continue
			}
		}
		agg.Add(c)
	}
	return
}
