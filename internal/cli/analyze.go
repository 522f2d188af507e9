package cli

import (
	"fmt"

	"resumescan/internal/common"

	"github.com/spf13/cobra"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <resume-file>...",
	Short: "Analyze one or more resumes",
	Long: `Analyze PDF or DOCX resumes and print a graded report.

Each report covers:
- Formatting and ATS readiness (section headings, contact details, length)
- Content and impact (action verbs, quantified achievements, buzzwords)
- Job fit (keyword overlap with --jd, or with an inferred domain profile)
- Technology freshness

Passing several files analyzes them concurrently and prints one report per
file in argument order. A file that fails does not stop the others.`,
	Args: cobra.MinimumNArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfigFromContext(cmd.Context())
		// Apply default format if not specified
		if analyzeOptions.Output.OutputFormat == "" {
			analyzeOptions.Output.OutputFormat = cfg.App.DefaultFormat
		}
		// Validate format against supported formats
		return common.ValidateOutputFormat(analyzeOptions.Output.OutputFormat, cfg.App.SupportedFormats)
	},
	RunE: runAnalyze,
}

var analyzeOptions common.AnalyzeOptions

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeOptions.Output.OutputFile, "output", "o", "", "Output file path (default: stdout)")
	analyzeCmd.Flags().StringVar(&analyzeOptions.Output.OutputFormat, "format", "", "Output format: json, text, or markdown")
	analyzeCmd.Flags().StringVar(&analyzeOptions.JobDescriptionFile, "jd", "", "Job description text file (default: infer a domain profile)")
	analyzeCmd.Flags().IntVarP(&analyzeOptions.Workers, "workers", "w", 0, "Concurrent analyses for several files (default from config)")

	// Add completion for format flag
	_ = analyzeCmd.RegisterFlagCompletionFunc("format", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return getConfigFromContext(cmd.Context()).App.SupportedFormats, cobra.ShellCompDirectiveNoFileComp
	})
	_ = analyzeCmd.MarkFlagFilename("jd", "txt", "md")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg := getConfigFromContext(cmd.Context())
	logger := getLoggerFromContext(cmd.Context())

	rt, err := common.NewRuntime(cfg, logger, nil)
	if err != nil {
		return err
	}
	defer rt.Close()

	opts := analyzeOptions
	opts.Workers = common.ResolveWorkers(opts.Workers, cfg.App.Workers, len(args))

	if err := common.RunAnalyzeCommand(cmd.Context(), rt, opts, args); err != nil {
		return fmt.Errorf("failed to analyze resume: %w", err)
	}
	logger.Info("Resume analysis completed successfully", "files", len(args))
	return nil
}
