package cmd

import (
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"javadocgen/internal/application/dto"
	domainservice "javadocgen/internal/domain/service"

	"github.com/spf13/cobra"
)

const scanFormatText = "text"

func newScanCmd(root *rootOptions) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "scan FILE...",
		Short: "List undocumented declarations without generating comments",
		Long: `List the declarations that generate would document, with their signatures,
and the declarations that already carry a doc comment. No backend is contacted.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScan(cmd, root, format, args)
		},
	}
	cmd.Flags().StringVar(&format, "format", scanFormatText, "output format (text, json, yaml)")
	return cmd
}

func runScan(cmd *cobra.Command, root *rootOptions, format string, args []string) error {
	if format != scanFormatText && format != dto.ReportFormatJSON && format != dto.ReportFormatYAML {
		return fmt.Errorf("unsupported output format %q", format)
	}

	cfg, err := root.loadConfig(false)
	if err != nil {
		return err
	}
	collectorCfg, err := collectorConfig(cfg)
	if err != nil {
		return err
	}
	parser, err := newJavaParser()
	if err != nil {
		return err
	}
	collector := domainservice.NewCandidateCollector(collectorCfg)
	extractor := domainservice.NewContextExtractor(extractorConfig(cfg))

	for _, path := range args {
		file, err := readSourceFile(cmd, path)
		if err != nil {
			return err
		}
		tree, err := parser.Parse(cmd.Context(), file)
		if err != nil {
			return err
		}

		candidates, stats := collector.Collect(cmd.Context(), tree)
		report := &dto.ScanReport{
			Path:         file.Path(),
			Candidates:   make([]dto.CandidateEntry, 0, len(candidates)),
			Documented:   make([]dto.SkippedEntry, 0, len(stats.Documented)),
			SyntaxErrors: tree.Metadata().ErrorCount,
		}

		for _, c := range candidates {
			entry := dto.CandidateEntry{
				Kind:          c.Kind.String(),
				Name:          c.Name,
				EnclosingName: c.EnclosingName,
				Line:          c.Line(),
			}
			declCtx, err := extractor.Extract(tree, c)
			var tooLarge *domainservice.TooLargeError
			switch {
			case errors.As(err, &tooLarge):
				entry.TooLarge = true
				entry.Tokens = tooLarge.Tokens
			case err != nil:
				return fmt.Errorf("extracting %s: %w", c, err)
			default:
				entry.Signature = declCtx.Signature
				entry.Tokens = declCtx.TokenCount
			}
			report.Candidates = append(report.Candidates, entry)
		}
		for _, d := range stats.Documented {
			report.Documented = append(report.Documented, dto.SkippedEntry{
				Kind:          d.Kind.String(),
				Name:          d.Name,
				EnclosingName: d.EnclosingName,
				Line:          d.Line,
				Reason:        string(d.Reason),
			})
		}

		if err := printScan(cmd.OutOrStdout(), format, report); err != nil {
			return err
		}
	}
	return nil
}

func printScan(w io.Writer, format string, report *dto.ScanReport) error {
	if format != scanFormatText {
		data, err := report.Render(format)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	}

	fmt.Fprintf(w, "%s: %d undocumented, %d documented\n", report.Path, len(report.Candidates), len(report.Documented))
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, c := range report.Candidates {
		name := c.Name
		if c.EnclosingName != "" {
			name = c.EnclosingName + "." + c.Name
		}
		signature := c.Signature
		if c.TooLarge {
			signature = fmt.Sprintf("(too large: %d tokens)", c.Tokens)
		}
		fmt.Fprintf(tw, "  %d\t%s\t%s\t%s\n", c.Line, c.Kind, name, signature)
	}
	return tw.Flush()
}
