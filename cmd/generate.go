package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"javadocgen/internal/adapter/outbound/prompt"
	"javadocgen/internal/application/common/logging"
	"javadocgen/internal/application/common/slogger"
	"javadocgen/internal/application/dto"
	"javadocgen/internal/application/service"
	"javadocgen/internal/port/outbound"
	"javadocgen/internal/textpatch"

	"github.com/spf13/cobra"
)

type generateOptions struct {
	output       string
	toStdout     bool
	dryRun       bool
	reportPath   string
	reportFormat string
	noFormat     bool
}

func newGenerateCmd(root *rootOptions) *cobra.Command {
	opts := &generateOptions{}

	cmd := &cobra.Command{
		Use:   "generate FILE...",
		Short: "Insert generated doc comments into Java files",
		Long: `Insert a generated doc comment above every undocumented class, interface,
enum, method and constructor.

Files are rewritten in place unless --output, --stdout or --dry-run is given.
Use "-" to read from standard input; the result is then written to standard output.
Declarations whose generation fails are left as they were and listed in the summary.
On interrupt no new requests are sent, the backend is asked to stop, and the
comments generated so far are still written.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, root, opts, args)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.output, "output", "o", "", "write the result to this path instead of the input file")
	flags.BoolVar(&opts.toStdout, "stdout", false, "write the result to standard output")
	flags.BoolVar(&opts.dryRun, "dry-run", false, "print a unified diff instead of writing")
	flags.StringVar(&opts.reportPath, "report", "", "write the run report to this path (- for standard output)")
	flags.StringVar(&opts.reportFormat, "report-format", dto.ReportFormatJSON, "run report format (json, yaml)")
	flags.BoolVar(&opts.noFormat, "no-format", false, "do not run the external formatter")
	flags.String("backend", "", "generation backend (chat, gemini, mock)")
	flags.String("model", "", "backend model name")
	flags.String("api-key", "", "backend API key (default: $DEEPSEEK_API_KEY or $GEMINI_API_KEY)")
	flags.Int("concurrency", 0, "maximum generation requests in flight")
	flags.Duration("request-timeout", 0, "timeout of one generation request")

	root.bindFlag(cmd, "backend.provider", "backend")
	root.bindFlag(cmd, "backend.model", "model")
	root.bindFlag(cmd, "backend.api_key", "api-key")
	root.bindFlag(cmd, "generation.concurrency", "concurrency")
	root.bindFlag(cmd, "generation.request_timeout", "request-timeout")

	return cmd
}

func runGenerate(cmd *cobra.Command, root *rootOptions, opts *generateOptions, args []string) error {
	if len(args) > 1 && (opts.output != "" || opts.reportPath != "") {
		return errors.New("--output and --report require a single input file")
	}
	if opts.reportFormat != dto.ReportFormatJSON && opts.reportFormat != dto.ReportFormatYAML {
		return fmt.Errorf("unsupported report format %q", opts.reportFormat)
	}

	cfg, err := root.loadConfig(true)
	if err != nil {
		return err
	}
	if opts.noFormat {
		cfg.Formatter.Enabled = false
	}

	ctx, stopSignals := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stopSignals()
	ctx = logging.WithCorrelationID(ctx, logging.NewCorrelationID())

	generator, err := newCommentGenerator(ctx, cfg)
	if err != nil {
		return err
	}
	stopBackend := context.AfterFunc(ctx, func() { requestStop(ctx, generator) })
	defer stopBackend()

	parser, err := newJavaParser()
	if err != nil {
		return err
	}
	docCfg, err := documentationConfig(cfg)
	if err != nil {
		return err
	}
	svc, err := service.NewDocumentationService(service.DocumentationDeps{
		Parser:        parser,
		Generator:     generator,
		Formatter:     newSourceFormatter(cfg),
		PromptBuilder: prompt.Build,
	}, docCfg)
	if err != nil {
		return err
	}

	for _, path := range args {
		file, err := readSourceFile(cmd, path)
		if err != nil {
			return err
		}

		result, err := svc.Process(ctx, file)
		if err != nil {
			return err
		}

		if err := writeResult(cmd, path, opts, result); err != nil {
			return err
		}
		if err := writeReport(cmd, opts.reportPath, opts.reportFormat, result.Report); err != nil {
			return err
		}
		printSummary(cmd.ErrOrStderr(), result.Report)

		if ctx.Err() != nil {
			slogger.Warn(ctx, "Interrupted, remaining files are left unchanged", slogger.Field("last_file", path))
			break
		}
	}
	return nil
}

func requestStop(ctx context.Context, generator outbound.CommentGenerator) {
	slogger.Warn(ctx, "Interrupted, waiting for in-flight requests", nil)
	stopper, ok := generator.(outbound.Stopper)
	if !ok {
		return
	}
	if err := stopper.Stop(context.WithoutCancel(ctx)); err != nil {
		slogger.Warn(ctx, "Backend stop request failed", slogger.Field("error", err.Error()))
	}
}

func writeResult(cmd *cobra.Command, path string, opts *generateOptions, result *dto.RunResult) error {
	switch {
	case opts.dryRun:
		_, err := fmt.Fprint(cmd.OutOrStdout(), textpatch.UnifiedDiff(displayPath(path), result.Original, result.Output))
		return err
	case opts.toStdout || path == stdinArg:
		_, err := cmd.OutOrStdout().Write(result.Output)
		return err
	}

	target := path
	if opts.output != "" {
		target = opts.output
	}
	if target == path && !result.Changed() {
		return nil
	}
	return writeFileAtomic(target, result.Output, path)
}
