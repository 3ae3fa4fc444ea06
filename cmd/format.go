package cmd

import (
	"fmt"

	"javadocgen/internal/adapter/outbound/formatter"
	"javadocgen/internal/application/common/slogger"

	"github.com/spf13/cobra"
)

func newFormatCmd(root *rootOptions) *cobra.Command {
	var toStdout bool

	cmd := &cobra.Command{
		Use:   "format FILE...",
		Short: "Reindent Java files with the external formatter",
		Long: `Reindent Java files with the configured editor ("gg=G" in vim with
expandtab and the configured tab stop). Files are rewritten in place unless
--stdout is given.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFormat(cmd, root, toStdout, args)
		},
	}

	flags := cmd.Flags()
	flags.BoolVar(&toStdout, "stdout", false, "write the result to standard output")
	flags.String("command", "", "formatter command")
	flags.Int("tab-stop", 0, "indentation width")

	root.bindFlag(cmd, "formatter.command", "command")
	root.bindFlag(cmd, "formatter.tab_stop", "tab-stop")

	return cmd
}

func runFormat(cmd *cobra.Command, root *rootOptions, toStdout bool, args []string) error {
	cfg, err := root.loadConfig(false)
	if err != nil {
		return err
	}
	f := formatter.NewVimFormatter(formatter.Config{
		Command: cfg.Formatter.Command,
		TabStop: cfg.Formatter.TabStop,
		Timeout: cfg.Formatter.Timeout,
	})

	for _, path := range args {
		file, err := readSourceFile(cmd, path)
		if err != nil {
			return err
		}

		formatted, err := f.Format(cmd.Context(), file.Content())
		if err != nil {
			return fmt.Errorf("formatting %s: %w", file.Path(), err)
		}

		if toStdout || path == stdinArg {
			if _, err := cmd.OutOrStdout().Write(formatted); err != nil {
				return err
			}
			continue
		}
		if string(formatted) == string(file.Content()) {
			continue
		}
		if err := writeFileAtomic(path, formatted, path); err != nil {
			return err
		}
		slogger.Info(cmd.Context(), "Formatted file", slogger.Fields2("path", path, "formatter", f.Name()))
	}
	return nil
}
