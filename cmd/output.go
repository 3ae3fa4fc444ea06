package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"javadocgen/internal/application/dto"
	"javadocgen/internal/domain/valueobject"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

const stdinArg = "-"

func displayPath(path string) string {
	if path == stdinArg {
		return valueobject.StdinPath
	}
	return path
}

func readSourceFile(cmd *cobra.Command, path string) (*valueobject.SourceFile, error) {
	var (
		content []byte
		err     error
	)
	if path == stdinArg {
		content, err = io.ReadAll(cmd.InOrStdin())
	} else {
		content, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", displayPath(path), err)
	}
	return valueobject.NewSourceFile(displayPath(path), content)
}

// writeFileAtomic replaces target through a temporary file in the same
// directory. The mode is taken from modeFrom when it exists.
func writeFileAtomic(target string, data []byte, modeFrom string) error {
	mode := os.FileMode(0o644)
	if info, err := os.Stat(modeFrom); err == nil {
		mode = info.Mode().Perm()
	}

	tmp, err := os.CreateTemp(filepath.Dir(target), "."+filepath.Base(target)+".*")
	if err != nil {
		return fmt.Errorf("writing %s: %w", target, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing %s: %w", target, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing %s: %w", target, err)
	}
	if err := os.Chmod(tmpName, mode); err != nil {
		return fmt.Errorf("writing %s: %w", target, err)
	}
	if err := os.Rename(tmpName, target); err != nil {
		return fmt.Errorf("writing %s: %w", target, err)
	}
	return nil
}

type renderable interface {
	Render(format string) ([]byte, error)
}

func writeReport(cmd *cobra.Command, path, format string, report renderable) error {
	if path == "" {
		return nil
	}
	data, err := report.Render(format)
	if err != nil {
		return err
	}
	if len(data) > 0 && data[len(data)-1] != '\n' {
		data = append(data, '\n')
	}
	if path == stdinArg {
		_, err = cmd.OutOrStdout().Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing report %s: %w", path, err)
	}
	return nil
}

// colorEnabled reports whether w is a terminal.
func colorEnabled(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func newColor(colorize bool, attrs ...color.Attribute) *color.Color {
	c := color.New(attrs...)
	if colorize {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
	return c
}

// printSummary writes a short human-readable account of a run.
func printSummary(w io.Writer, report *dto.RunReport) {
	colorize := colorEnabled(w)
	bold := newColor(colorize, color.Bold)
	green := newColor(colorize, color.FgGreen)
	yellow := newColor(colorize, color.FgYellow)

	bold.Fprintf(w, "%s: ", report.Path)
	green.Fprintf(w, "%d documented", len(report.Documented))
	fmt.Fprintf(w, ", %d skipped, %d already documented", len(report.Skipped), report.AlreadyDocumented)
	if report.Formatted {
		fmt.Fprintf(w, ", formatted with %s", report.Formatter)
	}
	fmt.Fprintln(w)

	for _, s := range report.Skipped {
		name := s.Name
		if s.EnclosingName != "" {
			name = s.EnclosingName + "." + s.Name
		}
		yellow.Fprintf(w, "  skipped %s %s (line %d): %s\n", s.Kind, name, s.Line, s.Reason)
	}

	counts := report.SkipCounts()
	reasons := make([]string, 0, len(counts))
	for reason := range counts {
		reasons = append(reasons, reason)
	}
	sort.Strings(reasons)
	if len(reasons) > 1 {
		for _, reason := range reasons {
			fmt.Fprintf(w, "  %-18s %d\n", reason+":", counts[reason])
		}
	}

	for _, warning := range report.Warnings {
		yellow.Fprintf(w, "  warning: %s\n", warning)
	}
}
