// Package formatter reindents Java sources with an external editor.
package formatter

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"time"

	"javadocgen/internal/application/common/slogger"
	"javadocgen/internal/domain/errors/domain"
)

const (
	// DefaultCommand is the editor used for reindenting.
	DefaultCommand = "vim"
	// DefaultTabStop is the indentation width.
	DefaultTabStop = 4
	// DefaultTimeout bounds one formatting run.
	DefaultTimeout = 30 * time.Second
)

// Config configures the vim formatter.
type Config struct {
	Command string
	TabStop int
	Timeout time.Duration
}

// VimFormatter reindents text by running "gg=G" in vim on a temporary copy.
type VimFormatter struct {
	config   Config
	lookPath func(string) (string, error)
}

// NewVimFormatter creates a formatter, filling unset fields with defaults.
func NewVimFormatter(cfg Config) *VimFormatter {
	if cfg.Command == "" {
		cfg.Command = DefaultCommand
	}
	if cfg.TabStop <= 0 {
		cfg.TabStop = DefaultTabStop
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &VimFormatter{config: cfg, lookPath: exec.LookPath}
}

// Name returns the command used for formatting.
func (f *VimFormatter) Name() string {
	return f.config.Command
}

// Args returns the editor arguments for path.
func (f *VimFormatter) Args(path string) []string {
	ts := strconv.Itoa(f.config.TabStop)
	return []string{
		"--clean",
		"-c", "set tabstop=" + ts,
		"-c", "set shiftwidth=" + ts,
		"-c", "set expandtab",
		"-c", "normal gg=G",
		"-c", "wq",
		path,
	}
}

// Format reindents text. It returns domain.ErrFormatterUnavailable when the
// command is not installed and domain.ErrFormatterFailed when it fails.
func (f *VimFormatter) Format(ctx context.Context, text []byte) ([]byte, error) {
	bin, err := f.lookPath(f.config.Command)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrFormatterUnavailable, f.config.Command, err)
	}

	dir, err := os.MkdirTemp("", "javadocgen-format-")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrFormatterFailed, err)
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "Source.java")
	if err := os.WriteFile(path, text, 0o600); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrFormatterFailed, err)
	}

	ctx, cancel := context.WithTimeout(ctx, f.config.Timeout)
	defer cancel()

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, bin, f.Args(path)...) //nolint:gosec // command comes from configuration
	cmd.Stderr = &stderr

	start := time.Now()
	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil, fmt.Errorf("%w: %s exited with %d: %s",
				domain.ErrFormatterFailed, f.config.Command, exitErr.ExitCode(), bytes.TrimSpace(stderr.Bytes()))
		}
		return nil, fmt.Errorf("%w: %w", domain.ErrFormatterFailed, err)
	}

	formatted, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrFormatterFailed, err)
	}

	slogger.Debug(ctx, "Source formatted", slogger.Fields{
		"command":     f.config.Command,
		"duration_ms": time.Since(start).Milliseconds(),
		"bytes":       len(formatted),
	})
	return formatted, nil
}
