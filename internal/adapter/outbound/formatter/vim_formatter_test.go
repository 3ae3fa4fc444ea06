package formatter

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"javadocgen/internal/domain/errors/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVimFormatter_Args(t *testing.T) {
	f := NewVimFormatter(Config{TabStop: 2})

	args := f.Args("/tmp/A.java")
	assert.Contains(t, args, "set tabstop=2")
	assert.Contains(t, args, "set shiftwidth=2")
	assert.Contains(t, args, "set expandtab")
	assert.Contains(t, args, "normal gg=G")
	assert.Equal(t, "/tmp/A.java", args[len(args)-1])
	assert.Equal(t, "vim", f.Name())
}

func TestVimFormatter_Unavailable(t *testing.T) {
	f := NewVimFormatter(Config{})
	f.lookPath = func(string) (string, error) { return "", exec.ErrNotFound }

	_, err := f.Format(context.Background(), []byte("class A {}\n"))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrFormatterUnavailable)
	assert.ErrorIs(t, err, exec.ErrNotFound)
}

// fakeEditor writes a shell script standing in for the editor.
func fakeEditor(t *testing.T, script string) string {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
	path := filepath.Join(t.TempDir(), "editor")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+script), 0o700))
	return path
}

func TestVimFormatter_RunsCommandOnCopy(t *testing.T) {
	editor := fakeEditor(t, `for last; do :; done
printf '// formatted\n' >> "$last"
`)
	f := NewVimFormatter(Config{Command: editor})

	input := []byte("class A {}\n")
	out, err := f.Format(context.Background(), input)
	require.NoError(t, err)

	assert.Equal(t, "class A {}\n// formatted\n", string(out))
	assert.Equal(t, "class A {}\n", string(input))
}

func TestVimFormatter_CommandFails(t *testing.T) {
	editor := fakeEditor(t, "echo broken >&2\nexit 3\n")
	f := NewVimFormatter(Config{Command: editor})

	_, err := f.Format(context.Background(), []byte("class A {}\n"))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrFormatterFailed)
	assert.Contains(t, err.Error(), "exited with 3")
	assert.Contains(t, err.Error(), "broken")
	assert.False(t, errors.Is(err, domain.ErrFormatterUnavailable))
}
