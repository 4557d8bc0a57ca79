package gmt

import (
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingRunner struct {
	calls  [][]string
	stdins []string
	failOn string
}

func (r *recordingRunner) Run(ctx context.Context, stdin io.Reader, args ...string) ([]byte, error) {
	r.calls = append(r.calls, args)
	in := ""
	if stdin != nil {
		b, _ := io.ReadAll(stdin)
		in = string(b)
	}
	r.stdins = append(r.stdins, in)
	if len(args) > 0 && args[0] == r.failOn {
		return nil, &CommandError{Args: args, ExitCode: 1, Stderr: "boom"}
	}
	return nil, nil
}

func TestSessionLifecycle(t *testing.T) {
	ctx := context.Background()
	runner := &recordingRunner{}

	s, err := Begin(ctx, runner, "out/map", "png", "A", "E300")
	require.NoError(t, err)
	require.NoError(t, s.Set(ctx, Setting{"MAP_FRAME_TYPE", "plain"}, Setting{"MAP_FRAME_PEN", "0p"}))
	require.NoError(t, s.Module(ctx, strings.NewReader("116 40\n"), "plot", "-St0.7c"))
	require.NoError(t, s.End(ctx))
	require.NoError(t, s.End(ctx), "second End is a no-op")

	assert.Equal(t, [][]string{
		{"begin", "out/map", "png", "A,E300"},
		{"set", "MAP_FRAME_TYPE", "plain", "MAP_FRAME_PEN", "0p"},
		{"plot", "-St0.7c"},
		{"end"},
	}, runner.calls)
	assert.Equal(t, "116 40\n", runner.stdins[2])

	err = s.Module(ctx, nil, "coast", "-W1p")
	assert.Error(t, err)
}

func TestBeginWithoutOptions(t *testing.T) {
	runner := &recordingRunner{}
	_, err := Begin(context.Background(), runner, "map", "pdf")
	require.NoError(t, err)
	assert.Equal(t, []string{"begin", "map", "pdf"}, runner.calls[0])
}

func TestBeginFailure(t *testing.T) {
	runner := &recordingRunner{failOn: "begin"}
	_, err := Begin(context.Background(), runner, "map", "png")

	var cmdErr *CommandError
	require.ErrorAs(t, err, &cmdErr)
	assert.Equal(t, "boom", cmdErr.Stderr)
}

func TestSetWithoutSettings(t *testing.T) {
	runner := &recordingRunner{}
	s, err := Begin(context.Background(), runner, "map", "png")
	require.NoError(t, err)

	require.NoError(t, s.Set(context.Background()))
	assert.Len(t, runner.calls, 1)
}

func TestAbortEndsOpenSession(t *testing.T) {
	runner := &recordingRunner{}
	s, err := Begin(context.Background(), runner, "map", "png")
	require.NoError(t, err)

	s.Abort()
	s.Abort()

	assert.Equal(t, [][]string{{"begin", "map", "png"}, {"end"}}, runner.calls)
}

func TestCommandErrorMessage(t *testing.T) {
	e := &CommandError{Args: []string{"grdcut", "@earth_relief_03s"}, ExitCode: 71, Stderr: "grdcut [ERROR]: download failed"}
	assert.Equal(t, "gmt grdcut @earth_relief_03s failed (exit 71): grdcut [ERROR]: download failed", e.Error())

	inner := errors.New("executable file not found in $PATH")
	e = &CommandError{Args: []string{"begin"}, ExitCode: -1, Err: inner}
	assert.Contains(t, e.Error(), "executable file not found")
	assert.ErrorIs(t, e, inner)
}

func writeFakeGMT(t *testing.T, script string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script stand-in for gmt needs a POSIX shell")
	}
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
	path := filepath.Join(t.TempDir(), "gmt")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+script), 0o755))
	return path
}

func TestExecRunnerCapturesStdout(t *testing.T) {
	bin := writeFakeGMT(t, `echo "args: $*"; cat`)
	runner := NewExecRunner(bin)

	out, err := runner.Run(context.Background(), strings.NewReader("from stdin"), "grdinfo", "-C", "grid.nc")
	require.NoError(t, err)
	assert.Equal(t, "args: grdinfo -C grid.nc\nfrom stdin", string(out))
}

func TestExecRunnerFailure(t *testing.T) {
	bin := writeFakeGMT(t, `echo "grdcut [ERROR]: cannot reach server" >&2; exit 3`)
	runner := NewExecRunner(bin)

	_, err := runner.Run(context.Background(), nil, "grdcut")

	var cmdErr *CommandError
	require.ErrorAs(t, err, &cmdErr)
	assert.Equal(t, 3, cmdErr.ExitCode)
	assert.Equal(t, "grdcut [ERROR]: cannot reach server", cmdErr.Stderr)
}

func TestExecRunnerEnv(t *testing.T) {
	bin := writeFakeGMT(t, `printf "%s" "$GMT_SESSION_NAME"`)
	runner := NewExecRunner(bin).WithEnv("GMT_SESSION_NAME=stnmap-test")

	out, err := runner.Run(context.Background(), nil, "begin")
	require.NoError(t, err)
	assert.Equal(t, "stnmap-test", string(out))
}

func TestExecRunnerMissingBinary(t *testing.T) {
	runner := NewExecRunner(filepath.Join(t.TempDir(), "no-such-gmt"))

	_, err := runner.Run(context.Background(), nil, "begin")

	var cmdErr *CommandError
	require.ErrorAs(t, err, &cmdErr)
	assert.Equal(t, -1, cmdErr.ExitCode)
}

func TestNewExecRunnerDefaultBinary(t *testing.T) {
	assert.Equal(t, "gmt", NewExecRunner("").Binary)
}

// Relative grid, CPT and output paths only work if gmt shares our working
// directory.
func TestExecRunnerUsesCallerWorkingDirectory(t *testing.T) {
	bin := writeFakeGMT(t, `pwd -P`)
	wd, err := os.Getwd()
	require.NoError(t, err)
	want, err := filepath.EvalSymlinks(wd)
	require.NoError(t, err)

	out, err := NewExecRunner(bin).Run(context.Background(), nil, "grdinfo")
	require.NoError(t, err)
	assert.Equal(t, want, strings.TrimSpace(string(out)))
}
