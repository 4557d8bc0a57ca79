// Package gmt drives the Generic Mapping Tools command line.
package gmt

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/rs/zerolog/log"
)

// Runner executes one gmt module invocation and returns its stdout.
type Runner interface {
	Run(ctx context.Context, stdin io.Reader, args ...string) ([]byte, error)
}

// ExecRunner runs the gmt executable as a child process.
type ExecRunner struct {
	Binary string
	Env    []string
}

func NewExecRunner(binary string) *ExecRunner {
	if binary == "" {
		binary = "gmt"
	}
	return &ExecRunner{Binary: binary}
}

func (r *ExecRunner) Run(ctx context.Context, stdin io.Reader, args ...string) ([]byte, error) {
	log.Debug().Str("cmd", r.Binary+" "+strings.Join(args, " ")).Msg("Running gmt")

	cmd := exec.CommandContext(ctx, r.Binary, args...)
	cmd.Stdin = stdin
	if len(r.Env) > 0 {
		cmd.Env = append(os.Environ(), r.Env...)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		exitCode := -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			exitCode = exitErr.ExitCode()
		}
		return stdout.Bytes(), &CommandError{
			Args:     args,
			ExitCode: exitCode,
			Stderr:   strings.TrimSpace(stderr.String()),
			Err:      err,
		}
	}

	if s := strings.TrimSpace(stderr.String()); s != "" {
		log.Debug().Str("module", firstArg(args)).Msg(s)
	}
	return stdout.Bytes(), nil
}

// WithEnv returns a copy of the runner with extra environment entries.
func (r *ExecRunner) WithEnv(env ...string) *ExecRunner {
	cp := *r
	cp.Env = append(append([]string{}, r.Env...), env...)
	return &cp
}

func firstArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}
