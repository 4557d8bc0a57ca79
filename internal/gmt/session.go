package gmt

import (
	"context"
	"fmt"
	"io"
	"strings"
)

// Session is one GMT modern-mode figure between "gmt begin" and "gmt end".
// Modules called through it draw onto that figure.
type Session struct {
	runner Runner
	prefix string
	format string
	opts   []string
	open   bool
}

// Begin starts a modern-mode session writing prefix.format. opts are the
// psconvert options gmt begin accepts (for example "A" to crop, "E300").
func Begin(ctx context.Context, runner Runner, prefix, format string, opts ...string) (*Session, error) {
	args := []string{"begin", prefix, format}
	if len(opts) > 0 {
		args = append(args, strings.Join(opts, ","))
	}
	if _, err := runner.Run(ctx, nil, args...); err != nil {
		return nil, fmt.Errorf("starting gmt session: %w", err)
	}
	return &Session{runner: runner, prefix: prefix, format: format, opts: opts, open: true}, nil
}

// Set changes GMT defaults for the rest of the session.
func (s *Session) Set(ctx context.Context, settings ...Setting) error {
	if len(settings) == 0 {
		return nil
	}
	args := []string{"set"}
	for _, kv := range settings {
		args = append(args, kv.Key, kv.Value)
	}
	_, err := s.runner.Run(ctx, nil, args...)
	return err
}

// Module runs a plotting module such as grdimage or coast.
func (s *Session) Module(ctx context.Context, stdin io.Reader, module string, args ...string) error {
	if !s.open {
		return fmt.Errorf("gmt %s: session already ended", module)
	}
	_, err := s.runner.Run(ctx, stdin, append([]string{module}, args...)...)
	return err
}

// End finishes the figure and writes the output file.
func (s *Session) End(ctx context.Context) error {
	if !s.open {
		return nil
	}
	s.open = false
	if _, err := s.runner.Run(ctx, nil, "end"); err != nil {
		return fmt.Errorf("finishing gmt session: %w", err)
	}
	return nil
}

// Abort ends the session without caring about the result. Used on error
// paths so GMT does not leave a stale session directory behind.
func (s *Session) Abort() {
	if s.open {
		s.open = false
		_, _ = s.runner.Run(context.Background(), nil, "end")
	}
}

type Setting struct {
	Key   string
	Value string
}
