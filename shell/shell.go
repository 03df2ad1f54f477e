// Package shell runs the interactive question loop.
package shell

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

// DefaultPrompt is printed before each question.
const DefaultPrompt = "Ask a question about FIBO (or 'q' to quit): "

// maxLineSize bounds a single question.
const maxLineSize = 64 * 1024

// Asker answers one question.
type Asker interface {
	Ask(ctx context.Context, question string) string
}

// Shell reads questions line by line and prints answers.
type Shell struct {
	asker  Asker
	in     io.Reader
	out    io.Writer
	prompt string
	banner string
}

// Option configures a Shell.
type Option func(*Shell)

// WithPrompt replaces the default prompt.
func WithPrompt(prompt string) Option {
	return func(s *Shell) {
		s.prompt = prompt
	}
}

// WithBanner prints banner once before the first prompt.
func WithBanner(banner string) Option {
	return func(s *Shell) {
		s.banner = banner
	}
}

// New creates a shell reading from in and writing to out.
func New(asker Asker, in io.Reader, out io.Writer, opts ...Option) *Shell {
	s := &Shell{
		asker:  asker,
		in:     in,
		out:    out,
		prompt: DefaultPrompt,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// IsQuit reports whether line ends the session.
func IsQuit(line string) bool {
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "q", "quit", "exit":
		return true
	}
	return false
}

// Run loops until a quit command, end of input or ctx cancellation.
func (s *Shell) Run(ctx context.Context) error {
	if s.banner != "" {
		fmt.Fprintln(s.out, s.banner)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	lines := make(chan string)
	errCh := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(s.in)
		scanner.Buffer(make([]byte, 0, 4096), maxLineSize)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		errCh <- scanner.Err()
	}()

	for {
		fmt.Fprint(s.out, "\n"+s.prompt)

		var line string
		var ok bool
		select {
		case <-ctx.Done():
			fmt.Fprintln(s.out)
			return nil
		case line, ok = <-lines:
		}
		if !ok {
			fmt.Fprintln(s.out)
			select {
			case err := <-errCh:
				if err != nil {
					return fmt.Errorf("read input: %w", err)
				}
			default:
			}
			return nil
		}

		if IsQuit(line) {
			return nil
		}
		q := strings.TrimSpace(line)
		if q == "" {
			continue
		}
		fmt.Fprintln(s.out, s.asker.Ask(ctx, q))
	}
}
