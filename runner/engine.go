package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"smriti/logging"

	"github.com/fatih/color"
)

var ErrAliasNotFound = errors.New("alias not found")

// CommandSource resolves an alias to its stored command template. An unknown
// alias must yield an error matching ErrAliasNotFound.
type CommandSource interface {
	CommandText(alias string) (string, error)
}

// State is the stage an engine invocation reached.
type State int

const (
	StateResolving State = iota
	StateSubstituting
	StateRunning
	StateSucceeded
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateResolving:
		return "resolving"
	case StateSubstituting:
		return "substituting"
	case StateRunning:
		return "running"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// ShellError reports a command that ran but did not succeed.
type ShellError struct {
	ExitCode int
	Signaled bool
	Stderr   string
}

func (e *ShellError) Error() string {
	if e.Signaled {
		return "command terminated by signal"
	}
	return fmt.Sprintf("command failed with status %d", e.ExitCode)
}

// Result describes one invocation. Line is empty when substitution was
// never reached.
type Result struct {
	Alias    string
	Line     string
	State    State
	Stdout   string
	Stderr   string
	ExitCode int
}

type Engine struct {
	src    CommandSource
	shell  string
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	echo   io.Writer
}

type Option func(*Engine)

// WithShell sets the shell binary invoked as `<shell> -c <line>`.
func WithShell(shell string) Option {
	return func(e *Engine) {
		if shell != "" {
			e.shell = shell
		}
	}
}

// WithOutput sets where captured stdout and stderr are relayed.
func WithOutput(stdout, stderr io.Writer) Option {
	return func(e *Engine) {
		e.stdout = stdout
		e.stderr = stderr
	}
}

func WithStdin(r io.Reader) Option {
	return func(e *Engine) { e.stdin = r }
}

// WithEcho prints the final command line to w before it runs.
func WithEcho(w io.Writer) Option {
	return func(e *Engine) { e.echo = w }
}

func NewEngine(src CommandSource, opts ...Option) *Engine {
	e := &Engine{
		src:    src,
		shell:  "sh",
		stdin:  os.Stdin,
		stdout: os.Stdout,
		stderr: os.Stderr,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run resolves alias, substitutes args into its placeholders and runs the
// resulting line through the shell, waiting for it to finish. The returned
// Result is never nil; err is ErrAliasNotFound, *InsufficientArgsError or
// *ShellError for the expected failures.
func (e *Engine) Run(ctx context.Context, alias string, args []string) (*Result, error) {
	res := &Result{Alias: alias, State: StateResolving}

	template, err := e.src.CommandText(alias)
	if err != nil {
		res.State = StateFailed
		return res, err
	}

	res.State = StateSubstituting
	line, err := Substitute(template, args)
	if err != nil {
		res.State = StateFailed
		var argsErr *InsufficientArgsError
		if errors.As(err, &argsErr) {
			argsErr.Alias = alias
		}
		return res, err
	}
	res.Line = line

	res.State = StateRunning
	if e.echo != nil {
		fmt.Fprintln(e.echo, color.GreenString(line))
	}
	logging.Debug().Str("alias", alias).Str("line", line).Str("shell", e.shell).Msg("running command")

	out, err := Capture(ctx, e.shell, line, e.stdin)
	if err != nil {
		res.State = StateFailed
		return res, fmt.Errorf("failed to start %s: %w", e.shell, err)
	}
	res.Stdout = out.Stdout
	res.Stderr = out.Stderr
	res.ExitCode = out.ExitCode

	if out.Stdout != "" {
		io.WriteString(e.stdout, out.Stdout)
	}
	if out.Stderr != "" {
		io.WriteString(e.stderr, out.Stderr)
	}

	if !out.Success() {
		res.State = StateFailed
		logging.Debug().Str("alias", alias).Int("exit_code", out.ExitCode).Msg("command failed")
		return res, &ShellError{
			ExitCode: out.ExitCode,
			Signaled: out.Signaled,
			Stderr:   strings.TrimRight(out.Stderr, "\n"),
		}
	}

	res.State = StateSucceeded
	return res, nil
}
