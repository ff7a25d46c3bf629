package runner

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"regexp"
)

var paramRegex = regexp.MustCompile(`\{([a-zA-Z_][a-zA-Z0-9_]*)\}`)

// ExtractParams returns the distinct {param} names of a command string in
// order of first appearance.
func ExtractParams(cmd string) []string {
	matches := paramRegex.FindAllStringSubmatch(cmd, -1)
	seen := make(map[string]bool)
	var params []string
	for _, m := range matches {
		name := m[1]
		if !seen[name] {
			seen[name] = true
			params = append(params, name)
		}
	}
	return params
}

// InsufficientArgsError is returned when a command has more distinct
// placeholders than arguments were supplied.
type InsufficientArgsError struct {
	Alias  string
	Params []string
	Got    int
}

func (e *InsufficientArgsError) Want() int    { return len(e.Params) }
func (e *InsufficientArgsError) Missing() int { return len(e.Params) - e.Got }

func (e *InsufficientArgsError) Error() string {
	msg := fmt.Sprintf("not enough arguments to replace all placeholders: want %d, got %d (missing %v)",
		e.Want(), e.Got, e.Params[e.Got:])
	if e.Alias != "" {
		msg += fmt.Sprintf("\nuse `smriti search -a %s` to see what it expects", e.Alias)
	}
	return msg
}

// Substitute binds args positionally to the distinct placeholders of cmd and
// replaces every occurrence in a single pass. Extra args are ignored. Values
// are inserted as-is: no quoting or escaping is applied.
func Substitute(cmd string, args []string) (string, error) {
	params := ExtractParams(cmd)
	if len(params) == 0 {
		return cmd, nil
	}
	if len(args) < len(params) {
		return "", &InsufficientArgsError{Params: params, Got: len(args)}
	}

	values := make(map[string]string, len(params))
	for i, name := range params {
		values[name] = args[i]
	}
	return SubstituteParams(cmd, values), nil
}

// SubstituteParams replaces {param} with provided values. Placeholders
// without a value are left untouched.
func SubstituteParams(cmd string, values map[string]string) string {
	return paramRegex.ReplaceAllStringFunc(cmd, func(token string) string {
		if v, ok := values[token[1:len(token)-1]]; ok {
			return v
		}
		return token
	})
}

// Output is the captured result of a finished shell process.
type Output struct {
	Stdout   string
	Stderr   string
	ExitCode int
	// Signaled is set when the process was terminated by a signal.
	Signaled bool
}

func (o *Output) Success() bool {
	return o.ExitCode == 0 && !o.Signaled
}

// Capture runs line through `shell -c` and waits for it, collecting stdout
// and stderr separately. A non-zero exit is reported in Output, not as an
// error; err is only set when the process could not run at all.
func Capture(ctx context.Context, shell, line string, stdin io.Reader) (*Output, error) {
	c := exec.CommandContext(ctx, shell, "-c", line)

	var stdout, stderr bytes.Buffer
	c.Stdin = stdin
	c.Stdout = &stdout
	c.Stderr = &stderr

	err := c.Run()
	out := &Output{}
	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return nil, err
		}
		out.ExitCode = exitErr.ExitCode()
		out.Signaled = out.ExitCode == -1
	}
	out.Stdout = stdout.String()
	out.Stderr = stderr.String()
	return out, nil
}

// maxStreamLine bounds a single streamed line. Longer lines end the stream
// for that pipe with an error message.
const maxStreamLine = 1 << 20

// OutputMsg is sent through the channel for each line of output
type OutputMsg struct {
	Line   string
	IsErr  bool
	Done   bool
	ErrMsg string
}

// Stream executes a command and streams output through a channel
func Stream(shell, line string, output chan<- OutputMsg) {
	defer close(output)

	c := exec.Command(shell, "-c", line)

	stdout, err := c.StdoutPipe()
	if err != nil {
		output <- OutputMsg{Done: true, ErrMsg: err.Error()}
		return
	}

	stderr, err := c.StderrPipe()
	if err != nil {
		output <- OutputMsg{Done: true, ErrMsg: err.Error()}
		return
	}

	if err := c.Start(); err != nil {
		output <- OutputMsg{Done: true, ErrMsg: err.Error()}
		return
	}

	done := make(chan struct{}, 2)

	streamReader := func(r io.Reader, isErr bool) {
		scanner := bufio.NewScanner(r)
		scanner.Buffer(make([]byte, 0, 64*1024), maxStreamLine)
		for scanner.Scan() {
			output <- OutputMsg{Line: scanner.Text(), IsErr: isErr}
		}
		if err := scanner.Err(); err != nil {
			output <- OutputMsg{IsErr: true, ErrMsg: err.Error()}
			// Keep the pipe drained so the child can exit.
			io.Copy(io.Discard, r)
		}
		done <- struct{}{}
	}

	go streamReader(stdout, false)
	go streamReader(stderr, true)

	<-done
	<-done

	if err := c.Wait(); err != nil {
		output <- OutputMsg{Done: true, ErrMsg: err.Error()}
	} else {
		output <- OutputMsg{Done: true}
	}
}
