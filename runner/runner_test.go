package runner

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractParams(t *testing.T) {
	tests := []struct {
		name string
		cmd  string
		want []string
	}{
		{"none", "ls -la", nil},
		{"single", "echo {name}", []string{"name"}},
		{"ordered", "scp {file} {host}:{dest}", []string{"file", "host", "dest"}},
		{"repeated", "echo {a} {b} {a}", []string{"a", "b"}},
		{"invalid names ignored", "echo {1x} {} {ok_1} ${HOME}", []string{"ok_1", "HOME"}},
		{"double braces", "echo {{x}}", []string{"x"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractParams(tt.cmd))
		})
	}
}

func TestSubstitute(t *testing.T) {
	tests := []struct {
		name string
		cmd  string
		args []string
		want string
	}{
		{"two params", "echo {a} {b}", []string{"x", "y"}, "echo x y"},
		{"repeated param binds once", "echo {a} {a}", []string{"z"}, "echo z z"},
		{"first occurrence order", "echo {b} {a} {b}", []string{"1", "2"}, "echo 1 2 1"},
		{"extra args ignored", "echo {a}", []string{"x", "y", "z"}, "echo x"},
		{"no placeholders with args", "echo hi", []string{"x"}, "echo hi"},
		{"no placeholders without args", "echo hi | wc -c", nil, "echo hi | wc -c"},
		{"value is not re-expanded", "echo {a} {b}", []string{"{b}", "y"}, "echo {b} y"},
		{"no escaping", "echo {a}", []string{"$(whoami); ls"}, "echo $(whoami); ls"},
		{"dollar in value", "echo {a}", []string{"$1"}, "echo $1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Substitute(tt.cmd, tt.args)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSubstituteInsufficientArgs(t *testing.T) {
	_, err := Substitute("echo {a} {b} {c}", []string{"x"})

	var argsErr *InsufficientArgsError
	require.True(t, errors.As(err, &argsErr))
	assert.Equal(t, 3, argsErr.Want())
	assert.Equal(t, 1, argsErr.Got)
	assert.Equal(t, 2, argsErr.Missing())
	assert.Contains(t, err.Error(), "[b c]")
}

func TestInsufficientArgsErrorHint(t *testing.T) {
	err := &InsufficientArgsError{Alias: "deploy", Params: []string{"env"}}
	assert.Contains(t, err.Error(), "smriti search -a deploy")
}

func TestSubstituteParams(t *testing.T) {
	got := SubstituteParams("ssh {user}@{host}", map[string]string{"user": "root"})
	assert.Equal(t, "ssh root@{host}", got)
}

func TestCapture(t *testing.T) {
	out, err := Capture(context.Background(), "sh", "echo out; echo err >&2", nil)
	require.NoError(t, err)
	assert.True(t, out.Success())
	assert.Equal(t, "out\n", out.Stdout)
	assert.Equal(t, "err\n", out.Stderr)
}

func TestCaptureHonorsShellSyntax(t *testing.T) {
	out, err := Capture(context.Background(), "sh", "printf 'a\\nb\\n' | wc -l | tr -d ' '", nil)
	require.NoError(t, err)
	assert.Equal(t, "2\n", out.Stdout)
}

func TestCaptureExitCode(t *testing.T) {
	out, err := Capture(context.Background(), "sh", "echo boom >&2; exit 3", nil)
	require.NoError(t, err)
	assert.False(t, out.Success())
	assert.Equal(t, 3, out.ExitCode)
	assert.False(t, out.Signaled)
	assert.Equal(t, "boom\n", out.Stderr)
}

func TestCaptureSignaled(t *testing.T) {
	out, err := Capture(context.Background(), "sh", "kill -9 $$", nil)
	require.NoError(t, err)
	assert.False(t, out.Success())
	assert.True(t, out.Signaled)
}

func TestCaptureMissingShell(t *testing.T) {
	_, err := Capture(context.Background(), "/definitely/not/a/shell", "true", nil)
	assert.Error(t, err)
}

func TestCaptureStdin(t *testing.T) {
	out, err := Capture(context.Background(), "sh", "cat", strings.NewReader("piped"))
	require.NoError(t, err)
	assert.Equal(t, "piped", out.Stdout)
}

func TestStream(t *testing.T) {
	ch := make(chan OutputMsg)
	go Stream("sh", "echo one; echo two >&2; exit 1", ch)

	var stdout, stderr []string
	var last OutputMsg
	for msg := range ch {
		if msg.Done {
			last = msg
			continue
		}
		if msg.IsErr {
			stderr = append(stderr, msg.Line)
		} else {
			stdout = append(stdout, msg.Line)
		}
	}

	assert.Equal(t, []string{"one"}, stdout)
	assert.Equal(t, []string{"two"}, stderr)
	assert.True(t, last.Done)
	assert.NotEmpty(t, last.ErrMsg)
}

func collectStream(t *testing.T, line string) (lines []OutputMsg, last OutputMsg) {
	t.Helper()
	ch := make(chan OutputMsg)
	go Stream("sh", line, ch)

	timeout := time.After(10 * time.Second)
	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				return lines, last
			}
			if msg.Done {
				last = msg
				continue
			}
			lines = append(lines, msg)
		case <-timeout:
			t.Fatalf("stream did not finish after %d messages", len(lines))
		}
	}
}

func TestStreamLongLines(t *testing.T) {
	lines, last := collectStream(t,
		"head -c 70000 /dev/zero | tr '\\000' a; echo; head -c 200000 /dev/zero | tr '\\000' b; echo")

	require.Len(t, lines, 2)
	assert.Len(t, lines[0].Line, 70000)
	assert.Len(t, lines[1].Line, 200000)
	assert.True(t, last.Done)
	assert.Empty(t, last.ErrMsg)
}

func TestStreamOversizedLineDrainsPipe(t *testing.T) {
	lines, last := collectStream(t,
		"head -c 2000000 /dev/zero | tr '\\000' a; echo; echo after >&2")

	var scanErr, after bool
	for _, msg := range lines {
		if msg.ErrMsg != "" {
			scanErr = true
		}
		if msg.IsErr && msg.Line == "after" {
			after = true
		}
	}
	assert.True(t, scanErr)
	assert.True(t, after)
	assert.True(t, last.Done)
	assert.Empty(t, last.ErrMsg)
}
