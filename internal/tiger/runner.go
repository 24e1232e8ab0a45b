package tiger

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"time"
)

// Outcome is the captured result of one child process run. Exit status is
// recorded for logging but is not part of the success contract; the stream
// contents are.
type Outcome struct {
	Stdout   string
	Stderr   string
	TimedOut bool
	ExitCode int
}

// Runner abstracts the subprocess boundary: submit a command with a
// wall-clock budget, get back the captured outcome. Parsing and aggregation
// are tested against fakes of this interface, never real processes.
type Runner interface {
	Run(ctx context.Context, name string, args []string, timeout time.Duration) (Outcome, error)
}

// killDelay bounds how long a timed-out child may linger between the
// interrupt and the follow-up SIGKILL.
const killDelay = 3 * time.Second

// ExecRunner runs commands with os/exec. The child gets no stdin, its
// streams are captured in full, and it is killed when the budget elapses —
// a timed-out run never leaks a process.
type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, name string, args []string, timeout time.Duration) (Outcome, error) {
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, name, args...)
	cmd.Stdin = nil
	cmd.WaitDelay = killDelay

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	out := Outcome{Stdout: stdout.String(), Stderr: stderr.String()}

	if ctxErr := runCtx.Err(); ctxErr != nil {
		if errors.Is(ctxErr, context.DeadlineExceeded) {
			out.TimedOut = true
			return out, nil
		}
		// Parent cancellation: the child was killed for reasons other than
		// the budget. Must not read as a clean run.
		return out, ctxErr
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			// The tool ran and exited non-zero. Not a spawn failure.
			out.ExitCode = exitErr.ExitCode()
			return out, nil
		}
		return out, err
	}
	return out, nil
}
