// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package worker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/pdiddy/dialogue-audit/internal/audit"
	"github.com/pdiddy/dialogue-audit/pkg/types"
)

// Transport delivers a task to a worker and returns its output.
type Transport interface {
	Dispatch(ctx context.Context, task Task) (types.WorkerOutput, error)
}

// InProcess runs tasks on a goroutine of the calling process. The output
// file is still written when the task names one.
type InProcess struct {
	Dataset types.Dataset
	Runner  *audit.Runner
}

// Dispatch implements Transport.
func (p *InProcess) Dispatch(ctx context.Context, task Task) (types.WorkerOutput, error) {
	out := Run(ctx, task, p.Dataset, p.Runner)
	if err := ctx.Err(); err != nil {
		return out, err
	}
	if task.OutputPath != "" {
		if err := WriteOutput(task.OutputPath, out); err != nil {
			return out, err
		}
	}
	return out, nil
}

// Subprocess runs each task in its own OS process by invoking the worker
// subcommand of Binary and reading the output file it writes.
type Subprocess struct {
	// Binary is the executable. Empty means the running executable.
	Binary string

	// Args are placed before the worker subcommand.
	Args []string

	// DatasetPath is passed to the worker as --dataset.
	DatasetPath string

	// Env is appended to the parent environment.
	Env []string

	// Stderr receives the worker's stderr. Nil discards it.
	Stderr io.Writer
}

// Command returns the argument list for task, without the binary.
func (s *Subprocess) Command(task Task) []string {
	args := append([]string{}, s.Args...)
	args = append(args,
		"worker",
		"--worker-id="+strconv.Itoa(task.WorkerID),
		"--scenarios="+strings.Join(task.ScenarioIDs, ","),
		"--output-path="+task.OutputPath,
	)
	if s.DatasetPath != "" {
		args = append(args, "--dataset="+s.DatasetPath)
	}
	return args
}

// Dispatch implements Transport. A worker that exits non-zero but still
// wrote its output file is not a transport failure: its recorded errors
// travel in the output.
func (s *Subprocess) Dispatch(ctx context.Context, task Task) (types.WorkerOutput, error) {
	if task.OutputPath == "" {
		return types.WorkerOutput{}, errors.New("subprocess worker needs an output path")
	}
	bin := s.Binary
	if bin == "" {
		self, err := os.Executable()
		if err != nil {
			return types.WorkerOutput{}, fmt.Errorf("locating executable: %w", err)
		}
		bin = self
	}
	// A stale file from an earlier run must not pass for this run's output.
	if err := os.Remove(task.OutputPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return types.WorkerOutput{}, fmt.Errorf("clearing worker output: %w", err)
	}

	cmd := exec.CommandContext(ctx, bin, s.Command(task)...)
	cmd.Env = append(os.Environ(), s.Env...)
	cmd.Stdout = io.Discard
	cmd.Stderr = s.Stderr
	cmd.WaitDelay = 5 * time.Second

	runErr := cmd.Run()
	if err := ctx.Err(); err != nil {
		return types.WorkerOutput{}, err
	}
	out, readErr := ReadOutput(task.OutputPath)
	if readErr != nil {
		if runErr != nil {
			return types.WorkerOutput{}, fmt.Errorf("worker %d: %w", task.WorkerID, runErr)
		}
		return types.WorkerOutput{}, readErr
	}
	if runErr != nil && len(out.Errors) == 0 {
		out.Errors = append(out.Errors, types.WorkerError{
			ScenarioID: AllScenarios,
			Message:    runErr.Error(),
		})
	}
	return out, nil
}

// DispatchWithTimeout dispatches task through t, bounded by timeout. It
// never returns an error: a timeout, crash or missing output becomes an
// ErrorOutput so one bad worker cannot sink the others.
func DispatchWithTimeout(ctx context.Context, t Transport, task Task, timeout time.Duration) types.WorkerOutput {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	out, err := t.Dispatch(ctx, task)
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return ErrorOutput(task, fmt.Errorf("worker %d timed out after %s", task.WorkerID, timeout))
	case err != nil:
		return ErrorOutput(task, err)
	}
	out.WorkerID = task.WorkerID
	return out
}
