// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package worker runs the validator set over a slice of scenarios and
// exchanges the result with the orchestrator through a JSON file.
package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/pdiddy/dialogue-audit/internal/audit"
	"github.com/pdiddy/dialogue-audit/internal/dataset"
	"github.com/pdiddy/dialogue-audit/internal/fileutil"
	"github.com/pdiddy/dialogue-audit/pkg/types"
)

// AllScenarios is the scenario id recorded when a whole worker failed.
const AllScenarios = "all"

// DefaultTimeout bounds one worker invocation.
const DefaultTimeout = 15 * time.Minute

// Task is one worker's share of an audit.
type Task struct {
	WorkerID    int
	ScenarioIDs []string
	OutputPath  string
}

// ErrNoScenarios is recorded when none of a task's scenario ids exist.
var ErrNoScenarios = errors.New("no requested scenario found in dataset")

// Run executes every validator in runner over the task's scenarios in
// sequence. Scenario ids missing from ds and validator failures are
// recorded as errors; they never abort the slice. When no id matches, the
// output is an ErrorOutput for ErrNoScenarios. Auto-fixing is always
// disabled inside a worker.
func Run(ctx context.Context, task Task, ds types.Dataset, runner *audit.Runner) types.WorkerOutput {
	start := time.Now()
	out := types.WorkerOutput{
		WorkerID:    task.WorkerID,
		ScenarioIDs: task.ScenarioIDs,
		Findings:    []types.Finding{},
	}

	scenarios, missing := dataset.Select(ds, task.ScenarioIDs)
	if len(scenarios) == 0 {
		out = ErrorOutput(task, ErrNoScenarios)
		out.ElapsedMillis = time.Since(start).Milliseconds()
		return out
	}
	for _, id := range missing {
		out.Errors = append(out.Errors, types.WorkerError{
			ScenarioID: id,
			Message:    "scenario not found in dataset",
		})
	}

	report, err := runner.Run(ctx, scenarios, types.AuditConfig{ReportOnly: true})
	out.Findings = append(out.Findings, report.Findings...)
	out.Errors = append(out.Errors, report.Errors...)
	if err != nil {
		out.Errors = append(out.Errors, types.WorkerError{
			ScenarioID: AllScenarios,
			Message:    err.Error(),
		})
	}

	out.ElapsedMillis = time.Since(start).Milliseconds()
	return out
}

// ErrorOutput is the synthetic result for a worker that produced nothing
// usable: no findings and a single error covering all its scenarios.
func ErrorOutput(task Task, err error) types.WorkerOutput {
	return types.WorkerOutput{
		WorkerID:    task.WorkerID,
		ScenarioIDs: task.ScenarioIDs,
		Findings:    []types.Finding{},
		Errors: []types.WorkerError{{
			ScenarioID: AllScenarios,
			Message:    err.Error(),
		}},
	}
}

// Failure returns the error of a worker-wide failure recorded in out, or
// nil when every error is local to a scenario or validator.
func Failure(out types.WorkerOutput) error {
	for _, e := range out.Errors {
		if e.ScenarioID == AllScenarios {
			return fmt.Errorf("worker %d failed: %s", out.WorkerID, e.Message)
		}
	}
	return nil
}

// WriteOutput writes out as indented JSON via temp file and rename.
func WriteOutput(path string, out types.WorkerOutput) error {
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling worker output: %w", err)
	}
	if err := fileutil.WriteAtomic(path, data, 0o644); err != nil {
		return fmt.Errorf("writing worker output: %w", err)
	}
	return nil
}

// ErrNoOutput is returned by ReadOutput when the worker wrote no file.
var ErrNoOutput = errors.New("worker output missing")

// ReadOutput reads a file written by WriteOutput.
func ReadOutput(path string) (types.WorkerOutput, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return types.WorkerOutput{}, fmt.Errorf("%w: %s", ErrNoOutput, path)
	}
	if err != nil {
		return types.WorkerOutput{}, fmt.Errorf("reading worker output: %w", err)
	}
	var out types.WorkerOutput
	if err := json.Unmarshal(data, &out); err != nil {
		return types.WorkerOutput{}, fmt.Errorf("parsing worker output %s: %w", path, err)
	}
	return out, nil
}
