// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/dialogue-audit/internal/dataset"
	"github.com/pdiddy/dialogue-audit/internal/logging"
	"github.com/pdiddy/dialogue-audit/internal/worker"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Audit a slice of scenarios and write the findings file",
	Long: `Worker runs the full validator set over the given scenarios in sequence
and writes exactly one JSON findings file to --output-path. It is normally
started by the orchestrate subcommand, one process per slice.

The exit code is 0 on success. On failure it is 1, and the output file is
still written with an error entry when possible.`,
	Hidden: true,
	RunE:   runWorker,
}

func init() {
	f := workerCmd.Flags()
	f.Int("worker-id", 0, "worker number reported in the output")
	f.String("scenarios", "", "comma-separated scenario ids")
	f.String("output-path", "", "findings file to write")

	rootCmd.AddCommand(workerCmd)
}

func runWorker(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	id, _ := cmd.Flags().GetInt("worker-id")
	ids, _ := cmd.Flags().GetString("scenarios")
	outputPath, _ := cmd.Flags().GetString("output-path")
	if outputPath == "" {
		return errors.New("--output-path is required")
	}

	task := worker.Task{WorkerID: id, OutputPath: outputPath}
	for _, s := range strings.Split(ids, ",") {
		if s = strings.TrimSpace(s); s != "" {
			task.ScenarioIDs = append(task.ScenarioIDs, s)
		}
	}
	log := logging.New("worker").With("worker", id)

	fail := func(err error) error {
		if werr := worker.WriteOutput(outputPath, worker.ErrorOutput(task, err)); werr != nil {
			log.Error("writing error output", "err", werr)
		}
		return err
	}

	ds, err := dataset.Load(cfg.Persistence.DatasetPath)
	if err != nil {
		return fail(err)
	}
	runner, err := newRunner(cfg)
	if err != nil {
		return fail(err)
	}

	out := worker.Run(cmd.Context(), task, ds, runner)
	if err := worker.WriteOutput(outputPath, out); err != nil {
		return err
	}
	log.Info("worker finished",
		slog.Int("scenarios", len(task.ScenarioIDs)),
		slog.Int("findings", len(out.Findings)),
		slog.Int("errors", len(out.Errors)),
		slog.Duration("elapsed", out.Elapsed()),
	)
	if err := cmd.Context().Err(); err != nil {
		return fmt.Errorf("worker %d interrupted: %w", id, err)
	}
	return worker.Failure(out)
}
