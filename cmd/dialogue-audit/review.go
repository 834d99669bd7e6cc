// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/dialogue-audit/internal/dataset"
	"github.com/pdiddy/dialogue-audit/internal/review"
)

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Approve, edit or skip findings waiting for a human",
	Long: `Review walks the MEDIUM and reported findings of a run one at a time.
Approved and edited fixes are written to the dataset immediately, with a
backup and a parse check, and each decision is recorded in the ledger.

Keys: a approve, e edit, s skip, v show dialogue, q quit.`,
	RunE: runReview,
}

func init() {
	reviewCmd.Flags().String("run", "", "run id (default: latest run)")

	rootCmd.AddCommand(reviewCmd)
}

func runReview(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	runID, _ := cmd.Flags().GetString("run")
	ctx := cmd.Context()

	store, err := openLedger(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	pending, err := store.Pending(ctx, runID)
	if err != nil {
		return err
	}
	if len(pending) == 0 {
		fmt.Println("Nothing to review.")
		return nil
	}

	ds, err := dataset.Load(cfg.Persistence.DatasetPath)
	if err != nil {
		return err
	}

	decider := review.LedgerDecider{Applier: newPersister(cfg), Ledger: store}
	outcomes, err := review.Run(ctx, pending, decider, cfg.Thresholds, review.WithDataset(ds))
	if err != nil {
		return err
	}
	fmt.Println(review.Summary(outcomes))
	return nil
}
