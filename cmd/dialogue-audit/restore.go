// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/dialogue-audit/internal/dataset"
	"github.com/pdiddy/dialogue-audit/internal/persist"
)

var restoreCmd = &cobra.Command{
	Use:   "restore <backup-file>",
	Short: "Restore the dataset from a backup",
	Long: `Restore replaces the dataset with the content of a backup written by
a previous run. The backup must parse as a valid dataset.`,
	Args: cobra.ExactArgs(1),
	RunE: runRestore,
}

func init() {
	rootCmd.AddCommand(restoreCmd)
}

func runRestore(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if _, err := dataset.Load(args[0]); err != nil {
		return fmt.Errorf("backup is not a valid dataset: %w", err)
	}
	if err := persist.Restore(args[0], cfg.Persistence.DatasetPath); err != nil {
		return err
	}
	fmt.Printf("Restored %s from %s\n", cfg.Persistence.DatasetPath, args[0])
	return nil
}
