//go:build mage

package main

import (
	"fmt"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// datasetPath is the scenario file the audit targets run against.
const datasetPath = "data/scenarios.yaml"

// Audit groups the pipeline targets.
type Audit mg.Namespace

func cli(args ...string) error {
	mg.Deps(Build)
	return sh.RunV("./"+binDir+"/"+binName, append([]string{"--dataset", datasetPath}, args...)...)
}

// Run audits the whole dataset with parallel workers and applies HIGH fixes.
func (Audit) Run() error {
	return cli("orchestrate")
}

// DryRun audits the whole dataset without writing anything.
func (Audit) DryRun() error {
	return cli("orchestrate", "--dry-run")
}

// Phase audits one category phase (1-3) in dry-run mode.
func (Audit) Phase(n int) error {
	if n < 1 || n > 3 {
		return fmt.Errorf("phase must be 1, 2 or 3, got %d", n)
	}
	return cli("orchestrate", "--dry-run", fmt.Sprintf("--phase=%d", n))
}

// Review opens the approval UI for the latest run.
func (Audit) Review() error {
	return cli("review")
}

// Report lists recorded runs.
func (Audit) Report() error {
	return cli("report")
}
