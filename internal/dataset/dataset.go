// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package dataset reads and writes the scenario YAML file.
package dataset

import (
	"fmt"
	"os"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/dialogue-audit/internal/fileutil"
	"github.com/pdiddy/dialogue-audit/pkg/types"
)

// Parse decodes and validates a dataset document.
func Parse(data []byte) (types.Dataset, error) {
	var ds types.Dataset
	if err := yaml.Unmarshal(data, &ds); err != nil {
		return types.Dataset{}, fmt.Errorf("parsing dataset: %w", err)
	}
	if err := ds.Validate(); err != nil {
		return types.Dataset{}, fmt.Errorf("validating dataset: %w", err)
	}
	return ds, nil
}

// Load reads and validates the dataset at path.
func Load(path string) (types.Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return types.Dataset{}, fmt.Errorf("reading dataset: %w", err)
	}
	return Parse(data)
}

// Save writes ds to path atomically.
func Save(path string, ds types.Dataset) error {
	if err := ds.Validate(); err != nil {
		return fmt.Errorf("validating dataset: %w", err)
	}
	data, err := yaml.Marshal(&ds)
	if err != nil {
		return fmt.Errorf("marshaling dataset: %w", err)
	}
	return fileutil.WriteAtomic(path, data, fileutil.FileMode(path, 0o644))
}

// Select returns the scenarios with the given ids in dataset order, and the
// ids that were not found.
func Select(ds types.Dataset, ids []string) (found []types.Scenario, missing []string) {
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	seen := make(map[string]bool, len(ids))
	for _, s := range ds.Scenarios {
		if want[s.ID] {
			found = append(found, s)
			seen[s.ID] = true
		}
	}
	for _, id := range ids {
		if !seen[id] {
			missing = append(missing, id)
		}
	}
	return found, missing
}

// ByCategory returns the ids of scenarios in any of the categories, in
// dataset order.
func ByCategory(ds types.Dataset, categories ...string) []string {
	want := make(map[string]bool, len(categories))
	for _, c := range categories {
		want[c] = true
	}
	var ids []string
	for _, s := range ds.Scenarios {
		if want[s.Category] {
			ids = append(ids, s.ID)
		}
	}
	return ids
}

// Categories counts scenarios per category.
func Categories(ds types.Dataset) map[string]int {
	out := make(map[string]int)
	for _, s := range ds.Scenarios {
		out[s.Category]++
	}
	return out
}
