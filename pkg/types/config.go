// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// Level is a confidence tier.
type Level string

const (
	LevelHigh   Level = "HIGH"
	LevelMedium Level = "MEDIUM"
	LevelLow    Level = "LOW"
)

// Thresholds partitions confidence scores into tiers. The same value is
// consumed by the scorer, finding triage, and the persistence gate.
type Thresholds struct {
	// High is the minimum score for unattended application (default 0.95).
	High float64 `json:"high" yaml:"high" mapstructure:"high"`

	// Medium is the minimum score for single-suggestion approval (default 0.70).
	Medium float64 `json:"medium" yaml:"medium" mapstructure:"medium"`
}

// DefaultThresholds returns the standard HIGH/MEDIUM cutoffs.
func DefaultThresholds() Thresholds {
	return Thresholds{High: 0.95, Medium: 0.70}
}

// Level classifies a score.
func (t Thresholds) Level(score float64) Level {
	switch {
	case score >= t.High:
		return LevelHigh
	case score >= t.Medium:
		return LevelMedium
	default:
		return LevelLow
	}
}

// AuditConfig controls a single validator run.
type AuditConfig struct {
	// DryRun reports what would change without writing.
	DryRun bool `json:"dry_run" yaml:"dry_run" mapstructure:"dry_run"`

	// ReportOnly disables the auto-fixer entirely.
	ReportOnly bool `json:"report_only" yaml:"report_only" mapstructure:"report_only"`

	// NoAutoApprove keeps HIGH findings out of the auto-fixer so they are
	// only reported.
	NoAutoApprove bool `json:"no_auto_approve" yaml:"no_auto_approve" mapstructure:"no_auto_approve"`

	// ScenarioIDs restricts the run to these scenarios when non-empty.
	ScenarioIDs []string `json:"scenario_ids,omitempty" yaml:"scenario_ids,omitempty" mapstructure:"scenario_ids"`

	// Categories restricts the run to these categories when non-empty.
	Categories []string `json:"categories,omitempty" yaml:"categories,omitempty" mapstructure:"categories"`

	// Validators restricts the run to these validator names when non-empty.
	Validators []string `json:"validators,omitempty" yaml:"validators,omitempty" mapstructure:"validators"`
}

// TransportKind selects how the orchestrator dispatches worker tasks.
type TransportKind string

const (
	TransportProcess   TransportKind = "process"
	TransportInProcess TransportKind = "inprocess"
)

// WorkerConfig holds per-worker settings.
type WorkerConfig struct {
	// Timeout is the hard ceiling for one worker (default 15m).
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// Transport is "process" (one OS process per worker) or "inprocess".
	Transport TransportKind `json:"transport" yaml:"transport" mapstructure:"transport"`

	// Binary is the executable spawned by the process transport. Empty
	// means the running executable.
	Binary string `json:"binary,omitempty" yaml:"binary,omitempty" mapstructure:"binary"`

	// OutputDir receives one JSON file per worker (default: a temp dir).
	OutputDir string `json:"output_dir,omitempty" yaml:"output_dir,omitempty" mapstructure:"output_dir"`
}

// OrchestratorConfig holds fan-out and pipeline settings.
type OrchestratorConfig struct {
	// Workers is the parallelism, capped to the number of scenarios (default 3).
	Workers int `json:"workers" yaml:"workers" mapstructure:"workers"`

	// Phase selects a predefined category grouping (1-3); 0 means none.
	Phase int `json:"phase" yaml:"phase" mapstructure:"phase"`

	// BuildCommand is run before the audit and after fixes are written.
	// Empty skips both build checks.
	BuildCommand []string `json:"build_command,omitempty" yaml:"build_command,omitempty" mapstructure:"build_command"`

	// Commit tags the tree before the audit and commits applied fixes.
	Commit bool `json:"commit" yaml:"commit" mapstructure:"commit"`
}

// PatchMode selects how persistence rewrites the dataset file.
type PatchMode string

const (
	PatchStructured PatchMode = "structured"
	PatchText       PatchMode = "text"
)

// PersistenceConfig holds dataset file settings.
type PersistenceConfig struct {
	// DatasetPath is the scenario YAML file (default data/scenarios.yaml).
	DatasetPath string `json:"dataset_path" yaml:"dataset_path" mapstructure:"dataset_path"`

	// BackupDir receives timestamped backups (default: os.TempDir()).
	BackupDir string `json:"backup_dir,omitempty" yaml:"backup_dir,omitempty" mapstructure:"backup_dir"`

	// Mode is "structured" (field updates) or "text" (first-match substitution).
	Mode PatchMode `json:"mode" yaml:"mode" mapstructure:"mode"`
}

// LedgerConfig locates the finding ledger database.
type LedgerConfig struct {
	// Path is the SQLite file (default .audit/ledger.db).
	Path string `json:"path" yaml:"path" mapstructure:"path"`
}

// LogConfig configures structured logging.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `json:"level" yaml:"level" mapstructure:"level"`

	// Format is "text" or "json".
	Format string `json:"format" yaml:"format" mapstructure:"format"`
}

// MetricsConfig configures the Prometheus scrape endpoint.
type MetricsConfig struct {
	// Addr serves /metrics when non-empty (e.g. ":9464").
	Addr string `json:"addr,omitempty" yaml:"addr,omitempty" mapstructure:"addr"`
}

// PipelineConfig groups all stage configurations.
type PipelineConfig struct {
	Audit        AuditConfig        `json:"audit" yaml:"audit" mapstructure:"audit"`
	Thresholds   Thresholds         `json:"thresholds" yaml:"thresholds" mapstructure:"thresholds"`
	Worker       WorkerConfig       `json:"worker" yaml:"worker" mapstructure:"worker"`
	Orchestrator OrchestratorConfig `json:"orchestrator" yaml:"orchestrator" mapstructure:"orchestrator"`
	Persistence  PersistenceConfig  `json:"persistence" yaml:"persistence" mapstructure:"persistence"`
	Ledger       LedgerConfig       `json:"ledger" yaml:"ledger" mapstructure:"ledger"`
	Log          LogConfig          `json:"log" yaml:"log" mapstructure:"log"`
	Metrics      MetricsConfig      `json:"metrics" yaml:"metrics" mapstructure:"metrics"`
}

// DefaultPipelineConfig returns the configuration used when no file or
// environment overrides are present.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		Thresholds: DefaultThresholds(),
		Worker: WorkerConfig{
			Timeout:   15 * time.Minute,
			Transport: TransportProcess,
		},
		Orchestrator: OrchestratorConfig{Workers: 3},
		Persistence: PersistenceConfig{
			DatasetPath: "data/scenarios.yaml",
			Mode:        PatchStructured,
		},
		Ledger: LedgerConfig{Path: ".audit/ledger.db"},
		Log:    LogConfig{Level: "info", Format: "text"},
	}
}
