// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/dialogue-audit/internal/worker"
	"github.com/pdiddy/dialogue-audit/pkg/types"
)

func TestLoadConfigFromEnv(t *testing.T) {
	t.Cleanup(viper.Reset)
	t.Setenv("DIALOGUE_AUDIT_THRESHOLDS_HIGH", "0.9")
	t.Setenv("DIALOGUE_AUDIT_WORKER_TIMEOUT", "2m")
	t.Setenv("DIALOGUE_AUDIT_ORCHESTRATOR_WORKERS", "5")
	initConfig()

	cfg, err := loadConfig(rootCmd)
	require.NoError(t, err)
	assert.Equal(t, 0.9, cfg.Thresholds.High)
	assert.Equal(t, 0.70, cfg.Thresholds.Medium)
	assert.Equal(t, 2*time.Minute, cfg.Worker.Timeout)
	assert.Equal(t, 5, cfg.Orchestrator.Workers)
	assert.Equal(t, "data/scenarios.yaml", cfg.Persistence.DatasetPath)
}

func TestApplyOrchestrateFlags(t *testing.T) {
	require.NoError(t, orchestrateCmd.ParseFlags([]string{
		"--phase", "2",
		"--workers", "4",
		"--dry-run",
		"--timeout", "30s",
		"--transport", "inprocess",
		"--build-cmd", "go build ./...",
	}))

	cfg := types.DefaultPipelineConfig()
	applyOrchestrateFlags(orchestrateCmd, &cfg)

	assert.Equal(t, 2, cfg.Orchestrator.Phase)
	assert.Equal(t, 4, cfg.Orchestrator.Workers)
	assert.True(t, cfg.Audit.DryRun)
	assert.Equal(t, 30*time.Second, cfg.Worker.Timeout)
	assert.Equal(t, types.TransportInProcess, cfg.Worker.Transport)
	assert.Equal(t, []string{"go", "build", "./..."}, cfg.Orchestrator.BuildCommand)
	assert.False(t, cfg.Orchestrator.Commit)
	assert.Empty(t, cfg.Audit.ScenarioIDs)
}

func TestNewTransport(t *testing.T) {
	ds := types.Dataset{Scenarios: []types.Scenario{{ID: "a"}}}
	cfg := types.DefaultPipelineConfig()

	tr, err := newTransport(cfg, ds)
	require.NoError(t, err)
	sub, ok := tr.(*worker.Subprocess)
	require.True(t, ok)
	assert.Equal(t, cfg.Persistence.DatasetPath, sub.DatasetPath)
	assert.Empty(t, sub.Args)

	cfg.Worker.Transport = types.TransportInProcess
	tr, err = newTransport(cfg, ds)
	require.NoError(t, err)
	assert.IsType(t, &worker.InProcess{}, tr)

	cfg.Worker.Transport = "carrier-pigeon"
	_, err = newTransport(cfg, ds)
	assert.Error(t, err)
}

func TestNewTransportForwardsConfig(t *testing.T) {
	t.Cleanup(viper.Reset)
	path := filepath.Join(t.TempDir(), "audit.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log:\n  level: debug\n"), 0o644))
	viper.SetConfigFile(path)
	require.NoError(t, viper.ReadInConfig())

	cfg, err := loadConfig(rootCmd)
	require.NoError(t, err)
	tr, err := newTransport(cfg, types.Dataset{})
	require.NoError(t, err)

	sub := tr.(*worker.Subprocess)
	assert.Equal(t, []string{"--config=" + path}, sub.Args)
	assert.Contains(t, sub.Env, "DIALOGUE_AUDIT_LOG_LEVEL=debug")
	args := sub.Command(worker.Task{WorkerID: 1, ScenarioIDs: []string{"a"}, OutputPath: "w.json"})
	assert.Equal(t, "--config="+path, args[0])
	assert.Equal(t, "worker", args[1])
}
