// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the dialogue-audit CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/dialogue-audit/internal/logging"
	"github.com/pdiddy/dialogue-audit/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the dialogue-audit CLI.
var rootCmd = &cobra.Command{
	Use:   "dialogue-audit",
	Short: "Linguistic audit pipeline for fill-in-the-blank dialogue scenarios",
	Long: `dialogue-audit checks a scenario dataset with a set of linguistic
validators, scores every finding, and applies the confident fixes.

The orchestrate subcommand splits the dataset across parallel workers,
consolidates their findings and writes HIGH fixes back to the dataset.
Findings that need a human are kept in a ledger for the review subcommand.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		level, err := logging.ParseLevel(cfg.Log.Level)
		if err != nil {
			return err
		}
		logging.Init(level, cfg.Log.Format)
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (default: ./dialogue-audit.yaml or ~/.config/dialogue-audit/dialogue-audit.yaml)")
	pf.String("dataset", "", "scenario dataset (default data/scenarios.yaml)")
	pf.String("ledger", "", "ledger database (default .audit/ledger.db)")
	pf.String("log-level", "", "log level: debug, info, warn, error")
	pf.String("log-format", "", "log format: text or json")
	pf.String("metrics-addr", "", "serve Prometheus metrics on this address")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("dialogue-audit")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "dialogue-audit"))
		}
	}

	viper.SetEnvPrefix("DIALOGUE_AUDIT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// loadConfig layers the config file and environment over the defaults,
// then applies the persistent flags the user set.
func loadConfig(cmd *cobra.Command) (types.PipelineConfig, error) {
	cfg := types.DefaultPipelineConfig()
	setDefaults(cfg)
	if err := viper.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("reading configuration: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("dataset") {
		cfg.Persistence.DatasetPath, _ = flags.GetString("dataset")
	}
	if flags.Changed("ledger") {
		cfg.Ledger.Path, _ = flags.GetString("ledger")
	}
	if flags.Changed("log-level") {
		cfg.Log.Level, _ = flags.GetString("log-level")
	}
	if flags.Changed("log-format") {
		cfg.Log.Format, _ = flags.GetString("log-format")
	}
	if flags.Changed("metrics-addr") {
		cfg.Metrics.Addr, _ = flags.GetString("metrics-addr")
	}
	return cfg, nil
}

// setDefaults registers every config key with viper so that environment
// variables are seen by Unmarshal even without a config file.
func setDefaults(cfg types.PipelineConfig) {
	defaults := map[string]any{
		"thresholds.high":            cfg.Thresholds.High,
		"thresholds.medium":          cfg.Thresholds.Medium,
		"worker.timeout":             cfg.Worker.Timeout,
		"worker.transport":           string(cfg.Worker.Transport),
		"worker.binary":              cfg.Worker.Binary,
		"worker.output_dir":          cfg.Worker.OutputDir,
		"orchestrator.workers":       cfg.Orchestrator.Workers,
		"orchestrator.phase":         cfg.Orchestrator.Phase,
		"orchestrator.build_command": cfg.Orchestrator.BuildCommand,
		"orchestrator.commit":        cfg.Orchestrator.Commit,
		"persistence.dataset_path":   cfg.Persistence.DatasetPath,
		"persistence.backup_dir":     cfg.Persistence.BackupDir,
		"persistence.mode":           string(cfg.Persistence.Mode),
		"ledger.path":                cfg.Ledger.Path,
		"log.level":                  cfg.Log.Level,
		"log.format":                 cfg.Log.Format,
		"metrics.addr":               cfg.Metrics.Addr,
	}
	for k, v := range defaults {
		viper.SetDefault(k, v)
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
