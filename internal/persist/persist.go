// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package persist writes accepted fixes back into the scenario dataset.
// Every pass backs the file up first, verifies the patched document parses
// as a dataset, and replaces the file by atomic rename, so readers see
// either the old file or the fully patched one.
package persist

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pdiddy/dialogue-audit/internal/dataset"
	"github.com/pdiddy/dialogue-audit/internal/fileutil"
	"github.com/pdiddy/dialogue-audit/pkg/types"
)

var (
	// ErrVerifyFailed means the patched document was not a valid dataset.
	// The dataset file is left with its original content.
	ErrVerifyFailed = errors.New("patched dataset failed verification")

	// ErrNoDataset means the configured dataset file does not exist.
	ErrNoDataset = errors.New("dataset file not found")
)

const backupTimeFormat = "20060102T150405.000000000Z"

// Persister applies fixes to one dataset file.
type Persister struct {
	cfg     types.PersistenceConfig
	th      types.Thresholds
	now     func() time.Time
	verify  func([]byte) error
	logger  *slog.Logger
	patcher patcher
}

// Option configures a Persister.
type Option func(*Persister)

// WithClock overrides the clock used for backup names.
func WithClock(now func() time.Time) Option {
	return func(p *Persister) { p.now = now }
}

// WithVerifier replaces the post-patch check. The default parses the
// document as a dataset.
func WithVerifier(v func([]byte) error) Option {
	return func(p *Persister) { p.verify = v }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(p *Persister) { p.logger = l }
}

// New returns a Persister for cfg.DatasetPath gated by th.
func New(cfg types.PersistenceConfig, th types.Thresholds, opts ...Option) *Persister {
	p := &Persister{
		cfg:    cfg,
		th:     th,
		now:    time.Now,
		logger: slog.Default(),
		verify: func(b []byte) error {
			_, err := dataset.Parse(b)
			return err
		},
	}
	for _, o := range opts {
		o(p)
	}
	if p.cfg.Mode == types.PatchText {
		p.patcher = textPatcher{}
	} else {
		p.cfg.Mode = types.PatchStructured
		p.patcher = structuredPatcher{}
	}
	return p
}

// DatasetPath returns the file this Persister writes.
func (p *Persister) DatasetPath() string {
	return p.cfg.DatasetPath
}

// Backup copies path into the backup directory as
// <name>.backup.<UTC timestamp><ext> and returns the copy's path.
func (p *Persister) Backup(path string) (string, error) {
	dir := p.cfg.BackupDir
	if dir == "" {
		dir = os.TempDir()
	}
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	name := strings.TrimSuffix(base, ext)
	dst := filepath.Join(dir, fmt.Sprintf("%s.backup.%s%s", name, p.now().UTC().Format(backupTimeFormat), ext))
	if err := fileutil.CopyFile(path, dst); err != nil {
		return "", fmt.Errorf("backing up %s: %w", path, err)
	}
	return dst, nil
}

// Persist applies the auto-fixable findings: those at or above the HIGH
// cutoff with a suggested value, and whose conflict, if any, is resolved.
// Nothing is written when dryRun is set or no fix applied.
func (p *Persister) Persist(ctx context.Context, findings []types.ConsolidatedFinding, dryRun bool) (types.PersistenceResult, error) {
	var fixes []fix
	for _, f := range findings {
		if !f.AutoFixable(p.th) {
			continue
		}
		if f.Conflict != nil && !f.Conflict.Resolved() {
			continue
		}
		fixes = append(fixes, fix{
			key:        f.Key(),
			scenarioID: f.ScenarioID,
			location:   f.Location,
			from:       f.CurrentValue,
			to:         f.SuggestedValue,
		})
	}
	return p.apply(ctx, fixes, dryRun)
}

// Action is a reviewer's verdict on one finding.
type Action string

const (
	Approve Action = "approve"
	Edit    Action = "edit"
	Skip    Action = "skip"
)

// Decision is a reviewed finding. Value replaces the suggestion for Edit.
type Decision struct {
	Finding types.ConsolidatedFinding
	Action  Action
	Value   string
}

// ApplyApproved writes human-approved fixes without the HIGH gate. Skipped
// decisions are ignored; approvals without a value are failures.
func (p *Persister) ApplyApproved(ctx context.Context, decisions []Decision) (types.PersistenceResult, error) {
	var fixes []fix
	var rejected []types.FixFailure
	for _, d := range decisions {
		to := d.Finding.SuggestedValue
		switch d.Action {
		case Skip:
			continue
		case Edit:
			to = d.Value
		}
		if to == "" {
			rejected = append(rejected, types.FixFailure{Key: d.Finding.Key(), Reason: "no replacement value"})
			continue
		}
		fixes = append(fixes, fix{
			key:        d.Finding.Key(),
			scenarioID: d.Finding.ScenarioID,
			location:   d.Finding.Location,
			from:       d.Finding.CurrentValue,
			to:         to,
		})
	}
	res, err := p.apply(ctx, fixes, false)
	res.Failures = append(rejected, res.Failures...)
	res.Failed += len(rejected)
	return res, err
}

func (p *Persister) apply(ctx context.Context, fixes []fix, dryRun bool) (types.PersistenceResult, error) {
	res := types.PersistenceResult{DryRun: dryRun, Mode: p.cfg.Mode}
	path := p.cfg.DatasetPath
	if path == "" {
		return res, ErrNoDataset
	}
	original, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return res, fmt.Errorf("%w: %s", ErrNoDataset, path)
	}
	if err != nil {
		return res, fmt.Errorf("reading dataset: %w", err)
	}

	res.BackupPath, err = p.Backup(path)
	if err != nil {
		return res, err
	}
	if err := ctx.Err(); err != nil {
		return res, err
	}

	patched, applied, failed, err := p.patcher.patch(original, fixes)
	if err != nil {
		return res, fmt.Errorf("patching dataset: %w", err)
	}
	res.Fixes = applied
	res.Applied = len(applied)
	res.Failures = failed
	res.Failed = len(failed)
	for _, f := range failed {
		p.logger.Warn("fix not applied", "key", f.Key, "reason", f.Reason)
	}
	if res.Applied == 0 {
		return res, nil
	}

	if err := p.verify(patched); err != nil {
		if rerr := p.restoreBytes(path, original); rerr != nil {
			return res, fmt.Errorf("%w: %v (restore failed: %v)", ErrVerifyFailed, err, rerr)
		}
		return res, fmt.Errorf("%w: %v", ErrVerifyFailed, err)
	}
	if dryRun {
		return res, nil
	}
	if err := fileutil.WriteAtomic(path, patched, fileutil.FileMode(path, 0o644)); err != nil {
		return res, fmt.Errorf("writing dataset: %w", err)
	}
	res.Modified = true
	p.logger.Info("dataset updated", "path", path, "applied", res.Applied, "failed", res.Failed, "backup", res.BackupPath)
	return res, nil
}

// restoreBytes puts original back only when the file on disk differs.
func (p *Persister) restoreBytes(path string, original []byte) error {
	current, err := os.ReadFile(path)
	if err == nil && string(current) == string(original) {
		return nil
	}
	return fileutil.WriteAtomic(path, original, fileutil.FileMode(path, 0o644))
}

// Restore replaces target with the content of backupPath.
func Restore(backupPath, target string) error {
	data, err := os.ReadFile(backupPath)
	if err != nil {
		return fmt.Errorf("reading backup: %w", err)
	}
	if err := fileutil.WriteAtomic(target, data, fileutil.FileMode(target, 0o644)); err != nil {
		return fmt.Errorf("restoring %s: %w", target, err)
	}
	return nil
}

// WriteReport writes a persistence summary.
func WriteReport(w io.Writer, r types.PersistenceResult) {
	fmt.Fprintln(w, "Persistence")
	fmt.Fprintf(w, "  Mode:     %s\n", r.Mode)
	fmt.Fprintf(w, "  Applied:  %d\n", r.Applied)
	fmt.Fprintf(w, "  Failed:   %d\n", r.Failed)
	fmt.Fprintf(w, "  Backup:   %s\n", r.BackupPath)
	switch {
	case r.Modified:
		fmt.Fprintln(w, "  Modified: yes")
	case r.DryRun:
		fmt.Fprintln(w, "  Modified: no (dry run)")
	default:
		fmt.Fprintln(w, "  Modified: no")
	}
	for _, f := range r.Fixes {
		fmt.Fprintf(w, "  + %s: %q -> %q\n", f.Location, f.From, f.To)
	}
	for _, f := range r.Failures {
		fmt.Fprintf(w, "  ! %s: %s\n", f.Key, f.Reason)
	}
}
