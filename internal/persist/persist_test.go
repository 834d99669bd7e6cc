// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package persist

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/dialogue-audit/internal/dataset"
	"github.com/pdiddy/dialogue-audit/pkg/types"
)

const doc = `scenarios:
  - id: advanced-1
    category: Advanced
    topic: Meetings
    dialogue:
      - speaker: Alex
        text: The brief is ________ now.
    answer_variations:
      - index: 1
        answer: quite quite clear
        alternatives:
          - fairly clear
  - id: advanced-2
    category: Advanced
    topic: Design
    dialogue:
      - speaker: Sam
        text: Pick a ________.
      - speaker: Jo
        text: I like the color of the quite clear one.
    answer_variations:
      - index: 1
        answer: colour
    deep_dive:
      - index: 1
        phrase: pick a colour
        insight: British spelling keeps the u.
        category: spelling
`

type fixture struct {
	dir     string
	path    string
	backups string
}

func setup(t *testing.T) fixture {
	t.Helper()
	dir := t.TempDir()
	f := fixture{
		dir:     dir,
		path:    filepath.Join(dir, "scenarios.yaml"),
		backups: filepath.Join(dir, "backups"),
	}
	require.NoError(t, os.WriteFile(f.path, []byte(doc), 0o644))
	return f
}

func (f fixture) persister(mode types.PatchMode, opts ...Option) *Persister {
	clock := func() time.Time { return time.Date(2026, 10, 15, 9, 30, 0, 0, time.UTC) }
	cfg := types.PersistenceConfig{DatasetPath: f.path, BackupDir: f.backups, Mode: mode}
	return New(cfg, types.DefaultThresholds(), append([]Option{WithClock(clock)}, opts...)...)
}

func cf(scenario, location, current, suggested string, conf float64) types.ConsolidatedFinding {
	return types.ConsolidatedFinding{Finding: types.Finding{
		ValidatorName:  "Grammar Context",
		ScenarioID:     scenario,
		Location:       location,
		CurrentValue:   current,
		SuggestedValue: suggested,
		Confidence:     conf,
	}}
}

func TestBackupName(t *testing.T) {
	f := setup(t)
	got, err := f.persister(types.PatchStructured).Backup(f.path)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(f.backups, "scenarios.backup.20261015T093000.000000000Z.yaml"), got)

	data, err := os.ReadFile(got)
	require.NoError(t, err)
	assert.Equal(t, doc, string(data))
}

func TestPersistStructured(t *testing.T) {
	f := setup(t)
	findings := []types.ConsolidatedFinding{
		cf("advanced-1", "answerVariations[1].answer", "quite quite clear", "quite clear", 0.98),
		cf("advanced-2", "dialogue[1].text", "color", "colour", 1.0),
		cf("advanced-2", "answerVariations[1].answer", "colour", "hue", 0.80),
		cf("advanced-2", "deepDive[0].insight", "missing text", "x", 0.99),
	}
	res, err := f.persister(types.PatchStructured).Persist(context.Background(), findings, false)
	require.NoError(t, err)

	assert.Equal(t, 2, res.Applied)
	assert.Equal(t, 1, res.Failed, "only the unmatched insight fails; the MEDIUM finding is filtered")
	assert.True(t, res.Modified)
	assert.Equal(t, types.PatchStructured, res.Mode)
	assert.FileExists(t, res.BackupPath)

	ds, err := dataset.Load(f.path)
	require.NoError(t, err)
	first, _ := ds.Lookup("advanced-1")
	second, _ := ds.Lookup("advanced-2")
	assert.Equal(t, "quite clear", first.AnswerVariations[0].Answer)
	assert.Equal(t, "I like the colour of the quite clear one.", second.Dialogue[1].Text)
	assert.Equal(t, "colour", second.AnswerVariations[0].Answer)
}

func TestPersistGate(t *testing.T) {
	f := setup(t)
	open := cf("advanced-1", "answerVariations[1].answer", "quite quite clear", "quite clear", 0.99)
	open.Conflict = &types.Conflict{Winner: -1}
	findings := []types.ConsolidatedFinding{
		open,
		cf("advanced-1", "answerVariations[1].answer", "quite quite clear", "quite clear", 0.94),
		cf("advanced-1", "answerVariations[1].answer", "quite quite clear", "", 1.0),
	}
	res, err := f.persister(types.PatchStructured).Persist(context.Background(), findings, false)
	require.NoError(t, err)
	assert.Zero(t, res.Applied)
	assert.False(t, res.Modified)

	data, err := os.ReadFile(f.path)
	require.NoError(t, err)
	assert.Equal(t, doc, string(data))
}

func TestPersistDryRun(t *testing.T) {
	f := setup(t)
	findings := []types.ConsolidatedFinding{cf("advanced-2", "dialogue[1].text", "color", "colour", 1.0)}
	res, err := f.persister(types.PatchText).Persist(context.Background(), findings, true)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Applied)
	assert.False(t, res.Modified)
	assert.True(t, res.DryRun)

	data, err := os.ReadFile(f.path)
	require.NoError(t, err)
	assert.Equal(t, doc, string(data))
	assert.FileExists(t, res.BackupPath)
}

func TestTextModeReplacesFirstMatchOnly(t *testing.T) {
	f := setup(t)
	findings := []types.ConsolidatedFinding{cf("advanced-2", "dialogue[1].text", "quite clear", "rather clear", 0.99)}
	res, err := f.persister(types.PatchText).Persist(context.Background(), findings, false)
	require.NoError(t, err)
	require.Equal(t, 1, res.Applied)

	data, err := os.ReadFile(f.path)
	require.NoError(t, err)
	// The first occurrence in the file is in advanced-1, not the addressed field.
	assert.Contains(t, string(data), "answer: quite rather clear")
	assert.Contains(t, string(data), "the quite clear one")
}

func TestStructuredModeTargetsAddressedField(t *testing.T) {
	f := setup(t)
	findings := []types.ConsolidatedFinding{cf("advanced-2", "dialogue[1].text", "quite clear", "rather clear", 0.99)}
	_, err := f.persister(types.PatchStructured).Persist(context.Background(), findings, false)
	require.NoError(t, err)

	ds, err := dataset.Load(f.path)
	require.NoError(t, err)
	first, _ := ds.Lookup("advanced-1")
	second, _ := ds.Lookup("advanced-2")
	assert.Equal(t, "quite quite clear", first.AnswerVariations[0].Answer)
	assert.Equal(t, "I like the color of the rather clear one.", second.Dialogue[1].Text)
}

func TestPersistAtomicOnVerifyFailure(t *testing.T) {
	f := setup(t)
	findings := []types.ConsolidatedFinding{cf("advanced-1", "answerVariations[1].answer", "quite quite clear", "[unclosed", 0.99)}
	res, err := f.persister(types.PatchText).Persist(context.Background(), findings, false)
	require.ErrorIs(t, err, ErrVerifyFailed)

	data, rerr := os.ReadFile(f.path)
	require.NoError(t, rerr)
	assert.Equal(t, doc, string(data), "dataset must be byte-identical")

	backup, berr := os.ReadFile(res.BackupPath)
	require.NoError(t, berr)
	assert.Equal(t, doc, string(backup))
	assert.False(t, res.Modified)
}

func TestPersistCustomVerifier(t *testing.T) {
	f := setup(t)
	reject := WithVerifier(func([]byte) error { return errors.New("build broke") })
	findings := []types.ConsolidatedFinding{cf("advanced-2", "dialogue[1].text", "color", "colour", 1.0)}
	_, err := f.persister(types.PatchStructured, reject).Persist(context.Background(), findings, false)
	require.ErrorIs(t, err, ErrVerifyFailed)
	assert.Contains(t, err.Error(), "build broke")

	data, _ := os.ReadFile(f.path)
	assert.Equal(t, doc, string(data))
}

func TestPersistMissingDataset(t *testing.T) {
	p := New(types.PersistenceConfig{DatasetPath: filepath.Join(t.TempDir(), "none.yaml")}, types.DefaultThresholds())
	_, err := p.Persist(context.Background(), nil, false)
	assert.ErrorIs(t, err, ErrNoDataset)

	_, err = New(types.PersistenceConfig{}, types.DefaultThresholds()).Persist(context.Background(), nil, false)
	assert.ErrorIs(t, err, ErrNoDataset)
}

func TestApplyApproved(t *testing.T) {
	f := setup(t)
	decisions := []Decision{
		{Finding: cf("advanced-2", "answerVariations[1].answer", "colour", "hue", 0.80), Action: Approve},
		{Finding: cf("advanced-1", "answerVariations[1].alternatives[0]", "fairly clear", "clear", 0.6), Action: Edit, Value: "rather clear"},
		{Finding: cf("advanced-2", "deepDive[0].category", "spelling", "orthography", 0.5), Action: Skip},
		{Finding: cf("advanced-2", "deepDive[0].phrase", "pick a colour", "", 0.5), Action: Approve},
	}
	res, err := f.persister(types.PatchStructured).ApplyApproved(context.Background(), decisions)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Applied)
	assert.Equal(t, 1, res.Failed)
	assert.Equal(t, "no replacement value", res.Failures[0].Reason)

	ds, err := dataset.Load(f.path)
	require.NoError(t, err)
	first, _ := ds.Lookup("advanced-1")
	second, _ := ds.Lookup("advanced-2")
	assert.Equal(t, "hue", second.AnswerVariations[0].Answer)
	assert.Equal(t, []string{"rather clear"}, first.AnswerVariations[0].Alternatives)
	assert.Equal(t, "spelling", second.DeepDive[0].Category)
}

func TestRestore(t *testing.T) {
	f := setup(t)
	p := f.persister(types.PatchStructured)
	backup, err := p.Backup(f.path)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(f.path, []byte("scenarios: []\n"), 0o644))

	require.NoError(t, Restore(backup, f.path))
	data, err := os.ReadFile(f.path)
	require.NoError(t, err)
	assert.Equal(t, doc, string(data))

	assert.Error(t, Restore(filepath.Join(f.dir, "missing"), f.path))
}

func TestLocate(t *testing.T) {
	f := setup(t)
	tests := []struct {
		scenario, location string
		ok                 bool
	}{
		{"advanced-1", "answerVariations[1].answer", true},
		{"advanced-1", "answerVariations[1].alternatives[0]", true},
		{"advanced-1", "answerVariations[1].alternatives[3]", false},
		{"advanced-1", "answerVariations[2].answer", false},
		{"advanced-2", "deepDive[0].phrase", true},
		{"advanced-2", "deepDive[0]", false},
		{"advanced-2", "dialogue[1].text", true},
		{"advanced-2", "scenario", false},
		{"ghost", "dialogue[0].text", false},
		{"advanced-1", "bogus", false},
	}
	for _, tt := range tests {
		t.Run(tt.scenario+"/"+tt.location, func(t *testing.T) {
			res, err := f.persister(types.PatchStructured).Persist(context.Background(),
				[]types.ConsolidatedFinding{cf(tt.scenario, tt.location, "a", "b", 1.0)}, true)
			require.NoError(t, err)
			// "a" appears in every located field, so a located fix always applies.
			assert.Equal(t, tt.ok, res.Applied == 1, "failures: %v", res.Failures)
		})
	}
}

func TestWriteReport(t *testing.T) {
	var buf bytes.Buffer
	WriteReport(&buf, types.PersistenceResult{
		Applied:    1,
		Failed:     1,
		BackupPath: "/tmp/scenarios.backup.x.yaml",
		DryRun:     true,
		Mode:       types.PatchText,
		Fixes:      []types.AppliedFix{{Location: "dialogue[1].text", From: "color", To: "colour"}},
		Failures:   []types.FixFailure{{Key: "k", Reason: "could not locate content to replace"}},
	})
	out := buf.String()
	assert.Contains(t, out, "Modified: no (dry run)")
	assert.Contains(t, out, `dialogue[1].text: "color" -> "colour"`)
	assert.True(t, strings.Contains(out, "! k: could not locate"))
}
