// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package review

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/dialogue-audit/internal/ledger"
	"github.com/pdiddy/dialogue-audit/internal/lifecycle"
	"github.com/pdiddy/dialogue-audit/internal/persist"
	"github.com/pdiddy/dialogue-audit/pkg/types"
)

type recordingDecider struct {
	decisions []persist.Decision
	fail      map[persist.Action]error
}

func (r *recordingDecider) Decide(_ context.Context, _ string, d persist.Decision) error {
	r.decisions = append(r.decisions, d)
	return r.fail[d.Action]
}

func entry(scenario, current, suggested string, conf float64) ledger.Entry {
	return ledger.Entry{
		RunID: "run-1",
		Finding: types.ConsolidatedFinding{Finding: types.Finding{
			ValidatorName:  "Natural Language",
			ScenarioID:     scenario,
			Location:       types.AnswerLocation(1),
			Issue:          "Register",
			CurrentValue:   current,
			SuggestedValue: suggested,
			Confidence:     conf,
		}},
		State: lifecycle.PendingApproval,
	}
}

// send delivers msg. When it starts a decision, the decision command is
// run and its result fed back into the model.
func send(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	m = next.(Model)
	if !m.busy {
		return m, cmd
	}
	require.NotNil(t, cmd)
	res, ok := cmd().(decidedMsg)
	require.True(t, ok)
	next, cmd = m.Update(res)
	return next.(Model), cmd
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "backspace":
		return tea.KeyMsg{Type: tea.KeyBackspace}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestApproveSkipEdit(t *testing.T) {
	d := &recordingDecider{}
	m := New(context.Background(), []ledger.Entry{
		entry("social-1", "catch up", "meet up", 0.8),
		entry("social-2", "gonna", "going to", 0.6),
		entry("social-3", "wanna", "want to", 0.75),
	}, d, types.DefaultThresholds())

	assert.Contains(t, m.View(), "Finding 1 of 3")

	m, _ = send(t, m, key("a"))
	assert.Contains(t, m.View(), "Finding 2 of 3")

	m, _ = send(t, m, key("s"))

	m, _ = send(t, m, key("e"))
	require.True(t, m.editing)
	assert.Equal(t, "want to", m.input.Value())
	for range len(" to") {
		m, _ = send(t, m, key("backspace"))
	}
	for _, r := range "ish" {
		m, _ = send(t, m, key(string(r)))
	}
	m, cmd := send(t, m, key("enter"))

	require.True(t, m.Done())
	require.NotNil(t, cmd)
	_, quit := cmd().(tea.QuitMsg)
	assert.True(t, quit)

	require.Len(t, d.decisions, 3)
	assert.Equal(t, persist.Approve, d.decisions[0].Action)
	assert.Equal(t, persist.Skip, d.decisions[1].Action)
	assert.Equal(t, persist.Edit, d.decisions[2].Action)
	assert.Equal(t, "wantish", d.decisions[2].Value)
	assert.Equal(t, "Reviewed 3: 1 approved, 1 edited, 1 skipped, 0 failed", Summary(m.Outcomes()))
}

func TestApproveWithoutSuggestion(t *testing.T) {
	d := &recordingDecider{}
	m := New(context.Background(), []ledger.Entry{entry("advanced-1", "lorry", "", 0.5)}, d, types.DefaultThresholds())

	m, _ = send(t, m, key("a"))
	assert.Empty(t, d.decisions)
	assert.Contains(t, m.View(), "no suggested value")

	m, _ = send(t, m, key("e"))
	assert.Equal(t, "lorry", m.input.Value(), "edit starts from the current value")
	m, _ = send(t, m, key("esc"))
	assert.False(t, m.editing)
	assert.False(t, m.Done())
}

func TestDecisionFailureIsShown(t *testing.T) {
	d := &recordingDecider{fail: map[persist.Action]error{persist.Approve: errors.New("pattern not found")}}
	m := New(context.Background(), []ledger.Entry{
		entry("social-1", "catch up", "meet up", 0.8),
		entry("social-2", "gonna", "going to", 0.6),
	}, d, types.DefaultThresholds())

	m, _ = send(t, m, key("a"))
	assert.Contains(t, m.View(), "pattern not found")
	assert.Contains(t, m.View(), "Finding 2 of 2")
	require.Len(t, m.Outcomes(), 1)
	assert.Error(t, m.Outcomes()[0].Err)
}

func TestViewDialogue(t *testing.T) {
	ds := types.Dataset{Scenarios: []types.Scenario{{
		ID:       "social-1",
		Category: "Social",
		Dialogue: []types.DialogueLine{
			{Speaker: "Sam", Text: "Free tonight?"},
			{Speaker: "Jo", Text: "Shall we ________ later?"},
		},
		AnswerVariations: []types.AnswerVariation{{Index: 1, Answer: "catch up"}},
	}}}
	m := New(context.Background(), []ledger.Entry{entry("social-1", "catch up", "meet up", 0.8)},
		&recordingDecider{}, types.DefaultThresholds(), WithDataset(ds))

	assert.NotContains(t, m.View(), "Shall we catch up later?")
	m, _ = send(t, m, key("v"))
	view := m.View()
	assert.Contains(t, view, "Free tonight?")
	assert.Contains(t, view, "Shall we catch up later?")
	m, _ = send(t, m, key("v"))
	assert.NotContains(t, m.View(), "Free tonight?")
}

func TestQuit(t *testing.T) {
	m := New(context.Background(), []ledger.Entry{entry("social-1", "a", "b", 0.8)}, &recordingDecider{}, types.DefaultThresholds())
	m, cmd := send(t, m, key("q"))
	require.NotNil(t, cmd)
	assert.True(t, m.Quitting())
	assert.Contains(t, m.View(), "Reviewed 0")
}

func TestInitWithNothingPending(t *testing.T) {
	m := New(context.Background(), nil, &recordingDecider{}, types.DefaultThresholds())
	require.NotNil(t, m.Init())
}

const doc = `scenarios:
  - id: social-1
    category: Social
    topic: Weekend
    dialogue:
      - speaker: Sam
        text: Shall we ________ later?
    answer_variations:
      - index: 1
        answer: catch up
`

func TestLedgerDecider(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	path := filepath.Join(dir, "scenarios.yaml")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	store, err := ledger.NewStore(types.LedgerConfig{Path: filepath.Join(dir, "ledger.db")})
	require.NoError(t, err)
	defer store.Close()
	run, err := store.StartRun(ctx, ledger.Run{Dataset: path})
	require.NoError(t, err)

	approve := entry("social-1", "catch up", "meet up", 0.8).Finding
	missing := entry("social-1", "hang out", "chill", 0.7).Finding
	missing.ValidatorName = "Exam Language"
	skip := entry("social-1", "later", "", 0.3).Finding
	skip.ValidatorName = "Written vs Spoken"
	for _, cf := range []types.ConsolidatedFinding{approve, missing, skip} {
		require.NoError(t, store.Record(ctx, run.ID, cf, lifecycle.PendingApproval))
	}

	p := persist.New(types.PersistenceConfig{DatasetPath: path, BackupDir: filepath.Join(dir, "backups")}, types.DefaultThresholds())
	dec := LedgerDecider{Applier: p, Ledger: store}

	require.NoError(t, dec.Decide(ctx, run.ID, persist.Decision{Finding: approve, Action: persist.Approve}))
	err = dec.Decide(ctx, run.ID, persist.Decision{Finding: missing, Action: persist.Approve})
	require.Error(t, err)
	require.NoError(t, dec.Decide(ctx, run.ID, persist.Decision{Finding: skip, Action: persist.Skip}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "answer: meet up")

	got, err := store.Get(ctx, run.ID, approve.Key())
	require.NoError(t, err)
	assert.Equal(t, lifecycle.ApprovedAndApplied, got.State)

	got, err = store.Get(ctx, run.ID, missing.Key())
	require.NoError(t, err)
	assert.Equal(t, lifecycle.PendingApproval, got.State, "a failed fix stays pending")

	got, err = store.Get(ctx, run.ID, skip.Key())
	require.NoError(t, err)
	assert.Equal(t, lifecycle.Skipped, got.State)
}
