// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package review is the terminal UI for deciding on findings that wait
// for a human: approve the suggestion, edit it, or skip it.
package review

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/pdiddy/dialogue-audit/internal/ledger"
	"github.com/pdiddy/dialogue-audit/internal/persist"
	"github.com/pdiddy/dialogue-audit/pkg/types"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	valueStyle  = lipgloss.NewStyle().Bold(true)
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Italic(true)
	panelStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("63")).Padding(0, 1)
	levelStyles = map[types.Level]lipgloss.Style{
		types.LevelHigh:   lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
		types.LevelMedium: lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true),
		types.LevelLow:    lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
	}
)

// Outcome is the result of one decision.
type Outcome struct {
	Decision persist.Decision
	Err      error
}

type decidedMsg struct {
	outcome Outcome
}

// Model walks a list of pending ledger entries one at a time.
type Model struct {
	ctx      context.Context
	entries  []ledger.Entry
	decider  Decider
	th       types.Thresholds
	cursor   int
	editing  bool
	busy     bool
	quitting bool
	status   string
	input    textinput.Model
	outcomes []Outcome

	dataset      types.Dataset
	showDialogue bool
}

// Option configures a Model.
type Option func(*Model)

// WithDataset lets the reviewer show the dialogue of the current finding.
func WithDataset(ds types.Dataset) Option {
	return func(m *Model) { m.dataset = ds }
}

// New returns a model over entries.
func New(ctx context.Context, entries []ledger.Entry, decider Decider, th types.Thresholds, opts ...Option) Model {
	ti := textinput.New()
	ti.Placeholder = "replacement value"
	ti.CharLimit = 500
	ti.Width = 60
	m := Model{ctx: ctx, entries: entries, decider: decider, th: th, input: ti}
	for _, o := range opts {
		o(&m)
	}
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	if len(m.entries) == 0 {
		return tea.Quit
	}
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case decidedMsg:
		m.busy = false
		m.outcomes = append(m.outcomes, msg.outcome)
		if msg.outcome.Err != nil {
			m.status = msg.outcome.Err.Error()
		} else {
			m.status = ""
		}
		m.cursor++
		m.showDialogue = false
		if m.Done() {
			return m, tea.Quit
		}
		return m, nil

	case tea.KeyMsg:
		if m.busy {
			return m, nil
		}
		if m.editing {
			return m.updateEditing(msg)
		}
		return m.updateBrowsing(msg)
	}
	return m, nil
}

func (m Model) updateBrowsing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.Done() {
		return m, tea.Quit
	}
	f := m.entries[m.cursor].Finding
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		m.quitting = true
		return m, tea.Quit
	case "a", "y":
		if f.SuggestedValue == "" {
			m.status = "no suggested value, press e to edit"
			return m, nil
		}
		return m.decide(persist.Decision{Finding: f, Action: persist.Approve})
	case "s", "n":
		return m.decide(persist.Decision{Finding: f, Action: persist.Skip})
	case "v":
		m.showDialogue = !m.showDialogue
		return m, nil
	case "e":
		m.editing = true
		m.status = ""
		value := f.SuggestedValue
		if value == "" {
			value = f.CurrentValue
		}
		m.input.SetValue(value)
		m.input.CursorEnd()
		return m, m.input.Focus()
	}
	return m, nil
}

func (m Model) updateEditing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.editing = false
		m.input.Blur()
		return m, nil
	case "enter":
		value := strings.TrimSpace(m.input.Value())
		if value == "" {
			m.status = "replacement value is empty"
			return m, nil
		}
		m.editing = false
		m.input.Blur()
		f := m.entries[m.cursor].Finding
		return m.decide(persist.Decision{Finding: f, Action: persist.Edit, Value: value})
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) decide(d persist.Decision) (tea.Model, tea.Cmd) {
	m.busy = true
	ctx, decider, runID := m.ctx, m.decider, m.entries[m.cursor].RunID
	return m, func() tea.Msg {
		return decidedMsg{Outcome{Decision: d, Err: decider.Decide(ctx, runID, d)}}
	}
}

// Done reports whether every entry has been decided.
func (m Model) Done() bool { return m.cursor >= len(m.entries) }

// Quitting reports whether the reviewer left before the end.
func (m Model) Quitting() bool { return m.quitting }

// Outcomes returns the decisions made so far.
func (m Model) Outcomes() []Outcome { return m.outcomes }

// View implements tea.Model.
func (m Model) View() string {
	if m.Done() || m.quitting {
		return Summary(m.outcomes) + "\n"
	}
	cf := m.entries[m.cursor].Finding
	level := m.th.Level(cf.Confidence)

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n\n", titleStyle.Render(fmt.Sprintf("Finding %d of %d", m.cursor+1, len(m.entries))))
	row := func(label, value string) {
		fmt.Fprintf(&b, "%s %s\n", labelStyle.Render(fmt.Sprintf("%-12s", label)), value)
	}
	row("Scenario", cf.ScenarioID)
	row("Location", cf.Location)
	row("Validator", cf.ValidatorName)
	row("Confidence", levelStyles[level].Render(fmt.Sprintf("%s %.0f%%", level, cf.Confidence*100)))
	row("Issue", cf.Issue)
	row("Current", valueStyle.Render(quote(cf.CurrentValue)))
	row("Suggested", valueStyle.Render(quote(cf.SuggestedValue)))
	if len(cf.Alternatives) > 0 {
		row("Alternatives", strings.Join(cf.Alternatives, ", "))
	}
	if cf.Conflict != nil && cf.Conflict.Resolved() {
		row("Resolved by", string(cf.Conflict.Resolution))
	}
	if cf.Reasoning != "" {
		row("Reasoning", cf.Reasoning)
	}
	body := panelStyle.Render(strings.TrimRight(b.String(), "\n"))
	if m.showDialogue {
		body += "\n" + m.dialogueView(cf.ScenarioID, cf.Location)
	}

	var footer string
	switch {
	case m.editing:
		footer = m.input.View() + "\n" + helpStyle.Render("enter apply  esc cancel")
	case m.busy:
		footer = helpStyle.Render("applying...")
	default:
		footer = helpStyle.Render("a approve  e edit  s skip  v dialogue  q quit")
	}
	if m.status != "" {
		footer = errorStyle.Render(m.status) + "\n" + footer
	}
	return body + "\n" + footer + "\n"
}

// dialogueView renders the scenario with its blanks filled, marking the
// line the finding points at.
func (m Model) dialogueView(scenarioID, location string) string {
	sc, ok := m.dataset.Lookup(scenarioID)
	if !ok {
		return labelStyle.Render("dialogue not available")
	}
	target := -1
	if loc, err := types.ParseLocation(location); err == nil {
		switch loc.Kind {
		case types.LocAnswer, types.LocAlternative:
			if bl, ok := sc.Blank(loc.Index); ok {
				target = bl.Line
			}
		case types.LocDeepDive, types.LocInsight, types.LocPhrase, types.LocCategory:
			if loc.Index < len(sc.DeepDive) {
				if bl, ok := sc.Blank(sc.DeepDive[loc.Index].Index); ok {
					target = bl.Line
				}
			}
		case types.LocDialogue:
			target = loc.Index
		}
	}
	var b strings.Builder
	for i, line := range sc.Dialogue {
		marker := "  "
		if i == target {
			marker = levelStyles[types.LevelMedium].Render("> ")
		}
		fmt.Fprintf(&b, "%s%s: %s\n", marker, labelStyle.Render(line.Speaker), sc.FilledLine(i))
	}
	return strings.TrimRight(b.String(), "\n")
}

// Summary counts outcomes by action.
func Summary(outcomes []Outcome) string {
	counts := map[persist.Action]int{}
	failed := 0
	for _, o := range outcomes {
		if o.Err != nil {
			failed++
			continue
		}
		counts[o.Decision.Action]++
	}
	return fmt.Sprintf("Reviewed %d: %d approved, %d edited, %d skipped, %d failed",
		len(outcomes), counts[persist.Approve], counts[persist.Edit], counts[persist.Skip], failed)
}

// Run shows the review UI on the terminal and returns the outcomes.
func Run(ctx context.Context, entries []ledger.Entry, decider Decider, th types.Thresholds, opts ...Option) ([]Outcome, error) {
	final, err := tea.NewProgram(New(ctx, entries, decider, th, opts...), tea.WithContext(ctx)).Run()
	if err != nil {
		return nil, err
	}
	return final.(Model).Outcomes(), nil
}

func quote(s string) string {
	if s == "" {
		return "-"
	}
	return fmt.Sprintf("%q", s)
}
