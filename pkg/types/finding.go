// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// Finding is the atomic unit of audit output: one validator's claim about
// one field of one scenario.
type Finding struct {
	ValidatorName  string   `json:"validator_name" yaml:"validator_name"`
	ScenarioID     string   `json:"scenario_id" yaml:"scenario_id"`
	Location       string   `json:"location" yaml:"location"`
	Issue          string   `json:"issue" yaml:"issue"`
	IssueType      string   `json:"issue_type,omitempty" yaml:"issue_type,omitempty"`
	CurrentValue   string   `json:"current_value" yaml:"current_value"`
	SuggestedValue string   `json:"suggested_value,omitempty" yaml:"suggested_value,omitempty"`
	Alternatives   []string `json:"alternatives,omitempty" yaml:"alternatives,omitempty"`
	Context        string   `json:"context,omitempty" yaml:"context,omitempty"`
	Confidence     float64  `json:"confidence" yaml:"confidence"`
	Reasoning      string   `json:"reasoning,omitempty" yaml:"reasoning,omitempty"`
}

// Key identifies equivalent findings across workers.
func (f Finding) Key() string {
	return f.ScenarioID + "|" + f.Location + "|" + f.ValidatorName
}

// AutoFixable reports whether the finding may be applied without a human:
// its confidence reaches the HIGH cutoff and it carries a replacement value.
func (f Finding) AutoFixable(th Thresholds) bool {
	return f.Confidence >= th.High && f.SuggestedValue != ""
}

// WorkerError records a failure local to one worker, scenario, or
// validator. ScenarioID is "all" when the whole worker failed.
type WorkerError struct {
	ScenarioID string `json:"scenario_id" yaml:"scenario_id"`
	Validator  string `json:"validator,omitempty" yaml:"validator,omitempty"`
	Message    string `json:"error" yaml:"error"`
}

// WorkerOutput is the result of one worker invocation.
type WorkerOutput struct {
	WorkerID      int           `json:"worker_id" yaml:"worker_id"`
	ScenarioIDs   []string      `json:"scenario_ids" yaml:"scenario_ids"`
	Findings      []Finding     `json:"findings" yaml:"findings"`
	ElapsedMillis int64         `json:"elapsed_ms" yaml:"elapsed_ms"`
	Errors        []WorkerError `json:"errors,omitempty" yaml:"errors,omitempty"`
}

// Elapsed returns ElapsedMillis as a duration.
func (o WorkerOutput) Elapsed() time.Duration {
	return time.Duration(o.ElapsedMillis) * time.Millisecond
}

// Resolution names the rule that decided a conflict.
type Resolution string

const (
	ResolvedByConfidence Resolution = "confidence"
	ResolvedByPriority   Resolution = "priority"
	ResolvedByWorker     Resolution = "worker"
)

// Alternative is one worker's suggested value for a conflicted finding.
type Alternative struct {
	WorkerID       int     `json:"worker_id" yaml:"worker_id"`
	ValidatorName  string  `json:"validator_name" yaml:"validator_name"`
	SuggestedValue string  `json:"suggested_value" yaml:"suggested_value"`
	Confidence     float64 `json:"confidence" yaml:"confidence"`
}

// Conflict records disagreement between workers on the replacement value
// for the same location. Winner is -1 until resolved.
type Conflict struct {
	Alternatives []Alternative `json:"alternatives" yaml:"alternatives"`
	Winner       int           `json:"winner" yaml:"winner"`
	Resolution   Resolution    `json:"resolution,omitempty" yaml:"resolution,omitempty"`
}

// Resolved reports whether a winner has been stamped.
func (c *Conflict) Resolved() bool {
	return c != nil && c.Winner >= 0
}

// ConsolidatedFinding is a Finding merged across workers.
type ConsolidatedFinding struct {
	Finding  `yaml:",inline"`
	Sources  []int     `json:"sources" yaml:"sources"`
	Conflict *Conflict `json:"conflict,omitempty" yaml:"conflict,omitempty"`
}

// ConsolidationStats summarises a consolidation pass.
type ConsolidationStats struct {
	TotalFindings     int     `json:"total_findings" yaml:"total_findings"`
	UniqueFindings    int     `json:"unique_findings" yaml:"unique_findings"`
	DuplicatesRemoved int     `json:"duplicates_removed" yaml:"duplicates_removed"`
	Conflicts         int     `json:"conflicts" yaml:"conflicts"`
	AgreementRate     float64 `json:"agreement_rate" yaml:"agreement_rate"`
}

// FixFailure explains why one fix was not applied.
type FixFailure struct {
	Key    string `json:"key" yaml:"key"`
	Reason string `json:"reason" yaml:"reason"`
}

// AppliedFix records a value written to the dataset.
type AppliedFix struct {
	Key      string `json:"key" yaml:"key"`
	Location string `json:"location" yaml:"location"`
	From     string `json:"from" yaml:"from"`
	To       string `json:"to" yaml:"to"`
}

// PersistenceResult summarises one persistence pass over the dataset file.
type PersistenceResult struct {
	Applied    int          `json:"applied" yaml:"applied"`
	Failed     int          `json:"failed" yaml:"failed"`
	Fixes      []AppliedFix `json:"fixes,omitempty" yaml:"fixes,omitempty"`
	Failures   []FixFailure `json:"failures,omitempty" yaml:"failures,omitempty"`
	BackupPath string       `json:"backup_path" yaml:"backup_path"`
	Modified   bool         `json:"modified" yaml:"modified"`
	DryRun     bool         `json:"dry_run" yaml:"dry_run"`
	Mode       PatchMode    `json:"mode" yaml:"mode"`
}

// Status is a validator's aggregate outcome.
type Status string

const (
	StatusPass    Status = "PASS"
	StatusWarning Status = "WARNING"
	StatusFail    Status = "FAIL"
)

// ValidatorResult aggregates one validator's findings over a run.
type ValidatorResult struct {
	Name     string `json:"name" yaml:"name"`
	Status   Status `json:"status" yaml:"status"`
	Findings int    `json:"findings" yaml:"findings"`
	Passed   int    `json:"passed" yaml:"passed"`
	Errors   int    `json:"errors" yaml:"errors"`
}

// Summary counts validators by status.
type Summary struct {
	Passed              int `json:"passed" yaml:"passed"`
	Warning             int `json:"warning" yaml:"warning"`
	Failed              int `json:"failed" yaml:"failed"`
	ScenariosWithIssues int `json:"scenarios_with_issues" yaml:"scenarios_with_issues"`
}

// TierCounts counts findings per confidence tier. High findings are
// critical, Medium are warnings, Low are suggestions.
type TierCounts struct {
	High   int `json:"high" yaml:"high"`
	Medium int `json:"medium" yaml:"medium"`
	Low    int `json:"low" yaml:"low"`
}

// AuditReport is the result of running the validator set over scenarios.
type AuditReport struct {
	RunID       string            `json:"run_id,omitempty" yaml:"run_id,omitempty"`
	GeneratedAt time.Time         `json:"generated_at" yaml:"generated_at"`
	Scenarios   int               `json:"scenarios" yaml:"scenarios"`
	Validators  []ValidatorResult `json:"validators" yaml:"validators"`
	Findings    []Finding         `json:"findings" yaml:"findings"`
	Errors      []WorkerError     `json:"errors,omitempty" yaml:"errors,omitempty"`
	Summary     Summary           `json:"summary" yaml:"summary"`
	Tiers       TierCounts        `json:"tiers" yaml:"tiers"`
	AutoFixes   []AppliedFix      `json:"auto_fixes,omitempty" yaml:"auto_fixes,omitempty"`
}

// LocationKind names the scenario field a Location addresses.
type LocationKind string

const (
	LocAnswer      LocationKind = "answer"
	LocAlternative LocationKind = "alternative"
	LocInsight     LocationKind = "insight"
	LocPhrase      LocationKind = "phrase"
	LocCategory    LocationKind = "category"
	LocDeepDive    LocationKind = "deepDive"
	LocDialogue    LocationKind = "dialogue"
	LocScenario    LocationKind = "scenario"
)

// Location is a parsed finding location. For answer and alternative
// locations Index is the blank ordinal; for deep dive and dialogue
// locations it is the 0-based slice position. Sub is the alternative
// position.
type Location struct {
	Kind  LocationKind
	Index int
	Sub   int
}

// AnswerLocation formats the location of a blank's primary answer.
func AnswerLocation(ordinal int) string {
	return fmt.Sprintf("answerVariations[%d].answer", ordinal)
}

// AlternativeLocation formats the location of one alternative answer.
func AlternativeLocation(ordinal, alt int) string {
	return fmt.Sprintf("answerVariations[%d].alternatives[%d]", ordinal, alt)
}

// DeepDiveLocation formats a deep dive field location. An empty field
// addresses the entry as a whole.
func DeepDiveLocation(i int, field string) string {
	if field == "" {
		return fmt.Sprintf("deepDive[%d]", i)
	}
	return fmt.Sprintf("deepDive[%d].%s", i, field)
}

// DialogueLocation formats the location of a dialogue line's text.
func DialogueLocation(i int) string {
	return fmt.Sprintf("dialogue[%d].text", i)
}

var (
	reAltLoc      = regexp.MustCompile(`^answerVariations\[(\d+)\]\.alternatives\[(\d+)\]$`)
	reAnswerLoc   = regexp.MustCompile(`^answerVariations\[(\d+)\]\.answer$`)
	reDeepDiveLoc = regexp.MustCompile(`^deepDive\[(\d+)\](?:\.(insight|phrase|category))?$`)
	reDialogueLoc = regexp.MustCompile(`^dialogue\[(\d+)\]\.text$`)
)

// ParseLocation parses a location string produced by the validators.
func ParseLocation(s string) (Location, error) {
	if s == "scenario" {
		return Location{Kind: LocScenario}, nil
	}
	if m := reAltLoc.FindStringSubmatch(s); m != nil {
		idx, _ := strconv.Atoi(m[1])
		sub, _ := strconv.Atoi(m[2])
		return Location{Kind: LocAlternative, Index: idx, Sub: sub}, nil
	}
	if m := reAnswerLoc.FindStringSubmatch(s); m != nil {
		idx, _ := strconv.Atoi(m[1])
		return Location{Kind: LocAnswer, Index: idx}, nil
	}
	if m := reDeepDiveLoc.FindStringSubmatch(s); m != nil {
		idx, _ := strconv.Atoi(m[1])
		kind := LocDeepDive
		switch m[2] {
		case "insight":
			kind = LocInsight
		case "phrase":
			kind = LocPhrase
		case "category":
			kind = LocCategory
		}
		return Location{Kind: kind, Index: idx}, nil
	}
	if m := reDialogueLoc.FindStringSubmatch(s); m != nil {
		idx, _ := strconv.Atoi(m[1])
		return Location{Kind: LocDialogue, Index: idx}, nil
	}
	return Location{}, fmt.Errorf("unrecognised location %q", s)
}
