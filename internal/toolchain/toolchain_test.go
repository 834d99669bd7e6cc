// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package toolchain

import (
	"context"
	"errors"
	"strings"
	"testing"
)

// mockExecutor records calls and returns configured responses.
type mockExecutor struct {
	availableBins map[string]bool   // binary -> whether LookPath succeeds
	failing       map[string]bool   // "bin arg1 arg2" -> command fails
	outputs       map[string]string // "bin arg1 arg2" -> combined output
	calls         []string
}

func (m *mockExecutor) LookPath(file string) (string, error) {
	if m.availableBins[file] {
		return "/usr/bin/" + file, nil
	}
	return "", errors.New("not found: " + file)
}

func (m *mockExecutor) run(name string, args []string) ([]byte, error) {
	key := strings.TrimSpace(name + " " + strings.Join(args, " "))
	m.calls = append(m.calls, key)
	out := []byte(m.outputs[key])
	if m.failing[key] {
		return out, errors.New("exit status 1")
	}
	return out, nil
}

func (m *mockExecutor) RunSilent(_ context.Context, _, name string, args ...string) error {
	_, err := m.run(name, args)
	return err
}

func (m *mockExecutor) RunOutput(_ context.Context, _, name string, args ...string) ([]byte, error) {
	return m.run(name, args)
}

func withMock(m *mockExecutor) *Toolchain {
	return &Toolchain{exec: m}
}

func TestBuild(t *testing.T) {
	tests := []struct {
		name    string
		exec    *mockExecutor
		command []string
		wantErr string
	}{
		{
			name:    "empty command skips",
			exec:    &mockExecutor{},
			command: nil,
		},
		{
			name:    "success",
			exec:    &mockExecutor{availableBins: map[string]bool{"go": true}},
			command: []string{"go", "build", "./..."},
		},
		{
			name: "failure carries output",
			exec: &mockExecutor{
				availableBins: map[string]bool{"npm": true},
				failing:       map[string]bool{"npm run build": true},
				outputs:       map[string]string{"npm run build": "error TS1005: ';' expected"},
			},
			command: []string{"npm", "run", "build"},
			wantErr: "';' expected",
		},
		{
			name:    "binary missing",
			exec:    &mockExecutor{},
			command: []string{"make"},
			wantErr: "build command not found",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := withMock(tt.exec).Build(context.Background(), tt.command)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}

	err := withMock(&mockExecutor{}).Build(context.Background(), []string{"make"})
	if !errors.Is(err, ErrNoCommand) {
		t.Errorf("missing binary: err = %v, want ErrNoCommand", err)
	}
}

func TestGitAvailable(t *testing.T) {
	tests := []struct {
		name string
		exec *mockExecutor
		want bool
	}{
		{"not installed", &mockExecutor{}, false},
		{
			"outside work tree",
			&mockExecutor{
				availableBins: map[string]bool{"git": true},
				failing:       map[string]bool{"git rev-parse --is-inside-work-tree": true},
			},
			false,
		},
		{"inside work tree", &mockExecutor{availableBins: map[string]bool{"git": true}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := withMock(tt.exec).GitAvailable(context.Background()); got != tt.want {
				t.Errorf("GitAvailable() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCommit(t *testing.T) {
	m := &mockExecutor{outputs: map[string]string{
		"git status --porcelain -- data/scenarios.yaml": " M data/scenarios.yaml",
	}}
	if err := withMock(m).Commit(context.Background(), "audit: apply 2 fixes", "data/scenarios.yaml"); err != nil {
		t.Fatal(err)
	}
	want := []string{
		"git status --porcelain -- data/scenarios.yaml",
		"git add -- data/scenarios.yaml",
		"git commit -m audit: apply 2 fixes -- data/scenarios.yaml",
	}
	if strings.Join(m.calls, "\n") != strings.Join(want, "\n") {
		t.Errorf("calls = %q, want %q", m.calls, want)
	}
}

func TestCommitNoChanges(t *testing.T) {
	m := &mockExecutor{}
	if err := withMock(m).Commit(context.Background(), "msg", "data/scenarios.yaml"); err != nil {
		t.Fatal(err)
	}
	if len(m.calls) != 1 {
		t.Errorf("expected only a status call, got %q", m.calls)
	}
}

func TestTag(t *testing.T) {
	m := &mockExecutor{failing: map[string]bool{"git tag pre-audit-1": true}, outputs: map[string]string{
		"git tag pre-audit-1": "fatal: tag 'pre-audit-1' already exists",
	}}
	err := withMock(m).Tag(context.Background(), "pre-audit-1")
	if err == nil || !strings.Contains(err.Error(), "already exists") {
		t.Fatalf("error = %v", err)
	}
	if err := withMock(&mockExecutor{}).Tag(context.Background(), "pre-audit-2"); err != nil {
		t.Fatal(err)
	}
}

func TestTail(t *testing.T) {
	long := strings.Repeat("x", maxOutputTail+10)
	got := tail([]byte(long))
	if !strings.HasPrefix(got, "...") || len(got) != maxOutputTail+3 {
		t.Errorf("tail length = %d", len(got))
	}
	if tail([]byte("  ok \n")) != "ok" {
		t.Error("tail should trim whitespace")
	}
}
