// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package toolchain runs the external commands the pipeline depends on:
// the project build used as a pre-flight and post-fix check, and git for
// tagging and committing applied fixes.
package toolchain

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

const binGit = "git"

// maxOutputTail bounds the command output quoted in errors.
const maxOutputTail = 2000

// executor abstracts command execution for testing.
type executor interface {
	LookPath(file string) (string, error)
	RunSilent(ctx context.Context, dir, name string, args ...string) error
	RunOutput(ctx context.Context, dir, name string, args ...string) ([]byte, error)
}

// osExecutor is the production executor backed by os/exec.
type osExecutor struct{}

func (osExecutor) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

func (osExecutor) RunSilent(ctx context.Context, dir, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	return cmd.Run()
}

func (osExecutor) RunOutput(ctx context.Context, dir, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	return cmd.CombinedOutput()
}

// Toolchain runs commands in one working directory.
type Toolchain struct {
	dir  string
	exec executor
}

// New returns a Toolchain rooted at dir. An empty dir is the process
// working directory.
func New(dir string) *Toolchain {
	return &Toolchain{dir: dir, exec: osExecutor{}}
}

// ErrNoCommand is returned by Build when the command binary is not on PATH.
var ErrNoCommand = errors.New("build command not found")

// Build runs command (argv form) and returns an error carrying the tail of
// its output when it fails. An empty command succeeds without running.
func (t *Toolchain) Build(ctx context.Context, command []string) error {
	if len(command) == 0 {
		return nil
	}
	if _, err := t.exec.LookPath(command[0]); err != nil {
		return fmt.Errorf("%w: %s", ErrNoCommand, command[0])
	}
	out, err := t.exec.RunOutput(ctx, t.dir, command[0], command[1:]...)
	if err != nil {
		return fmt.Errorf("running %s: %w\n%s", strings.Join(command, " "), err, tail(out))
	}
	return nil
}

// GitAvailable reports whether git is on PATH and dir is inside a work tree.
func (t *Toolchain) GitAvailable(ctx context.Context) bool {
	if _, err := t.exec.LookPath(binGit); err != nil {
		return false
	}
	return t.exec.RunSilent(ctx, t.dir, binGit, "rev-parse", "--is-inside-work-tree") == nil
}

// Tag creates a lightweight tag at HEAD.
func (t *Toolchain) Tag(ctx context.Context, name string) error {
	if out, err := t.exec.RunOutput(ctx, t.dir, binGit, "tag", name); err != nil {
		return fmt.Errorf("tagging %s: %w\n%s", name, err, tail(out))
	}
	return nil
}

// Commit stages paths and commits them with message. It is a no-op when
// the paths have no changes.
func (t *Toolchain) Commit(ctx context.Context, message string, paths ...string) error {
	status, err := t.exec.RunOutput(ctx, t.dir, binGit, append([]string{"status", "--porcelain", "--"}, paths...)...)
	if err != nil {
		return fmt.Errorf("checking git status: %w\n%s", err, tail(status))
	}
	if len(bytes.TrimSpace(status)) == 0 {
		return nil
	}
	if out, err := t.exec.RunOutput(ctx, t.dir, binGit, append([]string{"add", "--"}, paths...)...); err != nil {
		return fmt.Errorf("staging changes: %w\n%s", err, tail(out))
	}
	args := append([]string{"commit", "-m", message, "--"}, paths...)
	if out, err := t.exec.RunOutput(ctx, t.dir, binGit, args...); err != nil {
		return fmt.Errorf("committing: %w\n%s", err, tail(out))
	}
	return nil
}

func tail(out []byte) string {
	s := strings.TrimSpace(string(out))
	if len(s) > maxOutputTail {
		s = "..." + s[len(s)-maxOutputTail:]
	}
	return s
}
