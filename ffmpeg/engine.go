// Package ffmpeg wraps the external ffmpeg toolchain behind a scoped session
// with a private workspace of virtual files.
//
// A session is acquired per high-level operation and never pooled: every
// composite (remux join, byte-range remux, overlay re-encode) creates its
// files inside the session workspace and the workspace is removed on Close,
// on every exit path. Cleanup is advisory; its failures are swallowed.
package ffmpeg

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/redgrab-cli/redgrab/filesystem"
	"github.com/redgrab-cli/redgrab/key"
	"github.com/redgrab-cli/redgrab/log"
	"github.com/redgrab-cli/redgrab/where"
	"github.com/spf13/viper"
)

// Runner executes a toolchain invocation inside a working directory.
// Swappable so tests can assert on argv without a real binary.
type Runner interface {
	Run(ctx context.Context, dir string, argv []string) error
}

// execRunner shells out to the configured ffmpeg binary.
type execRunner struct {
	binary string
}

func (r execRunner) Run(ctx context.Context, dir string, argv []string) error {
	cmd := exec.CommandContext(ctx, r.binary, argv...)
	cmd.Dir = dir

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ffmpeg %s: %w: %s", strings.Join(argv, " "), err, tail(stderr.String()))
	}
	return nil
}

// tail keeps the last few stderr lines so failures stay readable.
func tail(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	if len(lines) > 4 {
		lines = lines[len(lines)-4:]
	}
	return strings.Join(lines, "; ")
}

// Engine is one scoped toolchain session.
type Engine struct {
	dir    string
	runner Runner
}

// New acquires a fresh session with a unique workspace under the
// application temp directory.
func New() (*Engine, error) {
	binary := viper.GetString(key.FFmpegBinary)
	if binary == "" {
		binary = "ffmpeg"
	}
	return NewWithRunner(execRunner{binary: binary})
}

// NewWithRunner acquires a session driven by a custom runner.
func NewWithRunner(runner Runner) (*Engine, error) {
	dir := filepath.Join(where.Temp(), "session-"+uuid.NewString())
	if err := filesystem.API().MkdirAll(dir, os.ModePerm); err != nil {
		return nil, fmt.Errorf("create session workspace: %w", err)
	}
	return &Engine{dir: dir, runner: runner}, nil
}

// WriteFile stores bytes under a name in the session workspace.
func (e *Engine) WriteFile(name string, data []byte) error {
	if err := filesystem.API().WriteFile(filepath.Join(e.dir, name), data, 0644); err != nil {
		return fmt.Errorf("write virtual file %s: %w", name, err)
	}
	return nil
}

// ReadFile retrieves the bytes of a named workspace file.
func (e *Engine) ReadFile(name string) ([]byte, error) {
	data, err := filesystem.API().ReadFile(filepath.Join(e.dir, name))
	if err != nil {
		return nil, fmt.Errorf("read virtual file %s: %w", name, err)
	}
	return data, nil
}

// DeleteFile removes a named workspace file. Best-effort: cleanup failures
// are logged and swallowed.
func (e *Engine) DeleteFile(name string) {
	if err := filesystem.API().Remove(filepath.Join(e.dir, name)); err != nil {
		log.Debugf("delete virtual file %s: %v", name, err)
	}
}

// Run invokes the toolchain with the given argv inside the workspace.
// A non-zero exit propagates; callers do not retry.
func (e *Engine) Run(ctx context.Context, argv ...string) error {
	log.Debugf("ffmpeg run: %s", strings.Join(argv, " "))
	return e.runner.Run(ctx, e.dir, argv)
}

// Close releases the session workspace. Safe on every exit path.
func (e *Engine) Close() {
	if err := filesystem.API().RemoveAll(e.dir); err != nil {
		log.Debugf("remove session workspace: %v", err)
	}
}
