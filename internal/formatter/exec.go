package formatter

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"

	"pkt.systems/pslog"
)

// ErrNotFound reports that the formatter binary is not on the search path.
var ErrNotFound = errors.New("formatter binary not found")

// Exec formats text by piping it through an external command.
type Exec struct {
	name    string
	command string
	args    []string
	hint    string
	paths   []string

	mu        sync.Mutex
	probed    bool
	available bool
	resolved  string
}

// NewExec builds an external formatter. command may be a bare name, which
// is looked up in searchPaths followed by $PATH.
func NewExec(name, command string, args []string, hint string, searchPaths []string) *Exec {
	if strings.TrimSpace(command) == "" {
		command = name
	}
	return &Exec{
		name:    name,
		command: command,
		args:    append([]string(nil), args...),
		hint:    hint,
		paths:   searchDirs(searchPaths),
	}
}

// Name returns the formatter name shown to the user.
func (e *Exec) Name() string { return e.name }

// Hint returns install instructions.
func (e *Exec) Hint() string { return e.hint }

// Available reports the cached probe result, probing on first use.
func (e *Exec) Available(ctx context.Context) bool {
	e.mu.Lock()
	probed, available := e.probed, e.available
	e.mu.Unlock()
	if probed {
		return available
	}
	return e.Probe(ctx) == nil
}

// Probe runs `<command> --version` and records whether it succeeded.
func (e *Exec) Probe(ctx context.Context) error {
	log := pslog.Ctx(ctx).With("formatter", e.name)
	path, err := e.lookPath()
	if err == nil {
		cmd := exec.CommandContext(ctx, path, "--version")
		cmd.Env = e.env()
		var out []byte
		out, err = cmd.CombinedOutput()
		if err == nil {
			log.Debug("formatter probe ok", "path", path, "version", strings.TrimSpace(firstLine(string(out))))
		}
	}
	e.mu.Lock()
	e.probed = true
	e.available = err == nil
	if err == nil {
		e.resolved = path
	}
	e.mu.Unlock()
	if err != nil {
		log.Info("formatter unavailable", "err", err)
		return fmt.Errorf("probe %s: %w", e.name, err)
	}
	return nil
}

// Format pipes text to the command and returns its stdout.
func (e *Exec) Format(ctx context.Context, text string) (string, error) {
	e.mu.Lock()
	path := e.resolved
	e.mu.Unlock()
	if path == "" {
		var err error
		if path, err = e.lookPath(); err != nil {
			return "", err
		}
	}
	log := pslog.Ctx(ctx).With("formatter", e.name)
	log.Debug("formatter run start", "path", path, "args", strings.Join(e.args, " "))

	cmd := exec.CommandContext(ctx, path, e.args...)
	cmd.Env = e.env()
	cmd.Stdin = strings.NewReader(text)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		preview := strings.TrimSpace(stderr.String())
		if len(preview) > 200 {
			preview = preview[:200]
		}
		log.Warn("formatter run failed", "err", err, "stderr", preview)
		return "", fmt.Errorf("%s failed: %w (%s)", e.name, err, preview)
	}
	log.Debug("formatter run ok", "output_len", stdout.Len())
	return stdout.String(), nil
}

func (e *Exec) lookPath() (string, error) {
	if strings.ContainsRune(e.command, os.PathSeparator) {
		if isExecutable(e.command) {
			return e.command, nil
		}
		return "", fmt.Errorf("%w: %s", ErrNotFound, e.command)
	}
	for _, dir := range e.dirs() {
		candidate := filepath.Join(dir, e.command)
		if isExecutable(candidate) {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrNotFound, e.command)
}

func (e *Exec) dirs() []string {
	dirs := append([]string(nil), e.paths...)
	return append(dirs, filepath.SplitList(os.Getenv("PATH"))...)
}

// env extends PATH so tools that shell out to siblings still resolve them.
func (e *Exec) env() []string {
	return append(os.Environ(), "PATH="+strings.Join(e.dirs(), string(os.PathListSeparator)))
}

func searchDirs(paths []string) []string {
	home, _ := os.UserHomeDir()
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if home != "" && (p == "~" || strings.HasPrefix(p, "~/")) {
			p = filepath.Join(home, strings.TrimPrefix(p, "~"))
		}
		out = append(out, p)
	}
	return out
}

func isExecutable(path string) bool {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return false
	}
	return info.Mode().Perm()&0o111 != 0
}

func firstLine(s string) string {
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		return s[:idx]
	}
	return s
}
