// Package shell loads units by running a command inside each unit's directory.
package shell

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/creack/pty"
	"go.trai.ch/unitcache/internal/core/domain"
	"go.trai.ch/unitcache/internal/core/ports"
	"go.trai.ch/zerr"
)

var (
	_ ports.UnitLoader     = (*Loader)(nil)
	_ ports.Rematerializer = (*Loader)(nil)
)

// Environment variables describing the unit to the load command.
const (
	EnvUnitName   = "UNITCACHE_UNIT"
	EnvSourcePath = "UNITCACHE_SOURCE"
)

// allowListedEnvVars are the system environment variables inherited by the
// load command.
var allowListedEnvVars = map[string]struct{}{
	"HOME":   {},
	"TERM":   {},
	"USER":   {},
	"PATH":   {},
	"TMPDIR": {},
}

// Loader implements ports.UnitLoader and ports.Rematerializer with os/exec
// and a pseudo-terminal.
// Every handle it produces is a *domain.CommandUnit registered as active.
type Loader struct {
	logger ports.Logger
	active ports.ActiveUnits

	mu      sync.RWMutex
	command []string
}

// NewLoader creates a Loader. The command is set with SetCommand.
func NewLoader(logger ports.Logger, active ports.ActiveUnits) *Loader {
	return &Loader{logger: logger, active: active}
}

// SetCommand sets the command run for every unit.
func (l *Loader) SetCommand(command []string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.command = slices.Clone(command)
}

// Load runs the command in the unit's directory. A file unit runs in the
// directory containing it.
func (l *Loader) Load(ctx context.Context, req domain.LoadRequest) (domain.Handle, error) {
	l.mu.RLock()
	command := l.command
	l.mu.RUnlock()

	if len(command) == 0 {
		return nil, domain.ErrEmptyLoadCommand
	}

	name := req.Name()
	var out bytes.Buffer
	logOut := &logWriter{logger: l.logger, prefix: name + ": "}

	cmd := exec.CommandContext(ctx, command[0], command[1:]...) //nolint:gosec // command comes from the project configuration
	cmd.Dir = workingDir(req.SourcePath)
	cmd.Env = resolveEnvironment(os.Environ(), map[string]string{
		EnvUnitName:   name,
		EnvSourcePath: req.SourcePath,
	})

	err := runCommand(cmd, io.MultiWriter(&out, logOut, ports.OutputFrom(ctx)))
	_ = logOut.Close()
	if err != nil {
		exitCode := -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			exitCode = exitErr.ExitCode()
		}
		return nil, zerr.With(zerr.With(zerr.Wrap(err, "load command failed"), "exit_code", exitCode), "unit", name)
	}

	unit := &domain.CommandUnit{
		Name:       name,
		SourcePath: req.SourcePath,
		Output:     out.Bytes(),
		LoadedAt:   time.Now(),
	}
	l.register(unit)
	return unit, nil
}

// Rematerialize restores a handle for a unit whose source is unchanged since
// its command last succeeded. The command is not run again.
func (l *Loader) Rematerialize(_ context.Context, rec domain.Record) (domain.Handle, error) {
	if _, err := os.Stat(rec.SourcePath); err != nil {
		return nil, zerr.With(domain.ErrPathNotFound, "path", rec.SourcePath)
	}

	unit := &domain.CommandUnit{
		Name:       rec.UnitName,
		SourcePath: rec.SourcePath,
		LoadedAt:   time.Now(),
		Restored:   true,
	}
	l.register(unit)
	return unit, nil
}

func (l *Loader) register(unit *domain.CommandUnit) {
	if l.active != nil {
		l.active.Register(unit.Name, unit)
	}
}

// runCommand runs cmd with its output on a pseudo-terminal, so tools keep
// their terminal formatting, and copies the output to w. Pipes are used where
// no terminal can be allocated.
func runCommand(cmd *exec.Cmd, w io.Writer) error {
	ptmx, tty, err := pty.Open()
	if err != nil {
		cmd.Stdout = w
		cmd.Stderr = w
		return cmd.Run()
	}
	defer func() { _ = ptmx.Close() }()

	cmd.Stdout = tty
	cmd.Stderr = tty
	startErr := cmd.Start()
	// The child holds its own copy of the terminal.
	_ = tty.Close()
	if startErr != nil {
		return startErr
	}

	ioDone := make(chan struct{})
	go func() {
		defer close(ioDone)
		// Reading a terminal whose writers are gone ends with EIO.
		_, _ = io.Copy(w, ptmx)
	}()

	err = cmd.Wait()
	<-ioDone
	return err
}

func workingDir(sourcePath string) string {
	info, err := os.Stat(sourcePath)
	if err == nil && info.IsDir() {
		return sourcePath
	}
	return filepath.Dir(sourcePath)
}

// resolveEnvironment keeps allow-listed system variables and applies overrides.
func resolveEnvironment(sysEnv []string, overrides map[string]string) []string {
	envMap := make(map[string]string, len(allowListedEnvVars)+len(overrides))
	for _, entry := range sysEnv {
		k, v, ok := strings.Cut(entry, "=")
		if !ok {
			continue
		}
		if _, allowed := allowListedEnvVars[k]; allowed {
			envMap[k] = v
		}
	}
	for k, v := range overrides {
		envMap[k] = v
	}

	result := make([]string, 0, len(envMap))
	for k, v := range envMap {
		result = append(result, k+"="+v)
	}
	slices.Sort(result)
	return result
}

// logWriter forwards complete output lines to the debug log.
type logWriter struct {
	logger ports.Logger
	prefix string
	buf    []byte
}

func (w *logWriter) Write(p []byte) (int, error) {
	w.buf = append(w.buf, p...)
	for {
		i := bytes.IndexByte(w.buf, '\n')
		if i < 0 {
			break
		}
		w.logLine(w.buf[:i])
		w.buf = w.buf[i+1:]
	}
	return len(p), nil
}

func (w *logWriter) Close() error {
	if len(w.buf) > 0 {
		w.logLine(w.buf)
		w.buf = nil
	}
	return nil
}

func (w *logWriter) logLine(line []byte) {
	if w.logger == nil {
		return
	}
	w.logger.Debug(w.prefix + strings.TrimSuffix(string(line), "\r"))
}
