// Package runner launches the external simulator as named child processes
// and collects their output incrementally.
package runner

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/go-logr/logr"
)

const waitDelay = 2 * time.Second

var (
	ErrExists   = errors.New("runner: process name already in use")
	ErrNotFound = errors.New("runner: no process with that name")
)

type process struct {
	cmd  *exec.Cmd
	done chan struct{}

	mu     sync.Mutex
	stdout strings.Builder
	stderr strings.Builder
	err    error
}

func (p *process) exited() bool {
	select {
	case <-p.done:
		return true
	default:
		return false
	}
}

// Manager runs every process as `bin prefix... args...`.
type Manager struct {
	bin    string
	prefix []string
	log    logr.Logger

	mu    sync.Mutex
	procs map[string]*process
}

func NewManager(bin string, prefix []string, log logr.Logger) *Manager {
	return &Manager{
		bin:    bin,
		prefix: prefix,
		log:    log,
		procs:  make(map[string]*process),
	}
}

// Start launches a process under name. The name stays reserved until Stop.
func (m *Manager) Start(name string, args ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.procs[name]; ok {
		return fmt.Errorf("%w: %s", ErrExists, name)
	}

	argv := append(append([]string{}, m.prefix...), args...)
	p := &process{done: make(chan struct{})}
	cmd := exec.Command(m.bin, argv...)
	cmd.Stdout = &lockedWriter{mu: &p.mu, buf: &p.stdout}
	cmd.Stderr = &lockedWriter{mu: &p.mu, buf: &p.stderr}
	// orphaned grandchildren may hold the pipes open after a kill
	cmd.WaitDelay = waitDelay
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("runner: start %s: %w", name, err)
	}
	p.cmd = cmd
	m.procs[name] = p
	m.log.V(1).Info("process started", "name", name, "pid", cmd.Process.Pid, "args", argv)

	go func() {
		err := cmd.Wait()
		p.mu.Lock()
		p.err = err
		p.mu.Unlock()
		close(p.done)
		m.log.V(1).Info("process exited", "name", name, "error", err)
	}()
	return nil
}

type lockedWriter struct {
	mu  *sync.Mutex
	buf *strings.Builder
}

func (w *lockedWriter) Write(b []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.buf.Write(b)
}

func (m *Manager) get(name string) (*process, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.procs[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return p, nil
}

// Read returns the stdout collected since the previous Read.
func (m *Manager) Read(name string) (string, error) {
	p, err := m.get(name)
	if err != nil {
		return "", err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	out := p.stdout.String()
	p.stdout.Reset()
	return out, nil
}

// ReadErr returns the stderr collected since the previous ReadErr.
func (m *Manager) ReadErr(name string) (string, error) {
	p, err := m.get(name)
	if err != nil {
		return "", err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	out := p.stderr.String()
	p.stderr.Reset()
	return out, nil
}

// Exited reports whether the process finished. Unknown names count as exited.
func (m *Manager) Exited(name string) bool {
	p, err := m.get(name)
	if err != nil {
		return true
	}
	return p.exited()
}

// Wait blocks until the process exits and returns its exit error.
func (m *Manager) Wait(ctx context.Context, name string) error {
	p, err := m.get(name)
	if err != nil {
		return err
	}
	select {
	case <-p.done:
		p.mu.Lock()
		defer p.mu.Unlock()
		return p.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stop kills the process, waits for it and releases its name.
func (m *Manager) Stop(name string) error {
	m.mu.Lock()
	p, ok := m.procs[name]
	delete(m.procs, name)
	m.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return p.kill()
}

func (p *process) kill() error {
	if !p.exited() {
		if err := p.cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
			return fmt.Errorf("runner: kill: %w", err)
		}
	}
	<-p.done
	return nil
}

// StopAll stops every process and reports all failures together.
func (m *Manager) StopAll() error {
	m.mu.Lock()
	procs := m.procs
	m.procs = make(map[string]*process)
	m.mu.Unlock()

	var errs []error
	for name, p := range procs {
		if err := p.kill(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
	}
	return errors.Join(errs...)
}

func (m *Manager) List() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	names := make([]string, 0, len(m.procs))
	for name := range m.procs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsRunning reports whether name is registered and has not exited.
func (m *Manager) IsRunning(name string) bool {
	p, err := m.get(name)
	return err == nil && !p.exited()
}
