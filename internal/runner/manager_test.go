package runner

import (
	"context"
	"errors"
	"os/exec"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/go-logr/logr/testr"
)

// shell returns a manager whose processes run script; extra args become
// positional parameters and are ignored unless the script uses them.
func shell(t *testing.T, script string) *Manager {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("needs a POSIX shell")
	}
	sh, err := exec.LookPath("sh")
	if err != nil {
		t.Skip("sh not found")
	}
	return NewManager(sh, []string{"-c", script, "sh"}, testr.New(t))
}

func TestManagerReadDrains(t *testing.T) {
	m := shell(t, `echo one; echo two`)
	if err := m.Start("job"); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	defer m.StopAll()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := m.Wait(ctx, "job"); err != nil {
		t.Fatalf("wait failed: %v", err)
	}

	out, err := m.Read("job")
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if out != "one\ntwo\n" {
		t.Errorf("expected both lines, got %q", out)
	}

	out, _ = m.Read("job")
	if out != "" {
		t.Errorf("expected drained buffer, got %q", out)
	}
	if !m.Exited("job") {
		t.Error("expected job to be exited")
	}
	if m.IsRunning("job") {
		t.Error("exited job should not be running")
	}
}

func TestManagerDuplicateName(t *testing.T) {
	m := shell(t, `sleep 5`)
	if err := m.Start("job"); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	defer m.StopAll()

	if err := m.Start("job"); !errors.Is(err, ErrExists) {
		t.Errorf("expected ErrExists, got %v", err)
	}
	if !m.IsRunning("job") {
		t.Error("expected job to be running")
	}
}

func TestManagerStop(t *testing.T) {
	m := shell(t, `sleep 30`)
	if err := m.Start("a"); err != nil {
		t.Fatal(err)
	}
	if err := m.Start("b"); err != nil {
		t.Fatal(err)
	}

	if got := strings.Join(m.List(), ","); got != "a,b" {
		t.Errorf("expected a,b, got %s", got)
	}
	if err := m.Stop("a"); err != nil {
		t.Errorf("stop failed: %v", err)
	}
	if err := m.Stop("a"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if err := m.StopAll(); err != nil {
		t.Errorf("stop all failed: %v", err)
	}
	if len(m.List()) != 0 {
		t.Error("expected no processes after StopAll")
	}
}

func TestManagerUnknown(t *testing.T) {
	m := NewManager("true", nil, testr.New(t))
	if !m.Exited("ghost") {
		t.Error("unknown process should count as exited")
	}
	if _, err := m.Read("ghost"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
