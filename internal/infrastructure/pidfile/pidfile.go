package pidfile

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"syscall"
)

// PIDFile keeps a single `colonybot serve` instance per PID path
type PIDFile struct {
	path string
}

// New creates a new PIDFile manager
func New(path string) *PIDFile {
	return &PIDFile{path: path}
}

// Path returns the managed file location
func (p *PIDFile) Path() string {
	return p.path
}

// Acquire writes the current PID. It fails when the file names a live process;
// stale or unreadable files are replaced.
func (p *PIDFile) Acquire() error {
	if pid, ok := p.readPID(); ok && isProcessRunning(pid) && pid != os.Getpid() {
		return fmt.Errorf("colonybot is already running (PID %d)", pid)
	}

	data := strconv.Itoa(os.Getpid()) + "\n"
	if err := os.WriteFile(p.path, []byte(data), 0o644); err != nil {
		return fmt.Errorf("failed to write PID file: %w", err)
	}
	return nil
}

// Release removes the PID file
func (p *PIDFile) Release() error {
	if err := os.Remove(p.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove PID file: %w", err)
	}
	return nil
}

// Running reports the PID recorded in the file if that process is alive
func (p *PIDFile) Running() (int, bool) {
	pid, ok := p.readPID()
	if !ok || !isProcessRunning(pid) {
		return 0, false
	}
	return pid, true
}

func (p *PIDFile) readPID() (int, bool) {
	data, err := os.ReadFile(p.path)
	if err != nil {
		return 0, false
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid <= 0 {
		return 0, false
	}
	return pid, true
}

// isProcessRunning probes pid with signal 0
func isProcessRunning(pid int) bool {
	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}

	err = process.Signal(syscall.Signal(0))
	switch {
	case err == nil:
		return true
	case errors.Is(err, syscall.EPERM):
		// exists, owned by someone else
		return true
	default:
		return false
	}
}
