// Package supervisor manages the bot process lifecycle from the dashboard.
package supervisor

import (
	"bufio"
	"fmt"
	"io"
	"os/exec"
	"sync"
	"syscall"
	"time"
)

// State describes the supervised process.
type State string

const (
	StateStopped  State = "stopped"
	StateRunning  State = "running"
	StateStopping State = "stopping"
)

// Supervisor starts and stops the bot binary and captures its output.
type Supervisor struct {
	binary   string
	args     []string
	logLines int

	mu    sync.Mutex
	cmd   *exec.Cmd
	state State
	logs  []string
	pid   int
}

// New creates a supervisor for the given binary. Output is kept in a ring
// buffer of logLines lines.
func New(binary string, args []string, logLines int) *Supervisor {
	return &Supervisor{
		binary:   binary,
		args:     args,
		logLines: logLines,
		state:    StateStopped,
	}
}

// State returns the current process state.
func (s *Supervisor) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// PID returns the process id, or 0 when not running.
func (s *Supervisor) PID() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateRunning {
		return 0
	}
	return s.pid
}

// Logs returns a copy of the captured output lines.
func (s *Supervisor) Logs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.logs))
	copy(out, s.logs)
	return out
}

// Start launches the bot process. It is an error to start twice.
func (s *Supervisor) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateStopped {
		return fmt.Errorf("process is %s", s.state)
	}

	cmd := exec.Command(s.binary, s.args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("stdout pipe: %w", err)
	}
	cmd.Stderr = cmd.Stdout

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", s.binary, err)
	}

	s.cmd = cmd
	s.pid = cmd.Process.Pid
	s.state = StateRunning
	s.appendLogLocked(fmt.Sprintf("--- started %s (pid %d) ---", s.binary, s.pid))

	go s.consume(stdout)
	go s.wait(cmd)

	return nil
}

// Stop sends SIGTERM and waits up to timeout before killing the process.
func (s *Supervisor) Stop(timeout time.Duration) error {
	s.mu.Lock()
	if s.state != StateRunning {
		s.mu.Unlock()
		return fmt.Errorf("process is %s", s.state)
	}
	cmd := s.cmd
	s.state = StateStopping
	s.mu.Unlock()

	if err := cmd.Process.Signal(syscall.SIGTERM); err != nil {
		return fmt.Errorf("signal process: %w", err)
	}

	deadline := time.After(timeout)
	tick := time.NewTicker(100 * time.Millisecond)
	defer tick.Stop()

	for {
		select {
		case <-deadline:
			cmd.Process.Kill()
			return nil
		case <-tick.C:
			if s.State() == StateStopped {
				return nil
			}
		}
	}
}

func (s *Supervisor) consume(r io.Reader) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		s.mu.Lock()
		s.appendLogLocked(scanner.Text())
		s.mu.Unlock()
	}
}

func (s *Supervisor) wait(cmd *exec.Cmd) {
	err := cmd.Wait()

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.appendLogLocked(fmt.Sprintf("--- exited: %v ---", err))
	} else {
		s.appendLogLocked("--- exited ---")
	}
	s.state = StateStopped
	s.cmd = nil
	s.pid = 0
}

func (s *Supervisor) appendLogLocked(line string) {
	s.logs = append(s.logs, line)
	if len(s.logs) > s.logLines {
		s.logs = s.logs[len(s.logs)-s.logLines:]
	}
}
