// Package rootshell provides a long-lived elevated command execution
// channel. The kernel WireGuard backend needs root to drive wg(8) and
// ip(8); the shell is started lazily, only when that backend is chosen,
// and lives for the rest of the process.
package rootshell

import (
	"bufio"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/yllada/wg-manager/common"
)

// Shell is a persistent root shell. Start launches it once; Run sends
// commands over its stdin and collects output delimited by per-command
// markers. The zero value is not usable; use New.
type Shell struct {
	mu      sync.Mutex
	cmd     *exec.Cmd
	stdin   io.WriteCloser
	stdout  *bufio.Reader
	started bool
}

// New creates an unstarted Shell.
func New() *Shell {
	return &Shell{}
}

// Started reports whether the shell is running.
func (s *Shell) Started() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.started
}

// Start launches the elevated shell. It is idempotent: a second call on
// a running shell returns nil. Errors are opaque to callers, who only
// distinguish "started" from "not started"; permission denial, a missing
// sudo binary, and a declined elevation prompt all look the same.
func (s *Shell) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	// -n: fail instead of prompting, so a session without cached
	// credentials errors out rather than hanging on a hidden prompt.
	cmd := exec.Command("sudo", "-n", "--", "sh")
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return common.WrapError(err, "failed to open shell stdin")
	}
	stdoutPipe, err := cmd.StdoutPipe()
	if err != nil {
		return common.WrapError(err, "failed to open shell stdout")
	}

	if err := cmd.Start(); err != nil {
		return common.WrapError(err, "failed to start root shell")
	}

	stdout := bufio.NewReader(stdoutPipe)

	// Verify the shell actually came up with root. sudo -n exits
	// immediately on a credential failure, which surfaces here as a
	// read error or a wrong marker.
	marker := "wgm-" + uuid.NewString()
	if _, err := fmt.Fprintf(stdin, "id -u && echo %s\n", marker); err != nil {
		cmd.Process.Kill()
		return common.WrapError(err, "root shell probe failed")
	}
	uidLine, err := stdout.ReadString('\n')
	if err != nil {
		cmd.Process.Kill()
		return common.ErrShellUnavailable
	}
	if strings.TrimSpace(uidLine) != "0" {
		cmd.Process.Kill()
		return common.ErrPermissionDenied
	}
	if line, err := stdout.ReadString('\n'); err != nil || strings.TrimSpace(line) != marker {
		cmd.Process.Kill()
		return common.ErrShellUnavailable
	}

	s.cmd = cmd
	s.stdin = stdin
	s.stdout = stdout
	s.started = true

	common.LogInfo("Root shell started (pid %d)", cmd.Process.Pid)
	return nil
}

// Run executes a command in the root shell and returns its combined
// stdout. Commands run sequentially; the shell serializes them itself
// since they all travel over one stdin.
func (s *Shell) Run(command string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return "", common.ErrShellNotStarted
	}

	marker := "wgm-" + uuid.NewString()
	if _, err := fmt.Fprintf(s.stdin, "%s\necho %s $?\n", command, marker); err != nil {
		return "", common.WrapError(err, "failed to write command")
	}

	var out strings.Builder
	for {
		line, err := s.stdout.ReadString('\n')
		if err != nil {
			return "", common.ErrShellUnavailable
		}
		trimmed := strings.TrimSpace(line)
		if rest, ok := strings.CutPrefix(trimmed, marker+" "); ok {
			if rest != "0" {
				return out.String(), fmt.Errorf("command exited with status %s", rest)
			}
			return out.String(), nil
		}
		out.WriteString(line)
	}
}
