// Package backend selects and exposes the WireGuard tunnel backend.
// This file contains the kernel-module backed implementation.
package backend

import (
	"os"
	"strings"

	"github.com/yllada/wg-manager/common"
	"github.com/yllada/wg-manager/rootshell"
)

// KernelBackend drives the in-kernel WireGuard implementation through
// the root shell. It is only constructed after the shell has been
// started successfully.
type KernelBackend struct {
	shell *rootshell.Shell
}

// NewKernelBackend creates the kernel backend. It fails if the root
// shell is not running; the resolver treats that failure as a signal
// to fall back to the userspace backend.
func NewKernelBackend(shell *rootshell.Shell) (*KernelBackend, error) {
	if !shell.Started() {
		return nil, common.ErrShellNotStarted
	}
	return &KernelBackend{shell: shell}, nil
}

// Kind identifies this implementation as the kernel backend.
func (b *KernelBackend) Kind() Kind {
	return KindKernel
}

// Version reports the loaded module's version from sysfs, falling back
// to asking the shell when the file is unreadable from this process.
func (b *KernelBackend) Version() (string, error) {
	data, err := os.ReadFile(common.KernelModuleVersionPath)
	if err == nil {
		return strings.TrimSpace(string(data)), nil
	}

	out, err := b.shell.Run("cat " + common.KernelModuleVersionPath)
	if err != nil {
		return "", common.WrapError(err, "failed to read kernel module version")
	}
	return strings.TrimSpace(out), nil
}

// Shell exposes the privileged session for per-tunnel operations.
func (b *KernelBackend) Shell() *rootshell.Shell {
	return b.shell
}
