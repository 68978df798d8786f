// Package cli provides command-line interface functionality for WG
// Manager. This lets users inspect the resolved backend and manage
// tunnels from the terminal.
package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/yllada/wg-manager/app"
	"github.com/yllada/wg-manager/backend"
	"github.com/yllada/wg-manager/diagnostics"
)

// Styles used for status output. They render as plain text when
// stdout is not a terminal.
var (
	kindStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
)

// CLI represents the command-line interface.
type CLI struct {
	app *app.App
}

// New creates a new CLI instance over the application context.
func New(a *app.App) *CLI {
	return &CLI{app: a}
}

func styled(style lipgloss.Style, s string) string {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return s
	}
	return style.Render(s)
}

// Status resolves the backend if needed and prints its kind and
// version. Resolution may block on the kernel module probe and
// privilege escalation.
func (c *CLI) Status() error {
	b := c.app.Backend()

	fmt.Printf("%s %s\n", styled(labelStyle, "Backend:"), styled(kindStyle, b.Kind().String()))

	version, err := b.Version()
	if err != nil {
		fmt.Printf("%s %s\n", styled(labelStyle, "Version:"), styled(warnStyle, "unavailable"))
		return nil
	}
	fmt.Printf("%s %s\n", styled(labelStyle, "Version:"), version)

	if b.Kind() == backend.KindKernel {
		fmt.Println(styled(labelStyle, "Using the in-kernel WireGuard implementation."))
	}
	return nil
}

// ListTunnels prints all configured tunnels.
func (c *CLI) ListTunnels() error {
	tunnels := c.app.Tunnels().List()

	if len(tunnels) == 0 {
		fmt.Println("No tunnels configured.")
		fmt.Println("Create one with: wg-manager -create <name>")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tPUBLIC KEY\tPORT\tLAST USED")
	fmt.Fprintln(w, "----\t----------\t----\t---------")

	for _, t := range tunnels {
		pubkey := t.PublicKey
		if len(pubkey) > 12 {
			pubkey = pubkey[:12] + "…"
		}

		port := "auto"
		if t.ListenPort != 0 {
			port = fmt.Sprintf("%d", t.ListenPort)
		}

		lastUsed := "never"
		if !t.LastUsed.IsZero() {
			lastUsed = t.LastUsed.Format(time.DateTime)
		}

		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", t.Name, pubkey, port, lastUsed)
	}
	return w.Flush()
}

// CreateTunnel creates a tunnel with a freshly generated keypair.
func (c *CLI) CreateTunnel(name string) error {
	t, err := c.app.Tunnels().Create(name, nil, 0)
	if err != nil {
		return fmt.Errorf("failed to create tunnel: %w", err)
	}
	fmt.Printf("Created tunnel %q\n", t.Name)
	fmt.Printf("Public key: %s\n", t.PublicKey)
	return nil
}

// DeleteTunnel removes a tunnel and its private key.
func (c *CLI) DeleteTunnel(name string) error {
	if err := c.app.Tunnels().Delete(name); err != nil {
		return fmt.Errorf("failed to delete tunnel: %w", err)
	}
	fmt.Printf("Deleted tunnel %q\n", name)
	return nil
}

// GenKey prints a freshly generated private/public keypair without
// storing it anywhere.
func (c *CLI) GenKey() error {
	key, err := backend.GenerateKey()
	if err != nil {
		return err
	}
	fmt.Printf("Private key: %s\n", key)
	fmt.Printf("Public key:  %s\n", key.PublicKey())
	return nil
}

// SetDiagnosticsAuth prompts for the diagnostics endpoint credentials
// and stores them in the credential store. The password is read
// without echo when stdin is a terminal.
func (c *CLI) SetDiagnosticsAuth() error {
	fmt.Print("Login: ")
	reader := bufio.NewReader(os.Stdin)
	login, err := reader.ReadString('\n')
	if err != nil {
		return fmt.Errorf("failed to read login: %w", err)
	}
	login = strings.TrimSpace(login)

	var password string
	if term.IsTerminal(int(os.Stdin.Fd())) {
		fmt.Print("Password: ")
		raw, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Println()
		if err != nil {
			return fmt.Errorf("failed to read password: %w", err)
		}
		password = string(raw)
	} else {
		line, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("failed to read password: %w", err)
		}
		password = strings.TrimSpace(line)
	}

	if err := diagnostics.SetCredentials(c.app.CredentialStore(), login, password); err != nil {
		return fmt.Errorf("failed to store credentials: %w", err)
	}
	fmt.Println("Diagnostics credentials stored.")
	return nil
}
