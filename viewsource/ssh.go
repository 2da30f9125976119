// SSHViewSource fetches view definitions by running a fixed command
// over an SSH connection: dial with password auth and a permissive
// host key check, open one session per command, and capture combined
// stdout+stderr. Unlike a component that runs an arbitrary
// caller-supplied command per message, this runs one fixed command and
// parses its output as a view catalog instead of a pass-through shell
// result.
package viewsource

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/ssh"

	"github.com/squigglygo/squiggly/types"
)

// SSHViewSourceConfig configures an SSHViewSource.
type SSHViewSourceConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	// Command is run over the SSH session on Open and on every Reload.
	// Each line of its combined stdout+stderr is expected to be in the
	// form "viewName,fieldName"; everything after the first comma is the
	// field name. Blank lines, lines without a comma and lines with an
	// empty view or field name are ignored.
	Command string
	// Timeout bounds the initial TCP+handshake dial. Zero means no
	// timeout.
	Timeout time.Duration
}

// SSHViewSource is a types.ViewSource whose view catalog is produced by
// a remote command rather than a local database or static map,
// refreshed on demand via Reload.
type SSHViewSource struct {
	client  *ssh.Client
	command string

	mu    sync.RWMutex
	views map[string][]string
}

// OpenSSHViewSource dials cfg.Host and runs cfg.Command once before
// returning, so a freshly constructed source is immediately usable.
func OpenSSHViewSource(cfg SSHViewSourceConfig) (*SSHViewSource, error) {
	if cfg.Command == "" {
		return nil, fmt.Errorf("viewsource: Command can not be empty")
	}
	clientCfg := &ssh.ClientConfig{
		User:            cfg.Username,
		Auth:            []ssh.AuthMethod{ssh.Password(cfg.Password)},
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         cfg.Timeout,
	}
	client, err := ssh.Dial("tcp", fmt.Sprintf("%s:%d", cfg.Host, cfg.Port), clientCfg)
	if err != nil {
		return nil, fmt.Errorf("viewsource: dialing ssh host: %w", err)
	}

	v := &SSHViewSource{client: client, command: cfg.Command, views: map[string][]string{}}
	if err := v.Reload(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return v, nil
}

// Reload re-runs the configured command and atomically replaces the
// in-memory view table with the parsed result. A failed reload leaves
// the previously loaded views in place.
func (v *SSHViewSource) Reload() error {
	session, err := v.client.NewSession()
	if err != nil {
		return fmt.Errorf("viewsource: opening ssh session: %w", err)
	}
	defer session.Close()

	output, err := session.CombinedOutput(v.command)
	if err != nil {
		return fmt.Errorf("viewsource: running view catalog command: %w", err)
	}

	pairs := parseViewCatalog(string(output))

	v.mu.Lock()
	v.views = groupFields(pairs)
	v.mu.Unlock()
	return nil
}

// parseViewCatalog splits a command's "viewName,fieldName" output into
// pairs, tolerating blank lines and stray non-conforming output on
// stderr merged in by CombinedOutput.
func parseViewCatalog(output string) [][2]string {
	var pairs [][2]string
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		parts := strings.SplitN(line, ",", 2)
		if len(parts) != 2 {
			continue
		}
		view := strings.TrimSpace(parts[0])
		field := strings.TrimSpace(parts[1])
		if view == "" || field == "" {
			continue
		}
		pairs = append(pairs, [2]string{view, field})
	}
	return pairs
}

// ResolveView implements types.ViewSource.
func (v *SSHViewSource) ResolveView(name string) ([]string, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	fields, ok := v.views[name]
	return fields, ok
}

// Close releases the underlying SSH connection.
func (v *SSHViewSource) Close() error {
	return v.client.Close()
}

var _ types.ViewSource = (*SSHViewSource)(nil)
