package plugins

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"

	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-plugin"

	"github.com/ayudhinc/vfxvox-pipeline-utils/internal/domain"
)

// Launcher resolves a reference "module:callable" by starting the plugin
// binary named module from its directory. Each binary is started once and
// reused until Close.
type Launcher struct {
	dir    string
	logger hclog.Logger

	mu      sync.Mutex
	clients map[string]*plugin.Client
}

// NewLauncher creates a Launcher for plugin binaries in dir. A leading "~" is
// expanded to the user's home directory.
func NewLauncher(dir string, logger hclog.Logger) *Launcher {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Launcher{
		dir:     expandHome(dir),
		logger:  logger.Named("launcher"),
		clients: make(map[string]*plugin.Client),
	}
}

// Dir returns the directory plugin binaries are looked up in.
func (l *Launcher) Dir() string { return l.dir }

func (l *Launcher) Resolve(ref domain.PluginRef) (domain.ExternalValidator, error) {
	if strings.ContainsAny(ref.Module, `/\`) {
		return nil, fmt.Errorf("invalid plugin module %q", ref.Module)
	}
	path := filepath.Join(l.dir, ref.Module)
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: no plugin binary %s", ErrNotFound, path)
		}
		return nil, err
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", ErrNotFound, path)
	}

	impl, err := l.dispense(ref.Module, path)
	if err != nil {
		return nil, fmt.Errorf("starting plugin %s: %w", ref.Module, err)
	}
	callable := ref.Callable
	return domain.ValidatorFunc(func(_ context.Context, vctx domain.ValidatorContext) ([]domain.RawIssue, error) {
		return impl.Validate(callable, vctx)
	}), nil
}

func (l *Launcher) dispense(module, path string) (Validator, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	client, ok := l.clients[module]
	if !ok || client.Exited() {
		client = plugin.NewClient(&plugin.ClientConfig{
			HandshakeConfig:  HandshakeConfig,
			Plugins:          PluginMap,
			Cmd:              exec.Command(path),
			Logger:           l.logger,
			AllowedProtocols: []plugin.Protocol{plugin.ProtocolNetRPC},
		})
		l.clients[module] = client
		l.logger.Debug("plugin started", "module", module, "path", path)
	}

	rpcClient, err := client.Client()
	if err != nil {
		client.Kill()
		delete(l.clients, module)
		return nil, err
	}
	raw, err := rpcClient.Dispense(PluginTypeValidator)
	if err != nil {
		return nil, err
	}
	v, ok := raw.(Validator)
	if !ok {
		return nil, fmt.Errorf("plugin %s does not serve a validator", module)
	}
	return v, nil
}

// Close stops every plugin process started by the launcher.
func (l *Launcher) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	for module, c := range l.clients {
		c.Kill()
		delete(l.clients, module)
	}
}

func expandHome(dir string) string {
	if dir != "~" && !strings.HasPrefix(dir, "~/") {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return dir
	}
	return filepath.Join(home, strings.TrimPrefix(dir, "~"))
}
