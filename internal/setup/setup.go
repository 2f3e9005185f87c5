// Package setup registers the RIF MCP server in a desktop MCP client's
// configuration file.
package setup

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
)

// ServerName is the key under mcpServers that holds the RIF server entry.
const ServerName = "rif-protocol"

// BinaryName is the MCP stdio server binary looked up when no path is given.
const BinaryName = "mcp-server"

// ErrNotRegistered is returned when the client config has no RIF entry.
var ErrNotRegistered = errors.New("rif-protocol server not registered")

// ServerEntry is a single mcpServers entry.
type ServerEntry struct {
	Command string            `json:"command"`
	Args    []string          `json:"args,omitempty"`
	Env     map[string]string `json:"env,omitempty"`
}

// clientConfig keeps every top-level key of the client file so that
// rewriting it only touches mcpServers.
type clientConfig struct {
	servers map[string]ServerEntry
	other   map[string]json.RawMessage
}

// Options controls Register.
type Options struct {
	ConfigPath string // client config file; empty uses DefaultConfigPath
	BinaryPath string // server binary; empty searches PATH and common locations
	DataDir    string // exported as RIF_DATA_DIR when set
}

// DefaultConfigPath returns the desktop client's config file for this OS.
func DefaultConfigPath() (string, error) {
	return configPathFor(runtime.GOOS, os.Getenv, os.UserHomeDir)
}

func configPathFor(goos string, getenv func(string) string, home func() (string, error)) (string, error) {
	var dir string

	switch goos {
	case "darwin":
		h, err := home()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		dir = filepath.Join(h, "Library", "Application Support", "Claude")
	case "linux":
		if xdg := getenv("XDG_CONFIG_HOME"); xdg != "" {
			dir = filepath.Join(xdg, "Claude")
			break
		}
		h, err := home()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		dir = filepath.Join(h, ".config", "Claude")
	case "windows":
		appData := getenv("APPDATA")
		if appData == "" {
			return "", fmt.Errorf("APPDATA environment variable not set")
		}
		dir = filepath.Join(appData, "Claude")
	default:
		return "", fmt.Errorf("unsupported operating system: %s", goos)
	}

	return filepath.Join(dir, "claude_desktop_config.json"), nil
}

func resolveConfigPath(path string) (string, error) {
	if path != "" {
		return path, nil
	}
	return DefaultConfigPath()
}

func loadClientConfig(path string) (*clientConfig, error) {
	cfg := &clientConfig{
		servers: make(map[string]ServerEntry),
		other:   make(map[string]json.RawMessage),
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := json.Unmarshal(data, &cfg.other); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if raw, ok := cfg.other["mcpServers"]; ok {
		if err := json.Unmarshal(raw, &cfg.servers); err != nil {
			return nil, fmt.Errorf("failed to parse mcpServers: %w", err)
		}
		delete(cfg.other, "mcpServers")
	}
	return cfg, nil
}

func (c *clientConfig) save(path string) error {
	out := make(map[string]interface{}, len(c.other)+1)
	for k, v := range c.other {
		out[k] = v
	}
	out["mcpServers"] = c.servers

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Register adds or replaces the RIF server entry and returns the config
// path written.
func Register(opts Options) (string, error) {
	path, err := resolveConfigPath(opts.ConfigPath)
	if err != nil {
		return "", err
	}

	binary := opts.BinaryPath
	if binary == "" {
		if binary, err = FindBinary(); err != nil {
			return "", err
		}
	}

	cfg, err := loadClientConfig(path)
	if err != nil {
		return "", err
	}

	entry := ServerEntry{Command: binary}
	if opts.DataDir != "" {
		entry.Env = map[string]string{"RIF_DATA_DIR": opts.DataDir}
	}
	cfg.servers[ServerName] = entry

	return path, cfg.save(path)
}

// Unregister removes the RIF server entry. It returns ErrNotRegistered when
// there is none.
func Unregister(configPath string) error {
	path, err := resolveConfigPath(configPath)
	if err != nil {
		return err
	}
	cfg, err := loadClientConfig(path)
	if err != nil {
		return err
	}
	if _, ok := cfg.servers[ServerName]; !ok {
		return ErrNotRegistered
	}
	delete(cfg.servers, ServerName)
	return cfg.save(path)
}

// FindBinary looks for the MCP server binary on PATH, then in the build
// directory and the usual install locations.
func FindBinary() (string, error) {
	if path, err := exec.LookPath(BinaryName); err == nil {
		return path, nil
	}

	locations := []string{
		"./" + BinaryName,
		"./build/" + BinaryName,
		"/usr/local/bin/" + BinaryName,
	}
	if home, err := os.UserHomeDir(); err == nil {
		locations = append(locations, filepath.Join(home, ".local", "bin", BinaryName))
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			if abs, err := filepath.Abs(loc); err == nil {
				return abs, nil
			}
			return loc, nil
		}
	}
	return "", fmt.Errorf("binary %q not found on PATH or in common locations", BinaryName)
}

// Status describes the current registration.
type Status struct {
	ConfigPath string
	Registered bool
	Entry      ServerEntry
	// Issues lists problems that keep the client from starting the server.
	Issues []string
}

// Inspect reports whether the RIF server is registered and usable.
func Inspect(configPath string) (*Status, error) {
	path, err := resolveConfigPath(configPath)
	if err != nil {
		return nil, err
	}
	cfg, err := loadClientConfig(path)
	if err != nil {
		return nil, err
	}

	status := &Status{ConfigPath: path}
	entry, ok := cfg.servers[ServerName]
	if !ok {
		status.Issues = append(status.Issues, "server not registered")
		return status, nil
	}
	status.Registered = true
	status.Entry = entry

	info, err := os.Stat(entry.Command)
	switch {
	case err != nil:
		status.Issues = append(status.Issues, fmt.Sprintf("server binary not found: %s", entry.Command))
	case info.Mode()&0111 == 0:
		status.Issues = append(status.Issues, fmt.Sprintf("server binary is not executable: %s", entry.Command))
	}
	return status, nil
}
