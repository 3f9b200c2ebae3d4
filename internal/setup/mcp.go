// Package setup registers vinario with MCP clients that read a project
// .mcp.json file.
package setup

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
)

// ServerName is the key vinario is registered under in .mcp.json.
const ServerName = "vinario"

// FileName is the project-level MCP client configuration file.
const FileName = ".mcp.json"

// mcpConfig keeps other servers' entries as raw JSON so fields vinario does
// not know about survive a rewrite.
type mcpConfig struct {
	Servers map[string]json.RawMessage `json:"mcpServers"`
}

type mcpServer struct {
	Command string            `json:"command"`
	Args    []string          `json:"args"`
	Env     map[string]string `json:"env,omitempty"`
}

// InstallMCP registers `vinario mcp` in projectDir/.mcp.json, serving the
// reviews in contentDir. Existing servers are preserved.
func InstallMCP(projectDir, contentDir string) (string, error) {
	path := filepath.Join(projectDir, FileName)
	cfg, err := readConfig(path)
	if err != nil {
		return "", err
	}

	absContent, err := filepath.Abs(contentDir)
	if err != nil {
		return "", fmt.Errorf("resolve content dir: %w", err)
	}
	entry, _ := json.Marshal(mcpServer{
		Command: detectBinaryPath(),
		Args:    []string{"mcp"},
		Env: map[string]string{
			"VINARIO_CONTENT_DIR": absContent,
		},
	})
	cfg.Servers[ServerName] = entry

	if err := writeConfig(path, cfg); err != nil {
		return "", err
	}
	return path, nil
}

// RemoveMCP removes vinario from projectDir/.mcp.json. It reports whether an
// entry was present.
func RemoveMCP(projectDir string) (bool, error) {
	path := filepath.Join(projectDir, FileName)
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	cfg, err := readConfig(path)
	if err != nil {
		return false, err
	}
	if _, ok := cfg.Servers[ServerName]; !ok {
		return false, nil
	}
	delete(cfg.Servers, ServerName)
	return true, writeConfig(path, cfg)
}

// MCPInstalled checks if vinario is registered in projectDir/.mcp.json.
func MCPInstalled(projectDir string) bool {
	data, err := os.ReadFile(filepath.Join(projectDir, FileName))
	if err != nil {
		return false
	}
	var cfg mcpConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return false
	}
	_, ok := cfg.Servers[ServerName]
	return ok
}

func readConfig(path string) (mcpConfig, error) {
	var cfg mcpConfig
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return cfg, fmt.Errorf("read %s: %w", FileName, err)
	default:
		if err := json.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", FileName, err)
		}
	}
	if cfg.Servers == nil {
		cfg.Servers = make(map[string]json.RawMessage)
	}
	return cfg, nil
}

func writeConfig(path string, cfg mcpConfig) error {
	data, _ := json.MarshalIndent(cfg, "", "  ")
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", FileName, err)
	}
	return nil
}

// detectBinaryPath returns the absolute vinario binary path when it can be
// found, else the bare name.
func detectBinaryPath() string {
	if p, err := exec.LookPath("vinario"); err == nil {
		if abs, err := filepath.Abs(p); err == nil {
			return abs
		}
		return p
	}

	home, _ := os.UserHomeDir()
	candidates := []string{
		filepath.Join(home, ".local", "bin", "vinario"),
		filepath.Join(home, "go", "bin", "vinario"),
		"/usr/local/bin/vinario",
	}
	for _, p := range candidates {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return "vinario"
}
