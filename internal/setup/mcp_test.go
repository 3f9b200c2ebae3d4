package setup

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func readServers(t *testing.T, dir string) map[string]json.RawMessage {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, FileName))
	if err != nil {
		t.Fatalf("read %s: %v", FileName, err)
	}
	var cfg mcpConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		t.Fatalf("parse %s: %v", FileName, err)
	}
	return cfg.Servers
}

// --- MCPInstalled tests ---

func TestMCPInstalled_NoFile(t *testing.T) {
	if MCPInstalled(t.TempDir()) {
		t.Error("expected false with no .mcp.json")
	}
}

func TestMCPInstalled_EmptyConfig(t *testing.T) {
	dir := t.TempDir()
	os.WriteFile(filepath.Join(dir, FileName), []byte(`{"mcpServers":{}}`), 0o644)
	if MCPInstalled(dir) {
		t.Error("expected false with empty mcpServers")
	}
}

func TestMCPInstalled_InvalidJSON(t *testing.T) {
	dir := t.TempDir()
	os.WriteFile(filepath.Join(dir, FileName), []byte(`{broken`), 0o644)
	if MCPInstalled(dir) {
		t.Error("expected false with invalid JSON")
	}
}

func TestMCPInstalled_OtherServersOnly(t *testing.T) {
	dir := t.TempDir()
	os.WriteFile(filepath.Join(dir, FileName), []byte(`{"mcpServers":{"other-tool":{"command":"other-tool","args":["serve"]}}}`), 0o644)
	if MCPInstalled(dir) {
		t.Error("expected false when only other servers are registered")
	}
}

// --- InstallMCP tests ---

func TestInstallMCP_CreatesNewFile(t *testing.T) {
	dir := t.TempDir()
	content := filepath.Join(dir, "content", "resenas")

	path, err := InstallMCP(dir, content)
	if err != nil {
		t.Fatalf("InstallMCP: %v", err)
	}
	if path != filepath.Join(dir, FileName) {
		t.Errorf("unexpected path %s", path)
	}

	var server mcpServer
	if err := json.Unmarshal(readServers(t, dir)[ServerName], &server); err != nil {
		t.Fatalf("decode server entry: %v", err)
	}
	if len(server.Args) != 1 || server.Args[0] != "mcp" {
		t.Errorf("expected args [mcp], got %v", server.Args)
	}
	if server.Env["VINARIO_CONTENT_DIR"] != content {
		t.Errorf("expected VINARIO_CONTENT_DIR=%s, got %s", content, server.Env["VINARIO_CONTENT_DIR"])
	}
	if !MCPInstalled(dir) {
		t.Error("expected MCPInstalled after install")
	}
}

func TestInstallMCP_PreservesExistingServers(t *testing.T) {
	dir := t.TempDir()
	os.WriteFile(filepath.Join(dir, FileName), []byte(`{"mcpServers":{"other-tool":{"command":"other-tool","args":["serve"],"type":"stdio"}}}`), 0o644)

	if _, err := InstallMCP(dir, dir); err != nil {
		t.Fatalf("InstallMCP: %v", err)
	}

	servers := readServers(t, dir)
	var other map[string]any
	if err := json.Unmarshal(servers["other-tool"], &other); err != nil {
		t.Fatalf("existing server 'other-tool' was not preserved: %v", err)
	}
	if other["type"] != "stdio" {
		t.Errorf("unknown field of existing server dropped: %v", other)
	}
	if _, ok := servers[ServerName]; !ok {
		t.Error("vinario server was not added")
	}
}

func TestInstallMCP_RejectsInvalidJSON(t *testing.T) {
	dir := t.TempDir()
	os.WriteFile(filepath.Join(dir, FileName), []byte(`{bad json`), 0o644)
	if _, err := InstallMCP(dir, dir); err == nil {
		t.Fatal("expected error for invalid JSON")
	}
}

// --- RemoveMCP tests ---

func TestRemoveMCP_RemovesVinario(t *testing.T) {
	dir := t.TempDir()
	if _, err := InstallMCP(dir, dir); err != nil {
		t.Fatalf("InstallMCP: %v", err)
	}
	removed, err := RemoveMCP(dir)
	if err != nil {
		t.Fatalf("RemoveMCP: %v", err)
	}
	if !removed || MCPInstalled(dir) {
		t.Error("expected vinario to be removed from .mcp.json")
	}
}

func TestRemoveMCP_NotRegistered(t *testing.T) {
	dir := t.TempDir()
	removed, err := RemoveMCP(dir)
	if err != nil || removed {
		t.Fatalf("expected no-op without .mcp.json, got removed=%v err=%v", removed, err)
	}

	os.WriteFile(filepath.Join(dir, FileName), []byte(`{"mcpServers":{"other-tool":{"command":"x"}}}`), 0o644)
	removed, err = RemoveMCP(dir)
	if err != nil || removed {
		t.Fatalf("expected no-op when not registered, got removed=%v err=%v", removed, err)
	}
	if _, ok := readServers(t, dir)["other-tool"]; !ok {
		t.Error("other server dropped")
	}
}
