package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Execution.MaxCycles != 1_000_000 {
		t.Errorf("Expected MaxCycles=1000000, got %d", cfg.Execution.MaxCycles)
	}
	if cfg.Execution.StackSize != 4096 {
		t.Errorf("Expected StackSize=4096, got %d", cfg.Execution.StackSize)
	}
	if cfg.Execution.DefaultEntry != "0x1000" {
		t.Errorf("Expected DefaultEntry=0x1000, got %s", cfg.Execution.DefaultEntry)
	}

	if cfg.Assembler.TabWidth != 8 {
		t.Errorf("Expected TabWidth=8, got %d", cfg.Assembler.TabWidth)
	}
	if cfg.Assembler.LiteralPoolAlignment != 1 {
		t.Errorf("Expected LiteralPoolAlignment=1, got %d", cfg.Assembler.LiteralPoolAlignment)
	}

	if cfg.Display.BytesPerLine != 16 {
		t.Errorf("Expected BytesPerLine=16, got %d", cfg.Display.BytesPerLine)
	}
	if cfg.Display.NumberFormat != "hex" {
		t.Errorf("Expected NumberFormat=hex, got %s", cfg.Display.NumberFormat)
	}
}

func TestGetConfigPath(t *testing.T) {
	path := GetConfigPath()

	if path == "" {
		t.Error("GetConfigPath returned empty string")
	}
	if filepath.Base(path) != "config.toml" {
		t.Errorf("Expected path to end with config.toml, got %s", path)
	}
}

func TestSaveAndLoad(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "test_config.toml")

	cfg := DefaultConfig()
	cfg.Execution.MaxCycles = 5_000_000
	cfg.Assembler.TabWidth = 4
	cfg.Display.NumberFormat = "dec"

	require.NoError(t, cfg.SaveTo(configPath))

	_, err := os.Stat(configPath)
	require.NoError(t, err, "config file was not created")

	loaded, err := LoadFrom(configPath)
	require.NoError(t, err)

	require.Equal(t, uint64(5_000_000), loaded.Execution.MaxCycles)
	require.Equal(t, 4, loaded.Assembler.TabWidth)
	require.Equal(t, "dec", loaded.Display.NumberFormat)
}

func TestLoadNonExistent(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "nonexistent.toml")

	cfg, err := LoadFrom(configPath)
	if err != nil {
		t.Fatalf("LoadFrom should not error on non-existent file: %v", err)
	}
	if cfg.Execution.MaxCycles != 1_000_000 {
		t.Error("Expected default config when file doesn't exist")
	}
}

func TestLoadInvalidTOML(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "invalid.toml")

	invalidTOML := `
[execution]
max_cycles = "not a number"
`
	if err := os.WriteFile(configPath, []byte(invalidTOML), 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	if _, err := LoadFrom(configPath); err == nil {
		t.Error("Expected error when loading invalid TOML")
	}
}

func TestSaveCreatesDirectory(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "subdir1", "subdir2", "config.toml")

	cfg := DefaultConfig()
	if err := cfg.SaveTo(configPath); err != nil {
		t.Fatalf("Failed to save config: %v", err)
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		t.Error("Config file was not created")
	}
}
