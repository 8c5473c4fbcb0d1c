package feed

import (
	"os"
	"path/filepath"
	"testing"
)

func TestConfigCacheLoadValidConfig(t *testing.T) {
	tempDir := t.TempDir()

	content := `
url: "https://remotive.com/api/remote-jobs"
type: "remotive"

settings:
  enabled: true
  timeout: 15
  default_remote: true
`

	err := os.WriteFile(filepath.Join(tempDir, "remotive.yml"), []byte(content), 0644)
	if err != nil {
		t.Fatal(err)
	}

	configCache := NewConfigCache(tempDir)
	if err := configCache.Run(); err != nil {
		t.Fatal(err)
	}

	if configCache.GetConfigCount() != 1 {
		t.Errorf("Expected 1 config, got %d", configCache.GetConfigCount())
	}

	config, err := configCache.GetConfig("remotive")
	if err != nil {
		t.Fatal(err)
	}

	if config.Name != "remotive" {
		t.Errorf("Expected name 'remotive', got %q", config.Name)
	}
	if config.URL != "https://remotive.com/api/remote-jobs" {
		t.Errorf("Expected Remotive URL, got %q", config.URL)
	}
	if config.Settings.Timeout != 15 {
		t.Errorf("Expected timeout 15, got %d", config.Settings.Timeout)
	}
	if !config.Settings.DefaultRemote {
		t.Error("Expected default_remote true")
	}
}

func TestConfigCacheMissingURL(t *testing.T) {
	tempDir := t.TempDir()

	err := os.WriteFile(filepath.Join(tempDir, "broken.yml"), []byte("type: remotive\n"), 0644)
	if err != nil {
		t.Fatal(err)
	}

	configCache := NewConfigCache(tempDir)
	if err := configCache.Run(); err == nil {
		t.Error("Expected error for config without url")
	}
}

func TestConfigCacheUnknownType(t *testing.T) {
	tempDir := t.TempDir()

	content := "url: \"https://example.com\"\ntype: \"graphql\"\n"
	err := os.WriteFile(filepath.Join(tempDir, "odd.yml"), []byte(content), 0644)
	if err != nil {
		t.Fatal(err)
	}

	configCache := NewConfigCache(tempDir)
	if err := configCache.Run(); err == nil {
		t.Error("Expected error for unknown source type")
	}
}

func TestConfigCacheDefaultsWhenDirMissing(t *testing.T) {
	configCache := NewConfigCache(filepath.Join(t.TempDir(), "does-not-exist"))
	if err := configCache.Run(); err != nil {
		t.Fatal(err)
	}

	if configCache.GetConfigCount() != 1 {
		t.Fatalf("Expected built-in default config, got %d configs", configCache.GetConfigCount())
	}

	config, err := configCache.GetConfig("remotive")
	if err != nil {
		t.Fatal(err)
	}
	if !config.Settings.Enabled {
		t.Error("Expected default source enabled")
	}
	if config.Settings.Timeout != 10 {
		t.Errorf("Expected default timeout 10, got %d", config.Settings.Timeout)
	}
}

func TestConfigCacheDefaultRemote(t *testing.T) {
	tempDir := t.TempDir()

	omitted := "url: \"https://a.example.com\"\nsettings:\n  enabled: true\n"
	explicit := "url: \"https://b.example.com\"\nsettings:\n  enabled: true\n  default_remote: false\n"
	noSettings := "url: \"https://c.example.com\"\n"

	if err := os.WriteFile(filepath.Join(tempDir, "a.yml"), []byte(omitted), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(tempDir, "b.yml"), []byte(explicit), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(tempDir, "c.yml"), []byte(noSettings), 0644); err != nil {
		t.Fatal(err)
	}

	configCache := NewConfigCache(tempDir)
	if err := configCache.Run(); err != nil {
		t.Fatal(err)
	}

	config, err := configCache.GetConfig("a")
	if err != nil {
		t.Fatal(err)
	}
	if !config.Settings.DefaultRemote {
		t.Error("Expected default_remote to default to true when omitted")
	}

	config, err = configCache.GetConfig("b")
	if err != nil {
		t.Fatal(err)
	}
	if config.Settings.DefaultRemote {
		t.Error("Expected explicit default_remote: false to be respected")
	}

	config, err = configCache.GetConfig("c")
	if err != nil {
		t.Fatal(err)
	}
	if !config.Settings.DefaultRemote {
		t.Error("Expected default_remote true without a settings block")
	}
}

func TestConfigCacheEnabledConfigs(t *testing.T) {
	tempDir := t.TempDir()

	enabled := "url: \"https://a.example.com\"\nsettings:\n  enabled: true\n"
	disabled := "url: \"https://b.example.com\"\nsettings:\n  enabled: false\n"

	if err := os.WriteFile(filepath.Join(tempDir, "a.yml"), []byte(enabled), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(tempDir, "b.yml"), []byte(disabled), 0644); err != nil {
		t.Fatal(err)
	}

	configCache := NewConfigCache(tempDir)
	if err := configCache.Run(); err != nil {
		t.Fatal(err)
	}

	if len(configCache.GetEnabledConfigs()) != 1 {
		t.Errorf("Expected 1 enabled config, got %d", len(configCache.GetEnabledConfigs()))
	}
	if configCache.GetConfigCount() != 2 {
		t.Errorf("Expected 2 loaded configs, got %d", configCache.GetConfigCount())
	}
}
