package feed

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

type ConfigCache struct {
	sourcesDir string
	cache      map[string]*Config
	mu         sync.RWMutex
}

func NewConfigCache(sourcesDir string) *ConfigCache {
	return &ConfigCache{
		sourcesDir: sourcesDir,
		cache:      make(map[string]*Config),
	}
}

// Run loads every *.yml file in the sources directory. A missing directory
// or an empty one falls back to the built-in Remotive source.
func (cc *ConfigCache) Run() error {
	if _, err := os.Stat(cc.sourcesDir); os.IsNotExist(err) {
		cc.useDefault()
		return nil
	}

	files, err := filepath.Glob(filepath.Join(cc.sourcesDir, "*.yml"))
	if err != nil {
		return fmt.Errorf("failed to find YML files: %w", err)
	}

	for _, file := range files {
		fileName := filepath.Base(file)
		sourceName := strings.TrimSuffix(fileName, ".yml")

		config, err := cc.LoadConfig(sourceName)
		if err != nil {
			return fmt.Errorf("error loading %s: %w", file, err)
		}

		slog.Debug("Source configuration loaded", "source", sourceName,
			"type", config.Type, "enabled", config.Settings.Enabled)
	}

	if cc.GetConfigCount() == 0 {
		cc.useDefault()
	}

	return nil
}

// LoadConfig reads a single source configuration from disk and refreshes the
// cache entry.
func (cc *ConfigCache) LoadConfig(name string) (*Config, error) {
	path := filepath.Join(cc.sourcesDir, name+".yml")

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var raw rawConfig
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	config := raw.toConfig(name)
	if config.URL == "" {
		return nil, fmt.Errorf("source %s: url is required", name)
	}
	if config.Type == "" {
		config.Type = SourceTypeRemotive
	}
	if config.Type != SourceTypeRemotive && config.Type != SourceTypeRSS {
		return nil, fmt.Errorf("source %s: unknown type %q", name, config.Type)
	}
	if config.Settings.Timeout <= 0 {
		config.Settings.Timeout = 10
	}

	cc.mu.Lock()
	cc.cache[name] = &config
	cc.mu.Unlock()

	return &config, nil
}

func (cc *ConfigCache) GetConfig(name string) (*Config, error) {
	cc.mu.RLock()
	defer cc.mu.RUnlock()

	config, ok := cc.cache[name]
	if !ok {
		return nil, fmt.Errorf("source configuration not found: %s", name)
	}
	return config, nil
}

func (cc *ConfigCache) GetConfigs() []*Config {
	cc.mu.RLock()
	defer cc.mu.RUnlock()

	configs := make([]*Config, 0, len(cc.cache))
	for _, config := range cc.cache {
		configs = append(configs, config)
	}
	sort.Slice(configs, func(i, j int) bool { return configs[i].Name < configs[j].Name })
	return configs
}

func (cc *ConfigCache) GetEnabledConfigs() []*Config {
	configs := cc.GetConfigs()

	enabled := make([]*Config, 0, len(configs))
	for _, config := range configs {
		if config.Settings.Enabled {
			enabled = append(enabled, config)
		}
	}
	return enabled
}

func (cc *ConfigCache) GetConfigCount() int {
	cc.mu.RLock()
	defer cc.mu.RUnlock()
	return len(cc.cache)
}

func (cc *ConfigCache) useDefault() {
	config := DefaultRemotiveConfig()

	cc.mu.Lock()
	cc.cache[config.Name] = config
	cc.mu.Unlock()

	slog.Debug("No source configurations found, using built-in default", "source", config.Name)
}
