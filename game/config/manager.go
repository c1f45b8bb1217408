package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/zyedidia/generic/cache"

	"github.com/wricardo/mcp-training/landmines/game/engine"
	"github.com/wricardo/mcp-training/landmines/game/service"
)

var (
	ErrConfigNotFound = service.ErrConfigNotFound
	ErrInvalidConfig  = service.ErrInvalidConfig
)

// DefaultConfigName is loaded as the default when present
const DefaultConfigName = "classic"

// cacheCapacity bounds the number of parsed configs kept in memory
const cacheCapacity = 64

// Manager handles game configuration loading and caching
type Manager struct {
	configDir     string
	defaultConfig *engine.GameConfig
	configs       *cache.Cache[string, *engine.GameConfig]
	mu            sync.RWMutex
}

// NewManager creates a new configuration manager
func NewManager(configDir string) (*Manager, error) {
	// Ensure config directory exists
	if _, err := os.Stat(configDir); os.IsNotExist(err) {
		return nil, fmt.Errorf("config directory does not exist: %s", configDir)
	}

	m := &Manager{
		configDir: configDir,
		configs:   cache.New[string, *engine.GameConfig](cacheCapacity),
	}
	m.loadDefaultConfig()
	return m, nil
}

// LoadConfig loads a configuration by name. Returned configs are copies and
// may be modified by the caller.
func (m *Manager) LoadConfig(name string) (*engine.GameConfig, error) {
	name = strings.TrimSuffix(name, ".json")
	if name == "" || strings.ContainsAny(name, `/\`) {
		return nil, fmt.Errorf("%w: bad config name %q", ErrConfigNotFound, name)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if config, ok := m.configs.Get(name); ok {
		return clone(config), nil
	}

	configPath := filepath.Join(m.configDir, name+".json")
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, name)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config, err := parse(data, name)
	if err != nil {
		return nil, err
	}

	m.configs.Put(name, config)
	return clone(config), nil
}

// ListConfigs returns information about all valid configurations, sorted by id
func (m *Manager) ListConfigs() ([]*service.ConfigInfo, error) {
	entries, err := os.ReadDir(m.configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read config directory: %w", err)
	}

	var configs []*service.ConfigInfo
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		name := strings.TrimSuffix(entry.Name(), ".json")

		config, err := m.LoadConfig(name)
		if err != nil {
			log.Warn("skipping invalid config", "file", entry.Name(), "err", err)
			continue
		}

		configs = append(configs, &service.ConfigInfo{
			Filename:     entry.Name(),
			ConfigID:     name,
			Name:         config.Name,
			Description:  config.Description,
			Width:        config.Width,
			Height:       config.Height,
			PlayerCount:  config.PlayerCount,
			MovesPerTurn: config.MovesPerTurn,
		})
	}

	sort.Slice(configs, func(i, j int) bool { return configs[i].ConfigID < configs[j].ConfigID })
	return configs, nil
}

// GetDefault returns a copy of the default configuration
func (m *Manager) GetDefault() *engine.GameConfig {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return clone(m.defaultConfig)
}

// SetDefault sets the default configuration by name
func (m *Manager) SetDefault(name string) error {
	config, err := m.LoadConfig(name)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultConfig = config
	return nil
}

// RefreshCache drops all cached configurations and reloads the default
func (m *Manager) RefreshCache() {
	m.mu.Lock()
	m.configs = cache.New[string, *engine.GameConfig](cacheCapacity)
	m.mu.Unlock()

	m.loadDefaultConfig()
}

// loadDefaultConfig prefers classic.json, then the first valid file, then
// the built-in classic rules
func (m *Manager) loadDefaultConfig() {
	config, err := m.LoadConfig(DefaultConfigName)
	if err != nil {
		config = nil
		if configs, listErr := m.ListConfigs(); listErr == nil && len(configs) > 0 {
			config, _ = m.LoadConfig(configs[0].ConfigID)
		}
	}
	if config == nil {
		log.Debug("no config files found, using built-in defaults", "dir", m.configDir)
		config = engine.DefaultGameConfig()
	}

	m.mu.Lock()
	m.defaultConfig = config
	m.mu.Unlock()
}

// SaveConfig validates and writes a configuration to disk
func (m *Manager) SaveConfig(name string, config *engine.GameConfig) error {
	name = strings.TrimSuffix(name, ".json")
	if name == "" || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("%w: bad config name %q", ErrInvalidConfig, name)
	}
	if config == nil {
		return fmt.Errorf("%w: missing config", ErrInvalidConfig)
	}
	if err := engine.ValidateGameConfig(config); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	configPath := filepath.Join(m.configDir, name+".json")
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	m.mu.Lock()
	m.configs.Put(name, clone(config))
	m.mu.Unlock()

	log.Info("config saved", "name", name, "path", configPath)
	return nil
}

// LoadFile reads and validates a single config file without caching it
func LoadFile(path string) (*engine.GameConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return parse(data, filepath.Base(path))
}

// parse decodes data over the classic defaults, so missing fields keep them
func parse(data []byte, name string) (*engine.GameConfig, error) {
	config := engine.DefaultGameConfig()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("%w: failed to parse %s: %v", ErrInvalidConfig, name, err)
	}
	if err := engine.ValidateGameConfig(config); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return config, nil
}

func clone(config *engine.GameConfig) *engine.GameConfig {
	if config == nil {
		return nil
	}
	c := *config
	c.PlayerNames = append([]string(nil), config.PlayerNames...)
	return &c
}
