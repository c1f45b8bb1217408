package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/wricardo/mcp-training/landmines/game/engine"
)

func writeConfig(t *testing.T, dir, name string, v any) {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("Failed to marshal config: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, name), data, 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
}

func createValidConfig() *engine.GameConfig {
	config := engine.DefaultGameConfig()
	config.Name = "Test Config"
	config.Description = "Test configuration"
	config.Width, config.Height = 6, 6
	config.LandmineCount = 4
	return config
}

func TestNewManager(t *testing.T) {
	t.Run("missing directory", func(t *testing.T) {
		if _, err := NewManager(filepath.Join(t.TempDir(), "nope")); err == nil {
			t.Error("Expected error for missing config directory")
		}
	})

	t.Run("empty directory falls back to built-in classic", func(t *testing.T) {
		m, err := NewManager(t.TempDir())
		if err != nil {
			t.Fatalf("Failed to create manager: %v", err)
		}
		def := m.GetDefault()
		if def == nil || def.Name != "classic" || def.Width != 5 || def.Height != 15 {
			t.Errorf("Unexpected default config: %+v", def)
		}
	})

	t.Run("classic.json is the default", func(t *testing.T) {
		dir := t.TempDir()
		config := createValidConfig()
		config.Name = "custom classic"
		writeConfig(t, dir, "classic.json", config)

		m, err := NewManager(dir)
		if err != nil {
			t.Fatal(err)
		}
		if got := m.GetDefault().Name; got != "custom classic" {
			t.Errorf("Expected classic.json as default, got %q", got)
		}
	})

	t.Run("first valid file when classic is missing", func(t *testing.T) {
		dir := t.TempDir()
		writeConfig(t, dir, "b.json", createValidConfig())
		writeConfig(t, dir, "a.json", map[string]any{"width": 1})

		m, err := NewManager(dir)
		if err != nil {
			t.Fatal(err)
		}
		if got := m.GetDefault().Name; got != "Test Config" {
			t.Errorf("Expected b.json as default, got %q", got)
		}
	})
}

func TestManager_LoadConfig(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "valid.json", createValidConfig())
	writeConfig(t, dir, "partial.json", map[string]any{"name": "partial", "player_count": 4})
	writeConfig(t, dir, "crowded.json", map[string]any{"width": 3, "height": 3, "landmine_count": 9})
	os.WriteFile(filepath.Join(dir, "broken.json"), []byte("{not json"), 0644)

	m, err := NewManager(dir)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		wantErr error
	}{
		{"valid", nil},
		{"valid.json", nil},
		{"partial", nil},
		{"missing", ErrConfigNotFound},
		{"crowded", ErrInvalidConfig},
		{"broken", ErrInvalidConfig},
		{"../valid", ErrConfigNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := m.LoadConfig(tt.name)
			if tt.wantErr == nil && err != nil {
				t.Errorf("Expected no error, got %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("Expected %v, got %v", tt.wantErr, err)
			}
		})
	}

	partial, _ := m.LoadConfig("partial")
	if partial.PlayerCount != 4 || partial.Width != 5 || partial.MovesPerTurn != 3 {
		t.Errorf("Expected missing fields to keep defaults, got %+v", partial)
	}
}

func TestManager_LoadConfigReturnsCopies(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "valid.json", createValidConfig())
	m, _ := NewManager(dir)

	a, _ := m.LoadConfig("valid")
	a.Width = 40
	b, _ := m.LoadConfig("valid")
	if b.Width != 6 {
		t.Errorf("Expected cached config to be unaffected, got width %d", b.Width)
	}
}

func TestManager_ListConfigs(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "zeta.json", createValidConfig())
	four := createValidConfig()
	four.Name = "Four"
	four.PlayerCount = 4
	writeConfig(t, dir, "alpha.json", four)
	writeConfig(t, dir, "bad.json", map[string]any{"width": 100})
	os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignore"), 0644)
	os.Mkdir(filepath.Join(dir, "sub.json"), 0755)

	m, _ := NewManager(dir)
	configs, err := m.ListConfigs()
	if err != nil {
		t.Fatalf("ListConfigs failed: %v", err)
	}
	if len(configs) != 2 {
		t.Fatalf("Expected 2 configs, got %d", len(configs))
	}
	if configs[0].ConfigID != "alpha" || configs[0].PlayerCount != 4 || configs[0].Filename != "alpha.json" {
		t.Errorf("Unexpected first config: %+v", configs[0])
	}
	if configs[1].ConfigID != "zeta" || configs[1].Width != 6 || configs[1].MovesPerTurn != 3 {
		t.Errorf("Unexpected second config: %+v", configs[1])
	}
}

func TestManager_SaveConfig(t *testing.T) {
	dir := t.TempDir()
	m, _ := NewManager(dir)

	if err := m.SaveConfig("mine", createValidConfig()); err != nil {
		t.Fatalf("Failed to save config: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "mine.json")); err != nil {
		t.Errorf("Expected config file on disk: %v", err)
	}
	loaded, err := m.LoadConfig("mine")
	if err != nil || loaded.Name != "Test Config" {
		t.Errorf("Expected saved config to load, got %+v %v", loaded, err)
	}

	bad := createValidConfig()
	bad.PlayerCount = 2
	if err := m.SaveConfig("bad", bad); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig, got %v", err)
	}
	if err := m.SaveConfig("../escape", createValidConfig()); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig for path name, got %v", err)
	}
	if err := m.SaveConfig("nil", nil); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig for nil config, got %v", err)
	}
}

func TestManager_SetDefaultAndRefresh(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "other.json", createValidConfig())
	m, _ := NewManager(dir)

	if err := m.SetDefault("other"); err != nil {
		t.Fatalf("SetDefault failed: %v", err)
	}
	if m.GetDefault().Name != "Test Config" {
		t.Errorf("Expected other as default, got %q", m.GetDefault().Name)
	}
	if err := m.SetDefault("missing"); !errors.Is(err, ErrConfigNotFound) {
		t.Errorf("Expected ErrConfigNotFound, got %v", err)
	}

	changed := createValidConfig()
	changed.Name = "Changed"
	writeConfig(t, dir, "other.json", changed)
	m.RefreshCache()
	if got, _ := m.LoadConfig("other"); got.Name != "Changed" {
		t.Errorf("Expected refreshed config, got %q", got.Name)
	}
}

func TestManager_ConcurrentLoad(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "valid.json", createValidConfig())
	m, _ := NewManager(dir)

	var wg sync.WaitGroup
	errs := make(chan error, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := m.LoadConfig("valid"); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Errorf("Concurrent load failed: %v", err)
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "arena.json")
	data := `{"name": "arena", "width": 6, "height": 6, "player_count": 4, "paintball_color": "cyan", "teleport_immunity_duration": 0.5}`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	config, err := LoadFile(path)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	if config.Width != 6 || config.PlayerCount != 4 || config.PaintballColor != "cyan" || config.TeleportImmunity != 0.5 {
		t.Errorf("Unexpected config: %+v", config)
	}
	if config.MovesPerTurn != engine.DefaultGameConfig().MovesPerTurn {
		t.Errorf("Expected default moves per turn, got %d", config.MovesPerTurn)
	}

	if _, err := LoadFile(filepath.Join(dir, "missing.json")); !errors.Is(err, ErrConfigNotFound) {
		t.Errorf("Expected ErrConfigNotFound, got %v", err)
	}

	bad := filepath.Join(dir, "bad.json")
	os.WriteFile(bad, []byte("{not json"), 0644)
	if _, err := LoadFile(bad); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig for malformed JSON, got %v", err)
	}
}
