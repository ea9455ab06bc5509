package checklist

import (
	_ "embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed configuration.yaml
var configurationYAML []byte

// StatusConfig is one legal status of a tab.
type StatusConfig struct {
	ID      string            `yaml:"id"`
	Label   string            `yaml:"label"`
	Status  Status            `yaml:"status"`
	Extra   map[string]string `yaml:"extra"`
	Initial bool              `yaml:"initial"`
}

// Matches reports whether status and extra select this entry. Every extra
// key of the entry must be present in extra with the same value.
func (s StatusConfig) Matches(status Status, extra map[string]string) bool {
	if s.Status == "" || s.Status != status {
		return false
	}
	for k, v := range s.Extra {
		if extra[k] != v {
			return false
		}
	}
	return true
}

// TabConfig lists the legal statuses of a tab.
type TabConfig struct {
	Tab      Tab            `yaml:"tab"`
	Children Tab            `yaml:"children"`
	Child    bool           `yaml:"child"`
	Statuses []StatusConfig `yaml:"statuses"`
}

// Find returns the first entry matching status and extra.
func (t TabConfig) Find(status Status, extra map[string]string) (StatusConfig, bool) {
	for _, s := range t.Statuses {
		if s.Matches(status, extra) {
			return s, true
		}
	}
	return StatusConfig{}, false
}

// ByID returns the entry with the given identifier.
func (t TabConfig) ByID(id string) (StatusConfig, bool) {
	for _, s := range t.Statuses {
		if s.ID == id {
			return s, true
		}
	}
	return StatusConfig{}, false
}

// InitialStatus returns the entry a new checklist starts from.
func (t TabConfig) InitialStatus() StatusConfig {
	for _, s := range t.Statuses {
		if s.Initial {
			return s
		}
	}
	return t.Statuses[0]
}

// Configuration is the per-context tab configuration.
type Configuration struct {
	tabs  map[Context]map[Tab]TabConfig
	order map[Context][]Tab
}

// ParseConfiguration reads a YAML configuration document.
func ParseConfiguration(data []byte) (*Configuration, error) {
	var raw map[Context][]TabConfig
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse checklist configuration: %w", err)
	}
	cfg := &Configuration{
		tabs:  make(map[Context]map[Tab]TabConfig, len(raw)),
		order: make(map[Context][]Tab, len(raw)),
	}
	for ctx, tabs := range raw {
		cfg.tabs[ctx] = make(map[Tab]TabConfig, len(tabs))
		for _, tab := range tabs {
			if len(tab.Statuses) == 0 {
				return nil, fmt.Errorf("checklist configuration: %s.%s has no status", ctx, tab.Tab)
			}
			if _, dup := cfg.tabs[ctx][tab.Tab]; dup {
				return nil, fmt.Errorf("checklist configuration: duplicate tab %s.%s", ctx, tab.Tab)
			}
			cfg.tabs[ctx][tab.Tab] = tab
			if !tab.Child {
				cfg.order[ctx] = append(cfg.order[ctx], tab.Tab)
			}
		}
	}
	return cfg, nil
}

var (
	defaultConfigOnce sync.Once
	defaultConfig     *Configuration
)

// DefaultConfiguration returns the embedded configuration.
func DefaultConfiguration() *Configuration {
	defaultConfigOnce.Do(func() {
		cfg, err := ParseConfiguration(configurationYAML)
		if err != nil {
			panic(err)
		}
		defaultConfig = cfg
	})
	return defaultConfig
}

// Tabs returns the top-level tabs of a context in display order.
func (c *Configuration) Tabs(ctx Context) []Tab {
	return c.order[ctx]
}

// Tab returns the configuration of one tab.
func (c *Configuration) Tab(ctx Context, tab Tab) (TabConfig, error) {
	t, ok := c.tabs[ctx][tab]
	if !ok {
		return TabConfig{}, ErrUnknownTab.Withf("%s.%s", ctx, tab)
	}
	return t, nil
}
