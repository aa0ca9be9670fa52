// Package config handles configuration loading and validation for stager.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/hay-kot/stager/internal/core/label"
	"github.com/hay-kot/stager/internal/core/styles"
	"github.com/hay-kot/stager/internal/core/table"
)

// Action names that can be bound to keys alongside the label categories.
const (
	ActionSkip = "skip"
	ActionBack = "back"
	ActionSave = "save"
	ActionQuit = "quit"
)

// actions lists the non-label keybinding names in display order.
var actions = []string{ActionSkip, ActionBack, ActionSave, ActionQuit}

// defaultKeybindings mirrors the arrow/WASD layout reviewers are used to.
var defaultKeybindings = map[string][]string{
	string(label.Reviewing):  {"up", "w", "W"},
	string(label.Passed):     {"down", "s", "S"},
	string(label.Bounceback): {"left", "a", "A"},
	string(label.AutoReply):  {"right", "d", "D"},
	ActionSkip:               {"n", "tab"},
	ActionBack:               {"b", "shift+tab"},
	ActionSave:               {"ctrl+s"},
	ActionQuit:               {"q", "ctrl+c"},
}

// Config holds the application configuration.
type Config struct {
	Columns      table.Columns       `yaml:"columns"`
	Keybindings  map[string][]string `yaml:"keybindings"`
	StrictLabels bool                `yaml:"strict_labels"` // reject categories outside the label set
	Lock         bool                `yaml:"lock"`          // hold <file>.lock while reviewing
	Journal      JournalConfig       `yaml:"journal"`
	TUI          TUIConfig           `yaml:"tui"`
	DataDir      string              `yaml:"-"` // set by caller, not from config file
}

// JournalConfig controls the decision journal kept in the data directory.
type JournalConfig struct {
	Enabled    bool `yaml:"enabled"`
	MaxEntries int  `yaml:"max_entries"` // 0 keeps every entry
}

// TUIConfig holds review screen options.
type TUIConfig struct {
	Wrap    bool   `yaml:"wrap"`    // word-wrap the subject text
	Sidebar bool   `yaml:"sidebar"` // show the key binding panel
	Theme   string `yaml:"theme"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Columns:      table.DefaultColumns,
		Keybindings:  map[string][]string{},
		StrictLabels: true,
		Lock:         true,
		Journal: JournalConfig{
			Enabled: true,
		},
		TUI: TUIConfig{
			Wrap:    true,
			Sidebar: true,
			Theme:   styles.DefaultTheme,
		},
	}
}

// Load reads configuration from the given path and sets the data directory.
// If configPath is empty or doesn't exist, returns defaults with the provided dataDir.
func Load(configPath, dataDir string) (*Config, error) {
	cfg := DefaultConfig()
	cfg.DataDir = dataDir

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			data, err := os.ReadFile(configPath)
			if err != nil {
				return nil, fmt.Errorf("read config file: %w", err)
			}

			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}

			// Re-set dataDir since Unmarshal may have cleared it
			cfg.DataDir = dataDir
		}
	}

	cfg.Keybindings = mergeKeybindings(defaultKeybindings, cfg.Keybindings)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// mergeKeybindings merges user keybindings into defaults.
// A user entry replaces the default keys for that name entirely.
func mergeKeybindings(defaults, user map[string][]string) map[string][]string {
	result := make(map[string][]string, len(defaults)+len(user))

	for k, v := range defaults {
		result[k] = slices.Clone(v)
	}

	for k, v := range user {
		result[k] = slices.Clone(v)
	}

	return result
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("data directory cannot be empty")
	}

	if c.Columns.Subject < 0 || c.Columns.Label < 0 {
		return fmt.Errorf("columns.subject and columns.label must be non-negative")
	}

	if c.Columns.Subject == c.Columns.Label {
		return fmt.Errorf("columns.subject and columns.label must differ (both %d)", c.Columns.Subject)
	}

	if _, ok := styles.GetPalette(c.TUI.Theme); !ok {
		return fmt.Errorf("unknown theme %q (available: %s)", c.TUI.Theme, strings.Join(styles.ThemeNames(), ", "))
	}

	if c.Journal.MaxEntries < 0 {
		return fmt.Errorf("journal.max_entries must be zero or positive")
	}

	owner := make(map[string]string)
	for _, name := range BindingNames() {
		keys := c.Keybindings[name]
		if len(keys) == 0 {
			return fmt.Errorf("keybinding %q must have at least one key", name)
		}

		for _, k := range keys {
			if k == "" {
				return fmt.Errorf("keybinding %q has an empty key", name)
			}
			if prev, ok := owner[k]; ok {
				return fmt.Errorf("key %q is bound to both %q and %q", k, prev, name)
			}
			owner[k] = name
		}
	}

	for name := range c.Keybindings {
		if !isBindingName(name) {
			return fmt.Errorf("keybinding %q is not a label or action", name)
		}
	}

	return nil
}

// BindingNames returns every bindable name: the label categories followed by
// the navigation actions.
func BindingNames() []string {
	return append(label.Strings(), actions...)
}

func isBindingName(name string) bool {
	return slices.Contains(BindingNames(), name)
}

// DatabaseFile returns the path to the decision journal database.
func (c *Config) DatabaseFile() string {
	return filepath.Join(c.DataDir, "stager.db")
}

// LogFile returns the default log file path inside the data directory.
func (c *Config) LogFile() string {
	return filepath.Join(c.DataDir, "stager.log")
}
