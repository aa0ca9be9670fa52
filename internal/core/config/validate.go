package config

import (
	"fmt"
	"os"

	"github.com/hay-kot/criterio"
)

// ValidationWarning represents a non-fatal configuration issue.
type ValidationWarning struct {
	Category string `json:"category"`
	Item     string `json:"item,omitempty"`
	Message  string `json:"message"`
}

// ValidateDeep performs Validate and then checks the file system: the config
// file must be a regular file when present and the data directory must be a
// directory or not exist yet. Field problems are reported as
// criterio.FieldErrors.
func (c *Config) ValidateDeep(configPath string) error {
	if err := c.Validate(); err != nil {
		return err
	}

	return criterio.ValidateStruct(
		validateConfigFile(configPath),
		criterio.Run("data_dir", c.DataDir, isDirectoryOrNotExist),
		c.validateKeys(),
	)
}

// Warnings returns non-fatal configuration issues.
func (c *Config) Warnings() []ValidationWarning {
	var warnings []ValidationWarning

	if !c.StrictLabels {
		warnings = append(warnings, ValidationWarning{
			Category: "Labels",
			Item:     "strict_labels",
			Message:  "disabled; any text can be written to the label column",
		})
	}

	if !c.Lock {
		warnings = append(warnings, ValidationWarning{
			Category: "Lock",
			Item:     "lock",
			Message:  "disabled; two reviewers on one file will overwrite each other",
		})
	}

	if c.Columns.Subject > 100 || c.Columns.Label > 100 {
		warnings = append(warnings, ValidationWarning{
			Category: "Columns",
			Message:  fmt.Sprintf("unusually high column index (subject %d, label %d)", c.Columns.Subject, c.Columns.Label),
		})
	}

	return warnings
}

func validateConfigFile(configPath string) error {
	if configPath == "" {
		return nil
	}

	info, err := os.Stat(configPath)
	if os.IsNotExist(err) {
		return nil // not found is fine, using defaults
	}
	if err != nil {
		return criterio.NewFieldErrors("config_file", fmt.Errorf("cannot access: %w", err))
	}
	if info.IsDir() {
		return criterio.NewFieldErrors("config_file", fmt.Errorf("%s is a directory, not a file", configPath))
	}
	return nil
}

// isDirectoryOrNotExist validates that a path is a directory or doesn't exist.
func isDirectoryOrNotExist(path string) error {
	if path == "" {
		return nil
	}
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil // will be created
	}
	if err != nil {
		return fmt.Errorf("cannot access: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("exists but is not a directory")
	}
	return nil
}

// validateKeys flags keys that the terminal cannot deliver as a single press.
func (c *Config) validateKeys() error {
	var errs criterio.FieldErrorsBuilder
	for _, name := range BindingNames() {
		for i, k := range c.Keybindings[name] {
			if len([]rune(k)) > 1 && !isNamedKey(k) {
				errs = errs.Append(fmt.Sprintf("keybindings[%q][%d]", name, i), fmt.Errorf("unknown key %q", k))
			}
		}
	}
	return errs.ToError()
}

// namedKeys are the multi-character key names bubbletea reports.
var namedKeys = map[string]bool{
	"up": true, "down": true, "left": true, "right": true,
	"enter": true, "tab": true, "shift+tab": true, "space": true,
	"esc": true, "backspace": true, "delete": true,
	"home": true, "end": true, "pgup": true, "pgdown": true,
}

func isNamedKey(k string) bool {
	if namedKeys[k] {
		return true
	}
	// ctrl+<x> and alt+<x> combinations
	for _, prefix := range []string{"ctrl+", "alt+"} {
		if len(k) > len(prefix) && k[:len(prefix)] == prefix {
			return true
		}
	}
	return false
}
