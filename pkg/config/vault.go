package config

import (
	"fmt"
	"sync"
)

// SectionIDVault is the identifier for the vault settings section
const SectionIDVault = "vault"

// DefaultIgnorePatterns are vault-relative globs never searched or listed.
var DefaultIgnorePatterns = []string{".obsidian/**", ".trash/**", ".git/**"}

// VaultSection configures the local note vault.
type VaultSection struct {
	Dir    string
	Ignore []string
	mu     sync.RWMutex
}

// NewVaultSection creates a vault section with default settings.
func NewVaultSection() *VaultSection {
	s := &VaultSection{}
	s.Reset()
	return s
}

// ID returns the section identifier.
func (s *VaultSection) ID() string {
	return SectionIDVault
}

// Title returns the section title.
func (s *VaultSection) Title() string {
	return "Vault Settings"
}

// Description returns the section description.
func (s *VaultSection) Description() string {
	return "Root directory of the note vault and glob patterns excluded from search and listings."
}

// Data returns the current configuration data.
func (s *VaultSection) Data() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ignore := make([]any, len(s.Ignore))
	for i, p := range s.Ignore {
		ignore[i] = p
	}
	return map[string]any{
		"dir":    s.Dir,
		"ignore": ignore,
	}
}

// SetData updates the configuration from the provided data.
func (s *VaultSection) SetData(data map[string]any) error {
	if data == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if v, ok := data["dir"]; ok {
		if err := setString(&s.Dir, "dir", v); err != nil {
			return err
		}
	}

	if v, ok := data["ignore"]; ok {
		patterns, err := toStringSlice(v)
		if err != nil {
			return fmt.Errorf("invalid value for ignore: %w", err)
		}
		s.Ignore = patterns
	}
	return nil
}

// Validate validates the current configuration.
func (s *VaultSection) Validate() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, p := range s.Ignore {
		if p == "" {
			return fmt.Errorf("ignore patterns must not be empty")
		}
	}
	return nil
}

// Reset resets the section to default configuration.
func (s *VaultSection) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Dir = ""
	s.Ignore = append([]string(nil), DefaultIgnorePatterns...)
}

// GetDir returns the configured vault directory.
func (s *VaultSection) GetDir() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Dir
}

// SetDir sets the vault directory.
func (s *VaultSection) SetDir(dir string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Dir = dir
}

// GetIgnore returns a copy of the ignore patterns.
func (s *VaultSection) GetIgnore() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.Ignore...)
}

func toStringSlice(value any) ([]string, error) {
	switch v := value.(type) {
	case []string:
		return append([]string(nil), v...), nil
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("expected string, got %T", item)
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("expected list of strings, got %T", value)
	}
}
