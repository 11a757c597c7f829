package banks

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// validation errors
var (
	ErrEmptyRegistry = errors.New("registry contains no banks")
	ErrMissingID     = errors.New("bank id is required")
	ErrMissingTitle  = errors.New("bank title is required")
	ErrNoDestination = errors.New("bank needs a deeplink or a fallback_url")
	ErrDuplicateID   = errors.New("duplicate bank id")
)

// registryFile is the on-disk shape of the bank registry.
type registryFile struct {
	Banks []Bank `yaml:"banks"`
}

// LoadFile reads a YAML registry and validates it. The returned slice keeps
// the file order, which decides the default bank for unknown ids.
func LoadFile(path string) ([]Bank, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read registry: %w", err)
	}

	var file registryFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse registry: %w", err)
	}

	if err := Validate(file.Banks); err != nil {
		return nil, err
	}

	return file.Banks, nil
}

// Validate checks the registry invariants: every bank carries an id, a title
// and at least one navigation destination, and ids are unique.
func Validate(list []Bank) error {
	if len(list) == 0 {
		return ErrEmptyRegistry
	}

	seen := make(map[string]bool, len(list))
	for i, b := range list {
		if b.ID == "" {
			return fmt.Errorf("bank #%d: %w", i, ErrMissingID)
		}
		if b.Title == "" {
			return fmt.Errorf("bank %q: %w", b.ID, ErrMissingTitle)
		}
		if b.Deeplink == "" && b.FallbackURL == "" {
			return fmt.Errorf("bank %q: %w", b.ID, ErrNoDestination)
		}
		if seen[b.ID] {
			return fmt.Errorf("bank %q: %w", b.ID, ErrDuplicateID)
		}
		seen[b.ID] = true
	}

	return nil
}
