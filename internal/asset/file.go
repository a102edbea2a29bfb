package asset

import (
	"fmt"
	"os"
	"path/filepath"
)

// LoadFile reads a model file from disk
func LoadFile(path string) (*Model, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not open model file: %w", err)
	}
	defer f.Close()

	m, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("could not decode model %s: %w", path, err)
	}
	return m, nil
}

// SaveFile writes m to path, creating parent directories
func SaveFile(path string, m *Model) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("could not create model dir: %w", err)
	}
	data, err := Marshal(m)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("could not write model file: %w", err)
	}
	return nil
}
