package hero

import (
	"encoding/json"
	"fmt"
	"os"
)

// SaveFile writes the sheet to path as indented JSON. The file format has
// no version field; it is the same shape as the wire payload.
func (s *Sheet) SaveFile(path string) error {
	copy := s.Clone()
	copy.Normalize()
	data, err := json.MarshalIndent(copy, "", "    ")
	if err != nil {
		return fmt.Errorf("encoding sheet: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("saving sheet: %w", err)
	}
	return nil
}

// LoadFile reads a sheet from path. Unknown keys are ignored and missing
// keys default to empty values, then Normalize pads the slot slices.
func LoadFile(path string) (*Sheet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading sheet: %w", err)
	}
	var s Sheet
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing sheet %s: %w", path, err)
	}
	s.Normalize()
	return &s, nil
}
