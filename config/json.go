package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// LoadJSON decodes the JSON document at path into target.
func LoadJSON(path string, target interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: reading %s: %w", path, err)
	}
	if err := json.Unmarshal(data, target); err != nil {
		return fmt.Errorf("config: %s is not valid JSON: %w", path, err)
	}
	return nil
}

// SaveJSON encodes config as indented JSON and writes it to path.
func SaveJSON(path string, config interface{}) error {
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("config: encoding %T as JSON: %w", config, err)
	}
	return writeSpecFile(path, data)
}
