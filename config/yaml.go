package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadYAML decodes the YAML document at path into target.
func LoadYAML(path string, target interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: reading %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, target); err != nil {
		return fmt.Errorf("config: %s is not valid YAML: %w", path, err)
	}
	return nil
}

// SaveYAML encodes config as YAML and writes it to path.
func SaveYAML(path string, config interface{}) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("config: encoding %T as YAML: %w", config, err)
	}
	return writeSpecFile(path, data)
}
