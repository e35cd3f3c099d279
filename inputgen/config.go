package inputgen

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the CLI's own knobs, loaded from a YAML file: which
// selector/domain pair to query, where the raw email and regex
// configuration live, and whether to pretty-print the decoded result.
type Config struct {
	Selector        string `yaml:"selector"`
	Domain          string `yaml:"domain"`
	RawEmailPath    string `yaml:"raw_email_path"`
	RegexConfigPath string `yaml:"regex_config_path,omitempty"`
	Debug           bool   `yaml:"debug,omitempty"`
}

// LoadConfig reads and parses a YAML configuration file.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("inputgen: reading config %q: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("inputgen: parsing config %q: %w", path, err)
	}
	if cfg.Selector == "" || cfg.Domain == "" || cfg.RawEmailPath == "" {
		return Config{}, fmt.Errorf("inputgen: config %q missing selector/domain/raw_email_path", path)
	}
	return cfg, nil
}
