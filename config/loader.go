package config

import (
	"fmt"

	"github.com/spf13/pflag"
)

// LoadConfig loads configuration with the following priority:
// 1. Command-line flags that were explicitly set (highest priority)
// 2. Config file (explicit --config path or first found in ConfigLocations)
// 3. Defaults (lowest priority)
//
// fs may be nil, in which case only the file and defaults apply. The result is
// not validated; callers pick Validate or ValidateSettings for their command.
func LoadConfig(fs *pflag.FlagSet) (*Config, string, error) {
	configPath := ""
	if fs != nil {
		if f := fs.Lookup(FlagConfig); f != nil {
			configPath = f.Value.String()
		}
	}
	explicit := configPath != ""
	if !explicit {
		configPath = FindConfigFile()
	}

	var cfg *Config
	if configPath != "" {
		var err error
		cfg, err = LoadConfigFile(configPath)
		if err != nil {
			if explicit {
				return nil, "", fmt.Errorf("failed to load config file %s: %w", configPath, err)
			}
			return nil, "", fmt.Errorf("failed to load discovered config file %s: %w", configPath, err)
		}
	} else {
		cfg = DefaultConfig()
	}

	if fs != nil {
		if err := cfg.MergeFromFlags(fs); err != nil {
			return nil, "", err
		}
	}

	cfg.ResolveOutput()

	return cfg, configPath, nil
}
