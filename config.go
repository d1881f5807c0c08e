package flaudit

import (
	"errors"
	"fmt"
	"os"

	"github.com/pelletier/go-toml"
)

const (
	DefConfigPath  = "config.toml"
	filePermission = 0o644
)

var ErrMissingClientID = errors.New("mqtt client id is required when a broker address is set")

type Config struct {
	Dashboard DashboardConfig `toml:"dashboard"`
	MQTT      MQTTConfig      `toml:"mqtt"`
}

type DashboardConfig struct {
	Name             string `toml:"name"`
	LedgerPath       string `toml:"ledger_path"`
	ExplorerTemplate string `toml:"explorer_template"`
}

type MQTTConfig struct {
	Address   string `toml:"address"`
	ClientID  string `toml:"client_id"`
	ClientKey string `toml:"client_key"`
	Topic     string `toml:"topic"`
}

func (c Config) Validate() error {
	if c.MQTT.Address != "" && c.MQTT.ClientID == "" {
		return ErrMissingClientID
	}

	return nil
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	tree, err := toml.Load(string(data))
	if err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	var cfg Config
	if err := tree.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// LoadConfigIfExists returns an empty config when there is no file at path.
func LoadConfigIfExists(path string) (*Config, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return &Config{}, nil
	}

	return LoadConfig(path)
}

func SaveConfig(path string, cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, filePermission); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}
