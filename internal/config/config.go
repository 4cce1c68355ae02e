package config

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/viper"

	"github.com/example/expense-tracker/pkg/expense"
)

// EnvPrefix is prepended to environment overrides, e.g. EXPENSES_DATA_FILE
const EnvPrefix = "EXPENSES"

// Config represents the application configuration
type Config struct {
	DataFile   string   `mapstructure:"data_file"`
	LogLevel   string   `mapstructure:"log_level"`
	Categories []string `mapstructure:"categories"`
}

// LoadConfig loads configuration from an optional TOML file and environment
// variables. An empty configPath skips the file.
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("toml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Set defaults
	v.SetDefault("data_file", "expenses.json")
	v.SetDefault("log_level", "info")
	v.SetDefault("categories", expense.DefaultCategories)

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// Validate checks that the configuration is usable
func (c *Config) Validate() error {
	var problems []string

	if strings.TrimSpace(c.DataFile) == "" {
		problems = append(problems, "data_file cannot be empty")
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		problems = append(problems, fmt.Sprintf("invalid log_level '%s'", c.LogLevel))
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(problems, "\n- "))
	}
	return nil
}
