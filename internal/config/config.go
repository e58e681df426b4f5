package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// DefaultPort is the well-known local port every instance serves on.
const DefaultPort = 3195

// Config holds all launcher configuration.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Paths   PathsConfig   `mapstructure:"paths"`
	Logging LoggingConfig `mapstructure:"logging"`
	Updates UpdatesConfig `mapstructure:"updates"`
	Probe   ProbeConfig   `mapstructure:"probe"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// PathsConfig overrides the directory layout.
type PathsConfig struct {
	Root     string `mapstructure:"root"`
	Config   string `mapstructure:"config"`
	Projects string `mapstructure:"projects"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

// UpdatesConfig holds update-check configuration.
type UpdatesConfig struct {
	Repository string        `mapstructure:"repository"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

// ProbeConfig holds liveness-probe configuration.
type ProbeConfig struct {
	Timeout time.Duration `mapstructure:"timeout"`
}

// Load reads configuration from file and environment variables.
// Priority: environment variables > config file > defaults
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName(strings.TrimSuffix(LauncherFileName, filepath.Ext(LauncherFileName)))
		v.SetConfigType("yaml")
		v.AddConfigPath(DefaultConfigDir())
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("ZEPPPLAYER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file (ignore if not found)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.port", DefaultPort)

	v.SetDefault("paths.root", DefaultRoot())
	v.SetDefault("paths.config", DefaultConfigDir())
	v.SetDefault("paths.projects", DefaultProjectsDir())

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.max_size_mb", 10)
	v.SetDefault("logging.max_backups", 3)
	v.SetDefault("logging.max_age_days", 30)

	v.SetDefault("updates.repository", "melianmiko/ZeppPlayer")
	v.SetDefault("updates.timeout", 15*time.Second)

	v.SetDefault("probe.timeout", 2*time.Second)
}

// Layout returns the directory layout described by the paths section.
func (c *Config) Layout() Layout {
	return Layout{
		Root:        c.Paths.Root,
		ConfigDir:   c.Paths.Config,
		ProjectsDir: c.Paths.Projects,
	}
}

// Address returns the address the server binds to.
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// AppURL returns the loopback URL of the application UI.
func (c *ServerConfig) AppURL() string {
	return fmt.Sprintf("http://127.0.0.1:%d", c.Port)
}
