package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// AppConfig holds application-specific configuration.
type AppConfig struct {
	NetworkName      string  `mapstructure:"network_name"`
	NetworkDriver    string  `mapstructure:"network_driver"`
	ProjectLabel     string  `mapstructure:"project_label"`
	ServiceLabel     string  `mapstructure:"service_label"`
	AliasSuffix      string  `mapstructure:"alias_suffix"`
	Resubscribe      bool    `mapstructure:"resubscribe"`
	ResubscribeDelay float64 `mapstructure:"resubscribe_delay"`
}

// LoggingConfig holds the logging-related configuration.
type LoggingConfig struct {
	Level string `mapstructure:"log_level"`
}

// EtcdConfig holds the optional alias publication backend.
type EtcdConfig struct {
	Enabled     bool     `mapstructure:"enabled"`
	Endpoints   []string `mapstructure:"endpoints"`
	PathPrefix  string   `mapstructure:"etcd_path_prefix"`
	LeaseTTL    int64    `mapstructure:"lease_ttl"`
	DialTimeout float64  `mapstructure:"dial_timeout"`
}

// Config is the top-level configuration struct.
type Config struct {
	App     AppConfig     `mapstructure:"app"`
	Logging LoggingConfig `mapstructure:"log"`
	Etcd    EtcdConfig    `mapstructure:"etcd"`
}

// SetDefaults registers the default value of every key. The defaults match
// the fixed constants the watcher has always used.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("app.network_name", "apps-internal")
	v.SetDefault("app.network_driver", "bridge")
	v.SetDefault("app.project_label", "com.docker.compose.project")
	v.SetDefault("app.service_label", "com.docker.compose.service")
	v.SetDefault("app.alias_suffix", "svc.cluster.local")
	v.SetDefault("app.resubscribe", false)
	v.SetDefault("app.resubscribe_delay", 5.0)
	v.SetDefault("log.log_level", "INFO")
	v.SetDefault("etcd.enabled", false)
	v.SetDefault("etcd.endpoints", []string{"localhost:2379"})
	v.SetDefault("etcd.etcd_path_prefix", "/skydns")
	v.SetDefault("etcd.lease_ttl", 30)
	v.SetDefault("etcd.dial_timeout", 2.0)
}

// InitConfig performs the initial configuration: setting defaults, specifying the config file, and reading it.
func InitConfig(v *viper.Viper, configFile string) error {
	SetDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config") // Looks for config.yaml
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || configFile != "" {
			return fmt.Errorf("error reading config file: %w", err)
		}
		// No config file: defaults and env vars only.
	}

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	return nil
}

// Load unmarshals the configuration into the Config struct.
func Load(v *viper.Viper) (*Config, error) {
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.App.NetworkName) == "" {
		return fmt.Errorf("app.network_name must not be empty")
	}
	if c.App.ProjectLabel == "" || c.App.ServiceLabel == "" {
		return fmt.Errorf("app.project_label and app.service_label must not be empty")
	}
	if c.App.ResubscribeDelay < 0 {
		return fmt.Errorf("app.resubscribe_delay must not be negative")
	}
	if c.Etcd.Enabled {
		if len(c.Etcd.Endpoints) == 0 {
			return fmt.Errorf("etcd.endpoints must be set when etcd.enabled is true")
		}
		if c.Etcd.LeaseTTL <= 0 {
			return fmt.Errorf("etcd.lease_ttl must be positive")
		}
	}
	return nil
}
