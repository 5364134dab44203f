package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// LoggingConfig holds the logging-related configuration.
type LoggingConfig struct {
	Level   string `mapstructure:"log_level"`
	Service string `mapstructure:"service"`
}

// VinylDNSConfig holds the API endpoint and credentials.
type VinylDNSConfig struct {
	URL       string  `mapstructure:"url"`
	AccessKey string  `mapstructure:"access_key"`
	SecretKey string  `mapstructure:"secret_key"`
	Region    string  `mapstructure:"region"`
	Timeout   float64 `mapstructure:"timeout"`
}

// GroupConfig describes the group that owns the zones and batches.
type GroupConfig struct {
	Name    string   `mapstructure:"name"`
	Email   string   `mapstructure:"email"`
	Members []string `mapstructure:"members"`
	Admins  []string `mapstructure:"admins"`
}

// ZonesConfig names the forward and reverse zones the run connects.
type ZonesConfig struct {
	Forward string `mapstructure:"forward"`
	Reverse string `mapstructure:"reverse"`
	Email   string `mapstructure:"email"`
}

// PollConfig controls how zone and batch status is awaited.
type PollConfig struct {
	MaxAttempts   int     `mapstructure:"max_attempts"`
	Interval      float64 `mapstructure:"interval"`
	BackoffFactor float64 `mapstructure:"backoff_factor"`
	MaxInterval   float64 `mapstructure:"max_interval"`
	Timeout       float64 `mapstructure:"timeout"`
}

// TeardownConfig bounds the cleanup that follows every run, including one
// interrupted by a signal. Zero leaves it to the poll attempt budget.
type TeardownConfig struct {
	Timeout float64 `mapstructure:"timeout"`
}

// RecordConfig is one record item of the scenario. Replacement is the value
// the item is moved to in the replace phase.
type RecordConfig struct {
	Kind        string `mapstructure:"kind"`
	FQDN        string `mapstructure:"fqdn"`
	Value       string `mapstructure:"value"`
	Replacement string `mapstructure:"replacement"`
}

// ScenarioConfig describes the records pushed through the add, replace and
// delete batches.
type ScenarioConfig struct {
	Comments         string         `mapstructure:"comments"`
	RecordNameFilter string         `mapstructure:"record_name_filter"`
	Records          []RecordConfig `mapstructure:"records"`
}

// EtcdConfig holds etcd-related configuration. With no endpoints sessions
// are journaled in memory only.
type EtcdConfig struct {
	Endpoints         []string `mapstructure:"endpoints"`
	DialTimeout       float64  `mapstructure:"dial_timeout"`
	PathPrefix        string   `mapstructure:"path_prefix"`
	LockTTL           float64  `mapstructure:"lock_ttl"`
	LockTimeout       float64  `mapstructure:"lock_timeout"`
	LockRetryInterval float64  `mapstructure:"lock_retry_interval"`
}

// MetricsConfig controls the run metrics export.
type MetricsConfig struct {
	Textfile string `mapstructure:"textfile"`
}

// Config is the top-level configuration struct.
type Config struct {
	Logging  LoggingConfig  `mapstructure:"log"`
	VinylDNS VinylDNSConfig `mapstructure:"vinyldns"`
	Group    GroupConfig    `mapstructure:"group"`
	Zones    ZonesConfig    `mapstructure:"zones"`
	Poll     PollConfig     `mapstructure:"poll"`
	Teardown TeardownConfig `mapstructure:"teardown"`
	Scenario ScenarioConfig `mapstructure:"scenario"`
	Etcd     EtcdConfig     `mapstructure:"etcd"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
}

// SetDefaults registers every default on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("log.log_level", "INFO")
	v.SetDefault("log.service", "vinyldns_batch_sample")
	v.SetDefault("vinyldns.url", "http://localhost:9000")
	v.SetDefault("vinyldns.access_key", "testUserAccessKey")
	v.SetDefault("vinyldns.secret_key", "testUserSecretKey")
	v.SetDefault("vinyldns.region", "us-east-1")
	v.SetDefault("vinyldns.timeout", 30.0)
	v.SetDefault("group.name", "ok")
	v.SetDefault("group.email", "test@test.com")
	v.SetDefault("group.members", []string{"ok"})
	v.SetDefault("group.admins", []string{"ok"})
	v.SetDefault("zones.forward", "ok.")
	v.SetDefault("zones.reverse", "2.0.192.in-addr.arpa.")
	v.SetDefault("zones.email", "test@test.com")
	v.SetDefault("poll.max_attempts", 20)
	v.SetDefault("poll.interval", 0.5)
	v.SetDefault("poll.backoff_factor", 1.0)
	v.SetDefault("poll.max_interval", 5.0)
	v.SetDefault("poll.timeout", 0.0)
	v.SetDefault("teardown.timeout", 60.0)
	v.SetDefault("scenario.comments", "")
	v.SetDefault("scenario.record_name_filter", "test-java-")
	v.SetDefault("scenario.records", []map[string]interface{}{
		{"kind": "A", "fqdn": "test-java-1.ok.", "value": "192.0.2.110", "replacement": "192.0.2.115"},
		{"kind": "A", "fqdn": "test-java-2.ok.", "value": "192.0.2.111", "replacement": "192.0.2.116"},
	})
	v.SetDefault("etcd.endpoints", []string{})
	v.SetDefault("etcd.dial_timeout", 2.0)
	v.SetDefault("etcd.path_prefix", "/vinyldns-sample")
	v.SetDefault("etcd.lock_ttl", 5.0)
	v.SetDefault("etcd.lock_timeout", 2.0)
	v.SetDefault("etcd.lock_retry_interval", 0.1)
	v.SetDefault("metrics.textfile", "")
}

// InitConfig performs the initial configuration: setting defaults, specifying the config file, and reading it.
func InitConfig(v *viper.Viper, configFile string) error {
	SetDefaults(v)

	// Specify the config file details.
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config") // Looks for config.yaml
		v.SetConfigType("yaml")
		v.AddConfigPath(".") // current directory
	}

	// Read the config file if available.
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) || configFile != "" {
			return fmt.Errorf("error reading config file: %w", err)
		}
		// If the file is not found, just continue with defaults and env vars.
	}

	// Enable automatic environment variable binding.
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	return nil
}

// Load unmarshals the configuration into the Config struct and validates it.
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
	var errs []error
	if c.VinylDNS.URL == "" {
		errs = append(errs, errors.New("vinyldns.url is required"))
	}
	if c.VinylDNS.AccessKey == "" || c.VinylDNS.SecretKey == "" {
		errs = append(errs, errors.New("vinyldns.access_key and vinyldns.secret_key are required"))
	}
	if c.Group.Name == "" || c.Group.Email == "" {
		errs = append(errs, errors.New("group.name and group.email are required"))
	}
	if c.Zones.Forward == "" || c.Zones.Reverse == "" {
		errs = append(errs, errors.New("zones.forward and zones.reverse are required"))
	}
	if c.Poll.MaxAttempts < 1 {
		errs = append(errs, fmt.Errorf("poll.max_attempts must be positive, got %d", c.Poll.MaxAttempts))
	}
	if c.Poll.Interval <= 0 {
		errs = append(errs, fmt.Errorf("poll.interval must be positive, got %v", c.Poll.Interval))
	}
	if c.Teardown.Timeout < 0 {
		errs = append(errs, fmt.Errorf("teardown.timeout must not be negative, got %v", c.Teardown.Timeout))
	}
	if len(c.Scenario.Records) == 0 {
		errs = append(errs, errors.New("scenario.records must not be empty"))
	}
	for i, r := range c.Scenario.Records {
		if r.Kind == "" || r.FQDN == "" || r.Value == "" || r.Replacement == "" {
			errs = append(errs, fmt.Errorf("scenario.records[%d]: kind, fqdn, value and replacement are required", i))
		}
	}
	return errors.Join(errs...)
}

// Seconds converts a fractional-seconds setting into a duration.
func Seconds(f float64) time.Duration {
	return time.Duration(f * float64(time.Second))
}
