package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"
)

const (
	ConfigPathFlag    = "config"
	DefaultConfigPath = "config.yaml"
	LogLevelFlag      = "level"
	SchemeFlag        = "scheme"

	DefaultHost         = "127.0.0.1"
	DefaultPort         = 8080
	DefaultMetricsPort  = 9090
	DefaultMaxBodyBytes = 64 * 1024
	DefaultScheme       = "legacy"
)

// Supported values for EncryptionConfig.Scheme and AuthConfig.Type.
var (
	Schemes   = []string{"legacy", "sealed"}
	AuthTypes = []string{"jwt"}
)

type (
	ConfigProvider interface {
		GetProxyConfig() ProxyConfig
	}

	ProxyConfig struct {
		Server         ServerConfig     `yaml:"server"`
		Metrics        MetricsConfig    `yaml:"metrics"`
		Encryption     EncryptionConfig `yaml:"encryption"`
		Authentication *AuthConfig      `yaml:"authentication,omitempty"`
	}

	ServerConfig struct {
		Port         int    `yaml:"port"`
		Host         string `yaml:"host"`
		MaxBodyBytes int64  `yaml:"max_body_bytes,omitempty"`
	}

	MetricsConfig struct {
		Port int `yaml:"port"`
	}

	EncryptionConfig struct {
		Scheme string `yaml:"scheme"`
	}

	AuthConfig struct {
		Type   string                 `yaml:"type"`
		Config map[string]interface{} `yaml:"config"`
	}

	cliConfigProvider struct {
		ctx         *cli.Context
		proxyConfig ProxyConfig
	}
)

func newConfigProvider(ctx *cli.Context) (ConfigProvider, error) {
	proxyConfig, err := LoadConfigFromContext(ctx)
	if err != nil {
		return nil, err
	}

	return &cliConfigProvider{
		ctx:         ctx,
		proxyConfig: proxyConfig,
	}, nil
}

func (c *cliConfigProvider) GetProxyConfig() ProxyConfig {
	return c.proxyConfig
}

// NewStaticConfigProvider wraps an already loaded config.
func NewStaticConfigProvider(cfg ProxyConfig) ConfigProvider {
	return &cliConfigProvider{proxyConfig: cfg}
}

// LoadConfigFromContext loads the file named by the --config flag and applies
// the --scheme override. A missing file at the default path is not an error;
// built-in defaults are used instead.
func LoadConfigFromContext(ctx *cli.Context) (ProxyConfig, error) {
	path := ctx.String(ConfigPathFlag)
	if path == "" {
		path = DefaultConfigPath
	}

	var (
		cfg ProxyConfig
		err error
	)
	if _, statErr := os.Stat(path); errors.Is(statErr, os.ErrNotExist) && !ctx.IsSet(ConfigPathFlag) {
		cfg = DefaultConfig()
	} else {
		cfg, err = LoadConfig(path)
		if err != nil {
			return cfg, err
		}
	}

	if ctx.IsSet(SchemeFlag) {
		cfg.Encryption.Scheme = ctx.String(SchemeFlag)
		if err := cfg.Validate(); err != nil {
			return cfg, fmt.Errorf("failed to validate config: %w", err)
		}
	}

	return cfg, nil
}

// DefaultConfig is the configuration used when no file is present.
func DefaultConfig() ProxyConfig {
	cfg := ProxyConfig{Metrics: MetricsConfig{Port: DefaultMetricsPort}}
	cfg.applyDefaults()
	return cfg
}

// LoadConfig reads a yaml config. An omitted metrics section keeps
// DefaultMetricsPort; an explicit `port: 0` disables the metrics endpoint.
func LoadConfig(configFilePath string) (ProxyConfig, error) {
	config := ProxyConfig{Metrics: MetricsConfig{Port: DefaultMetricsPort}}

	configFile, err := os.ReadFile(configFilePath)
	if err != nil {
		return config, fmt.Errorf("failed to read config file: %w", err)
	}

	if err = yaml.Unmarshal(configFile, &config); err != nil {
		return config, fmt.Errorf("failed to unmarshal config file: %w", err)
	}

	config.applyDefaults()

	if err = config.Validate(); err != nil {
		return config, fmt.Errorf("failed to validate config: %w", err)
	}

	return config, nil
}

func (c *ProxyConfig) applyDefaults() {
	if c.Server.Host == "" {
		c.Server.Host = DefaultHost
	}
	if c.Server.Port == 0 {
		c.Server.Port = DefaultPort
	}
	if c.Server.MaxBodyBytes == 0 {
		c.Server.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if c.Encryption.Scheme == "" {
		c.Encryption.Scheme = DefaultScheme
	}
}

// Validate checks ranges and enumerations. Metrics port 0 disables the
// metrics endpoint.
func (c *ProxyConfig) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server port must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Metrics.Port < 0 || c.Metrics.Port > 65535 {
		return fmt.Errorf("metrics port must be between 0 and 65535, got %d", c.Metrics.Port)
	}
	if c.Metrics.Port != 0 && c.Metrics.Port == c.Server.Port {
		return fmt.Errorf("metrics port %d conflicts with server port", c.Metrics.Port)
	}
	if c.Server.MaxBodyBytes < 0 {
		return fmt.Errorf("server max_body_bytes must not be negative")
	}
	if !contains(Schemes, c.Encryption.Scheme) {
		return fmt.Errorf("unsupported encryption scheme %q", c.Encryption.Scheme)
	}

	if c.Authentication != nil {
		if !contains(AuthTypes, c.Authentication.Type) {
			return fmt.Errorf("unsupported authentication type %q", c.Authentication.Type)
		}
		if c.Authentication.Config == nil {
			return fmt.Errorf("authentication config is required for type %s", c.Authentication.Type)
		}
	}

	return nil
}

func contains(values []string, v string) bool {
	for _, value := range values {
		if value == v {
			return true
		}
	}
	return false
}
