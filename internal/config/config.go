package config

import (
	"time"

	"github.com/spf13/viper"
)

/**
 * Logging configuration
 * @property {string} level - Log level (debug/info/warn/error)
 * @property {string} path - Log file path, "console" for stdout
 */
type LogConfig struct {
	Level string `mapstructure:"level"`
	Path  string `mapstructure:"path"`
}

/**
 * Release download configuration
 * @property {string} release_api - "latest release" metadata endpoint
 * @property {string} download_base - base URL of the release asset store
 * @property {duration} metadata_timeout - timeout for the metadata query
 * @property {duration} artifact_timeout - timeout for one asset download
 */
type DownloadConfig struct {
	ReleaseAPI      string        `mapstructure:"release_api"`
	DownloadBase    string        `mapstructure:"download_base"`
	MetadataTimeout time.Duration `mapstructure:"metadata_timeout"`
	ArtifactTimeout time.Duration `mapstructure:"artifact_timeout"`
}

/**
 * Listening inbound configuration written into the service config
 * @property {string} method - SS2022 cipher identifier, fixed by protocol
 * @property {string} tag - inbound tag, also used as the URI display tag
 */
type InboundConfig struct {
	Method string `mapstructure:"method"`
	Listen string `mapstructure:"listen"`
	Tag    string `mapstructure:"tag"`
}

type AppConfig struct {
	Log      LogConfig      `mapstructure:"log"`
	Download DownloadConfig `mapstructure:"download"`
	Inbound  InboundConfig  `mapstructure:"inbound"`
	// Password is normally supplied via the SSDEPLOY_PSK environment
	// variable and bypasses secret generation entirely.
	Password  string   `mapstructure:"password"`
	Endpoints []string `mapstructure:"ip_echo_endpoints"`
}

/**
 * Load application configuration from an optional YAML file
 * @description
 * - Looks for ssdeploy.yaml in the working directory and /etc/ssdeploy
 * - A missing config file is not an error; defaults apply
 * - Binds SSDEPLOY_PSK to the password field
 */
func LoadConfig() (*AppConfig, error) {
	viper.SetConfigName("ssdeploy")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("/etc/ssdeploy")
	viper.BindEnv("password", "SSDEPLOY_PSK")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg AppConfig
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

var Config AppConfig

func collectConfig(cfg *AppConfig) *AppConfig {
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Download.ReleaseAPI == "" {
		cfg.Download.ReleaseAPI = "https://api.github.com/repos/SagerNet/sing-box/releases/latest"
	}
	if cfg.Download.DownloadBase == "" {
		cfg.Download.DownloadBase = "https://github.com/SagerNet/sing-box/releases"
	}
	if cfg.Download.MetadataTimeout <= 0 {
		cfg.Download.MetadataTimeout = 15 * time.Second
	}
	if cfg.Download.ArtifactTimeout <= 0 {
		cfg.Download.ArtifactTimeout = 10 * time.Minute
	}
	if cfg.Inbound.Method == "" {
		cfg.Inbound.Method = "2022-blake3-aes-128-gcm"
	}
	if cfg.Inbound.Listen == "" {
		cfg.Inbound.Listen = "::"
	}
	if cfg.Inbound.Tag == "" {
		cfg.Inbound.Tag = "ss-2022"
	}
	if len(cfg.Endpoints) == 0 {
		cfg.Endpoints = []string{
			"https://api.ipify.org",
			"https://ifconfig.me/ip",
			"https://icanhazip.com",
			"https://ipinfo.io/ip",
		}
	}
	return cfg
}

// App returns the process-wide configuration
func App() *AppConfig {
	return &Config
}

func init() {
	cfg, err := LoadConfig()
	if err == nil {
		Config = *cfg
	}
	collectConfig(&Config)
}
