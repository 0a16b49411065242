// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Security   SecurityConfig   `mapstructure:"security"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	Printer    PrinterConfig    `mapstructure:"printer"`
	Conversion ConversionConfig `mapstructure:"conversion"`
	Catalog    CatalogConfig    `mapstructure:"catalog"`
	Discovery  DiscoveryConfig  `mapstructure:"discovery"`
	App        AppConfig        `mapstructure:"app"`
}

// ServerConfig represents HTTP server configuration
type ServerConfig struct {
	Host           string        `mapstructure:"host"`
	Port           string        `mapstructure:"port"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	IdleTimeout    time.Duration `mapstructure:"idle_timeout"`
	MaxUploadBytes int64         `mapstructure:"max_upload_bytes"`
}

// SecurityConfig represents security configuration
type SecurityConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	Output     string `mapstructure:"output"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"`
	Compress   bool   `mapstructure:"compress"`
}

// PrinterConfig describes the default target printer
type PrinterConfig struct {
	Model          string        `mapstructure:"model"`
	Label          string        `mapstructure:"label"`
	URI            string        `mapstructure:"uri"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	Strict         bool          `mapstructure:"strict"`
}

// ConversionConfig holds default conversion options
type ConversionConfig struct {
	Cut       bool    `mapstructure:"cut"`
	Dither    bool    `mapstructure:"dither"`
	Compress  bool    `mapstructure:"compress"`
	Red       bool    `mapstructure:"red"`
	Rotate    string  `mapstructure:"rotate"`
	DPI600    bool    `mapstructure:"dpi_600"`
	HQ        bool    `mapstructure:"hq"`
	Threshold float64 `mapstructure:"threshold"`
	OffsetX   int     `mapstructure:"offset_x"`
}

// CatalogConfig points at an optional label/model override file
type CatalogConfig struct {
	Path string `mapstructure:"path"`
}

// DiscoveryConfig controls printer discovery
type DiscoveryConfig struct {
	Timeout  time.Duration `mapstructure:"timeout"`
	TCPHosts []string      `mapstructure:"tcp_hosts"`
	TCPPort  int           `mapstructure:"tcp_port"`
}

// AppConfig represents application metadata
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
	Debug       bool   `mapstructure:"debug"`
}

// Load loads configuration from file and environment variables.
// An empty path searches the working directory and ./configs for config.yaml;
// a missing file leaves the defaults in place.
func Load(path string) (*Config, error) {
	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
	}

	// Environment variable support
	v.SetEnvPrefix("LABEL_SERVICE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", "8085")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "60s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.max_upload_bytes", 32<<20)

	v.SetDefault("security.allowed_origins", []string{"*"})

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output", "stdout")
	v.SetDefault("logging.max_size", 100)
	v.SetDefault("logging.max_backups", 3)
	v.SetDefault("logging.max_age", 28)
	v.SetDefault("logging.compress", true)

	// Printer defaults
	v.SetDefault("printer.model", "QL-500")
	v.SetDefault("printer.label", "62")
	v.SetDefault("printer.uri", "")
	v.SetDefault("printer.connect_timeout", "10s")
	v.SetDefault("printer.write_timeout", "30s")
	v.SetDefault("printer.read_timeout", "5s")
	v.SetDefault("printer.strict", false)

	// Conversion defaults
	v.SetDefault("conversion.cut", true)
	v.SetDefault("conversion.dither", false)
	v.SetDefault("conversion.compress", false)
	v.SetDefault("conversion.red", false)
	v.SetDefault("conversion.rotate", "auto")
	v.SetDefault("conversion.dpi_600", false)
	v.SetDefault("conversion.hq", true)
	v.SetDefault("conversion.threshold", 70.0)
	v.SetDefault("conversion.offset_x", 0)

	v.SetDefault("catalog.path", "")

	v.SetDefault("discovery.timeout", "5s")
	v.SetDefault("discovery.tcp_hosts", []string{})
	v.SetDefault("discovery.tcp_port", 9100)

	// App defaults
	v.SetDefault("app.name", "label-service")
	v.SetDefault("app.version", "1.0.0")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.debug", false)
}

// validate validates the configuration
func validate(config *Config) error {
	if config.Server.Host == "" {
		return fmt.Errorf("server.host is required")
	}
	if config.Server.Port == "" {
		return fmt.Errorf("server.port is required")
	}
	if config.Printer.Model == "" {
		return fmt.Errorf("printer.model is required")
	}

	validEnvs := []string{"development", "staging", "production", "test"}
	if !contains(validEnvs, config.App.Environment) {
		return fmt.Errorf("app.environment must be one of: %v", validEnvs)
	}

	validLevels := []string{"debug", "info", "warn", "error", "fatal"}
	if !contains(validLevels, config.Logging.Level) {
		return fmt.Errorf("logging.level must be one of: %v", validLevels)
	}

	validRotations := []string{"auto", "0", "90", "180", "270"}
	if !contains(validRotations, config.Conversion.Rotate) {
		return fmt.Errorf("conversion.rotate must be one of: %v", validRotations)
	}

	if config.Conversion.Threshold < 0 || config.Conversion.Threshold > 100 {
		return fmt.Errorf("conversion.threshold must be between 0 and 100")
	}

	return nil
}

func contains(values []string, value string) bool {
	for _, v := range values {
		if v == value {
			return true
		}
	}
	return false
}

// GetServerAddr returns the server address
func (c *Config) GetServerAddr() string {
	return fmt.Sprintf("%s:%s", c.Server.Host, c.Server.Port)
}

// IsProduction checks if the environment is production
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// IsDevelopment checks if the environment is development
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsDebugEnabled checks if debug mode is enabled
func (c *Config) IsDebugEnabled() bool {
	return c.App.Debug || c.IsDevelopment()
}
