package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/AlibekovAA/no-tion/internal/common/constants"
	commonerrors "github.com/AlibekovAA/no-tion/internal/common/errors"
)

type ServerConfig struct {
	Host            string        `yaml:"host" validate:"omitempty,hostname|ip"`
	Port            int           `yaml:"port" validate:"min=0,max=65535"`
	OpsPort         string        `yaml:"ops_port" validate:"omitempty,numeric"`
	MaxWorkers      int           `yaml:"max_workers" validate:"min=1"`
	AcceptQueueSize int           `yaml:"accept_queue_size" validate:"min=0"`
	MaxLineBytes    int           `yaml:"max_line_bytes" validate:"min=64"`
	WriteTimeout    time.Duration `yaml:"write_timeout" validate:"min=0"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" validate:"gt=0"`
	LogDir          string        `yaml:"log_dir"`
	LogLevel        string        `yaml:"log_level" validate:"omitempty,oneof=debug info warn warning error critical DEBUG INFO WARN WARNING ERROR CRITICAL"`
}

func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Port:            constants.DefaultPort,
		OpsPort:         constants.DefaultOpsPort,
		MaxWorkers:      constants.DefaultMaxWorkers,
		AcceptQueueSize: constants.DefaultAcceptQueue,
		MaxLineBytes:    constants.DefaultMaxLineBytes,
		WriteTimeout:    constants.DefaultWriteTimeout,
		ShutdownTimeout: constants.DefaultShutdownTimeout,
		LogLevel:        "info",
	}
}

// Addr is the TCP address the note protocol listens on.
func (c ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// OpsAddr is the HTTP address for health and metrics, empty when disabled.
func (c ServerConfig) OpsAddr() string {
	if c.OpsPort == "" {
		return ""
	}
	return net.JoinHostPort(c.Host, c.OpsPort)
}

// LoadServerConfig layers defaults, an optional YAML file and NOTES_* env
// variables, in that order. An empty path falls back to NOTES_CONFIG_FILE.
func LoadServerConfig(path string) (ServerConfig, error) {
	cfg := DefaultServerConfig()

	if path == "" {
		path = getEnv("NOTES_CONFIG_FILE", "")
	}
	if path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return ServerConfig{}, err
		}
	}

	cfg.Host = getEnv("NOTES_HOST", cfg.Host)
	cfg.Port = getIntEnv("NOTES_PORT", cfg.Port)
	cfg.OpsPort = getEnv("NOTES_OPS_PORT", cfg.OpsPort)
	cfg.MaxWorkers = getIntEnv("NOTES_MAX_WORKERS", cfg.MaxWorkers)
	cfg.AcceptQueueSize = getIntEnv("NOTES_ACCEPT_QUEUE_SIZE", cfg.AcceptQueueSize)
	cfg.MaxLineBytes = getIntEnv("NOTES_MAX_LINE_BYTES", cfg.MaxLineBytes)
	cfg.WriteTimeout = getDurationEnv("NOTES_WRITE_TIMEOUT", cfg.WriteTimeout)
	cfg.ShutdownTimeout = getDurationEnv("NOTES_SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout)
	cfg.LogDir = getEnv("LOG_DIR", cfg.LogDir)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)

	if err := cfg.Validate(); err != nil {
		return ServerConfig{}, err
	}

	return cfg, nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

func (c ServerConfig) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		parts := make([]string, 0, len(fieldErrs))
		for _, fe := range fieldErrs {
			parts = append(parts, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
		}
		return fmt.Errorf("%w: %s", commonerrors.ErrInvalidConfig, strings.Join(parts, ", "))
	}

	return fmt.Errorf("%w: %v", commonerrors.ErrInvalidConfig, err)
}

func loadFile(path string, cfg *ServerConfig) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	return nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

func getIntEnv(key string, fallback int) int {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return i
}
