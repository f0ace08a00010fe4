package remotelog

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the recognized relay settings.
type Config struct {
	Port           int           `yaml:"port"`
	Backlog        int           `yaml:"backlog"`
	AcceptTimeout  time.Duration `yaml:"accept_timeout"`
	IOTimeout      time.Duration `yaml:"io_timeout"`
	ReservedTask   string        `yaml:"reserved_task_name"`
	BufferCapacity int           `yaml:"format_buffer_capacity"`
	AsyncQueue     int           `yaml:"async_queue"` // 0 = synchronous
}

// DefaultConfig returns the built-in settings.
func DefaultConfig() *Config {
	return &Config{
		Port:           DefaultPort,
		Backlog:        DefaultBacklog,
		AcceptTimeout:  DefaultAcceptTimeout,
		IOTimeout:      DefaultIOTimeout,
		ReservedTask:   DefaultReservedTask,
		BufferCapacity: DefaultBufferCapacity,
	}
}

// LoadConfig returns the defaults, overridden by the YAML file at path (if
// path is not empty), then by REMOTELOG_* environment variables. The result
// is validated.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, c)
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("REMOTELOG_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: REMOTELOG_PORT: %w", ErrInvalidConfig, err)
		}
		c.Port = port
	}
	if v := os.Getenv("REMOTELOG_ACCEPT_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%w: REMOTELOG_ACCEPT_TIMEOUT: %w", ErrInvalidConfig, err)
		}
		c.AcceptTimeout = d
	}
	if v := os.Getenv("REMOTELOG_IO_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%w: REMOTELOG_IO_TIMEOUT: %w", ErrInvalidConfig, err)
		}
		c.IOTimeout = d
	}
	if v, ok := os.LookupEnv("REMOTELOG_RESERVED_TASK"); ok {
		c.ReservedTask = v
	}
	return nil
}

// Validate checks that every setting is usable.
func (c *Config) Validate() error {
	switch {
	case c.Port < 0 || c.Port > 65535:
		return fmt.Errorf("%w: port %d out of range", ErrInvalidConfig, c.Port)
	case c.Backlog < 1:
		return fmt.Errorf("%w: backlog must be at least 1, got %d", ErrInvalidConfig, c.Backlog)
	case c.AcceptTimeout < 0:
		return fmt.Errorf("%w: negative accept_timeout %s", ErrInvalidConfig, c.AcceptTimeout)
	case c.IOTimeout < 0:
		return fmt.Errorf("%w: negative io_timeout %s", ErrInvalidConfig, c.IOTimeout)
	case c.BufferCapacity < 1:
		return fmt.Errorf("%w: format_buffer_capacity must be at least 1, got %d", ErrInvalidConfig, c.BufferCapacity)
	case c.AsyncQueue < 0:
		return fmt.Errorf("%w: negative async_queue %d", ErrInvalidConfig, c.AsyncQueue)
	}
	return nil
}

// Options converts the configuration to relay options.
func (c *Config) Options() []RelayOption {
	return []RelayOption{
		Port(c.Port),
		Backlog(c.Backlog),
		AcceptTimeout(c.AcceptTimeout),
		IOTimeout(c.IOTimeout),
		ReservedTask(c.ReservedTask),
		BufferCapacity(c.BufferCapacity),
		AsyncQueue(c.AsyncQueue),
	}
}
