package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Agent  AgentConfig  `yaml:"agent"`
	Stream StreamConfig `yaml:"stream"`
	Mock   MockConfig   `yaml:"mock"`
}

type AgentConfig struct {
	Name string `yaml:"name"`
}

type StreamConfig struct {
	FlushTimeoutMS int `yaml:"flush_timeout_ms"`
}

type MockConfig struct {
	StepIntervalMS int `yaml:"step_interval_ms"`
}

func defaultConfig() *Config {
	return &Config{
		Agent: AgentConfig{
			Name: "claude",
		},
		Stream: StreamConfig{
			FlushTimeoutMS: 100,
		},
		Mock: MockConfig{
			StepIntervalMS: 500,
		},
	}
}

// Default returns the built-in configuration.
func Default() *Config {
	return defaultConfig()
}

// Load reads a YAML config file. Fields absent from the file keep
// their defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := defaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadOrDefault loads path, returning the built-in defaults when the
// path is empty or the file does not exist. A file that exists but
// fails to parse or validate is still an error.
func LoadOrDefault(path string) (*Config, error) {
	if path == "" {
		return defaultConfig(), nil
	}
	cfg, err := Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return defaultConfig(), nil
	}
	return cfg, err
}

func (c *Config) validate() error {
	if c.Agent.Name == "" {
		return fmt.Errorf("agent.name must not be empty")
	}
	if c.Stream.FlushTimeoutMS <= 0 {
		return fmt.Errorf("stream.flush_timeout_ms must be positive, got %d", c.Stream.FlushTimeoutMS)
	}
	if c.Mock.StepIntervalMS <= 0 {
		return fmt.Errorf("mock.step_interval_ms must be positive, got %d", c.Mock.StepIntervalMS)
	}
	return nil
}

// FlushTimeout returns the idle flush window for partial lines.
func (c *Config) FlushTimeout() time.Duration {
	return time.Duration(c.Stream.FlushTimeoutMS) * time.Millisecond
}

// StepInterval returns the pacing interval for the mock generator.
func (c *Config) StepInterval() time.Duration {
	return time.Duration(c.Mock.StepIntervalMS) * time.Millisecond
}
