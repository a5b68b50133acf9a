package store

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

type Config struct {
	BaseURL     string `yaml:"base_url"`
	ScanPath    string `yaml:"scan_path"`
	ExecutePath string `yaml:"execute_path"`
	PollSeconds int    `yaml:"poll_seconds"`
	HTTP        struct {
		TimeoutSeconds int `yaml:"timeout_seconds"`
	} `yaml:"http"`
	Web struct {
		Listen string `yaml:"listen"`
		Title  string `yaml:"title"`
	} `yaml:"web"`
}

func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return errors.New("base_url cannot be empty")
	}
	if !strings.HasPrefix(c.BaseURL, "http://") && !strings.HasPrefix(c.BaseURL, "https://") {
		return fmt.Errorf("base_url must be an http(s) URL, got '%s'", c.BaseURL)
	}
	if c.PollSeconds <= 0 {
		return fmt.Errorf("poll_seconds must be positive, got %d", c.PollSeconds)
	}
	if !strings.HasPrefix(c.ScanPath, "/") {
		return fmt.Errorf("scan_path must start with '/', got '%s'", c.ScanPath)
	}
	if !strings.HasPrefix(c.ExecutePath, "/") {
		return fmt.Errorf("execute_path must start with '/', got '%s'", c.ExecutePath)
	}
	return nil
}

func LoadConfig(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}

	applyDefaults(&c)

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &c, nil
}

func applyDefaults(c *Config) {
	if c.ScanPath == "" {
		c.ScanPath = "/api/smc-status"
	}
	if c.ExecutePath == "" {
		c.ExecutePath = "/api/execute-trade"
	}
	if c.PollSeconds == 0 {
		c.PollSeconds = 60
	}
	if c.HTTP.TimeoutSeconds == 0 {
		c.HTTP.TimeoutSeconds = 30
	}
	if c.Web.Listen == "" {
		c.Web.Listen = ":8080"
	}
	if c.Web.Title == "" {
		c.Web.Title = "SMC Dashboard"
	}
}
