package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeIndex()
	c.normalizePackaging()
	c.normalizeWebhooks()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.ProjectRoot) == "" {
		c.Paths.ProjectRoot = defaultProjectRoot
	}
	if c.Paths.ProjectRoot, err = expandPath(c.Paths.ProjectRoot); err != nil {
		return fmt.Errorf("paths.project_root: %w", err)
	}
	if c.Paths.StagingDir, err = expandPath(c.Paths.StagingDir); err != nil {
		return fmt.Errorf("paths.staging_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeIndex() {
	c.Index.Repository = strings.TrimSpace(c.Index.Repository)
	if c.Index.Repository == "" {
		c.Index.Repository = defaultRepository
	}
	c.Index.UploadURL = strings.TrimSpace(c.Index.UploadURL)
	if c.Index.UploadURL == "" {
		c.Index.UploadURL = defaultUploadURL
	}
	if c.Index.Username == "" {
		if value, ok := os.LookupEnv("PYPI_USERNAME"); ok {
			c.Index.Username = value
		}
	}
	if c.Index.Password == "" {
		if value, ok := os.LookupEnv("PYPI_PASSWORD"); ok {
			c.Index.Password = value
		}
	}
}

func (c *Config) normalizePackaging() {
	c.Packaging.PythonBinary = strings.TrimSpace(c.Packaging.PythonBinary)
	if c.Packaging.PythonBinary == "" {
		c.Packaging.PythonBinary = defaultPythonBinary
	}
	c.Packaging.TwineBinary = strings.TrimSpace(c.Packaging.TwineBinary)
	if c.Packaging.TwineBinary == "" {
		c.Packaging.TwineBinary = defaultTwineBinary
	}
}

func (c *Config) normalizeWebhooks() {
	for i := range c.Webhooks {
		c.Webhooks[i].Name = strings.TrimSpace(c.Webhooks[i].Name)
		c.Webhooks[i].URL = strings.TrimSpace(c.Webhooks[i].URL)
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
