package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateIndex(); err != nil {
		return err
	}
	if err := c.validatePackaging(); err != nil {
		return err
	}
	if err := c.validateWebhooks(); err != nil {
		return err
	}
	if err := c.validateWorkflow(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateIndex() error {
	if err := validateHTTPURL(c.Index.UploadURL); err != nil {
		return fmt.Errorf("index.upload_url: %w", err)
	}
	return nil
}

func (c *Config) validatePackaging() error {
	if !c.Packaging.Sdist && !c.Packaging.Wheel {
		return errors.New("packaging: at least one of sdist or wheel must be enabled")
	}
	if c.Packaging.BuildTimeout <= 0 {
		return errors.New("packaging.build_timeout must be positive (seconds)")
	}
	if c.Packaging.UploadTimeout <= 0 {
		return errors.New("packaging.upload_timeout must be positive (seconds)")
	}
	return nil
}

func (c *Config) validateWebhooks() error {
	seen := make(map[string]struct{}, len(c.Webhooks))
	for i, hook := range c.Webhooks {
		if hook.Name == "" {
			return fmt.Errorf("webhook[%d]: name must be set", i)
		}
		if _, dup := seen[hook.Name]; dup {
			return fmt.Errorf("webhook %q: duplicate name", hook.Name)
		}
		seen[hook.Name] = struct{}{}
		if hook.URL == "" {
			return fmt.Errorf("webhook %q: url must be set", hook.Name)
		}
		if err := validateHTTPURL(hook.URL); err != nil {
			return fmt.Errorf("webhook %q: %w", hook.Name, err)
		}
	}
	return nil
}

func (c *Config) validateWorkflow() error {
	if c.Workflow.WebhookTimeout <= 0 {
		return errors.New("workflow.webhook_timeout must be positive (seconds)")
	}
	if c.Notifications.RequestTimeout <= 0 {
		return errors.New("notifications.request_timeout must be positive (seconds)")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	return nil
}

func validateHTTPURL(value string) error {
	parsed, err := url.Parse(strings.TrimSpace(value))
	if err != nil {
		return fmt.Errorf("invalid url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("url must use http or https, got %q", value)
	}
	if parsed.Host == "" {
		return fmt.Errorf("url missing host: %q", value)
	}
	return nil
}
