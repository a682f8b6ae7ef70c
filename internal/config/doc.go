// Package config loads, normalizes, and validates Capstan configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// PYPI_USERNAME and PYPI_PASSWORD. The Config type centralizes every knob the
// CLI needs: project location, package index credentials, packaging tool
// selection, the ordered webhook trigger list, and notification settings.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical defaults, and clear validation errors. Index
// credentials are deliberately not validated at load time; commands that do
// not publish must work without secrets in the environment.
package config
