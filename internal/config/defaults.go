package config

const (
	defaultProjectRoot    = "."
	defaultStagingDir     = "~/.local/share/capstan/staging"
	defaultLogDir         = "~/.local/share/capstan/logs"
	defaultRepository     = "pypi"
	defaultUploadURL      = "https://upload.pypi.org/legacy/"
	defaultPythonBinary   = "python3"
	defaultTwineBinary    = "twine"
	defaultBuildTimeout   = 600
	defaultUploadTimeout  = 300
	defaultWebhookTimeout = 30
	defaultNotifyTimeout  = 10
	defaultLogFormat      = "console"
	defaultLogLevel       = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			ProjectRoot: defaultProjectRoot,
			StagingDir:  defaultStagingDir,
			LogDir:      defaultLogDir,
		},
		Index: Index{
			Repository: defaultRepository,
			UploadURL:  defaultUploadURL,
		},
		Packaging: Packaging{
			PythonBinary:  defaultPythonBinary,
			TwineBinary:   defaultTwineBinary,
			BuildTimeout:  defaultBuildTimeout,
			UploadTimeout: defaultUploadTimeout,
			Sdist:         true,
			Wheel:         true,
		},
		Workflow: Workflow{
			WebhookTimeout: defaultWebhookTimeout,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyTimeout,
			Releases:       true,
			Errors:         true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
