// Package config provides configuration management for the LeapML CLI.
package config

// Config holds all CLI configuration options.
type Config struct {
	DataDir      string       `koanf:"data_dir"`
	StatePath    string       `koanf:"state_path"`
	Verbose      bool         `koanf:"verbose"`
	OutputFormat string       `koanf:"output"`
	LogFormat    string       `koanf:"log_format"`
	PreviewRows  int          `koanf:"preview_rows"`
	Split        SplitConfig  `koanf:"split"`
	Server       ServerConfig `koanf:"server"`
	Mirror       MirrorConfig `koanf:"mirror"`
}

// SplitConfig holds train/test split settings.
type SplitConfig struct {
	Seed     int64   `koanf:"seed"`
	TestSize float64 `koanf:"test_size"`
}

// ServerConfig holds configuration for the API server.
type ServerConfig struct {
	Port          int      `koanf:"port"`
	MaxUploadMB   int      `koanf:"max_upload_mb"`
	SessionSecret string   `koanf:"session_secret"`
	CORSOrigins   []string `koanf:"cors_origins"`
}

// MirrorConfig selects where written files are copied. An empty Type
// disables mirroring.
type MirrorConfig struct {
	Type     string `koanf:"type"`
	Bucket   string `koanf:"bucket"`
	Prefix   string `koanf:"prefix"`
	Region   string `koanf:"region"`
	Endpoint string `koanf:"endpoint"`
}

// Default configuration values.
const (
	DefaultDataDir       = "/tmp/uploads"
	DefaultOutput        = "auto" // Auto-detect: TTY=text, non-TTY=markdown
	DefaultLogFormat     = "text"
	DefaultPreviewRows   = 5
	DefaultSeed          = 42
	DefaultTestSize      = 0.2
	DefaultPort          = 5000
	DefaultMaxUploadMB   = 32
	DefaultSessionSecret = "leapml-dev-secret-change-in-production" //nolint:gosec
	MirrorS3             = "s3"
)
