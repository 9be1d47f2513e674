package config

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/leapml/internal/cli/output"
)

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("data_dir is required")
	}
	if !output.IsValid(c.OutputFormat) {
		return fmt.Errorf("invalid output format %q (want one of: %s)", c.OutputFormat, strings.Join(output.Modes(), ", "))
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log_format %q (want text or json)", c.LogFormat)
	}
	if c.PreviewRows <= 0 {
		return fmt.Errorf("preview_rows must be positive, got %d", c.PreviewRows)
	}
	if c.Split.TestSize <= 0 || c.Split.TestSize >= 1 {
		return fmt.Errorf("split.test_size must be between 0 and 1 exclusive, got %v", c.Split.TestSize)
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}
	if c.Server.MaxUploadMB <= 0 {
		return fmt.Errorf("server.max_upload_mb must be positive, got %d", c.Server.MaxUploadMB)
	}
	if strings.TrimSpace(c.Server.SessionSecret) == "" {
		return fmt.Errorf("server.session_secret must not be empty")
	}

	switch c.Mirror.Type {
	case "":
	case MirrorS3:
		if c.Mirror.Bucket == "" {
			return fmt.Errorf("mirror.bucket is required for the s3 mirror")
		}
	default:
		return fmt.Errorf("unknown mirror type %q", c.Mirror.Type)
	}
	return nil
}
