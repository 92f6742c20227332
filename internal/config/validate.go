package config

import (
	"fmt"
	"net/url"
)

// Validate performs business-rule validation on the loaded configuration.
// It must be called after loading; Load calls it automatically.
func (c *Config) Validate() error {
	if len(c.Auth.JWTSecret) < 32 {
		return fmt.Errorf("auth.jwt_secret must be at least 32 characters (got %d)", len(c.Auth.JWTSecret))
	}

	if err := c.Import.validate(); err != nil {
		return fmt.Errorf("import: %w", err)
	}

	if err := c.Functions.validate(); err != nil {
		return fmt.Errorf("functions: %w", err)
	}

	if c.Audit.RetentionDays < 1 {
		return fmt.Errorf("audit: retention_days must be >= 1 (got %d)", c.Audit.RetentionDays)
	}

	switch c.Log.Format {
	case "json", "text":
	default:
		return fmt.Errorf("log.format must be json or text (got %q)", c.Log.Format)
	}

	return nil
}

func (i *ImportConfig) validate() error {
	sizes := []struct {
		name  string
		value int
	}{
		{"vendor_chunk_size", i.VendorChunkSize},
		{"tag_chunk_size", i.TagChunkSize},
		{"location_tag_chunk_size", i.LocationTagChunkSize},
	}
	for _, s := range sizes {
		if s.value <= 0 {
			return fmt.Errorf("%s must be > 0 (got %d)", s.name, s.value)
		}
	}
	if i.MaxUploadBytes <= 0 {
		return fmt.Errorf("max_upload_bytes must be > 0 (got %d)", i.MaxUploadBytes)
	}
	if i.UploadsPerMinute < 0 {
		return fmt.Errorf("uploads_per_minute must be >= 0 (got %d)", i.UploadsPerMinute)
	}
	return nil
}

func (f *FunctionsConfig) validate() error {
	if !f.Enabled() {
		return nil
	}
	u, err := url.Parse(f.BaseURL)
	if err != nil {
		return fmt.Errorf("base_url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" || u.Host == "" {
		return fmt.Errorf("base_url must be an absolute http(s) URL (got %q)", f.BaseURL)
	}
	if f.ServiceKey == "" {
		return fmt.Errorf("service_key is required when base_url is set")
	}
	if f.MaxRetries < 0 {
		return fmt.Errorf("max_retries must be >= 0 (got %d)", f.MaxRetries)
	}
	return nil
}
