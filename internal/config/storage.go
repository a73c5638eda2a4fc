package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// EnvStorageBasePath overrides the blob storage base path.
const EnvStorageBasePath = "STORAGE_BASE_PATH"

// StorageConfig contains blob storage settings for the postgres backend,
// which keeps document payloads outside the database.
type StorageConfig struct {
	// BasePath is the root directory for document blobs.
	// Default: ".data/documents"
	BasePath string `toml:"base_path"`
}

// Finalize applies defaults, loads environment overrides, and validates the storage configuration.
func (c *StorageConfig) Finalize() error {
	if c.BasePath == "" {
		c.BasePath = ".data/documents"
	}
	if v := os.Getenv(EnvStorageBasePath); v != "" {
		c.BasePath = v
	}
	if filepath.Clean(c.BasePath) == string(filepath.Separator) {
		return fmt.Errorf("base_path cannot be the filesystem root")
	}
	return nil
}

// Merge applies non-zero overlay values.
func (c *StorageConfig) Merge(overlay *StorageConfig) {
	if overlay.BasePath != "" {
		c.BasePath = overlay.BasePath
	}
}
