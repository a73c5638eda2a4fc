package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Store backends.
const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
	BackendDynamo   = "dynamodb"
)

const (
	EnvStoreBackend = "STORE_BACKEND"

	EnvRedisAddr        = "REDIS_ADDR"
	EnvRedisPassword    = "REDIS_PASSWORD"
	EnvRedisDB          = "REDIS_DB"
	EnvRedisKeyPrefix   = "REDIS_KEY_PREFIX"
	EnvRedisDialTimeout = "REDIS_DIAL_TIMEOUT"

	EnvDynamoTable           = "DYNAMO_TABLE"
	EnvDynamoRegion          = "DYNAMO_REGION"
	EnvDynamoEndpoint        = "DYNAMO_ENDPOINT"
	EnvDynamoAccessKeyID     = "DYNAMO_ACCESS_KEY_ID"
	EnvDynamoSecretAccessKey = "DYNAMO_SECRET_ACCESS_KEY"
)

// StoreConfig selects the document store backend.
type StoreConfig struct {
	Backend string `toml:"backend"`
}

// Finalize applies defaults, loads environment overrides, and validates the backend name.
func (c *StoreConfig) Finalize() error {
	if c.Backend == "" {
		c.Backend = BackendMemory
	}
	if v := os.Getenv(EnvStoreBackend); v != "" {
		c.Backend = v
	}

	switch c.Backend {
	case BackendMemory, BackendPostgres, BackendRedis, BackendDynamo:
		return nil
	default:
		return fmt.Errorf("invalid backend: %s (must be memory, postgres, redis, or dynamodb)", c.Backend)
	}
}

// Merge applies non-zero overlay values.
func (c *StoreConfig) Merge(overlay *StoreConfig) {
	if overlay.Backend != "" {
		c.Backend = overlay.Backend
	}
}

// RedisConfig contains connection settings for the redis store backend.
type RedisConfig struct {
	Addr        string `toml:"addr"`
	Password    string `toml:"password"`
	DB          int    `toml:"db"`
	KeyPrefix   string `toml:"key_prefix"`
	DialTimeout string `toml:"dial_timeout"`
}

func (c *RedisConfig) DialTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.DialTimeout)
	return d
}

// Finalize applies defaults, loads environment overrides, and validates the redis configuration.
func (c *RedisConfig) Finalize() error {
	if c.Addr == "" {
		c.Addr = "localhost:6379"
	}
	if c.KeyPrefix == "" {
		c.KeyPrefix = "pdfredactor"
	}
	if c.DialTimeout == "" {
		c.DialTimeout = "5s"
	}

	if v := os.Getenv(EnvRedisAddr); v != "" {
		c.Addr = v
	}
	if v := os.Getenv(EnvRedisPassword); v != "" {
		c.Password = v
	}
	if v := os.Getenv(EnvRedisDB); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.DB = n
		}
	}
	if v := os.Getenv(EnvRedisKeyPrefix); v != "" {
		c.KeyPrefix = v
	}
	if v := os.Getenv(EnvRedisDialTimeout); v != "" {
		c.DialTimeout = v
	}

	if c.DB < 0 {
		return fmt.Errorf("db must not be negative")
	}
	if _, err := time.ParseDuration(c.DialTimeout); err != nil {
		return fmt.Errorf("invalid dial_timeout: %w", err)
	}
	return nil
}

// Merge applies non-zero overlay values.
func (c *RedisConfig) Merge(overlay *RedisConfig) {
	if overlay.Addr != "" {
		c.Addr = overlay.Addr
	}
	if overlay.Password != "" {
		c.Password = overlay.Password
	}
	if overlay.DB != 0 {
		c.DB = overlay.DB
	}
	if overlay.KeyPrefix != "" {
		c.KeyPrefix = overlay.KeyPrefix
	}
	if overlay.DialTimeout != "" {
		c.DialTimeout = overlay.DialTimeout
	}
}

// DynamoConfig contains settings for the DynamoDB store backend. Static
// credentials are optional; without them the default AWS chain is used.
type DynamoConfig struct {
	Table           string `toml:"table"`
	Region          string `toml:"region"`
	Endpoint        string `toml:"endpoint"`
	AccessKeyID     string `toml:"access_key_id"`
	SecretAccessKey string `toml:"secret_access_key"`
}

// HasStaticCredentials reports whether both static credential fields are set.
func (c *DynamoConfig) HasStaticCredentials() bool {
	return c.AccessKeyID != "" && c.SecretAccessKey != ""
}

// Finalize applies defaults, loads environment overrides, and validates the dynamo configuration.
func (c *DynamoConfig) Finalize() error {
	if c.Table == "" {
		c.Table = "documents"
	}
	if c.Region == "" {
		c.Region = "us-east-1"
	}

	if v := os.Getenv(EnvDynamoTable); v != "" {
		c.Table = v
	}
	if v := os.Getenv(EnvDynamoRegion); v != "" {
		c.Region = v
	}
	if v := os.Getenv(EnvDynamoEndpoint); v != "" {
		c.Endpoint = v
	}
	if v := os.Getenv(EnvDynamoAccessKeyID); v != "" {
		c.AccessKeyID = v
	}
	if v := os.Getenv(EnvDynamoSecretAccessKey); v != "" {
		c.SecretAccessKey = v
	}

	if (c.AccessKeyID == "") != (c.SecretAccessKey == "") {
		return fmt.Errorf("access_key_id and secret_access_key must be set together")
	}
	return nil
}

// Merge applies non-zero overlay values.
func (c *DynamoConfig) Merge(overlay *DynamoConfig) {
	if overlay.Table != "" {
		c.Table = overlay.Table
	}
	if overlay.Region != "" {
		c.Region = overlay.Region
	}
	if overlay.Endpoint != "" {
		c.Endpoint = overlay.Endpoint
	}
	if overlay.AccessKeyID != "" {
		c.AccessKeyID = overlay.AccessKeyID
	}
	if overlay.SecretAccessKey != "" {
		c.SecretAccessKey = overlay.SecretAccessKey
	}
}
