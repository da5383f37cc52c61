package config

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	DatabaseURL       string
	DBPoolMin         int
	DBPoolMax         int
	DBAcquireTimeout  time.Duration
	DBConnMaxLifetime time.Duration

	JWTSecretKey     []byte
	JWTAlgorithm     string
	JWTExpireMinutes int

	PasswordHashAlgorithm string
	PasswordWorkFactor    int
	PasswordMemoryKiB     uint32
	PasswordParallelism   uint8
	PasswordPepper        string

	HTTPAddress    string
	MetricsAddress string
	AllowedOrigins []string
	LogLevel       string
	LogFormat      string
}

var required = []string{
	"DATABASE_URL",
	"JWT_SECRET_KEY",
}

// Load reads configuration from the environment and, when present, from a
// JSON config file. An explicit path must exist; the default ./config.json
// is optional.
func Load(path string) (*Config, error) {
	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("json")
		v.AddConfigPath(".")
	}
	v.AutomaticEnv()

	v.SetDefault("DB_POOL_MIN", 10)
	v.SetDefault("DB_POOL_MAX", 20)
	v.SetDefault("DB_ACQUIRE_TIMEOUT", "5s")
	v.SetDefault("DB_CONN_MAX_LIFETIME", "30m")
	v.SetDefault("JWT_ALGORITHM", "HS256")
	v.SetDefault("JWT_EXPIRE_MINUTES", 30)
	v.SetDefault("PASSWORD_HASH_ALGORITHM", "argon2id")
	v.SetDefault("PASSWORD_WORK_FACTOR", 0)
	v.SetDefault("PASSWORD_MEMORY_KIB", 0)
	v.SetDefault("PASSWORD_PARALLELISM", 0)
	v.SetDefault("HTTP_ADDRESS", ":8080")
	v.SetDefault("METRICS_ADDRESS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "console")

	for _, key := range append(required, "PASSWORD_PEPPER", "ALLOWED_ORIGINS") {
		if err := v.BindEnv(key); err != nil {
			return nil, err
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var missing []string
	for _, key := range required {
		if strings.TrimSpace(v.GetString(key)) == "" {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required config: %s", strings.Join(missing, ", "))
	}

	secret, err := base64.StdEncoding.DecodeString(v.GetString("JWT_SECRET_KEY"))
	if err != nil {
		return nil, fmt.Errorf("JWT_SECRET_KEY must be base64: %w", err)
	}
	if len(secret) == 0 {
		return nil, errors.New("JWT_SECRET_KEY decodes to an empty key")
	}

	parallelism := v.GetUint("PASSWORD_PARALLELISM")
	if parallelism > 255 {
		return nil, fmt.Errorf("PASSWORD_PARALLELISM must be at most 255, got %d", parallelism)
	}

	cfg := &Config{
		DatabaseURL:       v.GetString("DATABASE_URL"),
		DBPoolMin:         v.GetInt("DB_POOL_MIN"),
		DBPoolMax:         v.GetInt("DB_POOL_MAX"),
		DBAcquireTimeout:  v.GetDuration("DB_ACQUIRE_TIMEOUT"),
		DBConnMaxLifetime: v.GetDuration("DB_CONN_MAX_LIFETIME"),

		JWTSecretKey:     secret,
		JWTAlgorithm:     strings.ToUpper(v.GetString("JWT_ALGORITHM")),
		JWTExpireMinutes: v.GetInt("JWT_EXPIRE_MINUTES"),

		PasswordHashAlgorithm: strings.ToLower(v.GetString("PASSWORD_HASH_ALGORITHM")),
		PasswordWorkFactor:    v.GetInt("PASSWORD_WORK_FACTOR"),
		PasswordMemoryKiB:     v.GetUint32("PASSWORD_MEMORY_KIB"),
		PasswordParallelism:   uint8(parallelism),
		PasswordPepper:        v.GetString("PASSWORD_PEPPER"),

		HTTPAddress:    v.GetString("HTTP_ADDRESS"),
		MetricsAddress: v.GetString("METRICS_ADDRESS"),
		AllowedOrigins: splitList(v.GetString("ALLOWED_ORIGINS")),
		LogLevel:       v.GetString("LOG_LEVEL"),
		LogFormat:      v.GetString("LOG_FORMAT"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch {
	case c.DBPoolMin < 0 || c.DBPoolMax <= 0:
		return fmt.Errorf("DB pool bounds must be positive, got min=%d max=%d", c.DBPoolMin, c.DBPoolMax)
	case c.DBPoolMin > c.DBPoolMax:
		return fmt.Errorf("DB_POOL_MIN (%d) exceeds DB_POOL_MAX (%d)", c.DBPoolMin, c.DBPoolMax)
	case c.DBAcquireTimeout <= 0:
		return errors.New("DB_ACQUIRE_TIMEOUT must be positive")
	case c.JWTExpireMinutes < 0:
		return errors.New("JWT_EXPIRE_MINUTES must not be negative")
	}
	return nil
}

// splitList accepts "a,b" as well as a JSON-ish `["a","b"]`.
func splitList(raw string) []string {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "[")
	raw = strings.TrimSuffix(raw, "]")
	var out []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.Trim(strings.TrimSpace(part), `"`)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
