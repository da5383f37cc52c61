package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// base64 of "super-secret-signing-key"
const testSecret = "c3VwZXItc2VjcmV0LXNpZ25pbmcta2V5"

func TestLoad_Success(t *testing.T) {
	chdirForTest(t, t.TempDir())
	t.Setenv("DATABASE_URL", "postgres://u:p@localhost/db")
	t.Setenv("JWT_SECRET_KEY", testSecret)
	t.Setenv("JWT_EXPIRE_MINUTES", "15")
	t.Setenv("DB_ACQUIRE_TIMEOUT", "2s")
	t.Setenv("PASSWORD_HASH_ALGORITHM", "BCRYPT")
	t.Setenv("PASSWORD_WORK_FACTOR", "12")
	t.Setenv("ALLOWED_ORIGINS", `["https://app.example.com", "https://admin.example.com"]`)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if string(cfg.JWTSecretKey) != "super-secret-signing-key" {
		t.Fatalf("secret not decoded, got %q", cfg.JWTSecretKey)
	}
	if cfg.JWTExpireMinutes != 15 {
		t.Fatalf("JWTExpireMinutes want 15, got %d", cfg.JWTExpireMinutes)
	}
	if cfg.DBAcquireTimeout != 2*time.Second {
		t.Fatalf("DBAcquireTimeout want 2s, got %v", cfg.DBAcquireTimeout)
	}
	if cfg.PasswordHashAlgorithm != "bcrypt" || cfg.PasswordWorkFactor != 12 {
		t.Fatalf("password settings not loaded: %s/%d", cfg.PasswordHashAlgorithm, cfg.PasswordWorkFactor)
	}
	if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[1] != "https://admin.example.com" {
		t.Fatalf("AllowedOrigins parsed wrong: %v", cfg.AllowedOrigins)
	}
}

func TestLoad_Defaults(t *testing.T) {
	chdirForTest(t, t.TempDir())
	t.Setenv("DATABASE_URL", "db")
	t.Setenv("JWT_SECRET_KEY", testSecret)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.DBPoolMin != 10 || cfg.DBPoolMax != 20 {
		t.Fatalf("pool defaults want 10/20, got %d/%d", cfg.DBPoolMin, cfg.DBPoolMax)
	}
	if cfg.JWTAlgorithm != "HS256" || cfg.JWTExpireMinutes != 30 {
		t.Fatalf("jwt defaults wrong: %s/%d", cfg.JWTAlgorithm, cfg.JWTExpireMinutes)
	}
	if cfg.HTTPAddress != ":8080" {
		t.Fatalf("HTTPAddress default wrong: %s", cfg.HTTPAddress)
	}
}

func TestLoad_MissingRequired(t *testing.T) {
	chdirForTest(t, t.TempDir())
	t.Setenv("DATABASE_URL", "db")
	t.Setenv("JWT_SECRET_KEY", "")

	if _, err := Load(""); err == nil {
		t.Fatal("expected error due to missing JWT_SECRET_KEY, got nil")
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	cases := map[string]map[string]string{
		"secret not base64": {"JWT_SECRET_KEY": "%%%"},
		"pool inverted":     {"DB_POOL_MIN": "30", "DB_POOL_MAX": "5"},
		"negative ttl":      {"JWT_EXPIRE_MINUTES": "-1"},
		"zero acquire wait": {"DB_ACQUIRE_TIMEOUT": "0s"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			chdirForTest(t, t.TempDir())
			t.Setenv("DATABASE_URL", "db")
			t.Setenv("JWT_SECRET_KEY", testSecret)
			for k, v := range env {
				t.Setenv(k, v)
			}
			if _, err := Load(""); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	chdirForTest(t, dir)
	path := filepath.Join(dir, "accounts.json")
	body := `{"DATABASE_URL": "postgres://file/db", "JWT_SECRET_KEY": "` + testSecret + `", "HTTP_ADDRESS": ":9090"}`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.DatabaseURL != "postgres://file/db" || cfg.HTTPAddress != ":9090" {
		t.Fatalf("file values not loaded: %+v", cfg)
	}

	if _, err := Load(filepath.Join(dir, "missing.json")); err == nil {
		t.Fatal("explicit missing config file must fail")
	}
}
