package config_test

import (
	"testing"

	"voyago/config"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "MONGO_URI", "MONGO_DB", "REDIS_ADDR", "JWT_SECRET", "CORS_ORIGIN", "UPLOAD_DIR"} {
		t.Setenv(key, "")
	}

	cfg := config.Load()
	if cfg.Port != ":8080" {
		t.Errorf("Port = %q", cfg.Port)
	}
	if cfg.MongoDB != "voyago" {
		t.Errorf("MongoDB = %q", cfg.MongoDB)
	}
	if len(cfg.JWTSecret) == 0 {
		t.Error("JWTSecret empty")
	}
}

func TestLoadPortColonPrefix(t *testing.T) {
	t.Setenv("PORT", "9090")
	cfg := config.Load()
	if cfg.Port != ":9090" {
		t.Errorf("Port = %q, want :9090", cfg.Port)
	}
}
