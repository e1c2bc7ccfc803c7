package app

import "testing"

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.HTTPAddr != ":8080" {
		t.Errorf("unexpected HTTP addr %q", cfg.HTTPAddr)
	}
	if cfg.OpsAddr != ":9090" {
		t.Errorf("unexpected ops addr %q", cfg.OpsAddr)
	}
	if !cfg.AutoMigrate {
		t.Error("auto migrate must be enabled by default")
	}
	if cfg.PostgresDSN != "" {
		t.Errorf("postgres DSN must be empty by default, got %q", cfg.PostgresDSN)
	}
	if cfg.KafkaBrokers != "" {
		t.Errorf("kafka brokers must be empty by default, got %q", cfg.KafkaBrokers)
	}
}
