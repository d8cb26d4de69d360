package config

import "testing"

func TestLoadUsesDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("BOT_SEED", "")

	cfg := Load()
	if cfg.Port != "8080" || cfg.BotSeed != 0 || cfg.DBMaxOpenConns != 10 {
		t.Fatalf("cfg = %+v", cfg)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("BOT_SEED", "12345")
	t.Setenv("DB_MAX_OPEN_CONNS", "25")
	t.Setenv("DB_CONN_MAX_LIFETIME_SECONDS", "not-a-number")

	cfg := Load()
	if cfg.Port != "9090" || cfg.BotSeed != 12345 || cfg.DBMaxOpenConns != 25 {
		t.Fatalf("cfg = %+v", cfg)
	}
	if cfg.DBConnMaxLifetimeSeconds != 300 {
		t.Fatalf("bad value should keep the default, got %d", cfg.DBConnMaxLifetimeSeconds)
	}
}

func TestLoadDotEnvMissingFileIsFine(t *testing.T) {
	if err := LoadDotEnv("testdata/absent.env"); err != nil {
		t.Fatalf("missing file: %v", err)
	}
}
