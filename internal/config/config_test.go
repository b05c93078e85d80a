package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	chdir(t, t.TempDir())
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if cfg.Server.Port != 5000 {
		t.Errorf("expected default port 5000, got %d", cfg.Server.Port)
	}
	if cfg.Database.Driver != "sqlite" {
		t.Errorf("expected sqlite driver, got %q", cfg.Database.Driver)
	}
	if cfg.Window() != 60*time.Second {
		t.Errorf("expected 60s window, got %s", cfg.Window())
	}
	if cfg.Feed.DisplayOffset != 5*time.Hour+30*time.Minute {
		t.Errorf("expected +5h30m offset, got %s", cfg.Feed.DisplayOffset)
	}
	if cfg.Feed.ZoneLabel != "IST" {
		t.Errorf("expected IST label, got %q", cfg.Feed.ZoneLabel)
	}
	if cfg.Feed.Limit != 0 {
		t.Errorf("expected no feed limit, got %d", cfg.Feed.Limit)
	}
	if len(cfg.Server.CORSOrigins) != 1 || cfg.Server.CORSOrigins[0] != "*" {
		t.Errorf("expected permissive CORS, got %v", cfg.Server.CORSOrigins)
	}
	if cfg.TelegramEnabled() {
		t.Error("telegram should be disabled without a token")
	}
	if got := cfg.ServerAddress(); got != "0.0.0.0:5000" {
		t.Errorf("unexpected server address %q", got)
	}
}

func TestLoad_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "gitfeed.yaml")
	content := `
server:
  port: 9090
database:
  driver: memory
feed:
  window_seconds: 120
  display_offset: -4h
  zone_label: EDT
  limit: 10
telegram:
  token: abc
  chat_id: -1001
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("expected port 9090, got %d", cfg.Server.Port)
	}
	if cfg.Database.Driver != "memory" {
		t.Errorf("expected memory driver, got %q", cfg.Database.Driver)
	}
	if cfg.Window() != 2*time.Minute {
		t.Errorf("expected 2m window, got %s", cfg.Window())
	}
	if cfg.Feed.DisplayOffset != -4*time.Hour {
		t.Errorf("expected -4h offset, got %s", cfg.Feed.DisplayOffset)
	}
	if cfg.Feed.Limit != 10 {
		t.Errorf("expected limit 10, got %d", cfg.Feed.Limit)
	}
	if !cfg.TelegramEnabled() || cfg.Telegram.ChatID != -1001 {
		t.Errorf("unexpected telegram config %+v", cfg.Telegram)
	}
}

func TestLoad_Env(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("GITFEED_SERVER_PORT", "3000")
	t.Setenv("GITFEED_DATABASE_DRIVER", "postgres")
	t.Setenv("GITFEED_DATABASE_DSN", "postgres://localhost/gitfeed")
	t.Setenv("GITFEED_FEED_ZONE_LABEL", "UTC")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if cfg.Server.Port != 3000 {
		t.Errorf("expected port 3000, got %d", cfg.Server.Port)
	}
	if cfg.Database.DSN != "postgres://localhost/gitfeed" {
		t.Errorf("unexpected dsn %q", cfg.Database.DSN)
	}
	if cfg.Feed.ZoneLabel != "UTC" {
		t.Errorf("expected UTC label, got %q", cfg.Feed.ZoneLabel)
	}
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			Server:   ServerConfig{Port: 5000},
			Database: DatabaseConfig{Driver: "sqlite", Path: "events.db"},
			Feed:     FeedConfig{WindowSeconds: 60},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "memory driver", mutate: func(c *Config) { c.Database.Driver = "memory" }},
		{name: "unknown driver", mutate: func(c *Config) { c.Database.Driver = "mongo" }, wantErr: true},
		{name: "postgres without dsn", mutate: func(c *Config) { c.Database.Driver = "postgres" }, wantErr: true},
		{name: "sqlite without path", mutate: func(c *Config) { c.Database.Path = "" }, wantErr: true},
		{name: "zero window", mutate: func(c *Config) { c.Feed.WindowSeconds = 0 }, wantErr: true},
		{name: "negative limit", mutate: func(c *Config) { c.Feed.Limit = -1 }, wantErr: true},
		{name: "bad port", mutate: func(c *Config) { c.Server.Port = 70000 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

// chdir changes the working directory for the duration of the test and
// restores it on cleanup (equivalent of testing.T.Chdir, added in Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(prev); err != nil {
			t.Fatalf("restore working directory: %v", err)
		}
	})
}
