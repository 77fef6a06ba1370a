package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("WD_JWT_SECRET", "test-secret")
	t.Setenv("WD_GATEWAY_URL", "https://gateway.test")
	t.Setenv("WD_GUILD_ID", "424242")
}

func TestLoadDefaults(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("WD_ROLES_PATH", filepath.Join(t.TempDir(), "absent.yml"))

	cfg, err := Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.RedisURL != "redis://localhost:6379/0" {
		t.Fatalf("redis url = %q", cfg.RedisURL)
	}
	if cfg.ListenAddr != ":8080" {
		t.Fatalf("listen addr = %q", cfg.ListenAddr)
	}
	if cfg.Gateway.GuildID != 424242 {
		t.Fatalf("guild id = %d", cfg.Gateway.GuildID)
	}
	if cfg.Moderation.AuctionCap != 5 || cfg.Moderation.GeneralCap != 0 {
		t.Fatalf("caps = %d/%d", cfg.Moderation.AuctionCap, cfg.Moderation.GeneralCap)
	}
	if cfg.Moderation.ReconcileInterval != time.Minute {
		t.Fatalf("reconcile interval = %v", cfg.Moderation.ReconcileInterval)
	}
}

func TestLoadMissingSecret(t *testing.T) {
	t.Setenv("WD_JWT_SECRET", "")
	t.Setenv("WD_GATEWAY_URL", "https://gateway.test")
	t.Setenv("WD_GUILD_ID", "424242")

	if _, err := Load(context.Background()); err == nil {
		t.Fatal("expected an error without WD_JWT_SECRET")
	}
}

func TestLoadRolesFile(t *testing.T) {
	setRequiredEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "roles.yml")
	body := "categories:\n  Auction: 201\n  Market: 202\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write roles file: %v", err)
	}
	t.Setenv("WD_ROLES_PATH", path)

	cfg, err := Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Moderation.CategoryRoles["Auction"] != 201 || cfg.Moderation.CategoryRoles["Market"] != 202 {
		t.Fatalf("category roles = %v", cfg.Moderation.CategoryRoles)
	}
}

func TestLoadRolesFileOverridesEnv(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("WD_CATEGORY_ROLES", "Auction:1")
	dir := t.TempDir()
	path := filepath.Join(dir, "roles.yml")
	if err := os.WriteFile(path, []byte("categories:\n  Auction: 9\n"), 0o600); err != nil {
		t.Fatalf("write roles file: %v", err)
	}
	t.Setenv("WD_ROLES_PATH", path)

	cfg, err := Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Moderation.CategoryRoles["Auction"] != 9 {
		t.Fatalf("roles file must win over the env mapping: %v", cfg.Moderation.CategoryRoles)
	}
}

func TestLoadBadRolesFile(t *testing.T) {
	setRequiredEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "roles.yml")
	if err := os.WriteFile(path, []byte("categories: [broken"), 0o600); err != nil {
		t.Fatalf("write roles file: %v", err)
	}
	t.Setenv("WD_ROLES_PATH", path)

	if _, err := Load(context.Background()); err == nil {
		t.Fatal("expected an error for an unparseable roles file")
	}
}
