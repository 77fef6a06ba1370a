package config

import (
	"context"
	"fmt"
	"os"
	"time"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/sethvargo/go-envconfig"
	yaml "gopkg.in/yaml.v2"
)

type (
	// Config is built once at startup and handed to every component
	// constructor. Nothing reads the environment after Load returns.
	Config struct {
		RedisURL    string `env:"REDIS_URL,default=redis://localhost:6379/0"`
		ListenAddr  string `env:"LISTEN_ADDR,default=:8080"`
		MetricsAddr string `env:"METRICS_ADDR,default=:2112"`
		JWTSecret   string `env:"JWT_SECRET,required"`
		LogLevel    int    `env:"LOG_LEVEL,default=4"`
		RolesPath   string `env:"ROLES_PATH,default=~/.warden/roles.yml"`

		Gateway    Gateway
		Moderation Moderation
	}

	Gateway struct {
		BaseURL      string `env:"GATEWAY_URL,required"`
		Token        string `env:"GATEWAY_TOKEN"`
		GuildID      int64  `env:"GUILD_ID,required"`
		LogChannelID int64  `env:"LOG_CHANNEL_ID"`
	}

	Moderation struct {
		AuctionCap        int64         `env:"AUCTION_CAP,default=5"`
		GeneralCap        int64         `env:"GENERAL_CAP,default=0"`
		ReasonMaxLen      int           `env:"REASON_MAX_LEN,default=500"`
		ReconcileInterval time.Duration `env:"RECONCILE_INTERVAL,default=1m"`
		StoreTimeout      time.Duration `env:"STORE_TIMEOUT,default=5s"`

		// CategoryRoles maps a sanction category name to the platform
		// role that enforces it. Populated from the roles file, with
		// WD_CATEGORY_ROLES as a fallback for container deployments.
		CategoryRoles map[string]int64 `env:"CATEGORY_ROLES"`
	}
)

type rolesFile struct {
	Categories map[string]int64 `yaml:"categories"`
}

func Load(ctx context.Context) (Config, error) {
	cfg := Config{}
	envcfg := envconfig.Config{
		Lookuper: envconfig.PrefixLookuper("WD_", envconfig.OsLookuper()),
		Target:   &cfg,
	}
	if err := envconfig.ProcessWith(ctx, &envcfg); err != nil {
		return Config{}, fmt.Errorf("process env config: %w", err)
	}

	path, err := homedir.Expand(cfg.RolesPath)
	if err != nil {
		return Config{}, fmt.Errorf("expand roles path: %w", err)
	}
	cfg.RolesPath = path

	roles, err := loadRoles(path)
	if err != nil {
		return Config{}, err
	}
	if len(roles) > 0 {
		cfg.Moderation.CategoryRoles = roles
	}
	return cfg, nil
}

// loadRoles reads the category role mapping file. A missing file is not an
// error, the env-provided mapping stays in effect.
func loadRoles(path string) (map[string]int64, error) {
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read roles file: %w", err)
	}
	var parsed rolesFile
	if err := yaml.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("parse roles file %s: %w", path, err)
	}
	return parsed.Categories, nil
}
