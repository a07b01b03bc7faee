package cfg

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Addr  string
	Debug bool

	Catalog   CatalogCfg
	Redis     RedisCfg
	Auth      AuthCfg
	Metrics   MetricsCfg
	RateLimit RateLimitCfg
}

type CatalogCfg struct {
	Backend     string // file, postgres or memory
	File        string
	DatabaseURL string
}

type RedisCfg struct {
	Addr     string // empty disables the search cache
	Password string
	DB       int
	CacheTTL time.Duration
}

type AuthCfg struct {
	JWTSecret     string
	AdminEmail    string
	AdminPassword string // empty locks the write path
}

type MetricsCfg struct {
	Enabled bool
	Token   string
}

type RateLimitCfg struct {
	WriteLimit    int
	WindowSeconds int
}

// Load reads configuration from ELECTROMART_* environment variables, dots
// mapped to underscores (catalog.file -> ELECTROMART_CATALOG_FILE).
func Load() *Config {
	v := viper.New()

	v.SetDefault("addr", ":8080")
	v.SetDefault("debug", false)
	v.SetDefault("catalog.backend", "file")
	v.SetDefault("catalog.file", "products.json")
	v.SetDefault("catalog.database_url", "")
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.cache_ttl", 5*time.Minute)
	v.SetDefault("auth.jwt_secret", "dev-secret")
	v.SetDefault("auth.admin_email", "admin@electromart.local")
	v.SetDefault("auth.admin_password", "")
	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.token", "")
	v.SetDefault("ratelimit.write_limit", 10)
	v.SetDefault("ratelimit.window_seconds", 60)

	v.SetEnvPrefix("ELECTROMART")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return &Config{
		Addr:  v.GetString("addr"),
		Debug: v.GetBool("debug"),
		Catalog: CatalogCfg{
			Backend:     v.GetString("catalog.backend"),
			File:        v.GetString("catalog.file"),
			DatabaseURL: v.GetString("catalog.database_url"),
		},
		Redis: RedisCfg{
			Addr:     v.GetString("redis.addr"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
			CacheTTL: v.GetDuration("redis.cache_ttl"),
		},
		Auth: AuthCfg{
			JWTSecret:     v.GetString("auth.jwt_secret"),
			AdminEmail:    v.GetString("auth.admin_email"),
			AdminPassword: v.GetString("auth.admin_password"),
		},
		Metrics: MetricsCfg{
			Enabled: v.GetBool("metrics.enabled"),
			Token:   v.GetString("metrics.token"),
		},
		RateLimit: RateLimitCfg{
			WriteLimit:    v.GetInt("ratelimit.write_limit"),
			WindowSeconds: v.GetInt("ratelimit.window_seconds"),
		},
	}
}
