package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"ElectroMart/internal/auth"
	"ElectroMart/internal/catalog"
	"ElectroMart/internal/cfg"
	"ElectroMart/pkg/kit"
)

const service = "electromart"

func main() {
	c := cfg.Load()

	log := kit.NewLogger(service, c.Debug)
	defer func() { _ = log.Sync() }()

	ctx := context.Background()

	repo, cleanup, err := newRepository(ctx, c)
	if err != nil {
		log.Fatal("init repository", zap.Error(err))
	}
	if cleanup != nil {
		defer cleanup()
	}

	cat, err := catalog.New(ctx, repo)
	if err != nil {
		if !errors.Is(err, catalog.ErrCatalogUnavailable) {
			log.Fatal("load catalog", zap.Error(err))
		}
		// Missing or corrupt backing store: serve an empty catalog rather
		// than crash; the first successful add recreates the document.
		log.Warn("catalog backing store unavailable, starting empty", zap.Error(err))
		cat = catalog.NewEmpty(repo)
	}
	log.Info("catalog loaded", zap.Int("products", cat.Len()))

	var cache *catalog.SearchCache
	if c.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     c.Redis.Addr,
			Password: c.Redis.Password,
			DB:       c.Redis.DB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Warn("redis unreachable, search cache disabled", zap.Error(err))
		} else {
			cache = catalog.NewSearchCache(rdb, c.Redis.CacheTTL)
			defer rdb.Close()
		}
	}

	users := auth.NewMemStore()
	jwt := auth.NewTokenMaker(c.Auth.JWTSecret)
	if c.Auth.AdminPassword != "" {
		id := "u_" + uuid.NewString()
		if err := users.Create(c.Auth.AdminEmail, c.Auth.AdminPassword, auth.RoleAdmin, id); err != nil {
			log.Fatal("seed admin account", zap.Error(err))
		}
	} else {
		log.Warn("no admin password configured, product creation is locked")
	}

	authSrv := &auth.Server{Log: log, Store: users, JWT: jwt}

	srv := &catalog.Server{
		Catalog: cat,
		Cache:   cache,
		Log:     log,
		Admin:   auth.RequireRole(jwt, auth.RoleAdmin),
		Limiter: kit.NewIPRateLimiter(c.RateLimit.WriteLimit, c.RateLimit.WindowSeconds),
	}

	h := catalog.NewHandler(srv, authSrv.Routes(), catalog.HTTPDeps{
		Log:            log,
		Service:        service,
		Registry:       prometheus.NewRegistry(),
		MetricsEnabled: c.Metrics.Enabled,
		MetricsToken:   c.Metrics.Token,
	})

	if err := kit.RunHTTPServer(c.Addr, h, log); err != nil {
		log.Fatal("http server stopped", zap.Error(err))
	}
}

func newRepository(ctx context.Context, c *cfg.Config) (catalog.Repository, func(), error) {
	switch c.Catalog.Backend {
	case "file":
		return catalog.NewFileRepository(c.Catalog.File), nil, nil
	case "postgres":
		repo, err := catalog.OpenPostgres(ctx, c.Catalog.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		return repo, func() { _ = repo.Close() }, nil
	case "memory":
		return catalog.NewMemoryRepository(nil), nil, nil
	default:
		return nil, nil, fmt.Errorf("unknown catalog backend %q", c.Catalog.Backend)
	}
}
