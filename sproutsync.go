package sproutsync

import (
	"context"
	"log"
	"os"

	"sproutsync/config"
	sphttp "sproutsync/http"
	"sproutsync/sprout"
	"sproutsync/storage"
	"sproutsync/storage/mysql"
)

// NewFetcher builds the host fetcher from configuration. Requests are limited
// to the configured API host and paced at cfg.RateLimit per second.
func NewFetcher(cfg *config.Config) *sphttp.Client {
	httpCfg := sphttp.DefaultConfig()
	httpCfg.Timeout = cfg.Timeout
	httpCfg.UserAgent = cfg.UserAgent
	httpCfg.APIKey = cfg.APIKey
	httpCfg.CacheEnabled = cfg.CacheEnabled
	httpCfg.RateLimiter.RPS = cfg.RateLimit
	if host := cfg.APIHost(); host != "" {
		httpCfg.AllowedDomains = []string{host}
	}
	return sphttp.New(httpCfg)
}

// NewClient returns a SproutVideo client using a fetcher built from cfg.
// Mutating calls are logged to stderr.
func NewClient(cfg *config.Config) *sprout.Client {
	return sprout.NewClient(NewFetcher(cfg),
		sprout.WithBaseURL(cfg.BaseURL),
		sprout.WithLogger(log.New(os.Stderr, "", log.LstdFlags)),
	)
}

// OpenStore opens the MySQL store when a DSN is configured, otherwise the
// JSON file store.
func OpenStore(ctx context.Context, cfg *config.Config) (storage.Store, error) {
	if cfg.MySQLDSN != "" {
		return mysql.Open(ctx, cfg.MySQLDSN)
	}
	return storage.NewJSONStore(cfg.StorePath)
}
