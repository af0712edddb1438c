package main

import (
	"log/slog"
	"strings"
	"sync"
	"time"

	"reelcache/internal/config"
	"reelcache/internal/logging"
	"reelcache/internal/movie"
	"reelcache/internal/titles"
	"reelcache/internal/tmdb"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) openStore() (*movie.Store, *config.Config, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, nil, err
	}
	store, err := movie.Open(cfg)
	if err != nil {
		return nil, nil, err
	}
	return store, cfg, nil
}

func (c *commandContext) newLogger(cfg *config.Config) (*slog.Logger, error) {
	return logging.NewFromConfig(cfg)
}

func (c *commandContext) newResolver(cfg *config.Config, store *movie.Store, logger *slog.Logger) (*movie.Resolver, error) {
	client, err := tmdb.New(
		cfg.TMDB.APIKey,
		cfg.TMDB.BaseURL,
		cfg.TMDB.Language,
		tmdb.WithImageBaseURL(cfg.TMDB.ImageBaseURL),
		tmdb.WithTimeout(time.Duration(cfg.TMDB.RequestTimeout)*time.Second),
	)
	if err != nil {
		return nil, err
	}
	return movie.NewResolver(store, client, titles.Parse, logger), nil
}

func (c *commandContext) remoteTimeout(cfg *config.Config) time.Duration {
	if cfg.Lookup.RemoteTimeout <= 0 {
		return 15 * time.Second
	}
	return time.Duration(cfg.Lookup.RemoteTimeout) * time.Second
}
