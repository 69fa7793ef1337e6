package mcp

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/claude/liftlog/internal/models"
	"github.com/coocood/freecache"
)

const (
	catalogCacheSize = 1024 * 1024
	// seconds
	catalogCacheExpire = 300
)

var catalogKey = []byte("exercises::all")

// catalog caches the exercise list so name lookups in tool calls do not hit
// the data source every time.
type catalog struct {
	ds    DataSource
	cache *freecache.Cache
	log   *slog.Logger
}

func newCatalog(ds DataSource, log *slog.Logger) *catalog {
	return &catalog{
		ds:    ds,
		cache: freecache.NewCache(catalogCacheSize),
		log:   log,
	}
}

func (c *catalog) exercises(ctx context.Context) ([]models.Exercise, error) {
	if b, err := c.cache.Get(catalogKey); err == nil {
		var cached []models.Exercise
		uerr := json.Unmarshal(b, &cached)
		if uerr == nil {
			return cached, nil
		}
		c.log.Warn("mcp catalog: discarding unreadable cache entry", "error", uerr)
	}

	exercises, err := c.ds.Exercises(ctx)
	if err != nil {
		return nil, err
	}
	b, err := json.Marshal(exercises)
	if err != nil {
		return exercises, nil
	}
	if err := c.cache.Set(catalogKey, b, catalogCacheExpire); err != nil {
		c.log.Debug("mcp catalog: cache write failed", "error", err)
	}
	return exercises, nil
}

func (c *catalog) invalidate() {
	c.cache.Del(catalogKey)
}
