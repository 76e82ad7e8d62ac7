package greengrass

import (
	"bytes"
	"time"

	"github.com/ggd-protocol/ggd-go/pkg/persistence"
)

// pristine copies doc for the cache. Parsing modifies doc in place, so the
// copy is taken before and saved only once the document parsed.
func (c *Client) pristine(doc []byte) []byte {
	if c.cache == nil {
		return nil
	}
	return bytes.Clone(doc)
}

func (c *Client) saveCached(doc []byte) {
	if c.cache == nil || doc == nil {
		return
	}
	err := c.cache.Save(&persistence.DiscoveryState{
		ThingName: c.config.ThingName,
		Endpoint:  c.config.Endpoint,
		Document:  doc,
	})
	if err != nil {
		c.logger.Warn("saving discovery cache failed", "cache", c.cache.Path(), "error", err)
	}
}

// loadCached returns the cached document, or nil if there is none usable.
func (c *Client) loadCached() []byte {
	if c.cache == nil {
		return nil
	}
	state, err := c.cache.Load()
	if err != nil {
		c.logger.Warn("reading discovery cache failed", "cache", c.cache.Path(), "error", err)
		return nil
	}
	if state == nil || !state.Matches(c.config.ThingName, c.config.Endpoint) {
		return nil
	}
	if maxAge := c.config.CacheMaxAge; maxAge > 0 && state.Age(time.Now()) > maxAge {
		c.logger.Info("discovery cache expired", "saved_at", state.SavedAt)
		return nil
	}
	return state.Document
}
