package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/lysyi3m/relaycast/app/cache"
	"github.com/lysyi3m/relaycast/app/feed"
)

const feedContentType = "application/rss+xml; charset=utf-8"

// End users never see raw relay errors; the worst case served here is a
// minimal valid feed with zero items.
const feedCacheControl = "public, max-age=300, stale-while-revalidate=600"

type Handler struct {
	builder   *feed.Builder
	feedCache *cache.Cache
}

func NewHandler(builder *feed.Builder, feedCache *cache.Cache) *Handler {
	return &Handler{
		builder:   builder,
		feedCache: feedCache,
	}
}

func (h *Handler) GetFeed(c *gin.Context) {
	result := h.builder.Run(c.Request.Context(), false)

	c.Header("Content-Type", feedContentType)
	c.Header("Cache-Control", feedCacheControl)
	c.Header("X-Episode-Count", strconv.Itoa(result.EpisodeCount))

	c.String(http.StatusOK, result.Document)
}

func (h *Handler) GetHealth(c *gin.Context) {
	result := h.builder.Run(c.Request.Context(), false)

	c.Header("Cache-Control", feedCacheControl)
	c.JSON(http.StatusOK, result.Health)
}

// Rebuild drops the cached generation and produces a fresh one.
func (h *Handler) Rebuild(c *gin.Context) {
	if h.feedCache != nil {
		if err := h.feedCache.Invalidate("rebuild requested"); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
	}

	result := h.builder.Run(c.Request.Context(), true)

	c.JSON(http.StatusOK, gin.H{
		"status":   "rebuilt",
		"episodes": result.EpisodeCount,
		"bytes":    len(result.Document),
	})
}
