package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"valora/internal/core/id"
	"valora/internal/domain"
)

// Shared query-param parsing for document list endpoints. Malformed
// optional values are ignored rather than rejected.

func (h *BaseHandler) ParseListFilter(c *gin.Context, defaultOrder string) domain.ListFilter {
	filter := domain.DefaultListFilter()
	filter.Search = c.Query("search")
	filter.Limit = h.ParseIntQuery(c, "limit", 50)
	filter.Offset = h.ParseIntQuery(c, "offset", 0)
	filter.OrderBy = c.DefaultQuery("orderBy", defaultOrder)
	filter.IncludeDeleted = c.Query("includeDeleted") == "true"
	return filter
}

func queryID(c *gin.Context, key string) *id.ID {
	if v := c.Query(key); v != "" {
		if parsed, err := id.Parse(v); err == nil {
			return &parsed
		}
	}
	return nil
}

func queryBool(c *gin.Context, key string) *bool {
	if v := c.Query(key); v != "" {
		val := v == "true"
		return &val
	}
	return nil
}

func queryDate(c *gin.Context, key string) *time.Time {
	v := c.Query(key)
	if v == "" {
		return nil
	}
	if parsed, err := time.Parse(time.RFC3339, v); err == nil {
		return &parsed
	}
	if parsed, err := time.Parse("2006-01-02", v); err == nil {
		return &parsed
	}
	return nil
}
