package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"valora/internal/infrastructure/cache"
	"valora/internal/metadata"
)

type MetadataHandler struct {
	registry    *metadata.Registry
	schemaCache *cache.SchemaCache
}

// NewMetadataHandler creates the metadata handler. schemaCache may be nil;
// custom field queries then return empty sets.
func NewMetadataHandler(registry *metadata.Registry, schemaCache *cache.SchemaCache) *MetadataHandler {
	return &MetadataHandler{
		registry:    registry,
		schemaCache: schemaCache,
	}
}

// ListEntities returns a list of all registered entities (summarized).
// GET /api/v1/meta
func (h *MetadataHandler) ListEntities(c *gin.Context) {
	// We might want to return a simplified list (names/types/labels) only,
	// but for now returning full definitions is fine for MVP.
	entities := h.registry.List()
	c.JSON(http.StatusOK, entities)
}

// GetEntity returns the full metadata for a specific entity.
// GET /api/v1/meta/:name
func (h *MetadataHandler) GetEntity(c *gin.Context) {
	name := c.Param("name")
	if def, ok := h.registry.Get(name); ok {
		c.JSON(http.StatusOK, def)
	} else {
		c.Status(http.StatusNotFound)
	}
}

// CustomFields returns the active custom field schemas for an entity type.
// GET /api/v1/schema/custom-fields/:entity
func (h *MetadataHandler) CustomFields(c *gin.Context) {
	entityType := c.Param("entity")

	var fields []cache.CustomFieldSchema
	if h.schemaCache != nil {
		fields = h.schemaCache.GetCustomFields(entityType)
	}
	if fields == nil {
		fields = []cache.CustomFieldSchema{}
	}

	c.JSON(http.StatusOK, gin.H{
		"entityType": entityType,
		"fields":     fields,
	})
}
