// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"

	"valora/internal/infrastructure/http/v1/middleware"
)

// CatalogRouteHandler is the endpoint set every catalog exposes.
type CatalogRouteHandler interface {
	List(c *gin.Context)
	Create(c *gin.Context)
	Get(c *gin.Context)
	Update(c *gin.Context)
	Delete(c *gin.Context)
	SetDeletionMark(c *gin.Context)
	GetTree(c *gin.Context)
}

// DocumentRouteHandler is the endpoint set every document exposes.
type DocumentRouteHandler interface {
	List(c *gin.Context)
	Create(c *gin.Context)
	Get(c *gin.Context)
	Update(c *gin.Context)
	Delete(c *gin.Context)
	Post(c *gin.Context)
	Unpost(c *gin.Context)
}

// DocumentCopyHandler marks document handlers that support copying.
type DocumentCopyHandler interface {
	Copy(c *gin.Context)
}

func requires(permission, action string) gin.HandlerFunc {
	return middleware.RequirePermission(permission + ":" + action)
}

// RegisterCatalogRoutes wires the standard CRUD routes for one catalog
// under the group, guarded by per-action permissions derived from the
// permission prefix, e.g. "catalog:counterparty".
func RegisterCatalogRoutes(group *gin.RouterGroup, handler CatalogRouteHandler, permission string) {
	group.GET("", requires(permission, "read"), handler.List)
	group.GET("/tree", requires(permission, "read"), handler.GetTree)
	group.GET("/:id", requires(permission, "read"), handler.Get)
	group.POST("", requires(permission, "create"), handler.Create)
	group.PUT("/:id", requires(permission, "update"), handler.Update)
	group.DELETE("/:id", requires(permission, "delete"), handler.Delete)
	group.POST("/:id/deletion-mark", requires(permission, "delete"), handler.SetDeletionMark)
}

// RegisterDocumentRoutes wires CRUD plus posting routes for one
// document type. A handler that also implements DocumentCopyHandler
// gets the copy route as well.
func RegisterDocumentRoutes(group *gin.RouterGroup, handler DocumentRouteHandler, permission string) {
	group.GET("", requires(permission, "read"), handler.List)
	group.GET("/:id", requires(permission, "read"), handler.Get)
	group.POST("", requires(permission, "create"), handler.Create)
	group.PUT("/:id", requires(permission, "update"), handler.Update)
	group.DELETE("/:id", requires(permission, "delete"), handler.Delete)
	group.POST("/:id/post", requires(permission, "post"), handler.Post)
	group.POST("/:id/unpost", requires(permission, "unpost"), handler.Unpost)

	if copyHandler, ok := handler.(DocumentCopyHandler); ok {
		group.POST("/:id/copy", requires(permission, "create"), copyHandler.Copy)
	}
}
