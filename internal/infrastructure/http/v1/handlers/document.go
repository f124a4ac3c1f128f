package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"valora/internal/core/apperror"
	"valora/internal/core/id"
	"valora/internal/core/tenant"
	"valora/internal/infrastructure/http/v1/middleware"
)

// DocumentService is what a document service has to offer for the
// generic handler to serve it.
type DocumentService[T any] interface {
	GetByID(ctx context.Context, id id.ID) (T, error)
	Create(ctx context.Context, entity T) error
	Update(ctx context.Context, entity T) error
	Delete(ctx context.Context, id id.ID) error
	Post(ctx context.Context, id id.ID) error
	Unpost(ctx context.Context, id id.ID) error
	PostAndSave(ctx context.Context, entity T) error
}

// BaseDocumentHandler serves the endpoints shared by every document
// type. Tenant isolation is physical (database per tenant); the
// company scope is resolved by middleware and handed to the create
// mapper.
type BaseDocumentHandler[T any, CreateDTO any, UpdateDTO any] struct {
	*BaseHandler
	service    DocumentService[T]
	entityName string

	mapCreateDTO      func(dto CreateDTO, scope tenant.Scope) T
	mapUpdateDTO      func(dto UpdateDTO, existing T) T
	mapToDTO          func(entity T) any
	isPostImmediately func(dto CreateDTO) bool
}

type BaseDocumentHandlerConfig[T any, CreateDTO any, UpdateDTO any] struct {
	Service           DocumentService[T]
	EntityName        string
	MapCreateDTO      func(dto CreateDTO, scope tenant.Scope) T
	MapUpdateDTO      func(dto UpdateDTO, existing T) T
	MapToDTO          func(entity T) any
	IsPostImmediately func(dto CreateDTO) bool
}

func NewBaseDocumentHandler[T any, CreateDTO any, UpdateDTO any](
	base *BaseHandler,
	cfg BaseDocumentHandlerConfig[T, CreateDTO, UpdateDTO],
) *BaseDocumentHandler[T, CreateDTO, UpdateDTO] {
	return &BaseDocumentHandler[T, CreateDTO, UpdateDTO]{
		BaseHandler:       base,
		service:           cfg.Service,
		entityName:        cfg.EntityName,
		mapCreateDTO:      cfg.MapCreateDTO,
		mapUpdateDTO:      cfg.MapUpdateDTO,
		mapToDTO:          cfg.MapToDTO,
		isPostImmediately: cfg.IsPostImmediately,
	}
}

// pathID parses the :id path parameter, answering 400 on garbage.
func (h *BaseDocumentHandler[T, CreateDTO, UpdateDTO]) pathID(c *gin.Context) (id.ID, bool) {
	docID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return id.Nil(), false
	}
	return docID, true
}

// respond replays the body through the idempotency store and writes it.
func (h *BaseDocumentHandler[T, CreateDTO, UpdateDTO]) respond(c *gin.Context, status int, doc T) {
	body := h.mapToDTO(doc)
	h.CompleteIdempotency(c, status, "application/json", body)
	c.JSON(status, body)
}

// stampCreated and stampUpdated record the acting user on documents
// that expose the audit setters.
func (h *BaseDocumentHandler[T, CreateDTO, UpdateDTO]) stampCreated(c *gin.Context, doc T) {
	if userID := h.GetUserID(c); userID != "" {
		if a, ok := any(doc).(interface{ SetCreatedBy(string) }); ok {
			a.SetCreatedBy(userID)
		}
	}
}

func (h *BaseDocumentHandler[T, CreateDTO, UpdateDTO]) stampUpdated(c *gin.Context, doc T) {
	if userID := h.GetUserID(c); userID != "" {
		if a, ok := any(doc).(interface{ SetUpdatedBy(string) }); ok {
			a.SetUpdatedBy(userID)
		}
	}
}

// Get handles GET /{entity}/:id.
func (h *BaseDocumentHandler[T, CreateDTO, UpdateDTO]) Get(c *gin.Context) {
	docID, ok := h.pathID(c)
	if !ok {
		return
	}

	doc, err := h.service.GetByID(c.Request.Context(), docID)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, h.mapToDTO(doc))
}

// Create handles POST /{entity}. A request with the post-immediately
// flag set is created and posted in one transaction.
func (h *BaseDocumentHandler[T, CreateDTO, UpdateDTO]) Create(c *gin.Context) {
	var req CreateDTO
	if !h.BindJSON(c, &req) {
		return
	}

	scope, err := middleware.GetScope(c)
	if err != nil {
		h.Error(c, err)
		return
	}

	doc := h.mapCreateDTO(req, scope)
	h.stampCreated(c, doc)

	ctx := c.Request.Context()
	if h.isPostImmediately != nil && h.isPostImmediately(req) {
		err = h.service.PostAndSave(ctx, doc)
	} else {
		err = h.service.Create(ctx, doc)
	}
	if err != nil {
		h.Error(c, err)
		return
	}

	h.respond(c, http.StatusCreated, doc)
}

// Update handles PUT /{entity}/:id.
func (h *BaseDocumentHandler[T, CreateDTO, UpdateDTO]) Update(c *gin.Context) {
	docID, ok := h.pathID(c)
	if !ok {
		return
	}

	var req UpdateDTO
	if !h.BindJSON(c, &req) {
		return
	}

	doc, err := h.service.GetByID(c.Request.Context(), docID)
	if err != nil {
		h.Error(c, err)
		return
	}

	doc = h.mapUpdateDTO(req, doc)
	h.stampUpdated(c, doc)

	if err := h.service.Update(c.Request.Context(), doc); err != nil {
		h.Error(c, err)
		return
	}

	h.respond(c, http.StatusOK, doc)
}

// Delete handles DELETE /{entity}/:id.
func (h *BaseDocumentHandler[T, CreateDTO, UpdateDTO]) Delete(c *gin.Context) {
	docID, ok := h.pathID(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), docID); err != nil {
		h.Error(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// Post handles POST /{entity}/:id/post and returns the posted
// document.
func (h *BaseDocumentHandler[T, CreateDTO, UpdateDTO]) Post(c *gin.Context) {
	h.transition(c, h.service.Post)
}

// Unpost handles POST /{entity}/:id/unpost.
func (h *BaseDocumentHandler[T, CreateDTO, UpdateDTO]) Unpost(c *gin.Context) {
	h.transition(c, h.service.Unpost)
}

func (h *BaseDocumentHandler[T, CreateDTO, UpdateDTO]) transition(c *gin.Context, op func(ctx context.Context, id id.ID) error) {
	docID, ok := h.pathID(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	if err := op(ctx, docID); err != nil {
		h.Error(c, err)
		return
	}

	doc, err := h.service.GetByID(ctx, docID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.respond(c, http.StatusOK, doc)
}

// RegisterRoutes mounts the standard document endpoints.
func (h *BaseDocumentHandler[T, CreateDTO, UpdateDTO]) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.Create)
	rg.GET("/:id", h.Get)
	rg.PUT("/:id", h.Update)
	rg.DELETE("/:id", h.Delete)
	rg.POST("/:id/post", h.Post)
	rg.POST("/:id/unpost", h.Unpost)
}
