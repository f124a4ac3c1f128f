package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"valora/internal/core/apperror"
	appctx "valora/internal/core/context"
	"valora/internal/infrastructure/http/v1/dto"
	"valora/internal/infrastructure/storage/postgres"
)

// BaseHandler carries the request plumbing every handler shares:
// binding, error propagation and idempotent response writing.
type BaseHandler struct{}

func NewBaseHandler() *BaseHandler {
	return &BaseHandler{}
}

func (h *BaseHandler) bind(c *gin.Context, message string, err error) bool {
	if err == nil {
		return true
	}
	h.Error(c, apperror.NewValidation(message).WithDetail("error", err.Error()))
	return false
}

// BindJSON binds and validates the JSON request body.
func (h *BaseHandler) BindJSON(c *gin.Context, obj any) bool {
	return h.bind(c, "invalid request body", c.ShouldBindJSON(obj))
}

// BindQuery binds and validates query parameters.
func (h *BaseHandler) BindQuery(c *gin.Context, obj any) bool {
	return h.bind(c, "invalid query parameters", c.ShouldBindQuery(obj))
}

// Error records the error and aborts. The JSON body is produced by
// middleware.ErrorHandler so every endpoint shares one error shape.
func (h *BaseHandler) Error(c *gin.Context, err error) {
	h.HandleError(c, err)
}

func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

// ParseIntQuery reads an integer query parameter, falling back to
// defaultVal on absence or garbage.
func (h *BaseHandler) ParseIntQuery(c *gin.Context, key string, defaultVal int) int {
	if parsed, err := strconv.Atoi(c.Query(key)); err == nil {
		return parsed
	}
	return defaultVal
}

// GetTenantID extracts the tenant ID from the request context.
func (h *BaseHandler) GetTenantID(c *gin.Context) string {
	return appctx.GetTenantID(c.Request.Context())
}

// GetUserID extracts the user ID from the request context.
func (h *BaseHandler) GetUserID(c *gin.Context) string {
	if userCtx := appctx.GetUserContext(c.Request.Context()); userCtx != nil {
		return userCtx.UserID
	}
	return ""
}

// CompleteIdempotency records the response under the request's
// idempotency key so a retry replays the same status, content type and
// body.
func (h *BaseHandler) CompleteIdempotency(c *gin.Context, statusCode int, contentType string, response any) {
	key, exists := c.Get("idempotency_key")
	if !exists {
		return
	}
	store, ok := c.Get("idempotency_store")
	if !ok {
		return
	}
	_ = store.(*postgres.IdempotencyStore).CompleteKey(
		c.Request.Context(), key.(string), statusCode, contentType, response)
}

// Created sends 201 with the new entity's ID.
func (h *BaseHandler) Created(c *gin.Context, id string) {
	response := dto.IDResponse{ID: id}
	h.CompleteIdempotency(c, http.StatusCreated, "application/json", response)
	c.JSON(http.StatusCreated, response)
}

// OK sends 200 with data.
func (h *BaseHandler) OK(c *gin.Context, data any) {
	h.CompleteIdempotency(c, http.StatusOK, "application/json", data)
	c.JSON(http.StatusOK, data)
}

// NoContent sends 204. A replayed 204 stays a 204 with an empty body.
func (h *BaseHandler) NoContent(c *gin.Context) {
	h.CompleteIdempotency(c, http.StatusNoContent, "", nil)
	c.Status(http.StatusNoContent)
}

// Success sends 200 with a plain success message.
func (h *BaseHandler) Success(c *gin.Context, message string) {
	response := dto.SuccessResponse{Success: true, Message: message}
	h.CompleteIdempotency(c, http.StatusOK, "application/json", response)
	c.JSON(http.StatusOK, response)
}
