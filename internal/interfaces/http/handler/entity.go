package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pesobook/backend/internal/application/registry"
)

// EntityHandler handles bookkeeping entity API endpoints
type EntityHandler struct {
	BaseHandler
	entities *registry.EntityService
}

// NewEntityHandler creates a new EntityHandler
func NewEntityHandler(entities *registry.EntityService) *EntityHandler {
	return &EntityHandler{entities: entities}
}

// EntityAPIRequest carries an entity name
type EntityAPIRequest struct {
	Name string `json:"name" binding:"required,min=1,max=100"`
}

// Create creates a bookkeeping entity for the caller
func (h *EntityHandler) Create(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Missing user scope")
		return
	}

	var req EntityAPIRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	entity, err := h.entities.CreateEntity(c.Request.Context(), userID, req.Name)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, entity)
}

// List returns the caller's entities
func (h *EntityHandler) List(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Missing user scope")
		return
	}
	includeArchived := c.Query("include_archived") == "true"

	entities, err := h.entities.ListEntities(c.Request.Context(), userID, includeArchived)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, entities)
}

// Rename renames an entity
func (h *EntityHandler) Rename(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Missing user scope")
		return
	}

	entityID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid entity ID format")
		return
	}

	var req EntityAPIRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	entity, err := h.entities.RenameEntity(c.Request.Context(), userID, entityID, req.Name)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, entity)
}

// Archive archives an entity. The caller's last active entity cannot be
// archived.
func (h *EntityHandler) Archive(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Missing user scope")
		return
	}

	entityID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid entity ID format")
		return
	}

	if err := h.entities.ArchiveEntity(c.Request.Context(), userID, entityID); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.NoContent(c)
}

// Unarchive restores an archived entity
func (h *EntityHandler) Unarchive(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Missing user scope")
		return
	}

	entityID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid entity ID format")
		return
	}

	if err := h.entities.UnarchiveEntity(c.Request.Context(), userID, entityID); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.NoContent(c)
}

// RegisterRoutes registers entity routes
func (h *EntityHandler) RegisterRoutes(rg *gin.RouterGroup) {
	entities := rg.Group("/entities")
	{
		entities.POST("", h.Create)
		entities.GET("", h.List)
		entities.PUT("/:id/name", h.Rename)
		entities.POST("/:id/archive", h.Archive)
		entities.POST("/:id/unarchive", h.Unarchive)
	}
}
