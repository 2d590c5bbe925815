package handler

import (
	"net/http"

	"marketplace/internal/middleware"
	"marketplace/internal/service"
	"marketplace/pkg/response"

	"github.com/gin-gonic/gin"
)

type AttributeHandler struct {
	attributeService service.AttributeService
}

func NewAttributeHandler(attributeService service.AttributeService) *AttributeHandler {
	return &AttributeHandler{attributeService: attributeService}
}

func (h *AttributeHandler) RegisterRoutes(router *gin.RouterGroup) {
	public := router.Group("/api/shops/:shopID/attributes")
	{
		public.GET("", h.ListAttributes)
	}

	manage := router.Group("/api/shops/:shopID/attributes")
	manage.Use(middleware.RequireShopOwner())
	{
		manage.POST("", h.CreateAttribute)
		manage.PUT("/:id", h.UpdateAttribute)
		manage.DELETE("/:id", h.DeleteAttribute)
	}
}

// ListAttributes returns the attribute definitions of a shop
// @Summary      List attributes
// @Tags         attributes
// @Produce      json
// @Param        shopID  path      int  true  "Shop ID"
// @Success      200  {object}  response.Response{data=[]service.AttributeResponse}
// @Failure      500  {object}  response.Response
// @Router       /api/shops/{shopID}/attributes [get]
func (h *AttributeHandler) ListAttributes(c *gin.Context) {
	shopID, ok := shopIDParam(c)
	if !ok {
		return
	}

	attrs, err := h.attributeService.ListAttributes(c.Request.Context(), shopID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, attrs))
}

// CreateAttribute adds an attribute definition
// @Summary      Create attribute
// @Tags         attributes
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        shopID   path      int                             true  "Shop ID"
// @Param        payload  body      service.CreateAttributeRequest  true  "Create Attribute Payload"
// @Success      201  {object}  response.Response{data=service.AttributeResponse}
// @Failure      400  {object}  response.Response
// @Router       /api/shops/{shopID}/attributes [post]
func (h *AttributeHandler) CreateAttribute(c *gin.Context) {
	shopID, ok := shopIDParam(c)
	if !ok {
		return
	}

	var req service.CreateAttributeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	attr, err := h.attributeService.CreateAttribute(c.Request.Context(), shopID, req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, attr))
}

// UpdateAttribute modifies an attribute definition
// @Summary      Update attribute
// @Tags         attributes
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        shopID   path      int                             true  "Shop ID"
// @Param        id       path      int                             true  "Attribute ID"
// @Param        payload  body      service.UpdateAttributeRequest  true  "Update Attribute Payload"
// @Success      200  {object}  response.Response{data=service.AttributeResponse}
// @Failure      400  {object}  response.Response
// @Router       /api/shops/{shopID}/attributes/{id} [put]
func (h *AttributeHandler) UpdateAttribute(c *gin.Context) {
	shopID, ok := shopIDParam(c)
	if !ok {
		return
	}
	id, ok := idParam(c)
	if !ok {
		return
	}

	var req service.UpdateAttributeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	attr, err := h.attributeService.UpdateAttribute(c.Request.Context(), shopID, id, req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, attr))
}

// DeleteAttribute removes an attribute definition
// @Summary      Delete attribute
// @Tags         attributes
// @Security     BearerAuth
// @Produce      json
// @Param        shopID  path      int  true  "Shop ID"
// @Param        id      path      int  true  "Attribute ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/shops/{shopID}/attributes/{id} [delete]
func (h *AttributeHandler) DeleteAttribute(c *gin.Context) {
	shopID, ok := shopIDParam(c)
	if !ok {
		return
	}
	id, ok := idParam(c)
	if !ok {
		return
	}

	if err := h.attributeService.DeleteAttribute(c.Request.Context(), shopID, id); err != nil {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"deleted": id}))
}
