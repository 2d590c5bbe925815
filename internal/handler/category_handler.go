package handler

import (
	"net/http"
	"strconv"

	"marketplace/internal/middleware"
	"marketplace/internal/service"
	"marketplace/pkg/response"

	"github.com/gin-gonic/gin"
)

type CategoryHandler struct {
	categoryService service.CategoryService
}

func NewCategoryHandler(categoryService service.CategoryService) *CategoryHandler {
	return &CategoryHandler{categoryService: categoryService}
}

func (h *CategoryHandler) RegisterRoutes(router *gin.RouterGroup) {
	// Category trees are public storefront data
	public := router.Group("/api/shops/:shopID/categories")
	{
		public.GET("", h.GetCategoryTree)
		public.GET("/:id", h.GetCategory)
	}

	manage := router.Group("/api/shops/:shopID/categories")
	manage.Use(middleware.RequireShopOwner())
	{
		manage.POST("", h.CreateCategory)
		manage.PUT("/:id", h.UpdateCategory)
		manage.DELETE("/:id", h.DeleteCategory)
	}
}

func shopIDParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("shopID"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid shop id"))
		return 0, false
	}
	return id, true
}

func idParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid id"))
		return 0, false
	}
	return id, true
}

// GetCategoryTree returns the shop's categories as nested trees
// @Summary      Get category tree
// @Tags         categories
// @Produce      json
// @Param        shopID  path      int  true  "Shop ID"
// @Success      200  {object}  response.Response{data=[]service.CategoryResponse}
// @Failure      500  {object}  response.Response
// @Router       /api/shops/{shopID}/categories [get]
func (h *CategoryHandler) GetCategoryTree(c *gin.Context) {
	shopID, ok := shopIDParam(c)
	if !ok {
		return
	}

	tree, err := h.categoryService.GetCategoryTree(c.Request.Context(), shopID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, tree))
}

// GetCategory returns one category
// @Summary      Get category
// @Tags         categories
// @Produce      json
// @Param        shopID  path      int  true  "Shop ID"
// @Param        id      path      int  true  "Category ID"
// @Success      200  {object}  response.Response{data=service.CategoryResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/shops/{shopID}/categories/{id} [get]
func (h *CategoryHandler) GetCategory(c *gin.Context) {
	shopID, ok := shopIDParam(c)
	if !ok {
		return
	}
	id, ok := idParam(c)
	if !ok {
		return
	}

	category, err := h.categoryService.GetCategory(c.Request.Context(), shopID, id)
	if err != nil {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, category))
}

// CreateCategory adds a category to the shop
// @Summary      Create category
// @Tags         categories
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        shopID   path      int                            true  "Shop ID"
// @Param        payload  body      service.CreateCategoryRequest  true  "Create Category Payload"
// @Success      201  {object}  response.Response{data=service.CategoryResponse}
// @Failure      400  {object}  response.Response
// @Router       /api/shops/{shopID}/categories [post]
func (h *CategoryHandler) CreateCategory(c *gin.Context) {
	shopID, ok := shopIDParam(c)
	if !ok {
		return
	}

	var req service.CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	category, err := h.categoryService.CreateCategory(c.Request.Context(), c.GetString("userID"), shopID, req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, category))
}

// UpdateCategory modifies a category
// @Summary      Update category
// @Tags         categories
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        shopID   path      int                            true  "Shop ID"
// @Param        id       path      int                            true  "Category ID"
// @Param        payload  body      service.UpdateCategoryRequest  true  "Update Category Payload"
// @Success      200  {object}  response.Response{data=service.CategoryResponse}
// @Failure      400  {object}  response.Response
// @Router       /api/shops/{shopID}/categories/{id} [put]
func (h *CategoryHandler) UpdateCategory(c *gin.Context) {
	shopID, ok := shopIDParam(c)
	if !ok {
		return
	}
	id, ok := idParam(c)
	if !ok {
		return
	}

	var req service.UpdateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	category, err := h.categoryService.UpdateCategory(c.Request.Context(), c.GetString("userID"), shopID, id, req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, category))
}

// DeleteCategory removes an empty category
// @Summary      Delete category
// @Tags         categories
// @Security     BearerAuth
// @Produce      json
// @Param        shopID  path      int  true  "Shop ID"
// @Param        id      path      int  true  "Category ID"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /api/shops/{shopID}/categories/{id} [delete]
func (h *CategoryHandler) DeleteCategory(c *gin.Context) {
	shopID, ok := shopIDParam(c)
	if !ok {
		return
	}
	id, ok := idParam(c)
	if !ok {
		return
	}

	if err := h.categoryService.DeleteCategory(c.Request.Context(), c.GetString("userID"), shopID, id); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"deleted": id}))
}
