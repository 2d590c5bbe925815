package handler

import (
	"net/http"
	"strconv"

	"marketplace/internal/middleware"
	"marketplace/internal/model"
	"marketplace/internal/service"
	"marketplace/pkg/pagination"
	"marketplace/pkg/response"

	"github.com/gin-gonic/gin"
)

type ShopHandler struct {
	shopService service.ShopService
}

func NewShopHandler(shopService service.ShopService) *ShopHandler {
	return &ShopHandler{shopService: shopService}
}

func (h *ShopHandler) RegisterRoutes(router *gin.RouterGroup) {
	// Browsing shops is public
	public := router.Group("/api/shops")
	{
		public.GET("", h.ListShops)
		public.GET("/:shopID", h.GetShop)
		public.GET("/slug/:slug", h.GetShopBySlug)
	}

	admin := router.Group("/api/shops")
	{
		admin.POST("", middleware.RequireRole(model.RoleSuperadmin, model.RoleMerchant), h.CreateShop)
		admin.PUT("/:shopID", middleware.RequireShopOwner(), h.UpdateShop)
		admin.DELETE("/:shopID", middleware.RequireRole(model.RoleSuperadmin), h.DeleteShop)
	}
}

// ListShops returns a paginated shop directory
// @Summary      List shops
// @Tags         shops
// @Produce      json
// @Param        active  query     bool    false  "Only active shops"
// @Param        search  query     string  false  "Search by name"
// @Param        page    query     int     false  "Page number (default 1)"
// @Param        limit   query     int     false  "Items per page (default 20)"
// @Success      200  {object}  response.Response{data=[]service.ShopResponse}
// @Failure      500  {object}  response.Response
// @Router       /api/shops [get]
func (h *ShopHandler) ListShops(c *gin.Context) {
	activeOnly, _ := strconv.ParseBool(c.DefaultQuery("active", "true"))
	p := pagination.Parse(c)

	shops, total, err := h.shopService.ListShops(c.Request.Context(), activeOnly, c.Query("search"), p.Page, p.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Paginated(http.StatusOK, shops, total, p.Page, p.Limit))
}

// GetShop returns one shop by id
// @Summary      Get shop
// @Tags         shops
// @Produce      json
// @Param        shopID  path      int  true  "Shop ID"
// @Success      200  {object}  response.Response{data=service.ShopResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/shops/{shopID} [get]
func (h *ShopHandler) GetShop(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("shopID"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid shop id"))
		return
	}

	shop, err := h.shopService.GetShop(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, shop))
}

// GetShopBySlug returns one shop by slug
// @Summary      Get shop by slug
// @Tags         shops
// @Produce      json
// @Param        slug  path      string  true  "Shop slug"
// @Success      200  {object}  response.Response{data=service.ShopResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/shops/slug/{slug} [get]
func (h *ShopHandler) GetShopBySlug(c *gin.Context) {
	shop, err := h.shopService.GetShopBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, shop))
}

// CreateShop registers a new shop
// @Summary      Create shop
// @Tags         shops
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateShopRequest  true  "Create Shop Payload"
// @Success      201  {object}  response.Response{data=service.ShopResponse}
// @Failure      400  {object}  response.Response
// @Router       /api/shops [post]
func (h *ShopHandler) CreateShop(c *gin.Context) {
	var req service.CreateShopRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	shop, err := h.shopService.CreateShop(c.Request.Context(), c.GetString("userID"), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, shop))
}

// UpdateShop modifies shop details
// @Summary      Update shop
// @Tags         shops
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        shopID   path      int                        true  "Shop ID"
// @Param        payload  body      service.UpdateShopRequest  true  "Update Shop Payload"
// @Success      200  {object}  response.Response{data=service.ShopResponse}
// @Failure      400  {object}  response.Response
// @Router       /api/shops/{shopID} [put]
func (h *ShopHandler) UpdateShop(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("shopID"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid shop id"))
		return
	}

	var req service.UpdateShopRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	shop, err := h.shopService.UpdateShop(c.Request.Context(), c.GetString("userID"), id, req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, shop))
}

// DeleteShop soft-deletes a shop
// @Summary      Delete shop
// @Tags         shops
// @Security     BearerAuth
// @Produce      json
// @Param        shopID  path      int  true  "Shop ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/shops/{shopID} [delete]
func (h *ShopHandler) DeleteShop(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("shopID"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid shop id"))
		return
	}

	if err := h.shopService.DeleteShop(c.Request.Context(), c.GetString("userID"), id); err != nil {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"deleted": id}))
}
