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

type WishlistHandler struct {
	wishlistService service.WishlistService
}

func NewWishlistHandler(wishlistService service.WishlistService) *WishlistHandler {
	return &WishlistHandler{wishlistService: wishlistService}
}

func (h *WishlistHandler) RegisterRoutes(router *gin.RouterGroup) {
	wishlist := router.Group("/api/wishlist")
	wishlist.Use(middleware.RequireRole(model.RoleCustomer, model.RoleMerchant, model.RoleSuperadmin))
	{
		wishlist.GET("", h.ListItems)
		wishlist.POST("", h.AddItem)
		wishlist.DELETE("/:itemID", h.RemoveItem)
	}
}

// ListItems returns the caller's saved products
// @Summary      List wishlist
// @Tags         wishlist
// @Security     BearerAuth
// @Produce      json
// @Param        shop_id  query     int  false  "Filter by shop"
// @Param        page     query     int  false  "Page number (default 1)"
// @Param        limit    query     int  false  "Items per page (default 20)"
// @Success      200  {object}  response.Response{data=[]service.WishlistItemResponse}
// @Failure      500  {object}  response.Response
// @Router       /api/wishlist [get]
func (h *WishlistHandler) ListItems(c *gin.Context) {
	var shopID *int64
	if raw := c.Query("shop_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid shop_id"))
			return
		}
		shopID = &id
	}

	p := pagination.Parse(c)
	items, total, err := h.wishlistService.ListItems(c.Request.Context(), c.GetString("userID"), shopID, p.Page, p.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Paginated(http.StatusOK, items, total, p.Page, p.Limit))
}

// AddItem saves a product to the caller's wishlist
// @Summary      Add wishlist item
// @Tags         wishlist
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.AddWishlistItemRequest  true  "Add Wishlist Item Payload"
// @Success      201  {object}  response.Response{data=service.WishlistItemResponse}
// @Failure      400  {object}  response.Response
// @Router       /api/wishlist [post]
func (h *WishlistHandler) AddItem(c *gin.Context) {
	var req service.AddWishlistItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	item, err := h.wishlistService.AddItem(c.Request.Context(), c.GetString("userID"), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, item))
}

// RemoveItem deletes a wishlist entry
// @Summary      Remove wishlist item
// @Tags         wishlist
// @Security     BearerAuth
// @Produce      json
// @Param        itemID  path      string  true  "Wishlist Item ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/wishlist/{itemID} [delete]
func (h *WishlistHandler) RemoveItem(c *gin.Context) {
	if err := h.wishlistService.RemoveItem(c.Request.Context(), c.GetString("userID"), c.Param("itemID")); err != nil {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"deleted": c.Param("itemID")}))
}
