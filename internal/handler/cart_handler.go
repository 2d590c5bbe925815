package handler

import (
	"net/http"

	"marketplace/internal/middleware"
	"marketplace/internal/model"
	"marketplace/internal/service"
	"marketplace/pkg/response"

	"github.com/gin-gonic/gin"
)

type CartHandler struct {
	cartService service.CartService
}

func NewCartHandler(cartService service.CartService) *CartHandler {
	return &CartHandler{cartService: cartService}
}

func (h *CartHandler) RegisterRoutes(router *gin.RouterGroup) {
	cart := router.Group("/api/shops/:shopID/cart")
	cart.Use(middleware.RequireRole(model.RoleCustomer, model.RoleMerchant, model.RoleSuperadmin))
	{
		cart.GET("", h.GetCart)
		cart.POST("/items", h.AddItem)
		cart.PUT("/items/:itemID", h.UpdateItem)
		cart.DELETE("/items/:itemID", h.RemoveItem)
		cart.DELETE("", h.ClearCart)
	}
}

// GetCart returns the caller's cart for a shop with GST totals
// @Summary      Get cart
// @Tags         cart
// @Security     BearerAuth
// @Produce      json
// @Param        shopID  path      int  true  "Shop ID"
// @Success      200  {object}  response.Response{data=service.CartResponse}
// @Failure      500  {object}  response.Response
// @Router       /api/shops/{shopID}/cart [get]
func (h *CartHandler) GetCart(c *gin.Context) {
	shopID, ok := shopIDParam(c)
	if !ok {
		return
	}

	cart, err := h.cartService.GetCart(c.Request.Context(), c.GetString("userID"), shopID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, cart))
}

// AddItem puts a product in the cart
// @Summary      Add cart item
// @Tags         cart
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        shopID   path      int                         true  "Shop ID"
// @Param        payload  body      service.AddCartItemRequest  true  "Add Item Payload"
// @Success      200  {object}  response.Response{data=service.CartResponse}
// @Failure      400  {object}  response.Response
// @Router       /api/shops/{shopID}/cart/items [post]
func (h *CartHandler) AddItem(c *gin.Context) {
	shopID, ok := shopIDParam(c)
	if !ok {
		return
	}

	var req service.AddCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	cart, err := h.cartService.AddItem(c.Request.Context(), c.GetString("userID"), shopID, req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, cart))
}

// UpdateItem changes a cart line's quantity (zero removes it)
// @Summary      Update cart item
// @Tags         cart
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        shopID   path      int                            true  "Shop ID"
// @Param        itemID   path      string                         true  "Cart Item ID"
// @Param        payload  body      service.UpdateCartItemRequest  true  "Update Item Payload"
// @Success      200  {object}  response.Response{data=service.CartResponse}
// @Failure      400  {object}  response.Response
// @Router       /api/shops/{shopID}/cart/items/{itemID} [put]
func (h *CartHandler) UpdateItem(c *gin.Context) {
	shopID, ok := shopIDParam(c)
	if !ok {
		return
	}

	var req service.UpdateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	cart, err := h.cartService.UpdateItem(c.Request.Context(), c.GetString("userID"), shopID, c.Param("itemID"), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, cart))
}

// RemoveItem deletes a cart line
// @Summary      Remove cart item
// @Tags         cart
// @Security     BearerAuth
// @Produce      json
// @Param        shopID  path      int     true  "Shop ID"
// @Param        itemID  path      string  true  "Cart Item ID"
// @Success      200  {object}  response.Response{data=service.CartResponse}
// @Failure      400  {object}  response.Response
// @Router       /api/shops/{shopID}/cart/items/{itemID} [delete]
func (h *CartHandler) RemoveItem(c *gin.Context) {
	shopID, ok := shopIDParam(c)
	if !ok {
		return
	}

	cart, err := h.cartService.RemoveItem(c.Request.Context(), c.GetString("userID"), shopID, c.Param("itemID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, cart))
}

// ClearCart empties the caller's cart for a shop
// @Summary      Clear cart
// @Tags         cart
// @Security     BearerAuth
// @Produce      json
// @Param        shopID  path      int  true  "Shop ID"
// @Success      200  {object}  response.Response
// @Failure      500  {object}  response.Response
// @Router       /api/shops/{shopID}/cart [delete]
func (h *CartHandler) ClearCart(c *gin.Context) {
	shopID, ok := shopIDParam(c)
	if !ok {
		return
	}

	if err := h.cartService.ClearCart(c.Request.Context(), c.GetString("userID"), shopID); err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"cleared": true}))
}
