package handler

import (
	"net/http"
	"strconv"

	"marketplace/internal/middleware"
	"marketplace/internal/service"
	"marketplace/pkg/pagination"
	"marketplace/pkg/response"

	"github.com/gin-gonic/gin"
)

type ProductHandler struct {
	productService service.ProductService
}

func NewProductHandler(productService service.ProductService) *ProductHandler {
	return &ProductHandler{productService: productService}
}

func (h *ProductHandler) RegisterRoutes(router *gin.RouterGroup) {
	// Storefront browsing is public; only published products are listed
	public := router.Group("/api/shops/:shopID/products")
	{
		public.GET("", h.ListProducts)
		public.GET("/:id", h.GetProduct)
		public.GET("/:id/tax-quote", h.GetTaxQuote)
	}

	manage := router.Group("/api/shops/:shopID/products")
	manage.Use(middleware.RequireShopOwner())
	{
		manage.POST("", h.CreateProduct)
		manage.PUT("/:id", h.UpdateProduct)
		manage.DELETE("/:id", h.DeleteProduct)
		manage.POST("/:id/stock", h.AdjustStock)
	}
}

// ListProducts returns paginated products of a shop
// @Summary      List products
// @Tags         products
// @Produce      json
// @Param        shopID       path      int     true   "Shop ID"
// @Param        category_id  query     int     false  "Filter by category"
// @Param        search       query     string  false  "Search by name or SKU"
// @Param        all          query     bool    false  "Include unpublished (owner only views)"
// @Param        page         query     int     false  "Page number (default 1)"
// @Param        limit        query     int     false  "Items per page (default 20)"
// @Success      200  {object}  response.Response{data=[]service.ProductResponse}
// @Failure      500  {object}  response.Response
// @Router       /api/shops/{shopID}/products [get]
func (h *ProductHandler) ListProducts(c *gin.Context) {
	shopID, ok := shopIDParam(c)
	if !ok {
		return
	}

	var categoryID *int64
	if raw := c.Query("category_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid category_id"))
			return
		}
		categoryID = &id
	}

	includeAll, _ := strconv.ParseBool(c.DefaultQuery("all", "false"))

	p := pagination.Parse(c)
	products, total, err := h.productService.ListProducts(c.Request.Context(), shopID, categoryID, !includeAll, c.Query("search"), p.Page, p.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Paginated(http.StatusOK, products, total, p.Page, p.Limit))
}

// GetProduct returns one product
// @Summary      Get product
// @Tags         products
// @Produce      json
// @Param        shopID  path      int  true  "Shop ID"
// @Param        id      path      int  true  "Product ID"
// @Success      200  {object}  response.Response{data=service.ProductResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/shops/{shopID}/products/{id} [get]
func (h *ProductHandler) GetProduct(c *gin.Context) {
	shopID, ok := shopIDParam(c)
	if !ok {
		return
	}
	id, ok := idParam(c)
	if !ok {
		return
	}

	product, err := h.productService.GetProduct(c.Request.Context(), shopID, id)
	if err != nil {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, product))
}

// GetTaxQuote returns the GST breakdown of a product's current price
// @Summary      Get tax quote
// @Description  Resolves the applicable GST rule for the product's current listed price and returns the base price, GST amount and rate
// @Tags         products
// @Produce      json
// @Param        shopID  path      int  true  "Shop ID"
// @Param        id      path      int  true  "Product ID"
// @Success      200  {object}  response.Response{data=service.TaxQuoteResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/shops/{shopID}/products/{id}/tax-quote [get]
func (h *ProductHandler) GetTaxQuote(c *gin.Context) {
	shopID, ok := shopIDParam(c)
	if !ok {
		return
	}
	id, ok := idParam(c)
	if !ok {
		return
	}

	quote, err := h.productService.GetTaxQuote(c.Request.Context(), shopID, id)
	if err != nil {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, quote))
}

// CreateProduct adds a product to the shop catalog
// @Summary      Create product
// @Tags         products
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        shopID   path      int                           true  "Shop ID"
// @Param        payload  body      service.CreateProductRequest  true  "Create Product Payload"
// @Success      201  {object}  response.Response{data=service.ProductResponse}
// @Failure      400  {object}  response.Response
// @Router       /api/shops/{shopID}/products [post]
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	shopID, ok := shopIDParam(c)
	if !ok {
		return
	}

	var req service.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	product, err := h.productService.CreateProduct(c.Request.Context(), c.GetString("userID"), shopID, req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, product))
}

// UpdateProduct modifies a product
// @Summary      Update product
// @Tags         products
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        shopID   path      int                           true  "Shop ID"
// @Param        id       path      int                           true  "Product ID"
// @Param        payload  body      service.UpdateProductRequest  true  "Update Product Payload"
// @Success      200  {object}  response.Response{data=service.ProductResponse}
// @Failure      400  {object}  response.Response
// @Router       /api/shops/{shopID}/products/{id} [put]
func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	shopID, ok := shopIDParam(c)
	if !ok {
		return
	}
	id, ok := idParam(c)
	if !ok {
		return
	}

	var req service.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	product, err := h.productService.UpdateProduct(c.Request.Context(), c.GetString("userID"), shopID, id, req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, product))
}

// DeleteProduct soft-deletes a product
// @Summary      Delete product
// @Tags         products
// @Security     BearerAuth
// @Produce      json
// @Param        shopID  path      int  true  "Shop ID"
// @Param        id      path      int  true  "Product ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/shops/{shopID}/products/{id} [delete]
func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	shopID, ok := shopIDParam(c)
	if !ok {
		return
	}
	id, ok := idParam(c)
	if !ok {
		return
	}

	if err := h.productService.DeleteProduct(c.Request.Context(), c.GetString("userID"), shopID, id); err != nil {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"deleted": id}))
}

// AdjustStock applies a relative stock change
// @Summary      Adjust stock
// @Tags         products
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        shopID   path      int                         true  "Shop ID"
// @Param        id       path      int                         true  "Product ID"
// @Param        payload  body      service.AdjustStockRequest  true  "Stock Adjustment Payload"
// @Success      200  {object}  response.Response{data=service.ProductResponse}
// @Failure      400  {object}  response.Response
// @Router       /api/shops/{shopID}/products/{id}/stock [post]
func (h *ProductHandler) AdjustStock(c *gin.Context) {
	shopID, ok := shopIDParam(c)
	if !ok {
		return
	}
	id, ok := idParam(c)
	if !ok {
		return
	}

	var req service.AdjustStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	product, err := h.productService.AdjustStock(c.Request.Context(), c.GetString("userID"), shopID, id, req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, product))
}
