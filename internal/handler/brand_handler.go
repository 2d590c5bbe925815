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

type BrandHandler struct {
	brandService service.BrandService
}

func NewBrandHandler(brandService service.BrandService) *BrandHandler {
	return &BrandHandler{brandService: brandService}
}

func (h *BrandHandler) RegisterRoutes(router *gin.RouterGroup) {
	public := router.Group("/api/shops/:shopID/brands")
	{
		public.GET("", h.ListBrands)
	}

	manage := router.Group("/api/shops/:shopID/brands")
	manage.Use(middleware.RequireShopOwner())
	{
		manage.PUT("/:id", h.UpdateBrand)
		manage.DELETE("/:id", h.DeleteBrand)
	}

	// Merchants propose brands; superadmins review
	requests := router.Group("/api/shops/:shopID/brand-requests")
	requests.Use(middleware.RequireShopOwner())
	{
		requests.POST("", h.SubmitRequest)
	}

	review := router.Group("/api/brand-requests")
	review.Use(middleware.RequireRole(model.RoleSuperadmin))
	{
		review.GET("", h.ListRequests)
		review.POST("/:id/approve", h.ApproveRequest)
		review.POST("/:id/reject", h.RejectRequest)
	}
}

// ListBrands returns the brands of a shop
// @Summary      List brands
// @Tags         brands
// @Produce      json
// @Param        shopID       path      int  true   "Shop ID"
// @Param        category_id  query     int  false  "Filter by category"
// @Success      200  {object}  response.Response{data=[]service.BrandResponse}
// @Failure      500  {object}  response.Response
// @Router       /api/shops/{shopID}/brands [get]
func (h *BrandHandler) ListBrands(c *gin.Context) {
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

	brands, err := h.brandService.ListBrands(c.Request.Context(), shopID, categoryID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, brands))
}

// UpdateBrand modifies a brand
// @Summary      Update brand
// @Tags         brands
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        shopID   path      int                         true  "Shop ID"
// @Param        id       path      int                         true  "Brand ID"
// @Param        payload  body      service.UpdateBrandRequest  true  "Update Brand Payload"
// @Success      200  {object}  response.Response{data=service.BrandResponse}
// @Failure      400  {object}  response.Response
// @Router       /api/shops/{shopID}/brands/{id} [put]
func (h *BrandHandler) UpdateBrand(c *gin.Context) {
	shopID, ok := shopIDParam(c)
	if !ok {
		return
	}
	id, ok := idParam(c)
	if !ok {
		return
	}

	var req service.UpdateBrandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	brand, err := h.brandService.UpdateBrand(c.Request.Context(), c.GetString("userID"), shopID, id, req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, brand))
}

// DeleteBrand removes a brand
// @Summary      Delete brand
// @Tags         brands
// @Security     BearerAuth
// @Produce      json
// @Param        shopID  path      int  true  "Shop ID"
// @Param        id      path      int  true  "Brand ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/shops/{shopID}/brands/{id} [delete]
func (h *BrandHandler) DeleteBrand(c *gin.Context) {
	shopID, ok := shopIDParam(c)
	if !ok {
		return
	}
	id, ok := idParam(c)
	if !ok {
		return
	}

	if err := h.brandService.DeleteBrand(c.Request.Context(), c.GetString("userID"), shopID, id); err != nil {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"deleted": id}))
}

// SubmitRequest files a brand request for review
// @Summary      Submit brand request
// @Tags         brands
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        shopID   path      int                                true  "Shop ID"
// @Param        payload  body      service.SubmitBrandRequestRequest  true  "Brand Request Payload"
// @Success      201  {object}  response.Response{data=service.BrandRequestResponse}
// @Failure      400  {object}  response.Response
// @Router       /api/shops/{shopID}/brand-requests [post]
func (h *BrandHandler) SubmitRequest(c *gin.Context) {
	shopID, ok := shopIDParam(c)
	if !ok {
		return
	}

	var req service.SubmitBrandRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	request, err := h.brandService.SubmitRequest(c.Request.Context(), c.GetString("userID"), shopID, req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, request))
}

// ListRequests returns brand requests filtered by status
// @Summary      List brand requests
// @Tags         brands
// @Security     BearerAuth
// @Produce      json
// @Param        status  query     string  false  "PENDING, APPROVED or REJECTED"
// @Param        page    query     int     false  "Page number (default 1)"
// @Param        limit   query     int     false  "Items per page (default 20)"
// @Success      200  {object}  response.Response{data=[]service.BrandRequestResponse}
// @Failure      500  {object}  response.Response
// @Router       /api/brand-requests [get]
func (h *BrandHandler) ListRequests(c *gin.Context) {
	p := pagination.Parse(c)
	requests, total, err := h.brandService.ListRequests(c.Request.Context(), c.Query("status"), p.Page, p.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Paginated(http.StatusOK, requests, total, p.Page, p.Limit))
}

// ApproveRequest approves a pending brand request
// @Summary      Approve brand request
// @Tags         brands
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                             true  "Request ID"
// @Param        payload  body      service.ReviewBrandRequestRequest  true  "Review Payload"
// @Success      200  {object}  response.Response{data=service.BrandRequestResponse}
// @Failure      400  {object}  response.Response
// @Router       /api/brand-requests/{id}/approve [post]
func (h *BrandHandler) ApproveRequest(c *gin.Context) {
	var req service.ReviewBrandRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	request, err := h.brandService.ApproveRequest(c.Request.Context(), c.GetString("userID"), c.Param("id"), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, request))
}

// RejectRequest rejects a pending brand request
// @Summary      Reject brand request
// @Tags         brands
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                             true  "Request ID"
// @Param        payload  body      service.ReviewBrandRequestRequest  true  "Review Payload"
// @Success      200  {object}  response.Response{data=service.BrandRequestResponse}
// @Failure      400  {object}  response.Response
// @Router       /api/brand-requests/{id}/reject [post]
func (h *BrandHandler) RejectRequest(c *gin.Context) {
	var req service.ReviewBrandRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	request, err := h.brandService.RejectRequest(c.Request.Context(), c.GetString("userID"), c.Param("id"), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, request))
}
