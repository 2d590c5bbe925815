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

type GSTHandler struct {
	gstService service.GSTService
}

func NewGSTHandler(gstService service.GSTService) *GSTHandler {
	return &GSTHandler{gstService: gstService}
}

func (h *GSTHandler) RegisterRoutes(router *gin.RouterGroup) {
	rules := router.Group("/api/shops/:shopID/gst-rules")
	rules.Use(middleware.RequireShopOwner())
	{
		rules.GET("", h.GetRules)
		rules.GET("/:id", h.GetRule)
		rules.POST("", h.CreateRule)
		rules.PUT("/:id", h.UpdateRule)
		rules.DELETE("/:id", h.DeleteRule)
	}

	// Resolution is open to any authenticated caller: storefronts need it to
	// show tax breakdowns before checkout
	resolve := router.Group("/api/gst-rules")
	resolve.Use(middleware.RequireRole(model.RoleSuperadmin, model.RoleMerchant, model.RoleCustomer))
	{
		resolve.POST("/resolve", h.Resolve)
	}
}

// GetRules lists the GST rules of a shop
// @Summary      List GST rules
// @Description  Retrieves a paginated list of GST rules for a shop
// @Tags         gst-rules
// @Security     BearerAuth
// @Produce      json
// @Param        shopID       path      int   true   "Shop ID"
// @Param        category_id  query     int   false  "Filter by category"
// @Param        is_active    query     bool  false  "Filter by active flag"
// @Param        page         query     int   false  "Page number (default 1)"
// @Param        limit        query     int   false  "Items per page (default 20)"
// @Success      200  {object}  response.Response{data=[]service.GSTRuleResponse}
// @Failure      500  {object}  response.Response
// @Router       /api/shops/{shopID}/gst-rules [get]
func (h *GSTHandler) GetRules(c *gin.Context) {
	shopID, err := strconv.ParseInt(c.Param("shopID"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid shop id"))
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

	var isActive *bool
	if raw := c.Query("is_active"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid is_active"))
			return
		}
		isActive = &v
	}

	p := pagination.Parse(c)
	rules, total, err := h.gstService.GetRules(c.Request.Context(), shopID, categoryID, isActive, p.Page, p.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Paginated(http.StatusOK, rules, total, p.Page, p.Limit))
}

// GetRule retrieves a single GST rule
// @Summary      Get GST rule
// @Tags         gst-rules
// @Security     BearerAuth
// @Produce      json
// @Param        shopID  path      int  true  "Shop ID"
// @Param        id      path      int  true  "Rule ID"
// @Success      200  {object}  response.Response{data=service.GSTRuleResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/shops/{shopID}/gst-rules/{id} [get]
func (h *GSTHandler) GetRule(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid rule id"))
		return
	}

	rule, err := h.gstService.GetRule(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, rule))
}

// CreateRule creates a GST rule for a shop
// @Summary      Create GST rule
// @Description  Creates a GST rule binding a rate and optional price condition to a category
// @Tags         gst-rules
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        shopID   path      int                            true  "Shop ID"
// @Param        payload  body      service.CreateGSTRuleRequest  true  "Create GST Rule Payload"
// @Success      201  {object}  response.Response{data=service.GSTRuleResponse}
// @Failure      400  {object}  response.Response
// @Router       /api/shops/{shopID}/gst-rules [post]
func (h *GSTHandler) CreateRule(c *gin.Context) {
	shopID, err := strconv.ParseInt(c.Param("shopID"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid shop id"))
		return
	}

	var req service.CreateGSTRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}
	req.ShopID = shopID

	rule, err := h.gstService.CreateRule(c.Request.Context(), c.GetString("userID"), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, rule))
}

// UpdateRule updates an existing GST rule
// @Summary      Update GST rule
// @Tags         gst-rules
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        shopID   path      int                            true  "Shop ID"
// @Param        id       path      int                            true  "Rule ID"
// @Param        payload  body      service.UpdateGSTRuleRequest  true  "Update GST Rule Payload"
// @Success      200  {object}  response.Response{data=service.GSTRuleResponse}
// @Failure      400  {object}  response.Response
// @Router       /api/shops/{shopID}/gst-rules/{id} [put]
func (h *GSTHandler) UpdateRule(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid rule id"))
		return
	}

	var req service.UpdateGSTRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	rule, err := h.gstService.UpdateRule(c.Request.Context(), c.GetString("userID"), id, req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, rule))
}

// DeleteRule removes a GST rule
// @Summary      Delete GST rule
// @Tags         gst-rules
// @Security     BearerAuth
// @Produce      json
// @Param        shopID  path      int  true  "Shop ID"
// @Param        id      path      int  true  "Rule ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/shops/{shopID}/gst-rules/{id} [delete]
func (h *GSTHandler) DeleteRule(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid rule id"))
		return
	}

	if err := h.gstService.DeleteRule(c.Request.Context(), c.GetString("userID"), id); err != nil {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"deleted": id}))
}

// Resolve finds the applicable GST rule for a category and price
// @Summary      Resolve GST rule
// @Description  Resolves the applicable GST rule for a shop, category and GST-inclusive price, returning the rate and breakdown
// @Tags         gst-rules
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.ResolveGSTRequest  true  "Resolve Payload"
// @Success      200  {object}  response.Response{data=service.ResolveGSTResponse}
// @Failure      400  {object}  response.Response
// @Failure      500  {object}  response.Response
// @Router       /api/gst-rules/resolve [post]
func (h *GSTHandler) Resolve(c *gin.Context) {
	var req service.ResolveGSTRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	result, err := h.gstService.Resolve(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}
