package handler

import (
	"net/http"

	"marketplace/internal/middleware"
	"marketplace/internal/service"
	"marketplace/pkg/response"

	"github.com/gin-gonic/gin"
)

type AnalyticsHandler struct {
	analyticsService service.AnalyticsService
}

func NewAnalyticsHandler(analyticsService service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analyticsService: analyticsService}
}

func (h *AnalyticsHandler) RegisterRoutes(router *gin.RouterGroup) {
	analytics := router.Group("/api/shops/:shopID/analytics")
	analytics.Use(middleware.RequireShopOwner())
	{
		analytics.GET("/sales", h.ShopSales)
		analytics.GET("/rule-usage", h.RuleUsage)
	}
}

// ShopSales returns revenue and GST totals bucketed by period
// @Summary      Shop sales analytics
// @Tags         analytics
// @Security     BearerAuth
// @Produce      json
// @Param        shopID      path      int     true   "Shop ID"
// @Param        group_by    query     string  false  "day, week or month (default day)"
// @Param        start_date  query     string  false  "Start date YYYY-MM-DD (default 30 days ago)"
// @Param        end_date    query     string  false  "End date YYYY-MM-DD (default today)"
// @Success      200  {object}  response.Response{data=[]service.ShopSalesPoint}
// @Failure      400  {object}  response.Response
// @Router       /api/shops/{shopID}/analytics/sales [get]
func (h *AnalyticsHandler) ShopSales(c *gin.Context) {
	shopID, ok := shopIDParam(c)
	if !ok {
		return
	}

	points, err := h.analyticsService.ShopSales(c.Request.Context(), shopID, c.Query("group_by"), c.Query("start_date"), c.Query("end_date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, points))
}

// RuleUsage returns per-rule GST totals from completed orders
// @Summary      GST rule usage analytics
// @Tags         analytics
// @Security     BearerAuth
// @Produce      json
// @Param        shopID      path      int     true   "Shop ID"
// @Param        start_date  query     string  false  "Start date YYYY-MM-DD (default 30 days ago)"
// @Param        end_date    query     string  false  "End date YYYY-MM-DD (default today)"
// @Success      200  {object}  response.Response{data=[]service.RuleUsagePoint}
// @Failure      400  {object}  response.Response
// @Router       /api/shops/{shopID}/analytics/rule-usage [get]
func (h *AnalyticsHandler) RuleUsage(c *gin.Context) {
	shopID, ok := shopIDParam(c)
	if !ok {
		return
	}

	points, err := h.analyticsService.RuleUsage(c.Request.Context(), shopID, c.Query("start_date"), c.Query("end_date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, points))
}
