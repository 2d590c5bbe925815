package service

import (
	"context"
	"fmt"
	"time"

	"marketplace/internal/repository"
)

type ShopSalesPoint struct {
	Period       string `json:"period"`
	OrderCount   int64  `json:"order_count"`
	GrossRevenue string `json:"gross_revenue"`
	NetRevenue   string `json:"net_revenue"`
	GSTCollected string `json:"gst_collected"`
}

type RuleUsagePoint struct {
	GSTRuleID int64  `json:"gst_rule_id"`
	RuleName  string `json:"rule_name"`
	LineCount int64  `json:"line_count"`
	GSTAmount string `json:"gst_amount"`
}

type AnalyticsService interface {
	ShopSales(ctx context.Context, shopID int64, groupBy, startDate, endDate string) ([]ShopSalesPoint, error)
	RuleUsage(ctx context.Context, shopID int64, startDate, endDate string) ([]RuleUsagePoint, error)
}

type analyticsService struct {
	analyticsRepo repository.AnalyticsRepository
}

func NewAnalyticsService(analyticsRepo repository.AnalyticsRepository) AnalyticsService {
	return &analyticsService{analyticsRepo: analyticsRepo}
}

var validGroupBy = map[string]bool{"day": true, "week": true, "month": true}

// normalizeDateRange validates the bounds and defaults to the last 30 days
func normalizeDateRange(startDate, endDate string) (string, string, error) {
	now := time.Now()
	if startDate == "" {
		startDate = now.AddDate(0, 0, -30).Format("2006-01-02")
	}
	if endDate == "" {
		endDate = now.Format("2006-01-02")
	}

	start, err := time.Parse("2006-01-02", startDate)
	if err != nil {
		return "", "", fmt.Errorf("invalid start_date format (expected YYYY-MM-DD)")
	}
	end, err := time.Parse("2006-01-02", endDate)
	if err != nil {
		return "", "", fmt.Errorf("invalid end_date format (expected YYYY-MM-DD)")
	}
	if end.Before(start) {
		return "", "", fmt.Errorf("end_date must not be before start_date")
	}

	// Push the end bound to the last instant of that day
	return start.Format(time.RFC3339), end.Add(24*time.Hour - time.Second).Format(time.RFC3339), nil
}

func (s *analyticsService) ShopSales(ctx context.Context, shopID int64, groupBy, startDate, endDate string) ([]ShopSalesPoint, error) {
	if groupBy == "" {
		groupBy = "day"
	}
	if !validGroupBy[groupBy] {
		return nil, fmt.Errorf("invalid group_by '%s': must be day, week, or month", groupBy)
	}

	start, end, err := normalizeDateRange(startDate, endDate)
	if err != nil {
		return nil, err
	}

	rows, err := s.analyticsRepo.GetShopSales(ctx, shopID, groupBy, start, end)
	if err != nil {
		return nil, err
	}

	points := make([]ShopSalesPoint, 0, len(rows))
	for _, r := range rows {
		points = append(points, ShopSalesPoint{
			Period:       r.Period,
			OrderCount:   r.OrderCount,
			GrossRevenue: r.GrossRevenue.StringFixed(2),
			NetRevenue:   r.NetRevenue.StringFixed(2),
			GSTCollected: r.GSTCollected.StringFixed(2),
		})
	}
	return points, nil
}

func (s *analyticsService) RuleUsage(ctx context.Context, shopID int64, startDate, endDate string) ([]RuleUsagePoint, error) {
	start, end, err := normalizeDateRange(startDate, endDate)
	if err != nil {
		return nil, err
	}

	rows, err := s.analyticsRepo.GetRuleUsage(ctx, shopID, start, end)
	if err != nil {
		return nil, err
	}

	points := make([]RuleUsagePoint, 0, len(rows))
	for _, r := range rows {
		points = append(points, RuleUsagePoint{
			GSTRuleID: r.GSTRuleID,
			RuleName:  r.RuleName,
			LineCount: r.LineCount,
			GSTAmount: r.GSTAmount.StringFixed(2),
		})
	}
	return points, nil
}
