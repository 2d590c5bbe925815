package repository

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ShopSalesRow struct {
	Period       string          `gorm:"column:period"`
	OrderCount   int64           `gorm:"column:order_count"`
	GrossRevenue decimal.Decimal `gorm:"column:gross_revenue"`
	NetRevenue   decimal.Decimal `gorm:"column:net_revenue"`
	GSTCollected decimal.Decimal `gorm:"column:gst_collected"`
}

type RuleUsageRow struct {
	GSTRuleID int64           `gorm:"column:gst_rule_id"`
	RuleName  string          `gorm:"column:rule_name"`
	LineCount int64           `gorm:"column:line_count"`
	GSTAmount decimal.Decimal `gorm:"column:gst_amount"`
}

type AnalyticsRepository interface {
	GetShopSales(ctx context.Context, shopID int64, groupBy, startDate, endDate string) ([]ShopSalesRow, error)
	GetRuleUsage(ctx context.Context, shopID int64, startDate, endDate string) ([]RuleUsageRow, error)
}

type analyticsRepository struct {
	db *gorm.DB
}

func NewAnalyticsRepository(db *gorm.DB) AnalyticsRepository {
	return &analyticsRepository{db: db}
}

func (r *analyticsRepository) GetShopSales(ctx context.Context, shopID int64, groupBy, startDate, endDate string) ([]ShopSalesRow, error) {
	query := `
		SELECT
			TO_CHAR(DATE_TRUNC($2, o.created_at), 'YYYY-MM-DD') AS period,
			COUNT(*) AS order_count,
			COALESCE(SUM(o.total_amount), 0) AS gross_revenue,
			COALESCE(SUM(o.subtotal_amount), 0) AS net_revenue,
			COALESCE(SUM(o.tax_amount), 0) AS gst_collected
		FROM orders o
		WHERE o.shop_id = $1
		  AND o.status <> 'CANCELLED'
		  AND o.created_at >= $3::timestamptz
		  AND o.created_at <= $4::timestamptz
		GROUP BY DATE_TRUNC($2, o.created_at)
		ORDER BY period
	`

	var rows []ShopSalesRow
	if err := r.db.WithContext(ctx).Raw(query,
		shopID, groupBy, startDate, endDate,
	).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to query shop sales: %w", err)
	}

	return rows, nil
}

func (r *analyticsRepository) GetRuleUsage(ctx context.Context, shopID int64, startDate, endDate string) ([]RuleUsageRow, error) {
	query := `
		SELECT
			oi.gst_rule_id,
			COALESCE(gr.name, '(deleted rule)') AS rule_name,
			COUNT(*) AS line_count,
			COALESCE(SUM(oi.gst_amount_per_unit * oi.quantity), 0) AS gst_amount
		FROM order_items oi
		JOIN orders o ON o.id = oi.order_id
		LEFT JOIN gst_rules gr ON gr.id = oi.gst_rule_id
		WHERE o.shop_id = $1
		  AND o.status <> 'CANCELLED'
		  AND oi.gst_rule_id IS NOT NULL
		  AND o.created_at >= $2::timestamptz
		  AND o.created_at <= $3::timestamptz
		GROUP BY oi.gst_rule_id, gr.name
		ORDER BY gst_amount DESC
	`

	var rows []RuleUsageRow
	if err := r.db.WithContext(ctx).Raw(query,
		shopID, startDate, endDate,
	).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to query rule usage: %w", err)
	}

	return rows, nil
}
