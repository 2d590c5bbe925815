package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PriceConditionType enum constants. A rule with PriceCondAny matches every
// price; the others compare the product's GST-inclusive price against
// PriceConditionValue.
const (
	PriceCondAny                = "ANY"
	PriceCondLessThan           = "LESS_THAN"
	PriceCondLessThanOrEqual    = "LESS_THAN_OR_EQUAL"
	PriceCondGreaterThan        = "GREATER_THAN"
	PriceCondGreaterThanOrEqual = "GREATER_THAN_OR_EQUAL"
	PriceCondEqual              = "EQUAL"
)

// ValidPriceConditionTypes lists every accepted price_condition_type value.
var ValidPriceConditionTypes = map[string]bool{
	PriceCondAny:                true,
	PriceCondLessThan:           true,
	PriceCondLessThanOrEqual:    true,
	PriceCondGreaterThan:        true,
	PriceCondGreaterThanOrEqual: true,
	PriceCondEqual:              true,
}

// GSTRule stores a shop-scoped GST rate with category attachment, an optional
// price condition and an optional validity window. The integer primary key is
// monotonically increasing, which resolution uses as a recency tie-break.
type GSTRule struct {
	ID                  int64            `gorm:"primaryKey;autoIncrement" json:"id"`
	Name                string           `gorm:"type:varchar(100);not null;uniqueIndex:uq_gst_rule_name_shop" json:"name"`
	ShopID              int64            `gorm:"not null;index;uniqueIndex:uq_gst_rule_name_shop" json:"shop_id"`
	Shop                *Shop            `gorm:"foreignKey:ShopID" json:"-"`
	CategoryID          int64            `gorm:"not null;index" json:"category_id"`
	Category            *Category        `gorm:"foreignKey:CategoryID" json:"-"`
	PriceConditionType  string           `gorm:"type:varchar(30);not null;default:'ANY'" json:"price_condition_type"`
	PriceConditionValue *decimal.Decimal `gorm:"type:decimal(10,2)" json:"price_condition_value"` // Required unless condition type is ANY
	GSTRatePercentage   decimal.Decimal  `gorm:"type:decimal(5,2);not null" json:"gst_rate_percentage"` // e.g. 18.00 for 18%
	IsActive            bool             `gorm:"default:true;not null" json:"is_active"`
	StartDate           *time.Time       `gorm:"type:date;index" json:"start_date"` // Inclusive; nil = unbounded
	EndDate             *time.Time       `gorm:"type:date;index" json:"end_date"`   // Inclusive; nil = unbounded
	CreatedBy           *uuid.UUID       `gorm:"type:uuid" json:"created_by"`
	UpdatedBy           *uuid.UUID       `gorm:"type:uuid" json:"updated_by"`
	CreatedAt           time.Time        `json:"created_at"`
	UpdatedAt           time.Time        `json:"updated_at"`
}

// InWindow reports whether the rule's validity window contains the given day.
// Bounds are inclusive and a nil bound is unbounded on that side. Comparison
// is by calendar date in the clock's zone, so the boundary does not shift
// with the server's UTC offset.
func (r *GSTRule) InWindow(day time.Time) bool {
	d := atMidnight(day)
	if r.StartDate != nil && d.Before(atMidnight(*r.StartDate)) {
		return false
	}
	if r.EndDate != nil && d.After(atMidnight(*r.EndDate)) {
		return false
	}
	return true
}

func atMidnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// MatchesPrice evaluates the rule's price condition against a GST-inclusive
// price using decimal comparison. A non-ANY condition with no threshold value
// never matches.
func (r *GSTRule) MatchesPrice(inclusivePrice decimal.Decimal) bool {
	if r.PriceConditionType == PriceCondAny {
		return true
	}
	if r.PriceConditionValue == nil {
		return false
	}
	threshold := *r.PriceConditionValue
	switch r.PriceConditionType {
	case PriceCondLessThan:
		return inclusivePrice.LessThan(threshold)
	case PriceCondLessThanOrEqual:
		return inclusivePrice.LessThanOrEqual(threshold)
	case PriceCondGreaterThan:
		return inclusivePrice.GreaterThan(threshold)
	case PriceCondGreaterThanOrEqual:
		return inclusivePrice.GreaterThanOrEqual(threshold)
	case PriceCondEqual:
		return inclusivePrice.Equal(threshold)
	}
	return false
}
