package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderStatus constants
const (
	OrderStatusPlaced    = "PLACED"
	OrderStatusCompleted = "COMPLETED"
	OrderStatusCancelled = "CANCELLED"
)

// Order is a placed checkout for one shop. Monetary totals are decimals:
// SubtotalAmount is the sum of GST-exclusive base prices, TaxAmount the sum
// of GST, TotalAmount what the customer pays (lines + shipping).
type Order struct {
	ID             uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrderCode      string          `gorm:"type:varchar(100);uniqueIndex;not null" json:"order_code"`
	UserID         uuid.UUID       `gorm:"type:uuid;not null;index" json:"user_id"`
	User           *User           `gorm:"foreignKey:UserID" json:"-"`
	ShopID         int64           `gorm:"not null;index" json:"shop_id"`
	Shop           *Shop           `gorm:"foreignKey:ShopID" json:"-"`
	Status         string          `gorm:"type:varchar(20);default:'PLACED';not null;index" json:"status"`
	SubtotalAmount decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"subtotal_amount"`
	TaxAmount      decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"tax_amount"`
	ShippingAmount decimal.Decimal `gorm:"type:decimal(12,2);default:0;not null" json:"shipping_amount"`
	TotalAmount    decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total_amount"`
	Note           string          `gorm:"type:text" json:"note"`
	Items          []OrderItem     `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// OrderItem captures a purchased line with the GST math frozen at purchase
// time: the rate the resolver selected, the back-calculated base price and
// the GST amount per unit.
type OrderItem struct {
	ID                 uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrderID            uuid.UUID       `gorm:"type:uuid;not null;index" json:"order_id"`
	ProductID          int64           `gorm:"not null;index" json:"product_id"`
	Product            *Product        `gorm:"foreignKey:ProductID" json:"-"`
	ProductName        string          `gorm:"type:varchar(255);not null" json:"product_name"`
	ProductSKU         string          `gorm:"type:varchar(50);not null" json:"product_sku"`
	Quantity           int             `gorm:"not null" json:"quantity"`
	UnitPriceInclusive decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"unit_price_inclusive"`
	GSTRuleID          *int64          `json:"gst_rule_id"` // Rule applied at purchase; nil when no rule matched
	GSTRatePercentage  decimal.Decimal `gorm:"type:decimal(5,2);not null" json:"gst_rate_percentage"`
	BasePricePerUnit   decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"base_price_per_unit"`
	GSTAmountPerUnit   decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"gst_amount_per_unit"`
	LineTotal          decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"line_total"`
}
