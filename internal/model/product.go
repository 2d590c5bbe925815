package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product is a shop-scoped catalog item. SellingPrice and SpecialPrice are
// GST-inclusive; the applicable GST rate is resolved per category and price
// at display/checkout time, never stored on the product.
type Product struct {
	ProductID    int64            `gorm:"primaryKey;autoIncrement" json:"product_id"`
	ShopID       int64            `gorm:"not null;index" json:"shop_id"`
	Shop         *Shop            `gorm:"foreignKey:ShopID" json:"-"`
	CategoryID   int64            `gorm:"not null;index" json:"category_id"`
	Category     *Category        `gorm:"foreignKey:CategoryID" json:"-"`
	BrandID      *int64           `gorm:"index" json:"brand_id"`
	Brand        *Brand           `gorm:"foreignKey:BrandID" json:"-"`
	SKU          string           `gorm:"type:varchar(50);uniqueIndex;not null" json:"sku"`
	Name         string           `gorm:"type:varchar(255);not null" json:"name"`
	Description  string           `gorm:"type:text" json:"description"`
	CostPrice    decimal.Decimal  `gorm:"type:decimal(10,2);not null" json:"cost_price"`
	SellingPrice decimal.Decimal  `gorm:"type:decimal(10,2);not null" json:"selling_price"`
	DiscountPct  decimal.Decimal  `gorm:"type:decimal(5,2);default:0" json:"discount_pct"`
	SpecialPrice *decimal.Decimal `gorm:"type:decimal(10,2)" json:"special_price"`
	SpecialStart *time.Time       `json:"special_start"`
	SpecialEnd   *time.Time       `json:"special_end"`
	StockQty     int              `gorm:"default:0;not null" json:"stock_qty"`
	IsPublished  bool             `gorm:"default:false;not null" json:"is_published"`
	IsActive     bool             `gorm:"default:true;not null" json:"is_active"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
	DeletedAt    gorm.DeletedAt   `gorm:"index" json:"-"`
}

// CurrentListedPrice returns the GST-inclusive price in effect at the given
// time (special price when inside its window, selling price otherwise) and
// whether the special price applies.
func (p *Product) CurrentListedPrice(now time.Time) (decimal.Decimal, bool) {
	if p.SpecialPrice == nil {
		return p.SellingPrice, false
	}
	if p.SpecialStart != nil && now.Before(*p.SpecialStart) {
		return p.SellingPrice, false
	}
	if p.SpecialEnd != nil && now.After(*p.SpecialEnd) {
		return p.SellingPrice, false
	}
	return *p.SpecialPrice, true
}
