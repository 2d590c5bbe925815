package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// WishlistItem records a product a customer saved for later, with a snapshot
// of the product details at save time. At most one entry per
// (user, shop, product).
type WishlistItem struct {
	ID           uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID       uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:uq_wishlist_user_shop_product" json:"user_id"`
	User         *User           `gorm:"foreignKey:UserID" json:"-"`
	ShopID       int64           `gorm:"not null;uniqueIndex:uq_wishlist_user_shop_product" json:"shop_id"`
	ProductID    int64           `gorm:"not null;uniqueIndex:uq_wishlist_user_shop_product" json:"product_id"`
	Product      *Product        `gorm:"foreignKey:ProductID" json:"-"`
	ProductName  string          `gorm:"type:varchar(255);not null" json:"product_name"`
	ProductSKU   string          `gorm:"type:varchar(50);not null" json:"product_sku"`
	ProductPrice decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"product_price"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}
