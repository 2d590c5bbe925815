package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Cart holds a customer's pending items for a single shop. One cart per
// (user, shop) pair.
type Cart struct {
	ID        uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID    uuid.UUID      `gorm:"type:uuid;not null;index:idx_cart_user_shop" json:"user_id"`
	User      *User          `gorm:"foreignKey:UserID" json:"-"`
	ShopID    int64          `gorm:"not null;index:idx_cart_user_shop" json:"shop_id"`
	Shop      *Shop          `gorm:"foreignKey:ShopID" json:"-"`
	Items     []CartItem     `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE" json:"items"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// CartItem snapshots product details at add time so cart display survives
// later catalog edits. UnitPrice is the GST-inclusive listed price when the
// item was added.
type CartItem struct {
	ID          uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	CartID      uuid.UUID       `gorm:"type:uuid;not null;index" json:"cart_id"`
	ProductID   int64           `gorm:"not null;index" json:"product_id"`
	Product     *Product        `gorm:"foreignKey:ProductID" json:"-"`
	ProductName string          `gorm:"type:varchar(255);not null" json:"product_name"`
	ProductSKU  string          `gorm:"type:varchar(50);not null" json:"product_sku"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"unit_price"`
	Quantity    int             `gorm:"default:1;not null" json:"quantity"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}
