package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Shop represents a storefront tenant. All catalog entities (categories,
// brands, products, GST rules) are scoped to a shop.
type Shop struct {
	ShopID      int64          `gorm:"primaryKey;autoIncrement" json:"shop_id"`
	Name        string         `gorm:"type:varchar(100);uniqueIndex;not null" json:"name"`
	Slug        string         `gorm:"type:varchar(100);uniqueIndex;not null" json:"slug"`
	Description string         `gorm:"type:text" json:"description"`
	LogoURL     string         `gorm:"type:varchar(255)" json:"logo_url"`
	OwnerID     *uuid.UUID     `gorm:"type:uuid;index" json:"owner_id"` // Merchant that manages the shop; nullable for platform-run shops
	Owner       *User          `gorm:"foreignKey:OwnerID" json:"-"`
	IsActive    bool           `gorm:"default:true;not null" json:"is_active"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}
