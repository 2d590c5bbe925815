package model

import (
	"time"

	"gorm.io/gorm"
)

// Category is a node in a shop's category tree. ParentID is nil for roots;
// categories form a forest per shop and GST rules may attach at any level.
type Category struct {
	CategoryID  int64          `gorm:"primaryKey;autoIncrement" json:"category_id"`
	ShopID      int64          `gorm:"not null;index;uniqueIndex:uq_shop_category_name;uniqueIndex:uq_shop_category_slug" json:"shop_id"`
	Shop        *Shop          `gorm:"foreignKey:ShopID" json:"-"`
	ParentID    *int64         `gorm:"index" json:"parent_id"`
	Parent      *Category      `gorm:"foreignKey:ParentID" json:"-"`
	Name        string         `gorm:"type:varchar(100);not null;uniqueIndex:uq_shop_category_name" json:"name"`
	Slug        string         `gorm:"type:varchar(100);not null;uniqueIndex:uq_shop_category_slug" json:"slug"`
	Description string         `gorm:"type:text" json:"description"`
	IconURL     string         `gorm:"type:varchar(255)" json:"icon_url"`
	SortOrder   int            `gorm:"default:0" json:"sort_order"`
	IsActive    bool           `gorm:"default:true;not null" json:"is_active"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}
