package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BrandRequestStatus enum constants
const (
	BrandRequestPending  = "PENDING"
	BrandRequestApproved = "APPROVED"
	BrandRequestRejected = "REJECTED"
)

// Brand is a shop-scoped brand attached to a category.
type Brand struct {
	BrandID    int64          `gorm:"primaryKey;autoIncrement" json:"brand_id"`
	ShopID     int64          `gorm:"not null;index;uniqueIndex:uq_shop_brand_name" json:"shop_id"`
	Shop       *Shop          `gorm:"foreignKey:ShopID" json:"-"`
	CategoryID int64          `gorm:"not null;index" json:"category_id"`
	Category   *Category      `gorm:"foreignKey:CategoryID" json:"-"`
	Name       string         `gorm:"type:varchar(100);not null;uniqueIndex:uq_shop_brand_name" json:"name"`
	Slug       string         `gorm:"type:varchar(100);not null" json:"slug"`
	LogoURL    string         `gorm:"type:varchar(255)" json:"logo_url"`
	IsActive   bool           `gorm:"default:true;not null" json:"is_active"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}

// BrandRequest tracks a merchant's request to add a brand to their shop's
// catalog. Superadmin review moves it from PENDING to APPROVED (which creates
// the Brand) or REJECTED.
type BrandRequest struct {
	ID          uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ShopID      int64      `gorm:"not null;index" json:"shop_id"`
	CategoryID  int64      `gorm:"not null" json:"category_id"`
	Name        string     `gorm:"type:varchar(100);not null" json:"name"`
	Reason      string     `gorm:"type:text" json:"reason"`
	Status      string     `gorm:"type:varchar(20);default:'PENDING';not null;index" json:"status"` // PENDING, APPROVED, REJECTED
	ReviewNote  string     `gorm:"type:text" json:"review_note"`
	RequestedBy *uuid.UUID `gorm:"type:uuid" json:"requested_by"`
	ReviewedBy  *uuid.UUID `gorm:"type:uuid" json:"reviewed_by"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}
