package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	ActionCreateShop     = "CREATE_SHOP"
	ActionUpdateShop     = "UPDATE_SHOP"
	ActionDeleteShop     = "DELETE_SHOP"
	ActionCreateCategory = "CREATE_CATEGORY"
	ActionUpdateCategory = "UPDATE_CATEGORY"
	ActionDeleteCategory = "DELETE_CATEGORY"
	ActionCreateProduct  = "CREATE_PRODUCT"
	ActionUpdateProduct  = "UPDATE_PRODUCT"
	ActionDeleteProduct  = "DELETE_PRODUCT"
	ActionCreateGSTRule  = "CREATE_GST_RULE"
	ActionUpdateGSTRule  = "UPDATE_GST_RULE"
	ActionDeleteGSTRule  = "DELETE_GST_RULE"
	ActionPlaceOrder     = "PLACE_ORDER"
	ActionUpdateOrder    = "UPDATE_ORDER_STATUS"
	ActionCreateBrand    = "CREATE_BRAND"

	// Brand request workflow actions
	ActionCreateBrandRequest  = "CREATE_BRAND_REQUEST"
	ActionApproveBrandRequest = "APPROVE_BRAND_REQUEST"
	ActionRejectBrandRequest  = "REJECT_BRAND_REQUEST"
)

// AuditLog tracks Who, What, and When for critical system changes
type AuditLog struct {
	ID         uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID     *uuid.UUID `gorm:"type:uuid;index" json:"user_id"` // Nullable gracefully if automated bot
	User       *User      `gorm:"foreignKey:UserID" json:"user"`
	Action     string     `gorm:"type:varchar(50);not null;index" json:"action"`
	EntityID   string     `gorm:"type:varchar(50);index" json:"entity_id"`        // Reference string (numeric id/uuid/code)
	EntityName string     `gorm:"type:varchar(255)" json:"entity_name,omitempty"` // Human readable name
	Details    string     `gorm:"type:jsonb" json:"details"`                      // Serialized JSON payload of the action
	CreatedAt  time.Time  `gorm:"index" json:"created_at"`
}
