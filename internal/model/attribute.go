package model

import (
	"time"

	"gorm.io/gorm"
)

// AttributeInputType enum constants
const (
	AttrInputText        = "text"
	AttrInputNumber      = "number"
	AttrInputSelect      = "select"
	AttrInputMultiselect = "multiselect"
	AttrInputBoolean     = "boolean"
)

// Attribute is a shop-scoped product attribute definition (e.g. "Color",
// "Storage"). Options holds the allowed values for select/multiselect types
// as a JSON array.
type Attribute struct {
	AttributeID int64          `gorm:"primaryKey;autoIncrement" json:"attribute_id"`
	ShopID      int64          `gorm:"not null;index;uniqueIndex:uq_shop_attribute_name" json:"shop_id"`
	Shop        *Shop          `gorm:"foreignKey:ShopID" json:"-"`
	Name        string         `gorm:"type:varchar(100);not null;uniqueIndex:uq_shop_attribute_name" json:"name"`
	InputType   string         `gorm:"type:varchar(20);not null" json:"input_type"` // text, number, select, multiselect, boolean
	Options     string         `gorm:"type:jsonb" json:"options"`
	IsRequired  bool           `gorm:"default:false" json:"is_required"`
	SortOrder   int            `gorm:"default:0" json:"sort_order"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}
