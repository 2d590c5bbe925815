package repository

import (
	"context"

	"marketplace/internal/model"

	"gorm.io/gorm"
)

type AttributeRepository interface {
	Create(ctx context.Context, attr *model.Attribute) error
	Update(ctx context.Context, attr *model.Attribute) error
	Delete(ctx context.Context, id int64) error
	FindByID(ctx context.Context, id int64) (*model.Attribute, error)
	ListByShop(ctx context.Context, shopID int64) ([]model.Attribute, error)
}

type attributeRepository struct {
	db *gorm.DB
}

func NewAttributeRepository(db *gorm.DB) AttributeRepository {
	return &attributeRepository{db: db}
}

func (r *attributeRepository) Create(ctx context.Context, attr *model.Attribute) error {
	return GetDB(ctx, r.db).Create(attr).Error
}

func (r *attributeRepository) Update(ctx context.Context, attr *model.Attribute) error {
	return GetDB(ctx, r.db).Save(attr).Error
}

func (r *attributeRepository) Delete(ctx context.Context, id int64) error {
	return GetDB(ctx, r.db).Where("attribute_id = ?", id).Delete(&model.Attribute{}).Error
}

func (r *attributeRepository) FindByID(ctx context.Context, id int64) (*model.Attribute, error) {
	var attr model.Attribute
	if err := GetDB(ctx, r.db).First(&attr, "attribute_id = ?", id).Error; err != nil {
		return nil, err
	}
	return &attr, nil
}

func (r *attributeRepository) ListByShop(ctx context.Context, shopID int64) ([]model.Attribute, error) {
	var attrs []model.Attribute
	if err := GetDB(ctx, r.db).Where("shop_id = ?", shopID).Order("sort_order asc, name asc").Find(&attrs).Error; err != nil {
		return nil, err
	}
	return attrs, nil
}
