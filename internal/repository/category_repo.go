package repository

import (
	"context"

	"marketplace/internal/model"

	"gorm.io/gorm"
)

type CategoryRepository interface {
	Create(ctx context.Context, category *model.Category) error
	Update(ctx context.Context, category *model.Category) error
	Delete(ctx context.Context, id int64) error
	FindByID(ctx context.Context, id int64) (*model.Category, error)
	FindByIDAndShop(ctx context.Context, id, shopID int64) (*model.Category, error)
	ListByShop(ctx context.Context, shopID int64) ([]model.Category, error)
	CountChildren(ctx context.Context, id int64) (int64, error)
	CountProducts(ctx context.Context, id int64) (int64, error)
	CountRules(ctx context.Context, id int64) (int64, error)
}

type categoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

func (r *categoryRepository) Create(ctx context.Context, category *model.Category) error {
	return GetDB(ctx, r.db).Create(category).Error
}

func (r *categoryRepository) Update(ctx context.Context, category *model.Category) error {
	return GetDB(ctx, r.db).Save(category).Error
}

func (r *categoryRepository) Delete(ctx context.Context, id int64) error {
	return GetDB(ctx, r.db).Where("category_id = ?", id).Delete(&model.Category{}).Error
}

func (r *categoryRepository) FindByID(ctx context.Context, id int64) (*model.Category, error) {
	var category model.Category
	if err := GetDB(ctx, r.db).First(&category, "category_id = ?", id).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *categoryRepository) FindByIDAndShop(ctx context.Context, id, shopID int64) (*model.Category, error) {
	var category model.Category
	if err := GetDB(ctx, r.db).Where("category_id = ? AND shop_id = ?", id, shopID).First(&category).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *categoryRepository) ListByShop(ctx context.Context, shopID int64) ([]model.Category, error) {
	var categories []model.Category
	if err := GetDB(ctx, r.db).Where("shop_id = ?", shopID).Order("sort_order asc, name asc").Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *categoryRepository) CountChildren(ctx context.Context, id int64) (int64, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&model.Category{}).Where("parent_id = ?", id).Count(&count).Error
	return count, err
}

func (r *categoryRepository) CountProducts(ctx context.Context, id int64) (int64, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&model.Product{}).Where("category_id = ?", id).Count(&count).Error
	return count, err
}

func (r *categoryRepository) CountRules(ctx context.Context, id int64) (int64, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&model.GSTRule{}).Where("category_id = ?", id).Count(&count).Error
	return count, err
}
