package repository

import (
	"context"

	"marketplace/internal/model"

	"gorm.io/gorm"
)

type ShopRepository interface {
	Create(ctx context.Context, shop *model.Shop) error
	Update(ctx context.Context, shop *model.Shop) error
	Delete(ctx context.Context, id int64) error
	FindByID(ctx context.Context, id int64) (*model.Shop, error)
	FindBySlug(ctx context.Context, slug string) (*model.Shop, error)
	List(ctx context.Context, activeOnly bool, search string, page, limit int) ([]model.Shop, int64, error)
}

type shopRepository struct {
	db *gorm.DB
}

func NewShopRepository(db *gorm.DB) ShopRepository {
	return &shopRepository{db: db}
}

func (r *shopRepository) Create(ctx context.Context, shop *model.Shop) error {
	return GetDB(ctx, r.db).Create(shop).Error
}

func (r *shopRepository) Update(ctx context.Context, shop *model.Shop) error {
	return GetDB(ctx, r.db).Save(shop).Error
}

func (r *shopRepository) Delete(ctx context.Context, id int64) error {
	return GetDB(ctx, r.db).Where("shop_id = ?", id).Delete(&model.Shop{}).Error
}

func (r *shopRepository) FindByID(ctx context.Context, id int64) (*model.Shop, error) {
	var shop model.Shop
	if err := GetDB(ctx, r.db).First(&shop, "shop_id = ?", id).Error; err != nil {
		return nil, err
	}
	return &shop, nil
}

func (r *shopRepository) FindBySlug(ctx context.Context, slug string) (*model.Shop, error) {
	var shop model.Shop
	if err := GetDB(ctx, r.db).Where("slug = ?", slug).First(&shop).Error; err != nil {
		return nil, err
	}
	return &shop, nil
}

func (r *shopRepository) List(ctx context.Context, activeOnly bool, search string, page, limit int) ([]model.Shop, int64, error) {
	var shops []model.Shop
	var total int64

	db := GetDB(ctx, r.db).Model(&model.Shop{})
	if activeOnly {
		db = db.Where("is_active = ?", true)
	}
	if search != "" {
		db = db.Where("name ILIKE ?", "%"+search+"%")
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := db.Order("name asc").Offset(offset).Limit(limit).Find(&shops).Error; err != nil {
		return nil, 0, err
	}

	return shops, total, nil
}
