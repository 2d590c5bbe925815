package repository

import (
	"context"

	"marketplace/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type WishlistRepository interface {
	Create(ctx context.Context, item *model.WishlistItem) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.WishlistItem, error)
	FindByUserShopProduct(ctx context.Context, userID uuid.UUID, shopID, productID int64) (*model.WishlistItem, error)
	ListByUser(ctx context.Context, userID uuid.UUID, shopID *int64, page, limit int) ([]model.WishlistItem, int64, error)
}

type wishlistRepository struct {
	db *gorm.DB
}

func NewWishlistRepository(db *gorm.DB) WishlistRepository {
	return &wishlistRepository{db: db}
}

func (r *wishlistRepository) Create(ctx context.Context, item *model.WishlistItem) error {
	return GetDB(ctx, r.db).Create(item).Error
}

func (r *wishlistRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.WishlistItem{}).Error
}

func (r *wishlistRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.WishlistItem, error) {
	var item model.WishlistItem
	if err := GetDB(ctx, r.db).First(&item, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *wishlistRepository) FindByUserShopProduct(ctx context.Context, userID uuid.UUID, shopID, productID int64) (*model.WishlistItem, error) {
	var item model.WishlistItem
	err := GetDB(ctx, r.db).
		Where("user_id = ? AND shop_id = ? AND product_id = ?", userID, shopID, productID).
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *wishlistRepository) ListByUser(ctx context.Context, userID uuid.UUID, shopID *int64, page, limit int) ([]model.WishlistItem, int64, error) {
	var items []model.WishlistItem
	var total int64

	db := GetDB(ctx, r.db).Model(&model.WishlistItem{}).Where("user_id = ?", userID)
	if shopID != nil {
		db = db.Where("shop_id = ?", *shopID)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := db.Order("created_at desc").Offset(offset).Limit(limit).Find(&items).Error; err != nil {
		return nil, 0, err
	}

	return items, total, nil
}
