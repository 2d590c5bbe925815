package repository

import (
	"context"

	"marketplace/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CartRepository interface {
	FindOrCreate(ctx context.Context, userID uuid.UUID, shopID int64) (*model.Cart, error)
	FindByUserAndShop(ctx context.Context, userID uuid.UUID, shopID int64) (*model.Cart, error)
	FindItem(ctx context.Context, cartID uuid.UUID, productID int64) (*model.CartItem, error)
	CreateItem(ctx context.Context, item *model.CartItem) error
	UpdateItem(ctx context.Context, item *model.CartItem) error
	DeleteItem(ctx context.Context, itemID uuid.UUID) error
	ClearItems(ctx context.Context, cartID uuid.UUID) error
}

type cartRepository struct {
	db *gorm.DB
}

func NewCartRepository(db *gorm.DB) CartRepository {
	return &cartRepository{db: db}
}

func (r *cartRepository) FindOrCreate(ctx context.Context, userID uuid.UUID, shopID int64) (*model.Cart, error) {
	cart, err := r.FindByUserAndShop(ctx, userID, shopID)
	if err == nil {
		return cart, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	cart = &model.Cart{UserID: userID, ShopID: shopID}
	if err := GetDB(ctx, r.db).Create(cart).Error; err != nil {
		return nil, err
	}
	return cart, nil
}

func (r *cartRepository) FindByUserAndShop(ctx context.Context, userID uuid.UUID, shopID int64) (*model.Cart, error) {
	var cart model.Cart
	err := GetDB(ctx, r.db).Preload("Items").
		Where("user_id = ? AND shop_id = ?", userID, shopID).
		First(&cart).Error
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

func (r *cartRepository) FindItem(ctx context.Context, cartID uuid.UUID, productID int64) (*model.CartItem, error) {
	var item model.CartItem
	err := GetDB(ctx, r.db).Where("cart_id = ? AND product_id = ?", cartID, productID).First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *cartRepository) CreateItem(ctx context.Context, item *model.CartItem) error {
	return GetDB(ctx, r.db).Create(item).Error
}

func (r *cartRepository) UpdateItem(ctx context.Context, item *model.CartItem) error {
	return GetDB(ctx, r.db).Save(item).Error
}

func (r *cartRepository) DeleteItem(ctx context.Context, itemID uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", itemID).Delete(&model.CartItem{}).Error
}

func (r *cartRepository) ClearItems(ctx context.Context, cartID uuid.UUID) error {
	return GetDB(ctx, r.db).Where("cart_id = ?", cartID).Delete(&model.CartItem{}).Error
}
