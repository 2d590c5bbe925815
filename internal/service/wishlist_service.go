package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"marketplace/internal/model"
	"marketplace/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AddWishlistItemRequest struct {
	ShopID    int64 `json:"shop_id" binding:"required,min=1"`
	ProductID int64 `json:"product_id" binding:"required,min=1"`
}

type WishlistItemResponse struct {
	ID           string `json:"id"`
	ShopID       int64  `json:"shop_id"`
	ProductID    int64  `json:"product_id"`
	ProductName  string `json:"product_name"`
	ProductSKU   string `json:"product_sku"`
	ProductPrice string `json:"product_price"` // Price snapshot from save time
	CreatedAt    string `json:"created_at"`
}

type WishlistService interface {
	AddItem(ctx context.Context, userID string, req AddWishlistItemRequest) (WishlistItemResponse, error)
	RemoveItem(ctx context.Context, userID string, itemID string) error
	ListItems(ctx context.Context, userID string, shopID *int64, page, limit int) ([]WishlistItemResponse, int64, error)
}

type wishlistService struct {
	wishlistRepo repository.WishlistRepository
	productRepo  repository.ProductRepository
	now          func() time.Time
}

func NewWishlistService(wishlistRepo repository.WishlistRepository, productRepo repository.ProductRepository) WishlistService {
	return &wishlistService{wishlistRepo: wishlistRepo, productRepo: productRepo, now: time.Now}
}

func (s *wishlistService) AddItem(ctx context.Context, userID string, req AddWishlistItemRequest) (WishlistItemResponse, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return WishlistItemResponse{}, fmt.Errorf("invalid user id")
	}

	product, err := s.productRepo.FindByID(ctx, req.ProductID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return WishlistItemResponse{}, fmt.Errorf("product not found")
		}
		return WishlistItemResponse{}, fmt.Errorf("failed to fetch product: %w", err)
	}
	if product.ShopID != req.ShopID {
		return WishlistItemResponse{}, fmt.Errorf("product does not belong to this shop")
	}

	// Saving the same product twice is a no-op returning the existing entry
	if existing, err := s.wishlistRepo.FindByUserShopProduct(ctx, uid, req.ShopID, req.ProductID); err == nil {
		return toWishlistItemResponse(*existing), nil
	}

	listed, _ := product.CurrentListedPrice(s.now())
	item := model.WishlistItem{
		UserID:       uid,
		ShopID:       req.ShopID,
		ProductID:    req.ProductID,
		ProductName:  product.Name,
		ProductSKU:   product.SKU,
		ProductPrice: listed,
	}

	if err := s.wishlistRepo.Create(ctx, &item); err != nil {
		return WishlistItemResponse{}, fmt.Errorf("failed to save wishlist item: %w", err)
	}

	return toWishlistItemResponse(item), nil
}

func (s *wishlistService) RemoveItem(ctx context.Context, userID string, itemID string) error {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return fmt.Errorf("invalid user id")
	}
	iid, err := uuid.Parse(itemID)
	if err != nil {
		return fmt.Errorf("invalid item id")
	}

	item, err := s.wishlistRepo.FindByID(ctx, iid)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("wishlist item not found")
		}
		return fmt.Errorf("failed to fetch wishlist item: %w", err)
	}
	if item.UserID != uid {
		return fmt.Errorf("wishlist item not found")
	}

	return s.wishlistRepo.Delete(ctx, iid)
}

func (s *wishlistService) ListItems(ctx context.Context, userID string, shopID *int64, page, limit int) ([]WishlistItemResponse, int64, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return nil, 0, fmt.Errorf("invalid user id")
	}

	items, total, err := s.wishlistRepo.ListByUser(ctx, uid, shopID, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch wishlist: %w", err)
	}

	res := make([]WishlistItemResponse, 0, len(items))
	for _, item := range items {
		res = append(res, toWishlistItemResponse(item))
	}
	return res, total, nil
}

func toWishlistItemResponse(item model.WishlistItem) WishlistItemResponse {
	return WishlistItemResponse{
		ID:           item.ID.String(),
		ShopID:       item.ShopID,
		ProductID:    item.ProductID,
		ProductName:  item.ProductName,
		ProductSKU:   item.ProductSKU,
		ProductPrice: item.ProductPrice.StringFixed(2),
		CreatedAt:    item.CreatedAt.Format(time.RFC3339),
	}
}
