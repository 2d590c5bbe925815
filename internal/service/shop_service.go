package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"marketplace/internal/middleware"
	"marketplace/internal/model"
	"marketplace/internal/repository"
	ws "marketplace/internal/websocket"

	"gorm.io/gorm"
)

type CreateShopRequest struct {
	Name        string `json:"name" binding:"required,min=1,max=255"`
	Slug        string `json:"slug"` // Derived from name when omitted
	Description string `json:"description"`
	LogoURL     string `json:"logo_url"`
	OwnerID     string `json:"owner_id"` // UUID of the owning merchant, optional
}

type UpdateShopRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	LogoURL     *string `json:"logo_url"`
	OwnerID     *string `json:"owner_id"`
	IsActive    *bool   `json:"is_active"`
}

type ShopResponse struct {
	ShopID      int64   `json:"shop_id"`
	Name        string  `json:"name"`
	Slug        string  `json:"slug"`
	Description string  `json:"description"`
	LogoURL     string  `json:"logo_url"`
	OwnerID     *string `json:"owner_id"`
	IsActive    bool    `json:"is_active"`
	CreatedAt   string  `json:"created_at"`
	UpdatedAt   string  `json:"updated_at"`
}

type ShopService interface {
	CreateShop(ctx context.Context, userID string, req CreateShopRequest) (ShopResponse, error)
	UpdateShop(ctx context.Context, userID string, id int64, req UpdateShopRequest) (ShopResponse, error)
	DeleteShop(ctx context.Context, userID string, id int64) error
	GetShop(ctx context.Context, id int64) (ShopResponse, error)
	GetShopBySlug(ctx context.Context, slug string) (ShopResponse, error)
	ListShops(ctx context.Context, activeOnly bool, search string, page, limit int) ([]ShopResponse, int64, error)
}

type shopService struct {
	shopRepo  repository.ShopRepository
	userRepo  repository.UserRepository
	auditRepo repository.AuditRepository
	hub       *ws.Hub
}

func NewShopService(shopRepo repository.ShopRepository, userRepo repository.UserRepository, auditRepo repository.AuditRepository, hub *ws.Hub) ShopService {
	return &shopService{shopRepo: shopRepo, userRepo: userRepo, auditRepo: auditRepo, hub: hub}
}

var slugPattern = regexp.MustCompile(`[^a-z0-9]+`)

// slugify lowercases and collapses non-alphanumerics into single hyphens
func slugify(name string) string {
	s := slugPattern.ReplaceAllString(strings.ToLower(name), "-")
	return strings.Trim(s, "-")
}

func (s *shopService) CreateShop(ctx context.Context, userID string, req CreateShopRequest) (ShopResponse, error) {
	slug := req.Slug
	if slug == "" {
		slug = slugify(req.Name)
	}
	if slug == "" {
		return ShopResponse{}, fmt.Errorf("cannot derive a slug from shop name '%s'", req.Name)
	}

	if _, err := s.shopRepo.FindBySlug(ctx, slug); err == nil {
		return ShopResponse{}, fmt.Errorf("a shop with slug '%s' already exists", slug)
	}

	shop := model.Shop{
		Name:        req.Name,
		Slug:        slug,
		Description: req.Description,
		LogoURL:     req.LogoURL,
		IsActive:    true,
	}

	if req.OwnerID != "" {
		owner, err := s.userRepo.GetByID(ctx, req.OwnerID)
		if err != nil {
			return ShopResponse{}, fmt.Errorf("owner %s not found", req.OwnerID)
		}
		if owner.Role != model.RoleMerchant {
			return ShopResponse{}, fmt.Errorf("shop owner must have the merchant role")
		}
		shop.OwnerID = &owner.ID
	} else if uid := parseUserID(userID); uid != nil {
		shop.OwnerID = uid
	}

	if err := s.shopRepo.Create(ctx, &shop); err != nil {
		return ShopResponse{}, fmt.Errorf("failed to create shop: %w", err)
	}

	s.writeAudit(ctx, userID, model.ActionCreateShop, fmt.Sprintf("%d", shop.ShopID), shop.Name, req)
	ws.BroadcastEvent(s.hub, "shop_created", map[string]interface{}{"shop_id": shop.ShopID, "name": shop.Name})

	return toShopResponse(shop), nil
}

func (s *shopService) UpdateShop(ctx context.Context, userID string, id int64, req UpdateShopRequest) (ShopResponse, error) {
	shop, err := s.shopRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ShopResponse{}, fmt.Errorf("shop not found")
		}
		return ShopResponse{}, fmt.Errorf("failed to fetch shop: %w", err)
	}

	if req.Name != nil && *req.Name != "" {
		shop.Name = *req.Name
	}
	if req.Description != nil {
		shop.Description = *req.Description
	}
	if req.LogoURL != nil {
		shop.LogoURL = *req.LogoURL
	}
	if req.IsActive != nil {
		shop.IsActive = *req.IsActive
	}
	if req.OwnerID != nil {
		if *req.OwnerID == "" {
			shop.OwnerID = nil
		} else {
			owner, err := s.userRepo.GetByID(ctx, *req.OwnerID)
			if err != nil {
				return ShopResponse{}, fmt.Errorf("owner %s not found", *req.OwnerID)
			}
			if owner.Role != model.RoleMerchant {
				return ShopResponse{}, fmt.Errorf("shop owner must have the merchant role")
			}
			shop.OwnerID = &owner.ID
		}
	}

	if err := s.shopRepo.Update(ctx, shop); err != nil {
		return ShopResponse{}, fmt.Errorf("failed to update shop: %w", err)
	}

	// Ownership may have changed; drop the cached owner
	middleware.ClearShopOwnerCache(shop.ShopID)

	s.writeAudit(ctx, userID, model.ActionUpdateShop, fmt.Sprintf("%d", shop.ShopID), shop.Name, req)
	ws.BroadcastEvent(s.hub, "shop_updated", map[string]interface{}{"shop_id": shop.ShopID})

	return toShopResponse(*shop), nil
}

func (s *shopService) DeleteShop(ctx context.Context, userID string, id int64) error {
	shop, err := s.shopRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("shop not found")
		}
		return fmt.Errorf("failed to fetch shop: %w", err)
	}

	if err := s.shopRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete shop: %w", err)
	}

	middleware.ClearShopOwnerCache(id)

	s.writeAudit(ctx, userID, model.ActionDeleteShop, fmt.Sprintf("%d", id), shop.Name, map[string]interface{}{"deleted_id": id})
	ws.BroadcastEvent(s.hub, "shop_deleted", map[string]interface{}{"shop_id": id})

	return nil
}

func (s *shopService) GetShop(ctx context.Context, id int64) (ShopResponse, error) {
	shop, err := s.shopRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ShopResponse{}, fmt.Errorf("shop not found")
		}
		return ShopResponse{}, fmt.Errorf("failed to fetch shop: %w", err)
	}
	return toShopResponse(*shop), nil
}

func (s *shopService) GetShopBySlug(ctx context.Context, slug string) (ShopResponse, error) {
	shop, err := s.shopRepo.FindBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ShopResponse{}, fmt.Errorf("shop not found")
		}
		return ShopResponse{}, fmt.Errorf("failed to fetch shop: %w", err)
	}
	return toShopResponse(*shop), nil
}

func (s *shopService) ListShops(ctx context.Context, activeOnly bool, search string, page, limit int) ([]ShopResponse, int64, error) {
	shops, total, err := s.shopRepo.List(ctx, activeOnly, search, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch shops: %w", err)
	}

	res := make([]ShopResponse, 0, len(shops))
	for _, shop := range shops {
		res = append(res, toShopResponse(shop))
	}
	return res, total, nil
}

func (s *shopService) writeAudit(ctx context.Context, userID, action, entityID, entityName string, details interface{}) {
	writeAuditLog(ctx, s.auditRepo, userID, action, entityID, entityName, details)
}

func toShopResponse(shop model.Shop) ShopResponse {
	resp := ShopResponse{
		ShopID:      shop.ShopID,
		Name:        shop.Name,
		Slug:        shop.Slug,
		Description: shop.Description,
		LogoURL:     shop.LogoURL,
		IsActive:    shop.IsActive,
		CreatedAt:   shop.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   shop.UpdatedAt.Format(time.RFC3339),
	}
	if shop.OwnerID != nil {
		id := shop.OwnerID.String()
		resp.OwnerID = &id
	}
	return resp
}
