package repository

import (
	"context"

	"marketplace/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BrandRepository interface {
	Create(ctx context.Context, brand *model.Brand) error
	Update(ctx context.Context, brand *model.Brand) error
	Delete(ctx context.Context, id int64) error
	FindByID(ctx context.Context, id int64) (*model.Brand, error)
	ListByShop(ctx context.Context, shopID int64, categoryID *int64) ([]model.Brand, error)

	CreateRequest(ctx context.Context, req *model.BrandRequest) error
	UpdateRequest(ctx context.Context, req *model.BrandRequest) error
	FindRequestByID(ctx context.Context, id uuid.UUID) (*model.BrandRequest, error)
	ListRequests(ctx context.Context, status string, page, limit int) ([]model.BrandRequest, int64, error)
}

type brandRepository struct {
	db *gorm.DB
}

func NewBrandRepository(db *gorm.DB) BrandRepository {
	return &brandRepository{db: db}
}

func (r *brandRepository) Create(ctx context.Context, brand *model.Brand) error {
	return GetDB(ctx, r.db).Create(brand).Error
}

func (r *brandRepository) Update(ctx context.Context, brand *model.Brand) error {
	return GetDB(ctx, r.db).Save(brand).Error
}

func (r *brandRepository) Delete(ctx context.Context, id int64) error {
	return GetDB(ctx, r.db).Where("brand_id = ?", id).Delete(&model.Brand{}).Error
}

func (r *brandRepository) FindByID(ctx context.Context, id int64) (*model.Brand, error) {
	var brand model.Brand
	if err := GetDB(ctx, r.db).First(&brand, "brand_id = ?", id).Error; err != nil {
		return nil, err
	}
	return &brand, nil
}

func (r *brandRepository) ListByShop(ctx context.Context, shopID int64, categoryID *int64) ([]model.Brand, error) {
	var brands []model.Brand
	db := GetDB(ctx, r.db).Where("shop_id = ?", shopID)
	if categoryID != nil {
		db = db.Where("category_id = ?", *categoryID)
	}
	if err := db.Order("name asc").Find(&brands).Error; err != nil {
		return nil, err
	}
	return brands, nil
}

func (r *brandRepository) CreateRequest(ctx context.Context, req *model.BrandRequest) error {
	return GetDB(ctx, r.db).Create(req).Error
}

func (r *brandRepository) UpdateRequest(ctx context.Context, req *model.BrandRequest) error {
	return GetDB(ctx, r.db).Save(req).Error
}

func (r *brandRepository) FindRequestByID(ctx context.Context, id uuid.UUID) (*model.BrandRequest, error) {
	var req model.BrandRequest
	if err := GetDB(ctx, r.db).First(&req, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *brandRepository) ListRequests(ctx context.Context, status string, page, limit int) ([]model.BrandRequest, int64, error) {
	var requests []model.BrandRequest
	var total int64

	db := GetDB(ctx, r.db).Model(&model.BrandRequest{})
	if status != "" {
		db = db.Where("status = ?", status)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := db.Order("created_at desc").Offset(offset).Limit(limit).Find(&requests).Error; err != nil {
		return nil, 0, err
	}

	return requests, total, nil
}
