package repository

import (
	"context"
	"time"

	"marketplace/internal/model"

	"gorm.io/gorm"
)

type GSTRuleRepository interface {
	Create(ctx context.Context, rule *model.GSTRule) error
	Update(ctx context.Context, rule *model.GSTRule) error
	Delete(ctx context.Context, id int64) error
	FindByID(ctx context.Context, id int64) (*model.GSTRule, error)
	FindByNameAndShop(ctx context.Context, name string, shopID int64) (*model.GSTRule, error)
	List(ctx context.Context, shopID int64, categoryID *int64, isActive *bool, page, limit int) ([]model.GSTRule, int64, error)
	// FindCandidates returns active rules for the shop attached to any of the
	// given categories whose validity window contains the given day, ordered
	// by id descending (recency proxy, used as the tie-break).
	FindCandidates(ctx context.Context, shopID int64, categoryIDs []int64, day time.Time) ([]model.GSTRule, error)
}

type gstRuleRepository struct {
	db *gorm.DB
}

func NewGSTRuleRepository(db *gorm.DB) GSTRuleRepository {
	return &gstRuleRepository{db: db}
}

func (r *gstRuleRepository) Create(ctx context.Context, rule *model.GSTRule) error {
	return GetDB(ctx, r.db).Create(rule).Error
}

func (r *gstRuleRepository) Update(ctx context.Context, rule *model.GSTRule) error {
	return GetDB(ctx, r.db).Save(rule).Error
}

func (r *gstRuleRepository) Delete(ctx context.Context, id int64) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.GSTRule{}).Error
}

func (r *gstRuleRepository) FindByID(ctx context.Context, id int64) (*model.GSTRule, error) {
	var rule model.GSTRule
	if err := GetDB(ctx, r.db).First(&rule, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &rule, nil
}

func (r *gstRuleRepository) FindByNameAndShop(ctx context.Context, name string, shopID int64) (*model.GSTRule, error) {
	var rule model.GSTRule
	if err := GetDB(ctx, r.db).Where("name = ? AND shop_id = ?", name, shopID).First(&rule).Error; err != nil {
		return nil, err
	}
	return &rule, nil
}

func (r *gstRuleRepository) List(ctx context.Context, shopID int64, categoryID *int64, isActive *bool, page, limit int) ([]model.GSTRule, int64, error) {
	var rules []model.GSTRule
	var total int64

	db := GetDB(ctx, r.db).Model(&model.GSTRule{}).Where("shop_id = ?", shopID)
	if categoryID != nil {
		db = db.Where("category_id = ?", *categoryID)
	}
	if isActive != nil {
		db = db.Where("is_active = ?", *isActive)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := db.Order("name asc").Offset(offset).Limit(limit).Find(&rules).Error; err != nil {
		return nil, 0, err
	}

	return rules, total, nil
}

func (r *gstRuleRepository) FindCandidates(ctx context.Context, shopID int64, categoryIDs []int64, day time.Time) ([]model.GSTRule, error) {
	// start_date/end_date are DATE columns. Bind the calendar date rather
	// than the clock reading: a timestamp would be cast past midnight and
	// drop rules on their inclusive end day.
	onDay := day.Format("2006-01-02")

	var rules []model.GSTRule
	err := GetDB(ctx, r.db).
		Where("is_active = ?", true).
		Where("shop_id = ?", shopID).
		Where("category_id IN ?", categoryIDs).
		Where("(start_date IS NULL OR start_date <= ?)", onDay).
		Where("(end_date IS NULL OR end_date >= ?)", onDay).
		Order("id DESC").
		Find(&rules).Error
	if err != nil {
		return nil, err
	}
	return rules, nil
}
