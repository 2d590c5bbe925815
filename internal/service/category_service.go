package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"marketplace/internal/model"
	"marketplace/internal/repository"
	ws "marketplace/internal/websocket"

	"gorm.io/gorm"
)

type CreateCategoryRequest struct {
	Name      string `json:"name" binding:"required,min=1,max=255"`
	Slug      string `json:"slug"`
	ParentID  *int64 `json:"parent_id"`
	SortOrder int    `json:"sort_order"`
	IsActive  *bool  `json:"is_active"`
}

type UpdateCategoryRequest struct {
	Name      *string `json:"name"`
	ParentID  *int64  `json:"parent_id"` // Zero reparents to root
	SortOrder *int    `json:"sort_order"`
	IsActive  *bool   `json:"is_active"`
}

type CategoryResponse struct {
	CategoryID int64               `json:"category_id"`
	ShopID     int64               `json:"shop_id"`
	Name       string              `json:"name"`
	Slug       string              `json:"slug"`
	ParentID   *int64              `json:"parent_id"`
	SortOrder  int                 `json:"sort_order"`
	IsActive   bool                `json:"is_active"`
	CreatedAt  string              `json:"created_at"`
	Children   []*CategoryResponse `json:"children,omitempty"`
}

type CategoryService interface {
	CreateCategory(ctx context.Context, userID string, shopID int64, req CreateCategoryRequest) (CategoryResponse, error)
	UpdateCategory(ctx context.Context, userID string, shopID, id int64, req UpdateCategoryRequest) (CategoryResponse, error)
	DeleteCategory(ctx context.Context, userID string, shopID, id int64) error
	GetCategory(ctx context.Context, shopID, id int64) (CategoryResponse, error)
	GetCategoryTree(ctx context.Context, shopID int64) ([]*CategoryResponse, error)
}

type categoryService struct {
	categoryRepo repository.CategoryRepository
	shopRepo     repository.ShopRepository
	auditRepo    repository.AuditRepository
	hub          *ws.Hub
}

func NewCategoryService(categoryRepo repository.CategoryRepository, shopRepo repository.ShopRepository, auditRepo repository.AuditRepository, hub *ws.Hub) CategoryService {
	return &categoryService{categoryRepo: categoryRepo, shopRepo: shopRepo, auditRepo: auditRepo, hub: hub}
}

func (s *categoryService) CreateCategory(ctx context.Context, userID string, shopID int64, req CreateCategoryRequest) (CategoryResponse, error) {
	if _, err := s.shopRepo.FindByID(ctx, shopID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return CategoryResponse{}, fmt.Errorf("shop %d not found", shopID)
		}
		return CategoryResponse{}, fmt.Errorf("failed to verify shop: %w", err)
	}

	if req.ParentID != nil {
		if _, err := s.categoryRepo.FindByIDAndShop(ctx, *req.ParentID, shopID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return CategoryResponse{}, fmt.Errorf("parent category %d not found in shop %d", *req.ParentID, shopID)
			}
			return CategoryResponse{}, fmt.Errorf("failed to verify parent category: %w", err)
		}
	}

	slug := req.Slug
	if slug == "" {
		slug = slugify(req.Name)
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	category := model.Category{
		ShopID:    shopID,
		Name:      req.Name,
		Slug:      slug,
		ParentID:  req.ParentID,
		SortOrder: req.SortOrder,
		IsActive:  isActive,
	}

	if err := s.categoryRepo.Create(ctx, &category); err != nil {
		return CategoryResponse{}, fmt.Errorf("failed to create category: %w", err)
	}

	s.writeAudit(ctx, userID, model.ActionCreateCategory, fmt.Sprintf("%d", category.CategoryID), category.Name, req)
	ws.BroadcastEvent(s.hub, "category_created", map[string]interface{}{"category_id": category.CategoryID, "shop_id": shopID})

	return toCategoryResponse(category), nil
}

func (s *categoryService) UpdateCategory(ctx context.Context, userID string, shopID, id int64, req UpdateCategoryRequest) (CategoryResponse, error) {
	category, err := s.categoryRepo.FindByIDAndShop(ctx, id, shopID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return CategoryResponse{}, fmt.Errorf("category not found")
		}
		return CategoryResponse{}, fmt.Errorf("failed to fetch category: %w", err)
	}

	if req.Name != nil && *req.Name != "" {
		category.Name = *req.Name
		category.Slug = slugify(*req.Name)
	}

	if req.ParentID != nil {
		if *req.ParentID == 0 {
			category.ParentID = nil
		} else {
			if *req.ParentID == category.CategoryID {
				return CategoryResponse{}, fmt.Errorf("a category cannot be its own parent")
			}
			if _, err := s.categoryRepo.FindByIDAndShop(ctx, *req.ParentID, shopID); err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return CategoryResponse{}, fmt.Errorf("parent category %d not found in shop %d", *req.ParentID, shopID)
				}
				return CategoryResponse{}, fmt.Errorf("failed to verify parent category: %w", err)
			}
			ok, err := s.parentChainExcludes(ctx, *req.ParentID, category.CategoryID)
			if err != nil {
				return CategoryResponse{}, err
			}
			if !ok {
				return CategoryResponse{}, fmt.Errorf("reparenting would create a category cycle")
			}
			category.ParentID = req.ParentID
		}
	}

	if req.SortOrder != nil {
		category.SortOrder = *req.SortOrder
	}
	if req.IsActive != nil {
		category.IsActive = *req.IsActive
	}

	if err := s.categoryRepo.Update(ctx, category); err != nil {
		return CategoryResponse{}, fmt.Errorf("failed to update category: %w", err)
	}

	s.writeAudit(ctx, userID, model.ActionUpdateCategory, fmt.Sprintf("%d", category.CategoryID), category.Name, req)
	ws.BroadcastEvent(s.hub, "category_updated", map[string]interface{}{"category_id": category.CategoryID, "shop_id": shopID})

	return toCategoryResponse(*category), nil
}

// parentChainExcludes walks up from candidateParent and reports whether the
// chain reaches a root without passing through excluded.
func (s *categoryService) parentChainExcludes(ctx context.Context, candidateParent, excluded int64) (bool, error) {
	current := candidateParent
	for depth := 0; depth < maxLineageDepth; depth++ {
		if current == excluded {
			return false, nil
		}
		cat, err := s.categoryRepo.FindByID(ctx, current)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return true, nil
			}
			return false, fmt.Errorf("failed to verify category ancestry: %w", err)
		}
		if cat.ParentID == nil {
			return true, nil
		}
		current = *cat.ParentID
	}
	return false, fmt.Errorf("category ancestry deeper than %d levels", maxLineageDepth)
}

func (s *categoryService) DeleteCategory(ctx context.Context, userID string, shopID, id int64) error {
	category, err := s.categoryRepo.FindByIDAndShop(ctx, id, shopID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("category not found")
		}
		return fmt.Errorf("failed to fetch category: %w", err)
	}

	// A category stays while anything still hangs off it
	children, err := s.categoryRepo.CountChildren(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to count child categories: %w", err)
	}
	if children > 0 {
		return fmt.Errorf("category has %d child categories; move or delete them first", children)
	}

	products, err := s.categoryRepo.CountProducts(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to count products: %w", err)
	}
	if products > 0 {
		return fmt.Errorf("category has %d products; move or delete them first", products)
	}

	rules, err := s.categoryRepo.CountRules(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to count GST rules: %w", err)
	}
	if rules > 0 {
		return fmt.Errorf("category has %d GST rules attached; delete them first", rules)
	}

	if err := s.categoryRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}

	s.writeAudit(ctx, userID, model.ActionDeleteCategory, fmt.Sprintf("%d", id), category.Name, map[string]interface{}{"deleted_id": id})
	ws.BroadcastEvent(s.hub, "category_deleted", map[string]interface{}{"category_id": id, "shop_id": shopID})

	return nil
}

func (s *categoryService) GetCategory(ctx context.Context, shopID, id int64) (CategoryResponse, error) {
	category, err := s.categoryRepo.FindByIDAndShop(ctx, id, shopID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return CategoryResponse{}, fmt.Errorf("category not found")
		}
		return CategoryResponse{}, fmt.Errorf("failed to fetch category: %w", err)
	}
	return toCategoryResponse(*category), nil
}

func (s *categoryService) GetCategoryTree(ctx context.Context, shopID int64) ([]*CategoryResponse, error) {
	categories, err := s.categoryRepo.ListByShop(ctx, shopID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch categories: %w", err)
	}
	return buildCategoryTree(categories), nil
}

// buildCategoryTree links a flat category list into parent/child trees.
// Categories whose parent is missing from the set are lifted to the roots
// rather than dropped.
func buildCategoryTree(categories []model.Category) []*CategoryResponse {
	nodes := make(map[int64]*CategoryResponse, len(categories))
	for _, c := range categories {
		r := toCategoryResponse(c)
		nodes[c.CategoryID] = &r
	}

	var roots []*CategoryResponse
	for _, c := range categories {
		node := nodes[c.CategoryID]
		if c.ParentID != nil {
			if parent, ok := nodes[*c.ParentID]; ok {
				parent.Children = append(parent.Children, node)
				continue
			}
		}
		roots = append(roots, node)
	}

	var sortLevel func(level []*CategoryResponse)
	sortLevel = func(level []*CategoryResponse) {
		sort.SliceStable(level, func(i, j int) bool {
			if level[i].SortOrder != level[j].SortOrder {
				return level[i].SortOrder < level[j].SortOrder
			}
			return level[i].CategoryID < level[j].CategoryID
		})
		for _, n := range level {
			sortLevel(n.Children)
		}
	}
	sortLevel(roots)

	return roots
}

func (s *categoryService) writeAudit(ctx context.Context, userID, action, entityID, entityName string, details interface{}) {
	writeAuditLog(ctx, s.auditRepo, userID, action, entityID, entityName, details)
}

func toCategoryResponse(c model.Category) CategoryResponse {
	return CategoryResponse{
		CategoryID: c.CategoryID,
		ShopID:     c.ShopID,
		Name:       c.Name,
		Slug:       c.Slug,
		ParentID:   c.ParentID,
		SortOrder:  c.SortOrder,
		IsActive:   c.IsActive,
		CreatedAt:  c.CreatedAt.Format(time.RFC3339),
	}
}
