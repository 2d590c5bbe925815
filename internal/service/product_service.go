package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"marketplace/internal/model"
	"marketplace/internal/repository"
	ws "marketplace/internal/websocket"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type CreateProductRequest struct {
	CategoryID   int64  `json:"category_id" binding:"required,min=1"`
	BrandID      *int64 `json:"brand_id"`
	SKU          string `json:"sku" binding:"required,min=1,max=50"`
	Name         string `json:"name" binding:"required,min=1,max=255"`
	Description  string `json:"description"`
	CostPrice    string `json:"cost_price" binding:"required"`
	SellingPrice string `json:"selling_price" binding:"required"` // GST-inclusive
	DiscountPct  string `json:"discount_pct"`
	SpecialPrice string `json:"special_price"`
	SpecialStart string `json:"special_start"` // YYYY-MM-DD
	SpecialEnd   string `json:"special_end"`
	StockQty     int    `json:"stock_qty" binding:"min=0"`
	IsPublished  bool   `json:"is_published"`
}

type UpdateProductRequest struct {
	CategoryID   *int64  `json:"category_id"`
	BrandID      *int64  `json:"brand_id"` // Zero clears the brand
	Name         *string `json:"name"`
	Description  *string `json:"description"`
	CostPrice    *string `json:"cost_price"`
	SellingPrice *string `json:"selling_price"`
	DiscountPct  *string `json:"discount_pct"`
	SpecialPrice *string `json:"special_price"` // Empty string clears the special price
	SpecialStart *string `json:"special_start"`
	SpecialEnd   *string `json:"special_end"`
	IsPublished  *bool   `json:"is_published"`
	IsActive     *bool   `json:"is_active"`
}

type AdjustStockRequest struct {
	Delta  int    `json:"delta" binding:"required"`
	Reason string `json:"reason"`
}

type ProductResponse struct {
	ProductID    int64   `json:"product_id"`
	ShopID       int64   `json:"shop_id"`
	CategoryID   int64   `json:"category_id"`
	BrandID      *int64  `json:"brand_id"`
	SKU          string  `json:"sku"`
	Name         string  `json:"name"`
	Description  string  `json:"description"`
	CostPrice    string  `json:"cost_price"`
	SellingPrice string  `json:"selling_price"`
	DiscountPct  string  `json:"discount_pct"`
	SpecialPrice *string `json:"special_price"`
	SpecialStart *string `json:"special_start"`
	SpecialEnd   *string `json:"special_end"`
	ListedPrice  string  `json:"listed_price"` // Price in effect now, GST-inclusive
	OnSpecial    bool    `json:"on_special"`
	StockQty     int     `json:"stock_qty"`
	IsPublished  bool    `json:"is_published"`
	IsActive     bool    `json:"is_active"`
	CreatedAt    string  `json:"created_at"`
	UpdatedAt    string  `json:"updated_at"`
}

// TaxQuoteResponse is the GST breakdown of a product's current listed price.
type TaxQuoteResponse struct {
	ProductID         int64  `json:"product_id"`
	ListedPrice       string `json:"listed_price"`
	OnSpecial         bool   `json:"on_special"`
	RuleID            *int64 `json:"rule_id"`
	RuleName          string `json:"rule_name,omitempty"`
	GSTRatePercentage string `json:"gst_rate_percentage"`
	BasePrice         string `json:"base_price"`
	GSTAmount         string `json:"gst_amount"`
}

type ProductService interface {
	CreateProduct(ctx context.Context, userID string, shopID int64, req CreateProductRequest) (ProductResponse, error)
	UpdateProduct(ctx context.Context, userID string, shopID, id int64, req UpdateProductRequest) (ProductResponse, error)
	DeleteProduct(ctx context.Context, userID string, shopID, id int64) error
	GetProduct(ctx context.Context, shopID, id int64) (ProductResponse, error)
	ListProducts(ctx context.Context, shopID int64, categoryID *int64, publishedOnly bool, search string, page, limit int) ([]ProductResponse, int64, error)
	AdjustStock(ctx context.Context, userID string, shopID, id int64, req AdjustStockRequest) (ProductResponse, error)
	GetTaxQuote(ctx context.Context, shopID, id int64) (TaxQuoteResponse, error)
}

type productService struct {
	productRepo  repository.ProductRepository
	categoryRepo repository.CategoryRepository
	brandRepo    repository.BrandRepository
	gstService   GSTService
	auditRepo    repository.AuditRepository
	hub          *ws.Hub
	now          func() time.Time
}

func NewProductService(
	productRepo repository.ProductRepository,
	categoryRepo repository.CategoryRepository,
	brandRepo repository.BrandRepository,
	gstService GSTService,
	auditRepo repository.AuditRepository,
	hub *ws.Hub,
) ProductService {
	return &productService{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		brandRepo:    brandRepo,
		gstService:   gstService,
		auditRepo:    auditRepo,
		hub:          hub,
		now:          time.Now,
	}
}

func (s *productService) CreateProduct(ctx context.Context, userID string, shopID int64, req CreateProductRequest) (ProductResponse, error) {
	if _, err := s.categoryRepo.FindByIDAndShop(ctx, req.CategoryID, shopID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ProductResponse{}, fmt.Errorf("category %d not found in shop %d", req.CategoryID, shopID)
		}
		return ProductResponse{}, fmt.Errorf("failed to verify category: %w", err)
	}

	if req.BrandID != nil {
		if err := s.verifyBrand(ctx, *req.BrandID, shopID); err != nil {
			return ProductResponse{}, err
		}
	}

	if _, err := s.productRepo.FindBySKU(ctx, req.SKU); err == nil {
		return ProductResponse{}, fmt.Errorf("a product with SKU '%s' already exists", req.SKU)
	}

	cost, err := parseNonNegativePrice(req.CostPrice, "cost_price")
	if err != nil {
		return ProductResponse{}, err
	}
	selling, err := parseNonNegativePrice(req.SellingPrice, "selling_price")
	if err != nil {
		return ProductResponse{}, err
	}

	discount := decimal.Zero
	if req.DiscountPct != "" {
		discount, err = parsePercentage(req.DiscountPct, "discount_pct")
		if err != nil {
			return ProductResponse{}, err
		}
	}

	product := model.Product{
		ShopID:       shopID,
		CategoryID:   req.CategoryID,
		BrandID:      req.BrandID,
		SKU:          req.SKU,
		Name:         req.Name,
		Description:  req.Description,
		CostPrice:    cost,
		SellingPrice: selling,
		DiscountPct:  discount,
		StockQty:     req.StockQty,
		IsPublished:  req.IsPublished,
		IsActive:     true,
	}

	if req.SpecialPrice != "" {
		special, err := parseNonNegativePrice(req.SpecialPrice, "special_price")
		if err != nil {
			return ProductResponse{}, err
		}
		product.SpecialPrice = &special

		product.SpecialStart, err = parseOptionalDate(req.SpecialStart, "special_start")
		if err != nil {
			return ProductResponse{}, err
		}
		product.SpecialEnd, err = parseOptionalDate(req.SpecialEnd, "special_end")
		if err != nil {
			return ProductResponse{}, err
		}
		if product.SpecialStart != nil && product.SpecialEnd != nil && product.SpecialEnd.Before(*product.SpecialStart) {
			return ProductResponse{}, fmt.Errorf("special_end must not be before special_start")
		}
	}

	if err := s.productRepo.Create(ctx, &product); err != nil {
		return ProductResponse{}, fmt.Errorf("failed to create product: %w", err)
	}

	s.writeAudit(ctx, userID, model.ActionCreateProduct, fmt.Sprintf("%d", product.ProductID), product.Name, req)
	ws.BroadcastEvent(s.hub, "product_created", map[string]interface{}{"product_id": product.ProductID, "shop_id": shopID})

	return s.toProductResponse(product), nil
}

func (s *productService) UpdateProduct(ctx context.Context, userID string, shopID, id int64, req UpdateProductRequest) (ProductResponse, error) {
	product, err := s.findInShop(ctx, shopID, id)
	if err != nil {
		return ProductResponse{}, err
	}

	if req.CategoryID != nil && *req.CategoryID != product.CategoryID {
		if _, err := s.categoryRepo.FindByIDAndShop(ctx, *req.CategoryID, shopID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ProductResponse{}, fmt.Errorf("category %d not found in shop %d", *req.CategoryID, shopID)
			}
			return ProductResponse{}, fmt.Errorf("failed to verify category: %w", err)
		}
		product.CategoryID = *req.CategoryID
	}

	if req.BrandID != nil {
		if *req.BrandID == 0 {
			product.BrandID = nil
		} else {
			if err := s.verifyBrand(ctx, *req.BrandID, shopID); err != nil {
				return ProductResponse{}, err
			}
			product.BrandID = req.BrandID
		}
	}

	if req.Name != nil && *req.Name != "" {
		product.Name = *req.Name
	}
	if req.Description != nil {
		product.Description = *req.Description
	}

	if req.CostPrice != nil {
		cost, err := parseNonNegativePrice(*req.CostPrice, "cost_price")
		if err != nil {
			return ProductResponse{}, err
		}
		product.CostPrice = cost
	}
	if req.SellingPrice != nil {
		selling, err := parseNonNegativePrice(*req.SellingPrice, "selling_price")
		if err != nil {
			return ProductResponse{}, err
		}
		product.SellingPrice = selling
	}
	if req.DiscountPct != nil {
		discount, err := parsePercentage(*req.DiscountPct, "discount_pct")
		if err != nil {
			return ProductResponse{}, err
		}
		product.DiscountPct = discount
	}

	if req.SpecialPrice != nil {
		if *req.SpecialPrice == "" {
			product.SpecialPrice = nil
			product.SpecialStart = nil
			product.SpecialEnd = nil
		} else {
			special, err := parseNonNegativePrice(*req.SpecialPrice, "special_price")
			if err != nil {
				return ProductResponse{}, err
			}
			product.SpecialPrice = &special
		}
	}
	if req.SpecialStart != nil {
		d, err := parseOptionalDate(*req.SpecialStart, "special_start")
		if err != nil {
			return ProductResponse{}, err
		}
		product.SpecialStart = d
	}
	if req.SpecialEnd != nil {
		d, err := parseOptionalDate(*req.SpecialEnd, "special_end")
		if err != nil {
			return ProductResponse{}, err
		}
		product.SpecialEnd = d
	}
	if product.SpecialStart != nil && product.SpecialEnd != nil && product.SpecialEnd.Before(*product.SpecialStart) {
		return ProductResponse{}, fmt.Errorf("special_end must not be before special_start")
	}

	if req.IsPublished != nil {
		product.IsPublished = *req.IsPublished
	}
	if req.IsActive != nil {
		product.IsActive = *req.IsActive
	}

	if err := s.productRepo.Update(ctx, product); err != nil {
		return ProductResponse{}, fmt.Errorf("failed to update product: %w", err)
	}

	s.writeAudit(ctx, userID, model.ActionUpdateProduct, fmt.Sprintf("%d", product.ProductID), product.Name, req)
	ws.BroadcastEvent(s.hub, "product_updated", map[string]interface{}{"product_id": product.ProductID, "shop_id": shopID})

	return s.toProductResponse(*product), nil
}

func (s *productService) DeleteProduct(ctx context.Context, userID string, shopID, id int64) error {
	product, err := s.findInShop(ctx, shopID, id)
	if err != nil {
		return err
	}

	if err := s.productRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}

	s.writeAudit(ctx, userID, model.ActionDeleteProduct, fmt.Sprintf("%d", id), product.Name, map[string]interface{}{"deleted_id": id})
	ws.BroadcastEvent(s.hub, "product_deleted", map[string]interface{}{"product_id": id, "shop_id": shopID})

	return nil
}

func (s *productService) GetProduct(ctx context.Context, shopID, id int64) (ProductResponse, error) {
	product, err := s.findInShop(ctx, shopID, id)
	if err != nil {
		return ProductResponse{}, err
	}
	return s.toProductResponse(*product), nil
}

func (s *productService) ListProducts(ctx context.Context, shopID int64, categoryID *int64, publishedOnly bool, search string, page, limit int) ([]ProductResponse, int64, error) {
	products, total, err := s.productRepo.List(ctx, shopID, categoryID, publishedOnly, search, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch products: %w", err)
	}

	res := make([]ProductResponse, 0, len(products))
	for _, p := range products {
		res = append(res, s.toProductResponse(p))
	}
	return res, total, nil
}

func (s *productService) AdjustStock(ctx context.Context, userID string, shopID, id int64, req AdjustStockRequest) (ProductResponse, error) {
	product, err := s.findInShop(ctx, shopID, id)
	if err != nil {
		return ProductResponse{}, err
	}

	newQty := product.StockQty + req.Delta
	if newQty < 0 {
		return ProductResponse{}, fmt.Errorf("stock cannot go below zero (current %d, delta %d)", product.StockQty, req.Delta)
	}

	if err := s.productRepo.UpdateStock(ctx, id, newQty); err != nil {
		return ProductResponse{}, fmt.Errorf("failed to adjust stock: %w", err)
	}
	product.StockQty = newQty

	s.writeAudit(ctx, userID, model.ActionUpdateProduct, fmt.Sprintf("%d", id), product.Name, map[string]interface{}{
		"stock_delta": req.Delta,
		"stock_qty":   newQty,
		"reason":      req.Reason,
	})
	ws.BroadcastEvent(s.hub, "stock_updated", map[string]interface{}{"product_id": id, "shop_id": shopID, "stock_qty": newQty})

	return s.toProductResponse(*product), nil
}

func (s *productService) GetTaxQuote(ctx context.Context, shopID, id int64) (TaxQuoteResponse, error) {
	product, err := s.findInShop(ctx, shopID, id)
	if err != nil {
		return TaxQuoteResponse{}, err
	}

	listed, onSpecial := product.CurrentListedPrice(s.now())

	rule, err := s.gstService.FindApplicableRule(ctx, shopID, product.CategoryID, listed)
	if err != nil {
		return TaxQuoteResponse{}, fmt.Errorf("failed to resolve GST rule: %w", err)
	}

	rate := decimal.Zero
	quote := TaxQuoteResponse{
		ProductID:   product.ProductID,
		ListedPrice: listed.StringFixed(2),
		OnSpecial:   onSpecial,
	}
	if rule != nil {
		rate = rule.GSTRatePercentage
		quote.RuleID = &rule.ID
		quote.RuleName = rule.Name
	}

	base, gst := SplitInclusivePrice(listed, rate)
	quote.GSTRatePercentage = rate.StringFixed(2)
	quote.BasePrice = base.StringFixed(2)
	quote.GSTAmount = gst.StringFixed(2)

	return quote, nil
}

func (s *productService) findInShop(ctx context.Context, shopID, id int64) (*model.Product, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("product not found")
		}
		return nil, fmt.Errorf("failed to fetch product: %w", err)
	}
	if product.ShopID != shopID {
		return nil, fmt.Errorf("product not found")
	}
	return product, nil
}

func (s *productService) verifyBrand(ctx context.Context, brandID, shopID int64) error {
	brand, err := s.brandRepo.FindByID(ctx, brandID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("brand %d not found", brandID)
		}
		return fmt.Errorf("failed to verify brand: %w", err)
	}
	if brand.ShopID != shopID {
		return fmt.Errorf("brand %d does not belong to shop %d", brandID, shopID)
	}
	return nil
}

func (s *productService) writeAudit(ctx context.Context, userID, action, entityID, entityName string, details interface{}) {
	writeAuditLog(ctx, s.auditRepo, userID, action, entityID, entityName, details)
}

func parseNonNegativePrice(value, field string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid %s: %w", field, err)
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("%s must be non-negative", field)
	}
	return d, nil
}

func parsePercentage(value, field string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid %s: %w", field, err)
	}
	if d.IsNegative() || d.GreaterThan(decimal.NewFromInt(100)) {
		return decimal.Zero, fmt.Errorf("%s must be between 0 and 100", field)
	}
	return d, nil
}

func (s *productService) toProductResponse(p model.Product) ProductResponse {
	listed, onSpecial := p.CurrentListedPrice(s.now())
	resp := ProductResponse{
		ProductID:    p.ProductID,
		ShopID:       p.ShopID,
		CategoryID:   p.CategoryID,
		BrandID:      p.BrandID,
		SKU:          p.SKU,
		Name:         p.Name,
		Description:  p.Description,
		CostPrice:    p.CostPrice.StringFixed(2),
		SellingPrice: p.SellingPrice.StringFixed(2),
		DiscountPct:  p.DiscountPct.StringFixed(2),
		ListedPrice:  listed.StringFixed(2),
		OnSpecial:    onSpecial,
		StockQty:     p.StockQty,
		IsPublished:  p.IsPublished,
		IsActive:     p.IsActive,
		CreatedAt:    p.CreatedAt.Format(time.RFC3339),
		UpdatedAt:    p.UpdatedAt.Format(time.RFC3339),
	}
	if p.SpecialPrice != nil {
		v := p.SpecialPrice.StringFixed(2)
		resp.SpecialPrice = &v
	}
	if p.SpecialStart != nil {
		d := p.SpecialStart.Format("2006-01-02")
		resp.SpecialStart = &d
	}
	if p.SpecialEnd != nil {
		d := p.SpecialEnd.Format("2006-01-02")
		resp.SpecialEnd = &d
	}
	return resp
}
