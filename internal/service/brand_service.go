package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"marketplace/internal/model"
	"marketplace/internal/repository"
	ws "marketplace/internal/websocket"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CreateBrandRequest struct {
	CategoryID int64  `json:"category_id" binding:"required,min=1"`
	Name       string `json:"name" binding:"required,min=1,max=100"`
	LogoURL    string `json:"logo_url"`
}

type UpdateBrandRequest struct {
	CategoryID *int64  `json:"category_id"`
	Name       *string `json:"name"`
	LogoURL    *string `json:"logo_url"`
	IsActive   *bool   `json:"is_active"`
}

type SubmitBrandRequestRequest struct {
	CategoryID int64  `json:"category_id" binding:"required,min=1"`
	Name       string `json:"name" binding:"required,min=1,max=100"`
	Reason     string `json:"reason"`
}

type ReviewBrandRequestRequest struct {
	Note string `json:"note"`
}

type BrandResponse struct {
	BrandID    int64  `json:"brand_id"`
	ShopID     int64  `json:"shop_id"`
	CategoryID int64  `json:"category_id"`
	Name       string `json:"name"`
	Slug       string `json:"slug"`
	LogoURL    string `json:"logo_url"`
	IsActive   bool   `json:"is_active"`
	CreatedAt  string `json:"created_at"`
}

type BrandRequestResponse struct {
	ID          string `json:"id"`
	ShopID      int64  `json:"shop_id"`
	CategoryID  int64  `json:"category_id"`
	Name        string `json:"name"`
	Reason      string `json:"reason"`
	Status      string `json:"status"`
	ReviewNote  string `json:"review_note"`
	RequestedBy string `json:"requested_by,omitempty"`
	ReviewedBy  string `json:"reviewed_by,omitempty"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

type BrandService interface {
	CreateBrand(ctx context.Context, userID string, shopID int64, req CreateBrandRequest) (BrandResponse, error)
	UpdateBrand(ctx context.Context, userID string, shopID, id int64, req UpdateBrandRequest) (BrandResponse, error)
	DeleteBrand(ctx context.Context, userID string, shopID, id int64) error
	ListBrands(ctx context.Context, shopID int64, categoryID *int64) ([]BrandResponse, error)

	SubmitRequest(ctx context.Context, userID string, shopID int64, req SubmitBrandRequestRequest) (BrandRequestResponse, error)
	ListRequests(ctx context.Context, status string, page, limit int) ([]BrandRequestResponse, int64, error)
	ApproveRequest(ctx context.Context, userID string, requestID string, req ReviewBrandRequestRequest) (BrandRequestResponse, error)
	RejectRequest(ctx context.Context, userID string, requestID string, req ReviewBrandRequestRequest) (BrandRequestResponse, error)
}

type brandService struct {
	brandRepo    repository.BrandRepository
	categoryRepo repository.CategoryRepository
	auditRepo    repository.AuditRepository
	txManager    repository.TransactionManager
	hub          *ws.Hub
}

func NewBrandService(
	brandRepo repository.BrandRepository,
	categoryRepo repository.CategoryRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	hub *ws.Hub,
) BrandService {
	return &brandService{
		brandRepo:    brandRepo,
		categoryRepo: categoryRepo,
		auditRepo:    auditRepo,
		txManager:    txManager,
		hub:          hub,
	}
}

func (s *brandService) CreateBrand(ctx context.Context, userID string, shopID int64, req CreateBrandRequest) (BrandResponse, error) {
	if _, err := s.categoryRepo.FindByIDAndShop(ctx, req.CategoryID, shopID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return BrandResponse{}, fmt.Errorf("category %d not found in shop %d", req.CategoryID, shopID)
		}
		return BrandResponse{}, fmt.Errorf("failed to verify category: %w", err)
	}

	brand := model.Brand{
		ShopID:     shopID,
		CategoryID: req.CategoryID,
		Name:       req.Name,
		Slug:       slugify(req.Name),
		LogoURL:    req.LogoURL,
		IsActive:   true,
	}

	if err := s.brandRepo.Create(ctx, &brand); err != nil {
		return BrandResponse{}, fmt.Errorf("failed to create brand: %w", err)
	}

	writeAuditLog(ctx, s.auditRepo, userID, model.ActionCreateBrand, fmt.Sprintf("%d", brand.BrandID), brand.Name, req)
	ws.BroadcastEvent(s.hub, "brand_created", map[string]interface{}{"brand_id": brand.BrandID, "shop_id": shopID})

	return toBrandResponse(brand), nil
}

func (s *brandService) UpdateBrand(ctx context.Context, userID string, shopID, id int64, req UpdateBrandRequest) (BrandResponse, error) {
	brand, err := s.findBrandInShop(ctx, shopID, id)
	if err != nil {
		return BrandResponse{}, err
	}

	if req.CategoryID != nil && *req.CategoryID != brand.CategoryID {
		if _, err := s.categoryRepo.FindByIDAndShop(ctx, *req.CategoryID, shopID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return BrandResponse{}, fmt.Errorf("category %d not found in shop %d", *req.CategoryID, shopID)
			}
			return BrandResponse{}, fmt.Errorf("failed to verify category: %w", err)
		}
		brand.CategoryID = *req.CategoryID
	}

	if req.Name != nil && *req.Name != "" {
		brand.Name = *req.Name
		brand.Slug = slugify(*req.Name)
	}
	if req.LogoURL != nil {
		brand.LogoURL = *req.LogoURL
	}
	if req.IsActive != nil {
		brand.IsActive = *req.IsActive
	}

	if err := s.brandRepo.Update(ctx, brand); err != nil {
		return BrandResponse{}, fmt.Errorf("failed to update brand: %w", err)
	}

	return toBrandResponse(*brand), nil
}

func (s *brandService) DeleteBrand(ctx context.Context, userID string, shopID, id int64) error {
	if _, err := s.findBrandInShop(ctx, shopID, id); err != nil {
		return err
	}
	if err := s.brandRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete brand: %w", err)
	}
	return nil
}

func (s *brandService) ListBrands(ctx context.Context, shopID int64, categoryID *int64) ([]BrandResponse, error) {
	brands, err := s.brandRepo.ListByShop(ctx, shopID, categoryID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch brands: %w", err)
	}

	res := make([]BrandResponse, 0, len(brands))
	for _, b := range brands {
		res = append(res, toBrandResponse(b))
	}
	return res, nil
}

func (s *brandService) SubmitRequest(ctx context.Context, userID string, shopID int64, req SubmitBrandRequestRequest) (BrandRequestResponse, error) {
	if _, err := s.categoryRepo.FindByIDAndShop(ctx, req.CategoryID, shopID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return BrandRequestResponse{}, fmt.Errorf("category %d not found in shop %d", req.CategoryID, shopID)
		}
		return BrandRequestResponse{}, fmt.Errorf("failed to verify category: %w", err)
	}

	request := model.BrandRequest{
		ShopID:      shopID,
		CategoryID:  req.CategoryID,
		Name:        req.Name,
		Reason:      req.Reason,
		Status:      model.BrandRequestPending,
		RequestedBy: parseUserID(userID),
	}

	if err := s.brandRepo.CreateRequest(ctx, &request); err != nil {
		return BrandRequestResponse{}, fmt.Errorf("failed to submit brand request: %w", err)
	}

	writeAuditLog(ctx, s.auditRepo, userID, model.ActionCreateBrandRequest, request.ID.String(), request.Name, req)
	ws.BroadcastEvent(s.hub, "brand_request_submitted", map[string]interface{}{"request_id": request.ID.String(), "shop_id": shopID})

	return toBrandRequestResponse(request), nil
}

func (s *brandService) ListRequests(ctx context.Context, status string, page, limit int) ([]BrandRequestResponse, int64, error) {
	requests, total, err := s.brandRepo.ListRequests(ctx, status, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch brand requests: %w", err)
	}

	res := make([]BrandRequestResponse, 0, len(requests))
	for _, r := range requests {
		res = append(res, toBrandRequestResponse(r))
	}
	return res, total, nil
}

// ApproveRequest flips a pending request to APPROVED and creates the brand in
// the same transaction so a failed brand insert never strands an approval.
func (s *brandService) ApproveRequest(ctx context.Context, userID string, requestID string, req ReviewBrandRequestRequest) (BrandRequestResponse, error) {
	id, err := uuid.Parse(requestID)
	if err != nil {
		return BrandRequestResponse{}, fmt.Errorf("invalid request id")
	}

	request, err := s.brandRepo.FindRequestByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return BrandRequestResponse{}, fmt.Errorf("brand request not found")
		}
		return BrandRequestResponse{}, fmt.Errorf("failed to fetch brand request: %w", err)
	}

	if request.Status != model.BrandRequestPending {
		return BrandRequestResponse{}, fmt.Errorf("brand request is already %s", request.Status)
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		request.Status = model.BrandRequestApproved
		request.ReviewNote = req.Note
		request.ReviewedBy = parseUserID(userID)
		if err := s.brandRepo.UpdateRequest(txCtx, request); err != nil {
			return fmt.Errorf("failed to update brand request: %w", err)
		}

		brand := model.Brand{
			ShopID:     request.ShopID,
			CategoryID: request.CategoryID,
			Name:       request.Name,
			Slug:       slugify(request.Name),
			IsActive:   true,
		}
		if err := s.brandRepo.Create(txCtx, &brand); err != nil {
			return fmt.Errorf("failed to create brand from request: %w", err)
		}

		return nil
	})
	if err != nil {
		return BrandRequestResponse{}, err
	}

	writeAuditLog(ctx, s.auditRepo, userID, model.ActionApproveBrandRequest, request.ID.String(), request.Name, req)
	ws.BroadcastEvent(s.hub, "brand_request_approved", map[string]interface{}{"request_id": request.ID.String(), "shop_id": request.ShopID})

	return toBrandRequestResponse(*request), nil
}

func (s *brandService) RejectRequest(ctx context.Context, userID string, requestID string, req ReviewBrandRequestRequest) (BrandRequestResponse, error) {
	id, err := uuid.Parse(requestID)
	if err != nil {
		return BrandRequestResponse{}, fmt.Errorf("invalid request id")
	}

	request, err := s.brandRepo.FindRequestByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return BrandRequestResponse{}, fmt.Errorf("brand request not found")
		}
		return BrandRequestResponse{}, fmt.Errorf("failed to fetch brand request: %w", err)
	}

	if request.Status != model.BrandRequestPending {
		return BrandRequestResponse{}, fmt.Errorf("brand request is already %s", request.Status)
	}

	request.Status = model.BrandRequestRejected
	request.ReviewNote = req.Note
	request.ReviewedBy = parseUserID(userID)
	if err := s.brandRepo.UpdateRequest(ctx, request); err != nil {
		return BrandRequestResponse{}, fmt.Errorf("failed to update brand request: %w", err)
	}

	writeAuditLog(ctx, s.auditRepo, userID, model.ActionRejectBrandRequest, request.ID.String(), request.Name, req)
	ws.BroadcastEvent(s.hub, "brand_request_rejected", map[string]interface{}{"request_id": request.ID.String(), "shop_id": request.ShopID})

	return toBrandRequestResponse(*request), nil
}

func (s *brandService) findBrandInShop(ctx context.Context, shopID, id int64) (*model.Brand, error) {
	brand, err := s.brandRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("brand not found")
		}
		return nil, fmt.Errorf("failed to fetch brand: %w", err)
	}
	if brand.ShopID != shopID {
		return nil, fmt.Errorf("brand not found")
	}
	return brand, nil
}

func toBrandResponse(b model.Brand) BrandResponse {
	return BrandResponse{
		BrandID:    b.BrandID,
		ShopID:     b.ShopID,
		CategoryID: b.CategoryID,
		Name:       b.Name,
		Slug:       b.Slug,
		LogoURL:    b.LogoURL,
		IsActive:   b.IsActive,
		CreatedAt:  b.CreatedAt.Format(time.RFC3339),
	}
}

func toBrandRequestResponse(r model.BrandRequest) BrandRequestResponse {
	resp := BrandRequestResponse{
		ID:         r.ID.String(),
		ShopID:     r.ShopID,
		CategoryID: r.CategoryID,
		Name:       r.Name,
		Reason:     r.Reason,
		Status:     r.Status,
		ReviewNote: r.ReviewNote,
		CreatedAt:  r.CreatedAt.Format(time.RFC3339),
		UpdatedAt:  r.UpdatedAt.Format(time.RFC3339),
	}
	if r.RequestedBy != nil {
		resp.RequestedBy = r.RequestedBy.String()
	}
	if r.ReviewedBy != nil {
		resp.ReviewedBy = r.ReviewedBy.String()
	}
	return resp
}
