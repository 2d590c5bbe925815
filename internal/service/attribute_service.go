package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"marketplace/internal/model"
	"marketplace/internal/repository"

	"gorm.io/gorm"
)

type CreateAttributeRequest struct {
	Name       string   `json:"name" binding:"required,min=1,max=100"`
	InputType  string   `json:"input_type" binding:"required,oneof=text number select multiselect boolean"`
	Options    []string `json:"options"`
	IsRequired bool     `json:"is_required"`
	SortOrder  int      `json:"sort_order"`
}

type UpdateAttributeRequest struct {
	Name       *string   `json:"name"`
	Options    *[]string `json:"options"`
	IsRequired *bool     `json:"is_required"`
	SortOrder  *int      `json:"sort_order"`
}

type AttributeResponse struct {
	AttributeID int64    `json:"attribute_id"`
	ShopID      int64    `json:"shop_id"`
	Name        string   `json:"name"`
	InputType   string   `json:"input_type"`
	Options     []string `json:"options"`
	IsRequired  bool     `json:"is_required"`
	SortOrder   int      `json:"sort_order"`
}

type AttributeService interface {
	CreateAttribute(ctx context.Context, shopID int64, req CreateAttributeRequest) (AttributeResponse, error)
	UpdateAttribute(ctx context.Context, shopID, id int64, req UpdateAttributeRequest) (AttributeResponse, error)
	DeleteAttribute(ctx context.Context, shopID, id int64) error
	ListAttributes(ctx context.Context, shopID int64) ([]AttributeResponse, error)
}

type attributeService struct {
	attributeRepo repository.AttributeRepository
	shopRepo      repository.ShopRepository
}

func NewAttributeService(attributeRepo repository.AttributeRepository, shopRepo repository.ShopRepository) AttributeService {
	return &attributeService{attributeRepo: attributeRepo, shopRepo: shopRepo}
}

// optionBearing reports whether the input type carries an options list
func optionBearing(inputType string) bool {
	return inputType == model.AttrInputSelect || inputType == model.AttrInputMultiselect
}

func (s *attributeService) CreateAttribute(ctx context.Context, shopID int64, req CreateAttributeRequest) (AttributeResponse, error) {
	if _, err := s.shopRepo.FindByID(ctx, shopID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return AttributeResponse{}, fmt.Errorf("shop %d not found", shopID)
		}
		return AttributeResponse{}, fmt.Errorf("failed to verify shop: %w", err)
	}

	if optionBearing(req.InputType) && len(req.Options) == 0 {
		return AttributeResponse{}, fmt.Errorf("options are required for %s attributes", req.InputType)
	}
	if !optionBearing(req.InputType) && len(req.Options) > 0 {
		return AttributeResponse{}, fmt.Errorf("options are only valid for select and multiselect attributes")
	}

	options, _ := json.Marshal(req.Options)
	attr := model.Attribute{
		ShopID:     shopID,
		Name:       req.Name,
		InputType:  req.InputType,
		Options:    string(options),
		IsRequired: req.IsRequired,
		SortOrder:  req.SortOrder,
	}

	if err := s.attributeRepo.Create(ctx, &attr); err != nil {
		return AttributeResponse{}, fmt.Errorf("failed to create attribute: %w", err)
	}

	return toAttributeResponse(attr), nil
}

func (s *attributeService) UpdateAttribute(ctx context.Context, shopID, id int64, req UpdateAttributeRequest) (AttributeResponse, error) {
	attr, err := s.findAttributeInShop(ctx, shopID, id)
	if err != nil {
		return AttributeResponse{}, err
	}

	if req.Name != nil && *req.Name != "" {
		attr.Name = *req.Name
	}
	if req.Options != nil {
		if !optionBearing(attr.InputType) && len(*req.Options) > 0 {
			return AttributeResponse{}, fmt.Errorf("options are only valid for select and multiselect attributes")
		}
		options, _ := json.Marshal(*req.Options)
		attr.Options = string(options)
	}
	if req.IsRequired != nil {
		attr.IsRequired = *req.IsRequired
	}
	if req.SortOrder != nil {
		attr.SortOrder = *req.SortOrder
	}

	if err := s.attributeRepo.Update(ctx, attr); err != nil {
		return AttributeResponse{}, fmt.Errorf("failed to update attribute: %w", err)
	}

	return toAttributeResponse(*attr), nil
}

func (s *attributeService) DeleteAttribute(ctx context.Context, shopID, id int64) error {
	if _, err := s.findAttributeInShop(ctx, shopID, id); err != nil {
		return err
	}
	if err := s.attributeRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete attribute: %w", err)
	}
	return nil
}

func (s *attributeService) ListAttributes(ctx context.Context, shopID int64) ([]AttributeResponse, error) {
	attrs, err := s.attributeRepo.ListByShop(ctx, shopID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch attributes: %w", err)
	}

	res := make([]AttributeResponse, 0, len(attrs))
	for _, a := range attrs {
		res = append(res, toAttributeResponse(a))
	}
	return res, nil
}

func (s *attributeService) findAttributeInShop(ctx context.Context, shopID, id int64) (*model.Attribute, error) {
	attr, err := s.attributeRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("attribute not found")
		}
		return nil, fmt.Errorf("failed to fetch attribute: %w", err)
	}
	if attr.ShopID != shopID {
		return nil, fmt.Errorf("attribute not found")
	}
	return attr, nil
}

func toAttributeResponse(a model.Attribute) AttributeResponse {
	var options []string
	if a.Options != "" {
		_ = json.Unmarshal([]byte(a.Options), &options)
	}
	return AttributeResponse{
		AttributeID: a.AttributeID,
		ShopID:      a.ShopID,
		Name:        a.Name,
		InputType:   a.InputType,
		Options:     options,
		IsRequired:  a.IsRequired,
		SortOrder:   a.SortOrder,
	}
}
