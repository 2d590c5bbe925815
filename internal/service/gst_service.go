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

// maxLineageDepth caps the category ancestor walk so malformed parent data
// cannot stall resolution.
const maxLineageDepth = 10

// --- DTOs ---

type CreateGSTRuleRequest struct {
	Name                string `json:"name" binding:"required,min=1,max=100"`
	ShopID              int64  `json:"shop_id" binding:"required,min=1"`
	CategoryID          int64  `json:"category_id" binding:"required,min=1"`
	PriceConditionType  string `json:"price_condition_type" binding:"required,oneof=ANY LESS_THAN LESS_THAN_OR_EQUAL GREATER_THAN GREATER_THAN_OR_EQUAL EQUAL"`
	PriceConditionValue string `json:"price_condition_value"` // Decimal string; required unless type is ANY
	GSTRatePercentage   string `json:"gst_rate_percentage" binding:"required"`
	IsActive            *bool  `json:"is_active"`
	StartDate           string `json:"start_date"` // YYYY-MM-DD, optional
	EndDate             string `json:"end_date"`   // YYYY-MM-DD, optional
}

type UpdateGSTRuleRequest struct {
	Name                *string `json:"name"`
	CategoryID          *int64  `json:"category_id"`
	PriceConditionType  *string `json:"price_condition_type"`
	PriceConditionValue *string `json:"price_condition_value"`
	GSTRatePercentage   *string `json:"gst_rate_percentage"`
	IsActive            *bool   `json:"is_active"`
	StartDate           *string `json:"start_date"` // empty string clears the bound
	EndDate             *string `json:"end_date"`
}

type GSTRuleResponse struct {
	ID                  int64   `json:"id"`
	Name                string  `json:"name"`
	ShopID              int64   `json:"shop_id"`
	CategoryID          int64   `json:"category_id"`
	PriceConditionType  string  `json:"price_condition_type"`
	PriceConditionValue *string `json:"price_condition_value"`
	GSTRatePercentage   string  `json:"gst_rate_percentage"`
	IsActive            bool    `json:"is_active"`
	StartDate           *string `json:"start_date"`
	EndDate             *string `json:"end_date"`
	CreatedAt           string  `json:"created_at"`
	UpdatedAt           string  `json:"updated_at"`
}

type ResolveGSTRequest struct {
	ShopID         int64  `json:"shop_id" binding:"required,min=1"`
	CategoryID     int64  `json:"category_id" binding:"required,min=1"`
	InclusivePrice string `json:"inclusive_price" binding:"required"`
}

type ResolveGSTResponse struct {
	Matched           bool             `json:"matched"`
	Rule              *GSTRuleResponse `json:"rule,omitempty"`
	GSTRatePercentage string           `json:"gst_rate_percentage"` // "0.00" when no rule matched
	BasePrice         string           `json:"base_price"`
	GSTAmount         string           `json:"gst_amount"`
}

// --- Interface ---

type GSTService interface {
	GetRules(ctx context.Context, shopID int64, categoryID *int64, isActive *bool, page, limit int) ([]GSTRuleResponse, int64, error)
	GetRule(ctx context.Context, id int64) (GSTRuleResponse, error)
	CreateRule(ctx context.Context, userID string, req CreateGSTRuleRequest) (GSTRuleResponse, error)
	UpdateRule(ctx context.Context, userID string, id int64, req UpdateGSTRuleRequest) (GSTRuleResponse, error)
	DeleteRule(ctx context.Context, userID string, id int64) error

	// FindApplicableRule returns the single best-matching active rule for a
	// product of the given category and GST-inclusive price, or nil when no
	// rule applies. "No rule" is a normal outcome, not an error.
	FindApplicableRule(ctx context.Context, shopID, categoryID int64, inclusivePrice decimal.Decimal) (*model.GSTRule, error)
	Resolve(ctx context.Context, req ResolveGSTRequest) (ResolveGSTResponse, error)
}

type gstService struct {
	ruleRepo     repository.GSTRuleRepository
	categoryRepo repository.CategoryRepository
	shopRepo     repository.ShopRepository
	auditRepo    repository.AuditRepository
	hub          *ws.Hub
	now          func() time.Time
}

func NewGSTService(
	ruleRepo repository.GSTRuleRepository,
	categoryRepo repository.CategoryRepository,
	shopRepo repository.ShopRepository,
	auditRepo repository.AuditRepository,
	hub *ws.Hub,
) GSTService {
	return &gstService{
		ruleRepo:     ruleRepo,
		categoryRepo: categoryRepo,
		shopRepo:     shopRepo,
		auditRepo:    auditRepo,
		hub:          hub,
		now:          time.Now,
	}
}

// --- Resolution ---

// categoryLineage walks parent links from the given category up to its root
// and returns the visited ids ordered most-specific first. The walk stops on
// a missing parent (partial lineage is still usable) and guards against
// cyclic parent chains with a seen set plus a depth cap.
func (s *gstService) categoryLineage(ctx context.Context, categoryID int64) ([]int64, error) {
	category, err := s.categoryRepo.FindByID(ctx, categoryID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	lineage := []int64{category.CategoryID}
	seen := map[int64]bool{category.CategoryID: true}

	current := category
	for current.ParentID != nil && len(lineage) < maxLineageDepth {
		if seen[*current.ParentID] {
			break // cyclic parent chain; use the lineage collected so far
		}
		parent, err := s.categoryRepo.FindByID(ctx, *current.ParentID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				break // broken link; stop rather than fail
			}
			return nil, err
		}
		lineage = append(lineage, parent.CategoryID)
		seen[parent.CategoryID] = true
		current = parent
	}

	return lineage, nil
}

// selectApplicableRule picks the winning rule from the candidate set.
// Candidates are already filtered to active, in-window rules of one shop
// whose category is somewhere in the lineage.
//
// The lineage is scanned most-specific first. The first category level with
// at least one attached rule is authoritative: if one or more of its rules
// match the price, the one with the highest id (most recently created) wins;
// if none match, resolution ends with no rule. Fall-through to an ancestor
// level happens only when a level has zero attached rules at all.
func selectApplicableRule(candidates []model.GSTRule, lineage []int64, inclusivePrice decimal.Decimal) *model.GSTRule {
	for _, categoryID := range lineage {
		levelHasRules := false
		var best *model.GSTRule

		for i := range candidates {
			rule := &candidates[i]
			if rule.CategoryID != categoryID {
				continue
			}
			levelHasRules = true
			if !rule.MatchesPrice(inclusivePrice) {
				continue
			}
			if best == nil || rule.ID > best.ID {
				best = rule
			}
		}

		if levelHasRules {
			return best // may be nil: a non-empty level that matched nothing is final
		}
	}
	return nil
}

func (s *gstService) FindApplicableRule(ctx context.Context, shopID, categoryID int64, inclusivePrice decimal.Decimal) (*model.GSTRule, error) {
	lineage, err := s.categoryLineage(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	if len(lineage) == 0 {
		return nil, nil
	}

	candidates, err := s.ruleRepo.FindCandidates(ctx, shopID, lineage, s.now())
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	return selectApplicableRule(candidates, lineage, inclusivePrice), nil
}

func (s *gstService) Resolve(ctx context.Context, req ResolveGSTRequest) (ResolveGSTResponse, error) {
	price, err := decimal.NewFromString(req.InclusivePrice)
	if err != nil {
		// An indeterminate price means no condition can be soundly evaluated.
		return ResolveGSTResponse{
			Matched:           false,
			GSTRatePercentage: decimal.Zero.StringFixed(2),
			BasePrice:         "0.00",
			GSTAmount:         "0.00",
		}, nil
	}

	rule, err := s.FindApplicableRule(ctx, req.ShopID, req.CategoryID, price)
	if err != nil {
		return ResolveGSTResponse{}, err
	}

	rate := decimal.Zero
	var ruleResp *GSTRuleResponse
	if rule != nil {
		rate = rule.GSTRatePercentage
		r := toGSTRuleResponse(*rule)
		ruleResp = &r
	}

	base, gst := SplitInclusivePrice(price, rate)
	return ResolveGSTResponse{
		Matched:           rule != nil,
		Rule:              ruleResp,
		GSTRatePercentage: rate.StringFixed(2),
		BasePrice:         base.StringFixed(2),
		GSTAmount:         gst.StringFixed(2),
	}, nil
}

// SplitInclusivePrice back-calculates the GST-exclusive base price and the
// GST amount contained in a GST-inclusive price at the given percentage
// rate. Both results are rounded half-up to two decimal places, with the GST
// amount taken as the remainder so base + gst always reproduces the
// inclusive price.
func SplitInclusivePrice(inclusive, ratePercentage decimal.Decimal) (base, gst decimal.Decimal) {
	denominator := decimal.NewFromInt(1).Add(ratePercentage.Div(decimal.NewFromInt(100)))
	if !denominator.IsPositive() {
		return inclusive, decimal.Zero
	}
	base = inclusive.Div(denominator).Round(2)
	gst = inclusive.Sub(base)
	return base, gst
}

// --- CRUD ---

func (s *gstService) GetRules(ctx context.Context, shopID int64, categoryID *int64, isActive *bool, page, limit int) ([]GSTRuleResponse, int64, error) {
	rules, total, err := s.ruleRepo.List(ctx, shopID, categoryID, isActive, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch GST rules: %w", err)
	}

	res := make([]GSTRuleResponse, 0, len(rules))
	for _, r := range rules {
		res = append(res, toGSTRuleResponse(r))
	}

	return res, total, nil
}

func (s *gstService) GetRule(ctx context.Context, id int64) (GSTRuleResponse, error) {
	rule, err := s.ruleRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return GSTRuleResponse{}, fmt.Errorf("GST rule not found")
		}
		return GSTRuleResponse{}, fmt.Errorf("failed to fetch GST rule: %w", err)
	}
	return toGSTRuleResponse(*rule), nil
}

func (s *gstService) CreateRule(ctx context.Context, userID string, req CreateGSTRuleRequest) (GSTRuleResponse, error) {
	if _, err := s.shopRepo.FindByID(ctx, req.ShopID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return GSTRuleResponse{}, fmt.Errorf("shop %d not found", req.ShopID)
		}
		return GSTRuleResponse{}, fmt.Errorf("failed to verify shop: %w", err)
	}

	if _, err := s.categoryRepo.FindByIDAndShop(ctx, req.CategoryID, req.ShopID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return GSTRuleResponse{}, fmt.Errorf("category %d not found in shop %d", req.CategoryID, req.ShopID)
		}
		return GSTRuleResponse{}, fmt.Errorf("failed to verify category: %w", err)
	}

	if _, err := s.ruleRepo.FindByNameAndShop(ctx, req.Name, req.ShopID); err == nil {
		return GSTRuleResponse{}, fmt.Errorf("a GST rule named '%s' already exists for this shop", req.Name)
	}

	condValue, rate, startDate, endDate, err := parseGSTRuleFields(req.PriceConditionType, req.PriceConditionValue, req.GSTRatePercentage, req.StartDate, req.EndDate)
	if err != nil {
		return GSTRuleResponse{}, err
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	uid := parseUserID(userID)
	rule := model.GSTRule{
		Name:                req.Name,
		ShopID:              req.ShopID,
		CategoryID:          req.CategoryID,
		PriceConditionType:  req.PriceConditionType,
		PriceConditionValue: condValue,
		GSTRatePercentage:   rate,
		IsActive:            isActive,
		StartDate:           startDate,
		EndDate:             endDate,
		CreatedBy:           uid,
		UpdatedBy:           uid,
	}

	if err := s.ruleRepo.Create(ctx, &rule); err != nil {
		return GSTRuleResponse{}, fmt.Errorf("failed to create GST rule: %w", err)
	}

	s.writeAudit(ctx, userID, model.ActionCreateGSTRule, fmt.Sprintf("%d", rule.ID), rule.Name, req)
	ws.BroadcastEvent(s.hub, "gst_rule_created", map[string]interface{}{"rule_id": rule.ID, "shop_id": rule.ShopID})

	return toGSTRuleResponse(rule), nil
}

func (s *gstService) UpdateRule(ctx context.Context, userID string, id int64, req UpdateGSTRuleRequest) (GSTRuleResponse, error) {
	rule, err := s.ruleRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return GSTRuleResponse{}, fmt.Errorf("GST rule not found")
		}
		return GSTRuleResponse{}, fmt.Errorf("failed to fetch GST rule: %w", err)
	}

	if req.Name != nil && *req.Name != rule.Name {
		if existing, err := s.ruleRepo.FindByNameAndShop(ctx, *req.Name, rule.ShopID); err == nil && existing.ID != rule.ID {
			return GSTRuleResponse{}, fmt.Errorf("a GST rule named '%s' already exists for this shop", *req.Name)
		}
		rule.Name = *req.Name
	}

	if req.CategoryID != nil && *req.CategoryID != rule.CategoryID {
		if _, err := s.categoryRepo.FindByIDAndShop(ctx, *req.CategoryID, rule.ShopID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return GSTRuleResponse{}, fmt.Errorf("category %d not found in shop %d", *req.CategoryID, rule.ShopID)
			}
			return GSTRuleResponse{}, fmt.Errorf("failed to verify category: %w", err)
		}
		rule.CategoryID = *req.CategoryID
	}

	if req.PriceConditionType != nil {
		if !model.ValidPriceConditionTypes[*req.PriceConditionType] {
			return GSTRuleResponse{}, fmt.Errorf("invalid price_condition_type '%s'", *req.PriceConditionType)
		}
		rule.PriceConditionType = *req.PriceConditionType
	}

	if req.PriceConditionValue != nil {
		if *req.PriceConditionValue == "" {
			rule.PriceConditionValue = nil
		} else {
			v, err := decimal.NewFromString(*req.PriceConditionValue)
			if err != nil {
				return GSTRuleResponse{}, fmt.Errorf("invalid price_condition_value: %w", err)
			}
			if v.IsNegative() {
				return GSTRuleResponse{}, fmt.Errorf("price_condition_value must be non-negative")
			}
			rule.PriceConditionValue = &v
		}
	}

	if rule.PriceConditionType != model.PriceCondAny && rule.PriceConditionValue == nil {
		return GSTRuleResponse{}, fmt.Errorf("price_condition_value is required when price_condition_type is not ANY")
	}

	if req.GSTRatePercentage != nil {
		rate, err := parseGSTRate(*req.GSTRatePercentage)
		if err != nil {
			return GSTRuleResponse{}, err
		}
		rule.GSTRatePercentage = rate
	}

	if req.IsActive != nil {
		rule.IsActive = *req.IsActive
	}

	if req.StartDate != nil {
		d, err := parseOptionalDate(*req.StartDate, "start_date")
		if err != nil {
			return GSTRuleResponse{}, err
		}
		rule.StartDate = d
	}
	if req.EndDate != nil {
		d, err := parseOptionalDate(*req.EndDate, "end_date")
		if err != nil {
			return GSTRuleResponse{}, err
		}
		rule.EndDate = d
	}
	if rule.StartDate != nil && rule.EndDate != nil && rule.EndDate.Before(*rule.StartDate) {
		return GSTRuleResponse{}, fmt.Errorf("end_date must not be before start_date")
	}

	rule.UpdatedBy = parseUserID(userID)

	if err := s.ruleRepo.Update(ctx, rule); err != nil {
		return GSTRuleResponse{}, fmt.Errorf("failed to update GST rule: %w", err)
	}

	s.writeAudit(ctx, userID, model.ActionUpdateGSTRule, fmt.Sprintf("%d", rule.ID), rule.Name, req)
	ws.BroadcastEvent(s.hub, "gst_rule_updated", map[string]interface{}{"rule_id": rule.ID, "shop_id": rule.ShopID})

	return toGSTRuleResponse(*rule), nil
}

func (s *gstService) DeleteRule(ctx context.Context, userID string, id int64) error {
	rule, err := s.ruleRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("GST rule not found")
		}
		return fmt.Errorf("failed to fetch GST rule: %w", err)
	}

	if err := s.ruleRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete GST rule: %w", err)
	}

	s.writeAudit(ctx, userID, model.ActionDeleteGSTRule, fmt.Sprintf("%d", rule.ID), rule.Name, map[string]interface{}{"deleted_id": id})
	ws.BroadcastEvent(s.hub, "gst_rule_deleted", map[string]interface{}{"rule_id": rule.ID, "shop_id": rule.ShopID})

	return nil
}

func (s *gstService) writeAudit(ctx context.Context, userID, action, entityID, entityName string, details interface{}) {
	writeAuditLog(ctx, s.auditRepo, userID, action, entityID, entityName, details)
}

// --- Helpers ---

func parseGSTRuleFields(condType, condValue, rateStr, fromStr, toStr string) (*decimal.Decimal, decimal.Decimal, *time.Time, *time.Time, error) {
	var value *decimal.Decimal
	if condType != model.PriceCondAny {
		if condValue == "" {
			return nil, decimal.Zero, nil, nil, fmt.Errorf("price_condition_value is required when price_condition_type is not ANY")
		}
		v, err := decimal.NewFromString(condValue)
		if err != nil {
			return nil, decimal.Zero, nil, nil, fmt.Errorf("invalid price_condition_value: %w", err)
		}
		if v.IsNegative() {
			return nil, decimal.Zero, nil, nil, fmt.Errorf("price_condition_value must be non-negative")
		}
		value = &v
	} else if condValue != "" {
		v, err := decimal.NewFromString(condValue)
		if err != nil {
			return nil, decimal.Zero, nil, nil, fmt.Errorf("invalid price_condition_value: %w", err)
		}
		value = &v
	}

	rate, err := parseGSTRate(rateStr)
	if err != nil {
		return nil, decimal.Zero, nil, nil, err
	}

	startDate, err := parseOptionalDate(fromStr, "start_date")
	if err != nil {
		return nil, decimal.Zero, nil, nil, err
	}
	endDate, err := parseOptionalDate(toStr, "end_date")
	if err != nil {
		return nil, decimal.Zero, nil, nil, err
	}
	if startDate != nil && endDate != nil && endDate.Before(*startDate) {
		return nil, decimal.Zero, nil, nil, fmt.Errorf("end_date must not be before start_date")
	}

	return value, rate, startDate, endDate, nil
}

func parseGSTRate(rateStr string) (decimal.Decimal, error) {
	rate, err := decimal.NewFromString(rateStr)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid gst_rate_percentage: %w", err)
	}
	if rate.IsNegative() || rate.GreaterThan(decimal.NewFromInt(100)) {
		return decimal.Zero, fmt.Errorf("gst_rate_percentage must be between 0 and 100")
	}
	return rate, nil
}

func parseOptionalDate(value, field string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s date format (expected YYYY-MM-DD): %w", field, err)
	}
	return &t, nil
}

func toGSTRuleResponse(r model.GSTRule) GSTRuleResponse {
	resp := GSTRuleResponse{
		ID:                 r.ID,
		Name:               r.Name,
		ShopID:             r.ShopID,
		CategoryID:         r.CategoryID,
		PriceConditionType: r.PriceConditionType,
		GSTRatePercentage:  r.GSTRatePercentage.StringFixed(2),
		IsActive:           r.IsActive,
		CreatedAt:          r.CreatedAt.Format(time.RFC3339),
		UpdatedAt:          r.UpdatedAt.Format(time.RFC3339),
	}
	if r.PriceConditionValue != nil {
		v := r.PriceConditionValue.StringFixed(2)
		resp.PriceConditionValue = &v
	}
	if r.StartDate != nil {
		d := r.StartDate.Format("2006-01-02")
		resp.StartDate = &d
	}
	if r.EndDate != nil {
		d := r.EndDate.Format("2006-01-02")
		resp.EndDate = &d
	}
	return resp
}
