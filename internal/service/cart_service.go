package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"marketplace/internal/model"
	"marketplace/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type AddCartItemRequest struct {
	ProductID int64 `json:"product_id" binding:"required,min=1"`
	Quantity  int   `json:"quantity" binding:"required,min=1"`
}

type UpdateCartItemRequest struct {
	Quantity int `json:"quantity" binding:"required,min=0"` // Zero removes the item
}

type CartItemResponse struct {
	ID          string `json:"id"`
	ProductID   int64  `json:"product_id"`
	ProductName string `json:"product_name"`
	ProductSKU  string `json:"product_sku"`
	UnitPrice   string `json:"unit_price"` // GST-inclusive snapshot from add time
	Quantity    int    `json:"quantity"`
	LineTotal   string `json:"line_total"`
}

// CartResponse totals include a per-line GST breakdown resolved against the
// current rule set, so the cart always previews what checkout would charge.
type CartResponse struct {
	ID        string             `json:"id"`
	ShopID    int64              `json:"shop_id"`
	Items     []CartItemResponse `json:"items"`
	Subtotal  string             `json:"subtotal"` // Sum of base prices
	GSTTotal  string             `json:"gst_total"`
	Total     string             `json:"total"`
	UpdatedAt string             `json:"updated_at"`
}

type CartService interface {
	GetCart(ctx context.Context, userID string, shopID int64) (CartResponse, error)
	AddItem(ctx context.Context, userID string, shopID int64, req AddCartItemRequest) (CartResponse, error)
	UpdateItem(ctx context.Context, userID string, shopID int64, itemID string, req UpdateCartItemRequest) (CartResponse, error)
	RemoveItem(ctx context.Context, userID string, shopID int64, itemID string) (CartResponse, error)
	ClearCart(ctx context.Context, userID string, shopID int64) error
}

type cartService struct {
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
	gstService  GSTService
	now         func() time.Time
}

func NewCartService(cartRepo repository.CartRepository, productRepo repository.ProductRepository, gstService GSTService) CartService {
	return &cartService{
		cartRepo:    cartRepo,
		productRepo: productRepo,
		gstService:  gstService,
		now:         time.Now,
	}
}

func (s *cartService) GetCart(ctx context.Context, userID string, shopID int64) (CartResponse, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return CartResponse{}, fmt.Errorf("invalid user id")
	}

	cart, err := s.cartRepo.FindByUserAndShop(ctx, uid, shopID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// An untouched cart is just empty
			return CartResponse{ShopID: shopID, Items: []CartItemResponse{}, Subtotal: "0.00", GSTTotal: "0.00", Total: "0.00"}, nil
		}
		return CartResponse{}, fmt.Errorf("failed to fetch cart: %w", err)
	}

	return s.toCartResponse(ctx, cart)
}

func (s *cartService) AddItem(ctx context.Context, userID string, shopID int64, req AddCartItemRequest) (CartResponse, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return CartResponse{}, fmt.Errorf("invalid user id")
	}

	product, err := s.productRepo.FindByID(ctx, req.ProductID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return CartResponse{}, fmt.Errorf("product not found")
		}
		return CartResponse{}, fmt.Errorf("failed to fetch product: %w", err)
	}
	if product.ShopID != shopID {
		return CartResponse{}, fmt.Errorf("product does not belong to this shop")
	}
	if !product.IsActive || !product.IsPublished {
		return CartResponse{}, fmt.Errorf("product is not available")
	}
	if product.StockQty < req.Quantity {
		return CartResponse{}, fmt.Errorf("insufficient stock: %d available", product.StockQty)
	}

	cart, err := s.cartRepo.FindOrCreate(ctx, uid, shopID)
	if err != nil {
		return CartResponse{}, fmt.Errorf("failed to open cart: %w", err)
	}

	listed, _ := product.CurrentListedPrice(s.now())

	existing, err := s.cartRepo.FindItem(ctx, cart.ID, req.ProductID)
	if err == nil {
		existing.Quantity += req.Quantity
		existing.UnitPrice = listed // Refresh the snapshot on re-add
		if product.StockQty < existing.Quantity {
			return CartResponse{}, fmt.Errorf("insufficient stock: %d available", product.StockQty)
		}
		if err := s.cartRepo.UpdateItem(ctx, existing); err != nil {
			return CartResponse{}, fmt.Errorf("failed to update cart item: %w", err)
		}
	} else if errors.Is(err, gorm.ErrRecordNotFound) {
		item := model.CartItem{
			CartID:      cart.ID,
			ProductID:   product.ProductID,
			ProductName: product.Name,
			ProductSKU:  product.SKU,
			UnitPrice:   listed,
			Quantity:    req.Quantity,
		}
		if err := s.cartRepo.CreateItem(ctx, &item); err != nil {
			return CartResponse{}, fmt.Errorf("failed to add cart item: %w", err)
		}
	} else {
		return CartResponse{}, fmt.Errorf("failed to check cart item: %w", err)
	}

	return s.reloadCart(ctx, uid, shopID)
}

func (s *cartService) UpdateItem(ctx context.Context, userID string, shopID int64, itemID string, req UpdateCartItemRequest) (CartResponse, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return CartResponse{}, fmt.Errorf("invalid user id")
	}
	iid, err := uuid.Parse(itemID)
	if err != nil {
		return CartResponse{}, fmt.Errorf("invalid item id")
	}

	cart, err := s.cartRepo.FindByUserAndShop(ctx, uid, shopID)
	if err != nil {
		return CartResponse{}, fmt.Errorf("cart not found")
	}

	var target *model.CartItem
	for i := range cart.Items {
		if cart.Items[i].ID == iid {
			target = &cart.Items[i]
			break
		}
	}
	if target == nil {
		return CartResponse{}, fmt.Errorf("cart item not found")
	}

	if req.Quantity == 0 {
		if err := s.cartRepo.DeleteItem(ctx, iid); err != nil {
			return CartResponse{}, fmt.Errorf("failed to remove cart item: %w", err)
		}
		return s.reloadCart(ctx, uid, shopID)
	}

	product, err := s.productRepo.FindByID(ctx, target.ProductID)
	if err == nil && product.StockQty < req.Quantity {
		return CartResponse{}, fmt.Errorf("insufficient stock: %d available", product.StockQty)
	}

	target.Quantity = req.Quantity
	if err := s.cartRepo.UpdateItem(ctx, target); err != nil {
		return CartResponse{}, fmt.Errorf("failed to update cart item: %w", err)
	}

	return s.reloadCart(ctx, uid, shopID)
}

func (s *cartService) RemoveItem(ctx context.Context, userID string, shopID int64, itemID string) (CartResponse, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return CartResponse{}, fmt.Errorf("invalid user id")
	}
	iid, err := uuid.Parse(itemID)
	if err != nil {
		return CartResponse{}, fmt.Errorf("invalid item id")
	}

	cart, err := s.cartRepo.FindByUserAndShop(ctx, uid, shopID)
	if err != nil {
		return CartResponse{}, fmt.Errorf("cart not found")
	}

	found := false
	for i := range cart.Items {
		if cart.Items[i].ID == iid {
			found = true
			break
		}
	}
	if !found {
		return CartResponse{}, fmt.Errorf("cart item not found")
	}

	if err := s.cartRepo.DeleteItem(ctx, iid); err != nil {
		return CartResponse{}, fmt.Errorf("failed to remove cart item: %w", err)
	}

	return s.reloadCart(ctx, uid, shopID)
}

func (s *cartService) ClearCart(ctx context.Context, userID string, shopID int64) error {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return fmt.Errorf("invalid user id")
	}

	cart, err := s.cartRepo.FindByUserAndShop(ctx, uid, shopID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return fmt.Errorf("failed to fetch cart: %w", err)
	}

	return s.cartRepo.ClearItems(ctx, cart.ID)
}

func (s *cartService) reloadCart(ctx context.Context, uid uuid.UUID, shopID int64) (CartResponse, error) {
	cart, err := s.cartRepo.FindByUserAndShop(ctx, uid, shopID)
	if err != nil {
		return CartResponse{}, fmt.Errorf("failed to reload cart: %w", err)
	}
	return s.toCartResponse(ctx, cart)
}

// toCartResponse resolves GST per line at the current unit price so the
// totals mirror what checkout would compute.
func (s *cartService) toCartResponse(ctx context.Context, cart *model.Cart) (CartResponse, error) {
	resp := CartResponse{
		ID:        cart.ID.String(),
		ShopID:    cart.ShopID,
		Items:     make([]CartItemResponse, 0, len(cart.Items)),
		UpdatedAt: cart.UpdatedAt.Format(time.RFC3339),
	}

	subtotal := decimal.Zero
	gstTotal := decimal.Zero
	total := decimal.Zero

	for _, item := range cart.Items {
		qty := decimal.NewFromInt(int64(item.Quantity))
		lineTotal := item.UnitPrice.Mul(qty)

		rate := decimal.Zero
		product, err := s.productRepo.FindByID(ctx, item.ProductID)
		if err == nil {
			rule, err := s.gstService.FindApplicableRule(ctx, cart.ShopID, product.CategoryID, item.UnitPrice)
			if err != nil {
				return CartResponse{}, fmt.Errorf("failed to resolve GST rule: %w", err)
			}
			if rule != nil {
				rate = rule.GSTRatePercentage
			}
		}

		base, gst := SplitInclusivePrice(item.UnitPrice, rate)
		subtotal = subtotal.Add(base.Mul(qty))
		gstTotal = gstTotal.Add(gst.Mul(qty))
		total = total.Add(lineTotal)

		resp.Items = append(resp.Items, CartItemResponse{
			ID:          item.ID.String(),
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			ProductSKU:  item.ProductSKU,
			UnitPrice:   item.UnitPrice.StringFixed(2),
			Quantity:    item.Quantity,
			LineTotal:   lineTotal.StringFixed(2),
		})
	}

	resp.Subtotal = subtotal.StringFixed(2)
	resp.GSTTotal = gstTotal.StringFixed(2)
	resp.Total = total.StringFixed(2)
	return resp, nil
}
