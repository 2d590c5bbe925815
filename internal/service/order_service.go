package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"marketplace/internal/model"
	"marketplace/internal/repository"
	ws "marketplace/internal/websocket"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type CheckoutRequest struct {
	ShopID   int64  `json:"shop_id" binding:"required,min=1"`
	Shipping string `json:"shipping"` // Decimal string, defaults to 0
	Note     string `json:"note"`
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=COMPLETED CANCELLED"`
}

type OrderItemResponse struct {
	ID                 string `json:"id"`
	ProductID          int64  `json:"product_id"`
	ProductName        string `json:"product_name"`
	ProductSKU         string `json:"product_sku"`
	Quantity           int    `json:"quantity"`
	UnitPriceInclusive string `json:"unit_price_inclusive"`
	GSTRuleID          *int64 `json:"gst_rule_id"`
	GSTRatePercentage  string `json:"gst_rate_percentage"`
	BasePricePerUnit   string `json:"base_price_per_unit"`
	GSTAmountPerUnit   string `json:"gst_amount_per_unit"`
	LineTotal          string `json:"line_total"`
}

type OrderResponse struct {
	ID             string              `json:"id"`
	OrderCode      string              `json:"order_code"`
	UserID         string              `json:"user_id"`
	ShopID         int64               `json:"shop_id"`
	Status         string              `json:"status"`
	SubtotalAmount string              `json:"subtotal_amount"`
	TaxAmount      string              `json:"tax_amount"`
	ShippingAmount string              `json:"shipping_amount"`
	TotalAmount    string              `json:"total_amount"`
	Note           string              `json:"note"`
	Items          []OrderItemResponse `json:"items"`
	CreatedAt      string              `json:"created_at"`
}

type OrderService interface {
	// Checkout converts the caller's cart for one shop into a placed order,
	// freezing per-line GST math and decrementing stock atomically.
	Checkout(ctx context.Context, userID string, req CheckoutRequest) (OrderResponse, error)
	GetOrder(ctx context.Context, userID, role string, orderID string) (OrderResponse, error)
	ListMyOrders(ctx context.Context, userID string, page, limit int) ([]OrderResponse, int64, error)
	ListShopOrders(ctx context.Context, shopID int64, status string, page, limit int) ([]OrderResponse, int64, error)
	UpdateStatus(ctx context.Context, userID string, orderID string, req UpdateOrderStatusRequest) (OrderResponse, error)
}

type orderService struct {
	orderRepo   repository.OrderRepository
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
	gstService  GSTService
	auditRepo   repository.AuditRepository
	txManager   repository.TransactionManager
	hub         *ws.Hub
	now         func() time.Time
}

func NewOrderService(
	orderRepo repository.OrderRepository,
	cartRepo repository.CartRepository,
	productRepo repository.ProductRepository,
	gstService GSTService,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	hub *ws.Hub,
) OrderService {
	return &orderService{
		orderRepo:   orderRepo,
		cartRepo:    cartRepo,
		productRepo: productRepo,
		gstService:  gstService,
		auditRepo:   auditRepo,
		txManager:   txManager,
		hub:         hub,
		now:         time.Now,
	}
}

// generateOrderCode builds a human-referenceable unique code like
// ORD-20250115-3F8A2C
func (s *orderService) generateOrderCode() string {
	raw := make([]byte, 3)
	_, _ = rand.Read(raw)
	return fmt.Sprintf("ORD-%s-%s", s.now().Format("20060102"), strings.ToUpper(hex.EncodeToString(raw)))
}

func (s *orderService) Checkout(ctx context.Context, userID string, req CheckoutRequest) (OrderResponse, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return OrderResponse{}, fmt.Errorf("invalid user id")
	}

	shipping := decimal.Zero
	if req.Shipping != "" {
		shipping, err = parseNonNegativePrice(req.Shipping, "shipping")
		if err != nil {
			return OrderResponse{}, err
		}
	}

	cart, err := s.cartRepo.FindByUserAndShop(ctx, uid, req.ShopID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return OrderResponse{}, fmt.Errorf("cart is empty")
		}
		return OrderResponse{}, fmt.Errorf("failed to fetch cart: %w", err)
	}
	if len(cart.Items) == 0 {
		return OrderResponse{}, fmt.Errorf("cart is empty")
	}

	order := model.Order{
		OrderCode:      s.generateOrderCode(),
		UserID:         uid,
		ShopID:         req.ShopID,
		Status:         model.OrderStatusPlaced,
		ShippingAmount: shipping,
		Note:           req.Note,
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		subtotal := decimal.Zero
		taxTotal := decimal.Zero
		grandTotal := shipping

		var items []model.OrderItem
		for _, cartItem := range cart.Items {
			// Row lock holds stock steady until the tx commits
			product, err := s.productRepo.FindByIDForUpdate(txCtx, cartItem.ProductID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return fmt.Errorf("product '%s' is no longer available", cartItem.ProductName)
				}
				return fmt.Errorf("failed to lock product: %w", err)
			}

			if !product.IsActive || !product.IsPublished {
				return fmt.Errorf("product '%s' is no longer available", product.Name)
			}
			if product.StockQty < cartItem.Quantity {
				return fmt.Errorf("insufficient stock for '%s': %d available", product.Name, product.StockQty)
			}

			unitPrice, _ := product.CurrentListedPrice(s.now())

			rule, err := s.gstService.FindApplicableRule(txCtx, req.ShopID, product.CategoryID, unitPrice)
			if err != nil {
				return fmt.Errorf("failed to resolve GST rule: %w", err)
			}

			rate := decimal.Zero
			var ruleID *int64
			if rule != nil {
				rate = rule.GSTRatePercentage
				ruleID = &rule.ID
			}
			base, gst := SplitInclusivePrice(unitPrice, rate)

			qty := decimal.NewFromInt(int64(cartItem.Quantity))
			lineTotal := unitPrice.Mul(qty)

			items = append(items, model.OrderItem{
				ProductID:          product.ProductID,
				ProductName:        product.Name,
				ProductSKU:         product.SKU,
				Quantity:           cartItem.Quantity,
				UnitPriceInclusive: unitPrice,
				GSTRuleID:          ruleID,
				GSTRatePercentage:  rate,
				BasePricePerUnit:   base,
				GSTAmountPerUnit:   gst,
				LineTotal:          lineTotal,
			})

			subtotal = subtotal.Add(base.Mul(qty))
			taxTotal = taxTotal.Add(gst.Mul(qty))
			grandTotal = grandTotal.Add(lineTotal)

			if err := s.productRepo.UpdateStock(txCtx, product.ProductID, product.StockQty-cartItem.Quantity); err != nil {
				return fmt.Errorf("failed to decrement stock: %w", err)
			}
		}

		order.SubtotalAmount = subtotal
		order.TaxAmount = taxTotal
		order.TotalAmount = grandTotal

		if err := s.orderRepo.Create(txCtx, &order); err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}

		for i := range items {
			items[i].OrderID = order.ID
			if err := s.orderRepo.CreateItem(txCtx, &items[i]); err != nil {
				return fmt.Errorf("failed to create order item: %w", err)
			}
		}
		order.Items = items

		if err := s.cartRepo.ClearItems(txCtx, cart.ID); err != nil {
			return fmt.Errorf("failed to clear cart: %w", err)
		}

		details, _ := json.Marshal(map[string]interface{}{
			"order_code": order.OrderCode,
			"shop_id":    order.ShopID,
			"total":      order.TotalAmount.StringFixed(2),
			"items":      len(items),
		})
		audit := &model.AuditLog{
			UserID:     &uid,
			Action:     model.ActionPlaceOrder,
			EntityID:   order.ID.String(),
			EntityName: order.OrderCode,
			Details:    string(details),
		}
		if err := s.auditRepo.Log(txCtx, audit); err != nil {
			return fmt.Errorf("failed to write audit log: %w", err)
		}

		return nil
	})
	if err != nil {
		return OrderResponse{}, err
	}

	ws.BroadcastEvent(s.hub, "order_placed", map[string]interface{}{
		"order_id":   order.ID.String(),
		"order_code": order.OrderCode,
		"shop_id":    order.ShopID,
	})

	return toOrderResponse(order), nil
}

func (s *orderService) GetOrder(ctx context.Context, userID, role string, orderID string) (OrderResponse, error) {
	oid, err := uuid.Parse(orderID)
	if err != nil {
		return OrderResponse{}, fmt.Errorf("invalid order id")
	}

	order, err := s.orderRepo.FindByID(ctx, oid)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return OrderResponse{}, fmt.Errorf("order not found")
		}
		return OrderResponse{}, fmt.Errorf("failed to fetch order: %w", err)
	}

	// Customers can only read their own orders
	if role == model.RoleCustomer && order.UserID.String() != userID {
		return OrderResponse{}, fmt.Errorf("order not found")
	}

	return toOrderResponse(*order), nil
}

func (s *orderService) ListMyOrders(ctx context.Context, userID string, page, limit int) ([]OrderResponse, int64, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return nil, 0, fmt.Errorf("invalid user id")
	}

	orders, total, err := s.orderRepo.ListByUser(ctx, uid, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch orders: %w", err)
	}

	res := make([]OrderResponse, 0, len(orders))
	for _, o := range orders {
		res = append(res, toOrderResponse(o))
	}
	return res, total, nil
}

func (s *orderService) ListShopOrders(ctx context.Context, shopID int64, status string, page, limit int) ([]OrderResponse, int64, error) {
	orders, total, err := s.orderRepo.ListByShop(ctx, shopID, status, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch orders: %w", err)
	}

	res := make([]OrderResponse, 0, len(orders))
	for _, o := range orders {
		res = append(res, toOrderResponse(o))
	}
	return res, total, nil
}

// UpdateStatus moves a PLACED order to COMPLETED or CANCELLED. Cancelling
// restores the stock taken at checkout, under the same row locks.
func (s *orderService) UpdateStatus(ctx context.Context, userID string, orderID string, req UpdateOrderStatusRequest) (OrderResponse, error) {
	oid, err := uuid.Parse(orderID)
	if err != nil {
		return OrderResponse{}, fmt.Errorf("invalid order id")
	}

	order, err := s.orderRepo.FindByID(ctx, oid)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return OrderResponse{}, fmt.Errorf("order not found")
		}
		return OrderResponse{}, fmt.Errorf("failed to fetch order: %w", err)
	}

	if order.Status != model.OrderStatusPlaced {
		return OrderResponse{}, fmt.Errorf("order is already %s", order.Status)
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if req.Status == model.OrderStatusCancelled {
			for _, item := range order.Items {
				product, err := s.productRepo.FindByIDForUpdate(txCtx, item.ProductID)
				if err != nil {
					if errors.Is(err, gorm.ErrRecordNotFound) {
						continue // product deleted since purchase; nothing to restore
					}
					return fmt.Errorf("failed to lock product: %w", err)
				}
				if err := s.productRepo.UpdateStock(txCtx, product.ProductID, product.StockQty+item.Quantity); err != nil {
					return fmt.Errorf("failed to restore stock: %w", err)
				}
			}
		}

		order.Status = req.Status
		return s.orderRepo.Update(txCtx, order)
	})
	if err != nil {
		return OrderResponse{}, err
	}

	writeAuditLog(ctx, s.auditRepo, userID, model.ActionUpdateOrder, order.ID.String(), order.OrderCode, map[string]interface{}{"status": req.Status})
	ws.BroadcastEvent(s.hub, "order_status_changed", map[string]interface{}{
		"order_id": order.ID.String(),
		"status":   order.Status,
		"shop_id":  order.ShopID,
	})

	return toOrderResponse(*order), nil
}

func toOrderResponse(o model.Order) OrderResponse {
	resp := OrderResponse{
		ID:             o.ID.String(),
		OrderCode:      o.OrderCode,
		UserID:         o.UserID.String(),
		ShopID:         o.ShopID,
		Status:         o.Status,
		SubtotalAmount: o.SubtotalAmount.StringFixed(2),
		TaxAmount:      o.TaxAmount.StringFixed(2),
		ShippingAmount: o.ShippingAmount.StringFixed(2),
		TotalAmount:    o.TotalAmount.StringFixed(2),
		Note:           o.Note,
		Items:          make([]OrderItemResponse, 0, len(o.Items)),
		CreatedAt:      o.CreatedAt.Format(time.RFC3339),
	}
	for _, item := range o.Items {
		resp.Items = append(resp.Items, OrderItemResponse{
			ID:                 item.ID.String(),
			ProductID:          item.ProductID,
			ProductName:        item.ProductName,
			ProductSKU:         item.ProductSKU,
			Quantity:           item.Quantity,
			UnitPriceInclusive: item.UnitPriceInclusive.StringFixed(2),
			GSTRuleID:          item.GSTRuleID,
			GSTRatePercentage:  item.GSTRatePercentage.StringFixed(2),
			BasePricePerUnit:   item.BasePricePerUnit.StringFixed(2),
			GSTAmountPerUnit:   item.GSTAmountPerUnit.StringFixed(2),
			LineTotal:          item.LineTotal.StringFixed(2),
		})
	}
	return resp
}
