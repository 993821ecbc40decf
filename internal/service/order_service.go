package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"granel-store/internal/config"
	"granel-store/internal/discount"
	"granel-store/internal/model"
	"granel-store/internal/pricing"
	"granel-store/internal/repository"
	"granel-store/internal/whatsapp"
)

// orderService implements OrderService.
type orderService struct {
	orderRepo    repository.OrderRepository
	productRepo  repository.ProductRepository
	customerRepo repository.CustomerRepository
	discountRepo repository.DiscountRepository
	pricer       *pricing.Calculator
	whatsapp     *whatsapp.Builder
	checkout     config.CheckoutConfig
	logger       zerolog.Logger
}

// NewOrderService creates a new order service.
func NewOrderService(
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	customerRepo repository.CustomerRepository,
	discountRepo repository.DiscountRepository,
	pricer *pricing.Calculator,
	builder *whatsapp.Builder,
	checkout config.CheckoutConfig,
	logger zerolog.Logger,
) OrderService {
	return &orderService{
		orderRepo:    orderRepo,
		productRepo:  productRepo,
		customerRepo: customerRepo,
		discountRepo: discountRepo,
		pricer:       pricer,
		whatsapp:     builder,
		checkout:     checkout,
		logger:       logger.With().Str("service", "order").Logger(),
	}
}

// Create places a new order. Totals are computed server-side from the
// submitted lines, the discount code is re-validated against the live row,
// and everything that mutates state (customer, order, items, stock,
// discount usage, customer aggregates) happens in one transaction.
func (s *orderService) Create(ctx context.Context, req *model.OrderRequest) (*model.Order, error) {
	if err := s.validateOrderRequest(req); err != nil {
		return nil, err
	}

	subtotal := decimal.Zero
	for _, item := range req.Items {
		subtotal = subtotal.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}

	now := time.Now()

	applied, discountAmount, err := s.resolveDiscount(ctx, req.DiscountCode, subtotal, req.Items, now)
	if err != nil {
		return nil, err
	}

	quote := s.pricer.Quote(subtotal, discountAmount, req.DeliveryOption)

	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	// Ensure transaction is rolled back on error
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	customerID, err := s.resolveCustomer(ctx, tx, req, now)
	if err != nil {
		return nil, err
	}

	var discountCode *string
	if applied != nil {
		code := applied.Code
		discountCode = &code
	}

	order := &model.Order{
		ID:              uuid.New(),
		OrderNumber:     newOrderNumber(now),
		CustomerID:      customerID,
		CustomerName:    req.CustomerName,
		CustomerPhone:   req.CustomerPhone,
		CustomerAddress: req.CustomerAddress,
		DeliveryOption:  req.DeliveryOption,
		Status:          model.StatusPending,
		Subtotal:        quote.Subtotal,
		DiscountAmount:  quote.DiscountAmount,
		DeliveryFee:     quote.DeliveryFee,
		Total:           quote.Total,
		DiscountCode:    discountCode,
		Notes:           req.Notes,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err = s.orderRepo.CreateTx(ctx, tx, order); err != nil {
		s.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to create order")
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	items := make([]model.OrderItem, len(req.Items))
	for i, item := range req.Items {
		productID := item.ProductID
		items[i] = model.OrderItem{
			ID:          uuid.New(),
			OrderID:     order.ID,
			ProductID:   &productID,
			VariantID:   item.VariantID,
			ProductName: item.ProductName,
			VariantName: item.VariantName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			Subtotal:    item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))),
			CreatedAt:   now,
		}
	}

	if err = s.orderRepo.CreateItemsTx(ctx, tx, items); err != nil {
		s.logger.Error().
			Err(err).
			Str("order_id", order.ID.String()).
			Int("item_count", len(items)).
			Msg("failed to create order items")
		return nil, fmt.Errorf("failed to create order items: %w", err)
	}

	for _, item := range req.Items {
		if item.VariantID == nil {
			continue
		}
		if err = s.productRepo.DecrementStockTx(ctx, tx, *item.VariantID, item.Quantity); err != nil {
			s.logger.Warn().
				Err(err).
				Str("variant_id", item.VariantID.String()).
				Int("quantity", item.Quantity).
				Msg("stock decrement refused")
			return nil, err
		}
	}

	if applied != nil {
		var bumped bool
		bumped, err = s.discountRepo.IncrementUsageTx(ctx, tx, applied.Code)
		if err != nil {
			s.logger.Error().Err(err).Str("code", applied.Code).Msg("failed to increment discount usage")
			return nil, fmt.Errorf("failed to create order: %w", err)
		}
		if !bumped {
			// A concurrent order took the last use between validation
			// and here.
			err = model.ErrDiscountUsageLimit
			return nil, err
		}
	}

	if customerID != nil {
		if err = s.customerRepo.RecordOrderTx(ctx, tx, *customerID, quote.Total, now); err != nil {
			s.logger.Error().Err(err).Str("customer_id", customerID.String()).Msg("failed to update customer aggregates")
			return nil, fmt.Errorf("failed to create order: %w", err)
		}
	}

	if err = tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to commit transaction")
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	order.Items = items

	s.logger.Info().
		Str("order_id", order.ID.String()).
		Str("order_number", order.OrderNumber).
		Str("total", order.Total.String()).
		Int("item_count", len(items)).
		Msg("order created successfully")

	return order, nil
}

// resolveDiscount looks up and re-validates the discount code. In strict
// mode an invalid code aborts the order; otherwise the order proceeds with
// no discount applied.
func (s *orderService) resolveDiscount(
	ctx context.Context,
	code *string,
	subtotal decimal.Decimal,
	items []model.OrderItemRequest,
	now time.Time,
) (*model.Discount, decimal.Decimal, error) {
	if code == nil || strings.TrimSpace(*code) == "" {
		return nil, decimal.Zero, nil
	}

	d, err := s.discountRepo.GetByCode(ctx, *code)
	if err != nil {
		return nil, decimal.Zero, fmt.Errorf("failed to look up discount: %w", err)
	}

	if domainErr := discount.Check(d, subtotal, now); domainErr != nil {
		s.logger.Warn().
			Str("code", *code).
			Str("reason", domainErr.Code).
			Msg("discount code rejected")
		if s.checkout.StrictDiscounts {
			return nil, decimal.Zero, domainErr
		}
		return nil, decimal.Zero, nil
	}

	lines, err := s.buildDiscountLines(ctx, items)
	if err != nil {
		return nil, decimal.Zero, err
	}

	amount := discount.Amount(d, subtotal, lines)
	s.logger.Debug().
		Str("code", d.Code).
		Str("amount", amount.String()).
		Msg("discount applied")

	return d, amount, nil
}

// buildDiscountLines maps the cart items to evaluator lines, resolving each
// product's category for category-scoped discounts. Lines whose product no
// longer exists keep a nil category and still count toward the subtotal.
func (s *orderService) buildDiscountLines(ctx context.Context, items []model.OrderItemRequest) ([]discount.Line, error) {
	seen := make(map[uuid.UUID]bool, len(items))
	ids := make([]uuid.UUID, 0, len(items))
	for _, item := range items {
		if !seen[item.ProductID] {
			seen[item.ProductID] = true
			ids = append(ids, item.ProductID)
		}
	}

	products, err := s.productRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve product details: %w", err)
	}

	categoryByProduct := make(map[uuid.UUID]*uuid.UUID, len(products))
	for _, p := range products {
		categoryByProduct[p.ID] = p.CategoryID
	}

	lines := make([]discount.Line, len(items))
	for i, item := range items {
		lines[i] = discount.Line{
			ProductID:  item.ProductID,
			CategoryID: categoryByProduct[item.ProductID],
			UnitPrice:  item.UnitPrice,
			Quantity:   item.Quantity,
		}
	}
	return lines, nil
}

// resolveCustomer links the order to a customer record by phone, creating
// one inside the transaction when no match exists. Orders without a phone
// stay anonymous.
func (s *orderService) resolveCustomer(ctx context.Context, tx pgx.Tx, req *model.OrderRequest, now time.Time) (*uuid.UUID, error) {
	if req.CustomerPhone == nil || strings.TrimSpace(*req.CustomerPhone) == "" {
		return nil, nil
	}

	existing, err := s.customerRepo.GetByPhone(ctx, *req.CustomerPhone)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to look up customer by phone")
		return nil, fmt.Errorf("failed to resolve customer: %w", err)
	}
	if existing != nil {
		return &existing.ID, nil
	}

	customer := &model.Customer{
		ID:        uuid.New(),
		Name:      req.CustomerName,
		Phone:     req.CustomerPhone,
		Address:   req.CustomerAddress,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.customerRepo.CreateTx(ctx, tx, customer); err != nil {
		s.logger.Error().Err(err).Msg("failed to create customer")
		return nil, fmt.Errorf("failed to resolve customer: %w", err)
	}

	s.logger.Debug().Str("customer_id", customer.ID.String()).Msg("customer created for order")
	return &customer.ID, nil
}

// GetByID retrieves an order with its items.
func (s *orderService) GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to get order")
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	return order, nil
}

// GetAll retrieves orders with pagination.
func (s *orderService) GetAll(ctx context.Context, limit, offset int) ([]model.Order, error) {
	orders, err := s.orderRepo.GetAll(ctx, limit, offset)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list orders")
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

// GetByStatus retrieves orders in a given status.
func (s *orderService) GetByStatus(ctx context.Context, status model.OrderStatus) ([]model.Order, error) {
	if !status.IsValid() {
		return nil, model.NewDomainError(model.ErrCodeInvalidStatusTransition, fmt.Sprintf("unknown order status %q", status))
	}

	orders, err := s.orderRepo.GetByStatus(ctx, status)
	if err != nil {
		s.logger.Error().Err(err).Str("status", string(status)).Msg("failed to list orders by status")
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

// UpdateStatus transitions an order. Only the allowed lifecycle edges pass;
// reaching delivered stamps delivered_at.
func (s *orderService) UpdateStatus(ctx context.Context, id uuid.UUID, status model.OrderStatus) (*model.Order, error) {
	if !status.IsValid() {
		return nil, model.NewDomainError(model.ErrCodeInvalidStatusTransition, fmt.Sprintf("unknown order status %q", status))
	}

	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to get order")
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}
	if order == nil {
		return nil, model.ErrOrderNotFound
	}

	if !order.Status.CanTransitionTo(status) {
		s.logger.Warn().
			Str("order_id", id.String()).
			Str("from", string(order.Status)).
			Str("to", string(status)).
			Msg("status transition rejected")
		return nil, model.ErrInvalidStatusTransition
	}

	var deliveredAt *time.Time
	if status == model.StatusDelivered {
		now := time.Now()
		deliveredAt = &now
	}

	if err := s.orderRepo.UpdateStatus(ctx, id, status, deliveredAt); err != nil {
		s.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to update order status")
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}

	order.Status = status
	if deliveredAt != nil {
		order.DeliveredAt = deliveredAt
	}

	s.logger.Info().
		Str("order_id", id.String()).
		Str("status", string(status)).
		Msg("order status updated")

	return order, nil
}

// Delete removes an order.
func (s *orderService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.orderRepo.Delete(ctx, id); err != nil {
		s.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to delete order")
		return fmt.Errorf("failed to delete order: %w", err)
	}
	return nil
}

// Statistics aggregates orders over the requested period.
func (s *orderService) Statistics(ctx context.Context, period model.StatisticsPeriod) (*model.OrderStatistics, error) {
	since := periodStart(period, time.Now())

	stats, err := s.orderRepo.Statistics(ctx, since)
	if err != nil {
		s.logger.Error().Err(err).Str("period", string(period)).Msg("failed to compute order statistics")
		return nil, fmt.Errorf("failed to compute order statistics: %w", err)
	}
	return stats, nil
}

// HandOff formats the WhatsApp hand-off for an order.
func (s *orderService) HandOff(order *model.Order) OrderHandOff {
	return OrderHandOff{
		Message: s.whatsapp.Message(order),
		URL:     s.whatsapp.URL(order),
	}
}

// validateOrderRequest validates the order request.
func (s *orderService) validateOrderRequest(req *model.OrderRequest) error {
	if req == nil {
		return model.NewDomainError(model.ErrCodeMissingField, "order request is required")
	}

	if strings.TrimSpace(req.CustomerName) == "" {
		return model.NewDomainError(model.ErrCodeMissingField, "customer name is required")
	}

	if !req.DeliveryOption.IsValid() {
		return model.NewDomainError(model.ErrCodeMissingField, fmt.Sprintf("unknown delivery option %q", req.DeliveryOption))
	}

	if req.DeliveryOption == model.DeliveryDelivery &&
		(req.CustomerAddress == nil || strings.TrimSpace(*req.CustomerAddress) == "") {
		return model.NewDomainError(model.ErrCodeMissingField, "delivery address is required for home delivery")
	}

	if len(req.Items) == 0 {
		return model.NewDomainError(model.ErrCodeMissingField, "order must contain at least one item")
	}

	for i, item := range req.Items {
		if item.ProductID == uuid.Nil {
			return model.NewDomainError(model.ErrCodeMissingField, fmt.Sprintf("item %d: product ID is required", i))
		}
		if strings.TrimSpace(item.ProductName) == "" {
			return model.NewDomainError(model.ErrCodeMissingField, fmt.Sprintf("item %d: product name is required", i))
		}
		if item.Quantity <= 0 {
			return model.ErrInvalidQuantity
		}
		if item.UnitPrice.IsNegative() {
			return model.NewDomainError(model.ErrCodeMissingField, fmt.Sprintf("item %d: unit price cannot be negative", i))
		}
	}

	return nil
}

// periodStart maps a statistics period to its lower bound. "today" starts at
// local midnight; "all" has no bound.
func periodStart(period model.StatisticsPeriod, now time.Time) *time.Time {
	var since time.Time
	switch period {
	case model.PeriodToday:
		since = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	case model.PeriodWeek:
		since = now.AddDate(0, 0, -7)
	case model.PeriodMonth:
		since = now.AddDate(0, -1, 0)
	default:
		return nil
	}
	return &since
}

// newOrderNumber builds a human-readable order reference, e.g.
// PED-20260901-3F2A1B.
func newOrderNumber(now time.Time) string {
	suffix := strings.ToUpper(uuid.NewString()[:6])
	return fmt.Sprintf("PED-%s-%s", now.Format("20060102"), suffix)
}
