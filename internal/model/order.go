package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderStatus is the order lifecycle state.
type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusConfirmed OrderStatus = "confirmed"
	StatusPreparing OrderStatus = "preparing"
	StatusReady     OrderStatus = "ready"
	StatusDelivered OrderStatus = "delivered"
	StatusCancelled OrderStatus = "cancelled"
)

// DeliveryOption selects how the order reaches the customer.
type DeliveryOption string

const (
	DeliveryPickup   DeliveryOption = "pickup"
	DeliveryDelivery DeliveryOption = "delivery"
)

// statusTransitions is the closed set of allowed status edges. Cancellation
// is reachable from any non-terminal state; delivered and cancelled are
// terminal.
var statusTransitions = map[OrderStatus][]OrderStatus{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusPreparing, StatusCancelled},
	StatusPreparing: {StatusReady, StatusCancelled},
	StatusReady:     {StatusDelivered, StatusCancelled},
	StatusDelivered: {},
	StatusCancelled: {},
}

// IsValid reports whether s is a known order status.
func (s OrderStatus) IsValid() bool {
	_, ok := statusTransitions[s]
	return ok
}

// CanTransitionTo reports whether the edge s -> next is allowed.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range statusTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsValid reports whether o is a known delivery option.
func (o DeliveryOption) IsValid() bool {
	return o == DeliveryPickup || o == DeliveryDelivery
}

// Order is a placed order. Customer contact fields are denormalised
// snapshots taken at order time.
type Order struct {
	ID              uuid.UUID       `json:"id" db:"id"`
	OrderNumber     string          `json:"orderNumber" db:"order_number"`
	CustomerID      *uuid.UUID      `json:"customerId,omitempty" db:"customer_id"`
	CustomerName    string          `json:"customerName" db:"customer_name"`
	CustomerPhone   *string         `json:"customerPhone,omitempty" db:"customer_phone"`
	CustomerAddress *string         `json:"customerAddress,omitempty" db:"customer_address"`
	DeliveryOption  DeliveryOption  `json:"deliveryOption" db:"delivery_option"`
	Status          OrderStatus     `json:"status" db:"status"`
	Subtotal        decimal.Decimal `json:"subtotal" db:"subtotal"`
	DiscountAmount  decimal.Decimal `json:"discountAmount" db:"discount_amount"`
	DeliveryFee     decimal.Decimal `json:"deliveryFee" db:"delivery_fee"`
	Total           decimal.Decimal `json:"total" db:"total"`
	DiscountCode    *string         `json:"discountCode,omitempty" db:"discount_code"`
	Notes           *string         `json:"notes,omitempty" db:"notes"`
	CreatedAt       time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time       `json:"updatedAt" db:"updated_at"`
	DeliveredAt     *time.Time      `json:"deliveredAt,omitempty" db:"delivered_at"`

	Items []OrderItem `json:"items,omitempty" db:"-"`
}

// OrderItem is a line of an order. Product and variant names and the unit
// price are snapshots so the order stays historically accurate when the
// catalogue changes later.
type OrderItem struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	OrderID     uuid.UUID       `json:"-" db:"order_id"`
	ProductID   *uuid.UUID      `json:"productId,omitempty" db:"product_id"`
	VariantID   *uuid.UUID      `json:"variantId,omitempty" db:"variant_id"`
	ProductName string          `json:"productName" db:"product_name"`
	VariantName *string         `json:"variantName,omitempty" db:"variant_name"`
	Quantity    int             `json:"quantity" db:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice" db:"unit_price"`
	Subtotal    decimal.Decimal `json:"subtotal" db:"subtotal"`
	CreatedAt   time.Time       `json:"createdAt" db:"created_at"`
}

// OrderRequest is the payload for creating an order.
type OrderRequest struct {
	CustomerName    string             `json:"customerName"`
	CustomerPhone   *string            `json:"customerPhone,omitempty"`
	CustomerAddress *string            `json:"customerAddress,omitempty"`
	DeliveryOption  DeliveryOption     `json:"deliveryOption"`
	Notes           *string            `json:"notes,omitempty"`
	DiscountCode    *string            `json:"discountCode,omitempty"`
	Items           []OrderItemRequest `json:"items"`
}

// OrderItemRequest is a single cart line in an order request. The name and
// price snapshots are submitted by the cart, not looked up live.
type OrderItemRequest struct {
	ProductID   uuid.UUID       `json:"productId"`
	VariantID   *uuid.UUID      `json:"variantId,omitempty"`
	ProductName string          `json:"productName"`
	VariantName *string         `json:"variantName,omitempty"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
}

// StatisticsPeriod selects the window for order statistics.
type StatisticsPeriod string

const (
	PeriodToday StatisticsPeriod = "today"
	PeriodWeek  StatisticsPeriod = "week"
	PeriodMonth StatisticsPeriod = "month"
	PeriodAll   StatisticsPeriod = "all"
)

// OrderStatistics summarises non-cancelled orders over a period.
type OrderStatistics struct {
	TotalOrders       int             `json:"totalOrders"`
	TotalRevenue      decimal.Decimal `json:"totalRevenue"`
	AverageOrderValue decimal.Decimal `json:"averageOrderValue"`
	DeliveredOrders   int             `json:"deliveredOrders"`
}
