package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Customer is created explicitly from the admin panel or implicitly during
// order placement when the phone number is not known yet.
type Customer struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	Name        string          `json:"name" db:"name"`
	Phone       *string         `json:"phone,omitempty" db:"phone"`
	Email       *string         `json:"email,omitempty" db:"email"`
	Address     *string         `json:"address,omitempty" db:"address"`
	Notes       *string         `json:"notes,omitempty" db:"notes"`
	IsFrequent  bool            `json:"isFrequent" db:"is_frequent"`
	TotalOrders int             `json:"totalOrders" db:"total_orders"`
	TotalSpent  decimal.Decimal `json:"totalSpent" db:"total_spent"`
	LastOrderAt *time.Time      `json:"lastOrderAt,omitempty" db:"last_order_at"`
	CreatedAt   time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time       `json:"updatedAt" db:"updated_at"`
}

// CustomerStatistics summarises the customer base for the admin dashboard.
type CustomerStatistics struct {
	TotalCustomers           int             `json:"totalCustomers"`
	FrequentCustomers        int             `json:"frequentCustomers"`
	AverageOrdersPerCustomer float64         `json:"averageOrdersPerCustomer"`
	AverageSpentPerCustomer  decimal.Decimal `json:"averageSpentPerCustomer"`
}
