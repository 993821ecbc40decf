package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"granel-store/internal/model"
)

// CategoryService defines operations for category management.
type CategoryService interface {
	// GetAll retrieves all categories.
	GetAll(ctx context.Context) ([]model.Category, error)

	// GetByID retrieves a single category by ID.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Category, error)

	// Create creates a new category.
	Create(ctx context.Context, category *model.Category) error

	// Update updates an existing category.
	Update(ctx context.Context, category *model.Category) error

	// Delete removes a category. Fails when products still reference it.
	Delete(ctx context.Context, id uuid.UUID) error
}

// ProductService defines operations for product management.
type ProductService interface {
	// GetAll retrieves products with pagination.
	GetAll(ctx context.Context, limit, offset int) ([]model.Product, error)

	// GetActive retrieves active products only.
	GetActive(ctx context.Context, limit, offset int) ([]model.Product, error)

	// Search finds active products by name.
	Search(ctx context.Context, query string) ([]model.Product, error)

	// GetByID retrieves a single product by ID.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error)

	// Create creates a product with its variants.
	Create(ctx context.Context, product *model.Product) error

	// Update updates a product.
	Update(ctx context.Context, product *model.Product) error

	// Delete removes a product.
	Delete(ctx context.Context, id uuid.UUID) error
}

// CustomerService defines operations for customer management.
type CustomerService interface {
	// GetAll retrieves all customers.
	GetAll(ctx context.Context) ([]model.Customer, error)

	// GetByID retrieves a single customer by ID.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Customer, error)

	// Search finds customers by name or phone.
	Search(ctx context.Context, query string) ([]model.Customer, error)

	// Create creates a new customer.
	Create(ctx context.Context, customer *model.Customer) error

	// Update updates an existing customer.
	Update(ctx context.Context, customer *model.Customer) error

	// Delete removes a customer.
	Delete(ctx context.Context, id uuid.UUID) error

	// Statistics summarises the customer base.
	Statistics(ctx context.Context) (*model.CustomerStatistics, error)
}

// DiscountValidation is the outcome of validating a discount code against a
// cart subtotal. Validation failures are data, not errors.
type DiscountValidation struct {
	Valid    bool            `json:"valid"`
	Error    string          `json:"error,omitempty"`
	Discount *model.Discount `json:"discount,omitempty"`
}

// DiscountService defines operations for discount management and validation.
type DiscountService interface {
	// ValidateCode checks whether a code may be applied to a cart with the
	// given subtotal. The returned error is for persistence failures only.
	ValidateCode(ctx context.Context, code string, subtotal decimal.Decimal) (*DiscountValidation, error)

	// GetAll retrieves all discounts.
	GetAll(ctx context.Context) ([]model.Discount, error)

	// GetActive retrieves currently applicable discounts.
	GetActive(ctx context.Context) ([]model.Discount, error)

	// GetByID retrieves a single discount by ID.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Discount, error)

	// Create creates a new discount.
	Create(ctx context.Context, discount *model.Discount) error

	// Update updates an existing discount.
	Update(ctx context.Context, discount *model.Discount) error

	// Delete removes a discount.
	Delete(ctx context.Context, id uuid.UUID) error

	// SetActive toggles a discount's active flag.
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
}

// OrderHandOff is the outbound WhatsApp hand-off for a created order.
type OrderHandOff struct {
	Message string `json:"message"`
	URL     string `json:"url"`
}

// OrderService defines operations for order management.
type OrderService interface {
	// Create places a new order: totals, discount, customer resolution,
	// stock decrement and usage counting in a single transaction.
	Create(ctx context.Context, req *model.OrderRequest) (*model.Order, error)

	// GetByID retrieves an order with its items.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error)

	// GetAll retrieves orders with pagination.
	GetAll(ctx context.Context, limit, offset int) ([]model.Order, error)

	// GetByStatus retrieves orders in a given status.
	GetByStatus(ctx context.Context, status model.OrderStatus) ([]model.Order, error)

	// UpdateStatus transitions an order to a new status. Illegal
	// transitions are rejected.
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.OrderStatus) (*model.Order, error)

	// Delete removes an order.
	Delete(ctx context.Context, id uuid.UUID) error

	// Statistics aggregates orders over a period.
	Statistics(ctx context.Context, period model.StatisticsPeriod) (*model.OrderStatistics, error)

	// HandOff formats the WhatsApp hand-off for an order.
	HandOff(order *model.Order) OrderHandOff
}

// InventoryService defines operations for stock management.
type InventoryService interface {
	// Overview returns the full inventory state.
	Overview(ctx context.Context) (*model.StockOverview, error)

	// LowStock lists variants at or below the low-stock threshold.
	LowStock(ctx context.Context) ([]model.StockItem, error)

	// OutOfStock lists variants with zero stock.
	OutOfStock(ctx context.Context) ([]model.StockItem, error)

	// SetStock sets a variant's stock to an absolute value.
	SetStock(ctx context.Context, variantID uuid.UUID, stock int) error

	// AdjustStock applies a relative change, returning the new stock.
	AdjustStock(ctx context.Context, variantID uuid.UUID, delta int) (int, error)

	// BulkSetStock applies several absolute updates, reporting per-entry
	// failures without aborting the batch.
	BulkSetStock(ctx context.Context, updates []model.StockUpdate) (int, []string, error)

	// CheckAvailability reports whether a variant holds enough stock.
	CheckAvailability(ctx context.Context, variantID uuid.UUID, quantity int) (bool, int, error)
}

// ImportResult reports the outcome of a catalogue import.
type ImportResult struct {
	Imported int      `json:"imported"`
	Failed   int      `json:"failed"`
	Errors   []string `json:"errors,omitempty"`
}

// ImportService defines the CSV catalogue import.
type ImportService interface {
	// ImportProducts loads a CSV file by path (local or S3, per
	// configuration) and creates a product with a default variant per row.
	ImportProducts(ctx context.Context, path string) (*ImportResult, error)
}
