package model

import "fmt"

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Error         string `json:"error"`
	Message       string `json:"message"`
	CorrelationID string `json:"correlationId,omitempty"`
}

// Standard error codes for API responses
const (
	ErrCodeInvalidJSON             = "INVALID_JSON"
	ErrCodeMissingField            = "MISSING_FIELD"
	ErrCodeInvalidDiscountCode     = "INVALID_DISCOUNT_CODE"
	ErrCodeDiscountExpired         = "DISCOUNT_EXPIRED"
	ErrCodeDiscountNotStarted      = "DISCOUNT_NOT_STARTED"
	ErrCodeDiscountMinPurchase     = "DISCOUNT_MIN_PURCHASE"
	ErrCodeDiscountUsageLimit      = "DISCOUNT_USAGE_LIMIT"
	ErrCodeProductNotFound         = "PRODUCT_NOT_FOUND"
	ErrCodeCategoryNotFound        = "CATEGORY_NOT_FOUND"
	ErrCodeCustomerNotFound        = "CUSTOMER_NOT_FOUND"
	ErrCodeOrderNotFound           = "ORDER_NOT_FOUND"
	ErrCodeCategoryInUse           = "CATEGORY_IN_USE"
	ErrCodeInvalidQuantity         = "INVALID_QUANTITY"
	ErrCodeInsufficientStock       = "INSUFFICIENT_STOCK"
	ErrCodeNegativeStock           = "NEGATIVE_STOCK"
	ErrCodeInvalidStatusTransition = "INVALID_STATUS_TRANSITION"
	ErrCodeUnauthorised            = "UNAUTHORIZED"
	ErrCodeForbidden               = "FORBIDDEN"
	ErrCodeInternalError           = "INTERNAL_ERROR"
)

// DomainError is a business-rule failure with a stable code.
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors. Discount messages are customer-facing and stay in
// Spanish, matching what the storefront shows at checkout.
var (
	ErrInvalidDiscountCode     = NewDomainError(ErrCodeInvalidDiscountCode, "Código de descuento no válido")
	ErrDiscountExpired         = NewDomainError(ErrCodeDiscountExpired, "Este código ha expirado")
	ErrDiscountNotStarted      = NewDomainError(ErrCodeDiscountNotStarted, "Este código aún no está disponible")
	ErrDiscountUsageLimit      = NewDomainError(ErrCodeDiscountUsageLimit, "Este código ha alcanzado su límite de usos")
	ErrProductNotFound         = NewDomainError(ErrCodeProductNotFound, "One or more products not found")
	ErrCategoryNotFound        = NewDomainError(ErrCodeCategoryNotFound, "Category not found")
	ErrCustomerNotFound        = NewDomainError(ErrCodeCustomerNotFound, "Customer not found")
	ErrOrderNotFound           = NewDomainError(ErrCodeOrderNotFound, "Order not found")
	ErrCategoryInUse           = NewDomainError(ErrCodeCategoryInUse, "No se puede eliminar una categoría con productos asociados")
	ErrInvalidQuantity         = NewDomainError(ErrCodeInvalidQuantity, "Quantity must be greater than zero")
	ErrInsufficientStock       = NewDomainError(ErrCodeInsufficientStock, "Not enough stock for one or more items")
	ErrNegativeStock           = NewDomainError(ErrCodeNegativeStock, "Stock cannot be negative")
	ErrInvalidStatusTransition = NewDomainError(ErrCodeInvalidStatusTransition, "Invalid order status transition")
)

// NewMinPurchaseError builds the min-purchase failure with the required
// amount embedded, e.g. "Compra mínima de $5000 requerida".
func NewMinPurchaseError(minPurchase string) *DomainError {
	return NewDomainError(
		ErrCodeDiscountMinPurchase,
		fmt.Sprintf("Compra mínima de $%s requerida", minPurchase),
	)
}
