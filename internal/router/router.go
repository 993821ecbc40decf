package router

import (
	"net/http"

	"github.com/rs/zerolog"

	"granel-store/internal/handler"
	"granel-store/internal/middleware"
)

// Handlers groups the HTTP handlers the router dispatches to.
type Handlers struct {
	Product  *handler.ProductHandler
	Category *handler.CategoryHandler
	Customer *handler.CustomerHandler
	Order    *handler.OrderHandler
	Discount *handler.DiscountHandler
	Stock    *handler.StockHandler
	Import   *handler.ImportHandler
}

// New creates a new HTTP router with all routes and middleware configured.
func New(h Handlers, apiKey string, logger zerolog.Logger) http.Handler {
	mux := http.NewServeMux()

	// Health check endpoint (no authentication required)
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy"}`))
	})

	// Catalogue
	mux.HandleFunc("GET /api/products", h.Product.GetAll)
	mux.HandleFunc("POST /api/products", h.Product.Create)
	mux.HandleFunc("GET /api/products/{id}", h.Product.GetByID)
	mux.HandleFunc("PUT /api/products/{id}", h.Product.Update)
	mux.HandleFunc("DELETE /api/products/{id}", h.Product.Delete)

	mux.HandleFunc("GET /api/categories", h.Category.GetAll)
	mux.HandleFunc("POST /api/categories", h.Category.Create)
	mux.HandleFunc("GET /api/categories/{id}", h.Category.GetByID)
	mux.HandleFunc("PUT /api/categories/{id}", h.Category.Update)
	mux.HandleFunc("DELETE /api/categories/{id}", h.Category.Delete)

	// Customers
	mux.HandleFunc("GET /api/customers", h.Customer.GetAll)
	mux.HandleFunc("POST /api/customers", h.Customer.Create)
	mux.HandleFunc("GET /api/customers/statistics", h.Customer.Statistics)
	mux.HandleFunc("GET /api/customers/{id}", h.Customer.GetByID)
	mux.HandleFunc("PUT /api/customers/{id}", h.Customer.Update)
	mux.HandleFunc("DELETE /api/customers/{id}", h.Customer.Delete)

	// Orders
	mux.HandleFunc("GET /api/orders", h.Order.GetAll)
	mux.HandleFunc("POST /api/orders", h.Order.Create)
	mux.HandleFunc("GET /api/orders/statistics", h.Order.Statistics)
	mux.HandleFunc("GET /api/orders/{id}", h.Order.GetByID)
	mux.HandleFunc("PATCH /api/orders/{id}/status", h.Order.UpdateStatus)
	mux.HandleFunc("DELETE /api/orders/{id}", h.Order.Delete)

	// Discounts
	mux.HandleFunc("GET /api/discounts", h.Discount.GetAll)
	mux.HandleFunc("POST /api/discounts", h.Discount.Create)
	mux.HandleFunc("POST /api/discounts/validate", h.Discount.Validate)
	mux.HandleFunc("GET /api/discounts/{id}", h.Discount.GetByID)
	mux.HandleFunc("PUT /api/discounts/{id}", h.Discount.Update)
	mux.HandleFunc("PATCH /api/discounts/{id}/active", h.Discount.SetActive)
	mux.HandleFunc("DELETE /api/discounts/{id}", h.Discount.Delete)

	// Inventory
	mux.HandleFunc("GET /api/stock", h.Stock.Overview)
	mux.HandleFunc("PUT /api/stock", h.Stock.BulkSetStock)
	mux.HandleFunc("GET /api/stock/low", h.Stock.LowStock)
	mux.HandleFunc("GET /api/stock/out", h.Stock.OutOfStock)
	mux.HandleFunc("PUT /api/stock/{id}", h.Stock.SetStock)
	mux.HandleFunc("PATCH /api/stock/{id}", h.Stock.AdjustStock)
	mux.HandleFunc("GET /api/stock/{id}/availability", h.Stock.CheckAvailability)

	// Catalogue import
	mux.HandleFunc("POST /api/import/products", h.Import.ImportProducts)

	// Apply middleware in order: Recovery -> Logging -> CORS -> APIKeyAuth
	var root http.Handler = mux
	root = middleware.APIKeyAuth(apiKey, logger)(root)
	root = middleware.CORS(root)
	root = middleware.Logging(logger)(root)
	root = middleware.Recovery(logger)(root)

	return root
}
