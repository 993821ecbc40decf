package integration

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"granel-store/internal/config"
	"granel-store/internal/handler"
	"granel-store/internal/importer"
	"granel-store/internal/model"
	"granel-store/internal/pricing"
	"granel-store/internal/repository"
	"granel-store/internal/router"
	"granel-store/internal/service"
	"granel-store/internal/whatsapp"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestServer(t *testing.T, testDB *TestDB) http.Handler {
	t.Helper()

	logger := zerolog.Nop()

	categoryRepo := repository.NewCategoryRepository(testDB.Pool, logger)
	productRepo := repository.NewProductRepository(testDB.Pool, logger)
	customerRepo := repository.NewCustomerRepository(testDB.Pool, logger)
	orderRepo := repository.NewOrderRepository(testDB.Pool, logger)
	discountRepo := repository.NewDiscountRepository(testDB.Pool, logger)

	checkout := config.CheckoutConfig{
		DeliveryFee:       decimal.NewFromInt(500),
		LowStockThreshold: 5,
	}

	pricer := pricing.NewCalculator(checkout.DeliveryFee)
	whatsappBuilder := whatsapp.NewBuilder("5491100000000")

	categoryService := service.NewCategoryService(categoryRepo, logger)
	productService := service.NewProductService(productRepo, logger)
	customerService := service.NewCustomerService(customerRepo, logger)
	discountService := service.NewDiscountService(discountRepo, logger)
	inventoryService := service.NewInventoryService(productRepo, checkout.LowStockThreshold, logger)
	importService := service.NewImportService(importer.NewFileLoader(logger), productRepo, categoryRepo, logger)
	orderService := service.NewOrderService(orderRepo, productRepo, customerRepo,
		discountRepo, pricer, whatsappBuilder, checkout, logger)

	return router.New(router.Handlers{
		Product:  handler.NewProductHandler(productService, logger),
		Category: handler.NewCategoryHandler(categoryService, logger),
		Customer: handler.NewCustomerHandler(customerService, logger),
		Order:    handler.NewOrderHandler(orderService, logger),
		Discount: handler.NewDiscountHandler(discountService, logger),
		Stock:    handler.NewStockHandler(inventoryService, logger),
		Import:   handler.NewImportHandler(importService, logger),
	}, "test-api-key", logger)
}

func TestProductAPI_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	testDB := SetupTestDB(t)
	server := setupTestServer(t, testDB)
	logger := zerolog.Nop()
	productRepo := repository.NewProductRepository(testDB.Pool, logger)

	t.Run("GET /api/products is public", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		seedProduct(t, productRepo, "Almendras", decimal.NewFromInt(9800), 12)

		req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
		w := httptest.NewRecorder()

		server.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var products []model.Product
		err := json.NewDecoder(w.Body).Decode(&products)
		require.NoError(t, err)
		require.Len(t, products, 1)
		assert.Equal(t, "Almendras", products[0].Name)
		require.Len(t, products[0].Variants, 1)
	})

	t.Run("Anonymous listing hides inactive products", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		seedProduct(t, productRepo, "Almendras", decimal.NewFromInt(9800), 12)
		hidden := seedProduct(t, productRepo, "Mix salado", decimal.NewFromInt(5400), 0)
		_, err := testDB.Pool.Exec(t.Context(), "UPDATE products SET is_active = false WHERE id = $1", hidden.ID)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
		w := httptest.NewRecorder()
		server.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		var products []model.Product
		require.NoError(t, json.NewDecoder(w.Body).Decode(&products))
		require.Len(t, products, 1)
		assert.Equal(t, "Almendras", products[0].Name)

		// The back office still sees everything.
		req = httptest.NewRequest(http.MethodGet, "/api/products", nil)
		req.Header.Set("X-API-Key", "test-api-key")
		w = httptest.NewRecorder()
		server.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		require.NoError(t, json.NewDecoder(w.Body).Decode(&products))
		assert.Len(t, products, 2)
	})

	t.Run("GET /api/products?q= searches active products by name", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		seedProduct(t, productRepo, "Almendras peladas", decimal.NewFromInt(9800), 12)
		seedProduct(t, productRepo, "Nueces mariposa", decimal.NewFromInt(8500), 15)

		req := httptest.NewRequest(http.MethodGet, "/api/products?q=almen", nil)
		w := httptest.NewRecorder()
		server.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		var products []model.Product
		require.NoError(t, json.NewDecoder(w.Body).Decode(&products))
		require.Len(t, products, 1)
		assert.Equal(t, "Almendras peladas", products[0].Name)
	})

	t.Run("POST /api/products requires API key", func(t *testing.T) {
		body := []byte(`{"name": "Nueces", "variants": [{"unit": "kg", "price": "8500", "stock": 10}]}`)

		req := httptest.NewRequest(http.MethodPost, "/api/products", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()

		server.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("POST /api/products creates product with API key", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)

		body := []byte(`{"name": "Nueces", "variants": [{"unit": "kg", "price": "8500", "stock": 10}]}`)

		req := httptest.NewRequest(http.MethodPost, "/api/products", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-API-Key", "test-api-key")
		w := httptest.NewRecorder()

		server.ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)

		var product model.Product
		err := json.NewDecoder(w.Body).Decode(&product)
		require.NoError(t, err)
		assert.Equal(t, "Nueces", product.Name)
		require.Len(t, product.Variants, 1)
		assert.True(t, product.Variants[0].IsDefault)
	})

	t.Run("GET /health returns 200 without API key", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		w := httptest.NewRecorder()

		server.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestOrderAPI_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	testDB := SetupTestDB(t)
	server := setupTestServer(t, testDB)
	logger := zerolog.Nop()
	productRepo := repository.NewProductRepository(testDB.Pool, logger)

	placeOrder := func(t *testing.T, reqBody *model.OrderRequest) *httptest.ResponseRecorder {
		t.Helper()
		body, err := json.Marshal(reqBody)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodPost, "/api/orders", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()

		server.ServeHTTP(w, req)
		return w
	}

	t.Run("POST /api/orders is public and decrements stock", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		product := seedProduct(t, productRepo, "Almendras", decimal.NewFromInt(5000), 10)
		variant := product.Variants[0]

		w := placeOrder(t, &model.OrderRequest{
			CustomerName:   "Ana",
			DeliveryOption: model.DeliveryPickup,
			Items: []model.OrderItemRequest{
				{
					ProductID:   product.ID,
					VariantID:   &variant.ID,
					ProductName: product.Name,
					Quantity:    2,
					UnitPrice:   decimal.NewFromInt(5000),
				},
			},
		})

		assert.Equal(t, http.StatusCreated, w.Code)

		var resp struct {
			Order    *model.Order         `json:"order"`
			WhatsApp service.OrderHandOff `json:"whatsapp"`
		}
		err := json.NewDecoder(w.Body).Decode(&resp)
		require.NoError(t, err)
		require.NotNil(t, resp.Order)
		assert.True(t, decimal.NewFromInt(10000).Equal(resp.Order.Total))
		assert.Contains(t, resp.Order.OrderNumber, "PED-")
		assert.NotEmpty(t, resp.WhatsApp.URL)

		updated, err := productRepo.GetVariant(t.Context(), variant.ID)
		require.NoError(t, err)
		assert.Equal(t, 8, updated.Stock)
	})

	t.Run("POST /api/orders rejects overselling", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		product := seedProduct(t, productRepo, "Porotos", decimal.NewFromInt(2300), 1)
		variant := product.Variants[0]

		w := placeOrder(t, &model.OrderRequest{
			CustomerName:   "Ana",
			DeliveryOption: model.DeliveryPickup,
			Items: []model.OrderItemRequest{
				{
					ProductID:   product.ID,
					VariantID:   &variant.ID,
					ProductName: product.Name,
					Quantity:    3,
					UnitPrice:   decimal.NewFromInt(2300),
				},
			},
		})

		assert.Equal(t, http.StatusConflict, w.Code)

		updated, err := productRepo.GetVariant(t.Context(), variant.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, updated.Stock)
	})

	t.Run("GET /api/orders requires API key", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/orders", nil)
		w := httptest.NewRecorder()

		server.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Order lifecycle via status updates", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		product := seedProduct(t, productRepo, "Chia", decimal.NewFromInt(2800), 10)
		variant := product.Variants[0]

		w := placeOrder(t, &model.OrderRequest{
			CustomerName:   "Ana",
			DeliveryOption: model.DeliveryPickup,
			Items: []model.OrderItemRequest{
				{
					ProductID:   product.ID,
					VariantID:   &variant.ID,
					ProductName: product.Name,
					Quantity:    1,
					UnitPrice:   decimal.NewFromInt(2800),
				},
			},
		})
		require.Equal(t, http.StatusCreated, w.Code)

		var createResp struct {
			Order *model.Order `json:"order"`
		}
		require.NoError(t, json.NewDecoder(w.Body).Decode(&createResp))

		body := []byte(`{"status": "confirmed"}`)
		req := httptest.NewRequest(http.MethodPatch, "/api/orders/"+createResp.Order.ID.String()+"/status", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-API-Key", "test-api-key")
		w = httptest.NewRecorder()

		server.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var updated model.Order
		require.NoError(t, json.NewDecoder(w.Body).Decode(&updated))
		assert.Equal(t, model.StatusConfirmed, updated.Status)

		// Skipping a state is refused.
		body = []byte(`{"status": "delivered"}`)
		req = httptest.NewRequest(http.MethodPatch, "/api/orders/"+createResp.Order.ID.String()+"/status", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-API-Key", "test-api-key")
		w = httptest.NewRecorder()

		server.ServeHTTP(w, req)

		assert.Equal(t, http.StatusConflict, w.Code)
	})
}

func TestDiscountAPI_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	testDB := SetupTestDB(t)
	server := setupTestServer(t, testDB)

	createDiscount := func(t *testing.T, body string) {
		t.Helper()
		req := httptest.NewRequest(http.MethodPost, "/api/discounts", bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-API-Key", "test-api-key")
		w := httptest.NewRecorder()

		server.ServeHTTP(w, req)
		require.Equal(t, http.StatusCreated, w.Code)
	}

	t.Run("POST /api/discounts/validate is public", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		createDiscount(t, `{"code": "verano2026", "name": "Promo verano", "type": "percentage", "value": "10", "isActive": true}`)

		body := []byte(`{"code": "VERANO2026", "subtotal": "10000"}`)
		req := httptest.NewRequest(http.MethodPost, "/api/discounts/validate", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()

		server.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var validation service.DiscountValidation
		require.NoError(t, json.NewDecoder(w.Body).Decode(&validation))
		assert.True(t, validation.Valid)
		require.NotNil(t, validation.Discount)
		assert.Equal(t, "VERANO2026", validation.Discount.Code)
	})

	t.Run("Validation rejects below minimum purchase", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		createDiscount(t, `{"code": "grande", "name": "Compra grande", "type": "fixed", "value": "500", "minPurchase": "5000", "isActive": true}`)

		body := []byte(`{"code": "GRANDE", "subtotal": "3000"}`)
		req := httptest.NewRequest(http.MethodPost, "/api/discounts/validate", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()

		server.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var validation service.DiscountValidation
		require.NoError(t, json.NewDecoder(w.Body).Decode(&validation))
		assert.False(t, validation.Valid)
		assert.Equal(t, "Compra mínima de $5000 requerida", validation.Error)
	})
}

func TestCORS_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	testDB := SetupTestDB(t)
	server := setupTestServer(t, testDB)

	t.Run("OPTIONS request returns CORS headers", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/api/products", nil)
		w := httptest.NewRecorder()

		server.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "PATCH")
	})
}
