package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"granel-store/internal/model"
)

func TestDiscountService_ValidateCode_Valid(t *testing.T) {
	ctx := context.Background()

	testDiscount := &model.Discount{
		ID:       uuid.New(),
		Code:     "VERANO2026",
		Type:     model.DiscountPercentage,
		Value:    decimal.NewFromInt(10),
		IsActive: true,
	}

	mockRepo := new(MockDiscountRepository)
	svc := NewDiscountService(mockRepo, zerolog.Nop())

	mockRepo.On("GetByCode", ctx, "verano2026").Return(testDiscount, nil)

	validation, err := svc.ValidateCode(ctx, "verano2026", decimal.NewFromInt(10000))

	require.NoError(t, err)
	assert.True(t, validation.Valid)
	assert.Empty(t, validation.Error)
	require.NotNil(t, validation.Discount)
	assert.Equal(t, "VERANO2026", validation.Discount.Code)
	mockRepo.AssertExpectations(t)
}

func TestDiscountService_ValidateCode_Rejections(t *testing.T) {
	ctx := context.Background()
	subtotal := decimal.NewFromInt(3000)

	expired := time.Now().Add(-time.Hour)
	future := time.Now().Add(time.Hour)
	maxUses := 5

	tests := []struct {
		name     string
		discount *model.Discount
		message  string
	}{
		{
			"unknown code",
			nil,
			"Código de descuento no válido",
		},
		{
			"inactive",
			&model.Discount{Code: "X", Type: model.DiscountFixed, Value: decimal.NewFromInt(100), IsActive: false},
			"Código de descuento no válido",
		},
		{
			"expired",
			&model.Discount{Code: "X", Type: model.DiscountFixed, Value: decimal.NewFromInt(100), IsActive: true, ExpiresAt: &expired},
			"Este código ha expirado",
		},
		{
			"not started",
			&model.Discount{Code: "X", Type: model.DiscountFixed, Value: decimal.NewFromInt(100), IsActive: true, StartsAt: &future},
			"Este código aún no está disponible",
		},
		{
			"below minimum purchase",
			&model.Discount{Code: "X", Type: model.DiscountFixed, Value: decimal.NewFromInt(100), IsActive: true, MinPurchase: decimal.NewFromInt(5000)},
			"Compra mínima de $5000 requerida",
		},
		{
			"usage limit reached",
			&model.Discount{Code: "X", Type: model.DiscountFixed, Value: decimal.NewFromInt(100), IsActive: true, MaxUses: &maxUses, CurrentUses: 5},
			"Este código ha alcanzado su límite de usos",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockDiscountRepository)
			svc := NewDiscountService(mockRepo, zerolog.Nop())

			mockRepo.On("GetByCode", ctx, "X").Return(tt.discount, nil)

			validation, err := svc.ValidateCode(ctx, "X", subtotal)

			require.NoError(t, err)
			assert.False(t, validation.Valid)
			assert.Equal(t, tt.message, validation.Error)
			assert.Nil(t, validation.Discount)
		})
	}
}

func TestDiscountService_ValidateCode_EmptyCode(t *testing.T) {
	mockRepo := new(MockDiscountRepository)
	svc := NewDiscountService(mockRepo, zerolog.Nop())

	validation, err := svc.ValidateCode(context.Background(), "   ", decimal.NewFromInt(1000))

	require.NoError(t, err)
	assert.False(t, validation.Valid)
	mockRepo.AssertNotCalled(t, "GetByCode")
}

func TestDiscountService_Create_NormalisesCode(t *testing.T) {
	ctx := context.Background()

	mockRepo := new(MockDiscountRepository)
	svc := NewDiscountService(mockRepo, zerolog.Nop())

	mockRepo.On("Create", ctx, mock.AnythingOfType("*model.Discount")).Return(nil)

	d := &model.Discount{
		Code:  " verano2026 ",
		Name:  "Promo verano",
		Type:  model.DiscountPercentage,
		Value: decimal.NewFromInt(10),
	}

	err := svc.Create(ctx, d)

	require.NoError(t, err)
	assert.Equal(t, "VERANO2026", d.Code)
	assert.NotEqual(t, uuid.Nil, d.ID)
	mockRepo.AssertExpectations(t)
}

func TestDiscountService_Create_Invalid(t *testing.T) {
	ctx := context.Background()
	productScoped := model.DiscountProduct

	started := time.Now()
	before := started.Add(-time.Hour)
	zeroUses := 0

	tests := []struct {
		name     string
		discount *model.Discount
	}{
		{"missing code", &model.Discount{Name: "n", Type: model.DiscountFixed, Value: decimal.NewFromInt(10)}},
		{"missing name", &model.Discount{Code: "C", Type: model.DiscountFixed, Value: decimal.NewFromInt(10)}},
		{"zero value", &model.Discount{Code: "C", Name: "n", Type: model.DiscountFixed, Value: decimal.Zero}},
		{"percentage over 100", &model.Discount{Code: "C", Name: "n", Type: model.DiscountPercentage, Value: decimal.NewFromInt(150)}},
		{"product scope without reference", &model.Discount{Code: "C", Name: "n", Type: productScoped, Value: decimal.NewFromInt(10)}},
		{"category scope without reference", &model.Discount{Code: "C", Name: "n", Type: model.DiscountCategory, Value: decimal.NewFromInt(10)}},
		{"unknown type", &model.Discount{Code: "C", Name: "n", Type: "bogo", Value: decimal.NewFromInt(10)}},
		{"zero max uses", &model.Discount{Code: "C", Name: "n", Type: model.DiscountFixed, Value: decimal.NewFromInt(10), MaxUses: &zeroUses}},
		{"expiry before start", &model.Discount{Code: "C", Name: "n", Type: model.DiscountFixed, Value: decimal.NewFromInt(10), StartsAt: &started, ExpiresAt: &before}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockDiscountRepository)
			svc := NewDiscountService(mockRepo, zerolog.Nop())

			err := svc.Create(ctx, tt.discount)

			require.Error(t, err)
			mockRepo.AssertNotCalled(t, "Create")
		})
	}
}

func TestDiscountService_SetActive(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()

	mockRepo := new(MockDiscountRepository)
	svc := NewDiscountService(mockRepo, zerolog.Nop())

	mockRepo.On("SetActive", ctx, id, false).Return(nil)

	require.NoError(t, svc.SetActive(ctx, id, false))
	mockRepo.AssertExpectations(t)
}
