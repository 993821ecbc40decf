package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"granel-store/internal/model"
)

// MockLoader is a mock implementation of importer.Loader.
type MockLoader struct {
	mock.Mock
}

func (m *MockLoader) Load(ctx context.Context, path string) (io.ReadCloser, error) {
	args := m.Called(ctx, path)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.ReadCloser), args.Error(1)
}

func TestImportService_ImportProducts(t *testing.T) {
	ctx := context.Background()

	csv := `Name,Description,Category,Price,Unit,Stock
Huevos de campo,Docena,huevos,2500,docena,30
Almendras,,frutos-secos,4600,250g,12
Sin precio,,,,,
`

	categoryID := uuid.New()

	mockLoader := new(MockLoader)
	mockProductRepo := new(MockProductRepository)
	mockCategoryRepo := new(MockCategoryRepository)

	svc := NewImportService(mockLoader, mockProductRepo, mockCategoryRepo, zerolog.Nop())

	mockLoader.On("Load", ctx, "catalogo.csv").Return(io.NopCloser(strings.NewReader(csv)), nil)
	mockCategoryRepo.On("GetBySlug", ctx, "huevos").Return(&model.Category{ID: categoryID, Slug: "huevos"}, nil)
	mockCategoryRepo.On("GetBySlug", ctx, "frutos-secos").Return(nil, nil)

	var created []*model.Product
	mockProductRepo.On("Create", ctx, mock.AnythingOfType("*model.Product")).
		Run(func(args mock.Arguments) {
			created = append(created, args.Get(1).(*model.Product))
		}).
		Return(nil)

	result, err := svc.ImportProducts(ctx, "catalogo.csv")

	require.NoError(t, err)
	assert.Equal(t, 2, result.Imported)
	assert.Equal(t, 1, result.Failed)
	require.Len(t, result.Errors, 1)

	require.Len(t, created, 2)

	huevos := created[0]
	assert.Equal(t, "Huevos de campo", huevos.Name)
	require.NotNil(t, huevos.CategoryID)
	assert.Equal(t, categoryID, *huevos.CategoryID)
	assert.True(t, huevos.IsActive)
	require.Len(t, huevos.Variants, 1)
	assert.Equal(t, "docena", huevos.Variants[0].Unit)
	assert.True(t, huevos.Variants[0].Price.Equal(decimal.NewFromInt(2500)))
	assert.Equal(t, 30, huevos.Variants[0].Stock)
	assert.True(t, huevos.Variants[0].IsDefault)

	// Unknown slug imports uncategorised.
	assert.Nil(t, created[1].CategoryID)

	mockLoader.AssertExpectations(t)
	mockCategoryRepo.AssertExpectations(t)
	mockProductRepo.AssertExpectations(t)
}

func TestImportService_ImportProducts_DefaultUnit(t *testing.T) {
	ctx := context.Background()

	csv := "Name,Price\nAvena,900\n"

	mockLoader := new(MockLoader)
	mockProductRepo := new(MockProductRepository)
	mockCategoryRepo := new(MockCategoryRepository)

	svc := NewImportService(mockLoader, mockProductRepo, mockCategoryRepo, zerolog.Nop())

	mockLoader.On("Load", ctx, "min.csv").Return(io.NopCloser(strings.NewReader(csv)), nil)

	var created *model.Product
	mockProductRepo.On("Create", ctx, mock.AnythingOfType("*model.Product")).
		Run(func(args mock.Arguments) { created = args.Get(1).(*model.Product) }).
		Return(nil)

	result, err := svc.ImportProducts(ctx, "min.csv")

	require.NoError(t, err)
	assert.Equal(t, 1, result.Imported)
	require.NotNil(t, created)
	assert.Equal(t, "unidad", created.Variants[0].Unit)
}

func TestImportService_ImportProducts_LoaderFailure(t *testing.T) {
	ctx := context.Background()

	mockLoader := new(MockLoader)
	svc := NewImportService(mockLoader, new(MockProductRepository), new(MockCategoryRepository), zerolog.Nop())

	mockLoader.On("Load", ctx, "missing.csv").Return(nil, errors.New("no such file"))

	result, err := svc.ImportProducts(ctx, "missing.csv")

	require.Error(t, err)
	assert.Nil(t, result)
}

func TestImportService_ImportProducts_RowCreateFailureContinues(t *testing.T) {
	ctx := context.Background()

	csv := "Name,Price\nUno,100\nDos,200\n"

	mockLoader := new(MockLoader)
	mockProductRepo := new(MockProductRepository)
	mockCategoryRepo := new(MockCategoryRepository)

	svc := NewImportService(mockLoader, mockProductRepo, mockCategoryRepo, zerolog.Nop())

	mockLoader.On("Load", ctx, "dup.csv").Return(io.NopCloser(strings.NewReader(csv)), nil)
	mockProductRepo.On("Create", ctx, mock.MatchedBy(func(p *model.Product) bool { return p.Name == "Uno" })).
		Return(errors.New("duplicate"))
	mockProductRepo.On("Create", ctx, mock.MatchedBy(func(p *model.Product) bool { return p.Name == "Dos" })).
		Return(nil)

	result, err := svc.ImportProducts(ctx, "dup.csv")

	require.NoError(t, err)
	assert.Equal(t, 1, result.Imported)
	assert.Equal(t, 1, result.Failed)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "Uno")
}
