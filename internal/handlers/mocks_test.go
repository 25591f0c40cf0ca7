package handlers

import (
	"context"
	"io"
	"net/url"

	"shopcatalog/internal/catalog"
	"shopcatalog/internal/models"
	"shopcatalog/internal/services"

	"github.com/stretchr/testify/mock"
)

type MockCategoryService struct {
	mock.Mock
}

func (m *MockCategoryService) Tree(ctx context.Context) (*catalog.Tree, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Tree), args.Error(1)
}

func (m *MockCategoryService) Get(ctx context.Context, id int64) (*services.CategoryDetail, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.CategoryDetail), args.Error(1)
}

func (m *MockCategoryService) Navigation(ctx context.Context, section models.DisplaySection) ([]*models.CategoryNode, error) {
	args := m.Called(ctx, section)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.CategoryNode), args.Error(1)
}

func (m *MockCategoryService) Create(ctx context.Context, input *models.CategoryInput) (*models.Category, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Category), args.Error(1)
}

func (m *MockCategoryService) Update(ctx context.Context, id int64, input *models.CategoryInput) (*models.Category, error) {
	args := m.Called(ctx, id, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Category), args.Error(1)
}

func (m *MockCategoryService) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockCategoryService) AttributeSchema(ctx context.Context, id int64) ([]*models.CategoryAttribute, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.CategoryAttribute), args.Error(1)
}

func (m *MockCategoryService) AddAttribute(ctx context.Context, categoryID int64, input *models.CategoryAttributeInput) (*models.CategoryAttribute, error) {
	args := m.Called(ctx, categoryID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CategoryAttribute), args.Error(1)
}

func (m *MockCategoryService) RemoveAttribute(ctx context.Context, categoryID int64, key string) error {
	args := m.Called(ctx, categoryID, key)
	return args.Error(0)
}

func (m *MockCategoryService) FacetValues(ctx context.Context, categoryID int64, key string) ([]*models.FacetValue, error) {
	args := m.Called(ctx, categoryID, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.FacetValue), args.Error(1)
}

func (m *MockCategoryService) Invalidate(ctx context.Context) {
	m.Called(ctx)
}

type MockFilterService struct {
	mock.Mock
}

func (m *MockFilterService) Filter(ctx context.Context, categoryID *int64, values url.Values) (*services.FilterResult, error) {
	args := m.Called(ctx, categoryID, values)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.FilterResult), args.Error(1)
}

type MockProductService struct {
	mock.Mock
}

func (m *MockProductService) Create(ctx context.Context, input *models.ProductInput) (*models.Product, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *MockProductService) Get(ctx context.Context, id int64) (*models.ProductView, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ProductView), args.Error(1)
}

func (m *MockProductService) Update(ctx context.Context, id int64, input *models.ProductInput) (*models.Product, *models.AttributeCleanup, error) {
	args := m.Called(ctx, id, input)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*models.Product), args.Get(1).(*models.AttributeCleanup), args.Error(2)
}

func (m *MockProductService) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockProductService) NewArrivals(ctx context.Context, limit int) ([]*models.ProductView, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.ProductView), args.Error(1)
}

func (m *MockProductService) SetNewArrival(ctx context.Context, id int64, flag bool) error {
	args := m.Called(ctx, id, flag)
	return args.Error(0)
}

func (m *MockProductService) RefreshNewArrivals(ctx context.Context, days int) (int64, int64, error) {
	args := m.Called(ctx, days)
	return args.Get(0).(int64), args.Get(1).(int64), args.Error(2)
}

func (m *MockProductService) ClearNewArrivals(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockProductService) UploadImage(ctx context.Context, productID int64, filename string, reader io.Reader, size int64, altText *string, isPrimary bool) (*models.ProductImage, error) {
	args := m.Called(ctx, productID, filename, reader, size, altText, isPrimary)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ProductImage), args.Error(1)
}

type MockAttributeService struct {
	mock.Mock
}

func (m *MockAttributeService) GetDisplayValue(ctx context.Context, productID int64, key string) (string, bool, error) {
	args := m.Called(ctx, productID, key)
	return args.String(0), args.Bool(1), args.Error(2)
}

func (m *MockAttributeService) GetActiveDisplayValue(ctx context.Context, productID int64, key string) (string, bool, error) {
	args := m.Called(ctx, productID, key)
	return args.String(0), args.Bool(1), args.Error(2)
}

func (m *MockAttributeService) SetAttributeValue(ctx context.Context, productID int64, key, value string) (catalog.AttributeValueSource, error) {
	args := m.Called(ctx, productID, key, value)
	return args.Get(0).(catalog.AttributeValueSource), args.Error(1)
}

func (m *MockAttributeService) SetLegacyValue(ctx context.Context, productID int64, key, value string) error {
	args := m.Called(ctx, productID, key, value)
	return args.Error(0)
}

func (m *MockAttributeService) AttributesDict(ctx context.Context, productID int64) (map[string]string, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]string), args.Error(1)
}

func (m *MockAttributeService) DisplayAttributes(ctx context.Context, products []*models.Product) (map[int64]map[string]string, error) {
	args := m.Called(ctx, products)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[int64]map[string]string), args.Error(1)
}

func (m *MockAttributeService) CleanupOnCategoryChange(ctx context.Context, productID, categoryID int64) (*models.AttributeCleanup, error) {
	args := m.Called(ctx, productID, categoryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AttributeCleanup), args.Error(1)
}

func (m *MockAttributeService) CleanupProduct(ctx context.Context, productID int64) (*models.AttributeCleanup, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AttributeCleanup), args.Error(1)
}

func (m *MockAttributeService) CreateAttribute(ctx context.Context, input *models.AttributeInput) (*models.Attribute, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Attribute), args.Error(1)
}

func (m *MockAttributeService) ListAttributes(ctx context.Context) ([]*models.Attribute, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Attribute), args.Error(1)
}

func (m *MockAttributeService) AddAttributeValue(ctx context.Context, key string, input *models.AttributeValueInput) (*models.AttributeValue, error) {
	args := m.Called(ctx, key, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AttributeValue), args.Error(1)
}

func (m *MockAttributeService) ListAttributeValues(ctx context.Context, key string) ([]*models.AttributeValue, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.AttributeValue), args.Error(1)
}
