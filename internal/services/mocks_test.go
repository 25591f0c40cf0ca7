package services

import (
	"context"
	"io"
	"time"

	"shopcatalog/internal/caching"
	"shopcatalog/internal/models"

	"github.com/stretchr/testify/mock"
)

type MockCategoryRepository struct {
	mock.Mock
}

func (m *MockCategoryRepository) Create(ctx context.Context, category *models.Category) error {
	args := m.Called(ctx, category)
	return args.Error(0)
}

func (m *MockCategoryRepository) GetByID(ctx context.Context, id int64) (*models.Category, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Category), args.Error(1)
}

func (m *MockCategoryRepository) Update(ctx context.Context, category *models.Category) error {
	args := m.Called(ctx, category)
	return args.Error(0)
}

func (m *MockCategoryRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockCategoryRepository) List(ctx context.Context) ([]*models.Category, error) {
	args := m.Called(ctx)
	return args.Get(0).([]*models.Category), args.Error(1)
}

func (m *MockCategoryRepository) ActiveProductCounts(ctx context.Context) (map[int64]int, error) {
	args := m.Called(ctx)
	return args.Get(0).(map[int64]int), args.Error(1)
}

type MockAttributeRepository struct {
	mock.Mock
}

func (m *MockAttributeRepository) Create(ctx context.Context, attribute *models.Attribute) error {
	args := m.Called(ctx, attribute)
	return args.Error(0)
}

func (m *MockAttributeRepository) GetByKey(ctx context.Context, key string) (*models.Attribute, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Attribute), args.Error(1)
}

func (m *MockAttributeRepository) List(ctx context.Context) ([]*models.Attribute, error) {
	args := m.Called(ctx)
	return args.Get(0).([]*models.Attribute), args.Error(1)
}

func (m *MockAttributeRepository) CreateValue(ctx context.Context, value *models.AttributeValue) error {
	args := m.Called(ctx, value)
	return args.Error(0)
}

func (m *MockAttributeRepository) ListValues(ctx context.Context, key string) ([]*models.AttributeValue, error) {
	args := m.Called(ctx, key)
	return args.Get(0).([]*models.AttributeValue), args.Error(1)
}

type MockCategoryAttributeRepository struct {
	mock.Mock
}

func (m *MockCategoryAttributeRepository) Create(ctx context.Context, attribute *models.CategoryAttribute, values []string) error {
	args := m.Called(ctx, attribute, values)
	return args.Error(0)
}

func (m *MockCategoryAttributeRepository) ListByCategories(ctx context.Context, categoryIDs []int64) ([]*models.CategoryAttribute, error) {
	args := m.Called(ctx, categoryIDs)
	return args.Get(0).([]*models.CategoryAttribute), args.Error(1)
}

func (m *MockCategoryAttributeRepository) Delete(ctx context.Context, categoryID int64, key string) error {
	args := m.Called(ctx, categoryID, key)
	return args.Error(0)
}

type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) Create(ctx context.Context, product *models.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) GetByID(ctx context.Context, id int64) (*models.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *MockProductRepository) Update(ctx context.Context, product *models.Product) (*models.AttributeCleanup, error) {
	args := m.Called(ctx, product)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AttributeCleanup), args.Error(1)
}

func (m *MockProductRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockProductRepository) ListByScope(ctx context.Context, scope models.ProductScope) ([]*models.Product, error) {
	args := m.Called(ctx, scope)
	return args.Get(0).([]*models.Product), args.Error(1)
}

func (m *MockProductRepository) ListNewArrivals(ctx context.Context, limit int) ([]*models.Product, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]*models.Product), args.Error(1)
}

func (m *MockProductRepository) SetNewArrival(ctx context.Context, id int64, flag bool) error {
	args := m.Called(ctx, id, flag)
	return args.Error(0)
}

func (m *MockProductRepository) MarkNewArrivalsSince(ctx context.Context, since time.Time) (int64, error) {
	args := m.Called(ctx, since)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockProductRepository) UnmarkNewArrivalsBefore(ctx context.Context, before time.Time) (int64, error) {
	args := m.Called(ctx, before)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockProductRepository) ClearNewArrivals(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type MockProductAttributeRepository struct {
	mock.Mock
}

func (m *MockProductAttributeRepository) ListFlexible(ctx context.Context, productIDs []int64) ([]*models.ProductAttributeValue, error) {
	args := m.Called(ctx, productIDs)
	return args.Get(0).([]*models.ProductAttributeValue), args.Error(1)
}

func (m *MockProductAttributeRepository) ListLegacy(ctx context.Context, productIDs []int64) ([]*models.ProductAttribute, error) {
	args := m.Called(ctx, productIDs)
	return args.Get(0).([]*models.ProductAttribute), args.Error(1)
}

func (m *MockProductAttributeRepository) GetFlexible(ctx context.Context, productID int64, key string) (*models.ProductAttributeValue, error) {
	args := m.Called(ctx, productID, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ProductAttributeValue), args.Error(1)
}

func (m *MockProductAttributeRepository) GetLegacy(ctx context.Context, productID int64, key string) (*models.ProductAttribute, error) {
	args := m.Called(ctx, productID, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ProductAttribute), args.Error(1)
}

func (m *MockProductAttributeRepository) SetFlexibleValue(ctx context.Context, productID int64, key, value string) (*models.ProductAttributeValue, error) {
	args := m.Called(ctx, productID, key, value)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ProductAttributeValue), args.Error(1)
}

func (m *MockProductAttributeRepository) SetLegacyValue(ctx context.Context, productID int64, key, value string) error {
	args := m.Called(ctx, productID, key, value)
	return args.Error(0)
}

func (m *MockProductAttributeRepository) Cleanup(ctx context.Context, productID, categoryID int64) (*models.AttributeCleanup, error) {
	args := m.Called(ctx, productID, categoryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AttributeCleanup), args.Error(1)
}

func (m *MockProductAttributeRepository) MatchLegacy(ctx context.Context, key string, values []string) ([]int64, error) {
	args := m.Called(ctx, key, values)
	return args.Get(0).([]int64), args.Error(1)
}

func (m *MockProductAttributeRepository) MatchPredefined(ctx context.Context, key string, values []string) ([]int64, error) {
	args := m.Called(ctx, key, values)
	return args.Get(0).([]int64), args.Error(1)
}

func (m *MockProductAttributeRepository) MatchCustom(ctx context.Context, key string, values []string) ([]int64, error) {
	args := m.Called(ctx, key, values)
	return args.Get(0).([]int64), args.Error(1)
}

func (m *MockProductAttributeRepository) KeysInUse(ctx context.Context, isActive bool) ([]string, error) {
	args := m.Called(ctx, isActive)
	return args.Get(0).([]string), args.Error(1)
}

type MockProductImageRepository struct {
	mock.Mock
}

func (m *MockProductImageRepository) Create(ctx context.Context, image *models.ProductImage) error {
	args := m.Called(ctx, image)
	return args.Error(0)
}

func (m *MockProductImageRepository) ListByProducts(ctx context.Context, productIDs []int64) ([]*models.ProductImage, error) {
	args := m.Called(ctx, productIDs)
	return args.Get(0).([]*models.ProductImage), args.Error(1)
}

func (m *MockProductImageRepository) GetByID(ctx context.Context, id int64) (*models.ProductImage, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ProductImage), args.Error(1)
}

func (m *MockProductImageRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockCacheService struct {
	mock.Mock
}

func (m *MockCacheService) GetCategorySnapshot(ctx context.Context) (*caching.CategorySnapshot, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*caching.CategorySnapshot), args.Error(1)
}

func (m *MockCacheService) SetCategorySnapshot(ctx context.Context, snapshot *caching.CategorySnapshot, ttl time.Duration) error {
	args := m.Called(ctx, snapshot, ttl)
	return args.Error(0)
}

func (m *MockCacheService) InvalidateCategorySnapshot(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockCacheService) GetProductView(ctx context.Context, productID int64) (*models.ProductView, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ProductView), args.Error(1)
}

func (m *MockCacheService) SetProductView(ctx context.Context, view *models.ProductView, ttl time.Duration) error {
	args := m.Called(ctx, view, ttl)
	return args.Error(0)
}

func (m *MockCacheService) DeleteProductView(ctx context.Context, productID int64) error {
	args := m.Called(ctx, productID)
	return args.Error(0)
}

func (m *MockCacheService) InvalidateProductViews(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockCacheService) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type MockMinioService struct {
	mock.Mock
}

func (m *MockMinioService) UploadImage(ctx context.Context, objectName string, reader io.Reader, objectSize int64, contentType string) error {
	args := m.Called(ctx, objectName, reader, objectSize, contentType)
	return args.Error(0)
}

func (m *MockMinioService) GetPresignedURL(ctx context.Context, objectName string, expiry time.Duration) (string, error) {
	args := m.Called(ctx, objectName, expiry)
	return args.String(0), args.Error(1)
}

func (m *MockMinioService) DeleteImage(ctx context.Context, objectName string) error {
	args := m.Called(ctx, objectName)
	return args.Error(0)
}

func (m *MockMinioService) EnsureBucketExists(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockMinioService) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func int64Ptr(v int64) *int64 { return &v }

func stringPtr(v string) *string { return &v }

func boolPtr(v bool) *bool { return &v }
