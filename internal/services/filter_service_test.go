package services

import (
	"context"
	"net/url"
	"testing"
	"time"

	"shopcatalog/internal/caching"
	"shopcatalog/internal/catalog"
	"shopcatalog/internal/models"
	"shopcatalog/internal/pagination"
	"shopcatalog/internal/repositories"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// memoryCatalog backs the read paths of the filter engine with plain slices.
type memoryCatalog struct {
	categories []*models.Category
	products   []*models.Product
	legacy     []*models.ProductAttribute
	flexible   []*models.ProductAttributeValue
	attributes []*models.Attribute
	schema     []*models.CategoryAttribute
}

func contains[T comparable](list []T, v T) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

type memCategoryRepo struct {
	repositories.CategoryRepository
	c *memoryCatalog
}

func (r memCategoryRepo) List(context.Context) ([]*models.Category, error) {
	return r.c.categories, nil
}

func (r memCategoryRepo) ActiveProductCounts(context.Context) (map[int64]int, error) {
	counts := make(map[int64]int)
	for _, p := range r.c.products {
		if p.IsActive {
			counts[p.CategoryID]++
		}
	}
	return counts, nil
}

type memAttributeRepo struct {
	repositories.AttributeRepository
	c *memoryCatalog
}

func (r memAttributeRepo) List(context.Context) ([]*models.Attribute, error) {
	return r.c.attributes, nil
}

type memCategoryAttributeRepo struct {
	repositories.CategoryAttributeRepository
	c *memoryCatalog
}

func (r memCategoryAttributeRepo) ListByCategories(_ context.Context, ids []int64) ([]*models.CategoryAttribute, error) {
	var out []*models.CategoryAttribute
	for _, a := range r.c.schema {
		if contains(ids, a.CategoryID) {
			out = append(out, a)
		}
	}
	return out, nil
}

type memProductRepo struct {
	repositories.ProductRepository
	c *memoryCatalog
}

func (r memProductRepo) ListByScope(_ context.Context, scope models.ProductScope) ([]*models.Product, error) {
	var out []*models.Product
	for _, p := range r.c.products {
		if p.IsActive != scope.IsActive {
			continue
		}
		if scope.CategoryIDs != nil && !contains(scope.CategoryIDs, p.CategoryID) {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

type memProductAttributeRepo struct {
	repositories.ProductAttributeRepository
	c *memoryCatalog
}

func (r memProductAttributeRepo) ListFlexible(_ context.Context, ids []int64) ([]*models.ProductAttributeValue, error) {
	var out []*models.ProductAttributeValue
	for _, row := range r.c.flexible {
		if contains(ids, row.ProductID) {
			out = append(out, row)
		}
	}
	return out, nil
}

func (r memProductAttributeRepo) ListLegacy(_ context.Context, ids []int64) ([]*models.ProductAttribute, error) {
	var out []*models.ProductAttribute
	for _, row := range r.c.legacy {
		if contains(ids, row.ProductID) {
			out = append(out, row)
		}
	}
	return out, nil
}

func (r memProductAttributeRepo) MatchLegacy(_ context.Context, key string, values []string) ([]int64, error) {
	var out []int64
	for _, row := range r.c.legacy {
		if row.Key == key && contains(values, row.Value) {
			out = append(out, row.ProductID)
		}
	}
	return out, nil
}

func (r memProductAttributeRepo) MatchPredefined(_ context.Context, key string, values []string) ([]int64, error) {
	var out []int64
	for _, row := range r.c.flexible {
		if row.AttributeKey == key && row.PredefinedValue != nil && contains(values, *row.PredefinedValue) {
			out = append(out, row.ProductID)
		}
	}
	return out, nil
}

func (r memProductAttributeRepo) MatchCustom(_ context.Context, key string, values []string) ([]int64, error) {
	var out []int64
	for _, row := range r.c.flexible {
		if row.AttributeKey == key && row.AttributeValueID == nil && row.CustomValue != nil && contains(values, *row.CustomValue) {
			out = append(out, row.ProductID)
		}
	}
	return out, nil
}

func (r memProductAttributeRepo) KeysInUse(_ context.Context, isActive bool) ([]string, error) {
	seen := make(map[string]struct{})
	active := make(map[int64]bool)
	for _, p := range r.c.products {
		active[p.ID] = p.IsActive
	}
	for _, row := range r.c.legacy {
		if active[row.ProductID] == isActive {
			seen[row.Key] = struct{}{}
		}
	}
	for _, row := range r.c.flexible {
		if active[row.ProductID] == isActive {
			seen[row.AttributeKey] = struct{}{}
		}
	}
	return sortedKeys(seen), nil
}

type FilterServiceTestSuite struct {
	suite.Suite
	catalog *memoryCatalog
	service FilterService
}

func (suite *FilterServiceTestSuite) SetupTest() {
	base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	product := func(id int64, name string, categoryID int64, toman int64, hoursAfter int) *models.Product {
		return &models.Product{
			ID:         id,
			Name:       name,
			CategoryID: categoryID,
			PriceToman: decimal.NewFromInt(toman),
			IsActive:   true,
			CreatedAt:  base.Add(time.Duration(hoursAfter) * time.Hour),
		}
	}
	predefined := func(id, productID, valueID int64, key, value string) *models.ProductAttributeValue {
		return &models.ProductAttributeValue{ID: id, ProductID: productID, AttributeKey: key, AttributeValueID: int64Ptr(valueID), PredefinedValue: stringPtr(value)}
	}
	custom := func(id, productID int64, key, value string) *models.ProductAttributeValue {
		return &models.ProductAttributeValue{ID: id, ProductID: productID, AttributeKey: key, CustomValue: stringPtr(value)}
	}

	shoes := &models.Category{ID: 1, Name: "Shoes", CategoryType: models.CategoryTypeAuto, IsVisible: true}
	running := &models.Category{ID: 2, Name: "Running", ParentID: int64Ptr(1), CategoryType: models.CategoryTypeAuto, IsVisible: true}
	bags := &models.Category{ID: 3, Name: "Bags", CategoryType: models.CategoryTypeAuto, IsVisible: true}

	a := product(1, "Air Runner", 2, 100000, 1)
	a.PriceUSD = decimal.NewNullDecimal(decimal.NewFromInt(20))
	b := product(2, "Court Classic", 2, 150000, 2)
	c := product(3, "Trail Blazer", 2, 200000, 3)
	c.IsNewArrival = true
	d := product(4, "Old Runner", 2, 90000, 0)
	d.IsActive = false
	e := product(5, "Tote", 3, 50000, 4)

	suite.catalog = &memoryCatalog{
		categories: []*models.Category{shoes, running, bags},
		products:   []*models.Product{a, b, c, d, e},
		legacy: []*models.ProductAttribute{
			{ID: 1, ProductID: 1, Key: "brand", Value: "Nike"},
			{ID: 2, ProductID: 2, Key: "color", Value: "White"},
			{ID: 3, ProductID: 4, Key: "brand", Value: "Nike"},
			{ID: 4, ProductID: 5, Key: "material", Value: "Canvas"},
		},
		flexible: []*models.ProductAttributeValue{
			predefined(1, 1, 10, "color", "Black"),
			custom(2, 2, "brand", "Nike"),
			predefined(3, 3, 20, "brand", "Adidas"),
			custom(4, 3, "color", "Black"),
		},
		attributes: []*models.Attribute{
			{ID: 1, Key: "brand", IsFilterable: true},
			{ID: 2, Key: "color", IsFilterable: true},
			{ID: 3, Key: "internal_code", IsFilterable: false},
		},
		schema: []*models.CategoryAttribute{
			{ID: 1, CategoryID: 1, Key: "brand"},
			{ID: 2, CategoryID: 2, Key: "color"},
			{ID: 3, CategoryID: 2, Key: "internal_code"},
			{ID: 4, CategoryID: 3, Key: "material"},
		},
	}

	cache := caching.NewNoopCacheService()
	categoryRepo := memCategoryRepo{c: suite.catalog}
	attributeRepo := memAttributeRepo{c: suite.catalog}
	categoryAttributeRepo := memCategoryAttributeRepo{c: suite.catalog}
	productRepo := memProductRepo{c: suite.catalog}
	productAttributeRepo := memProductAttributeRepo{c: suite.catalog}

	categoryService := NewCategoryService(categoryRepo, categoryAttributeRepo, attributeRepo, cache, 0)
	attributeService := NewAttributeService(attributeRepo, categoryAttributeRepo, productRepo, productAttributeRepo, cache)
	presenter := NewProductPresenter(categoryService, attributeService, nil, nil, 0)
	suite.service = NewFilterService(categoryService, categoryAttributeRepo, attributeRepo, productRepo, productAttributeRepo, presenter)
}

func TestFilterServiceTestSuite(t *testing.T) {
	suite.Run(t, new(FilterServiceTestSuite))
}

func (suite *FilterServiceTestSuite) filter(categoryID *int64, query string) *FilterResult {
	values, err := url.ParseQuery(query)
	require.NoError(suite.T(), err)
	result, err := suite.service.Filter(context.Background(), categoryID, values)
	require.NoError(suite.T(), err)
	return result
}

func productIDs(views []*models.ProductView) []int64 {
	ids := make([]int64, 0, len(views))
	for _, v := range views {
		ids = append(ids, v.ID)
	}
	return ids
}

func (suite *FilterServiceTestSuite) TestFilter_NoParamsReturnsWholeScopeNewestFirst() {
	result := suite.filter(int64Ptr(1), "")

	assert.Equal(suite.T(), []int64{3, 2, 1}, productIDs(result.Products))
	assert.Equal(suite.T(), 3, result.Pagination.TotalItems)
	assert.Equal(suite.T(), []string{"brand", "color"}, result.AvailableAttributes)
	require.NotNil(suite.T(), result.Category)
	assert.Equal(suite.T(), models.CategoryTypeContainer, result.Category.EffectiveType)
}

func (suite *FilterServiceTestSuite) TestFilter_SingleKeyMatchesAcrossStores() {
	result := suite.filter(int64Ptr(1), "brand=Nike")

	assert.Equal(suite.T(), []int64{2, 1}, productIDs(result.Products))
	assert.Equal(suite.T(), map[string][]string{"brand": {"Nike"}}, result.FiltersApplied.Attributes)
}

func (suite *FilterServiceTestSuite) TestFilter_KeysAreIntersected() {
	result := suite.filter(int64Ptr(1), "brand=Nike&color=Black")

	assert.Equal(suite.T(), []int64{1}, productIDs(result.Products))
}

func (suite *FilterServiceTestSuite) TestFilter_ValuesOfOneKeyAreUnioned() {
	result := suite.filter(int64Ptr(1), "color=Black&color=White")

	assert.Equal(suite.T(), []int64{3, 2, 1}, productIDs(result.Products))
}

func (suite *FilterServiceTestSuite) TestFilter_PriceRangeIsInclusive() {
	result := suite.filter(int64Ptr(1), "price_toman__gte=100000&price_toman__lte=150000")

	assert.Equal(suite.T(), []int64{2, 1}, productIDs(result.Products))
	assert.Equal(suite.T(), "100000", result.FiltersApplied.Price["price_toman__gte"])
}

func (suite *FilterServiceTestSuite) TestFilter_MissingUSDPriceNeverMatches() {
	result := suite.filter(int64Ptr(1), "price_usd__gte=0")

	assert.Equal(suite.T(), []int64{1}, productIDs(result.Products))
}

func (suite *FilterServiceTestSuite) TestFilter_UnrecognizedParamsOnlyYieldNothing() {
	result := suite.filter(int64Ptr(1), "foo=bar")

	assert.Empty(suite.T(), result.Products)
	assert.Equal(suite.T(), 0, result.Pagination.TotalItems)
	assert.Equal(suite.T(), 1, result.Pagination.TotalPages)
}

func (suite *FilterServiceTestSuite) TestFilter_UnrecognizedParamIgnoredNextToRecognized() {
	result := suite.filter(int64Ptr(1), "foo=bar&brand=Nike")

	assert.Equal(suite.T(), []int64{2, 1}, productIDs(result.Products))
}

func (suite *FilterServiceTestSuite) TestFilter_NonFilterableAttributeIsNotAKey() {
	result := suite.filter(int64Ptr(1), "internal_code=X1")

	assert.NotContains(suite.T(), result.AvailableAttributes, "internal_code")
	assert.Empty(suite.T(), result.Products)
}

func (suite *FilterServiceTestSuite) TestFilter_SearchIsCaseInsensitive() {
	result := suite.filter(int64Ptr(1), "q=runner")

	assert.Equal(suite.T(), []int64{1}, productIDs(result.Products))
}

func (suite *FilterServiceTestSuite) TestFilter_NewArrivalFlag() {
	result := suite.filter(int64Ptr(1), "is_new_arrival=true")

	assert.Equal(suite.T(), []int64{3}, productIDs(result.Products))
}

func (suite *FilterServiceTestSuite) TestFilter_InactiveScope() {
	result := suite.filter(int64Ptr(1), "is_active=false&brand=Nike")

	assert.Equal(suite.T(), []int64{4}, productIDs(result.Products))
}

func (suite *FilterServiceTestSuite) TestFilter_SubcategoryScopeUsesItsOwnSchema() {
	result := suite.filter(int64Ptr(2), "")

	assert.Equal(suite.T(), []string{"color"}, result.AvailableAttributes)
	assert.Equal(suite.T(), models.CategoryTypeDirect, result.Category.EffectiveType)

	// brand is defined on the parent only
	result = suite.filter(int64Ptr(2), "brand=Nike")
	assert.Empty(suite.T(), result.Products)
}

func (suite *FilterServiceTestSuite) TestFilter_GlobalUsesKeysInUse() {
	result := suite.filter(nil, "material=Canvas")

	assert.Equal(suite.T(), []int64{5}, productIDs(result.Products))
	assert.Equal(suite.T(), []string{"brand", "color", "material"}, result.AvailableAttributes)
	assert.Nil(suite.T(), result.Category)
}

func (suite *FilterServiceTestSuite) TestFilter_CategoryParamScopesGlobalRequest() {
	result := suite.filter(nil, "category=3")

	assert.Equal(suite.T(), []int64{5}, productIDs(result.Products))
	require.NotNil(suite.T(), result.Category)
	assert.Equal(suite.T(), int64(3), result.Category.ID)
}

func (suite *FilterServiceTestSuite) TestFilter_PaginationClamps() {
	result := suite.filter(int64Ptr(1), "per_page=1000")
	assert.Equal(suite.T(), pagination.MaxPerPage, result.Pagination.PerPage)

	result = suite.filter(int64Ptr(1), "page=999&per_page=2")
	assert.Equal(suite.T(), 1, result.Pagination.CurrentPage)
	assert.Equal(suite.T(), []int64{3, 2}, productIDs(result.Products))
	assert.True(suite.T(), result.Pagination.HasNext)
}

func (suite *FilterServiceTestSuite) TestFilter_PresentsMergedAttributes() {
	result := suite.filter(int64Ptr(1), "brand=Adidas")

	require.Len(suite.T(), result.Products, 1)
	view := result.Products[0]
	assert.Equal(suite.T(), "Running", view.Category)
	// only keys defined on the product's own category are displayed
	assert.Equal(suite.T(), map[string]string{"color": "Black"}, view.Attributes)
}

func (suite *FilterServiceTestSuite) TestFilter_UnknownCategory() {
	_, err := suite.service.Filter(context.Background(), int64Ptr(99), url.Values{})

	assert.ErrorIs(suite.T(), err, catalog.ErrCategoryNotFound)
}

func TestFilter_RepositoryErrorIsWrapped(t *testing.T) {
	categoryRepo := &MockCategoryRepository{}
	attributeRepo := &MockAttributeRepository{}
	categoryAttributeRepo := &MockCategoryAttributeRepository{}
	productRepo := &MockProductRepository{}
	productAttributeRepo := &MockProductAttributeRepository{}

	categoryRepo.On("List", mock.Anything).Return([]*models.Category{}, nil)
	categoryRepo.On("ActiveProductCounts", mock.Anything).Return(map[int64]int{}, nil)
	productAttributeRepo.On("KeysInUse", mock.Anything, true).Return([]string{"brand"}, nil)
	attributeRepo.On("List", mock.Anything).Return([]*models.Attribute{}, nil)
	productRepo.On("ListByScope", mock.Anything, models.ProductScope{IsActive: true}).
		Return([]*models.Product{}, assert.AnError)

	categoryService := NewCategoryService(categoryRepo, categoryAttributeRepo, attributeRepo, caching.NewNoopCacheService(), 0)
	service := NewFilterService(categoryService, categoryAttributeRepo, attributeRepo, productRepo, productAttributeRepo, nil)

	_, err := service.Filter(context.Background(), nil, url.Values{"brand": {"Nike"}})

	assert.ErrorIs(t, err, assert.AnError)
	productRepo.AssertExpectations(t)
}
