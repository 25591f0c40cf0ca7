package services

import (
	"context"
	"fmt"
	"strings"

	"shopcatalog/internal/caching"
	"shopcatalog/internal/catalog"
	"shopcatalog/internal/metrics"
	"shopcatalog/internal/models"
	"shopcatalog/internal/repositories"

	"github.com/labstack/gommon/log"
)

// AttributeService resolves and writes product attributes across the legacy
// and flexible stores and manages the global attribute registry.
type AttributeService interface {
	GetDisplayValue(ctx context.Context, productID int64, key string) (string, bool, error)
	// GetActiveDisplayValue is GetDisplayValue for storefront reads: inactive
	// products are reported as not found.
	GetActiveDisplayValue(ctx context.Context, productID int64, key string) (string, bool, error)
	SetAttributeValue(ctx context.Context, productID int64, key, value string) (catalog.AttributeValueSource, error)
	SetLegacyValue(ctx context.Context, productID int64, key, value string) error
	AttributesDict(ctx context.Context, productID int64) (map[string]string, error)
	DisplayAttributes(ctx context.Context, products []*models.Product) (map[int64]map[string]string, error)
	CleanupOnCategoryChange(ctx context.Context, productID, categoryID int64) (*models.AttributeCleanup, error)
	CleanupProduct(ctx context.Context, productID int64) (*models.AttributeCleanup, error)

	CreateAttribute(ctx context.Context, input *models.AttributeInput) (*models.Attribute, error)
	ListAttributes(ctx context.Context) ([]*models.Attribute, error)
	AddAttributeValue(ctx context.Context, key string, input *models.AttributeValueInput) (*models.AttributeValue, error)
	ListAttributeValues(ctx context.Context, key string) ([]*models.AttributeValue, error)
}

type attributeService struct {
	attributeRepo         repositories.AttributeRepository
	categoryAttributeRepo repositories.CategoryAttributeRepository
	productRepo           repositories.ProductRepository
	productAttributeRepo  repositories.ProductAttributeRepository
	cacheService          caching.CacheService
}

func NewAttributeService(attributeRepo repositories.AttributeRepository, categoryAttributeRepo repositories.CategoryAttributeRepository,
	productRepo repositories.ProductRepository, productAttributeRepo repositories.ProductAttributeRepository,
	cacheService caching.CacheService) AttributeService {
	return &attributeService{
		attributeRepo:         attributeRepo,
		categoryAttributeRepo: categoryAttributeRepo,
		productRepo:           productRepo,
		productAttributeRepo:  productAttributeRepo,
		cacheService:          cacheService,
	}
}

func logInconsistent(row *models.ProductAttributeValue) {
	metrics.InconsistentAttributeRows.Inc()
	log.Warnf("inconsistent flexible attribute row %d (product %d, key %s): predefined and custom value must be exclusive",
		row.ID, row.ProductID, row.AttributeKey)
}

// GetDisplayValue returns the flexible value of key when present, the legacy value otherwise.
func (s *attributeService) GetDisplayValue(ctx context.Context, productID int64, key string) (string, bool, error) {
	flexible, err := s.productAttributeRepo.GetFlexible(ctx, productID, key)
	if err != nil {
		return "", false, err
	}
	if flexible != nil {
		if _, consistent := catalog.FlexibleSource(flexible); !consistent {
			logInconsistent(flexible)
		}
	}
	legacy, err := s.productAttributeRepo.GetLegacy(ctx, productID, key)
	if err != nil {
		return "", false, err
	}
	src, ok := catalog.Resolve(flexible, legacy)
	return src.Value, ok, nil
}

func (s *attributeService) GetActiveDisplayValue(ctx context.Context, productID int64, key string) (string, bool, error) {
	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return "", false, err
	}
	if !product.IsActive {
		return "", false, fmt.Errorf("%w: %d", catalog.ErrProductNotFound, productID)
	}
	return s.GetDisplayValue(ctx, productID, key)
}

func (s *attributeService) SetAttributeValue(ctx context.Context, productID int64, key, value string) (catalog.AttributeValueSource, error) {
	if strings.TrimSpace(value) == "" {
		return catalog.AttributeValueSource{}, fmt.Errorf("%w: attribute value is required", catalog.ErrInvalidValue)
	}
	row, err := s.productAttributeRepo.SetFlexibleValue(ctx, productID, key, value)
	if err != nil {
		return catalog.AttributeValueSource{}, err
	}
	s.dropView(ctx, productID)
	src, _ := catalog.FlexibleSource(row)
	return src, nil
}

func (s *attributeService) SetLegacyValue(ctx context.Context, productID int64, key, value string) error {
	if strings.TrimSpace(key) == "" {
		return fmt.Errorf("%w: attribute key is required", catalog.ErrInvalidValue)
	}
	if err := s.productAttributeRepo.SetLegacyValue(ctx, productID, key, value); err != nil {
		return err
	}
	s.dropView(ctx, productID)
	return nil
}

func (s *attributeService) dropView(ctx context.Context, productID int64) {
	if err := s.cacheService.DeleteProductView(ctx, productID); err != nil {
		log.Warnf("failed to invalidate cached product %d: %v", productID, err)
	}
}

func (s *attributeService) mergedByProduct(ctx context.Context, productIDs []int64) (map[int64]map[string]catalog.AttributeValueSource, error) {
	flexible, err := s.productAttributeRepo.ListFlexible(ctx, productIDs)
	if err != nil {
		return nil, fmt.Errorf("list flexible attributes: %w", err)
	}
	legacy, err := s.productAttributeRepo.ListLegacy(ctx, productIDs)
	if err != nil {
		return nil, fmt.Errorf("list legacy attributes: %w", err)
	}

	flexibleBy := make(map[int64][]*models.ProductAttributeValue)
	for _, row := range flexible {
		flexibleBy[row.ProductID] = append(flexibleBy[row.ProductID], row)
	}
	legacyBy := make(map[int64][]*models.ProductAttribute)
	for _, row := range legacy {
		legacyBy[row.ProductID] = append(legacyBy[row.ProductID], row)
	}

	out := make(map[int64]map[string]catalog.AttributeValueSource, len(productIDs))
	for _, id := range productIDs {
		out[id] = catalog.Merge(flexibleBy[id], legacyBy[id], logInconsistent)
	}
	return out, nil
}

func (s *attributeService) allowedKeys(ctx context.Context, categoryIDs []int64) (map[int64]map[string]struct{}, error) {
	schema, err := s.categoryAttributeRepo.ListByCategories(ctx, categoryIDs)
	if err != nil {
		return nil, fmt.Errorf("list category attributes: %w", err)
	}
	out := make(map[int64]map[string]struct{})
	for _, attribute := range schema {
		if out[attribute.CategoryID] == nil {
			out[attribute.CategoryID] = make(map[string]struct{})
		}
		out[attribute.CategoryID][attribute.Key] = struct{}{}
	}
	return out, nil
}

// AttributesDict resolves every key of the product's category schema that has a value.
func (s *attributeService) AttributesDict(ctx context.Context, productID int64) (map[string]string, error) {
	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	schema, err := s.categoryAttributeRepo.ListByCategories(ctx, []int64{product.CategoryID})
	if err != nil {
		return nil, err
	}
	merged, err := s.mergedByProduct(ctx, []int64{productID})
	if err != nil {
		return nil, err
	}

	dict := make(map[string]string, len(schema))
	for _, attribute := range schema {
		if src, ok := merged[productID][attribute.Key]; ok {
			dict[attribute.Key] = src.Value
		}
	}
	return dict, nil
}

// DisplayAttributes builds the serialized attribute map of each product.
func (s *attributeService) DisplayAttributes(ctx context.Context, products []*models.Product) (map[int64]map[string]string, error) {
	if len(products) == 0 {
		return map[int64]map[string]string{}, nil
	}
	productIDs := make([]int64, 0, len(products))
	categorySeen := make(map[int64]struct{})
	var categoryIDs []int64
	for _, p := range products {
		productIDs = append(productIDs, p.ID)
		if _, ok := categorySeen[p.CategoryID]; !ok {
			categorySeen[p.CategoryID] = struct{}{}
			categoryIDs = append(categoryIDs, p.CategoryID)
		}
	}

	merged, err := s.mergedByProduct(ctx, productIDs)
	if err != nil {
		return nil, err
	}
	allowed, err := s.allowedKeys(ctx, categoryIDs)
	if err != nil {
		return nil, err
	}

	out := make(map[int64]map[string]string, len(products))
	for _, p := range products {
		out[p.ID] = catalog.DisplayAttributes(merged[p.ID], allowed[p.CategoryID])
	}
	return out, nil
}

// CleanupOnCategoryChange removes the product's attributes, from both stores,
// whose keys categoryID does not define.
func (s *attributeService) CleanupOnCategoryChange(ctx context.Context, productID, categoryID int64) (*models.AttributeCleanup, error) {
	cleanup, err := s.productAttributeRepo.Cleanup(ctx, productID, categoryID)
	if err != nil {
		return nil, err
	}
	if cleanup.Legacy > 0 || cleanup.Flexible > 0 {
		log.Infof("pruned attributes of product %d for category %d: %d legacy, %d flexible",
			productID, categoryID, cleanup.Legacy, cleanup.Flexible)
	}
	s.dropView(ctx, productID)
	return cleanup, nil
}

// CleanupProduct prunes against the product's current category.
func (s *attributeService) CleanupProduct(ctx context.Context, productID int64) (*models.AttributeCleanup, error) {
	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	return s.CleanupOnCategoryChange(ctx, productID, product.CategoryID)
}

func (s *attributeService) CreateAttribute(ctx context.Context, input *models.AttributeInput) (*models.Attribute, error) {
	attribute := &models.Attribute{
		Key:          strings.TrimSpace(input.Key),
		Name:         strings.TrimSpace(input.Name),
		Type:         models.AttributeType(input.Type),
		IsFilterable: true,
		DisplayOrder: input.DisplayOrder,
	}
	if input.IsFilterable != nil {
		attribute.IsFilterable = *input.IsFilterable
	}
	if attribute.Key == "" || attribute.Name == "" {
		return nil, fmt.Errorf("%w: attribute key and name are required", catalog.ErrInvalidValue)
	}
	if err := s.attributeRepo.Create(ctx, attribute); err != nil {
		return nil, err
	}
	return attribute, nil
}

func (s *attributeService) ListAttributes(ctx context.Context) ([]*models.Attribute, error) {
	attributes, err := s.attributeRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	if attributes == nil {
		attributes = []*models.Attribute{}
	}
	return attributes, nil
}

func (s *attributeService) AddAttributeValue(ctx context.Context, key string, input *models.AttributeValueInput) (*models.AttributeValue, error) {
	attribute, err := s.attributeRepo.GetByKey(ctx, key)
	if err != nil {
		return nil, err
	}
	value := &models.AttributeValue{
		AttributeID:  attribute.ID,
		Value:        strings.TrimSpace(input.Value),
		DisplayOrder: input.DisplayOrder,
		ColorCode:    input.ColorCode,
	}
	if value.Value == "" {
		return nil, fmt.Errorf("%w: value is required", catalog.ErrInvalidValue)
	}
	if err := s.attributeRepo.CreateValue(ctx, value); err != nil {
		return nil, err
	}
	return value, nil
}

func (s *attributeService) ListAttributeValues(ctx context.Context, key string) ([]*models.AttributeValue, error) {
	if _, err := s.attributeRepo.GetByKey(ctx, key); err != nil {
		return nil, err
	}
	values, err := s.attributeRepo.ListValues(ctx, key)
	if err != nil {
		return nil, err
	}
	if values == nil {
		values = []*models.AttributeValue{}
	}
	return values, nil
}
