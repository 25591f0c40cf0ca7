package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"shopcatalog/internal/caching"
	"shopcatalog/internal/catalog"
	"shopcatalog/internal/metrics"
	"shopcatalog/internal/models"
	"shopcatalog/internal/repositories"

	"github.com/labstack/gommon/log"
)

// CategoryDetail is a single category with its resolved type and product count.
type CategoryDetail struct {
	*models.Category
	EffectiveType  models.CategoryType   `json:"effective_type"`
	DisplaySection models.DisplaySection `json:"display_section"`
	ProductCount   int                   `json:"product_count"`
	Subcategories  []int64               `json:"subcategories"`
}

type CategoryService interface {
	Tree(ctx context.Context) (*catalog.Tree, error)
	Get(ctx context.Context, id int64) (*CategoryDetail, error)
	Navigation(ctx context.Context, section models.DisplaySection) ([]*models.CategoryNode, error)
	Create(ctx context.Context, input *models.CategoryInput) (*models.Category, error)
	Update(ctx context.Context, id int64, input *models.CategoryInput) (*models.Category, error)
	Delete(ctx context.Context, id int64) error
	AttributeSchema(ctx context.Context, id int64) ([]*models.CategoryAttribute, error)
	AddAttribute(ctx context.Context, categoryID int64, input *models.CategoryAttributeInput) (*models.CategoryAttribute, error)
	RemoveAttribute(ctx context.Context, categoryID int64, key string) error
	FacetValues(ctx context.Context, categoryID int64, key string) ([]*models.FacetValue, error)
	Invalidate(ctx context.Context)
}

type categoryService struct {
	categoryRepo          repositories.CategoryRepository
	categoryAttributeRepo repositories.CategoryAttributeRepository
	attributeRepo         repositories.AttributeRepository
	cacheService          caching.CacheService
	treeTTL               time.Duration
}

func NewCategoryService(categoryRepo repositories.CategoryRepository, categoryAttributeRepo repositories.CategoryAttributeRepository,
	attributeRepo repositories.AttributeRepository, cacheService caching.CacheService, treeTTL time.Duration) CategoryService {
	return &categoryService{
		categoryRepo:          categoryRepo,
		categoryAttributeRepo: categoryAttributeRepo,
		attributeRepo:         attributeRepo,
		cacheService:          cacheService,
		treeTTL:               treeTTL,
	}
}

// Tree builds the category arena from the cached snapshot, loading it from
// the database on a miss. Effective types are always computed on the fly.
func (s *categoryService) Tree(ctx context.Context) (*catalog.Tree, error) {
	snapshot, err := s.cacheService.GetCategorySnapshot(ctx)
	switch {
	case err != nil:
		metrics.TreeCacheLookups.WithLabelValues("error").Inc()
		log.Warnf("category snapshot cache read failed: %v", err)
	case snapshot != nil:
		metrics.TreeCacheLookups.WithLabelValues("hit").Inc()
		return catalog.NewTree(snapshot.Categories, snapshot.ActiveCounts), nil
	default:
		metrics.TreeCacheLookups.WithLabelValues("miss").Inc()
	}

	categories, err := s.categoryRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	counts, err := s.categoryRepo.ActiveProductCounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("count active products: %w", err)
	}

	if s.treeTTL > 0 {
		snapshot = &caching.CategorySnapshot{Categories: categories, ActiveCounts: counts}
		if cacheErr := s.cacheService.SetCategorySnapshot(ctx, snapshot, s.treeTTL); cacheErr != nil {
			log.Warnf("failed to cache category snapshot: %v", cacheErr)
		}
	}
	return catalog.NewTree(categories, counts), nil
}

func (s *categoryService) Invalidate(ctx context.Context) {
	if err := s.cacheService.InvalidateCategorySnapshot(ctx); err != nil {
		log.Warnf("failed to invalidate category snapshot: %v", err)
	}
}

func (s *categoryService) Get(ctx context.Context, id int64) (*CategoryDetail, error) {
	tree, err := s.Tree(ctx)
	if err != nil {
		return nil, err
	}
	return categoryDetail(tree, id)
}

func categoryDetail(tree *catalog.Tree, id int64) (*CategoryDetail, error) {
	category, err := tree.Node(id)
	if err != nil {
		return nil, err
	}
	typ, err := tree.EffectiveType(id)
	if err != nil {
		return nil, err
	}
	count, err := tree.ProductCount(id)
	if err != nil {
		return nil, err
	}

	detail := &CategoryDetail{
		Category:       category,
		EffectiveType:  typ,
		DisplaySection: catalog.DisplaySection(category),
		ProductCount:   count,
		Subcategories:  []int64{},
	}
	for _, child := range tree.Children(id) {
		detail.Subcategories = append(detail.Subcategories, child.ID)
	}
	return detail, nil
}

func (s *categoryService) Navigation(ctx context.Context, section models.DisplaySection) ([]*models.CategoryNode, error) {
	tree, err := s.Tree(ctx)
	if err != nil {
		return nil, err
	}
	return tree.Navigation(section)
}

func (s *categoryService) apply(category *models.Category, input *models.CategoryInput) {
	category.Name = strings.TrimSpace(input.Name)
	category.Label = input.Label
	category.ParentID = input.ParentID
	category.CategoryType = models.CategoryType(input.CategoryType)
	if category.CategoryType == "" {
		category.CategoryType = models.CategoryTypeAuto
	}
	if input.IsVisible != nil {
		category.IsVisible = *input.IsVisible
	}
	category.DisplaySection = models.DisplaySection(input.DisplaySection)
}

func (s *categoryService) Create(ctx context.Context, input *models.CategoryInput) (*models.Category, error) {
	category := &models.Category{IsVisible: true}
	s.apply(category, input)
	if category.Name == "" {
		return nil, fmt.Errorf("%w: category name is required", catalog.ErrInvalidValue)
	}
	if category.ParentID != nil {
		if _, err := s.categoryRepo.GetByID(ctx, *category.ParentID); err != nil {
			return nil, fmt.Errorf("parent category: %w", err)
		}
	}
	if err := s.categoryRepo.Create(ctx, category); err != nil {
		return nil, err
	}
	s.Invalidate(ctx)
	return category, nil
}

// Update rejects a parent that would make the category its own ancestor. The
// cached tree gives an early answer; the repository repeats the check under lock.
func (s *categoryService) Update(ctx context.Context, id int64, input *models.CategoryInput) (*models.Category, error) {
	category, err := s.categoryRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.apply(category, input)
	if category.Name == "" {
		return nil, fmt.Errorf("%w: category name is required", catalog.ErrInvalidValue)
	}

	if category.ParentID != nil {
		tree, err := s.Tree(ctx)
		if err != nil {
			return nil, err
		}
		if _, err := tree.Node(*category.ParentID); err != nil {
			return nil, fmt.Errorf("parent category: %w", err)
		}
		if tree.WouldCreateCycle(id, *category.ParentID) {
			return nil, fmt.Errorf("%w: %d under %d", catalog.ErrCategoryCycle, id, *category.ParentID)
		}
	}

	if err := s.categoryRepo.Update(ctx, category); err != nil {
		return nil, err
	}
	s.Invalidate(ctx)
	if err := s.cacheService.InvalidateProductViews(ctx); err != nil {
		log.Warnf("failed to invalidate product views: %v", err)
	}
	return category, nil
}

func (s *categoryService) Delete(ctx context.Context, id int64) error {
	if err := s.categoryRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.Invalidate(ctx)
	return nil
}

func (s *categoryService) AttributeSchema(ctx context.Context, id int64) ([]*models.CategoryAttribute, error) {
	if _, err := s.categoryRepo.GetByID(ctx, id); err != nil {
		return nil, err
	}
	attributes, err := s.categoryAttributeRepo.ListByCategories(ctx, []int64{id})
	if err != nil {
		return nil, err
	}
	if attributes == nil {
		attributes = []*models.CategoryAttribute{}
	}
	return attributes, nil
}

func (s *categoryService) AddAttribute(ctx context.Context, categoryID int64, input *models.CategoryAttributeInput) (*models.CategoryAttribute, error) {
	if _, err := s.categoryRepo.GetByID(ctx, categoryID); err != nil {
		return nil, err
	}
	attribute := &models.CategoryAttribute{
		CategoryID:   categoryID,
		Key:          strings.TrimSpace(input.Key),
		Type:         models.AttributeType(input.Type),
		Required:     input.Required,
		DisplayOrder: input.DisplayOrder,
		LabelFa:      input.LabelFa,
	}
	if attribute.Key == "" {
		return nil, fmt.Errorf("%w: attribute key is required", catalog.ErrInvalidValue)
	}
	if attribute.LabelFa == "" {
		attribute.LabelFa = attribute.Key
	}
	if err := s.categoryAttributeRepo.Create(ctx, attribute, input.Values); err != nil {
		return nil, err
	}
	if err := s.cacheService.InvalidateProductViews(ctx); err != nil {
		log.Warnf("failed to invalidate product views: %v", err)
	}
	return attribute, nil
}

func (s *categoryService) RemoveAttribute(ctx context.Context, categoryID int64, key string) error {
	if err := s.categoryAttributeRepo.Delete(ctx, categoryID, key); err != nil {
		return err
	}
	if err := s.cacheService.InvalidateProductViews(ctx); err != nil {
		log.Warnf("failed to invalidate product views: %v", err)
	}
	return nil
}

// FacetValues lists the selectable values of key within a category: the
// predefined values of the global attribute, or the category schema's own
// choices when the registry has none.
func (s *categoryService) FacetValues(ctx context.Context, categoryID int64, key string) ([]*models.FacetValue, error) {
	tree, err := s.Tree(ctx)
	if err != nil {
		return nil, err
	}
	scope, err := tree.ScopeCategoryIDs(categoryID)
	if err != nil {
		return nil, err
	}

	values, err := s.attributeRepo.ListValues(ctx, key)
	if err != nil {
		return nil, err
	}
	facets := make([]*models.FacetValue, 0, len(values))
	for _, v := range values {
		facets = append(facets, &models.FacetValue{ID: v.ID, Value: v.Value, DisplayOrder: v.DisplayOrder, ColorCode: v.ColorCode})
	}
	if len(facets) > 0 {
		return facets, nil
	}

	schema, err := s.categoryAttributeRepo.ListByCategories(ctx, scope)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{})
	found := false
	for _, attribute := range schema {
		if attribute.Key != key {
			continue
		}
		found = true
		for _, v := range attribute.Values {
			if _, dup := seen[v.Value]; dup {
				continue
			}
			seen[v.Value] = struct{}{}
			facets = append(facets, &models.FacetValue{ID: v.ID, Value: v.Value, DisplayOrder: v.DisplayOrder})
		}
	}
	if !found {
		if _, err := s.attributeRepo.GetByKey(ctx, key); err != nil {
			return nil, err
		}
	}
	return facets, nil
}
