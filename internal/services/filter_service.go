package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"time"

	"shopcatalog/internal/catalog"
	"shopcatalog/internal/metrics"
	"shopcatalog/internal/models"
	"shopcatalog/internal/pagination"
	"shopcatalog/internal/repositories"
)

// FilterResult is one page of a faceted filter request.
type FilterResult struct {
	Products            []*models.ProductView  `json:"products"`
	Pagination          pagination.Meta        `json:"pagination"`
	FiltersApplied      catalog.FiltersApplied `json:"filters_applied"`
	AvailableAttributes []string               `json:"available_attributes"`
	Category            *CategoryDetail        `json:"category,omitempty"`
}

type FilterService interface {
	// Filter evaluates values against the given category, or against the
	// category/category_id params when categoryID is nil.
	Filter(ctx context.Context, categoryID *int64, values url.Values) (*FilterResult, error)
}

type filterService struct {
	categoryService       CategoryService
	categoryAttributeRepo repositories.CategoryAttributeRepository
	attributeRepo         repositories.AttributeRepository
	productRepo           repositories.ProductRepository
	productAttributeRepo  repositories.ProductAttributeRepository
	presenter             ProductPresenter
}

func NewFilterService(categoryService CategoryService, categoryAttributeRepo repositories.CategoryAttributeRepository,
	attributeRepo repositories.AttributeRepository, productRepo repositories.ProductRepository,
	productAttributeRepo repositories.ProductAttributeRepository, presenter ProductPresenter) FilterService {
	return &filterService{
		categoryService:       categoryService,
		categoryAttributeRepo: categoryAttributeRepo,
		attributeRepo:         attributeRepo,
		productRepo:           productRepo,
		productAttributeRepo:  productAttributeRepo,
		presenter:             presenter,
	}
}

func (s *filterService) Filter(ctx context.Context, categoryID *int64, values url.Values) (*FilterResult, error) {
	start := time.Now()
	params := catalog.ParseScope(values)
	if categoryID == nil {
		categoryID = params.CategoryID
	}
	scopeLabel := "global"
	if categoryID != nil {
		scopeLabel = "category"
	}

	result, err := s.filter(ctx, categoryID, params, values)

	metrics.FilterDuration.WithLabelValues(scopeLabel).Observe(time.Since(start).Seconds())
	switch {
	case errors.Is(err, catalog.ErrCategoryNotFound):
		metrics.FilterRequests.WithLabelValues(scopeLabel, "not_found").Inc()
	case err != nil:
		metrics.FilterRequests.WithLabelValues(scopeLabel, "error").Inc()
	case result.Pagination.TotalItems == 0:
		metrics.FilterRequests.WithLabelValues(scopeLabel, "empty").Inc()
	default:
		metrics.FilterRequests.WithLabelValues(scopeLabel, "ok").Inc()
	}
	return result, err
}

func (s *filterService) filter(ctx context.Context, categoryID *int64, params catalog.Scope, values url.Values) (*FilterResult, error) {
	scope := models.ProductScope{IsActive: params.IsActive}
	result := &FilterResult{}

	var keys []string
	if categoryID != nil {
		tree, err := s.categoryService.Tree(ctx)
		if err != nil {
			return nil, err
		}
		detail, err := categoryDetail(tree, *categoryID)
		if err != nil {
			return nil, err
		}
		scope.CategoryIDs, err = tree.ScopeCategoryIDs(*categoryID)
		if err != nil {
			return nil, err
		}
		schema, err := s.categoryAttributeRepo.ListByCategories(ctx, scope.CategoryIDs)
		if err != nil {
			return nil, fmt.Errorf("list category attributes: %w", err)
		}
		for _, attribute := range schema {
			keys = append(keys, attribute.Key)
		}
		result.Category = detail
	} else {
		inUse, err := s.productAttributeRepo.KeysInUse(ctx, scope.IsActive)
		if err != nil {
			return nil, fmt.Errorf("list attribute keys: %w", err)
		}
		keys = inUse
	}

	domain, err := s.keyDomain(ctx, keys)
	if err != nil {
		return nil, err
	}
	result.AvailableAttributes = sortedKeys(domain)

	query := catalog.ParseQuery(values, func(key string) bool {
		_, ok := domain[key]
		return ok
	})
	result.FiltersApplied = query.Applied()

	var matched []*models.Product
	if !query.Rejected() {
		products, err := s.productRepo.ListByScope(ctx, scope)
		if err != nil {
			return nil, fmt.Errorf("list products: %w", err)
		}
		matched, err = s.apply(ctx, products, query)
		if err != nil {
			return nil, err
		}
	}
	metrics.FilterResultSize.Observe(float64(len(matched)))

	page, meta := pagination.Paginate(matched, pagination.Request{
		Page:    values.Get(catalog.ParamPage),
		PerPage: values.Get(catalog.ParamPerPage),
	})
	result.Pagination = meta
	result.Products, err = s.presenter.Present(ctx, page)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// keyDomain removes globally registered attributes that are marked not filterable.
func (s *filterService) keyDomain(ctx context.Context, keys []string) (map[string]struct{}, error) {
	attributes, err := s.attributeRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list attributes: %w", err)
	}
	hidden := make(map[string]struct{})
	for _, a := range attributes {
		if !a.IsFilterable {
			hidden[a.Key] = struct{}{}
		}
	}
	domain := make(map[string]struct{}, len(keys))
	for _, key := range keys {
		if _, skip := hidden[key]; skip || catalog.IsSpecialParam(key) {
			continue
		}
		domain[key] = struct{}{}
	}
	return domain, nil
}

// apply narrows products by every bucket of the query and returns them newest
// first with ties broken by id.
func (s *filterService) apply(ctx context.Context, products []*models.Product, query *catalog.Query) ([]*models.Product, error) {
	candidates := make(map[int64]struct{}, len(products))
	for _, p := range products {
		candidates[p.ID] = struct{}{}
	}

	for _, key := range query.AttributeKeys() {
		ids, err := s.matchKey(ctx, key, query.Attributes[key])
		if err != nil {
			return nil, err
		}
		for id := range candidates {
			if _, ok := ids[id]; !ok {
				delete(candidates, id)
			}
		}
		if len(candidates) == 0 {
			break
		}
	}

	matched := make([]*models.Product, 0, len(candidates))
	for _, p := range products {
		if _, ok := candidates[p.ID]; !ok {
			continue
		}
		if !matchesPrices(p, query.Prices) {
			continue
		}
		if query.Search != "" && !catalog.MatchesSearch(p, query.Search) {
			continue
		}
		if query.IsNewArrival != nil && p.IsNewArrival != *query.IsNewArrival {
			continue
		}
		matched = append(matched, p)
		delete(candidates, p.ID)
	}

	sort.SliceStable(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID > matched[j].ID
	})
	return matched, nil
}

// matchKey unions the products whose legacy, predefined or custom value for key is one of values.
func (s *filterService) matchKey(ctx context.Context, key string, values []string) (map[int64]struct{}, error) {
	ids := make(map[int64]struct{})
	matchers := []func(context.Context, string, []string) ([]int64, error){
		s.productAttributeRepo.MatchLegacy,
		s.productAttributeRepo.MatchPredefined,
		s.productAttributeRepo.MatchCustom,
	}
	for _, match := range matchers {
		found, err := match(ctx, key, values)
		if err != nil {
			return nil, fmt.Errorf("match attribute %s: %w", key, err)
		}
		for _, id := range found {
			ids[id] = struct{}{}
		}
	}
	return ids, nil
}

func matchesPrices(p *models.Product, bounds []catalog.PriceBound) bool {
	for _, b := range bounds {
		if !b.Match(p) {
			return false
		}
	}
	return true
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for key := range set {
		out = append(out, key)
	}
	sort.Strings(out)
	return out
}
