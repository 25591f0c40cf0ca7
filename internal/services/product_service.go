package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"strings"
	"time"

	"shopcatalog/internal/caching"
	"shopcatalog/internal/catalog"
	"shopcatalog/internal/metrics"
	"shopcatalog/internal/models"
	"shopcatalog/internal/repositories"

	"github.com/google/uuid"
	"github.com/labstack/gommon/log"
)

const (
	productViewTTL         = 15 * time.Minute
	DefaultNewArrivalLimit = 10
	MaxNewArrivalLimit     = 50
)

var ErrStorageUnavailable = errors.New("image storage is not configured")

type ProductService interface {
	Create(ctx context.Context, input *models.ProductInput) (*models.Product, error)
	Get(ctx context.Context, id int64) (*models.ProductView, error)
	Update(ctx context.Context, id int64, input *models.ProductInput) (*models.Product, *models.AttributeCleanup, error)
	Delete(ctx context.Context, id int64) error
	NewArrivals(ctx context.Context, limit int) ([]*models.ProductView, error)
	SetNewArrival(ctx context.Context, id int64, flag bool) error
	RefreshNewArrivals(ctx context.Context, days int) (marked, unmarked int64, err error)
	ClearNewArrivals(ctx context.Context) (int64, error)
	UploadImage(ctx context.Context, productID int64, filename string, reader io.Reader, size int64, altText *string, isPrimary bool) (*models.ProductImage, error)
}

type productService struct {
	productRepo      repositories.ProductRepository
	productImageRepo repositories.ProductImageRepository
	categoryService  CategoryService
	presenter        ProductPresenter
	minioService     MinioService
	cacheService     caching.CacheService
	now              func() time.Time
}

func NewProductService(productRepo repositories.ProductRepository, productImageRepo repositories.ProductImageRepository,
	categoryService CategoryService, presenter ProductPresenter, minioService MinioService, cacheService caching.CacheService) ProductService {
	return &productService{
		productRepo:      productRepo,
		productImageRepo: productImageRepo,
		categoryService:  categoryService,
		presenter:        presenter,
		minioService:     minioService,
		cacheService:     cacheService,
		now:              time.Now,
	}
}

func validateProduct(p *models.Product) error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: product name is required", catalog.ErrInvalidValue)
	}
	if p.PriceToman.IsNegative() {
		return fmt.Errorf("%w: price_toman cannot be negative", catalog.ErrInvalidValue)
	}
	if p.PriceUSD.Valid && p.PriceUSD.Decimal.IsNegative() {
		return fmt.Errorf("%w: price_usd cannot be negative", catalog.ErrInvalidValue)
	}
	if p.StockQuantity < 0 {
		return fmt.Errorf("%w: stock quantity cannot be negative", catalog.ErrInvalidValue)
	}
	return nil
}

func (s *productService) checkCategory(ctx context.Context, categoryID int64) error {
	tree, err := s.categoryService.Tree(ctx)
	if err != nil {
		return err
	}
	_, err = tree.Node(categoryID)
	return err
}

// invalidate drops cached data that depends on the product: its view and the
// category snapshot, whose active counts may have changed.
func (s *productService) invalidate(ctx context.Context, productID int64) {
	if err := s.cacheService.DeleteProductView(ctx, productID); err != nil {
		log.Warnf("failed to invalidate cached product %d: %v", productID, err)
	}
	s.categoryService.Invalidate(ctx)
}

func (s *productService) Create(ctx context.Context, input *models.ProductInput) (*models.Product, error) {
	product := &models.Product{}
	input.Apply(product)
	if err := validateProduct(product); err != nil {
		return nil, err
	}
	if err := s.checkCategory(ctx, product.CategoryID); err != nil {
		return nil, err
	}
	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, err
	}
	s.categoryService.Invalidate(ctx)
	return product, nil
}

func (s *productService) Get(ctx context.Context, id int64) (*models.ProductView, error) {
	if cached, err := s.cacheService.GetProductView(ctx, id); cached != nil {
		return cached, nil
	} else if err != nil {
		log.Warnf("cache error for product %d: %v", id, err)
	}

	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	views, err := s.presenter.Present(ctx, []*models.Product{product})
	if err != nil {
		return nil, err
	}
	view := views[0]

	if cacheErr := s.cacheService.SetProductView(ctx, view, productViewTTL); cacheErr != nil {
		log.Warnf("failed to cache product %d: %v", id, cacheErr)
	}
	return view, nil
}

// Update saves the product. When the category changes, attributes the new
// category does not define are pruned in the same transaction.
func (s *productService) Update(ctx context.Context, id int64, input *models.ProductInput) (*models.Product, *models.AttributeCleanup, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	input.Apply(product)
	if err := validateProduct(product); err != nil {
		return nil, nil, err
	}
	if err := s.checkCategory(ctx, product.CategoryID); err != nil {
		return nil, nil, err
	}

	cleanup, err := s.productRepo.Update(ctx, product)
	if err != nil {
		return nil, nil, err
	}
	if cleanup != nil && (cleanup.Legacy > 0 || cleanup.Flexible > 0) {
		log.Infof("category change of product %d pruned %d legacy and %d flexible attributes",
			id, cleanup.Legacy, cleanup.Flexible)
	}
	s.invalidate(ctx, id)
	return product, cleanup, nil
}

func (s *productService) Delete(ctx context.Context, id int64) error {
	if err := s.productRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, id)
	return nil
}

func (s *productService) NewArrivals(ctx context.Context, limit int) ([]*models.ProductView, error) {
	if limit <= 0 {
		limit = DefaultNewArrivalLimit
	}
	if limit > MaxNewArrivalLimit {
		limit = MaxNewArrivalLimit
	}
	products, err := s.productRepo.ListNewArrivals(ctx, limit)
	if err != nil {
		return nil, err
	}
	return s.presenter.Present(ctx, products)
}

func (s *productService) SetNewArrival(ctx context.Context, id int64, flag bool) error {
	if err := s.productRepo.SetNewArrival(ctx, id, flag); err != nil {
		return err
	}
	if err := s.cacheService.DeleteProductView(ctx, id); err != nil {
		log.Warnf("failed to invalidate cached product %d: %v", id, err)
	}
	return nil
}

// RefreshNewArrivals flags products created within the last days and unflags older ones.
func (s *productService) RefreshNewArrivals(ctx context.Context, days int) (int64, int64, error) {
	if days <= 0 {
		return 0, 0, fmt.Errorf("%w: days must be positive", catalog.ErrInvalidValue)
	}
	cutoff := s.now().AddDate(0, 0, -days)

	marked, err := s.productRepo.MarkNewArrivalsSince(ctx, cutoff)
	if err != nil {
		metrics.NewArrivalRuns.WithLabelValues("error").Inc()
		return 0, 0, fmt.Errorf("mark new arrivals: %w", err)
	}
	unmarked, err := s.productRepo.UnmarkNewArrivalsBefore(ctx, cutoff)
	if err != nil {
		metrics.NewArrivalRuns.WithLabelValues("error").Inc()
		return marked, 0, fmt.Errorf("unmark new arrivals: %w", err)
	}
	metrics.NewArrivalRuns.WithLabelValues("ok").Inc()

	if marked+unmarked > 0 {
		if err := s.cacheService.InvalidateProductViews(ctx); err != nil {
			log.Warnf("failed to invalidate product views: %v", err)
		}
	}
	return marked, unmarked, nil
}

func (s *productService) ClearNewArrivals(ctx context.Context) (int64, error) {
	cleared, err := s.productRepo.ClearNewArrivals(ctx)
	if err != nil {
		return 0, err
	}
	if cleared > 0 {
		if err := s.cacheService.InvalidateProductViews(ctx); err != nil {
			log.Warnf("failed to invalidate product views: %v", err)
		}
	}
	return cleared, nil
}

func (s *productService) UploadImage(ctx context.Context, productID int64, filename string, reader io.Reader, size int64, altText *string, isPrimary bool) (*models.ProductImage, error) {
	if s.minioService == nil {
		return nil, ErrStorageUnavailable
	}
	if _, err := s.productRepo.GetByID(ctx, productID); err != nil {
		return nil, err
	}

	ext := strings.ToLower(filepath.Ext(filename))
	objectKey := fmt.Sprintf("products/%d/%s%s", productID, uuid.NewString(), ext)
	if err := s.minioService.UploadImage(ctx, objectKey, reader, size, mime.TypeByExtension(ext)); err != nil {
		return nil, fmt.Errorf("upload image: %w", err)
	}

	image := &models.ProductImage{ProductID: productID, ObjectKey: objectKey, AltText: altText, IsPrimary: isPrimary}
	if err := s.productImageRepo.Create(ctx, image); err != nil {
		if delErr := s.minioService.DeleteImage(ctx, objectKey); delErr != nil {
			log.Warnf("failed to remove orphaned image %s: %v", objectKey, delErr)
		}
		return nil, err
	}
	if err := s.cacheService.DeleteProductView(ctx, productID); err != nil {
		log.Warnf("failed to invalidate cached product %d: %v", productID, err)
	}
	return image, nil
}
