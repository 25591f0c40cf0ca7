package services

import (
	"context"
	"time"

	"shopcatalog/internal/models"
	"shopcatalog/internal/repositories"

	"github.com/labstack/gommon/log"
)

// ProductPresenter turns products into their serialized form with merged
// attributes, category label and image URLs.
type ProductPresenter interface {
	Present(ctx context.Context, products []*models.Product) ([]*models.ProductView, error)
}

type productPresenter struct {
	categoryService  CategoryService
	attributeService AttributeService
	imageRepo        repositories.ProductImageRepository
	minioService     MinioService
	urlExpiry        time.Duration
}

// NewProductPresenter accepts a nil minioService, in which case images are omitted.
func NewProductPresenter(categoryService CategoryService, attributeService AttributeService,
	imageRepo repositories.ProductImageRepository, minioService MinioService, urlExpiry time.Duration) ProductPresenter {
	return &productPresenter{
		categoryService:  categoryService,
		attributeService: attributeService,
		imageRepo:        imageRepo,
		minioService:     minioService,
		urlExpiry:        urlExpiry,
	}
}

func (p *productPresenter) Present(ctx context.Context, products []*models.Product) ([]*models.ProductView, error) {
	views := make([]*models.ProductView, 0, len(products))
	if len(products) == 0 {
		return views, nil
	}

	tree, err := p.categoryService.Tree(ctx)
	if err != nil {
		return nil, err
	}
	attributes, err := p.attributeService.DisplayAttributes(ctx, products)
	if err != nil {
		return nil, err
	}
	images := p.imageURLs(ctx, products)

	for _, product := range products {
		view := &models.ProductView{
			ID:            product.ID,
			Name:          product.Name,
			PriceToman:    product.PriceToman,
			PriceUSD:      product.PriceUSD,
			Description:   product.Description,
			Model:         product.Model,
			SKU:           product.SKU,
			StockQuantity: product.StockQuantity,
			IsActive:      product.IsActive,
			IsNewArrival:  product.IsNewArrival,
			CategoryID:    product.CategoryID,
			Attributes:    attributes[product.ID],
			Images:        images[product.ID],
			CreatedAt:     product.CreatedAt,
		}
		if category, err := tree.Node(product.CategoryID); err == nil {
			view.Category = category.DisplayName()
		}
		if view.Attributes == nil {
			view.Attributes = map[string]string{}
		}
		if view.Images == nil {
			view.Images = []string{}
		}
		views = append(views, view)
	}
	return views, nil
}

// imageURLs presigns image URLs; storage failures only drop the affected images.
func (p *productPresenter) imageURLs(ctx context.Context, products []*models.Product) map[int64][]string {
	out := make(map[int64][]string)
	if p.minioService == nil || p.imageRepo == nil {
		return out
	}
	ids := make([]int64, 0, len(products))
	for _, product := range products {
		ids = append(ids, product.ID)
	}
	images, err := p.imageRepo.ListByProducts(ctx, ids)
	if err != nil {
		log.Warnf("failed to list product images: %v", err)
		return out
	}
	for _, image := range images {
		url, err := p.minioService.GetPresignedURL(ctx, image.ObjectKey, p.urlExpiry)
		if err != nil {
			log.Warnf("failed to presign image %d: %v", image.ID, err)
			continue
		}
		out[image.ProductID] = append(out[image.ProductID], url)
	}
	return out
}
