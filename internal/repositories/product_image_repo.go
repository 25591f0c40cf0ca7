package repositories

import (
	"context"
	"errors"
	"fmt"

	"shopcatalog/internal/catalog"
	"shopcatalog/internal/models"

	"github.com/jackc/pgx/v5"
)

var ErrImageNotFound = errors.New("product image not found")

type ProductImageRepository interface {
	Create(ctx context.Context, image *models.ProductImage) error
	ListByProducts(ctx context.Context, productIDs []int64) ([]*models.ProductImage, error)
	GetByID(ctx context.Context, id int64) (*models.ProductImage, error)
	Delete(ctx context.Context, id int64) error
}

type productImageRepo struct {
	db Database
}

func NewProductImageRepo(db Database) ProductImageRepository {
	return &productImageRepo{db: db}
}

// Create inserts the image. A primary image demotes the product's previous primary.
func (r *productImageRepo) Create(ctx context.Context, image *models.ProductImage) error {
	return withTx(ctx, r.db, func(tx pgx.Tx) error {
		if image.IsPrimary {
			if _, err := tx.Exec(ctx, `UPDATE product_images SET is_primary = FALSE WHERE product_id = $1`, image.ProductID); err != nil {
				return err
			}
		}
		query := `
			INSERT INTO product_images (product_id, object_key, alt_text, is_primary, created_at)
			VALUES ($1, $2, $3, $4, NOW())
			RETURNING id, created_at
		`
		err := tx.QueryRow(ctx, query, image.ProductID, image.ObjectKey, image.AltText, image.IsPrimary).
			Scan(&image.ID, &image.CreatedAt)
		if pgCode(err) == pgForeignKeyViolation {
			return fmt.Errorf("%w: %d", catalog.ErrProductNotFound, image.ProductID)
		}
		return err
	})
}

// ListByProducts orders each product's images primary first, then oldest first.
func (r *productImageRepo) ListByProducts(ctx context.Context, productIDs []int64) ([]*models.ProductImage, error) {
	if len(productIDs) == 0 {
		return nil, nil
	}
	query := `
		SELECT id, product_id, object_key, alt_text, is_primary, created_at
		FROM product_images
		WHERE product_id = ANY($1)
		ORDER BY product_id, is_primary DESC, created_at ASC, id ASC
	`
	rows, err := r.db.Query(ctx, query, productIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var images []*models.ProductImage
	for rows.Next() {
		image := &models.ProductImage{}
		if err := rows.Scan(&image.ID, &image.ProductID, &image.ObjectKey, &image.AltText, &image.IsPrimary, &image.CreatedAt); err != nil {
			return nil, err
		}
		images = append(images, image)
	}
	return images, rows.Err()
}

func (r *productImageRepo) GetByID(ctx context.Context, id int64) (*models.ProductImage, error) {
	image := &models.ProductImage{}
	query := `
		SELECT id, product_id, object_key, alt_text, is_primary, created_at
		FROM product_images
		WHERE id = $1
	`
	err := r.db.QueryRow(ctx, query, id).Scan(&image.ID, &image.ProductID, &image.ObjectKey, &image.AltText,
		&image.IsPrimary, &image.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %d", ErrImageNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return image, nil
}

func (r *productImageRepo) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM product_images WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %d", ErrImageNotFound, id)
	}
	return nil
}
