package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"shopcatalog/internal/catalog"
	"shopcatalog/internal/models"

	"github.com/jackc/pgx/v5"
)

type ProductRepository interface {
	Create(ctx context.Context, product *models.Product) error
	GetByID(ctx context.Context, id int64) (*models.Product, error)
	Update(ctx context.Context, product *models.Product) (*models.AttributeCleanup, error)
	Delete(ctx context.Context, id int64) error
	ListByScope(ctx context.Context, scope models.ProductScope) ([]*models.Product, error)
	ListNewArrivals(ctx context.Context, limit int) ([]*models.Product, error)
	SetNewArrival(ctx context.Context, id int64, flag bool) error
	MarkNewArrivalsSince(ctx context.Context, since time.Time) (int64, error)
	UnmarkNewArrivalsBefore(ctx context.Context, before time.Time) (int64, error)
	ClearNewArrivals(ctx context.Context) (int64, error)
}

type productRepo struct {
	db Database
}

func NewProductRepo(db Database) ProductRepository {
	return &productRepo{db: db}
}

const productColumns = `id, name, category_id, price_toman, price_usd, description, model, sku, stock_quantity, is_active, is_new_arrival, created_at, updated_at`

func scanProduct(row pgx.Row, p *models.Product) error {
	return row.Scan(&p.ID, &p.Name, &p.CategoryID, &p.PriceToman, &p.PriceUSD, &p.Description, &p.Model, &p.SKU,
		&p.StockQuantity, &p.IsActive, &p.IsNewArrival, &p.CreatedAt, &p.UpdatedAt)
}

func scanProducts(rows pgx.Rows) ([]*models.Product, error) {
	defer rows.Close()
	var products []*models.Product
	for rows.Next() {
		p := &models.Product{}
		if err := scanProduct(rows, p); err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (r *productRepo) Create(ctx context.Context, product *models.Product) error {
	query := `
		INSERT INTO products (name, category_id, price_toman, price_usd, description, model, sku, stock_quantity,
			is_active, is_new_arrival, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`
	return r.db.QueryRow(ctx, query, product.Name, product.CategoryID, product.PriceToman, product.PriceUSD,
		product.Description, product.Model, product.SKU, product.StockQuantity, product.IsActive,
		product.IsNewArrival).Scan(&product.ID, &product.CreatedAt, &product.UpdatedAt)
}

func (r *productRepo) GetByID(ctx context.Context, id int64) (*models.Product, error) {
	product := &models.Product{}
	if err := scanProduct(r.db.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id), product); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %d", catalog.ErrProductNotFound, id)
		}
		return nil, err
	}
	return product, nil
}

// Update writes the product and, when its category changed, prunes attributes
// the new category does not define, all in one transaction.
func (r *productRepo) Update(ctx context.Context, product *models.Product) (*models.AttributeCleanup, error) {
	cleanup := &models.AttributeCleanup{}
	err := withTx(ctx, r.db, func(tx pgx.Tx) error {
		var currentCategory int64
		err := tx.QueryRow(ctx, `SELECT category_id FROM products WHERE id = $1 FOR UPDATE`, product.ID).Scan(&currentCategory)
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("%w: %d", catalog.ErrProductNotFound, product.ID)
		}
		if err != nil {
			return err
		}

		query := `
			UPDATE products
			SET name = $2, category_id = $3, price_toman = $4, price_usd = $5, description = $6, model = $7, sku = $8,
				stock_quantity = $9, is_active = $10, is_new_arrival = $11, updated_at = NOW()
			WHERE id = $1
			RETURNING created_at, updated_at
		`
		err = tx.QueryRow(ctx, query, product.ID, product.Name, product.CategoryID, product.PriceToman, product.PriceUSD,
			product.Description, product.Model, product.SKU, product.StockQuantity, product.IsActive,
			product.IsNewArrival).Scan(&product.CreatedAt, &product.UpdatedAt)
		if err != nil {
			return err
		}

		if currentCategory != product.CategoryID {
			cleanup, err = pruneAttributes(ctx, tx, product.ID, product.CategoryID)
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return cleanup, nil
}

func (r *productRepo) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %d", catalog.ErrProductNotFound, id)
	}
	return nil
}

// ListByScope returns products newest first, ties broken by id descending.
func (r *productRepo) ListByScope(ctx context.Context, scope models.ProductScope) ([]*models.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE is_active = $1`
	args := []any{scope.IsActive}
	if scope.CategoryIDs != nil {
		query += ` AND category_id = ANY($2)`
		args = append(args, scope.CategoryIDs)
	}
	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return scanProducts(rows)
}

func (r *productRepo) ListNewArrivals(ctx context.Context, limit int) ([]*models.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE is_active = TRUE AND is_new_arrival = TRUE
		ORDER BY created_at DESC, id DESC
		LIMIT $1
	`
	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	return scanProducts(rows)
}

func (r *productRepo) SetNewArrival(ctx context.Context, id int64, flag bool) error {
	tag, err := r.db.Exec(ctx, `UPDATE products SET is_new_arrival = $2, updated_at = NOW() WHERE id = $1`, id, flag)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %d", catalog.ErrProductNotFound, id)
	}
	return nil
}

func (r *productRepo) MarkNewArrivalsSince(ctx context.Context, since time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE products SET is_new_arrival = TRUE, updated_at = NOW()
		WHERE created_at >= $1 AND is_new_arrival = FALSE
	`, since)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *productRepo) UnmarkNewArrivalsBefore(ctx context.Context, before time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE products SET is_new_arrival = FALSE, updated_at = NOW()
		WHERE created_at < $1 AND is_new_arrival = TRUE
	`, before)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *productRepo) ClearNewArrivals(ctx context.Context) (int64, error) {
	tag, err := r.db.Exec(ctx, `UPDATE products SET is_new_arrival = FALSE, updated_at = NOW() WHERE is_new_arrival = TRUE`)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
