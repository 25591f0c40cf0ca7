package repositories

import (
	"context"
	"errors"
	"fmt"

	"shopcatalog/internal/catalog"
	"shopcatalog/internal/models"

	"github.com/jackc/pgx/v5"
)

// ProductAttributeRepository reads and writes both attribute stores of a product:
// legacy key/value rows and flexible rows bound to the global registry.
type ProductAttributeRepository interface {
	ListFlexible(ctx context.Context, productIDs []int64) ([]*models.ProductAttributeValue, error)
	ListLegacy(ctx context.Context, productIDs []int64) ([]*models.ProductAttribute, error)
	GetFlexible(ctx context.Context, productID int64, key string) (*models.ProductAttributeValue, error)
	GetLegacy(ctx context.Context, productID int64, key string) (*models.ProductAttribute, error)
	SetFlexibleValue(ctx context.Context, productID int64, key, value string) (*models.ProductAttributeValue, error)
	SetLegacyValue(ctx context.Context, productID int64, key, value string) error
	Cleanup(ctx context.Context, productID, categoryID int64) (*models.AttributeCleanup, error)
	MatchLegacy(ctx context.Context, key string, values []string) ([]int64, error)
	MatchPredefined(ctx context.Context, key string, values []string) ([]int64, error)
	MatchCustom(ctx context.Context, key string, values []string) ([]int64, error)
	KeysInUse(ctx context.Context, isActive bool) ([]string, error)
}

type productAttributeRepo struct {
	db Database
}

func NewProductAttributeRepo(db Database) ProductAttributeRepository {
	return &productAttributeRepo{db: db}
}

const flexibleSelect = `
	SELECT pav.id, pav.product_id, pav.attribute_id, a.key, pav.attribute_value_id, av.value, pav.custom_value
	FROM product_attribute_values pav
	JOIN attributes a ON a.id = pav.attribute_id
	LEFT JOIN attribute_values av ON av.id = pav.attribute_value_id
`

func scanFlexible(row pgx.Row, v *models.ProductAttributeValue) error {
	return row.Scan(&v.ID, &v.ProductID, &v.AttributeID, &v.AttributeKey, &v.AttributeValueID, &v.PredefinedValue, &v.CustomValue)
}

func (r *productAttributeRepo) ListFlexible(ctx context.Context, productIDs []int64) ([]*models.ProductAttributeValue, error) {
	if len(productIDs) == 0 {
		return nil, nil
	}
	rows, err := r.db.Query(ctx, flexibleSelect+`
		WHERE pav.product_id = ANY($1)
		ORDER BY pav.product_id, a.display_order, a.key
	`, productIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var values []*models.ProductAttributeValue
	for rows.Next() {
		v := &models.ProductAttributeValue{}
		if err := scanFlexible(rows, v); err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, rows.Err()
}

// ListLegacy returns legacy rows in insertion order per product.
func (r *productAttributeRepo) ListLegacy(ctx context.Context, productIDs []int64) ([]*models.ProductAttribute, error) {
	if len(productIDs) == 0 {
		return nil, nil
	}
	query := `
		SELECT id, product_id, key, value
		FROM product_attributes
		WHERE product_id = ANY($1)
		ORDER BY product_id, id
	`
	rows, err := r.db.Query(ctx, query, productIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var attrs []*models.ProductAttribute
	for rows.Next() {
		a := &models.ProductAttribute{}
		if err := rows.Scan(&a.ID, &a.ProductID, &a.Key, &a.Value); err != nil {
			return nil, err
		}
		attrs = append(attrs, a)
	}
	return attrs, rows.Err()
}

// GetFlexible returns nil without error when the product has no value for key.
func (r *productAttributeRepo) GetFlexible(ctx context.Context, productID int64, key string) (*models.ProductAttributeValue, error) {
	v := &models.ProductAttributeValue{}
	err := scanFlexible(r.db.QueryRow(ctx, flexibleSelect+`WHERE pav.product_id = $1 AND a.key = $2`, productID, key), v)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return v, nil
}

// GetLegacy returns the oldest legacy row for key, or nil when there is none.
func (r *productAttributeRepo) GetLegacy(ctx context.Context, productID int64, key string) (*models.ProductAttribute, error) {
	a := &models.ProductAttribute{}
	query := `
		SELECT id, product_id, key, value
		FROM product_attributes
		WHERE product_id = $1 AND key = $2
		ORDER BY id
		LIMIT 1
	`
	err := r.db.QueryRow(ctx, query, productID, key).Scan(&a.ID, &a.ProductID, &a.Key, &a.Value)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

func lockProduct(ctx context.Context, tx pgx.Tx, productID int64) (int64, error) {
	var categoryID int64
	err := tx.QueryRow(ctx, `SELECT category_id FROM products WHERE id = $1 FOR UPDATE`, productID).Scan(&categoryID)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, fmt.Errorf("%w: %d", catalog.ErrProductNotFound, productID)
	}
	return categoryID, err
}

// SetFlexibleValue stores value for key as a reference to the matching
// predefined value, or as a custom value when no predefined value matches.
// The other field is always cleared in the same statement.
func (r *productAttributeRepo) SetFlexibleValue(ctx context.Context, productID int64, key, value string) (*models.ProductAttributeValue, error) {
	result := &models.ProductAttributeValue{ProductID: productID, AttributeKey: key}
	err := withTx(ctx, r.db, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `SELECT id FROM attributes WHERE key = $1`, key).Scan(&result.AttributeID)
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("%w: %s", catalog.ErrUnknownAttribute, key)
		}
		if err != nil {
			return err
		}

		if _, err := lockProduct(ctx, tx, productID); err != nil {
			return err
		}

		var valueID int64
		err = tx.QueryRow(ctx, `SELECT id FROM attribute_values WHERE attribute_id = $1 AND value = $2`,
			result.AttributeID, value).Scan(&valueID)
		switch {
		case err == nil:
			result.AttributeValueID = &valueID
			result.PredefinedValue = &value
		case errors.Is(err, pgx.ErrNoRows):
			result.CustomValue = &value
		default:
			return err
		}

		query := `
			INSERT INTO product_attribute_values (product_id, attribute_id, attribute_value_id, custom_value)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (product_id, attribute_id)
			DO UPDATE SET attribute_value_id = EXCLUDED.attribute_value_id, custom_value = EXCLUDED.custom_value
			RETURNING id
		`
		return tx.QueryRow(ctx, query, productID, result.AttributeID, result.AttributeValueID, result.CustomValue).Scan(&result.ID)
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// SetLegacyValue keeps at most one legacy row per key: the oldest row is
// updated and any duplicates are removed.
func (r *productAttributeRepo) SetLegacyValue(ctx context.Context, productID int64, key, value string) error {
	return withTx(ctx, r.db, func(tx pgx.Tx) error {
		if _, err := lockProduct(ctx, tx, productID); err != nil {
			return err
		}

		var id int64
		err := tx.QueryRow(ctx, `
			SELECT id FROM product_attributes WHERE product_id = $1 AND key = $2 ORDER BY id LIMIT 1
		`, productID, key).Scan(&id)
		if errors.Is(err, pgx.ErrNoRows) {
			_, err = tx.Exec(ctx, `INSERT INTO product_attributes (product_id, key, value) VALUES ($1, $2, $3)`,
				productID, key, value)
			return err
		}
		if err != nil {
			return err
		}

		if _, err := tx.Exec(ctx, `UPDATE product_attributes SET value = $2 WHERE id = $1`, id, value); err != nil {
			return err
		}
		_, err = tx.Exec(ctx, `DELETE FROM product_attributes WHERE product_id = $1 AND key = $2 AND id <> $3`,
			productID, key, id)
		return err
	})
}

// Cleanup prunes both stores of productID down to the keys categoryID defines.
func (r *productAttributeRepo) Cleanup(ctx context.Context, productID, categoryID int64) (*models.AttributeCleanup, error) {
	var cleanup *models.AttributeCleanup
	err := withTx(ctx, r.db, func(tx pgx.Tx) error {
		if _, err := lockProduct(ctx, tx, productID); err != nil {
			return err
		}
		var err error
		cleanup, err = pruneAttributes(ctx, tx, productID, categoryID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return cleanup, nil
}

func pruneAttributes(ctx context.Context, q querier, productID, categoryID int64) (*models.AttributeCleanup, error) {
	legacy, err := q.Exec(ctx, `
		DELETE FROM product_attributes
		WHERE product_id = $1
			AND key NOT IN (SELECT key FROM category_attributes WHERE category_id = $2)
	`, productID, categoryID)
	if err != nil {
		return nil, fmt.Errorf("prune legacy attributes: %w", err)
	}
	flexible, err := q.Exec(ctx, `
		DELETE FROM product_attribute_values pav
		USING attributes a
		WHERE pav.attribute_id = a.id
			AND pav.product_id = $1
			AND a.key NOT IN (SELECT key FROM category_attributes WHERE category_id = $2)
	`, productID, categoryID)
	if err != nil {
		return nil, fmt.Errorf("prune flexible attributes: %w", err)
	}
	return &models.AttributeCleanup{Legacy: legacy.RowsAffected(), Flexible: flexible.RowsAffected()}, nil
}

func (r *productAttributeRepo) MatchLegacy(ctx context.Context, key string, values []string) ([]int64, error) {
	rows, err := r.db.Query(ctx, `
		SELECT DISTINCT product_id FROM product_attributes WHERE key = $1 AND value = ANY($2)
	`, key, values)
	if err != nil {
		return nil, err
	}
	return scanIDs(rows)
}

func (r *productAttributeRepo) MatchPredefined(ctx context.Context, key string, values []string) ([]int64, error) {
	rows, err := r.db.Query(ctx, `
		SELECT DISTINCT pav.product_id
		FROM product_attribute_values pav
		JOIN attributes a ON a.id = pav.attribute_id
		JOIN attribute_values av ON av.id = pav.attribute_value_id
		WHERE a.key = $1 AND av.value = ANY($2)
	`, key, values)
	if err != nil {
		return nil, err
	}
	return scanIDs(rows)
}

// MatchCustom ignores rows that also carry a predefined value.
func (r *productAttributeRepo) MatchCustom(ctx context.Context, key string, values []string) ([]int64, error) {
	rows, err := r.db.Query(ctx, `
		SELECT DISTINCT pav.product_id
		FROM product_attribute_values pav
		JOIN attributes a ON a.id = pav.attribute_id
		WHERE a.key = $1 AND pav.attribute_value_id IS NULL AND pav.custom_value = ANY($2)
	`, key, values)
	if err != nil {
		return nil, err
	}
	return scanIDs(rows)
}

// KeysInUse returns every attribute key stored in either store for products with the given status.
func (r *productAttributeRepo) KeysInUse(ctx context.Context, isActive bool) ([]string, error) {
	rows, err := r.db.Query(ctx, `
		SELECT pa.key
		FROM product_attributes pa
		JOIN products p ON p.id = pa.product_id
		WHERE p.is_active = $1
		UNION
		SELECT a.key
		FROM product_attribute_values pav
		JOIN attributes a ON a.id = pav.attribute_id
		JOIN products p ON p.id = pav.product_id
		WHERE p.is_active = $1
		ORDER BY 1
	`, isActive)
	if err != nil {
		return nil, err
	}
	return scanStrings(rows)
}
