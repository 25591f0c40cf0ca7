package repositories

import (
	"context"
	"fmt"

	"shopcatalog/internal/catalog"
	"shopcatalog/internal/models"

	"github.com/jackc/pgx/v5"
)

// CategoryAttributeRepository manages the per-category product form schema.
type CategoryAttributeRepository interface {
	Create(ctx context.Context, attribute *models.CategoryAttribute, values []string) error
	ListByCategories(ctx context.Context, categoryIDs []int64) ([]*models.CategoryAttribute, error)
	Delete(ctx context.Context, categoryID int64, key string) error
}

type categoryAttributeRepo struct {
	db Database
}

func NewCategoryAttributeRepo(db Database) CategoryAttributeRepository {
	return &categoryAttributeRepo{db: db}
}

// Create inserts the field and its enumerated values in one transaction.
func (r *categoryAttributeRepo) Create(ctx context.Context, attribute *models.CategoryAttribute, values []string) error {
	return withTx(ctx, r.db, func(tx pgx.Tx) error {
		query := `
			INSERT INTO category_attributes (category_id, key, type, required, display_order, label_fa)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id
		`
		err := tx.QueryRow(ctx, query, attribute.CategoryID, attribute.Key, attribute.Type, attribute.Required,
			attribute.DisplayOrder, attribute.LabelFa).Scan(&attribute.ID)
		if err != nil {
			return translateUnique(err, "category attribute "+attribute.Key)
		}

		attribute.Values = attribute.Values[:0]
		for i, value := range values {
			v := &models.CategoryAttributeValue{CategoryAttributeID: attribute.ID, Value: value, DisplayOrder: i}
			err := tx.QueryRow(ctx, `
				INSERT INTO category_attribute_values (category_attribute_id, value, display_order)
				VALUES ($1, $2, $3)
				RETURNING id
			`, v.CategoryAttributeID, v.Value, v.DisplayOrder).Scan(&v.ID)
			if err != nil {
				return translateUnique(err, "category attribute value "+value)
			}
			attribute.Values = append(attribute.Values, v)
		}
		return nil
	})
}

// ListByCategories returns the fields of the given categories with their values,
// ordered by display order and key.
func (r *categoryAttributeRepo) ListByCategories(ctx context.Context, categoryIDs []int64) ([]*models.CategoryAttribute, error) {
	if len(categoryIDs) == 0 {
		return nil, nil
	}
	query := `
		SELECT id, category_id, key, type, required, display_order, label_fa
		FROM category_attributes
		WHERE category_id = ANY($1)
		ORDER BY display_order, key, id
	`
	rows, err := r.db.Query(ctx, query, categoryIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var attributes []*models.CategoryAttribute
	byID := make(map[int64]*models.CategoryAttribute)
	var ids []int64
	for rows.Next() {
		a := &models.CategoryAttribute{}
		if err := rows.Scan(&a.ID, &a.CategoryID, &a.Key, &a.Type, &a.Required, &a.DisplayOrder, &a.LabelFa); err != nil {
			return nil, err
		}
		attributes = append(attributes, a)
		byID[a.ID] = a
		ids = append(ids, a.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()
	if len(ids) == 0 {
		return attributes, nil
	}

	valueRows, err := r.db.Query(ctx, `
		SELECT id, category_attribute_id, value, display_order
		FROM category_attribute_values
		WHERE category_attribute_id = ANY($1)
		ORDER BY display_order, value
	`, ids)
	if err != nil {
		return nil, err
	}
	defer valueRows.Close()
	for valueRows.Next() {
		v := &models.CategoryAttributeValue{}
		if err := valueRows.Scan(&v.ID, &v.CategoryAttributeID, &v.Value, &v.DisplayOrder); err != nil {
			return nil, err
		}
		if a, ok := byID[v.CategoryAttributeID]; ok {
			a.Values = append(a.Values, v)
		}
	}
	return attributes, valueRows.Err()
}

func (r *categoryAttributeRepo) Delete(ctx context.Context, categoryID int64, key string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM category_attributes WHERE category_id = $1 AND key = $2`, categoryID, key)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", catalog.ErrUnknownAttribute, key)
	}
	return nil
}
