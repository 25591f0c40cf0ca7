package repositories

import (
	"context"
	"errors"
	"fmt"

	"shopcatalog/internal/catalog"
	"shopcatalog/internal/models"

	"github.com/jackc/pgx/v5"
)

// AttributeRepository manages the global attribute registry and its predefined values.
type AttributeRepository interface {
	Create(ctx context.Context, attribute *models.Attribute) error
	GetByKey(ctx context.Context, key string) (*models.Attribute, error)
	List(ctx context.Context) ([]*models.Attribute, error)
	CreateValue(ctx context.Context, value *models.AttributeValue) error
	ListValues(ctx context.Context, key string) ([]*models.AttributeValue, error)
}

type attributeRepo struct {
	db Database
}

func NewAttributeRepo(db Database) AttributeRepository {
	return &attributeRepo{db: db}
}

func (r *attributeRepo) Create(ctx context.Context, attribute *models.Attribute) error {
	query := `
		INSERT INTO attributes (key, name, type, is_filterable, display_order, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		RETURNING id, created_at
	`
	err := r.db.QueryRow(ctx, query, attribute.Key, attribute.Name, attribute.Type, attribute.IsFilterable,
		attribute.DisplayOrder).Scan(&attribute.ID, &attribute.CreatedAt)
	if err != nil {
		return translateUnique(err, "attribute "+attribute.Key)
	}
	return nil
}

func (r *attributeRepo) GetByKey(ctx context.Context, key string) (*models.Attribute, error) {
	attribute := &models.Attribute{}
	query := `
		SELECT id, key, name, type, is_filterable, display_order, created_at
		FROM attributes
		WHERE key = $1
	`
	err := r.db.QueryRow(ctx, query, key).Scan(&attribute.ID, &attribute.Key, &attribute.Name, &attribute.Type,
		&attribute.IsFilterable, &attribute.DisplayOrder, &attribute.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", catalog.ErrUnknownAttribute, key)
		}
		return nil, err
	}
	return attribute, nil
}

func (r *attributeRepo) List(ctx context.Context) ([]*models.Attribute, error) {
	query := `
		SELECT id, key, name, type, is_filterable, display_order, created_at
		FROM attributes
		ORDER BY display_order, name
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var attributes []*models.Attribute
	for rows.Next() {
		a := &models.Attribute{}
		if err := rows.Scan(&a.ID, &a.Key, &a.Name, &a.Type, &a.IsFilterable, &a.DisplayOrder, &a.CreatedAt); err != nil {
			return nil, err
		}
		attributes = append(attributes, a)
	}
	return attributes, rows.Err()
}

func (r *attributeRepo) CreateValue(ctx context.Context, value *models.AttributeValue) error {
	query := `
		INSERT INTO attribute_values (attribute_id, value, display_order, color_code)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`
	err := r.db.QueryRow(ctx, query, value.AttributeID, value.Value, value.DisplayOrder, value.ColorCode).Scan(&value.ID)
	if err != nil {
		return translateUnique(err, "attribute value "+value.Value)
	}
	return nil
}

// ListValues returns the predefined values of the attribute with the given key.
func (r *attributeRepo) ListValues(ctx context.Context, key string) ([]*models.AttributeValue, error) {
	query := `
		SELECT av.id, av.attribute_id, av.value, av.display_order, av.color_code
		FROM attribute_values av
		JOIN attributes a ON a.id = av.attribute_id
		WHERE a.key = $1
		ORDER BY av.display_order, av.value
	`
	rows, err := r.db.Query(ctx, query, key)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var values []*models.AttributeValue
	for rows.Next() {
		v := &models.AttributeValue{}
		if err := rows.Scan(&v.ID, &v.AttributeID, &v.Value, &v.DisplayOrder, &v.ColorCode); err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, rows.Err()
}
