package repositories

import (
	"context"
	"errors"
	"fmt"

	"shopcatalog/internal/catalog"
	"shopcatalog/internal/models"

	"github.com/jackc/pgx/v5"
)

type CategoryRepository interface {
	Create(ctx context.Context, category *models.Category) error
	GetByID(ctx context.Context, id int64) (*models.Category, error)
	Update(ctx context.Context, category *models.Category) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context) ([]*models.Category, error)
	ActiveProductCounts(ctx context.Context) (map[int64]int, error)
}

type categoryRepo struct {
	db Database
}

func NewCategoryRepo(db Database) CategoryRepository {
	return &categoryRepo{db: db}
}

const categoryColumns = `id, name, label, parent_id, category_type, is_visible, display_section, created_at, updated_at`

func scanCategory(row pgx.Row, c *models.Category) error {
	return row.Scan(&c.ID, &c.Name, &c.Label, &c.ParentID, &c.CategoryType, &c.IsVisible,
		&c.DisplaySection, &c.CreatedAt, &c.UpdatedAt)
}

func (r *categoryRepo) Create(ctx context.Context, category *models.Category) error {
	query := `
		INSERT INTO categories (name, label, parent_id, category_type, is_visible, display_section, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query, category.Name, category.Label, category.ParentID, category.CategoryType,
		category.IsVisible, category.DisplaySection).Scan(&category.ID, &category.CreatedAt, &category.UpdatedAt)
	if err != nil {
		return translateUnique(err, "category "+category.Name)
	}
	return nil
}

func (r *categoryRepo) GetByID(ctx context.Context, id int64) (*models.Category, error) {
	category := &models.Category{}
	query := `SELECT ` + categoryColumns + ` FROM categories WHERE id = $1`
	if err := scanCategory(r.db.QueryRow(ctx, query, id), category); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %d", catalog.ErrCategoryNotFound, id)
		}
		return nil, err
	}
	return category, nil
}

// categoryTreeLockKey serializes reparenting across connections.
const categoryTreeLockKey int64 = 0x636174747265

const ancestorCycleQuery = `
	WITH RECURSIVE ancestors(id, parent_id) AS (
		SELECT id, parent_id FROM categories WHERE id = $1
		UNION
		SELECT c.id, c.parent_id FROM categories c JOIN ancestors a ON c.id = a.parent_id
	)
	SELECT EXISTS (SELECT 1 FROM ancestors WHERE id = $2)
`

// Update saves the category. A parent change is checked against the committed
// tree under an advisory lock and fails with ErrCategoryCycle when the new
// parent descends from the category.
func (r *categoryRepo) Update(ctx context.Context, category *models.Category) error {
	return withTx(ctx, r.db, func(tx pgx.Tx) error {
		if category.ParentID != nil {
			if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, categoryTreeLockKey); err != nil {
				return fmt.Errorf("lock category tree: %w", err)
			}
			var cycle bool
			if err := tx.QueryRow(ctx, ancestorCycleQuery, *category.ParentID, category.ID).Scan(&cycle); err != nil {
				return fmt.Errorf("check category ancestors: %w", err)
			}
			if cycle {
				return fmt.Errorf("%w: %d under %d", catalog.ErrCategoryCycle, category.ID, *category.ParentID)
			}
		}

		query := `
			UPDATE categories
			SET name = $2, label = $3, parent_id = $4, category_type = $5, is_visible = $6, display_section = $7, updated_at = NOW()
			WHERE id = $1
			RETURNING updated_at
		`
		err := tx.QueryRow(ctx, query, category.ID, category.Name, category.Label, category.ParentID,
			category.CategoryType, category.IsVisible, category.DisplaySection).Scan(&category.UpdatedAt)
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("%w: %d", catalog.ErrCategoryNotFound, category.ID)
		}
		if err != nil {
			return translateUnique(err, "category "+category.Name)
		}
		return nil
	})
}

func (r *categoryRepo) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		if pgCode(err) == pgForeignKeyViolation {
			return fmt.Errorf("%w: %d", catalog.ErrCategoryInUse, id)
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %d", catalog.ErrCategoryNotFound, id)
	}
	return nil
}

// List returns every category ordered by name, which fixes sibling order in the tree.
func (r *categoryRepo) List(ctx context.Context) ([]*models.Category, error) {
	rows, err := r.db.Query(ctx, `SELECT `+categoryColumns+` FROM categories ORDER BY name, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []*models.Category
	for rows.Next() {
		category := &models.Category{}
		if err := scanCategory(rows, category); err != nil {
			return nil, err
		}
		categories = append(categories, category)
	}
	return categories, rows.Err()
}

// ActiveProductCounts returns the number of active products attached directly to each category.
func (r *categoryRepo) ActiveProductCounts(ctx context.Context) (map[int64]int, error) {
	query := `
		SELECT category_id, COUNT(*)
		FROM products
		WHERE is_active = TRUE
		GROUP BY category_id
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[int64]int)
	for rows.Next() {
		var categoryID int64
		var count int
		if err := rows.Scan(&categoryID, &count); err != nil {
			return nil, err
		}
		counts[categoryID] = count
	}
	return counts, rows.Err()
}
