package testhelpers

import (
	"context"
	"os"
	"testing"

	"shopcatalog/internal/models"
	"shopcatalog/pkg/database"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// TestDB holds a migrated database connection for integration tests.
type TestDB struct {
	Pool *pgxpool.Pool
}

// SetupTestDB connects to TEST_DATABASE_URL, applies migrations and empties
// every catalog table. The test is skipped when the variable is unset.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	pool, err := database.NewPool(ctx, dsn)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	t.Cleanup(pool.Close)

	if err := database.Migrate(ctx, pool); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	db := &TestDB{Pool: pool}
	db.Truncate(t)
	return db
}

func (db *TestDB) Truncate(t *testing.T) {
	t.Helper()
	_, err := db.Pool.Exec(context.Background(), `
		TRUNCATE product_images, category_attribute_values, category_attributes,
			product_attribute_values, attribute_values, attributes,
			product_attributes, products, categories
		RESTART IDENTITY CASCADE`)
	if err != nil {
		t.Fatalf("Failed to truncate test database: %v", err)
	}
}

func (db *TestDB) CreateCategory(t *testing.T, name string, parentID *int64) int64 {
	t.Helper()
	var id int64
	err := db.Pool.QueryRow(context.Background(), `
		INSERT INTO categories (name, parent_id, category_type, is_visible)
		VALUES ($1, $2, $3, TRUE)
		RETURNING id`, name, parentID, string(models.CategoryTypeAuto)).Scan(&id)
	if err != nil {
		t.Fatalf("Failed to create category %s: %v", name, err)
	}
	return id
}

func (db *TestDB) CreateProduct(t *testing.T, name string, categoryID int64, priceToman int64, active bool) int64 {
	t.Helper()
	var id int64
	err := db.Pool.QueryRow(context.Background(), `
		INSERT INTO products (name, category_id, price_toman, is_active)
		VALUES ($1, $2, $3, $4)
		RETURNING id`, name, categoryID, decimal.NewFromInt(priceToman), active).Scan(&id)
	if err != nil {
		t.Fatalf("Failed to create product %s: %v", name, err)
	}
	return id
}

func (db *TestDB) CreateAttribute(t *testing.T, key string, filterable bool, values ...string) int64 {
	t.Helper()
	ctx := context.Background()
	var id int64
	err := db.Pool.QueryRow(ctx, `
		INSERT INTO attributes (key, name, type, is_filterable)
		VALUES ($1, $1, $2, $3)
		RETURNING id`, key, string(models.AttributeTypeSelect), filterable).Scan(&id)
	if err != nil {
		t.Fatalf("Failed to create attribute %s: %v", key, err)
	}
	for i, v := range values {
		if _, err := db.Pool.Exec(ctx, `INSERT INTO attribute_values (attribute_id, value, display_order) VALUES ($1, $2, $3)`,
			id, v, i); err != nil {
			t.Fatalf("Failed to create attribute value %s=%s: %v", key, v, err)
		}
	}
	return id
}

// AttachAttribute adds key to a category's schema.
func (db *TestDB) AttachAttribute(t *testing.T, categoryID int64, key string) {
	t.Helper()
	_, err := db.Pool.Exec(context.Background(), `
		INSERT INTO category_attributes (category_id, key, type)
		VALUES ($1, $2, $3)`, categoryID, key, string(models.AttributeTypeSelect))
	if err != nil {
		t.Fatalf("Failed to attach %s to category %d: %v", key, categoryID, err)
	}
}

func (db *TestDB) SetLegacy(t *testing.T, productID int64, key, value string) {
	t.Helper()
	_, err := db.Pool.Exec(context.Background(),
		`INSERT INTO product_attributes (product_id, key, value) VALUES ($1, $2, $3)`, productID, key, value)
	if err != nil {
		t.Fatalf("Failed to set legacy %s on product %d: %v", key, productID, err)
	}
}
