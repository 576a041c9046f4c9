package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"tharo/api/models"
)

// ProductCatalog is the read-only lookup the analytics reports enrich from.
// The full ProductStore satisfies it; tests use a map-backed stub.
type ProductCatalog interface {
	GetProductsByIDs(ctx context.Context, ids []string) (map[string]models.Product, error)
}

type ProductStore struct {
	db *sql.DB
}

func NewProductStore(db *sql.DB) *ProductStore {
	return &ProductStore{db: db}
}

const productColumns = `id, name, slug, price, original_price, description, images, status, is_active, sort_order, created_at, updated_at`

func scanProduct(row interface{ Scan(...any) error }) (*models.Product, error) {
	p := &models.Product{}
	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Slug,
		&p.Price,
		&p.OriginalPrice,
		&p.Description,
		pq.Array(&p.Images),
		&p.Status,
		&p.IsActive,
		&p.SortOrder,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// CreateProduct inserts a new catalog entry. The id is assigned here.
func (s *ProductStore) CreateProduct(ctx context.Context, id string, in models.ProductInput) (*models.Product, error) {
	isActive := true
	if in.IsActive != nil {
		isActive = *in.IsActive
	}
	status := in.Status
	if status == "" {
		status = "active"
	}

	query := fmt.Sprintf(`
		INSERT INTO products (id, name, slug, price, original_price, description, images, status, is_active, sort_order)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING %s;
	`, productColumns)

	row := s.db.QueryRowContext(ctx, query,
		id, in.Name, in.Slug, in.Price, in.OriginalPrice, in.Description,
		pq.Array(in.Images), status, isActive, in.SortOrder,
	)
	p, err := scanProduct(row)
	if err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	return p, nil
}

func (s *ProductStore) GetProductByID(ctx context.Context, id string) (*models.Product, error) {
	query := fmt.Sprintf(`SELECT %s FROM products WHERE id = $1;`, productColumns)
	p, err := scanProduct(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("product '%s' not found", id)
		}
		return nil, fmt.Errorf("failed to get product by id: %w", err)
	}
	return p, nil
}

func (s *ProductStore) GetProductBySlug(ctx context.Context, slug string) (*models.Product, error) {
	query := fmt.Sprintf(`SELECT %s FROM products WHERE slug = $1;`, productColumns)
	p, err := scanProduct(s.db.QueryRowContext(ctx, query, slug))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("product with slug '%s' not found", slug)
		}
		return nil, fmt.Errorf("failed to get product by slug: %w", err)
	}
	return p, nil
}

// ListProducts returns the catalog ordered for storefront display. When
// activeOnly is set, hidden products are excluded.
func (s *ProductStore) ListProducts(ctx context.Context, activeOnly bool) ([]models.Product, error) {
	query := fmt.Sprintf(`SELECT %s FROM products`, productColumns)
	if activeOnly {
		query += ` WHERE is_active = TRUE`
	}
	query += ` ORDER BY sort_order ASC, created_at DESC;`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	products := []models.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product row: %w", err)
		}
		products = append(products, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row error listing products: %w", err)
	}
	return products, nil
}

func (s *ProductStore) UpdateProduct(ctx context.Context, id string, in models.ProductInput) (*models.Product, error) {
	isActive := true
	if in.IsActive != nil {
		isActive = *in.IsActive
	}
	status := in.Status
	if status == "" {
		status = "active"
	}

	query := fmt.Sprintf(`
		UPDATE products
		SET name = $2, slug = $3, price = $4, original_price = $5, description = $6,
		    images = $7, status = $8, is_active = $9, sort_order = $10, updated_at = NOW()
		WHERE id = $1
		RETURNING %s;
	`, productColumns)

	row := s.db.QueryRowContext(ctx, query,
		id, in.Name, in.Slug, in.Price, in.OriginalPrice, in.Description,
		pq.Array(in.Images), status, isActive, in.SortOrder,
	)
	p, err := scanProduct(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("product '%s' not found", id)
		}
		return nil, fmt.Errorf("failed to update product: %w", err)
	}
	return p, nil
}

func (s *ProductStore) DeleteProduct(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1;`, id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("product '%s' not found", id)
	}
	return nil
}

// GetProductsByIDs batch-fetches catalog entries for report enrichment. IDs
// with no matching row are simply absent from the result map; the caller
// decides how to render the gap.
func (s *ProductStore) GetProductsByIDs(ctx context.Context, ids []string) (map[string]models.Product, error) {
	result := make(map[string]models.Product, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	query := fmt.Sprintf(`SELECT %s FROM products WHERE id = ANY($1);`, productColumns)
	rows, err := s.db.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to batch-fetch products: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product row: %w", err)
		}
		result[p.ID] = *p
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row error batch-fetching products: %w", err)
	}
	return result, nil
}
