package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopkit/storefront/internal/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const productColumns = `id, category_id, name, description, price, stock, image_url, created_at`

func (r *PostgresRepository) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	product, err := scanProduct(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query product by id: %w", err)
	}
	return product, nil
}

func (r *PostgresRepository) ListProducts(ctx context.Context) ([]*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products ORDER BY id`
	return r.queryProducts(ctx, query)
}

func (r *PostgresRepository) ListByCategory(ctx context.Context, categoryID int64) ([]*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE category_id = $1 ORDER BY id`
	return r.queryProducts(ctx, query, categoryID)
}

func (r *PostgresRepository) queryProducts(ctx context.Context, query string, args ...interface{}) ([]*domain.Product, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	var products []*domain.Product
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product row: %w", err)
		}
		products = append(products, product)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return products, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanProduct(row rowScanner) (*domain.Product, error) {
	var product domain.Product
	var description, imageURL sql.NullString
	err := row.Scan(
		&product.ID,
		&product.CategoryID,
		&product.Name,
		&description,
		&product.Price,
		&product.Stock,
		&imageURL,
		&product.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	product.Description = description.String
	product.ImageURL = imageURL.String
	return &product, nil
}

func (r *PostgresRepository) CreateProduct(ctx context.Context, product *domain.Product) error {
	query := `INSERT INTO products (category_id, name, description, price, stock, image_url, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, NOW())
	          RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		product.CategoryID,
		product.Name,
		product.Description,
		product.Price,
		product.Stock,
		product.ImageURL,
	).Scan(&product.ID, &product.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

func (r *PostgresRepository) UpdateProduct(ctx context.Context, product *domain.Product) error {
	query := `UPDATE products
	          SET category_id = $1, name = $2, description = $3, price = $4, stock = $5, image_url = $6
	          WHERE id = $7`

	res, err := r.db.ExecContext(ctx, query,
		product.CategoryID,
		product.Name,
		product.Description,
		product.Price,
		product.Stock,
		product.ImageURL,
		product.ID,
	)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	return requireRow(res, domain.ErrProductNotFound)
}

func (r *PostgresRepository) DeleteProduct(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	return requireRow(res, domain.ErrProductNotFound)
}

func (r *PostgresRepository) DecrementStock(ctx context.Context, id int64, qty int) error {
	// Conditional update keeps check-and-decrement atomic per product.
	res, err := r.db.ExecContext(ctx,
		`UPDATE products SET stock = stock - $1 WHERE id = $2 AND stock >= $1`, qty, id)
	if err != nil {
		return fmt.Errorf("decrement stock: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("decrement stock rows affected: %w", err)
	}
	if affected > 0 {
		return nil
	}

	var available int
	err = r.db.QueryRowContext(ctx, `SELECT stock FROM products WHERE id = $1`, id).Scan(&available)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrProductNotFound
	}
	if err != nil {
		return fmt.Errorf("query stock: %w", err)
	}
	return &domain.InsufficientStockError{ProductID: id, Requested: qty, Available: available}
}

func (r *PostgresRepository) IncrementStock(ctx context.Context, id int64, qty int) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE products SET stock = stock + $1 WHERE id = $2`, qty, id)
	if err != nil {
		return fmt.Errorf("increment stock: %w", err)
	}
	return requireRow(res, domain.ErrProductNotFound)
}

func (r *PostgresRepository) ListCategories(ctx context.Context) ([]*domain.Category, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name FROM categories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	defer rows.Close()

	var categories []*domain.Category
	for rows.Next() {
		var category domain.Category
		if err := rows.Scan(&category.ID, &category.Name); err != nil {
			return nil, fmt.Errorf("scan category row: %w", err)
		}
		categories = append(categories, &category)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return categories, nil
}

func (r *PostgresRepository) CreateCategory(ctx context.Context, category *domain.Category) error {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO categories (name) VALUES ($1) RETURNING id`, category.Name).Scan(&category.ID)
	if err != nil {
		return fmt.Errorf("insert category: %w", err)
	}
	return nil
}

func (r *PostgresRepository) DeleteCategory(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	return requireRow(res, domain.ErrCategoryNotFound)
}

func requireRow(res sql.Result, missing error) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return missing
	}
	return nil
}
