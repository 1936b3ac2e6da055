package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/aayushirajput1602/Shop-Mart-Cart-sub000/internal/models"
)

const productColumns = `id, name, description, image_url, category, price, rating, inventory_count, threshold, created_at, updated_at`

type PostgresProductRepository struct {
	db *sql.DB
}

func NewPostgresProductRepository(db *sql.DB) *PostgresProductRepository {
	return &PostgresProductRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

// scanProduct maps a products row to the typed record, applying the
// defaulting rules for columns the store may leave NULL.
func scanProduct(s rowScanner) (models.Product, error) {
	var (
		p        models.Product
		desc     sql.NullString
		imageURL sql.NullString
		category sql.NullString
		rating   sql.NullFloat64
	)
	err := s.Scan(&p.ID, &p.Name, &desc, &imageURL, &category, &p.Price, &rating,
		&p.InventoryCount, &p.Threshold, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return models.Product{}, err
	}
	p.Description = desc.String
	p.ImageURL = imageURL.String
	p.Category = category.String
	p.Rating = models.DefaultRating
	if rating.Valid {
		p.Rating = rating.Float64
	}
	p.ApplyDefaults()
	return p, nil
}

func (r *PostgresProductRepository) Create(ctx context.Context, p models.Product) (models.Product, error) {
	query := `
		INSERT INTO products (name, description, image_url, category, price, rating, inventory_count, threshold, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)
		RETURNING ` + productColumns
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	p.ApplyDefaults()
	created, err := scanProduct(r.db.QueryRowContext(ctx, query,
		p.Name, p.Description, p.ImageURL, p.Category, p.Price, p.Rating, p.InventoryCount, p.Threshold, time.Now().UTC()))
	if isUniqueViolation(err) {
		return models.Product{}, ErrDuplicatedValueUnique
	}
	return created, err
}

func (r *PostgresProductRepository) GetAll(ctx context.Context) ([]models.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products ORDER BY id`
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	return r.queryProducts(ctx, query)
}

func (r *PostgresProductRepository) GetByID(ctx context.Context, id int) (models.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	p, err := scanProduct(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Product{}, ErrProductNotFound
	}
	return p, err
}

func (r *PostgresProductRepository) GetByName(ctx context.Context, name string) (models.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE lower(name) = lower($1)`
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	p, err := scanProduct(r.db.QueryRowContext(ctx, query, name))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Product{}, ErrProductNotFound
	}
	return p, err
}

func (r *PostgresProductRepository) Update(ctx context.Context, p models.Product) (models.Product, error) {
	query := `
		UPDATE products
		SET name = $1, description = $2, image_url = $3, category = $4, price = $5, rating = $6,
		    inventory_count = $7, threshold = $8, updated_at = $9
		WHERE id = $10
		RETURNING ` + productColumns
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	p.ApplyDefaults()
	updated, err := scanProduct(r.db.QueryRowContext(ctx, query,
		p.Name, p.Description, p.ImageURL, p.Category, p.Price, p.Rating, p.InventoryCount, p.Threshold, time.Now().UTC(), p.ID))
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return models.Product{}, ErrProductNotFound
	case isUniqueViolation(err):
		return models.Product{}, ErrDuplicatedValueUnique
	}
	return updated, err
}

func (r *PostgresProductRepository) Delete(ctx context.Context, id int) error {
	query := `DELETE FROM products WHERE id = $1`
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	rowsAffected, _ := res.RowsAffected()
	if rowsAffected == 0 {
		return ErrProductNotFound
	}
	return nil
}

func (r *PostgresProductRepository) Filter(ctx context.Context, pf ProductFilter) ([]models.Product, int, error) {
	conditions, args, argIdx := filterConditions(pf)

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var totalCount int
	countQuery := "SELECT COUNT(*) FROM products WHERE 1=1" + conditions
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&totalCount); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + productColumns + ` FROM products WHERE 1=1` + conditions + " ORDER BY id"

	if pf.Limit != nil && *pf.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argIdx)
		args = append(args, *pf.Limit)
		argIdx++
	}
	if pf.Offset != nil && *pf.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argIdx)
		args = append(args, *pf.Offset)
	}

	products, err := r.queryProducts(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	return products, totalCount, nil
}

func filterConditions(pf ProductFilter) (string, []any, int) {
	query := ""
	argIdx := 1
	args := []any{}

	if pf.Name != "" {
		query += fmt.Sprintf(" AND name ILIKE $%d", argIdx)
		args = append(args, "%"+pf.Name+"%")
		argIdx++
	}
	if pf.Category != "" {
		query += fmt.Sprintf(" AND lower(category) = lower($%d)", argIdx)
		args = append(args, pf.Category)
		argIdx++
	}
	if pf.MinPrice != nil {
		query += fmt.Sprintf(" AND price >= $%d", argIdx)
		args = append(args, *pf.MinPrice)
		argIdx++
	}
	if pf.MaxPrice != nil {
		query += fmt.Sprintf(" AND price <= $%d", argIdx)
		args = append(args, *pf.MaxPrice)
		argIdx++
	}
	if pf.MinQty != nil {
		query += fmt.Sprintf(" AND inventory_count >= $%d", argIdx)
		args = append(args, *pf.MinQty)
		argIdx++
	}
	if pf.MaxQty != nil {
		query += fmt.Sprintf(" AND inventory_count <= $%d", argIdx)
		args = append(args, *pf.MaxQty)
		argIdx++
	}

	return query, args, argIdx
}

// AdjustQuantity applies delta to inventory_count in a single statement.
// The WHERE guard keeps the count non-negative; there is no version check,
// so concurrent adjustments are applied in whatever order the rows lock.
// A missing product is told apart from a refused adjustment.
func (r *PostgresProductRepository) AdjustQuantity(ctx context.Context, productID int, delta int) (models.Product, error) {
	query := `
		UPDATE products
		SET inventory_count = inventory_count + $1, updated_at = $2
		WHERE id = $3 AND inventory_count + $1 >= 0
		RETURNING ` + productColumns
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	p, err := scanProduct(r.db.QueryRowContext(ctx, query, delta, time.Now().UTC(), productID))
	if !errors.Is(err, sql.ErrNoRows) {
		return p, err
	}

	var exists bool
	if err := r.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM products WHERE id = $1)`, productID).Scan(&exists); err != nil {
		return models.Product{}, err
	}
	if !exists {
		return models.Product{}, ErrProductNotFound
	}
	return models.Product{}, ErrInvalidQuantityChange
}

func (r *PostgresProductRepository) queryProducts(ctx context.Context, query string, args ...any) ([]models.Product, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := []models.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}
