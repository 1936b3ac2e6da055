package repo

import (
	"context"
	"database/sql"

	"github.com/aayushirajput1602/Shop-Mart-Cart-sub000/internal/models"
)

type PostgresWishlistRepository struct {
	db *sql.DB
}

func NewPostgresWishlistRepository(db *sql.DB) *PostgresWishlistRepository {
	return &PostgresWishlistRepository{db: db}
}

const wishlistColumns = `product_id, product_name, product_price, product_image_url, product_category, created_at`

func scanWishlistEntry(s rowScanner) (models.WishlistEntry, error) {
	var (
		e        models.WishlistEntry
		imageURL sql.NullString
		category sql.NullString
	)
	if err := s.Scan(&e.ProductID, &e.Product.Name, &e.Product.Price, &imageURL, &category, &e.AddedAt); err != nil {
		return models.WishlistEntry{}, err
	}
	e.Product.ImageURL = imageURL.String
	e.Product.Category = category.String
	return e, nil
}

func (r *PostgresWishlistRepository) GetByUser(ctx context.Context, userID string) ([]models.WishlistEntry, error) {
	query := `SELECT ` + wishlistColumns + ` FROM wishlist_items WHERE user_id = $1 ORDER BY created_at, product_id`
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []models.WishlistEntry{}
	for rows.Next() {
		e, err := scanWishlistEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *PostgresWishlistRepository) Add(ctx context.Context, userID string, entry models.WishlistEntry) (models.WishlistEntry, error) {
	// The no-op update makes RETURNING yield the existing row on conflict.
	query := `
		INSERT INTO wishlist_items (user_id, product_id, product_name, product_price, product_image_url, product_category)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id, product_id) DO UPDATE SET product_id = EXCLUDED.product_id
		RETURNING ` + wishlistColumns
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	return scanWishlistEntry(r.db.QueryRowContext(ctx, query, userID, entry.ProductID,
		entry.Product.Name, entry.Product.Price, entry.Product.ImageURL, entry.Product.Category))
}

func (r *PostgresWishlistRepository) Remove(ctx context.Context, userID string, productID int) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `DELETE FROM wishlist_items WHERE user_id = $1 AND product_id = $2`, userID, productID)
	if err != nil {
		return err
	}
	rowsAffected, _ := res.RowsAffected()
	if rowsAffected == 0 {
		return ErrWishlistEntryNotFound
	}
	return nil
}
