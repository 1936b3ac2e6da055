package repo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/aayushirajput1602/Shop-Mart-Cart-sub000/internal/models"
)

type PostgresCartRepository struct {
	db *sql.DB
}

func NewPostgresCartRepository(db *sql.DB) *PostgresCartRepository {
	return &PostgresCartRepository{db: db}
}

const cartColumns = `id, user_id, product_id, quantity, product_name, product_price, product_image_url, product_category, created_at, updated_at`

func scanCartEntry(s rowScanner) (models.CartEntry, error) {
	var (
		e        models.CartEntry
		imageURL sql.NullString
		category sql.NullString
	)
	err := s.Scan(&e.ID, &e.UserID, &e.ProductID, &e.Quantity, &e.Product.Name, &e.Product.Price,
		&imageURL, &category, &e.AddedAt, &e.UpdatedAt)
	if err != nil {
		return models.CartEntry{}, err
	}
	e.Product.ImageURL = imageURL.String
	e.Product.Category = category.String
	if e.Product.Category == "" {
		e.Product.Category = models.DefaultCategory
	}
	return e, nil
}

func (r *PostgresCartRepository) GetByUser(ctx context.Context, userID string) ([]models.CartEntry, error) {
	query := `SELECT ` + cartColumns + ` FROM cart_items WHERE user_id = $1 ORDER BY created_at, id`
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []models.CartEntry{}
	for rows.Next() {
		e, err := scanCartEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *PostgresCartRepository) Upsert(ctx context.Context, entry models.CartEntry) (models.CartEntry, error) {
	if entry.Quantity < 1 {
		return models.CartEntry{}, ErrInvalidQuantityChange
	}
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}

	query := `
		INSERT INTO cart_items (id, user_id, product_id, quantity, product_name, product_price, product_image_url, product_category)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (user_id, product_id)
		DO UPDATE SET quantity = EXCLUDED.quantity, updated_at = now()
		RETURNING ` + cartColumns
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	return scanCartEntry(r.db.QueryRowContext(ctx, query,
		entry.ID, entry.UserID, entry.ProductID, entry.Quantity,
		entry.Product.Name, entry.Product.Price, entry.Product.ImageURL, entry.Product.Category))
}

func (r *PostgresCartRepository) UpdateQuantity(ctx context.Context, userID, entryID string, quantity int) (models.CartEntry, error) {
	if quantity < 1 {
		return models.CartEntry{}, ErrInvalidQuantityChange
	}
	if _, err := uuid.Parse(entryID); err != nil {
		return models.CartEntry{}, ErrCartEntryNotFound
	}

	query := `
		UPDATE cart_items SET quantity = $1, updated_at = now()
		WHERE id = $2 AND user_id = $3
		RETURNING ` + cartColumns
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	e, err := scanCartEntry(r.db.QueryRowContext(ctx, query, quantity, entryID, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return models.CartEntry{}, ErrCartEntryNotFound
	}
	return e, err
}

func (r *PostgresCartRepository) Delete(ctx context.Context, userID, entryID string) error {
	if _, err := uuid.Parse(entryID); err != nil {
		return ErrCartEntryNotFound
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `DELETE FROM cart_items WHERE id = $1 AND user_id = $2`, entryID, userID)
	if err != nil {
		return err
	}
	rowsAffected, _ := res.RowsAffected()
	if rowsAffected == 0 {
		return ErrCartEntryNotFound
	}
	return nil
}

func (r *PostgresCartRepository) Clear(ctx context.Context, userID string) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	_, err := r.db.ExecContext(ctx, `DELETE FROM cart_items WHERE user_id = $1`, userID)
	return err
}
