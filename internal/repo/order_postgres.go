package repo

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/aayushirajput1602/Shop-Mart-Cart-sub000/internal/models"
)

type PostgresOrderRepository struct {
	db *sql.DB
}

func NewPostgresOrderRepository(db *sql.DB) *PostgresOrderRepository {
	return &PostgresOrderRepository{db: db}
}

func (r *PostgresOrderRepository) Create(ctx context.Context, o models.Order) (models.Order, error) {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	if o.Status == "" {
		o.Status = models.OrderStatusPlaced
	}

	items, err := json.Marshal(o.Items)
	if err != nil {
		return models.Order{}, fmt.Errorf("encode order items: %w", err)
	}

	query := `
		INSERT INTO orders (id, user_id, items, total, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at`
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	if err := r.db.QueryRowContext(ctx, query, o.ID, o.UserID, string(items), o.Total, string(o.Status)).Scan(&o.CreatedAt); err != nil {
		return models.Order{}, fmt.Errorf("failed to insert order: %w", err)
	}
	return o, nil
}

func (r *PostgresOrderRepository) GetByUser(ctx context.Context, userID string) ([]models.Order, error) {
	query := `SELECT id, user_id, items, total, status, created_at FROM orders WHERE user_id = $1 ORDER BY created_at DESC`
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := []models.Order{}
	for rows.Next() {
		var (
			o     models.Order
			items []byte
		)
		if err := rows.Scan(&o.ID, &o.UserID, &items, &o.Total, &o.Status, &o.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(items, &o.Items); err != nil {
			return nil, fmt.Errorf("decode order items: %w", err)
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}
