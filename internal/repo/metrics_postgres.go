package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

type PostgresMetricsRepository struct {
	db *sql.DB
}

func NewPostgresMetricsRepository(db *sql.DB) *PostgresMetricsRepository {
	return &PostgresMetricsRepository{db: db}
}

func (r *PostgresMetricsRepository) GetDashboardMetrics(ctx context.Context) (Metrics, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var m Metrics

	err := r.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE inventory_count < threshold),
			COUNT(*) FILTER (WHERE inventory_count = 0)
		FROM products
	`).Scan(&m.TotalProducts, &m.LowStockCount, &m.OutOfStockCount)
	if err != nil {
		return m, fmt.Errorf("product metrics: %w", err)
	}

	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM movements`).Scan(&m.TotalMovements); err != nil {
		return m, fmt.Errorf("movement metrics: %w", err)
	}

	err = r.db.QueryRowContext(ctx, `SELECT COUNT(DISTINCT user_id), COALESCE(SUM(quantity), 0) FROM cart_items`).
		Scan(&m.ActiveCarts, &m.UnitsInCarts)
	if err != nil {
		return m, fmt.Errorf("cart metrics: %w", err)
	}

	err = r.db.QueryRowContext(ctx, `
		SELECT p.name, COUNT(*) AS cnt
		FROM movements m
		JOIN products p ON m.product_id = p.id
		GROUP BY p.name
		ORDER BY cnt DESC
		LIMIT 1
	`).Scan(&m.MostMovedProduct.Name, &m.MostMovedProduct.MovementCount)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return m, fmt.Errorf("most moved product: %w", err)
	}

	return m, nil
}
