package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/aayushirajput1602/Shop-Mart-Cart-sub000/internal/models"
)

type PostgresMovementRepository struct {
	db *sql.DB
}

func NewPostgresMovementRepository(db *sql.DB) *PostgresMovementRepository {
	return &PostgresMovementRepository{db: db}
}

// Log records one applied inventory change.
func (r *PostgresMovementRepository) Log(ctx context.Context, productID, delta int, reason string) (models.Movement, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	m := models.Movement{ProductID: productID, Delta: delta, Reason: reason}
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO movements (product_id, delta, reason) VALUES ($1, $2, $3) RETURNING id, created_at`,
		productID, delta, reason,
	).Scan(&m.ID, &m.CreatedAt)
	if err != nil {
		return models.Movement{}, fmt.Errorf("failed to insert movement: %w", err)
	}
	return m, nil
}

// GetByProductID pages a product's movements, newest first, together with the
// number of rows matching the filter.
func (r *PostgresMovementRepository) GetByProductID(ctx context.Context, productID int, mf MovementFilter) ([]models.Movement, int, error) {
	if mf.Offset != nil && *mf.Offset < 0 {
		return nil, 0, errors.New("offset must be non-negative")
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	query, args := movementQuery(productID, mf)
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query movements: %w", err)
	}
	defer rows.Close()

	movements := []models.Movement{}
	total := 0
	for rows.Next() {
		var m models.Movement
		if err := rows.Scan(&m.ID, &m.ProductID, &m.Delta, &m.Reason, &m.CreatedAt, &total); err != nil {
			return nil, 0, fmt.Errorf("failed to scan movement: %w", err)
		}
		movements = append(movements, m)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	// A page past the end returns no rows and so no window count.
	if len(movements) == 0 && mf.Offset != nil && *mf.Offset > 0 {
		if total, err = r.count(ctx, productID, mf); err != nil {
			return nil, 0, err
		}
	}
	return movements, total, nil
}

func (r *PostgresMovementRepository) count(ctx context.Context, productID int, mf MovementFilter) (int, error) {
	where, args := movementWhere(productID, mf)
	var total int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM movements "+where, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to count movements: %w", err)
	}
	return total, nil
}

func movementWhere(productID int, mf MovementFilter) (string, []any) {
	conds := []string{"product_id = $1"}
	args := []any{productID}

	if mf.Since != nil {
		args = append(args, *mf.Since)
		conds = append(conds, "created_at >= $"+strconv.Itoa(len(args)))
	}
	if mf.Until != nil {
		args = append(args, *mf.Until)
		conds = append(conds, "created_at <= $"+strconv.Itoa(len(args)))
	}
	return "WHERE " + strings.Join(conds, " AND "), args
}

func movementQuery(productID int, mf MovementFilter) (string, []any) {
	where, args := movementWhere(productID, mf)

	var b strings.Builder
	b.WriteString("SELECT id, product_id, delta, reason, created_at, COUNT(*) OVER () FROM movements ")
	b.WriteString(where)
	b.WriteString(" ORDER BY created_at DESC, id DESC")

	if limit := mf.pageLimit(); limit > 0 {
		args = append(args, limit)
		b.WriteString(" LIMIT $" + strconv.Itoa(len(args)))
	}
	if mf.Offset != nil && *mf.Offset > 0 {
		args = append(args, *mf.Offset)
		b.WriteString(" OFFSET $" + strconv.Itoa(len(args)))
	}
	return b.String(), args
}
