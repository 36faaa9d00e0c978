package pgrepo

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/osama-agency/telesklad/internal/domain"
	"github.com/osama-agency/telesklad/internal/repository/repoargs"
	"github.com/osama-agency/telesklad/pkg/uow"
)

const orderColumns = `id, created_at, updated_at, user_id, status::text, total, delivery_fee, bonus_applied,
	paid_at, shipped_at`

type OrderRepository struct {
	conn uow.DBTX
}

func NewOrderRepository(conn uow.DBTX) *OrderRepository {
	return &OrderRepository{conn: conn}
}

// Create создает заказ в статусе unpaid вместе с позициями.
func (r *OrderRepository) Create(ctx context.Context, args repoargs.CreateOrder) (*domain.Order, error) {
	order, err := scanOrder(r.conn.QueryRow(ctx, `
		INSERT INTO orders (user_id, status, total, delivery_fee, bonus_applied)
		VALUES ($1, 'unpaid', $2, $3, $4)
		RETURNING `+orderColumns,
		args.UserID, args.Total, args.DeliveryFee, args.BonusApplied,
	))
	if err != nil {
		return nil, convertErr(err, "creating order for user %d", args.UserID)
	}

	if len(args.Items) == 0 {
		return order, nil
	}

	batch := new(pgx.Batch)
	for _, item := range args.Items {
		batch.Queue(`
			INSERT INTO order_items (order_id, product_id, quantity, price)
			VALUES ($1, $2, $3, $4)
			RETURNING id, order_id, product_id, quantity, price`,
			order.ID, item.ProductID, item.Quantity, item.Price,
		)
	}
	br := r.conn.SendBatch(ctx, batch)
	defer br.Close()

	order.Items = make([]domain.OrderItem, len(args.Items))
	for i := range args.Items {
		it := &order.Items[i]
		if scanErr := br.QueryRow().Scan(&it.ID, &it.OrderID, &it.ProductID, &it.Quantity, &it.Price); scanErr != nil {
			return nil, convertErr(scanErr, "creating item of order %d", order.ID)
		}
	}
	return order, nil
}

func (r *OrderRepository) FindByID(ctx context.Context, id int64) (*domain.Order, error) {
	return r.find(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
}

// FindByIDForUpdate блокирует строку заказа до конца транзакции.
func (r *OrderRepository) FindByIDForUpdate(ctx context.Context, id int64) (*domain.Order, error) {
	return r.find(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1 FOR UPDATE`, id)
}

func (r *OrderRepository) find(ctx context.Context, query string, id int64) (*domain.Order, error) {
	order, err := scanOrder(r.conn.QueryRow(ctx, query, id))
	if err != nil {
		return nil, convertErr(err, "finding order %d", id)
	}

	rows, qErr := r.conn.Query(ctx,
		`SELECT id, order_id, product_id, quantity, price FROM order_items WHERE order_id = $1 ORDER BY id`, id)
	if qErr != nil {
		return nil, convertErr(qErr, "getting items of order %d", id)
	}
	defer rows.Close()

	for rows.Next() {
		var it domain.OrderItem
		if scanErr := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.Quantity, &it.Price); scanErr != nil {
			return nil, convertErr(scanErr, "scanning item of order %d", id)
		}
		order.Items = append(order.Items, it)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, convertErr(rowsErr, "iterating items of order %d", id)
	}
	return order, nil
}

// UpdateStatus меняет статус заказа. Временные метки paid_at и shipped_at выставляются только если переданы и еще
// не заполнены.
func (r *OrderRepository) UpdateStatus(ctx context.Context, args repoargs.UpdateOrderStatus) (*domain.Order, error) {
	order, err := scanOrder(r.conn.QueryRow(ctx, `
		UPDATE orders
		SET status = $2::order_status,
			paid_at = COALESCE(paid_at, $3),
			shipped_at = COALESCE(shipped_at, $4),
			updated_at = now()
		WHERE id = $1
		RETURNING `+orderColumns,
		args.ID, string(args.Status), args.PaidAt, args.ShippedAt,
	))
	if err != nil {
		return nil, convertErr(err, "updating status of order %d", args.ID)
	}
	return order, nil
}

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var (
		o      domain.Order
		status string
	)
	if err := row.Scan(
		&o.ID,
		&o.CreatedAt,
		&o.UpdatedAt,
		&o.UserID,
		&status,
		&o.Total,
		&o.DeliveryFee,
		&o.BonusApplied,
		&o.PaidAt,
		&o.ShippedAt,
	); err != nil {
		return nil, err //nolint:wrapcheck
	}
	o.Status = domain.OrderStatus(status)
	return &o, nil
}
