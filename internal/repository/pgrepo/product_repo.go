package pgrepo

import (
	"context"
	"fmt"

	"github.com/osama-agency/telesklad/internal/domain"
	"github.com/osama-agency/telesklad/internal/repository/repoargs"
	"github.com/osama-agency/telesklad/pkg/uow"
)

// ProductRepository хранилище остатков. Каждое изменение счетчиков выполняется одним UPDATE с арифметикой на
// стороне базы, поэтому параллельные транзакции не теряют приращения.
type ProductRepository struct {
	conn uow.DBTX
}

func NewProductRepository(conn uow.DBTX) *ProductRepository {
	return &ProductRepository{conn: conn}
}

func (r *ProductRepository) FindByID(ctx context.Context, id int64) (*domain.Product, error) {
	var p domain.Product
	err := r.conn.QueryRow(ctx,
		`SELECT id, name, stock_quantity, in_transit_quantity FROM products WHERE id = $1`, id,
	).Scan(&p.ID, &p.Name, &p.StockQuantity, &p.InTransitQuantity)
	if err != nil {
		return nil, convertErr(err, "finding product %d", id)
	}
	return &p, nil
}

func (r *ProductRepository) ReserveToTransit(ctx context.Context, productID, qty int64) error {
	if qty < 0 {
		return convertErr(fmt.Errorf("%w: %d", errNegativeQuantity, qty), "reserving product %d", productID)
	}
	var id int64
	err := r.conn.QueryRow(ctx, `
		UPDATE products SET in_transit_quantity = in_transit_quantity + $2, updated_at = now()
		WHERE id = $1
		RETURNING id`,
		productID, qty,
	).Scan(&id)
	return convertErr(err, "reserving %d of product %d to transit", qty, productID)
}

// ReleaseFromTransit уменьшает транзит, не опуская его ниже нуля. Возвращает значение транзита до изменения,
// по нему вызывающая сторона определяет, сработало ли ограничение.
func (r *ProductRepository) ReleaseFromTransit(ctx context.Context, productID, qty int64) (int64, error) {
	if qty < 0 {
		return 0, convertErr(fmt.Errorf("%w: %d", errNegativeQuantity, qty), "releasing product %d", productID)
	}
	var previous int64
	err := r.conn.QueryRow(ctx, `
		WITH prev AS (
			SELECT id, in_transit_quantity FROM products WHERE id = $1 FOR UPDATE
		)
		UPDATE products p
		SET in_transit_quantity = GREATEST(p.in_transit_quantity - $2, 0), updated_at = now()
		FROM prev
		WHERE p.id = prev.id
		RETURNING prev.in_transit_quantity`,
		productID, qty,
	).Scan(&previous)
	if err != nil {
		return 0, convertErr(err, "releasing %d of product %d from transit", qty, productID)
	}
	return previous, nil
}

func (r *ProductRepository) CommitToStock(ctx context.Context, productID, qty int64) (*repoargs.StockChange, error) {
	if qty < 0 {
		return nil, convertErr(fmt.Errorf("%w: %d", errNegativeQuantity, qty), "committing product %d", productID)
	}
	change := repoargs.StockChange{ProductID: productID}
	err := r.conn.QueryRow(ctx, `
		UPDATE products SET stock_quantity = stock_quantity + $2, updated_at = now()
		WHERE id = $1
		RETURNING name, stock_quantity - $2, stock_quantity`,
		productID, qty,
	).Scan(&change.ProductName, &change.Before, &change.After)
	if err != nil {
		return nil, convertErr(err, "committing %d of product %d to stock", qty, productID)
	}
	return &change, nil
}
