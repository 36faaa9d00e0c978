package pgrepo

import (
	"context"

	"github.com/osama-agency/telesklad/pkg/uow"
)

// SubscriptionRepository подписки покупателей на поступление товара.
type SubscriptionRepository struct {
	conn uow.DBTX
}

func NewSubscriptionRepository(conn uow.DBTX) *SubscriptionRepository {
	return &SubscriptionRepository{conn: conn}
}

// SubscriberIDs возвращает id пользователей, ожидающих поступления товара.
func (r *SubscriptionRepository) SubscriberIDs(ctx context.Context, productID int64) ([]int64, error) {
	rows, err := r.conn.Query(ctx,
		`SELECT user_id FROM product_subscriptions WHERE product_id = $1 ORDER BY created_at`, productID)
	if err != nil {
		return nil, convertErr(err, "getting subscribers of product %d", productID)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if scanErr := rows.Scan(&id); scanErr != nil {
			return nil, convertErr(scanErr, "scanning subscriber of product %d", productID)
		}
		ids = append(ids, id)
	}
	return ids, convertErr(rows.Err(), "iterating subscribers of product %d", productID)
}
