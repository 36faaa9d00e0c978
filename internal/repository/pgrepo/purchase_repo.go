package pgrepo

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/osama-agency/telesklad/internal/domain"
	"github.com/osama-agency/telesklad/internal/repository/repoargs"
	"github.com/osama-agency/telesklad/pkg/uow"
)

const purchaseColumns = `id, created_at, updated_at, supplier_id, status::text, total_amount, urgent,
	message_chat_id, message_id, received_at, delivery_days, notes`

type PurchaseRepository struct {
	conn uow.DBTX
}

func NewPurchaseRepository(conn uow.DBTX) *PurchaseRepository {
	return &PurchaseRepository{conn: conn}
}

// FindByID возвращает закупку вместе с позициями.
func (r *PurchaseRepository) FindByID(ctx context.Context, id int64) (*domain.Purchase, error) {
	return r.find(ctx, `SELECT `+purchaseColumns+` FROM purchases WHERE id = $1`, id)
}

// FindByIDForUpdate как FindByID, но блокирует строку закупки до конца транзакции. Параллельные переходы одной
// закупки выполняются строго по очереди.
func (r *PurchaseRepository) FindByIDForUpdate(ctx context.Context, id int64) (*domain.Purchase, error) {
	return r.find(ctx, `SELECT `+purchaseColumns+` FROM purchases WHERE id = $1 FOR UPDATE`, id)
}

func (r *PurchaseRepository) find(ctx context.Context, query string, id int64) (*domain.Purchase, error) {
	purchase, err := scanPurchase(r.conn.QueryRow(ctx, query, id))
	if err != nil {
		return nil, convertErr(err, "finding purchase with id %d", id)
	}

	items, itemsErr := r.items(ctx, id)
	if itemsErr != nil {
		return nil, itemsErr
	}
	purchase.Items = items
	return purchase, nil
}

func (r *PurchaseRepository) items(ctx context.Context, purchaseID int64) ([]domain.PurchaseItem, error) {
	rows, err := r.conn.Query(ctx, `
		SELECT pi.id, pi.purchase_id, pi.product_id, p.name, pi.quantity, pi.received_quantity, pi.difference,
			pi.unit_cost_rub, pi.unit_cost_try
		FROM purchase_items pi
		JOIN products p ON p.id = pi.product_id
		WHERE pi.purchase_id = $1
		ORDER BY pi.id`, purchaseID)
	if err != nil {
		return nil, convertErr(err, "getting items of purchase %d", purchaseID)
	}
	defer rows.Close()

	var items []domain.PurchaseItem
	for rows.Next() {
		var item domain.PurchaseItem
		if scanErr := rows.Scan(
			&item.ID,
			&item.PurchaseID,
			&item.ProductID,
			&item.ProductName,
			&item.Quantity,
			&item.ReceivedQuantity,
			&item.Difference,
			&item.UnitCostRub,
			&item.UnitCostTry,
		); scanErr != nil {
			return nil, convertErr(scanErr, "scanning item of purchase %d", purchaseID)
		}
		items = append(items, item)
	}
	return items, convertErr(rows.Err(), "iterating items of purchase %d", purchaseID)
}

func (r *PurchaseRepository) UpdateStatus(ctx context.Context, id int64, status domain.PurchaseStatus) error {
	tag, err := r.conn.Exec(ctx,
		`UPDATE purchases SET status = $2::purchase_status, updated_at = now() WHERE id = $1`,
		id, string(status),
	)
	if err != nil {
		return convertErr(err, "updating status of purchase %d", id)
	}
	if tag.RowsAffected() == 0 {
		return convertErr(pgx.ErrNoRows, "updating status of purchase %d", id)
	}
	return nil
}

func (r *PurchaseRepository) SetMessageHandle(ctx context.Context, id int64, handle domain.MessageHandle) error {
	_, err := r.conn.Exec(ctx,
		`UPDATE purchases SET message_chat_id = $2, message_id = $3, updated_at = now() WHERE id = $1`,
		id, handle.ChatID, handle.MessageID,
	)
	return convertErr(err, "saving message handle of purchase %d", id)
}

func (r *PurchaseRepository) MarkReceived(ctx context.Context, args repoargs.MarkPurchaseReceived) error {
	_, err := r.conn.Exec(ctx, `
		UPDATE purchases
		SET received_at = $2, delivery_days = $3, notes = CASE WHEN $4::text = '' THEN notes ELSE $4::text END, updated_at = now()
		WHERE id = $1`,
		args.ID, args.ReceivedAt, args.DeliveryDays, args.Notes,
	)
	return convertErr(err, "marking purchase %d as received", args.ID)
}

// SaveItemReceipts батчем записывает фактически принятое количество по позициям. fn вызывается для каждой позиции
// с результатом её обновления.
func (r *PurchaseRepository) SaveItemReceipts(
	ctx context.Context,
	receipts []repoargs.PurchaseItemReceipt,
	fn repoargs.BatchExecQueryRow,
) {
	batch := new(pgx.Batch)
	for _, rc := range receipts {
		batch.Queue(
			`UPDATE purchase_items SET received_quantity = $2, difference = $3 WHERE id = $1`,
			rc.ItemID, rc.ReceivedQuantity, rc.Difference,
		)
	}

	br := r.conn.SendBatch(ctx, batch)
	defer br.Close()

	for i, rc := range receipts {
		tag, err := br.Exec()
		if err == nil && tag.RowsAffected() == 0 {
			err = pgx.ErrNoRows
		}
		fn(i, convertErr(err, "saving receipt of purchase item %d", rc.ItemID))
	}
}

// Delete физически удаляет закупку. Позиции удаляются каскадом.
func (r *PurchaseRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.conn.Exec(ctx, `DELETE FROM purchases WHERE id = $1`, id)
	if err != nil {
		return convertErr(err, "deleting purchase %d", id)
	}
	if tag.RowsAffected() == 0 {
		return convertErr(pgx.ErrNoRows, "deleting purchase %d", id)
	}
	return nil
}

func scanPurchase(row pgx.Row) (*domain.Purchase, error) {
	var (
		p         domain.Purchase
		status    string
		chatID    *int64
		messageID *int64
	)
	if err := row.Scan(
		&p.ID,
		&p.CreatedAt,
		&p.UpdatedAt,
		&p.SupplierID,
		&status,
		&p.TotalAmount,
		&p.Urgent,
		&chatID,
		&messageID,
		&p.ReceivedAt,
		&p.DeliveryDays,
		&p.Notes,
	); err != nil {
		return nil, err //nolint:wrapcheck
	}
	p.Status = domain.PurchaseStatus(status)
	if chatID != nil && messageID != nil {
		p.MessageHandle = &domain.MessageHandle{ChatID: *chatID, MessageID: *messageID}
	}
	return &p, nil
}
