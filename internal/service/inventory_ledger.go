package service

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/osama-agency/telesklad/internal/repository/repoargs"
	"github.com/osama-agency/telesklad/pkg/uow"
)

// InventoryLedger учет остатков и товара в пути. Все операции выполняются в транзакции вызывающего и меняют
// счетчики одним атомарным UPDATE. Вызывается только машиной состояний закупок.
type InventoryLedger struct {
	l *logrus.Entry
}

func NewInventoryLedger(l *logrus.Logger) *InventoryLedger {
	return &InventoryLedger{
		l: l.WithFields(logrus.Fields{
			"component": "service",
			"module":    "inventory_ledger",
		}),
	}
}

// ReserveToTransit in_transit += qty.
func (il *InventoryLedger) ReserveToTransit(ctx context.Context, tx uow.TX, productID, qty int64) error {
	repo, err := txRepo[ProductRepository](tx, repoargs.ProductRepoName)
	if err != nil {
		return err
	}
	if reserveErr := repo.ReserveToTransit(ctx, productID, qty); reserveErr != nil {
		return fmt.Errorf("reserve to transit: %w", reserveErr)
	}
	return nil
}

// ReleaseFromTransit in_transit -= qty с ограничением снизу нулем. Срабатывание ограничения означает
// рассинхронизацию учета и логируется как предупреждение.
func (il *InventoryLedger) ReleaseFromTransit(ctx context.Context, tx uow.TX, productID, qty int64) error {
	repo, err := txRepo[ProductRepository](tx, repoargs.ProductRepoName)
	if err != nil {
		return err
	}
	previous, releaseErr := repo.ReleaseFromTransit(ctx, productID, qty)
	if releaseErr != nil {
		return fmt.Errorf("release from transit: %w", releaseErr)
	}
	if previous < qty {
		il.l.WithFields(logrus.Fields{
			"productID": productID,
			"inTransit": previous,
			"release":   qty,
		}).Warn("transit quantity clamped at zero")
	}
	return nil
}

// CommitToStock stock += qty. Возвращает остаток до и после.
func (il *InventoryLedger) CommitToStock(
	ctx context.Context,
	tx uow.TX,
	productID, qty int64,
) (*repoargs.StockChange, error) {
	repo, err := txRepo[ProductRepository](tx, repoargs.ProductRepoName)
	if err != nil {
		return nil, err
	}
	change, commitErr := repo.CommitToStock(ctx, productID, qty)
	if commitErr != nil {
		return nil, fmt.Errorf("commit to stock: %w", commitErr)
	}
	return change, nil
}
