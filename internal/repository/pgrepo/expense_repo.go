package pgrepo

import (
	"context"

	"github.com/osama-agency/telesklad/internal/domain"
	"github.com/osama-agency/telesklad/internal/repository/repoargs"
	"github.com/osama-agency/telesklad/pkg/uow"
)

type ExpenseRepository struct {
	conn uow.DBTX
}

func NewExpenseRepository(conn uow.DBTX) *ExpenseRepository {
	return &ExpenseRepository{conn: conn}
}

func (r *ExpenseRepository) Create(ctx context.Context, args repoargs.CreateExpense) (*domain.Expense, error) {
	var e domain.Expense
	err := r.conn.QueryRow(ctx, `
		INSERT INTO expenses (purchase_id, category, amount, description)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, purchase_id, category, amount, description`,
		args.PurchaseID, args.Category, args.Amount, args.Description,
	).Scan(&e.ID, &e.CreatedAt, &e.PurchaseID, &e.Category, &e.Amount, &e.Description)
	if err != nil {
		return nil, convertErr(err, "creating %s expense", args.Category)
	}
	return &e, nil
}
