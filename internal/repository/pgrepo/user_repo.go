package pgrepo

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/osama-agency/telesklad/internal/domain"
	"github.com/osama-agency/telesklad/pkg/uow"
)

const userColumns = `id, created_at, updated_at, telegram_id, username, bonus_balance, tier_id, order_count`

type UserRepository struct {
	conn uow.DBTX
}

func NewUserRepository(conn uow.DBTX) *UserRepository {
	return &UserRepository{conn: conn}
}

func (r *UserRepository) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	user, err := scanUser(r.conn.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		return nil, convertErr(err, "finding user %d", id)
	}
	return user, nil
}

// FindByIDForUpdate блокирует строку пользователя, чтобы баланс и счетчики менялись последовательно.
func (r *UserRepository) FindByIDForUpdate(ctx context.Context, id int64) (*domain.User, error) {
	user, err := scanUser(r.conn.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		return nil, convertErr(err, "finding user %d for update", id)
	}
	return user, nil
}

// AdjustBonusBalance прибавляет delta к балансу. Если баланс ушел бы в минус, строка не обновляется и
// возвращается domain.ErrRecordNotFound.
func (r *UserRepository) AdjustBonusBalance(ctx context.Context, userID, delta int64) (int64, error) {
	var balance int64
	err := r.conn.QueryRow(ctx, `
		UPDATE users SET bonus_balance = bonus_balance + $2, updated_at = now()
		WHERE id = $1 AND bonus_balance + $2 >= 0
		RETURNING bonus_balance`,
		userID, delta,
	).Scan(&balance)
	if err != nil {
		return 0, convertErr(err, "adjusting bonus balance of user %d by %d", userID, delta)
	}
	return balance, nil
}

func (r *UserRepository) IncrementOrderCount(ctx context.Context, userID int64) (int64, error) {
	var count int64
	err := r.conn.QueryRow(ctx, `
		UPDATE users SET order_count = order_count + 1, updated_at = now()
		WHERE id = $1
		RETURNING order_count`,
		userID,
	).Scan(&count)
	if err != nil {
		return 0, convertErr(err, "incrementing order count of user %d", userID)
	}
	return count, nil
}

func (r *UserRepository) UpdateTier(ctx context.Context, userID, tierID int64) error {
	var id int64
	err := r.conn.QueryRow(ctx,
		`UPDATE users SET tier_id = $2, updated_at = now() WHERE id = $1 RETURNING id`,
		userID, tierID,
	).Scan(&id)
	return convertErr(err, "updating tier of user %d", userID)
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	if err := row.Scan(
		&u.ID,
		&u.CreatedAt,
		&u.UpdatedAt,
		&u.TelegramID,
		&u.Username,
		&u.BonusBalance,
		&u.TierID,
		&u.OrderCount,
	); err != nil {
		return nil, err //nolint:wrapcheck
	}
	return &u, nil
}
