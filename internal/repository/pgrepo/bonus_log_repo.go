package pgrepo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/osama-agency/telesklad/internal/domain"
	"github.com/osama-agency/telesklad/internal/repository/repoargs"
	"github.com/osama-agency/telesklad/pkg/uow"
)

type BonusLogRepository struct {
	conn uow.DBTX
}

func NewBonusLogRepository(conn uow.DBTX) *BonusLogRepository {
	return &BonusLogRepository{conn: conn}
}

// Create добавляет запись в журнал бонусов. Повтор записи с тем же источником и причиной не прерывает
// транзакцию: вставка пропускается и возвращается domain.ErrDuplicateKey.
func (r *BonusLogRepository) Create(ctx context.Context, args repoargs.CreateBonusLog) (*domain.BonusLogEntry, error) {
	var e domain.BonusLogEntry
	err := r.conn.QueryRow(ctx, `
		INSERT INTO bonus_log_entries (user_id, amount, reason, source_type, source_id)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (source_type, source_id, reason) DO NOTHING
		RETURNING id, created_at, user_id, amount, reason, source_type, source_id`,
		args.UserID, args.Amount, args.Reason, args.SourceType, args.SourceID,
	).Scan(&e.ID, &e.CreatedAt, &e.UserID, &e.Amount, &e.Reason, &e.SourceType, &e.SourceID)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, convertErr(
			&duplicateRowError{},
			"creating bonus log entry %s/%d/%s", args.SourceType, args.SourceID, args.Reason,
		)
	}
	if err != nil {
		return nil, convertErr(err, "creating bonus log entry for user %d", args.UserID)
	}
	return &e, nil
}
