package pgrepo

import (
	"context"

	"github.com/osama-agency/telesklad/pkg/uow"
)

// SettingRepository key-value настройки магазина (id служебных чатов и т.п.).
type SettingRepository struct {
	conn uow.DBTX
}

func NewSettingRepository(conn uow.DBTX) *SettingRepository {
	return &SettingRepository{conn: conn}
}

func (r *SettingRepository) Get(ctx context.Context, key string) (string, error) {
	var value string
	if err := r.conn.QueryRow(ctx, `SELECT value FROM settings WHERE key = $1`, key).Scan(&value); err != nil {
		return "", convertErr(err, "getting setting `%s`", key)
	}
	return value, nil
}
