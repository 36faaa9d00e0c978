package telegram

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

import "context"

// SettingReader источник настроек магазина.
type SettingReader interface {
	Get(ctx context.Context, key string) (string, error)
}
