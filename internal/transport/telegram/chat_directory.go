package telegram

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/sirupsen/logrus"

	"github.com/osama-agency/telesklad/internal/domain"
)

const (
	DefaultChatCacheTTL = 5 * time.Minute

	chatCacheSize = 16
)

// settingKeys ключи настроек, в которых хранятся id служебных чатов.
var settingKeys = map[domain.ChatRole]string{
	domain.ChatRoleAdmin:    "admin_chat_id",
	domain.ChatRoleCourier:  "courier_chat_id",
	domain.ChatRoleSupplier: "supplier_chat_id",
}

// ChatDirectory определяет id служебных чатов по роли. Значения читаются из настроек и кешируются на ttl,
// поэтому смена чата в настройках подхватывается без перезапуска.
type ChatDirectory struct {
	settings SettingReader
	cache    *expirable.LRU[domain.ChatRole, int64]
	l        *logrus.Entry
}

func NewChatDirectory(settings SettingReader, ttl time.Duration, l *logrus.Logger) *ChatDirectory {
	if ttl <= 0 {
		ttl = DefaultChatCacheTTL
	}
	return &ChatDirectory{
		settings: settings,
		cache:    expirable.NewLRU[domain.ChatRole, int64](chatCacheSize, nil, ttl),
		l: l.WithFields(logrus.Fields{
			"component": "telegram",
			"module":    "chat_directory",
		}),
	}
}

// ChatID возвращает id чата для роли. Если настройка не задана, возвращает ошибку, оборачивающую
// domain.ErrRecordNotFound.
func (d *ChatDirectory) ChatID(ctx context.Context, role domain.ChatRole) (int64, error) {
	if chatID, ok := d.cache.Get(role); ok {
		return chatID, nil
	}

	key, ok := settingKeys[role]
	if !ok {
		return 0, fmt.Errorf("chat role `%s`: %w", role, domain.ErrRecordNotFound)
	}

	value, err := d.settings.Get(ctx, key)
	if err != nil {
		return 0, fmt.Errorf("chat role `%s`: %w", role, err)
	}

	chatID, parseErr := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if parseErr != nil || chatID == 0 {
		d.l.WithField("key", key).WithField("value", value).Warn("invalid chat id in settings")
		return 0, fmt.Errorf("chat role `%s`: invalid value %q: %w", role, value, domain.ErrRecordNotFound)
	}

	d.cache.Add(role, chatID)
	return chatID, nil
}

// Invalidate сбрасывает кеш, следующий запрос перечитает настройки.
func (d *ChatDirectory) Invalidate() {
	d.cache.Purge()
}
