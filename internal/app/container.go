package app

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/osama-agency/telesklad/internal/config"
	"github.com/osama-agency/telesklad/internal/domain"
	"github.com/osama-agency/telesklad/internal/metrics"
	"github.com/osama-agency/telesklad/internal/repository/pgrepo"
	"github.com/osama-agency/telesklad/internal/repository/repoargs"
	"github.com/osama-agency/telesklad/internal/service"
	"github.com/osama-agency/telesklad/internal/transport/jobrunner"
	"github.com/osama-agency/telesklad/internal/transport/telegram"
	"github.com/osama-agency/telesklad/pkg/uow"
)

// Container собранные зависимости приложения. Используется сервером и консольными утилитами.
type Container struct {
	Conn      *pgxpool.Pool
	UOW       *uow.UnitOfWork
	Services  *service.AppServices
	Messenger *telegram.Client
	Chats     *telegram.ChatDirectory
	Metrics   *metrics.Metrics
	Runner    *jobrunner.Runner
}

// Build подключается к базе, применяет миграции и собирает сервисы и исполнитель задач.
func Build(ctx context.Context, conf *config.Config, l *logrus.Logger) (*Container, error) {
	program, programErr := config.LoadLoyaltyProgram(conf.LoyaltyConfig)
	if programErr != nil {
		return nil, fmt.Errorf("build: %w", programErr)
	}

	conn, connErr := pgrepo.Connect(ctx, conf.MigrationsDir, conf.DatabaseDSN, l)
	if connErr != nil {
		return nil, fmt.Errorf("build: %w", connErr)
	}

	c, err := build(conn, conf, program, l)
	if err != nil {
		conn.Close()
		return nil, err
	}
	return c, nil
}

func build(
	conn *pgxpool.Pool,
	conf *config.Config,
	program domain.LoyaltyProgram,
	l *logrus.Logger,
) (*Container, error) {
	unitOfWork := uow.NewUnitOfWork(conn)
	if err := pgrepo.RegisterRepositories(unitOfWork); err != nil {
		return nil, fmt.Errorf("build: %w", err)
	}

	settings, settingsErr := uow.GetRepositoryAs[telegram.SettingReader](
		unitOfWork,
		uow.RepositoryName(repoargs.SettingRepoName),
	)
	if settingsErr != nil {
		return nil, fmt.Errorf("build: %w", settingsErr)
	}

	messenger := telegram.New(telegram.Config{
		BaseURL: conf.TelegramAPIURL,
		Token:   conf.TelegramBotToken,
	})
	chats := telegram.NewChatDirectory(settings, conf.ChatCacheTTL, l)
	m := metrics.New(nil)

	services, sErr := service.Factory(service.FactoryArgs{
		UOW:                  unitOfWork,
		Messenger:            messenger,
		Chats:                chats,
		Loyalty:              program,
		Metrics:              m,
		Logger:               l,
		PaymentReminderDelay: conf.PaymentReminderDelay,
	})
	if sErr != nil {
		return nil, fmt.Errorf("build: %w", sErr)
	}

	runner := jobrunner.New(services.NotificationService, l).
		SetBatchSize(conf.JobBatchSize).
		SetWorkers(conf.JobWorkers).
		SetPollInterval(conf.JobPollInterval).
		SetMaxAttempts(conf.JobMaxAttempts).
		SetBackoff(conf.JobBackoff).
		SetClaimLease(conf.JobClaimLease).
		SetMetrics(m)
	jobrunner.NewMessageDeliverer(services.OrderService, messenger, l).RegisterAll(runner)

	return &Container{
		Conn:      conn,
		UOW:       unitOfWork,
		Services:  services,
		Messenger: messenger,
		Chats:     chats,
		Metrics:   m,
		Runner:    runner,
	}, nil
}

func (c *Container) Close() {
	if c.Conn != nil {
		c.Conn.Close()
	}
}
