package pgrepo

import (
	"fmt"

	"github.com/osama-agency/telesklad/internal/repository/repoargs"
	"github.com/osama-agency/telesklad/pkg/uow"
)

// RegisterRepositories регистрирует в unit of work фабрики всех postgres репозиториев.
func RegisterRepositories(u uow.UOW) error {
	factories := map[repoargs.RepositoryName]uow.RepositoryFactory{
		repoargs.PurchaseRepoName: func(dbtx uow.DBTX) uow.Repository {
			return NewPurchaseRepository(dbtx)
		},
		repoargs.ProductRepoName: func(dbtx uow.DBTX) uow.Repository {
			return NewProductRepository(dbtx)
		},
		repoargs.OrderRepoName: func(dbtx uow.DBTX) uow.Repository {
			return NewOrderRepository(dbtx)
		},
		repoargs.UserRepoName: func(dbtx uow.DBTX) uow.Repository {
			return NewUserRepository(dbtx)
		},
		repoargs.BonusLogRepoName: func(dbtx uow.DBTX) uow.Repository {
			return NewBonusLogRepository(dbtx)
		},
		repoargs.JobRepoName: func(dbtx uow.DBTX) uow.Repository {
			return NewJobRepository(dbtx)
		},
		repoargs.ExpenseRepoName: func(dbtx uow.DBTX) uow.Repository {
			return NewExpenseRepository(dbtx)
		},
		repoargs.SettingRepoName: func(dbtx uow.DBTX) uow.Repository {
			return NewSettingRepository(dbtx)
		},
		repoargs.SubscriptionRepoName: func(dbtx uow.DBTX) uow.Repository {
			return NewSubscriptionRepository(dbtx)
		},
	}

	for name, factory := range factories {
		if err := u.Register(uow.RepositoryName(name), factory); err != nil {
			return fmt.Errorf("register repository `%s`: %w", name, err)
		}
	}
	return nil
}
