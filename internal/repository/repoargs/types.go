package repoargs

type RepositoryName string

const (
	PurchaseRepoName     RepositoryName = "purchase"
	ProductRepoName      RepositoryName = "product"
	OrderRepoName        RepositoryName = "order"
	UserRepoName         RepositoryName = "user"
	BonusLogRepoName     RepositoryName = "bonus_log"
	JobRepoName          RepositoryName = "notification_job"
	ExpenseRepoName      RepositoryName = "expense"
	SettingRepoName      RepositoryName = "setting"
	SubscriptionRepoName RepositoryName = "product_subscription"
)

type BatchExecQueryRow func(i int, err error)
