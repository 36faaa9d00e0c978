package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/osama-agency/telesklad/internal/domain"
	"github.com/osama-agency/telesklad/internal/logger"
	"github.com/osama-agency/telesklad/internal/repository/repoargs"
	"github.com/osama-agency/telesklad/pkg/uow"
)

// memData состояние хранилища, которое откатывается вместе с транзакцией.
type memData struct {
	nextID      int64
	purchases   map[int64]domain.Purchase
	products    map[int64]domain.Product
	orders      map[int64]domain.Order
	users       map[int64]domain.User
	bonusLog    []domain.BonusLogEntry
	jobs        map[int64]domain.NotificationJob
	expenses    []domain.Expense
	subscribers map[int64][]int64
}

func (d *memData) clone() memData {
	c := memData{
		nextID:      d.nextID,
		purchases:   make(map[int64]domain.Purchase, len(d.purchases)),
		products:    make(map[int64]domain.Product, len(d.products)),
		orders:      make(map[int64]domain.Order, len(d.orders)),
		users:       make(map[int64]domain.User, len(d.users)),
		bonusLog:    append([]domain.BonusLogEntry(nil), d.bonusLog...),
		jobs:        make(map[int64]domain.NotificationJob, len(d.jobs)),
		expenses:    append([]domain.Expense(nil), d.expenses...),
		subscribers: make(map[int64][]int64, len(d.subscribers)),
	}
	for k, v := range d.purchases {
		v.Items = append([]domain.PurchaseItem(nil), v.Items...)
		c.purchases[k] = v
	}
	for k, v := range d.products {
		c.products[k] = v
	}
	for k, v := range d.orders {
		v.Items = append([]domain.OrderItem(nil), v.Items...)
		c.orders[k] = v
	}
	for k, v := range d.users {
		c.users[k] = v
	}
	for k, v := range d.jobs {
		c.jobs[k] = v
	}
	for k, v := range d.subscribers {
		c.subscribers[k] = append([]int64(nil), v...)
	}
	return c
}

// memStore хранилище в памяти, повторяющее поведение pgrepo на уровне интерфейсов репозиториев.
type memStore struct {
	data memData
	// fail ошибки, которые вернут операции с указанным ключом.
	fail map[string]error
}

func newMemStore() *memStore {
	return &memStore{
		data: memData{
			nextID:      100,
			purchases:   make(map[int64]domain.Purchase),
			products:    make(map[int64]domain.Product),
			orders:      make(map[int64]domain.Order),
			users:       make(map[int64]domain.User),
			jobs:        make(map[int64]domain.NotificationJob),
			subscribers: make(map[int64][]int64),
		},
		fail: make(map[string]error),
	}
}

func (s *memStore) id() int64 {
	s.data.nextID++
	return s.data.nextID
}

func (s *memStore) failure(op string) error {
	return s.fail[op]
}

func (s *memStore) addProduct(p domain.Product) {
	s.data.products[p.ID] = p
}

func (s *memStore) product(id int64) domain.Product {
	return s.data.products[id]
}

func (s *memStore) addUser(u domain.User) {
	s.data.users[u.ID] = u
}

func (s *memStore) user(id int64) domain.User {
	return s.data.users[id]
}

func (s *memStore) addPurchase(p domain.Purchase) {
	for i := range p.Items {
		p.Items[i].PurchaseID = p.ID
		p.Items[i].ProductName = s.data.products[p.Items[i].ProductID].Name
	}
	s.data.purchases[p.ID] = p
}

func (s *memStore) purchase(id int64) (domain.Purchase, bool) {
	p, ok := s.data.purchases[id]
	return p, ok
}

func (s *memStore) addOrder(o domain.Order) {
	s.data.orders[o.ID] = o
}

func (s *memStore) order(id int64) domain.Order {
	return s.data.orders[id]
}

// jobsBy задачи указанного типа и статуса, упорядоченные по id.
func (s *memStore) jobsBy(jobType domain.JobType, status domain.JobStatus) []domain.NotificationJob {
	var res []domain.NotificationJob
	for _, j := range s.data.jobs {
		if j.Type == jobType && j.Status == status {
			res = append(res, j)
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ID < res[j].ID })
	return res
}

// memUOW unit of work поверх memStore: ошибка fn восстанавливает снимок состояния.
type memUOW struct {
	s     *memStore
	repos map[uow.RepositoryName]uow.Repository
}

func newMemUOW(s *memStore) *memUOW {
	return &memUOW{
		s: s,
		repos: map[uow.RepositoryName]uow.Repository{
			uow.RepositoryName(repoargs.PurchaseRepoName):     &memPurchaseRepo{s},
			uow.RepositoryName(repoargs.ProductRepoName):      &memProductRepo{s},
			uow.RepositoryName(repoargs.OrderRepoName):        &memOrderRepo{s},
			uow.RepositoryName(repoargs.UserRepoName):         &memUserRepo{s},
			uow.RepositoryName(repoargs.BonusLogRepoName):     &memBonusLogRepo{s},
			uow.RepositoryName(repoargs.JobRepoName):          &memJobRepo{s},
			uow.RepositoryName(repoargs.ExpenseRepoName):      &memExpenseRepo{s},
			uow.RepositoryName(repoargs.SubscriptionRepoName): &memSubscriptionRepo{s},
		},
	}
}

func (u *memUOW) Register(uow.RepositoryName, uow.RepositoryFactory) error {
	return nil
}

func (u *memUOW) Do(ctx context.Context, fn func(context.Context, uow.TX) error) error {
	return (&memTX{u: u}).run(ctx, fn)
}

func (u *memUOW) GetRepository(name uow.RepositoryName) (uow.Repository, error) {
	repo, ok := u.repos[name]
	if !ok {
		return nil, uow.ErrRepositoryNotRegistered
	}
	return repo, nil
}

type memTX struct {
	u *memUOW
}

func (t *memTX) Get(name uow.RepositoryName) (uow.Repository, error) {
	return t.u.GetRepository(name)
}

func (t *memTX) Nested(ctx context.Context, fn func(context.Context, uow.TX) error) error {
	return t.run(ctx, fn)
}

func (t *memTX) run(ctx context.Context, fn func(context.Context, uow.TX) error) error {
	snapshot := t.u.s.data.clone()
	if err := fn(ctx, t); err != nil {
		t.u.s.data = snapshot
		return err
	}
	return nil
}

type memPurchaseRepo struct{ s *memStore }

func (r *memPurchaseRepo) FindByID(_ context.Context, id int64) (*domain.Purchase, error) {
	p, ok := r.s.data.purchases[id]
	if !ok {
		return nil, domain.ErrRecordNotFound
	}
	p.Items = append([]domain.PurchaseItem(nil), p.Items...)
	return &p, nil
}

func (r *memPurchaseRepo) FindByIDForUpdate(ctx context.Context, id int64) (*domain.Purchase, error) {
	return r.FindByID(ctx, id)
}

func (r *memPurchaseRepo) UpdateStatus(_ context.Context, id int64, status domain.PurchaseStatus) error {
	p, ok := r.s.data.purchases[id]
	if !ok {
		return domain.ErrRecordNotFound
	}
	p.Status = status
	r.s.data.purchases[id] = p
	return nil
}

func (r *memPurchaseRepo) SetMessageHandle(_ context.Context, id int64, handle domain.MessageHandle) error {
	p, ok := r.s.data.purchases[id]
	if !ok {
		return domain.ErrRecordNotFound
	}
	p.MessageHandle = &handle
	r.s.data.purchases[id] = p
	return nil
}

func (r *memPurchaseRepo) MarkReceived(_ context.Context, args repoargs.MarkPurchaseReceived) error {
	p, ok := r.s.data.purchases[args.ID]
	if !ok {
		return domain.ErrRecordNotFound
	}
	receivedAt, days := args.ReceivedAt, args.DeliveryDays
	p.ReceivedAt = &receivedAt
	p.DeliveryDays = &days
	p.Notes = args.Notes
	r.s.data.purchases[args.ID] = p
	return nil
}

func (r *memPurchaseRepo) SaveItemReceipts(
	_ context.Context,
	receipts []repoargs.PurchaseItemReceipt,
	fn repoargs.BatchExecQueryRow,
) {
	for i, receipt := range receipts {
		fn(i, r.saveReceipt(receipt))
	}
}

func (r *memPurchaseRepo) saveReceipt(receipt repoargs.PurchaseItemReceipt) error {
	for id, p := range r.s.data.purchases {
		for j, item := range p.Items {
			if item.ID != receipt.ItemID {
				continue
			}
			received, diff := receipt.ReceivedQuantity, receipt.Difference
			p.Items[j].ReceivedQuantity = &received
			p.Items[j].Difference = &diff
			r.s.data.purchases[id] = p
			return nil
		}
	}
	return domain.ErrRecordNotFound
}

func (r *memPurchaseRepo) Delete(_ context.Context, id int64) error {
	if _, ok := r.s.data.purchases[id]; !ok {
		return domain.ErrRecordNotFound
	}
	delete(r.s.data.purchases, id)
	return nil
}

type memProductRepo struct{ s *memStore }

func (r *memProductRepo) FindByID(_ context.Context, id int64) (*domain.Product, error) {
	p, ok := r.s.data.products[id]
	if !ok {
		return nil, domain.ErrRecordNotFound
	}
	return &p, nil
}

func (r *memProductRepo) ReserveToTransit(_ context.Context, productID, qty int64) error {
	p, ok := r.s.data.products[productID]
	if !ok {
		return domain.ErrRecordNotFound
	}
	p.InTransitQuantity += qty
	r.s.data.products[productID] = p
	return nil
}

func (r *memProductRepo) ReleaseFromTransit(_ context.Context, productID, qty int64) (int64, error) {
	p, ok := r.s.data.products[productID]
	if !ok {
		return 0, domain.ErrRecordNotFound
	}
	previous := p.InTransitQuantity
	p.InTransitQuantity = max(previous-qty, 0)
	r.s.data.products[productID] = p
	return previous, nil
}

func (r *memProductRepo) CommitToStock(_ context.Context, productID, qty int64) (*repoargs.StockChange, error) {
	if err := r.s.failure("commit_stock"); err != nil {
		return nil, err
	}
	p, ok := r.s.data.products[productID]
	if !ok {
		return nil, domain.ErrRecordNotFound
	}
	before := p.StockQuantity
	p.StockQuantity += qty
	r.s.data.products[productID] = p
	return &repoargs.StockChange{
		ProductID:   productID,
		ProductName: p.Name,
		Before:      before,
		After:       p.StockQuantity,
	}, nil
}

type memOrderRepo struct{ s *memStore }

func (r *memOrderRepo) Create(_ context.Context, args repoargs.CreateOrder) (*domain.Order, error) {
	if _, ok := r.s.data.users[args.UserID]; !ok {
		return nil, domain.ErrRecordNotFound
	}
	o := domain.Order{
		ID:           r.s.id(),
		CreatedAt:    time.Now(),
		UserID:       args.UserID,
		Status:       domain.OrderStatusUnpaid,
		Total:        args.Total,
		DeliveryFee:  args.DeliveryFee,
		BonusApplied: args.BonusApplied,
	}
	for _, item := range args.Items {
		o.Items = append(o.Items, domain.OrderItem{
			ID:        r.s.id(),
			OrderID:   o.ID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     item.Price,
		})
	}
	r.s.data.orders[o.ID] = o
	res := o
	return &res, nil
}

func (r *memOrderRepo) FindByID(_ context.Context, id int64) (*domain.Order, error) {
	o, ok := r.s.data.orders[id]
	if !ok {
		return nil, domain.ErrRecordNotFound
	}
	o.Items = append([]domain.OrderItem(nil), o.Items...)
	return &o, nil
}

func (r *memOrderRepo) FindByIDForUpdate(ctx context.Context, id int64) (*domain.Order, error) {
	return r.FindByID(ctx, id)
}

func (r *memOrderRepo) UpdateStatus(_ context.Context, args repoargs.UpdateOrderStatus) (*domain.Order, error) {
	o, ok := r.s.data.orders[args.ID]
	if !ok {
		return nil, domain.ErrRecordNotFound
	}
	o.Status = args.Status
	if args.PaidAt != nil {
		o.PaidAt = args.PaidAt
	}
	if args.ShippedAt != nil {
		o.ShippedAt = args.ShippedAt
	}
	r.s.data.orders[args.ID] = o
	res := o
	res.Items = nil
	return &res, nil
}

type memUserRepo struct{ s *memStore }

func (r *memUserRepo) FindByID(_ context.Context, id int64) (*domain.User, error) {
	u, ok := r.s.data.users[id]
	if !ok {
		return nil, domain.ErrRecordNotFound
	}
	return &u, nil
}

func (r *memUserRepo) FindByIDForUpdate(ctx context.Context, id int64) (*domain.User, error) {
	return r.FindByID(ctx, id)
}

func (r *memUserRepo) AdjustBonusBalance(_ context.Context, userID, delta int64) (int64, error) {
	u, ok := r.s.data.users[userID]
	if !ok || u.BonusBalance+delta < 0 {
		return 0, domain.ErrRecordNotFound
	}
	u.BonusBalance += delta
	r.s.data.users[userID] = u
	return u.BonusBalance, nil
}

func (r *memUserRepo) IncrementOrderCount(_ context.Context, userID int64) (int64, error) {
	if err := r.s.failure("increment_order_count"); err != nil {
		return 0, err
	}
	u, ok := r.s.data.users[userID]
	if !ok {
		return 0, domain.ErrRecordNotFound
	}
	u.OrderCount++
	r.s.data.users[userID] = u
	return u.OrderCount, nil
}

func (r *memUserRepo) UpdateTier(_ context.Context, userID, tierID int64) error {
	u, ok := r.s.data.users[userID]
	if !ok {
		return domain.ErrRecordNotFound
	}
	u.TierID = tierID
	r.s.data.users[userID] = u
	return nil
}

type memBonusLogRepo struct{ s *memStore }

func (r *memBonusLogRepo) Create(_ context.Context, args repoargs.CreateBonusLog) (*domain.BonusLogEntry, error) {
	for _, e := range r.s.data.bonusLog {
		if e.SourceType == args.SourceType && e.SourceID == args.SourceID && e.Reason == args.Reason {
			return nil, domain.ErrDuplicateKey
		}
	}
	e := domain.BonusLogEntry{
		ID:         r.s.id(),
		CreatedAt:  time.Now(),
		UserID:     args.UserID,
		Amount:     args.Amount,
		Reason:     args.Reason,
		SourceType: args.SourceType,
		SourceID:   args.SourceID,
	}
	r.s.data.bonusLog = append(r.s.data.bonusLog, e)
	return &e, nil
}

type memJobRepo struct{ s *memStore }

func (r *memJobRepo) Create(_ context.Context, args repoargs.CreateJob) (*domain.NotificationJob, error) {
	if err := r.s.failure("create_job"); err != nil {
		return nil, err
	}
	// частичный уникальный индекс notification_jobs_pending_reminder_uidx.
	if args.Type.IsReminder() {
		for _, existing := range r.s.data.jobs {
			if existing.Type == args.Type && existing.TargetID == args.TargetID &&
				existing.Status == domain.JobStatusPending {
				return nil, fmt.Errorf("%s job for target %d: %w", args.Type, args.TargetID, domain.ErrDuplicateKey)
			}
		}
	}
	j := domain.NotificationJob{
		ID:          r.s.id(),
		CreatedAt:   time.Now(),
		Type:        args.Type,
		TargetID:    args.TargetID,
		UserID:      args.UserID,
		ScheduledAt: args.ScheduledAt,
		Payload:     args.Payload,
		Status:      domain.JobStatusPending,
	}
	r.s.data.jobs[j.ID] = j
	return &j, nil
}

func (r *memJobRepo) LockTarget(context.Context, domain.JobType, int64) error {
	return nil
}

func (r *memJobRepo) CancelPending(_ context.Context, jobType domain.JobType, targetID int64) (int64, error) {
	var n int64
	for id, j := range r.s.data.jobs {
		if j.Type == jobType && j.TargetID == targetID && j.Status == domain.JobStatusPending {
			j.Status = domain.JobStatusCancelled
			r.s.data.jobs[id] = j
			n++
		}
	}
	return n, nil
}

func (r *memJobRepo) ClaimDue(_ context.Context, args repoargs.ClaimJobs) ([]domain.NotificationJob, error) {
	var due []domain.NotificationJob
	for _, j := range r.s.data.jobs {
		if j.Status == domain.JobStatusPending && !j.ScheduledAt.After(args.Now) {
			due = append(due, j)
		}
	}
	sort.Slice(due, func(i, j int) bool {
		if due[i].ScheduledAt.Equal(due[j].ScheduledAt) {
			return due[i].ID < due[j].ID
		}
		return due[i].ScheduledAt.Before(due[j].ScheduledAt)
	})
	if uint(len(due)) > args.Limit {
		due = due[:args.Limit]
	}
	for i := range due {
		now := args.Now
		due[i].Status = domain.JobStatusProcessing
		due[i].ClaimedBy = args.Owner
		due[i].ClaimedAt = &now
		r.s.data.jobs[due[i].ID] = due[i]
	}
	return due, nil
}

func (r *memJobRepo) owned(id int64, owner string) (domain.NotificationJob, error) {
	j, ok := r.s.data.jobs[id]
	if !ok || j.Status != domain.JobStatusProcessing || j.ClaimedBy != owner {
		return j, domain.ErrClaimLost
	}
	return j, nil
}

func (r *memJobRepo) MarkDone(_ context.Context, id int64, owner string) error {
	j, err := r.owned(id, owner)
	if err != nil {
		return err
	}
	j.Status = domain.JobStatusDone
	j.Attempts++
	r.s.data.jobs[id] = j
	return nil
}

func (r *memJobRepo) Reschedule(_ context.Context, args repoargs.RescheduleJob) error {
	j, err := r.owned(args.ID, args.Owner)
	if err != nil {
		return err
	}
	j.Status = domain.JobStatusPending
	j.Attempts++
	j.ScheduledAt = args.ScheduledAt
	j.LastError = args.LastError
	j.ClaimedBy = ""
	j.ClaimedAt = nil
	r.s.data.jobs[args.ID] = j
	return nil
}

func (r *memJobRepo) MarkFailed(_ context.Context, id int64, owner, lastErr string) error {
	j, err := r.owned(id, owner)
	if err != nil {
		return err
	}
	j.Status = domain.JobStatusFailed
	j.Attempts++
	j.LastError = lastErr
	r.s.data.jobs[id] = j
	return nil
}

func (r *memJobRepo) ReleaseStale(_ context.Context, claimedBefore time.Time) (int64, error) {
	var n int64
	for id, j := range r.s.data.jobs {
		if j.Status == domain.JobStatusProcessing && j.ClaimedAt != nil && j.ClaimedAt.Before(claimedBefore) {
			j.Status = domain.JobStatusPending
			j.ClaimedBy = ""
			j.ClaimedAt = nil
			r.s.data.jobs[id] = j
			n++
		}
	}
	return n, nil
}

type memExpenseRepo struct{ s *memStore }

func (r *memExpenseRepo) Create(_ context.Context, args repoargs.CreateExpense) (*domain.Expense, error) {
	e := domain.Expense{
		ID:          r.s.id(),
		CreatedAt:   time.Now(),
		PurchaseID:  args.PurchaseID,
		Category:    args.Category,
		Amount:      args.Amount,
		Description: args.Description,
	}
	r.s.data.expenses = append(r.s.data.expenses, e)
	return &e, nil
}

type memSubscriptionRepo struct{ s *memStore }

func (r *memSubscriptionRepo) SubscriberIDs(_ context.Context, productID int64) ([]int64, error) {
	return append([]int64(nil), r.s.data.subscribers[productID]...), nil
}

type sentMessage struct {
	chatID int64
	text   string
}

// memMessenger мессенджер, запоминающий отправленные и отредактированные сообщения.
type memMessenger struct {
	mu      sync.Mutex
	nextID  int64
	sent    []sentMessage
	edited  []sentMessage
	sendErr error
}

func (m *memMessenger) Send(_ context.Context, chatID int64, text string) (*domain.MessageHandle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sendErr != nil {
		return nil, m.sendErr
	}
	m.nextID++
	m.sent = append(m.sent, sentMessage{chatID: chatID, text: text})
	return &domain.MessageHandle{ChatID: chatID, MessageID: m.nextID}, nil
}

func (m *memMessenger) Edit(_ context.Context, handle domain.MessageHandle, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.edited = append(m.edited, sentMessage{chatID: handle.ChatID, text: text})
	return nil
}

func (m *memMessenger) sentTo(chatID int64) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int
	for _, msg := range m.sent {
		if msg.chatID == chatID {
			n++
		}
	}
	return n
}

const (
	adminChatID    int64 = -1001
	courierChatID  int64 = -1002
	supplierChatID int64 = -1003
)

type memChats struct{}

func (memChats) ChatID(_ context.Context, role domain.ChatRole) (int64, error) {
	switch role {
	case domain.ChatRoleAdmin:
		return adminChatID, nil
	case domain.ChatRoleCourier:
		return courierChatID, nil
	case domain.ChatRoleSupplier:
		return supplierChatID, nil
	}
	return 0, errors.New("unknown chat role")
}

// testProgram программа лояльности из двух уровней: базовый 3% и 5% начиная с 3 заказов, порог кешбэка 5000.
func testProgram() domain.LoyaltyProgram {
	return domain.LoyaltyProgram{
		BonusThreshold: decimal.NewFromInt(5000),
		Tiers: []domain.Tier{
			{ID: 2, Title: "Gold", BonusPercent: 5, OrderThreshold: 3},
			{ID: 1, Title: "Base", BonusPercent: 3, OrderThreshold: 0},
		},
	}
}

type testEnv struct {
	store     *memStore
	messenger *memMessenger
	services  *AppServices
}

func newTestEnv() (*testEnv, error) {
	store := newMemStore()
	messenger := new(memMessenger)

	services, err := Factory(FactoryArgs{
		UOW:                  newMemUOW(store),
		Messenger:            messenger,
		Chats:                memChats{},
		Loyalty:              testProgram(),
		Logger:               logger.NewNop(),
		PaymentReminderDelay: time.Hour,
	})
	if err != nil {
		return nil, err
	}
	return &testEnv{store: store, messenger: messenger, services: services}, nil
}
