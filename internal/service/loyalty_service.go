package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/osama-agency/telesklad/internal/domain"
	"github.com/osama-agency/telesklad/internal/repository/repoargs"
	"github.com/osama-agency/telesklad/pkg/uow"
)

// cashbackStep кешбэк округляется вниз до кратного этому шагу.
var cashbackStep = decimal.NewFromInt(50) //nolint:mnd

// LoyaltyService бонусный счет покупателя и уровни программы лояльности. Баланс пользователя является кешем
// журнала бонусов и меняется только в той же транзакции, что пишет запись журнала.
type LoyaltyService struct {
	uow     uow.UOW
	program domain.LoyaltyProgram
	l       *logrus.Entry
}

func NewLoyaltyService(u uow.UOW, program domain.LoyaltyProgram, l *logrus.Logger) *LoyaltyService {
	program.SortTiers()
	return &LoyaltyService{
		uow:     u,
		program: program,
		l: l.WithFields(logrus.Fields{
			"component": "service",
			"module":    "loyalty",
		}),
	}
}

func (s *LoyaltyService) Program() domain.LoyaltyProgram {
	return s.program
}

type BonusArgs struct {
	UserID     int64
	Amount     int64
	Reason     string
	SourceType string
	SourceID   int64
}

type BonusResult struct {
	Entry   *domain.BonusLogEntry
	Balance int64
	// AlreadyApplied запись с тем же источником и причиной уже была, баланс не менялся.
	AlreadyApplied bool
}

// AddBonus начисляет бонусы. Повторное начисление с тем же источником и причиной ничего не меняет.
func (s *LoyaltyService) AddBonus(ctx context.Context, args BonusArgs) (*BonusResult, error) {
	var res *BonusResult
	txErr := s.uow.Do(ctx, func(c context.Context, tx uow.TX) error {
		var err error
		res, err = s.addBonusTx(c, tx, args)
		return err
	})
	if txErr != nil {
		return nil, txErr
	}
	return res, nil
}

// DeductBonus списывает бонусы. Если на балансе недостаточно средств, возвращает domain.ErrInsufficientBalance.
func (s *LoyaltyService) DeductBonus(ctx context.Context, args BonusArgs) (*BonusResult, error) {
	var res *BonusResult
	txErr := s.uow.Do(ctx, func(c context.Context, tx uow.TX) error {
		var err error
		res, err = s.deductBonusTx(c, tx, args)
		return err
	})
	if txErr != nil {
		return nil, txErr
	}
	return res, nil
}

func (s *LoyaltyService) addBonusTx(ctx context.Context, tx uow.TX, args BonusArgs) (*BonusResult, error) {
	if args.Amount <= 0 {
		return nil, fmt.Errorf("add bonus %d: %w", args.Amount, domain.ErrInvalidQuantity)
	}
	return s.applyEntry(ctx, tx, args, args.Amount)
}

func (s *LoyaltyService) deductBonusTx(ctx context.Context, tx uow.TX, args BonusArgs) (*BonusResult, error) {
	if args.Amount <= 0 {
		return nil, fmt.Errorf("deduct bonus %d: %w", args.Amount, domain.ErrInvalidQuantity)
	}
	return s.applyEntry(ctx, tx, args, -args.Amount)
}

// applyEntry пишет запись журнала и корректирует баланс на delta.
func (s *LoyaltyService) applyEntry(ctx context.Context, tx uow.TX, args BonusArgs, delta int64) (*BonusResult, error) {
	userRepo, err := txRepo[UserRepository](tx, repoargs.UserRepoName)
	if err != nil {
		return nil, err
	}
	logRepo, err := txRepo[BonusLogRepository](tx, repoargs.BonusLogRepoName)
	if err != nil {
		return nil, err
	}

	user, userErr := userRepo.FindByIDForUpdate(ctx, args.UserID)
	if userErr != nil {
		return nil, fmt.Errorf("apply bonus entry: %w", userErr)
	}
	if user.BonusBalance+delta < 0 {
		return nil, fmt.Errorf("user %d has %d, needs %d: %w",
			user.ID, user.BonusBalance, -delta, domain.ErrInsufficientBalance)
	}

	entry, entryErr := logRepo.Create(ctx, repoargs.CreateBonusLog{
		UserID:     args.UserID,
		Amount:     delta,
		Reason:     args.Reason,
		SourceType: args.SourceType,
		SourceID:   args.SourceID,
	})
	if entryErr != nil {
		if errors.Is(entryErr, domain.ErrDuplicateKey) {
			s.l.WithFields(logrus.Fields{
				"userID":     args.UserID,
				"reason":     args.Reason,
				"sourceType": args.SourceType,
				"sourceID":   args.SourceID,
			}).Info("bonus entry already applied")
			return &BonusResult{Balance: user.BonusBalance, AlreadyApplied: true}, nil
		}
		return nil, fmt.Errorf("apply bonus entry: %w", entryErr)
	}

	balance, balanceErr := userRepo.AdjustBonusBalance(ctx, args.UserID, delta)
	if balanceErr != nil {
		if errors.Is(balanceErr, domain.ErrRecordNotFound) && delta < 0 {
			return nil, fmt.Errorf("apply bonus entry: %w", domain.ErrInsufficientBalance)
		}
		return nil, fmt.Errorf("apply bonus entry: %w", balanceErr)
	}
	return &BonusResult{Entry: entry, Balance: balance}, nil
}

// ProcessOrderCashback кешбэк за заказ: 0 если subtotal ниже порога, иначе subtotal*tierPercent/100, округленный
// вниз до кратного 50.
func ProcessOrderCashback(subtotal decimal.Decimal, tierPercent int64, threshold decimal.Decimal) int64 {
	if subtotal.LessThan(threshold) || tierPercent <= 0 || !subtotal.IsPositive() {
		return 0
	}
	raw := subtotal.Mul(decimal.NewFromInt(tierPercent)).Div(decimal.NewFromInt(100)) //nolint:mnd
	return raw.Div(cashbackStep).Floor().Mul(cashbackStep).IntPart()
}

// ProcessOrderCashback кешбэк с порогом из настроек программы.
func (s *LoyaltyService) ProcessOrderCashback(subtotal decimal.Decimal, tierPercent int64) int64 {
	return ProcessOrderCashback(subtotal, tierPercent, s.program.BonusThreshold)
}

// TierPercent процент кешбэка уровня пользователя.
func (s *LoyaltyService) TierPercent(user *domain.User) int64 {
	tier, _ := s.program.TierByID(user.TierID)
	return tier.BonusPercent
}

// Qualifies засчитывается ли заказ с такой суммой в счетчик заказов.
func (s *LoyaltyService) Qualifies(subtotal decimal.Decimal) bool {
	return subtotal.GreaterThanOrEqual(s.program.BonusThreshold)
}

type TierChange struct {
	From    domain.Tier
	To      domain.Tier
	Changed bool
}

// CheckAndUpgradeTier выбирает наивысший уровень, доступный при orderCount заказах, и переводит на него
// пользователя. Понижение уровня не выполняется.
func (s *LoyaltyService) CheckAndUpgradeTier(ctx context.Context, userID, orderCount int64) (*TierChange, error) {
	var res *TierChange
	txErr := s.uow.Do(ctx, func(c context.Context, tx uow.TX) error {
		userRepo, err := txRepo[UserRepository](tx, repoargs.UserRepoName)
		if err != nil {
			return err
		}
		user, userErr := userRepo.FindByIDForUpdate(c, userID)
		if userErr != nil {
			return fmt.Errorf("check tier: %w", userErr)
		}
		res, err = s.checkAndUpgradeTierTx(c, tx, user, orderCount)
		return err
	})
	if txErr != nil {
		return nil, txErr
	}
	return res, nil
}

func (s *LoyaltyService) checkAndUpgradeTierTx(
	ctx context.Context,
	tx uow.TX,
	user *domain.User,
	orderCount int64,
) (*TierChange, error) {
	current, known := s.program.TierByID(user.TierID)
	res := &TierChange{From: current, To: current}

	target, found := s.program.HighestTierFor(orderCount)
	if !found || target.ID == current.ID {
		return res, nil
	}
	if known && target.OrderThreshold <= current.OrderThreshold {
		return res, nil
	}

	userRepo, err := txRepo[UserRepository](tx, repoargs.UserRepoName)
	if err != nil {
		return nil, err
	}
	if updErr := userRepo.UpdateTier(ctx, user.ID, target.ID); updErr != nil {
		return nil, fmt.Errorf("upgrade tier: %w", updErr)
	}

	s.l.WithFields(logrus.Fields{
		"userID":     user.ID,
		"fromTier":   user.TierID,
		"toTier":     target.ID,
		"orderCount": orderCount,
	}).Info("tier upgraded")

	res.To = target
	res.Changed = true
	return res, nil
}
