package domain

import (
	"sort"

	"github.com/shopspring/decimal"
)

type Tier struct {
	ID             int64  `yaml:"id"`
	Title          string `yaml:"title"`
	BonusPercent   int64  `yaml:"bonus_percent"`
	OrderThreshold int64  `yaml:"order_threshold"`
}

// LoyaltyProgram параметры программы лояльности: порог суммы заказа для начисления кешбэка и таблица уровней.
type LoyaltyProgram struct {
	BonusThreshold decimal.Decimal `yaml:"bonus_threshold"`
	Tiers          []Tier          `yaml:"tiers"`
}

// SortTiers упорядочивает уровни по возрастанию порога.
func (p *LoyaltyProgram) SortTiers() {
	sort.SliceStable(p.Tiers, func(i, j int) bool {
		return p.Tiers[i].OrderThreshold < p.Tiers[j].OrderThreshold
	})
}

// TierByID возвращает уровень по id. Если такого уровня нет, возвращается базовый (с минимальным порогом).
func (p *LoyaltyProgram) TierByID(id int64) (Tier, bool) {
	for _, t := range p.Tiers {
		if t.ID == id {
			return t, true
		}
	}
	if len(p.Tiers) == 0 {
		return Tier{}, false
	}
	return p.Tiers[0], false
}

// HighestTierFor наивысший уровень, порог которого не превышает orderCount.
func (p *LoyaltyProgram) HighestTierFor(orderCount int64) (Tier, bool) {
	var (
		res   Tier
		found bool
	)
	for _, t := range p.Tiers {
		if t.OrderThreshold <= orderCount && (!found || t.OrderThreshold >= res.OrderThreshold) {
			res = t
			found = true
		}
	}
	return res, found
}
