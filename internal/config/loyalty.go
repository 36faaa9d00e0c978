package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/osama-agency/telesklad/internal/domain"
)

const defaultBonusThreshold = 5000

// DefaultLoyaltyProgram программа лояльности, действующая без файла настроек.
func DefaultLoyaltyProgram() domain.LoyaltyProgram {
	return domain.LoyaltyProgram{
		BonusThreshold: decimal.NewFromInt(defaultBonusThreshold),
		Tiers: []domain.Tier{
			{ID: 1, Title: "Базовый", BonusPercent: 3, OrderThreshold: 0},
			{ID: 2, Title: "Серебро", BonusPercent: 5, OrderThreshold: 5},
			{ID: 3, Title: "Золото", BonusPercent: 7, OrderThreshold: 15},
		},
	}
}

// LoadLoyaltyProgram читает программу лояльности из YAML. Пустой путь означает программу по умолчанию.
func LoadLoyaltyProgram(path string) (domain.LoyaltyProgram, error) {
	if path == "" {
		return DefaultLoyaltyProgram(), nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return domain.LoyaltyProgram{}, fmt.Errorf("read loyalty config: %w", err)
	}
	return ParseLoyaltyProgram(raw)
}

func ParseLoyaltyProgram(raw []byte) (domain.LoyaltyProgram, error) {
	var program domain.LoyaltyProgram
	if err := yaml.Unmarshal(raw, &program); err != nil {
		return domain.LoyaltyProgram{}, fmt.Errorf("parse loyalty config: %s", err.Error())
	}
	if err := validateProgram(program); err != nil {
		return domain.LoyaltyProgram{}, fmt.Errorf("parse loyalty config: %w", err)
	}
	program.SortTiers()
	return program, nil
}

func validateProgram(p domain.LoyaltyProgram) error {
	if len(p.Tiers) == 0 {
		return errors.New("at least one tier is required")
	}
	if p.BonusThreshold.IsNegative() {
		return errors.New("bonus threshold must not be negative")
	}

	ids := make(map[int64]struct{}, len(p.Tiers))
	for _, t := range p.Tiers {
		if t.ID <= 0 {
			return fmt.Errorf("tier `%s`: id must be positive", t.Title)
		}
		if _, dup := ids[t.ID]; dup {
			return fmt.Errorf("tier %d: duplicate id", t.ID)
		}
		ids[t.ID] = struct{}{}
		if t.BonusPercent < 0 || t.BonusPercent > 100 {
			return fmt.Errorf("tier %d: bonus percent %d out of range", t.ID, t.BonusPercent)
		}
		if t.OrderThreshold < 0 {
			return fmt.Errorf("tier %d: negative order threshold", t.ID)
		}
	}
	return nil
}
