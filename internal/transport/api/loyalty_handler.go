package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/osama-agency/telesklad/internal/domain"
	"github.com/osama-agency/telesklad/internal/service"
)

type LoyaltyHandler struct {
	loyaltySvs LoyaltyServicer
}

func NewLoyaltyHandler(loyaltySvs LoyaltyServicer) *LoyaltyHandler {
	return &LoyaltyHandler{
		loyaltySvs: loyaltySvs,
	}
}

// BonusAdjustParams ручная корректировка баланса. Положительная сумма начисляется, отрицательная списывается.
// Повтор с теми же source_id и reason баланс не меняет.
type BonusAdjustParams struct {
	Amount   int64  `binding:"required"              json:"amount"`
	Reason   string `binding:"required,max_bytes=64" json:"reason"`
	SourceID int64  `binding:"required,gt=0"         json:"source_id"`
}

type BonusAdjustResponse struct {
	UserID         int64 `json:"user_id"`
	Amount         int64 `json:"amount"`
	Balance        int64 `json:"balance"`
	AlreadyApplied bool  `json:"already_applied"`
}

// AdjustBonus POST RouteGroup + UserBonusRoute.
func (h *LoyaltyHandler) AdjustBonus(c *gin.Context) {
	userID, idErr := paramID(c, "id")
	if idErr != nil {
		_ = c.AbortWithError(http.StatusBadRequest, idErr).SetType(gin.ErrorTypePublic)
		return
	}

	var params BonusAdjustParams
	if bindErr := c.ShouldBindJSON(&params); bindErr != nil {
		abortWithBindError(c, bindErr)
		return
	}

	args := service.BonusArgs{
		UserID:     userID,
		Amount:     params.Amount,
		Reason:     params.Reason,
		SourceType: domain.BonusSourceManual,
		SourceID:   params.SourceID,
	}

	ctx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	var (
		res *service.BonusResult
		err error
	)
	if params.Amount > 0 {
		res, err = h.loyaltySvs.AddBonus(ctx, args)
	} else {
		args.Amount = -params.Amount
		res, err = h.loyaltySvs.DeductBonus(ctx, args)
	}
	if err != nil {
		abortWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, BonusAdjustResponse{
		UserID:         userID,
		Amount:         params.Amount,
		Balance:        res.Balance,
		AlreadyApplied: res.AlreadyApplied,
	})
}

type TierCheckParams struct {
	OrderCount *int64 `binding:"required,gte=0" json:"order_count"`
}

type TierResponse struct {
	UserID       int64  `json:"user_id"`
	TierID       int64  `json:"tier_id"`
	TierTitle    string `json:"tier_title"`
	BonusPercent int64  `json:"bonus_percent"`
	Changed      bool   `json:"changed"`
}

// CheckTier POST RouteGroup + UserTierRoute. Пересчитывает уровень для переданного числа заказов, например после
// переноса истории заказов. Уровень не понижается.
func (h *LoyaltyHandler) CheckTier(c *gin.Context) {
	userID, idErr := paramID(c, "id")
	if idErr != nil {
		_ = c.AbortWithError(http.StatusBadRequest, idErr).SetType(gin.ErrorTypePublic)
		return
	}

	var params TierCheckParams
	if bindErr := c.ShouldBindJSON(&params); bindErr != nil {
		abortWithBindError(c, bindErr)
		return
	}

	ctx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	change, err := h.loyaltySvs.CheckAndUpgradeTier(ctx, userID, *params.OrderCount)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, TierResponse{
		UserID:       userID,
		TierID:       change.To.ID,
		TierTitle:    change.To.Title,
		BonusPercent: change.To.BonusPercent,
		Changed:      change.Changed,
	})
}
