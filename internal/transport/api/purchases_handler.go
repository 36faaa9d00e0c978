package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/osama-agency/telesklad/internal/domain"
	"github.com/osama-agency/telesklad/internal/service"
)

type PurchasesHandler struct {
	purchaseSvs PurchaseServicer
}

func NewPurchasesHandler(purchaseSvs PurchaseServicer) *PurchasesHandler {
	return &PurchasesHandler{
		purchaseSvs: purchaseSvs,
	}
}

type PurchaseTransitionParams struct {
	Status string `binding:"required,purchase_status" json:"status"`
}

type TransitionResponse struct {
	Status      string   `json:"status"`
	SideEffects []string `json:"side_effects"`
	// NotificationSent заполняется только для заказов.
	NotificationSent *bool `json:"notification_sent,omitempty"`
}

// Transition POST RouteGroup + PurchaseTransitionRoute.
func (h *PurchasesHandler) Transition(c *gin.Context) {
	id, idErr := paramID(c, "id")
	if idErr != nil {
		_ = c.AbortWithError(http.StatusBadRequest, idErr).SetType(gin.ErrorTypePublic)
		return
	}

	var params PurchaseTransitionParams
	if bindErr := c.ShouldBindJSON(&params); bindErr != nil {
		abortWithBindError(c, bindErr)
		return
	}

	ctx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	res, err := h.purchaseSvs.Transition(ctx, id, domain.PurchaseStatus(params.Status))
	if err != nil {
		abortWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, TransitionResponse{
		Status:      string(res.NewStatus),
		SideEffects: effectNames(res.SideEffectsApplied),
	})
}

type ReceiveItemParams struct {
	ItemID           int64  `binding:"required,gt=0"  json:"item_id"`
	ReceivedQuantity *int64 `binding:"required,gte=0" json:"received_quantity"`
}

type ReceiveParams struct {
	Items            []ReceiveItemParams `binding:"omitempty,dive" json:"items"`
	ReceivedAt       *time.Time          `json:"received_at"`
	LogisticsExpense decimal.Decimal     `json:"logistics_expense"`
	Notes            string              `binding:"max_bytes=2000" json:"notes"`
}

type ReceivedItemResponse struct {
	ItemID      int64  `json:"item_id"`
	ProductID   int64  `json:"product_id"`
	ProductName string `json:"product_name"`
	Ordered     int64  `json:"ordered"`
	Received    int64  `json:"received"`
	Difference  int64  `json:"difference"`
}

type ReceiveResponse struct {
	PurchaseID    int64                  `json:"purchase_id"`
	Status        string                 `json:"status"`
	DeliveryDays  int64                  `json:"delivery_days"`
	TotalOrdered  int64                  `json:"total_ordered"`
	TotalReceived int64                  `json:"total_received"`
	Items         []ReceivedItemResponse `json:"items"`
	Restocked     []int64                `json:"restocked"`
	Summary       string                 `json:"summary"`
	SideEffects   []string               `json:"side_effects"`
}

// Receive POST RouteGroup + PurchaseReceiveRoute. Пустой список позиций означает приемку всего заказанного.
func (h *PurchasesHandler) Receive(c *gin.Context) {
	id, idErr := paramID(c, "id")
	if idErr != nil {
		_ = c.AbortWithError(http.StatusBadRequest, idErr).SetType(gin.ErrorTypePublic)
		return
	}

	var params ReceiveParams
	if bindErr := c.ShouldBindJSON(&params); bindErr != nil {
		abortWithBindError(c, bindErr)
		return
	}

	args := service.ReceiveArgs{
		Items:            make([]service.ReceiveItemArgs, len(params.Items)),
		LogisticsExpense: params.LogisticsExpense,
		Notes:            params.Notes,
	}
	for i, item := range params.Items {
		args.Items[i] = service.ReceiveItemArgs{ItemID: item.ItemID, ReceivedQuantity: *item.ReceivedQuantity}
	}
	if params.ReceivedAt != nil {
		args.ReceivedAt = *params.ReceivedAt
	}

	ctx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	res, err := h.purchaseSvs.Receive(ctx, id, args)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}

	response := ReceiveResponse{
		PurchaseID:    res.PurchaseID,
		Status:        string(res.NewStatus),
		DeliveryDays:  res.DeliveryDays,
		TotalOrdered:  res.TotalOrdered,
		TotalReceived: res.TotalReceived,
		Items:         make([]ReceivedItemResponse, len(res.Items)),
		Restocked:     res.Restocked,
		Summary:       res.Summary,
		SideEffects:   effectNames(res.SideEffectsApplied),
	}
	for i, item := range res.Items {
		response.Items[i] = ReceivedItemResponse(item)
	}
	c.JSON(http.StatusOK, response)
}

// Delete DELETE RouteGroup + PurchaseRoute.
func (h *PurchasesHandler) Delete(c *gin.Context) {
	id, idErr := paramID(c, "id")
	if idErr != nil {
		_ = c.AbortWithError(http.StatusBadRequest, idErr).SetType(gin.ErrorTypePublic)
		return
	}

	ctx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	if err := h.purchaseSvs.Delete(ctx, id); err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.AbortWithStatus(http.StatusNoContent)
}
