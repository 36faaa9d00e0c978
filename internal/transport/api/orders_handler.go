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

type OrdersHandler struct {
	orderSvs OrderServicer
}

func NewOrdersHandler(orderSvs OrderServicer) *OrdersHandler {
	return &OrdersHandler{
		orderSvs: orderSvs,
	}
}

type CreateOrderItemParams struct {
	ProductID int64           `binding:"required,gt=0" json:"product_id"`
	Quantity  int64           `binding:"required,gt=0" json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

type CreateOrderParams struct {
	UserID       int64                   `binding:"required,gt=0"       json:"user_id"`
	Items        []CreateOrderItemParams `binding:"required,min=1,dive" json:"items"`
	DeliveryFee  decimal.Decimal         `json:"delivery_fee"`
	BonusApplied int64                   `binding:"gte=0"               json:"bonus_applied"`
}

type OrderResponse struct {
	ID           int64     `json:"id"`
	UserID       int64     `json:"user_id"`
	Status       string    `json:"status"`
	Total        string    `json:"total"`
	DeliveryFee  string    `json:"delivery_fee"`
	BonusApplied int64     `json:"bonus_applied"`
	CreatedAt    time.Time `json:"created_at"`
}

// Create POST RouteGroup + OrdersRoute. Создает неоплаченный заказ и планирует напоминание об оплате.
func (h *OrdersHandler) Create(c *gin.Context) {
	var params CreateOrderParams
	if bindErr := c.ShouldBindJSON(&params); bindErr != nil {
		abortWithBindError(c, bindErr)
		return
	}

	args := service.CreateOrderArgs{
		UserID:       params.UserID,
		Items:        make([]service.CreateOrderItemArgs, len(params.Items)),
		DeliveryFee:  params.DeliveryFee,
		BonusApplied: params.BonusApplied,
	}
	for i, item := range params.Items {
		if item.Price.IsNegative() {
			_ = c.AbortWithError(http.StatusUnprocessableEntity, domain.ErrInvalidQuantity).
				SetType(gin.ErrorTypePublic)
			return
		}
		args.Items[i] = service.CreateOrderItemArgs(item)
	}

	ctx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	order, err := h.orderSvs.Create(ctx, args)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, OrderResponse{
		ID:           order.ID,
		UserID:       order.UserID,
		Status:       string(order.Status),
		Total:        order.Total.StringFixed(moneyScale),
		DeliveryFee:  order.DeliveryFee.StringFixed(moneyScale),
		BonusApplied: order.BonusApplied,
		CreatedAt:    order.CreatedAt,
	})
}

type OrderTransitionParams struct {
	Status string `binding:"required,order_status" json:"status"`
}

// Transition POST RouteGroup + OrderTransitionRoute.
func (h *OrdersHandler) Transition(c *gin.Context) {
	id, idErr := paramID(c, "id")
	if idErr != nil {
		_ = c.AbortWithError(http.StatusBadRequest, idErr).SetType(gin.ErrorTypePublic)
		return
	}

	var params OrderTransitionParams
	if bindErr := c.ShouldBindJSON(&params); bindErr != nil {
		abortWithBindError(c, bindErr)
		return
	}

	ctx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	res, err := h.orderSvs.Transition(ctx, id, domain.OrderStatus(params.Status))
	if err != nil {
		abortWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, TransitionResponse{
		Status:           string(res.NewStatus),
		SideEffects:      effectNames(res.SideEffectsApplied),
		NotificationSent: &res.NotificationSent,
	})
}
