package controllers

import (
	"net/http"

	"salonpos-backend/models"
	"salonpos-backend/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type OrderController struct {
	orders *services.OrderService
	logger *zap.Logger
}

func NewOrderController(orders *services.OrderService, logger *zap.Logger) *OrderController {
	return &OrderController{orders: orders, logger: logger}
}

func (oc *OrderController) Create(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}
	var input services.OrderInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}

	order, err := oc.orders.CreateOrder(c.Request.Context(), identity, input)
	if err != nil {
		respondServiceError(c, oc.logger, err)
		return
	}
	c.JSON(http.StatusCreated, order)
}

func (oc *OrderController) List(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}
	var query services.OrderQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondBindError(c, err)
		return
	}

	page, err := oc.orders.GetOrders(c.Request.Context(), identity.ShopID, query)
	if err != nil {
		respondServiceError(c, oc.logger, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (oc *OrderController) Get(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	order, err := oc.orders.GetOrder(c.Request.Context(), identity.ShopID, id)
	if err != nil {
		respondServiceError(c, oc.logger, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (oc *OrderController) Update(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var input services.OrderInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}

	order, err := oc.orders.UpdateOrder(c.Request.Context(), identity, id, input)
	if err != nil {
		respondServiceError(c, oc.logger, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (oc *OrderController) Complete(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var input services.CompleteOrderInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}

	order, err := oc.orders.CompleteOrder(c.Request.Context(), identity, id, input)
	if err != nil {
		respondServiceError(c, oc.logger, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (oc *OrderController) Cancel(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	order, err := oc.orders.CancelOrder(c.Request.Context(), identity, id)
	if err != nil {
		respondServiceError(c, oc.logger, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (oc *OrderController) Restore(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	order, err := oc.orders.RestoreOrder(c.Request.Context(), identity, id)
	if err != nil {
		respondServiceError(c, oc.logger, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// Pending returns a handler listing today's orders of the caller in the given statuses.
func (oc *OrderController) Pending(statuses ...models.OrderStatus) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := requireIdentity(c)
		if !ok {
			return
		}
		orders, err := oc.orders.GetPendingOrdersForUser(c.Request.Context(), identity, statuses)
		if err != nil {
			respondServiceError(c, oc.logger, err)
			return
		}
		c.JSON(http.StatusOK, orders)
	}
}

func (oc *OrderController) DailySummary(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}

	summary, err := oc.orders.GetDailySummary(c.Request.Context(), identity, c.Query("date"))
	if err != nil {
		respondServiceError(c, oc.logger, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (oc *OrderController) SendReceipt(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := oc.orders.SendOrderReceipt(c.Request.Context(), identity, id); err != nil {
		respondServiceError(c, oc.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Receipt sent"})
}
