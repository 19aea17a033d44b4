package controllers

import (
	"net/http"

	"salonpos-backend/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type DashboardController struct {
	dashboard *services.DashboardService
	logger    *zap.Logger
}

func NewDashboardController(dashboard *services.DashboardService, logger *zap.Logger) *DashboardController {
	return &DashboardController{dashboard: dashboard, logger: logger}
}

// Stats returns client, order and revenue totals for the caller's shop.
func (dc *DashboardController) Stats(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}
	stats, err := dc.dashboard.GetStats(c.Request.Context(), identity.ShopID)
	if err != nil {
		respondServiceError(c, dc.logger, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
