package controllers

import (
	"net/http"

	"salonpos-backend/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ClientController struct {
	clients *services.ClientService
	logger  *zap.Logger
}

func NewClientController(clients *services.ClientService, logger *zap.Logger) *ClientController {
	return &ClientController{clients: clients, logger: logger}
}

func (cc *ClientController) List(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}
	var query services.ClientQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondBindError(c, err)
		return
	}

	page, err := cc.clients.List(c.Request.Context(), identity.ShopID, query)
	if err != nil {
		respondServiceError(c, cc.logger, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (cc *ClientController) All(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}
	clients, err := cc.clients.All(c.Request.Context(), identity.ShopID)
	if err != nil {
		respondServiceError(c, cc.logger, err)
		return
	}
	c.JSON(http.StatusOK, clients)
}

// ByDNI answers from the local records first and the national registry second.
func (cc *ClientController) ByDNI(c *gin.Context) {
	client, err := cc.clients.FindByDNI(c.Request.Context(), c.Param("dni"))
	if err != nil {
		respondServiceError(c, cc.logger, err)
		return
	}
	c.JSON(http.StatusOK, client)
}
