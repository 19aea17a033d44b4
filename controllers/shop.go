package controllers

import (
	"net/http"

	"salonpos-backend/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ShopController struct {
	shops  *services.ShopService
	logger *zap.Logger
}

func NewShopController(shops *services.ShopService, logger *zap.Logger) *ShopController {
	return &ShopController{shops: shops, logger: logger}
}

func (sc *ShopController) Create(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}
	var input services.ShopInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}

	shop, err := sc.shops.Create(c.Request.Context(), identity, input)
	if err != nil {
		respondServiceError(c, sc.logger, err)
		return
	}
	c.JSON(http.StatusCreated, shop)
}

func (sc *ShopController) All(c *gin.Context) {
	shops, err := sc.shops.List(c.Request.Context())
	if err != nil {
		respondServiceError(c, sc.logger, err)
		return
	}
	c.JSON(http.StatusOK, shops)
}
