package controllers

import (
	"net/http"

	"salonpos-backend/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type TreatmentController struct {
	treatments *services.TreatmentService
	logger     *zap.Logger
}

func NewTreatmentController(treatments *services.TreatmentService, logger *zap.Logger) *TreatmentController {
	return &TreatmentController{treatments: treatments, logger: logger}
}

func (tc *TreatmentController) All(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}
	treatments, err := tc.treatments.List(c.Request.Context(), identity.ShopID)
	if err != nil {
		respondServiceError(c, tc.logger, err)
		return
	}
	c.JSON(http.StatusOK, treatments)
}

func (tc *TreatmentController) Create(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}
	var input services.TreatmentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}

	treatment, err := tc.treatments.Create(c.Request.Context(), identity.ShopID, input)
	if err != nil {
		respondServiceError(c, tc.logger, err)
		return
	}
	c.JSON(http.StatusCreated, treatment)
}

func (tc *TreatmentController) Update(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var patch services.TreatmentPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		respondBindError(c, err)
		return
	}

	treatment, err := tc.treatments.Update(c.Request.Context(), identity.ShopID, id, patch)
	if err != nil {
		respondServiceError(c, tc.logger, err)
		return
	}
	c.JSON(http.StatusOK, treatment)
}
