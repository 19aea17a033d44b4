package controllers

import (
	"errors"
	"net/http"

	"salonpos-backend/services"
	"salonpos-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// respondServiceError maps service sentinel errors onto HTTP statuses.
// Upstream and unexpected failures are logged and answered with a generic message.
func respondServiceError(c *gin.Context, logger *zap.Logger, err error) {
	switch {
	case errors.Is(err, services.ErrPermissionDenied):
		utils.RespondWithError(c, http.StatusForbidden, err.Error())
	case errors.Is(err, services.ErrNotFound):
		utils.RespondWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrInvalidState), errors.Is(err, services.ErrConflict):
		utils.RespondWithError(c, http.StatusConflict, err.Error())
	case errors.Is(err, services.ErrValidation), errors.Is(err, services.ErrMissingData):
		utils.RespondWithError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrInvalidCredentials):
		utils.RespondWithError(c, http.StatusUnauthorized, "Invalid credentials")
	case errors.Is(err, services.ErrExternalService):
		logger.Error("external service failure", zap.String("path", c.FullPath()), zap.Error(err))
		utils.RespondWithError(c, http.StatusBadGateway, "An external service failed, please try again later")
	default:
		logger.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		utils.RespondWithError(c, http.StatusInternalServerError, "Internal server error")
	}
}

func requireIdentity(c *gin.Context) (utils.Identity, bool) {
	identity, ok := utils.CurrentIdentity(c)
	if !ok {
		utils.RespondWithError(c, http.StatusUnauthorized, "Authorization required")
	}
	return identity, ok
}

func paramID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}

func respondBindError(c *gin.Context, err error) {
	utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
}
