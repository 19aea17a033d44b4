package controllers

import (
	"net/http"
	"strconv"

	"salonpos-backend/models"
	"salonpos-backend/services"
	"salonpos-backend/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type UserController struct {
	users  *services.UserService
	logger *zap.Logger
}

func NewUserController(users *services.UserService, logger *zap.Logger) *UserController {
	return &UserController{users: users, logger: logger}
}

func (uc *UserController) Create(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}
	var input services.CreateUserInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}

	user, err := uc.users.Create(c.Request.Context(), identity, input)
	if err != nil {
		respondServiceError(c, uc.logger, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

func (uc *UserController) Update(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var input services.UpdateUserInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}

	user, err := uc.users.Update(c.Request.Context(), identity, id, input)
	if err != nil {
		respondServiceError(c, uc.logger, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (uc *UserController) Me(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}
	user, err := uc.users.GetByID(c.Request.Context(), identity.ShopID, identity.UserID)
	if err != nil {
		respondServiceError(c, uc.logger, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// ByRole lists the shop's users with role. ?strict=true keeps managers out of
// operator and cashier listings.
func (uc *UserController) ByRole(role models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := requireIdentity(c)
		if !ok {
			return
		}
		strict := false
		if raw := c.Query("strict"); raw != "" {
			parsed, err := strconv.ParseBool(raw)
			if err != nil {
				utils.RespondWithError(c, http.StatusBadRequest, "strict must be true or false")
				return
			}
			strict = parsed
		}

		users, err := uc.users.ListByRole(c.Request.Context(), identity.ShopID, role, strict)
		if err != nil {
			respondServiceError(c, uc.logger, err)
			return
		}
		c.JSON(http.StatusOK, users)
	}
}
