package services

import (
	"context"
	"fmt"
	"strings"

	"salonpos-backend/models"
	"salonpos-backend/utils"

	"gorm.io/gorm"
)

type ShopInput struct {
	Name           string `json:"name" binding:"required"`
	AddressLine1   string `json:"addressLine1"`
	AddressLine2   string `json:"addressLine2"`
	AddressLine3   string `json:"addressLine3"`
	Phone          string `json:"phone"`
	RUC            string `json:"ruc"`
	CurrencySymbol string `json:"currencySymbol"`
}

type ShopService struct {
	db *gorm.DB
}

func NewShopService(db *gorm.DB) *ShopService {
	return &ShopService{db: db}
}

func (s *ShopService) Create(ctx context.Context, actor utils.Identity, in ShopInput) (*models.Shop, error) {
	if !actor.HasRole(models.RoleAdmin) {
		return nil, fmt.Errorf("%w: only admins can create shops", ErrPermissionDenied)
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrValidation)
	}
	currency := strings.TrimSpace(in.CurrencySymbol)
	if currency == "" {
		currency = "S/"
	}

	shop := models.Shop{
		Name:           name,
		AddressLine1:   strings.TrimSpace(in.AddressLine1),
		AddressLine2:   strings.TrimSpace(in.AddressLine2),
		AddressLine3:   strings.TrimSpace(in.AddressLine3),
		Phone:          strings.TrimSpace(in.Phone),
		RUC:            strings.TrimSpace(in.RUC),
		CurrencySymbol: currency,
	}
	if err := s.db.WithContext(ctx).Create(&shop).Error; err != nil {
		return nil, fmt.Errorf("create shop: %w", err)
	}
	return &shop, nil
}

func (s *ShopService) List(ctx context.Context) ([]models.Shop, error) {
	shops := []models.Shop{}
	if err := s.db.WithContext(ctx).Order("name ASC").Find(&shops).Error; err != nil {
		return nil, fmt.Errorf("list shops: %w", err)
	}
	return shops, nil
}
