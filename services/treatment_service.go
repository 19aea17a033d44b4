package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"salonpos-backend/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var hundred = decimal.NewFromInt(100)

type TreatmentInput struct {
	Name       string          `json:"name" binding:"required"`
	Price      decimal.Decimal `json:"price"`
	Percentage decimal.Decimal `json:"percentage"`
}

type TreatmentPatch struct {
	Name       *string          `json:"name"`
	Price      *decimal.Decimal `json:"price"`
	Percentage *decimal.Decimal `json:"percentage"`
	IsActive   *bool            `json:"isActive"`
}

type TreatmentService struct {
	db *gorm.DB
}

func NewTreatmentService(db *gorm.DB) *TreatmentService {
	return &TreatmentService{db: db}
}

func validatePercentage(p decimal.Decimal) error {
	if p.IsNegative() || p.GreaterThan(hundred) {
		return fmt.Errorf("%w: percentage must be between 0 and 100", ErrValidation)
	}
	return nil
}

func (s *TreatmentService) List(ctx context.Context, shopID uuid.UUID) ([]models.Treatment, error) {
	treatments := []models.Treatment{}
	err := s.db.WithContext(ctx).
		Where("shop_id = ? AND is_active = ?", shopID, true).
		Order("name ASC").
		Find(&treatments).Error
	if err != nil {
		return nil, fmt.Errorf("list treatments: %w", err)
	}
	return treatments, nil
}

func (s *TreatmentService) Create(ctx context.Context, shopID uuid.UUID, in TreatmentInput) (*models.Treatment, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrValidation)
	}
	if in.Price.IsNegative() {
		return nil, fmt.Errorf("%w: price cannot be negative", ErrValidation)
	}
	if err := validatePercentage(in.Percentage); err != nil {
		return nil, err
	}

	treatment := models.Treatment{
		ShopID:     shopID,
		Name:       name,
		Price:      in.Price.Round(2),
		Percentage: in.Percentage.Round(2),
		IsActive:   true,
	}
	if err := s.db.WithContext(ctx).Create(&treatment).Error; err != nil {
		return nil, fmt.Errorf("create treatment: %w", err)
	}
	return &treatment, nil
}

func (s *TreatmentService) Update(ctx context.Context, shopID, id uuid.UUID, patch TreatmentPatch) (*models.Treatment, error) {
	var treatment models.Treatment
	err := s.db.WithContext(ctx).Where("shop_id = ? AND id = ?", shopID, id).First(&treatment).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: treatment %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("find treatment: %w", err)
	}

	updates := map[string]interface{}{}
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: name cannot be empty", ErrValidation)
		}
		updates["name"] = name
	}
	if patch.Price != nil {
		if patch.Price.IsNegative() {
			return nil, fmt.Errorf("%w: price cannot be negative", ErrValidation)
		}
		updates["price"] = patch.Price.Round(2)
	}
	if patch.Percentage != nil {
		if err := validatePercentage(*patch.Percentage); err != nil {
			return nil, err
		}
		updates["percentage"] = patch.Percentage.Round(2)
	}
	if patch.IsActive != nil {
		updates["is_active"] = *patch.IsActive
	}

	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(&treatment).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("update treatment: %w", err)
		}
	}
	if err := s.db.WithContext(ctx).First(&treatment, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("reload treatment: %w", err)
	}
	return &treatment, nil
}

// ValidateTreatmentIDs loads every referenced treatment from the shop catalog.
// Missing IDs are listed in the returned ErrNotFound.
func (s *TreatmentService) ValidateTreatmentIDs(tx *gorm.DB, shopID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]models.Treatment, error) {
	unique := make([]uuid.UUID, 0, len(ids))
	seen := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			unique = append(unique, id)
		}
	}

	var treatments []models.Treatment
	if err := tx.Where("shop_id = ? AND id IN ?", shopID, unique).Find(&treatments).Error; err != nil {
		return nil, fmt.Errorf("load treatments: %w", err)
	}

	found := make(map[uuid.UUID]models.Treatment, len(treatments))
	for _, t := range treatments {
		found[t.ID] = t
	}

	var missing []string
	for _, id := range unique {
		if _, ok := found[id]; !ok {
			missing = append(missing, id.String())
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: treatments not found: %s", ErrNotFound, strings.Join(missing, ", "))
	}
	return found, nil
}
