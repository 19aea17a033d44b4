package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"salonpos-backend/config"
	"salonpos-backend/models"
	"salonpos-backend/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type CreateUserInput struct {
	Email    string      `json:"email" binding:"required,email"`
	Password string      `json:"password" binding:"required,min=8"`
	Name     string      `json:"name" binding:"required"`
	Phone    string      `json:"phone"`
	Role     models.Role `json:"role" binding:"required"`
	// Only admins may place a user in another shop.
	ShopID *uuid.UUID `json:"shopId"`
}

type UpdateUserInput struct {
	Email    *string      `json:"email" binding:"omitempty,email"`
	Password *string      `json:"password" binding:"omitempty,min=8"`
	Name     *string      `json:"name"`
	Phone    *string      `json:"phone"`
	Role     *models.Role `json:"role"`
	IsActive *bool        `json:"isActive"`
}

type UserService struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewUserService(db *gorm.DB, logger *zap.Logger) *UserService {
	return &UserService{db: db, logger: logger}
}

func canManageUsers(actor utils.Identity) bool {
	return actor.HasRole(models.RoleAdmin, models.RoleManager)
}

func (s *UserService) Create(ctx context.Context, actor utils.Identity, in CreateUserInput) (*models.User, error) {
	if !canManageUsers(actor) {
		return nil, fmt.Errorf("%w: only admins and managers can create users", ErrPermissionDenied)
	}
	if !in.Role.Valid() {
		return nil, fmt.Errorf("%w: unknown role %q", ErrValidation, in.Role)
	}
	if in.Role == models.RoleAdmin && actor.Role != models.RoleAdmin {
		return nil, fmt.Errorf("%w: only admins can create admins", ErrPermissionDenied)
	}

	shopID := actor.ShopID
	if in.ShopID != nil && *in.ShopID != actor.ShopID {
		if actor.Role != models.RoleAdmin {
			return nil, fmt.Errorf("%w: cannot create users in another shop", ErrPermissionDenied)
		}
		shopID = *in.ShopID
	}

	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := models.User{
		Email:    strings.ToLower(strings.TrimSpace(in.Email)),
		Password: hash,
		Name:     strings.TrimSpace(in.Name),
		Phone:    strings.TrimSpace(in.Phone),
		Role:     in.Role,
		ShopID:   shopID,
		IsActive: true,
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var shop models.Shop
		if err := tx.Select("id").First(&shop, "id = ?", shopID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: shop %s", ErrNotFound, shopID)
			}
			return fmt.Errorf("load shop: %w", err)
		}
		if err := tx.Create(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return fmt.Errorf("%w: email %s is already registered", ErrConflict, user.Email)
			}
			return fmt.Errorf("create user: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("user created", zap.String("user_id", user.ID.String()), zap.String("role", string(user.Role)))
	return &user, nil
}

// Update patches a user of the actor's shop. Users may edit themselves, except for role and status.
func (s *UserService) Update(ctx context.Context, actor utils.Identity, id uuid.UUID, in UpdateUserInput) (*models.User, error) {
	self := actor.UserID == id
	if !self && !canManageUsers(actor) {
		return nil, fmt.Errorf("%w: cannot edit other users", ErrPermissionDenied)
	}
	if self && !canManageUsers(actor) && (in.Role != nil || in.IsActive != nil) {
		return nil, fmt.Errorf("%w: cannot change own role or status", ErrPermissionDenied)
	}

	user, err := s.GetByID(ctx, actor.ShopID, id)
	if err != nil {
		return nil, err
	}
	if user.Role == models.RoleAdmin && actor.Role != models.RoleAdmin {
		return nil, fmt.Errorf("%w: only admins can edit admin accounts", ErrPermissionDenied)
	}

	updates := map[string]interface{}{}
	if in.Email != nil {
		updates["email"] = strings.ToLower(strings.TrimSpace(*in.Email))
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: name cannot be empty", ErrValidation)
		}
		updates["name"] = name
	}
	if in.Phone != nil {
		updates["phone"] = strings.TrimSpace(*in.Phone)
	}
	if in.Role != nil {
		if !in.Role.Valid() {
			return nil, fmt.Errorf("%w: unknown role %q", ErrValidation, *in.Role)
		}
		if *in.Role == models.RoleAdmin && actor.Role != models.RoleAdmin {
			return nil, fmt.Errorf("%w: only admins can grant the admin role", ErrPermissionDenied)
		}
		updates["role"] = *in.Role
	}
	if in.IsActive != nil {
		updates["is_active"] = *in.IsActive
	}
	if in.Password != nil {
		hash, err := utils.HashPassword(*in.Password)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		updates["password"] = hash
	}

	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(user).Updates(updates).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return nil, fmt.Errorf("%w: email is already registered", ErrConflict)
			}
			return nil, fmt.Errorf("update user: %w", err)
		}
	}
	return s.GetByID(ctx, actor.ShopID, id)
}

func (s *UserService) GetByID(ctx context.Context, shopID, id uuid.UUID) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("shop_id = ? AND id = ?", shopID, id).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: user %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &user, nil
}

// ListByRole returns the shop's active users with role. Unless strict, managers are
// listed alongside operators and cashiers since they can stand in for both.
func (s *UserService) ListByRole(ctx context.Context, shopID uuid.UUID, role models.Role, strict bool) ([]models.User, error) {
	roles := []models.Role{role}
	if !strict && (role == models.RoleOperator || role == models.RoleCashier) {
		roles = append(roles, models.RoleManager)
	}

	users := []models.User{}
	err := s.db.WithContext(ctx).
		Where("shop_id = ? AND role IN ? AND is_active = ?", shopID, roles, true).
		Order("name ASC").
		Find(&users).Error
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// SeedAdmin bootstraps an empty database with a shop and an admin account.
// It does nothing once any user exists or when no credentials are configured.
func (s *UserService) SeedAdmin(ctx context.Context, cfg config.SeedConfig) error {
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		return nil
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Count(&count).Error; err != nil {
		return fmt.Errorf("count users: %w", err)
	}
	if count > 0 {
		return nil
	}

	hash, err := utils.HashPassword(cfg.AdminPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		shop := models.Shop{Name: cfg.ShopName, CurrencySymbol: "S/"}
		if err := tx.Create(&shop).Error; err != nil {
			return fmt.Errorf("seed shop: %w", err)
		}
		admin := models.User{
			Email:    strings.ToLower(strings.TrimSpace(cfg.AdminEmail)),
			Password: hash,
			Name:     "Administrator",
			Role:     models.RoleAdmin,
			ShopID:   shop.ID,
			IsActive: true,
		}
		if err := tx.Create(&admin).Error; err != nil {
			return fmt.Errorf("seed admin: %w", err)
		}
		s.logger.Info("seeded admin user", zap.String("email", admin.Email), zap.String("shop_id", shop.ID.String()))
		return nil
	})
}
