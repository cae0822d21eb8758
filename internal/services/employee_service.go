package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/opal-spaces/opal-backend/internal/models"
)

// EmployeeService backs the administrative user-management panel. Role
// changes here are the only path that moves an account between USER and
// EMPLOYEE.
type EmployeeService struct {
	db *gorm.DB
}

func NewEmployeeService(db *gorm.DB) *EmployeeService {
	return &EmployeeService{db: db}
}

// FindUserByEmail looks up a non-admin account for the promotion panel.
func (s *EmployeeService) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).
		Where("email = ? AND role <> ?", email, models.RoleAdmin).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return &user, nil
}

func (s *EmployeeService) Promote(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return s.setRole(ctx, id, models.RoleEmployee)
}

func (s *EmployeeService) Demote(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return s.setRole(ctx, id, models.RoleUser)
}

// ListEmployees returns all EMPLOYEE accounts, newest first.
func (s *EmployeeService) ListEmployees(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := s.db.WithContext(ctx).
		Where("role = ?", models.RoleEmployee).
		Order("created_at DESC").
		Find(&users).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}
	return users, nil
}

func (s *EmployeeService) DeleteUser(ctx context.Context, id uuid.UUID) error {
	result := s.db.WithContext(ctx).Delete(&models.User{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete user: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (s *EmployeeService) setRole(ctx context.Context, id uuid.UUID, role string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	if err := s.db.WithContext(ctx).Model(&user).Update("role", role).Error; err != nil {
		return nil, fmt.Errorf("failed to update role: %w", err)
	}
	user.Role = role
	return &user, nil
}
