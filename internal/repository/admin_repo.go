package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/falconilham/gym-nexus-sub000/internal/models"
)

type AdminRepository interface {
	Create(ctx context.Context, admin *models.Admin) error
	FindByID(ctx context.Context, id uint) (*models.Admin, error)
	FindByEmail(ctx context.Context, email string) (*models.Admin, error)
	FindByGym(ctx context.Context, gymID uint, p Page) ([]*models.Admin, int64, error)
	CountSuperAdmins(ctx context.Context) (int64, error)
	Update(ctx context.Context, admin *models.Admin) error
	Delete(ctx context.Context, id uint) error
}

type adminRepo struct {
	db *gorm.DB
}

func NewAdminRepo(db *gorm.DB) AdminRepository {
	return &adminRepo{db: db}
}

func (r *adminRepo) Create(ctx context.Context, admin *models.Admin) error {
	return translate(conn(ctx, r.db).Create(admin).Error)
}

func (r *adminRepo) FindByID(ctx context.Context, id uint) (*models.Admin, error) {
	var admin models.Admin
	if err := conn(ctx, r.db).Preload("Gym").First(&admin, id).Error; err != nil {
		return nil, translate(err)
	}
	return &admin, nil
}

func (r *adminRepo) FindByEmail(ctx context.Context, email string) (*models.Admin, error) {
	var admin models.Admin
	err := conn(ctx, r.db).Where("LOWER(email) = ?", strings.ToLower(strings.TrimSpace(email))).First(&admin).Error
	if err != nil {
		return nil, translate(err)
	}
	return &admin, nil
}

func (r *adminRepo) FindByGym(ctx context.Context, gymID uint, p Page) ([]*models.Admin, int64, error) {
	q := conn(ctx, r.db).Model(&models.Admin{}).Where("gym_id = ?", gymID)
	var admins []*models.Admin
	total, err := listAndCount(q, p, "name ASC", &admins)
	return admins, total, translate(err)
}

func (r *adminRepo) CountSuperAdmins(ctx context.Context) (int64, error) {
	var count int64
	err := conn(ctx, r.db).Model(&models.Admin{}).Where("role = ?", models.RoleSuperAdmin).Count(&count).Error
	return count, translate(err)
}

func (r *adminRepo) Update(ctx context.Context, admin *models.Admin) error {
	return translate(conn(ctx, r.db).Omit("Gym").Save(admin).Error)
}

func (r *adminRepo) Delete(ctx context.Context, id uint) error {
	res := conn(ctx, r.db).Delete(&models.Admin{}, id)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
