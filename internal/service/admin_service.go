package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/falconilham/gym-nexus-sub000/internal/auth"
	"github.com/falconilham/gym-nexus-sub000/internal/clock"
	"github.com/falconilham/gym-nexus-sub000/internal/models"
	"github.com/falconilham/gym-nexus-sub000/internal/repository"
	"github.com/falconilham/gym-nexus-sub000/pkg/utils"
)

type TokenIssuer interface {
	Issue(c auth.Claims) (string, time.Time, error)
}

// Session is a signed token and the account it was issued for.
type Session[T any] struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	Account   *T        `json:"-"`
}

type AdminService struct {
	repo     repository.AdminRepository
	gyms     repository.GymRepository
	tokens   TokenIssuer
	activity activityLogger
	clock    clock.Clock
}

func NewAdminService(repo repository.AdminRepository, gyms repository.GymRepository, activity repository.ActivityLogRepository, tokens TokenIssuer, clk clock.Clock) *AdminService {
	return &AdminService{
		repo:     repo,
		gyms:     gyms,
		tokens:   tokens,
		activity: activityLogger{repo: activity},
		clock:    clk,
	}
}

func (s *AdminService) Login(ctx context.Context, dto LoginDTO) (*Session[models.Admin], error) {
	admin, err := s.repo.FindByEmail(ctx, normalizeEmail(dto.Email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, err
	}
	if !auth.CheckPassword(admin.PasswordHash, dto.Password) {
		return nil, ErrUnauthorized
	}
	if !admin.IsActive {
		return nil, forbidden("account is disabled")
	}

	token, exp, err := s.tokens.Issue(auth.Claims{
		Subject: admin.ID,
		Kind:    auth.KindAdmin,
		Role:    admin.Role,
		GymID:   admin.GymID,
	})
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	now := s.clock.Now()
	admin.LastLoginAt = &now
	if err := s.repo.Update(ctx, admin); err != nil {
		utils.Log.Warnf("admin %d: record last login: %v", admin.ID, err)
	}
	return &Session[models.Admin]{Token: token, ExpiresAt: exp, Account: admin}, nil
}

func (s *AdminService) Get(ctx context.Context, id uint) (*models.Admin, error) {
	admin, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapRepoErr(err, "admin")
	}
	return admin, nil
}

// GetInGym returns an admin only if it belongs to gymID.
func (s *AdminService) GetInGym(ctx context.Context, gymID, id uint) (*models.Admin, error) {
	admin, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if admin.GymID == nil || *admin.GymID != gymID {
		return nil, fmt.Errorf("%w: admin not found", ErrNotFound)
	}
	return admin, nil
}

func (s *AdminService) List(ctx context.Context, gymID uint, p repository.Page) (PageResult[models.Admin], error) {
	items, total, err := s.repo.FindByGym(ctx, gymID, p)
	if err != nil {
		return PageResult[models.Admin]{}, err
	}
	return newPageResult(items, total, p), nil
}

func (s *AdminService) Create(ctx context.Context, gymID uint, dto CreateAdminDTO) (*models.Admin, error) {
	role := dto.Role
	if role == "" {
		role = models.RoleStaff
	}
	if role != models.RoleAdmin && role != models.RoleStaff {
		return nil, invalid("role must be admin or staff")
	}
	name := strings.TrimSpace(dto.Name)
	if name == "" {
		return nil, invalid("name is required")
	}
	if _, err := s.gyms.FindByID(ctx, gymID); err != nil {
		return nil, mapRepoErr(err, "gym")
	}
	hash, err := hashPassword(dto.Password)
	if err != nil {
		return nil, err
	}
	admin := &models.Admin{
		GymID:        &gymID,
		Name:         name,
		Email:        normalizeEmail(dto.Email),
		PasswordHash: hash,
		Role:         role,
		IsActive:     true,
	}
	if err := s.repo.Create(ctx, admin); err != nil {
		return nil, mapRepoErr(err, "admin")
	}
	if err := s.activity.log(ctx, gymID, "admin.created", "admin", admin.ID, map[string]any{"role": role}); err != nil {
		return nil, err
	}
	return admin, nil
}

func (s *AdminService) Update(ctx context.Context, gymID, id uint, dto UpdateAdminDTO) (*models.Admin, error) {
	admin, err := s.GetInGym(ctx, gymID, id)
	if err != nil {
		return nil, err
	}
	if dto.Name != nil {
		name := strings.TrimSpace(*dto.Name)
		if name == "" {
			return nil, invalid("name cannot be empty")
		}
		admin.Name = name
	}
	if dto.Role != nil {
		if *dto.Role != models.RoleAdmin && *dto.Role != models.RoleStaff {
			return nil, invalid("role must be admin or staff")
		}
		admin.Role = *dto.Role
	}
	if dto.Password != nil {
		hash, err := hashPassword(*dto.Password)
		if err != nil {
			return nil, err
		}
		admin.PasswordHash = hash
	}
	if dto.IsActive != nil {
		if !*dto.IsActive && isSelf(ctx, admin.ID) {
			return nil, invalid("you cannot deactivate your own account")
		}
		admin.IsActive = *dto.IsActive
	}
	if err := s.repo.Update(ctx, admin); err != nil {
		return nil, mapRepoErr(err, "admin")
	}
	if err := s.activity.log(ctx, gymID, "admin.updated", "admin", admin.ID, nil); err != nil {
		return nil, err
	}
	return admin, nil
}

func (s *AdminService) Delete(ctx context.Context, gymID, id uint) error {
	if isSelf(ctx, id) {
		return invalid("you cannot delete your own account")
	}
	if _, err := s.GetInGym(ctx, gymID, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return mapRepoErr(err, "admin")
	}
	return s.activity.log(ctx, gymID, "admin.deleted", "admin", id, nil)
}

// EnsureSuperAdmin creates the first super admin when none exists. It reports whether
// an account was created.
func (s *AdminService) EnsureSuperAdmin(ctx context.Context, email, password string) (bool, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return false, nil
	}
	count, err := s.repo.CountSuperAdmins(ctx)
	if err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}
	hash, err := hashPassword(password)
	if err != nil {
		return false, err
	}
	admin := &models.Admin{
		Name:         "Super Admin",
		Email:        email,
		PasswordHash: hash,
		Role:         models.RoleSuperAdmin,
		IsActive:     true,
	}
	if err := s.repo.Create(ctx, admin); err != nil {
		return false, mapRepoErr(err, "admin")
	}
	return true, s.activity.log(ctx, 0, "admin.bootstrapped", "admin", admin.ID, map[string]any{"email": email})
}

func hashPassword(password string) (string, error) {
	hash, err := auth.HashPassword(password)
	if errors.Is(err, auth.ErrWeakPassword) {
		return "", invalid("%v", err)
	}
	return hash, err
}

func isSelf(ctx context.Context, adminID uint) bool {
	actor := ActorFrom(ctx)
	return actor.Type == models.ActorAdmin && actor.ID == adminID
}
