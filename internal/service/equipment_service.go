package service

import (
	"context"
	"strings"

	"github.com/falconilham/gym-nexus-sub000/internal/models"
	"github.com/falconilham/gym-nexus-sub000/internal/repository"
)

type EquipmentService struct {
	repo     repository.EquipmentRepository
	activity activityLogger
}

func NewEquipmentService(repo repository.EquipmentRepository, activity repository.ActivityLogRepository) *EquipmentService {
	return &EquipmentService{repo: repo, activity: activityLogger{repo: activity}}
}

func (s *EquipmentService) Create(ctx context.Context, gymID uint, dto CreateEquipmentDTO) (*models.Equipment, error) {
	item := &models.Equipment{
		GymID:             gymID,
		Name:              strings.TrimSpace(dto.Name),
		Category:          strings.TrimSpace(dto.Category),
		Brand:             strings.TrimSpace(dto.Brand),
		SerialNumber:      strings.TrimSpace(dto.SerialNumber),
		Quantity:          dto.Quantity,
		PurchaseDate:      dto.PurchaseDate.ptr(),
		LastMaintenanceAt: dto.LastMaintenanceAt,
		NextMaintenanceAt: dto.NextMaintenanceAt,
		Status:            dto.Status,
		Notes:             strings.TrimSpace(dto.Notes),
	}
	if item.Quantity == 0 {
		item.Quantity = 1
	}
	if item.Status == "" {
		item.Status = models.EquipmentOperational
	}
	if err := validateEquipment(item); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, item); err != nil {
		return nil, mapRepoErr(err, "equipment")
	}
	if err := s.activity.log(ctx, gymID, "equipment.created", "equipment", item.ID, nil); err != nil {
		return nil, err
	}
	return item, nil
}

func validateEquipment(item *models.Equipment) error {
	if item.Name == "" {
		return invalid("name is required")
	}
	if item.Quantity < 1 {
		return invalid("quantity must be at least 1")
	}
	if !models.ValidEquipmentStatus(item.Status) {
		return invalid("unknown equipment status %q", item.Status)
	}
	return nil
}

func (s *EquipmentService) List(ctx context.Context, gymID uint, f repository.EquipmentFilter) (PageResult[models.Equipment], error) {
	if f.Status != "" && !models.ValidEquipmentStatus(f.Status) {
		return PageResult[models.Equipment]{}, invalid("unknown equipment status %q", f.Status)
	}
	items, total, err := s.repo.List(ctx, gymID, f)
	if err != nil {
		return PageResult[models.Equipment]{}, err
	}
	return newPageResult(items, total, f.Page), nil
}

func (s *EquipmentService) Get(ctx context.Context, gymID, id uint) (*models.Equipment, error) {
	item, err := s.repo.FindByID(ctx, gymID, id)
	if err != nil {
		return nil, mapRepoErr(err, "equipment")
	}
	return item, nil
}

func (s *EquipmentService) Update(ctx context.Context, gymID, id uint, dto UpdateEquipmentDTO) (*models.Equipment, error) {
	item, err := s.Get(ctx, gymID, id)
	if err != nil {
		return nil, err
	}
	previousStatus := item.Status
	if dto.Name != nil {
		item.Name = strings.TrimSpace(*dto.Name)
	}
	if dto.Category != nil {
		item.Category = strings.TrimSpace(*dto.Category)
	}
	if dto.Brand != nil {
		item.Brand = strings.TrimSpace(*dto.Brand)
	}
	if dto.SerialNumber != nil {
		item.SerialNumber = strings.TrimSpace(*dto.SerialNumber)
	}
	if dto.Quantity != nil {
		item.Quantity = *dto.Quantity
	}
	if dto.PurchaseDate != nil {
		item.PurchaseDate = dto.PurchaseDate.ptr()
	}
	if dto.LastMaintenanceAt != nil {
		item.LastMaintenanceAt = dto.LastMaintenanceAt
	}
	if dto.NextMaintenanceAt != nil {
		item.NextMaintenanceAt = dto.NextMaintenanceAt
	}
	if dto.Status != nil {
		item.Status = *dto.Status
	}
	if dto.Notes != nil {
		item.Notes = strings.TrimSpace(*dto.Notes)
	}
	if err := validateEquipment(item); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, item); err != nil {
		return nil, mapRepoErr(err, "equipment")
	}
	var metadata map[string]any
	if item.Status != previousStatus {
		metadata = map[string]any{"from": previousStatus, "to": item.Status}
	}
	if err := s.activity.log(ctx, gymID, "equipment.updated", "equipment", item.ID, metadata); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *EquipmentService) Delete(ctx context.Context, gymID, id uint) error {
	if err := s.repo.Delete(ctx, gymID, id); err != nil {
		return mapRepoErr(err, "equipment")
	}
	return s.activity.log(ctx, gymID, "equipment.deleted", "equipment", id, nil)
}
