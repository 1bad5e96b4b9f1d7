package service

import (
	"context"
	"strings"

	"github.com/falconilham/gym-nexus-sub000/internal/models"
	"github.com/falconilham/gym-nexus-sub000/internal/repository"
)

type TrainerService struct {
	repo        repository.TrainerRepository
	specialties repository.SpecialtyRepository
	activity    activityLogger
}

func NewTrainerService(repo repository.TrainerRepository, specialties repository.SpecialtyRepository, activity repository.ActivityLogRepository) *TrainerService {
	return &TrainerService{repo: repo, specialties: specialties, activity: activityLogger{repo: activity}}
}

func (s *TrainerService) Create(ctx context.Context, gymID uint, dto CreateTrainerDTO) (*models.Trainer, error) {
	firstName := strings.TrimSpace(dto.FirstName)
	if firstName == "" {
		return nil, invalid("firstName is required")
	}
	if dto.HourlyRate < 0 {
		return nil, invalid("hourlyRate cannot be negative")
	}
	specialties, err := s.resolveSpecialties(ctx, dto.SpecialtyIDs)
	if err != nil {
		return nil, err
	}
	trainer := &models.Trainer{
		GymID:       gymID,
		FirstName:   firstName,
		LastName:    strings.TrimSpace(dto.LastName),
		Email:       normalizeEmail(dto.Email),
		Phone:       strings.TrimSpace(dto.Phone),
		Bio:         strings.TrimSpace(dto.Bio),
		HourlyRate:  dto.HourlyRate,
		IsActive:    true,
		Specialties: specialties,
	}
	if err := s.repo.Create(ctx, trainer); err != nil {
		return nil, mapRepoErr(err, "trainer")
	}
	if err := s.activity.log(ctx, gymID, "trainer.created", "trainer", trainer.ID, nil); err != nil {
		return nil, err
	}
	return trainer, nil
}

// resolveSpecialties loads the given ids, failing on any unknown id.
func (s *TrainerService) resolveSpecialties(ctx context.Context, ids []uint) ([]models.Specialty, error) {
	if len(ids) == 0 {
		return []models.Specialty{}, nil
	}
	unique := make(map[uint]struct{}, len(ids))
	for _, id := range ids {
		unique[id] = struct{}{}
	}
	found, err := s.specialties.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	if len(found) != len(unique) {
		return nil, invalid("unknown specialty id in %v", ids)
	}
	return found, nil
}

func (s *TrainerService) List(ctx context.Context, gymID uint, f repository.TrainerFilter) (PageResult[models.Trainer], error) {
	items, total, err := s.repo.List(ctx, gymID, f)
	if err != nil {
		return PageResult[models.Trainer]{}, err
	}
	return newPageResult(items, total, f.Page), nil
}

func (s *TrainerService) Get(ctx context.Context, gymID, id uint) (*models.Trainer, error) {
	trainer, err := s.repo.FindByID(ctx, gymID, id)
	if err != nil {
		return nil, mapRepoErr(err, "trainer")
	}
	return trainer, nil
}

func (s *TrainerService) Update(ctx context.Context, gymID, id uint, dto UpdateTrainerDTO) (*models.Trainer, error) {
	trainer, err := s.Get(ctx, gymID, id)
	if err != nil {
		return nil, err
	}
	if dto.FirstName != nil {
		name := strings.TrimSpace(*dto.FirstName)
		if name == "" {
			return nil, invalid("firstName cannot be empty")
		}
		trainer.FirstName = name
	}
	if dto.LastName != nil {
		trainer.LastName = strings.TrimSpace(*dto.LastName)
	}
	if dto.Email != nil {
		trainer.Email = normalizeEmail(*dto.Email)
	}
	if dto.Phone != nil {
		trainer.Phone = strings.TrimSpace(*dto.Phone)
	}
	if dto.Bio != nil {
		trainer.Bio = strings.TrimSpace(*dto.Bio)
	}
	if dto.HourlyRate != nil {
		if *dto.HourlyRate < 0 {
			return nil, invalid("hourlyRate cannot be negative")
		}
		trainer.HourlyRate = *dto.HourlyRate
	}
	if dto.IsActive != nil {
		trainer.IsActive = *dto.IsActive
	}

	var specialties []models.Specialty
	if dto.SpecialtyIDs != nil {
		if specialties, err = s.resolveSpecialties(ctx, *dto.SpecialtyIDs); err != nil {
			return nil, err
		}
		trainer.Specialties = specialties
	}
	if err := s.repo.Update(ctx, trainer, specialties); err != nil {
		return nil, mapRepoErr(err, "trainer")
	}
	if err := s.activity.log(ctx, gymID, "trainer.updated", "trainer", trainer.ID, nil); err != nil {
		return nil, err
	}
	return trainer, nil
}

func (s *TrainerService) Delete(ctx context.Context, gymID, id uint) error {
	if err := s.repo.Delete(ctx, gymID, id); err != nil {
		return mapRepoErr(err, "trainer")
	}
	return s.activity.log(ctx, gymID, "trainer.deleted", "trainer", id, nil)
}

type SpecialtyService struct {
	repo repository.SpecialtyRepository
}

func NewSpecialtyService(repo repository.SpecialtyRepository) *SpecialtyService {
	return &SpecialtyService{repo: repo}
}

func (s *SpecialtyService) List(ctx context.Context) ([]*models.Specialty, error) {
	return s.repo.FindAll(ctx)
}

func (s *SpecialtyService) Create(ctx context.Context, dto CreateSpecialtyDTO) (*models.Specialty, error) {
	name := strings.TrimSpace(dto.Name)
	if name == "" {
		return nil, invalid("name is required")
	}
	specialty := &models.Specialty{Name: name, Description: strings.TrimSpace(dto.Description)}
	if err := s.repo.Create(ctx, specialty); err != nil {
		return nil, mapRepoErr(err, "specialty")
	}
	return specialty, nil
}

func (s *SpecialtyService) Delete(ctx context.Context, id uint) error {
	return mapRepoErr(s.repo.Delete(ctx, id), "specialty")
}
