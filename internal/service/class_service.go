package service

import (
	"context"
	"errors"
	"strings"

	"github.com/falconilham/gym-nexus-sub000/internal/clock"
	"github.com/falconilham/gym-nexus-sub000/internal/models"
	"github.com/falconilham/gym-nexus-sub000/internal/repository"
)

type ClassService struct {
	tx       repository.Transactor
	repo     repository.ClassRepository
	trainers repository.TrainerRepository
	bookings repository.BookingRepository
	activity activityLogger
	clock    clock.Clock
}

func NewClassService(
	tx repository.Transactor,
	repo repository.ClassRepository,
	trainers repository.TrainerRepository,
	bookings repository.BookingRepository,
	activity repository.ActivityLogRepository,
	clk clock.Clock,
) *ClassService {
	return &ClassService{
		tx:       tx,
		repo:     repo,
		trainers: trainers,
		bookings: bookings,
		activity: activityLogger{repo: activity},
		clock:    clk,
	}
}

func (s *ClassService) Create(ctx context.Context, gymID uint, dto CreateClassDTO) (*models.Class, error) {
	class := &models.Class{
		GymID:       gymID,
		TrainerID:   dto.TrainerID,
		Name:        strings.TrimSpace(dto.Name),
		Description: strings.TrimSpace(dto.Description),
		Room:        strings.TrimSpace(dto.Room),
		StartsAt:    dto.StartsAt.UTC(),
		EndsAt:      dto.EndsAt.UTC(),
		Capacity:    dto.Capacity,
		Status:      models.ClassStatusScheduled,
	}
	if err := s.validate(ctx, class); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, class); err != nil {
		return nil, mapRepoErr(err, "class")
	}
	if err := s.activity.log(ctx, gymID, "class.created", "class", class.ID, map[string]any{"startsAt": class.StartsAt}); err != nil {
		return nil, err
	}
	return class, nil
}

func (s *ClassService) validate(ctx context.Context, class *models.Class) error {
	if class.Name == "" {
		return invalid("name is required")
	}
	if !class.EndsAt.After(class.StartsAt) {
		return invalid("endsAt must be after startsAt")
	}
	if class.Capacity <= 0 {
		return invalid("capacity must be positive")
	}
	if class.TrainerID != nil {
		trainer, err := s.trainers.FindByID(ctx, class.GymID, *class.TrainerID)
		if errors.Is(err, repository.ErrNotFound) {
			return invalid("trainer %d does not belong to this gym", *class.TrainerID)
		}
		if err != nil {
			return err
		}
		class.Trainer = trainer
	}
	return nil
}

func (s *ClassService) List(ctx context.Context, gymID uint, f repository.ClassFilter) (PageResult[models.Class], error) {
	return s.ListForGyms(ctx, []uint{gymID}, f)
}

// ListForGyms lists classes across several gyms, e.g. every gym a member belongs to.
func (s *ClassService) ListForGyms(ctx context.Context, gymIDs []uint, f repository.ClassFilter) (PageResult[models.Class], error) {
	if f.From != nil && f.To != nil && !f.To.After(*f.From) {
		return PageResult[models.Class]{}, invalid("to must be after from")
	}
	if len(gymIDs) == 0 {
		return newPageResult[models.Class](nil, 0, f.Page), nil
	}
	items, total, err := s.repo.List(ctx, gymIDs, f)
	if err != nil {
		return PageResult[models.Class]{}, err
	}
	return newPageResult(items, total, f.Page), nil
}

func (s *ClassService) Get(ctx context.Context, gymID, id uint) (*models.Class, error) {
	class, err := s.repo.FindByID(ctx, gymID, id)
	if err != nil {
		return nil, mapRepoErr(err, "class")
	}
	return class, nil
}

func (s *ClassService) Update(ctx context.Context, gymID, id uint, dto UpdateClassDTO) (*models.Class, error) {
	var class *models.Class
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		if class, err = s.Get(ctx, gymID, id); err != nil {
			return err
		}
		if _, err := s.repo.Lock(ctx, id); err != nil {
			return mapRepoErr(err, "class")
		}
		if class.Status == models.ClassStatusCancelled {
			return invalid("cancelled classes cannot be edited")
		}
		if dto.Name != nil {
			class.Name = strings.TrimSpace(*dto.Name)
		}
		if dto.Description != nil {
			class.Description = strings.TrimSpace(*dto.Description)
		}
		if dto.Room != nil {
			class.Room = strings.TrimSpace(*dto.Room)
		}
		if dto.TrainerID != nil {
			trainerID := *dto.TrainerID
			class.TrainerID = &trainerID
			if trainerID == 0 {
				class.TrainerID = nil
			}
			class.Trainer = nil
		}
		if dto.StartsAt != nil {
			class.StartsAt = dto.StartsAt.UTC()
		}
		if dto.EndsAt != nil {
			class.EndsAt = dto.EndsAt.UTC()
		}
		if dto.Capacity != nil {
			class.Capacity = *dto.Capacity
		}
		if err := s.validate(ctx, class); err != nil {
			return err
		}
		booked, err := s.bookings.CountActive(ctx, id)
		if err != nil {
			return err
		}
		if int64(class.Capacity) < booked {
			return invalid("capacity %d is below the %d existing bookings", class.Capacity, booked)
		}
		class.BookedCount = booked
		if err := s.repo.Update(ctx, class); err != nil {
			return mapRepoErr(err, "class")
		}
		return s.activity.log(ctx, gymID, "class.updated", "class", class.ID, nil)
	})
	if err != nil {
		return nil, err
	}
	return class, nil
}

// Cancel marks the class cancelled and cancels its active bookings.
func (s *ClassService) Cancel(ctx context.Context, gymID, id uint) (*models.Class, error) {
	var class *models.Class
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		if class, err = s.Get(ctx, gymID, id); err != nil {
			return err
		}
		if _, err := s.repo.Lock(ctx, id); err != nil {
			return mapRepoErr(err, "class")
		}
		if class.Status == models.ClassStatusCancelled {
			return invalid("class is already cancelled")
		}
		class.Status = models.ClassStatusCancelled
		if err := s.repo.Update(ctx, class); err != nil {
			return mapRepoErr(err, "class")
		}
		cancelled, err := s.bookings.CancelByClass(ctx, id)
		if err != nil {
			return err
		}
		class.BookedCount = 0
		return s.activity.log(ctx, gymID, "class.cancelled", "class", id, map[string]any{"bookingsCancelled": cancelled})
	})
	if err != nil {
		return nil, err
	}
	return class, nil
}

func (s *ClassService) Delete(ctx context.Context, gymID, id uint) error {
	return s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Delete(ctx, gymID, id); err != nil {
			return mapRepoErr(err, "class")
		}
		if _, err := s.bookings.CancelByClass(ctx, id); err != nil {
			return err
		}
		return s.activity.log(ctx, gymID, "class.deleted", "class", id, nil)
	})
}
