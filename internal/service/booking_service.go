package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/falconilham/gym-nexus-sub000/internal/clock"
	"github.com/falconilham/gym-nexus-sub000/internal/models"
	"github.com/falconilham/gym-nexus-sub000/internal/repository"
)

type BookingService struct {
	tx       repository.Transactor
	classes  repository.ClassRepository
	bookings repository.BookingRepository
	members  repository.MemberRepository
	activity activityLogger
	clock    clock.Clock
}

func NewBookingService(
	tx repository.Transactor,
	classes repository.ClassRepository,
	bookings repository.BookingRepository,
	members repository.MemberRepository,
	activity repository.ActivityLogRepository,
	clk clock.Clock,
) *BookingService {
	return &BookingService{
		tx:       tx,
		classes:  classes,
		bookings: bookings,
		members:  members,
		activity: activityLogger{repo: activity},
		clock:    clk,
	}
}

// Book reserves a seat for a member of gymID.
func (s *BookingService) Book(ctx context.Context, gymID, classID, memberID uint) (*models.Booking, error) {
	return s.book(ctx, classID, func(ctx context.Context, class *models.Class) (*models.Member, error) {
		if class.GymID != gymID {
			return nil, fmt.Errorf("%w: class not found", ErrNotFound)
		}
		member, err := s.members.FindByID(ctx, gymID, memberID)
		if err != nil {
			return nil, mapRepoErr(err, "member")
		}
		return member, nil
	})
}

// BookForUser books the user's membership at the class's gym.
func (s *BookingService) BookForUser(ctx context.Context, userID, classID uint) (*models.Booking, error) {
	return s.book(ctx, classID, func(ctx context.Context, class *models.Class) (*models.Member, error) {
		member, err := s.members.FindByUserAndGym(ctx, userID, class.GymID)
		if errors.Is(err, repository.ErrNotFound) {
			return nil, forbidden("you are not a member of this gym")
		}
		return member, err
	})
}

type memberResolver func(ctx context.Context, class *models.Class) (*models.Member, error)

// book counts seats while holding a row lock on the class.
func (s *BookingService) book(ctx context.Context, classID uint, resolve memberResolver) (*models.Booking, error) {
	var booking *models.Booking
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		class, err := s.classes.Lock(ctx, classID)
		if err != nil {
			return mapRepoErr(err, "class")
		}
		member, err := resolve(ctx, class)
		if err != nil {
			return err
		}

		now := s.clock.Now()
		if class.Status != models.ClassStatusScheduled {
			return invalid("class is %s", class.Status)
		}
		if !class.StartsAt.After(now) {
			return invalid("class has already started")
		}
		if reason := denyReason(member, now); reason != "" {
			return forbidden("membership cannot book classes (%s)", reason)
		}

		if _, err := s.bookings.FindActive(ctx, class.ID, member.ID); err == nil {
			return fmt.Errorf("%w: already booked", ErrConflict)
		} else if !errors.Is(err, repository.ErrNotFound) {
			return err
		}
		booked, err := s.bookings.CountActive(ctx, class.ID)
		if err != nil {
			return err
		}
		if booked >= int64(class.Capacity) {
			return ErrClassFull
		}

		booking = &models.Booking{ClassID: class.ID, MemberID: member.ID, Status: models.BookingStatusBooked}
		if err := s.bookings.Create(ctx, booking); err != nil {
			return mapRepoErr(err, "booking")
		}
		class.BookedCount = booked + 1
		booking.Class = class
		return s.activity.log(ctx, class.GymID, "booking.created", "booking", booking.ID,
			map[string]any{"classId": class.ID, "memberId": member.ID})
	})
	if err != nil {
		return nil, err
	}
	return booking, nil
}

func (s *BookingService) inGym(ctx context.Context, gymID, bookingID uint) (*models.Booking, error) {
	booking, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, mapRepoErr(err, "booking")
	}
	if booking.Class == nil || booking.Class.GymID != gymID {
		return nil, fmt.Errorf("%w: booking not found", ErrNotFound)
	}
	return booking, nil
}

func (s *BookingService) Cancel(ctx context.Context, gymID, bookingID uint) (*models.Booking, error) {
	booking, err := s.inGym(ctx, gymID, bookingID)
	if err != nil {
		return nil, err
	}
	return s.setStatus(ctx, booking, models.BookingStatusCancelled)
}

// CancelForUser cancels a booking owned by one of the user's memberships.
func (s *BookingService) CancelForUser(ctx context.Context, userID, bookingID uint) (*models.Booking, error) {
	booking, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, mapRepoErr(err, "booking")
	}
	if booking.Class == nil {
		return nil, fmt.Errorf("%w: booking not found", ErrNotFound)
	}
	member, err := s.members.FindByUserAndGym(ctx, userID, booking.Class.GymID)
	if err != nil || member.ID != booking.MemberID {
		return nil, fmt.Errorf("%w: booking not found", ErrNotFound)
	}
	return s.setStatus(ctx, booking, models.BookingStatusCancelled)
}

func (s *BookingService) MarkAttended(ctx context.Context, gymID, bookingID uint) (*models.Booking, error) {
	booking, err := s.inGym(ctx, gymID, bookingID)
	if err != nil {
		return nil, err
	}
	return s.setStatus(ctx, booking, models.BookingStatusAttended)
}

func (s *BookingService) setStatus(ctx context.Context, booking *models.Booking, status string) (*models.Booking, error) {
	if booking.Status != models.BookingStatusBooked {
		return nil, invalid("booking is already %s", booking.Status)
	}
	booking.Status = status
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.bookings.Update(ctx, booking); err != nil {
			return mapRepoErr(err, "booking")
		}
		return s.activity.log(ctx, booking.Class.GymID, "booking."+status, "booking", booking.ID,
			map[string]any{"classId": booking.ClassID, "memberId": booking.MemberID})
	})
	if err != nil {
		return nil, err
	}
	return booking, nil
}

func (s *BookingService) ListByClass(ctx context.Context, gymID, classID uint) ([]*models.Booking, error) {
	if _, err := s.classes.FindByID(ctx, gymID, classID); err != nil {
		return nil, mapRepoErr(err, "class")
	}
	bookings, err := s.bookings.ListByClass(ctx, classID)
	if err != nil {
		return nil, err
	}
	if bookings == nil {
		bookings = []*models.Booking{}
	}
	return bookings, nil
}

func (s *BookingService) ListByMember(ctx context.Context, gymID, memberID uint, p repository.Page) (PageResult[models.Booking], error) {
	if _, err := s.members.FindByID(ctx, gymID, memberID); err != nil {
		return PageResult[models.Booking]{}, mapRepoErr(err, "member")
	}
	items, total, err := s.bookings.ListByMembers(ctx, []uint{memberID}, p)
	if err != nil {
		return PageResult[models.Booking]{}, err
	}
	return newPageResult(items, total, p), nil
}

// ListForUser lists bookings across all of the user's memberships.
func (s *BookingService) ListForUser(ctx context.Context, userID uint, p repository.Page) (PageResult[models.Booking], error) {
	memberships, err := s.members.FindByUser(ctx, userID)
	if err != nil {
		return PageResult[models.Booking]{}, err
	}
	if len(memberships) == 0 {
		return newPageResult[models.Booking](nil, 0, p), nil
	}
	items, total, err := s.bookings.ListByMembers(ctx, memberIDs(memberships), p)
	if err != nil {
		return PageResult[models.Booking]{}, err
	}
	return newPageResult(items, total, p), nil
}
