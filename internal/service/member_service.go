package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/falconilham/gym-nexus-sub000/internal/auth"
	"github.com/falconilham/gym-nexus-sub000/internal/clock"
	"github.com/falconilham/gym-nexus-sub000/internal/models"
	"github.com/falconilham/gym-nexus-sub000/internal/observability"
	"github.com/falconilham/gym-nexus-sub000/internal/repository"
)

type MemberService struct {
	tx       repository.Transactor
	gyms     repository.GymRepository
	users    repository.UserRepository
	members  repository.MemberRepository
	events   EventRecorder
	activity activityLogger
	clock    clock.Clock
}

func NewMemberService(
	tx repository.Transactor,
	gyms repository.GymRepository,
	users repository.UserRepository,
	members repository.MemberRepository,
	activity repository.ActivityLogRepository,
	events EventRecorder,
	clk clock.Clock,
) *MemberService {
	return &MemberService{
		tx:       tx,
		gyms:     gyms,
		users:    users,
		members:  members,
		events:   events,
		activity: activityLogger{repo: activity},
		clock:    clk,
	}
}

// Create registers a membership. A user account is created only when no user has the
// email yet; an existing membership of that user at the gym is a conflict.
func (s *MemberService) Create(ctx context.Context, gymID uint, dto CreateMemberDTO) (*models.Member, error) {
	email := normalizeEmail(dto.Email)
	if email == "" {
		return nil, invalid("email is required")
	}
	if dto.MembershipType == "" {
		dto.MembershipType = models.MembershipMonthly
	}
	now := s.clock.Now()
	start, expiry, err := membershipWindow(dto.MembershipType, dto.StartDate.ptr(), dto.ExpiryDate.ptr(), now)
	if err != nil {
		return nil, err
	}
	if _, err := s.gyms.FindByID(ctx, gymID); err != nil {
		return nil, mapRepoErr(err, "gym")
	}

	var member *models.Member
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		user, err := s.users.FindByEmail(ctx, email)
		switch {
		case errors.Is(err, repository.ErrNotFound):
			user, err = s.newUser(ctx, email, dto)
			if err != nil {
				return err
			}
		case err != nil:
			return err
		default:
			if _, err := s.members.FindByUserAndGym(ctx, user.ID, gymID); err == nil {
				return fmt.Errorf("%w: %s is already a member of this gym", ErrConflict, email)
			} else if !errors.Is(err, repository.ErrNotFound) {
				return err
			}
		}

		member = &models.Member{
			UserID:         user.ID,
			GymID:          gymID,
			MembershipType: dto.MembershipType,
			Status:         statusForExpiry(expiry, now),
			StartDate:      start,
			ExpiryDate:     expiry,
			QRCode:         uuid.NewString(),
			Notes:          strings.TrimSpace(dto.Notes),
		}
		if err := s.members.Create(ctx, member); err != nil {
			return mapRepoErr(err, "membership")
		}
		member.User = user
		return s.recordChange(ctx, member, "member.created", "membership.created", nil)
	})
	if err != nil {
		return nil, err
	}
	observability.RecordMembershipTransition("created")
	return member, nil
}

func (s *MemberService) newUser(ctx context.Context, email string, dto CreateMemberDTO) (*models.User, error) {
	firstName := strings.TrimSpace(dto.FirstName)
	if firstName == "" {
		return nil, invalid("firstName is required for a new user")
	}
	password := dto.Password
	if password == "" {
		password = auth.RandomPassword()
	}
	hash, err := hashPassword(password)
	if err != nil {
		return nil, err
	}
	user := &models.User{
		Email:        email,
		PasswordHash: hash,
		FirstName:    firstName,
		LastName:     strings.TrimSpace(dto.LastName),
		Phone:        strings.TrimSpace(dto.Phone),
		BirthDate:    dto.BirthDate.ptr(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, mapRepoErr(err, "user")
	}
	return user, nil
}

func (s *MemberService) List(ctx context.Context, gymID uint, f repository.MemberFilter) (PageResult[models.Member], error) {
	switch f.Status {
	case "", models.MemberStatusActive, models.MemberStatusSuspended, models.MemberStatusExpired, models.MemberStatusCancelled:
	default:
		return PageResult[models.Member]{}, invalid("unknown member status %q", f.Status)
	}
	items, total, err := s.members.List(ctx, gymID, f)
	if err != nil {
		return PageResult[models.Member]{}, err
	}
	return newPageResult(items, total, f.Page), nil
}

func (s *MemberService) Get(ctx context.Context, gymID, id uint) (*models.Member, error) {
	member, err := s.members.FindByID(ctx, gymID, id)
	if err != nil {
		return nil, mapRepoErr(err, "member")
	}
	return member, nil
}

// Update edits profile and membership fields. Changing the type without an explicit
// expiryDate recomputes expiry from the start date.
func (s *MemberService) Update(ctx context.Context, gymID, id uint, dto UpdateMemberDTO) (*models.Member, error) {
	var member *models.Member
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		current, err := s.members.FindByID(ctx, gymID, id)
		if err != nil {
			return mapRepoErr(err, "member")
		}
		member = current

		if err := s.applyProfile(ctx, member.User, dto); err != nil {
			return err
		}

		membershipType := member.MembershipType
		if dto.MembershipType != nil {
			membershipType = *dto.MembershipType
			if !models.ValidMembershipType(membershipType) {
				return invalid("unknown membership type %q", membershipType)
			}
		}
		start := member.StartDate
		if d := dto.StartDate.ptr(); d != nil {
			start = *d
		}
		expiry := member.ExpiryDate
		switch {
		case dto.ExpiryDate.ptr() != nil:
			expiry = *dto.ExpiryDate.ptr()
		case membershipType != member.MembershipType || dto.StartDate.ptr() != nil:
			if membershipType == models.MembershipCustom {
				return invalid("expiryDate is required for custom memberships")
			}
			expiry = addMonths(start, models.MembershipMonths(membershipType))
		}
		if !expiry.After(start) {
			return invalid("expiryDate must be after startDate")
		}

		member.MembershipType = membershipType
		member.StartDate = start
		member.ExpiryDate = expiry
		if dto.Notes != nil {
			member.Notes = strings.TrimSpace(*dto.Notes)
		}
		if member.Status == models.MemberStatusActive || member.Status == models.MemberStatusExpired {
			member.Status = statusForExpiry(member.ExpiryDate, s.clock.Now())
		}

		if err := s.members.Update(ctx, member); err != nil {
			return mapRepoErr(err, "member")
		}
		return s.recordChange(ctx, member, "member.updated", "membership.updated", nil)
	})
	if err != nil {
		return nil, err
	}
	return member, nil
}

func (s *MemberService) applyProfile(ctx context.Context, user *models.User, dto UpdateMemberDTO) error {
	if user == nil {
		return nil
	}
	changed := false
	if dto.FirstName != nil {
		name := strings.TrimSpace(*dto.FirstName)
		if name == "" {
			return invalid("firstName cannot be empty")
		}
		user.FirstName = name
		changed = true
	}
	if dto.LastName != nil {
		user.LastName = strings.TrimSpace(*dto.LastName)
		changed = true
	}
	if dto.Phone != nil {
		user.Phone = strings.TrimSpace(*dto.Phone)
		changed = true
	}
	if dto.BirthDate != nil {
		user.BirthDate = dto.BirthDate.ptr()
		changed = true
	}
	if !changed {
		return nil
	}
	return mapRepoErr(s.users.Update(ctx, user), "user")
}

func (s *MemberService) Delete(ctx context.Context, gymID, id uint) error {
	return s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		member, err := s.members.FindByID(ctx, gymID, id)
		if err != nil {
			return mapRepoErr(err, "member")
		}
		if err := s.members.Delete(ctx, gymID, id); err != nil {
			return mapRepoErr(err, "member")
		}
		return s.recordChange(ctx, member, "member.deleted", "membership.deleted", nil)
	})
}

func (s *MemberService) Suspend(ctx context.Context, gymID, id uint, dto SuspendMemberDTO) (*models.Member, error) {
	return s.transition(ctx, gymID, id, "suspended", func(m *models.Member, now time.Time) (map[string]any, error) {
		if err := suspend(m, dto.Days, dto.Until.ptr(), strings.TrimSpace(dto.Reason), now); err != nil {
			return nil, err
		}
		return map[string]any{"until": m.SuspensionEndDate, "reason": m.SuspensionReason}, nil
	})
}

func (s *MemberService) Reactivate(ctx context.Context, gymID, id uint) (*models.Member, error) {
	return s.transition(ctx, gymID, id, "reactivated", reactivateChange)
}

func (s *MemberService) Renew(ctx context.Context, gymID, id uint, dto RenewMemberDTO) (*models.Member, error) {
	return s.transition(ctx, gymID, id, "renewed", func(m *models.Member, now time.Time) (map[string]any, error) {
		previous := m.ExpiryDate
		if err := renew(m, dto.Months, dto.MembershipType, now); err != nil {
			return nil, err
		}
		return map[string]any{"previousExpiry": previous}, nil
	})
}

func (s *MemberService) Cancel(ctx context.Context, gymID, id uint) (*models.Member, error) {
	return s.transition(ctx, gymID, id, "cancelled", func(m *models.Member, _ time.Time) (map[string]any, error) {
		return nil, cancel(m)
	})
}

func reactivateChange(m *models.Member, now time.Time) (map[string]any, error) {
	frozen, err := reactivate(m, now)
	if err != nil {
		return nil, err
	}
	return map[string]any{"extendedDays": frozen}, nil
}

type memberChange func(m *models.Member, now time.Time) (map[string]any, error)

// transition applies change to a membership of gymID under a row lock.
func (s *MemberService) transition(ctx context.Context, gymID, id uint, kind string, change memberChange) (*models.Member, error) {
	var member *models.Member
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		scoped, err := s.members.FindByID(ctx, gymID, id)
		if err != nil {
			return mapRepoErr(err, "member")
		}
		member, err = s.applyLocked(ctx, scoped, kind, change)
		return err
	})
	if err != nil {
		return nil, err
	}
	observability.RecordMembershipTransition(kind)
	return member, nil
}

// applyLocked must run inside a transaction.
func (s *MemberService) applyLocked(ctx context.Context, m *models.Member, kind string, change memberChange) (*models.Member, error) {
	locked, err := s.members.Lock(ctx, m.ID)
	if err != nil {
		return nil, mapRepoErr(err, "member")
	}
	locked.User = m.User
	locked.Gym = m.Gym

	extra, err := change(locked, s.clock.Now())
	if err != nil {
		return nil, err
	}
	if err := s.members.Update(ctx, locked); err != nil {
		return nil, mapRepoErr(err, "member")
	}
	if err := s.recordChange(ctx, locked, "member."+kind, "membership."+kind, extra); err != nil {
		return nil, err
	}
	return locked, nil
}

func (s *MemberService) recordChange(ctx context.Context, m *models.Member, action, eventType string, extra map[string]any) error {
	metadata := map[string]any{"status": m.Status, "expiryDate": m.ExpiryDate}
	for k, v := range extra {
		metadata[k] = v
	}
	if err := s.activity.log(ctx, m.GymID, action, "member", m.ID, metadata); err != nil {
		return err
	}
	return s.events.Record(ctx, memberEvent(eventType, m, extra))
}

// ForUser lists every membership of a user, with gyms.
func (s *MemberService) ForUser(ctx context.Context, userID uint) ([]*models.Member, error) {
	members, err := s.members.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if members == nil {
		members = []*models.Member{}
	}
	return members, nil
}

// OwnedBy returns a membership only if it belongs to userID.
func (s *MemberService) OwnedBy(ctx context.Context, userID, memberID uint) (*models.Member, error) {
	members, err := s.ForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	for _, m := range members {
		if m.ID == memberID {
			return m, nil
		}
	}
	return nil, fmt.Errorf("%w: membership not found", ErrNotFound)
}

// QRPayload is what the member app renders as a QR code.
type QRPayload struct {
	MemberID   uint      `json:"memberId"`
	GymID      uint      `json:"gymId"`
	QRCode     string    `json:"qrCode"`
	Status     string    `json:"status"`
	ExpiryDate time.Time `json:"expiryDate"`
}

func (s *MemberService) QR(ctx context.Context, userID, memberID uint) (*QRPayload, error) {
	m, err := s.OwnedBy(ctx, userID, memberID)
	if err != nil {
		return nil, err
	}
	return &QRPayload{
		MemberID:   m.ID,
		GymID:      m.GymID,
		QRCode:     m.QRCode,
		Status:     m.Status,
		ExpiryDate: m.ExpiryDate,
	}, nil
}
