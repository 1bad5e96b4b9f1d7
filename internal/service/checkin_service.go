package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/falconilham/gym-nexus-sub000/internal/clock"
	"github.com/falconilham/gym-nexus-sub000/internal/models"
	"github.com/falconilham/gym-nexus-sub000/internal/observability"
	"github.com/falconilham/gym-nexus-sub000/internal/repository"
)

const (
	ActionCheckIn  = "checkin"
	ActionCheckOut = "checkout"
	ActionDenied   = "denied"
)

const (
	DenyGymInactive         = "gym_inactive"
	DenyMembershipSuspended = "membership_suspended"
	DenyMembershipCancelled = "membership_cancelled"
	DenyMembershipExpired   = "membership_expired"
	DenyGymFull             = "gym_full"
)

const DefaultCheckInWindow = 12 * time.Hour

// CheckInResult is the outcome of one scan. Denied scans are results, not errors.
type CheckInResult struct {
	Action  string          `json:"action"`
	CheckIn *models.CheckIn `json:"checkIn"`
	Member  *models.Member  `json:"member"`
}

func (r *CheckInResult) Denied() bool {
	return r.Action == ActionDenied
}

type CheckInService struct {
	tx       repository.Transactor
	gyms     repository.GymRepository
	members  repository.MemberRepository
	checkIns repository.CheckInRepository
	events   EventRecorder
	activity activityLogger
	clock    clock.Clock
	window   time.Duration
}

func NewCheckInService(
	tx repository.Transactor,
	gyms repository.GymRepository,
	members repository.MemberRepository,
	checkIns repository.CheckInRepository,
	activity repository.ActivityLogRepository,
	events EventRecorder,
	clk clock.Clock,
	window time.Duration,
) *CheckInService {
	if window <= 0 {
		window = DefaultCheckInWindow
	}
	return &CheckInService{
		tx:       tx,
		gyms:     gyms,
		members:  members,
		checkIns: checkIns,
		events:   events,
		activity: activityLogger{repo: activity},
		clock:    clk,
		window:   window,
	}
}

// Scan toggles the member identified by a QR payload in or out of the gym.
func (s *CheckInService) Scan(ctx context.Context, gymID uint, qrCode string) (*CheckInResult, error) {
	qrCode = strings.TrimSpace(qrCode)
	if qrCode == "" {
		return nil, invalid("qrCode is required")
	}
	member, err := s.members.FindByQRCode(ctx, gymID, qrCode)
	if err != nil {
		return nil, mapRepoErr(err, "member")
	}
	return s.toggle(ctx, gymID, member, models.CheckInMethodQR)
}

// Manual is the front-desk variant of Scan.
func (s *CheckInService) Manual(ctx context.Context, gymID, memberID uint) (*CheckInResult, error) {
	member, err := s.members.FindByID(ctx, gymID, memberID)
	if err != nil {
		return nil, mapRepoErr(err, "member")
	}
	return s.toggle(ctx, gymID, member, models.CheckInMethodManual)
}

func (s *CheckInService) toggle(ctx context.Context, gymID uint, member *models.Member, method string) (*CheckInResult, error) {
	gym, err := s.gyms.FindByID(ctx, gymID)
	if err != nil {
		return nil, mapRepoErr(err, "gym")
	}

	var result *CheckInResult
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		locked, err := s.members.Lock(ctx, member.ID)
		if err != nil {
			return mapRepoErr(err, "member")
		}
		locked.User = member.User
		now := s.clock.Now()
		since := now.Add(-s.window)

		reason := denyReason(locked, now)
		if !gym.IsActive {
			reason = DenyGymInactive
		}

		if reason == "" {
			open, err := s.checkIns.FindOpenSession(ctx, locked.ID, since)
			switch {
			case err == nil:
				open.CheckOutTime = &now
				if err := s.checkIns.Update(ctx, open); err != nil {
					return fmt.Errorf("close session: %w", err)
				}
				result = &CheckInResult{Action: ActionCheckOut, CheckIn: open, Member: locked}
				return s.record(ctx, result, "")
			case !errors.Is(err, repository.ErrNotFound):
				return fmt.Errorf("find open session: %w", err)
			}

			if gym.Capacity > 0 {
				inside, err := s.checkIns.CountInside(ctx, gymID, since)
				if err != nil {
					return fmt.Errorf("count inside: %w", err)
				}
				if inside >= int64(gym.Capacity) {
					reason = DenyGymFull
				}
			}
		}

		row := &models.CheckIn{
			MemberID:    locked.ID,
			GymID:       gymID,
			CheckInTime: now,
			Status:      models.CheckInGranted,
			Method:      method,
		}
		result = &CheckInResult{Action: ActionCheckIn, CheckIn: row, Member: locked}
		if reason != "" {
			row.Status = models.CheckInDenied
			row.DenyReason = reason
			result.Action = ActionDenied
		}
		if err := s.checkIns.Create(ctx, row); err != nil {
			return fmt.Errorf("insert check-in: %w", err)
		}
		return s.record(ctx, result, reason)
	})
	if err != nil {
		return nil, err
	}

	observability.RecordCheckIn(result.Action, result.CheckIn.DenyReason)
	return result, nil
}

func (s *CheckInService) record(ctx context.Context, r *CheckInResult, reason string) error {
	eventType := "checkin.granted"
	switch r.Action {
	case ActionCheckOut:
		eventType = "checkin.checkout"
	case ActionDenied:
		eventType = "checkin.denied"
	}

	metadata := map[string]any{
		"memberId": r.Member.ID,
		"method":   r.CheckIn.Method,
	}
	if reason != "" {
		metadata["reason"] = reason
	}
	if err := s.activity.log(ctx, r.CheckIn.GymID, eventType, "checkin", r.CheckIn.ID, metadata); err != nil {
		return err
	}

	payload := map[string]any{
		"checkInId":    r.CheckIn.ID,
		"memberId":     r.Member.ID,
		"userId":       r.Member.UserID,
		"gymId":        r.CheckIn.GymID,
		"status":       r.CheckIn.Status,
		"method":       r.CheckIn.Method,
		"checkInTime":  r.CheckIn.CheckInTime,
		"checkOutTime": r.CheckIn.CheckOutTime,
	}
	if reason != "" {
		payload["reason"] = reason
	}
	return s.events.Record(ctx, Event{
		AggregateType: "checkin",
		AggregateID:   r.CheckIn.ID,
		Type:          eventType,
		Topic:         TopicCheckIns,
		Key:           fmt.Sprintf("%d", r.Member.ID),
		Payload:       payload,
	})
}

// List returns check-ins of a gym, newest first.
func (s *CheckInService) List(ctx context.Context, gymID uint, f repository.CheckInFilter) (PageResult[models.CheckIn], error) {
	if f.Status != "" && f.Status != models.CheckInGranted && f.Status != models.CheckInDenied {
		return PageResult[models.CheckIn]{}, invalid("unknown check-in status %q", f.Status)
	}
	items, total, err := s.checkIns.List(ctx, gymID, f)
	if err != nil {
		return PageResult[models.CheckIn]{}, err
	}
	return newPageResult(items, total, f.Page), nil
}

// Inside lists the open sessions of a gym within the check-in window.
func (s *CheckInService) Inside(ctx context.Context, gymID uint) ([]*models.CheckIn, error) {
	return s.checkIns.ListInside(ctx, gymID, s.clock.Now().Add(-s.window))
}

// MemberHistory lists the check-ins of one membership.
func (s *CheckInService) MemberHistory(ctx context.Context, gymID, memberID uint, p repository.Page) (PageResult[models.CheckIn], error) {
	if _, err := s.members.FindByID(ctx, gymID, memberID); err != nil {
		return PageResult[models.CheckIn]{}, mapRepoErr(err, "member")
	}
	return s.List(ctx, gymID, repository.CheckInFilter{Page: p, MemberID: memberID})
}

// UserHistory lists check-ins across every membership of a user.
func (s *CheckInService) UserHistory(ctx context.Context, userID uint, p repository.Page) (PageResult[models.CheckIn], error) {
	memberships, err := s.members.FindByUser(ctx, userID)
	if err != nil {
		return PageResult[models.CheckIn]{}, err
	}
	if len(memberships) == 0 {
		return newPageResult[models.CheckIn](nil, 0, p), nil
	}
	items, total, err := s.checkIns.ListByMembers(ctx, memberIDs(memberships), p)
	if err != nil {
		return PageResult[models.CheckIn]{}, err
	}
	return newPageResult(items, total, p), nil
}

func memberIDs(members []*models.Member) []uint {
	ids := make([]uint, 0, len(members))
	for _, m := range members {
		ids = append(ids, m.ID)
	}
	return ids
}
