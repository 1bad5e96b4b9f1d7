package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/falconilham/gym-nexus-sub000/internal/auth"
	"github.com/falconilham/gym-nexus-sub000/internal/clock"
	"github.com/falconilham/gym-nexus-sub000/internal/models"
	"github.com/falconilham/gym-nexus-sub000/internal/repository"
)

const (
	LinkCodeTTL    = 15 * time.Minute
	linkCodeDigits = 6
	linkCodeDraws  = 5
)

// ErrLinkCodeInvalid is returned for unknown or expired Telegram link codes.
var ErrLinkCodeInvalid = fmt.Errorf("%w: link code is invalid or expired", ErrInvalidInput)

// UserService manages member accounts for the app and the bot.
type UserService struct {
	tx       repository.Transactor
	repo     repository.UserRepository
	tokens   TokenIssuer
	clock    clock.Clock
	drawCode func() (string, error)
}

func NewUserService(tx repository.Transactor, repo repository.UserRepository, tokens TokenIssuer, clk clock.Clock) *UserService {
	return &UserService{
		tx:       tx,
		repo:     repo,
		tokens:   tokens,
		clock:    clk,
		drawCode: func() (string, error) { return randomDigits(linkCodeDigits) },
	}
}

func (s *UserService) Register(ctx context.Context, dto RegisterUserDTO) (*Session[models.User], error) {
	email := normalizeEmail(dto.Email)
	firstName := strings.TrimSpace(dto.FirstName)
	if email == "" || firstName == "" {
		return nil, invalid("email and firstName are required")
	}
	hash, err := hashPassword(dto.Password)
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
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, mapRepoErr(err, "user")
	}
	return s.session(user)
}

func (s *UserService) Login(ctx context.Context, dto LoginDTO) (*Session[models.User], error) {
	user, err := s.repo.FindByEmail(ctx, normalizeEmail(dto.Email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, err
	}
	if !auth.CheckPassword(user.PasswordHash, dto.Password) {
		return nil, ErrUnauthorized
	}
	return s.session(user)
}

func (s *UserService) session(user *models.User) (*Session[models.User], error) {
	token, exp, err := s.tokens.Issue(auth.Claims{Subject: user.ID, Kind: auth.KindMember})
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &Session[models.User]{Token: token, ExpiresAt: exp, Account: user}, nil
}

func (s *UserService) Get(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapRepoErr(err, "user")
	}
	return user, nil
}

func (s *UserService) UpdateProfile(ctx context.Context, id uint, dto UpdateProfileDTO) (*models.User, error) {
	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if dto.FirstName != nil {
		name := strings.TrimSpace(*dto.FirstName)
		if name == "" {
			return nil, invalid("firstName cannot be empty")
		}
		user.FirstName = name
	}
	if dto.LastName != nil {
		user.LastName = strings.TrimSpace(*dto.LastName)
	}
	if dto.Phone != nil {
		user.Phone = strings.TrimSpace(*dto.Phone)
	}
	if dto.BirthDate != nil {
		user.BirthDate = dto.BirthDate.ptr()
	}
	if dto.Password != nil {
		hash, err := hashPassword(*dto.Password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hash
	}
	if err := s.repo.Update(ctx, user); err != nil {
		return nil, mapRepoErr(err, "user")
	}
	return user, nil
}

// LinkCode is a one-time code the member sends to the Telegram bot.
type LinkCode struct {
	Code      string    `json:"code"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// IssueTelegramLinkCode gives the user a fresh code no other user currently holds.
func (s *UserService) IssueTelegramLinkCode(ctx context.Context, id uint) (*LinkCode, error) {
	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	expires := s.clock.Now().Add(LinkCodeTTL)
	for i := 0; i < linkCodeDraws; i++ {
		code, err := s.drawCode()
		if err != nil {
			return nil, err
		}
		holder, err := s.repo.FindByLinkCode(ctx, code)
		switch {
		case err == nil && holder.ID != user.ID:
			continue
		case err != nil && !errors.Is(err, repository.ErrNotFound):
			return nil, err
		}

		user.TelegramLinkCode = code
		user.TelegramLinkExpiresAt = &expires
		err = s.repo.Update(ctx, user)
		if errors.Is(err, repository.ErrDuplicate) {
			// taken between the lookup and the write
			continue
		}
		if err != nil {
			return nil, mapRepoErr(err, "user")
		}
		return &LinkCode{Code: code, ExpiresAt: expires}, nil
	}
	return nil, fmt.Errorf("%w: no free link code after %d draws", ErrConflict, linkCodeDraws)
}

// LinkTelegram binds a Telegram account to the user owning code. A Telegram account
// linked to another user is moved.
func (s *UserService) LinkTelegram(ctx context.Context, code string, telegramID int64) (*models.User, error) {
	code = strings.TrimSpace(code)
	if len(code) != linkCodeDigits {
		return nil, ErrLinkCodeInvalid
	}
	var user *models.User
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		user, err = s.repo.FindByLinkCode(ctx, code)
		if errors.Is(err, repository.ErrNotFound) {
			return ErrLinkCodeInvalid
		}
		if err != nil {
			return err
		}
		if user.TelegramLinkExpiresAt == nil || !user.TelegramLinkExpiresAt.After(s.clock.Now()) {
			return ErrLinkCodeInvalid
		}

		previous, err := s.repo.FindByTelegramID(ctx, telegramID)
		switch {
		case err == nil && previous.ID != user.ID:
			previous.TelegramID = nil
			if err := s.repo.Update(ctx, previous); err != nil {
				return err
			}
		case err != nil && !errors.Is(err, repository.ErrNotFound):
			return err
		}

		user.TelegramID = &telegramID
		user.TelegramLinkCode = ""
		user.TelegramLinkExpiresAt = nil
		return mapRepoErr(s.repo.Update(ctx, user), "user")
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// ByTelegramID resolves the user linked to a Telegram account.
func (s *UserService) ByTelegramID(ctx context.Context, telegramID int64) (*models.User, error) {
	user, err := s.repo.FindByTelegramID(ctx, telegramID)
	if err != nil {
		return nil, mapRepoErr(err, "user")
	}
	return user, nil
}

func randomDigits(n int) (string, error) {
	limit := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(n)), nil)
	v, err := rand.Int(rand.Reader, limit)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", n, v), nil
}
