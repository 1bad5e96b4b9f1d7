package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/falconilham/gym-nexus-sub000/internal/clock"
	"github.com/falconilham/gym-nexus-sub000/internal/models"
	"github.com/falconilham/gym-nexus-sub000/internal/repository"
)

const DefaultMaxLogoBytes = 5 << 20

var logoExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".webp": true,
	".svg":  true,
}

// FileStore persists uploaded files and returns their public URL.
type FileStore interface {
	Save(ctx context.Context, dir, ext string, r io.Reader) (string, error)
	Delete(ctx context.Context, url string) error
}

type GymService struct {
	repo         repository.GymRepository
	files        FileStore
	activity     activityLogger
	maxLogoBytes int64
}

func NewGymService(repo repository.GymRepository, activity repository.ActivityLogRepository, files FileStore, maxLogoBytes int64) *GymService {
	if maxLogoBytes <= 0 {
		maxLogoBytes = DefaultMaxLogoBytes
	}
	return &GymService{
		repo:         repo,
		files:        files,
		activity:     activityLogger{repo: activity},
		maxLogoBytes: maxLogoBytes,
	}
}

func (s *GymService) Create(ctx context.Context, dto CreateGymDTO) (*models.Gym, error) {
	name := strings.TrimSpace(dto.Name)
	if name == "" {
		return nil, invalid("name is required")
	}
	if dto.Capacity < 0 {
		return nil, invalid("capacity cannot be negative")
	}
	slug, err := s.uniqueSlug(ctx, name)
	if err != nil {
		return nil, err
	}
	gym := &models.Gym{
		Name:         name,
		Slug:         slug,
		Address:      strings.TrimSpace(dto.Address),
		City:         strings.TrimSpace(dto.City),
		Phone:        strings.TrimSpace(dto.Phone),
		Email:        normalizeEmail(dto.Email),
		Website:      strings.TrimSpace(dto.Website),
		Capacity:     dto.Capacity,
		OpeningHours: strings.TrimSpace(dto.OpeningHours),
		Timezone:     dto.Timezone,
		IsActive:     true,
	}
	if gym.Timezone == "" {
		gym.Timezone = "UTC"
	}
	if _, ok := clock.Location(gym.Timezone); !ok {
		return nil, invalid("unknown timezone %q", gym.Timezone)
	}
	if err := s.repo.Create(ctx, gym); err != nil {
		return nil, mapRepoErr(err, "gym")
	}
	if err := s.activity.log(ctx, gym.ID, "gym.created", "gym", gym.ID, map[string]any{"name": gym.Name}); err != nil {
		return nil, err
	}
	return gym, nil
}

var slugInvalid = regexp.MustCompile(`[^a-z0-9]+`)

func slugify(name string) string {
	slug := strings.Trim(slugInvalid.ReplaceAllString(strings.ToLower(name), "-"), "-")
	if slug == "" {
		slug = "gym"
	}
	return slug
}

func (s *GymService) uniqueSlug(ctx context.Context, name string) (string, error) {
	base := slugify(name)
	slug := base
	for i := 2; ; i++ {
		exists, err := s.repo.SlugExists(ctx, slug)
		if err != nil {
			return "", err
		}
		if !exists {
			return slug, nil
		}
		slug = fmt.Sprintf("%s-%d", base, i)
	}
}

func (s *GymService) List(ctx context.Context, f repository.GymFilter) (PageResult[models.Gym], error) {
	items, total, err := s.repo.FindAll(ctx, f)
	if err != nil {
		return PageResult[models.Gym]{}, err
	}
	return newPageResult(items, total, f.Page), nil
}

func (s *GymService) Get(ctx context.Context, id uint) (*models.Gym, error) {
	gym, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapRepoErr(err, "gym")
	}
	return gym, nil
}

func (s *GymService) Update(ctx context.Context, id uint, dto UpdateGymDTO) (*models.Gym, error) {
	gym, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if dto.Name != nil {
		name := strings.TrimSpace(*dto.Name)
		if name == "" {
			return nil, invalid("name cannot be empty")
		}
		gym.Name = name
	}
	if dto.Address != nil {
		gym.Address = strings.TrimSpace(*dto.Address)
	}
	if dto.City != nil {
		gym.City = strings.TrimSpace(*dto.City)
	}
	if dto.Phone != nil {
		gym.Phone = strings.TrimSpace(*dto.Phone)
	}
	if dto.Email != nil {
		gym.Email = normalizeEmail(*dto.Email)
	}
	if dto.Website != nil {
		gym.Website = strings.TrimSpace(*dto.Website)
	}
	if dto.Capacity != nil {
		if *dto.Capacity < 0 {
			return nil, invalid("capacity cannot be negative")
		}
		gym.Capacity = *dto.Capacity
	}
	if dto.OpeningHours != nil {
		gym.OpeningHours = strings.TrimSpace(*dto.OpeningHours)
	}
	if dto.Timezone != nil {
		if _, ok := clock.Location(*dto.Timezone); !ok {
			return nil, invalid("unknown timezone %q", *dto.Timezone)
		}
		gym.Timezone = *dto.Timezone
	}
	if dto.IsActive != nil {
		gym.IsActive = *dto.IsActive
	}
	if err := s.repo.Update(ctx, gym); err != nil {
		return nil, mapRepoErr(err, "gym")
	}
	if err := s.activity.log(ctx, gym.ID, "gym.updated", "gym", gym.ID, nil); err != nil {
		return nil, err
	}
	return gym, nil
}

func (s *GymService) Delete(ctx context.Context, id uint) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return mapRepoErr(err, "gym")
	}
	return s.activity.log(ctx, id, "gym.deleted", "gym", id, nil)
}

// UploadLogo stores a new logo and points the gym at it; the previous file is removed.
func (s *GymService) UploadLogo(ctx context.Context, id uint, filename string, size int64, r io.Reader) (*models.Gym, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if !logoExtensions[ext] {
		return nil, invalid("logo must be one of .png .jpg .jpeg .webp .svg")
	}
	if size > s.maxLogoBytes {
		return nil, invalid("logo exceeds %d bytes", s.maxLogoBytes)
	}
	gym, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	url, err := s.files.Save(ctx, "gyms", ext, &cappedReader{r: r, remaining: s.maxLogoBytes})
	if err != nil {
		if errors.Is(err, ErrInvalidInput) {
			return nil, err
		}
		return nil, fmt.Errorf("store logo: %w", err)
	}
	previous := gym.LogoURL
	gym.LogoURL = url
	if err := s.repo.Update(ctx, gym); err != nil {
		_ = s.files.Delete(ctx, url)
		return nil, mapRepoErr(err, "gym")
	}
	if previous != "" {
		_ = s.files.Delete(ctx, previous)
	}
	if err := s.activity.log(ctx, gym.ID, "gym.logo_uploaded", "gym", gym.ID, map[string]any{"logoUrl": url}); err != nil {
		return nil, err
	}
	return gym, nil
}

// cappedReader fails once more than remaining bytes have been read.
type cappedReader struct {
	r         io.Reader
	remaining int64
}

func (c *cappedReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.remaining -= int64(n)
	if c.remaining < 0 {
		return n, invalid("logo is too large")
	}
	return n, err
}
