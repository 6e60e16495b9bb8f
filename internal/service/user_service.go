package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/ignatzorin/freelance-market/internal/models"
	"github.com/ignatzorin/freelance-market/internal/pkg/apperror"
	"github.com/ignatzorin/freelance-market/internal/repository"
	"github.com/ignatzorin/freelance-market/internal/validation"
)

// UserStore описывает зависимости UserService от слоя хранилища.
type UserStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	UpdateProfile(ctx context.Context, user *models.User) error
	ListFreelancers(ctx context.Context, limit, offset int) ([]models.User, error)
	CountFreelancers(ctx context.Context) (int, error)
}

// UserService содержит бизнес-логику профилей пользователей.
type UserService struct {
	repo UserStore
}

// NewUserService создаёт сервис пользователей.
func NewUserService(repo UserStore) *UserService {
	return &UserService{repo: repo}
}

// UpdateProfileInput описывает редактируемые поля профиля.
type UpdateProfileInput struct {
	UserID           uuid.UUID
	Name             string
	Bio              *string
	HourlyRate       *float64
	Skills           []string
	Location         *string
	AvailableForHire *bool
}

// GetProfile возвращает пользователя по идентификатору.
func (s *UserService) GetProfile(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, apperror.ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// UpdateProfile обновляет профиль пользователя.
func (s *UserService) UpdateProfile(ctx context.Context, in UpdateProfileInput) (*models.User, error) {
	user, err := s.GetProfile(ctx, in.UserID)
	if err != nil {
		return nil, err
	}

	if err := validation.ValidateName(in.Name); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidateBio(in.Bio); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidateHourlyRate(in.HourlyRate); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidateSkills(in.Skills); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidateLocation(in.Location); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}

	user.Name = strings.TrimSpace(in.Name)
	user.Bio = in.Bio
	user.HourlyRate = in.HourlyRate
	user.Location = in.Location
	if in.Skills != nil {
		user.Skills = in.Skills
	}
	if in.AvailableForHire != nil {
		user.AvailableForHire = *in.AvailableForHire
	}

	if err := s.repo.UpdateProfile(ctx, user); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, apperror.ErrUserNotFound
		}
		return nil, err
	}

	return user, nil
}

// ListFreelancers возвращает публичные профили доступных фрилансеров.
func (s *UserService) ListFreelancers(ctx context.Context, limit, offset int) ([]models.PublicUser, int, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	users, err := s.repo.ListFreelancers(ctx, limit, offset)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.repo.CountFreelancers(ctx)
	if err != nil {
		return nil, 0, err
	}

	public := make([]models.PublicUser, len(users))
	for i := range users {
		public[i] = users[i].Public()
	}

	return public, total, nil
}
