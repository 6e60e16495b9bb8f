package service

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/google/uuid"

	"github.com/ignatzorin/freelance-market/internal/logger"
	"github.com/ignatzorin/freelance-market/internal/models"
	"github.com/ignatzorin/freelance-market/internal/pkg/apperror"
	"github.com/ignatzorin/freelance-market/internal/repository"
	"github.com/ignatzorin/freelance-market/internal/validation"
)

// AuthUserRepository описывает зависимости AuthService от слоя хранилища.
type AuthUserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByWalletAddress(ctx context.Context, address string) (*models.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	UpdateLastActiveAt(ctx context.Context, userID uuid.UUID) error
}

// AuthService инкапсулирует бизнес-логику регистрации и аутентификации.
type AuthService struct {
	repo         AuthUserRepository
	tokenManager *TokenManager
}

// RegisterInput содержит данные пользователя при регистрации.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Role     string
}

// WalletRegisterInput содержит данные при регистрации через кошелёк.
type WalletRegisterInput struct {
	WalletAddress string
	Name          string
	Role          string
}

// AuthResult возвращает итог регистрации или авторизации.
type AuthResult struct {
	User      *models.User
	TokenPair *TokenPair
}

// NewAuthService создаёт сервис аутентификации.
func NewAuthService(repo AuthUserRepository, tokenManager *TokenManager) *AuthService {
	return &AuthService{
		repo:         repo,
		tokenManager: tokenManager,
	}
}

// Register создаёт нового пользователя по email и паролю.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	if err := validation.ValidateEmail(in.Email); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidatePassword(in.Password); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidateName(in.Name); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}

	role, err := normalizeRole(in.Role)
	if err != nil {
		return nil, err
	}

	passHash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось захешировать пароль")
	}

	email := strings.ToLower(strings.TrimSpace(in.Email))
	hash := string(passHash)

	user := &models.User{
		Name:         strings.TrimSpace(in.Name),
		Email:        &email,
		PasswordHash: &hash,
		Role:         role,
		Skills:       []string{},
	}

	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrUserDuplicate) {
			return nil, apperror.ErrEmailTaken
		}
		return nil, err
	}

	return s.issueTokens(user)
}

// Login проверяет учётные данные и возвращает токены.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	if err := validation.ValidateEmail(email); err != nil {
		return nil, apperror.ErrInvalidCredentials
	}

	user, err := s.repo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, apperror.ErrInvalidCredentials
		}
		return nil, err
	}

	if user.PasswordHash == nil {
		// Кошельковый аккаунт без пароля.
		return nil, apperror.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(password)); err != nil {
		return nil, apperror.ErrInvalidCredentials
	}

	s.touchLastActive(ctx, user.ID)

	return s.issueTokens(user)
}

// RegisterWallet создаёт пользователя по адресу кошелька. Подпись не
// проверяется: владение адресом подтверждает фронтенд через провайдера.
func (s *AuthService) RegisterWallet(ctx context.Context, in WalletRegisterInput) (*AuthResult, error) {
	address := NormalizeWalletAddress(in.WalletAddress)
	if err := validation.ValidateWalletAddress(address); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidateName(in.Name); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}

	role, err := normalizeRole(in.Role)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Name:          strings.TrimSpace(in.Name),
		WalletAddress: &address,
		Role:          role,
		Skills:        []string{},
	}

	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrUserDuplicate) {
			return nil, apperror.ErrWalletTaken
		}
		return nil, err
	}

	return s.issueTokens(user)
}

// AuthenticateWallet выполняет вход по адресу кошелька.
func (s *AuthService) AuthenticateWallet(ctx context.Context, walletAddress string) (*AuthResult, error) {
	address := NormalizeWalletAddress(walletAddress)
	if err := validation.ValidateWalletAddress(address); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}

	user, err := s.repo.GetByWalletAddress(ctx, address)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, apperror.ErrInvalidCredentials
		}
		return nil, err
	}

	s.touchLastActive(ctx, user.ID)

	return s.issueTokens(user)
}

// Refresh выпускает новую пару токенов по refresh токену.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*AuthResult, error) {
	claims, err := s.tokenManager.ParseRefresh(refreshToken)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeUnauthorized, "refresh токен невалиден")
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeUnauthorized, "некорректный subject")
	}

	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, apperror.ErrUnauthorized
		}
		return nil, err
	}

	return s.issueTokens(user)
}

// GetUser возвращает пользователя по идентификатору.
func (s *AuthService) GetUser(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, apperror.ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// issueTokens выпускает пару токенов для пользователя.
func (s *AuthService) issueTokens(user *models.User) (*AuthResult, error) {
	tokenPair, err := s.tokenManager.GeneratePair(user)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось выпустить токены")
	}

	return &AuthResult{
		User:      user,
		TokenPair: tokenPair,
	}, nil
}

// touchLastActive обновляет last_active_at, не прерывая основной поток.
func (s *AuthService) touchLastActive(ctx context.Context, userID uuid.UUID) {
	if err := s.repo.UpdateLastActiveAt(ctx, userID); err != nil {
		logger.Log.WithFields(map[string]interface{}{
			"user_id": userID,
			"error":   err.Error(),
		}).Warn("auth service: не удалось обновить last_active_at")
	}
}

// NormalizeWalletAddress приводит адрес кошелька к каноничному виду.
func NormalizeWalletAddress(address string) string {
	return strings.ToLower(strings.TrimSpace(address))
}

// normalizeRole проверяет и нормализует роль при регистрации.
// Admin назначается только вручную.
func normalizeRole(role string) (string, error) {
	role = strings.ToLower(strings.TrimSpace(role))
	if role == "" {
		return models.RoleFreelancer, nil
	}
	if role != models.RoleClient && role != models.RoleFreelancer {
		return "", apperror.New(apperror.ErrCodeValidation, "роль должна быть client или freelancer")
	}
	return role, nil
}
