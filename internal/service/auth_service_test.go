package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/freelance-market/internal/models"
	"github.com/ignatzorin/freelance-market/internal/pkg/apperror"
	"github.com/ignatzorin/freelance-market/internal/repository"
)

// authUserStore — хранилище пользователей в памяти для тестов аутентификации.
type authUserStore struct {
	users map[uuid.UUID]*models.User
}

func newAuthUserStore() *authUserStore {
	return &authUserStore{users: make(map[uuid.UUID]*models.User)}
}

func (s *authUserStore) Create(ctx context.Context, user *models.User) error {
	for _, existing := range s.users {
		if user.Email != nil && existing.Email != nil && *existing.Email == *user.Email {
			return repository.ErrUserDuplicate
		}
		if user.WalletAddress != nil && existing.WalletAddress != nil && *existing.WalletAddress == *user.WalletAddress {
			return repository.ErrUserDuplicate
		}
	}
	user.ID = uuid.New()
	s.users[user.ID] = user
	return nil
}

func (s *authUserStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, u := range s.users {
		if u.Email != nil && *u.Email == email {
			return u, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (s *authUserStore) GetByWalletAddress(ctx context.Context, address string) (*models.User, error) {
	for _, u := range s.users {
		if u.WalletAddress != nil && *u.WalletAddress == address {
			return u, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (s *authUserStore) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return u, nil
}

func (s *authUserStore) UpdateLastActiveAt(ctx context.Context, userID uuid.UUID) error {
	u, ok := s.users[userID]
	if !ok {
		return repository.ErrUserNotFound
	}
	now := time.Now()
	u.LastActiveAt = &now
	return nil
}

func newAuthService() (*AuthService, *authUserStore) {
	store := newAuthUserStore()
	tm := NewTokenManager("access-secret", "refresh-secret", 15*time.Minute, 7*24*time.Hour)
	return NewAuthService(store, tm), store
}

func TestAuthService_RegisterAndLogin(t *testing.T) {
	svc, _ := newAuthService()
	ctx := context.Background()

	result, err := svc.Register(ctx, RegisterInput{
		Name:     "Иван Петров",
		Email:    "Ivan@Example.com",
		Password: "Password1",
		Role:     "client",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if result.User.ID == uuid.Nil {
		t.Fatal("Register: пользователь без идентификатора")
	}
	if result.User.Email == nil || *result.User.Email != "ivan@example.com" {
		t.Fatalf("Register: email не нормализован: %v", result.User.Email)
	}
	if result.TokenPair.AccessToken == "" || result.TokenPair.RefreshToken == "" {
		t.Fatal("Register: пустая пара токенов")
	}

	// Вход с исходным регистром email
	login, err := svc.Login(ctx, "IVAN@example.com", "Password1")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if login.User.ID != result.User.ID {
		t.Fatal("Login: вернулся другой пользователь")
	}
}

func TestAuthService_RegisterDuplicateEmail(t *testing.T) {
	svc, _ := newAuthService()
	ctx := context.Background()

	in := RegisterInput{
		Name:     "Иван Петров",
		Email:    "ivan@example.com",
		Password: "Password1",
		Role:     "client",
	}
	if _, err := svc.Register(ctx, in); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if _, err := svc.Register(ctx, in); !errors.Is(err, apperror.ErrEmailTaken) {
		t.Fatalf("ожидалась ошибка занятого email, получили %v", err)
	}
}

func TestAuthService_LoginWrongPassword(t *testing.T) {
	svc, _ := newAuthService()
	ctx := context.Background()

	if _, err := svc.Register(ctx, RegisterInput{
		Name:     "Иван Петров",
		Email:    "ivan@example.com",
		Password: "Password1",
		Role:     "client",
	}); err != nil {
		t.Fatalf("Register: %v", err)
	}

	if _, err := svc.Login(ctx, "ivan@example.com", "WrongPass1"); !errors.Is(err, apperror.ErrInvalidCredentials) {
		t.Fatalf("ожидалась ошибка неверных учётных данных, получили %v", err)
	}
	if _, err := svc.Login(ctx, "nobody@example.com", "Password1"); !errors.Is(err, apperror.ErrInvalidCredentials) {
		t.Fatalf("неизвестный email: ожидалась ошибка неверных учётных данных, получили %v", err)
	}
}

func TestAuthService_InvalidRole(t *testing.T) {
	svc, _ := newAuthService()

	_, err := svc.Register(context.Background(), RegisterInput{
		Name:     "Иван Петров",
		Email:    "ivan@example.com",
		Password: "Password1",
		Role:     "admin",
	})
	if !apperror.IsValidation(err) {
		t.Fatalf("роль admin при регистрации: ожидалась ошибка валидации, получили %v", err)
	}
}

func TestAuthService_WalletFlow(t *testing.T) {
	svc, _ := newAuthService()
	ctx := context.Background()

	address := "0xAbCd000000000000000000000000000000000001"

	result, err := svc.RegisterWallet(ctx, WalletRegisterInput{
		WalletAddress: address,
		Name:          "Кошелёк",
		Role:          "freelancer",
	})
	if err != nil {
		t.Fatalf("RegisterWallet: %v", err)
	}
	if result.User.WalletAddress == nil || *result.User.WalletAddress != NormalizeWalletAddress(address) {
		t.Fatalf("RegisterWallet: адрес не нормализован: %v", result.User.WalletAddress)
	}

	// Повторная регистрация того же адреса в другом регистре
	if _, err := svc.RegisterWallet(ctx, WalletRegisterInput{
		WalletAddress: NormalizeWalletAddress(address),
		Name:          "Кошелёк-2",
		Role:          "freelancer",
	}); !errors.Is(err, apperror.ErrWalletTaken) {
		t.Fatalf("ожидалась ошибка занятого кошелька, получили %v", err)
	}

	login, err := svc.AuthenticateWallet(ctx, address)
	if err != nil {
		t.Fatalf("AuthenticateWallet: %v", err)
	}
	if login.User.ID != result.User.ID {
		t.Fatal("AuthenticateWallet: вернулся другой пользователь")
	}

	if _, err := svc.AuthenticateWallet(ctx, "0x0000000000000000000000000000000000000099"); !errors.Is(err, apperror.ErrInvalidCredentials) {
		t.Fatalf("неизвестный кошелёк: ожидалась ошибка неверных учётных данных, получили %v", err)
	}
}

func TestAuthService_WalletLoginWithoutPassword(t *testing.T) {
	svc, _ := newAuthService()
	ctx := context.Background()

	result, err := svc.RegisterWallet(ctx, WalletRegisterInput{
		WalletAddress: "0xabcd000000000000000000000000000000000002",
		Name:          "Кошелёк",
		Role:          "client",
	})
	if err != nil {
		t.Fatalf("RegisterWallet: %v", err)
	}

	// У кошелькового аккаунта нет email и пароля
	email := "wallet@example.com"
	result.User.Email = &email
	if _, err := svc.Login(ctx, email, "Password1"); !errors.Is(err, apperror.ErrInvalidCredentials) {
		t.Fatalf("вход по паролю в кошельковый аккаунт: ожидался отказ, получили %v", err)
	}
}

func TestAuthService_Refresh(t *testing.T) {
	svc, store := newAuthService()
	ctx := context.Background()

	result, err := svc.Register(ctx, RegisterInput{
		Name:     "Иван Петров",
		Email:    "ivan@example.com",
		Password: "Password1",
		Role:     "freelancer",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	refreshed, err := svc.Refresh(ctx, result.TokenPair.RefreshToken)
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if refreshed.User.ID != result.User.ID {
		t.Fatal("Refresh: вернулся другой пользователь")
	}
	if refreshed.TokenPair.AccessToken == "" {
		t.Fatal("Refresh: пустой access токен")
	}

	// Мусорный токен
	if _, err := svc.Refresh(ctx, "not-a-token"); err == nil {
		t.Fatal("Refresh: мусорный токен принят")
	}

	// Пользователь удалён после выпуска токена
	delete(store.users, result.User.ID)
	if _, err := svc.Refresh(ctx, result.TokenPair.RefreshToken); !errors.Is(err, apperror.ErrUnauthorized) {
		t.Fatalf("Refresh удалённого пользователя: ожидался отказ, получили %v", err)
	}
}

func TestAuthService_GetUser(t *testing.T) {
	svc, _ := newAuthService()
	ctx := context.Background()

	result, err := svc.Register(ctx, RegisterInput{
		Name:     "Иван Петров",
		Email:    "ivan@example.com",
		Password: "Password1",
		Role:     "client",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	user, err := svc.GetUser(ctx, result.User.ID)
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if user.ID != result.User.ID {
		t.Fatal("GetUser: вернулся другой пользователь")
	}

	if _, err := svc.GetUser(ctx, uuid.New()); !errors.Is(err, apperror.ErrUserNotFound) {
		t.Fatalf("GetUser неизвестного id: ожидалась ошибка, получили %v", err)
	}
}
