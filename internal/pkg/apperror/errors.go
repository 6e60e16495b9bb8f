package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

type ErrorCode string

const (
	ErrCodeNotFound      ErrorCode = "NOT_FOUND"
	ErrCodeUnauthorized  ErrorCode = "UNAUTHORIZED"
	ErrCodeForbidden     ErrorCode = "FORBIDDEN"
	ErrCodeBadRequest    ErrorCode = "BAD_REQUEST"
	ErrCodeConflict      ErrorCode = "CONFLICT"
	ErrCodeInternal      ErrorCode = "INTERNAL_ERROR"
	ErrCodeValidation    ErrorCode = "VALIDATION_ERROR"
	ErrCodeDatabaseError ErrorCode = "DATABASE_ERROR"
)

type AppError struct {
	Code       ErrorCode
	Message    string
	HTTPStatus int
	Cause      error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
	}
}

func Wrap(err error, code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
		Cause:      err,
	}
}

func codeToHTTPStatus(code ErrorCode) int {
	switch code {
	case ErrCodeNotFound:
		return http.StatusNotFound
	case ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case ErrCodeForbidden:
		return http.StatusForbidden
	case ErrCodeBadRequest, ErrCodeValidation:
		return http.StatusBadRequest
	case ErrCodeConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func IsNotFound(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == ErrCodeNotFound
}

func IsForbidden(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == ErrCodeForbidden
}

func IsConflict(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == ErrCodeConflict
}

func IsValidation(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == ErrCodeValidation
}

// Ошибки предметной области. Статусные конфликты, после которых клиенту
// стоит перечитать состояние, получают код CONFLICT (409).
var (
	ErrProjectNotFound  = New(ErrCodeNotFound, "проект не найден")
	ErrProposalNotFound = New(ErrCodeNotFound, "предложение не найдено")
	ErrUserNotFound     = New(ErrCodeNotFound, "пользователь не найден")
	ErrMediaNotFound    = New(ErrCodeNotFound, "файл не найден")

	ErrUnauthorized       = New(ErrCodeUnauthorized, "требуется авторизация")
	ErrInvalidCredentials = New(ErrCodeUnauthorized, "неверные учетные данные")

	ErrNotProjectOwner   = New(ErrCodeForbidden, "вы не являетесь владельцем проекта")
	ErrUserNotAuthorized = New(ErrCodeForbidden, "недостаточно прав для этого действия")

	ErrProjectNotOpen     = New(ErrCodeBadRequest, "проект больше не принимает предложения")
	ErrProposalNotPending = New(ErrCodeBadRequest, "предложение уже рассмотрено")
	ErrInvalidBid         = New(ErrCodeValidation, "сумма ставки должна быть положительным числом")

	ErrDuplicateProposal = New(ErrCodeConflict, "вы уже отправили предложение на этот проект")
	ErrAlreadyHired      = New(ErrCodeConflict, "на проект уже нанят исполнитель")
	ErrEmailTaken        = New(ErrCodeConflict, "email уже зарегистрирован")
	ErrWalletTaken       = New(ErrCodeConflict, "адрес кошелька уже зарегистрирован")
)

// NewInvalidProjectState описывает запрещённый переход статуса проекта.
func NewInvalidProjectState(from, to string) *AppError {
	return New(ErrCodeBadRequest, fmt.Sprintf("недопустимый переход статуса проекта: %s -> %s", from, to))
}
