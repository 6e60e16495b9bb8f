package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Константы валидации
const (
	MinNameLength                 = 2
	MaxNameLength                 = 100
	MinProjectTitleLength         = 3
	MaxProjectTitleLength         = 200
	MinProjectDescriptionLength   = 10
	MaxProjectDescriptionLength   = 5000
	MinProposalCoverLetterLength  = 10
	MaxProposalCoverLetterLength  = 2000
	MaxClientNotesLength          = 1000
	MaxCancellationReasonLength   = 1000
	MaxBioLength                  = 1000
	MaxLocationLength             = 100
	MaxCategoryLength             = 100
	MaxSkillLength                = 50
	MaxSkillsCount                = 50
	MinBudget                     = 0.0
	MaxBudget                     = 100000000.0 // 100 миллионов
	MinBidAmount                  = 0.0
	MaxBidAmount                  = 100000000.0
	MinHourlyRate                 = 0.0
	MaxHourlyRate                 = 100000.0
	MinDurationValue              = 1
	MaxDurationValue              = 3650
)

// ValidateLength проверяет длину строки.
func ValidateLength(fieldName, value string, min, max int) error {
	length := utf8.RuneCountInString(value)
	if min > 0 && length < min {
		return fmt.Errorf("%s должен быть не менее %d символов", fieldName, min)
	}
	if max > 0 && length > max {
		return fmt.Errorf("%s должен быть не более %d символов", fieldName, max)
	}
	return nil
}

// ValidateEmail проверяет формат email.
func ValidateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("email обязателен")
	}

	email = strings.TrimSpace(email)
	email = strings.ToLower(email)

	// Базовая проверка формата
	if !strings.Contains(email, "@") {
		return fmt.Errorf("email должен содержать символ @")
	}

	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return fmt.Errorf("некорректный формат email")
	}

	localPart := parts[0]
	domainPart := parts[1]

	if len(localPart) == 0 || len(localPart) > 64 {
		return fmt.Errorf("локальная часть email должна быть от 1 до 64 символов")
	}

	if len(domainPart) == 0 || len(domainPart) > 255 {
		return fmt.Errorf("доменная часть email должна быть от 1 до 255 символов")
	}

	if !strings.Contains(domainPart, ".") {
		return fmt.Errorf("доменная часть email должна содержать точку")
	}

	// Проверка на валидные символы в локальной части
	emailRegex := regexp.MustCompile(`^[a-z0-9._+-]+$`)
	if !emailRegex.MatchString(localPart) {
		return fmt.Errorf("локальная часть email содержит недопустимые символы")
	}

	// Проверка на валидные символы в доменной части
	domainRegex := regexp.MustCompile(`^[a-z0-9.-]+\.[a-z]{2,}$`)
	if !domainRegex.MatchString(domainPart) {
		return fmt.Errorf("доменная часть email имеет некорректный формат")
	}

	return nil
}

// ValidateNonEmpty проверяет, что строка не пустая.
func ValidateNonEmpty(fieldName, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s не может быть пустым", fieldName)
	}
	return nil
}

// ValidateName проверяет имя пользователя.
func ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("имя обязательно")
	}

	name = strings.TrimSpace(name)

	// Проверка длины
	if err := ValidateLength("имя", name, MinNameLength, MaxNameLength); err != nil {
		return err
	}

	// Проверка на недопустимые символы (только буквы, цифры, пробелы и некоторые спецсимволы)
	nameRegex := regexp.MustCompile(`^[a-zA-Zа-яА-ЯёЁ0-9\s\-_.,!?()]+$`)
	if !nameRegex.MatchString(name) {
		return fmt.Errorf("имя содержит недопустимые символы")
	}

	return nil
}

// ValidateWalletAddress проверяет адрес кошелька.
func ValidateWalletAddress(address string) error {
	if address == "" {
		return fmt.Errorf("адрес кошелька обязателен")
	}

	address = strings.TrimSpace(address)

	walletRegex := regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)
	if !walletRegex.MatchString(address) {
		return fmt.Errorf("некорректный формат адреса кошелька")
	}

	return nil
}

// ValidateProjectTitle проверяет заголовок проекта.
func ValidateProjectTitle(title string) error {
	if title == "" {
		return fmt.Errorf("заголовок проекта обязателен")
	}

	title = strings.TrimSpace(title)

	if err := ValidateLength("заголовок проекта", title, MinProjectTitleLength, MaxProjectTitleLength); err != nil {
		return err
	}

	return nil
}

// ValidateProjectDescription проверяет описание проекта.
func ValidateProjectDescription(description string) error {
	if description == "" {
		return fmt.Errorf("описание проекта обязательно")
	}

	description = strings.TrimSpace(description)

	if err := ValidateLength("описание проекта", description, MinProjectDescriptionLength, MaxProjectDescriptionLength); err != nil {
		return err
	}

	return nil
}

// ValidateProposalCoverLetter проверяет сопроводительное письмо.
func ValidateProposalCoverLetter(coverLetter string) error {
	if coverLetter == "" {
		return fmt.Errorf("сопроводительное письмо обязательно")
	}

	coverLetter = strings.TrimSpace(coverLetter)

	if err := ValidateLength("сопроводительное письмо", coverLetter, MinProposalCoverLetterLength, MaxProposalCoverLetterLength); err != nil {
		return err
	}

	return nil
}

// ValidateBudget проверяет бюджет проекта.
func ValidateBudget(budget float64) error {
	if budget <= MinBudget {
		return fmt.Errorf("бюджет должен быть положительным")
	}
	if budget > MaxBudget {
		return fmt.Errorf("бюджет не может превышать %.0f", MaxBudget)
	}
	return nil
}

// ValidateBidAmount проверяет сумму ставки в отклике.
func ValidateBidAmount(amount float64) error {
	if amount <= MinBidAmount {
		return fmt.Errorf("сумма ставки должна быть положительной")
	}
	if amount > MaxBidAmount {
		return fmt.Errorf("сумма ставки не может превышать %.0f", MaxBidAmount)
	}
	return nil
}

// ValidateDuration проверяет оценку сроков выполнения.
func ValidateDuration(value int, unit string) error {
	if value < MinDurationValue || value > MaxDurationValue {
		return fmt.Errorf("срок выполнения должен быть от %d до %d", MinDurationValue, MaxDurationValue)
	}
	switch unit {
	case "hours", "days", "weeks", "months":
		return nil
	default:
		return fmt.Errorf("единица измерения срока должна быть hours, days, weeks или months")
	}
}

// ValidateHourlyRate проверяет почасовую ставку.
func ValidateHourlyRate(rate *float64) error {
	if rate != nil {
		if *rate < MinHourlyRate {
			return fmt.Errorf("почасовая ставка не может быть отрицательной")
		}
		if *rate > MaxHourlyRate {
			return fmt.Errorf("почасовая ставка не может превышать %.0f", MaxHourlyRate)
		}
	}
	return nil
}

// ValidateSkills проверяет массив навыков.
func ValidateSkills(skills []string) error {
	if len(skills) > MaxSkillsCount {
		return fmt.Errorf("количество навыков не может превышать %d", MaxSkillsCount)
	}

	seen := make(map[string]bool)
	for _, skill := range skills {
		skill = strings.TrimSpace(skill)
		if skill == "" {
			return fmt.Errorf("навык не может быть пустым")
		}

		// Проверка длины навыка
		if utf8.RuneCountInString(skill) > MaxSkillLength {
			return fmt.Errorf("навык не может быть длиннее %d символов", MaxSkillLength)
		}

		// Проверка на дубликаты (без учета регистра)
		skillLower := strings.ToLower(skill)
		if seen[skillLower] {
			return fmt.Errorf("навык '%s' указан дважды", skill)
		}
		seen[skillLower] = true
	}

	return nil
}

// ValidateLocation проверяет местоположение.
func ValidateLocation(location *string) error {
	if location != nil && *location != "" {
		loc := strings.TrimSpace(*location)
		if err := ValidateLength("местоположение", loc, 0, MaxLocationLength); err != nil {
			return err
		}
	}
	return nil
}

// ValidateBio проверяет биографию.
func ValidateBio(bio *string) error {
	if bio != nil && *bio != "" {
		bioStr := strings.TrimSpace(*bio)
		if err := ValidateLength("биография", bioStr, 0, MaxBioLength); err != nil {
			return err
		}
	}
	return nil
}

// ValidateCategory проверяет категорию проекта.
func ValidateCategory(category string) error {
	if category == "" {
		return fmt.Errorf("категория проекта обязательна")
	}

	category = strings.TrimSpace(category)

	if err := ValidateLength("категория", category, 1, MaxCategoryLength); err != nil {
		return err
	}

	return nil
}

// ValidateClientNotes проверяет комментарий клиента к отклику.
func ValidateClientNotes(notes *string) error {
	if notes != nil && *notes != "" {
		n := strings.TrimSpace(*notes)
		if err := ValidateLength("комментарий", n, 0, MaxClientNotesLength); err != nil {
			return err
		}
	}
	return nil
}

// ValidateCancellationReason проверяет причину отмены проекта.
func ValidateCancellationReason(reason *string) error {
	if reason != nil && *reason != "" {
		r := strings.TrimSpace(*reason)
		if err := ValidateLength("причина отмены", r, 0, MaxCancellationReasonLength); err != nil {
			return err
		}
	}
	return nil
}
