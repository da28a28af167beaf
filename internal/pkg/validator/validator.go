package validator

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/admin/tg-bots/birthday-bot/internal/domain"
)

const (
	maxNameLength  = 100
	minBirthYear   = 1900
	maxYearsAhead  = 50
	dateLayoutSize = len("2006-01-02")
)

var (
	namePattern = regexp.MustCompile(`^[a-zA-Z\s\-'.]+$`)
	datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

	imageExtensions = []string{".jpg", ".jpeg", ".png", ".gif", ".bmp", ".webp"}
	imageHosts      = []string{
		"imgur.com",
		"i.imgur.com",
		"cdn.discordapp.com",
		"pbs.twimg.com",
		"images.unsplash.com",
		"googleusercontent.com",
		"cloudinary.com",
	}

	ErrDateFormat = errors.New("date must be in YYYY-MM-DD format")
	ErrDateRange  = errors.New("date year is out of range")
)

// ValidateName проверяет имя: латиница, пробелы, дефис, апостроф, точка; до 100 символов
func ValidateName(name string) bool {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" || len(trimmed) > maxNameLength {
		return false
	}
	return namePattern.MatchString(trimmed)
}

// ParseDate разбирает строгий YYYY-MM-DD и проверяет год в [1900, now.Year()+50]
func ParseDate(s string, now time.Time) (time.Time, error) {
	if len(s) != dateLayoutSize || !datePattern.MatchString(s) {
		return time.Time{}, ErrDateFormat
	}

	// time.Parse отклоняет 2023-02-29, 2024-13-01 и т.п.
	date, err := time.Parse(domain.DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", ErrDateFormat, err)
	}

	if date.Year() < minBirthYear || date.Year() > now.Year()+maxYearsAhead {
		return time.Time{}, ErrDateRange
	}

	return date, nil
}

// ValidateCategory проверяет категорию без учёта регистра
func ValidateCategory(category string) (domain.Category, bool) {
	return domain.ParseCategory(category)
}

// ValidateImageURL эвристика: пусто - ок; иначе путь с расширением картинки или известный хостинг
func ValidateImageURL(raw string) bool {
	if raw == "" {
		return true
	}

	u, ok := parseWellFormedURL(raw)
	if !ok {
		return false
	}

	path := strings.ToLower(u.Path)
	for _, ext := range imageExtensions {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}

	host := strings.ToLower(u.Hostname())
	for _, known := range imageHosts {
		if host == known || strings.HasSuffix(host, "."+known) {
			return true
		}
	}

	return false
}

func parseWellFormedURL(raw string) (*url.URL, bool) {
	if strings.ContainsAny(raw, " \t\n") {
		return nil, false
	}

	u, err := url.ParseRequestURI(raw)
	if err != nil {
		return nil, false
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, false
	}

	host := u.Hostname()
	if host == "" || (!strings.Contains(host, ".") && host != "localhost") {
		return nil, false
	}
	return u, true
}
