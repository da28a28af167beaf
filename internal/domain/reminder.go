package domain

import (
	"time"

	"github.com/google/uuid"
)

type ReminderKind string

const (
	ReminderKindToday    ReminderKind = "today"
	ReminderKindUpcoming ReminderKind = "upcoming"
)

func (k ReminderKind) IsValid() bool {
	switch k {
	case ReminderKindToday, ReminderKindUpcoming:
		return true
	default:
		return false
	}
}

// ReminderItem один день рождения в напоминании
type ReminderItem struct {
	BirthdayID uuid.UUID `json:"birthday_id"`
	Name       string    `json:"name"`
	BirthDate  string    `json:"birth_date"`
	Category   Category  `json:"category"`
	ImageURL   *string   `json:"image_url,omitempty"`
	Notes      *string   `json:"notes,omitempty"`
	// Age для today - полных лет на сегодня, для upcoming - сколько исполнится
	Age       int `json:"age"`
	DaysAhead int `json:"days_ahead"`
}

func (i ReminderItem) HasImage() bool {
	return i.ImageURL != nil && *i.ImageURL != ""
}

func (i ReminderItem) HasNotes() bool {
	return i.Notes != nil && *i.Notes != ""
}

// ReminderEvent событие напоминания для одного пользователя
type ReminderEvent struct {
	ID        uuid.UUID      `json:"id"`
	Kind      ReminderKind   `json:"kind"`
	UserID    int64          `json:"user_id"`
	ChatID    int64          `json:"chat_id"`
	LocalDate string         `json:"local_date"`
	Items     []ReminderItem `json:"items"`
	CreatedAt time.Time      `json:"created_at"`
}

// DeliveryReport итог пакетной рассылки
type DeliveryReport struct {
	Users   int `json:"users"`
	Sent    int `json:"sent"`
	Failed  int `json:"failed"`
	Skipped int `json:"skipped"`
}
