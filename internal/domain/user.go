package domain

import "time"

const DefaultTimezone = "UTC"

// User пользователь бота (ID совпадает с Telegram user id)
type User struct {
	ID           int64      `db:"id" json:"id"`
	ChatID       int64      `db:"chat_id" json:"chat_id"`
	Username     *string    `db:"username" json:"username,omitempty"`
	FirstName    *string    `db:"first_name" json:"first_name,omitempty"`
	Timezone     string     `db:"timezone" json:"timezone"`
	IsSuperadmin bool       `db:"is_superadmin" json:"is_superadmin"`
	IsDeleted    bool       `db:"is_deleted" json:"is_deleted"`
	DeletedAt    *time.Time `db:"deleted_at" json:"deleted_at,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}

// DisplayUsername username или N/A
func (u *User) DisplayUsername() string {
	if u.Username == nil || *u.Username == "" {
		return "N/A"
	}
	return *u.Username
}

func (u *User) DisplayFirstName() string {
	if u.FirstName == nil || *u.FirstName == "" {
		return "N/A"
	}
	return *u.FirstName
}

// ReplyChatID чат для отправки сообщений; для приватных чатов совпадает с ID
func (u *User) ReplyChatID() int64 {
	if u.ChatID != 0 {
		return u.ChatID
	}
	return u.ID
}
