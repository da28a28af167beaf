package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Category категория дня рождения (закрытое множество)
type Category string

const (
	CategoryLove     Category = "love"
	CategoryFamily   Category = "family"
	CategoryRelative Category = "relative"
	CategoryWork     Category = "work"
	CategoryFriend   Category = "friend"
	CategoryOther    Category = "other"
)

// AllCategories возвращает все категории в порядке отображения
func AllCategories() []Category {
	return []Category{
		CategoryLove,
		CategoryFamily,
		CategoryRelative,
		CategoryWork,
		CategoryFriend,
		CategoryOther,
	}
}

func (c Category) String() string {
	return string(c)
}

func (c Category) IsValid() bool {
	switch c {
	case CategoryLove, CategoryFamily, CategoryRelative, CategoryWork, CategoryFriend, CategoryOther:
		return true
	default:
		return false
	}
}

// Label возвращает отображаемое название категории
func (c Category) Label() string {
	switch c {
	case CategoryLove:
		return "💕 Love"
	case CategoryFamily:
		return "👨‍👩‍👧‍👦 Family"
	case CategoryRelative:
		return "👥 Relative"
	case CategoryWork:
		return "💼 Work"
	case CategoryFriend:
		return "👫 Friend"
	case CategoryOther:
		return "🌟 Other"
	default:
		return string(c)
	}
}

// ParseCategory разбирает категорию без учёта регистра
func ParseCategory(s string) (Category, bool) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if !c.IsValid() {
		return "", false
	}
	return c, true
}

// CategoryKeys список ключей категорий через запятую
func CategoryKeys() string {
	keys := make([]string, 0, len(AllCategories()))
	for _, c := range AllCategories() {
		keys = append(keys, c.String())
	}
	return strings.Join(keys, ", ")
}

// Birthday запись о дне рождения
type Birthday struct {
	ID        uuid.UUID  `db:"id" json:"id"`
	UserID    int64      `db:"user_id" json:"user_id"`
	Name      string     `db:"name" json:"name"`
	BirthDate time.Time  `db:"birth_date" json:"birth_date"`
	Category  Category   `db:"category" json:"category"`
	ImageURL  *string    `db:"image_url" json:"image_url,omitempty"`
	Notes     *string    `db:"notes" json:"notes,omitempty"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt time.Time  `db:"updated_at" json:"updated_at"`
	IsDeleted bool       `db:"is_deleted" json:"is_deleted"`
	DeletedAt *time.Time `db:"deleted_at" json:"deleted_at,omitempty"`
}

func (b *Birthday) HasImage() bool {
	return b.ImageURL != nil && *b.ImageURL != ""
}

func (b *Birthday) HasNotes() bool {
	return b.Notes != nil && *b.Notes != ""
}

// DateString дата рождения в формате YYYY-MM-DD
func (b *Birthday) DateString() string {
	return b.BirthDate.Format(DateLayout)
}

// SoftDelete помечает запись удалённой
func (b *Birthday) SoftDelete(now time.Time) {
	b.IsDeleted = true
	b.DeletedAt = &now
	b.UpdatedAt = now
}

// Restore снимает пометку удаления
func (b *Birthday) Restore(now time.Time) {
	b.IsDeleted = false
	b.DeletedAt = nil
	b.UpdatedAt = now
}

// BirthdayPatch частичное обновление записи.
// nil - поле не меняется, пустая строка в ImageURL/Notes удаляет значение
type BirthdayPatch struct {
	BirthDate *string
	Category  *string
	ImageURL  *string
	Notes     *string
}

func (p BirthdayPatch) IsEmpty() bool {
	return p.BirthDate == nil && p.Category == nil && p.ImageURL == nil && p.Notes == nil
}

const DateLayout = "2006-01-02"
