package inmemory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/admin/tg-bots/birthday-bot/internal/domain"
	ports "github.com/admin/tg-bots/birthday-bot/internal/ports/repository"
	"golang.org/x/text/cases"
)

// Store in-memory хранилище пользователей и записей.
// Используется в тестах и как fallback, когда Postgres не настроен.
// Наружу отдаются только копии.
type Store struct {
	mu        sync.RWMutex
	users     map[int64]*domain.User
	birthdays []*domain.Birthday

	// nameMu сериализует WithNameLock; вложенный вызов WithNameLock из fn запрещён
	nameMu sync.Mutex
	now    func() time.Time
}

var (
	_ ports.IUserRepo     = (*Store)(nil)
	_ ports.IBirthdayRepo = (*Store)(nil)
)

func NewStore() *Store {
	return &Store{
		users: make(map[int64]*domain.User),
		now:   time.Now,
	}
}

// WithClock подменяет источник времени
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

func foldName(name string) string {
	return cases.Fold().String(strings.TrimSpace(name))
}

func copyUser(u *domain.User) *domain.User {
	c := *u
	return &c
}

func copyBirthday(b *domain.Birthday) *domain.Birthday {
	c := *b
	return &c
}

// --- users ---

func (s *Store) GetOrCreate(_ context.Context, user *domain.User) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()
	if existing, ok := s.users[user.ID]; ok {
		existing.ChatID = user.ChatID
		existing.Username = user.Username
		existing.FirstName = user.FirstName
		existing.UpdatedAt = now
		return copyUser(existing), nil
	}

	created := copyUser(user)
	if created.Timezone == "" {
		created.Timezone = domain.DefaultTimezone
	}
	created.CreatedAt = now
	created.UpdatedAt = now
	s.users[created.ID] = created

	return copyUser(created), nil
}

func (s *Store) GetByID(_ context.Context, id int64) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok || u.IsDeleted {
		return nil, fmt.Errorf("user %d: %w", id, domain.ErrUserNotFound)
	}
	return copyUser(u), nil
}

func (s *Store) GetActiveUsers(_ context.Context) ([]*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.User, 0, len(s.users))
	for _, u := range s.users {
		if !u.IsDeleted {
			result = append(result, copyUser(u))
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (s *Store) UpdateTimezone(_ context.Context, id int64, timezone string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok || u.IsDeleted {
		return fmt.Errorf("user %d: %w", id, domain.ErrUserNotFound)
	}
	u.Timezone = timezone
	u.UpdatedAt = s.now().UTC()
	return nil
}

func (s *Store) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, u := range s.users {
		if !u.IsDeleted {
			n++
		}
	}
	return n, nil
}

func (s *Store) EnsureSuperadmin(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()
	for uid, u := range s.users {
		if uid != id && u.IsSuperadmin {
			u.IsSuperadmin = false
			u.UpdatedAt = now
		}
	}

	u, ok := s.users[id]
	if !ok {
		u = &domain.User{ID: id, ChatID: id, Timezone: domain.DefaultTimezone, CreatedAt: now}
		s.users[id] = u
	}
	u.IsSuperadmin = true
	u.UpdatedAt = now
	return nil
}

// DeleteUser помечает пользователя удалённым
func (s *Store) DeleteUser(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return fmt.Errorf("user %d: %w", id, domain.ErrUserNotFound)
	}
	now := s.now().UTC()
	u.IsDeleted = true
	u.DeletedAt = &now
	return nil
}

// --- birthdays ---

func (s *Store) GetByUser(_ context.Context, userID int64, includeDeleted bool) ([]*domain.Birthday, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.Birthday, 0)
	for _, b := range s.birthdays {
		if b.UserID == userID && (includeDeleted || !b.IsDeleted) {
			result = append(result, copyBirthday(b))
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].BirthDate.Before(result[j].BirthDate)
	})
	return result, nil
}

func (s *Store) GetAll(_ context.Context, includeDeleted bool) ([]*domain.Birthday, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.Birthday, 0, len(s.birthdays))
	for _, b := range s.birthdays {
		if includeDeleted || !b.IsDeleted {
			result = append(result, copyBirthday(b))
		}
	}
	return result, nil
}

func (s *Store) FindActiveByName(_ context.Context, userID int64, name string) (*domain.Birthday, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if b := s.findActiveLocked(userID, foldName(name)); b != nil {
		return copyBirthday(b), nil
	}
	return nil, nil
}

// FindDeletedByName последняя по deleted_at удалённая запись
func (s *Store) FindDeletedByName(_ context.Context, userID int64, name string) (*domain.Birthday, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	key := foldName(name)
	var latest *domain.Birthday
	for _, b := range s.birthdays {
		if b.UserID != userID || !b.IsDeleted || foldName(b.Name) != key {
			continue
		}
		if latest == nil || deletedAfter(b, latest) {
			latest = b
		}
	}
	if latest == nil {
		return nil, nil
	}
	return copyBirthday(latest), nil
}

func deletedAfter(a, b *domain.Birthday) bool {
	if a.DeletedAt == nil {
		return false
	}
	if b.DeletedAt == nil {
		return true
	}
	return a.DeletedAt.After(*b.DeletedAt)
}

func (s *Store) Create(_ context.Context, birthday *domain.Birthday) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !birthday.IsDeleted && s.findActiveLocked(birthday.UserID, foldName(birthday.Name)) != nil {
		return fmt.Errorf("birthday %q: %w", birthday.Name, domain.ErrDuplicateBirthday)
	}
	s.birthdays = append(s.birthdays, copyBirthday(birthday))
	return nil
}

func (s *Store) Save(_ context.Context, birthday *domain.Birthday) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, b := range s.birthdays {
		if b.ID != birthday.ID {
			continue
		}
		if !birthday.IsDeleted {
			if other := s.findActiveLocked(birthday.UserID, foldName(birthday.Name)); other != nil && other.ID != birthday.ID {
				return fmt.Errorf("birthday %q: %w", birthday.Name, domain.ErrDuplicateBirthday)
			}
		}
		s.birthdays[i] = copyBirthday(birthday)
		return nil
	}
	return fmt.Errorf("birthday %s: %w", birthday.ID, domain.ErrBirthdayNotFound)
}

func (s *Store) WithNameLock(ctx context.Context, _ int64, _ string, fn func(context.Context, ports.IBirthdayRepo) error) error {
	s.nameMu.Lock()
	defer s.nameMu.Unlock()
	return fn(ctx, s)
}

func (s *Store) findActiveLocked(userID int64, key string) *domain.Birthday {
	for _, b := range s.birthdays {
		if b.UserID == userID && !b.IsDeleted && foldName(b.Name) == key {
			return b
		}
	}
	return nil
}
