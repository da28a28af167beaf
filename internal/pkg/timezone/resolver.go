package timezone

import (
	"log/slog"
	"strings"
	"sync"
	"time"
	_ "time/tzdata"
)

// Resolver вычисляет локальное время пользователя по идентификатору зоны IANA.
// Неизвестная зона молча заменяется на UTC.
type Resolver struct {
	mu    sync.RWMutex
	cache map[string]*time.Location
	log   *slog.Logger
}

func NewResolver(log *slog.Logger) *Resolver {
	return &Resolver{
		cache: make(map[string]*time.Location),
		log:   log,
	}
}

// Location возвращает зону или UTC, если идентификатор не распознан
func (r *Resolver) Location(tzID string) *time.Location {
	tzID = strings.TrimSpace(tzID)
	if tzID == "" || tzID == "UTC" {
		return time.UTC
	}

	r.mu.RLock()
	loc, ok := r.cache[tzID]
	r.mu.RUnlock()
	if ok {
		return loc
	}

	loc, err := time.LoadLocation(tzID)
	if err != nil {
		if r.log != nil {
			r.log.Warn("unknown timezone, falling back to UTC", "timezone", tzID, "error", err)
		}
		loc = time.UTC
	}

	r.mu.Lock()
	r.cache[tzID] = loc
	r.mu.Unlock()

	return loc
}

// LocalNow текущее время now в зоне пользователя
func (r *Resolver) LocalNow(tzID string, now time.Time) time.Time {
	return now.In(r.Location(tzID))
}

// LocalToday календарная дата пользователя (полночь, UTC) - годится для сравнения дат
func (r *Resolver) LocalToday(tzID string, now time.Time) time.Time {
	return DateOf(r.LocalNow(tzID, now))
}

// DateOf отбрасывает время и зону, оставляя календарную дату
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// IsValid проверяет идентификатор перед сохранением
func IsValid(tzID string) bool {
	tzID = strings.TrimSpace(tzID)
	if tzID == "" || strings.EqualFold(tzID, "local") {
		return false
	}
	_, err := time.LoadLocation(tzID)
	return err == nil
}
