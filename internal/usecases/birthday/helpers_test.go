package birthday

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/admin/tg-bots/birthday-bot/internal/adapters/secondary/storage/inmemory"
	"github.com/admin/tg-bots/birthday-bot/internal/domain"
	"github.com/stretchr/testify/require"
)

const adminID int64 = 999

var testNow = time.Date(2024, 9, 27, 12, 0, 0, 0, time.UTC)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type sentMessage struct {
	ChatID   int64
	Text     string
	Keyboard *domain.InlineKeyboard
}

type sentDocument struct {
	ChatID   int64
	Filename string
	Data     []byte
	Caption  string
}

// fakeTelegram запоминает все вызовы Bot API
type fakeTelegram struct {
	mu        sync.Mutex
	messages  []sentMessage
	edits     []sentMessage
	photos    []sentMessage
	documents []sentDocument
	answered  []string

	photoErr  error
	failChats map[int64]bool
}

func (f *fakeTelegram) SendMessage(_ context.Context, chatID int64, text string) error {
	return f.SendMessageWithKeyboard(context.Background(), chatID, text, nil)
}

func (f *fakeTelegram) SendMessageWithKeyboard(_ context.Context, chatID int64, text string, keyboard *domain.InlineKeyboard) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failChats[chatID] {
		return errors.New("forbidden: bot was blocked by the user")
	}
	f.messages = append(f.messages, sentMessage{ChatID: chatID, Text: text, Keyboard: keyboard})
	return nil
}

func (f *fakeTelegram) EditMessageText(_ context.Context, chatID int64, _ int64, text string, keyboard *domain.InlineKeyboard) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.edits = append(f.edits, sentMessage{ChatID: chatID, Text: text, Keyboard: keyboard})
	return nil
}

func (f *fakeTelegram) AnswerCallbackQuery(_ context.Context, callbackID string, _ string, _ bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.answered = append(f.answered, callbackID)
	return nil
}

func (f *fakeTelegram) SendPhotoURL(_ context.Context, chatID int64, photoURL string, caption string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.photoErr != nil {
		return f.photoErr
	}
	f.photos = append(f.photos, sentMessage{ChatID: chatID, Text: caption})
	return nil
}

func (f *fakeTelegram) SendDocument(_ context.Context, chatID int64, filename string, data []byte, caption string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.documents = append(f.documents, sentDocument{ChatID: chatID, Filename: filename, Data: data, Caption: caption})
	return nil
}

func (f *fakeTelegram) lastMessage(t *testing.T) sentMessage {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.messages, "no messages sent")
	return f.messages[len(f.messages)-1]
}

func (f *fakeTelegram) lastEdit(t *testing.T) sentMessage {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.edits, "no messages edited")
	return f.edits[len(f.edits)-1]
}

type fakePublisher struct {
	events []*domain.ReminderEvent
	err    error
}

func (p *fakePublisher) PublishReminder(_ context.Context, event *domain.ReminderEvent) error {
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, event)
	return nil
}

func (p *fakePublisher) Close() error { return nil }

// fakeStorage S3 в памяти
type fakeStorage struct {
	files map[string][]byte
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{files: make(map[string][]byte)}
}

func (s *fakeStorage) PutFile(_ context.Context, path string, data []byte, _ string) error {
	s.files[path] = data
	return nil
}

func (s *fakeStorage) GetFile(_ context.Context, path string) ([]byte, error) {
	data, ok := s.files[path]
	if !ok {
		return nil, errors.New("the specified key does not exist")
	}
	return data, nil
}

func (s *fakeStorage) ListFiles(_ context.Context, prefix string) ([]string, error) {
	var keys []string
	for k := range s.files {
		if len(k) >= len(prefix) && k[:len(prefix)] == prefix {
			keys = append(keys, k)
		}
	}
	return keys, nil
}

func (s *fakeStorage) GetPresignedURL(_ context.Context, path string, _ time.Duration) (string, error) {
	return "https://s3.local/birthday-bot/" + path + "?X-Amz-Signature=test", nil
}

func newTestService(t *testing.T) (*Service, *inmemory.Store, *fakeTelegram) {
	t.Helper()
	clock := func() time.Time { return testNow }
	store := inmemory.NewStore().WithClock(clock)
	tg := &fakeTelegram{}
	svc := New(store, store, tg, inmemory.NewCache(), Config{SuperadminID: adminID}, testLogger()).WithClock(clock)
	return svc, store, tg
}

func mustUser(t *testing.T, svc *Service, id int64) *domain.User {
	t.Helper()
	user, err := svc.GetOrCreateUser(context.Background(),
		&domain.TelegramUser{ID: id, FirstName: "Tester"},
		&domain.Chat{ID: id, Type: "private"},
	)
	require.NoError(t, err)
	return user
}

func mustAdd(t *testing.T, svc *Service, userID int64, name, date, category string) *domain.Birthday {
	t.Helper()
	result := svc.AddBirthday(context.Background(), userID, name, date, category, nil, nil)
	require.True(t, result.Success, result.Message)
	return result.Birthday
}

func strPtr(s string) *string { return &s }
