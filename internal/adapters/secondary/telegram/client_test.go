package telegram

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/admin/tg-bots/birthday-bot/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestClient_SendMessageWithKeyboard(t *testing.T) {
	var got map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/sendMessage", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"ok":true,"result":{"message_id":7,"date":1}}`))
	}))
	defer srv.Close()

	client := NewClientWithBaseURL(srv.URL, testLogger())
	kb := domain.NewInlineKeyboard(2,
		domain.InlineKeyboardButton{Text: "Yes", CallbackData: "confirm:yes"},
		domain.InlineKeyboardButton{Text: "No", CallbackData: "confirm:no"},
	)

	err := client.SendMessageWithKeyboard(context.Background(), 42, "<b>hi</b>", kb)
	require.NoError(t, err)

	assert.Equal(t, float64(42), got["chat_id"])
	assert.Equal(t, "HTML", got["parse_mode"])
	markup, ok := got["reply_markup"].(map[string]interface{})
	require.True(t, ok)
	rows := markup["inline_keyboard"].([]interface{})
	assert.Len(t, rows, 1)
}

func TestClient_SendMessage_NoKeyboard(t *testing.T) {
	var got map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"ok":true,"result":{"message_id":1}}`))
	}))
	defer srv.Close()

	client := NewClientWithBaseURL(srv.URL, testLogger())
	require.NoError(t, client.SendMessage(context.Background(), 1, "plain"))

	_, hasMarkup := got["reply_markup"]
	assert.False(t, hasMarkup)
}

func TestClient_APIErrorForbidden(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"ok":false,"error_code":403,"description":"Forbidden: bot was blocked by the user"}`))
	}))
	defer srv.Close()

	client := NewClientWithBaseURL(srv.URL, testLogger())
	err := client.SendMessage(context.Background(), 1, "hi")
	require.Error(t, err)
	assert.True(t, IsForbidden(err))

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "sendMessage", apiErr.Method)
}

func TestClient_InvalidJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>bad gateway</html>`))
	}))
	defer srv.Close()

	client := NewClientWithBaseURL(srv.URL, testLogger())
	err := client.AnswerCallbackQuery(context.Background(), "cb", "ok", false)
	require.Error(t, err)
	assert.False(t, IsForbidden(err))
}

func TestClient_SendDocument_Multipart(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/sendDocument", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))

		assert.Equal(t, "99", r.FormValue("chat_id"))
		assert.Equal(t, "export", r.FormValue("caption"))

		file, header, err := r.FormFile("document")
		require.NoError(t, err)
		defer file.Close()
		data, _ := io.ReadAll(file)
		assert.Equal(t, "birthdays.csv", header.Filename)
		assert.Equal(t, "a,b\n", string(data))

		_, _ = w.Write([]byte(`{"ok":true,"result":{"message_id":3}}`))
	}))
	defer srv.Close()

	client := NewClientWithBaseURL(srv.URL, testLogger())
	err := client.SendDocument(context.Background(), 99, "birthdays.csv", []byte("a,b\n"), "export")
	require.NoError(t, err)
}

func TestClient_SendPhotoURL_CaptionTooLong(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		_, _ = w.Write([]byte(`{"ok":true,"result":{"message_id":1}}`))
	}))
	defer srv.Close()

	client := NewClientWithBaseURL(srv.URL, testLogger())
	long := make([]rune, captionLimit+1)
	for i := range long {
		long[i] = 'x'
	}

	err := client.SendPhotoURL(context.Background(), 1, "https://example.com/a.jpg", string(long))
	require.Error(t, err)
	assert.Equal(t, int32(0), atomic.LoadInt32(&calls))

	require.NoError(t, client.SendPhotoURL(context.Background(), 1, "https://example.com/a.jpg", "ok"))
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestClient_SetWebhook(t *testing.T) {
	var got struct {
		URL            string   `json:"url"`
		SecretToken    string   `json:"secret_token"`
		AllowedUpdates []string `json:"allowed_updates"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/setWebhook", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"ok":true,"result":true}`))
	}))
	defer srv.Close()

	client := NewClientWithBaseURL(srv.URL, testLogger())
	require.NoError(t, client.SetWebhook(context.Background(), "https://bot.example.com/webhook", "s3cr3t"))

	assert.Equal(t, "https://bot.example.com/webhook", got.URL)
	assert.Equal(t, "s3cr3t", got.SecretToken)
	assert.Equal(t, []string{"message", "callback_query"}, got.AllowedUpdates)
}

func TestPoller_DeliversUpdatesAndAdvancesOffset(t *testing.T) {
	var requests int32
	offsets := make(chan string, 4)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&requests, 1)
		offsets <- r.URL.Query().Get("offset")
		if n == 1 {
			_, _ = w.Write([]byte(`{"ok":true,"result":[{"update_id":10,"message":{"message_id":1,"chat":{"id":5,"type":"private"},"date":0,"text":"/start"}}]}`))
			return
		}
		<-r.Context().Done()
	}))
	defer srv.Close()

	client := NewClientWithBaseURL(srv.URL, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	handled := make(chan *domain.Update, 1)
	poller := NewPoller(client, &Config{PollingTimeout: 1}, func(_ context.Context, u *domain.Update) error {
		handled <- u
		return nil
	}, testLogger())

	done := make(chan error, 1)
	go func() { done <- poller.Start(ctx) }()

	select {
	case u := <-handled:
		assert.Equal(t, int64(10), u.UpdateID)
		require.NotNil(t, u.Message)
		assert.Equal(t, "/start", *u.Message.Text)
	case <-time.After(5 * time.Second):
		t.Fatal("update was not handled")
	}

	assert.Equal(t, "0", <-offsets)
	select {
	case offset := <-offsets:
		assert.Equal(t, "11", offset)
	case <-time.After(5 * time.Second):
		t.Fatal("second poll was not issued")
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("poller did not stop")
	}
}

func TestConfig_IsWebhookEnabled(t *testing.T) {
	for value, want := range map[string]bool{"true": true, "TRUE": true, "1": true, "yes": true, "": false, "false": false, "no": false} {
		cfg := Config{UseWebhook: value}
		assert.Equal(t, want, cfg.IsWebhookEnabled(), value)
	}
}
