package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/admin/tg-bots/birthday-bot/internal/domain"
)

const (
	telegramAPIBaseURL = "https://api.telegram.org/bot"
	apiTimeout         = 30 * time.Second
	parseModeHTML      = "HTML"
)

// Client клиент для работы с Telegram Bot API
type Client struct {
	httpClient *http.Client
	baseURL    string
	log        *slog.Logger
}

// NewClient создаёт новый клиент для Telegram Bot API
func NewClient(token string, log *slog.Logger) *Client {
	return NewClientWithBaseURL(telegramAPIBaseURL+token, log)
}

// NewClientWithBaseURL клиент с произвольным адресом API (локальный Bot API сервер, тесты)
func NewClientWithBaseURL(baseURL string, log *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: apiTimeout,
		},
		baseURL: baseURL,
		log:     log,
	}
}

// SendMessageRequest запрос на отправку сообщения
type SendMessageRequest struct {
	ChatID                int64                  `json:"chat_id"`
	MessageThreadID       *int64                 `json:"message_thread_id,omitempty"` // топик форума
	Text                  string                 `json:"text"`
	ParseMode             string                 `json:"parse_mode,omitempty"`
	DisableWebPagePreview bool                   `json:"disable_web_page_preview,omitempty"`
	ReplyMarkup           *domain.InlineKeyboard `json:"reply_markup,omitempty"`
}

// EditMessageTextRequest запрос на редактирование сообщения
type EditMessageTextRequest struct {
	ChatID      int64                  `json:"chat_id"`
	MessageID   int64                  `json:"message_id"`
	Text        string                 `json:"text"`
	ParseMode   string                 `json:"parse_mode,omitempty"`
	ReplyMarkup *domain.InlineKeyboard `json:"reply_markup,omitempty"`
}

// SentMessage часть результата sendMessage/sendPhoto/sendDocument
type SentMessage struct {
	MessageID int64 `json:"message_id"`
	Date      int64 `json:"date"`
}

// SendMessage отправляет текстовое сообщение в HTML-разметке
func (c *Client) SendMessage(ctx context.Context, chatID int64, text string) error {
	return c.SendMessageWithKeyboard(ctx, chatID, text, nil)
}

func (c *Client) SendMessageWithKeyboard(ctx context.Context, chatID int64, text string, keyboard *domain.InlineKeyboard) error {
	_, err := c.SendMessageWithRequest(ctx, SendMessageRequest{
		ChatID:                chatID,
		Text:                  text,
		ParseMode:             parseModeHTML,
		DisableWebPagePreview: true,
		ReplyMarkup:           keyboard,
	})
	return err
}

// SendMessageWithRequest отправляет сообщение с произвольными параметрами (топики, разметка)
func (c *Client) SendMessageWithRequest(ctx context.Context, req SendMessageRequest) (*SentMessage, error) {
	var result SentMessage
	if err := c.call(ctx, "sendMessage", req, &result); err != nil {
		return nil, fmt.Errorf("failed to send message [chat_id=%d]: %w", req.ChatID, err)
	}

	c.log.Debug("message sent successfully", "chat_id", req.ChatID, "message_id", result.MessageID)
	return &result, nil
}

// EditMessageText заменяет текст и клавиатуру сообщения с inline-кнопками
func (c *Client) EditMessageText(ctx context.Context, chatID int64, messageID int64, text string, keyboard *domain.InlineKeyboard) error {
	req := EditMessageTextRequest{
		ChatID:      chatID,
		MessageID:   messageID,
		Text:        text,
		ParseMode:   parseModeHTML,
		ReplyMarkup: keyboard,
	}

	if err := c.call(ctx, "editMessageText", req, nil); err != nil {
		return fmt.Errorf("failed to edit message [chat_id=%d, message_id=%d]: %w", chatID, messageID, err)
	}
	return nil
}

// BotInfo результат getMe
type BotInfo struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

// GetMe получает информацию о боте
func (c *Client) GetMe(ctx context.Context) (*BotInfo, error) {
	var info BotInfo
	if err := c.call(ctx, "getMe", nil, &info); err != nil {
		return nil, err
	}
	c.log.Info("bot info retrieved successfully", "username", info.Username)
	return &info, nil
}

// BotCommand представляет команду бота
type BotCommand struct {
	Command     string `json:"command"`
	Description string `json:"description"`
}

// SetMyCommands регистрирует команды бота в меню
func (c *Client) SetMyCommands(ctx context.Context, commands []BotCommand) error {
	reqBody := struct {
		Commands []BotCommand `json:"commands"`
	}{
		Commands: commands,
	}

	if err := c.call(ctx, "setMyCommands", reqBody, nil); err != nil {
		return err
	}

	c.log.Info("bot commands registered successfully", "commands_count", len(commands))
	return nil
}

// SetWebhook регистрирует webhook; secret приходит обратно в заголовке каждого запроса
func (c *Client) SetWebhook(ctx context.Context, url string, secret string) error {
	reqBody := struct {
		URL            string   `json:"url"`
		SecretToken    string   `json:"secret_token,omitempty"`
		AllowedUpdates []string `json:"allowed_updates"`
	}{
		URL:            url,
		SecretToken:    secret,
		AllowedUpdates: []string{"message", "callback_query"},
	}

	if err := c.call(ctx, "setWebhook", reqBody, nil); err != nil {
		return err
	}

	c.log.Info("webhook registered", "url", url)
	return nil
}

// DeleteWebhook удаляет webhook (нужно вызывать перед запуском polling)
func (c *Client) DeleteWebhook(ctx context.Context) error {
	reqBody := struct {
		DropPendingUpdates bool `json:"drop_pending_updates"`
	}{
		DropPendingUpdates: true,
	}

	if err := c.call(ctx, "deleteWebhook", reqBody, nil); err != nil {
		return err
	}

	c.log.Info("webhook deleted successfully")
	return nil
}

// call выполняет JSON-запрос к методу API и распаковывает result в out (если out != nil)
func (c *Client) call(ctx context.Context, method string, payload interface{}, out interface{}) error {
	var body io.Reader
	if payload != nil {
		jsonData, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(jsonData)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/"+method, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if payload != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	return c.do(httpReq, method, out)
}

func (c *Client) do(httpReq *http.Request, method string, out interface{}) error {
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.log.Error("failed to send request to telegram", "error", err, "method", method)
		return fmt.Errorf("failed to send request to telegram: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	var apiResp struct {
		APIResponse
		Result json.RawMessage `json:"result"`
	}
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		c.log.Error("failed to unmarshal response",
			"error", err,
			"method", method,
			"status_code", resp.StatusCode,
			"body", string(respBody),
		)
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if !apiResp.OK {
		c.log.Warn("telegram API returned error",
			"method", method,
			"error_code", apiResp.ErrorCode,
			"description", apiResp.Description,
			"status_code", resp.StatusCode,
		)
		return &APIError{Method: method, Code: apiResp.ErrorCode, Description: apiResp.Description}
	}

	if out != nil && len(apiResp.Result) > 0 {
		if err := json.Unmarshal(apiResp.Result, out); err != nil {
			return fmt.Errorf("failed to unmarshal %s result: %w", method, err)
		}
	}
	return nil
}
