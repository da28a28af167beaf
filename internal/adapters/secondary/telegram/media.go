package telegram

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"
)

// captionLimit ограничение Telegram на длину подписи к медиа
const captionLimit = 1024

// SendPhotoURLRequest фото по URL; Telegram сам скачивает картинку
type SendPhotoURLRequest struct {
	ChatID    int64  `json:"chat_id"`
	Photo     string `json:"photo"`
	Caption   string `json:"caption,omitempty"`
	ParseMode string `json:"parse_mode,omitempty"`
}

// SendPhotoURL отправляет фото по ссылке с подписью
func (c *Client) SendPhotoURL(ctx context.Context, chatID int64, photoURL string, caption string) error {
	if len([]rune(caption)) > captionLimit {
		return fmt.Errorf("caption too long: %d runes", len([]rune(caption)))
	}

	req := SendPhotoURLRequest{
		ChatID:    chatID,
		Photo:     photoURL,
		Caption:   caption,
		ParseMode: parseModeHTML,
	}

	var result SentMessage
	if err := c.call(ctx, "sendPhoto", req, &result); err != nil {
		return fmt.Errorf("failed to send photo [chat_id=%d]: %w", chatID, err)
	}

	c.log.Debug("photo sent successfully", "chat_id", chatID, "message_id", result.MessageID)
	return nil
}

// SendDocument отправляет файл через multipart/form-data
func (c *Client) SendDocument(ctx context.Context, chatID int64, filename string, data []byte, caption string) error {
	var requestBody bytes.Buffer
	writer := multipart.NewWriter(&requestBody)

	if err := writer.WriteField("chat_id", strconv.FormatInt(chatID, 10)); err != nil {
		return fmt.Errorf("failed to write chat_id: %w", err)
	}
	if caption != "" {
		if err := writer.WriteField("caption", caption); err != nil {
			return fmt.Errorf("failed to write caption: %w", err)
		}
		if err := writer.WriteField("parse_mode", parseModeHTML); err != nil {
			return fmt.Errorf("failed to write parse_mode: %w", err)
		}
	}

	part, err := writer.CreateFormFile("document", filename)
	if err != nil {
		return fmt.Errorf("failed to create document form file: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return fmt.Errorf("failed to write document data: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to close multipart writer: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/sendDocument", &requestBody)
	if err != nil {
		return fmt.Errorf("telegram create request failed [chat_id=%d]: %w", chatID, err)
	}
	httpReq.Header.Set("Content-Type", writer.FormDataContentType())

	c.log.Debug("sending document to telegram", "chat_id", chatID, "filename", filename, "size", len(data))

	var result SentMessage
	if err := c.do(httpReq, "sendDocument", &result); err != nil {
		return fmt.Errorf("failed to send document [chat_id=%d]: %w", chatID, err)
	}
	return nil
}
