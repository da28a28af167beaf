package domain

import "github.com/google/uuid"

// ConversationState шаг интерактивного диалога
type ConversationState string

const (
	StateIdle                ConversationState = ""
	StateAwaitingDetails     ConversationState = "awaiting_details"
	StateAwaitingCategory    ConversationState = "awaiting_category"
	StateAwaitingImage       ConversationState = "awaiting_image"
	StateAwaitingNotes       ConversationState = "awaiting_notes"
	StateAwaitingUpdateDate  ConversationState = "awaiting_update_date"
	StateAwaitingUpdateImage ConversationState = "awaiting_update_image"
	StateAwaitingUpdateNotes ConversationState = "awaiting_update_notes"
)

// ExpectsText true если состояние ждёт текстового ответа пользователя
func (s ConversationState) ExpectsText() bool {
	switch s {
	case StateAwaitingDetails, StateAwaitingImage, StateAwaitingNotes,
		StateAwaitingUpdateDate, StateAwaitingUpdateImage, StateAwaitingUpdateNotes:
		return true
	default:
		return false
	}
}

// Conversation контекст диалога для пары (chat, user)
type Conversation struct {
	State    ConversationState `json:"state"`
	Name     string            `json:"name,omitempty"`
	DateStr  string            `json:"date_str,omitempty"`
	Category Category          `json:"category,omitempty"`
	ImageURL *string           `json:"image_url,omitempty"`
	Notes    *string           `json:"notes,omitempty"`
	// TargetID запись, которую редактирует /update_birthday
	TargetID uuid.UUID `json:"target_id,omitempty"`
}
