package models

import (
	"time"

	"github.com/google/uuid"
)

// MessageSender identifies who produced a message
type MessageSender string

const (
	SenderUser      MessageSender = "user"
	SenderAssistant MessageSender = "assistant"
	SenderSystem    MessageSender = "system"
)

// MessageType classifies a message in the conversation log
type MessageType string

const (
	MessageTypeText       MessageType = "text"
	MessageTypeTodoUpdate MessageType = "todo_update"
	MessageTypeError      MessageType = "error"
)

// Message is one immutable entry in the conversation log
type Message struct {
	ID          uuid.UUID     `json:"id"`
	Content     string        `json:"content"`
	Sender      MessageSender `json:"sender" validate:"oneof=user assistant system"`
	Timestamp   time.Time     `json:"timestamp"`
	MessageType MessageType   `json:"message_type" validate:"oneof=text todo_update error"`
}

// NewMessage creates a message with a fresh identifier
func NewMessage(content string, sender MessageSender, messageType MessageType, at time.Time) Message {
	return Message{
		ID:          uuid.New(),
		Content:     content,
		Sender:      sender,
		Timestamp:   at,
		MessageType: messageType,
	}
}
