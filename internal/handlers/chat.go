package handlers

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"

	"github.com/benvon/todo-chat/internal/conversation"
	"github.com/benvon/todo-chat/internal/models"
	"github.com/benvon/todo-chat/internal/request"
	"github.com/benvon/todo-chat/internal/validation"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// MaxMessageLength bounds a single chat message
const MaxMessageLength = 4000

// Conversation is the part of the orchestrator the chat routes use
type Conversation interface {
	Send(ctx context.Context, text string) (*conversation.TurnResult, error)
	Messages() []models.Message
	Todos() []models.Todo
	Reset(ctx context.Context) error
}

// ChatHandler serves the message log, the todo list and chat turns
type ChatHandler struct {
	conversation Conversation
	logger       *zap.Logger
	sending      atomic.Bool
}

// NewChatHandler creates a new chat handler
func NewChatHandler(conv Conversation, logger *zap.Logger) *ChatHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChatHandler{conversation: conv, logger: logger}
}

// RegisterRoutes registers chat routes. sendMiddleware wraps only the send route.
func (h *ChatHandler) RegisterRoutes(r *mux.Router, sendMiddleware ...mux.MiddlewareFunc) {
	var send http.Handler = http.HandlerFunc(h.SendMessage)
	for i := len(sendMiddleware) - 1; i >= 0; i-- {
		send = sendMiddleware[i](send)
	}

	r.HandleFunc("/api/messages", h.ListMessages).Methods(http.MethodGet)
	r.Handle("/api/messages", send).Methods(http.MethodPost)
	r.HandleFunc("/api/messages", h.Reset).Methods(http.MethodDelete)
	r.HandleFunc("/api/todos", h.ListTodos).Methods(http.MethodGet)
}

// SendMessageRequest represents a chat message request
type SendMessageRequest struct {
	Message string `json:"message" validate:"required,max=4000"`
}

// SendMessageResponse is the result of one turn
type SendMessageResponse struct {
	UserMessage models.Message `json:"user_message"`
	Reply       models.Message `json:"reply"`
	Todos       []models.Todo  `json:"todos"`
}

// ListMessages returns the message log in order
func (h *ChatHandler) ListMessages(w http.ResponseWriter, r *http.Request) {
	messages := h.conversation.Messages()
	if messages == nil {
		messages = []models.Message{}
	}
	respondJSON(w, http.StatusOK, messages)
}

// ListTodos returns todos in display order
func (h *ChatHandler) ListTodos(w http.ResponseWriter, r *http.Request) {
	todos := h.conversation.Todos()
	if todos == nil {
		todos = []models.Todo{}
	}
	respondJSON(w, http.StatusOK, todos)
}

// SendMessage runs one turn. A second send while one is in flight is rejected.
func (h *ChatHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	var req SendMessageRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	if !h.sending.CompareAndSwap(false, true) {
		respondJSONError(w, http.StatusConflict, "Conflict", "A message is already being processed")
		return
	}
	defer h.sending.Store(false)

	result, err := h.conversation.Send(r.Context(), validation.SanitizeText(req.Message))
	if err != nil {
		if errors.Is(err, conversation.ErrEmptyMessage) {
			respondJSONError(w, http.StatusBadRequest, "Bad Request", "Message cannot be empty")
			return
		}
		h.logger.Error("send_message_failed",
			zap.Error(err),
			zap.String("request_id", request.RequestIDFromContext(r.Context())),
		)
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to process message")
		return
	}

	todos := result.Todos
	if todos == nil {
		todos = []models.Todo{}
	}
	respondJSON(w, http.StatusOK, SendMessageResponse{
		UserMessage: result.UserMessage,
		Reply:       result.Reply,
		Todos:       todos,
	})
}

// Reset clears the conversation and the todo list
func (h *ChatHandler) Reset(w http.ResponseWriter, r *http.Request) {
	if err := h.conversation.Reset(r.Context()); err != nil {
		if errors.Is(err, conversation.ErrBusy) {
			respondJSONError(w, http.StatusConflict, "Conflict", "A message is being processed")
			return
		}
		h.logger.Error("reset_failed",
			zap.Error(err),
			zap.String("request_id", request.RequestIDFromContext(r.Context())),
		)
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to reset conversation")
		return
	}
	respondJSON(w, http.StatusOK, h.conversation.Messages())
}
