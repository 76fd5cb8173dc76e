// Package conversation runs chat turns: it sends user text to the completion backend,
// applies the requested todo mutations and keeps the message log.
package conversation

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/benvon/todo-chat/internal/clock"
	"github.com/benvon/todo-chat/internal/events"
	"github.com/benvon/todo-chat/internal/models"
	"github.com/benvon/todo-chat/internal/mutation"
	"github.com/benvon/todo-chat/internal/protocol"
	"github.com/benvon/todo-chat/internal/services/ai"
	"github.com/benvon/todo-chat/internal/storage"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const (
	// WelcomeMessage is appended when the log is empty
	WelcomeMessage = "Hello! I'm here to help you manage your todos naturally. You can tell me what you need to do, ask me to prioritize tasks, or just have a conversation about your day."
	// ErrorReply is shown to the user when a turn fails
	ErrorReply = "I'm having trouble processing that right now. Please try again."

	tracerName = "github.com/benvon/todo-chat/internal/conversation"
)

var (
	// ErrEmptyMessage is returned for blank input. No state changes.
	ErrEmptyMessage = errors.New("message is empty")
	// ErrBusy is returned by Reset while a turn is in flight
	ErrBusy = errors.New("a turn is in progress")
)

// State is the orchestrator state
type State int

const (
	// StateIdle means no turn is waiting on the backend
	StateIdle State = iota
	// StateBusy means at least one turn is waiting on the backend
	StateBusy
)

func (s State) String() string {
	if s == StateBusy {
		return "busy"
	}
	return "idle"
}

// Dependencies are the collaborators of a Conversation. Backend and Store are required.
type Dependencies struct {
	Backend   ai.CompletionBackend
	Store     storage.Store
	Codec     *protocol.Codec
	Applier   *mutation.Applier
	Clock     clock.Clock
	Publisher events.Publisher
	Logger    *zap.Logger
	Tracer    trace.Tracer
}

// TurnResult describes one completed turn
type TurnResult struct {
	UserMessage models.Message
	Reply       models.Message
	Todos       []models.Todo
	Applied     int
	Skipped     int
}

// Failed reports whether the backend call failed and the reply is the error notice
func (r *TurnResult) Failed() bool {
	return r.Reply.MessageType == models.MessageTypeError
}

// Conversation owns the message log and todo collection. All mutation of either
// happens under mu; the backend call runs with mu released.
type Conversation struct {
	backend   ai.CompletionBackend
	store     storage.Store
	codec     *protocol.Codec
	applier   *mutation.Applier
	clock     clock.Clock
	publisher events.Publisher
	logger    *zap.Logger
	tracer    trace.Tracer

	mu        sync.Mutex
	inflight  int
	messages  []models.Message
	todos     []models.Todo
	lastStamp time.Time
}

// New creates a conversation. Call Load before the first Send to restore persisted state.
func New(deps Dependencies) *Conversation {
	c := &Conversation{
		backend:   deps.Backend,
		store:     deps.Store,
		codec:     deps.Codec,
		applier:   deps.Applier,
		clock:     deps.Clock,
		publisher: deps.Publisher,
		logger:    deps.Logger,
		tracer:    deps.Tracer,
	}
	if c.clock == nil {
		c.clock = clock.System{}
	}
	if c.logger == nil {
		c.logger = zap.NewNop()
	}
	if c.codec == nil {
		c.codec = protocol.NewCodec(protocol.WithLogger(c.logger))
	}
	if c.applier == nil {
		c.applier = mutation.NewApplier(c.clock, mutation.WithLogger(c.logger))
	}
	if c.publisher == nil {
		c.publisher = events.NopPublisher{}
	}
	if c.tracer == nil {
		c.tracer = otel.Tracer(tracerName)
	}
	return c
}

// Load restores the log and collection from the store. Unreadable documents are
// logged and replaced by empty collections. An empty log gets the welcome message.
func (c *Conversation) Load(ctx context.Context) {
	messages, err := c.store.LoadMessages(ctx)
	if err != nil {
		c.logger.Warn("failed_to_load_messages", zap.Error(err))
		messages = nil
	}
	todos, err := c.store.LoadTodos(ctx)
	if err != nil {
		c.logger.Warn("failed_to_load_todos", zap.Error(err))
		todos = nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.messages = messages
	c.todos = todos
	c.lastStamp = time.Time{}
	for _, m := range messages {
		if m.Timestamp.After(c.lastStamp) {
			c.lastStamp = m.Timestamp
		}
	}
	c.welcomeLocked(ctx)

	c.logger.Info("conversation_loaded",
		zap.Int("message_count", len(c.messages)),
		zap.Int("todo_count", len(c.todos)),
	)
}

// welcomeLocked appends and persists the welcome message when the log is empty
func (c *Conversation) welcomeLocked(ctx context.Context) {
	if len(c.messages) > 0 {
		return
	}
	c.appendLocked(WelcomeMessage, models.SenderAssistant, models.MessageTypeText)
	c.saveMessagesLocked(ctx)
}

// Send runs one turn. Backend failures do not return an error: they produce an
// error-typed reply in the log and in the result.
func (c *Conversation) Send(ctx context.Context, text string) (*TurnResult, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyMessage
	}

	// A started turn runs to success or reported failure
	ctx = context.WithoutCancel(ctx)
	ctx, span := c.tracer.Start(ctx, "conversation.turn")
	defer span.End()

	c.mu.Lock()
	userMessage := c.appendLocked(text, models.SenderUser, models.MessageTypeText)
	c.inflight++
	snapshot := make([]models.Todo, len(c.todos))
	copy(snapshot, c.todos)
	ref := userMessage.Timestamp
	c.saveMessagesLocked(ctx)
	c.mu.Unlock()

	c.publishMessage(ctx, userMessage)

	req := c.codec.BuildRequest(text, snapshot, ref)
	span.SetAttributes(attribute.Int("todo_chat.snapshot.todos", len(snapshot)))

	start := time.Now()
	raw, err := c.backend.Complete(ctx, req)
	latency := time.Since(start)

	if err != nil {
		return c.failTurn(ctx, span, userMessage, err, latency), nil
	}
	return c.completeTurn(ctx, span, userMessage, raw, latency), nil
}

func (c *Conversation) completeTurn(ctx context.Context, span trace.Span, userMessage models.Message, raw string, latency time.Duration) *TurnResult {
	display, mutations := c.codec.ParseResponse(raw)

	c.mu.Lock()
	result := c.applier.Apply(mutations, c.todos)
	c.todos = result.Todos
	reply := c.appendLocked(display, models.SenderAssistant, models.MessageTypeText)
	c.saveMessagesLocked(ctx)
	c.saveTodosLocked(ctx)
	todos := models.SortForDisplay(c.todos)
	c.inflight--
	c.mu.Unlock()

	c.publishMessage(ctx, reply)
	c.publishTodos(ctx, todos, reply.Timestamp)

	span.SetAttributes(
		attribute.Int("todo_chat.mutations.requested", len(mutations)),
		attribute.Int("todo_chat.mutations.applied", result.Applied),
		attribute.Int("todo_chat.mutations.skipped", result.Skipped),
	)
	c.logger.Info("turn_completed",
		zap.String("message_id", userMessage.ID.String()),
		zap.Int("mutations_requested", len(mutations)),
		zap.Int("mutations_applied", result.Applied),
		zap.Int("mutations_skipped", result.Skipped),
		zap.Int64("latency_ms", latency.Milliseconds()),
	)

	return &TurnResult{
		UserMessage: userMessage,
		Reply:       reply,
		Todos:       todos,
		Applied:     result.Applied,
		Skipped:     result.Skipped,
	}
}

func (c *Conversation) failTurn(ctx context.Context, span trace.Span, userMessage models.Message, err error, latency time.Duration) *TurnResult {
	c.mu.Lock()
	reply := c.appendLocked(ErrorReply, models.SenderAssistant, models.MessageTypeError)
	c.saveMessagesLocked(ctx)
	todos := models.SortForDisplay(c.todos)
	c.inflight--
	c.mu.Unlock()

	c.publishMessage(ctx, reply)

	span.RecordError(err)
	span.SetStatus(codes.Error, "completion failed")
	c.logger.Warn("completion_failed",
		zap.String("message_id", userMessage.ID.String()),
		zap.String("error_class", classify(err)),
		zap.Error(err),
		zap.Int64("latency_ms", latency.Milliseconds()),
	)

	return &TurnResult{
		UserMessage: userMessage,
		Reply:       reply,
		Todos:       todos,
	}
}

func classify(err error) string {
	switch {
	case ai.IsConfigurationError(err):
		return "configuration"
	case ai.IsProtocolError(err):
		return "protocol"
	case ai.IsTransportError(err):
		return "transport"
	default:
		return "unknown"
	}
}

// appendLocked adds a message stamped no earlier than the previous one
func (c *Conversation) appendLocked(content string, sender models.MessageSender, messageType models.MessageType) models.Message {
	stamp := c.clock.Now()
	if stamp.Before(c.lastStamp) {
		stamp = c.lastStamp
	}
	c.lastStamp = stamp

	m := models.NewMessage(content, sender, messageType, stamp)
	c.messages = append(c.messages, m)
	return m
}

func (c *Conversation) saveMessagesLocked(ctx context.Context) {
	if err := c.store.SaveMessages(ctx, c.messages); err != nil {
		c.logger.Error("failed_to_save_messages", zap.Error(err))
	}
}

func (c *Conversation) saveTodosLocked(ctx context.Context) {
	if err := c.store.SaveTodos(ctx, c.todos); err != nil {
		c.logger.Error("failed_to_save_todos", zap.Error(err))
	}
}

func (c *Conversation) publishMessage(ctx context.Context, m models.Message) {
	event, err := events.NewMessageCreated(m, m.Timestamp)
	c.publish(ctx, event, err)
}

func (c *Conversation) publishTodos(ctx context.Context, todos []models.Todo, at time.Time) {
	event, err := events.NewTodosUpdated(todos, at)
	c.publish(ctx, event, err)
}

func (c *Conversation) publish(ctx context.Context, event events.Event, err error) {
	if err != nil {
		c.logger.Warn("failed_to_build_event", zap.Error(err))
		return
	}
	if err := c.publisher.Publish(ctx, event); err != nil {
		c.logger.Warn("failed_to_publish_event",
			zap.String("event_type", string(event.Type)),
			zap.Error(err),
		)
	}
}

// State reports whether a turn is waiting on the backend
func (c *Conversation) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.inflight > 0 {
		return StateBusy
	}
	return StateIdle
}

// Messages returns a copy of the log in append order
func (c *Conversation) Messages() []models.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]models.Message, len(c.messages))
	copy(out, c.messages)
	return out
}

// Todos returns the collection in display order
func (c *Conversation) Todos() []models.Todo {
	c.mu.Lock()
	defer c.mu.Unlock()
	return models.SortForDisplay(c.todos)
}

// Reset clears the store and starts a fresh log with the welcome message
func (c *Conversation) Reset(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.inflight > 0 {
		return ErrBusy
	}
	if err := c.store.Clear(ctx); err != nil {
		return err
	}
	c.messages = nil
	c.todos = nil
	c.welcomeLocked(ctx)
	c.logger.Info("conversation_reset")
	return nil
}
