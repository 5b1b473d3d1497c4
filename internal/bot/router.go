// Package bot routes inbound Telegram events to handlers. Commands and
// callback payloads live in two separate dispatch tables; every event runs
// under a supervised boundary so a failing handler never stops the poll
// loop.
package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"strings"

	"github.com/google/uuid"

	"github.com/SijmenSchoon/pimpybot/internal/history"
	"github.com/SijmenSchoon/pimpybot/internal/logging"
	"github.com/SijmenSchoon/pimpybot/internal/render"
	"github.com/SijmenSchoon/pimpybot/internal/store"
	"github.com/SijmenSchoon/pimpybot/internal/telegram"
	"github.com/SijmenSchoon/pimpybot/internal/via"
)

// Messenger is the outbound subset of the Telegram client the router uses.
type Messenger interface {
	SendMessage(ctx context.Context, chatID int64, text string) (*telegram.Message, error)
	SendMessageWithKeyboard(ctx context.Context, chatID int64, text string, keyboard [][]telegram.InlineKeyboardButton) (*telegram.Message, error)
	EditMessageWithKeyboard(ctx context.Context, chatID, messageID int64, text string, keyboard [][]telegram.InlineKeyboardButton) error
	AnswerCallback(ctx context.Context, callbackID string) error
}

// Gateway is the remote task API surface the router invokes.
type Gateway interface {
	TestToken(ctx context.Context, token string) error
	Tasks(ctx context.Context, token string) ([]via.Task, error)
	GroupUserTasks(ctx context.Context, token string, groupID int) ([]via.Task, error)
	GroupUserTasksFor(ctx context.Context, token string, groupID, userID int) ([]via.Task, error)
	GroupTasks(ctx context.Context, token string, groupID int) (map[string][]via.Task, error)
	GroupUsers(ctx context.Context, token string, groupID int) ([]via.User, error)
	Task(ctx context.Context, token string, taskID int) (*via.Task, error)
	GroupTask(ctx context.Context, token string, groupID, taskID int) (*via.Task, error)
	AddGroupTask(ctx context.Context, token string, groupID int, owners, title string) (*via.Task, error)
	SetTaskStatus(ctx context.Context, token string, taskID int, status string) (*via.Task, error)
	SetGroupTaskStatus(ctx context.Context, token string, groupID, taskID int, status string) (*via.Task, error)
}

// Recorder persists processed-event records. A nil Recorder disables the
// audit trail.
type Recorder interface {
	RecordEvent(ev history.Event) error
}

// errRejected marks failures that were already explained to the user in
// chat. The supervised boundary records them as user errors instead of
// faults.
var errRejected = errors.New("rejected")

// reject wraps a short internal reason with the rejection marker. The
// user-facing message must already have been sent.
func reject(reason string) error {
	return fmt.Errorf("%s: %w", reason, errRejected)
}

type commandHandler func(ctx context.Context, msg *telegram.Message, args string) error

type callbackHandler func(ctx context.Context, query *telegram.CallbackQuery, args []string) error

// Router binds command names and callback payload heads to handlers and
// runs the identify/scope/parse/invoke pipeline for each inbound event.
type Router struct {
	messenger Messenger
	gateway   Gateway
	store     *store.Store
	recorder  Recorder
	logger    *slog.Logger

	// pick selects the footer example in task lists. Defaults to rand.Intn;
	// tests substitute a deterministic function.
	pick func(n int) int

	commands  map[string]commandHandler
	callbacks map[string]callbackHandler
}

// NewRouter builds a router with both dispatch tables populated. Fails if a
// command name or payload head is registered twice.
func NewRouter(messenger Messenger, gateway Gateway, credStore *store.Store, recorder Recorder) (*Router, error) {
	r := &Router{
		messenger: messenger,
		gateway:   gateway,
		store:     credStore,
		recorder:  recorder,
		logger:    logging.WithComponent("bot"),
		pick:      rand.Intn,
		commands:  make(map[string]commandHandler),
		callbacks: make(map[string]callbackHandler),
	}

	commands := []struct {
		name    string
		handler commandHandler
	}{
		{"start", r.cmdStart},
		{"chatinfo", r.cmdChatInfo},
		{"me", r.cmdMe},
		{"help", r.cmdHelp},
		{"tasks", r.cmdTasks},
		{"grouptasks", r.cmdGroupTasks},
		{"task", r.cmdTask},
		{"done", r.cmdDone},
		{"actie", r.cmdActie},
	}
	for _, c := range commands {
		if err := r.register(c.name, c.handler); err != nil {
			return nil, err
		}
	}

	callbacks := []struct {
		head    string
		handler callbackHandler
	}{
		{"status", r.callbackStatus},
		{"tasks", r.callbackTasks},
	}
	for _, c := range callbacks {
		if err := r.registerCallback(c.head, c.handler); err != nil {
			return nil, err
		}
	}

	return r, nil
}

func (r *Router) register(name string, handler commandHandler) error {
	if _, exists := r.commands[name]; exists {
		return fmt.Errorf("command %q registered twice", name)
	}
	r.commands[name] = handler
	return nil
}

func (r *Router) registerCallback(head string, handler callbackHandler) error {
	if _, exists := r.callbacks[head]; exists {
		return fmt.Errorf("callback %q registered twice", head)
	}
	r.callbacks[head] = handler
	return nil
}

// Dispatch routes one inbound update. It implements telegram.Dispatcher and
// is called sequentially by the transport, one update at a time.
func (r *Router) Dispatch(ctx context.Context, update *telegram.Update) {
	switch {
	case update.Message != nil:
		r.dispatchCommand(ctx, update.Message)
	case update.CallbackQuery != nil:
		r.dispatchCallback(ctx, update.CallbackQuery)
	}
}

func (r *Router) dispatchCommand(ctx context.Context, msg *telegram.Message) {
	if msg.From == nil || msg.Chat == nil {
		return
	}

	name, args, ok := splitCommand(msg.Text)
	if !ok {
		return
	}
	handler, ok := r.commands[name]
	if !ok {
		// Not ours; other bots in the chat may handle it.
		return
	}

	r.run(ctx, history.Event{
		Kind:    "command",
		ChatID:  msg.Chat.ID,
		ActorID: msg.From.ID,
		Command: name,
	}, func(ctx context.Context) error {
		return handler(ctx, msg, args)
	})
}

func (r *Router) dispatchCallback(ctx context.Context, query *telegram.CallbackQuery) {
	if query.From == nil || query.Message == nil || query.Message.Chat == nil {
		return
	}

	fields := strings.Fields(query.Data)
	if len(fields) == 0 {
		return
	}
	handler, ok := r.callbacks[fields[0]]
	if !ok {
		return
	}

	r.run(ctx, history.Event{
		Kind:    "callback",
		ChatID:  query.Message.Chat.ID,
		ActorID: query.From.ID,
		Command: fields[0],
	}, func(ctx context.Context) error {
		// Acknowledge before doing any work so Telegram stops the
		// client-side spinner even when the handler is slow.
		if err := r.messenger.AnswerCallback(ctx, query.ID); err != nil {
			return fmt.Errorf("failed to answer callback: %w", err)
		}
		return handler(ctx, query, fields[1:])
	})
}

// run is the supervised boundary around a single event. Handler errors and
// panics are logged with a correlation id and recorded in the history
// store; they never propagate to the poll loop.
func (r *Router) run(ctx context.Context, ev history.Event, fn func(ctx context.Context) error) {
	ev.ID = uuid.New().String()
	logger := r.logger.With(
		slog.String("correlation_id", ev.ID),
		slog.String("kind", ev.Kind),
		slog.String("command", ev.Command),
		slog.Int64("chat_id", ev.ChatID),
		slog.Int64("actor_id", ev.ActorID),
	)

	defer func() {
		if rec := recover(); rec != nil {
			logger.Error("Handler panicked", "panic", rec)
			r.record(ev, history.OutcomeFault, fmt.Sprintf("panic: %v", rec))
		}
	}()

	err := fn(ctx)
	switch {
	case err == nil:
		r.record(ev, history.OutcomeOK, "")
	case errors.Is(err, errRejected):
		logger.Debug("Event rejected", "reason", err.Error())
		r.record(ev, history.OutcomeUserErr, err.Error())
	default:
		logger.Error("Event handling failed", "error", err)
		r.record(ev, history.OutcomeFault, err.Error())
	}
}

func (r *Router) record(ev history.Event, outcome, errMsg string) {
	if r.recorder == nil {
		return
	}
	ev.Outcome = outcome
	ev.Error = errMsg
	if err := r.recorder.RecordEvent(ev); err != nil {
		r.logger.Warn("Failed to record event", "error", err, "correlation_id", ev.ID)
	}
}

// splitCommand parses "/name args" message text, tolerating the
// "/name@botname" form Telegram produces in group chats.
func splitCommand(text string) (name, args string, ok bool) {
	if !strings.HasPrefix(text, "/") {
		return "", "", false
	}
	head, rest, _ := strings.Cut(text[1:], " ")
	if head == "" {
		return "", "", false
	}
	if at := strings.IndexByte(head, '@'); at >= 0 {
		head = head[:at]
	}
	return head, strings.TrimSpace(rest), true
}

// reply sends a plain message to a chat.
func (r *Router) reply(ctx context.Context, chatID int64, text string) error {
	if _, err := r.messenger.SendMessage(ctx, chatID, text); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	return nil
}

// rejectWith sends a user-facing rejection and returns the matching
// rejection error for the supervised boundary.
func (r *Router) rejectWith(ctx context.Context, chatID int64, text, reason string) error {
	if err := r.reply(ctx, chatID, text); err != nil {
		return err
	}
	return reject(reason)
}

// identify resolves the actor's stored API token. Unknown actors get the
// fixed stranger message and a terminal rejection.
func (r *Router) identify(ctx context.Context, chatID int64, from *telegram.User) (string, error) {
	token, ok := r.store.Token(from.ID)
	if !ok {
		return "", r.rejectWith(ctx, chatID, strangerMessage(from.FirstName), "actor not onboarded")
	}
	return token, nil
}

// resolveGroup maps a group chat to its via group. Unmapped chats get the
// fixed not-enabled message and a terminal rejection.
func (r *Router) resolveGroup(ctx context.Context, chat *telegram.Chat) (int, error) {
	groupID, ok := r.store.GroupID(chat.ID)
	if !ok {
		return 0, r.rejectWith(ctx, chat.ID, msgGroupNotEnabled, "group not mapped")
	}
	return groupID, nil
}

// toKeyboard maps render button rows onto Telegram inline keyboard rows.
func toKeyboard(rows [][]render.Button) [][]telegram.InlineKeyboardButton {
	keyboard := make([][]telegram.InlineKeyboardButton, len(rows))
	for i, row := range rows {
		keyboard[i] = make([]telegram.InlineKeyboardButton, len(row))
		for j, b := range row {
			keyboard[i][j] = telegram.InlineKeyboardButton{
				Text:         b.Label,
				CallbackData: b.Payload,
			}
		}
	}
	return keyboard
}
