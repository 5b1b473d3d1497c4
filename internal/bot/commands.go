package bot

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/SijmenSchoon/pimpybot/internal/render"
	"github.com/SijmenSchoon/pimpybot/internal/taskcode"
	"github.com/SijmenSchoon/pimpybot/internal/telegram"
	"github.com/SijmenSchoon/pimpybot/internal/via"
)

// cmdStart onboards a new actor. Onboarding happens in private chats only;
// group members should not paste API tokens where everyone can read them.
func (r *Router) cmdStart(ctx context.Context, msg *telegram.Message, args string) error {
	if !msg.Chat.IsPrivate() {
		return r.rejectWith(ctx, msg.Chat.ID, msgPrivateOnly, "onboarding outside private chat")
	}

	name := msg.From.FirstName
	if _, known := r.store.Token(msg.From.ID); known {
		return r.reply(ctx, msg.Chat.ID, welcomeBackMessage(name))
	}

	token := strings.TrimSpace(args)
	if token == "" {
		return r.rejectWith(ctx, msg.Chat.ID, introMessage(name), "no token supplied")
	}

	if err := r.gateway.TestToken(ctx, token); err != nil {
		if errors.Is(err, via.ErrPermissionDenied) {
			return r.rejectWith(ctx, msg.Chat.ID, badTokenMessage(name), "token rejected")
		}
		return fmt.Errorf("token probe failed: %w", err)
	}

	r.store.Onboard(msg.From.ID, token)
	return r.reply(ctx, msg.Chat.ID, welcomeMessage(name))
}

// cmdChatInfo dumps chat diagnostics. Works without a credential.
func (r *Router) cmdChatInfo(ctx context.Context, msg *telegram.Message, _ string) error {
	info := fmt.Sprintf("id: %d\ntype: %s\ntitle: %s",
		msg.Chat.ID, msg.Chat.Type, msg.Chat.Title)
	return r.reply(ctx, msg.Chat.ID, info)
}

// cmdMe shows what the bot has stored about the actor.
func (r *Router) cmdMe(ctx context.Context, msg *telegram.Message, _ string) error {
	_, onboarded := r.store.Token(msg.From.ID)
	return r.reply(ctx, msg.Chat.ID, meMessage(msg.From.ID, onboarded))
}

func (r *Router) cmdHelp(ctx context.Context, msg *telegram.Message, _ string) error {
	return r.reply(ctx, msg.Chat.ID, msgHelp)
}

// cmdTasks lists the actor's tasks: all of them in a private chat, only the
// mapped group's in a group chat.
func (r *Router) cmdTasks(ctx context.Context, msg *telegram.Message, _ string) error {
	token, err := r.identify(ctx, msg.Chat.ID, msg.From)
	if err != nil {
		return err
	}

	if msg.Chat.IsPrivate() {
		tasks, err := r.gateway.Tasks(ctx, token)
		if err != nil {
			return fmt.Errorf("failed to list tasks: %w", err)
		}
		if len(tasks) == 0 {
			return r.reply(ctx, msg.Chat.ID, msgNoTasks)
		}
		return r.reply(ctx, msg.Chat.ID, render.TaskList(tasks, false, "", r.pick))
	}

	groupID, err := r.resolveGroup(ctx, msg.Chat)
	if err != nil {
		return err
	}
	tasks, err := r.gateway.GroupUserTasks(ctx, token, groupID)
	if err != nil {
		return fmt.Errorf("failed to list group tasks: %w", err)
	}
	if len(tasks) == 0 {
		return r.reply(ctx, msg.Chat.ID, msgNoGroupTasks)
	}
	return r.reply(ctx, msg.Chat.ID, render.TaskList(tasks, true, "", r.pick))
}

// cmdGroupTasks shows the per-member status tallies for the whole group,
// with a button per member to list their tasks.
func (r *Router) cmdGroupTasks(ctx context.Context, msg *telegram.Message, _ string) error {
	token, err := r.identify(ctx, msg.Chat.ID, msg.From)
	if err != nil {
		return err
	}
	if msg.Chat.IsPrivate() {
		return r.rejectWith(ctx, msg.Chat.ID, msgGroupOnly, "group-only command in private chat")
	}
	groupID, err := r.resolveGroup(ctx, msg.Chat)
	if err != nil {
		return err
	}

	byOwner, err := r.gateway.GroupTasks(ctx, token, groupID)
	if err != nil {
		return fmt.Errorf("failed to list group tasks: %w", err)
	}
	members, err := r.gateway.GroupUsers(ctx, token, groupID)
	if err != nil {
		return fmt.Errorf("failed to list group members: %w", err)
	}

	text, buttons := render.OwnerSummary(byOwner, members)
	if _, err := r.messenger.SendMessageWithKeyboard(ctx, msg.Chat.ID, text, toKeyboard(buttons)); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	return nil
}

// taskFromArgs runs the parse/decode/fetch steps shared by the
// task-targeting commands: normalize the argument into a short code, decode
// it, and fetch the task (group-scoped when groupID is nonzero).
func (r *Router) taskFromArgs(ctx context.Context, chatID int64, token string, groupID int, args string) (*via.Task, string, error) {
	code := taskcode.Normalize(args)
	if code == "" {
		return nil, "", r.rejectWith(ctx, chatID, msgWhichTask, "missing task code")
	}

	taskID, err := taskcode.Decode(code)
	if err != nil {
		return nil, "", r.rejectWith(ctx, chatID, invalidCodeMessage(code), "invalid task code")
	}

	var task *via.Task
	if groupID != 0 {
		task, err = r.gateway.GroupTask(ctx, token, groupID, taskID)
	} else {
		task, err = r.gateway.Task(ctx, token, taskID)
	}
	switch {
	case errors.Is(err, via.ErrNotFound):
		return nil, "", r.rejectWith(ctx, chatID, notFoundMessage(code), "task not found")
	case errors.Is(err, via.ErrPermissionDenied):
		return nil, "", r.rejectWith(ctx, chatID, noRightsMessage(code), "no rights to task")
	case err != nil:
		return nil, "", fmt.Errorf("failed to fetch task: %w", err)
	}
	return task, code, nil
}

// scope resolves the group mapping for group chats; private chats are
// unscoped (groupID 0).
func (r *Router) scope(ctx context.Context, chat *telegram.Chat) (int, error) {
	if chat.IsPrivate() {
		return 0, nil
	}
	return r.resolveGroup(ctx, chat)
}

// cmdTask shows one task in detail, with status-change buttons.
func (r *Router) cmdTask(ctx context.Context, msg *telegram.Message, args string) error {
	token, err := r.identify(ctx, msg.Chat.ID, msg.From)
	if err != nil {
		return err
	}
	groupID, err := r.scope(ctx, msg.Chat)
	if err != nil {
		return err
	}

	task, _, err := r.taskFromArgs(ctx, msg.Chat.ID, token, groupID, args)
	if err != nil {
		return err
	}

	text, buttons := render.TaskDetail(task, groupID != 0)
	if _, err := r.messenger.SendMessageWithKeyboard(ctx, msg.Chat.ID, text, toKeyboard(buttons)); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	return nil
}

// cmdDone is the shortcut for marking a task done.
func (r *Router) cmdDone(ctx context.Context, msg *telegram.Message, args string) error {
	token, err := r.identify(ctx, msg.Chat.ID, msg.From)
	if err != nil {
		return err
	}
	groupID, err := r.scope(ctx, msg.Chat)
	if err != nil {
		return err
	}

	task, code, err := r.taskFromArgs(ctx, msg.Chat.ID, token, groupID, args)
	if err != nil {
		return err
	}

	if _, err := r.gateway.SetTaskStatus(ctx, token, task.ID, render.Done.Token()); err != nil {
		if errors.Is(err, via.ErrPermissionDenied) {
			return r.rejectWith(ctx, msg.Chat.ID, cannotEditMessage(code), "no rights to edit task")
		}
		return fmt.Errorf("failed to set task status: %w", err)
	}
	return r.reply(ctx, msg.Chat.ID, doneMessage(code))
}

var (
	actiePattern = regexp.MustCompile(`^([^:]+): (.*)$`)
	actieNoColon = regexp.MustCompile(`^([^ ]+) (.*)$`)
)

// cmdActie creates a group task from an "owner: title" argument. A
// first-space split backs the corrective suggestion when the colon is
// missing.
func (r *Router) cmdActie(ctx context.Context, msg *telegram.Message, args string) error {
	token, err := r.identify(ctx, msg.Chat.ID, msg.From)
	if err != nil {
		return err
	}
	if msg.Chat.IsPrivate() {
		return r.rejectWith(ctx, msg.Chat.ID, msgActieGroupOnly, "group-only command in private chat")
	}
	groupID, err := r.resolveGroup(ctx, msg.Chat)
	if err != nil {
		return err
	}

	match := actiePattern.FindStringSubmatch(args)
	if match == nil {
		if fallback := actieNoColon.FindStringSubmatch(args); fallback != nil {
			return r.rejectWith(ctx, msg.Chat.ID,
				actieSuggestionMessage(fallback[1], fallback[2]), "missing colon in /actie")
		}
		return r.rejectWith(ctx, msg.Chat.ID, msgActieSyntax, "malformed /actie")
	}

	task, err := r.gateway.AddGroupTask(ctx, token, groupID, match[1], match[2])
	if err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}

	text, buttons := render.TaskDetail(task, true)
	text = createdBanner(taskcode.Encode(task.ID)) + text
	if _, err := r.messenger.SendMessageWithKeyboard(ctx, msg.Chat.ID, text, toKeyboard(buttons)); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	return nil
}
