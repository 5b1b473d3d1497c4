package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/SijmenSchoon/pimpybot/internal/render"
	"github.com/SijmenSchoon/pimpybot/internal/taskcode"
	"github.com/SijmenSchoon/pimpybot/internal/telegram"
	"github.com/SijmenSchoon/pimpybot/internal/via"
)

// taskCode is the display code for a task id already known to be valid.
func taskCode(taskID int) string {
	return taskcode.Encode(taskID)
}

// callbackStatus handles "status <token> <id>" button presses: apply the
// status change, re-fetch the canonical task, and edit the originating
// message so its buttons match the new state.
func (r *Router) callbackStatus(ctx context.Context, query *telegram.CallbackQuery, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("malformed status payload: %q", strings.Join(args, " "))
	}

	chat := query.Message.Chat
	token, err := r.identify(ctx, chat.ID, query.From)
	if err != nil {
		return err
	}

	status, err := render.StatusFromToken(args[0])
	if err != nil {
		return fmt.Errorf("malformed status payload: %w", err)
	}
	taskID, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("malformed status payload: %w", err)
	}

	var task *via.Task
	if chat.IsPrivate() {
		if _, err := r.gateway.SetTaskStatus(ctx, token, taskID, status.Token()); err != nil {
			return r.statusChangeErr(ctx, chat.ID, taskID, err)
		}
		task, err = r.gateway.Task(ctx, token, taskID)
	} else {
		groupID, gerr := r.resolveGroup(ctx, chat)
		if gerr != nil {
			return gerr
		}
		if _, err := r.gateway.SetGroupTaskStatus(ctx, token, groupID, taskID, status.Token()); err != nil {
			return r.statusChangeErr(ctx, chat.ID, taskID, err)
		}
		task, err = r.gateway.GroupTask(ctx, token, groupID, taskID)
	}
	if err != nil {
		return fmt.Errorf("failed to re-fetch task: %w", err)
	}

	text, buttons := render.TaskDetail(task, !chat.IsPrivate())
	if err := r.messenger.EditMessageWithKeyboard(ctx, chat.ID, query.Message.MessageID, text, toKeyboard(buttons)); err != nil {
		return fmt.Errorf("failed to edit message: %w", err)
	}
	return nil
}

// statusChangeErr maps gateway failures on a status change to the
// user-facing apologies; other failures propagate.
func (r *Router) statusChangeErr(ctx context.Context, chatID int64, taskID int, err error) error {
	code := taskCode(taskID)
	switch {
	case errors.Is(err, via.ErrPermissionDenied):
		return r.rejectWith(ctx, chatID, cannotEditMessage(code), "no rights to edit task")
	case errors.Is(err, via.ErrNotFound):
		return r.rejectWith(ctx, chatID, notFoundMessage(code), "task not found")
	}
	return fmt.Errorf("failed to set task status: %w", err)
}

// callbackTasks handles "tasks <uid> <name...>" button presses from the
// group overview: list that member's tasks as a new message.
func (r *Router) callbackTasks(ctx context.Context, query *telegram.CallbackQuery, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("malformed tasks payload: %q", strings.Join(args, " "))
	}

	chat := query.Message.Chat
	token, err := r.identify(ctx, chat.ID, query.From)
	if err != nil {
		return err
	}
	groupID, err := r.resolveGroup(ctx, chat)
	if err != nil {
		return err
	}

	userID, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("malformed tasks payload: %w", err)
	}
	userName := strings.Join(args[1:], " ")

	tasks, err := r.gateway.GroupUserTasksFor(ctx, token, groupID, userID)
	if err != nil {
		return fmt.Errorf("failed to list member tasks: %w", err)
	}
	return r.reply(ctx, chat.ID, render.TaskList(tasks, true, userName, r.pick))
}
