package bot

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"choresbot/internal/domain"
	"choresbot/internal/metrics"
	"choresbot/internal/roster"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const handlerTimeout = 30 * time.Second

// handleMessage routes one inbound message. Processed messages are deleted so
// the chat only carries the bot's own prompts; messages matching nothing are
// deleted too (the trash route, last on purpose).
func (b *Bot) handleMessage(msg *tgbotapi.Message) {
	if msg.From == nil || msg.From.IsBot {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
	defer cancel()

	switch {
	case msg.IsCommand():
		if !b.limiter.Allow(ctx, msg.From.ID) {
			metrics.RateLimitedTotal.Inc()
			b.reply(msg.Chat.ID, rateLimitedMessage())
			return
		}
		b.handleCommand(ctx, msg)
		b.deleteMessage(msg.Chat.ID, msg.MessageID)

	case msg.Document != nil:
		b.handleRosterUpload(ctx, msg)
		b.deleteMessage(msg.Chat.ID, msg.MessageID)

	case len(msg.Photo) > 0 && msg.ReplyToMessage != nil:
		b.handleProofPhoto(ctx, msg)

	default:
		b.deleteMessage(msg.Chat.ID, msg.MessageID)
	}
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	switch msg.Command() {
	case "start":
		b.handleStart(ctx, msg)
	case "help":
		b.reply(msg.Chat.ID, helpMessage())
	case "my_tasks":
		b.handleMyTasks(ctx, msg)
	case "complete_task":
		b.handleCompleteTask(ctx, msg)
	}
}

// handleStart registers a first-time user and backfills an association per
// existing task, so the newcomer sees the same roster as everyone else.
func (b *Bot) handleStart(ctx context.Context, msg *tgbotapi.Message) {
	exists, err := b.users.CheckUserExistence(ctx, msg.From.ID, "", "")
	if err != nil {
		b.log.Error("check user existence", "user_id", msg.From.ID, "error", err)
		b.reply(msg.Chat.ID, somethingWentWrongMessage())
		return
	}

	var user *domain.User
	if exists {
		user, err = b.users.GetUserByID(ctx, msg.From.ID)
	} else {
		role := domain.RoleDefault
		if b.isAdmin(msg.From.ID) {
			role = domain.RoleAdmin
		}
		user, err = b.users.RegisterUser(ctx, &domain.User{
			ID:        msg.From.ID,
			FirstName: msg.From.FirstName,
			LastName:  msg.From.LastName,
			Username:  msg.From.UserName,
			IsBot:     msg.From.IsBot,
			Role:      role,
		})
		if err == nil {
			_, err = b.tasks.CreateAssociationsForUser(ctx, user)
		}
	}
	if err != nil {
		b.log.Error("register user", "user_id", msg.From.ID, "error", err)
		b.reply(msg.Chat.ID, somethingWentWrongMessage())
		return
	}

	b.reply(msg.Chat.ID, startMessage(user))
}

func (b *Bot) handleMyTasks(ctx context.Context, msg *tgbotapi.Message) {
	stats, err := b.views.GetUserTaskStatistics(ctx, msg.From.ID)
	if err != nil {
		b.log.Error("user task statistics", "user_id", msg.From.ID, "error", err)
		b.reply(msg.Chat.ID, somethingWentWrongMessage())
		return
	}
	b.reply(msg.Chat.ID, statisticsMessage(stats))
}

func (b *Bot) handleCompleteTask(ctx context.Context, msg *tgbotapi.Message) {
	active, err := b.views.GetUserActiveTasks(ctx, msg.From.ID)
	if err != nil {
		b.log.Error("user active tasks", "user_id", msg.From.ID, "error", err)
		b.reply(msg.Chat.ID, somethingWentWrongMessage())
		return
	}
	if len(active) == 0 {
		b.reply(msg.Chat.ID, noActiveTasksMessage())
		return
	}

	out := tgbotapi.NewMessage(msg.Chat.ID, chooseTaskMessage())
	out.ParseMode = tgbotapi.ModeHTML
	out.ReplyMarkup = completeTaskMarkup(active)
	if _, err := b.api.Send(out); err != nil {
		b.log.Error("error sending task menu", "error", err)
	}
}

// handleRosterUpload drives the reconciliation flow: admin gate, extension
// and shape validation, then SyncRoster.
func (b *Bot) handleRosterUpload(ctx context.Context, msg *tgbotapi.Message) {
	if !b.isAdmin(msg.From.ID) {
		b.reply(msg.Chat.ID, permissionDeniedMessage())
		return
	}
	if !roster.AllowedFile(msg.Document.FileName) {
		b.reply(msg.Chat.ID, rosterFormatErrorMessage())
		return
	}

	data, err := b.downloadFile(ctx, msg.Document.FileID)
	if err != nil {
		b.log.Error("download roster", "error", err)
		b.reply(msg.Chat.ID, somethingWentWrongMessage())
		return
	}

	newTasks, err := roster.Parse(data)
	if err != nil {
		if errors.Is(err, domain.ErrRosterFormat) {
			b.reply(msg.Chat.ID, rosterFormatErrorMessage())
			return
		}
		b.log.Error("parse roster", "error", err)
		b.reply(msg.Chat.ID, somethingWentWrongMessage())
		return
	}

	active, err := b.tasks.SyncRoster(ctx, newTasks)
	if err != nil {
		b.log.Error("sync roster", "error", err)
		b.reply(msg.Chat.ID, somethingWentWrongMessage())
		return
	}

	metrics.RosterUploadsTotal.Inc()
	b.log.Info("roster updated", "active_tasks", len(active), "uploaded_by", msg.From.ID)
	b.reply(msg.Chat.ID, tasksUpdatedMessage(active))
}

// handleProofPhoto picks up a photo sent in reply to a proof prompt, recovers
// the association id from the prompt text and forwards the proof to every
// admin with a confirm/reject choice.
func (b *Bot) handleProofPhoto(ctx context.Context, msg *tgbotapi.Message) {
	if msg.ReplyToMessage.From == nil || msg.ReplyToMessage.From.ID != b.api.Self.ID {
		// A reply to another user's message, not to a proof prompt.
		b.deleteMessage(msg.Chat.ID, msg.MessageID)
		return
	}

	associationID, err := parseAssociationRef(msg.ReplyToMessage.Text)
	if err != nil {
		// A reply to something that is not a proof prompt.
		b.deleteMessage(msg.Chat.ID, msg.MessageID)
		return
	}

	association, err := b.tasks.GetAssociationByID(ctx, associationID)
	if err != nil {
		b.log.Error("resolve association", "association_id", associationID, "error", err)
		b.reply(msg.Chat.ID, somethingWentWrongMessage())
		return
	}
	if association.UserID != msg.From.ID {
		b.reply(msg.Chat.ID, permissionDeniedMessage())
		return
	}

	task, err := b.tasks.GetTaskByAssociationID(ctx, associationID)
	if err != nil {
		b.log.Error("resolve task", "association_id", associationID, "error", err)
		b.reply(msg.Chat.ID, somethingWentWrongMessage())
		return
	}
	user, err := b.users.GetUserByID(ctx, msg.From.ID)
	if err != nil {
		b.log.Error("resolve user", "user_id", msg.From.ID, "error", err)
		b.reply(msg.Chat.ID, somethingWentWrongMessage())
		return
	}

	// The last photo size is the original quality.
	proof := msg.Photo[len(msg.Photo)-1]
	for _, adminID := range b.cfg.AdminTelegramIDs {
		photo := tgbotapi.NewPhoto(adminID, tgbotapi.FileID(proof.FileID))
		photo.Caption = confirmationRequestCaption(task, user)
		photo.ParseMode = tgbotapi.ModeHTML
		photo.ReplyMarkup = confirmTaskMarkup(associationID)
		if _, err := b.api.Send(photo); err != nil {
			b.log.Error("error forwarding proof to admin", "admin_id", adminID, "error", err)
		}
	}

	metrics.ProofsSubmittedTotal.Inc()
	b.reply(msg.Chat.ID, proofForwardedMessage(task))
}

// handleCallback routes inline-button taps. Every button carries a structured
// payload of action and association id.
func (b *Bot) handleCallback(cb *tgbotapi.CallbackQuery) {
	ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
	defer cancel()

	action, associationID, err := decodeCallback(cb.Data)
	if err != nil {
		b.log.Warn("malformed callback", "data", cb.Data, "error", err)
		b.answerCallback(cb.ID, "")
		return
	}

	switch action {
	case actionCompleteTask:
		b.handleCompleteTaskChosen(ctx, cb, associationID)
	case actionConfirmTask:
		b.handleConfirm(ctx, cb, associationID)
	case actionRejectTask:
		b.handleReject(ctx, cb, associationID)
	default:
		b.answerCallback(cb.ID, "")
	}
}

// handleCompleteTaskChosen sends the proof prompt for the chosen task. No
// state is persisted until a photo actually arrives.
func (b *Bot) handleCompleteTaskChosen(ctx context.Context, cb *tgbotapi.CallbackQuery, associationID int64) {
	association, err := b.tasks.GetAssociationByID(ctx, associationID)
	if err != nil {
		b.answerCallback(cb.ID, somethingWentWrongMessage())
		return
	}
	if association.UserID != cb.From.ID {
		b.answerCallback(cb.ID, permissionDeniedMessage())
		return
	}

	task, err := b.tasks.GetTaskByAssociationID(ctx, associationID)
	if err != nil {
		b.answerCallback(cb.ID, somethingWentWrongMessage())
		return
	}

	if cb.Message != nil {
		b.deleteMessage(cb.Message.Chat.ID, cb.Message.MessageID)
		b.reply(cb.Message.Chat.ID, proofPromptMessage(task, associationID))
	}
	b.answerCallback(cb.ID, "")
}

// handleConfirm applies an admin's confirmation. The service reports whether
// this tap caused the transition; a race loser is told who it lost to rather
// than re-confirming.
func (b *Bot) handleConfirm(ctx context.Context, cb *tgbotapi.CallbackQuery, associationID int64) {
	if !b.isAdmin(cb.From.ID) {
		b.answerCallback(cb.ID, permissionDeniedMessage())
		return
	}

	outcome, err := b.tasks.SetAssociationCompleted(ctx, associationID)
	if err != nil {
		if errors.Is(err, domain.ErrTaskAssociationNotFound) {
			b.answerCallback(cb.ID, "This task association no longer exists.")
			return
		}
		b.log.Error("confirm completion", "association_id", associationID, "error", err)
		b.answerCallback(cb.ID, somethingWentWrongMessage())
		return
	}

	switch outcome {
	case domain.ConfirmCompleted:
		metrics.ConfirmationsTotal.WithLabelValues("completed").Inc()
		b.answerCallback(cb.ID, "Confirmed ✅")
		b.clearProofButtons(cb)
		b.notifyRequester(ctx, associationID, taskConfirmedMessage)

	case domain.ConfirmAlreadyCompleted:
		metrics.ConfirmationsTotal.WithLabelValues("already_completed").Inc()
		b.answerCallback(cb.ID, "Already confirmed by another admin.")
		b.clearProofButtons(cb)

	case domain.ConfirmArchived:
		metrics.ConfirmationsTotal.WithLabelValues("archived").Inc()
		b.answerCallback(cb.ID, "This task was archived in the meantime.")
		b.clearProofButtons(cb)
	}
}

// handleReject turns the proof down. Nothing is persisted: the association
// stays incomplete and the user may submit a new photo.
func (b *Bot) handleReject(ctx context.Context, cb *tgbotapi.CallbackQuery, associationID int64) {
	if !b.isAdmin(cb.From.ID) {
		b.answerCallback(cb.ID, permissionDeniedMessage())
		return
	}

	metrics.ConfirmationsTotal.WithLabelValues("rejected").Inc()
	b.answerCallback(cb.ID, "Rejected ❌")
	b.clearProofButtons(cb)
	b.notifyRequester(ctx, associationID, taskRejectedMessage)
}

// notifyRequester tells the user who submitted the proof how it was judged.
func (b *Bot) notifyRequester(ctx context.Context, associationID int64, render func(*domain.Task) string) {
	association, err := b.tasks.GetAssociationByID(ctx, associationID)
	if err != nil {
		b.log.Error("resolve association for notification", "association_id", associationID, "error", err)
		return
	}
	task, err := b.tasks.GetTaskByAssociationID(ctx, associationID)
	if err != nil {
		b.log.Error("resolve task for notification", "association_id", associationID, "error", err)
		return
	}
	b.reply(association.UserID, render(task))
}

// clearProofButtons removes the confirm/reject keyboard from the admin
// message whose button was pressed.
func (b *Bot) clearProofButtons(cb *tgbotapi.CallbackQuery) {
	if cb.Message == nil {
		return
	}
	edit := tgbotapi.NewEditMessageReplyMarkup(
		cb.Message.Chat.ID,
		cb.Message.MessageID,
		tgbotapi.InlineKeyboardMarkup{InlineKeyboard: [][]tgbotapi.InlineKeyboardButton{}},
	)
	if _, err := b.api.Request(edit); err != nil {
		b.log.Debug("error clearing proof buttons", "error", err)
	}
}

// downloadFile fetches an uploaded document through the bot file API.
func (b *Bot) downloadFile(ctx context.Context, fileID string) ([]byte, error) {
	url, err := b.api.GetFileDirectURL(fileID)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	return io.ReadAll(resp.Body)
}
