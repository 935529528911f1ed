package bot

import (
	"fmt"
	"strconv"
	"strings"

	"choresbot/internal/service"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Callback data actions. Telegram limits callback data to 64 bytes, which an
// action prefix plus an int64 id stays well inside.
const (
	actionCompleteTask = "complete_task"
	actionConfirmTask  = "confirm_task"
	actionRejectTask   = "reject_task"
)

// taskRefMarker prefixes the association id embedded in the proof prompt.
// The photo reply path has no structured callback channel, so the id is
// recovered from the replied-to prompt's text after this marker.
const taskRefMarker = "Task reference: #"

func encodeCallback(action string, associationID int64) string {
	return action + ":" + strconv.FormatInt(associationID, 10)
}

// decodeCallback splits callback data into its action and association id.
func decodeCallback(data string) (action string, associationID int64, err error) {
	action, idStr, ok := strings.Cut(data, ":")
	if !ok {
		return "", 0, fmt.Errorf("malformed callback data %q", data)
	}
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		return "", 0, fmt.Errorf("malformed callback id %q", idStr)
	}
	return action, id, nil
}

// parseAssociationRef recovers the association id embedded after the marker
// in a proof prompt's text.
func parseAssociationRef(text string) (int64, error) {
	idx := strings.Index(text, taskRefMarker)
	if idx < 0 {
		return 0, fmt.Errorf("no association reference in prompt text")
	}
	ref := strings.TrimSpace(text[idx+len(taskRefMarker):])
	id, err := strconv.ParseInt(ref, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("malformed association reference %q", ref)
	}
	return id, nil
}

// completeTaskMarkup builds the menu of a user's still-completable tasks, one
// button per association.
func completeTaskMarkup(tasks []service.ActiveTask) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(tasks))
	for _, task := range tasks {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(
				task.Description,
				encodeCallback(actionCompleteTask, task.AssociationID),
			),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// confirmTaskMarkup builds the admin's approve/reject choice for one
// submitted proof.
func confirmTaskMarkup(associationID int64) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Confirm", encodeCallback(actionConfirmTask, associationID)),
			tgbotapi.NewInlineKeyboardButtonData("❌ Reject", encodeCallback(actionRejectTask, associationID)),
		),
	)
}
