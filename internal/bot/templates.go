package bot

import (
	"fmt"
	"strings"

	"choresbot/internal/domain"
	"choresbot/internal/service"
)

// User-facing message texts. The service layer never formats anything a user
// sees; every error-to-text mapping lives here.

func startMessage(user *domain.User) string {
	return fmt.Sprintf("Hello, <b>%s</b>!", user.FirstName)
}

func helpMessage() string {
	return `<b>Chores bot commands</b>

/start - register and say hello
/my_tasks - your tasks and their completion status
/complete_task - pick a task to complete with photo proof
/help - this message

Admins update the task roster by uploading a YAML file with one task description per line.`
}

func statisticsMessage(stats []service.TaskStatistic) string {
	var sb strings.Builder
	sb.WriteString("Here is your tasks statistics:\n")
	for _, stat := range stats {
		if stat.IsCompleted {
			sb.WriteString(stat.Description + " - ✅\n")
		} else {
			sb.WriteString(stat.Description + " - ❌\n")
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}

func tasksUpdatedMessage(tasks []*domain.Task) string {
	var sb strings.Builder
	sb.WriteString("Tasks were successfully updated!\nNow next tasks are available:\n")
	for i, task := range tasks {
		sb.WriteString(fmt.Sprintf("%d) %s\n", i+1, task.Description))
	}
	return strings.TrimRight(sb.String(), "\n")
}

func chooseTaskMessage() string {
	return "Choose a task you have completed:"
}

func noActiveTasksMessage() string {
	return "You have no tasks left to complete. Well done!"
}

// proofPromptMessage names the association the submitted photo will belong
// to. The trailing reference is parsed back out of the reply path, so the
// marker text is a wire contract.
func proofPromptMessage(task *domain.Task, associationID int64) string {
	return fmt.Sprintf(
		"Reply to this message with a photo proving that you completed:\n<b>%s</b>\n\n%s%d",
		task.Description, taskRefMarker, associationID,
	)
}

func proofForwardedMessage(task *domain.Task) string {
	return fmt.Sprintf("Your proof for <b>%s</b> was sent to the admins. Wait for confirmation.", task.Description)
}

// confirmationRequestCaption goes to every admin together with the proof photo.
func confirmationRequestCaption(task *domain.Task, user *domain.User) string {
	name := user.FullName()
	if url := user.URL(); url != "" {
		name = fmt.Sprintf(`<a href="%s">%s</a>`, url, name)
	}
	return fmt.Sprintf("%s claims to have completed:\n<b>%s</b>", name, task.Description)
}

func taskConfirmedMessage(task *domain.Task) string {
	return fmt.Sprintf("Your completion of <b>%s</b> was confirmed. Good job! ✅", task.Description)
}

func taskRejectedMessage(task *domain.Task) string {
	return fmt.Sprintf("Your proof for <b>%s</b> was rejected. You can submit another one with /complete_task.", task.Description)
}

func permissionDeniedMessage() string {
	return "You are not allowed to do that."
}

func rosterFormatErrorMessage() string {
	return "The roster must be a YAML file (.yaml/.yml) containing a list of task descriptions."
}

func somethingWentWrongMessage() string {
	return "Something went wrong. Try again later."
}

func rateLimitedMessage() string {
	return "Too many requests. Slow down a little."
}
