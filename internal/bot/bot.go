package bot

import (
	"log/slog"
	"sync"
	"time"

	"choresbot/internal/config"
	"choresbot/internal/logger"
	"choresbot/internal/metrics"
	"choresbot/internal/service"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Bot drives the chores workflow over Telegram long polling: registration,
// roster uploads, the photo-proof completion flow and the admin
// confirm/reject choice.
type Bot struct {
	api     *tgbotapi.BotAPI
	cfg     *config.Config
	users   *service.UserService
	tasks   *service.TaskService
	views   *service.TaskViews
	limiter *RateLimiter
	stopCh  chan struct{}
	wg      sync.WaitGroup
	log     *slog.Logger
}

func New(
	cfg *config.Config,
	users *service.UserService,
	tasks *service.TaskService,
	views *service.TaskViews,
	limiter *RateLimiter,
) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, err
	}

	log := logger.With("component", "bot")
	log.Info("bot authorized", "username", api.Self.UserName)

	return &Bot{
		api:     api,
		cfg:     cfg,
		users:   users,
		tasks:   tasks,
		views:   views,
		limiter: limiter,
		stopCh:  make(chan struct{}),
		log:     log,
	}, nil
}

// Start runs the update loop until Stop is called. Each update is handled in
// its own goroutine, so two admins confirming the same task concurrently is a
// normal condition the service layer is built for.
func (b *Bot) Start() {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)
	b.log.Info("starting bot update loop")

	for {
		select {
		case <-b.stopCh:
			b.log.Info("stopping bot update loop")
			return
		case update, ok := <-updates:
			if !ok {
				return
			}

			switch {
			case update.CallbackQuery != nil:
				metrics.UpdatesTotal.WithLabelValues("callback").Inc()
				b.wg.Add(1)
				go func(cb *tgbotapi.CallbackQuery) {
					defer b.wg.Done()
					b.handleCallback(cb)
				}(update.CallbackQuery)

			case update.Message != nil:
				metrics.UpdatesTotal.WithLabelValues("message").Inc()
				b.wg.Add(1)
				go func(msg *tgbotapi.Message) {
					defer b.wg.Done()
					b.handleMessage(msg)
				}(update.Message)
			}
		}
	}
}

// Stop gracefully stops the bot, waiting for in-flight handlers.
func (b *Bot) Stop() {
	b.log.Info("stopping bot...")
	close(b.stopCh)
	b.api.StopReceivingUpdates()

	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		b.log.Info("bot stopped gracefully")
	case <-time.After(10 * time.Second):
		b.log.Warn("bot shutdown timeout, some handlers may not have completed")
	}
}

func (b *Bot) isAdmin(userID int64) bool {
	return b.cfg.IsAdmin(userID)
}

// reply sends an HTML-formatted message to the chat.
func (b *Bot) reply(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	if _, err := b.api.Send(msg); err != nil {
		b.log.Error("error sending message", "chat_id", chatID, "error", err)
	}
}

// deleteMessage removes a processed inbound message so the group chat stays
// clean. Failures are logged and ignored: the bot may lack delete rights.
func (b *Bot) deleteMessage(chatID int64, messageID int) {
	if _, err := b.api.Request(tgbotapi.NewDeleteMessage(chatID, messageID)); err != nil {
		b.log.Debug("error deleting message", "chat_id", chatID, "error", err)
	}
}

func (b *Bot) answerCallback(id, text string) {
	if _, err := b.api.Request(tgbotapi.NewCallback(id, text)); err != nil {
		b.log.Error("error answering callback", "error", err)
	}
}
