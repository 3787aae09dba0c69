// Package botui is the Telegram conversation layer: commands, inline menus
// and the draft accept/revise dialog, all on top of the workflow and store
// packages.
package botui

import (
	"context"
	"sync"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/rs/zerolog"

	"github.com/abhisek/tutordesk/internal/store"
	"github.com/abhisek/tutordesk/internal/workflow"
)

// Bot wires Telegram updates to the application services.
type Bot struct {
	tg     *bot.Bot
	db     *store.Store
	wf     *workflow.Workflow
	states *StateManager
	log    zerolog.Logger

	// chatLocks serializes updates per chat: one teacher's action runs to
	// completion before their next one, while different teachers proceed
	// concurrently.
	mu        sync.Mutex
	chatLocks map[int64]*sync.Mutex
}

// New creates the Bot and registers all handlers.
func New(token string, db *store.Store, wf *workflow.Workflow, log zerolog.Logger) (*Bot, error) {
	b := &Bot{
		db:        db,
		wf:        wf,
		states:    NewStateManager(),
		log:       log,
		chatLocks: make(map[int64]*sync.Mutex),
	}

	tg, err := bot.New(token, bot.WithDefaultHandler(b.serialize(b.handleDefault)))
	if err != nil {
		return nil, err
	}
	b.tg = tg

	tg.RegisterHandler(bot.HandlerTypeMessageText, "/start", bot.MatchTypeExact, b.serialize(b.handleStart))
	tg.RegisterHandler(bot.HandlerTypeMessageText, "/students", bot.MatchTypeExact, b.serialize(b.handleStudents))
	tg.RegisterHandler(bot.HandlerTypeMessageText, "/settings", bot.MatchTypeExact, b.serialize(b.handleSettings))

	return b, nil
}

// Run blocks processing updates until the context is canceled.
func (b *Bot) Run(ctx context.Context) {
	b.log.Info().Msg("telegram bot started")
	b.tg.Start(ctx)
}

// NotifyTeacher sends a plain message to a teacher's chat. Implements the
// scheduler's notifier.
func (b *Bot) NotifyTeacher(ctx context.Context, telegramID int64, text string) error {
	_, err := b.tg.SendMessage(ctx, &bot.SendMessageParams{ChatID: telegramID, Text: text})
	return err
}

// serialize wraps a handler with the per-chat lock.
func (b *Bot) serialize(h bot.HandlerFunc) bot.HandlerFunc {
	return func(ctx context.Context, tg *bot.Bot, update *models.Update) {
		chatID := updateChatID(update)
		if chatID == 0 {
			return
		}
		lock := b.chatLock(chatID)
		lock.Lock()
		defer lock.Unlock()
		h(ctx, tg, update)
	}
}

func (b *Bot) chatLock(chatID int64) *sync.Mutex {
	b.mu.Lock()
	defer b.mu.Unlock()
	lock, ok := b.chatLocks[chatID]
	if !ok {
		lock = &sync.Mutex{}
		b.chatLocks[chatID] = lock
	}
	return lock
}

func updateChatID(update *models.Update) int64 {
	if update.Message != nil {
		return update.Message.Chat.ID
	}
	if m := callbackMessage(update.CallbackQuery); m != nil {
		return m.Chat.ID
	}
	return 0
}

// callbackMessage unwraps the callback's origin message; nil when Telegram
// reports it inaccessible.
func callbackMessage(cb *models.CallbackQuery) *models.Message {
	if cb == nil {
		return nil
	}
	return cb.Message.Message
}

func (b *Bot) send(ctx context.Context, chatID int64, text string, markup models.ReplyMarkup) {
	params := &bot.SendMessageParams{ChatID: chatID, Text: text}
	if markup != nil {
		params.ReplyMarkup = markup
	}
	if _, err := b.tg.SendMessage(ctx, params); err != nil {
		b.log.Warn().Err(err).Int64("chat_id", chatID).Msg("send failed")
	}
}

func (b *Bot) answerCallback(ctx context.Context, cb *models.CallbackQuery, text string) {
	_, err := b.tg.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
		CallbackQueryID: cb.ID,
		Text:            text,
	})
	if err != nil {
		b.log.Warn().Err(err).Msg("answer callback failed")
	}
}
