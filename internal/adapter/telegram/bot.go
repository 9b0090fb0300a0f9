package telegram

import (
	"context"
	stdErrors "errors"
	"fmt"
	"io"
	"net/http"
	"runtime/debug"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/johnquangdev/cyberon-reporter/internal/domain/entities"
	"github.com/johnquangdev/cyberon-reporter/internal/infrastructure/cache"
	usecaseErrors "github.com/johnquangdev/cyberon-reporter/internal/usecase/errors"
	"github.com/johnquangdev/cyberon-reporter/internal/usecase/reporting"
)

// errVoiceTooLarge is returned when a voice note exceeds the upload limit
var errVoiceTooLarge = stdErrors.New("voice message too large")

// API is the part of tgbotapi.BotAPI the bot uses
type API interface {
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
	GetFileDirectURL(fileID string) (string, error)
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// ReportService runs the report pipeline for a user
type ReportService interface {
	CreateReport(ctx context.Context, userID int64, source entities.RunSource, clip entities.AudioClip) *reporting.Result
}

// Guard admits users by allow list and quota
type Guard interface {
	IsAllowedUser(userID int64) bool
	Admit(ctx context.Context, userID int64) (cache.Decision, error)
}

// Options tune the long polling loop
type Options struct {
	PollTimeout    int
	MaxVoiceBytes  int64
	RequestTimeout time.Duration
}

// Bot serves attendance reports over Telegram long polling
type Bot struct {
	api        API
	reports    ReportService
	guard      Guard
	httpClient *http.Client
	opts       Options
	now        func() time.Time
	logger     *zap.Logger
	wg         sync.WaitGroup
}

// New creates a bot. httpClient downloads voice files and may be nil.
func New(api API, reports ReportService, guard Guard, httpClient *http.Client, opts Options, logger *zap.Logger) *Bot {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 5 * time.Minute
	}
	return &Bot{
		api:        api,
		reports:    reports,
		guard:      guard,
		httpClient: httpClient,
		opts:       opts,
		now:        time.Now,
		logger:     logger,
	}
}

// Run polls for updates until ctx is cancelled, then waits for in-flight
// messages to finish
func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = b.opts.PollTimeout
	updates := b.api.GetUpdatesChan(u)

	b.logger.Info("🤖 Telegram bot started", zap.Int("poll_timeout", b.opts.PollTimeout))

	defer func() {
		b.api.StopReceivingUpdates()
		b.wg.Wait()
		b.logger.Info("🛑 Telegram bot stopped")
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			b.wg.Add(1)
			go func(update tgbotapi.Update) {
				defer b.wg.Done()
				b.HandleUpdate(ctx, update)
			}(update)
		}
	}
}

// HandleUpdate processes one update. It never panics.
func (b *Bot) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	msg := update.Message
	if msg == nil || msg.From == nil || msg.Chat == nil {
		return
	}
	userID := msg.From.ID
	chatID := msg.Chat.ID

	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("❌ Panic while handling update",
				zap.Int64("user_id", userID),
				zap.Any("panic", r),
				zap.ByteString("stack", debug.Stack()),
			)
			b.reply(chatID, UnexpectedMessage)
		}
	}()

	b.logger.Info("📩 Received message", zap.Int64("user_id", userID))

	if !b.guard.IsAllowedUser(userID) {
		b.logger.Info("Skip user", zap.Int64("user_id", userID))
		return
	}

	if msg.IsCommand() && msg.Command() == "start" {
		b.reply(chatID, StartMessage)
		return
	}

	if msg.Voice == nil {
		b.reply(chatID, AskVoiceMessage)
		return
	}

	ctx, cancel := context.WithTimeout(ctx, b.opts.RequestTimeout)
	defer cancel()

	if decision, err := b.guard.Admit(ctx, userID); err != nil {
		if stdErrors.Is(err, usecaseErrors.ErrRateLimited) {
			b.reply(chatID, RateLimitedText(decision.ResetIn))
			return
		}
		b.logger.Info("Skip user", zap.Int64("user_id", userID), zap.Error(err))
		return
	}

	if _, err := b.api.Request(tgbotapi.NewChatAction(chatID, tgbotapi.ChatTyping)); err != nil {
		b.logger.Debug("Failed to send chat action", zap.Error(err))
	}

	clip, err := b.downloadVoice(ctx, msg.Voice)
	if err != nil {
		b.logger.Error("❌ Failed to download voice message",
			zap.Int64("user_id", userID),
			zap.Error(err),
		)
		if stdErrors.Is(err, errVoiceTooLarge) {
			b.reply(chatID, TooLargeMessage)
			return
		}
		b.reply(chatID, UnexpectedMessage)
		return
	}

	result := b.reports.CreateReport(ctx, userID, entities.RunSourceTelegram, clip)

	success, ok := result.Outcome.(entities.Success)
	if !ok {
		b.logger.Warn("⚠️ Report run failed",
			zap.String("run_id", result.RunID.String()),
			zap.Int64("user_id", userID),
			zap.String("outcome", string(result.Outcome.Kind())),
		)
		b.reply(chatID, FailureText(result.Outcome))
		return
	}

	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{
		Name:  success.Artifact.Filename,
		Bytes: success.Artifact.Content,
	})
	doc.Caption = Caption(success.Record.Group, b.now(), success.Excerpt, result.DownloadURL)

	if _, err := b.api.Send(doc); err != nil {
		b.logger.Error("❌ Failed to send report",
			zap.String("run_id", result.RunID.String()),
			zap.Int64("user_id", userID),
			zap.Error(err),
		)
		b.reply(chatID, RenderFailedMessage)
		return
	}

	b.logger.Info("✅ Report sent",
		zap.String("run_id", result.RunID.String()),
		zap.Int64("user_id", userID),
		zap.String("group", success.Record.Group),
	)
}

// downloadVoice fetches the voice note bytes from Telegram file storage
func (b *Bot) downloadVoice(ctx context.Context, voice *tgbotapi.Voice) (entities.AudioClip, error) {
	limit := b.opts.MaxVoiceBytes
	if limit > 0 && int64(voice.FileSize) > limit {
		return nil, errVoiceTooLarge
	}

	link, err := b.api.GetFileDirectURL(voice.FileID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve file: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		return nil, err
	}
	resp, err := b.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download file: status %d", resp.StatusCode)
	}

	var r io.Reader = resp.Body
	if limit > 0 {
		r = io.LimitReader(resp.Body, limit+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if limit > 0 && int64(len(data)) > limit {
		return nil, errVoiceTooLarge
	}

	return entities.AudioClip(data), nil
}

func (b *Bot) reply(chatID int64, text string) {
	if _, err := b.api.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		b.logger.Error("❌ Failed to send reply", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}
