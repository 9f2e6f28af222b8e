package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"ai-tutor-backend/internal/config"
	"ai-tutor-backend/internal/domain/model"
	"ai-tutor-backend/internal/domain/ports/adapter"
)

var _ adapter.JobNotifier = (*RealTelegramNotifier)(nil)

type messageSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// RealTelegramNotifier sends operator alerts to the configured admin chats.
type RealTelegramNotifier struct {
	bot      messageSender
	adminIDs []int64
	log      *zerolog.Logger
}

func NewRealTelegramNotifier(cfg *config.TelegramConfig, log *zerolog.Logger) (*RealTelegramNotifier, error) {
	if cfg == nil || cfg.Token == "" {
		return nil, errors.New("telegram token is empty")
	}
	if len(cfg.AdminIDs) == 0 {
		return nil, errors.New("telegram admin ids are empty")
	}
	bot, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, err
	}
	return newNotifier(bot, cfg.AdminIDs, log), nil
}

func newNotifier(bot messageSender, adminIDs []int64, log *zerolog.Logger) *RealTelegramNotifier {
	l := log.With().Str("component", "telegram_notifier").Logger()
	return &RealTelegramNotifier{bot: bot, adminIDs: adminIDs, log: &l}
}

// NotifyJobFailed sends one message per admin. Every admin is attempted; the
// first send error is returned.
func (n *RealTelegramNotifier) NotifyJobFailed(ctx context.Context, job *model.RoadmapJob) error {
	text := formatJobFailure(job)
	var firstErr error
	for _, id := range n.adminIDs {
		// Support early cancellation
		if err := ctx.Err(); err != nil {
			return err
		}
		msg := tgbotapi.NewMessage(id, text)
		if _, err := n.bot.Send(msg); err != nil {
			n.log.Warn().Err(err).Int64("admin_id", id).Msg("failed to send job failure alert")
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

func formatJobFailure(job *model.RoadmapJob) string {
	var b strings.Builder
	b.WriteString("Roadmap job failed\n")
	fmt.Fprintf(&b, "job: %s\nowner: %s\n", job.JobID, job.OwnerID)
	fmt.Fprintf(&b, "target: %s\n", truncate(job.Target, 120))
	if job.Error != nil {
		fmt.Fprintf(&b, "error: %s\n", truncate(*job.Error, 300))
	}
	if job.CompletedAt != nil {
		fmt.Fprintf(&b, "after: %s", job.CompletedAt.Sub(job.CreatedAt).Round(time.Millisecond))
	}
	return strings.TrimRight(b.String(), "\n")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "…"
}
