// Package telegram はレポートを Telegram チャットへ配信します。
package telegram

import (
	"context"
	"fmt"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"invest_bot/internal/usecase"
)

// Notifier は Telegram Bot API でレポートを送信します。
type Notifier struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

// NotifierがNotifierインターフェースを実装していることをコンパイル時に検証します。
var _ usecase.Notifier = (*Notifier)(nil)

// NewNotifier はボットトークンを検証してNotifierを生成します。
func NewNotifier(token string, chatID int64) (*Notifier, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}
	return &Notifier{bot: bot, chatID: chatID}, nil
}

// SendReport は Markdown として送信し、LLM出力の未エスケープ文字などで
// 解析が拒否された場合はプレーンテキストで再送します。
func (n *Notifier) SendReport(_ context.Context, text string) error {
	if text == "" {
		return fmt.Errorf("empty report")
	}

	msg := tgbotapi.NewMessage(n.chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	if _, err := n.bot.Send(msg); err != nil {
		slog.Warn("markdown send failed, retrying as plain text", "error", err)
		plain := tgbotapi.NewMessage(n.chatID, text)
		if _, err := n.bot.Send(plain); err != nil {
			return fmt.Errorf("send telegram message: %w", err)
		}
	}
	return nil
}
