package notify

import (
	"context"

	"marketplace/internal/domain/model"
	"marketplace/internal/repository"

	"github.com/google/uuid"
	"github.com/labstack/gommon/log"
)

// 通知1件分の内容
type Event struct {
	Type    model.NotificationType
	Title   string
	Message string
}

// 外部配送（Telegram）の宛先
type ExternalTarget struct {
	UserID int64
	ChatID string
}

// 外部メッセージングの約束
type Messenger interface {
	SendMessage(ctx context.Context, chatID string, text string) error
}

type Dispatcher struct {
	messenger Messenger
	logger    *log.Logger
}

// messengerがnilなら外部配送はスキップされる（通知行だけ残る）
func NewDispatcher(messenger Messenger) *Dispatcher {
	return &Dispatcher{
		messenger: messenger,
		logger:    log.New("notify"),
	}
}

// Record は受信者ごとに通知行を1件ずつ作成する。呼び出し元のtx内で実行すること。
// ここが失敗したら操作全体が失敗する（通知行が正式な記録）。
func (d *Dispatcher) Record(ctx context.Context, notifications repository.NotificationRepository, recipientIDs []int64, ev Event) error {
	for _, userID := range recipientIDs {
		n := model.Notification{
			UserID:  userID,
			Title:   ev.Title,
			Message: ev.Message,
			Type:    ev.Type,
		}
		if err := notifications.Create(ctx, n); err != nil {
			return err
		}
	}
	return nil
}

// Deliver はコミット後のベストエフォート配送。
// 宛先ごとに独立して送り、失敗はログに残すだけで呼び出し元には返さない。
func (d *Dispatcher) Deliver(ctx context.Context, targets []ExternalTarget, ev Event) {
	if d.messenger == nil || len(targets) == 0 {
		return
	}

	//ログ突き合わせ用のID
	eventID := uuid.NewString()
	text := ev.Title + "\n" + ev.Message

	for _, t := range targets {
		if t.ChatID == "" {
			continue
		}
		if err := d.messenger.SendMessage(ctx, t.ChatID, text); err != nil {
			d.logger.Warnf("event=%s user=%d external delivery failed: %v", eventID, t.UserID, err)
		}
	}
}

// 管理者のうちTelegram連携済みの宛先だけを集める
func AdminTargets(admins []model.User) []ExternalTarget {
	targets := make([]ExternalTarget, 0, len(admins))
	for _, a := range admins {
		if a.TelegramChatID == "" {
			continue
		}
		targets = append(targets, ExternalTarget{UserID: a.ID, ChatID: a.TelegramChatID})
	}
	return targets
}
