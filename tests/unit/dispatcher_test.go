package unit

import (
	"context"
	"errors"
	"testing"

	"marketplace/internal/domain/model"
	"marketplace/internal/notify"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// FakeMessenger は送信先を記録する。FailChatIDsに入っている宛先は失敗する。
type FakeMessenger struct {
	FailChatIDs map[string]bool
	SentChatIDs []string
}

func (f *FakeMessenger) SendMessage(ctx context.Context, chatID string, text string) error {
	if f.FailChatIDs[chatID] {
		return errors.New("telegram unreachable")
	}
	f.SentChatIDs = append(f.SentChatIDs, chatID)
	return nil
}

func TestDispatcher_Record_CreatesRowPerRecipient(t *testing.T) {
	notificationsRepo := &NotificationRepoMock{}
	notificationsRepo.On("Create", mock.Anything, mock.MatchedBy(func(n model.Notification) bool {
		return n.Type == model.NotificationTypeNewOrder && n.Title == "New order #101"
	})).Return(nil)

	d := notify.NewDispatcher(nil)
	ev := notify.Event{
		Type:    model.NotificationTypeNewOrder,
		Title:   "New order #101",
		Message: "Handmade mug x2",
	}

	err := d.Record(context.Background(), notificationsRepo, []int64{2, 3, 4}, ev)

	assert.NoError(t, err)
	notificationsRepo.AssertNumberOfCalls(t, "Create", 3)
}

// 通知行の作成失敗は呼び出し元に返す（txごと失敗させるため）
func TestDispatcher_Record_PropagatesError(t *testing.T) {
	notificationsRepo := &NotificationRepoMock{}
	notificationsRepo.On("Create", mock.Anything, mock.Anything).Return(errors.New("insert failed"))

	d := notify.NewDispatcher(nil)

	err := d.Record(context.Background(), notificationsRepo, []int64{2}, notify.Event{
		Type:  model.NotificationTypeNewOrder,
		Title: "New order",
	})

	assertErrContains(t, err, "insert failed")
}

// 1宛先の失敗は他の宛先への配送を止めない。エラーも返さない。
func TestDispatcher_Deliver_ContinuesAfterFailure(t *testing.T) {
	messenger := &FakeMessenger{FailChatIDs: map[string]bool{"chat-2": true}}
	d := notify.NewDispatcher(messenger)

	d.Deliver(context.Background(), []notify.ExternalTarget{
		{UserID: 2, ChatID: "chat-2"},
		{UserID: 3, ChatID: "chat-3"},
		{UserID: 4, ChatID: ""},
	}, notify.Event{Title: "Order #101 CANCELLED", Message: "rejected"})

	//失敗した宛先と未連携の宛先は飛ばして残りへ送る
	assert.Equal(t, []string{"chat-3"}, messenger.SentChatIDs)
}

func TestDispatcher_Deliver_NilMessenger(t *testing.T) {
	d := notify.NewDispatcher(nil)

	//messenger未設定ならなにもしない（panicしない）
	d.Deliver(context.Background(), []notify.ExternalTarget{{UserID: 2, ChatID: "chat-2"}}, notify.Event{Title: "x"})
}

func TestAdminTargets_FiltersUnlinked(t *testing.T) {
	targets := notify.AdminTargets([]model.User{
		{ID: 3, TelegramChatID: "chat-3"},
		{ID: 4, TelegramChatID: ""},
		{ID: 5, TelegramChatID: "chat-5"},
	})

	assert.Equal(t, []notify.ExternalTarget{
		{UserID: 3, ChatID: "chat-3"},
		{UserID: 5, ChatID: "chat-5"},
	}, targets)
}
