// Package notify records in-app notifications for users. Delivery is
// fire and forget: a failed insert is logged and never fails the
// request that triggered it.
package notify

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/agendaly/agendaly-api/internal/model"
)

type Store interface {
	InsertNotification(ctx context.Context, n model.Notification) error
}

type Notifier struct {
	store Store
	log   *slog.Logger
}

func NewNotifier(store Store, log *slog.Logger) *Notifier {
	return &Notifier{store: store, log: log}
}

// Send persists a notification on a detached context so it outlives the
// originating request.
func (n *Notifier) Send(userID, typ, title, message string) {
	notif := model.Notification{
		ID:        uuid.NewString(),
		UserID:    userID,
		Type:      typ,
		Title:     title,
		Message:   message,
		CreatedAt: time.Now().UTC(),
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := n.store.InsertNotification(ctx, notif); err != nil {
			n.log.Error("notification insert failed",
				"user_id", userID, "type", typ, "error", err)
		}
	}()
}
