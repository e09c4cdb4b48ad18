// Package notify delivers best-effort notifications: always an in-app entry,
// plus an email attempt when an address is known and a mailer is configured.
// Nothing here may fail the operation that triggered it; every failure is
// logged and swallowed.
package notify

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/eersi/marketplace/internal/apperr"
	"github.com/eersi/marketplace/internal/docstore"
	"github.com/eersi/marketplace/internal/models"
)

// Message describes one notification to a user.
type Message struct {
	ToUserID string
	ToEmail  string
	ToRole   string
	Title    string
	Body     string
	Event    string
	RefID    string
}

// Dispatcher writes the in-app feed and attempts email delivery.
type Dispatcher struct {
	store   *docstore.Store
	mailer  Mailer // nil disables email
	appName string
	log     *zap.Logger
	now     func() time.Time
}

func NewDispatcher(store *docstore.Store, mailer Mailer, appName string, log *zap.Logger) *Dispatcher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Dispatcher{store: store, mailer: mailer, appName: appName, log: log, now: time.Now}
}

// Notify sends the message. It never returns an error.
func (d *Dispatcher) Notify(ctx context.Context, msg Message) {
	email := strings.TrimSpace(msg.ToEmail)
	event := msg.Event
	if event == "" {
		event = "general"
	}

	delivery := models.Delivery{Provider: "ses"}
	if email != "" {
		delivery.EmailAttempted = true
		if d.mailer != nil {
			subject := d.appName + " — " + msg.Title
			if err := d.mailer.Send(ctx, email, subject, msg.Body); err != nil {
				d.log.Warn("email delivery failed",
					zap.String("event", event), zap.Error(err))
			} else {
				delivery.EmailSent = true
			}
		} else {
			d.log.Debug("mailer not configured, email skipped",
				zap.String("event", event))
		}
	}

	n := models.Notification{
		ID:        uuid.NewString(),
		UserID:    msg.ToUserID,
		Email:     email,
		Role:      msg.ToRole,
		Title:     msg.Title,
		Message:   msg.Body,
		Event:     event,
		RefID:     msg.RefID,
		Delivery:  delivery,
		CreatedAt: d.now(),
	}
	_, err := docstore.Update(ctx, d.store, docstore.CollNotifications,
		func(items []models.Notification) ([]models.Notification, error) {
			// newest first
			return append([]models.Notification{n}, items...), nil
		})
	if err != nil {
		d.log.Warn("in-app notification write failed",
			zap.String("event", event), zap.Error(err))
	}
}

func owns(n models.Notification, userID, email string) bool {
	return (n.UserID != "" && n.UserID == userID) || (n.Email != "" && n.Email == email)
}

// ListFor returns the caller's notifications, newest first.
func (d *Dispatcher) ListFor(ctx context.Context, userID, email string) ([]models.Notification, error) {
	all, err := docstore.LoadAll[models.Notification](ctx, d.store, docstore.CollNotifications)
	if err != nil {
		return nil, err
	}
	mine := []models.Notification{}
	for _, n := range all {
		if owns(n, userID, email) {
			mine = append(mine, n)
		}
	}
	return mine, nil
}

// MarkRead flags one of the caller's notifications as read.
func (d *Dispatcher) MarkRead(ctx context.Context, id, userID, email string) (models.Notification, error) {
	var out models.Notification
	_, err := docstore.Update(ctx, d.store, docstore.CollNotifications,
		func(items []models.Notification) ([]models.Notification, error) {
			for i := range items {
				if items[i].ID != id {
					continue
				}
				if !owns(items[i], userID, email) {
					return nil, apperr.Forbidden("Forbidden")
				}
				now := d.now()
				items[i].Read = true
				items[i].ReadAt = &now
				out = items[i]
				return items, nil
			}
			return nil, apperr.NotFound("Notification not found")
		})
	if err != nil {
		return models.Notification{}, err
	}
	return out, nil
}

// MarkAllRead flags every unread notification of the caller and reports how
// many changed.
func (d *Dispatcher) MarkAllRead(ctx context.Context, userID, email string) (int, error) {
	changed := 0
	_, err := docstore.Update(ctx, d.store, docstore.CollNotifications,
		func(items []models.Notification) ([]models.Notification, error) {
			for i := range items {
				if owns(items[i], userID, email) && !items[i].Read {
					now := d.now()
					items[i].Read = true
					items[i].ReadAt = &now
					changed++
				}
			}
			return items, nil
		})
	if err != nil {
		return 0, err
	}
	return changed, nil
}
