package notify

import (
	"context"
	"log/slog"

	"github.com/vendhub/vendhub/internal/domain"
	"github.com/vendhub/vendhub/pkg/vendhub/core"
)

// Transport delivers one message to one user. The chat platform behind it is
// an external collaborator; SlogTransport is the default when none is wired.
type Transport interface {
	SendToUser(ctx context.Context, user *domain.User, message string) error
}

// UserDirectory resolves recipients. Roles are resolved at dispatch time, not
// cached from workflow start, so a manager added mid-workflow still receives
// the notice.
type UserDirectory interface {
	FindEnabledByRole(role string) ([]*domain.User, error)
	FindById(id int64) (*domain.User, error)
}

// DeliverySink records delivery attempts and their failures.
type DeliverySink interface {
	Save(rec *domain.DeliveryRecord) (int64, error)
}

// Dispatcher sends best-effort notifications. A failed recipient is logged
// and recorded, never escalated to the caller.
type Dispatcher struct {
	users      UserDirectory
	transport  Transport
	deliveries DeliverySink // optional
	clock      core.Clock
}

func NewDispatcher(users UserDirectory, transport Transport, deliveries DeliverySink, clock core.Clock) *Dispatcher {
	return &Dispatcher{users: users, transport: transport, deliveries: deliveries, clock: clock}
}

func (d *Dispatcher) SendToRole(ctx context.Context, role string, event string, message string) {
	recipients, err := d.users.FindEnabledByRole(role)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to resolve notification audience", "role", role, "event", event, "error", err)
		return
	}
	for _, u := range recipients {
		d.deliver(ctx, u, event, message)
	}
}

func (d *Dispatcher) SendToUser(ctx context.Context, userID int64, event string, message string) {
	u, err := d.users.FindById(userID)
	if err != nil || u == nil {
		slog.ErrorContext(ctx, "Failed to resolve notification recipient", "user_id", userID, "event", event, "error", err)
		return
	}
	d.deliver(ctx, u, event, message)
}

func (d *Dispatcher) deliver(ctx context.Context, u *domain.User, event string, message string) {
	rec := &domain.DeliveryRecord{
		RecipientID: u.ID,
		Event:       event,
		Message:     message,
		Status:      domain.DeliverySent,
		DateTime:    d.clock.Now(),
	}
	if err := d.transport.SendToUser(ctx, u, message); err != nil {
		slog.WarnContext(ctx, "Notification delivery failed", "user_id", u.ID, "event", event, "error", err)
		rec.Status = domain.DeliveryFailed
		rec.Error = err.Error()
	}
	if d.deliveries != nil {
		if _, err := d.deliveries.Save(rec); err != nil {
			slog.ErrorContext(ctx, "Failed to record delivery attempt", "user_id", u.ID, "event", event, "error", err)
		}
	}
}

// SlogTransport writes notifications to the log instead of a chat platform.
type SlogTransport struct{}

func (SlogTransport) SendToUser(ctx context.Context, user *domain.User, message string) error {
	slog.InfoContext(ctx, "Notification", "user", user.Username, "message", message)
	return nil
}
