package notifier

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/m04kA/SMC-EventBooking/internal/domain"
	"github.com/m04kA/SMC-EventBooking/internal/integrations/notificationservice"
	"github.com/m04kA/SMC-EventBooking/pkg/money"
)

// Sender клиент сервиса уведомлений
type Sender interface {
	Send(ctx context.Context, n notificationservice.Notification) error
}

// Metrics счетчик неотправленных уведомлений
type Metrics interface {
	RecordNotificationFailed()
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Notifier рассылает уведомления клиенту и оператору.
// Ошибки доставки логируются и не отменяют бизнес-операцию
type Notifier struct {
	sender  Sender
	adminID int64
	metrics Metrics
	logger  Logger
}

func New(sender Sender, adminID int64, m Metrics, logger Logger) *Notifier {
	return &Notifier{sender: sender, adminID: adminID, metrics: m, logger: logger}
}

// BookingCreated уведомляет оператора и клиента о новом бронировании
func (n *Notifier) BookingCreated(ctx context.Context, b *domain.Booking) error {
	return n.fanOut(ctx,
		notificationservice.Notification{
			Title:        "New booking received",
			Message:      fmt.Sprintf("Booking #%d for %s: paid %s, due %s", b.ID, b.PackageName, money.Format(b.PaidAmount, b.Currency), money.Format(b.DueAmount, b.Currency)),
			RedirectPath: fmt.Sprintf(domain.AdminBookingPath, b.ID),
			ReceiverID:   n.adminID,
		},
		notificationservice.Notification{
			Title:        "Booking confirmed",
			Message:      fmt.Sprintf("Your booking #%d for %s is confirmed. Paid %s", b.ID, b.PackageName, money.Format(b.PaidAmount, b.Currency)),
			RedirectPath: fmt.Sprintf(domain.ClientBookingPath, b.ID),
			ReceiverID:   b.UserID,
		},
	)
}

// InstallmentPaid уведомляет о поступлении очередного платежа
func (n *Notifier) InstallmentPaid(ctx context.Context, b *domain.Booking, inv domain.Invoice) error {
	return n.fanOut(ctx,
		notificationservice.Notification{
			Title:        "Installment received",
			Message:      fmt.Sprintf("Booking #%d: installment %d of %s received, due %s", b.ID, inv.InstallmentIndex, money.Format(inv.PaidAmount, b.Currency), money.Format(b.DueAmount, b.Currency)),
			RedirectPath: fmt.Sprintf(domain.AdminBookingPath, b.ID),
			ReceiverID:   n.adminID,
		},
		notificationservice.Notification{
			Title:        "Payment received",
			Message:      fmt.Sprintf("We received %s for booking #%d. Remaining balance %s", money.Format(inv.PaidAmount, b.Currency), b.ID, money.Format(b.DueAmount, b.Currency)),
			RedirectPath: fmt.Sprintf(domain.ClientBookingPath, b.ID),
			ReceiverID:   b.UserID,
		},
	)
}

// PaymentNotRecorded сообщает оператору о проведенном, но не записанном платеже
func (n *Notifier) PaymentNotRecorded(ctx context.Context, userID int64, orderID, paymentID, reason string) error {
	return n.fanOut(ctx, notificationservice.Notification{
		Title:        "Payment requires reconciliation",
		Message:      fmt.Sprintf("Payment %s (order %s) of user %d was not recorded: %s", paymentID, orderID, userID, reason),
		RedirectPath: domain.AdminReconciliationPath,
		ReceiverID:   n.adminID,
	})
}

// fanOut отправляет уведомления параллельно и дожидается всех
func (n *Notifier) fanOut(ctx context.Context, notifications ...notificationservice.Notification) error {
	var g errgroup.Group
	for _, item := range notifications {
		item := item
		g.Go(func() error {
			if err := n.sender.Send(ctx, item); err != nil {
				n.metrics.RecordNotificationFailed()
				n.logger.Error("notifier: failed to send %q to receiver=%d: %v", item.Title, item.ReceiverID, err)
				return err
			}
			return nil
		})
	}
	return g.Wait()
}
