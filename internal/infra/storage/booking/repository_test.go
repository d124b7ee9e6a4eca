package booking

import (
	"context"
	"database/sql/driver"
	"encoding/json"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-EventBooking/internal/domain"
	"github.com/m04kA/SMC-EventBooking/pkg/dbmetrics"
)

func newMock(t *testing.T) (*Repository, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})

	return NewRepository(db), mock
}

func newBooking() *domain.Booking {
	now := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	return &domain.Booking{
		UserID:           42,
		PackageID:        7,
		EventID:          3,
		FormValues:       map[string]interface{}{"theme": "royal"},
		EventDetails:     domain.EventDetails{EventName: "Wedding", NumberOfGuests: 250},
		DeliveryAddress:  domain.DeliveryAddress{SameAsClientAddress: true},
		PackageSnapshot:  json.RawMessage(`{"id":7,"name":"Gold"}`),
		PackageName:      "Gold",
		Currency:         "INR",
		TotalAmount:      10000,
		PaidAmount:       3000,
		DueAmount:        7000,
		InstallmentPlan:  3,
		PaidInstallments: 1,
		PaymentStatus:    domain.PaymentPartiallyPaid,
		GatewayOrderID:   "order_1",
		Status:           domain.StatusPending,
		StatusHistory: []domain.StatusHistoryEntry{
			{Status: string(domain.StatusPending), Index: 0, ChangedBy: 42, ChangedAt: now},
		},
		Invoices: []domain.Invoice{{
			InstallmentIndex: 1,
			PaidAmount:       3000,
			DueAmount:        7000,
			PaymentMethod:    "card",
			PaymentStatus:    domain.InvoiceSuccess,
			PaymentDate:      now,
			GatewayOrderID:   "order_1",
			GatewayPaymentID: "pay_1",
		}},
	}
}

func bookingRow(id int64) []driver.Value {
	now := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	return []driver.Value{
		id, int64(42), int64(7), int64(3),
		[]byte(`{"theme":"royal"}`),
		[]byte(`{"eventName":"Wedding","numberOfGuests":250,"startTime":"10:00"}`),
		[]byte(`{"sameAsClientAddress":true}`),
		[]byte(`{"id":7}`),
		"Gold", "INR",
		int64(10000), int64(3000), int64(7000),
		int64(3), int64(1),
		"partially_paid", "order_1", "pending",
		nil, nil, nil, nil,
		now, now,
	}
}

func TestCreate_WritesBookingInvoiceAndHistory(t *testing.T) {
	repo, mock := newMock(t)
	now := time.Now()

	mock.ExpectQuery(`INSERT INTO bookings`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(int64(5), now, now))
	mock.ExpectQuery(`INSERT INTO booking_invoices`).
		WithArgs(int64(5), 1, int64(3000), int64(7000), "card", "success", sqlmock.AnyArg(), "order_1", "pay_1").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(11)))
	mock.ExpectExec(`INSERT INTO booking_status_history`).
		WithArgs(int64(5), HistoryBooking, "pending", 0, int64(42), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	created, err := repo.Create(context.Background(), newBooking())
	require.NoError(t, err)

	assert.Equal(t, int64(5), created.ID)
	require.Len(t, created.Invoices, 1)
	assert.Equal(t, int64(11), created.Invoices[0].ID)
	assert.Equal(t, int64(5), created.Invoices[0].BookingID)
}

func TestCreate_DuplicateOrder(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectQuery(`INSERT INTO bookings`).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "bookings_gateway_order_id_key"})

	_, err := repo.Create(context.Background(), newBooking())
	assert.ErrorIs(t, err, ErrDuplicateOrder)
}

func TestGetByID_LoadsDetails(t *testing.T) {
	repo, mock := newMock(t)
	now := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT (.+) FROM bookings WHERE id = \$1$`).
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows(bookingColumns).AddRow(bookingRow(5)...))
	mock.ExpectQuery(`SELECT (.+) FROM booking_invoices WHERE booking_id = \$1 ORDER BY installment_index ASC`).
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows(invoiceColumns).
			AddRow(int64(11), int64(5), int64(1), int64(3000), int64(7000), "card", "success", now, "order_1", "pay_1"))
	mock.ExpectQuery(`SELECT (.+) FROM booking_status_history WHERE booking_id = \$1`).
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"kind", "status", "status_index", "changed_by", "changed_at"}).
			AddRow("booking", "pending", int64(0), int64(42), now).
			AddRow("assignment", "assigned", int64(0), int64(1), now))

	b, err := repo.GetByID(context.Background(), 5)
	require.NoError(t, err)

	assert.Equal(t, int64(5), b.ID)
	assert.Equal(t, "royal", b.FormValues["theme"])
	assert.Equal(t, 250, b.EventDetails.NumberOfGuests)
	assert.Equal(t, "10:00", b.EventDetails.StartTime.String())
	assert.True(t, b.DeliveryAddress.SameAsClientAddress)
	assert.Equal(t, domain.InstallmentPlan(3), b.InstallmentPlan)
	assert.Equal(t, domain.PaymentPartiallyPaid, b.PaymentStatus)
	assert.Nil(t, b.AssignedPartnerID)
	require.Len(t, b.Invoices, 1)
	assert.Equal(t, "pay_1", b.Invoices[0].GatewayPaymentID)
	require.Len(t, b.StatusHistory, 1)
	require.Len(t, b.AssignedStatusHistory, 1)
	assert.Equal(t, "assigned", b.AssignedStatusHistory[0].Status)
}

func TestGetByID_NotFound(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectQuery(`FROM bookings`).
		WillReturnRows(sqlmock.NewRows(bookingColumns))

	_, err := repo.GetByID(context.Background(), 99)
	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestGetByID_LocksRowInTransaction(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`FROM bookings WHERE id = \$1 FOR UPDATE`).
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows(bookingColumns).AddRow(bookingRow(5)...))
	mock.ExpectQuery(`FROM booking_invoices`).
		WillReturnRows(sqlmock.NewRows(invoiceColumns))
	mock.ExpectQuery(`FROM booking_status_history`).
		WillReturnRows(sqlmock.NewRows([]string{"kind", "status", "status_index", "changed_by", "changed_at"}))
	mock.ExpectRollback()

	tx, err := db.Begin()
	require.NoError(t, err)
	ctx := dbmetrics.WithTx(context.Background(), tx)

	_, err = repo.GetByID(ctx, 5)
	require.NoError(t, err)
	require.NoError(t, tx.Rollback())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByFilter_ExcludesCancelledByDefault(t *testing.T) {
	repo, mock := newMock(t)
	userID := int64(42)

	mock.ExpectQuery(`FROM bookings WHERE user_id = \$1 AND status NOT IN \(\$2,\$3\) ORDER BY created_at DESC, id DESC LIMIT 50 OFFSET 0`).
		WithArgs(userID, "cancelled_by_user", "cancelled_by_admin").
		WillReturnRows(sqlmock.NewRows(bookingColumns).AddRow(bookingRow(5)...).AddRow(bookingRow(4)...))

	list, err := repo.GetByFilter(context.Background(), domain.BookingsFilter{UserID: &userID})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, int64(5), list[0].ID)
	assert.Nil(t, list[0].Invoices)
}

func TestGetByFilter_CapsPageSize(t *testing.T) {
	repo, mock := newMock(t)
	status := domain.StatusConfirmed

	mock.ExpectQuery(`FROM bookings WHERE status = \$1 ORDER BY created_at DESC, id DESC LIMIT 200 OFFSET 400`).
		WithArgs("confirmed").
		WillReturnRows(sqlmock.NewRows(bookingColumns))

	list, err := repo.GetByFilter(context.Background(), domain.BookingsFilter{Status: &status, Limit: 1000, Offset: 400})
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestUpdatePayment(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectExec(`UPDATE bookings SET paid_amount = \$1, due_amount = \$2, paid_installments = \$3, payment_status = \$4, updated_at = NOW\(\) WHERE id = \$5`).
		WithArgs(int64(7000), int64(3000), 2, "partially_paid", int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	b := &domain.Booking{ID: 5, PaidAmount: 7000, DueAmount: 3000, PaidInstallments: 2, PaymentStatus: domain.PaymentPartiallyPaid}
	require.NoError(t, repo.UpdatePayment(context.Background(), b))
}

func TestInsertInvoice_DuplicateOrder(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectQuery(`INSERT INTO booking_invoices`).
		WillReturnError(&pq.Error{Code: "23505"})

	err := repo.InsertInvoice(context.Background(), &domain.Invoice{BookingID: 5, GatewayOrderID: "order_2"})
	assert.ErrorIs(t, err, ErrDuplicateOrder)
}

func TestUpdateStatus_NotFound(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectExec(`UPDATE bookings SET status`).
		WithArgs("confirmed", int64(99)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateStatus(context.Background(), 99, domain.StatusConfirmed)
	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestCancel(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectExec(`UPDATE bookings SET status = \$1, cancellation_reason = \$2, cancelled_at = NOW\(\)`).
		WithArgs("cancelled_by_user", "plans changed", int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Cancel(context.Background(), 5, domain.StatusCancelledByUser, "plans changed"))
}
