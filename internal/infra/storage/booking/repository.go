package booking

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/m04kA/SMC-EventBooking/internal/domain"
	"github.com/m04kA/SMC-EventBooking/pkg/dbmetrics"
	"github.com/m04kA/SMC-EventBooking/pkg/psqlbuilder"
)

const uniqueViolation = "23505"

var bookingColumns = []string{
	"id",
	"user_id",
	"package_id",
	"event_id",
	"form_values",
	"event_details",
	"delivery_address",
	"package_snapshot",
	"package_name",
	"currency",
	"total_amount",
	"paid_amount",
	"due_amount",
	"installment_plan",
	"paid_installments",
	"payment_status",
	"gateway_order_id",
	"status",
	"assigned_partner_id",
	"assigned_status",
	"cancellation_reason",
	"cancelled_at",
	"created_at",
	"updated_at",
}

var invoiceColumns = []string{
	"id",
	"booking_id",
	"installment_index",
	"paid_amount",
	"due_amount",
	"payment_method",
	"payment_status",
	"payment_date",
	"gateway_order_id",
	"gateway_payment_id",
}

// Repository репозиторий для работы с бронированиями
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория бронирований
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create сохраняет бронирование вместе с его счетами и историей статусов.
// Должен вызываться внутри транзакции: три таблицы пишутся как одно целое
func (r *Repository) Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	formValues, err := marshalDocument(booking.FormValues)
	if err != nil {
		return nil, err
	}
	eventDetails, err := marshalDocument(booking.EventDetails)
	if err != nil {
		return nil, err
	}
	deliveryAddress, err := marshalDocument(booking.DeliveryAddress)
	if err != nil {
		return nil, err
	}
	snapshot := string(booking.PackageSnapshot)
	if snapshot == "" {
		snapshot = "{}"
	}

	query, args, err := psqlbuilder.Insert("bookings").
		Columns(
			"user_id",
			"package_id",
			"event_id",
			"form_values",
			"event_details",
			"delivery_address",
			"package_snapshot",
			"package_name",
			"currency",
			"total_amount",
			"paid_amount",
			"due_amount",
			"installment_plan",
			"paid_installments",
			"payment_status",
			"gateway_order_id",
			"status",
		).
		Values(
			booking.UserID,
			booking.PackageID,
			booking.EventID,
			formValues,
			eventDetails,
			deliveryAddress,
			snapshot,
			booking.PackageName,
			booking.Currency,
			booking.TotalAmount,
			booking.PaidAmount,
			booking.DueAmount,
			booking.InstallmentPlan,
			booking.PaidInstallments,
			booking.PaymentStatus,
			booking.GatewayOrderID,
			booking.Status,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&booking.ID,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: order %s", ErrDuplicateOrder, booking.GatewayOrderID)
		}
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	booking.CreatedAt = createdAt.Time
	booking.UpdatedAt = updatedAt.Time

	for i := range booking.Invoices {
		booking.Invoices[i].BookingID = booking.ID
		if err := r.InsertInvoice(ctx, &booking.Invoices[i]); err != nil {
			return nil, err
		}
	}

	for _, entry := range booking.StatusHistory {
		if err := r.AppendStatusHistory(ctx, booking.ID, HistoryBooking, entry); err != nil {
			return nil, err
		}
	}

	return booking, nil
}

// GetByID получает бронирование со счетами и историей статусов.
// Внутри транзакции строка бронирования блокируется (FOR UPDATE)
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(bookingColumns...).
		From("bookings").
		Where(squirrel.Eq{"id": id})

	// Если используется транзакция, блокируем строку до ее завершения
	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	booking, err := scanBooking(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan booking: %v", ErrScanRow, err)
	}

	if err := r.loadDetails(ctx, booking); err != nil {
		return nil, err
	}

	return booking, nil
}

// GetByGatewayOrderID ищет бронирование, созданное по заказу шлюза
func (r *Repository) GetByGatewayOrderID(ctx context.Context, orderID string) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(bookingColumns...).
		From("bookings").
		Where(squirrel.Eq{"gateway_order_id": orderID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByGatewayOrderID - build select query: %v", ErrBuildQuery, err)
	}

	booking, err := scanBooking(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByGatewayOrderID - scan booking: %v", ErrScanRow, err)
	}

	return booking, nil
}

// GetByFilter получает список бронирований без счетов и истории
// Сортировка: сначала новые
func (r *Repository) GetByFilter(ctx context.Context, filter domain.BookingsFilter) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(bookingColumns...).
		From("bookings").
		OrderBy("created_at DESC", "id DESC")

	if filter.UserID != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"user_id": *filter.UserID})
	}
	if filter.AssignedPartnerID != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"assigned_partner_id": *filter.AssignedPartnerID})
	}
	if filter.PaymentStatus != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"payment_status": *filter.PaymentStatus})
	}

	// Фильтрация по статусу
	if filter.Status != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"status": *filter.Status})
	} else if !filter.IncludeCancelled {
		cancelled := make([]string, len(domain.CancelledStatuses))
		for i, s := range domain.CancelledStatuses {
			cancelled[i] = string(s)
		}
		selectBuilder = selectBuilder.Where(squirrel.NotEq{"status": cancelled})
	}

	limit := filter.Limit
	if limit == 0 {
		limit = domain.DefaultBookingsPageSize
	}
	if limit > domain.MaxBookingsPageSize {
		limit = domain.MaxBookingsPageSize
	}
	selectBuilder = selectBuilder.Limit(limit).Offset(filter.Offset)

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByFilter - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetByFilter - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	bookings := make([]*domain.Booking, 0)
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: GetByFilter - scan row: %v", ErrScanRow, err)
		}
		bookings = append(bookings, booking)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: GetByFilter - rows error: %v", ErrScanRow, err)
	}

	return bookings, nil
}

// InsertInvoice добавляет счет. Счета не изменяются и не удаляются
func (r *Repository) InsertInvoice(ctx context.Context, invoice *domain.Invoice) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("booking_invoices").
		Columns(
			"booking_id",
			"installment_index",
			"paid_amount",
			"due_amount",
			"payment_method",
			"payment_status",
			"payment_date",
			"gateway_order_id",
			"gateway_payment_id",
		).
		Values(
			invoice.BookingID,
			invoice.InstallmentIndex,
			invoice.PaidAmount,
			invoice.DueAmount,
			invoice.PaymentMethod,
			invoice.PaymentStatus,
			invoice.PaymentDate,
			invoice.GatewayOrderID,
			invoice.GatewayPaymentID,
		).
		Suffix("RETURNING id").
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: InsertInvoice - build insert query: %v", ErrBuildQuery, err)
	}

	if err := executor.QueryRowContext(ctx, query, args...).Scan(&invoice.ID); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: order %s", ErrDuplicateOrder, invoice.GatewayOrderID)
		}
		return fmt.Errorf("%w: InsertInvoice - execute insert: %v", ErrExecQuery, err)
	}

	return nil
}

// UpdatePayment сохраняет итоги оплаты бронирования после добавления счета
func (r *Repository) UpdatePayment(ctx context.Context, booking *domain.Booking) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("bookings").
		Set("paid_amount", booking.PaidAmount).
		Set("due_amount", booking.DueAmount).
		Set("paid_installments", booking.PaidInstallments).
		Set("payment_status", booking.PaymentStatus).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": booking.ID}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: UpdatePayment - build update query: %v", ErrBuildQuery, err)
	}

	return r.execAffectingOne(ctx, executor, "UpdatePayment", query, args)
}

// UpdateStatus обновляет статус бронирования
func (r *Repository) UpdateStatus(ctx context.Context, id int64, status domain.BookingStatus) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("bookings").
		Set("status", status).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: UpdateStatus - build update query: %v", ErrBuildQuery, err)
	}

	return r.execAffectingOne(ctx, executor, "UpdateStatus", query, args)
}

// UpdateAssignment назначает партнера и обновляет статус исполнения
func (r *Repository) UpdateAssignment(ctx context.Context, id int64, partnerID int64, status domain.AssignmentStatus) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("bookings").
		Set("assigned_partner_id", partnerID).
		Set("assigned_status", status).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: UpdateAssignment - build update query: %v", ErrBuildQuery, err)
	}

	return r.execAffectingOne(ctx, executor, "UpdateAssignment", query, args)
}

// Cancel отменяет бронирование с указанием причины
func (r *Repository) Cancel(ctx context.Context, id int64, status domain.BookingStatus, reason string) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("bookings").
		Set("status", status).
		Set("cancellation_reason", reason).
		Set("cancelled_at", squirrel.Expr("NOW()")).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: Cancel - build update query: %v", ErrBuildQuery, err)
	}

	return r.execAffectingOne(ctx, executor, "Cancel", query, args)
}

// AppendStatusHistory добавляет запись в историю статусов
func (r *Repository) AppendStatusHistory(ctx context.Context, bookingID int64, kind string, entry domain.StatusHistoryEntry) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	changedAt := entry.ChangedAt
	if changedAt.IsZero() {
		changedAt = time.Now()
	}

	query, args, err := psqlbuilder.Insert("booking_status_history").
		Columns("booking_id", "kind", "status", "status_index", "changed_by", "changed_at").
		Values(bookingID, kind, entry.Status, entry.Index, entry.ChangedBy, changedAt).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: AppendStatusHistory - build insert query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: AppendStatusHistory - execute insert: %v", ErrExecQuery, err)
	}

	return nil
}

// loadDetails загружает счета и историю статусов бронирования
func (r *Repository) loadDetails(ctx context.Context, booking *domain.Booking) error {
	invoices, err := r.getInvoices(ctx, booking.ID)
	if err != nil {
		return err
	}
	booking.Invoices = invoices

	history, err := r.getHistory(ctx, booking.ID)
	if err != nil {
		return err
	}
	booking.StatusHistory = history[HistoryBooking]
	booking.AssignedStatusHistory = history[HistoryAssignment]

	return nil
}

func (r *Repository) getInvoices(ctx context.Context, bookingID int64) ([]domain.Invoice, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(invoiceColumns...).
		From("booking_invoices").
		Where(squirrel.Eq{"booking_id": bookingID}).
		OrderBy("installment_index ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: getInvoices - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: getInvoices - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	invoices := make([]domain.Invoice, 0)
	for rows.Next() {
		var inv domain.Invoice
		if err := rows.Scan(
			&inv.ID,
			&inv.BookingID,
			&inv.InstallmentIndex,
			&inv.PaidAmount,
			&inv.DueAmount,
			&inv.PaymentMethod,
			&inv.PaymentStatus,
			&inv.PaymentDate,
			&inv.GatewayOrderID,
			&inv.GatewayPaymentID,
		); err != nil {
			return nil, fmt.Errorf("%w: getInvoices - scan row: %v", ErrScanRow, err)
		}
		invoices = append(invoices, inv)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: getInvoices - rows error: %v", ErrScanRow, err)
	}

	return invoices, nil
}

func (r *Repository) getHistory(ctx context.Context, bookingID int64) (map[string][]domain.StatusHistoryEntry, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("kind", "status", "status_index", "changed_by", "changed_at").
		From("booking_status_history").
		Where(squirrel.Eq{"booking_id": bookingID}).
		OrderBy("id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: getHistory - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: getHistory - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	history := make(map[string][]domain.StatusHistoryEntry)
	for rows.Next() {
		var kind string
		var entry domain.StatusHistoryEntry
		if err := rows.Scan(&kind, &entry.Status, &entry.Index, &entry.ChangedBy, &entry.ChangedAt); err != nil {
			return nil, fmt.Errorf("%w: getHistory - scan row: %v", ErrScanRow, err)
		}
		history[kind] = append(history[kind], entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: getHistory - rows error: %v", ErrScanRow, err)
	}

	return history, nil
}

func (r *Repository) execAffectingOne(ctx context.Context, executor DBExecutor, op, query string, args []interface{}) error {
	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: %s - execute update: %v", ErrExecQuery, op, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %s - get rows affected: %v", ErrExecQuery, op, err)
	}

	if rowsAffected == 0 {
		return ErrBookingNotFound
	}

	return nil
}

// scanBooking сканирует строку bookingColumns в бронирование
func scanBooking(row scanner) (*domain.Booking, error) {
	var (
		booking                                   domain.Booking
		formValues, eventDetails, deliveryAddress []byte
		snapshot                                  []byte
		assignedPartnerID                         sql.NullInt64
		assignedStatus, cancellationReason        sql.NullString
		cancelledAt, createdAt, updatedAt         sql.NullTime
	)

	err := row.Scan(
		&booking.ID,
		&booking.UserID,
		&booking.PackageID,
		&booking.EventID,
		&formValues,
		&eventDetails,
		&deliveryAddress,
		&snapshot,
		&booking.PackageName,
		&booking.Currency,
		&booking.TotalAmount,
		&booking.PaidAmount,
		&booking.DueAmount,
		&booking.InstallmentPlan,
		&booking.PaidInstallments,
		&booking.PaymentStatus,
		&booking.GatewayOrderID,
		&booking.Status,
		&assignedPartnerID,
		&assignedStatus,
		&cancellationReason,
		&cancelledAt,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := unmarshalDocument(formValues, &booking.FormValues); err != nil {
		return nil, err
	}
	if err := unmarshalDocument(eventDetails, &booking.EventDetails); err != nil {
		return nil, err
	}
	if err := unmarshalDocument(deliveryAddress, &booking.DeliveryAddress); err != nil {
		return nil, err
	}
	booking.PackageSnapshot = json.RawMessage(snapshot)

	if assignedPartnerID.Valid {
		id := assignedPartnerID.Int64
		booking.AssignedPartnerID = &id
	}
	if assignedStatus.Valid {
		st := domain.AssignmentStatus(assignedStatus.String)
		booking.AssignedStatus = &st
	}
	if cancellationReason.Valid {
		reason := cancellationReason.String
		booking.CancellationReason = &reason
	}
	if cancelledAt.Valid {
		t := cancelledAt.Time
		booking.CancelledAt = &t
	}
	booking.CreatedAt = createdAt.Time
	booking.UpdatedAt = updatedAt.Time

	return &booking, nil
}

// marshalDocument кодирует JSONB значение строкой: lib/pq передает []byte как bytea
func marshalDocument(v interface{}) (string, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrEncode, err)
	}
	return string(raw), nil
}

func unmarshalDocument(raw []byte, dst interface{}) error {
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, dst)
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}
