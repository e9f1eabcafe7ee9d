package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"salon_backend/internal/models"
	"salon_backend/pkg/utils"
)

// AppointmentRepository defines storage operations for appointments.
type AppointmentRepository interface {
	Create(ctx context.Context, appt *models.Appointment) error
	GetByID(ctx context.Context, id int64) (*models.Appointment, error)
	// List returns matches ordered by date, time and id, newest first, plus the total match count.
	// A zero PageSize returns every match.
	List(ctx context.Context, filters models.AppointmentFilters) ([]models.Appointment, int, error)
	// UpdateStatus sets status to `to` only if it is still `from`.
	// Returns ErrNotFound for an unknown id and ErrStatusConflict when the stored status differs.
	UpdateStatus(ctx context.Context, id int64, from, to models.AppointmentStatus, at time.Time) error
	CountByService(ctx context.Context, limit int) ([]models.ServiceReportItem, error)
	CountByClient(ctx context.Context) (map[int64]int, error)
}

type appointmentRepository struct {
	db SQLExecutor
}

// NewAppointmentRepository creates a new postgres-backed AppointmentRepository.
func NewAppointmentRepository(db *sql.DB) AppointmentRepository {
	return &appointmentRepository{db: db}
}

const appointmentColumns = `id, client_id, name, phone, service, to_char(date, 'YYYY-MM-DD'), time, status, created_at, updated_at`

func scanAppointment(s scanner) (*models.Appointment, error) {
	var (
		a        models.Appointment
		clientID sql.NullInt64
	)
	if err := s.Scan(&a.ID, &clientID, &a.Name, &a.Phone, &a.Service, &a.Date, &a.Time, &a.Status, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, err
	}
	if clientID.Valid {
		id := clientID.Int64
		a.ClientID = &id
	}
	return &a, nil
}

func (r *appointmentRepository) Create(ctx context.Context, appt *models.Appointment) error {
	query := `INSERT INTO appointments (client_id, name, phone, service, date, time, status, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	          RETURNING id`
	err := r.db.QueryRowContext(ctx, query,
		appt.ClientID, appt.Name, appt.Phone, appt.Service, appt.Date, appt.Time,
		string(appt.Status), appt.CreatedAt, appt.UpdatedAt,
	).Scan(&appt.ID)
	if err != nil {
		return wrapDBError(err, "creating appointment")
	}
	return nil
}

func (r *appointmentRepository) GetByID(ctx context.Context, id int64) (*models.Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE id = $1`
	a, err := scanAppointment(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, wrapDBError(err, fmt.Sprintf("getting appointment by ID %d", id))
	}
	return a, nil
}

func (r *appointmentRepository) List(ctx context.Context, filters models.AppointmentFilters) ([]models.Appointment, int, error) {
	var conditions []string
	var args []interface{}
	argCount := 1

	if filters.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argCount))
		args = append(args, string(*filters.Status))
		argCount++
	}
	if filters.Date != nil {
		conditions = append(conditions, fmt.Sprintf("date = $%d", argCount))
		args = append(args, *filters.Date)
		argCount++
	}
	if filters.DateFrom != nil {
		conditions = append(conditions, fmt.Sprintf("date >= $%d", argCount))
		args = append(args, *filters.DateFrom)
		argCount++
	}
	if filters.DateTo != nil {
		conditions = append(conditions, fmt.Sprintf("date <= $%d", argCount))
		args = append(args, *filters.DateTo)
		argCount++
	}
	if term := strings.TrimSpace(filters.Search); term != "" {
		cond := fmt.Sprintf("(name ILIKE $%d OR phone ILIKE $%d", argCount, argCount)
		args = append(args, likePattern(term))
		argCount++
		if digits := utils.NormalizePhone(term); digits != "" {
			cond += fmt.Sprintf(" OR phone LIKE $%d", argCount)
			args = append(args, likePattern(digits))
			argCount++
		}
		conditions = append(conditions, cond+")")
	}

	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM appointments`+where, args...).Scan(&total); err != nil {
		return nil, 0, wrapDBError(err, "counting appointments")
	}

	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT ` + appointmentColumns + ` FROM appointments` + where)
	queryBuilder.WriteString(" ORDER BY date DESC, time DESC, id DESC")
	if filters.PageSize > 0 {
		queryBuilder.WriteString(fmt.Sprintf(" LIMIT $%d OFFSET $%d", argCount, argCount+1))
		args = append(args, filters.PageSize, utils.Offset(utils.ClampPage(total, filters.Page, filters.PageSize), filters.PageSize))
	}

	rows, err := r.db.QueryContext(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, 0, wrapDBError(err, "querying appointments")
	}
	defer rows.Close()

	appointments := []models.Appointment{}
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, 0, wrapDBError(err, "scanning appointment")
		}
		appointments = append(appointments, *a)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, wrapDBError(err, "iterating appointment rows")
	}
	return appointments, total, nil
}

// UpdateStatus is a single conditional UPDATE, so two writers racing from the same status
// cannot both succeed.
func (r *appointmentRepository) UpdateStatus(ctx context.Context, id int64, from, to models.AppointmentStatus, at time.Time) error {
	query := `UPDATE appointments SET status = $1, updated_at = $2 WHERE id = $3 AND status = $4`
	res, err := r.db.ExecContext(ctx, query, string(to), at, id, string(from))
	if err != nil {
		return wrapDBError(err, fmt.Sprintf("updating status of appointment %d", id))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return wrapDBError(err, "reading rows affected")
	}
	if n == 1 {
		return nil
	}

	var exists bool
	if err := r.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM appointments WHERE id = $1)`, id).Scan(&exists); err != nil {
		return wrapDBError(err, "checking appointment existence")
	}
	if !exists {
		return ErrNotFound
	}
	return ErrStatusConflict
}

// CountByService aggregates appointments per service name, most booked first.
func (r *appointmentRepository) CountByService(ctx context.Context, limit int) ([]models.ServiceReportItem, error) {
	query := `SELECT service, COUNT(*) AS cnt FROM appointments GROUP BY service ORDER BY cnt DESC, service ASC`
	var args []interface{}
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, wrapDBError(err, "counting appointments by service")
	}
	defer rows.Close()

	items := []models.ServiceReportItem{}
	for rows.Next() {
		var item models.ServiceReportItem
		if err := rows.Scan(&item.Name, &item.Count); err != nil {
			return nil, wrapDBError(err, "scanning service count")
		}
		items = append(items, item)
	}
	if err = rows.Err(); err != nil {
		return nil, wrapDBError(err, "iterating service counts")
	}
	return items, nil
}

// CountByClient returns the number of appointments per linked client.
func (r *appointmentRepository) CountByClient(ctx context.Context) (map[int64]int, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT client_id, COUNT(*) FROM appointments WHERE client_id IS NOT NULL GROUP BY client_id`)
	if err != nil {
		return nil, wrapDBError(err, "counting appointments by client")
	}
	defer rows.Close()

	counts := make(map[int64]int)
	for rows.Next() {
		var id int64
		var n int
		if err := rows.Scan(&id, &n); err != nil {
			return nil, wrapDBError(err, "scanning client count")
		}
		counts[id] = n
	}
	if err = rows.Err(); err != nil {
		return nil, wrapDBError(err, "iterating client counts")
	}
	return counts, nil
}
