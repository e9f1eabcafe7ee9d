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

// ClientRepository defines the interface for client-related storage operations.
// Implementations guarantee at most one client per normalized phone.
type ClientRepository interface {
	// Create inserts the client and sets its ID. Returns ErrDuplicateKey when the phone is taken.
	Create(ctx context.Context, client *models.Client) error
	GetByID(ctx context.Context, id int64) (*models.Client, error)
	GetByPhone(ctx context.Context, phone string) (*models.Client, error)
	// List returns the page selected by filters and the total number of matches.
	List(ctx context.Context, filters models.ClientFilters) ([]models.Client, int, error)
	Update(ctx context.Context, client *models.Client) error
	Archive(ctx context.Context, id int64, at time.Time) error
	// RecordVisit increments total_visits and stamps last_visit in one write.
	RecordVisit(ctx context.Context, id int64, at time.Time) error
	CountActive(ctx context.Context) (int, error)
}

type clientRepository struct {
	db SQLExecutor
}

// NewClientRepository creates a new postgres-backed ClientRepository.
func NewClientRepository(db *sql.DB) ClientRepository {
	return &clientRepository{db: db}
}

const clientColumns = `id, name, phone, email, created_at, updated_at, last_visit, total_visits, archived_at`

func scanClient(s scanner) (*models.Client, error) {
	var (
		c         models.Client
		email     sql.NullString
		lastVisit sql.NullTime
		archived  sql.NullTime
	)
	if err := s.Scan(&c.ID, &c.Name, &c.Phone, &email, &c.CreatedAt, &c.UpdatedAt, &lastVisit, &c.TotalVisits, &archived); err != nil {
		return nil, err
	}
	if email.Valid {
		c.Email = &email.String
	}
	if lastVisit.Valid {
		t := lastVisit.Time
		c.LastVisit = &t
	}
	if archived.Valid {
		t := archived.Time
		c.ArchivedAt = &t
	}
	return &c, nil
}

// Create inserts a new client. The phone unique index arbitrates concurrent inserts.
func (r *clientRepository) Create(ctx context.Context, client *models.Client) error {
	query := `INSERT INTO clients (name, phone, email, created_at, updated_at, last_visit, total_visits)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)
	          ON CONFLICT (phone) DO NOTHING
	          RETURNING id`

	err := r.db.QueryRowContext(ctx, query,
		client.Name, client.Phone, nullString(client.Email),
		client.CreatedAt, client.UpdatedAt, client.LastVisit, client.TotalVisits,
	).Scan(&client.ID)
	if err != nil {
		if err == sql.ErrNoRows {
			return fmt.Errorf("%w: phone %s", ErrDuplicateKey, client.Phone)
		}
		return wrapDBError(err, "creating client")
	}
	return nil
}

// GetByID retrieves a client by ID, archived or not.
func (r *clientRepository) GetByID(ctx context.Context, id int64) (*models.Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients WHERE id = $1`
	c, err := scanClient(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, wrapDBError(err, fmt.Sprintf("getting client by ID %d", id))
	}
	return c, nil
}

// GetByPhone retrieves a client by normalized phone.
func (r *clientRepository) GetByPhone(ctx context.Context, phone string) (*models.Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients WHERE phone = $1`
	c, err := scanClient(r.db.QueryRowContext(ctx, query, phone))
	if err != nil {
		return nil, wrapDBError(err, "getting client by phone")
	}
	return c, nil
}

// List retrieves clients newest first with pagination and optional search.
func (r *clientRepository) List(ctx context.Context, filters models.ClientFilters) ([]models.Client, int, error) {
	var conditions []string
	var args []interface{}
	argCount := 1

	if !filters.IncludeArchived {
		conditions = append(conditions, "archived_at IS NULL")
	}
	if term := strings.TrimSpace(filters.Query); term != "" {
		cond := fmt.Sprintf("(name ILIKE $%d OR phone ILIKE $%d OR COALESCE(email, '') ILIKE $%d", argCount, argCount, argCount)
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
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM clients`+where, args...).Scan(&total); err != nil {
		return nil, 0, wrapDBError(err, "counting clients")
	}

	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT ` + clientColumns + ` FROM clients` + where)
	queryBuilder.WriteString(" ORDER BY created_at DESC, id DESC")
	if filters.PageSize > 0 {
		queryBuilder.WriteString(fmt.Sprintf(" LIMIT $%d OFFSET $%d", argCount, argCount+1))
		args = append(args, filters.PageSize, utils.Offset(utils.ClampPage(total, filters.Page, filters.PageSize), filters.PageSize))
	}

	rows, err := r.db.QueryContext(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, 0, wrapDBError(err, "querying clients")
	}
	defer rows.Close()

	clients := []models.Client{}
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, 0, wrapDBError(err, "scanning client")
		}
		clients = append(clients, *c)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, wrapDBError(err, "iterating client rows")
	}
	return clients, total, nil
}

// Update writes the editable fields of a client.
func (r *clientRepository) Update(ctx context.Context, client *models.Client) error {
	query := `UPDATE clients SET name = $1, phone = $2, email = $3, updated_at = $4 WHERE id = $5`
	res, err := r.db.ExecContext(ctx, query,
		client.Name, client.Phone, nullString(client.Email), client.UpdatedAt, client.ID)
	if err != nil {
		return wrapDBError(err, fmt.Sprintf("updating client %d", client.ID))
	}
	return checkAffected(res, "updating client")
}

// Archive hides the client from search. Archiving twice keeps the first timestamp.
func (r *clientRepository) Archive(ctx context.Context, id int64, at time.Time) error {
	query := `UPDATE clients SET archived_at = COALESCE(archived_at, $2), updated_at = $2 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, at)
	if err != nil {
		return wrapDBError(err, fmt.Sprintf("archiving client %d", id))
	}
	return checkAffected(res, "archiving client")
}

func (r *clientRepository) RecordVisit(ctx context.Context, id int64, at time.Time) error {
	query := `UPDATE clients SET total_visits = total_visits + 1, last_visit = $2, updated_at = $2 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, at)
	if err != nil {
		return wrapDBError(err, fmt.Sprintf("recording visit for client %d", id))
	}
	return checkAffected(res, "recording visit")
}

func (r *clientRepository) CountActive(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM clients WHERE archived_at IS NULL`).Scan(&n); err != nil {
		return 0, wrapDBError(err, "counting clients")
	}
	return n, nil
}
