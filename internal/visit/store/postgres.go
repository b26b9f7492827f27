package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/Rolando1980/client-geo-logger/internal/visit/models"
	id "github.com/Rolando1980/client-geo-logger/pkg/domain"
	"github.com/Rolando1980/client-geo-logger/pkg/platform/sentinel"
)

const uniqueViolation = "23505"

const visitColumns = `
	id, user_id, client_id, client_name, purpose, notes,
	latitude, longitude, visit_date, visit_time, created_at
`

// Postgres persists visits in the visits table.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) Create(ctx context.Context, v *models.Visit) error {
	query := `
		INSERT INTO visits (` + visitColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := s.db.ExecContext(ctx, query,
		uuid.UUID(v.ID), uuid.UUID(v.UserID), uuid.UUID(v.ClientID),
		v.ClientName, string(v.Purpose), v.Notes,
		v.Latitude, v.Longitude, v.Date, v.Time, v.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert visit: %w", err)
	}
	return nil
}

func (s *Postgres) FindByOwnerAndID(ctx context.Context, ownerID id.UserID, visitID id.VisitID) (*models.Visit, error) {
	query := `
		SELECT ` + visitColumns + `
		FROM visits
		WHERE id = $1 AND user_id = $2
	`
	row := s.db.QueryRowContext(ctx, query, uuid.UUID(visitID), uuid.UUID(ownerID))
	v, err := scanVisit(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find visit: %w", err)
	}
	return v, nil
}

func (s *Postgres) ListByOwner(ctx context.Context, ownerID id.UserID) ([]*models.Visit, error) {
	query := `
		SELECT ` + visitColumns + `
		FROM visits
		WHERE user_id = $1
		ORDER BY created_at DESC
	`
	rows, err := s.db.QueryContext(ctx, query, uuid.UUID(ownerID))
	if err != nil {
		return nil, fmt.Errorf("list visits: %w", err)
	}
	defer rows.Close()

	var out []*models.Visit
	for rows.Next() {
		v, err := scanVisit(rows)
		if err != nil {
			return nil, fmt.Errorf("scan visit: %w", err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanVisit(row rowScanner) (*models.Visit, error) {
	var (
		v                          models.Visit
		visitID, ownerID, clientID uuid.UUID
		purpose                    string
	)
	err := row.Scan(
		&visitID, &ownerID, &clientID,
		&v.ClientName, &purpose, &v.Notes,
		&v.Latitude, &v.Longitude, &v.Date, &v.Time, &v.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	v.ID = id.VisitID(visitID)
	v.UserID = id.UserID(ownerID)
	v.ClientID = id.ClientID(clientID)
	v.Purpose = models.Purpose(purpose)
	return &v, nil
}
