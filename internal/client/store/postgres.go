package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/Rolando1980/client-geo-logger/internal/client/document"
	"github.com/Rolando1980/client-geo-logger/internal/client/models"
	id "github.com/Rolando1980/client-geo-logger/pkg/domain"
	"github.com/Rolando1980/client-geo-logger/pkg/platform/sentinel"
)

const uniqueViolation = "23505"

const clientColumns = `
	id, user_id, name, address, district, province, department,
	document_type, document_number, contact_name, phone, email, notes,
	status, seller, business_line, created_at, updated_at
`

// Postgres persists clients in the clients table.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) Create(ctx context.Context, c *models.Client) error {
	query := `
		INSERT INTO clients (` + clientColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
	`
	_, err := s.db.ExecContext(ctx, query,
		uuid.UUID(c.ID), uuid.UUID(c.UserID), c.Name, c.Address,
		c.District, c.Province, c.Department,
		string(c.DocumentType), c.DocumentNumber,
		c.ContactName, c.Phone, c.Email, c.Notes,
		c.Status, c.Seller, c.BusinessLine,
		c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert client: %w", err)
	}
	return nil
}

func (s *Postgres) FindByOwnerAndID(ctx context.Context, ownerID id.UserID, clientID id.ClientID) (*models.Client, error) {
	query := `
		SELECT ` + clientColumns + `
		FROM clients
		WHERE id = $1 AND user_id = $2
	`
	row := s.db.QueryRowContext(ctx, query, uuid.UUID(clientID), uuid.UUID(ownerID))
	c, err := scanClient(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find client: %w", err)
	}
	return c, nil
}

func (s *Postgres) ListByOwner(ctx context.Context, ownerID id.UserID) ([]*models.Client, error) {
	query := `
		SELECT ` + clientColumns + `
		FROM clients
		WHERE user_id = $1
		ORDER BY LOWER(name) ASC
	`
	rows, err := s.db.QueryContext(ctx, query, uuid.UUID(ownerID))
	if err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	defer rows.Close()

	var out []*models.Client
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, fmt.Errorf("scan client: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Postgres) Update(ctx context.Context, c *models.Client) error {
	query := `
		UPDATE clients
		SET name = $3, address = $4, district = $5, province = $6,
			department = $7, document_type = $8, document_number = $9,
			contact_name = $10, phone = $11, email = $12, notes = $13,
			updated_at = $14
		WHERE id = $1 AND user_id = $2
	`
	res, err := s.db.ExecContext(ctx, query,
		uuid.UUID(c.ID), uuid.UUID(c.UserID),
		c.Name, c.Address, c.District, c.Province, c.Department,
		string(c.DocumentType), c.DocumentNumber,
		c.ContactName, c.Phone, c.Email, c.Notes,
		c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update client: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update client: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanClient(row rowScanner) (*models.Client, error) {
	var (
		c                 models.Client
		clientID, ownerID uuid.UUID
		docType           string
	)
	err := row.Scan(
		&clientID, &ownerID, &c.Name, &c.Address,
		&c.District, &c.Province, &c.Department,
		&docType, &c.DocumentNumber,
		&c.ContactName, &c.Phone, &c.Email, &c.Notes,
		&c.Status, &c.Seller, &c.BusinessLine,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	c.ID = id.ClientID(clientID)
	c.UserID = id.UserID(ownerID)
	c.DocumentType = document.Type(docType)
	return &c, nil
}
