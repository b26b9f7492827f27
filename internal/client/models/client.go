package models

import (
	"strings"
	"time"

	"github.com/Rolando1980/client-geo-logger/internal/client/document"
	"github.com/Rolando1980/client-geo-logger/internal/location"
	id "github.com/Rolando1980/client-geo-logger/pkg/domain"
	dErrors "github.com/Rolando1980/client-geo-logger/pkg/domain-errors"
)

// DefaultStatus and DefaultBusinessLine are the internal-field defaults
// stamped on creation; neither is user-editable yet.
const (
	DefaultStatus       = "Prospecto"
	DefaultBusinessLine = "General"
)

// Client is a business/contact entity tracked by a sales user.
//
// Invariants:
//   - Name and Address are non-empty
//   - District/Province/Department come from one location catalog row
//   - DocumentType is a known type and DocumentNumber is non-empty
//   - UserID identifies the owning user and is immutable
//
// Clients are never hard-deleted; the only mutation is a full-record update
// by the owner.
type Client struct {
	ID             id.ClientID   `json:"id"`
	UserID         id.UserID     `json:"user_id"`
	Name           string        `json:"name"`
	Address        string        `json:"address"`
	District       string        `json:"district"`
	Province       string        `json:"province"`
	Department     string        `json:"department"`
	DocumentType   document.Type `json:"document_type"`
	DocumentNumber string        `json:"document_number"`
	ContactName    string        `json:"contact_name,omitempty"`
	Phone          string        `json:"phone,omitempty"`
	Email          string        `json:"email,omitempty"`
	Notes          string        `json:"notes,omitempty"`
	Status         string        `json:"status"`
	Seller         string        `json:"seller"`
	BusinessLine   string        `json:"business_line"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
}

// Draft carries the user-editable fields of a client form submission.
type Draft struct {
	Name           string        `json:"name"`
	Address        string        `json:"address"`
	District       string        `json:"district"`
	Province       string        `json:"province"`
	Department     string        `json:"department"`
	DocumentType   document.Type `json:"document_type"`
	DocumentNumber string        `json:"document_number"`
	ContactName    string        `json:"contact_name"`
	Phone          string        `json:"phone"`
	Email          string        `json:"email"`
	Notes          string        `json:"notes"`
}

// Validate applies the submit-time rules shared by create and update, and
// returns the normalized document number. Normalizing before the required
// check means a value the editing rule would have rejected entirely (for
// example a RUC with an invalid prefix) cannot slip through as stored text.
func (d *Draft) Validate() (string, error) {
	if strings.TrimSpace(d.Name) == "" {
		return "", dErrors.New(dErrors.CodeBadRequest, "el nombre es obligatorio")
	}
	if strings.TrimSpace(d.Address) == "" {
		return "", dErrors.New(dErrors.CodeBadRequest, "la dirección es obligatoria")
	}
	if !location.ValidTriple(d.District, d.Province, d.Department) {
		return "", dErrors.New(dErrors.CodeBadRequest, "la ubicación seleccionada no es válida")
	}
	docNumber := document.NormalizeEdit(d.DocumentType, "", d.DocumentNumber)
	if err := document.ValidateSubmit(d.DocumentType, docNumber); err != nil {
		return "", err
	}
	return docNumber, nil
}

// NewClient builds a client from a validated draft, stamping the internal
// fields.
func NewClient(clientID id.ClientID, userID id.UserID, seller string, d Draft, now time.Time) (*Client, error) {
	docNumber, err := d.Validate()
	if err != nil {
		return nil, err
	}
	return &Client{
		ID:             clientID,
		UserID:         userID,
		Name:           strings.TrimSpace(d.Name),
		Address:        strings.TrimSpace(d.Address),
		District:       d.District,
		Province:       d.Province,
		Department:     d.Department,
		DocumentType:   d.DocumentType,
		DocumentNumber: docNumber,
		ContactName:    strings.TrimSpace(d.ContactName),
		Phone:          strings.TrimSpace(d.Phone),
		Email:          strings.TrimSpace(d.Email),
		Notes:          d.Notes,
		Status:         DefaultStatus,
		Seller:         seller,
		BusinessLine:   DefaultBusinessLine,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

// ApplyUpdate replaces the user-editable fields from a validated draft.
// Internal fields (status, seller, business line, owner, creation time)
// survive the update.
func (c *Client) ApplyUpdate(d Draft, now time.Time) error {
	docNumber, err := d.Validate()
	if err != nil {
		return err
	}
	c.Name = strings.TrimSpace(d.Name)
	c.Address = strings.TrimSpace(d.Address)
	c.District = d.District
	c.Province = d.Province
	c.Department = d.Department
	c.DocumentType = d.DocumentType
	c.DocumentNumber = docNumber
	c.ContactName = strings.TrimSpace(d.ContactName)
	c.Phone = strings.TrimSpace(d.Phone)
	c.Email = strings.TrimSpace(d.Email)
	c.Notes = d.Notes
	c.UpdatedAt = now
	return nil
}
