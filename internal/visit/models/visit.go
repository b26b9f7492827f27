// Package models defines the visit record and its submission rules. Visits
// are write-once: there is no edit or delete path.
package models

import (
	"strings"
	"time"

	id "github.com/Rolando1980/client-geo-logger/pkg/domain"
	dErrors "github.com/Rolando1980/client-geo-logger/pkg/domain-errors"
)

// Purpose classifies why a field visit happened. The set matches the
// product's Spanish-language visit form.
type Purpose string

const (
	PurposeClientAbsent    Purpose = "Cliente Ausente"
	PurposeCollection      Purpose = "Cobranza"
	PurposeReturn          Purpose = "Devolución"
	PurposePremisesClosed  Purpose = "Establecimiento Cerrado"
	PurposeComplaint       Purpose = "Reclamo"
	PurposeSupervision     Purpose = "Supervisión"
	PurposeSale            Purpose = "Venta"
	PurposeCommercialVisit Purpose = "Visita Comercial"
	PurposeTechnicalVisit  Purpose = "Visita Técnica"
)

// Purposes lists every valid purpose in form order.
func Purposes() []Purpose {
	return []Purpose{
		PurposeClientAbsent,
		PurposeCollection,
		PurposeReturn,
		PurposePremisesClosed,
		PurposeComplaint,
		PurposeSupervision,
		PurposeSale,
		PurposeCommercialVisit,
		PurposeTechnicalVisit,
	}
}

// Valid reports whether p is one of the known purposes.
func (p Purpose) Valid() bool {
	for _, known := range Purposes() {
		if p == known {
			return true
		}
	}
	return false
}

// Date and time layouts carried by each visit, kept as the form captured
// them rather than converted to a timestamp.
const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// Visit is one geolocated field visit. Immutable after creation.
type Visit struct {
	ID         id.VisitID  `json:"id"`
	UserID     id.UserID   `json:"user_id"`
	ClientID   id.ClientID `json:"client_id"`
	ClientName string      `json:"client_name"`
	Purpose    Purpose     `json:"purpose"`
	Notes      string      `json:"notes,omitempty"`
	Latitude   float64     `json:"latitude"`
	Longitude  float64     `json:"longitude"`
	Date       string      `json:"date"`
	Time       string      `json:"time"`
	CreatedAt  time.Time   `json:"created_at"`
}

// Draft carries a visit form submission. Latitude and Longitude are pointers
// so "not captured" is distinguishable from coordinate zero.
type Draft struct {
	ClientID  id.ClientID `json:"client_id"`
	Purpose   Purpose     `json:"purpose"`
	Notes     string      `json:"notes"`
	Latitude  *float64    `json:"latitude"`
	Longitude *float64    `json:"longitude"`
	Date      string      `json:"date"`
	Time      string      `json:"time"`
}

// Validate applies the submit-time rules. A missing captured location is a
// blocking error: no visit is written without coordinates.
func (d *Draft) Validate() error {
	if d.ClientID.IsNil() {
		return dErrors.New(dErrors.CodeBadRequest, "por favor selecciona un cliente y completa la fecha y hora")
	}
	if strings.TrimSpace(d.Date) == "" || strings.TrimSpace(d.Time) == "" {
		return dErrors.New(dErrors.CodeBadRequest, "por favor selecciona un cliente y completa la fecha y hora")
	}
	if _, err := time.Parse(DateLayout, d.Date); err != nil {
		return dErrors.New(dErrors.CodeBadRequest, "la fecha de la visita no es válida")
	}
	if _, err := time.Parse(TimeLayout, d.Time); err != nil {
		return dErrors.New(dErrors.CodeBadRequest, "la hora de la visita no es válida")
	}
	if !d.Purpose.Valid() {
		return dErrors.New(dErrors.CodeBadRequest, "el propósito de la visita no es válido")
	}
	if d.Latitude == nil || d.Longitude == nil {
		return dErrors.New(dErrors.CodeBadRequest, "por favor captura tu ubicación actual")
	}
	return nil
}

// NewVisit builds a visit from a validated draft. clientName comes from the
// owner's client record, denormalized so visit history survives client
// renames.
func NewVisit(visitID id.VisitID, userID id.UserID, clientName string, d Draft, now time.Time) (*Visit, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return &Visit{
		ID:         visitID,
		UserID:     userID,
		ClientID:   d.ClientID,
		ClientName: clientName,
		Purpose:    d.Purpose,
		Notes:      strings.TrimSpace(d.Notes),
		Latitude:   *d.Latitude,
		Longitude:  *d.Longitude,
		Date:       d.Date,
		Time:       d.Time,
		CreatedAt:  now,
	}, nil
}
