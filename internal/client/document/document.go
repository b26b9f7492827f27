// Package document validates and normalizes identity document numbers per
// document type. Normalization runs on every edit (keystroke semantics: the
// form re-submits the whole field value); submit-time validation only checks
// presence.
package document

import (
	"strings"

	dErrors "github.com/Rolando1980/client-geo-logger/pkg/domain-errors"
)

// Type tags the document number format.
type Type string

const (
	TypeDNI  Type = "DNI"  // national identity card, 8 digits
	TypeRUC  Type = "RUC"  // taxpayer registration, 11 digits
	TypeCE   Type = "CE"   // foreign-resident card, free text
	TypeOtro Type = "Otro" // anything else, free text
)

// Types lists the selectable document types in form order.
func Types() []Type {
	return []Type{TypeDNI, TypeRUC, TypeCE, TypeOtro}
}

// Valid reports whether t is a known document type.
func (t Type) Valid() bool {
	switch t {
	case TypeDNI, TypeRUC, TypeCE, TypeOtro:
		return true
	}
	return false
}

// rucPrefixes are the only taxpayer-number classes issued: 10 and 15/17 for
// natural persons, 20 for companies.
var rucPrefixes = map[string]bool{"10": true, "15": true, "17": true, "20": true}

const (
	maxDNIDigits  = 8
	maxRUCDigits  = 11
	maxFreeLength = 20
)

// NormalizeEdit applies the per-type editing rule to a raw field value and
// returns what the field should now hold. A RUC edit with an invalid
// two-digit prefix is rejected: the previous value is returned unchanged.
func NormalizeEdit(docType Type, prev, raw string) string {
	switch docType {
	case TypeDNI:
		return truncate(digitsOnly(raw), maxDNIDigits)
	case TypeRUC:
		digits := truncate(digitsOnly(raw), maxRUCDigits)
		if len(digits) >= 2 && !rucPrefixes[digits[:2]] {
			return prev
		}
		return digits
	default:
		return truncateRunes(raw, maxFreeLength)
	}
}

// ValidateSubmit is the submit-time check: required, nothing more. The
// per-edit rule already constrained the shape.
func ValidateSubmit(docType Type, value string) error {
	if !docType.Valid() {
		return dErrors.New(dErrors.CodeBadRequest, "tipo de documento no válido")
	}
	if strings.TrimSpace(value) == "" {
		return dErrors.New(dErrors.CodeBadRequest, "el número de documento es obligatorio")
	}
	return nil
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) > n {
		return string(runes[:n])
	}
	return s
}
