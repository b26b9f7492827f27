package document

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "github.com/Rolando1980/client-geo-logger/pkg/domain-errors"
)

func TestNormalizeEdit_DNI(t *testing.T) {
	tests := []struct {
		name string
		prev string
		raw  string
		want string
	}{
		{"keeps digits", "", "12345678", "12345678"},
		{"strips letters", "", "12a34b56", "123456"},
		{"strips separators", "", "12.345.678", "12345678"},
		{"truncates to eight digits", "", "123456789012", "12345678"},
		{"empty input stays empty", "1234", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeEdit(TypeDNI, tt.prev, tt.raw))
		})
	}
}

func TestNormalizeEdit_RUC(t *testing.T) {
	tests := []struct {
		name string
		prev string
		raw  string
		want string
	}{
		{"accepts company prefix", "", "20123456789", "20123456789"},
		{"accepts natural person prefix", "", "10456789012", "10456789012"},
		{"accepts prefix 15", "", "15123456789", "15123456789"},
		{"accepts prefix 17", "", "17123456789", "17123456789"},
		{"rejects invalid prefix and keeps previous", "20", "99", "20"},
		{"rejects invalid prefix from empty", "", "99123", ""},
		{"single digit passes through", "", "2", "2"},
		{"strips non-digits before the prefix check", "", "20-12345678-9", "20123456789"},
		{"truncates to eleven digits", "", "201234567891234", "20123456789"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeEdit(TypeRUC, tt.prev, tt.raw))
		})
	}
}

func TestNormalizeEdit_FreeText(t *testing.T) {
	long := strings.Repeat("x", 25)

	assert.Equal(t, "CE-00123", NormalizeEdit(TypeCE, "", "CE-00123"))
	assert.Len(t, NormalizeEdit(TypeCE, "", long), 20)
	assert.Equal(t, "pasaporte 4521", NormalizeEdit(TypeOtro, "", "pasaporte 4521"))
	assert.Len(t, NormalizeEdit(TypeOtro, "", long), 20)

	// Truncation counts runes, not bytes.
	accented := strings.Repeat("ñ", 25)
	assert.Equal(t, strings.Repeat("ñ", 20), NormalizeEdit(TypeOtro, "", accented))
}

func TestValidateSubmit(t *testing.T) {
	t.Run("accepts a normalized value", func(t *testing.T) {
		assert.NoError(t, ValidateSubmit(TypeDNI, "12345678"))
	})

	t.Run("requires a value", func(t *testing.T) {
		err := ValidateSubmit(TypeDNI, "   ")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))
		assert.Equal(t, "el número de documento es obligatorio", dErrors.MessageOf(err))
	})

	t.Run("rejects an unknown type", func(t *testing.T) {
		err := ValidateSubmit(Type("Pasaporte"), "12345678")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))
	})
}

func TestTypes(t *testing.T) {
	assert.Equal(t, []Type{TypeDNI, TypeRUC, TypeCE, TypeOtro}, Types())
	for _, dt := range Types() {
		assert.True(t, dt.Valid())
	}
	assert.False(t, Type("Pasaporte").Valid())
}
