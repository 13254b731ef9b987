package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsEmpty(t *testing.T) {
	t.Parallel()

	assert.True(t, IsEmpty(""))
	assert.True(t, IsEmpty("   "))
	assert.True(t, IsEmpty("\t\n"))
	assert.False(t, IsEmpty("x"))
	assert.False(t, IsEmpty(" x "))
}

func TestIsValidEmail(t *testing.T) {
	t.Parallel()

	assert.True(t, IsValidEmail("user@example.com"))
	assert.True(t, IsValidEmail("first.last+tag@sub.example.co"))
	assert.False(t, IsValidEmail("not-an-email"))
	assert.False(t, IsValidEmail("user@"))
	assert.False(t, IsValidEmail("@example.com"))
	assert.False(t, IsValidEmail(""))
}

func TestIsValidDate(t *testing.T) {
	t.Parallel()

	parsed, ok := IsValidDate("2025-06-15")
	assert.True(t, ok)
	assert.Equal(t, 2025, parsed.Year())

	_, ok = IsValidDate("15-06-2025")
	assert.False(t, ok)

	_, ok = IsValidDate("2025-13-01")
	assert.False(t, ok)

	_, ok = IsValidDate("")
	assert.False(t, ok)
}

func TestIsValidPeriod(t *testing.T) {
	t.Parallel()

	assert.True(t, IsValidPeriod(1, 2025))
	assert.True(t, IsValidPeriod(12, 2000))
	assert.False(t, IsValidPeriod(0, 2025))
	assert.False(t, IsValidPeriod(13, 2025))
	assert.False(t, IsValidPeriod(6, 1999))
}

func TestValidationErrors(t *testing.T) {
	t.Parallel()

	errs := ValidationErrors{
		{Field: "email", Message: "is required"},
		{Field: "period", Message: "month must be 1-12 and year 2000 or later"},
	}

	assert.Contains(t, errs.Error(), "email: is required")
	assert.Contains(t, errs.Error(), "; ")

	m := errs.ToMap()
	assert.Equal(t, "is required", m["email"])
	assert.Len(t, m, 2)
}
