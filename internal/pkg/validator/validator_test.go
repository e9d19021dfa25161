package validator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsEmpty(t *testing.T) {
	cases := []struct {
		input string
		want  bool
	}{
		{"", true},
		{"   ", true},
		{"abc", false},
		{" abc ", false},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, IsEmpty(c.input), "IsEmpty(%q)", c.input)
	}
}

func TestIsValidUUID(t *testing.T) {
	valid := []string{
		"0188d0f2-7b8c-7b4a-8a2b-6b8b8b8b8b8b",
		"123e4567-e89b-12d3-a456-426614174000",
		"123E4567-E89B-12D3-A456-426614174000",
	}
	invalid := []string{
		"0188d0f27b8c7b4a8a2b6b8b8b8b8b8b",
		"urn:uuid:123e4567-e89b-12d3-a456-426614174000",
		"not-a-uuid",
		"",
	}
	for _, id := range valid {
		assert.True(t, IsValidUUID(id), "IsValidUUID(%q)", id)
	}
	for _, id := range invalid {
		assert.False(t, IsValidUUID(id), "IsValidUUID(%q)", id)
	}
}

func TestParsePeriod(t *testing.T) {
	t.Run("month marker", func(t *testing.T) {
		got, err := ParsePeriod("2025-02")
		require.NoError(t, err)
		assert.Equal(t, time.Date(2025, time.February, 1, 0, 0, 0, 0, time.UTC), got)
	})

	t.Run("full date is truncated to month start", func(t *testing.T) {
		got, err := ParsePeriod("2025-02-17")
		require.NoError(t, err)
		assert.Equal(t, time.Date(2025, time.February, 1, 0, 0, 0, 0, time.UTC), got)
	})

	t.Run("invalid", func(t *testing.T) {
		for _, p := range []string{"", "2025", "2025-13", "02-2025", "February"} {
			_, err := ParsePeriod(p)
			assert.Error(t, err, "ParsePeriod(%q)", p)
			assert.False(t, IsValidPeriod(p))
		}
	})
}

func TestValidationErrors(t *testing.T) {
	errs := ValidationErrors{
		{Field: "payroll_period", Message: "payroll_period is required"},
		{Field: "entity", Message: "entity is required"},
	}

	assert.Equal(t, "payroll_period: payroll_period is required; entity: entity is required", errs.Error())
	assert.Equal(t, map[string]string{
		"payroll_period": "payroll_period is required",
		"entity":         "entity is required",
	}, errs.ToMap())
}

func TestIsInSlice(t *testing.T) {
	assert.True(t, IsInSlice("csv", []string{"xlsx", "csv"}))
	assert.False(t, IsInSlice("pdf", []string{"xlsx", "csv"}))
	assert.False(t, IsInSlice("csv", nil))
}
