package payroll

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultPolicy_BracketBoundaries(t *testing.T) {
	p := DefaultPolicy()
	require.NoError(t, p.Validate())

	cases := []struct {
		annual int64
		marker string
	}{
		{0, "bracket 1"},
		{15000, "bracket 1"},
		{15001, "bracket 2"},
		{30000, "bracket 2"},
		{30001, "bracket 3"},
		{60000, "bracket 4"},
		{200000, "bracket 5"},
		{400000, "bracket 6"},
		{400001, "bracket 7"},
		{5000000, "bracket 7"},
	}
	for _, c := range cases {
		var matched []string
		for _, b := range p.TaxBrackets {
			if b.Contains(decimal.NewFromInt(c.annual)) {
				matched = append(matched, b.Marker)
			}
		}
		assert.Equal(t, []string{c.marker}, matched, "annual %d", c.annual)
	}
}

func TestPolicy_ExpectedWorkingDays(t *testing.T) {
	p := DefaultPolicy()
	assert.Equal(t, 20, p.ExpectedWorkingDays(28))
	assert.Equal(t, 21, p.ExpectedWorkingDays(29))
	assert.Equal(t, 22, p.ExpectedWorkingDays(30))
	assert.Equal(t, 22, p.ExpectedWorkingDays(31))
}

func TestPolicy_RuleNames(t *testing.T) {
	p := DefaultPolicy()

	b, ok := p.BracketFor("Income Tax Bracket 3")
	require.True(t, ok)
	assert.Equal(t, "bracket 3", b.Marker)

	_, ok = p.BracketFor("Stamp duty")
	assert.False(t, ok)

	assert.True(t, p.IsSolidarityRule("Solidarity contribution"))
	assert.False(t, p.IsSolidarityRule("Income Tax Bracket 1"))
}

func TestParsePolicy(t *testing.T) {
	t.Run("valid document", func(t *testing.T) {
		doc := `{
			"version": "2026.1",
			"working_days_per_month": 20,
			"reference_month_days": 30,
			"annualization_factor": 12,
			"tax_brackets": [{"marker": "bracket 1", "up_to": "20000"}, {"marker": "bracket 2", "over": "20000"}],
			"solidarity_marker": "solidarity",
			"solidarity_threshold": "2000000",
			"spike_multiplier": "2"
		}`
		p, err := ParsePolicy([]byte(doc))
		require.NoError(t, err)
		assert.Equal(t, "2026.1", p.Version)
		assert.Equal(t, 20, p.ExpectedWorkingDays(30))
		assert.True(t, p.TaxBrackets[1].Contains(decimal.NewFromInt(20001)))
	})

	t.Run("rejects missing ratio", func(t *testing.T) {
		_, err := ParsePolicy([]byte(`{"version": "x", "tax_brackets": [{"marker": "bracket 1"}]}`))
		assert.ErrorIs(t, err, ErrInvalidPolicy)
	})

	t.Run("rejects malformed json", func(t *testing.T) {
		_, err := ParsePolicy([]byte(`{`))
		assert.ErrorIs(t, err, ErrInvalidPolicy)
	})
}

func TestPeriodBounds(t *testing.T) {
	p := PeriodBounds(time.Date(2024, time.February, 17, 13, 0, 0, 0, time.UTC))
	assert.Equal(t, time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC), p.Start)
	assert.Equal(t, time.Date(2024, time.February, 29, 0, 0, 0, 0, time.UTC), p.End)
	assert.Equal(t, 29, p.DaysInMonth)
}

func TestExceptions_Narrative(t *testing.T) {
	var none Exceptions
	assert.Nil(t, none.Narrative())

	ex := Exceptions{
		{Kind: ExceptionMissingBankAccount, Message: "Missing bank account details"},
		{Kind: ExceptionMissingPayGrade, Message: "Missing pay grade assignment"},
	}
	require.NotNil(t, ex.Narrative())
	assert.Equal(t, "Missing bank account details; Missing pay grade assignment", *ex.Narrative())
	assert.True(t, ex.Has(ExceptionMissingPayGrade))
	assert.False(t, ex.Has(ExceptionSalarySpike))
}
