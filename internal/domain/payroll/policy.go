package payroll

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// TaxBracket is an annual-salary band identified by a marker that must appear
// in a tax rule's name. Over is exclusive, UpTo inclusive; nil means unbounded.
type TaxBracket struct {
	Marker string           `json:"marker"`
	Over   *decimal.Decimal `json:"over,omitempty"`
	UpTo   *decimal.Decimal `json:"up_to,omitempty"`
}

// Contains reports whether annual falls inside the bracket.
func (b TaxBracket) Contains(annual decimal.Decimal) bool {
	if b.Over != nil && !annual.GreaterThan(*b.Over) {
		return false
	}
	if b.UpTo != nil && annual.GreaterThan(*b.UpTo) {
		return false
	}
	return true
}

// Policy carries every jurisdiction or labor-week assumption the calculator
// depends on. Runs persist the policy they were computed with.
type Policy struct {
	Version             string          `json:"version"`
	WorkingDaysPerMonth int             `json:"working_days_per_month"`
	ReferenceMonthDays  int             `json:"reference_month_days"`
	AnnualizationFactor int             `json:"annualization_factor"`
	TaxBrackets         []TaxBracket    `json:"tax_brackets"`
	SolidarityMarker    string          `json:"solidarity_marker"`
	SolidarityThreshold decimal.Decimal `json:"solidarity_threshold"`
	SpikeMultiplier     decimal.Decimal `json:"spike_multiplier"`
}

func bound(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}

// DefaultPolicy returns the 2025 policy: 22 working days per 30 calendar days,
// seven annual tax brackets, solidarity above 1,000,000 and a 1.5x spike threshold.
func DefaultPolicy() Policy {
	return Policy{
		Version:             "2025.1",
		WorkingDaysPerMonth: 22,
		ReferenceMonthDays:  30,
		AnnualizationFactor: 12,
		TaxBrackets: []TaxBracket{
			{Marker: "bracket 1", UpTo: bound(15000)},
			{Marker: "bracket 2", Over: bound(15000), UpTo: bound(30000)},
			{Marker: "bracket 3", Over: bound(30000), UpTo: bound(45000)},
			{Marker: "bracket 4", Over: bound(45000), UpTo: bound(60000)},
			{Marker: "bracket 5", Over: bound(60000), UpTo: bound(200000)},
			{Marker: "bracket 6", Over: bound(200000), UpTo: bound(400000)},
			{Marker: "bracket 7", Over: bound(400000)},
		},
		SolidarityMarker:    "solidarity",
		SolidarityThreshold: decimal.NewFromInt(1000000),
		SpikeMultiplier:     decimal.NewFromFloat(1.5),
	}
}

// ParsePolicy decodes a JSON policy document and validates it.
func ParsePolicy(data []byte) (Policy, error) {
	var p Policy
	if err := json.Unmarshal(data, &p); err != nil {
		return Policy{}, fmt.Errorf("%w: %v", ErrInvalidPolicy, err)
	}
	if err := p.Validate(); err != nil {
		return Policy{}, err
	}
	return p, nil
}

func (p Policy) Validate() error {
	switch {
	case p.Version == "":
		return fmt.Errorf("%w: version is required", ErrInvalidPolicy)
	case p.WorkingDaysPerMonth <= 0 || p.ReferenceMonthDays <= 0:
		return fmt.Errorf("%w: working day ratio must be positive", ErrInvalidPolicy)
	case p.AnnualizationFactor <= 0:
		return fmt.Errorf("%w: annualization factor must be positive", ErrInvalidPolicy)
	case len(p.TaxBrackets) == 0:
		return fmt.Errorf("%w: at least one tax bracket is required", ErrInvalidPolicy)
	case p.SolidarityMarker == "":
		return fmt.Errorf("%w: solidarity marker is required", ErrInvalidPolicy)
	case !p.SpikeMultiplier.IsPositive():
		return fmt.Errorf("%w: spike multiplier must be positive", ErrInvalidPolicy)
	}
	for _, b := range p.TaxBrackets {
		if b.Marker == "" {
			return fmt.Errorf("%w: tax bracket marker is required", ErrInvalidPolicy)
		}
		if b.Over != nil && b.UpTo != nil && !b.UpTo.GreaterThan(*b.Over) {
			return fmt.Errorf("%w: tax bracket %q is empty", ErrInvalidPolicy, b.Marker)
		}
	}
	return nil
}

// ExpectedWorkingDays approximates working days in a month of daysInMonth
// calendar days using the policy ratio, rounded down.
func (p Policy) ExpectedWorkingDays(daysInMonth int) int {
	return daysInMonth * p.WorkingDaysPerMonth / p.ReferenceMonthDays
}

// BracketFor returns the bracket whose marker appears in ruleName.
func (p Policy) BracketFor(ruleName string) (TaxBracket, bool) {
	name := strings.ToLower(ruleName)
	for _, b := range p.TaxBrackets {
		if strings.Contains(name, strings.ToLower(b.Marker)) {
			return b, true
		}
	}
	return TaxBracket{}, false
}

// IsSolidarityRule reports whether the rule is the separately handled solidarity tax.
func (p Policy) IsSolidarityRule(ruleName string) bool {
	return strings.Contains(strings.ToLower(ruleName), strings.ToLower(p.SolidarityMarker))
}
