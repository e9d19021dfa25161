package payrollconfig

import "context"

type ConfigRepository interface {
	ListApprovedAllowances(ctx context.Context) ([]Allowance, error)
	ListApprovedTaxRules(ctx context.Context) ([]TaxRule, error)
	ListApprovedInsuranceBrackets(ctx context.Context) ([]InsuranceBracket, error)
	GetSigningBonusByID(ctx context.Context, id string) (SigningBonus, error)
}
