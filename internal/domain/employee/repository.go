package employee

import "context"

type EmployeeRepository interface {
	GetByID(ctx context.Context, id string) (Employee, error)
	// GetActive returns every employee with active status, pay grade joined.
	GetActive(ctx context.Context) ([]Employee, error)
	// GetSignedContractsWithSigningBonus returns signed contracts that carry a signing bonus.
	GetSignedContractsWithSigningBonus(ctx context.Context) ([]Contract, error)
}
