package payrollconfig

import "errors"

var (
	ErrSigningBonusNotFound = errors.New("signing bonus configuration not found")
)
